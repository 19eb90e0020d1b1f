// Package lifecycle holds shared constants for component start/stop handling.
package lifecycle

import "time"

// DefaultTimeout bounds component startup and graceful shutdown.
const DefaultTimeout = 10 * time.Second
