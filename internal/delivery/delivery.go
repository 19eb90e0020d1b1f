// Package delivery defines the contract every transport entry point
// implements, so main can start all of them uniformly.
package delivery

import "context"

// Delivery is a long-running transport server (HTTP, worker, ...).
type Delivery interface {
	Serve(ctx context.Context) error
}
