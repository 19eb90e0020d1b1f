package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	"github.com/slighter12/go-lib/database/postgres"
)

const defaultPath = "."

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port     int `json:"port" yaml:"port"`
		Timeouts struct {
			ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
			ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
			WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
			IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
		} `json:"timeouts" yaml:"timeouts"`
	} `json:"http" yaml:"http"`

	Postgres *postgres.DBConn `json:"postgres" yaml:"postgres" mapstructure:"postgres"`

	SecretKey struct {
		Access  string `json:"access" yaml:"access"`
		Refresh string `json:"refresh" yaml:"refresh"`
	} `json:"secretKey" yaml:"secretKey"`

	Auth *AuthConfig `json:"auth" yaml:"auth"`

	TwoFactor *TwoFactorConfig `json:"twoFactor" yaml:"twoFactor"`

	OAuth *OAuthConfig `json:"oauth" yaml:"oauth"`

	Mail *MailConfig `json:"mail" yaml:"mail"`

	SMS *SMSConfig `json:"sms" yaml:"sms"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// AuthConfig defines authentication-related configuration.
// BcryptCost defaults low for development ergonomics; raise it in production.
type AuthConfig struct {
	BcryptCost      int           `json:"bcryptCost" yaml:"bcryptCost"`
	ResetTokenTTL   time.Duration `json:"resetTokenTtl" yaml:"resetTokenTtl"`
	SMSCodeTTL      time.Duration `json:"smsCodeTtl" yaml:"smsCodeTtl"`
	ChallengeTTL    time.Duration `json:"challengeTtl" yaml:"challengeTtl"`
	LoginAttemptTTL time.Duration `json:"loginAttemptTtl" yaml:"loginAttemptTtl"`
}

// TwoFactorConfig defines TOTP enrollment and QR provisioning configuration.
type TwoFactorConfig struct {
	Issuer               string `json:"issuer" yaml:"issuer"`
	TOTPPeriod           uint   `json:"totpPeriod" yaml:"totpPeriod"`
	QRSize               int    `json:"qrSize" yaml:"qrSize"`
	ErrorCorrectionLevel string `json:"errorCorrectionLevel" yaml:"errorCorrectionLevel"`
}

// OAuthProviderConfig holds the credentials for a single federated identity provider.
type OAuthProviderConfig struct {
	ClientID     string `json:"clientId" yaml:"clientId"`
	ClientSecret string `json:"clientSecret" yaml:"clientSecret"`
	RedirectURI  string `json:"redirectUri" yaml:"redirectUri"`
}

// OAuthConfig groups the federated identity provider credentials.
type OAuthConfig struct {
	Google   *OAuthProviderConfig `json:"google" yaml:"google"`
	GitHub   *OAuthProviderConfig `json:"github" yaml:"github"`
	Facebook *OAuthProviderConfig `json:"facebook" yaml:"facebook"`
	Twitter  *OAuthProviderConfig `json:"twitter" yaml:"twitter"`
}

// MailConfig defines the transactional mail sender (Brevo HTTP API v3).
type MailConfig struct {
	APIKey      string `json:"apiKey" yaml:"apiKey"`
	SenderEmail string `json:"senderEmail" yaml:"senderEmail"`
	SenderName  string `json:"senderName" yaml:"senderName"`
	BaseURL     string `json:"baseUrl" yaml:"baseUrl"`
}

// SMSConfig defines the SMS gateway (Twilio REST API).
type SMSConfig struct {
	AccountSID string `json:"accountSid" yaml:"accountSid"`
	AuthToken  string `json:"authToken" yaml:"authToken"`
	From       string `json:"from" yaml:"from"`
}

// LoadWithEnv loads .yaml files through koanf, overlaying environment variables.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	// Build list of paths to search for config file
	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			abs := filepath.Join(pwd, path)
			searchPaths = append(searchPaths, abs)
		}
	}

	// Try to find and load the config file
	var configFile string
	var found bool
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate
			found = true

			break
		}
	}

	if !found {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	// Load YAML config file
	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	// Load environment variables
	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			// Convert ENV_VAR_NAME to path and align each segment with existing YAML keys.
			// Example: SECRETKEY_ACCESS -> secretKey.access (not secretkey.access)
			key := canonicalizeEnvKey(k, existingConfigMap)

			return key, v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	// Unmarshal into the config struct (case-insensitive to match env vars)
	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			MatchName: func(mapKey, fieldName string) bool {
				// Case-insensitive matching for env var overrides
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

func New() (*Config, error) {
	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	applyDefaults(cfg)

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Auth == nil {
		cfg.Auth = &AuthConfig{}
	}
	if cfg.Auth.BcryptCost == 0 {
		cfg.Auth.BcryptCost = 5
	}
	if cfg.Auth.ResetTokenTTL == 0 {
		cfg.Auth.ResetTokenTTL = 4 * time.Hour
	}
	if cfg.Auth.SMSCodeTTL == 0 {
		cfg.Auth.SMSCodeTTL = 5 * time.Minute
	}
	if cfg.Auth.ChallengeTTL == 0 {
		cfg.Auth.ChallengeTTL = 5 * time.Minute
	}
	if cfg.Auth.LoginAttemptTTL == 0 {
		cfg.Auth.LoginAttemptTTL = time.Hour
	}

	if cfg.TwoFactor == nil {
		cfg.TwoFactor = &TwoFactorConfig{}
	}
	if cfg.TwoFactor.Issuer == "" {
		cfg.TwoFactor.Issuer = cfg.Env.ServiceName
	}
	if cfg.TwoFactor.TOTPPeriod == 0 {
		cfg.TwoFactor.TOTPPeriod = 30
	}
	if cfg.TwoFactor.QRSize == 0 {
		cfg.TwoFactor.QRSize = 256
	}
	if cfg.TwoFactor.ErrorCorrectionLevel == "" {
		cfg.TwoFactor.ErrorCorrectionLevel = "M"
	}
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
		} else {
			canonical = append(canonical, segment)
			current = nil
		}
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	if len(current) == 0 {
		return "", nil, false
	}

	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}

		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}

	return normalized.String()
}
