// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig covers ports, TLS, logging level and CORS. Everything
// below is specific to EJC Hub and is loaded in LoadConfig.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // e.g. mongodb://localhost:27017; blank runs without a store
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions (default: ejchub-session)
	SessionDomain string // Cookie domain (blank means current host)
	SessionMaxAge time.Duration

	// Accounts
	BootstrapAdminPassword string // password of the admin created on an empty database
	DeleteConfirmSecret    string // secret required by destructive actions
	PasswordHasher         string // "bcrypt" or "argon2id"

	// Postal-code lookup
	CEPBaseURL       string
	CEPTimeout       time.Duration
	CEPRatePerMinute int // outbound lookups are throttled per client IP
	CEPBurst         int

	LoadTimeout time.Duration // deadline for the initial data load
	TimeZone    string        // used for "actions today" on the dashboard

	// Activity log destination: all, db, log or off
	ActivityLog string

	// Login throttling
	LoginRatePerMinute int
	LoginBurst         int
}
