// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/ejchub/internal/app/system/activitylog"
	"github.com/dalemusser/ejchub/internal/app/system/authutil"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

const (
	defaultBootstrapPassword = "@dmin"
	defaultConfirmSecret     = "@dmin"
	minSessionKeyLen         = 32
)

// appConfigKeys defines the configuration keys for EJC Hub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: EJCHUB_MONGO_URI, EJCHUB_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI (blank runs without a store)"},
	{Name: "mongo_database", Default: "ejc_hub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 50, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 2, Desc: "MongoDB min connection pool size"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "ejchub-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "24h", Desc: "Session lifetime (e.g., 24h, 30m)"},

	// Accounts
	{Name: "bootstrap_admin_password", Default: defaultBootstrapPassword, Desc: "Password of the admin created when the users collection is empty"},
	{Name: "delete_confirm_secret", Default: defaultConfirmSecret, Desc: "Secret required to delete registrations and users"},
	{Name: "password_hasher", Default: authutil.HasherBcrypt, Desc: "Password hashing: 'bcrypt' or 'argon2id'"},

	// Postal-code lookup
	{Name: "cep_base_url", Default: "https://viacep.com.br/ws", Desc: "ViaCEP base URL"},
	{Name: "cep_timeout", Default: "5s", Desc: "ViaCEP request timeout"},
	{Name: "cep_rate_per_minute", Default: 30, Desc: "Postal-code lookups per minute per IP"},
	{Name: "cep_burst", Default: 10, Desc: "Postal-code lookup burst per IP"},

	{Name: "load_timeout", Default: "10s", Desc: "Deadline for loading all collections at once"},
	{Name: "time_zone", Default: "America/Fortaleza", Desc: "IANA zone used for day boundaries"},

	{Name: "activity_log", Default: activitylog.ModeAll, Desc: "Activity logging: 'all' (db+log), 'db', 'log', or 'off'"},

	{Name: "login_rate_per_minute", Default: 10, Desc: "Login attempts per minute per IP"},
	{Name: "login_burst", Default: 5, Desc: "Login attempt burst per IP"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig merges, in order of precedence,
// flags > env (WAFFLE_* for core, EJCHUB_* for the app) > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "EJCHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),
		SessionKey:       appValues.String("session_key"),
		SessionName:      appValues.String("session_name"),
		SessionDomain:    appValues.String("session_domain"),
		SessionMaxAge:    appValues.Duration("session_max_age", 24*time.Hour),

		BootstrapAdminPassword: appValues.String("bootstrap_admin_password"),
		DeleteConfirmSecret:    appValues.String("delete_confirm_secret"),
		PasswordHasher:         appValues.String("password_hasher"),

		CEPBaseURL:       appValues.String("cep_base_url"),
		CEPTimeout:       appValues.Duration("cep_timeout", 5*time.Second),
		CEPRatePerMinute: appValues.Int("cep_rate_per_minute"),
		CEPBurst:         appValues.Int("cep_burst"),

		LoadTimeout: appValues.Duration("load_timeout", 10*time.Second),
		TimeZone:    appValues.String("time_zone"),

		ActivityLog: appValues.String("activity_log"),

		LoginRatePerMinute: appValues.Int("login_rate_per_minute"),
		LoginBurst:         appValues.Int("login_burst"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// A blank Mongo URI is accepted: the app then serves connectivity errors
// instead of data.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if appCfg.MongoURI != "" {
		if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
			logger.Error("invalid MongoDB URI", zap.Error(err))
			return fmt.Errorf("invalid MongoDB URI: %w", err)
		}
	}
	if _, err := authutil.NewHasher(appCfg.PasswordHasher); err != nil {
		return fmt.Errorf("password_hasher: %w", err)
	}
	if len(appCfg.SessionKey) < minSessionKeyLen {
		return fmt.Errorf("session_key must be at least %d characters", minSessionKeyLen)
	}
	if appCfg.DeleteConfirmSecret == "" {
		return fmt.Errorf("delete_confirm_secret must not be empty")
	}
	if appCfg.BootstrapAdminPassword == "" {
		return fmt.Errorf("bootstrap_admin_password must not be empty")
	}
	switch appCfg.ActivityLog {
	case activitylog.ModeAll, activitylog.ModeDB, activitylog.ModeLog, activitylog.ModeOff:
	default:
		return fmt.Errorf("activity_log must be one of all, db, log, off (got %q)", appCfg.ActivityLog)
	}
	if _, err := time.LoadLocation(appCfg.TimeZone); err != nil {
		return fmt.Errorf("time_zone: %w", err)
	}

	if coreCfg != nil && coreCfg.Env == "prod" {
		if appCfg.DeleteConfirmSecret == defaultConfirmSecret {
			logger.Warn("delete_confirm_secret is the built-in default; set EJCHUB_DELETE_CONFIRM_SECRET")
		}
		if appCfg.BootstrapAdminPassword == defaultBootstrapPassword {
			logger.Warn("bootstrap_admin_password is the built-in default; change it after the first sign-in")
		}
	}
	return nil
}
