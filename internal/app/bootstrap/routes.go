// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	backupfeature "github.com/dalemusser/ejchub/internal/app/features/backup"
	cepfeature "github.com/dalemusser/ejchub/internal/app/features/cep"
	dashboardfeature "github.com/dalemusser/ejchub/internal/app/features/dashboard"
	errorsfeature "github.com/dalemusser/ejchub/internal/app/features/errors"
	healthfeature "github.com/dalemusser/ejchub/internal/app/features/health"
	loginfeature "github.com/dalemusser/ejchub/internal/app/features/login"
	logoutfeature "github.com/dalemusser/ejchub/internal/app/features/logout"
	logsfeature "github.com/dalemusser/ejchub/internal/app/features/logs"
	profilefeature "github.com/dalemusser/ejchub/internal/app/features/profile"
	registrationsfeature "github.com/dalemusser/ejchub/internal/app/features/registrations"
	userinfofeature "github.com/dalemusser/ejchub/internal/app/features/userinfo"
	usersfeature "github.com/dalemusser/ejchub/internal/app/features/users"
	registrationstore "github.com/dalemusser/ejchub/internal/app/store/registrations"
	userlogstore "github.com/dalemusser/ejchub/internal/app/store/userlogs"
	userstore "github.com/dalemusser/ejchub/internal/app/store/users"
	"github.com/dalemusser/ejchub/internal/app/system/activitylog"
	"github.com/dalemusser/ejchub/internal/app/system/auth"
	"github.com/dalemusser/ejchub/internal/app/system/authutil"
	"github.com/dalemusser/ejchub/internal/app/system/cep"
	"github.com/dalemusser/ejchub/internal/app/system/confirm"
	"github.com/dalemusser/ejchub/internal/app/system/dataload"
	"github.com/dalemusser/ejchub/internal/app/system/metrics"
	"github.com/dalemusser/ejchub/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// userBackend is everything the features need from the users collection.
type userBackend interface {
	loginfeature.UserFinder
	usersfeature.Store
	backupfeature.UserStore
}

// stores bundles the per-collection stores, live or offline.
type stores struct {
	users userBackend
	regs  registrationsfeature.Store
	logs  interface {
		activitylog.Appender
		logsfeature.Lister
	}
}

func newStores(deps DBDeps) stores {
	if deps.Store == nil {
		return stores{users: offlineUsers{}, regs: offlineRegistrations{}, logs: offlineLogs{}}
	}
	db := deps.Store.DB
	return stores{
		users: userstore.New(db),
		regs:  registrationstore.New(db),
		logs:  userlogstore.New(db),
	}
}

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. Every feature speaks JSON; the session
// cookie carries the signed-in user.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Re-read the account on every request so deactivation and role
	// changes take effect immediately.
	if deps.Store != nil {
		sessionMgr.SetUserFetcher(userstore.NewFetcher(deps.Store.DB))
	}

	hasher, err := authutil.NewHasher(appCfg.PasswordHasher)
	if err != nil {
		return nil, err
	}
	gate, err := confirm.NewGate(appCfg.DeleteConfirmSecret, hasher)
	if err != nil {
		return nil, err
	}
	loc, err := time.LoadLocation(appCfg.TimeZone)
	if err != nil {
		return nil, err
	}

	st := newStores(deps)
	activity := activitylog.New(st.logs, logger, activitylog.Config{Mode: appCfg.ActivityLog})
	m := metrics.New()
	errLog := errorsfeature.NewErrorLogger(logger)
	limiter := ratelimit.NewLoginLimiter(appCfg.LoginRatePerMinute, appCfg.LoginBurst)
	sources := dataload.Sources{Users: st.users, Registrations: st.regs, Logs: st.logs}

	r := chi.NewRouter()
	r.Use(m.Middleware)

	// Global auth middleware: loads SessionUser into context if logged in.
	r.Use(sessionMgr.LoadSessionUser)
	r.Use(sessionMgr.RequireProfileComplete)

	// Health check endpoint for load balancers and orchestrators
	var pinger healthfeature.Pinger
	if deps.Store != nil {
		pinger = deps.Store.Client
	}
	r.Mount("/health", healthfeature.Routes(healthfeature.NewHandler(pinger, logger)))
	r.Handle("/metrics", m.Handler())

	// Authentication
	loginHandler := loginfeature.NewHandler(st.users, sessionMgr, errLog, hasher, limiter, activity, m, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, activity, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler))

	userinfofeature.MountRoutes(r, userinfofeature.NewHandler())

	profileHandler := profilefeature.NewHandler(st.users, sessionMgr, errLog, hasher, activity, logger)
	r.Mount("/first-login", profilefeature.FirstLoginRoutes(profileHandler, sessionMgr))
	r.Mount("/profile", profilefeature.Routes(profileHandler, sessionMgr))

	// Error pages
	errorsHandler := errorsfeature.NewHandler()
	r.Get("/forbidden", errorsHandler.Forbidden)
	r.Get("/unauthorized", errorsHandler.Unauthorized)
	r.NotFound(errorsHandler.NotFound)
	r.MethodNotAllowed(errorsHandler.MethodNotAllowed)

	dashboardHandler := dashboardfeature.NewHandler(sources, loc, appCfg.LoadTimeout, errLog, logger)
	r.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler, sessionMgr))

	regHandler := registrationsfeature.NewHandler(st.regs, st.users, errLog, hasher, gate, activity, m, logger)
	r.Mount("/registrations", registrationsfeature.Routes(regHandler, sessionMgr))

	cepHandler := cepfeature.NewHandler(cep.NewClient(appCfg.CEPBaseURL, appCfg.CEPTimeout), errLog, logger)
	cepLimiter := ratelimit.New(appCfg.CEPRatePerMinute, appCfg.CEPBurst)
	r.Mount("/cep", cepfeature.Routes(cepHandler, sessionMgr, cepLimiter))

	// Administration
	usersHandler := usersfeature.NewHandler(st.users, errLog, hasher, gate, activity, logger)
	r.Mount("/users", usersfeature.Routes(usersHandler, sessionMgr))

	logsHandler := logsfeature.NewHandler(st.logs, logger)
	r.Mount("/logs", logsfeature.Routes(logsHandler, sessionMgr))

	backupHandler := backupfeature.NewHandler(sources, st.users, st.regs, hasher, activity, appCfg.LoadTimeout, errLog, logger)
	r.Mount("/backup", backupfeature.Routes(backupHandler, sessionMgr))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
	})

	return r, nil
}
