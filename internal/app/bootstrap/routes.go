package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/krcapps/orderdash/internal/app/blob"
	authgooglefeature "github.com/krcapps/orderdash/internal/app/features/authgoogle"
	errorsfeature "github.com/krcapps/orderdash/internal/app/features/errors"
	healthfeature "github.com/krcapps/orderdash/internal/app/features/health"
	loginfeature "github.com/krcapps/orderdash/internal/app/features/login"
	logoutfeature "github.com/krcapps/orderdash/internal/app/features/logout"
	registerfeature "github.com/krcapps/orderdash/internal/app/features/register"
	submissionsfeature "github.com/krcapps/orderdash/internal/app/features/submissions"
	usersfeature "github.com/krcapps/orderdash/internal/app/features/users"
	"github.com/krcapps/orderdash/internal/app/identity"
	"github.com/krcapps/orderdash/internal/app/store/oauthstate"
	submissionstore "github.com/krcapps/orderdash/internal/app/store/submissions"
	userstore "github.com/krcapps/orderdash/internal/app/store/users"
	"github.com/krcapps/orderdash/internal/app/system/auth"
)

// BuildHandler constructs the root HTTP handler for this WAFFLE app.
//
// WAFFLE calls this after configuration, backend connections, schema
// setup, and Startup have completed. The dashboard front-end is a
// separate client; everything mounted here is the JSON API it talks
// to, plus the file server for locally stored images.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain,
		appCfg.SessionTTL, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	admin := userstore.NewAllowList(appCfg.AdminEmails)
	dir := userstore.NewDirectory(deps.Store, logger)
	repo := submissionstore.NewRepository(deps.Store, deps.Blobs, logger)
	identitySvc := identity.NewService(dir, admin, logger)

	// Fresh user data is fetched on each request, so deletions and
	// allow-list changes take effect without a new sign-in.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(dir, admin))

	errLog := errorsfeature.NewErrorLogger(logger)

	r := chi.NewRouter()

	// Global auth middleware: loads the SessionUser into context.
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators.
	healthHandler := healthfeature.NewHandler(deps.Store, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Locally stored images are served straight from disk. With S3
	// storage the image refs point at the bucket instead.
	if local, ok := deps.Blobs.(*blob.Local); ok {
		r.Handle(appCfg.StorageLocalURL+"/*", fileserver.Handler(appCfg.StorageLocalURL, local.Dir()))
	}

	// Authentication
	registerHandler := registerfeature.NewHandler(dir, errLog, logger)
	r.Mount("/register", registerfeature.Routes(registerHandler))

	loginHandler := loginfeature.NewHandler(identitySvc, sessionMgr, errLog, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler))

	googleHandler := authgooglefeature.NewHandler(dir, admin, sessionMgr,
		oauthstate.NewStore(deps.Store),
		appCfg.GoogleClientID, appCfg.GoogleClientSecret, appCfg.BaseURL, logger)
	r.Mount("/auth/google", authgooglefeature.Routes(googleHandler))

	// Submissions: user create/list plus the admin dashboard surface.
	subHandler := submissionsfeature.NewHandler(repo, dir, errLog, logger)
	r.Mount("/submissions", submissionsfeature.Routes(subHandler, sessionMgr))

	// Admin user management.
	usersHandler := usersfeature.NewHandler(dir, admin, errLog, logger)
	r.Mount("/users", usersfeature.Routes(usersHandler, sessionMgr))

	return r, nil
}
