package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/opentasklabs/taskauth/internal/auth/service"
	"github.com/opentasklabs/taskauth/internal/auth/store"
	"github.com/opentasklabs/taskauth/pkg/httpx"
	"github.com/opentasklabs/taskauth/pkg/slogx"

	_ "github.com/opentasklabs/taskauth/api/taskauth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// TokenStrategy selects where access tokens travel: the Authorization
// header or an HTTP-only cookie. Chosen once at startup, never per request.
type TokenStrategy string

const (
	StrategyHeader TokenStrategy = "header"
	StrategyCookie TokenStrategy = "cookie"
)

// Cookie names used by the cookie strategy.
const (
	AccessTokenCookie  = "users_access_token"
	RefreshTokenCookie = "users_refresh_token"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	strategy     TokenStrategy
	cookies      cookieConfig
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store       store.Store
	AuthService *service.AuthService
	UserService *service.UserService
}

func NewRouter(
	strategy TokenStrategy,
	secureCookies bool,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		strategy:     strategy,
		cookies:      cookieConfig{strategy: strategy, secure: secureCookies},
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.cookies.refreshTTL = r.AuthService.SessionTTL()

	r.registerAuth()
	r.registerUsers()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// accessTokenSource returns the deployment-wide bearer token source.
func (r *Router) accessTokenSource() httpx.TokenSource {
	if r.strategy == StrategyCookie {
		return httpx.CookieTokenSource{Name: AccessTokenCookie}
	}
	return httpx.HeaderTokenSource{}
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			TaskAuth Service API
//	@version		0.1.0
//	@description	Authentication service providing password login, JWT access tokens
//	@description	and rotating refresh tokens with a per-user active session cap.
//
//	@contact.name				OpenTask Labs
//	@contact.url				https://github.com/opentasklabs/taskauth
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	// POST /register - strict rate limit by IP (public signup endpoint)
	registerHandler := &RegisterHandler{AuthService: r.AuthService}
	r.Mux.Handle("POST /v1/auth/register",
		httpx.Chain(registerHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /login - strict rate limit by IP + email body field so one IP
	// cannot brute force many accounts, nor many IPs one account
	loginHandler := &LoginHandler{AuthService: r.AuthService, Cookies: r.cookies}
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(loginHandler,
			httpx.RateLimitByIPAndBodyField(httpx.StrictLimit, "email"),
		),
	)

	// POST /refresh - strict rate limit by IP (the refresh token itself is
	// the credential, no access token required)
	refreshHandler := &RefreshHandler{AuthService: r.AuthService, Cookies: r.cookies}
	r.Mux.Handle("POST /v1/auth/refresh",
		httpx.Chain(refreshHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /logout - authenticated, moderate rate limit by user
	logoutHandler := &LogoutHandler{AuthService: r.AuthService, Cookies: r.cookies}
	r.Mux.Handle("POST /v1/auth/logout",
		httpx.Chain(logoutHandler,
			RequireAuth(r.AuthService, r.accessTokenSource()),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerUsers() {
	src := r.accessTokenSource()

	// GET /users/me - lenient rate limit by user
	meHandler := &MeHandler{UserService: r.UserService}
	r.Mux.Handle("GET /v1/users/me",
		httpx.Chain(meHandler,
			RequireAuth(r.AuthService, src),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)

	// PUT /users/me/password - moderate rate limit by user (verifies the
	// current password, so brute force matters here too)
	passwordHandler := &ChangePasswordHandler{UserService: r.UserService}
	r.Mux.Handle("PUT /v1/users/me/password",
		httpx.Chain(passwordHandler,
			RequireAuth(r.AuthService, src),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	// DELETE /users/me - moderate rate limit by user
	deleteHandler := &DeleteUserHandler{UserService: r.UserService, Cookies: r.cookies}
	r.Mux.Handle("DELETE /v1/users/me",
		httpx.Chain(deleteHandler,
			RequireAuth(r.AuthService, src),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
