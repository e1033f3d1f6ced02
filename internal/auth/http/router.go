package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/Ma16q/MotriLog/internal/auth/domain"
	"github.com/Ma16q/MotriLog/internal/auth/service"
	"github.com/Ma16q/MotriLog/internal/auth/store"
	"github.com/Ma16q/MotriLog/pkg/httpx"
	"github.com/Ma16q/MotriLog/pkg/slogx"

	_ "github.com/Ma16q/MotriLog/api/motrilog" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Pinger is implemented by every backing store /readyz checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RateLimits holds the profile applied to each route group.
type RateLimits struct {
	Login   httpx.RateLimitConfig
	Verify  httpx.RateLimitConfig
	Session httpx.RateLimitConfig
	User    httpx.RateLimitConfig
	Alert   httpx.RateLimitConfig
	Admin   httpx.RateLimitConfig
	Health  httpx.RateLimitConfig
}

func DefaultRateLimits() RateLimits {
	return RateLimits{
		Login:   httpx.StrictLimit,
		Verify:  httpx.StrictLimit,
		Session: httpx.LenientLimit,
		User:    httpx.LenientLimit,
		Alert:   httpx.StrictLimit,
		Admin:   httpx.ModerateLimit,
		Health:  httpx.PublicLimit,
	}
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store    store.Store
	sessions Pinger

	Cookie CookieConfig
	Limits RateLimits

	// Proxies whose forwarding headers are believed for rate limiting and
	// session metadata. Empty means the TCP peer is the client.
	Proxies httpx.TrustedProxies

	AuthService  *service.AuthService
	UserService  *service.UserService
	AdminService *service.AdminService
	Guard        *service.Guard
}

// NewRouter wires the global middleware. sessions is pinged by /readyz
// alongside st; pass nil when sessions live in st.
func NewRouter(buildVersion string, st store.Store, sessions Pinger, logger *slog.Logger) *Router {
	if sessions == nil {
		sessions = st
	}
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		sessions:     sessions,
		logger:       logger,
		Cookie:       DefaultCookieConfig(),
		Limits:       DefaultRateLimits(),
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.Recover(),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerProfile()
	r.registerAdmin()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			MotriLog Authentication API
//	@version		0.1.0
//	@description	Password login with an optional Telegram second factor, server-side sessions and admin user management.
//	@description
//	@description				Sessions are opaque tokens carried in the motrilog_session cookie or a Bearer header.
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	SessionCookie
//	@in							cookie
//	@name						motrilog_session
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// authn resolves the session on the request and, when role is set,
// requires it.
func (r *Router) authn(role domain.Role) httpx.Middleware {
	authenticate := func(req *http.Request) (httpx.Principal, error) {
		token := httpx.SessionToken(req, r.Cookie.Name)

		var (
			u   domain.User
			err error
		)
		if role == "" {
			u, err = r.Guard.Authenticate(req.Context(), token)
		} else {
			u, err = r.Guard.RequireRole(req.Context(), token, role)
		}
		if err != nil {
			return httpx.Principal{}, err
		}
		return httpx.Principal{UserID: u.ID, Role: u.Role.String()}, nil
	}

	return httpx.AuthnMiddleware(authenticate, writeServiceError)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{AuthService: r.AuthService, Cookie: r.Cookie, ClientIP: r.Proxies.ClientIP}

	// POST /login - strict, keyed by IP + e-mail so one address can't lock out others
	r.Mux.Handle("POST /login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIPAndJSONField(r.Limits.Login, r.Proxies.ClientIP, "email"),
		),
	)

	// POST /verify-2fa - strict, keyed by IP + pending session
	r.Mux.Handle("POST /verify-2fa",
		httpx.Chain(http.HandlerFunc(h.HandleVerify),
			httpx.RateLimitMiddleware(r.Limits.Verify,
				httpx.CompositeKeyExtractor(":", r.Proxies.ClientIP, httpx.SessionKeyExtractor(r.Cookie.Name)),
			),
		),
	)

	r.Mux.Handle("POST /logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			httpx.RateLimitByIP(r.Limits.Session, r.Proxies.ClientIP),
		),
	)
	r.Mux.Handle("GET /check-auth",
		httpx.Chain(http.HandlerFunc(h.HandleCheckAuth),
			httpx.RateLimitByIP(r.Limits.Session, r.Proxies.ClientIP),
		),
	)
}

func (r *Router) registerProfile() {
	h := &ProfileHandler{UserService: r.UserService}

	secured := func(fn http.HandlerFunc, limit httpx.RateLimitConfig) http.Handler {
		return httpx.Chain(fn,
			r.authn(""),
			httpx.RateLimitByUser(limit, r.Proxies.ClientIP),
		)
	}

	r.Mux.Handle("GET /profile", secured(h.HandleProfile, r.Limits.User))
	r.Mux.Handle("POST /telegram/link", secured(h.HandleLink, r.Limits.User))
	r.Mux.Handle("POST /telegram/unlink", secured(h.HandleUnlink, r.Limits.User))

	// test-alert sends a real message, so it shares the strict profile
	r.Mux.Handle("POST /telegram/test-alert", secured(h.HandleTestAlert, r.Limits.Alert))
}

func (r *Router) registerAdmin() {
	h := &AdminHandler{AdminService: r.AdminService}

	admin := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn,
			r.authn(domain.RoleAdmin),
			httpx.RateLimitByUser(r.Limits.Admin, r.Proxies.ClientIP),
		)
	}

	r.Mux.Handle("GET /admin/users", admin(h.HandleListUsers))
	r.Mux.Handle("POST /admin/users/{id}/ban", admin(h.HandleToggleBan))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(r.Limits.Health, r.Proxies.ClientIP),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.sessions),
			httpx.RateLimitByIP(r.Limits.Health, r.Proxies.ClientIP),
		),
	)
}
