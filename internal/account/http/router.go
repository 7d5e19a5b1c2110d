package http

import (
	"log/slog"
	"net/http"

	"github.com/pingpong42/account/internal/account/cache"
	"github.com/pingpong42/account/internal/account/service"
	"github.com/pingpong42/account/internal/account/store"
	"github.com/pingpong42/account/pkg/httpx"
	"github.com/pingpong42/account/pkg/jwtx"
	"github.com/pingpong42/account/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier jwtx.Verifier
	logger   *slog.Logger
	store    store.Store
	cache    cache.Cache

	OAuthService    *service.OAuthService
	IdentityService *service.IdentityService
	TokenService    *service.TokenService
	TwoFAService    *service.TwoFAService
}

func NewRouter(
	verifier jwtx.Verifier,
	st store.Store,
	c cache.Cache,
	logger *slog.Logger,
	allowedOrigins []string,
) *Router {
	r := &Router{
		Mux:      http.NewServeMux(),
		verifier: verifier,
		logger:   logger,
		store:    st,
		cache:    c,
	}

	// Global chain: request logging first, then the uniform CORS policy.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.CORSMiddleware(allowedOrigins),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerOAuth()
	r.registerUsers()
	r.registerTwoFA()
	r.registerSystem()
}

// ServeHTTP implements http.Handler and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// secured wraps a handler with token verification, principal loading and a
// per-user rate limit.
func (r *Router) secured(h http.Handler, limit httpx.RateLimitConfig) http.Handler {
	return httpx.Chain(h,
		httpx.AuthnMiddleware(r.verifier),
		RequirePrincipal(r.IdentityService),
		httpx.RateLimitByUser(limit),
	)
}

// securedAdmin further restricts a secured handler to administrator accounts.
func (r *Router) securedAdmin(h http.Handler, limit httpx.RateLimitConfig) http.Handler {
	return httpx.Chain(h,
		httpx.AuthnMiddleware(r.verifier),
		RequirePrincipal(r.IdentityService),
		RequireAdmin(),
		httpx.RateLimitByUser(limit),
	)
}

func (r *Router) registerOAuth() {
	h := &OAuthHandler{
		OAuthService:    r.OAuthService,
		IdentityService: r.IdentityService,
		TokenService:    r.TokenService,
	}

	// GET /oauth/login/ - public, just hands out redirect parameters
	r.Mux.Handle("GET /oauth/login/{$}",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)

	// GET /oauth/login/callback/ - strict limit, exchanges provider codes
	r.Mux.Handle("GET /oauth/login/callback/{$}",
		httpx.Chain(http.HandlerFunc(h.HandleCallback),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerUsers() {
	h := &UsersHandler{
		IdentityService: r.IdentityService,
		TokenService:    r.TokenService,
		TwoFAService:    r.TwoFAService,
	}

	// POST /users/ - strict limit, account creation
	r.Mux.Handle("POST /users/{$}",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /users/login/ - strict limit, authentication attempts
	r.Mux.Handle("POST /users/login/{$}",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /users/token/refresh/ - strict limit, token exchange
	r.Mux.Handle("POST /users/token/refresh/{$}",
		httpx.Chain(http.HandlerFunc(h.HandleRefresh),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /users/logout/ - authenticated, revokes the submitted refresh token
	r.Mux.Handle("POST /users/logout/{$}", r.secured(http.HandlerFunc(h.HandleLogout), httpx.ModerateLimit))

	// GET /users/ and DELETE /users/ operate on the authenticated account
	r.Mux.Handle("GET /users/{$}", r.secured(http.HandlerFunc(h.HandleGet), httpx.LenientLimit))
	r.Mux.Handle("DELETE /users/{$}", r.secured(http.HandlerFunc(h.HandleDelete), httpx.ModerateLimit))

	// GET /users/{user_id}/ - administrators may look up any account
	r.Mux.Handle("GET /users/{user_id}/{$}", r.securedAdmin(http.HandlerFunc(h.HandleGetByID), httpx.LenientLimit))
}

func (r *Router) registerTwoFA() {
	h := &TwoFAHandler{TwoFAService: r.TwoFAService}

	r.Mux.Handle("GET /twofa/setup/{$}", r.secured(http.HandlerFunc(h.HandleSetup), httpx.ModerateLimit))
	r.Mux.Handle("DELETE /twofa/setup/{$}", r.secured(http.HandlerFunc(h.HandleDisable), httpx.ModerateLimit))

	// Verification attempts get the strict limit to slow code guessing.
	r.Mux.Handle("POST /twofa/verify/{$}", r.secured(http.HandlerFunc(h.HandleVerify), httpx.StrictLimit))

	r.Mux.Handle("GET /twofa/status/{$}", r.secured(http.HandlerFunc(h.HandleStatus), httpx.LenientLimit))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", httpx.Chain(LivezHandler(), httpx.RateLimitByIP(httpx.PublicLimit)))
	r.Mux.Handle("GET /readyz", httpx.Chain(ReadyzHandler(r.store, r.cache), httpx.RateLimitByIP(httpx.PublicLimit)))
}
