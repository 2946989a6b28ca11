package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/fieldbook/fieldbook/internal/auth/domain"
	"github.com/fieldbook/fieldbook/internal/auth/oidc"
	"github.com/fieldbook/fieldbook/internal/auth/revocation"
	"github.com/fieldbook/fieldbook/internal/auth/service"
	"github.com/fieldbook/fieldbook/internal/auth/store"
	"github.com/fieldbook/fieldbook/pkg/httpx"
	"github.com/fieldbook/fieldbook/pkg/jwtx"
	"github.com/fieldbook/fieldbook/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	codec        *jwtx.Codec
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store       store.Store
	revocations revocation.Store

	CredentialService *service.CredentialService
	IdentityService   *service.IdentityService
	PrincipalService  *service.PrincipalService

	// OAuthProvider is nil when the deployment has no external identity
	// provider configured; the oauth routes are simply not registered.
	OAuthProvider *oidc.Provider

	Cookies             CookieConfig
	FrontendCallbackURL string
}

func NewRouter(
	codec *jwtx.Codec,
	buildVersion string,
	st store.Store,
	revocations revocation.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		codec:        codec,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		revocations:  revocations,
		logger:       logger,
		Cookies:      CookieConfig{Name: DefaultSessionCookieName},
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	gate := (&Gate{
		Codec:       r.codec,
		Revocations: r.revocations,
		Directory:   r.store.Principals(),
		CookieName:  r.Cookies.Name,
	}).Middleware()

	r.registerCredentials()
	r.registerOAuth()
	r.registerSessions(gate)
	r.registerDirectory(gate)
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerCredentials() {
	registerHandler := &RegisterHandler{
		Credentials: r.CredentialService,
		Cookies:     r.Cookies,
	}
	r.Mux.Handle("POST /v1/auth/register",
		httpx.Chain(registerHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// Login is keyed by IP plus the submitted email so one account cannot
	// be brute forced from many addresses.
	loginHandler := &LoginHandler{
		Credentials: r.CredentialService,
		Cookies:     r.Cookies,
	}
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(loginHandler,
			httpx.RateLimitByIPAndJSONField(httpx.StrictLimit, "email"),
		),
	)
}

func (r *Router) registerOAuth() {
	if r.OAuthProvider == nil {
		r.logger.Info("no oauth provider configured, skipping oauth routes")
		return
	}

	oauthHandler := &OAuthHandler{
		Provider:            r.OAuthProvider,
		Identity:            r.IdentityService,
		Credentials:         r.CredentialService,
		Cookies:             r.Cookies,
		FrontendCallbackURL: r.FrontendCallbackURL,
	}
	r.Mux.Handle("GET /v1/oauth/login",
		httpx.Chain(http.HandlerFunc(oauthHandler.HandleLogin),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET /v1/oauth/callback",
		httpx.Chain(http.HandlerFunc(oauthHandler.HandleCallback),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSessions(gate httpx.Middleware) {
	logoutHandler := &LogoutHandler{
		Credentials: r.CredentialService,
		Cookies:     r.Cookies,
	}
	r.Mux.Handle("POST /v1/auth/logout",
		httpx.Chain(http.HandlerFunc(logoutHandler.HandleLogout),
			httpx.RateLimitByIP(httpx.ModerateLimit),
			gate,
		),
	)
	r.Mux.Handle("POST /v1/auth/logout-all",
		httpx.Chain(http.HandlerFunc(logoutHandler.HandleLogoutAll),
			httpx.RateLimitByIP(httpx.ModerateLimit),
			gate,
		),
	)
}

func (r *Router) registerDirectory(gate httpx.Middleware) {
	meHandler := &MeHandler{}
	r.Mux.Handle("GET /v1/users/me",
		httpx.Chain(meHandler,
			httpx.RateLimitByIP(httpx.LenientLimit),
			gate,
		),
	)

	principalsHandler := &PrincipalsHandler{Principals: r.PrincipalService}
	r.Mux.Handle("GET /v1/principals/lookup",
		httpx.Chain(http.HandlerFunc(principalsHandler.HandleLookup),
			httpx.RateLimitByIP(httpx.LenientLimit),
			gate,
			RequireCashierOrAdmin(),
		),
	)
	r.Mux.Handle("GET /v1/admin/principals",
		httpx.Chain(http.HandlerFunc(principalsHandler.HandleList),
			httpx.RateLimitByIP(httpx.LenientLimit),
			gate,
			RestrictTo(domain.RoleAdmin),
		),
	)
	r.Mux.Handle("PATCH /v1/admin/principals/{id}/role",
		httpx.Chain(http.HandlerFunc(principalsHandler.HandleUpdateRole),
			httpx.RateLimitByIP(httpx.ModerateLimit),
			gate,
			RestrictTo(domain.RoleAdmin),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store, r.revocations))
}
