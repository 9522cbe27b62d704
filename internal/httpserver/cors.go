package httpserver

import (
	"net/http"
	"slices"
	"strings"

	"github.com/fdg312/meal-e/internal/config"
)

// corsMethods are the methods the API routes use.
var corsMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete}

const corsAllowHeaders = "Authorization, Content-Type, " + RequestIDHeader

// corsPolicy - разобранные CORS-настройки. "*" в списке origins разрешает любой origin.
type corsPolicy struct {
	origins     map[string]bool
	anyOrigin   bool
	credentials bool
}

func newCORSPolicy(cfg *config.Config) corsPolicy {
	p := corsPolicy{
		origins:     make(map[string]bool, len(cfg.CORSAllowedOrigins)),
		credentials: cfg.CORSAllowCredentials,
	}
	for _, o := range cfg.CORSAllowedOrigins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "*" {
			p.anyOrigin = true
			continue
		}
		p.origins[o] = true
	}
	return p
}

func (p corsPolicy) allows(origin string) bool {
	return origin != "" && (p.anyOrigin || p.origins[origin])
}

// allowOriginValue echoes the origin unless any origin is allowed without
// credentials, where the literal "*" suffices.
func (p corsPolicy) allowOriginValue(origin string) string {
	if p.anyOrigin && !p.credentials {
		return "*"
	}
	return origin
}

// CORSMiddleware answers preflight requests and decorates responses for allowed origins.
// A preflight is an OPTIONS request carrying Access-Control-Request-Method.
func CORSMiddleware(cfg *config.Config, next http.Handler) http.Handler {
	policy := newCORSPolicy(cfg)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		requested := r.Header.Get("Access-Control-Request-Method")
		preflight := r.Method == http.MethodOptions && requested != ""

		h := w.Header()
		h.Add("Vary", "Origin")

		if !policy.allows(origin) {
			if preflight {
				// без CORS-заголовков браузер сам заблокирует запрос
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		h.Set("Access-Control-Allow-Origin", policy.allowOriginValue(origin))
		if policy.credentials {
			h.Set("Access-Control-Allow-Credentials", "true")
		}

		if !preflight {
			h.Set("Access-Control-Expose-Headers", RequestIDHeader)
			next.ServeHTTP(w, r)
			return
		}

		h.Add("Vary", "Access-Control-Request-Method")
		if slices.Contains(corsMethods, strings.ToUpper(requested)) {
			h.Set("Access-Control-Allow-Methods", strings.Join(corsMethods, ", "))
			h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
			h.Set("Access-Control-Max-Age", "600")
		}
		w.WriteHeader(http.StatusNoContent)
	})
}
