package middlewares

import (
	"net/http"
	"slices"
	"strings"
)

const (
	corsAllowMethods  = "GET, POST, PUT, PATCH, DELETE, OPTIONS"
	corsAllowHeaders  = "Accept, Authorization, Content-Type, " + RequestIDHeader
	corsExposeHeaders = RequestIDHeader
	corsMaxAge        = "3600"
)

// corsPolicy decides which origin, if any, is echoed back to the browser
type corsPolicy struct {
	anyOrigin bool
	origins   []string
}

func newCORSPolicy(allowedOrigins []string) corsPolicy {
	p := corsPolicy{anyOrigin: slices.Contains(allowedOrigins, "*")}
	for _, origin := range allowedOrigins {
		if origin != "*" {
			p.origins = append(p.origins, strings.ToLower(origin))
		}
	}
	return p
}

// allow returns the value of Access-Control-Allow-Origin for the request origin,
// or "" when the origin is missing or not allowed
func (p corsPolicy) allow(origin string) string {
	switch {
	case origin == "":
		return ""
	case p.anyOrigin:
		return "*"
	case slices.Contains(p.origins, strings.ToLower(origin)):
		return origin
	default:
		return ""
	}
}

// CORSMiddleware answers preflight requests and decorates responses for the allowed origins.
// Credentials are only allowed for explicitly listed origins, never for "*".
func CORSMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	policy := newCORSPolicy(allowedOrigins)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Add("Vary", "Origin")

			origin := policy.allow(r.Header.Get("Origin"))
			if origin != "" {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Expose-Headers", corsExposeHeaders)
				if origin != "*" {
					h.Set("Access-Control-Allow-Credentials", "true")
				}
			}

			preflight := r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""
			if !preflight {
				next.ServeHTTP(w, r)
				return
			}

			h.Set("Access-Control-Allow-Methods", corsAllowMethods)
			h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
			h.Set("Access-Control-Max-Age", corsMaxAge)
			w.WriteHeader(http.StatusNoContent)
		})
	}
}
