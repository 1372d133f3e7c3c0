package httpmiddleware

import (
	"net/http"
	"strconv"
	"strings"
)

// CORSConfig configures CORS.
type CORSConfig struct {
	// Origins allowed to call the API. Empty or "*" allows any origin.
	Origins          []string
	Methods          []string
	Headers          []string
	AllowCredentials bool
	// MaxAge is the preflight cache lifetime in seconds; zero omits it.
	MaxAge int
}

type corsPolicy struct {
	any         bool
	origins     map[string]string
	methods     string
	headers     string
	credentials bool
	maxAge      string
}

func newCORSPolicy(cfg CORSConfig) corsPolicy {
	p := corsPolicy{
		origins:     make(map[string]string, len(cfg.Origins)),
		methods:     "GET, POST, PUT, DELETE, OPTIONS",
		headers:     strings.Join(cfg.Headers, ", "),
		credentials: cfg.AllowCredentials,
		any:         len(cfg.Origins) == 0,
	}
	for _, o := range cfg.Origins {
		if o == "*" {
			p.any = true
			continue
		}
		p.origins[strings.ToLower(o)] = o
	}
	// Browsers reject "*" with credentials, so the request origin is echoed.
	if p.credentials && p.any {
		p.any = false
	}
	if len(cfg.Methods) > 0 {
		p.methods = strings.Join(cfg.Methods, ", ")
	}
	if cfg.MaxAge > 0 {
		p.maxAge = strconv.Itoa(cfg.MaxAge)
	}
	return p
}

// allowOrigin returns the Access-Control-Allow-Origin value for origin, or
// "" when it is not allowed.
func (p corsPolicy) allowOrigin(origin string) string {
	if p.any {
		return "*"
	}
	if p.credentials && len(p.origins) == 0 {
		return origin
	}
	return p.origins[strings.ToLower(origin)]
}

// CORS answers preflight requests and decorates cross-origin responses.
func CORS(cfg CORSConfig) Middleware {
	p := newCORSPolicy(cfg)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			origin := r.Header.Get("Origin")
			if !p.any {
				h.Add("Vary", "Origin")
			}
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			allow := p.allowOrigin(origin)
			preflight := r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""
			if allow != "" {
				h.Set("Access-Control-Allow-Origin", allow)
				if p.credentials {
					h.Set("Access-Control-Allow-Credentials", "true")
				}
			}
			if !preflight {
				next.ServeHTTP(w, r)
				return
			}

			h.Add("Vary", "Access-Control-Request-Method")
			h.Add("Vary", "Access-Control-Request-Headers")
			if allow != "" {
				h.Set("Access-Control-Allow-Methods", p.methods)
				switch {
				case p.headers != "":
					h.Set("Access-Control-Allow-Headers", p.headers)
				case r.Header.Get("Access-Control-Request-Headers") != "":
					h.Set("Access-Control-Allow-Headers", r.Header.Get("Access-Control-Request-Headers"))
				}
				if p.maxAge != "" {
					h.Set("Access-Control-Max-Age", p.maxAge)
				}
			}
			w.WriteHeader(http.StatusNoContent)
		})
	}
}
