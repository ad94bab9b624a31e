package middleware

import "net/http"

var securityHeaders = map[string]string{
	"X-Content-Type-Options": "nosniff",
	"X-Frame-Options":        "DENY",
	"X-XSS-Protection":       "1; mode=block",
	"Referrer-Policy":        "strict-origin-when-cross-origin",
	"Permissions-Policy":     "geolocation=(), microphone=(), camera=()",
}

// SecurityHeaders stamps the browser hardening headers on every response
// and strips any Server header a handler may have set.
func SecurityHeaders() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			for k, v := range securityHeaders {
				h.Set(k, v)
			}
			next.ServeHTTP(&serverHeaderStripper{ResponseWriter: w}, r)
		})
	}
}

type serverHeaderStripper struct {
	http.ResponseWriter
	wrote bool
}

func (s *serverHeaderStripper) WriteHeader(code int) {
	if !s.wrote {
		s.wrote = true
		s.Header().Del("Server")
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *serverHeaderStripper) Write(b []byte) (int, error) {
	if !s.wrote {
		s.WriteHeader(http.StatusOK)
	}
	return s.ResponseWriter.Write(b)
}

func (s *serverHeaderStripper) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}
