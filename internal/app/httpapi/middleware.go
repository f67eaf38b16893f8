package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/gold360/backoffice/internal/app/auth"
)

type contextKey string

const (
	ctxUserKey contextKey = "audit-user"
	ctxRoleKey contextKey = "audit-role"
)

// openPaths are reachable without a bearer token.
var openPaths = map[string]bool{
	"/healthz":    true,
	"/metrics":    true,
	"/auth/login": true,
}

// wrapWithAuth enforces bearer authentication. Static tokens are accepted
// as-is; anything else must be a JWT issued by the manager.
func wrapWithAuth(next http.Handler, tokens []string, manager *auth.Manager) http.Handler {
	static := make(map[string]bool, len(tokens))
	for _, token := range tokens {
		if trimmed := strings.TrimSpace(token); trimmed != "" {
			static[trimmed] = true
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if openPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			w.Header().Set("WWW-Authenticate", "Bearer")
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

		if static[token] {
			next.ServeHTTP(w, r.WithContext(withUser(r.Context(), "token", "service")))
			return
		}
		if manager != nil {
			if claims, err := manager.Validate(token); err == nil {
				next.ServeHTTP(w, r.WithContext(withUser(r.Context(), claims.Username, claims.Role)))
				return
			}
		}
		w.WriteHeader(http.StatusUnauthorized)
	})
}

func withUser(ctx context.Context, user, role string) context.Context {
	ctx = context.WithValue(ctx, ctxUserKey, user)
	return context.WithValue(ctx, ctxRoleKey, role)
}

func userFromContext(ctx context.Context) (string, string) {
	user, _ := ctx.Value(ctxUserKey).(string)
	role, _ := ctx.Value(ctxRoleKey).(string)
	return user, role
}

// wrapWithAudit records every request into the audit log.
func wrapWithAudit(next http.Handler, log *auditLog) http.Handler {
	if log == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &auditRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		user, role := userFromContext(r.Context())
		log.add(auditEntry{
			Time:       time.Now().UTC(),
			User:       user,
			Role:       role,
			Path:       r.URL.Path,
			Method:     r.Method,
			Status:     rec.status,
			RemoteAddr: r.RemoteAddr,
			UserAgent:  r.UserAgent(),
		})
	})
}

type auditRecorder struct {
	http.ResponseWriter
	status int
}

func (r *auditRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// wrapWithCORS answers preflight requests and sets permissive CORS headers
// for the admin frontend.
func wrapWithCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// wrapWithRateLimit applies a global token-bucket limit to mutating and read
// traffic alike. Zero rps disables limiting.
func wrapWithRateLimit(next http.Handler, rps float64, burst int) http.Handler {
	if rps <= 0 {
		return next
	}
	if burst <= 0 {
		burst = int(rps)
		if burst < 1 {
			burst = 1
		}
	}
	limiter := rate.NewLimiter(rate.Limit(rps), burst)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
