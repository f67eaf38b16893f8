package httpapi

import (
	"database/sql"
	"fmt"
	"net/http"

	app "github.com/gold360/backoffice/internal/app"
	"github.com/gold360/backoffice/internal/app/auth"
	"github.com/gold360/backoffice/internal/app/metrics"
)

// Options configures the middleware stack around the API handler.
type Options struct {
	// Tokens are static bearer tokens accepted alongside issued JWTs.
	Tokens []string
	// Auth issues and validates JWTs for /auth/login. Optional.
	Auth *auth.Manager
	// AuditMax bounds the in-memory audit ring buffer.
	AuditMax int
	// AuditFilePath appends audit entries as JSONL when set.
	AuditFilePath string
	// AuditDB persists audit entries to Postgres when set. Takes
	// precedence over AuditFilePath.
	AuditDB *sql.DB
	// RateRPS/RateBurst bound request throughput. Zero disables limiting.
	RateRPS   float64
	RateBurst int
}

// NewRootHandler assembles the API handler with auth, audit, rate limiting,
// CORS and metrics instrumentation.
func NewRootHandler(application *app.Application, opts Options) (http.Handler, error) {
	var sink auditSink
	switch {
	case opts.AuditDB != nil:
		sink = newPostgresAuditSink(opts.AuditDB)
	case opts.AuditFilePath != "":
		fileSink, err := newFileAuditSink(opts.AuditFilePath)
		if err != nil {
			return nil, fmt.Errorf("open audit file: %w", err)
		}
		sink = fileSink
	}
	audit := newAuditLog(opts.AuditMax, sink)

	handler := NewHandler(application, opts.Auth, audit)
	handler = wrapWithAuth(handler, opts.Tokens, opts.Auth)
	handler = wrapWithAudit(handler, audit)
	handler = wrapWithRateLimit(handler, opts.RateRPS, opts.RateBurst)
	handler = wrapWithCORS(handler)
	handler = metrics.InstrumentHandler(handler)
	return handler, nil
}
