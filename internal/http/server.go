// Package http exposes the REST API: account endpoints, the category and
// transaction CRUD surface, and the reporting endpoints backed by the
// aggregation engine.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"fintrack/internal/auth"
	applog "fintrack/internal/log"
	"fintrack/internal/reports"
	"fintrack/internal/services"
)

type Server struct {
	http.Server

	accounts     *services.AccountService
	categories   *services.CategoryService
	transactions *services.TransactionService
	engine       *reports.Engine
	pdf          reports.Renderer
	tokens       *auth.Manager

	rateLimiter *rateLimiter
}

// Deps bundles the collaborators the API surface needs.
type Deps struct {
	Accounts     *services.AccountService
	Categories   *services.CategoryService
	Transactions *services.TransactionService
	Engine       *reports.Engine
	PDF          reports.Renderer
	Tokens       *auth.Manager
}

func NewServer(addr string, deps Deps) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		accounts:     deps.Accounts,
		categories:   deps.Categories,
		transactions: deps.Transactions,
		engine:       deps.Engine,
		pdf:          deps.PDF,
		tokens:       deps.Tokens,
		rateLimiter:  newRateLimiter(),
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /api/auth/register", s.trace(s.handleRegister))
	mux.HandleFunc("POST /api/auth/login", s.trace(s.handleLogin))
	mux.HandleFunc("GET /api/auth/profile", s.trace(s.requireAuth(s.handleProfile)))

	mux.HandleFunc("GET /api/categories", s.trace(s.requireAuth(s.handleListCategories)))
	mux.HandleFunc("POST /api/categories", s.trace(s.requireAuth(s.handleCreateCategory)))
	mux.HandleFunc("PUT /api/categories/{id}", s.trace(s.requireAuth(s.handleUpdateCategory)))
	mux.HandleFunc("DELETE /api/categories/{id}", s.trace(s.requireAuth(s.handleDeleteCategory)))

	mux.HandleFunc("GET /api/transactions", s.trace(s.requireAuth(s.handleListTransactions)))
	mux.HandleFunc("POST /api/transactions", s.trace(s.requireAuth(s.handleCreateTransaction)))
	mux.HandleFunc("GET /api/transactions/{id}", s.trace(s.requireAuth(s.handleGetTransaction)))
	mux.HandleFunc("PUT /api/transactions/{id}", s.trace(s.requireAuth(s.handleUpdateTransaction)))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.trace(s.requireAuth(s.handleDeleteTransaction)))

	mux.HandleFunc("GET /api/reports/summary", s.trace(s.requireAuth(s.handleSummary)))
	mux.HandleFunc("GET /api/reports/trends", s.trace(s.requireAuth(s.handleTrends)))
	mux.HandleFunc("GET /api/reports/export/csv", s.trace(s.requireAuth(s.handleExportCSV)))
	mux.HandleFunc("GET /api/reports/export/pdf", s.trace(s.requireAuth(s.handleExportPDF)))

	return s
}

// Shutdown stops the rate limiter cleanup goroutine and drains in-flight
// requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.rateLimiter.stop()
	return s.Server.Shutdown(ctx)
}

// trace adds security headers, rate limiting on write methods, a request ID
// and request logging around a handler.
func (s *Server) trace(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		if isWriteMethod(r.Method) && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded",
				applog.FieldClientIP, clientIP,
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			applog.FieldRequestID, requestID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldStatusCode, rw.statusCode,
			applog.FieldDuration, time.Since(start).Milliseconds(),
			applog.FieldClientIP, clientIP)
	}
}

func isWriteMethod(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
