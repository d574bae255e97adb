package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/forgelight/crucible/internal/cauldron"
	"github.com/forgelight/crucible/internal/clock"
	"github.com/forgelight/crucible/internal/crafting"
	"github.com/forgelight/crucible/internal/database"
	"github.com/forgelight/crucible/internal/handler"
	"github.com/forgelight/crucible/internal/logger"
	"github.com/forgelight/crucible/internal/metrics"
	"github.com/forgelight/crucible/internal/registry"
)

type Server struct {
	httpServer      *http.Server
	dbPool          database.Pool
	registryService registry.Service
	craftingService crafting.Service
	cauldronService cauldron.Service
	clockService    clock.Service
}

// NewServer creates a new Server instance
func NewServer(port int, apiKey string, trustedProxies []string, dbPool database.Pool, registryService registry.Service, craftingService crafting.Service, cauldronService cauldron.Service, clockService clock.Service) *Server {
	r := chi.NewRouter()

	// Middleware stack
	// Chi middleware executes in order defined (outermost to innermost)
	detector := NewSuspiciousActivityDetector()

	r.Use(SecurityHeadersMiddleware())
	r.Use(AuthMiddleware(apiKey, trustedProxies, detector))
	r.Use(SecurityLoggingMiddleware(trustedProxies, detector))
	r.Use(RequestSizeLimitMiddleware(1 << 20)) // 1MB limit
	r.Use(metrics.Middleware)
	r.Use(loggingMiddleware)

	// Health check routes (unversioned)
	r.Get("/healthz", handler.HandleHealthz())
	r.Get("/readyz", handler.HandleReadyz(dbPool))

	// Version endpoint (for deployment verification)
	r.Get("/version", handler.HandleVersion())

	// Metrics endpoint (public, for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		registryHandler := handler.NewRegistryHandler(registryService)
		craftingHandler := handler.NewCraftingHandler(craftingService)
		adminHandler := handler.NewAdminHandler(clockService, craftingService, registryService)

		// Recipe book routes
		r.Route("/books", func(r chi.Router) {
			r.Get("/", registryHandler.ListBooks)
			r.Post("/", registryHandler.CreateBook)
			r.Post("/import", registryHandler.ImportBook)

			r.Route("/{bookID}", func(r chi.Router) {
				r.Get("/", registryHandler.GetBook)
				r.Put("/", registryHandler.UpdateBook)
				r.Delete("/", registryHandler.DeleteBook)
				r.Get("/export", registryHandler.ExportBook)

				r.Post("/recipes", registryHandler.CreateRecipe)
				r.Post("/recipes/import", registryHandler.ImportRecipe)

				r.Route("/recipes/{recipeID}", func(r chi.Router) {
					r.Get("/", registryHandler.GetRecipe)
					r.Put("/", registryHandler.UpdateRecipe)
					r.Delete("/", registryHandler.DeleteRecipe)
					r.Post("/duplicate", registryHandler.DuplicateRecipe)
					r.Get("/export", registryHandler.ExportRecipe)

					r.Post("/slots", registryHandler.AddSlot)
					r.Route("/slots/{kind}/{slotID}", func(r chi.Router) {
						r.Post("/components", registryHandler.AddComponent)
						r.Delete("/components/{componentID}", registryHandler.RemoveComponent)
						r.Put("/components/{componentID}/quantity", registryHandler.SetComponentQuantity)
					})
				})
			})
		})

		// Lookup routes
		r.Get("/recipes/by-item", registryHandler.RecipesByItem)
		r.Get("/availability", craftingHandler.Availability)

		// Crafting routes
		r.Post("/craft", craftingHandler.Craft)
		r.Post("/cauldron/brew", handler.HandleBrew(cauldronService))

		// Admin routes
		r.Route("/admin", func(r chi.Router) {
			r.Get("/world-time", adminHandler.GetWorldTime)
			r.Put("/world-time", adminHandler.AdvanceWorldTime)
			r.Post("/sweep", adminHandler.Sweep)
			r.Post("/discovery/confirm", adminHandler.ConfirmDiscovery)
		})
	})

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		},
		dbPool:          dbPool,
		registryService: registryService,
		craftingService: craftingService,
		cauldronService: cauldronService,
		clockService:    clockService,
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK, // default status
	}
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	if !rw.written {
		rw.statusCode = statusCode
		rw.written = true
		rw.ResponseWriter.WriteHeader(statusCode)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Skip logging for health check endpoints and metrics
		// Use HasPrefix to catch potential variations (e.g. /healthz/)
		if strings.HasPrefix(r.URL.Path, "/healthz") ||
			strings.HasPrefix(r.URL.Path, "/readyz") ||
			strings.HasPrefix(r.URL.Path, "/metrics") {
			next.ServeHTTP(w, r)
			return
		}

		// Generate unique request ID
		requestID := logger.GenerateRequestID()

		// Add request ID to context
		ctx := logger.WithRequestID(r.Context(), requestID)
		r = r.WithContext(ctx)

		// Get scoped logger
		log := logger.FromContext(ctx)

		// Log request start with details
		log.Info(LogMsgRequestStarted,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"content_length", r.ContentLength,
			"user_agent", r.UserAgent())

		// Sanitize headers for logging
		sanitizedHeaders := make(http.Header)
		for k, v := range r.Header {
			if strings.EqualFold(k, HeaderAPIKey) || strings.EqualFold(k, HeaderAuthorization) {
				sanitizedHeaders[k] = []string{RedactedValue}
			} else {
				sanitizedHeaders[k] = v
			}
		}
		log.Debug(LogMsgRequestHeaders, "headers", sanitizedHeaders)

		// Wrap response writer to capture status code
		rw := newResponseWriter(w)

		// Process request
		next.ServeHTTP(rw, r)

		// Log request completion with metrics
		duration := time.Since(start)
		log.Info(LogMsgRequestCompleted,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"duration", duration)
	})
}

// Start starts the server
func (s *Server) Start() error {
	slog.Default().Info(LogMsgServerStarting, "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
