package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/bankofshash/support-ai/internal/http/handlers"
	httpmiddleware "github.com/bankofshash/support-ai/internal/http/middleware"
	"github.com/bankofshash/support-ai/internal/webchat"
	"github.com/bankofshash/support-ai/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger             *logging.Logger
	ChatHandler        *handlers.ChatHandler
	HistoryHandler     *handlers.HistoryHandler
	TutorHandler       *handlers.TutorHandler
	AdminSessions      *handlers.AdminSessionsHandler
	HealthHandler      *handlers.HealthHandler
	WebchatHandler     *webchat.Handler
	MetricsHandler     http.Handler
	AdminAuthSecret    string
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints (health, metrics, chat surface).
	r.Group(func(public chi.Router) {
		if cfg.HealthHandler != nil {
			public.Get("/healthz", cfg.HealthHandler.Check)
		}
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		if cfg.ChatHandler != nil {
			public.Route("/api/chat", func(r chi.Router) {
				r.Post("/", cfg.ChatHandler.Message)
				r.Post("/start", cfg.ChatHandler.Start)
				if cfg.HistoryHandler != nil {
					r.Get("/history", cfg.HistoryHandler.Get)
				}
			})
		}
		if cfg.TutorHandler != nil {
			public.Route("/api/tutor", func(r chi.Router) {
				r.Post("/annuity", cfg.TutorHandler.Annuity)
				r.Post("/perpetuity", cfg.TutorHandler.Perpetuity)
				r.Post("/bond", cfg.TutorHandler.Bond)
				r.Post("/amortization", cfg.TutorHandler.Amortization)
				r.Post("/regression", cfg.TutorHandler.Regression)
				r.Post("/ttest", cfg.TutorHandler.TTest)
			})
		}
		if cfg.WebchatHandler != nil {
			public.Route("/chat", func(r chi.Router) {
				r.Get("/ws", cfg.WebchatHandler.HandleWebSocket)
				r.Post("/message", cfg.WebchatHandler.HandleMessage)
			})
		}
	})

	// Admin endpoints behind JWT auth.
	if cfg.AdminSessions != nil {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret, cfg.Logger))
			admin.Get("/sessions/{conversationID}", cfg.AdminSessions.GetSession)
		})
	}

	return r
}
