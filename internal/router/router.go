package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"healthmate-backend/internal/handlers"
	"healthmate-backend/internal/middleware"
	"healthmate-backend/internal/websocket"
)

type Handlers struct {
	Session *handlers.SessionHandler
	Chat    *handlers.ChatHandler
	Feature *handlers.FeatureHandler
	Chart   *handlers.ChartHandler
	Info    *handlers.InfoHandler
	WS      *websocket.ChatHandler
}

func New(
	logger zerolog.Logger,
	tokens *middleware.SessionTokens,
	limiter *middleware.RateLimiter,
	h Handlers,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog(logger)...)
	r.Use(middleware.CORS(frontendURL))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"ok"}`))
		})

		// WebSocket frames are not counted by the limiter.
		r.Get("/ws", h.WS.ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(limiter.Middleware)

			r.Post("/sessions", h.Session.Create)
			r.Get("/tips/daily", h.Info.DailyTip)
			r.Post("/feedback", h.Info.Feedback)

			r.Route("/charts", func(r chi.Router) {
				r.Get("/{type}", h.Chart.Get)
				r.Post("/{type}", h.Chart.Custom)
			})

			r.Post("/symptoms", h.Feature.Symptoms)
			r.Post("/meditation", h.Feature.Meditation)
			r.Post("/nutrition", h.Feature.Nutrition)
			r.Post("/images/analyze", h.Feature.AnalyzeImage)

			// ──── Session-scoped chat ────
			r.Route("/chat", func(r chi.Router) {
				r.Use(tokens.Middleware)
				r.Post("/", h.Chat.Chat)
				r.Get("/history", h.Chat.History)
			})
		})
	})

	return r
}
