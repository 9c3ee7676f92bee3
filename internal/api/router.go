package api

import (
	"net/http"
	"time"

	// This blank import is required by swaggo to find the API definitions.
	_ "github.com/Jaydeep9963/M32-BIZ-PILOT/docs"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/Jaydeep9963/M32-BIZ-PILOT/internal/auth"
)

// Handlers groups the route handlers.
type Handlers struct {
	Chat      *ChatHandler
	Tasks     *TaskHandler
	Providers *ProviderHandler
}

// RouterOptions carries the cross-cutting pieces of the router.
type RouterOptions struct {
	Verifier       auth.Verifier
	Limiter        *OwnerRateLimiter
	AllowedOrigins []string
	// Metrics serves /metrics when set.
	Metrics http.Handler
}

// NewRouter creates and configures a new chi router with all the application's routes.
func NewRouter(h Handlers, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	// --- Global Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// --- Public Routes ---
	r.Get("/api/swagger/*", httpSwagger.WrapHandler)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	limiter := opts.Limiter
	if limiter == nil {
		limiter = NewOwnerRateLimiter(0, 0)
	}

	// --- API Version 1 Routes ---
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(Authenticate(opts.Verifier))

		// Regular JSON routes get a request timeout.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))

			r.Get("/chats", h.Chat.GetChats)
			r.Get("/chats/{chatID}", h.Chat.GetChat)
			r.Patch("/chats/{chatID}", h.Chat.RenameChat)
			r.Delete("/chats/{chatID}", h.Chat.DeleteChat)

			r.Get("/tasks", h.Tasks.GetTasks)
			r.Post("/tasks", h.Tasks.CreateTask)

			r.Get("/providers", h.Providers.HandleListProviders)
		})

		// Turns wait on providers and must not time out here. They share the
		// per-owner rate limit.
		r.Group(func(r chi.Router) {
			r.Use(limiter.Middleware)

			r.Post("/chat", h.Chat.HandleChat)
			r.Post("/chat/stream", h.Chat.HandleChatStream)
			r.Post("/upload", h.Chat.HandleUpload)
		})
	})

	return r
}
