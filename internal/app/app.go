package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/viper"

	"github.com/Jaydeep9963/M32-BIZ-PILOT/internal/api"
	"github.com/Jaydeep9963/M32-BIZ-PILOT/internal/auth"
	"github.com/Jaydeep9963/M32-BIZ-PILOT/internal/config"
	"github.com/Jaydeep9963/M32-BIZ-PILOT/internal/llm"
	"github.com/Jaydeep9963/M32-BIZ-PILOT/internal/observability"
	"github.com/Jaydeep9963/M32-BIZ-PILOT/internal/repository"
	"github.com/Jaydeep9963/M32-BIZ-PILOT/internal/service"
	"github.com/Jaydeep9963/M32-BIZ-PILOT/internal/tools"
)

const shutdownTimeout = 15 * time.Second

// App holds the wired application.
type App struct {
	Config *config.Config
	Store  repository.Store
	Chain  *llm.Chain
	Server *http.Server

	closeStore closeFunc
}

// NewApp connects the store and builds the services and the HTTP server.
func NewApp(cfg *config.Config) (*App, error) {
	verifier, err := newVerifier(cfg)
	if err != nil {
		return nil, err
	}

	store, closeStore, err := openStore(context.Background(), cfg)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)

	var searcher tools.Searcher
	if cfg.TavilyAPIKey != "" {
		searcher = tools.NewTavilyClient(cfg.TavilyURL, cfg.TavilyAPIKey)
	} else {
		slog.Info("TAVILY_API_KEY is not set, web search is disabled")
	}
	functionTools, err := newFunctionTools(searcher, store)
	if err != nil {
		_ = closeStore(context.Background())
		return nil, err
	}
	chain := llm.NewChainFromConfig(cfg, functionTools, metrics)

	chatService := service.NewChatService(store, tools.NewRouter(searcher, metrics), chain, metrics)
	taskService := service.NewTaskService(store)
	providerService := service.NewProviderService(chain, searcher != nil)

	router := api.NewRouter(api.Handlers{
		Chat:      api.NewChatHandler(chatService, cfg.UploadMaxBytes),
		Tasks:     api.NewTaskHandler(taskService),
		Providers: api.NewProviderHandler(providerService),
	}, api.RouterOptions{
		Verifier:       verifier,
		Limiter:        api.NewOwnerRateLimiter(cfg.ChatRatePerMinute, cfg.ChatRateBurst),
		AllowedOrigins: []string{cfg.ClientURL},
		Metrics:        promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.AppPort),
		Handler:           router,
		ReadHeaderTimeout: 20 * time.Second,
		WriteTimeout:      0, // Disabled for streaming endpoints
		IdleTimeout:       120 * time.Second,
	}

	return &App{
		Config:     cfg,
		Store:      store,
		Chain:      chain,
		Server:     server,
		closeStore: closeStore,
	}, nil
}

// Close releases the store connection.
func (a *App) Close(ctx context.Context) error {
	if a.closeStore == nil {
		return nil
	}
	return a.closeStore(ctx)
}

func newVerifier(cfg *config.Config) (auth.Verifier, error) {
	if cfg.AuthDisabled {
		slog.Warn("AUTH_DISABLED is set, every request runs as the local user", "owner_id", auth.LocalOwnerID)
		return auth.NewLocalVerifier(), nil
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required unless AUTH_DISABLED is set")
	}
	return auth.NewJWTVerifier(cfg.JWTSecret), nil
}

func newFunctionTools(searcher tools.Searcher, tasks tools.TaskCreator) ([]tools.FunctionTool, error) {
	var out []tools.FunctionTool
	if searcher != nil {
		search, err := tools.NewWebSearchTool(searcher)
		if err != nil {
			return nil, fmt.Errorf("failed to build %s tool: %w", tools.WebSearchName, err)
		}
		out = append(out, search)
	}
	createTask, err := tools.NewCreateTaskTool(tasks)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s tool: %w", tools.CreateTaskName, err)
	}
	return append(out, createTask), nil
}

// Run starts the server and blocks until it stops. The return value is the
// process exit code.
func Run() int {
	cfg, err := config.LoadConfig()
	if err != nil {
		// slog is not yet configured, so use the default logger for this critical error.
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}

	setupLogger(cfg.LogLevel, cfg.LogFormat)

	logConfigSource()

	app, err := NewApp(cfg)
	if err != nil {
		slog.Error("Failed to initialize application", "error", err)
		return 1
	}
	defer func() {
		if err := app.Close(context.Background()); err != nil {
			slog.Error("Failed to close conversation store", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("Starting server", "port", cfg.AppPort, "store", app.Store.Name(), "providers", app.Chain.Names())
		serveErr <- app.Server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			return 1
		}
	case <-ctx.Done():
		slog.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := app.Server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Graceful shutdown failed", "error", err)
			return 1
		}
	}

	return 0
}

func logConfigSource() {
	configFileUsed := viper.ConfigFileUsed()
	if configFileUsed != "" {
		slog.Info("Successfully loaded configuration from file.", "file", configFileUsed)
	} else {
		slog.Info("Configuration file not found. Using environment variables and defaults.")
	}
}

func parseLevel(logLevel string) slog.Level {
	switch strings.ToUpper(logLevel) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setupLogger installs the default logger: JSON for deployments, colored
// text when LOG_FORMAT is "text".
func setupLogger(logLevel, logFormat string) {
	level := parseLevel(logLevel)

	var handler slog.Handler
	if strings.EqualFold(logFormat, "text") {
		handler = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	slog.SetDefault(slog.New(handler))
}
