package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"

	_ "github.com/akolanti/newschat/cmd/api/docs"
	"github.com/akolanti/newschat/internal/config"
	"github.com/akolanti/newschat/internal/handlers"
	"github.com/akolanti/newschat/internal/middleware"
	"github.com/akolanti/newschat/pkg/logger_i"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

var (
	server  *http.Server
	_logger = logger_i.NewLogger("Server")
	crashed = make(chan struct{}) //closed when ListenAndServe fails
)

type ShutdownParams struct {
	GracefulShutdown chan os.Signal
	StopExecution    chan bool
	WorkerStop       chan bool
	Group            *sync.WaitGroup
	CloseServices    context.CancelFunc
}

// NewRouter builds the public and protected routes. mcpHandler may be nil.
func NewRouter(mcpHandler http.Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Trace-Id", "Mcp-Session-Id"},
		ExposedHeaders:   []string{"X-Trace-Id", "X-Job-Id", "Mcp-Session-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	//public
	initSwagger(r)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", handlers.HealthzHandler)

	//protected
	r.Post("/chat", middleware.ChatHandler)
	r.Get("/chat/{chatId}/history", middleware.HistoryHandler)
	r.Delete("/chat/{chatId}", middleware.DeleteChatHandler)
	r.Post("/summarize", middleware.SummarizeHandler)
	r.Post("/followup", middleware.FollowupHandler)
	r.Get("/status/{id}", middleware.GetStatusHandler)
	if mcpHandler != nil {
		r.Handle("/mcp", middleware.Wrap(mcpHandler.ServeHTTP))
	}
	return r
}

func initSwagger(r *chi.Mux) {
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/index.html", http.StatusMovedPermanently)
	})
	r.Get("/swagger/*", httpSwagger.WrapHandler)
}

func CreateServer(listenAddr string, mcpHandler http.Handler) {
	server = &http.Server{
		Addr:         listenAddr,
		Handler:      NewRouter(mcpHandler),
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	_logger.Info("Server is listening at", "address", listenAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		_logger.Error("Server crashed", "error", err, "addr", listenAddr)
		close(crashed)
	}
}

func ShutDownHandler(shutdownParams ShutdownParams) {
	select {
	case state := <-shutdownParams.GracefulShutdown:
		_logger.Info("Server is shutting down", "signal", state.String())
	case <-crashed:
		_logger.Info("Server is shutting down after a crash")
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownContextTimeout)
	defer cancel()

	done := make(chan struct{})

	go func() {
		if server != nil {
			server.SetKeepAlivesEnabled(false)
			if err := server.Shutdown(ctx); err != nil {
				_logger.Error("Could not shutdown gracefully", "error", err)
			}
		}

		//close workers
		close(shutdownParams.WorkerStop)
		shutdownParams.Group.Wait()
		shutdownParams.CloseServices()
		close(done)
	}()

	select {
	case <-done:
		_logger.Info("Graceful shutdown complete")
	case <-ctx.Done():
		_logger.Error("Forced shutdown, workers did not drain in time")
	}
	close(shutdownParams.StopExecution)
}
