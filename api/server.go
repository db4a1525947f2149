package api

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"time"

	"eventsrag/answer"

	"go.uber.org/zap"
)

// Asker is the subset of the answerer the web form needs.
type Asker interface {
	AnswerWithContext(ctx context.Context, question string) (*answer.Result, error)
}

// Server serves the question form and a small JSON endpoint.
type Server struct {
	asker  Asker
	addr   string
	logger *zap.Logger
	page   *template.Template
}

func NewServer(asker Asker, addr string, logger *zap.Logger) *Server {
	return &Server{
		asker:  asker,
		addr:   addr,
		logger: logger,
		page:   template.Must(template.New("page").Parse(pageTemplate)),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.FormHandler)
	mux.HandleFunc("/api/ask", s.AskHandler)

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	return mux
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting web server", zap.String("addr", s.addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down web server")
		return srv.Shutdown(shutdownCtx)
	}
}
