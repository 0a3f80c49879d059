package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/draftden/draftden/internal/logging"
)

// Srv wraps a bound listener so port errors surface at boot instead of
// inside the serve goroutine.
type Srv struct {
	listener net.Listener
}

func New(port string) (*Srv, error) {
	listener, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return nil, fmt.Errorf("listen on :%s: %w", port, err)
	}

	return &Srv{listener: listener}, nil
}

func (s *Srv) Addr() string {
	return s.listener.Addr().String()
}

// ServeHTTP serves until the context is done, then drains in-flight
// requests before returning.
func (s *Srv) ServeHTTP(ctx context.Context, srv *http.Server) error {
	logger := logging.FromContext(ctx)

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("http server listening on %s", s.Addr())
		errCh <- srv.Serve(s.listener)
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Infof("http server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}

func HandleHealth(ctx context.Context) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
}
