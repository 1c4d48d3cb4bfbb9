package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/matryer/way"
	log "github.com/sirupsen/logrus"
	"github.com/zucenko/pingwin/server"
)

const (
	timeout         = 10 * time.Second
	shutdownTimeout = 5 * time.Second
)

type Server struct {
	router  *way.Router
	Session *server.Session
}

// Serve runs one game and returns once it is over or ctx is cancelled.
func Serve(ctx context.Context, cfg *Config) error {
	session, err := server.NewSession(cfg.session())
	if err != nil {
		return err
	}
	s := &Server{Session: session}
	s.routes()

	listener, err := net.Listen("tcp", net.JoinHostPort(cfg.bind, strconv.Itoa(cfg.port)))
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	defer listener.Close()

	errs := make(chan error, 3)
	var servers []*http.Server

	if cfg.httpPort != 0 {
		srv, err := startHttp(cfg.bind, cfg.httpPort, s.router, errs)
		if err != nil {
			return err
		}
		log.Infof("Listening for websocket players on ws://%s%s", srv.Addr, URI_WS)
		servers = append(servers, srv)
	}
	if cfg.adminPort != 0 {
		srv, err := startHttp(cfg.bind, cfg.adminPort, adminRoutes(cfg, session), errs)
		if err != nil {
			shutdown(servers, session)
			return err
		}
		log.Infof("Admin endpoints on http://%s", srv.Addr)
		servers = append(servers, srv)
	}

	go func() {
		if err := session.ServeListener(listener); err != nil {
			errs <- fmt.Errorf("accept: %w", err)
		}
	}()

	log.Infof("pingwin-server v%s waiting for %d players on level %q.", releaseVersion, cfg.players, cfg.level)

	select {
	case <-ctx.Done():
		log.Info("Interrupted, shutting down.")
	case <-session.Done():
		log.Info("Game over, shutting down.")
	case err = <-errs:
		log.Errorf("Server failed: %v", err)
	}

	listener.Close()
	shutdown(servers, session)
	return err
}

// startHttp binds synchronously so a busy port fails startup.
func startHttp(bind string, port int, handler http.Handler, errs chan<- error) (*http.Server, error) {
	srv := &http.Server{
		Addr:              net.JoinHostPort(bind, strconv.Itoa(port)),
		Handler:           handler,
		ReadHeaderTimeout: timeout,
	}
	l, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen: %w", err)
	}
	go func() {
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()
	return srv, nil
}

func shutdown(servers []*http.Server, session *server.Session) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for _, srv := range servers {
		if err := srv.Shutdown(ctx); err != nil {
			log.Warnf("HTTP shutdown: %v", err)
		}
	}
	if err := session.Shutdown(ctx); err != nil {
		log.Warnf("Session shutdown: %v", err)
	}
}
