// Package app ties configuration, routing and the server together into
// one application lifecycle with signal-driven shutdown.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/supranim/supranim-sub001/config"
	"github.com/supranim/supranim-sub001/core/http2"
	"github.com/supranim/supranim-sub001/core/router"
	"github.com/supranim/supranim-sub001/core/server"
)

// App is the application instance: one router built during start-up
// registration, one event-loop server, and optionally an h2c side
// listener sharing the same dispatch path.
type App struct {
	cfg    *config.Config
	log    zerolog.Logger
	router *router.Router
	srv    *server.Server
	h2     *http2.Server
}

// New creates an application instance.
func New(cfg *config.Config) *App {
	return &App{
		cfg:    cfg,
		log:    newLogger(cfg),
		router: router.New(),
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	var log zerolog.Logger
	if cfg.Pretty {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		log = zerolog.New(os.Stderr)
	}
	return log.Level(level).With().Timestamp().Logger()
}

// Router returns the route table for start-up registration. Routes must
// not be added after Run; the table is shared read-only by the workers.
func (a *App) Router() *router.Router { return a.router }

// Log returns the application logger.
func (a *App) Log() zerolog.Logger { return a.log }

// Server returns the event-loop server, constructing it on first use.
func (a *App) Server() *server.Server {
	if a.srv == nil {
		a.srv = server.New(a.cfg, a.router, a.log)
	}
	return a.srv
}

// Run starts the server (and the h2c side listener when configured) and
// blocks until a termination signal arrives.
func (a *App) Run() error {
	srv := a.Server()

	if a.cfg.H2CPort > 0 {
		a.h2 = http2.NewServer(fmt.Sprintf(":%d", a.cfg.H2CPort), srv.Dispatcher(), a.log)
		go func() {
			if err := a.h2.Run(); err != nil {
				a.log.Error().Err(err).Msg("h2c listener failed")
			}
		}()
	}

	go a.awaitSignal()
	return srv.Run()
}

func (a *App) awaitSignal() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	a.log.Info().Str("signal", sig.String()).Msg("shutting down")

	if a.h2 != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		a.h2.Shutdown(ctx)
	}
	a.srv.Stop()
}
