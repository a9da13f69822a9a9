package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kbukum/pipegen/logger"
)

// Component is a piece of infrastructure with a start/stop lifecycle.
type Component interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// App runs components and hooks through startup, an optional blocking
// phase and graceful shutdown.
type App struct {
	Name    string
	Version string
	Logger  *logger.Logger

	gracefulTimeout time.Duration
	components      []Component
	started         []Component

	onStart []Hook
	onReady []Hook
	onStop  []Hook
}

// New creates an App.
func New(name, version string, opts ...Option) *App {
	o := resolveOptions(opts)
	a := &App{
		Name:            name,
		Version:         version,
		Logger:          o.logger,
		gracefulTimeout: 15 * time.Second,
	}
	if a.Logger == nil {
		a.Logger = logger.Get("bootstrap")
	}
	if o.gracefulTimeout != nil {
		a.gracefulTimeout = *o.gracefulTimeout
	}
	return a
}

// Register adds components. They start in registration order and stop in
// reverse.
func (a *App) Register(cs ...Component) {
	a.components = append(a.components, cs...)
}

// Run starts everything, blocks until a shutdown signal or ctx is done
// and then shuts down.
func (a *App) Run(ctx context.Context) error {
	if err := a.startup(ctx); err != nil {
		return err
	}
	a.Logger.Info("Application ready, waiting for shutdown signal")
	a.WaitForSignal(ctx)
	return a.stop()
}

// RunTask starts everything, runs task and shuts down when it returns. A
// shutdown signal cancels the task context.
func (a *App) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	if err := a.startup(ctx); err != nil {
		return err
	}

	taskCtx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	taskErr := task(taskCtx)
	if stopErr := a.stop(); stopErr != nil && taskErr == nil {
		return stopErr
	}
	return taskErr
}

func (a *App) startup(ctx context.Context) error {
	start := time.Now()
	a.Logger.Info("Starting application", map[string]interface{}{
		"name":    a.Name,
		"version": a.Version,
	})

	for _, c := range a.components {
		if err := c.Start(ctx); err != nil {
			a.rollback()
			return fmt.Errorf("starting %s: %w", c.Name(), err)
		}
		a.started = append(a.started, c)
		a.Logger.Debug("Component started", logger.Fields(logger.FieldComponent, c.Name()))
	}

	if err := runHooks(ctx, a.onStart); err != nil {
		a.rollback()
		return fmt.Errorf("onStart hook failed: %w", err)
	}
	if err := runHooks(ctx, a.onReady); err != nil {
		a.rollback()
		return fmt.Errorf("onReady hook failed: %w", err)
	}

	a.Logger.Info("Application started", map[string]interface{}{
		"components":  len(a.started),
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return nil
}

// rollback stops the components started so far after a failed startup.
func (a *App) rollback() {
	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()
	if err := a.stopComponents(ctx); err != nil {
		a.Logger.Warn("Rollback completed with errors", logger.Fields(logger.FieldError, err.Error()))
	}
}

// WaitForSignal blocks until SIGINT/SIGTERM or ctx is done.
func (a *App) WaitForSignal(ctx context.Context) os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.Logger.Info("Received shutdown signal", logger.Fields("signal", sig.String()))
		return sig
	case <-ctx.Done():
		a.Logger.Info("Context canceled, shutting down")
		return nil
	}
}

// Shutdown stops hooks and components. Use it when driving the lifecycle
// by hand.
func (a *App) Shutdown() error {
	return a.stop()
}

func (a *App) stop() error {
	a.Logger.Info("Shutting down application", logger.Fields("timeout", a.gracefulTimeout.String()))

	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	var errs []error
	if err := runHooks(ctx, a.onStop); err != nil {
		a.Logger.Error("OnStop hook error", logger.Fields(logger.FieldError, err.Error()))
		errs = append(errs, err)
	}
	if err := a.stopComponents(ctx); err != nil {
		a.Logger.Error("Shutdown completed with errors", logger.Fields(logger.FieldError, err.Error()))
		errs = append(errs, err)
	}

	a.Logger.Info("Application shutdown complete")
	return errors.Join(errs...)
}

func (a *App) stopComponents(ctx context.Context) error {
	var errs []error
	for i := len(a.started) - 1; i >= 0; i-- {
		c := a.started[i]
		if err := c.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("stopping %s: %w", c.Name(), err))
		}
	}
	a.started = nil
	return errors.Join(errs...)
}
