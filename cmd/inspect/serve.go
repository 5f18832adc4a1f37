package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/iocgo/injector"
	"github.com/iocgo/injector/cobra"
	"github.com/iocgo/injector/debug"
	"github.com/iocgo/injector/env"
	"github.com/iocgo/injector/errors"
	"github.com/iocgo/injector/examples/counter"
	"github.com/iocgo/injector/inited"
)

type serve struct {
	Config string `cobra:"config,per" short:"c" usage:"yaml config file"`
	Addr   string `cobra:"addr" short:"a" usage:"listen address, overrides server.addr"`
}

func (s *serve) Run(cmd *cobra.Command, _ []string) (err error) {
	ctx := errors.New(nil)
	defer ctx.Recover(&err)

	environment := errors.Try1(ctx, func() (*env.Environment, error) { return env.New(s.Config) })
	logger := errors.Try1(ctx, func() (*zap.Logger, error) { return newLogger(environment) })
	defer func() { _ = logger.Sync() }()

	addr := s.Addr
	if addr == "" {
		addr = environment.GetString("server.addr")
	}
	gin.SetMode(environment.GetString("server.mode"))

	container := injector.NewContainer()
	registerObjects(container)

	server := &http.Server{
		Addr:              addr,
		Handler:           debug.New(container, logger).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	inited.AddExited(func(...interface{}) {
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if sErr := server.Shutdown(shutdown); sErr != nil {
			logger.Warn("shutdown", zap.Error(sErr))
		}
		if sErr := container.Shutdown(); sErr != nil {
			logger.Warn("container shutdown", zap.Error(sErr))
		}
	})
	done := inited.Initialized(cmd.Context(), false)

	logger.Info("inspector listening",
		zap.String("addr", addr),
		zap.String("config", environment.Path()),
		zap.Strings("objects", container.Names()))
	if err = server.ListenAndServe(); err == http.ErrServerClosed {
		// Shutdown returns before the remaining exit hooks have run
		<-done
		err = nil
	}
	return
}

func newLogger(environment *env.Environment) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if environment.GetBool("log.development") {
		config = zap.NewDevelopmentConfig()
	}

	level, err := zap.ParseAtomicLevel(environment.GetString("log.level"))
	if err != nil {
		return nil, err
	}
	config.Level = level
	return config.Build()
}

func registerObjects(container *injector.Container) {
	injector.ProvideObject(container, "requests", func() (*counter.Counter, error) {
		return counter.New("requests", 1), nil
	})
	injector.ProvideObject(container, "errors", func() (*counter.Counter, error) {
		return counter.New("errors", 1), nil
	})
	container.Alias("default", "requests")
}
