// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Command reactord bootstraps and runs the reactor: it loads
// config.yaml from the working directory if present, merges it over
// built-in defaults, initializes the root logger, and serves until
// SIGINT/SIGTERM.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/momentics/reactord/config"
	"github.com/momentics/reactord/log"
	"github.com/momentics/reactord/server"
)

const configPath = "config.yaml"

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "reactord: loading configuration: %v\n", err)
		return 1
	}

	log.Init(toLoggerSpecs(cfg.Loggers))
	logger := log.Root()

	r, err := server.New(server.Config{
		Port:        cfg.Server.Port,
		AliveTime:   time.Duration(cfg.Server.AliveTime) * time.Second,
		AssetFolder: cfg.Server.AssetFolder,
	}, logger)
	if err != nil {
		logger.Errorf("constructing reactor: %v", err)
		return 1
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() { errCh <- r.Start() }()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Errorf("fatal startup error: %v", err)
			return 1
		}
		return 0
	case s := <-sig:
		logger.Infof("received signal %v, shutting down", s)
		r.Close()
		return 0
	}
}

func toLoggerSpecs(loggers []config.LoggerConfig) []log.LoggerSpec {
	specs := make([]log.LoggerSpec, len(loggers))
	for i, l := range loggers {
		appenders := make([]log.AppenderSpec, len(l.Appenders))
		for j, a := range l.Appenders {
			appenders[j] = log.AppenderSpec{Type: a.Type, File: a.File, Formatter: a.Formatter}
		}
		specs[i] = log.LoggerSpec{
			Name:      l.Name,
			Level:     l.Level,
			Capacity:  l.Capacity,
			Formatter: l.Formatter,
			Appenders: appenders,
		}
	}
	return specs
}
