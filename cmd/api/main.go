package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"voice-coach-go/internal/config"
	"voice-coach-go/internal/customer"
	"voice-coach-go/internal/dataset"
	"voice-coach-go/internal/llm"
	"voice-coach-go/internal/logger"
	"voice-coach-go/internal/scenario"
	"voice-coach-go/internal/server"
)

func main() {
	_ = godotenv.Load() // loads .env

	cfgFile := flag.String("config", "", "optional config file")
	flag.Parse()

	log := logger.New()
	log.WithField("service", "voice-coach-go").Info("starting service")

	cfg, err := config.Load(*cfgFile)
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}
	log.Logger.SetLevel(logger.ParseLevel(cfg.LogLevel))

	// load scenario library into memory
	var library []scenario.Scenario
	if cfg.DatasetPath != "" {
		log.WithField("dataset_path", cfg.DatasetPath).Info("loading scenario library")
		library, err = dataset.LoadScenarios(cfg.DatasetPath, log.Entry)
		if err != nil {
			log.WithError(err).Fatal("failed to load scenario library")
		}
		log.WithField("scenarios", len(library)).Info("scenario library loaded")
	} else {
		log.Warn("DATASET_PATH not set, using the default scenario")
	}

	var gen customer.Generator
	if cfg.UseGenerator() {
		gen = llm.New(cfg.LLMClientConfig(), llm.WithLogger(log.Entry))
		log.WithField("mock", cfg.LLM.Mock).Info("llm responder enabled")
	}

	srv := server.New(server.Options{
		Logger:    log,
		Scenarios: library,
		Limit:     cfg.SessionLimit,
		Retention: cfg.Retention,
		Seed:      cfg.Seed(),
		Generator: gen,
		APIStatus: cfg.APIStatus(),
	})

	addr := fmt.Sprintf(":%s", cfg.Port)
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      srv.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	log.WithField("addr", addr).Info("listening")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Fatal("server terminated")
	}
	log.Info("server stopped")
}
