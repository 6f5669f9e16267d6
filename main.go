package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"incomepredict/config"
	qhttp "incomepredict/http"
	"incomepredict/logger"
	"incomepredict/ml"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default $INCOME_CONFIG or config.yaml)")
	flag.Parse()

	// 1. Load config
	cfg, err := config.Load(config.ResolvePath(*configPath))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Build logger
	logger, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// 3. Load artifacts; the process cannot serve without them
	pipeline, err := ml.LoadPipeline(cfg.Transformer.Path, cfg.Model.Type, cfg.Model.Path, ml.PipelineConfig{
		Range:          cfg.Display.Range(),
		ProgressSource: cfg.Display.Progress,
	})
	if err != nil {
		logger.Fatal("loading artifacts", zap.Error(err))
	}
	if cfg.Display.Range().Degenerate() {
		logger.Warn("display income range is degenerate, progress will be unavailable",
			zap.Float64("income_min", cfg.Display.IncomeMin))
	}
	logger.Info("artifacts loaded",
		zap.String("model_type", cfg.Model.Type),
		zap.String("model_path", cfg.Model.Path),
		zap.String("transformer_path", cfg.Transformer.Path),
	)

	// 4. Start HTTP server
	handlers := qhttp.NewHandlers(pipeline, cfg.Display.Currency, logger)
	server := qhttp.NewServer(qhttp.ServerConfig{
		Port:           cfg.Http.Port,
		Timeout:        cfg.Http.Timeout,
		AllowedOrigins: cfg.Http.AllowedOrigins,
	}, handlers, logger)
	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// 5. Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	if err := server.Stop(); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("exiting")
}
