// Package main is the entry point for the pitchperfect API server.
//
// The same binary runs as a plain HTTP server locally and behind API Gateway
// on AWS Lambda; AWS_LAMBDA_FUNCTION_NAME selects the mode.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
	"github.com/joho/godotenv"

	"github.com/sakif/pitchperfect/internal/config"
	"github.com/sakif/pitchperfect/internal/server"
)

func main() {
	inLambda := os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""

	// === 1. LOCAL ENVIRONMENT ===
	// .env files are a development convenience; Lambda gets its environment
	// from the function configuration. Missing files are fine.
	if !inLambda {
		_ = godotenv.Load(".env", ".env.local")
	}

	// === 2. CONFIGURATION ===
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// === 3. LOGGING ===
	level, _ := config.ParseLevel(cfg.LogLevel) // validated by Load
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	if cfg.JWTSecret == config.DevJWTSecret {
		logger.Warn("PITCH_JWT_SECRET not set, using the development secret")
	}

	// === 4. CREATE AND START THE SERVER ===
	srv, err := server.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if inLambda {
		logger.Info("starting in Lambda mode")
		adapter := httpadapter.New(srv.Handler())
		lambda.Start(adapter.ProxyWithContext)
		return
	}

	// Start blocks until the server is shut down (via Ctrl+C or SIGTERM).
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
