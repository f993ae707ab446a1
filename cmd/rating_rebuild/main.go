// Command rating_rebuild recomputes every professional rating summary from the
// live review set. Safe to run at any time.
package main

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"

	"servicematch/internal/database"
	"servicematch/internal/domain/rating"
	"servicematch/internal/logger"
)

func main() {
	_ = godotenv.Load()
	logger.Init(os.Getenv("APP_ENV"))

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		logger.Fatal("DATABASE_URL is required")
	}

	db, err := database.Connect(databaseURL)
	if err != nil {
		logger.Fatal("db connect failed", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	start := time.Now()
	n, err := rating.NewAggregator(db).RecomputeAll(ctx)
	if err != nil {
		logger.Fatal("rating rebuild failed", "error", err)
	}
	logger.Info("rating rebuild completed", "summaries", n, "duration", time.Since(start))
}
