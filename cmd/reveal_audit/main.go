// Command reveal_audit prints a per-day summary of phone reveal grants as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"

	"servicematch/internal/database"
	"servicematch/internal/domain/reveal"
	"servicematch/internal/logger"
)

func main() {
	days := flag.Int("days", 7, "number of days to include")
	flag.Parse()

	_ = godotenv.Load()
	logger.Init(os.Getenv("APP_ENV"))

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		logger.Fatal("DATABASE_URL is required")
	}
	if *days <= 0 {
		logger.Fatal("days must be > 0", "days", *days)
	}

	db, err := database.Connect(databaseURL, database.Options{Silent: true})
	if err != nil {
		logger.Fatal("db connect failed", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	now := time.Now().UTC()
	since := now.Truncate(24*time.Hour).AddDate(0, 0, -(*days - 1))
	stats, err := reveal.NewRepository(db).DailyReport(ctx, since, now)
	if err != nil {
		logger.Fatal("reveal report failed", "error", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(stats); err != nil {
		logger.Fatal("write report failed", "error", err)
	}
}
