package db

import (
	"context"
	"time"

	"shell_game/internal/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect opens the pool and pings it. An empty dsn returns nil: the server
// then runs without round history.
func Connect(dsn string) *pgxpool.Pool {
	if dsn == "" {
		logger.Warn("DATABASE_URL is not set, round history disabled")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := pgxpool.New(ctx, dsn)
	if err != nil {
		logger.Fatal("failed to create database pool", "error", err)
	}

	if err := db.Ping(ctx); err != nil {
		logger.Fatal("failed to ping database", "error", err)
	}

	logger.Info("database connected")
	return db
}
