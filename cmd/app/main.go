package main

import (
	"context"
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/wichananm65/family-tree-backend/internal/config"
	"github.com/wichananm65/family-tree-backend/internal/logger"
	"github.com/wichananm65/family-tree-backend/internal/server"
	"github.com/wichananm65/family-tree-backend/internal/user"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	db := mustOpenDB(cfg.DatabaseURL)
	defer db.Close()

	if err := user.EnsureSchema(context.Background(), db); err != nil {
		log.Fatal("ensure schema", zap.Error(err))
	}

	userRepo := user.NewPostgresRepository(db)
	userService := user.NewService(userRepo)
	userHandler := user.NewHandler(userService, log)

	app := server.New(userHandler, server.Options{})

	log.Info("server running", zap.String("url", "http://localhost"+cfg.Addr))
	if err := app.Listen(cfg.Addr); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func mustOpenDB(dbURL string) *sql.DB {
	if dbURL == "" {
		panic("DATABASE_URL is not set")
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		panic(err)
	}

	if err := db.Ping(); err != nil {
		panic(err)
	}

	return db
}
