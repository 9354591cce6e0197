package main

import (
	"database/sql"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"trackvault/internal/logging"
	"trackvault/migrations"
)

func main() {
	logging.SetGlobalLogger(logging.New(logging.Config{
		Level:  os.Getenv("LOG_LEVEL"),
		Format: os.Getenv("LOG_FORMAT"),
	}))

	if len(os.Args) != 2 {
		log.Fatal().Msg("usage: migrate [up|down]")
	}
	dir, err := migrations.ParseDirection(os.Args[1])
	if err != nil {
		log.Fatal().Err(err).Msg("usage: migrate [up|down]")
	}

	_ = godotenv.Load(".env", "config/local.env")
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal().Msg("DATABASE_URL env var is required")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}

	if err := migrations.Run(db, dir); err != nil {
		log.Fatal().Err(err).Msg("run migrations")
	}
	log.Info().Str("direction", string(dir)).Msg("migrations applied")
}
