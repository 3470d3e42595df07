package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mazekids/circuit/apps/go-server/internal/httpserver"
	"github.com/mazekids/circuit/apps/go-server/internal/puzzle"
	"github.com/mazekids/circuit/apps/go-server/internal/store"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	if err := puzzle.InitPresets(); err != nil {
		log.Fatal().Err(err).Msg("failed to load difficulty presets")
	}

	db, err := openDB(getEnv("DB_PATH", "./data/circuit.db"))
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	if err := migrate(db); err != nil {
		log.Fatal().Err(err).Msg("apply migrations")
	}

	mem := store.NewMemoryStore()
	srv := httpserver.New(mem, db)
	port := getEnv("PORT", "5175")
	log.Info().Str("port", port).Msg("starting go-server")
	if err := srv.Start(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
