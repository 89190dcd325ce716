// migrate applies the embedded SQL migrations to DATABASE_URL.
//
// Usage: go run ./cmd/migrate
package main

import (
	"context"

	"vending-agent/internal/config"
	"vending-agent/internal/db"
	"vending-agent/internal/logx"
	"vending-agent/migrations"

	"github.com/rs/zerolog/log"
)

func main() {
	logx.Init(*config.MustNew[logx.Config]("LOG"))
	ctx := context.Background()

	pool, err := db.NewPool(ctx, *config.MustNew[db.Config](""))
	if err != nil {
		log.Fatal().Err(err).Msg("[CONNECT] failed")
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool, migrations.FS); err != nil {
		log.Fatal().Err(err).Msg("[MIGRATE] failed")
	}
	log.Info().Msg("[DONE] All migrations processed.")
}
