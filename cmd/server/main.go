package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	webAdapter "vending-agent/internal/adapters/web"
	"vending-agent/internal/ai"
	"vending-agent/internal/app"
	"vending-agent/internal/config"
	"vending-agent/internal/core"
	"vending-agent/internal/db"
	"vending-agent/internal/logx"

	"github.com/rs/zerolog/log"
)

func main() {
	logx.Init(*config.MustNew[logx.Config]("LOG"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbCfg := config.MustNew[db.Config]("")
	aiCfg := config.MustNew[ai.Config]("OPENAI")
	webCfg := config.MustNew[webAdapter.Config]("")

	pool, err := db.NewPool(ctx, *dbCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("database")
	}
	defer pool.Close()

	agent, err := ai.NewAgent(*aiCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("agent")
	}

	svc := app.NewAppService(
		core.NewCustomerService(pool),
		core.NewSodaService(pool),
		core.NewTransactionService(pool),
		agent,
	)

	srv := &http.Server{
		Addr:              ":" + webCfg.Port,
		Handler:           webAdapter.NewHandler(ctx, svc, *webCfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown")
		}
	}()

	log.Info().Str("addr", srv.Addr).Bool("auth_required", webCfg.AuthRequired).Msg("server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server")
	}
	log.Info().Msg("server stopped")
}
