package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"

	"vending-agent/internal/adapters/cli"
	"vending-agent/internal/adapters/repl"
	"vending-agent/internal/ai"
	"vending-agent/internal/app"
	"vending-agent/internal/config"
	"vending-agent/internal/core"
	"vending-agent/internal/db"
	"vending-agent/internal/logx"

	"github.com/rs/zerolog/log"
)

type sessionConfig struct {
	// CustomerID is the customer the interactive session acts for.
	CustomerID int `envconfig:"CUSTOMER_ID" default:"1"`
}

func main() {
	logx.Init(*config.MustNew[logx.Config]("LOG"))
	ctx := context.Background()

	pool, err := db.NewPool(ctx, *config.MustNew[db.Config](""))
	if err != nil {
		log.Fatal().Err(err).Msg("Unable to connect to database")
	}
	defer pool.Close()

	agent, err := ai.NewAgent(*config.MustNew[ai.Config]("OPENAI"))
	if err != nil {
		log.Fatal().Err(err).Msg("Unable to build agent")
	}

	svc := app.NewAppService(
		core.NewCustomerService(pool),
		core.NewSodaService(pool),
		core.NewTransactionService(pool),
		agent,
	)

	if len(os.Args) > 1 {
		if err := cli.Run(ctx, svc, os.Stdout, os.Args[1:]); err != nil {
			if errors.Is(err, cli.ErrUsage) {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(2)
			}
			log.Fatal().Err(err).Str("cause", string(core.CauseOf(err))).Msg("command failed")
		}
		return
	}

	session := config.MustNew[sessionConfig]("VENDING")
	if err := repl.Run(ctx, svc, session.CustomerID, bufio.NewReader(os.Stdin), os.Stdout); err != nil {
		log.Fatal().Err(err).Msg("repl")
	}
}
