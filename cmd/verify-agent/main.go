// verify-agent interprets one request against a fixed catalog and prints
// the plan. It checks model credentials without touching the database.
//
// Usage: go run ./cmd/verify-agent ["<request>"]
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"vending-agent/internal/ai"
	"vending-agent/internal/config"
	"vending-agent/internal/core"
	"vending-agent/internal/logx"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

func main() {
	logx.Init(*config.MustNew[logx.Config]("LOG"))

	agent, err := ai.NewAgent(*config.MustNew[ai.Config]("OPENAI"))
	if err != nil {
		log.Fatal().Err(err).Msg("agent")
	}

	customer := core.Customer{ID: 1, Name: "Demo Customer", Email: "demo@example.com"}
	catalog := []core.Soda{
		{ID: 1, Name: "Coca-Cola", Price: decimal.RequireFromString("1.50"), Quantity: 40},
		{ID: 2, Name: "Sprite", Price: decimal.RequireFromString("1.25"), Quantity: 30},
	}

	request := "Hi! I'd like two cokes, and please show me what I bought before."
	if len(os.Args) > 1 {
		request = strings.Join(os.Args[1:], " ")
	}

	fmt.Printf("INTERPRETING: %s\n", request)
	actions, err := agent.InterpretQuery(context.Background(), customer, catalog, request)
	if err != nil {
		log.Fatal().Err(err).Msg("interpret")
	}

	fmt.Printf("\n--- PLAN (%d actions) ---\n", len(actions))
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(actions); err != nil {
		log.Fatal().Err(err).Msg("encode")
	}
}
