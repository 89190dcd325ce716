// seed inserts a demo catalog and a demo customer. Existing rows are left alone,
// so it is safe to run repeatedly.
//
// Usage: go run ./cmd/seed
package main

import (
	"context"

	"vending-agent/internal/config"
	"vending-agent/internal/core"
	"vending-agent/internal/db"
	"vending-agent/internal/logx"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type seedConfig struct {
	Name     string `envconfig:"CUSTOMER_NAME" default:"Demo Customer"`
	Email    string `envconfig:"CUSTOMER_EMAIL" default:"demo@example.com"`
	Password string `envconfig:"CUSTOMER_PASSWORD" default:"vending-demo"`
}

var catalog = []core.SodaInput{
	{Name: "Coca-Cola", Price: decimal.RequireFromString("1.50"), Quantity: 40},
	{Name: "Sprite", Price: decimal.RequireFromString("1.25"), Quantity: 30},
	{Name: "Fanta", Price: decimal.RequireFromString("1.25"), Quantity: 30},
	{Name: "Pepsi", Price: decimal.RequireFromString("1.40"), Quantity: 25},
}

func main() {
	logx.Init(*config.MustNew[logx.Config]("LOG"))
	cfg := config.MustNew[seedConfig]("SEED")
	ctx := context.Background()

	pool, err := db.NewPool(ctx, *config.MustNew[db.Config](""))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect")
	}
	defer pool.Close()

	sodas := core.NewSodaService(pool)
	for _, input := range catalog {
		if err := seedSoda(ctx, sodas, input); err != nil {
			log.Fatal().Err(err).Str("soda", input.Name).Msg("Failed to seed soda")
		}
	}

	customers := core.NewCustomerService(pool)
	if err := seedCustomer(ctx, customers, core.CustomerInput{Name: cfg.Name, Email: cfg.Email, Password: cfg.Password}); err != nil {
		log.Fatal().Err(err).Str("email", cfg.Email).Msg("Failed to seed customer")
	}

	log.Info().Msg("[DONE] Seed data in place.")
}

func seedSoda(ctx context.Context, sodas core.SodaService, input core.SodaInput) error {
	existing, err := sodas.GetSodaByName(ctx, input.Name)
	if err == nil {
		log.Info().Int("id", existing.ID).Str("soda", existing.Name).Msg("soda exists, skipped")
		return nil
	}
	if core.CauseOf(err) != core.CauseNotFound {
		return err
	}
	created, err := sodas.CreateSoda(ctx, input)
	if err != nil {
		return err
	}
	log.Info().Int("id", created.ID).Str("soda", created.Name).Msg("soda created")
	return nil
}

func seedCustomer(ctx context.Context, customers core.CustomerService, input core.CustomerInput) error {
	existing, err := customers.GetCustomerByEmail(ctx, input.Email)
	if err == nil {
		log.Info().Int("id", existing.ID).Str("email", existing.Email).Msg("customer exists, skipped")
		return nil
	}
	if core.CauseOf(err) != core.CauseNotFound {
		return err
	}
	created, err := customers.CreateCustomer(ctx, input)
	if err != nil {
		return err
	}
	log.Info().Int("id", created.ID).Str("email", created.Email).Msg("customer created")
	return nil
}
