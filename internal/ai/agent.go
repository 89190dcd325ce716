package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"vending-agent/internal/core"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultMaxAttempts    = 3
	defaultAttemptTimeout = 30 * time.Second
)

var tracer = otel.Tracer("vending-agent/internal/ai")

// Config is loaded with the OPENAI prefix.
type Config struct {
	APIKey         string        `envconfig:"API_KEY" required:"true"`
	BaseURL        string        `envconfig:"BASE_URL"`
	Model          string        `envconfig:"MODEL" default:"gpt-4o"`
	MaxAttempts    int           `envconfig:"MAX_ATTEMPTS" default:"3"`
	AttemptTimeout time.Duration `envconfig:"ATTEMPT_TIMEOUT" default:"30s"`
}

// AgentService turns free text into an ordered list of typed actions.
type AgentService interface {
	InterpretQuery(ctx context.Context, customer core.Customer, catalog []core.Soda, text string) ([]core.Action, error)
}

type Agent struct {
	gen            StructuredGenerator
	schema         map[string]any
	validator      *planValidator
	maxAttempts    int
	attemptTimeout time.Duration
	newBackOff     func() backoff.BackOff
}

type Option func(*Agent)

func WithMaxAttempts(n int) Option {
	return func(a *Agent) {
		if n > 0 {
			a.maxAttempts = n
		}
	}
}

func WithAttemptTimeout(d time.Duration) Option {
	return func(a *Agent) {
		if d > 0 {
			a.attemptTimeout = d
		}
	}
}

// WithBackOff sets the delay policy between attempts.
func WithBackOff(f func() backoff.BackOff) Option {
	return func(a *Agent) { a.newBackOff = f }
}

// NewAgent builds an Agent that talks to the OpenAI Responses API.
func NewAgent(cfg Config) (*Agent, error) {
	return NewAgentWithGenerator(NewResponsesGenerator(cfg),
		WithMaxAttempts(cfg.MaxAttempts),
		WithAttemptTimeout(cfg.AttemptTimeout),
	)
}

func NewAgentWithGenerator(gen StructuredGenerator, opts ...Option) (*Agent, error) {
	schemaJSON, schemaMap, err := PlanSchema()
	if err != nil {
		return nil, err
	}
	validator, err := newPlanValidator(schemaJSON)
	if err != nil {
		return nil, err
	}

	a := &Agent{
		gen:            gen,
		schema:         schemaMap,
		validator:      validator,
		maxAttempts:    defaultMaxAttempts,
		attemptTimeout: defaultAttemptTimeout,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 250 * time.Millisecond
			b.MaxInterval = 2 * time.Second
			return b
		},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// InterpretQuery asks the model for a plan and retries on any failure
// (transport, malformed output, schema or validation errors) up to the
// attempt bound. Each attempt runs under its own timeout. The terminal
// error has cause unknown.
func (a *Agent) InterpretQuery(ctx context.Context, customer core.Customer, catalog []core.Soda, text string) ([]core.Action, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, core.Validationf("query text is required")
	}

	ctx, span := tracer.Start(ctx, "ai.InterpretQuery")
	defer span.End()

	req := GenerateRequest{
		Instructions:      buildInstructions(customer, catalog),
		Input:             text,
		SchemaName:        planSchemaName,
		SchemaDescription: "An ordered list of vending machine actions derived from the customer's message",
		Schema:            a.schema,
	}

	attempts := 0
	actions, err := backoff.Retry(ctx, func() ([]core.Action, error) {
		attempts++
		actions, err := a.attempt(ctx, req)
		if err != nil {
			span.AddEvent("attempt failed", trace.WithAttributes(
				attribute.Int("attempt", attempts),
				attribute.String("error", err.Error()),
			))
			log.Ctx(ctx).Warn().Err(err).
				Int("attempt", attempts).
				Int("max_attempts", a.maxAttempts).
				Msg("plan interpretation attempt failed")
			return nil, err
		}
		return actions, nil
	},
		backoff.WithBackOff(a.newBackOff()),
		backoff.WithMaxTries(uint(a.maxAttempts)),
	)
	span.SetAttributes(attribute.Int("ai.attempts", attempts))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "interpretation failed")
		return nil, core.Unknown(err, "could not interpret request after %d attempts", attempts)
	}

	span.SetAttributes(attribute.Int("ai.actions", len(actions)))
	return actions, nil
}

func (a *Agent) attempt(ctx context.Context, req GenerateRequest) ([]core.Action, error) {
	ctx, cancel := context.WithTimeout(ctx, a.attemptTimeout)
	defer cancel()

	raw, err := a.gen.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	return a.parse([]byte(raw))
}

func (a *Agent) parse(raw []byte) ([]core.Action, error) {
	if err := a.validator.Validate(raw); err != nil {
		return nil, err
	}

	var plan core.ActionPlan
	if err := json.Unmarshal(raw, &plan); err != nil {
		return nil, fmt.Errorf("failed to parse plan: %w", err)
	}

	plan.Normalize()
	if err := plan.Validate(); err != nil {
		return nil, fmt.Errorf("plan validation failed: %w", err)
	}
	return plan.ToActions()
}
