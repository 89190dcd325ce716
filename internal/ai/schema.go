package ai

import (
	"bytes"
	"encoding/json"
	"fmt"

	"vending-agent/internal/core"

	"github.com/invopop/jsonschema"
	sjsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

const (
	planSchemaName = "user_actions"
	planSchemaURL  = "mem://vending-agent/user_actions.json"
)

func generateSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
		Anonymous:                 true,
	}
	var v core.ActionPlan
	return reflector.Reflect(v)
}

// PlanSchema returns the strict JSON schema of core.ActionPlan in both its
// encoded and map forms.
func PlanSchema() ([]byte, map[string]any, error) {
	schemaJSON, err := json.Marshal(generateSchema())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	var schemaMap map[string]any
	if err := json.Unmarshal(schemaJSON, &schemaMap); err != nil {
		return nil, nil, fmt.Errorf("failed to unmarshal schema to map: %w", err)
	}
	return schemaJSON, schemaMap, nil
}

// planValidator checks raw model output against the plan schema before it
// is decoded. Strict mode already enforces this on OpenAI; compatible
// gateways set through OPENAI_BASE_URL may not.
type planValidator struct {
	schema *sjsonschema.Schema
}

func newPlanValidator(schemaJSON []byte) (*planValidator, error) {
	c := sjsonschema.NewCompiler()
	c.Draft = sjsonschema.Draft2020
	if err := c.AddResource(planSchemaURL, bytes.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("add plan schema: %w", err)
	}
	schema, err := c.Compile(planSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile plan schema: %w", err)
	}
	return &planValidator{schema: schema}, nil
}

func (v *planValidator) Validate(raw []byte) error {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("output is not JSON: %w", err)
	}
	if err := v.schema.Validate(doc); err != nil {
		return fmt.Errorf("output violates plan schema: %w", err)
	}
	return nil
}
