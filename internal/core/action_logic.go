package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Normalize cleans up model output: trims strings, lower-cases tags and
// applies the purchase quantity default.
func (p *ActionPlan) Normalize() {
	for i := range p.Actions {
		a := &p.Actions[i]
		a.Intent = Intent(strings.ToLower(strings.TrimSpace(string(a.Intent))))
		a.Operation = InventoryOperation(strings.ToLower(strings.TrimSpace(string(a.Operation))))
		a.SodaName = normalizeName(a.SodaName)
		a.Message = strings.TrimSpace(a.Message)
		a.Soda.Name = normalizeName(a.Soda.Name)
		a.Soda.Price = strings.TrimSpace(a.Soda.Price)
		if strings.EqualFold(a.Soda.Price, "null") {
			a.Soda.Price = ""
		}
		a.Customer.Name = strings.TrimSpace(a.Customer.Name)
		a.Customer.Email = normalizeEmail(a.Customer.Email)

		if a.Intent == IntentPurchase && a.Quantity == 0 {
			a.Quantity = 1
		}
	}
}

// Validate checks the structural rules of each action. Missing identifiers
// that only matter at execution time (soda id for update/remove, customer id
// for history) are not checked here.
func (p *ActionPlan) Validate() error {
	if len(p.Actions) == 0 {
		return Validationf("plan must contain at least one action")
	}
	for i, a := range p.Actions {
		if err := a.validate(); err != nil {
			return fmt.Errorf("action %d: %w", i, err)
		}
	}
	return nil
}

func (a PlannedAction) validate() error {
	switch a.Intent {
	case IntentPurchase:
		if a.SodaName == "" {
			return Validationf("purchase requires a soda name")
		}
		if a.Quantity < 1 {
			return Validationf("purchase quantity must be at least 1, got %d", a.Quantity)
		}
	case IntentManageInventory:
		switch a.Operation {
		case OperationAdd, OperationRead, OperationUpdate, OperationRemove:
		default:
			return Validationf("unknown inventory operation %q", a.Operation)
		}
		if a.Soda.Price != "" {
			if _, err := decimal.NewFromString(a.Soda.Price); err != nil {
				return Validationf("soda price %q is not a decimal", a.Soda.Price)
			}
		}
	case IntentTransactionHistory:
	case IntentGreeting, IntentUnsupported:
		if a.Message == "" {
			return Validationf("%s requires a message", a.Intent)
		}
	default:
		return Validationf("unknown intent %q", a.Intent)
	}
	return nil
}

// ToActions converts a normalized, validated plan into typed actions.
func (p *ActionPlan) ToActions() ([]Action, error) {
	actions := make([]Action, 0, len(p.Actions))
	for i, a := range p.Actions {
		action, err := a.typed()
		if err != nil {
			return nil, fmt.Errorf("action %d: %w", i, err)
		}
		actions = append(actions, action)
	}
	return actions, nil
}

func (a PlannedAction) typed() (Action, error) {
	switch a.Intent {
	case IntentPurchase:
		return PurchaseAction{SodaName: a.SodaName, Quantity: a.Quantity}, nil

	case IntentManageInventory:
		spec := SodaSpec{ID: a.Soda.ID, Name: a.Soda.Name}
		if spec.ID < 0 {
			spec.ID = 0
		}
		if a.Soda.Price != "" {
			price, err := decimal.NewFromString(a.Soda.Price)
			if err != nil {
				return nil, Validationf("soda price %q is not a decimal", a.Soda.Price)
			}
			spec.Price = &price
		}
		if a.Soda.Quantity >= 0 {
			qty := a.Soda.Quantity
			spec.Quantity = &qty
		}
		return InventoryAction{Operation: a.Operation, Soda: spec}, nil

	case IntentTransactionHistory:
		ref := CustomerRef{ID: a.Customer.ID, Name: a.Customer.Name, Email: a.Customer.Email}
		if ref.ID < 0 {
			ref.ID = 0
		}
		return HistoryAction{Customer: ref}, nil

	case IntentGreeting, IntentUnsupported:
		return GeneralAction{Kind: a.Intent, Message: a.Message}, nil
	}
	return nil, Validationf("unknown intent %q", a.Intent)
}
