package core

import (
	"context"
	"encoding/json"

	"github.com/shopspring/decimal"
)

type Intent string

const (
	IntentPurchase           Intent = "purchase"
	IntentManageInventory    Intent = "manage_inventory"
	IntentTransactionHistory Intent = "check_transactions_history"
	IntentGreeting           Intent = "greeting"
	IntentUnsupported        Intent = "unsupported"
)

type InventoryOperation string

const (
	OperationAdd    InventoryOperation = "add"
	OperationRead   InventoryOperation = "read"
	OperationUpdate InventoryOperation = "update"
	OperationRemove InventoryOperation = "remove"
	OperationNone   InventoryOperation = "none"
)

// ── Wire format ──────────────────────────────────────────────────────────────
//
// ActionPlan is what the model emits. Every field is required by the strict
// schema, so variant-specific fields carry sentinel values when unused. Use
// ActionPlan.ToActions to get the typed form.

type ActionPlan struct {
	Actions []PlannedAction `json:"actions" jsonschema_description:"The ordered list of actions that together satisfy the user's request. Use one entry per distinct request."`
}

type PlannedAction struct {
	Intent    Intent             `json:"intent" jsonschema:"enum=purchase,enum=manage_inventory,enum=check_transactions_history,enum=greeting,enum=unsupported" jsonschema_description:"What the user wants to do."`
	SodaName  string             `json:"soda_name" jsonschema_description:"purchase only: the soda name exactly as listed in Available Sodas, singular. Empty string for other intents."`
	Quantity  int                `json:"quantity" jsonschema_description:"purchase only: number of cans to buy, at least 1. Use 1 when the user gives no number. Use 0 for other intents."`
	Operation InventoryOperation `json:"operation" jsonschema:"enum=add,enum=read,enum=update,enum=remove,enum=none" jsonschema_description:"manage_inventory only: the inventory operation. Use 'none' for other intents."`
	Soda      PlannedSoda        `json:"soda" jsonschema_description:"manage_inventory only: the soda being managed."`
	Customer  PlannedCustomer    `json:"customer" jsonschema_description:"check_transactions_history only: the customer whose history is requested."`
	Message   string             `json:"message" jsonschema_description:"greeting and unsupported only: the reply shown to the user. Empty string for other intents."`
}

type PlannedSoda struct {
	ID       int    `json:"id" jsonschema_description:"The soda id from Available Sodas, or 0 when it is not listed there."`
	Name     string `json:"name" jsonschema_description:"The soda name, singular. Empty string when unknown."`
	Price    string `json:"price" jsonschema_description:"Unit price as an exact decimal string (e.g. '2.25'). Empty string when the user did not give one."`
	Quantity int    `json:"quantity" jsonschema_description:"Stock quantity. Use -1 when the user did not give one."`
}

type PlannedCustomer struct {
	ID    int    `json:"id" jsonschema_description:"The customer id from Current Customer, or 0 when it is not known."`
	Name  string `json:"name" jsonschema_description:"The customer name, or empty string."`
	Email string `json:"email" jsonschema_description:"The customer email, or empty string."`
}

// ── Typed actions ────────────────────────────────────────────────────────────

// Action is one step of a plan. The set of implementations is closed: each
// one dispatches to its own ActionHandler method, so adding a variant breaks
// every handler until it is handled.
type Action interface {
	Intent() Intent
	Dispatch(ctx context.Context, h ActionHandler) Result
}

// ActionHandler executes typed actions.
type ActionHandler interface {
	HandlePurchase(ctx context.Context, a PurchaseAction) Result
	HandleInventory(ctx context.Context, a InventoryAction) Result
	HandleHistory(ctx context.Context, a HistoryAction) Result
	HandleGeneral(ctx context.Context, a GeneralAction) Result
}

type PurchaseAction struct {
	SodaName string `json:"soda_name"`
	Quantity int    `json:"quantity"`
}

// SodaSpec describes the soda an inventory action targets. ID is zero when
// unknown; Price and Quantity are nil when the user did not give them.
type SodaSpec struct {
	ID       int              `json:"id,omitempty"`
	Name     string           `json:"name"`
	Price    *decimal.Decimal `json:"price,omitempty"`
	Quantity *int             `json:"quantity,omitempty"`
}

type InventoryAction struct {
	Operation InventoryOperation `json:"operation"`
	Soda      SodaSpec           `json:"soda"`
}

type CustomerRef struct {
	ID    int    `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

type HistoryAction struct {
	Customer CustomerRef `json:"customer"`
}

// GeneralAction covers greetings and unsupported requests. Kind is one of
// IntentGreeting or IntentUnsupported.
type GeneralAction struct {
	Kind    Intent `json:"-"`
	Message string `json:"message"`
}

func (PurchaseAction) Intent() Intent  { return IntentPurchase }
func (InventoryAction) Intent() Intent { return IntentManageInventory }
func (HistoryAction) Intent() Intent   { return IntentTransactionHistory }

func (a GeneralAction) Intent() Intent {
	if a.Kind == IntentGreeting {
		return IntentGreeting
	}
	return IntentUnsupported
}

func (a PurchaseAction) Dispatch(ctx context.Context, h ActionHandler) Result {
	return h.HandlePurchase(ctx, a)
}

func (a InventoryAction) Dispatch(ctx context.Context, h ActionHandler) Result {
	return h.HandleInventory(ctx, a)
}

func (a HistoryAction) Dispatch(ctx context.Context, h ActionHandler) Result {
	return h.HandleHistory(ctx, a)
}

func (a GeneralAction) Dispatch(ctx context.Context, h ActionHandler) Result {
	return h.HandleGeneral(ctx, a)
}

// withIntent marshals v with an "intent" member so typed actions serialise
// as a tagged union.
func withIntent(intent Intent, v any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	tag, _ := json.Marshal(intent)
	fields["intent"] = tag
	return json.Marshal(fields)
}

func (a PurchaseAction) MarshalJSON() ([]byte, error) {
	type plain PurchaseAction
	return withIntent(a.Intent(), plain(a))
}

func (a InventoryAction) MarshalJSON() ([]byte, error) {
	type plain InventoryAction
	return withIntent(a.Intent(), plain(a))
}

func (a HistoryAction) MarshalJSON() ([]byte, error) {
	type plain HistoryAction
	return withIntent(a.Intent(), plain(a))
}

func (a GeneralAction) MarshalJSON() ([]byte, error) {
	type plain GeneralAction
	return withIntent(a.Intent(), plain(a))
}
