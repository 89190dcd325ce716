package core_test

import (
	"encoding/json"
	"testing"

	"vending-agent/internal/core"
)

func planned(intent core.Intent) core.PlannedAction {
	return core.PlannedAction{
		Intent:    intent,
		Operation: core.OperationNone,
		Soda:      core.PlannedSoda{Quantity: -1},
	}
}

func TestActionPlan_NormalizationAndValidation(t *testing.T) {
	purchase := planned(core.IntentPurchase)
	purchase.SodaName = "  Coca-Cola "

	purchaseNoName := planned(core.IntentPurchase)

	purchaseNegative := planned(core.IntentPurchase)
	purchaseNegative.SodaName = "Sprite"
	purchaseNegative.Quantity = -2

	add := planned(core.IntentManageInventory)
	add.Operation = "ADD"
	add.Soda = core.PlannedSoda{Name: "Fanta", Price: "2.25", Quantity: 30}

	badOp := planned(core.IntentManageInventory)
	badOp.Operation = "restock"

	badPrice := planned(core.IntentManageInventory)
	badPrice.Operation = core.OperationUpdate
	badPrice.Soda = core.PlannedSoda{ID: 1, Price: "two dollars", Quantity: -1}

	history := planned(core.IntentTransactionHistory)

	greeting := planned(core.IntentGreeting)
	greeting.Message = "Hi!"

	silent := planned(core.IntentUnsupported)

	unknown := planned("refund")

	tests := []struct {
		name      string
		actions   []core.PlannedAction
		expectErr bool
	}{
		{"purchase defaults quantity", []core.PlannedAction{purchase}, false},
		{"purchase without soda", []core.PlannedAction{purchaseNoName}, true},
		{"purchase negative quantity", []core.PlannedAction{purchaseNegative}, true},
		{"inventory add", []core.PlannedAction{add}, false},
		{"inventory unknown operation", []core.PlannedAction{badOp}, true},
		{"inventory bad price", []core.PlannedAction{badPrice}, true},
		{"history without id is structurally fine", []core.PlannedAction{history}, false},
		{"greeting", []core.PlannedAction{greeting}, false},
		{"unsupported without message", []core.PlannedAction{silent}, true},
		{"unknown intent", []core.PlannedAction{unknown}, true},
		{"empty plan", nil, true},
		{"one bad action fails the plan", []core.PlannedAction{greeting, purchaseNoName}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := core.ActionPlan{Actions: tt.actions}
			p.Normalize()
			err := p.Validate()
			if tt.expectErr && err == nil {
				t.Fatalf("expected validation error, got nil")
			}
			if !tt.expectErr && err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestActionPlan_ToActions(t *testing.T) {
	purchase := planned(core.IntentPurchase)
	purchase.SodaName = "coca-cola"

	update := planned(core.IntentManageInventory)
	update.Operation = core.OperationUpdate
	update.Soda = core.PlannedSoda{ID: 4, Name: "Sprite", Price: "", Quantity: 12}

	remove := planned(core.IntentManageInventory)
	remove.Operation = core.OperationRemove
	remove.Soda = core.PlannedSoda{Name: "Pepsi", Quantity: -1}

	p := core.ActionPlan{Actions: []core.PlannedAction{purchase, update, remove}}
	p.Normalize()
	if err := p.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	actions, err := p.ToActions()
	if err != nil {
		t.Fatalf("actions: %v", err)
	}
	if len(actions) != 3 {
		t.Fatalf("expected 3 actions, got %d", len(actions))
	}

	if got := actions[0].(core.PurchaseAction); got.Quantity != 1 || got.SodaName != "coca-cola" {
		t.Errorf("unexpected purchase %+v", got)
	}

	upd := actions[1].(core.InventoryAction)
	if upd.Soda.ID != 4 || upd.Soda.Price != nil || upd.Soda.Quantity == nil || *upd.Soda.Quantity != 12 {
		t.Errorf("unexpected update spec %+v", upd.Soda)
	}

	rem := actions[2].(core.InventoryAction)
	if rem.Soda.ID != 0 || rem.Soda.Quantity != nil {
		t.Errorf("remove spec should carry no id and no quantity, got %+v", rem.Soda)
	}
}

func TestAction_MarshalJSONCarriesIntent(t *testing.T) {
	qty := 5
	actions := []core.Action{
		core.PurchaseAction{SodaName: "Sprite", Quantity: 2},
		core.InventoryAction{Operation: core.OperationRead, Soda: core.SodaSpec{Name: "Fanta", Quantity: &qty}},
		core.GeneralAction{Kind: core.IntentGreeting, Message: "Hello"},
	}
	body, err := json.Marshal(actions)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded []map[string]any
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	wantIntents := []string{"purchase", "manage_inventory", "greeting"}
	for i, want := range wantIntents {
		if decoded[i]["intent"] != want {
			t.Errorf("action %d intent = %v, want %s", i, decoded[i]["intent"], want)
		}
	}
	if decoded[0]["soda_name"] != "Sprite" {
		t.Errorf("purchase payload lost: %v", decoded[0])
	}
}
