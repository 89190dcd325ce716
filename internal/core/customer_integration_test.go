package core_test

import (
	"context"
	"strings"
	"testing"

	"vending-agent/internal/core"
)

func TestCustomer_CRUDAndAuth(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	svc := core.NewCustomerService(pool)

	var created *core.Customer

	t.Run("CreateCustomer_HashesPassword", func(t *testing.T) {
		c, err := svc.CreateCustomer(ctx, core.CustomerInput{Name: "Linus", Email: "Linus@Example.com", Password: "hunter2"})
		if err != nil {
			t.Fatalf("CreateCustomer: %v", err)
		}
		if c.Email != "linus@example.com" {
			t.Errorf("expected normalized email, got %s", c.Email)
		}
		if c.PasswordHash == "hunter2" || !strings.HasPrefix(c.PasswordHash, "$2") {
			t.Errorf("expected a bcrypt hash, got %q", c.PasswordHash)
		}
		created = c
	})

	t.Run("CreateCustomer_DuplicateEmail_Conflict", func(t *testing.T) {
		_, err := svc.CreateCustomer(ctx, core.CustomerInput{Name: "Other", Email: "linus@example.com", Password: "pw"})
		if core.CauseOf(err) != core.CauseConflict {
			t.Fatalf("expected conflict, got %v", err)
		}
	})

	t.Run("Authenticate", func(t *testing.T) {
		c, err := svc.Authenticate(ctx, "LINUS@example.com", "hunter2")
		if err != nil {
			t.Fatalf("Authenticate: %v", err)
		}
		if c.ID != created.ID {
			t.Errorf("authenticated wrong customer %d", c.ID)
		}
		if _, err := svc.Authenticate(ctx, "linus@example.com", "wrong"); err != core.ErrInvalidCredentials {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
		if _, err := svc.Authenticate(ctx, "nobody@example.com", "hunter2"); err != core.ErrInvalidCredentials {
			t.Errorf("expected ErrInvalidCredentials for unknown email, got %v", err)
		}
	})

	t.Run("UpdateCustomer_EmailCollision", func(t *testing.T) {
		email := "ada@example.com"
		_, err := svc.UpdateCustomer(ctx, created.ID, core.CustomerPatch{Email: &email})
		if core.CauseOf(err) != core.CauseConflict {
			t.Fatalf("expected conflict, got %v", err)
		}
	})

	t.Run("UpdateCustomer_Name", func(t *testing.T) {
		name := "Linus T."
		c, err := svc.UpdateCustomer(ctx, created.ID, core.CustomerPatch{Name: &name})
		if err != nil {
			t.Fatalf("UpdateCustomer: %v", err)
		}
		if c.Name != name || c.Email != "linus@example.com" {
			t.Errorf("unexpected customer %+v", c)
		}
	})

	t.Run("GetCustomer_NotFound", func(t *testing.T) {
		if _, err := svc.GetCustomer(ctx, 404); core.CauseOf(err) != core.CauseNotFound {
			t.Fatalf("expected not-found, got %v", err)
		}
	})

	t.Run("DeleteCustomer", func(t *testing.T) {
		if err := svc.DeleteCustomer(ctx, created.ID); err != nil {
			t.Fatalf("DeleteCustomer: %v", err)
		}
		customers, err := svc.ListCustomers(ctx)
		if err != nil {
			t.Fatalf("ListCustomers: %v", err)
		}
		if len(customers) != 2 {
			t.Errorf("expected the 2 seeded customers, got %d", len(customers))
		}
	})
}
