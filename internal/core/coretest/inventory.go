// Package coretest provides an in-memory implementation of the core
// repository services for tests of the layers above them.
package coretest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"vending-agent/internal/core"

	"github.com/shopspring/decimal"
)

// Inventory implements core.CustomerService, core.SodaService and
// core.TransactionService over maps guarded by a single mutex. It counts
// every call so tests can assert which operations ran.
type Inventory struct {
	mu           sync.Mutex
	now          func() time.Time
	nextID       map[string]int
	customers    map[int]core.Customer
	sodas        map[int]core.Soda
	transactions map[int]core.CustomerTransaction
	calls        map[string]int
}

var (
	_ core.CustomerService    = (*Inventory)(nil)
	_ core.SodaService        = (*Inventory)(nil)
	_ core.TransactionService = (*Inventory)(nil)
)

func NewInventory() *Inventory {
	return &Inventory{
		now:          time.Now,
		nextID:       map[string]int{},
		customers:    map[int]core.Customer{},
		sodas:        map[int]core.Soda{},
		transactions: map[int]core.CustomerTransaction{},
		calls:        map[string]int{},
	}
}

// AddSoda inserts a soda directly, bypassing validation, and returns its id.
func (inv *Inventory) AddSoda(name, price string, quantity int) int {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	id := inv.id("soda")
	inv.sodas[id] = core.Soda{ID: id, Name: name, Price: decimal.RequireFromString(price), Quantity: quantity, CreatedAt: inv.now(), UpdatedAt: inv.now()}
	return id
}

// AddCustomer inserts a customer with the given plaintext password and returns its id.
func (inv *Inventory) AddCustomer(name, email, password string) int {
	hash, err := core.HashPassword(password)
	if err != nil {
		panic(err)
	}
	inv.mu.Lock()
	defer inv.mu.Unlock()
	id := inv.id("customer")
	inv.customers[id] = core.Customer{ID: id, Name: name, Email: strings.ToLower(email), PasswordHash: hash, CreatedAt: inv.now()}
	return id
}

// Stock returns the current quantity of a soda, or -1 if it does not exist.
func (inv *Inventory) Stock(sodaID int) int {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	s, ok := inv.sodas[sodaID]
	if !ok {
		return -1
	}
	return s.Quantity
}

// Calls returns how many times the named method ran.
func (inv *Inventory) Calls(method string) int {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return inv.calls[method]
}

// TotalCalls returns the number of service calls of any kind.
func (inv *Inventory) TotalCalls() int {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	n := 0
	for _, c := range inv.calls {
		n += c
	}
	return n
}

// Mutations returns the number of calls that can change state.
func (inv *Inventory) Mutations() int {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	n := 0
	for method, c := range inv.calls {
		if strings.HasPrefix(method, "Create") || strings.HasPrefix(method, "Update") || strings.HasPrefix(method, "Delete") {
			n += c
		}
	}
	return n
}

// enter records a call and takes the lock; callers must defer inv.mu.Unlock.
func (inv *Inventory) enter(method string) {
	inv.mu.Lock()
	inv.calls[method]++
}

func (inv *Inventory) id(kind string) int {
	inv.nextID[kind]++
	return inv.nextID[kind]
}

// ── Customers ────────────────────────────────────────────────────────────────

func (inv *Inventory) CreateCustomer(_ context.Context, input core.CustomerInput) (*core.Customer, error) {
	inv.enter("CreateCustomer")
	defer inv.mu.Unlock()

	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if err := input.Validate(); err != nil {
		return nil, err
	}
	for _, c := range inv.customers {
		if c.Email == input.Email {
			return nil, core.Conflictf("email %s already exists", input.Email)
		}
	}
	hash, err := core.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	id := inv.id("customer")
	c := core.Customer{ID: id, Name: input.Name, Email: input.Email, PasswordHash: hash, CreatedAt: inv.now()}
	inv.customers[id] = c
	return &c, nil
}

func (inv *Inventory) GetCustomer(_ context.Context, id int) (*core.Customer, error) {
	inv.enter("GetCustomer")
	defer inv.mu.Unlock()
	c, ok := inv.customers[id]
	if !ok {
		return nil, core.NotFoundf("customer %d not found", id)
	}
	return &c, nil
}

func (inv *Inventory) GetCustomerByEmail(_ context.Context, email string) (*core.Customer, error) {
	inv.enter("GetCustomerByEmail")
	defer inv.mu.Unlock()
	return inv.customerByEmail(email)
}

func (inv *Inventory) customerByEmail(email string) (*core.Customer, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, c := range inv.customers {
		if c.Email == email {
			return &c, nil
		}
	}
	return nil, core.NotFoundf("customer with email %s not found", email)
}

func (inv *Inventory) ListCustomers(_ context.Context) ([]core.Customer, error) {
	inv.enter("ListCustomers")
	defer inv.mu.Unlock()
	out := make([]core.Customer, 0, len(inv.customers))
	for _, c := range inv.customers {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (inv *Inventory) UpdateCustomer(_ context.Context, id int, patch core.CustomerPatch) (*core.Customer, error) {
	inv.enter("UpdateCustomer")
	defer inv.mu.Unlock()
	c, ok := inv.customers[id]
	if !ok {
		return nil, core.NotFoundf("customer %d not found", id)
	}
	if patch.Name != nil {
		c.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*patch.Email))
		for _, other := range inv.customers {
			if other.ID != id && other.Email == email {
				return nil, core.Conflictf("customer with email %s already exists", email)
			}
		}
		c.Email = email
	}
	if patch.Password != nil {
		hash, err := core.HashPassword(*patch.Password)
		if err != nil {
			return nil, err
		}
		c.PasswordHash = hash
	}
	inv.customers[id] = c
	return &c, nil
}

func (inv *Inventory) DeleteCustomer(_ context.Context, id int) error {
	inv.enter("DeleteCustomer")
	defer inv.mu.Unlock()
	if _, ok := inv.customers[id]; !ok {
		return core.NotFoundf("customer %d not found", id)
	}
	for _, t := range inv.transactions {
		if t.CustomerID == id {
			return core.Conflictf("customer %d is still referenced", id)
		}
	}
	delete(inv.customers, id)
	return nil
}

func (inv *Inventory) Authenticate(_ context.Context, email, password string) (*core.Customer, error) {
	inv.enter("Authenticate")
	defer inv.mu.Unlock()
	c, err := inv.customerByEmail(email)
	if err != nil {
		return nil, core.ErrInvalidCredentials
	}
	if err := core.VerifyPassword(c.PasswordHash, password); err != nil {
		return nil, err
	}
	return c, nil
}

// ── Sodas ────────────────────────────────────────────────────────────────────

func (inv *Inventory) CreateSoda(_ context.Context, input core.SodaInput) (*core.Soda, error) {
	inv.enter("CreateSoda")
	defer inv.mu.Unlock()
	input.Name = strings.Join(strings.Fields(input.Name), " ")
	if err := input.Validate(); err != nil {
		return nil, err
	}
	id := inv.id("soda")
	s := core.Soda{ID: id, Name: input.Name, Price: input.Price, Quantity: input.Quantity, CreatedAt: inv.now(), UpdatedAt: inv.now()}
	inv.sodas[id] = s
	return &s, nil
}

func (inv *Inventory) GetSoda(_ context.Context, id int) (*core.Soda, error) {
	inv.enter("GetSoda")
	defer inv.mu.Unlock()
	s, ok := inv.sodas[id]
	if !ok {
		return nil, core.NotFoundf("soda %d not found", id)
	}
	return &s, nil
}

func (inv *Inventory) GetSodaByName(_ context.Context, name string) (*core.Soda, error) {
	inv.enter("GetSodaByName")
	defer inv.mu.Unlock()
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return nil, core.Validationf("soda name is required")
	}
	var match *core.Soda
	for _, s := range inv.sodas {
		if strings.EqualFold(s.Name, name) && (match == nil || s.ID < match.ID) {
			match = &s
		}
	}
	if match == nil {
		return nil, core.NotFoundf("soda %q not found", name)
	}
	return match, nil
}

func (inv *Inventory) ListSodas(_ context.Context) ([]core.Soda, error) {
	inv.enter("ListSodas")
	defer inv.mu.Unlock()
	return inv.sortedSodas(func(core.Soda) bool { return true }), nil
}

func (inv *Inventory) sortedSodas(keep func(core.Soda) bool) []core.Soda {
	out := []core.Soda{}
	for _, s := range inv.sodas {
		if keep(s) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (inv *Inventory) UpdateSoda(_ context.Context, id int, patch core.SodaPatch) (*core.Soda, error) {
	inv.enter("UpdateSoda")
	defer inv.mu.Unlock()
	s, ok := inv.sodas[id]
	if !ok {
		return nil, core.NotFoundf("soda %d not found", id)
	}
	if err := patch.Apply(&s); err != nil {
		return nil, err
	}
	s.UpdatedAt = inv.now()
	inv.sodas[id] = s
	return &s, nil
}

func (inv *Inventory) DeleteSoda(_ context.Context, id int) error {
	inv.enter("DeleteSoda")
	defer inv.mu.Unlock()
	if _, ok := inv.sodas[id]; !ok {
		return core.NotFoundf("soda %d not found", id)
	}
	for _, t := range inv.transactions {
		if t.SodaID == id {
			return core.Conflictf("soda %d is still referenced", id)
		}
	}
	delete(inv.sodas, id)
	return nil
}

func (inv *Inventory) ListSodasByCustomer(_ context.Context, customerID int) ([]core.Soda, error) {
	inv.enter("ListSodasByCustomer")
	defer inv.mu.Unlock()
	if _, ok := inv.customers[customerID]; !ok {
		return nil, core.NotFoundf("customer %d not found", customerID)
	}
	bought := map[int]bool{}
	for _, t := range inv.transactions {
		if t.CustomerID == customerID {
			bought[t.SodaID] = true
		}
	}
	return inv.sortedSodas(func(s core.Soda) bool { return bought[s.ID] }), nil
}

// ── Transactions ─────────────────────────────────────────────────────────────

func (inv *Inventory) CreateTransaction(_ context.Context, input core.TransactionInput) (*core.CustomerTransaction, error) {
	inv.enter("CreateTransaction")
	defer inv.mu.Unlock()
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if _, ok := inv.customers[input.CustomerID]; !ok {
		return nil, core.NotFoundf("customer %d not found", input.CustomerID)
	}
	s, ok := inv.sodas[input.SodaID]
	if !ok {
		return nil, core.NotFoundf("soda %d not found", input.SodaID)
	}
	if s.Quantity < input.Quantity {
		return nil, core.Conflictf("insufficient stock for soda %d: %d available, %d requested", s.ID, s.Quantity, input.Quantity)
	}
	s.Quantity -= input.Quantity
	inv.sodas[s.ID] = s

	id := inv.id("transaction")
	t := core.CustomerTransaction{ID: id, CustomerID: input.CustomerID, SodaID: input.SodaID, Quantity: input.Quantity, CreatedAt: inv.now()}
	inv.transactions[id] = t
	return &t, nil
}

func (inv *Inventory) GetTransaction(_ context.Context, id int) (*core.CustomerTransaction, error) {
	inv.enter("GetTransaction")
	defer inv.mu.Unlock()
	t, ok := inv.transactions[id]
	if !ok {
		return nil, core.NotFoundf("transaction %d not found", id)
	}
	return &t, nil
}

func (inv *Inventory) ListTransactions(_ context.Context) ([]core.CustomerTransaction, error) {
	inv.enter("ListTransactions")
	defer inv.mu.Unlock()
	return inv.sortedTransactions(func(core.CustomerTransaction) bool { return true }), nil
}

func (inv *Inventory) ListTransactionsByCustomer(_ context.Context, customerID int) ([]core.CustomerTransaction, error) {
	inv.enter("ListTransactionsByCustomer")
	defer inv.mu.Unlock()
	if _, ok := inv.customers[customerID]; !ok {
		return nil, core.NotFoundf("customer %d not found", customerID)
	}
	return inv.sortedTransactions(func(t core.CustomerTransaction) bool { return t.CustomerID == customerID }), nil
}

func (inv *Inventory) sortedTransactions(keep func(core.CustomerTransaction) bool) []core.CustomerTransaction {
	out := []core.CustomerTransaction{}
	for _, t := range inv.transactions {
		if keep(t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (inv *Inventory) UpdateTransaction(_ context.Context, id int, input core.TransactionInput) (*core.CustomerTransaction, error) {
	inv.enter("UpdateTransaction")
	defer inv.mu.Unlock()
	if err := input.Validate(); err != nil {
		return nil, err
	}
	old, ok := inv.transactions[id]
	if !ok {
		return nil, core.NotFoundf("transaction %d not found", id)
	}
	if _, ok := inv.customers[input.CustomerID]; !ok {
		return nil, core.NotFoundf("customer %d not found", input.CustomerID)
	}
	target, ok := inv.sodas[input.SodaID]
	if !ok {
		return nil, core.NotFoundf("soda %d not found", input.SodaID)
	}
	available := target.Quantity
	if input.SodaID == old.SodaID {
		available += old.Quantity
	}
	if available < input.Quantity {
		return nil, core.Conflictf("insufficient stock for soda %d: %d available, %d requested", input.SodaID, available, input.Quantity)
	}

	source := inv.sodas[old.SodaID]
	source.Quantity += old.Quantity
	inv.sodas[old.SodaID] = source
	target = inv.sodas[input.SodaID]
	target.Quantity -= input.Quantity
	inv.sodas[input.SodaID] = target

	old.CustomerID, old.SodaID, old.Quantity = input.CustomerID, input.SodaID, input.Quantity
	inv.transactions[id] = old
	return &old, nil
}

func (inv *Inventory) DeleteTransaction(_ context.Context, id int) error {
	inv.enter("DeleteTransaction")
	defer inv.mu.Unlock()
	t, ok := inv.transactions[id]
	if !ok {
		return core.NotFoundf("transaction %d not found", id)
	}
	if s, ok := inv.sodas[t.SodaID]; ok {
		s.Quantity += t.Quantity
		inv.sodas[t.SodaID] = s
	}
	delete(inv.transactions, id)
	return nil
}
