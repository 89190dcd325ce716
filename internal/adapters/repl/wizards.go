package repl

import (
	"fmt"
	"strconv"
	"strings"

	"vending-agent/internal/core"

	"github.com/shopspring/decimal"
)

// addSodaWizard prompts for the fields of a new catalog entry.
func (s *session) addSodaWizard() error {
	fmt.Fprintln(s.out, "Adding a soda. Type 'cancel' at any prompt to abort.")

	name, ok := s.prompt("  Name: ")
	if !ok {
		return nil
	}

	var price decimal.Decimal
	for {
		raw, ok := s.prompt("  Price: ")
		if !ok {
			return nil
		}
		p, err := decimal.NewFromString(raw)
		if err != nil || !p.IsPositive() {
			fmt.Fprintln(s.out, "  Price must be a positive number, e.g. 1.50")
			continue
		}
		price = p
		break
	}

	var qty int
	for {
		raw, ok := s.prompt("  Quantity: ")
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			fmt.Fprintln(s.out, "  Quantity must be a whole number, 0 or more.")
			continue
		}
		qty = n
		break
	}

	soda, err := s.svc.CreateSoda(s.ctx, core.SodaInput{Name: name, Price: price, Quantity: qty})
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Soda %q added with id %d.\n", soda.Name, soda.ID)
	return nil
}

// prompt reads one trimmed line. ok is false on cancel or end of input.
func (s *session) prompt(label string) (string, bool) {
	fmt.Fprint(s.out, label)
	raw, err := s.reader.ReadString('\n')
	raw = strings.TrimSpace(raw)
	if strings.EqualFold(raw, "cancel") || (err != nil && raw == "") {
		fmt.Fprintln(s.out, "Cancelled.")
		return "", false
	}
	return raw, true
}
