package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"vending-agent/internal/app"
	"vending-agent/internal/core"
)

// ErrUsage is returned when the arguments do not form a valid command.
var ErrUsage = errors.New("usage")

const usage = `Available commands:
  sodas                          list the catalog
  customers                      list customers
  history <customer-id>          list a customer's purchases
  plan    <customer-id> "<text>"  interpret a request without running it
  query   <customer-id> "<text>"  interpret a request and run it`

// Run executes a one-shot CLI command, writing its output to out.
// args is os.Args[1:]; the first element is the subcommand name.
func Run(ctx context.Context, svc app.ApplicationService, out io.Writer, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "sodas":
		sodas, err := svc.ListSodas(ctx)
		if err != nil {
			return err
		}
		printSodas(out, sodas)

	case "customers":
		customers, err := svc.ListCustomers(ctx)
		if err != nil {
			return err
		}
		printCustomers(out, customers)

	case "history", "hist":
		if len(args) < 2 {
			return usageError("app history <customer-id>")
		}
		id, err := customerID(args[1])
		if err != nil {
			return err
		}
		txs, err := svc.ListTransactionsByCustomer(ctx, id)
		if err != nil {
			return err
		}
		printTransactions(out, txs)

	case "plan", "query", "q":
		if len(args) < 3 {
			return usageError(fmt.Sprintf("app %s <customer-id> \"<text>\"", args[0]))
		}
		id, err := customerID(args[1])
		if err != nil {
			return err
		}
		req := app.QueryRequest{CustomerID: id, Query: strings.Join(args[2:], " ")}
		var result any
		if args[0] == "plan" {
			result, err = svc.PlanQuery(ctx, req)
		} else {
			result, err = svc.RunQuery(ctx, req)
		}
		if err != nil {
			return err
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)

	default:
		return usageError("unknown command: " + args[0])
	}
	return nil
}

func usageError(msg string) error {
	return fmt.Errorf("%w: %s\n%s", ErrUsage, msg, usage)
}

func customerID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, core.Validationf("customer id must be a positive integer, got %q", arg)
	}
	return id, nil
}

func printSodas(out io.Writer, sodas []core.Soda) {
	fmt.Fprintf(out, "%-5s %-28s %10s %8s\n", "ID", "NAME", "PRICE", "STOCK")
	fmt.Fprintln(out, strings.Repeat("-", 54))
	for _, s := range sodas {
		fmt.Fprintf(out, "%-5d %-28s %10s %8d\n", s.ID, s.Name, s.Price.StringFixed(2), s.Quantity)
	}
}

func printCustomers(out io.Writer, customers []core.Customer) {
	fmt.Fprintf(out, "%-5s %-28s %s\n", "ID", "NAME", "EMAIL")
	fmt.Fprintln(out, strings.Repeat("-", 60))
	for _, c := range customers {
		fmt.Fprintf(out, "%-5d %-28s %s\n", c.ID, c.Name, c.Email)
	}
}

func printTransactions(out io.Writer, txs []core.CustomerTransaction) {
	if len(txs) == 0 {
		fmt.Fprintln(out, "No purchases yet.")
		return
	}
	fmt.Fprintf(out, "%-6s %-6s %6s  %s\n", "ID", "SODA", "QTY", "TIMESTAMP")
	fmt.Fprintln(out, strings.Repeat("-", 48))
	for _, t := range txs {
		fmt.Fprintf(out, "%-6d %-6d %6d  %s\n", t.ID, t.SodaID, t.Quantity, t.CreatedAt.Format("2006-01-02 15:04:05"))
	}
}
