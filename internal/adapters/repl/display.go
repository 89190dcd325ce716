package repl

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"vending-agent/internal/app"
	"vending-agent/internal/core"
)

func printSodas(out io.Writer, sodas []core.Soda) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, strings.Repeat("=", 56))
	if len(sodas) == 0 {
		fmt.Fprintln(out, "  No sodas found.")
		fmt.Fprintln(out, strings.Repeat("=", 56))
		return
	}
	fmt.Fprintf(out, "  %-5s %-28s %9s %8s\n", "ID", "NAME", "PRICE", "STOCK")
	fmt.Fprintln(out, strings.Repeat("-", 56))
	for _, s := range sodas {
		fmt.Fprintf(out, "  %-5d %-28s %9s %8d\n", s.ID, s.Name, s.Price.StringFixed(2), s.Quantity)
	}
	fmt.Fprintln(out, strings.Repeat("=", 56))
}

func printTransactions(out io.Writer, txs []core.CustomerTransaction) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, strings.Repeat("=", 56))
	if len(txs) == 0 {
		fmt.Fprintln(out, "  No purchases yet.")
		fmt.Fprintln(out, strings.Repeat("=", 56))
		return
	}
	fmt.Fprintf(out, "  %-6s %-6s %6s  %s\n", "ID", "SODA", "QTY", "TIMESTAMP")
	fmt.Fprintln(out, strings.Repeat("-", 56))
	for _, t := range txs {
		fmt.Fprintf(out, "  %-6d %-6d %6d  %s\n", t.ID, t.SodaID, t.Quantity, t.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintln(out, strings.Repeat("=", 56))
}

// describe renders one action as a single line.
func describe(a core.Action) string {
	switch a := a.(type) {
	case core.PurchaseAction:
		return fmt.Sprintf("buy %d x %s", a.Quantity, a.SodaName)
	case core.InventoryAction:
		target := a.Soda.Name
		if a.Soda.ID > 0 {
			target = fmt.Sprintf("%s (id %d)", a.Soda.Name, a.Soda.ID)
		}
		line := fmt.Sprintf("%s soda %s", a.Operation, strings.TrimSpace(target))
		if a.Soda.Price != nil {
			line += " price " + a.Soda.Price.StringFixed(2)
		}
		if a.Soda.Quantity != nil {
			line += fmt.Sprintf(" quantity %d", *a.Soda.Quantity)
		}
		return line
	case core.HistoryAction:
		return fmt.Sprintf("show purchase history of customer %d", a.Customer.ID)
	case core.GeneralAction:
		return "reply: " + a.Message
	}
	return string(a.Intent())
}

func printPlan(out io.Writer, plan *app.PlanResult) {
	fmt.Fprintln(out, "\nPLAN:")
	for i, a := range plan.Actions {
		fmt.Fprintf(out, "  %d. [%s] %s\n", i+1, a.Intent(), describe(a))
	}
}

func printResults(out io.Writer, res *app.QueryResult) {
	for i, r := range res.Results {
		action := res.Actions[i]
		if r.Error != nil {
			fmt.Fprintf(out, "  %d. FAILED (%s): %s\n", i+1, r.Error.Cause, r.Error.Message)
			continue
		}
		switch data := r.Data.(type) {
		case string:
			fmt.Fprintf(out, "[AI]: %s\n", data)
		case []core.CustomerTransaction:
			printTransactions(out, data)
		case *core.Soda:
			fmt.Fprintf(out, "  %d. OK: %s  price %s  stock %d (id %d)\n", i+1, data.Name, data.Price.StringFixed(2), data.Quantity, data.ID)
		case *core.CustomerTransaction:
			fmt.Fprintf(out, "  %d. OK: %s  (transaction %d)\n", i+1, describe(action), data.ID)
		default:
			raw, _ := json.Marshal(data)
			fmt.Fprintf(out, "  %d. OK: %s  %s\n", i+1, describe(action), raw)
		}
	}
}

func printHelp(out io.Writer) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, "VENDING AGENT COMMANDS")
	fmt.Fprintln(out, strings.Repeat("=", 62))
	fmt.Fprintln(out)
	fmt.Fprintln(out, "  CATALOG")
	fmt.Fprintln(out, "  /sodas                           List sodas")
	fmt.Fprintln(out, "  /mine                            Sodas you have bought")
	fmt.Fprintln(out, "  /add-soda                        Add a soda (interactive)")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "  PURCHASES")
	fmt.Fprintln(out, "  /buy <qty> <soda name>           Buy directly, no AI")
	fmt.Fprintln(out, "  /history                         Your purchases")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "  SESSION")
	fmt.Fprintln(out, "  /help                            Show this help")
	fmt.Fprintln(out, "  /exit                            Exit")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "  AGENT MODE  (no / prefix)")
	fmt.Fprintln(out, "  Ask in plain words, e.g. \"two cokes and show my history\"")
	fmt.Fprintln(out, strings.Repeat("=", 62))
}
