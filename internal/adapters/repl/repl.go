package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"vending-agent/internal/app"
	"vending-agent/internal/core"
)

var errExit = errors.New("exit")

type session struct {
	ctx      context.Context
	svc      app.ApplicationService
	customer *core.Customer
	reader   *bufio.Reader
	out      io.Writer
}

// Run starts the interactive loop for one customer. Slash commands are
// dispatched deterministically; anything else goes through the interpreter
// and is run after the customer confirms the plan.
func Run(ctx context.Context, svc app.ApplicationService, customerID int, reader *bufio.Reader, out io.Writer) error {
	customer, err := svc.GetCustomer(ctx, customerID)
	if err != nil {
		return err
	}
	s := &session{ctx: ctx, svc: svc, customer: customer, reader: reader, out: out}

	fmt.Fprintln(out, "Vending Agent")
	fmt.Fprintf(out, "Customer: %s <%s> (id %d)\n", customer.Name, customer.Email, customer.ID)
	fmt.Fprintln(out, "Ask for a soda in plain words, or use /help for commands.")
	fmt.Fprintln(out, strings.Repeat("-", 70))

	for {
		fmt.Fprint(out, "\n> ")
		input, readErr := reader.ReadString('\n')
		input = strings.TrimSpace(input)
		if input != "" {
			var err error
			if strings.HasPrefix(input, "/") {
				err = s.dispatchSlash(input)
			} else {
				err = s.converse(input)
			}
			if errors.Is(err, errExit) {
				fmt.Fprintln(out, "Goodbye!")
				return nil
			}
			if err != nil {
				fmt.Fprintf(out, "Error: %v\n", err)
			}
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return nil
			}
			return readErr
		}
	}
}

func (s *session) dispatchSlash(input string) error {
	tokens := strings.Fields(strings.TrimPrefix(input, "/"))
	if len(tokens) == 0 {
		return nil
	}
	cmd := strings.ToLower(tokens[0])
	args := tokens[1:]

	switch cmd {
	case "sodas", "menu":
		sodas, err := s.svc.ListSodas(s.ctx)
		if err != nil {
			return err
		}
		printSodas(s.out, sodas)

	case "mine":
		sodas, err := s.svc.ListSodasByCustomer(s.ctx, s.customer.ID)
		if err != nil {
			return err
		}
		printSodas(s.out, sodas)

	case "history", "hist":
		txs, err := s.svc.ListTransactionsByCustomer(s.ctx, s.customer.ID)
		if err != nil {
			return err
		}
		printTransactions(s.out, txs)

	case "buy":
		if len(args) < 2 {
			fmt.Fprintln(s.out, "Usage: /buy <quantity> <soda name>")
			return nil
		}
		qty, err := strconv.Atoi(args[0])
		if err != nil || qty < 1 {
			fmt.Fprintf(s.out, "Invalid quantity: %s\n", args[0])
			return nil
		}
		return s.buy(strings.Join(args[1:], " "), qty)

	case "add-soda":
		return s.addSodaWizard()

	case "help", "h":
		printHelp(s.out)

	case "exit", "quit", "e", "q":
		return errExit

	default:
		fmt.Fprintf(s.out, "Unknown command: /%s  (type /help for all commands)\n", cmd)
	}
	return nil
}

func (s *session) buy(name string, qty int) error {
	sodas, err := s.svc.ListSodas(s.ctx)
	if err != nil {
		return err
	}
	for _, soda := range sodas {
		if strings.EqualFold(soda.Name, name) {
			tx, err := s.svc.CreateTransaction(s.ctx, core.TransactionInput{CustomerID: s.customer.ID, SodaID: soda.ID, Quantity: qty})
			if err != nil {
				return err
			}
			fmt.Fprintf(s.out, "Bought %d x %s (transaction %d).\n", tx.Quantity, soda.Name, tx.ID)
			return nil
		}
	}
	return core.NotFoundf("soda %q not found", name)
}

// converse interprets input and, for plans that change something, asks
// before running them.
func (s *session) converse(input string) error {
	fmt.Fprintln(s.out, "[AI] Thinking...")
	plan, err := s.svc.PlanQuery(s.ctx, app.QueryRequest{CustomerID: s.customer.ID, Query: input})
	if err != nil {
		return err
	}

	if onlyReplies(plan.Actions) {
		printResults(s.out, s.svc.ExecutePlan(s.ctx, *plan))
		return nil
	}

	printPlan(s.out, plan)
	fmt.Fprint(s.out, "\nRun these actions? (y/n): ")
	choice, _ := s.reader.ReadString('\n')
	choice = strings.TrimSpace(strings.ToLower(choice))
	if choice != "y" && choice != "yes" {
		fmt.Fprintln(s.out, "Cancelled.")
		return nil
	}
	printResults(s.out, s.svc.ExecutePlan(s.ctx, *plan))
	return nil
}

func onlyReplies(actions []core.Action) bool {
	for _, a := range actions {
		if _, ok := a.(core.GeneralAction); !ok {
			return false
		}
	}
	return true
}
