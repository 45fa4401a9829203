package main

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/subcommands"

	"pocketledger/internal/core"
)

var ledgerCommands = []subcommands.Command{
	&addCmd{},
	&listCmd{},
	&removeCmd{},
	&summaryCmd{},
}

type addCmd struct {
	title    string
	amount   string
	category string
	date     string
	expense  bool
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "record an income or an expense" }
func (*addCmd) Usage() string {
	return `pocketledger add -title <title> -amount <amount> [-category <category>] [-date YYYY-MM-DD] [-expense]

  Records a transaction for the signed-in user. A positive amount is income,
  a negative one an expense; -expense records the amount as an expense
  whatever its sign. Categories: ` + categoryList() + `.
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.title, "title", "", "What the transaction was")
	f.StringVar(&c.amount, "amount", "", "Signed amount, with . or , as decimal separator")
	f.StringVar(&c.category, "category", "", "Category (defaults to other)")
	f.StringVar(&c.date, "date", "", "Day of the transaction (defaults to now)")
	f.BoolVar(&c.expense, "expense", false, "Record the amount as an expense")
}

func (c *addCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	a := appFrom(args)
	if a == nil {
		return subcommands.ExitFailure
	}

	in := core.TransactionInput{
		Title:    c.title,
		Amount:   c.amount,
		Category: core.Category(strings.ToLower(strings.TrimSpace(c.category))),
	}
	if c.expense {
		// Unparseable input goes through untouched so validation reports it.
		if amount, err := core.ParseAmount(c.amount); err == nil {
			in.Amount = core.SignedAmount(amount, true).String()
		}
	}
	if c.date != "" {
		day, err := time.ParseInLocation(time.DateOnly, c.date, a.loc)
		if err != nil {
			fmt.Fprintf(a.stderr, "Invalid -date %q: want YYYY-MM-DD\n", c.date)
			return subcommands.ExitUsageError
		}
		in.Date = day
	}

	tx, err := a.tracker.AddTransaction(ctx, in)
	if err != nil {
		return a.fail(err)
	}
	fmt.Fprintf(a.stdout, "Added %s: %s %s (%s)\n", tx.ID, tx.Title, tx.Amount.StringFixed(2), tx.Category)
	return subcommands.ExitSuccess
}

type listCmd struct{}

func (*listCmd) Name() string           { return "list" }
func (*listCmd) Synopsis() string       { return "list the signed-in user's transactions" }
func (*listCmd) Usage() string          { return "pocketledger list\n" }
func (*listCmd) SetFlags(*flag.FlagSet) {}

func (*listCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	a := appFrom(args)
	if a == nil {
		return subcommands.ExitFailure
	}

	txs, err := a.tracker.Transactions(ctx)
	if err != nil {
		return a.fail(err)
	}
	if len(txs) == 0 {
		fmt.Fprintln(a.stdout, "No transactions yet.")
		return subcommands.ExitSuccess
	}

	w := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "ID\tDATE\tCATEGORY\tAMOUNT\tTITLE\t")
	for _, tx := range txs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t\n",
			tx.ID, tx.Date.In(a.loc).Format(time.DateOnly), tx.Category, tx.Amount.StringFixed(2), tx.Title)
	}
	if err := w.Flush(); err != nil {
		return a.fail(err)
	}
	return subcommands.ExitSuccess
}

type removeCmd struct{}

func (*removeCmd) Name() string           { return "remove" }
func (*removeCmd) Synopsis() string       { return "delete one of your transactions" }
func (*removeCmd) Usage() string          { return "pocketledger remove <id>\n" }
func (*removeCmd) SetFlags(*flag.FlagSet) {}

func (*removeCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	a := appFrom(args)
	if a == nil {
		return subcommands.ExitFailure
	}
	if f.NArg() != 1 {
		fmt.Fprint(a.stderr, (&removeCmd{}).Usage())
		return subcommands.ExitUsageError
	}

	id := f.Arg(0)
	removed, err := a.tracker.RemoveTransaction(ctx, id)
	if err != nil {
		return a.fail(err)
	}
	if !removed {
		fmt.Fprintf(a.stdout, "No transaction %s in your ledger.\n", id)
		return subcommands.ExitSuccess
	}
	fmt.Fprintf(a.stdout, "Removed %s.\n", id)
	return subcommands.ExitSuccess
}

type summaryCmd struct{}

func (*summaryCmd) Name() string           { return "summary" }
func (*summaryCmd) Synopsis() string       { return "show balance, totals and the last seven days" }
func (*summaryCmd) Usage() string          { return "pocketledger summary\n" }
func (*summaryCmd) SetFlags(*flag.FlagSet) {}

func (*summaryCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	a := appFrom(args)
	if a == nil {
		return subcommands.ExitFailure
	}

	s, err := a.tracker.Dashboard(ctx)
	if err != nil {
		return a.fail(err)
	}

	w := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Balance\t%s\n", s.Balance.StringFixed(2))
	fmt.Fprintf(w, "Income\t%s\n", s.Income.StringFixed(2))
	fmt.Fprintf(w, "Expenses\t%s\n", s.Expense.StringFixed(2))
	fmt.Fprintf(w, "Transactions\t%d\n", s.Count)

	if len(s.ByCategory) > 0 {
		fmt.Fprintln(w, "\nBy category\t")
		for _, c := range s.ByCategory {
			fmt.Fprintf(w, "  %s\t%s\t(%d)\n", c.Category, c.Amount.StringFixed(2), c.Count)
		}
	}

	fmt.Fprintln(w, "\nLast 7 days\t")
	for _, p := range s.Weekly {
		fmt.Fprintf(w, "  %s\t%s\n", p.Date, p.Total.StringFixed(2))
	}
	if err := w.Flush(); err != nil {
		return a.fail(err)
	}
	return subcommands.ExitSuccess
}

func categoryList() string {
	names := make([]string, 0, len(core.Categories()))
	for _, c := range core.Categories() {
		names = append(names, c.String())
	}
	return strings.Join(names, ", ")
}
