// Package console is the interactive text menu over the ledger. It reads one
// request at a time, calls the account service and prints the outcome.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"go-bank-ledger/model"
	"go-bank-ledger/repository"
	"go-bank-ledger/service"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const menu = `
1. Deposit
2. Withdraw
3. Show Transactions
4. Apply Interest
5. Exit
6. Show Account
7. List Accounts`

const (
	msgInvalidChoiceInput = "Invalid input, please enter a number."
	msgInvalidChoice      = "Invalid choice, please try again."
	msgInvalidNumbers     = "Invalid input, please enter valid numbers."
	msgInvalidID          = "Invalid input, please enter a valid Customer ID."
	msgNotFound           = "Customer ID not found, please try again."
	msgInvalidAmount      = "Invalid amount, please enter a positive amount with at most two decimal places."
)

// Dispatcher drives the menu loop against an AccountService.
type Dispatcher struct {
	svc *service.AccountService
	in  *bufio.Scanner
	out io.Writer
}

// NewDispatcher reads commands from in and writes prompts and results to out.
func NewDispatcher(svc *service.AccountService, in io.Reader, out io.Writer) *Dispatcher {
	return &Dispatcher{
		svc: svc,
		in:  bufio.NewScanner(in),
		out: out,
	}
}

// Run loops until the user picks Exit, input ends, or ctx is cancelled.
// It returns nil in all three cases; the caller performs shutdown.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		d.println(menu)
		line, ok := d.prompt("\nEnter your choice: ")
		if !ok {
			return d.in.Err()
		}

		choice, err := strconv.Atoi(line)
		if err != nil {
			d.println(msgInvalidChoiceInput)
			continue
		}

		switch choice {
		case 1:
			d.deposit()
		case 2:
			d.withdraw()
		case 3:
			d.showTransactions()
		case 4:
			d.applyInterest()
		case 5:
			return nil
		case 6:
			d.showAccount()
		case 7:
			d.listAccounts()
		default:
			d.println(msgInvalidChoice)
		}
	}
}

func (d *Dispatcher) deposit() {
	id, amount, ok := d.readIDAndAmount("Enter amount to deposit: ")
	if !ok {
		return
	}
	res, err := d.svc.Deposit(id, amount)
	if err != nil {
		d.reportError(err)
		return
	}
	d.printf("%s deposited successfully to %s's account. New balance: %s\n",
		money(res.Transaction.Amount), res.Account.Name, money(res.Account.Balance))
}

func (d *Dispatcher) withdraw() {
	id, amount, ok := d.readIDAndAmount("Enter amount to withdraw: ")
	if !ok {
		return
	}
	res, err := d.svc.Withdraw(id, amount)
	if err != nil {
		d.reportError(err)
		return
	}
	d.printf("%s withdrawn successfully from %s's account. New balance: %s\n",
		money(res.Transaction.Amount), res.Account.Name, money(res.Account.Balance))
}

func (d *Dispatcher) showTransactions() {
	id, ok := d.readID()
	if !ok {
		return
	}
	txs, err := d.svc.ListTransactions(id)
	if err != nil {
		d.reportError(err)
		return
	}
	if len(txs) == 0 {
		d.println("No transactions yet.")
		return
	}
	for i, tx := range txs {
		d.printf("%3d. %-8s %12s  balance %12s  %s\n",
			i+1, tx.Kind, money(tx.Amount), money(tx.BalanceAfter), tx.CreatedAt.Format("2006-01-02 15:04:05"))
	}
}

func (d *Dispatcher) applyInterest() {
	id, ok := d.readID()
	if !ok {
		return
	}
	res, err := d.svc.ApplyInterest(id)
	if err != nil {
		d.reportError(err)
		return
	}
	if !res.Applied {
		d.printf("Interest only applies to savings accounts; %s's account is %s.\n", res.Account.Name, res.Account.Type)
		return
	}
	d.printf("Interest of %s applied successfully to %s's account. New balance: %s\n",
		money(res.Transaction.Amount), res.Account.Name, money(res.Account.Balance))
}

func (d *Dispatcher) showAccount() {
	id, ok := d.readID()
	if !ok {
		return
	}
	view, err := d.svc.GetAccount(id)
	if err != nil {
		d.reportError(err)
		return
	}
	d.printAccount(view)
}

func (d *Dispatcher) listAccounts() {
	for _, view := range d.svc.ListAccounts() {
		d.printAccount(view)
	}
}

func (d *Dispatcher) printAccount(v model.AccountView) {
	d.printf("%d  %-20s %-8s balance %12s  transactions %d\n",
		v.ID, v.Name, v.Type, money(v.Balance), v.TransactionCount)
}

func (d *Dispatcher) readID() (int64, bool) {
	line, ok := d.prompt("Enter Customer ID: ")
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(line, 10, 64)
	if err != nil {
		d.println(msgInvalidID)
		return 0, false
	}
	return id, true
}

func (d *Dispatcher) readIDAndAmount(amountPrompt string) (int64, decimal.Decimal, bool) {
	line, ok := d.prompt("Enter Customer ID: ")
	if !ok {
		return 0, decimal.Zero, false
	}
	id, idErr := strconv.ParseInt(line, 10, 64)

	line, ok = d.prompt(amountPrompt)
	if !ok {
		return 0, decimal.Zero, false
	}
	amount, amtErr := decimal.NewFromString(line)

	if idErr != nil || amtErr != nil {
		d.println(msgInvalidNumbers)
		return 0, decimal.Zero, false
	}
	return id, amount, true
}

func (d *Dispatcher) reportError(err error) {
	switch {
	case errors.Is(err, repository.ErrAccountNotFound):
		d.println(msgNotFound)
	case errors.Is(err, model.ErrInvalidAmount):
		d.println(msgInvalidAmount)
	case errors.Is(err, model.ErrInsufficientFunds):
		d.println("Balance is not sufficient.")
	default:
		d.printf("Operation failed: %v\n", err)
	}
}

func (d *Dispatcher) prompt(text string) (string, bool) {
	fmt.Fprint(d.out, text)
	if !d.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(d.in.Text()), true
}

func (d *Dispatcher) println(s string) {
	fmt.Fprintln(d.out, s)
}

func (d *Dispatcher) printf(format string, args ...interface{}) {
	fmt.Fprintf(d.out, format, args...)
}

func money(v decimal.Decimal) string {
	return v.StringFixed(2)
}
