// Package shell is the interactive front end of the client: a line-based
// command loop over the budget engine and the auth controller.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/ebudget/internal/client/api"
	"github.com/atinyakov/ebudget/internal/client/budget"
	"github.com/atinyakov/ebudget/internal/models"
)

// Engine is the budget engine as used by the shell.
type Engine interface {
	SyncAll(ctx context.Context, sess models.Session) error
	SyncCategories(ctx context.Context, sess models.Session) error
	AddCategory(ctx context.Context, sess models.Session, name string) (models.Category, error)
	UpdateCategory(ctx context.Context, sess models.Session, id int64, name string) (models.Category, error)
	DeleteCategory(ctx context.Context, sess models.Session, id int64) error
	SyncTransactions(ctx context.Context, sess models.Session) error
	AddTransaction(ctx context.Context, sess models.Session, in budget.TransactionInput) (models.Transaction, error)
	UpdateTransaction(ctx context.Context, sess models.Session, id int64, in budget.TransactionInput) (models.Transaction, error)
	DeleteTransaction(ctx context.Context, sess models.Session, id int64) error
	Categories(ctx context.Context, owner int64) ([]models.Category, error)
	Transactions(ctx context.Context, owner int64) ([]models.Transaction, error)
	Summary(ctx context.Context, owner int64) (budget.Totals, error)
	WeeklySummary(ctx context.Context, owner int64) (<-chan []budget.DaySummary, error)
}

// Auth is the session controller as used by the shell.
type Auth interface {
	Login(ctx context.Context, email, password string) (models.User, error)
	Register(ctx context.Context, name, email, password string) (models.User, error)
	Logout(ctx context.Context) error
	Session() models.Session
}

const helpText = `Available commands:
  register                  create an account
  login                     sign in
  logout                    sign out
  whoami                    show the signed-in user
  sync                      refresh categories and transactions
  categories                list categories
  cat-add <name>            add a category
  cat-edit <id> <name>      rename a category
  cat-del <id>              delete a category
  tx                        list transactions
  tx-add                    add a transaction
  tx-edit <id>              edit a transaction
  tx-del <id>               delete a transaction
  summary                   income and expense totals
  weekly                    last seven days
  exit                      quit`

// Shell reads commands from in and writes results to out.
type Shell struct {
	in      *bufio.Scanner
	out     io.Writer
	prompts *prompter
	engine  Engine
	auth    Auth
	log     *zap.Logger
	now     func() time.Time
}

// Option configures a Shell.
type Option func(*Shell)

// WithLogger sets the logger used for background work.
func WithLogger(l *zap.Logger) Option {
	return func(s *Shell) { s.log = l }
}

// WithClock sets the source of the default transaction date.
func WithClock(now func() time.Time) Option {
	return func(s *Shell) { s.now = now }
}

// WithPasswordReader replaces the hidden password input.
func WithPasswordReader(read func() (string, error)) Option {
	return func(s *Shell) { s.prompts.readSecret = read }
}

// New builds a shell. When in is a terminal, passwords are read without
// echo.
func New(in io.Reader, out io.Writer, engine Engine, auth Auth, opts ...Option) *Shell {
	scanner := bufio.NewScanner(in)
	s := &Shell{
		in:      scanner,
		out:     out,
		prompts: newPrompter(in, scanner, out),
		engine:  engine,
		auth:    auth,
		log:     zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes commands until exit, end of input or ctx is done.
func (s *Shell) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(s.out, "ebudget> ")
		if !s.in.Scan() {
			fmt.Fprintln(s.out)
			return s.in.Err()
		}
		args := strings.Fields(s.in.Text())
		if len(args) == 0 {
			continue
		}
		if args[0] == "exit" || args[0] == "quit" {
			fmt.Fprintln(s.out, "Bye")
			return nil
		}
		if err := s.exec(ctx, args[0], args[1:]); err != nil {
			fmt.Fprintln(s.out, "Error:", err)
		}
	}
}

func (s *Shell) exec(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "help":
		fmt.Fprintln(s.out, helpText)
		return nil
	case "register":
		return s.register(ctx)
	case "login":
		return s.login(ctx)
	case "logout":
		if err := s.auth.Logout(ctx); err != nil {
			return err
		}
		fmt.Fprintln(s.out, "Signed out")
		return nil
	case "whoami":
		sess := s.auth.Session()
		if !sess.Valid() {
			fmt.Fprintln(s.out, "Not signed in")
			return nil
		}
		fmt.Fprintf(s.out, "Signed in as user %d\n", sess.UserID)
		return nil
	}

	sess := s.auth.Session()
	if !sess.Valid() {
		if isKnown(cmd) {
			return budget.ErrNotAuthenticated
		}
		fmt.Fprintln(s.out, "Unknown command. Type 'help' for a list of commands.")
		return nil
	}

	err := s.execSession(ctx, cmd, args, sess)
	if api.IsUnauthorized(err) {
		s.expire(ctx)
	}
	return err
}

// expire drops a session the backend no longer accepts.
func (s *Shell) expire(ctx context.Context) {
	if err := s.auth.Logout(ctx); err != nil {
		s.log.Warn("cannot clear rejected session", zap.Error(err))
		return
	}
	fmt.Fprintln(s.out, "Session expired, please log in again")
}

func (s *Shell) execSession(ctx context.Context, cmd string, args []string, sess models.Session) error {
	switch cmd {
	case "sync":
		if err := s.engine.SyncAll(ctx, sess); err != nil {
			return err
		}
		fmt.Fprintln(s.out, "Synced")
		return nil
	case "categories":
		return s.listCategories(ctx, sess)
	case "cat-add":
		if len(args) == 0 {
			return usage("cat-add <name>")
		}
		c, err := s.engine.AddCategory(ctx, sess, strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "Category %d added\n", c.ID)
		return s.listCategories(ctx, sess)
	case "cat-edit":
		if len(args) < 2 {
			return usage("cat-edit <id> <name>")
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if _, err := s.engine.UpdateCategory(ctx, sess, id, strings.Join(args[1:], " ")); err != nil {
			return err
		}
		fmt.Fprintln(s.out, "Category updated")
		return s.listCategories(ctx, sess)
	case "cat-del":
		if len(args) != 1 {
			return usage("cat-del <id>")
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := s.engine.DeleteCategory(ctx, sess, id); err != nil {
			return err
		}
		fmt.Fprintln(s.out, "Category deleted")
		return s.listCategories(ctx, sess)
	case "tx":
		return s.listTransactions(ctx, sess)
	case "tx-add":
		in, err := s.prompts.transaction(s.now(), nil)
		if err != nil {
			return err
		}
		t, err := s.engine.AddTransaction(ctx, sess, in)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "Transaction %d added\n", t.ID)
		return s.listTransactions(ctx, sess)
	case "tx-edit":
		if len(args) != 1 {
			return usage("tx-edit <id>")
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		current, err := s.findTransaction(ctx, sess.UserID, id)
		if err != nil {
			return err
		}
		in, err := s.prompts.transaction(s.now(), current)
		if err != nil {
			return err
		}
		if _, err := s.engine.UpdateTransaction(ctx, sess, id, in); err != nil {
			return err
		}
		fmt.Fprintln(s.out, "Transaction updated")
		return s.listTransactions(ctx, sess)
	case "tx-del":
		if len(args) != 1 {
			return usage("tx-del <id>")
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := s.engine.DeleteTransaction(ctx, sess, id); err != nil {
			return err
		}
		fmt.Fprintln(s.out, "Transaction deleted")
		return s.listTransactions(ctx, sess)
	case "summary":
		return s.summary(ctx, sess)
	case "weekly":
		return s.weekly(ctx, sess)
	}

	fmt.Fprintln(s.out, "Unknown command. Type 'help' for a list of commands.")
	return nil
}

func (s *Shell) register(ctx context.Context) error {
	name, err := s.prompts.line("Name: ")
	if err != nil {
		return err
	}
	email, err := s.prompts.line("Email: ")
	if err != nil {
		return err
	}
	password, err := s.prompts.password("Password: ")
	if err != nil {
		return err
	}
	u, err := s.auth.Register(ctx, name, email, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Welcome, %s\n", u.Name)
	return s.refresh(ctx)
}

func (s *Shell) login(ctx context.Context) error {
	email, err := s.prompts.line("Email: ")
	if err != nil {
		return err
	}
	password, err := s.prompts.password("Password: ")
	if err != nil {
		return err
	}
	u, err := s.auth.Login(ctx, email, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Welcome back, %s\n", displayName(u))
	return s.refresh(ctx)
}

func (s *Shell) refresh(ctx context.Context) error {
	if err := s.engine.SyncAll(ctx, s.auth.Session()); err != nil {
		return err
	}
	return nil
}

// listCategories refreshes from the backend, then prints the cache. A failed
// refresh still shows what is cached.
func (s *Shell) listCategories(ctx context.Context, sess models.Session) error {
	syncErr := s.engine.SyncCategories(ctx, sess)
	cats, err := s.engine.Categories(ctx, sess.UserID)
	if err != nil {
		return err
	}
	if len(cats) == 0 {
		fmt.Fprintln(s.out, "No categories")
	}
	for _, c := range cats {
		fmt.Fprintf(s.out, "%6d  %s\n", c.ID, c.Name)
	}
	return syncErr
}

func (s *Shell) listTransactions(ctx context.Context, sess models.Session) error {
	syncErr := s.engine.SyncTransactions(ctx, sess)
	txs, err := s.engine.Transactions(ctx, sess.UserID)
	if err != nil {
		return err
	}
	if len(txs) == 0 {
		fmt.Fprintln(s.out, "No transactions")
	}
	for _, t := range txs {
		fmt.Fprintf(s.out, "%6d  %s  %-7s %12s  %s\n", t.ID, t.OccurredOn, kindLabel(t.Kind), t.Amount.StringFixed(2), t.CategoryName)
	}
	return syncErr
}

func (s *Shell) findTransaction(ctx context.Context, owner, id int64) (*models.Transaction, error) {
	txs, err := s.engine.Transactions(ctx, owner)
	if err != nil {
		return nil, err
	}
	for i := range txs {
		if txs[i].ID == id {
			return &txs[i], nil
		}
	}
	return nil, fmt.Errorf("transaction %d not found", id)
}

func (s *Shell) summary(ctx context.Context, sess models.Session) error {
	syncErr := s.engine.SyncTransactions(ctx, sess)
	t, err := s.engine.Summary(ctx, sess.UserID)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Income:  %12s\n", t.Income.StringFixed(2))
	fmt.Fprintf(s.out, "Expense: %12s\n", t.Expense.StringFixed(2))
	fmt.Fprintf(s.out, "Balance: %12s\n", t.Balance().StringFixed(2))
	return syncErr
}

func (s *Shell) weekly(ctx context.Context, sess models.Session) error {
	syncErr := s.engine.SyncTransactions(ctx, sess)

	wctx, cancel := context.WithCancel(ctx)
	defer cancel()
	ch, err := s.engine.WeeklySummary(wctx, sess.UserID)
	if err != nil {
		return err
	}
	var week []budget.DaySummary
	select {
	case w, ok := <-ch:
		if !ok {
			return errors.New("weekly summary closed")
		}
		week = w
	case <-ctx.Done():
		return ctx.Err()
	}
	for _, d := range week {
		fmt.Fprintf(s.out, "%s  +%10s  -%10s\n", d.Label, d.Income.StringFixed(2), d.Expense.StringFixed(2))
	}
	return syncErr
}

var sessionCommands = map[string]bool{
	"sync": true, "categories": true, "cat-add": true, "cat-edit": true, "cat-del": true,
	"tx": true, "tx-add": true, "tx-edit": true, "tx-del": true, "summary": true, "weekly": true,
}

func isKnown(cmd string) bool { return sessionCommands[cmd] }

func usage(u string) error { return fmt.Errorf("usage: %s", u) }

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func kindLabel(k models.Kind) string {
	switch k {
	case models.Income:
		return "income"
	case models.Expense:
		return "expense"
	}
	return string(k)
}

func displayName(u models.User) string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}
