package shell

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/term"

	"github.com/atinyakov/ebudget/internal/client/budget"
	"github.com/atinyakov/ebudget/internal/models"
)

type prompter struct {
	in         *bufio.Scanner
	out        io.Writer
	readSecret func() (string, error)
}

func newPrompter(in io.Reader, scanner *bufio.Scanner, out io.Writer) *prompter {
	p := &prompter{in: scanner, out: out}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.readSecret = func() (string, error) {
			b, err := term.ReadPassword(int(f.Fd()))
			fmt.Fprintln(out)
			return string(b), err
		}
	}
	return p
}

func (p *prompter) line(label string) (string, error) {
	fmt.Fprint(p.out, label)
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		return "", io.ErrUnexpectedEOF
	}
	return strings.TrimSpace(p.in.Text()), nil
}

func (p *prompter) password(label string) (string, error) {
	if p.readSecret == nil {
		return p.line(label)
	}
	fmt.Fprint(p.out, label)
	return p.readSecret()
}

// transaction asks for the fields of a transaction. Empty answers keep the
// values of current when editing; a new transaction defaults to today.
func (p *prompter) transaction(now time.Time, current *models.Transaction) (budget.TransactionInput, error) {
	in := budget.TransactionInput{Date: models.DateOf(now)}
	if current != nil {
		in = budget.TransactionInput{
			CategoryID: current.CategoryID,
			Kind:       current.Kind,
			Amount:     current.Amount,
			Date:       current.OccurredOn,
		}
	}

	answer, err := p.line(withDefault("Type (in/out)", string(in.Kind)))
	if err != nil {
		return in, err
	}
	if answer != "" || current == nil {
		if in.Kind, err = models.ParseKind(answer); err != nil {
			return in, err
		}
	}

	answer, err = p.line(withDefault("Amount", amountDefault(current)))
	if err != nil {
		return in, err
	}
	if answer != "" || current == nil {
		if in.Amount, err = decimal.NewFromString(answer); err != nil {
			return in, fmt.Errorf("invalid amount %q", answer)
		}
	}

	answer, err = p.line(withDefault("Category id", strconv.FormatInt(in.CategoryID, 10)))
	if err != nil {
		return in, err
	}
	if answer != "" {
		if in.CategoryID, err = strconv.ParseInt(answer, 10, 64); err != nil {
			return in, fmt.Errorf("invalid category id %q", answer)
		}
	}

	answer, err = p.line(withDefault("Date (yyyy-mm-dd)", in.Date.String()))
	if err != nil {
		return in, err
	}
	if answer != "" {
		if in.Date, err = models.ParseDate(answer); err != nil {
			return in, err
		}
	}
	return in, nil
}

func withDefault(label, def string) string {
	if def == "" || def == "0" {
		return label + ": "
	}
	return fmt.Sprintf("%s [%s]: ", label, def)
}

func amountDefault(current *models.Transaction) string {
	if current == nil {
		return ""
	}
	return current.Amount.String()
}
