package budget

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/atinyakov/ebudget/internal/models"
)

// WeekLength is the number of days in the weekly rollup.
const WeekLength = 7

// Totals are the income and expense sums of a set of transactions.
type Totals struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// Balance is income minus expense.
func (t Totals) Balance() decimal.Decimal {
	return t.Income.Sub(t.Expense)
}

// DaySummary is one day of the weekly rollup.
type DaySummary struct {
	Date    models.Date
	Label   string
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// SyncAll refreshes categories and transactions in parallel. Both are always
// attempted; their failures are joined.
func (s *Service) SyncAll(ctx context.Context, sess models.Session) error {
	if err := requireSession(sess); err != nil {
		return err
	}
	var catErr, txErr error
	var g errgroup.Group
	g.Go(func() error {
		catErr = s.SyncCategories(ctx, sess)
		return nil
	})
	g.Go(func() error {
		txErr = s.SyncTransactions(ctx, sess)
		return nil
	})
	_ = g.Wait()
	return errors.Join(catErr, txErr)
}

// Summary totals the cached transactions of owner by kind.
func (s *Service) Summary(ctx context.Context, owner int64) (Totals, error) {
	txs, err := s.cache.Transactions(ctx, owner)
	if err != nil {
		return Totals{}, err
	}
	return Sum(txs), nil
}

// Sum partitions txs by kind and adds up each side.
func Sum(txs []models.Transaction) Totals {
	t := Totals{Income: decimal.Zero, Expense: decimal.Zero}
	for _, tx := range txs {
		switch tx.Kind {
		case models.Income:
			t.Income = t.Income.Add(tx.Amount)
		case models.Expense:
			t.Expense = t.Expense.Add(tx.Amount)
		}
	}
	return t
}

// WeekOf buckets txs into the seven days ending with today, oldest first.
// Days without transactions are present with zero sums.
func WeekOf(today models.Date, txs []models.Transaction) []DaySummary {
	start := today.AddDays(-(WeekLength - 1))
	week := make([]DaySummary, WeekLength)
	for i := range week {
		d := start.AddDays(i)
		week[i] = DaySummary{Date: d, Label: d.String(), Income: decimal.Zero, Expense: decimal.Zero}
	}
	for _, tx := range txs {
		if tx.OccurredOn.Before(start) || today.Before(tx.OccurredOn) {
			continue
		}
		i := int(tx.OccurredOn.Time().Sub(start.Time()).Hours() / 24)
		switch tx.Kind {
		case models.Income:
			week[i].Income = week[i].Income.Add(tx.Amount)
		case models.Expense:
			week[i].Expense = week[i].Expense.Add(tx.Amount)
		}
	}
	return week
}

// WeeklySummary follows the cached transactions of owner and emits the
// rollup of the current week on every change, until ctx is done. A reader
// that falls behind only sees the newest rollup.
func (s *Service) WeeklySummary(ctx context.Context, owner int64) (<-chan []DaySummary, error) {
	src, err := s.cache.WatchTransactions(ctx, owner)
	if err != nil {
		return nil, err
	}
	out := make(chan []DaySummary, 1)
	go func() {
		defer close(out)
		for txs := range src {
			week := WeekOf(models.DateOf(s.now()), txs)
			select {
			case <-out:
			default:
			}
			select {
			case out <- week:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
