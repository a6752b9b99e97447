package expense

import "time"

// Period tracks expenses against an initial balance for a budget window.
// Budget accounting is not wired into the application service yet; the type
// only aggregates amounts in memory.
type Period struct {
	start          time.Time
	end            time.Time
	initialBalance float64
	expenses       []*Expense
}

// NewPeriod creates a budget period. A zero start defaults to January 1st of
// the current year; a zero end defaults to one year after start.
func NewPeriod(start, end time.Time, initialBalance float64) *Period {
	if start.IsZero() {
		start = time.Date(time.Now().Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	if end.IsZero() {
		end = start.AddDate(1, 0, 0)
	}

	return &Period{
		start:          start,
		end:            end,
		initialBalance: initialBalance,
	}
}

// AddExpense records an expense against the period.
func (p *Period) AddExpense(e *Expense) {
	p.expenses = append(p.expenses, e)
}

// Total returns the sum of all recorded expense amounts.
func (p *Period) Total() float64 {
	var total float64
	for _, e := range p.expenses {
		total += e.Amount
	}
	return total
}

// TotalBetween returns the sum of expense amounts dated within [start, end].
func (p *Period) TotalBetween(start, end time.Time) float64 {
	var total float64
	for _, e := range p.expenses {
		if !e.Date.Before(start) && !e.Date.After(end) {
			total += e.Amount
		}
	}
	return total
}

// Balance returns the initial balance minus the recorded expense total.
func (p *Period) Balance() float64 {
	return p.initialBalance - p.Total()
}
