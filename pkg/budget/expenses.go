package budget

import (
	"sort"
	"strings"

	"github.com/iwvelando/fincalc/pkg/constants"
	"github.com/iwvelando/fincalc/pkg/mathutil"
)

// OthersLabel names the slice that groups the smallest expenses.
const OthersLabel = "Others"

// Expense is a named monthly spend.
type Expense struct {
	Name   string  `json:"name" yaml:"name" mapstructure:"name"`
	Amount float64 `json:"amount" yaml:"amount" mapstructure:"amount"`
}

// ExpenseSlice is an expense, or group of expenses, with its share of the total.
type ExpenseSlice struct {
	Name       string
	Amount     float64
	Percentage float64
}

// Allocation is the 50/30/20 split of a monthly total.
type Allocation struct {
	Essentials    float64
	Savings       float64
	Discretionary float64
}

// ExpenseSummary breaks down a month of expenses.
type ExpenseSummary struct {
	Total float64
	// Sorted holds every expense, largest first.
	Sorted []Expense
	// Slices holds at most MaxExpenseSlices entries; beyond that the smallest
	// expenses are grouped under OthersLabel.
	Slices     []ExpenseSlice
	Allocation Allocation
}

// Top returns the largest expense.
func (s ExpenseSummary) Top() Expense {
	return s.Sorted[0]
}

// TopPercentage is the largest expense's share of the total.
func (s ExpenseSummary) TopPercentage() float64 {
	return mathutil.CalculatePercentage(s.Sorted[0].Amount, s.Total)
}

// SummarizeExpenses totals and groups a list of positive expenses.
func SummarizeExpenses(expenses []Expense) (ExpenseSummary, bool) {
	if len(expenses) == 0 {
		return ExpenseSummary{}, false
	}

	sorted := make([]Expense, len(expenses))
	total := 0.0
	for i, e := range expenses {
		if strings.TrimSpace(e.Name) == "" || !mathutil.IsFinite(e.Amount) || e.Amount <= 0 {
			return ExpenseSummary{}, false
		}
		sorted[i] = e
		total += e.Amount
	}
	if !mathutil.IsFinite(total) {
		return ExpenseSummary{}, false
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Amount > sorted[j].Amount })

	summary := ExpenseSummary{
		Total:  total,
		Sorted: sorted,
		Allocation: Allocation{
			Essentials:    total * constants.EssentialsShare,
			Savings:       total * constants.SavingsShare,
			Discretionary: total * constants.DiscretionaryShare,
		},
	}

	shown := sorted
	others := 0.0
	if len(sorted) > constants.MaxExpenseSlices {
		shown = sorted[:constants.MaxExpenseSlices-1]
		for _, e := range sorted[constants.MaxExpenseSlices-1:] {
			others += e.Amount
		}
	}
	for _, e := range shown {
		summary.Slices = append(summary.Slices, ExpenseSlice{
			Name:       e.Name,
			Amount:     e.Amount,
			Percentage: mathutil.CalculatePercentage(e.Amount, total),
		})
	}
	if len(shown) < len(sorted) {
		summary.Slices = append(summary.Slices, ExpenseSlice{
			Name:       OthersLabel,
			Amount:     others,
			Percentage: mathutil.CalculatePercentage(others, total),
		})
	}

	return summary, true
}
