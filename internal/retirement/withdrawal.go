package retirement

import (
	"github.com/rgehrsitz/ukplan/internal/calculation"
	"github.com/shopspring/decimal"
)

// WithdrawalStrategy decides how much to take from a pot each year. The
// returned amount is what the strategy asks for; the simulation caps it at
// the balance.
type WithdrawalStrategy interface {
	CalculateWithdrawal(currentBalance decimal.Decimal, year int) decimal.Decimal
	GetStrategyName() string
}

// InflationIndexedWithdrawal takes a fixed share of the starting pot in year
// one and raises it with inflation every year after
type InflationIndexedWithdrawal struct {
	InitialWithdrawalRate decimal.Decimal
	InflationRate         decimal.Decimal
	InitialBalance        decimal.Decimal
	FirstWithdrawalAmount decimal.Decimal
}

// NewInflationIndexedWithdrawal creates an inflation-indexed strategy
func NewInflationIndexedWithdrawal(initialBalance, withdrawalRate, inflationRate decimal.Decimal) *InflationIndexedWithdrawal {
	return &InflationIndexedWithdrawal{
		InitialWithdrawalRate: withdrawalRate,
		InflationRate:         inflationRate,
		InitialBalance:        initialBalance,
		FirstWithdrawalAmount: initialBalance.Mul(withdrawalRate),
	}
}

// CalculateWithdrawal calculates the withdrawal amount for a given year
func (w *InflationIndexedWithdrawal) CalculateWithdrawal(currentBalance decimal.Decimal, year int) decimal.Decimal {
	if year <= 1 {
		return w.FirstWithdrawalAmount
	}
	return w.FirstWithdrawalAmount.Mul(calculation.GrowthFactor(w.InflationRate, year-1))
}

// GetStrategyName returns the name of this strategy
func (w *InflationIndexedWithdrawal) GetStrategyName() string {
	return "inflation_indexed"
}

// PercentageOfBalanceWithdrawal takes a fixed share of whatever is left
type PercentageOfBalanceWithdrawal struct {
	WithdrawalRate decimal.Decimal
}

// NewPercentageOfBalanceWithdrawal creates a percentage-of-balance strategy
func NewPercentageOfBalanceWithdrawal(withdrawalRate decimal.Decimal) *PercentageOfBalanceWithdrawal {
	return &PercentageOfBalanceWithdrawal{WithdrawalRate: withdrawalRate}
}

// CalculateWithdrawal calculates the withdrawal as a share of the current balance
func (w *PercentageOfBalanceWithdrawal) CalculateWithdrawal(currentBalance decimal.Decimal, year int) decimal.Decimal {
	return currentBalance.Mul(w.WithdrawalRate)
}

// GetStrategyName returns the name of this strategy
func (w *PercentageOfBalanceWithdrawal) GetStrategyName() string {
	return "percentage_of_balance"
}

// SimulationYear is one year of a drawdown simulation
type SimulationYear struct {
	Year           int             `json:"year"`
	OpeningBalance decimal.Decimal `json:"openingBalance"`
	Withdrawal     decimal.Decimal `json:"withdrawal"`
	Growth         decimal.Decimal `json:"growth"`
	ClosingBalance decimal.Decimal `json:"closingBalance"`
}

// SimulationResult summarises a drawdown simulation
type SimulationResult struct {
	Strategy       string           `json:"strategy"`
	Years          []SimulationYear `json:"years"`
	TotalWithdrawn decimal.Decimal  `json:"totalWithdrawn"`
	FinalBalance   decimal.Decimal  `json:"finalBalance"`
	YearsSustained int              `json:"yearsSustained"`
	Survives       bool             `json:"survives"`
}

// Simulate draws from the pot at the start of each year and grows the
// remainder at a fixed rate. The pot survives if every requested withdrawal
// is paid in full.
func Simulate(pot decimal.Decimal, years int, growthRate decimal.Decimal, strategy WithdrawalStrategy) SimulationResult {
	result := SimulationResult{
		Strategy:       strategy.GetStrategyName(),
		TotalWithdrawn: decimal.Zero,
		Survives:       true,
	}

	balance := pot
	for year := 1; year <= years; year++ {
		requested := calculation.NonNegative(strategy.CalculateWithdrawal(balance, year))
		withdrawal := decimal.Min(requested, balance)
		if withdrawal.LessThan(requested) {
			result.Survives = false
		} else if result.Survives {
			result.YearsSustained = year
		}

		remaining := balance.Sub(withdrawal)
		growth := remaining.Mul(growthRate)
		row := SimulationYear{
			Year:           year,
			OpeningBalance: balance.Round(2),
			Withdrawal:     withdrawal.Round(2),
			Growth:         growth.Round(2),
		}
		balance = calculation.NonNegative(remaining.Add(growth))
		row.ClosingBalance = balance.Round(2)
		result.Years = append(result.Years, row)
		result.TotalWithdrawn = result.TotalWithdrawn.Add(withdrawal)
	}

	result.TotalWithdrawn = result.TotalWithdrawn.Round(2)
	result.FinalBalance = balance.Round(2)
	return result
}
