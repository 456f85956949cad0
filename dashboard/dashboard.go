package dashboard

import (
	"fmt"
	"net/url"

	ferrors "github.com/jrsteele09/go-finance-client/internal/errors"
	"github.com/jrsteele09/go-finance-client/internal/utils"
	"github.com/jrsteele09/go-finance-client/money"
)

// MonthTotals is one point of the twelve month trend.
type MonthTotals struct {
	Month   string       `json:"month"` // YYYY-MM
	Income  money.Amount `json:"income"`
	Expense money.Amount `json:"expense"`
}

// RecentTransaction is the reduced transaction shape embedded in Stats.
type RecentTransaction struct {
	ID          int64        `json:"id"`
	Type        string       `json:"type"`
	Description string       `json:"description"`
	Amount      money.Amount `json:"amount"`
	Date        string       `json:"date"`
	Category    string       `json:"category"`
}

// Stats is the aggregate behind the dashboard.
type Stats struct {
	TotalIncome        money.Amount            `json:"total_income"`
	TotalExpense       money.Amount            `json:"total_expense"`
	Balance            money.Amount            `json:"balance"`
	ExpenseByCategory  map[string]money.Amount `json:"expense_by_category"`
	IncomeByCategory   map[string]money.Amount `json:"income_by_category"`
	MonthlyTrend       []MonthTotals           `json:"monthly_trend"`
	RecentTransactions []RecentTransaction     `json:"recent_transactions"`
	FixedExpenses      money.Amount            `json:"fixed_expenses"`
	SporadicExpenses   money.Amount            `json:"sporadic_expenses"`
	Investments        money.Amount            `json:"investments"`
	MonthlyBalance     money.Amount            `json:"monthly_balance"`
}

// Period bounds the stats query; zero dates are left open.
type Period struct {
	Start utils.Date
	End   utils.Date
}

func (p Period) Values() url.Values {
	v := url.Values{}
	if !p.Start.IsZero() {
		v.Set("start_date", p.Start.String())
	}
	if !p.End.IsZero() {
		v.Set("end_date", p.End.String())
	}
	return v
}

func (p Period) Validate() error {
	if !p.Start.IsZero() && !p.End.IsZero() && p.End.Before(p.Start.Time) {
		return fmt.Errorf("%w: end date %s is before start date %s", ferrors.ErrInvalidArgument, p.End, p.Start)
	}
	return nil
}

type HourlyCalculationRequest struct {
	Month       int     `json:"month"`
	Year        int     `json:"year"`
	DaysWorked  int     `json:"days_worked"`
	HoursPerDay float64 `json:"hours_per_day"`
}

func (r HourlyCalculationRequest) Validate() error {
	if r.Month < 1 || r.Month > 12 {
		return fmt.Errorf("%w: month must be between 1 and 12", ferrors.ErrInvalidArgument)
	}
	if r.Year < 1 {
		return fmt.Errorf("%w: year is required", ferrors.ErrInvalidArgument)
	}
	if r.DaysWorked <= 0 {
		return fmt.Errorf("%w: days worked must be positive", ferrors.ErrInvalidArgument)
	}
	if r.HoursPerDay <= 0 || r.HoursPerDay > 24 {
		return fmt.Errorf("%w: hours per day must be between 0 and 24", ferrors.ErrInvalidArgument)
	}
	return nil
}

type HourlyCalculationResponse struct {
	TotalReceived money.Amount `json:"total_received"`
	DaysWorked    int          `json:"days_worked"`
	HoursPerDay   float64      `json:"hours_per_day"`
	TotalHours    float64      `json:"total_hours"`
	ValuePerHour  money.Amount `json:"value_per_hour"`
	ValuePerDay   money.Amount `json:"value_per_day"`
	ValuePerWeek  money.Amount `json:"value_per_week"`
	Month         string       `json:"month"`
}
