package transactions

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	ferrors "github.com/jrsteele09/go-finance-client/internal/errors"
	"github.com/jrsteele09/go-finance-client/internal/utils"
	"github.com/jrsteele09/go-finance-client/money"
)

// Type says whether money left or entered the account.
type Type string

const (
	Expense Type = "expense"
	Income  Type = "income"
)

// Subtype refines a Type for the dashboard breakdowns.
type Subtype string

const (
	Fixed      Subtype = "fixed"      // Recurring expense
	Sporadic   Subtype = "sporadic"   // One-off expense
	Investment Subtype = "investment" // Income set aside
	Received   Subtype = "received"   // Regular income
)

const DefaultCategory = "Other"

type Transaction struct {
	ID          int64            `json:"id"`
	Type        Type             `json:"type"`
	Subtype     *Subtype         `json:"subtype,omitempty"`
	Description string           `json:"description"`
	Amount      money.Amount     `json:"amount"`
	Date        utils.Date       `json:"date"`
	Category    string           `json:"category"`
	Notes       *string          `json:"notes,omitempty"`
	CreatedAt   utils.Timestamp  `json:"created_at"`
	UpdatedAt   *utils.Timestamp `json:"updated_at,omitempty"`
}

// Input is the body of a create or update. For updates, nil fields are
// left untouched by the server.
type Input struct {
	Type        *Type         `json:"type,omitempty"`
	Subtype     *Subtype      `json:"subtype,omitempty"`
	Description *string       `json:"description,omitempty"`
	Amount      *money.Amount `json:"amount,omitempty"`
	Date        *utils.Date   `json:"date,omitempty"`
	Category    *string       `json:"category,omitempty"`
	Notes       *string       `json:"notes,omitempty"`
}

// ValidateCreate checks the fields the server requires for a new
// transaction, filling in the default category.
func (in *Input) ValidateCreate() error {
	if in.Type == nil {
		return fmt.Errorf("%w: type is required", ferrors.ErrInvalidArgument)
	}
	if in.Description == nil || strings.TrimSpace(*in.Description) == "" {
		return fmt.Errorf("%w: description is required", ferrors.ErrInvalidArgument)
	}
	if in.Amount == nil {
		return fmt.Errorf("%w: amount is required", ferrors.ErrInvalidArgument)
	}
	if in.Date == nil || in.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ferrors.ErrInvalidArgument)
	}
	if in.Category == nil || *in.Category == "" {
		in.Category = utils.Ptr(DefaultCategory)
	}
	return in.Validate()
}

// Validate checks the fields that are set.
func (in *Input) Validate() error {
	if in.Type != nil && !ValidType(*in.Type) {
		return fmt.Errorf("%w: unknown type %q", ferrors.ErrInvalidArgument, *in.Type)
	}
	if in.Subtype != nil && !ValidSubtype(*in.Subtype) {
		return fmt.Errorf("%w: unknown subtype %q", ferrors.ErrInvalidArgument, *in.Subtype)
	}
	if in.Amount != nil && !in.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be greater than zero", ferrors.ErrInvalidArgument)
	}
	return nil
}

// Filter narrows a transaction listing. Zero values are not sent.
type Filter struct {
	Skip      int
	Limit     int
	Type      Type
	StartDate utils.Date
	EndDate   utils.Date
}

func (f Filter) Values() url.Values {
	v := url.Values{}
	if f.Skip > 0 {
		v.Set("skip", strconv.Itoa(f.Skip))
	}
	if f.Limit > 0 {
		v.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Type != "" {
		v.Set("transaction_type", string(f.Type))
	}
	if !f.StartDate.IsZero() {
		v.Set("start_date", f.StartDate.String())
	}
	if !f.EndDate.IsZero() {
		v.Set("end_date", f.EndDate.String())
	}
	return v
}

func ValidType(t Type) bool {
	return t == Expense || t == Income
}

func ValidSubtype(s Subtype) bool {
	switch s {
	case Fixed, Sporadic, Investment, Received:
		return true
	}
	return false
}
