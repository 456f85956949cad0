package reports

import (
	"fmt"
	"net/url"

	ferrors "github.com/jrsteele09/go-finance-client/internal/errors"
	"github.com/jrsteele09/go-finance-client/internal/utils"
	"github.com/jrsteele09/go-finance-client/transactions"
)

// Format selects the report endpoint.
type Format string

const (
	PDF   Format = "pdf"
	Excel Format = "excel"
)

// Query selects the transactions a report covers. Zero values are not sent.
type Query struct {
	StartDate       utils.Date
	EndDate         utils.Date
	TransactionType transactions.Type
	Category        string
}

func (q Query) Values() url.Values {
	v := url.Values{}
	if !q.StartDate.IsZero() {
		v.Set("start_date", q.StartDate.String())
	}
	if !q.EndDate.IsZero() {
		v.Set("end_date", q.EndDate.String())
	}
	if q.TransactionType != "" {
		v.Set("transaction_type", string(q.TransactionType))
	}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	return v
}

func (q Query) Validate() error {
	if q.TransactionType != "" && !transactions.ValidType(q.TransactionType) {
		return fmt.Errorf("%w: unknown transaction type %q", ferrors.ErrInvalidArgument, q.TransactionType)
	}
	if !q.StartDate.IsZero() && !q.EndDate.IsZero() && q.EndDate.Before(q.StartDate.Time) {
		return fmt.Errorf("%w: end date is before start date", ferrors.ErrInvalidArgument)
	}
	return nil
}

// FileName is the default name for a downloaded report.
func (f Format) FileName() string {
	if f == Excel {
		return "relatorio_financeiro.xlsx"
	}
	return "relatorio_financeiro.pdf"
}

func ValidFormat(f Format) bool {
	return f == PDF || f == Excel
}
