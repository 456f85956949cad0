package reports_test

import (
	"testing"

	ferrors "github.com/jrsteele09/go-finance-client/internal/errors"
	"github.com/jrsteele09/go-finance-client/internal/utils"
	"github.com/jrsteele09/go-finance-client/reports"
	"github.com/jrsteele09/go-finance-client/transactions"
	"github.com/stretchr/testify/require"
)

func TestQuery(t *testing.T) {
	start, err := utils.ParseDate("2025-01-01")
	require.NoError(t, err)
	end, err := utils.ParseDate("2025-01-31")
	require.NoError(t, err)

	q := reports.Query{StartDate: start, EndDate: end, TransactionType: transactions.Income, Category: "Work"}
	require.NoError(t, q.Validate())

	v := q.Values()
	require.Equal(t, "2025-01-01", v.Get("start_date"))
	require.Equal(t, "2025-01-31", v.Get("end_date"))
	require.Equal(t, "income", v.Get("transaction_type"))
	require.Equal(t, "Work", v.Get("category"))

	require.Empty(t, reports.Query{}.Values())

	bad := reports.Query{TransactionType: "transfer"}
	require.ErrorIs(t, bad.Validate(), ferrors.ErrInvalidArgument)

	swapped := reports.Query{StartDate: end, EndDate: start}
	require.ErrorIs(t, swapped.Validate(), ferrors.ErrInvalidArgument)
}

func TestFormat(t *testing.T) {
	require.True(t, reports.ValidFormat(reports.PDF))
	require.True(t, reports.ValidFormat(reports.Excel))
	require.False(t, reports.ValidFormat("csv"))
	require.Equal(t, "relatorio_financeiro.xlsx", reports.Excel.FileName())
	require.Equal(t, "relatorio_financeiro.pdf", reports.PDF.FileName())
}
