package money_test

import (
	"encoding/json"
	"testing"

	"github.com/jrsteele09/go-finance-client/money"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"12.34", "12.34", false},
		{"12,34", "12.34", false},
		{" 1500 ", "1500", false},
		{"1.234,56", "", true},
		{"abc", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			a, err := money.Parse(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, a.String())
		})
	}
}

func TestAmount_JSON(t *testing.T) {
	a, err := money.Parse("99.90")
	require.NoError(t, err)

	b, err := json.Marshal(struct {
		Amount money.Amount `json:"amount"`
	}{a})
	require.NoError(t, err)
	require.JSONEq(t, `{"amount": 99.9}`, string(b))

	var decoded struct {
		Amount money.Amount `json:"amount"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"amount": 1250.5}`), &decoded))
	require.Equal(t, "1250.5", decoded.Amount.String())

	require.NoError(t, json.Unmarshal([]byte(`{"amount": "7.25"}`), &decoded))
	require.Equal(t, "7.25", decoded.Amount.String())
}

func TestFormatBRL(t *testing.T) {
	tests := map[string]string{
		"0":          "R$ 0,00",
		"5.5":        "R$ 5,50",
		"1234.56":    "R$ 1.234,56",
		"1000000":    "R$ 1.000.000,00",
		"-250.1":     "-R$ 250,10",
		"123456.789": "R$ 123.456,79",
	}
	for in, want := range tests {
		a, err := money.Parse(in)
		require.NoError(t, err)
		require.Equal(t, want, money.FormatBRL(a), in)
	}
}
