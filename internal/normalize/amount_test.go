package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"receipt-reconciliation-backend/internal/apperr"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		want    float64
		wantErr bool
	}{
		{name: "plain", token: "45.67", want: 45.67},
		{name: "dollar sign", token: "$45.67", want: 45.67},
		{name: "thousands", token: "$1,234.56", want: 1234.56},
		{name: "parentheses negative", token: "(45.67)", want: -45.67},
		{name: "parentheses with symbol", token: "($1,234.56)", want: -1234.56},
		{name: "leading minus", token: "-45.67", want: -45.67},
		{name: "minus after symbol", token: "$-45.67", want: -45.67},
		{name: "credit marker", token: "123.45 CR", want: -123.45},
		{name: "credit marker lowercase", token: "123.45 cr", want: -123.45},
		{name: "debit marker stripped", token: "123.45 DR", want: 123.45},
		{name: "credit marker abuts digits", token: "123.45CR", want: -123.45},
		{name: "debit marker abuts digits", token: "123.45DR", want: 123.45},
		{name: "credit word is not a marker", token: "CREDIT 45.67", want: 45.67},
		{name: "euro", token: "€99.00", want: 99},
		{name: "pound", token: "£12.50", want: 12.5},
		{name: "yen integer", token: "¥1500", want: 1500},
		{name: "rupee", token: "₹2,500.00", want: 2500},
		{name: "quoted", token: `"45.67"`, want: 45.67},
		{name: "padded", token: "  45.67  ", want: 45.67},
		{name: "european thousands dots", token: "1.234.56", want: 1234.56},
		{name: "trailing junk", token: "45.67 USD", want: 45.67},
		{name: "zero", token: "0.00", want: 0},
		{name: "empty", token: "", wantErr: true},
		{name: "whitespace only", token: "   ", wantErr: true},
		{name: "no digits", token: "N/A", wantErr: true},
		{name: "symbol only", token: "$", wantErr: true},
		{name: "lone dot", token: ".", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.token)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, apperr.ParseError, apperr.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestParseAmountParenthesesBeatDR(t *testing.T) {
	// DR never forces positive, so parentheses still win.
	got, err := ParseAmount("(45.67) DR")
	require.NoError(t, err)
	assert.InDelta(t, -45.67, got, 1e-9)
}
