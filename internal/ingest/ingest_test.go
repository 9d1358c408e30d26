package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"receipt-reconciliation-backend/internal/apperr"
)

func TestParseCommaStatement(t *testing.T) {
	raw := []byte(strings.Join([]string{
		"Date,Description,Amount,Reference",
		"2024-01-15,WALMART SUPERCENTER #1234,45.67,REF001",
		"2024-01-16,Salary payment received,2500.00,REF002",
		"2024-01-17,AMAZON MARKETPLACE,-12.99,REF003",
	}, "\n"))

	res, err := Parse(raw, nil, 0)
	require.NoError(t, err)

	assert.Equal(t, ',', res.Delimiter)
	assert.Equal(t, 4, res.ColumnCount)
	assert.Equal(t, 3, res.TotalRows)
	assert.Equal(t, 3, res.SuccessfulRows)
	assert.Empty(t, res.Errors)
	require.Len(t, res.Records, 3)

	// Positive amount with no income keyword becomes a debit.
	assert.InDelta(t, -45.67, res.Records[0].Amount, 1e-9)
	assert.Equal(t, "WALMART SUPERCENTER #1234", res.Records[0].Description)
	assert.Equal(t, "REF001", res.Records[0].Reference)

	// Income keyword keeps the credit positive.
	assert.InDelta(t, 2500.00, res.Records[1].Amount, 1e-9)

	// Already-negative amount stays a debit.
	assert.InDelta(t, -12.99, res.Records[2].Amount, 1e-9)
}

func TestParseDelimiterDetection(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		delim rune
	}{
		{"semicolon", "Date;Description;Amount\n2024-01-15;Coffee;4.50", ';'},
		{"tab", "Date\tDescription\tAmount\n2024-01-15\tCoffee\t4.50", '\t'},
		{"pipe", "Date|Description|Amount\n2024-01-15|Coffee|4.50", '|'},
		{"comma wins tie", "Date,Description,Amount\n2024-01-15,Coffee,4.50", ','},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Parse([]byte(tt.raw), nil, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.delim, res.Delimiter)
			require.Len(t, res.Records, 1)
			assert.InDelta(t, -4.50, res.Records[0].Amount, 1e-9)
		})
	}
}

func TestParseExplicitDelimiterOverride(t *testing.T) {
	raw := []byte("Date;Description;Amount\n2024-01-15;Lunch, with colleagues;15.00")
	res, err := Parse(raw, nil, ';')
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "Lunch, with colleagues", res.Records[0].Description)
}

func TestParseDebitCreditColumns(t *testing.T) {
	raw := []byte(strings.Join([]string{
		"Date,Details,Debit,Credit,Balance",
		"15.01.2024,Grocery store,45.67,,954.33",
		"16.01.2024,Salary,,2500.00,3454.33",
		"17.01.2024,Nothing either way,,,3454.33",
	}, "\n"))

	res, err := Parse(raw, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, res.TotalRows)
	assert.Equal(t, 2, res.SuccessfulRows)
	require.Len(t, res.Records, 2)
	require.Len(t, res.Errors, 1)

	assert.InDelta(t, -45.67, res.Records[0].Amount, 1e-9)
	require.NotNil(t, res.Records[0].Balance)
	assert.InDelta(t, 954.33, *res.Records[0].Balance, 1e-9)

	assert.InDelta(t, 2500.00, res.Records[1].Amount, 1e-9)

	assert.Equal(t, 3, res.Errors[0].Row)
	assert.Equal(t, FieldAmount, res.Errors[0].Field)
}

func TestParseExplicitMapping(t *testing.T) {
	raw := []byte(strings.Join([]string{
		"When,What,How Much,Date Posted",
		"2024-01-15,Coffee shop,4.50,2024-01-16",
	}, "\n"))

	mapping := &Mapping{Date: "When", Description: "What", Amount: "how much"}
	res, err := Parse(raw, mapping, 0)
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "2024-01-15", res.Records[0].Date.Format("2006-01-02"))
	assert.Equal(t, "Coffee shop", res.Records[0].Description)
	assert.InDelta(t, -4.50, res.Records[0].Amount, 1e-9)
}

func TestParseBadRowsAreReportedNotFatal(t *testing.T) {
	raw := []byte(strings.Join([]string{
		"Date,Description,Amount",
		"2024-01-15,Row one,10.00",
		"2024-01-16,Row two,20.00",
		"not-a-date,Row three,30.00",
		"2024-01-18,Row four,40.00",
		"2024-01-19,Row five,50.00",
	}, "\n"))

	res, err := Parse(raw, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, res.TotalRows)
	assert.Equal(t, 4, res.SuccessfulRows)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, 3, res.Errors[0].Row)
	assert.Equal(t, FieldDate, res.Errors[0].Field)
}

func TestParseStructuralFailures(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		_, err := Parse(nil, nil, 0)
		require.Error(t, err)
		assert.Equal(t, apperr.ParseError, apperr.KindOf(err))
	})

	t.Run("no date column", func(t *testing.T) {
		_, err := Parse([]byte("Description,Amount\nCoffee,4.50"), nil, 0)
		require.Error(t, err)
	})

	t.Run("all rows bad", func(t *testing.T) {
		raw := []byte("Date,Description,Amount\nbad,Coffee,oops\nworse,Tea,nope")
		res, err := Parse(raw, nil, 0)
		require.Error(t, err)
		assert.Equal(t, apperr.ParseError, apperr.KindOf(err))
		// Partial result still describes what went wrong.
		require.NotNil(t, res)
		assert.Equal(t, 2, res.TotalRows)
		assert.Len(t, res.Errors, 2)
	})
}

func TestParseSkipsBlankRows(t *testing.T) {
	raw := []byte("Date,Description,Amount\n2024-01-15,Coffee,4.50\n,,\n\n2024-01-16,Tea,3.00")
	res, err := Parse(raw, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalRows)
	assert.Equal(t, 2, res.SuccessfulRows)
}
