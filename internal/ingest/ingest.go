// Package ingest parses uploaded bank-statement tables. Uploads arrive with
// arbitrary delimiters, column orders and header names, so the parser detects
// the delimiter, maps headers onto canonical fields and normalizes each row,
// collecting per-row errors instead of aborting on the first bad line.
package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"receipt-reconciliation-backend/internal/apperr"
	"receipt-reconciliation-backend/internal/normalize"
)

// Canonical fields a statement column can map onto.
const (
	FieldDate        = "date"
	FieldDescription = "description"
	FieldAmount      = "amount"
	FieldDebit       = "debit"
	FieldCredit      = "credit"
	FieldReference   = "reference"
	FieldBalance     = "balance"
	FieldAccount     = "account"
)

// Mapping lets the caller pin column names explicitly. Names are resolved
// against the actual headers case-insensitively; any field left empty (or
// not found) falls back to keyword auto-detection.
type Mapping struct {
	Date        string `json:"date,omitempty"`
	Description string `json:"description,omitempty"`
	Amount      string `json:"amount,omitempty"`
	Reference   string `json:"reference,omitempty"`
}

// Candidate is one successfully parsed statement row, ready to become a
// BankRecord. Amount is signed: negative = debit.
type Candidate struct {
	Date        time.Time
	Description string
	Amount      float64
	Reference   string
	Account     string
	Balance     *float64
}

// RowError records why one data row was rejected. Row is 1-based and counts
// data rows only (the header is row 0, so to speak).
type RowError struct {
	Row    int    `json:"row"`
	Field  string `json:"field,omitempty"`
	Reason string `json:"reason"`
}

// Result is the outcome of one ingestion pass.
type Result struct {
	Records        []Candidate
	Errors         []RowError
	TotalRows      int
	SuccessfulRows int
	Delimiter      rune
	// Column count produced by the winning delimiter; a confidence signal
	// for the detection decision only.
	ColumnCount int
}

// Candidate delimiters in priority order; ties go to the earlier one.
var delimiterCandidates = []rune{',', ';', '\t', '|'}

// Keyword substrings per canonical field, checked in order against
// lower-cased headers. Fields are resolved in this slice order so that
// e.g. a "debit amount" header is claimed by debit before amount sees it.
var fieldKeywords = []struct {
	field    string
	keywords []string
}{
	{FieldDate, []string{"date", "posted", "time"}},
	{FieldDescription, []string{"description", "narrative", "details", "memo", "payee", "merchant", "particulars", "transaction"}},
	{FieldDebit, []string{"debit", "withdrawal", "money out", "paid out"}},
	{FieldCredit, []string{"credit", "deposit", "money in", "paid in"}},
	{FieldAmount, []string{"amount", "value", "sum", "total"}},
	{FieldReference, []string{"reference", "ref", "cheque", "check", "transaction id"}},
	{FieldBalance, []string{"balance"}},
	{FieldAccount, []string{"account"}},
}

// Descriptions matching one of these mark a non-negative single-column
// amount as income rather than spending.
var incomeKeywords = []string{
	"deposit", "salary", "refund", "interest", "payment received",
	"transfer in", "reimbursement", "cashback",
}

// Parse ingests a raw statement table. mapping and delimiter are optional
// (nil / 0 mean auto-detect). A partial result with per-row errors is normal;
// Parse itself only fails when the table is structurally unusable or no row
// parses at all.
func Parse(raw []byte, mapping *Mapping, delimiter rune) (*Result, error) {
	headerLine, ok := firstLine(raw)
	if !ok {
		return nil, apperr.New(apperr.ParseError, "empty table")
	}

	res := &Result{Delimiter: delimiter}
	if res.Delimiter == 0 {
		res.Delimiter, res.ColumnCount = detectDelimiter(headerLine)
	} else {
		res.ColumnCount = len(splitQuoted(headerLine, res.Delimiter))
	}

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.Comma = res.Delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		return nil, apperr.Wrap(apperr.ParseError, err, "cannot read header row")
	}

	columns := resolveColumns(headers, mapping)
	if _, ok := columns[FieldDate]; !ok {
		return nil, apperr.New(apperr.ParseError, "no date column recognized")
	}
	if _, ok := columns[FieldDescription]; !ok {
		return nil, apperr.New(apperr.ParseError, "no description column recognized")
	}

	rowNum := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			rowNum++
			res.TotalRows++
			res.Errors = append(res.Errors, RowError{Row: rowNum, Reason: err.Error()})
			continue
		}
		if isBlank(record) {
			continue
		}
		rowNum++
		res.TotalRows++

		cand, rowErr := parseRow(record, columns, rowNum)
		if rowErr != nil {
			res.Errors = append(res.Errors, *rowErr)
			continue
		}
		res.Records = append(res.Records, *cand)
		res.SuccessfulRows++
	}

	if res.TotalRows > 0 && res.SuccessfulRows == 0 {
		return res, apperr.New(apperr.ParseError,
			fmt.Sprintf("no rows parsed successfully (%d attempted)", res.TotalRows))
	}
	return res, nil
}

// detectDelimiter splits the header line on each candidate and keeps the one
// producing the most columns. Ties break on candidate priority order.
func detectDelimiter(header string) (rune, int) {
	best := delimiterCandidates[0]
	bestCount := len(splitQuoted(header, best))
	for _, cand := range delimiterCandidates[1:] {
		if n := len(splitQuoted(header, cand)); n > bestCount {
			best, bestCount = cand, n
		}
	}
	return best, bestCount
}

func splitQuoted(line string, delim rune) []string {
	r := csv.NewReader(strings.NewReader(line))
	r.Comma = delim
	r.LazyQuotes = true
	fields, err := r.Read()
	if err != nil {
		return strings.Split(line, string(delim))
	}
	return fields
}

// resolveColumns builds field -> column-index. Explicit mapping entries win;
// whatever they leave unresolved falls back to keyword detection. Each
// column serves at most one field.
func resolveColumns(headers []string, mapping *Mapping) map[string]int {
	columns := make(map[string]int)
	claimed := make(map[int]bool)

	lower := make([]string, len(headers))
	for i, h := range headers {
		lower[i] = strings.ToLower(strings.TrimSpace(h))
	}

	if mapping != nil {
		explicit := []struct{ field, name string }{
			{FieldDate, mapping.Date},
			{FieldDescription, mapping.Description},
			{FieldAmount, mapping.Amount},
			{FieldReference, mapping.Reference},
		}
		for _, e := range explicit {
			if e.name == "" {
				continue
			}
			want := strings.ToLower(strings.TrimSpace(e.name))
			for i, h := range lower {
				if h == want && !claimed[i] {
					columns[e.field] = i
					claimed[i] = true
					break
				}
			}
		}
	}

	for _, fk := range fieldKeywords {
		if _, done := columns[fk.field]; done {
			continue
		}
	keywords:
		for _, kw := range fk.keywords {
			for i, h := range lower {
				if claimed[i] {
					continue
				}
				if strings.Contains(h, kw) {
					columns[fk.field] = i
					claimed[i] = true
					break keywords
				}
			}
		}
	}
	return columns
}

func parseRow(record []string, columns map[string]int, rowNum int) (*Candidate, *RowError) {
	cell := func(field string) (string, bool) {
		i, ok := columns[field]
		if !ok || i >= len(record) {
			return "", false
		}
		return strings.TrimSpace(record[i]), true
	}

	dateTok, _ := cell(FieldDate)
	date, err := normalize.ParseDate(dateTok)
	if err != nil {
		return nil, &RowError{Row: rowNum, Field: FieldDate, Reason: fmt.Sprintf("bad date %q", dateTok)}
	}

	desc, _ := cell(FieldDescription)
	if desc == "" {
		return nil, &RowError{Row: rowNum, Field: FieldDescription, Reason: "missing description"}
	}

	amount, rowErr := resolveAmount(cell, desc, rowNum)
	if rowErr != nil {
		return nil, rowErr
	}

	cand := &Candidate{
		Date:        date,
		Description: desc,
		Amount:      amount,
	}
	if ref, ok := cell(FieldReference); ok {
		cand.Reference = ref
	}
	if acct, ok := cell(FieldAccount); ok {
		cand.Account = acct
	}
	if balTok, ok := cell(FieldBalance); ok && balTok != "" {
		if bal, err := normalize.ParseAmount(balTok); err == nil {
			cand.Balance = &bal
		}
	}
	return cand, nil
}

// resolveAmount produces the signed amount for one row, preferring a single
// combined amount column and falling back to split debit/credit columns
// (first non-zero wins).
func resolveAmount(cell func(string) (string, bool), desc string, rowNum int) (float64, *RowError) {
	if tok, ok := cell(FieldAmount); ok && tok != "" {
		amt, err := normalize.ParseAmount(tok)
		if err != nil {
			return 0, &RowError{Row: rowNum, Field: FieldAmount, Reason: fmt.Sprintf("bad amount %q", tok)}
		}
		if amt >= 0 && !looksLikeIncome(desc) {
			// Plain exports list spending as positive; treat it as a
			// debit unless the description says otherwise.
			amt = -amt
		}
		return amt, nil
	}

	debitTok, hasDebit := cell(FieldDebit)
	creditTok, hasCredit := cell(FieldCredit)
	if !hasDebit && !hasCredit {
		return 0, &RowError{Row: rowNum, Field: FieldAmount, Reason: "no amount column"}
	}

	if debitTok != "" {
		if amt, err := normalize.ParseAmount(debitTok); err == nil && amt != 0 {
			if amt > 0 {
				amt = -amt
			}
			return amt, nil
		}
	}
	if creditTok != "" {
		if amt, err := normalize.ParseAmount(creditTok); err == nil && amt != 0 {
			if amt < 0 {
				amt = -amt
			}
			return amt, nil
		}
	}
	return 0, &RowError{Row: rowNum, Field: FieldAmount, Reason: "neither debit nor credit has a positive amount"}
}

func looksLikeIncome(desc string) bool {
	d := strings.ToLower(desc)
	for _, kw := range incomeKeywords {
		if strings.Contains(d, kw) {
			return true
		}
	}
	return false
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func firstLine(raw []byte) (string, bool) {
	trimmed := bytes.TrimLeft(raw, "﻿ \r\n")
	if len(trimmed) == 0 {
		return "", false
	}
	if i := bytes.IndexByte(trimmed, '\n'); i >= 0 {
		return strings.TrimRight(string(trimmed[:i]), "\r"), true
	}
	return string(trimmed), true
}
