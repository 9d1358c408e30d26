package matching

import (
	"math"
	"strings"
	"time"
	"unicode"

	"receipt-reconciliation-backend/internal/models"
)

// AcceptThreshold is the minimum confidence score an automatic match must
// reach to be accepted.
const AcceptThreshold = 70.0

// Sub-score weights. Amount agreement dominates, date proximity next,
// merchant/description text last.
const (
	amountWeight = 0.5
	dateWeight   = 0.3
	textWeight   = 0.2
)

// Breakdown carries the per-signal sub-scores behind a confidence score.
// Persisted as match details so a reviewer can see why a pair matched.
type Breakdown struct {
	AmountScore float64 `json:"amount_score"`
	DateScore   float64 `json:"date_score"`
	TextScore   float64 `json:"text_score"`
	Total       float64 `json:"total"`
}

// Score computes the 0-100 confidence that receipt and bank describe the
// same purchase, as a weighted sum of three independent signals.
func Score(receipt *models.ReceiptRecord, bank *models.BankRecord) Breakdown {
	b := Breakdown{
		AmountScore: amountScore(receipt.Amount, bank.Amount),
		DateScore:   dateScore(receipt.TransactionDate, bank.TransactionDate),
		TextScore:   textScore(receipt.Merchant, bank.Description),
	}
	total := amountWeight*b.AmountScore + dateWeight*b.DateScore + textWeight*b.TextScore
	b.Total = math.Min(total, 100)
	return b
}

// amountScore compares the receipt total against the magnitude of the bank
// debit: exact match scores 100, with a penalty proportional to the
// difference relative to the receipt amount.
func amountScore(receiptAmount, bankAmount float64) float64 {
	bankMagnitude := math.Abs(bankAmount)
	if receiptAmount <= 0 {
		if bankMagnitude == 0 {
			return 100
		}
		return 0
	}
	diff := math.Abs(receiptAmount - bankMagnitude)
	return math.Max(0, 100-diff/receiptAmount*100)
}

// dateScore is a step function of the absolute day difference. Bank postings
// commonly lag a purchase by a day or two, so small gaps stay cheap.
func dateScore(receiptDate, bankDate time.Time) float64 {
	days := daysBetween(receiptDate, bankDate)
	switch {
	case days == 0:
		return 100
	case days <= 1:
		return 90
	case days <= 2:
		return 75
	case days <= 3:
		return 60
	case days <= 7:
		return 40
	default:
		return 0
	}
}

func daysBetween(a, b time.Time) int {
	au := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bu := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	d := int(au.Sub(bu).Hours() / 24)
	if d < 0 {
		d = -d
	}
	return d
}

// textScore compares the receipt merchant against the bank description.
// Exact normalized match beats substring containment beats token overlap;
// the overlap path is capped at 70 so text alone never looks exact.
func textScore(merchant, description string) float64 {
	m := normalizeText(merchant)
	d := normalizeText(description)
	if m == "" || d == "" {
		return 0
	}
	if m == d {
		return 100
	}
	if strings.Contains(d, m) || strings.Contains(m, d) {
		return 80
	}

	mTokens := tokensLongerThan(m, 2)
	if len(mTokens) == 0 {
		return 0
	}
	dTokens := strings.Fields(d)

	matched := 0
	for _, mt := range mTokens {
		for _, dt := range dTokens {
			if strings.Contains(dt, mt) || strings.Contains(mt, dt) {
				matched++
				break
			}
		}
	}
	return math.Min(70, float64(matched)/float64(len(mTokens))*100)
}

// normalizeText lower-cases and strips everything that is not a letter,
// digit or space, collapsing runs of whitespace.
func normalizeText(s string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			sb.WriteRune(r)
		case unicode.IsSpace(r):
			sb.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}

func tokensLongerThan(s string, n int) []string {
	var out []string
	for _, tok := range strings.Fields(s) {
		if len(tok) > n {
			out = append(out, tok)
		}
	}
	return out
}
