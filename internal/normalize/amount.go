package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"receipt-reconciliation-backend/internal/apperr"
)

var currencySymbols = []string{"$", "£", "€", "¥", "₹", "₽", "¢", "₩", "₪", "₿"}

// The markers must not abut another letter ("CREDIT" is not a CR marker),
// but digits count as a boundary: bank exports commonly write "123.45CR".
var (
	crMarker    = regexp.MustCompile(`(?i)(^|[^A-Za-z])CR([^A-Za-z]|$)`)
	drMarker    = regexp.MustCompile(`(?i)(^|[^A-Za-z])DR([^A-Za-z]|$)`)
	nonAmountCh = regexp.MustCompile(`[^0-9.]`)
)

// ParseAmount parses an arbitrary amount token into a signed decimal.
// Sign convention downstream: negative = money spent. Negativity comes from
// enclosing parentheses, a leading minus, or a CR marker; a DR marker is
// stripped but does not force the sign either way.
func ParseAmount(token string) (float64, error) {
	s := strings.TrimSpace(token)
	s = strings.Trim(s, `"'`)
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, &apperr.Error{Kind: apperr.ParseError, Field: "amount", Msg: "empty amount"}
	}

	negative := false

	// Strip CR/DR markers first so a trailing marker cannot hide an
	// enclosing parenthesis.
	if crMarker.MatchString(s) {
		negative = true
		s = crMarker.ReplaceAllString(s, "${1}${2}")
	}
	s = drMarker.ReplaceAllString(s, "${1}${2}")
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	for _, sym := range currencySymbols {
		s = strings.ReplaceAll(s, sym, "")
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "-") {
		negative = true
		s = s[1:]
	}

	// Anything still left that is not a digit or dot is noise.
	s = nonAmountCh.ReplaceAllString(s, "")

	// More than one decimal point: all but the last are thousands
	// separators (e.g. "1.234.56").
	if n := strings.Count(s, "."); n > 1 {
		last := strings.LastIndex(s, ".")
		s = strings.ReplaceAll(s[:last], ".", "") + s[last:]
	}

	if s == "" || s == "." {
		return 0, &apperr.Error{
			Kind:  apperr.ParseError,
			Field: "amount",
			Msg:   fmt.Sprintf("no numeric content in %q", token),
		}
	}

	magnitude, err := strconv.ParseFloat(s, 64)
	if err != nil || magnitude < 0 {
		return 0, &apperr.Error{
			Kind:  apperr.ParseError,
			Field: "amount",
			Msg:   fmt.Sprintf("unparseable amount %q", token),
			Err:   err,
		}
	}

	if negative {
		return -magnitude, nil
	}
	return magnitude, nil
}
