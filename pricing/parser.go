package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// freeTokens mark a price as free when found anywhere in the text
var freeTokens = []string{"gratis", "free"}

// zeroLiterals are the exact zero-valued spellings accepted without parsing
var zeroLiterals = map[string]bool{
	"$0":    true,
	"$0.00": true,
	"0":     true,
	"0.00":  true,
}

// ParsedPrice is the numeric reading of a display price.
// The zero value is unparseable, which is distinct from a free (zero) price.
type ParsedPrice struct {
	value decimal.Decimal
	ok    bool
}

// Unparseable returns the marker for a price that could not be read
func Unparseable() ParsedPrice {
	return ParsedPrice{}
}

// Amount returns a parsed price holding d
func Amount(d decimal.Decimal) ParsedPrice {
	return ParsedPrice{value: d, ok: true}
}

// Value returns the numeric value and whether the price was parseable
func (p ParsedPrice) Value() (decimal.Decimal, bool) {
	return p.value, p.ok
}

// Parseable reports whether the price resolved to a number
func (p ParsedPrice) Parseable() bool {
	return p.ok
}

// IsFree reports whether the price resolved to exactly zero
func (p ParsedPrice) IsFree() bool {
	return p.ok && p.value.IsZero()
}

// OrZero returns the value, or zero when unparseable
func (p ParsedPrice) OrZero() decimal.Decimal {
	if !p.ok {
		return decimal.Zero
	}
	return p.value
}

func (p ParsedPrice) String() string {
	if !p.ok {
		return "unparseable"
	}
	return p.value.String()
}

// ParsePtr parses an optional price; nil is unparseable
func ParsePtr(raw *string) ParsedPrice {
	if raw == nil {
		return Unparseable()
	}
	return Parse(*raw)
}

// Parse converts a human-written price into a number.
//
// "Gratis", "free" and the zero literals ($0, $0.00, 0, 0.00) read as zero.
// Anything else keeps only digits, '.', ',' and '-', turns the first comma into
// a decimal point and reads the leading number, so "$1,234.00" reads as 1.234.
// Negative amounts and text without a leading number are unparseable.
func Parse(raw string) ParsedPrice {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return Unparseable()
	}
	for _, token := range freeTokens {
		if strings.Contains(s, token) {
			return Amount(decimal.Zero)
		}
	}
	if zeroLiterals[s] {
		return Amount(decimal.Zero)
	}

	stripped := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' || r == '-' {
			return r
		}
		return -1
	}, s)
	stripped = strings.Replace(stripped, ",", ".", 1)

	literal, ok := leadingNumber(stripped)
	if !ok {
		return Unparseable()
	}
	d, err := decimal.NewFromString(literal)
	if err != nil {
		return Unparseable()
	}
	if d.IsNegative() {
		return Unparseable()
	}
	if d.IsZero() {
		// "-0" and friends
		return Amount(decimal.Zero)
	}
	return Amount(d)
}

// leadingNumber extracts the longest prefix of s of the form -?digits[.digits]
// or -?.digits and rewrites it in a form decimal.NewFromString accepts.
func leadingNumber(s string) (string, bool) {
	i := 0
	neg := false
	if i < len(s) && s[i] == '-' {
		neg = true
		i++
	}

	start := i
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	intPart := s[start:i]

	fracPart := ""
	if i < len(s) && s[i] == '.' {
		j := i + 1
		for j < len(s) && isDigit(s[j]) {
			j++
		}
		fracPart = s[i+1 : j]
	}

	if intPart == "" && fracPart == "" {
		return "", false
	}
	if intPart == "" {
		intPart = "0"
	}

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteString(intPart)
	if fracPart != "" {
		b.WriteByte('.')
		b.WriteString(fracPart)
	}
	return b.String(), true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
