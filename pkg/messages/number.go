package messages

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var indianEnglish = language.MustParse("en-IN")

// FormatIndianNumber formats n with the Indian digit grouping (lakh/crore),
// e.g. 1234567 -> "12,34,567".
func FormatIndianNumber(n int64) string {
	return message.NewPrinter(indianEnglish).Sprint(number.Decimal(n))
}
