package format

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Views renders a count with thousands separators: 1234567 -> "1,234,567"
func Views(n int64) string {
	return printer.Sprintf("%d", n)
}
