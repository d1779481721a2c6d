package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Darlington720/library-module/internal/gateway"
)

const (
	DateLayout      = "Jan 2, 2006"
	TimestampLayout = "Jan 2, 2006, 03:04 PM"
	notAvailable    = "N/A"
)

var printer = message.NewPrinter(language.English)

// FormatCurrency renders an amount in whole currency units with thousands
// grouping, e.g. "UGX 25,000".
func FormatCurrency(amount int64, currency string) string {
	currency = strings.TrimSpace(currency)
	if currency == "" {
		currency = "UGX"
	}
	return currency + " " + printer.Sprintf("%d", amount)
}

// FormatDecimal renders a decimal amount rounded to whole units, e.g. "UGX 1,500".
func FormatDecimal(amount decimal.Decimal, currency string) string {
	return FormatCurrency(amount.Round(0).IntPart(), currency)
}

// FormatNumber groups thousands without a currency prefix.
func FormatNumber(n int) string {
	return printer.Sprintf("%d", n)
}

// FormatDate renders t as "Jan 2, 2006". The zero time renders as N/A.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return notAvailable
	}
	return t.Format(DateLayout)
}

// FormatTimestamp renders t with minutes and a 12 hour clock.
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return notAvailable
	}
	return t.Format(TimestampLayout)
}

// FormatOptionalDate renders a nullable date.
func FormatOptionalDate(t *time.Time) string {
	if t == nil {
		return notAvailable
	}
	return FormatDate(*t)
}

// FormatEpoch parses an epoch-millis (or RFC3339) string and renders its date.
func FormatEpoch(raw string) string {
	t, ok := gateway.ParseTimestamp(raw)
	if !ok {
		return notAvailable
	}
	return FormatDate(t)
}

// Initials returns up to two upper-case initials for an avatar fallback.
func Initials(name string) string {
	initials := make([]rune, 0, 2)
	for _, part := range strings.Fields(name) {
		initials = append(initials, []rune(part)[0])
		if len(initials) == 2 {
			break
		}
	}
	return strings.ToUpper(string(initials))
}

// PhotoURL fills the student photo template with the student number. An
// empty template yields an empty URL so the avatar falls back to initials.
func PhotoURL(template, studentNumber string) string {
	if template == "" || studentNumber == "" {
		return ""
	}
	if strings.Contains(template, "%s") {
		return fmt.Sprintf(template, studentNumber)
	}
	return strings.TrimRight(template, "/") + "/" + studentNumber
}
