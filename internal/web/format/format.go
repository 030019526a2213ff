package format

import (
	"fmt"
	"strings"
	"time"
)

// Price formats an amount in Colombian pesos the way the storefront shows
// prices. COP amounts carry no decimals and use dots as thousands
// separators. Example: Price(15500000) => "$ 15.500.000".
func Price(amount float64) string {
	n := int64(amount + 0.5)
	if amount < 0 {
		n = int64(amount - 0.5)
	}
	neg := n < 0
	if neg {
		n = -n
	}
	out := thousandSep(n, ".")
	if neg {
		return "-$ " + out
	}
	return "$ " + out
}

// Quantity formats an item count with its unit.
func Quantity(n int) string {
	if n == 1 {
		return "1 item"
	}
	return fmt.Sprintf("%d items", n)
}

// Date formats a timestamp in the storefront's short form.
func Date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 2, 2006")
}

// DateTime formats a timestamp with the time of day, used on receipts.
func DateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 2, 2006 15:04")
}

func thousandSep(n int64, sep string) string {
	s := fmt.Sprintf("%d", n)
	var b strings.Builder
	for i, c := range s {
		if i != 0 && (len(s)-i)%3 == 0 {
			b.WriteString(sep)
		}
		b.WriteRune(c)
	}
	return b.String()
}
