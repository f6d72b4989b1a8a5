package cli

import (
	"fmt"
	"strings"
	"time"
)

// FormatMoney formats an amount with thousands separators and two decimals.
func FormatMoney(amount float64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	str := fmt.Sprintf("%.2f", amount)
	parts := strings.Split(str, ".")
	result := groupThousands(parts[0]) + "." + parts[1]
	if negative && result != "0.00" {
		result = "-" + result
	}
	return result
}

// groupThousands inserts a comma every three digits from the right.
func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	var b strings.Builder
	head := n % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// FormatPercent formats a percentage with sign.
func FormatPercent(value float64) string {
	sign := ""
	if value > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.2f%%", sign, value)
}

// FormatPnL formats profit with sign.
func FormatPnL(pnl float64) string {
	formatted := FormatMoney(pnl)
	if pnl > 0 && formatted != "0.00" {
		return "+" + formatted
	}
	return formatted
}

// FormatRatio formats a profit factor; zero reads as a dash.
func FormatRatio(v float64) string {
	if v == 0 {
		return "-"
	}
	return fmt.Sprintf("%.2f", v)
}

// FormatDate formats t with layout, or a dash for the zero time.
func FormatDate(t time.Time, layout string) string {
	if t.IsZero() {
		return "-"
	}
	if layout == "" {
		layout = "02-Jan-2006 15:04"
	}
	return t.Local().Format(layout)
}

// FormatRelative describes how long ago t was.
func FormatRelative(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < 0:
		return "in the future"
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	}
	return fmt.Sprintf("%dd ago", int(d.Hours()/24))
}

// TruncateString shortens s to maxLen runes, ending with an ellipsis.
func TruncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// JoinOrDash joins items with ", " or returns a dash for none.
func JoinOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}
