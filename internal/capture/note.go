package capture

import (
	"fmt"
	"html"
	"strconv"
	"strings"
)

// FormatNote renders the human-readable note stored on a partial-checkout
// record and appended to completed orders: a contact header followed by one
// line per product. The raw phone goes into the note; only keys use the
// normalized form.
func FormatNote(phoneRaw, address, ip string, products []CartItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📞 Phone: %s\n", html.EscapeString(phoneRaw))
	fmt.Fprintf(&b, "📍 Address: %s\n", html.EscapeString(address))
	fmt.Fprintf(&b, "💻 IP: %s\n\n", ip)
	for _, p := range products {
		b.WriteString(ProductLine(p))
		b.WriteByte('\n')
	}
	return b.String()
}

// ProductLine renders one cart line: linked name, quantity, formatted price.
func ProductLine(p CartItem) string {
	url := p.URL
	if url == "" {
		url = "#"
	}
	return fmt.Sprintf("🛒 <a href='%s' target='_blank' rel='noopener noreferrer'>%s</a> × %d (%s)",
		html.EscapeString(url), html.EscapeString(p.Name), p.Qty, FormatPrice(p.Price))
}

// FormatPrice extracts the numeric value from a display price ("$9.99",
// "9,99 Kč", "USD 12") and reformats it as a dollar amount. Unparseable
// input yields $0.00, matching how the capture flow degrades rather than
// fails on odd storefront formatting.
func FormatPrice(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		v = 0
	}
	return fmt.Sprintf("$%.2f", v)
}
