package capture

import (
	"strings"
	"testing"
)

func TestFormatNote(t *testing.T) {
	note := FormatNote("555-123-4567", "12 Main St", "203.0.113.9", []CartItem{
		{Name: "Widget", Qty: 2, Price: "$9.99", URL: "https://shop.example/widget"},
		{Name: "Gadget", Qty: 1, Price: "4.50"},
	})

	for _, want := range []string{
		"📞 Phone: 555-123-4567\n",
		"📍 Address: 12 Main St\n",
		"💻 IP: 203.0.113.9\n\n",
		"Widget</a> × 2 ($9.99)",
		"Gadget</a> × 1 ($4.50)",
	} {
		if !strings.Contains(note, want) {
			t.Errorf("note missing %q:\n%s", want, note)
		}
	}
}

func TestFormatNoteEscapesHTML(t *testing.T) {
	note := FormatNote("555", "<b>addr</b>", "", []CartItem{
		{Name: "a<script>b", Qty: 1, Price: "1", URL: "https://x/?a=1&b=2"},
	})
	if strings.Contains(note, "<b>") || strings.Contains(note, "<script>") {
		t.Errorf("unescaped markup in note:\n%s", note)
	}
	if !strings.Contains(note, "&amp;b=2") {
		t.Errorf("url not escaped:\n%s", note)
	}
}

func TestProductLineEmptyURL(t *testing.T) {
	line := ProductLine(CartItem{Name: "Thing", Qty: 3, Price: "2"})
	if !strings.Contains(line, "href='#'") {
		t.Errorf("expected placeholder href, got %q", line)
	}
}

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"$9.99", "$9.99"},
		{"9.5", "$9.50"},
		{"USD 12", "$12.00"},
		{"free", "$0.00"},
		{"", "$0.00"},
		{"1.2.3", "$0.00"},
	}
	for _, tt := range tests {
		if got := FormatPrice(tt.raw); got != tt.want {
			t.Errorf("FormatPrice(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}
