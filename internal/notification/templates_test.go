package notification

import (
	"strings"
	"testing"
)

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		minor int64
		want  string
	}{
		{0, "0.00"},
		{5, "0.05"},
		{100, "1.00"},
		{110000000, "1,100,000.00"},
		{123456789, "1,234,567.89"},
		{-5000, "-50.00"},
	}
	for _, tc := range cases {
		if got := formatAmount(tc.minor); got != tc.want {
			t.Errorf("formatAmount(%d) = %q, want %q", tc.minor, got, tc.want)
		}
	}
}

func TestRenderBodyEscapesRecipientName(t *testing.T) {
	body, err := renderBody("Heading", `<script>alert("x")</script>`, "Hello.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(body, "<script>") {
		t.Fatal("recipient name not escaped")
	}
	if !strings.Contains(body, "Heading") || !strings.Contains(body, "Hello.") {
		t.Fatal("layout content missing")
	}
}

func TestRenderBodyDefaultsEmptyName(t *testing.T) {
	body, err := renderBody("Heading", "  ", "Hello.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(body, "Dear client,") {
		t.Fatal("empty recipient name not defaulted")
	}
}
