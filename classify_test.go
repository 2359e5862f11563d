package main

import "testing"

func TestNormalizeCategory(t *testing.T) {
	cases := []struct {
		answer string
		want   Category
	}{
		{"Supplier Issue", CategorySupplier},
		{"supplier issue", CategorySupplier},
		{"  This looks like a SUPPLIER problem", CategorySupplier},
		{"Logistics Issue", CategoryLogistics},
		{"logistic delay", CategoryLogistics},
		{"Customer Issue", CategoryCustomer},
		{"no idea", CategoryCustomer},
		{"", CategoryCustomer},
	}
	for _, tc := range cases {
		if got := normalizeCategory(tc.answer); got != tc.want {
			t.Fatalf("normalizeCategory(%q) = %s, want %s", tc.answer, got, tc.want)
		}
	}
}

func TestFirstLineTakesAnswerLine(t *testing.T) {
	if got := firstLine("Supplier Issue\nBecause the item arrived damaged."); got != "Supplier Issue" {
		t.Fatalf("unexpected first line: %q", got)
	}
	if got := firstLine("  Logistics Issue  "); got != "Logistics Issue" {
		t.Fatalf("expected trimmed single line, got %q", got)
	}
	if got := firstLine(""); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}

func TestNormalizeCategoryPrefersSupplierOverLogistics(t *testing.T) {
	// Substring matching is ordered: "supplier" wins when both appear.
	if got := normalizeCategory("supplier and logistics issue"); got != CategorySupplier {
		t.Fatalf("expected supplier precedence, got %s", got)
	}
}
