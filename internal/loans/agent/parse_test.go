package agent

import "testing"

func TestNormalizeAmount(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  float64
		ok    bool
	}{
		{name: "lakh phrase", input: "10 lakh", want: 1000000, ok: true},
		{name: "short L suffix", input: "5L", want: 500000, ok: true},
		{name: "lacs spelling", input: "2 lacs", want: 200000, ok: true},
		{name: "plain digits", input: "500000", want: 500000, ok: true},
		{name: "digits with commas", input: "5,00,000", want: 500000, ok: true},
		{name: "json number", input: float64(250000), want: 250000, ok: true},
		{name: "fractional lakh", input: "2.5 lakh", want: 250000, ok: true},
		{name: "zero", input: "0", ok: false},
		{name: "negative", input: float64(-5000), ok: false},
		{name: "above ceiling", input: "2000000000", ok: false},
		{name: "gibberish", input: "a bunch of money", ok: false},
		{name: "nil", input: nil, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := normalizeAmount(tt.input)
			if ok != tt.ok {
				t.Fatalf("normalizeAmount(%v) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("normalizeAmount(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeTenure(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  int
		ok    bool
	}{
		{name: "years phrase", input: "3 years", want: 36, ok: true},
		{name: "single year", input: "1 year", want: 12, ok: true},
		{name: "plain months", input: "36", want: 36, ok: true},
		{name: "months suffix", input: "24 months", want: 24, ok: true},
		{name: "json number", input: float64(48), want: 48, ok: true},
		{name: "zero", input: "0", ok: false},
		{name: "above ceiling", input: "300", ok: false},
		{name: "years without number", input: "some years", ok: false},
		{name: "nil", input: nil, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := normalizeTenure(tt.input)
			if ok != tt.ok {
				t.Fatalf("normalizeTenure(%v) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("normalizeTenure(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsProhibitedPurpose(t *testing.T) {
	prohibited := []string{
		"I need it for a robbery",
		"funding a scam",
		"buy drugs",
		"money laundering operation",
	}
	for _, text := range prohibited {
		if !isProhibitedPurpose(text) {
			t.Errorf("isProhibitedPurpose(%q) = false, want true", text)
		}
	}

	legitimate := []string{
		"home renovation",
		"my daughter's wedding",
		"medical emergency",
		"business expansion",
	}
	for _, text := range legitimate {
		if isProhibitedPurpose(text) {
			t.Errorf("isProhibitedPurpose(%q) = true, want false", text)
		}
	}
}

func TestExtractLoanDetails(t *testing.T) {
	amount, tenure, purpose, prohibited := extractLoanDetails("I need 10 lakh for home renovation for 3 years")
	if prohibited {
		t.Fatal("extractLoanDetails() prohibited = true, want false")
	}
	if amount == nil || *amount != 1000000 {
		t.Errorf("amount = %v, want 1000000", amount)
	}
	if tenure == nil || *tenure != 36 {
		t.Errorf("tenure = %v, want 36", tenure)
	}
	if purpose == nil || *purpose != "home renovation" {
		t.Errorf("purpose = %v, want home renovation", purpose)
	}

	amount, tenure, purpose, prohibited = extractLoanDetails("I want 5 lakh to fund a robbery")
	if !prohibited {
		t.Fatal("extractLoanDetails() prohibited = false, want true")
	}
	if purpose != nil {
		t.Errorf("purpose = %v, want nil for prohibited text", purpose)
	}
	if amount == nil || *amount != 500000 {
		t.Errorf("amount = %v, want 500000 preserved despite prohibited purpose", amount)
	}
	_ = tenure
}
