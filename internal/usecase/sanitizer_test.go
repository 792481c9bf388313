package usecase

import "testing"

func TestSanitize(t *testing.T) {
	s := NewNameSanitizer(false)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "truncates at pipe separator",
			input: "boAt Nirvana Ion TWS Earbuds | Best under ₹2000 in India",
			want:  "boAt Nirvana Ion TWS Earbuds",
		},
		{
			name:  "truncates at double colon separator",
			input: "Sony WH-1000XM5 Headphones :: Black Edition",
			want:  "Sony WH-1000XM5 Headphones",
		},
		{
			name:  "truncates at hyphen followed by lowercase",
			input: "Samsung Galaxy Buds2 Pro - with active noise cancellation",
			want:  "Samsung Galaxy Buds2 Pro",
		},
		{
			name:  "strips review jargon",
			input: "JBL Tune 760NC Unboxing Review YouTube",
			want:  "JBL Tune 760NC",
		},
		{
			name:  "strips price fragments, pure numbers and platform names",
			input: "OnePlus Nord Buds 2 ₹2,999 Flipkart Amazon",
			want:  "OnePlus Nord Buds",
		},
		{
			name:  "caps at five meaningful tokens",
			input: "Logitech MX Master 3S Wireless Performance Mouse Graphite",
			want:  "Logitech MX Master 3S Wireless",
		},
		{
			name:  "keeps alphanumeric model tokens",
			input: "Sony WH-1000XM5 Review",
			want:  "Sony WH-1000XM5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Sanitize(tt.input)
			if got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitize_Fallbacks(t *testing.T) {
	s := NewNameSanitizer(false)

	t.Run("falls back to truncated text when under two tokens survive", func(t *testing.T) {
		// "deal" and the price are both stripped, leaving one token
		got := s.Sanitize("Tripod deal ₹499")
		if got != "Tripod deal ₹499" {
			t.Errorf("Sanitize() = %q, want pre-strip fallback %q", got, "Tripod deal ₹499")
		}
	})

	t.Run("falls back to raw title when truncation leaves nothing", func(t *testing.T) {
		got := s.Sanitize(":: everything after separator here")
		if got != ":: everything after separator here" {
			t.Errorf("Sanitize() = %q, want original raw title", got)
		}
	})

	t.Run("empty input yields empty output", func(t *testing.T) {
		if got := s.Sanitize(""); got != "" {
			t.Errorf("Sanitize(\"\") = %q, want \"\"", got)
		}
	})
}

func TestSanitize_Deterministic(t *testing.T) {
	s := NewNameSanitizer(false)
	input := "boAt Airdopes 441 TWS Unboxing | ₹1,299 only - best budget buds"

	first := s.Sanitize(input)
	for i := 0; i < 10; i++ {
		if got := s.Sanitize(input); got != first {
			t.Fatalf("Sanitize() not deterministic: %q then %q", first, got)
		}
	}
}
