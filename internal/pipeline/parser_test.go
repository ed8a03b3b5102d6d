package pipeline

import (
	"testing"
)

func TestCleanModelJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "already clean array",
			raw:  `[{"amount": 100}]`,
			want: `[{"amount": 100}]`,
		},
		{
			name: "json fence",
			raw:  "```json\n[{\"amount\": 100}]\n```",
			want: `[{"amount": 100}]`,
		},
		{
			name: "bare fence",
			raw:  "```\n{\"amount\": 100}\n```",
			want: `{"amount": 100}`,
		},
		{
			name: "chatter around array",
			raw:  "Here are the transactions:\n[{\"amount\": 100}]\nLet me know if you need more.",
			want: `[{"amount": 100}]`,
		},
		{
			name: "chatter around object",
			raw:  "Sure! {\"amount\": 100} is what I found.",
			want: `{"amount": 100}`,
		},
		{
			name: "whitespace only",
			raw:  "   \n\t  ",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanModelJSON(tt.raw); got != tt.want {
				t.Errorf("cleanModelJSON(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseCandidates(t *testing.T) {
	t.Run("fenced array", func(t *testing.T) {
		raw := "```json\n[\n" +
			`{"description": "Payment to papa", "amount": 100, "type": "expense", "payment_mode": "upi", "date": "2025-06-10"},` + "\n" +
			`{"description": "EMI Payment", "amount": 2000, "type": "expense", "category_name": "Loan Payment"}` + "\n]\n```"

		got := parseCandidates(raw)
		if len(got) != 2 {
			t.Fatalf("expected 2 candidates, got %d", len(got))
		}
		if got[0].Description != "Payment to papa" || got[0].Amount != 100 {
			t.Errorf("unexpected first candidate: %+v", got[0])
		}
		if got[1].CategoryName != "Loan Payment" || got[1].Amount != 2000 {
			t.Errorf("unexpected second candidate: %+v", got[1])
		}
	})

	t.Run("single object wraps into slice", func(t *testing.T) {
		got := parseCandidates(`{"description": "Coffee", "amount": 250, "type": "expense"}`)
		if len(got) != 1 {
			t.Fatalf("expected 1 candidate, got %d", len(got))
		}
		if got[0].Description != "Coffee" {
			t.Errorf("Description = %q, want Coffee", got[0].Description)
		}
	})

	t.Run("amount as grouped string", func(t *testing.T) {
		got := parseCandidates(`[{"description": "Rent", "amount": "12,500"}]`)
		if len(got) != 1 || got[0].Amount != 12500 {
			t.Fatalf("expected amount 12500, got %+v", got)
		}
	})

	t.Run("malformed json yields nil", func(t *testing.T) {
		for _, raw := range []string{"not json at all", `[{"description": "broken"`, `"just a string"`, "42"} {
			if got := parseCandidates(raw); got != nil {
				t.Errorf("parseCandidates(%q) = %v, want nil", raw, got)
			}
		}
	})

	t.Run("non-object array items are skipped", func(t *testing.T) {
		got := parseCandidates(`[{"description": "Lunch", "amount": 300}, "noise", 7]`)
		if len(got) != 1 {
			t.Fatalf("expected 1 candidate, got %d", len(got))
		}
	})
}
