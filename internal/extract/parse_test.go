package extract

import (
	"errors"
	"testing"

	"fincontrol/internal/core"
)

func TestParseItems(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []core.LineItem
	}{
		{
			name:    "plain array",
			content: `[{"item":"Arroz","amount":12.5,"quantity":"2kg"},{"item":"Feijão","amount":8}]`,
			want: []core.LineItem{
				{Label: "Arroz", Amount: core.Money{Cents: 1250}, Quantity: "2kg"},
				{Label: "Feijão", Amount: core.Money{Cents: 800}},
			},
		},
		{
			name:    "fenced with string amounts",
			content: "```json\n[{\"item\":\"Pão\",\"amount\":\"3,49\",\"quantity\":6}]\n```",
			want:    []core.LineItem{{Label: "Pão", Amount: core.Money{Cents: 349}, Quantity: "6"}},
		},
		{
			name:    "wrapped object",
			content: `{"items":[{"item":"Leite","amount":4.99,"category":"Alimentação"}]}`,
			want:    []core.LineItem{{Label: "Leite", Amount: core.Money{Cents: 499}, Category: "Alimentação"}},
		},
		{
			name:    "drops unusable items",
			content: `[{"item":"","amount":1},{"item":"X","amount":"abc"},{"item":"Y","amount":-2},{"item":"Z"},{"item":"Ok","amount":0.005}]`,
			want:    []core.LineItem{{Label: "Ok", Amount: core.Money{Cents: 1}}},
		},
		{
			name:    "drops out-of-range amounts",
			content: `[{"item":"Huge","amount":184467440737095516.17},{"item":"Huger","amount":"1e40"},{"item":"Cafe","amount":"R$ 7,50"}]`,
			want:    []core.LineItem{{Label: "Cafe", Amount: core.Money{Cents: 750}}},
		},
		{
			name:    "empty array",
			content: `[]`,
			want:    []core.LineItem{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseItems(tt.content)
			if err != nil {
				t.Fatalf("ParseItems: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d items %+v, want %+v", len(got), got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("item %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestParseItemsMalformed(t *testing.T) {
	for _, content := range []string{"", "not json", `{"items": 3}`, "```\n```"} {
		if _, err := ParseItems(content); !errors.Is(err, ErrMalformedResponse) {
			t.Errorf("ParseItems(%q) err = %v, want ErrMalformedResponse", content, err)
		}
	}
}

func TestStripCodeFence(t *testing.T) {
	tests := map[string]string{
		"[1]":                "[1]",
		"```json\n[1]\n```":  "[1]",
		"```\n[1]\n```":      "[1]",
		"  ```json [1]```  ": "[1]",
	}
	for in, want := range tests {
		if got := stripCodeFence(in); got != want {
			t.Errorf("stripCodeFence(%q) = %q, want %q", in, got, want)
		}
	}
}
