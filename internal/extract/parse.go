package extract

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"fincontrol/internal/core"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyText         = errors.New("empty text")
	ErrNoCandidates      = errors.New("no candidates in response")
	ErrMalformedResponse = errors.New("malformed extraction response")
)

// rawItem mirrors one element of the model's JSON answer. Amount and quantity
// are kept raw because models return them as numbers or strings.
type rawItem struct {
	Item     string          `json:"item"`
	Amount   json.RawMessage `json:"amount"`
	Quantity json.RawMessage `json:"quantity"`
	Category string          `json:"category"`
}

// ParseItems decodes a model answer into line items. The answer may be a JSON
// array, an object with an "items" array, and may be wrapped in a markdown
// code fence. Items without a label or with an unreadable amount are dropped.
func ParseItems(content string) ([]core.LineItem, error) {
	content = stripCodeFence(content)
	if content == "" {
		return nil, ErrMalformedResponse
	}

	var raws []rawItem
	if strings.HasPrefix(content, "{") {
		var wrapped struct {
			Items []rawItem `json:"items"`
		}
		if err := json.Unmarshal([]byte(content), &wrapped); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		raws = wrapped.Items
	} else if err := json.Unmarshal([]byte(content), &raws); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	items := make([]core.LineItem, 0, len(raws))
	for _, r := range raws {
		label := strings.TrimSpace(r.Item)
		if label == "" {
			continue
		}
		amount, ok := parseAmount(r.Amount)
		if !ok {
			continue
		}
		items = append(items, core.LineItem{
			Label:    label,
			Amount:   amount,
			Quantity: rawString(r.Quantity),
			Category: strings.TrimSpace(r.Category),
		})
	}
	return items, nil
}

// parseAmount accepts a JSON number or a numeric string in major units.
// Negative and out-of-range amounts are rejected; zero is kept.
func parseAmount(raw json.RawMessage) (core.Money, bool) {
	s := rawString(raw)
	if s == "" {
		return core.Money{}, false
	}
	s = strings.TrimSpace(strings.TrimPrefix(s, "R$"))
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return core.Money{}, false
	}
	m, err := core.MoneyFromDecimal(d)
	if err != nil {
		return core.Money{}, false
	}
	return m, true
}

// rawString renders a JSON scalar as text: strings are unquoted, numbers are
// kept verbatim, null and absent values become "".
func rawString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return strings.TrimSpace(s)
	}
	return string(raw)
}

// stripCodeFence removes a surrounding ```json ... ``` block if present.
func stripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```")
	if nl := strings.IndexByte(content, '\n'); nl >= 0 {
		content = content[nl+1:]
	} else {
		content = strings.TrimPrefix(content, "json")
	}
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	return strings.TrimSpace(content)
}
