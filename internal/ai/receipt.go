package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"spesa/internal/core"
)

// ErrMalformedReply is returned when the model reply is not a receipt document.
var ErrMalformedReply = errors.New("malformed model reply")

// receiptReply is the JSON shape requested from the model. Numbers sometimes
// come back as strings, so they are decoded leniently.
type receiptReply struct {
	Date  string `json:"date"`
	Items []struct {
		Name              string          `json:"name"`
		Quantity          json.RawMessage `json:"quantity"`
		Price             json.RawMessage `json:"price"`
		Unit              string          `json:"unit"`
		SuggestedCategory string          `json:"suggestedCategory"`
	} `json:"items"`
}

// parseReceiptJSON turns a model reply into a purchase batch. Lines without a
// name are dropped; the date is passed through for the ledger to validate.
func parseReceiptJSON(reply string) (core.PurchaseBatch, error) {
	text := stripFences(reply)
	if start, end := strings.Index(text, "{"), strings.LastIndex(text, "}"); start >= 0 && end > start {
		text = text[start : end+1]
	}

	var r receiptReply
	if err := json.Unmarshal([]byte(text), &r); err != nil {
		return core.PurchaseBatch{}, fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}

	batch := core.PurchaseBatch{Date: strings.TrimSpace(r.Date), Items: []core.BatchLine{}}
	for _, it := range r.Items {
		name := strings.TrimSpace(it.Name)
		if name == "" {
			continue
		}
		qty, err := lenientNumber(it.Quantity, 1)
		if err != nil {
			return core.PurchaseBatch{}, fmt.Errorf("%w: quantity of %q: %v", ErrMalformedReply, name, err)
		}
		price, err := lenientNumber(it.Price, 0)
		if err != nil {
			return core.PurchaseBatch{}, fmt.Errorf("%w: price of %q: %v", ErrMalformedReply, name, err)
		}
		batch.Items = append(batch.Items, core.BatchLine{
			Name:              name,
			Quantity:          qty,
			Price:             price,
			Unit:              strings.TrimSpace(it.Unit),
			SuggestedCategory: strings.TrimSpace(it.SuggestedCategory),
		})
	}
	return batch, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}

func lenientNumber(raw json.RawMessage, fallback float64) (float64, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return fallback, nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		if f < 0 {
			return 0, core.ErrInvalidAmount
		}
		return f, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, err
	}
	if strings.TrimSpace(s) == "" {
		return fallback, nil
	}
	return core.ParseAmount(s)
}
