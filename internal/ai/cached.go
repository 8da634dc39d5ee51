package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"spesa/internal/cache"
	"spesa/internal/core"
	"spesa/internal/ports"
)

// CachedAnswerer memoizes answers for identical questions asked against an
// identical ledger overview.
type CachedAnswerer struct {
	next  ports.QuestionAnswerer
	cache cache.Cache[string]
}

func NewCachedAnswerer(next ports.QuestionAnswerer, c cache.Cache[string]) *CachedAnswerer {
	return &CachedAnswerer{next: next, cache: c}
}

func (a *CachedAnswerer) Answer(ctx context.Context, question, contextText string, rows []core.PurchaseRow) (string, error) {
	key, err := answerKey(question, contextText, rows)
	if err != nil {
		// Rows that cannot be encoded (NaN prices) are answered uncached.
		return a.next.Answer(ctx, question, contextText, rows)
	}
	if answer, ok := a.cache.Get(key); ok {
		return answer, nil
	}
	answer, err := a.next.Answer(ctx, question, contextText, rows)
	if err != nil {
		return "", err
	}
	a.cache.Set(key, answer)
	return answer, nil
}

func answerKey(question, contextText string, rows []core.PurchaseRow) (string, error) {
	body, err := json.Marshal(rows)
	if err != nil {
		return "", err
	}
	h := sha256.New()
	h.Write([]byte(strings.ToLower(strings.TrimSpace(question))))
	h.Write([]byte{0})
	h.Write([]byte(contextText))
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil)), nil
}
