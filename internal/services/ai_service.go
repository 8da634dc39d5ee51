package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"spesa/internal/analytics"
	"spesa/internal/core"
	"spesa/internal/log"
	"spesa/internal/ports"
)

// User-facing AI failures. The underlying errors are only logged.
var (
	ErrAIUnavailable = errors.New("AI features are not configured")
	ErrReceiptScan   = errors.New("could not read the receipt, try a clearer photo")
	ErrInsight       = errors.New("could not answer the question right now")
	ErrSummary       = errors.New("could not summarize this period right now")
	ErrEmptyQuestion = errors.New("question is empty")
)

// AIService relays receipt scans and questions to the AI collaborators,
// feeding them the current ledger. Either collaborator may be nil.
type AIService struct {
	ledger    *LedgerService
	extractor ports.ReceiptExtractor
	answerer  ports.QuestionAnswerer
	logger    *log.Logger
	now       func() time.Time
}

func NewAIService(ledger *LedgerService, extractor ports.ReceiptExtractor, answerer ports.QuestionAnswerer, logger *log.Logger) *AIService {
	if logger == nil {
		logger = log.Discard()
	}
	return &AIService{
		ledger:    ledger,
		extractor: extractor,
		answerer:  answerer,
		logger:    logger.WithComponent(log.ComponentAI),
		now:       ledger.now,
	}
}

// ScanReceipt extracts purchase lines from a receipt image.
func (a *AIService) ScanReceipt(ctx context.Context, image []byte, mimeType string) (core.PurchaseBatch, error) {
	if a.extractor == nil {
		return core.PurchaseBatch{}, ErrAIUnavailable
	}
	categories := analytics.AllCategories(a.ledger.Ledger())
	batch, err := a.extractor.ExtractReceipt(ctx, image, mimeType, categories)
	if err != nil {
		a.logger.ErrorContext(ctx, "Receipt extraction failed",
			log.NewFields().WithOperation(log.OpScan).WithError(err).ToSlice()...)
		return core.PurchaseBatch{}, ErrReceiptScan
	}
	return batch, nil
}

// RecordReceipt scans a receipt and books it as a purchase. It returns the
// name of the list the items landed on.
func (a *AIService) RecordReceipt(ctx context.Context, image []byte, mimeType, paymentMethod string, paymentStatus core.PaymentStatus, vendorName string) (string, core.PurchaseBatch, error) {
	batch, err := a.ScanReceipt(ctx, image, mimeType)
	if err != nil {
		return "", batch, err
	}
	name, err := a.ledger.AddOcrPurchase(batch, paymentMethod, paymentStatus, vendorName)
	if err != nil {
		return "", batch, err
	}
	return name, batch, nil
}

// Ask answers a free-form question about the purchase history.
func (a *AIService) Ask(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyQuestion
	}
	if a.answerer == nil {
		return "", ErrAIUnavailable
	}
	l := a.ledger.Ledger()
	answer, err := a.answerer.Answer(ctx, question, ContextText(l, a.now()), analytics.PurchaseRows(l))
	if err != nil {
		a.logger.ErrorContext(ctx, "Insight request failed",
			log.NewFields().WithOperation(log.OpAsk).WithError(err).ToSlice()...)
		return "", ErrInsight
	}
	return answer, nil
}

// SummarizePeriod asks for a short narrative of the period's spending.
// Periods without purchases get a fixed answer and no AI call.
func (a *AIService) SummarizePeriod(ctx context.Context, period core.Period) (string, error) {
	l := a.ledger.Ledger()
	now := a.now()
	s, ok := analytics.Summarize(l, period, now)
	if !ok {
		return fmt.Sprintf("No purchases recorded for %s.", strings.ToLower(period.Label())), nil
	}
	if a.answerer == nil {
		return "", ErrAIUnavailable
	}

	var rows []core.PurchaseRow
	r := core.Range{From: s.From, To: s.To}
	for _, row := range analytics.PurchaseRows(l) {
		if d, err := core.ParseLocalDate(row.Date); err == nil && r.Contains(d) {
			rows = append(rows, row)
		}
	}
	question := fmt.Sprintf("Summarize my spending for %s in a few sentences and point out anything unusual.",
		strings.ToLower(period.Label()))
	answer, err := a.answerer.Answer(ctx, question, SummaryText(s), rows)
	if err != nil {
		fields := log.NewFields().WithOperation(log.OpAsk).WithError(err)
		fields[log.FieldPeriod] = string(period)
		a.logger.ErrorContext(ctx, "Period summary failed", fields.ToSlice()...)
		return "", ErrSummary
	}
	return answer, nil
}

// ContextText is the plain-text background given with every question: the
// last thirty days and the forecast, when there is enough data.
func ContextText(l *core.Ledger, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Today is %s.\n", core.DayKey(now))
	if s, ok := analytics.Summarize(l, core.Last30Days, now); ok {
		b.WriteString(SummaryText(s))
	} else {
		b.WriteString("No purchases in the last 30 days.\n")
	}
	if f, ok := analytics.Forecast(l); ok {
		fmt.Fprintf(&b, "Forecast: %.2f per day, %.2f per month (from %d purchases over %d days).\n",
			f.Daily, f.Monthly, f.PurchaseCount, f.SpanDays)
	}
	return b.String()
}

// SummaryText renders a summary's KPIs and breakdowns as plain text.
func SummaryText(s *core.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s to %s): total %.2f, %d purchases of %d items, %.2f per day.\n",
		s.Period.Label(), core.DayKey(s.From), core.DayKey(s.To), s.TotalSpend, s.PurchaseCount, s.UniqueItems, s.AverageDaily)
	b.WriteString("By category:")
	for _, c := range s.ByCategory {
		fmt.Fprintf(&b, " %s %.2f;", c.Name, c.Total)
	}
	b.WriteString("\nBy vendor:")
	for _, v := range s.ByVendor {
		fmt.Fprintf(&b, " %s %.2f;", v.Name, v.Total)
	}
	b.WriteString("\n")
	return b.String()
}
