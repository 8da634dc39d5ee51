package report

import (
	"fmt"
	"strconv"
	"strings"

	"spesa/internal/core"
)

type table struct {
	header []string
	right  []bool
	rows   [][]string
}

func (t *table) add(cells ...string) { t.rows = append(t.rows, cells) }

func (t *table) write(b *strings.Builder) {
	b.WriteString("|")
	for _, h := range t.header {
		b.WriteString(" " + cell(h) + " |")
	}
	b.WriteString("\n|")
	for i := range t.header {
		if i < len(t.right) && t.right[i] {
			b.WriteString("---:|")
		} else {
			b.WriteString("---|")
		}
	}
	b.WriteString("\n")
	for _, row := range t.rows {
		b.WriteString("|")
		for _, c := range row {
			b.WriteString(" " + cell(c) + " |")
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func cell(s string) string {
	if s == "" {
		return "-"
	}
	return strings.ReplaceAll(s, "|", `\|`)
}

// SummaryMarkdown renders a period summary. A nil summary renders the empty
// period notice.
func SummaryMarkdown(period core.Period, s *core.Summary, f Formatter) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Spending: %s\n\n", period.Label())
	if s == nil {
		fmt.Fprintf(&b, "No purchases recorded for %s.\n", strings.ToLower(period.Label()))
		return b.String()
	}
	fmt.Fprintf(&b, "_%s to %s_\n\n", core.ToLocalDate(s.From), core.ToLocalDate(s.To))

	overview := table{header: []string{"", f.Code()}, right: []bool{false, true}}
	overview.add("**Total spend**", "**"+f.Format(s.TotalSpend)+"**")
	overview.add("Average per day", f.Format(s.AverageDaily))
	overview.add("Purchases", strconv.Itoa(s.PurchaseCount))
	overview.add("Unique items", strconv.Itoa(s.UniqueItems))
	overview.add("Top category", s.TopCategory)
	overview.add("Top vendor", s.TopVendor)
	overview.write(&b)

	for _, section := range []struct {
		title   string
		label   string
		amounts []core.Amount
	}{
		{"By category", "Category", s.ByCategory},
		{"By vendor", "Vendor", s.ByVendor},
	} {
		if len(section.amounts) == 0 {
			continue
		}
		fmt.Fprintf(&b, "## %s\n\n", section.title)
		t := table{header: []string{section.label, "Total", "Share"}, right: []bool{false, true, true}}
		for _, a := range section.amounts {
			t.add(a.Name, f.Format(a.Total), share(a.Total, s.TotalSpend))
		}
		t.write(&b)
	}
	return b.String()
}

func share(part, total float64) string {
	if total <= 0 {
		return ""
	}
	return strconv.FormatFloat(core.RoundAmount(part/total*100, 1), 'f', 1, 64) + "%"
}

// SuggestionsMarkdown renders restock suggestions in the order given.
func SuggestionsMarkdown(sugs []core.Suggestion) string {
	var b strings.Builder
	b.WriteString("# Restock suggestions\n\n")
	if len(sugs) == 0 {
		b.WriteString("Nothing is running low.\n")
		return b.String()
	}
	t := table{
		header: []string{"Item", "Status", "Priority", "Every", "Since last", "Last bought"},
		right:  []bool{false, false, false, true, true, false},
	}
	for _, s := range sugs {
		t.add(s.Name+" ("+s.Unit+")", string(s.Status), string(s.Priority),
			days(s.CycleDays), days(s.DaysSinceLast), s.LastPurchase)
	}
	t.write(&b)
	return b.String()
}

func days(n int) string {
	if n == 1 {
		return "1 day"
	}
	return strconv.Itoa(n) + " days"
}

// ForecastMarkdown renders the spending forecast. A nil forecast renders the
// not-enough-data notice.
func ForecastMarkdown(fc *core.Forecast, f Formatter) string {
	var b strings.Builder
	b.WriteString("# Spending forecast\n\n")
	if fc == nil {
		b.WriteString("Not enough purchase history to forecast yet.\n")
		return b.String()
	}
	t := table{header: []string{"", f.Code()}, right: []bool{false, true}}
	t.add("Daily", f.Format(fc.Daily))
	t.add("**Monthly (30 days)**", "**"+f.Format(fc.Monthly)+"**")
	t.add("Spent so far", f.Format(fc.TotalSpend))
	t.add("History", days(fc.SpanDays))
	t.add("Purchases", strconv.Itoa(fc.PurchaseCount))
	t.write(&b)
	return b.String()
}

// ItemsMarkdown renders the master item rollup.
func ItemsMarkdown(items []core.MasterItem, f Formatter) string {
	var b strings.Builder
	b.WriteString("# Items\n\n")
	if len(items) == 0 {
		b.WriteString("No items recorded yet.\n")
		return b.String()
	}
	t := table{
		header: []string{"Item", "Unit", "Category", "Last price/unit", "Bought", "Spend", "Purchases"},
		right:  []bool{false, false, false, true, true, true, true},
	}
	for _, it := range items {
		price := ""
		if it.LastPricePerUnit > 0 {
			price = f.Format(it.LastPricePerUnit)
		}
		t.add(it.Name, it.Unit, it.Category, price, Quantity(it.TotalQuantity),
			f.Format(it.TotalSpend), strconv.Itoa(it.PurchaseCount))
	}
	t.write(&b)
	return b.String()
}

// BatchMarkdown renders the lines read from a receipt.
func BatchMarkdown(batch core.PurchaseBatch, f Formatter) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Receipt %s\n\n", batch.Date)
	if len(batch.Items) == 0 {
		b.WriteString("No items found on the receipt.\n")
		return b.String()
	}
	t := table{header: []string{"Item", "Quantity", "Unit", "Price", "Category"}, right: []bool{false, true, false, true, false}}
	total := 0.0
	for _, line := range batch.Items {
		t.add(line.Name, Quantity(line.Quantity), line.Unit, f.Format(line.Price), line.SuggestedCategory)
		total += line.Price
	}
	t.add("**Total**", "", "", "**"+f.Format(total)+"**", "")
	t.write(&b)
	return b.String()
}
