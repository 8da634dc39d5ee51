package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/google/subcommands"

	"spesa/internal/analytics"
	"spesa/internal/core"
	"spesa/internal/report"
)

type summaryCmd struct {
	*app
	period string
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display spending totals for a period" }
func (*summaryCmd) Usage() string {
	return `spesactl summary [-period <period>]

  Displays total and daily spend with category and vendor breakdowns.
  Periods: 7d, 30d, mtd, ytd, all.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.period, "period", "30d", "reporting window")
}

func (c *summaryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	period, err := core.ParsePeriod(c.period)
	if err != nil {
		fmt.Fprintf(f.Output(), "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	return c.run(ctx, func(s *session) error {
		summary, ok := analytics.Summarize(s.ledger.Ledger(), period, c.now())
		if !ok {
			summary = nil
		}
		return c.print(report.SummaryMarkdown(period, summary, c.formatter()))
	})
}

type suggestCmd struct{ *app }

func (*suggestCmd) Name() string     { return "suggest" }
func (*suggestCmd) Synopsis() string { return "list items that are due for a restock" }
func (*suggestCmd) Usage() string {
	return `spesactl suggest

  Lists recurring items whose purchase cycle says they are running low.
`
}
func (*suggestCmd) SetFlags(*flag.FlagSet) {}

func (c *suggestCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.run(ctx, func(s *session) error {
		return c.print(report.SuggestionsMarkdown(analytics.Suggestions(s.ledger.Ledger(), c.now())))
	})
}

type forecastCmd struct{ *app }

func (*forecastCmd) Name() string     { return "forecast" }
func (*forecastCmd) Synopsis() string { return "project daily and monthly spend" }
func (*forecastCmd) Usage() string {
	return `spesactl forecast

  Projects spend from the average daily rate over the whole history.
`
}
func (*forecastCmd) SetFlags(*flag.FlagSet) {}

func (c *forecastCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.run(ctx, func(s *session) error {
		fc, ok := analytics.Forecast(s.ledger.Ledger())
		if !ok {
			fc = nil
		}
		return c.print(report.ForecastMarkdown(fc, c.formatter()))
	})
}

type itemsCmd struct {
	*app
	category string
}

func (*itemsCmd) Name() string     { return "items" }
func (*itemsCmd) Synopsis() string { return "list every known item with totals" }
func (*itemsCmd) Usage() string {
	return `spesactl items [-category <name>]

  Lists every item ever bought with its unit, category and totals.
`
}

func (c *itemsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.category, "category", "", "only show items in this category")
}

func (c *itemsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.run(ctx, func(s *session) error {
		items := analytics.AllKnownItems(s.ledger.Ledger())
		if c.category != "" {
			kept := items[:0]
			for _, it := range items {
				if strings.EqualFold(it.Category, c.category) {
					kept = append(kept, it)
				}
			}
			items = kept
		}
		return c.print(report.ItemsMarkdown(items, c.formatter()))
	})
}
