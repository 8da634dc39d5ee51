package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/google/subcommands"

	"spesa/internal/cli"
	"spesa/internal/core"
	"spesa/internal/report"
	"spesa/internal/services"
)

// withAI runs fn with an AI service bound to the session's ledger.
func (a *app) withAI(ctx context.Context, fn func(s *session, svc *services.AIService) error) subcommands.ExitStatus {
	if err := a.configure(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if !a.cfg.AIEnabled() {
		fmt.Fprintf(os.Stderr, "Error: %v (set GEMINI_API_KEY)\n", services.ErrAIUnavailable)
		return subcommands.ExitFailure
	}
	clients, err := cli.OpenAI(ctx, a.cfg, a.logger, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer clients.Close()
	return a.run(ctx, func(s *session) error {
		return fn(s, services.NewAIService(s.ledger, clients.Extractor, clients.Answerer, a.logger))
	})
}

type askCmd struct{ *app }

func (*askCmd) Name() string     { return "ask" }
func (*askCmd) Synopsis() string { return "ask a question about the purchase history" }
func (*askCmd) Usage() string {
	return `spesactl ask <question...>

  Answers a free-form question using the recorded purchases.
`
}
func (*askCmd) SetFlags(*flag.FlagSet) {}

func (c *askCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	question := strings.Join(f.Args(), " ")
	if strings.TrimSpace(question) == "" {
		fmt.Fprintf(os.Stderr, "Error: %v\n", services.ErrEmptyQuestion)
		return subcommands.ExitUsageError
	}
	return c.withAI(ctx, func(_ *session, svc *services.AIService) error {
		answer, err := svc.Ask(ctx, question)
		if err != nil {
			return err
		}
		return c.print(answer + "\n")
	})
}

type scanCmd struct {
	*app
	record        bool
	vendor        string
	paymentMethod string
	paymentStatus string
}

func (*scanCmd) Name() string     { return "scan" }
func (*scanCmd) Synopsis() string { return "read a receipt photo and optionally record it" }
func (*scanCmd) Usage() string {
	return `spesactl scan [-record] [-vendor <name>] [-method <payment>] [-status due|paid] <image>

  Reads the purchase lines from a receipt photo. With -record the lines are
  booked on the list for the receipt date.
`
}

func (c *scanCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.record, "record", false, "record the receipt in the ledger")
	f.StringVar(&c.vendor, "vendor", "", "vendor to attach to the recorded items")
	f.StringVar(&c.paymentMethod, "method", "", "payment method of the recorded items")
	f.StringVar(&c.paymentStatus, "status", "", "payment status of the recorded items (due or paid)")
}

func (c *scanCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: scan takes exactly one image file")
		return subcommands.ExitUsageError
	}
	status := core.PaymentStatus(strings.ToLower(c.paymentStatus))
	if status != "" && status != core.PaymentDue && status != core.PaymentPaid {
		fmt.Fprintf(os.Stderr, "Error: %v\n", core.ErrInvalidStatus)
		return subcommands.ExitUsageError
	}
	image, err := os.ReadFile(f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	mimeType := http.DetectContentType(image)
	if !strings.HasPrefix(mimeType, "image/") {
		fmt.Fprintf(os.Stderr, "Error: %s is not an image (%s)\n", f.Arg(0), mimeType)
		return subcommands.ExitUsageError
	}

	return c.withAI(ctx, func(_ *session, svc *services.AIService) error {
		if !c.record {
			batch, err := svc.ScanReceipt(ctx, image, mimeType)
			if err != nil {
				return err
			}
			return c.print(report.BatchMarkdown(batch, c.formatter()))
		}
		list, batch, err := svc.RecordReceipt(ctx, image, mimeType, c.paymentMethod, status, c.vendor)
		if err != nil {
			if errors.Is(err, services.ErrReceiptScan) {
				return err
			}
			return fmt.Errorf("record receipt: %w", err)
		}
		md := report.BatchMarkdown(batch, c.formatter()) + fmt.Sprintf("Recorded on **%s**.\n", list)
		return c.print(md)
	})
}
