package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type exportCmd struct {
	*app
	output string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "write the ledger as a JSON backup" }
func (*exportCmd) Usage() string {
	return `spesactl export [-o <file>]

  Writes the whole ledger as JSON to the file, or to stdout when -o is omitted.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "output file")
}

func (c *exportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.run(ctx, func(s *session) error {
		data, err := s.ledger.ExportLedger(ctx)
		if err != nil {
			return err
		}
		if c.output == "" {
			_, err = c.out.Write(append(data, '\n'))
			return err
		}
		if err := os.WriteFile(c.output, data, 0o644); err != nil {
			return fmt.Errorf("write backup: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Ledger written to %s\n", c.output)
		return nil
	})
}

type importCmd struct{ *app }

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "replace the ledger with a JSON backup" }
func (*importCmd) Usage() string {
	return `spesactl import <file>

  Replaces the stored ledger with the backup. The stored ledger is left
  untouched when the file is not a valid backup.
`
}
func (*importCmd) SetFlags(*flag.FlagSet) {}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: import takes exactly one backup file")
		return subcommands.ExitUsageError
	}
	data, err := os.ReadFile(f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return c.run(ctx, func(s *session) error {
		if err := s.ledger.ImportLedger(ctx, data); err != nil {
			return err
		}
		l := s.ledger.Ledger()
		fmt.Fprintf(c.out, "Imported %d lists with %d items.\n", len(l.Lists), l.ItemCount())
		return nil
	})
}

type restoreCmd struct {
	*app
	version int64
}

func (*restoreCmd) Name() string     { return "restore" }
func (*restoreCmd) Synopsis() string { return "roll the ledger back to a saved version" }
func (*restoreCmd) Usage() string {
	return `spesactl restore [-version <n>]

  Replaces the ledger with a previously saved version; the rollback is saved
  as a new version. Without -version the stored version is printed. Only the
  sqlite backend keeps versions.
`
}

func (c *restoreCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.version, "version", 0, "version to restore")
}

func (c *restoreCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.version < 0 {
		fmt.Fprintln(os.Stderr, "Error: version must be positive")
		return subcommands.ExitUsageError
	}
	return c.run(ctx, func(s *session) error {
		current, err := s.ledger.StoredVersion(ctx)
		if err != nil {
			return err
		}
		if c.version == 0 {
			fmt.Fprintf(c.out, "Stored version is %d.\n", current)
			return nil
		}
		l, err := s.ledger.RestoreVersion(ctx, c.version)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Restored version %d with %d lists and %d items.\n", c.version, len(l.Lists), l.ItemCount())
		return nil
	})
}
