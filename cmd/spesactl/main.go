// Command spesactl reads and maintains the purchase ledger from a terminal.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"

	"spesa/internal/cli"
	applog "spesa/internal/log"
)

var (
	plain    = flag.Bool("plain", false, "print raw Markdown instead of styled terminal output")
	logLevel = flag.String("log-level", "warn", "log level written to stderr (debug, info, warn, error)")
)

func main() {
	cli.LoadEnvFile()

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")

	a := newApp(applog.Discard(), os.Stdout, true)
	register(commander, a)

	flag.Parse()
	a.styled = !*plain
	a.logger = applog.New(applog.Config{
		Level:     applog.ParseLevel(*logLevel),
		Component: applog.ComponentApp,
		Output:    os.Stderr,
	})

	os.Exit(int(commander.Execute(context.Background())))
}

func register(c *subcommands.Commander, a *app) {
	c.Register(&summaryCmd{app: a}, "reports")
	c.Register(&suggestCmd{app: a}, "reports")
	c.Register(&forecastCmd{app: a}, "reports")
	c.Register(&itemsCmd{app: a}, "reports")

	c.Register(&exportCmd{app: a}, "ledger")
	c.Register(&importCmd{app: a}, "ledger")
	c.Register(&restoreCmd{app: a}, "ledger")

	c.Register(&askCmd{app: a}, "ai")
	c.Register(&scanCmd{app: a}, "ai")
}
