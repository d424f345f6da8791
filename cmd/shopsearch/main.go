package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "shopsearch",
		Usage: "Submit product searches and follow them to completion",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "TOML config file path (default $XDG_CONFIG_HOME/shopsearch/config.toml)",
			},
			&cli.StringFlag{
				Name:  "env",
				Usage: "environment file path",
				Value: ".env",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "override the configured log level",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "Run a product search and wait for the results",
				ArgsUsage: "<query>",
				Flags:     searchFlags(),
				Action:    searchAction,
			},
			{
				Name:      "legacy",
				Usage:     "Run a one-shot search against the legacy endpoint",
				ArgsUsage: "<prompt>",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "num-products", Usage: "number of products", Value: 5},
					&cli.BoolFlag{Name: "json", Usage: "print the result set as JSON"},
				},
				Action: legacyAction,
			},
			{
				Name:   "serve",
				Usage:  "Serve the search state over local HTTP",
				Flags:  []cli.Flag{&cli.StringFlag{Name: "listen", Usage: "listen address"}},
				Action: serveAction,
			},
			{
				Name:  "history",
				Usage: "List recent searches",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Usage: "number of entries", Value: 20},
				},
				Action: historyAction,
			},
			{
				Name:  "demo",
				Usage: "Switch demo mode",
				Commands: []*cli.Command{
					{Name: "on", Usage: "use the demo credential for new searches", Action: demoSetAction(true)},
					{Name: "off", Usage: "use the configured token for new searches", Action: demoSetAction(false)},
					{Name: "status", Usage: "show whether demo mode is on", Action: demoStatusAction},
				},
			},
		},
	}
}

func searchFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "category", Usage: "product category"},
		&cli.FloatFlag{Name: "min-price", Usage: "minimum price"},
		&cli.FloatFlag{Name: "max-price", Usage: "maximum price"},
		&cli.StringSliceFlag{Name: "brand", Usage: "preferred brand (repeatable)"},
		&cli.StringFlag{Name: "use-case", Usage: "intended use"},
		&cli.StringSliceFlag{Name: "feature", Usage: "required feature (repeatable)"},
		&cli.IntFlag{Name: "max-results", Usage: "maximum number of products"},
		&cli.BoolFlag{Name: "json", Usage: "print the final state as JSON"},
	}
}
