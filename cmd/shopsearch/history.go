package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"

	"github.com/cwygoda/shopsearch/internal/domain"
)

func historyAction(ctx context.Context, cmd *cli.Command) error {
	app, err := newAppContext(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	entries, err := app.history.Recent(ctx, cmd.Int("limit"))
	if err != nil {
		return fmt.Errorf("list history: %w", err)
	}
	renderHistory(os.Stdout, entries)
	return nil
}

func renderHistory(w io.Writer, entries []domain.HistoryEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No searches yet.")
		return
	}

	table := tablewriter.NewWriter(w)
	table.Header("Started", "Query", "Job ID", "Phase", "Results", "Error")
	for _, e := range entries {
		phase := string(e.Phase)
		if !e.Finished() {
			phase += " (open)"
		}
		table.Append(
			e.CreatedAt.Local().Format("2006-01-02 15:04"),
			truncateString(e.Query, 40),
			e.JobID,
			phase,
			strconv.Itoa(e.ResultCount),
			truncateString(e.Error, 40),
		)
	}
	table.Render()
}
