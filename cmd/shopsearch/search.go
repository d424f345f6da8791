package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"

	"github.com/cwygoda/shopsearch/internal/domain"
	"github.com/cwygoda/shopsearch/internal/search"
)

func searchAction(ctx context.Context, cmd *cli.Command) error {
	req, err := buildRequest(cmd)
	if err != nil {
		return err
	}

	app, err := newAppContext(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	sess, err := app.start(ctx, req)
	if err != nil {
		return err
	}

	st, err := follow(ctx, sess, app.searcher, os.Stderr)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return writeJSON(os.Stdout, st)
	}
	if st.Phase != domain.PhaseCompleted {
		return fmt.Errorf("%s: %s", st.Phase, st.Error)
	}
	renderResults(os.Stdout, st.Data)
	return nil
}

// start submits req, switching to demo mode once when the backend asks for it.
func (a *appContext) start(ctx context.Context, req domain.SearchRequest) (*search.Session, error) {
	sess, err := a.searcher.SearchProducts(ctx, req)
	if err == nil || !a.cfg.AutoDemoFallback || !errors.Is(err, domain.ErrAuthRequired) {
		return sess, err
	}

	demo, derr := a.creds.Demo(ctx)
	if derr != nil || demo {
		return nil, err
	}
	if derr := a.creds.EnableDemo(ctx); derr != nil {
		return nil, errors.Join(err, derr)
	}
	a.log.Warn().Msg("authentication unavailable, switched to demo mode")
	return a.searcher.SearchProducts(ctx, req)
}

// follow prints progress for sess until it reaches a terminal phase.
// Interrupting ctx cancels the session.
func follow(ctx context.Context, sess *search.Session, s *search.Searcher, w io.Writer) (domain.State, error) {
	updates, unsubscribe := s.Subscribe()
	defer unsubscribe()

	var lastStage string
	lastProgress := -1
	for {
		select {
		case <-ctx.Done():
			sess.Cancel()
			return sess.State(), ctx.Err()
		case <-sess.Done():
			return sess.State(), nil
		case st := <-updates:
			if st.Session != sess.Token() {
				continue
			}
			if st.CurrentStage != lastStage || st.Progress != lastProgress {
				lastStage, lastProgress = st.CurrentStage, st.Progress
				if lastStage != "" {
					fmt.Fprintf(w, "[%3d%%] %s\n", st.Progress, st.CurrentStage)
				}
			}
		}
	}
}

func buildRequest(cmd *cli.Command) (domain.SearchRequest, error) {
	query := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	if query == "" {
		return domain.SearchRequest{}, fmt.Errorf("search query is required")
	}

	f := &domain.Filters{
		Category: cmd.String("category"),
		Brands:   cmd.StringSlice("brand"),
		UseCase:  cmd.String("use-case"),
		Features: cmd.StringSlice("feature"),
	}
	if cmd.IsSet("min-price") {
		v := cmd.Float("min-price")
		f.MinPrice = &v
	}
	if cmd.IsSet("max-price") {
		v := cmd.Float("max-price")
		f.MaxPrice = &v
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return domain.SearchRequest{}, fmt.Errorf("min-price %.2f exceeds max-price %.2f", *f.MinPrice, *f.MaxPrice)
	}

	req := domain.SearchRequest{Query: query, MaxResults: cmd.Int("max-results")}
	if !f.IsZero() {
		req.Filters = f
	}
	return req, nil
}

func legacyAction(ctx context.Context, cmd *cli.Command) error {
	prompt := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))

	app, err := newAppContext(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	rs, err := app.searcher.SearchLegacy(ctx, prompt, cmd.Int("num-products"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return writeJSON(os.Stdout, rs)
	}
	renderResults(os.Stdout, rs)
	return nil
}

func renderResults(w io.Writer, rs *domain.ResultSet) {
	if rs.Count() == 0 {
		fmt.Fprintln(w, "No products found.")
		return
	}

	table := tablewriter.NewWriter(w)
	table.Header("#", "Product", "Brand", "Price", "Rating", "Match")
	for i, p := range rs.Results {
		table.Append(
			strconv.Itoa(i+1),
			truncateString(p.Name, 50),
			p.Brand,
			p.Price,
			p.Rating,
			formatScore(p.MatchScore),
		)
	}
	table.Render()

	fmt.Fprintf(w, "\n%d of %d products\n", rs.Count(), max(rs.TotalFound, rs.Count()))
	if rs.ComparisonSummary != "" {
		fmt.Fprintf(w, "\nSummary: %s\n", rs.ComparisonSummary)
	}
	if rs.Recommendation != "" {
		fmt.Fprintf(w, "Recommendation: %s\n", rs.Recommendation)
	}
}

func formatScore(score float64) string {
	if score <= 0 {
		return "-"
	}
	return strconv.FormatFloat(score, 'f', 2, 64)
}

func truncateString(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
