package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aluiziolira/go-post-search/profile"
	"github.com/aluiziolira/go-post-search/query"
)

// Searcher resolves a built query to a result URL, or "" when nothing was
// accepted. Implementations absorb their own transient failures.
type Searcher interface {
	Search(ctx context.Context, query string, p profile.Profile) string
}

// Processor runs the sequential row loop: build a query per caption,
// search, and record the accepted URL.
type Processor struct {
	searcher       Searcher
	minQueryLength int
}

// NewProcessor builds a processor around a searcher.
func NewProcessor(searcher Searcher, minQueryLength int) *Processor {
	return &Processor{
		searcher:       searcher,
		minQueryLength: minQueryLength,
	}
}

// Run processes every row of the input table in order and returns a new
// augmented table plus the outcome counts. The input table is not
// modified. The only fatal condition is a missing text column; per-row
// failures are absorbed and counted.
func (pr *Processor) Run(ctx context.Context, in *Table, p profile.Profile) (*Table, RunStats, error) {
	textIdx, ok := in.ColumnIndex(p.TextColumn)
	if !ok {
		return nil, RunStats{}, fmt.Errorf("input is missing column %q", p.TextColumn)
	}

	out := in.Clone()
	urlIdx := ensureColumn(out, p.URLColumn)

	stats := RunStats{Total: len(out.Rows)}
	for i, row := range out.Rows {
		q, err := query.Build(row[textIdx], p, pr.minQueryLength)
		if err != nil {
			var short *query.InsufficientTextError
			if errors.As(err, &short) {
				stats.Skipped++
				slog.Info("row skipped: insufficient text",
					slog.Int("row", i+1),
					slog.Int("length", short.Length),
				)
				continue
			}
			return nil, stats, fmt.Errorf("build query for row %d: %w", i+1, err)
		}

		link := pr.searcher.Search(ctx, q, p)
		if link != "" {
			row[urlIdx] = link
			stats.Found++
			slog.Info("url found", slog.Int("row", i+1), slog.String("url", link))
		} else {
			slog.Info("url not found", slog.Int("row", i+1))
		}
	}

	return out, stats, nil
}

// ensureColumn returns the index of the named column, appending it when
// the table does not have it yet. Existing cells are cleared: every URL in
// the output is set by the current run alone.
func ensureColumn(t *Table, name string) int {
	idx, ok := t.ColumnIndex(name)
	if !ok {
		t.Header = append(t.Header, name)
		idx = len(t.Header) - 1
		for i := range t.Rows {
			t.Rows[i] = append(t.Rows[i], "")
		}
		return idx
	}
	for _, row := range t.Rows {
		row[idx] = ""
	}
	return idx
}
