package matcher

import (
	"context"

	"golang.org/x/sync/errgroup"

	"extranet/internal/model"
)

// MatchBatch matches every filename independently and returns one result per
// input, in input order. Roster profiles are built once and shared read-only
// across workers. The only error is cancellation of ctx.
func (m *Matcher) MatchBatch(ctx context.Context, filenames []string, roster []model.User) ([]model.MatchResult, error) {
	results := make([]model.MatchResult, len(filenames))
	if len(filenames) == 0 {
		return results, nil
	}
	profiles := buildProfiles(roster)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.workers)
	for i, name := range filenames {
		i, name := i, name
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = m.match(name, profiles)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Summary counts a batch outcome. UnmatchedFiles need manual assignment.
type Summary struct {
	Matched        int      `json:"matched"`
	Unmatched      int      `json:"unmatched"`
	UnmatchedFiles []string `json:"unmatched_files"`
}

// Summarize tallies results produced by MatchBatch.
func Summarize(results []model.MatchResult) Summary {
	s := Summary{UnmatchedFiles: make([]string, 0)}
	for _, r := range results {
		if r.Matched() {
			s.Matched++
			continue
		}
		s.Unmatched++
		s.UnmatchedFiles = append(s.UnmatchedFiles, r.Filename)
	}
	return s
}
