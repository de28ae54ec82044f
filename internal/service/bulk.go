package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"unicode"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"extranet/internal/matcher"
	"extranet/internal/metrics"
	"extranet/internal/model"
)

// Warnings shown next to files that need the administrator's attention.
const (
	ReasonRejected  = "file rejected: name must start with a letter"
	ReasonUnmatched = "no user match: assign manually"
)

// Owner sources reported for committed files.
const (
	SourceMatch    = "match"
	SourceOverride = "override"
)

// BulkItem is one row of the review screen.
type BulkItem struct {
	model.MatchResult
	UserName string `json:"user_name,omitempty"`
	Rejected bool   `json:"rejected,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// BulkPreview is the proposed filename to user mapping, in input order.
type BulkPreview struct {
	Items     []BulkItem `json:"items"`
	Matched   int        `json:"matched"`
	Unmatched int        `json:"unmatched"`
	Rejected  int        `json:"rejected"`
}

// BulkFile is one uploaded part of a bulk upload. Open is called at most once.
type BulkFile struct {
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

type BulkUploaded struct {
	model.Assignment
	DocumentID string `json:"document_id"`
	Source     string `json:"source"`
}

type BulkFileIssue struct {
	Filename string `json:"filename"`
	Reason   string `json:"reason"`
}

// BulkCommitResult reports every file of a commit in exactly one list.
type BulkCommitResult struct {
	Uploaded []BulkUploaded  `json:"uploaded"`
	Failed   []BulkFileIssue `json:"failed"`
	Skipped  []BulkFileIssue `json:"skipped"`
}

// RosterSource supplies the users files are matched against.
type RosterSource interface {
	Roster(ctx context.Context) ([]model.User, error)
}

// BulkService guesses owners for a batch of files and uploads them.
type BulkService interface {
	Preview(ctx context.Context, filenames []string) (*BulkPreview, error)

	// Commit uploads files under category. An override (filename to user id)
	// wins over the matcher; files with neither are skipped. Per-file
	// failures are reported in the result, not returned.
	Commit(ctx context.Context, category model.Category, files []BulkFile, overrides map[string]int64) (*BulkCommitResult, error)
}

type bulkService struct {
	matcher *matcher.Matcher
	roster  RosterSource
	docs    DocumentService
	metrics *metrics.MatchMetrics
	log     zerolog.Logger
	tracer  trace.Tracer
}

// NewBulkService wires the matcher to the roster and document upload path.
// mm may be nil.
func NewBulkService(m *matcher.Matcher, roster RosterSource, docs DocumentService, mm *metrics.MatchMetrics, logger zerolog.Logger) BulkService {
	return &bulkService{
		matcher: m,
		roster:  roster,
		docs:    docs,
		metrics: mm,
		log:     logger.With().Str("component", "bulk").Logger(),
		tracer:  otel.Tracer("extranet/service"),
	}
}

func startsWithLetter(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return r != utf8.RuneError && unicode.IsLetter(r)
}

func (s *bulkService) Preview(ctx context.Context, filenames []string) (*BulkPreview, error) {
	ctx, span := s.tracer.Start(ctx, "bulk.preview",
		trace.WithAttributes(attribute.Int("bulk.files", len(filenames))))
	defer span.End()

	p := &BulkPreview{Items: make([]BulkItem, len(filenames))}
	var (
		candidates []string
		positions  []int
	)
	for i, name := range filenames {
		p.Items[i].Filename = name
		if !startsWithLetter(name) {
			p.Items[i].Rejected = true
			p.Items[i].Reason = ReasonRejected
			p.Rejected++
			continue
		}
		candidates = append(candidates, name)
		positions = append(positions, i)
	}
	s.metrics.ObserveRejected(p.Rejected)
	if len(candidates) == 0 {
		return p, nil
	}

	roster, err := s.roster.Roster(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load roster")
		return nil, fmt.Errorf("load roster: %w", err)
	}
	results, err := s.matcher.MatchBatch(ctx, candidates, roster)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "match batch")
		return nil, err
	}
	s.metrics.ObserveResults(results)

	names := make(map[int64]string, len(roster))
	for _, u := range roster {
		names[u.ID] = displayName(u)
	}
	for j, r := range results {
		item := &p.Items[positions[j]]
		item.MatchResult = r
		if r.Matched() {
			item.UserName = names[*r.UserID]
			p.Matched++
			continue
		}
		item.Reason = ReasonUnmatched
		p.Unmatched++
	}

	span.SetAttributes(
		attribute.Int("bulk.matched", p.Matched),
		attribute.Int("bulk.unmatched", p.Unmatched),
		attribute.Int("bulk.rejected", p.Rejected),
	)
	s.log.Info().
		Int("files", len(filenames)).
		Int("matched", p.Matched).
		Int("unmatched", p.Unmatched).
		Int("rejected", p.Rejected).
		Msg("bulk preview")
	return p, nil
}

func displayName(u model.User) string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.LastName != "":
		return u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.Email
	}
}

func (s *bulkService) Commit(ctx context.Context, category model.Category, files []BulkFile, overrides map[string]int64) (*BulkCommitResult, error) {
	cat, err := model.ParseCategory(string(category))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}

	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Filename
	}
	preview, err := s.Preview(ctx, names)
	if err != nil {
		return nil, err
	}

	res := &BulkCommitResult{
		Uploaded: make([]BulkUploaded, 0, len(files)),
		Failed:   make([]BulkFileIssue, 0),
		Skipped:  make([]BulkFileIssue, 0),
	}
	for i, f := range files {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		item := preview.Items[i]
		if item.Rejected {
			res.Skipped = append(res.Skipped, BulkFileIssue{Filename: f.Filename, Reason: ReasonRejected})
			continue
		}

		userID, source := int64(0), ""
		if id := overrides[f.Filename]; id > 0 {
			userID, source = id, SourceOverride
		} else if item.Matched() {
			userID, source = *item.UserID, SourceMatch
		}
		if userID == 0 {
			res.Skipped = append(res.Skipped, BulkFileIssue{Filename: f.Filename, Reason: ReasonUnmatched})
			continue
		}

		doc, err := s.uploadOne(ctx, cat, f, userID)
		if err != nil {
			s.log.Error().Err(err).Str("filename", f.Filename).Int64("user_id", userID).Msg("bulk upload failed")
			res.Failed = append(res.Failed, BulkFileIssue{Filename: f.Filename, Reason: failureReason(err)})
			continue
		}
		res.Uploaded = append(res.Uploaded, BulkUploaded{
			Assignment: model.Assignment{Filename: f.Filename, UserID: userID},
			DocumentID: doc.ID,
			Source:     source,
		})
	}
	return res, nil
}

func (s *bulkService) uploadOne(ctx context.Context, category model.Category, f BulkFile, userID int64) (*model.Document, error) {
	if f.Open == nil {
		return nil, ErrReaderNil
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReaderNil, err)
	}
	defer rc.Close()

	return s.docs.Upload(ctx, UploadInput{
		UserID:      userID,
		Category:    category,
		Filename:    f.Filename,
		ContentType: f.ContentType,
		Size:        f.Size,
		Reader:      rc,
	})
}

// failureReason is what the administrator sees; details stay in the log.
func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrUserNotFound):
		return "user not found"
	case errors.Is(err, ErrReaderNil):
		return "file could not be read"
	default:
		return "upload failed"
	}
}
