package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"extranet/internal/cache"
	"extranet/internal/model"
	"extranet/internal/notify"
	"extranet/internal/repository"
	"extranet/internal/storage"
)

const defaultDownloadTTL = 15 * time.Minute

// UploadInput describes one file to store for a user.
type UploadInput struct {
	UserID      int64
	Category    model.Category
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// DocumentQuery filters and pages a document listing. Zero UserID or
// Category means any.
type DocumentQuery struct {
	UserID   int64
	Category model.Category
	Limit    int
	Offset   int
}

// DocumentListResult is the service-level DTO for paginated documents.
type DocumentListResult struct {
	Items []model.Document `json:"data"`
	Total int              `json:"total"`
}

// DownloadLink is a time-limited URL for fetching a document directly from storage.
type DownloadLink struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// DocumentService defines the use cases for handling documents.
type DocumentService interface {
	// Upload stores the content, saves its metadata and removes the object
	// again if the metadata cannot be saved. The owner must exist.
	Upload(ctx context.Context, in UploadInput) (*model.Document, error)

	List(ctx context.Context, q DocumentQuery) (*DocumentListResult, error)
	Get(ctx context.Context, id string) (*model.Document, error)

	// Delete removes a document by ID from both storage and repository.
	Delete(ctx context.Context, id string) error

	DownloadURL(ctx context.Context, id string) (*DownloadLink, error)

	// Open streams the document content. The caller closes the reader.
	Open(ctx context.Context, id string) (io.ReadCloser, *model.Document, error)

	// Recent returns the user's latest uploads, newest first.
	Recent(ctx context.Context, userID int64) ([]cache.RecentUpload, error)
}

// DocumentDeps wires a DocumentService. Recent and Events default to no-ops.
type DocumentDeps struct {
	Store       storage.Storage
	Documents   repository.DocumentRepository
	Users       repository.UserRepository
	Recent      cache.RecentUploads
	Events      notify.Publisher
	Logger      zerolog.Logger
	DownloadTTL time.Duration
}

type documentService struct {
	store       storage.Storage
	repo        repository.DocumentRepository
	users       repository.UserRepository
	recent      cache.RecentUploads
	events      notify.Publisher
	log         zerolog.Logger
	downloadTTL time.Duration
	now         func() time.Time
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(d DocumentDeps) DocumentService {
	s := &documentService{
		store:       d.Store,
		repo:        d.Documents,
		users:       d.Users,
		recent:      d.Recent,
		events:      d.Events,
		log:         d.Logger.With().Str("component", "documents").Logger(),
		downloadTTL: d.DownloadTTL,
		now:         func() time.Time { return time.Now().UTC() },
	}
	if s.recent == nil {
		s.recent = cache.Noop{}
	}
	if s.events == nil {
		s.events = notify.Noop{}
	}
	if s.downloadTTL <= 0 {
		s.downloadTTL = defaultDownloadTTL
	}
	return s
}

func (s *documentService) Upload(ctx context.Context, in UploadInput) (*model.Document, error) {
	if in.Reader == nil {
		return nil, ErrReaderNil
	}
	category, err := model.ParseCategory(string(in.Category))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, in.Category)
	}
	if _, err := s.users.FindByID(ctx, in.UserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	contentType := in.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	original := filepath.Base(in.Filename)

	// The document id doubles as the stored file name.
	id := uuid.NewString()
	genName := id + strings.ToLower(filepath.Ext(original))
	key := storage.ObjectKey(string(category), in.UserID, genName)

	objInfo, err := s.store.Put(ctx, key, in.Reader, storage.PutObjectOptions{
		Size:        in.Size,
		ContentType: contentType,
		Metadata: map[string]string{
			"original-filename": original,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	doc := &model.Document{
		ID:           id,
		UserID:       in.UserID,
		Category:     category,
		Filename:     genName,
		OriginalName: original,
		StoragePath:  objInfo.Key,
		Size:         objInfo.Size,
		ContentType:  objInfo.ContentType,
		CreatedAt:    s.now(),
	}
	stored, err := s.repo.Create(ctx, doc)
	if err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}

	s.afterUpload(ctx, stored)
	return stored, nil
}

// afterUpload feeds the recent-uploads cache and the event stream.
// The document is already stored, so failures here are only logged.
func (s *documentService) afterUpload(ctx context.Context, doc *model.Document) {
	entry := cache.RecentUpload{
		DocumentID: doc.ID,
		Filename:   doc.OriginalName,
		Category:   doc.Category,
		UploadedAt: doc.CreatedAt,
	}
	if err := s.recent.Push(ctx, doc.UserID, entry); err != nil {
		s.log.Warn().Err(err).Str("document_id", doc.ID).Msg("recent uploads not updated")
	}

	ev := notify.Event{
		Type:       notify.EventDocumentUploaded,
		UserID:     doc.UserID,
		DocumentID: doc.ID,
		Category:   string(doc.Category),
		Filename:   doc.OriginalName,
		OccurredAt: doc.CreatedAt,
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		s.log.Warn().Err(err).Str("document_id", doc.ID).Msg("upload event not published")
	}
}

// List returns paginated documents without exposing repository types.
func (s *documentService) List(ctx context.Context, q DocumentQuery) (*DocumentListResult, error) {
	if q.Limit <= 0 {
		q.Limit = 10
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	if q.Category != "" {
		c, err := model.ParseCategory(string(q.Category))
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, q.Category)
		}
		q.Category = c
	}

	res, err := s.repo.List(ctx,
		repository.DocumentFilter{UserID: q.UserID, Category: q.Category},
		repository.PageQuery{Limit: q.Limit, Offset: q.Offset},
	)
	if err != nil {
		return nil, err
	}
	return &DocumentListResult{Items: res.Items, Total: res.Total}, nil
}

// Get returns a document by ID.
func (s *documentService) Get(ctx context.Context, id string) (*model.Document, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

// Delete removes a document from storage, then deletes its record.
func (s *documentService) Delete(ctx context.Context, id string) error {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	// Storage first: if it fails the row still points at the object.
	if err := s.store.Delete(ctx, doc.StoragePath); err != nil {
		return fmt.Errorf("delete storage: %w", err)
	}
	return s.repo.Delete(ctx, id)
}

func (s *documentService) DownloadURL(ctx context.Context, id string) (*DownloadLink, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	u, err := s.store.PresignGet(ctx, doc.StoragePath, s.downloadTTL)
	if err != nil {
		return nil, fmt.Errorf("presign: %w", err)
	}
	return &DownloadLink{URL: u, ExpiresAt: s.now().Add(s.downloadTTL)}, nil
}

func (s *documentService) Open(ctx context.Context, id string) (io.ReadCloser, *model.Document, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	rc, _, err := s.store.Get(ctx, doc.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open storage: %w", err)
	}
	return rc, doc, nil
}

func (s *documentService) Recent(ctx context.Context, userID int64) ([]cache.RecentUpload, error) {
	return s.recent.List(ctx, userID)
}
