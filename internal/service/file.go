package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"
	"sort"
	"strings"
	"time"

	"filedepot/internal/config"
	"filedepot/internal/keygen"
	"filedepot/internal/model"
	"filedepot/internal/repository"
	"filedepot/internal/storage"
	"filedepot/internal/validate"
)

var (
	ErrKeyRequired = errors.New("key is required")
	ErrNotFound    = errors.New("file not found")

	// Upload rejections. Detected before any backend call; no storage
	// write happens once one of these is returned.
	ErrUploadTransport = errors.New("file upload failed")
	ErrFileTooLarge    = errors.New("file is too large")
	ErrFileType        = errors.New("file type not allowed")
)

// defaultDescription is stored when the caller supplies none.
const defaultDescription = "No description"

// FileView is a listing entry: the metadata record joined with a freshly
// minted time-limited download URL. DownloadURL is empty when presigning
// failed for that record.
type FileView struct {
	model.File
	DownloadURL string `json:"download_url,omitempty"`
}

// FileListResult is the service-level DTO for the listing.
type FileListResult struct {
	Items []FileView `json:"files"`
}

// FileService defines the use cases for handling files.
type FileService interface {
	// Upload validates the incoming stream against policy, stores the bytes
	// under a generated key, then stores the metadata record. If the
	// metadata write fails the just-written blob is deleted again, so a
	// failed upload leaves nothing behind in either backend.
	Upload(ctx context.Context, r io.Reader, originalName, description string, size int64) (*model.File, error)

	// List scans the metadata store, enriches each record with a presigned
	// download URL, and returns the result sorted most-recent-first.
	List(ctx context.Context) (*FileListResult, error)

	// Download streams the stored bytes for a key along with its metadata.
	Download(ctx context.Context, key string) (io.ReadCloser, storage.ObjectInfo, *model.File, error)

	// Delete removes both the blob and the metadata record for a key.
	// Both deletes are attempted even if the first fails; deleting a key
	// that does not exist in either backend is a no-op.
	Delete(ctx context.Context, key string) error
}

type fileService struct {
	store  storage.ObjectStore
	repo   repository.FileRepository
	policy validate.Policy
	prefix string
	ttl    time.Duration
}

// NewFileService constructs a FileService with the given upload policy.
func NewFileService(store storage.ObjectStore, repo repository.FileRepository, cfg config.UploadConfig) FileService {
	return &fileService{
		store:  store,
		repo:   repo,
		policy: validate.Policy{MaxSizeBytes: cfg.MaxSizeBytes, AllowedTypes: cfg.AllowedTypes},
		prefix: cfg.KeyPrefix,
		ttl:    cfg.PresignTTL,
	}
}

func (s *fileService) Upload(ctx context.Context, r io.Reader, originalName, description string, size int64) (*model.File, error) {
	in := validate.Upload{Size: size}
	if r == nil {
		in.TransportErr = errors.New("nil reader")
	} else {
		mime, body, err := validate.Sniff(r)
		if err != nil {
			in.TransportErr = err
		} else {
			in.MIME = mime
			r = body
		}
	}

	switch validate.Check(in, s.policy) {
	case validate.RejectedTransport:
		return nil, fmt.Errorf("%w: %v", ErrUploadTransport, in.TransportErr)
	case validate.RejectedSize:
		return nil, fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrFileTooLarge, size, s.policy.MaxSizeBytes)
	case validate.RejectedType:
		return nil, fmt.Errorf("%w: %s", ErrFileType, in.MIME)
	}

	key := keygen.New(s.prefix, originalName)

	if _, err := s.store.Put(ctx, key, r, storage.PutObjectOptions{
		Size:        size,
		ContentType: in.MIME,
		Metadata: map[string]string{
			"original-filename": originalName,
		},
	}); err != nil {
		// Nothing exists yet, no cleanup needed.
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	if description = strings.TrimSpace(description); description == "" {
		description = defaultDescription
	}
	f := &model.File{
		Key:          key,
		OriginalName: originalName,
		Description:  description,
		UploadedAt:   time.Now().UTC(),
	}
	stored, err := s.repo.Create(ctx, f)
	if err != nil {
		// Compensate: remove the blob so the stores stay consistent.
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("save metadata failed: %v; compensating delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("save metadata failed: %w", err)
	}
	return stored, nil
}

// List builds the listing: scan, per-record presign, sort descending by
// upload time. A presign failure for one record is logged and leaves that
// record without a download URL instead of failing the whole listing.
func (s *fileService) List(ctx context.Context) (*FileListResult, error) {
	records, err := s.repo.Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan metadata: %w", err)
	}

	items := make([]FileView, 0, len(records))
	for _, rec := range records {
		url, err := s.store.PresignGet(ctx, rec.Key, s.ttl)
		if err != nil {
			log.Printf("presign failed for %s: %v", rec.Key, err)
			url = ""
		}
		items = append(items, FileView{File: rec, DownloadURL: url})
	}

	// Zero upload times (unparsable in the store) sort to the end.
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].UploadedAt.After(items[j].UploadedAt)
	})

	return &FileListResult{Items: items}, nil
}

func (s *fileService) Download(ctx context.Context, key string) (io.ReadCloser, storage.ObjectInfo, *model.File, error) {
	if key == "" {
		return nil, storage.ObjectInfo{}, nil, ErrKeyRequired
	}
	f, err := s.repo.FindByKey(ctx, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ObjectInfo{}, nil, ErrNotFound
		}
		return nil, storage.ObjectInfo{}, nil, err
	}
	rc, info, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, storage.ObjectInfo{}, nil, fmt.Errorf("get blob: %w", err)
	}
	return rc, info, f, nil
}

// Delete attempts both backend deletes regardless of individual failures.
// The key is treated as an opaque, already-issued identifier.
func (s *fileService) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrKeyRequired
	}
	var errs []error
	if err := s.store.Delete(ctx, key); err != nil {
		errs = append(errs, fmt.Errorf("delete blob: %w", err))
	}
	if err := s.repo.Delete(ctx, key); err != nil {
		errs = append(errs, fmt.Errorf("delete metadata: %w", err))
	}
	return errors.Join(errs...)
}
