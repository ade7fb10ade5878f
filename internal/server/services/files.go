package services

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/dmitrijs2005/studyshare/internal/category"
	"github.com/dmitrijs2005/studyshare/internal/common"
	"github.com/dmitrijs2005/studyshare/internal/logging"
	"github.com/dmitrijs2005/studyshare/internal/server/config"
	"github.com/dmitrijs2005/studyshare/internal/server/metrics"
	"github.com/dmitrijs2005/studyshare/internal/server/models"
	"github.com/dmitrijs2005/studyshare/internal/server/repositories/files"
	"github.com/dmitrijs2005/studyshare/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/studyshare/internal/server/storage"
	"github.com/gabriel-vasile/mimetype"
)

// UploadRequest is one file submitted by a user. Category is the raw
// identifier and is validated by Upload.
type UploadRequest struct {
	Content     []byte
	FileName    string
	ClassCode   string
	Category    string
	DisplayName string
}

// ListRequest narrows a listing. Empty fields are not applied.
type ListRequest struct {
	Category          string
	NameContains      string
	ClassCodeContains string
}

type FileService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	schools       SchoolResolver
	store         storage.ObjectStore
	callTimeout   time.Duration
	maxUploadSize int64
	pendingTTL    time.Duration
	logger        logging.Logger
	now           func() time.Time
}

func NewFileService(db *sql.DB, m repomanager.RepositoryManager, schools SchoolResolver, store storage.ObjectStore,
	cfg *config.Config, logger logging.Logger) *FileService {
	return &FileService{
		db:            db,
		repomanager:   m,
		schools:       schools,
		store:         store,
		callTimeout:   cfg.RemoteCallTimeout,
		maxUploadSize: cfg.MaxUploadSize,
		pendingTTL:    cfg.PendingUploadTTL,
		logger:        logger.With("module", "files"),
		now:           time.Now,
	}
}

// StoragePath is the object key of a file: school/classCode/fileName.
func StoragePath(school, classCode, fileName string) string {
	return school + "/" + classCode + "/" + fileName
}

// List returns the completed files of the caller's school matching req,
// newest first. An empty result is not an error.
func (s *FileService) List(ctx context.Context, userID string, req ListRequest) ([]*models.File, error) {
	scope := files.Scope{
		NameContains:      strings.TrimSpace(req.NameContains),
		ClassCodeContains: strings.TrimSpace(req.ClassCodeContains),
	}

	if strings.TrimSpace(req.Category) != "" {
		c, err := category.Parse(req.Category)
		if err != nil {
			return nil, err
		}
		scope.Category = c
	}

	school, err := s.schools.ResolveSchool(ctx, userID)
	if err != nil {
		metrics.QueriesTotal.WithLabelValues(metrics.ResultError).Inc()
		return nil, err
	}
	scope.School = school

	var result []*models.File
	err = withTimeout(ctx, s.callTimeout, func(ctx context.Context) error {
		var err error
		result, err = s.repomanager.Files(s.db).Search(ctx, scope)
		return err
	})
	if err != nil {
		metrics.QueriesTotal.WithLabelValues(metrics.ResultError).Inc()
		s.logger.Error(ctx, "file query failed", "school", school, "error", err)
		return nil, fmt.Errorf("%w: %w", common.ErrQueryFailed, err)
	}

	metrics.QueriesTotal.WithLabelValues(metrics.ResultOK).Inc()
	return result, nil
}

// Upload runs the two-phase pipeline: reserve the path with a pending row,
// write the object, resolve its public URL, then complete the row. Every
// failure after the reservation undoes what was done before it.
func (s *FileService) Upload(ctx context.Context, userID string, req UploadRequest) (*models.File, error) {
	f, err := s.upload(ctx, userID, req)
	switch {
	case err == nil:
		metrics.UploadsTotal.WithLabelValues(metrics.ResultOK).Inc()
		metrics.UploadBytes.Observe(float64(len(req.Content)))
	case errors.Is(err, common.ErrPathConflict):
		metrics.UploadsTotal.WithLabelValues(metrics.ResultConflict).Inc()
	default:
		metrics.UploadsTotal.WithLabelValues(metrics.ResultError).Inc()
	}
	return f, err
}

func (s *FileService) upload(ctx context.Context, userID string, req UploadRequest) (*models.File, error) {
	c, err := s.validateUpload(&req)
	if err != nil {
		return nil, err
	}

	school, err := s.schools.ResolveSchool(ctx, userID)
	if err != nil {
		return nil, err
	}

	key := StoragePath(school, req.ClassCode, req.FileName)
	repo := s.repomanager.Files(s.db)
	log := s.logger.With("path", key, "user_id", userID)

	var pending *models.File
	err = withTimeout(ctx, s.callTimeout, func(ctx context.Context) error {
		var err error
		pending, err = repo.Reserve(ctx, &models.File{
			Name:       req.DisplayName,
			Path:       key,
			ClassCode:  req.ClassCode,
			UserID:     userID,
			SchoolName: school,
			Category:   c,
		})
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrPathConflict) {
			log.Info(ctx, "upload rejected, path taken")
			return nil, err
		}
		log.Error(ctx, "reserve failed", "error", err)
		return nil, fmt.Errorf("%w: %w", common.ErrMetadataInsert, err)
	}

	contentType := mimetype.Detect(req.Content).String()
	err = withTimeout(ctx, s.callTimeout, func(ctx context.Context) error {
		return s.store.Put(ctx, key, bytes.NewReader(req.Content), int64(len(req.Content)), contentType)
	})
	if err != nil {
		log.Error(ctx, "object write failed", "error", err)
		s.discardRow(ctx, pending.ID, log)
		return nil, fmt.Errorf("%w: %w", common.ErrObjectWrite, err)
	}

	var url string
	err = withTimeout(ctx, s.callTimeout, func(ctx context.Context) error {
		var err error
		url, err = s.store.PublicURL(ctx, key)
		return err
	})
	if err != nil {
		log.Error(ctx, "public url resolution failed", "error", err)
		err = fmt.Errorf("%w: %w", common.ErrURLResolution, err)
		return nil, errors.Join(err, s.rollback(ctx, pending, log))
	}

	var committed *models.File
	err = withTimeout(ctx, s.callTimeout, func(ctx context.Context) error {
		var err error
		committed, err = repo.Complete(ctx, pending.ID, url)
		return err
	})
	if err != nil {
		log.Error(ctx, "metadata commit failed", "error", err)
		err = fmt.Errorf("%w: %w", common.ErrMetadataInsert, err)
		return nil, errors.Join(err, s.rollback(ctx, pending, log))
	}

	log.Info(ctx, "file uploaded", "file_id", committed.ID, "bytes", len(req.Content), "content_type", contentType)
	return committed, nil
}

func (s *FileService) validateUpload(req *UploadRequest) (category.Category, error) {
	req.FileName = strings.TrimSpace(req.FileName)
	req.ClassCode = strings.TrimSpace(req.ClassCode)
	req.DisplayName = strings.TrimSpace(req.DisplayName)

	if req.FileName == "" {
		return "", fmt.Errorf("%w: file name is required", common.ErrValidation)
	}
	if !isPathElement(req.FileName) {
		return "", fmt.Errorf("%w: file name %q must be a single path element", common.ErrValidation, req.FileName)
	}
	if req.ClassCode == "" {
		return "", fmt.Errorf("%w: class code is required", common.ErrValidation)
	}
	if !isPathElement(req.ClassCode) {
		return "", fmt.Errorf("%w: class code %q must not contain path separators", common.ErrValidation, req.ClassCode)
	}
	if req.DisplayName == "" {
		return "", fmt.Errorf("%w: display name is required", common.ErrValidation)
	}
	if len(req.Content) == 0 {
		return "", fmt.Errorf("%w: file is empty", common.ErrValidation)
	}
	if s.maxUploadSize > 0 && int64(len(req.Content)) > s.maxUploadSize {
		return "", fmt.Errorf("%w: file is %d bytes, limit is %d", common.ErrValidation, len(req.Content), s.maxUploadSize)
	}

	return category.Parse(req.Category)
}

func isPathElement(s string) bool {
	if s == "." || s == ".." || strings.ContainsAny(s, `/\`) {
		return false
	}
	return path.Base(s) == s
}

// rollback deletes the written object and then the pending row. When the
// object cannot be deleted the row is kept so the sweeper retries it, and
// the returned error carries common.ErrOrphanedObject.
func (s *FileService) rollback(ctx context.Context, pending *models.File, log logging.Logger) error {
	ctx = context.WithoutCancel(ctx)

	err := withTimeout(ctx, s.callTimeout, func(ctx context.Context) error {
		return s.store.Delete(ctx, pending.Path)
	})
	if err != nil {
		log.Error(ctx, "orphaned object, compensating delete failed", "error", err)
		return fmt.Errorf("%w: %s: %w", common.ErrOrphanedObject, pending.Path, err)
	}

	s.discardRow(ctx, pending.ID, log)
	return nil
}

func (s *FileService) discardRow(ctx context.Context, id string, log logging.Logger) {
	ctx = context.WithoutCancel(ctx)

	err := withTimeout(ctx, s.callTimeout, func(ctx context.Context) error {
		return s.repomanager.Files(s.db).Delete(ctx, id)
	})
	if err != nil {
		log.Warn(ctx, "pending row not removed, left for sweeper", "file_id", id, "error", err)
	}
}

// SweepPending removes pending uploads older than the configured TTL along
// with their objects and reports how many were removed.
func (s *FileService) SweepPending(ctx context.Context) (int, error) {
	repo := s.repomanager.Files(s.db)
	cutoff := s.now().Add(-s.pendingTTL)

	var stale []*models.File
	err := withTimeout(ctx, s.callTimeout, func(ctx context.Context) error {
		var err error
		stale, err = repo.ListStalePending(ctx, cutoff)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("list stale uploads: %w", err)
	}

	removed := 0
	for _, f := range stale {
		err := withTimeout(ctx, s.callTimeout, func(ctx context.Context) error {
			if err := s.store.Delete(ctx, f.Path); err != nil {
				return err
			}
			return repo.Delete(ctx, f.ID)
		})
		if err != nil {
			s.logger.Warn(ctx, "stale upload not swept", "path", f.Path, "file_id", f.ID, "error", err)
			continue
		}
		removed++
	}

	if removed > 0 {
		metrics.SweptUploads.Add(float64(removed))
		s.logger.Info(ctx, "swept stale uploads", "count", removed)
	}
	return removed, nil
}

// RunSweeper calls SweepPending every interval until ctx is done.
func (s *FileService) RunSweeper(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := s.SweepPending(ctx); err != nil {
				s.logger.Error(ctx, "sweep failed", "error", err)
			}
		}
	}
}
