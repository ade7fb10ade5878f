// Package services contains server-side business logic: accounts and
// tokens, school resolution, the upload pipeline and file listing.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/studyshare/internal/common"
	"github.com/dmitrijs2005/studyshare/internal/logging"
	"github.com/dmitrijs2005/studyshare/internal/server/config"
	"github.com/dmitrijs2005/studyshare/internal/server/metrics"
	"github.com/dmitrijs2005/studyshare/internal/server/repositories/repomanager"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// SchoolResolver maps an identity to the school its files are scoped to.
type SchoolResolver interface {
	ResolveSchool(ctx context.Context, userID string) (string, error)
}

// ProfileService resolves schools, creating a profile with the default
// school the first time an identity without one is seen.
type ProfileService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	defaultSchool string
	callTimeout   time.Duration
	cache         *expirable.LRU[string, string]
	logger        logging.Logger
}

func NewProfileService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *ProfileService {
	size := cfg.ProfileCacheSize
	if size <= 0 {
		size = 1
	}

	return &ProfileService{
		db:            db,
		repomanager:   m,
		defaultSchool: cfg.DefaultSchool,
		callTimeout:   cfg.RemoteCallTimeout,
		cache:         expirable.NewLRU[string, string](size, nil, cfg.ProfileCacheTTL),
		logger:        logger.With("module", "profiles"),
	}
}

// ResolveSchool returns the school of userID. Lookup failures other than
// "no profile yet" wrap common.ErrProfileResolution.
func (s *ProfileService) ResolveSchool(ctx context.Context, userID string) (string, error) {
	if school, ok := s.cache.Get(userID); ok {
		metrics.ProfileCacheHits.Inc()
		return school, nil
	}
	metrics.ProfileCacheMisses.Inc()

	var school string
	err := withTimeout(ctx, s.callTimeout, func(ctx context.Context) error {
		var err error
		school, err = s.lookupOrCreate(ctx, userID)
		return err
	})
	if err != nil {
		s.logger.Error(ctx, "school resolution failed", "user_id", userID, "error", err)
		return "", fmt.Errorf("%w: %w", common.ErrProfileResolution, err)
	}

	s.cache.Add(userID, school)
	return school, nil
}

func (s *ProfileService) lookupOrCreate(ctx context.Context, userID string) (string, error) {
	repo := s.repomanager.Profiles(s.db)

	p, err := repo.Get(ctx, userID)
	if err == nil {
		return p.SchoolName, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return "", err
	}

	if err := repo.CreateIfAbsent(ctx, userID, s.defaultSchool); err != nil {
		return "", err
	}
	s.logger.Info(ctx, "profile created with default school", "user_id", userID, "school", s.defaultSchool)

	// re-read: a concurrent caller may have created it first
	p, err = repo.Get(ctx, userID)
	if err != nil {
		return "", err
	}
	return p.SchoolName, nil
}
