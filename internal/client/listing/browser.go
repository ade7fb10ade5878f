// Package listing keeps the client's view of the file list: the selected
// category, the search and filter inputs, and the latest fetched result.
package listing

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/studyshare/internal/category"
	"github.com/dmitrijs2005/studyshare/internal/client/models"
)

// ErrStale is returned for a fetch that settled after a newer one was
// dispatched. Its result is dropped.
var ErrStale = errors.New("stale listing response")

type Fetcher interface {
	List(ctx context.Context, scope models.Scope) ([]*models.File, error)
}

// Snapshot is a copy of the browser state.
type Snapshot struct {
	Category    category.Category
	SearchTerm  string
	ClassFilter string
	NameFilter  string
	Files       []*models.File
	Loading     bool
	// Err is the failure of the latest fetch. A nil Err with no Files is an
	// empty result.
	Err error
}

// Browser is safe for concurrent use. Fetches run outside the lock; only
// the most recently dispatched one may update the state.
type Browser struct {
	fetcher Fetcher
	timeout time.Duration

	mu          sync.Mutex
	seq         uint64
	scope       models.Scope
	category    category.Category
	searchTerm  string
	classFilter string
	nameFilter  string
	files       []*models.File
	loading     bool
	err         error
}

func NewBrowser(f Fetcher, timeout time.Duration) *Browser {
	return &Browser{fetcher: f, timeout: timeout}
}

// SelectCategory switches to c, dropping search and filter inputs.
func (b *Browser) SelectCategory(ctx context.Context, c category.Category) error {
	b.mu.Lock()
	b.category = c
	b.searchTerm, b.classFilter, b.nameFilter = "", "", ""
	seq, scope := b.dispatchLocked(models.Scope{Category: c})
	b.mu.Unlock()

	return b.fetch(ctx, seq, scope)
}

// ClearCategory goes back to browsing the whole school. It does not fetch.
func (b *Browser) ClearCategory() {
	b.mu.Lock()
	b.category = ""
	b.scope.Category = ""
	b.mu.Unlock()
}

func (b *Browser) Search(ctx context.Context, term string) error {
	term = strings.TrimSpace(term)

	b.mu.Lock()
	b.searchTerm = term
	b.classFilter, b.nameFilter = "", ""
	seq, scope := b.dispatchLocked(models.Scope{Category: b.category, NameContains: term})
	b.mu.Unlock()

	return b.fetch(ctx, seq, scope)
}

// ApplyFilter lists files whose class code and name contain the given
// fragments. Empty fragments are not applied.
func (b *Browser) ApplyFilter(ctx context.Context, classCode, name string) error {
	classCode, name = strings.TrimSpace(classCode), strings.TrimSpace(name)

	b.mu.Lock()
	b.classFilter, b.nameFilter = classCode, name
	b.searchTerm = ""
	seq, scope := b.dispatchLocked(models.Scope{Category: b.category, ClassCodeContains: classCode, NameContains: name})
	b.mu.Unlock()

	return b.fetch(ctx, seq, scope)
}

// Refresh re-lists with the current category only.
func (b *Browser) Refresh(ctx context.Context) error {
	b.mu.Lock()
	seq, scope := b.dispatchLocked(models.Scope{Category: b.category})
	b.mu.Unlock()

	return b.fetch(ctx, seq, scope)
}

// Prepend puts a freshly uploaded file at the top of the list when the
// listed scope would have included it.
func (b *Browser) Prepend(f *models.File) {
	if f == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if !matches(b.scope, f) {
		return
	}
	b.files = append([]*models.File{f}, b.files...)
}

func (b *Browser) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	files := make([]*models.File, len(b.files))
	copy(files, b.files)

	return Snapshot{
		Category:    b.category,
		SearchTerm:  b.searchTerm,
		ClassFilter: b.classFilter,
		NameFilter:  b.nameFilter,
		Files:       files,
		Loading:     b.loading,
		Err:         b.err,
	}
}

// dispatchLocked marks scope as the latest request. b.mu must be held, so
// the sequence number is ordered with the state change that produced it.
func (b *Browser) dispatchLocked(scope models.Scope) (uint64, models.Scope) {
	b.seq++
	b.scope = scope
	b.loading = true
	return b.seq, scope
}

func (b *Browser) fetch(ctx context.Context, seq uint64, scope models.Scope) error {
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	files, err := b.fetcher.List(ctx, scope)

	b.mu.Lock()
	defer b.mu.Unlock()

	if seq != b.seq {
		return ErrStale
	}

	b.loading = false
	if err != nil {
		b.files, b.err = nil, err
		return err
	}
	if files == nil {
		files = []*models.File{}
	}
	b.files, b.err = files, nil
	return nil
}

// matches mirrors the server's case-insensitive substring filters.
func matches(scope models.Scope, f *models.File) bool {
	if scope.Category != "" && f.Category != scope.Category {
		return false
	}
	return containsFold(f.Name, scope.NameContains) && containsFold(f.ClassCode, scope.ClassCodeContains)
}

func containsFold(s, sub string) bool {
	return sub == "" || strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
