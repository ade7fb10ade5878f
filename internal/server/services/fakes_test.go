package services

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/studyshare/internal/common"
	"github.com/dmitrijs2005/studyshare/internal/dbx"
	"github.com/dmitrijs2005/studyshare/internal/server/models"
	"github.com/dmitrijs2005/studyshare/internal/server/repositories/files"
	"github.com/dmitrijs2005/studyshare/internal/server/repositories/profiles"
	"github.com/dmitrijs2005/studyshare/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/studyshare/internal/server/repositories/users"
	"github.com/google/uuid"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

// blockUntilDone simulates a remote call that never answers.
func blockUntilDone(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

// --- repository manager ---

type fakeRepoManager struct {
	u  *fakeUsersRepo
	p  *fakeProfilesRepo
	f  *fakeFilesRepo
	rt *fakeRefreshRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error    { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository                 { return m.u }
func (m *fakeRepoManager) Profiles(dbx.DBTX) profiles.Repository           { return m.p }
func (m *fakeRepoManager) Files(dbx.DBTX) files.Repository                 { return m.f }
func (m *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return m.rt }

// --- users ---

type fakeUsersRepo struct {
	created   *models.User
	createErr error

	getOut *models.User
	getErr error

	confirmOut *models.User
	confirmErr error
}

func (f *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	u.ID = "u-new"
	u.CreatedAt = time.Now()
	f.created = u
	return u, nil
}

func (f *fakeUsersRepo) GetByEmail(context.Context, string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeUsersRepo) GetByID(context.Context, string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeUsersRepo) Confirm(context.Context, string) (*models.User, error) {
	if f.confirmErr != nil {
		return nil, f.confirmErr
	}
	return f.confirmOut, nil
}

// --- profiles ---

type fakeProfilesRepo struct {
	mu      sync.Mutex
	rows    map[string]string
	gets    int
	creates int

	getErr    error
	createErr error
	upsertErr error
	block     bool
}

func newFakeProfiles(rows map[string]string) *fakeProfilesRepo {
	if rows == nil {
		rows = map[string]string{}
	}
	return &fakeProfilesRepo{rows: rows}
}

func (f *fakeProfilesRepo) Get(ctx context.Context, id string) (*models.Profile, error) {
	if f.block {
		return nil, blockUntilDone(ctx)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.getErr != nil {
		return nil, f.getErr
	}
	school, ok := f.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &models.Profile{ID: id, SchoolName: school}, nil
}

func (f *fakeProfilesRepo) CreateIfAbsent(_ context.Context, id, school string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.rows[id]; !ok {
		f.rows[id] = school
		f.creates++
	}
	return nil
}

func (f *fakeProfilesRepo) Upsert(_ context.Context, id, school string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.rows[id] = school
	return nil
}

// --- files ---

type fakeFilesRepo struct {
	mu   sync.Mutex
	rows map[string]*models.File

	reserveErr  error
	completeErr error
	deleteErr   error
	searchErr   error
	staleErr    error

	searchOut   []*models.File
	lastScope   files.Scope
	staleCutoff time.Time
}

func newFakeFiles() *fakeFilesRepo {
	return &fakeFilesRepo{rows: map[string]*models.File{}}
}

func (f *fakeFilesRepo) Reserve(_ context.Context, file *models.File) (*models.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.reserveErr != nil {
		return nil, f.reserveErr
	}
	for _, r := range f.rows {
		if r.Path == file.Path {
			return nil, common.ErrPathConflict
		}
	}
	cp := *file
	cp.ID = uuid.NewString()
	cp.UploadStatus = models.UploadPending
	cp.CreatedAt = time.Now()
	f.rows[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeFilesRepo) Complete(_ context.Context, id, publicURL string) (*models.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.completeErr != nil {
		return nil, f.completeErr
	}
	r, ok := f.rows[id]
	if !ok || r.UploadStatus != models.UploadPending {
		return nil, common.ErrorNotFound
	}
	r.PublicURL = publicURL
	r.UploadStatus = models.UploadCompleted
	out := *r
	return &out, nil
}

func (f *fakeFilesRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeFilesRepo) Search(_ context.Context, scope files.Scope) ([]*models.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastScope = scope
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.searchOut, nil
}

func (f *fakeFilesRepo) ListStalePending(_ context.Context, cutoff time.Time) ([]*models.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.staleCutoff = cutoff
	if f.staleErr != nil {
		return nil, f.staleErr
	}
	var out []*models.File
	for _, r := range f.rows {
		if r.UploadStatus == models.UploadPending && r.CreatedAt.Before(cutoff) {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeFilesRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

// --- refresh tokens ---

type fakeRefreshRepo struct {
	// tokens maps token to owner and expiry. Consume and Revoke remove entries.
	tokens map[string]*models.RefreshToken

	findErr    error
	consumeErr error
	revokeErr  error
	createErr  error

	created []string
	revoked []string
}

func newFakeRefresh(tokens ...*models.RefreshToken) *fakeRefreshRepo {
	f := &fakeRefreshRepo{tokens: map[string]*models.RefreshToken{}}
	for _, t := range tokens {
		f.tokens[t.Token] = t
	}
	return f
}

func (f *fakeRefreshRepo) Create(_ context.Context, userID, token string, validity time.Duration) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, token)
	return nil
}

func (f *fakeRefreshRepo) Find(_ context.Context, token string) (*models.RefreshToken, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	t, ok := f.tokens[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return t, nil
}

func (f *fakeRefreshRepo) Consume(_ context.Context, token string) (*models.RefreshToken, error) {
	if f.consumeErr != nil {
		return nil, f.consumeErr
	}
	t, ok := f.tokens[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	delete(f.tokens, token)
	return t, nil
}

func (f *fakeRefreshRepo) Revoke(_ context.Context, userID, token string) (bool, error) {
	if f.revokeErr != nil {
		return false, f.revokeErr
	}
	t, ok := f.tokens[token]
	if !ok || t.UserID != userID {
		return false, nil
	}
	delete(f.tokens, token)
	f.revoked = append(f.revoked, token)
	return true, nil
}

// --- object store ---

type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	puts    int

	putErr    error
	deleteErr error
	urlErr    error
	blockPut  bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (s *fakeStore) Put(ctx context.Context, key string, body io.Reader, _ int64, contentType string) error {
	if s.blockPut {
		return blockUntilDone(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts++
	if s.putErr != nil {
		return s.putErr
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	s.objects[key] = b
	s.types[key] = contentType
	return nil
}

func (s *fakeStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.objects, key)
	return nil
}

func (s *fakeStore) PublicURL(_ context.Context, key string) (string, error) {
	if s.urlErr != nil {
		return "", s.urlErr
	}
	return "http://cdn/study/" + key, nil
}

func (s *fakeStore) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[key]
	return ok
}

// --- school resolver ---

type fakeResolver struct {
	school string
	err    error
	calls  int
}

func (r *fakeResolver) ResolveSchool(context.Context, string) (string, error) {
	r.calls++
	if r.err != nil {
		return "", r.err
	}
	return r.school, nil
}

var errOffline = errors.New("offline")
