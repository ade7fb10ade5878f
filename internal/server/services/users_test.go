package services

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/studyshare/internal/common"
	"github.com/dmitrijs2005/studyshare/internal/cryptox"
	"github.com/dmitrijs2005/studyshare/internal/logging"
	"github.com/dmitrijs2005/studyshare/internal/server/config"
	"github.com/dmitrijs2005/studyshare/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cheapHash = cryptox.Params{Memory: 64, Time: 1, Threads: 1, SaltLen: 8, KeyLen: 16}

type recordingMailer struct {
	email, link string
	err         error
}

func (m *recordingMailer) SendConfirmation(_ context.Context, email, link string) error {
	m.email, m.link = email, link
	return m.err
}

func newUserService(t *testing.T, db *sql.DB, rm *fakeRepoManager, requireConfirmation bool) (*UserService, *recordingMailer) {
	t.Helper()
	cfg := &config.Config{
		SecretKey:                    "k",
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: 2 * time.Hour,
		RequireEmailConfirmation:     requireConfirmation,
		ConfirmationBaseURL:          "http://localhost:8080/",
		DefaultSchool:                "Unassigned",
	}
	m := &recordingMailer{}
	s := NewUserService(db, rm, &fakeResolver{school: "StateU"}, m, cfg, logging.Nop{})
	s.hashParams = cheapHash
	return s, m
}

func TestSignUp_WithConfirmation(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	rm := &fakeRepoManager{u: &fakeUsersRepo{}, p: newFakeProfiles(nil)}
	s, mailer := newUserService(t, db, rm, true)

	u, err := s.SignUp(context.Background(), SignUpRequest{
		Email:          "  Alice@StateU.edu ",
		Password:       "correct horse",
		School:         " StateU ",
		RedirectTarget: "https://app.example/welcome",
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, "u-new", u.ID)
	assert.Equal(t, "alice@stateu.edu", rm.u.created.Email)
	assert.True(t, strings.HasPrefix(rm.u.created.PasswordHash, "$argon2id$"))
	assert.NotEmpty(t, rm.u.created.ConfirmationToken)
	assert.Nil(t, rm.u.created.ConfirmedAt)
	assert.Equal(t, "StateU", rm.p.rows["u-new"])

	assert.Equal(t, "alice@stateu.edu", mailer.email)
	assert.Equal(t, "http://localhost:8080/auth/confirm?token="+rm.u.created.ConfirmationToken, mailer.link)
}

func TestSignUp_WithoutConfirmationUsesDefaultSchool(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	rm := &fakeRepoManager{u: &fakeUsersRepo{}, p: newFakeProfiles(nil)}
	s, mailer := newUserService(t, db, rm, false)

	_, err := s.SignUp(context.Background(), SignUpRequest{Email: "bob@x.org", Password: "12345678"})
	require.NoError(t, err)

	assert.NotNil(t, rm.u.created.ConfirmedAt)
	assert.Empty(t, rm.u.created.ConfirmationToken)
	assert.Equal(t, "Unassigned", rm.p.rows["u-new"])
	assert.Empty(t, mailer.link)
}

func TestSignUp_MailerFailureDoesNotFail(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	rm := &fakeRepoManager{u: &fakeUsersRepo{}, p: newFakeProfiles(nil)}
	s, mailer := newUserService(t, db, rm, true)
	mailer.err = errOffline

	_, err := s.SignUp(context.Background(), SignUpRequest{Email: "bob@x.org", Password: "12345678"})
	require.NoError(t, err)
}

func TestSignUp_Validation(t *testing.T) {
	db, _ := newSQLMockDB(t)
	rm := &fakeRepoManager{u: &fakeUsersRepo{}, p: newFakeProfiles(nil)}
	s, _ := newUserService(t, db, rm, true)

	tests := []SignUpRequest{
		{Email: "not-an-email", Password: "12345678"},
		{Email: "Bob <bob@x.org>", Password: "12345678"},
		{Email: "bob@x.org", Password: "short"},
		{Email: "bob@x.org", Password: "12345678", School: "a/b"},
		{Email: "bob@x.org", Password: "12345678", School: ".."},
		{Email: "bob@x.org", Password: "12345678", School: " . "},
		{Email: "bob@x.org", Password: "12345678", School: `State\U`},
	}
	for _, req := range tests {
		_, err := s.SignUp(context.Background(), req)
		require.ErrorIs(t, err, common.ErrValidation, "%+v", req)
	}
	assert.Nil(t, rm.u.created)
}

func TestSignUp_EmailTaken(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	rm := &fakeRepoManager{u: &fakeUsersRepo{createErr: common.ErrEmailTaken}, p: newFakeProfiles(nil)}
	s, mailer := newUserService(t, db, rm, true)

	_, err := s.SignUp(context.Background(), SignUpRequest{Email: "bob@x.org", Password: "12345678"})
	require.ErrorIs(t, err, common.ErrEmailTaken)
	assert.Empty(t, mailer.link)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSignUp_ProfileWriteRollsBack(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	p := newFakeProfiles(nil)
	p.upsertErr = errBoom{}
	rm := &fakeRepoManager{u: &fakeUsersRepo{}, p: p}
	s, _ := newUserService(t, db, rm, true)

	_, err := s.SignUp(context.Background(), SignUpRequest{Email: "bob@x.org", Password: "12345678"})
	if err == nil || !regexp.MustCompile(`error creating user: .*boom`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirm(t *testing.T) {
	db, _ := newSQLMockDB(t)

	rm := &fakeRepoManager{u: &fakeUsersRepo{confirmOut: &models.User{ID: "u1", RedirectTarget: "https://app/after"}}}
	s, _ := newUserService(t, db, rm, true)
	target, err := s.Confirm(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "https://app/after", target)

	_, err = s.Confirm(context.Background(), " ")
	require.ErrorIs(t, err, common.ErrInvalidToken)

	rm.u.confirmErr = common.ErrorNotFound
	_, err = s.Confirm(context.Background(), "used")
	require.ErrorIs(t, err, common.ErrInvalidToken)

	rm.u.confirmErr = errBoom{}
	_, err = s.Confirm(context.Background(), "tok")
	require.ErrorContains(t, err, "boom")
}

func TestSignIn_Flows(t *testing.T) {
	db, _ := newSQLMockDB(t)
	hash := cryptox.HashPassword([]byte("right-password"), cheapHash)
	confirmed := time.Now()

	// not found → unauthorized
	rmNF := &fakeRepoManager{u: &fakeUsersRepo{getErr: common.ErrorNotFound}, rt: &fakeRefreshRepo{}}
	sNF, _ := newUserService(t, db, rmNF, true)
	if _, err := sNF.SignIn(context.Background(), "ghost@x.org", "x"); !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("notfound → unauthorized, got %v", err)
	}

	// internal error
	rmIE := &fakeRepoManager{u: &fakeUsersRepo{getErr: errBoom{}}, rt: &fakeRefreshRepo{}}
	sIE, _ := newUserService(t, db, rmIE, true)
	if _, err := sIE.SignIn(context.Background(), "u@x.org", "x"); !errors.Is(err, common.ErrorInternal) {
		t.Fatalf("internal → ErrorInternal, got %v", err)
	}

	// wrong password → unauthorized
	rmWP := &fakeRepoManager{u: &fakeUsersRepo{getOut: &models.User{ID: "u1", PasswordHash: hash, ConfirmedAt: &confirmed}}, rt: &fakeRefreshRepo{}}
	sWP, _ := newUserService(t, db, rmWP, true)
	if _, err := sWP.SignIn(context.Background(), "u@x.org", "wrong"); !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("wrong password → unauthorized, got %v", err)
	}

	// corrupt hash → internal
	rmBH := &fakeRepoManager{u: &fakeUsersRepo{getOut: &models.User{ID: "u1", PasswordHash: "plain"}}, rt: &fakeRefreshRepo{}}
	sBH, _ := newUserService(t, db, rmBH, true)
	if _, err := sBH.SignIn(context.Background(), "u@x.org", "x"); !errors.Is(err, common.ErrorInternal) {
		t.Fatalf("bad hash → ErrorInternal, got %v", err)
	}

	// unconfirmed
	rmUC := &fakeRepoManager{u: &fakeUsersRepo{getOut: &models.User{ID: "u1", PasswordHash: hash}}, rt: &fakeRefreshRepo{}}
	sUC, _ := newUserService(t, db, rmUC, true)
	if _, err := sUC.SignIn(context.Background(), "u@x.org", "right-password"); !errors.Is(err, common.ErrEmailNotConfirmed) {
		t.Fatalf("unconfirmed → ErrEmailNotConfirmed, got %v", err)
	}

	// unconfirmed is fine when confirmation is off
	sOff, _ := newUserService(t, db, rmUC, false)
	if _, err := sOff.SignIn(context.Background(), "u@x.org", "right-password"); err != nil {
		t.Fatalf("confirmation off: %v", err)
	}

	rmOK := &fakeRepoManager{u: &fakeUsersRepo{getOut: &models.User{ID: "u1", PasswordHash: hash, ConfirmedAt: &confirmed}}, rt: &fakeRefreshRepo{}}
	sOK, _ := newUserService(t, db, rmOK, true)
	pair, err := sOK.SignIn(context.Background(), "U@X.org", "right-password")
	if err != nil || pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("SignIn success: pair=%+v err=%v", pair, err)
	}

	// refresh token store failure
	rmRT := &fakeRepoManager{u: rmOK.u, rt: &fakeRefreshRepo{createErr: errBoom{}}}
	sRT, _ := newUserService(t, db, rmRT, true)
	if _, err := sRT.SignIn(context.Background(), "u@x.org", "right-password"); !errors.Is(err, common.ErrorInternal) {
		t.Fatalf("refresh create → ErrorInternal, got %v", err)
	}
}

func liveToken(token, userID string, ttl time.Duration) *models.RefreshToken {
	return &models.RefreshToken{Token: token, UserID: userID, ExpiresAt: time.Now().Add(ttl)}
}

func TestRefreshToken_Success(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	rt := newFakeRefresh(liveToken("refresh-xyz", "u1", 10*time.Minute))
	s, _ := newUserService(t, db, &fakeRepoManager{rt: rt}, true)

	pair, err := s.RefreshToken(context.Background(), "refresh-xyz")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, []string{pair.RefreshToken}, rt.created)
	assert.NotContains(t, rt.tokens, "refresh-xyz")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshToken_SecondExchangeRefused(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectRollback()

	rt := newFakeRefresh(liveToken("refresh-xyz", "u1", 10*time.Minute))
	s, _ := newUserService(t, db, &fakeRepoManager{rt: rt}, true)

	_, err := s.RefreshToken(context.Background(), "refresh-xyz")
	require.NoError(t, err)

	_, err = s.RefreshToken(context.Background(), "refresh-xyz")
	require.ErrorIs(t, err, common.ErrInvalidToken)
	assert.Len(t, rt.created, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshToken_Failures(t *testing.T) {
	tests := []struct {
		name    string
		rt      *fakeRefreshRepo
		wantErr error
		wantMsg string
	}{
		{name: "expired", rt: newFakeRefresh(liveToken("r", "u1", -time.Minute)), wantErr: common.ErrRefreshTokenExpired},
		{name: "unknown", rt: newFakeRefresh(), wantErr: common.ErrInvalidToken},
		{name: "consume error", rt: &fakeRefreshRepo{consumeErr: errBoom{}}, wantMsg: "error consuming refresh token: boom"},
		{name: "create error", rt: &fakeRefreshRepo{
			tokens:    map[string]*models.RefreshToken{"r": liveToken("r", "u1", time.Minute)},
			createErr: errBoom{},
		}, wantErr: common.ErrorInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newSQLMockDB(t)
			mock.ExpectBegin()
			mock.ExpectRollback()

			s, _ := newUserService(t, db, &fakeRepoManager{rt: tt.rt}, true)

			pair, err := s.RefreshToken(context.Background(), "r")
			assert.Nil(t, pair)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.ErrorContains(t, err, tt.wantMsg)
			}
			assert.Empty(t, tt.rt.created)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSignOut(t *testing.T) {
	db, _ := newSQLMockDB(t)

	t.Run("revokes own token", func(t *testing.T) {
		rt := newFakeRefresh(liveToken("tok", "u1", time.Minute))
		s, _ := newUserService(t, db, &fakeRepoManager{rt: rt}, true)
		require.NoError(t, s.SignOut(context.Background(), "u1", "tok"))
		assert.Equal(t, []string{"tok"}, rt.revoked)
	})

	t.Run("unknown token is fine", func(t *testing.T) {
		rt := newFakeRefresh()
		s, _ := newUserService(t, db, &fakeRepoManager{rt: rt}, true)
		require.NoError(t, s.SignOut(context.Background(), "u1", "tok"))
		assert.Empty(t, rt.revoked)
	})

	t.Run("foreign token refused and kept", func(t *testing.T) {
		rt := newFakeRefresh(liveToken("tok", "u2", time.Minute))
		s, _ := newUserService(t, db, &fakeRepoManager{rt: rt}, true)
		require.ErrorIs(t, s.SignOut(context.Background(), "u1", "tok"), common.ErrorUnauthorized)
		assert.Empty(t, rt.revoked)
		assert.Contains(t, rt.tokens, "tok")
	})

	t.Run("revoke error", func(t *testing.T) {
		rt := &fakeRefreshRepo{revokeErr: errBoom{}}
		s, _ := newUserService(t, db, &fakeRepoManager{rt: rt}, true)
		require.ErrorContains(t, s.SignOut(context.Background(), "u1", "tok"), "boom")
	})

	t.Run("lookup error after miss", func(t *testing.T) {
		rt := &fakeRefreshRepo{findErr: errBoom{}}
		s, _ := newUserService(t, db, &fakeRepoManager{rt: rt}, true)
		require.ErrorContains(t, s.SignOut(context.Background(), "u1", "tok"), "error searching refresh token")
	})
}

func TestIdentity(t *testing.T) {
	db, _ := newSQLMockDB(t)

	rm := &fakeRepoManager{u: &fakeUsersRepo{getOut: &models.User{ID: "u1", Email: "alice@stateu.edu"}}}
	s, _ := newUserService(t, db, rm, true)

	id, err := s.Identity(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, &Identity{UserID: "u1", Email: "alice@stateu.edu", School: "StateU"}, id)

	s.schools = &fakeResolver{err: errors.Join(common.ErrProfileResolution, errBoom{})}
	_, err = s.Identity(context.Background(), "u1")
	require.ErrorIs(t, err, common.ErrProfileResolution)

	rm.u.getErr = common.ErrorNotFound
	_, err = s.Identity(context.Background(), "gone")
	require.ErrorIs(t, err, common.ErrorUnauthorized)
}
