package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"slices"
	"strings"

	"github.com/dmitrijs2005/studyshare/internal/client/client"
	"github.com/dmitrijs2005/studyshare/internal/client/config"
	"github.com/dmitrijs2005/studyshare/internal/client/listing"
	"github.com/dmitrijs2005/studyshare/internal/client/repositories/session"
	"github.com/dmitrijs2005/studyshare/internal/client/services"
	"github.com/dmitrijs2005/studyshare/internal/common"
	"github.com/dmitrijs2005/studyshare/internal/logging"
)

type App struct {
	config         *config.Config
	db             *sql.DB
	logger         logging.Logger
	authService    services.AuthService
	catalogService services.CatalogService
	browser        *listing.Browser
	httpClient     *http.Client
	email          string
	reader         *bufio.Reader
	out            io.Writer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := logging.New(logging.BackendSlog, logging.FormatText, c.LogLevel, os.Stderr)
	if err != nil {
		return nil, err
	}

	db, err := client.InitDatabase(ctx, c.SessionDB)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	apiClient, err := client.NewStudyShareClient(c.ServerEndpointAddr, c.MaxUploadSize)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	as := services.NewAuthService(apiClient, session.NewSQLiteRepository(db))
	cs := services.NewCatalogService(apiClient, c.MaxUploadSize)

	return &App{
		config:         c,
		db:             db,
		logger:         logger.With("module", "cli"),
		authService:    as,
		catalogService: cs,
		browser:        listing.NewBrowser(cs, c.RequestTimeout),
		httpClient:     &http.Client{},
		reader:         bufio.NewReader(os.Stdin),
		out:            os.Stdout,
	}, nil
}

// Run resumes the stored session, if any, and serves the REPL until the
// user exits or stdin is closed.
func (a *App) Run(ctx context.Context) error {
	defer a.close(ctx)

	fmt.Fprintln(a.out, "StudyShare CLI (type 'help' for commands)")
	a.resume(ctx)

	runREPL(ctx, a, a.status, a.reader)
	return nil
}

func (a *App) close(ctx context.Context) {
	if err := a.authService.Close(ctx); err != nil {
		a.logger.Warn(ctx, "closing connection", "error", err)
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn(ctx, "closing session db", "error", err)
		}
	}
}

func (a *App) resume(ctx context.Context) {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	email, err := a.authService.Resume(ctx)
	switch {
	case err == nil:
		a.email = email
		fmt.Fprintf(a.out, "Welcome back, %s\n", email)
	case errors.Is(err, client.ErrNoSession):
	default:
		a.logger.Warn(ctx, "session not resumed", "error", err)
		fmt.Fprintln(a.out, "Could not restore your session, please log in.")
	}
}

func (a *App) isLoggedIn() bool {
	return a.email != ""
}

func (a *App) status() string {
	var parts []string
	if a.email != "" {
		parts = append(parts, a.email)
	}
	if c := a.browser.Snapshot().Category; c != "" {
		parts = append(parts, "["+c.Label()+"]")
	}
	if len(parts) == 0 {
		return ""
	}
	return "(" + strings.Join(parts, " ") + ")"
}

func (a *App) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.config == nil || a.config.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.config.RequestTimeout)
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

// report prints err in user terms and returns it. An unauthorized answer
// means the session is gone, so the user is treated as logged out.
func (a *App) report(ctx context.Context, what string, err error) error {
	a.logger.Debug(ctx, what+" failed", "error", err)

	if errors.Is(err, client.ErrUnauthorized) {
		a.email = ""
	}
	a.println(userMessage(what, err))
	return err
}

// userMessage describes every known cause in err, so a timed-out upload
// step is reported along with the timeout.
func userMessage(what string, err error) string {
	var texts []string
	for _, m := range messages {
		if errors.Is(err, m.err) && !slices.Contains(texts, m.text) {
			texts = append(texts, m.text)
		}
	}
	if len(texts) == 0 {
		return fmt.Sprintf("%s: %v", what, err)
	}
	return fmt.Sprintf("%s: %s", what, strings.Join(texts, "; "))
}

var messages = []struct {
	err  error
	text string
}{
	{client.ErrUnauthorized, "session expired, please log in again"},
	{client.ErrUnavailable, "server unavailable, try again later"},
	{context.DeadlineExceeded, "request timed out"},
	{common.ErrTimeout, "request timed out"},
	{common.ErrEmailNotConfirmed, "please confirm your email first"},
	{common.ErrEmailTaken, "this email is already registered"},
	{common.ErrPathConflict, "a file with this name already exists for this class"},
	{common.ErrObjectWrite, "the file could not be stored"},
	{common.ErrURLResolution, "the file was stored but its link could not be created"},
	{common.ErrMetadataInsert, "the file could not be saved"},
	{common.ErrOrphanedObject, "a stored copy could not be removed and will be cleaned up later"},
}

