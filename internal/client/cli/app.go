package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/portalcli/internal/client/client"
	"github.com/dmitrijs2005/portalcli/internal/client/config"
	"github.com/dmitrijs2005/portalcli/internal/client/services"
	"github.com/dmitrijs2005/portalcli/internal/logging"

	_ "modernc.org/sqlite"
)

type App struct {
	config   *config.Config
	db       *sql.DB
	api      client.Client
	msgs     *services.MessageBox
	session  services.SessionService
	browser  services.BrowserService
	admin    services.AdminService
	recovery services.RecoveryService
	log      logging.Logger
	reader   *bufio.Reader
	out      io.Writer
}

// NewApp opens the local database, builds the API client and wires the
// services. The caller must Close the App.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		log.Error(ctx, "error initializing database", "path", c.DatabasePath, "error", err)
		return nil, err
	}

	api, err := client.NewPortalClient(c.APIBaseURL,
		client.WithTimeout(c.RequestTimeout),
		client.WithRateLimit(c.RequestsPerSecond, c.RequestBurst),
		client.WithLogger(log),
	)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return newApp(c, db, api, log, os.Stdin, os.Stdout), nil
}

func newApp(c *config.Config, db *sql.DB, api client.Client, log logging.Logger, in io.Reader, out io.Writer) *App {
	msgs := services.NewMessageBox()
	recovery := services.NewRecoveryService(api, msgs, log)

	return &App{
		config:   c,
		db:       db,
		api:      api,
		msgs:     msgs,
		session:  services.NewSessionService(api, db, msgs, recovery, log),
		browser:  services.NewBrowserService(api, msgs, log),
		admin:    services.NewAdminService(api, msgs, log),
		recovery: recovery,
		log:      log,
		reader:   bufio.NewReader(in),
		out:      out,
	}
}

func (a *App) Close() error {
	apiErr := a.api.Close()
	if err := a.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return apiErr
}

// Restore resumes a persisted session, printing the outcome message if the
// stored token was rejected.
func (a *App) Restore(ctx context.Context) {
	if err := a.session.Restore(ctx); err != nil {
		a.log.Info(ctx, "session not restored", "error", err)
	}
	a.flushMessage()
}

// Run restores the session and runs the interactive shell until the user
// exits or input ends.
func (a *App) Run(ctx context.Context) {
	fmt.Fprintln(a.out, "Portal Clientes (digite 'help' para ver os comandos)")
	a.Restore(ctx)
	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) isLoggedIn() bool {
	return a.session.Session().IsAuthenticated()
}

func (a *App) isAdmin() bool {
	return a.session.Session().IsAdmin()
}

func (a *App) getStatus() string {
	s := a.session.Session()
	switch {
	case !s.IsAuthenticated():
		return "(desconectado)"
	case s.CurrentUser == nil:
		return "(conectado)"
	case s.IsAdmin():
		return fmt.Sprintf("(%s admin)", s.CurrentUser.Name)
	default:
		return fmt.Sprintf("(%s)", s.CurrentUser.Name)
	}
}

// flushMessage prints and clears the message slot.
func (a *App) flushMessage() {
	m := a.msgs.Take()
	if m.Empty() {
		return
	}
	fmt.Fprintln(a.out, renderMessage(m))
}

// inputErr reports a failed prompt read and returns err unchanged.
func (a *App) inputErr(err error) error {
	fmt.Fprintln(a.out, "Erro de entrada:", err)
	return err
}
