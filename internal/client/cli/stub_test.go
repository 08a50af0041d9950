package cli

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/dmitrijs2005/portalcli/internal/client/client"
	"github.com/dmitrijs2005/portalcli/internal/client/config"
	"github.com/dmitrijs2005/portalcli/internal/client/models"
	"github.com/dmitrijs2005/portalcli/internal/logging"
	"github.com/stretchr/testify/require"
)

// stubClient is a scripted client.Client that records which calls were made.
type stubClient struct {
	mu    sync.Mutex
	calls []string
	token string

	loginToken string
	loginErr   error
	me         *models.CurrentUser
	meErr      error

	sheets    []models.Spreadsheet
	page      models.TablePage
	pageCalls []models.PageQuery
	download  string

	levels      []models.AccessLevel
	users       []models.User
	adminSheets []models.Spreadsheet

	created     models.UserDraft
	updatedUser int64
	updatedIDs  models.IDSet
	uploaded    models.UploadDraft

	codeFlow     models.Flow
	codeReq      models.CodeRequest
	confirmFlow  models.Flow
	confirmDraft models.RecoveryDraft
}

var _ client.Client = (*stubClient)(nil)

func (s *stubClient) record(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, name)
}

func (s *stubClient) called(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (s *stubClient) SetToken(token string) { s.token = token }
func (s *stubClient) Close() error          { return nil }

func (s *stubClient) Login(context.Context, string, string) (string, error) {
	s.record("Login")
	return s.loginToken, s.loginErr
}

func (s *stubClient) Me(context.Context) (*models.CurrentUser, error) {
	s.record("Me")
	if s.meErr != nil {
		return nil, s.meErr
	}
	u := *s.me
	return &u, nil
}

func (s *stubClient) RequestCode(_ context.Context, flow models.Flow, req models.CodeRequest) error {
	s.record("RequestCode")
	s.codeFlow, s.codeReq = flow, req
	return nil
}

func (s *stubClient) ConfirmCode(_ context.Context, flow models.Flow, d models.RecoveryDraft) error {
	s.record("ConfirmCode")
	s.confirmFlow, s.confirmDraft = flow, d
	return nil
}

func (s *stubClient) ListSpreadsheets(context.Context) ([]models.Spreadsheet, error) {
	s.record("ListSpreadsheets")
	return s.sheets, nil
}

func (s *stubClient) SpreadsheetData(_ context.Context, _ int64, q models.PageQuery) (*models.TablePage, error) {
	s.record("SpreadsheetData")
	s.mu.Lock()
	s.pageCalls = append(s.pageCalls, q)
	s.mu.Unlock()
	p := s.page
	return &p, nil
}

func (s *stubClient) DownloadSpreadsheet(context.Context, int64, models.ExportFormat) (io.ReadCloser, error) {
	s.record("DownloadSpreadsheet")
	return io.NopCloser(strings.NewReader(s.download)), nil
}

func (s *stubClient) ListAccessLevels(context.Context) ([]models.AccessLevel, error) {
	s.record("ListAccessLevels")
	return s.levels, nil
}

func (s *stubClient) ListUsers(context.Context) ([]models.User, error) {
	s.record("ListUsers")
	return s.users, nil
}

func (s *stubClient) ListAdminSpreadsheets(context.Context) ([]models.Spreadsheet, error) {
	s.record("ListAdminSpreadsheets")
	return s.adminSheets, nil
}

func (s *stubClient) CreateUser(_ context.Context, d models.UserDraft) error {
	s.record("CreateUser")
	s.created = d
	return nil
}

func (s *stubClient) UpdateUserAccess(_ context.Context, id int64, ids models.IDSet) error {
	s.record("UpdateUserAccess")
	s.updatedUser, s.updatedIDs = id, ids
	return nil
}

func (s *stubClient) DeleteUser(context.Context, int64) error {
	s.record("DeleteUser")
	return nil
}

func (s *stubClient) UploadSpreadsheet(_ context.Context, d models.UploadDraft) error {
	s.record("UploadSpreadsheet")
	s.uploaded = d
	return nil
}

func (s *stubClient) DeleteSpreadsheet(context.Context, int64) error {
	s.record("DeleteSpreadsheet")
	return nil
}

// newTestApp builds an App over stub with a migrated SQLite file in a temp
// dir. input feeds every prompt.
func newTestApp(t *testing.T, stub *stubClient, input string) (*App, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.DatabasePath = filepath.Join(dir, "portal.db")
	cfg.DownloadDir = filepath.Join(dir, "downloads")

	db, err := client.InitDatabase(context.Background(), cfg.DatabasePath)
	require.NoError(t, err)

	var out bytes.Buffer
	a := newApp(cfg, db, stub, logging.NewNop(), strings.NewReader(input), &out)
	t.Cleanup(func() { _ = a.Close() })
	return a, &out
}

// stubPassword makes getPassword return pw without touching the terminal.
func stubPassword(t *testing.T, pw string) {
	t.Helper()
	orig := getPassword
	getPassword = func(string, io.Writer) (string, error) { return pw, nil }
	t.Cleanup(func() { getPassword = orig })
}

// loginAs opens a session for user through the regular login command.
func loginAs(t *testing.T, a *App, stub *stubClient, user models.CurrentUser) {
	t.Helper()
	stub.loginToken = "tok"
	stub.me = &user
	require.NoError(t, a.session.Login(context.Background(), user.CNPJ, "pw"))
	a.msgs.Clear()
}
