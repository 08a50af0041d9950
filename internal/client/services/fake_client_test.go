package services

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/dmitrijs2005/portalcli/internal/client/client"
	"github.com/dmitrijs2005/portalcli/internal/client/models"
	"github.com/dmitrijs2005/portalcli/internal/logging"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	_ "modernc.org/sqlite"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("database/sql.(*DB).connectionOpener"),
	)
}

// ---- helpers ----

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE metadata (
  key   TEXT PRIMARY KEY,
  value BLOB NOT NULL
);
`)
	require.NoError(t, err)
	return db
}

func getMeta(t *testing.T, db *sql.DB, k string) (string, bool) {
	t.Helper()
	var v []byte
	err := db.QueryRow(`SELECT value FROM metadata WHERE key=?`, k).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false
	}
	require.NoError(t, err)
	return string(v), true
}

func insertMeta(t *testing.T, db *sql.DB, k, v string) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO metadata(key,value) VALUES(?,?)`, k, []byte(v))
	require.NoError(t, err)
}

var errBoom = errors.New("boom")

// ---- fake client ----

// fakeClient implements client.Client for service tests. Every method
// records its call and returns the configured result.
type fakeClient struct {
	mu    sync.Mutex
	calls []string
	token string

	LoginToken string
	LoginErr   error
	MeRet      *models.CurrentUser
	MeErr      error

	RequestCodeErr error
	ConfirmErr     error
	LastCodeReq    models.CodeRequest
	LastConfirm    models.RecoveryDraft

	SheetsRet []models.Spreadsheet
	SheetsErr error

	// DataFn, when set, serves SpreadsheetData.
	DataFn    func(ctx context.Context, id int64, q models.PageQuery) (*models.TablePage, error)
	DataCalls []models.PageQuery

	DownloadBody string
	DownloadErr  error

	LevelsRet      []models.AccessLevel
	LevelsErr      error
	UsersRet       []models.User
	UsersErr       error
	AdminSheetsRet []models.Spreadsheet
	AdminSheetsErr error

	CreateErr   error
	LastCreated models.UserDraft

	UpdateErr     error
	LastUpdateID  int64
	LastUpdateIDs models.IDSet

	DeleteUserErr  error
	DeleteSheetErr error

	UploadErr  error
	LastUpload models.UploadDraft
}

var _ client.Client = (*fakeClient)(nil)

func (f *fakeClient) record(name string) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
}

func (f *fakeClient) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeClient) Called(name string) int {
	n := 0
	for _, c := range f.Calls() {
		if c == name {
			n++
		}
	}
	return n
}

func (f *fakeClient) Token() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

func (f *fakeClient) SetToken(token string) {
	f.mu.Lock()
	f.token = token
	f.mu.Unlock()
}

func (f *fakeClient) Close() error { return nil }

func (f *fakeClient) Login(ctx context.Context, cnpj, password string) (string, error) {
	f.record("Login")
	if f.LoginErr != nil {
		return "", f.LoginErr
	}
	return f.LoginToken, nil
}

func (f *fakeClient) Me(ctx context.Context) (*models.CurrentUser, error) {
	f.record("Me")
	if f.MeErr != nil {
		return nil, f.MeErr
	}
	u := *f.MeRet
	return &u, nil
}

func (f *fakeClient) RequestCode(ctx context.Context, flow models.Flow, req models.CodeRequest) error {
	f.record("RequestCode:" + string(flow))
	f.LastCodeReq = req
	return f.RequestCodeErr
}

func (f *fakeClient) ConfirmCode(ctx context.Context, flow models.Flow, draft models.RecoveryDraft) error {
	f.record("ConfirmCode:" + string(flow))
	f.LastConfirm = draft
	return f.ConfirmErr
}

func (f *fakeClient) ListSpreadsheets(ctx context.Context) ([]models.Spreadsheet, error) {
	f.record("ListSpreadsheets")
	return f.SheetsRet, f.SheetsErr
}

func (f *fakeClient) SpreadsheetData(ctx context.Context, id int64, q models.PageQuery) (*models.TablePage, error) {
	f.record("SpreadsheetData")
	f.mu.Lock()
	f.DataCalls = append(f.DataCalls, q)
	fn := f.DataFn
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx, id, q)
	}
	return &models.TablePage{Columns: []string{"a"}}, nil
}

func (f *fakeClient) DownloadSpreadsheet(ctx context.Context, id int64, format models.ExportFormat) (io.ReadCloser, error) {
	f.record("DownloadSpreadsheet")
	if f.DownloadErr != nil {
		return nil, f.DownloadErr
	}
	return io.NopCloser(strings.NewReader(f.DownloadBody)), nil
}

func (f *fakeClient) ListAccessLevels(ctx context.Context) ([]models.AccessLevel, error) {
	f.record("ListAccessLevels")
	return f.LevelsRet, f.LevelsErr
}

func (f *fakeClient) ListUsers(ctx context.Context) ([]models.User, error) {
	f.record("ListUsers")
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.UsersRet, f.UsersErr
}

func (f *fakeClient) ListAdminSpreadsheets(ctx context.Context) ([]models.Spreadsheet, error) {
	f.record("ListAdminSpreadsheets")
	return f.AdminSheetsRet, f.AdminSheetsErr
}

func (f *fakeClient) CreateUser(ctx context.Context, draft models.UserDraft) error {
	f.record("CreateUser")
	f.LastCreated = draft
	return f.CreateErr
}

func (f *fakeClient) UpdateUserAccess(ctx context.Context, userID int64, ids models.IDSet) error {
	f.record("UpdateUserAccess")
	f.LastUpdateID, f.LastUpdateIDs = userID, ids
	return f.UpdateErr
}

func (f *fakeClient) DeleteUser(ctx context.Context, userID int64) error {
	f.record("DeleteUser")
	return f.DeleteUserErr
}

func (f *fakeClient) UploadSpreadsheet(ctx context.Context, draft models.UploadDraft) error {
	f.record("UploadSpreadsheet")
	f.LastUpload = draft
	return f.UploadErr
}

func (f *fakeClient) DeleteSpreadsheet(ctx context.Context, id int64) error {
	f.record("DeleteSpreadsheet")
	return f.DeleteSheetErr
}

func nopLog() logging.Logger { return logging.NewNop() }

func always(answer bool) Confirmer {
	return func(string) bool { return answer }
}
