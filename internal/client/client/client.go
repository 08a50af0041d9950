package client

import (
	"context"
	"io"

	"github.com/dmitrijs2005/portalcli/internal/client/models"
)

// Client is the transport contract of the Portal API.
type Client interface {
	// SetToken replaces the bearer token attached to authenticated calls.
	// An empty token detaches it.
	SetToken(token string)
	Close() error

	Login(ctx context.Context, cnpj, password string) (string, error)
	Me(ctx context.Context) (*models.CurrentUser, error)
	RequestCode(ctx context.Context, flow models.Flow, req models.CodeRequest) error
	ConfirmCode(ctx context.Context, flow models.Flow, draft models.RecoveryDraft) error

	ListSpreadsheets(ctx context.Context) ([]models.Spreadsheet, error)
	SpreadsheetData(ctx context.Context, id int64, q models.PageQuery) (*models.TablePage, error)
	DownloadSpreadsheet(ctx context.Context, id int64, format models.ExportFormat) (io.ReadCloser, error)

	ListAccessLevels(ctx context.Context) ([]models.AccessLevel, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	ListAdminSpreadsheets(ctx context.Context) ([]models.Spreadsheet, error)
	CreateUser(ctx context.Context, draft models.UserDraft) error
	UpdateUserAccess(ctx context.Context, userID int64, ids models.IDSet) error
	DeleteUser(ctx context.Context, userID int64) error
	UploadSpreadsheet(ctx context.Context, draft models.UploadDraft) error
	DeleteSpreadsheet(ctx context.Context, id int64) error
}
