package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/portalcli/internal/client/client"
	"github.com/dmitrijs2005/portalcli/internal/client/models"
	"github.com/dmitrijs2005/portalcli/internal/filex"
	"github.com/dmitrijs2005/portalcli/internal/logging"
)

// BrowserState is a snapshot of the spreadsheet browser.
type BrowserState struct {
	Selected   bool
	SelectedID int64
	Query      models.PageQuery
	Table      models.TablePage
}

// BrowserService lists spreadsheets, pages through their rows and
// downloads them.
type BrowserService interface {
	ListSpreadsheets(ctx context.Context) error
	Spreadsheets() []models.Spreadsheet
	LoadPage(ctx context.Context, sheetID int64, q models.PageQuery, reset bool) error
	NextPage(ctx context.Context) error
	State() BrowserState
	Download(ctx context.Context, sheetID int64, format models.ExportFormat, dir string) (string, error)
}

type browserService struct {
	client client.Client
	msgs   *MessageBox
	log    logging.Logger

	mu     sync.Mutex
	sheets []models.Spreadsheet
	state  BrowserState
	// gen is bumped for every page request; only the response carrying the
	// latest value may update state.
	gen uint64
}

func NewBrowserService(c client.Client, msgs *MessageBox, log logging.Logger) BrowserService {
	return &browserService{client: c, msgs: msgs, log: log}
}

func (b *browserService) ListSpreadsheets(ctx context.Context) error {
	sheets, err := b.client.ListSpreadsheets(ctx)
	if err != nil {
		b.msgs.Fail(MsgListSheetsError)
		return fmt.Errorf("list spreadsheets: %w", err)
	}

	b.mu.Lock()
	b.sheets = sheets
	b.mu.Unlock()
	return nil
}

func (b *browserService) Spreadsheets() []models.Spreadsheet {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.Spreadsheet, len(b.sheets))
	copy(out, b.sheets)
	return out
}

func (b *browserService) State() BrowserState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// LoadPage fetches one page of sheetID. reset, or picking a sheet other than
// the selected one, forces the offset back to zero. A zero limit means
// models.DefaultPageLimit.
//
// If a newer page request was issued while this one was in flight, the
// response is dropped and ErrStalePage is returned.
func (b *browserService) LoadPage(ctx context.Context, sheetID int64, q models.PageQuery, reset bool) error {
	if q.Limit <= 0 {
		q.Limit = models.DefaultPageLimit
	}

	b.mu.Lock()
	if reset || !b.state.Selected || b.state.SelectedID != sheetID {
		q.Offset = 0
	}
	b.gen++
	gen := b.gen
	b.mu.Unlock()

	page, err := b.client.SpreadsheetData(ctx, sheetID, q)

	b.mu.Lock()
	defer b.mu.Unlock()
	if gen != b.gen {
		b.log.Debug(ctx, "dropping stale page", "sheet", sheetID, "offset", q.Offset)
		return ErrStalePage
	}
	if err != nil {
		b.msgs.Fail(MsgLoadPageError)
		return fmt.Errorf("load page: %w", err)
	}

	b.state = BrowserState{Selected: true, SelectedID: sheetID, Query: q, Table: *page}
	return nil
}

// NextPage advances by one page keeping the current filters. It does
// nothing while no sheet is selected.
func (b *browserService) NextPage(ctx context.Context) error {
	b.mu.Lock()
	if !b.state.Selected {
		b.mu.Unlock()
		return nil
	}
	id, q := b.state.SelectedID, b.state.Query
	b.mu.Unlock()

	q.Offset += q.Limit
	return b.LoadPage(ctx, id, q, false)
}

// Download saves the sheet in format under dir with the format's fixed
// file name and returns the written path.
func (b *browserService) Download(ctx context.Context, sheetID int64, format models.ExportFormat, dir string) (string, error) {
	body, err := b.client.DownloadSpreadsheet(ctx, sheetID, format)
	if err != nil {
		b.msgs.Fail(MsgDownloadError)
		return "", fmt.Errorf("download: %w", err)
	}
	defer body.Close()

	path, err := filex.SaveAs(dir, format.FileName(), body)
	if err != nil {
		b.msgs.Fail(MsgDownloadError)
		return "", fmt.Errorf("save download: %w", err)
	}

	b.log.Info(ctx, "spreadsheet downloaded", "sheet", sheetID, "format", format, "path", path)
	b.msgs.OK(MsgDownloadOK + " " + path)
	return path, nil
}
