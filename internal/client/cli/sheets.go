package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/portalcli/internal/client/models"
	"github.com/dmitrijs2005/portalcli/internal/client/services"
)

var errUsage = errors.New("usage")

// Sheets lists the spreadsheets visible to the current user.
func (a *App) Sheets(ctx context.Context) error {
	if err := a.browser.ListSpreadsheets(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, renderSheets(a.browser.Spreadsheets()))
	return nil
}

// parseFilter splits "[-c column] search words..." into a column and a
// search text.
func parseFilter(args []string) (column, search string, err error) {
	var words []string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-c", "--col":
			if i+1 >= len(args) {
				return "", "", fmt.Errorf("%w: %s requires a column name", errUsage, args[i])
			}
			column = args[i+1]
			i++
		default:
			words = append(words, args[i])
		}
	}
	return column, strings.Join(words, " "), nil
}

// Open selects a sheet and shows its first page:
//
//	open <id> [-c column] [search...]
func (a *App) Open(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Uso: open <id> [-c coluna] [busca]")
		return errUsage
	}
	id, err := parseID(args[0])
	if err != nil {
		fmt.Fprintln(a.out, err)
		return err
	}
	column, search, err := parseFilter(args[1:])
	if err != nil {
		fmt.Fprintln(a.out, err)
		return err
	}

	q := models.PageQuery{Limit: models.DefaultPageLimit, Search: search, Column: column}
	return a.loadAndShow(ctx, id, q, true)
}

// Search refilters the selected sheet from the first row. Without words
// the filter is cleared.
//
//	search [-c column] [search...]
func (a *App) Search(ctx context.Context, args []string) error {
	st := a.browser.State()
	if !st.Selected {
		fmt.Fprintln(a.out, "Abra uma planilha primeiro (open <id>).")
		return errUsage
	}
	column, search, err := parseFilter(args)
	if err != nil {
		fmt.Fprintln(a.out, err)
		return err
	}

	q := st.Query
	q.Search, q.Column = search, column
	return a.loadAndShow(ctx, st.SelectedID, q, true)
}

// Next shows the following page of the selected sheet.
func (a *App) Next(ctx context.Context) error {
	if !a.browser.State().Selected {
		fmt.Fprintln(a.out, "Abra uma planilha primeiro (open <id>).")
		return nil
	}
	if err := a.browser.NextPage(ctx); err != nil {
		return err
	}
	a.showPage()
	return nil
}

func (a *App) loadAndShow(ctx context.Context, id int64, q models.PageQuery, reset bool) error {
	if err := a.browser.LoadPage(ctx, id, q, reset); err != nil {
		if errors.Is(err, services.ErrStalePage) {
			return nil
		}
		return err
	}
	a.showPage()
	return nil
}

func (a *App) showPage() {
	st := a.browser.State()
	fmt.Fprintln(a.out, renderPage(st.Table, st.Query))
}

// Download saves a sheet in the configured download directory:
//
//	download [id] [csv|excel]
//
// The id defaults to the selected sheet and the format to csv.
func (a *App) Download(ctx context.Context, args []string) error {
	var (
		id     int64
		format = models.FormatCSV
		err    error
	)

	for _, arg := range args {
		if f, ferr := models.ParseExportFormat(arg); ferr == nil {
			format = f
			continue
		}
		if id, err = parseID(arg); err != nil {
			fmt.Fprintln(a.out, "Uso: download [id] [csv|excel]")
			return err
		}
	}

	if id == 0 {
		st := a.browser.State()
		if !st.Selected {
			fmt.Fprintln(a.out, "Uso: download [id] [csv|excel]")
			return errUsage
		}
		id = st.SelectedID
	}

	_, err = a.browser.Download(ctx, id, format, a.config.DownloadDir)
	return err
}
