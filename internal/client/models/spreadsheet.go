package models

import "fmt"

// DefaultPageLimit is the number of rows requested per data page.
const DefaultPageLimit = 100

// AccessLevel is a named permission tag controlling spreadsheet visibility.
type AccessLevel struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Spreadsheet is the summary of an uploaded sheet. Non-admin listings do not
// carry access levels.
type Spreadsheet struct {
	ID           int64         `json:"id"`
	Title        string        `json:"title"`
	AccessLevels []AccessLevel `json:"access_levels,omitempty"`
}

// TablePage is one page of spreadsheet rows. Rows keep the JSON values
// returned by the server (strings, numbers, booleans or nil).
type TablePage struct {
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}

// Cell renders a row value for display. Missing and null values render empty.
func (p TablePage) Cell(row int, column string) string {
	if row < 0 || row >= len(p.Rows) {
		return ""
	}
	v, ok := p.Rows[row][column]
	if !ok || v == nil {
		return ""
	}
	switch x := v.(type) {
	case string:
		return x
	case float64:
		if x == float64(int64(x)) {
			return fmt.Sprintf("%d", int64(x))
		}
		return fmt.Sprintf("%g", x)
	default:
		return fmt.Sprint(x)
	}
}

// PageQuery selects a window of rows and an optional filter. Search and
// Column are omitted from the request when empty.
type PageQuery struct {
	Limit  int
	Offset int
	Search string
	Column string
}

// ExportFormat is a download format accepted by the server.
type ExportFormat string

const (
	FormatCSV   ExportFormat = "csv"
	FormatExcel ExportFormat = "excel"
)

// ParseExportFormat validates a user-supplied format name.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch ExportFormat(s) {
	case FormatCSV, FormatExcel:
		return ExportFormat(s), nil
	}
	return "", fmt.Errorf("unknown format %q (want csv or excel)", s)
}

// FileName is the fixed local file name used when saving a download.
func (f ExportFormat) FileName() string {
	if f == FormatCSV {
		return "planilha.csv"
	}
	return "planilha.xlsx"
}

// UploadDraft is the pending state of the "send spreadsheet" form.
type UploadDraft struct {
	Title          string
	FileName       string
	Content        []byte
	AccessLevelIDs IDSet
}

// HasFile reports whether a file has been attached to the draft.
func (d UploadDraft) HasFile() bool {
	return d.FileName != ""
}
