package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dmitrijs2005/portalcli/internal/client/models"
)

var (
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	dimStyle    = lipgloss.NewStyle().Faint(true)
)

// renderMessage formats the message slot for the terminal.
func renderMessage(m models.Message) string {
	if m.Tone == models.ToneError {
		return errStyle.Render("[erro] " + m.Text)
	}
	return okStyle.Render("[ok] " + m.Text)
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

// renderPage draws one page of spreadsheet rows followed by a position line.
func renderPage(st models.TablePage, q models.PageQuery) string {
	if len(st.Columns) == 0 {
		return dimStyle.Render("Nenhuma coluna.")
	}

	t := newTable(st.Columns...)
	for i := range st.Rows {
		row := make([]string, len(st.Columns))
		for j, col := range st.Columns {
			row[j] = st.Cell(i, col)
		}
		t.Row(row...)
	}

	var b strings.Builder
	b.WriteString(t.String())
	b.WriteByte('\n')

	if len(st.Rows) == 0 {
		b.WriteString(dimStyle.Render(fmt.Sprintf("Nenhuma linha a partir de %d.", q.Offset+1)))
	} else {
		pos := fmt.Sprintf("Linhas %d a %d", q.Offset+1, q.Offset+len(st.Rows))
		if q.Search != "" {
			pos += fmt.Sprintf(", busca %q", q.Search)
			if q.Column != "" {
				pos += " na coluna " + q.Column
			}
		}
		if len(st.Rows) == q.Limit {
			pos += ". Use 'next' para continuar."
		}
		b.WriteString(dimStyle.Render(pos))
	}
	return b.String()
}

func levelNames(levels []models.AccessLevel) string {
	names := make([]string, len(levels))
	for i, l := range levels {
		names[i] = l.Name
	}
	return strings.Join(names, ", ")
}

// renderSheets lists spreadsheets with their access levels when known.
func renderSheets(sheets []models.Spreadsheet) string {
	if len(sheets) == 0 {
		return dimStyle.Render("Nenhuma planilha disponível.")
	}
	t := newTable("ID", "Título", "Níveis de acesso")
	for _, s := range sheets {
		t.Row(fmt.Sprint(s.ID), s.Title, levelNames(s.AccessLevels))
	}
	return t.String()
}

func renderUsers(users []models.User) string {
	if len(users) == 0 {
		return dimStyle.Render("Nenhum usuário.")
	}
	t := newTable("ID", "CNPJ", "Nome", "E-mail", "UF", "Admin", "Níveis de acesso")
	for _, u := range users {
		admin := ""
		if u.IsAdmin {
			admin = "sim"
		}
		t.Row(fmt.Sprint(u.ID), u.CNPJ, u.Name, u.Email, u.UF, admin, levelNames(u.AccessLevels))
	}
	return t.String()
}

// renderLevelChoices lists access levels as checkboxes against selected.
func renderLevelChoices(levels []models.AccessLevel, selected models.IDSet) string {
	var b strings.Builder
	for _, l := range levels {
		mark := " "
		if selected.Has(l.ID) {
			mark = "x"
		}
		fmt.Fprintf(&b, "  [%s] %d %s\n", mark, l.ID, l.Name)
	}
	return strings.TrimSuffix(b.String(), "\n")
}
