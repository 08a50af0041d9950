package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/portalcli/internal/client/models"
	"github.com/dmitrijs2005/portalcli/internal/client/services"
)

// Admin reloads and prints access levels, users and spreadsheets.
func (a *App) Admin(ctx context.Context) error {
	if err := a.admin.LoadAdminData(ctx); err != nil {
		return err
	}
	d := a.admin.Data()

	fmt.Fprintln(a.out, "Níveis de acesso")
	fmt.Fprintln(a.out, renderLevelChoices(d.AccessLevels, nil))
	fmt.Fprintln(a.out, "Usuários")
	fmt.Fprintln(a.out, renderUsers(d.Users))
	fmt.Fprintln(a.out, "Planilhas")
	fmt.Fprintln(a.out, renderSheets(d.Spreadsheets))
	return nil
}

// ensureAdminData loads the admin data set once so prompts can list the
// available access levels.
func (a *App) ensureAdminData(ctx context.Context) error {
	if a.admin.Data().AccessLevels != nil {
		return nil
	}
	return a.admin.LoadAdminData(ctx)
}

// promptLevels shows the access levels checked against current and reads
// the wanted set. An empty answer keeps current.
func (a *App) promptLevels(current models.IDSet) (models.IDSet, error) {
	fmt.Fprintln(a.out, renderLevelChoices(a.admin.Data().AccessLevels, current))
	for {
		answer, err := getSimpleText(a.reader, "Níveis de acesso (ids separados por vírgula, vazio mantém, '-' limpa)", a.out)
		if err != nil {
			return nil, a.inputErr(err)
		}
		switch answer {
		case "":
			return current, nil
		case "-":
			return nil, nil
		}
		ids, err := ParseIDs(answer)
		if err == nil {
			return ids, nil
		}
		fmt.Fprintln(a.out, err)
	}
}

// applyToggles flips checkboxes through toggle until they match want.
func applyToggles(current, want models.IDSet, toggle func(id int64, on bool)) {
	for _, id := range current {
		if !want.Has(id) {
			toggle(id, false)
		}
	}
	for _, id := range want {
		toggle(id, true)
	}
}

// CreateUser fills the new-user draft interactively and submits it. A
// draft left over from a failed attempt is offered as defaults.
func (a *App) CreateUser(ctx context.Context) error {
	if err := a.ensureAdminData(ctx); err != nil {
		return err
	}
	d := a.admin.NewUserDraft()

	fields := []struct {
		prompt string
		dst    *string
	}{
		{"CNPJ", &d.CNPJ},
		{"Nome", &d.Name},
		{"E-mail", &d.Email},
		{"UF", &d.UF},
	}
	for _, f := range fields {
		v, err := GetTextDefault(a.reader, f.prompt, *f.dst, a.out)
		if err != nil {
			return a.inputErr(err)
		}
		*f.dst = v
	}

	pw, err := getPassword("Senha inicial", a.out)
	if err != nil {
		return a.inputErr(err)
	}
	if pw != "" {
		d.Password = pw
	}
	isAdmin := getConfirm(a.reader, "Administrador?", a.out)

	want, err := a.promptLevels(d.AccessLevelIDs)
	if err != nil {
		return err
	}

	a.admin.EditNewUser(func(nd *models.UserDraft) {
		nd.CNPJ, nd.Name, nd.Email, nd.UF = d.CNPJ, d.Name, d.Email, d.UF
		nd.Password, nd.IsAdmin = d.Password, isAdmin
	})
	applyToggles(d.AccessLevelIDs, want, a.admin.ToggleNewUserAccess)

	return a.admin.CreateUser(ctx)
}

// EditAccess replaces the access levels of one user:
//
//	editaccess <user id>
func (a *App) EditAccess(ctx context.Context, args []string) error {
	if len(args) != 1 {
		fmt.Fprintln(a.out, "Uso: editaccess <id do usuário>")
		return errUsage
	}
	id, err := parseID(args[0])
	if err != nil {
		fmt.Fprintln(a.out, err)
		return err
	}
	if err := a.ensureAdminData(ctx); err != nil {
		return err
	}

	a.admin.SelectUserForEdit(id)
	edit := a.admin.EditState()
	if edit.UserID == 0 {
		return a.admin.UpdateUserAccess(ctx)
	}

	want, err := a.promptLevels(edit.AccessLevelIDs)
	if err != nil {
		return err
	}
	applyToggles(edit.AccessLevelIDs, want, a.admin.ToggleEditAccess)

	return a.admin.UpdateUserAccess(ctx)
}

func (a *App) confirmer() services.Confirmer {
	return func(prompt string) bool {
		return getConfirm(a.reader, prompt, a.out)
	}
}

// DeleteUser removes a user after confirmation:
//
//	deleteuser <user id>
func (a *App) DeleteUser(ctx context.Context, args []string) error {
	if len(args) != 1 {
		fmt.Fprintln(a.out, "Uso: deleteuser <id do usuário>")
		return errUsage
	}
	id, err := parseID(args[0])
	if err != nil {
		fmt.Fprintln(a.out, err)
		return err
	}
	return a.admin.DeleteUser(ctx, id, a.confirmer())
}

// DeleteSheet removes a spreadsheet after confirmation:
//
//	deletesheet <id>
func (a *App) DeleteSheet(ctx context.Context, args []string) error {
	if len(args) != 1 {
		fmt.Fprintln(a.out, "Uso: deletesheet <id>")
		return errUsage
	}
	id, err := parseID(args[0])
	if err != nil {
		fmt.Fprintln(a.out, err)
		return err
	}
	return a.admin.DeleteSpreadsheet(ctx, id, a.confirmer())
}

// Upload sends a spreadsheet file:
//
//	upload [path]
//
// Without a path the file attached by a previous attempt is reused; if
// there is none the upload is refused without contacting the server.
func (a *App) Upload(ctx context.Context, args []string) error {
	if len(args) > 0 {
		path := strings.Join(args, " ")
		if err := a.admin.SetUploadFile(path); err != nil {
			fmt.Fprintln(a.out, "Não foi possível ler o arquivo:", err)
			return err
		}
	}

	d := a.admin.UploadDraft()
	if !d.HasFile() {
		return a.admin.UploadSpreadsheet(ctx)
	}
	if err := a.ensureAdminData(ctx); err != nil {
		return err
	}

	defTitle := d.Title
	if defTitle == "" {
		defTitle = strings.TrimSuffix(d.FileName, filepath.Ext(d.FileName))
	}
	title, err := GetTextDefault(a.reader, "Título", defTitle, a.out)
	if err != nil {
		return a.inputErr(err)
	}
	want, err := a.promptLevels(d.AccessLevelIDs)
	if err != nil {
		return err
	}

	a.admin.EditUpload(func(u *models.UploadDraft) { u.Title = title })
	applyToggles(d.AccessLevelIDs, want, a.admin.ToggleUploadAccess)

	return a.admin.UploadSpreadsheet(ctx)
}
