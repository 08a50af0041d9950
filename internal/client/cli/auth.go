package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/portalcli/internal/client/client"
	"github.com/dmitrijs2005/portalcli/internal/client/models"
)

// getSimpleText, getPassword and getConfirm are indirections used to
// facilitate testing. They point to interactive input helpers and can be
// swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	getConfirm    = Confirm
)

// Login prompts for cnpj and password and opens a session. The cnpj prompt
// is pre-filled with the last successful login.
//
// When the server answers that the account still needs its first access,
// the first-access flow is started right away with the cnpj just typed.
func (a *App) Login(ctx context.Context) error {
	cnpj, err := GetTextDefault(a.reader, "CNPJ", a.session.LastCNPJ(ctx), a.out)
	if err != nil {
		return a.inputErr(err)
	}
	password, err := getPassword("Senha", a.out)
	if err != nil {
		return a.inputErr(err)
	}

	err = a.session.Login(ctx, cnpj, password)
	if errors.Is(err, client.ErrFirstAccessRequired) {
		a.flushMessage()
		return a.runRecovery(ctx, models.FlowFirstAccess)
	}
	if err != nil {
		return err
	}

	if u := a.session.Session().CurrentUser; u != nil {
		fmt.Fprintf(a.out, "Bem-vindo, %s.\n", u.Name)
	}
	return nil
}

// Logout drops the session locally.
func (a *App) Logout(ctx context.Context) error {
	if err := a.session.Logout(ctx); err != nil {
		fmt.Fprintln(a.out, "Erro ao remover a sessão salva:", err)
		return err
	}
	fmt.Fprintln(a.out, "Sessão encerrada.")
	return nil
}

// WhoAmI prints the profile of the logged in user.
func (a *App) WhoAmI(ctx context.Context) error {
	u := a.session.Session().CurrentUser
	if u == nil {
		fmt.Fprintln(a.out, "Perfil não carregado.")
		return nil
	}
	fmt.Fprintf(a.out, "%s\nCNPJ: %s\n", u.Name, u.CNPJ)
	if u.Email != "" {
		fmt.Fprintf(a.out, "E-mail: %s\n", u.Email)
	}
	if u.IsAdmin {
		fmt.Fprintln(a.out, "Administrador")
	}
	if len(u.AccessLevels) > 0 {
		fmt.Fprintf(a.out, "Níveis de acesso: %s\n", strings.Join(u.AccessLevels, ", "))
	}
	return nil
}

// FirstAccess starts the first-access flow.
func (a *App) FirstAccess(ctx context.Context) error {
	a.recovery.Open(models.FlowFirstAccess, "")
	return a.runRecovery(ctx, models.FlowFirstAccess)
}

// ResetPassword starts the password-reset flow.
func (a *App) ResetPassword(ctx context.Context) error {
	a.recovery.Open(models.FlowPasswordReset, "")
	return a.runRecovery(ctx, models.FlowPasswordReset)
}

// runRecovery walks the user through both steps of flow: request a code,
// then confirm it together with the new password. Fields already in the
// flow's draft are offered as defaults.
func (a *App) runRecovery(ctx context.Context, flow models.Flow) error {
	title := "Primeiro acesso"
	if flow == models.FlowPasswordReset {
		title = "Redefinição de senha"
	}
	fmt.Fprintln(a.out, title)

	_, draft := a.recovery.Active()

	cnpj, err := GetTextDefault(a.reader, "CNPJ", draft.CNPJ, a.out)
	if err != nil {
		return a.inputErr(err)
	}
	email, err := GetTextDefault(a.reader, "E-mail cadastrado", draft.Email, a.out)
	if err != nil {
		return a.inputErr(err)
	}

	if err := a.recovery.RequestCode(ctx, flow, cnpj, email); err != nil {
		return err
	}
	a.flushMessage()

	code, err := getSimpleText(a.reader, "Código recebido", a.out)
	if err != nil {
		return a.inputErr(err)
	}
	password, err := getPassword("Nova senha", a.out)
	if err != nil {
		return a.inputErr(err)
	}

	return a.recovery.Confirm(ctx, flow, models.RecoveryDraft{
		CNPJ:        cnpj,
		Email:       email,
		Code:        code,
		NewPassword: password,
	})
}
