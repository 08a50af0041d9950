// Package services contains application services for the Portal CLI: the
// session manager, the spreadsheet browser, the admin console and the
// account recovery flows. All of them report outcomes through one shared
// MessageBox.
package services

import (
	"errors"
	"sync"

	"github.com/dmitrijs2005/portalcli/internal/client/models"
)

// User-facing outcome texts.
const (
	MsgLoginInvalid        = "Login inválido."
	MsgSessionExpired      = "Sessão expirada. Faça login novamente."
	MsgSessionStoreError   = "Erro ao salvar a sessão."
	MsgFirstAccessRequired = "Primeiro acesso: solicite o código de acesso pelo e-mail cadastrado."

	MsgListSheetsError = "Erro ao carregar planilhas."
	MsgLoadPageError   = "Erro ao carregar dados da planilha."
	MsgDownloadError   = "Erro ao baixar planilha."
	MsgDownloadOK      = "Download concluído."

	MsgAdminLoadError   = "Erro ao carregar dados de administração."
	MsgUserCreated      = "Usuário criado."
	MsgUserCreateError  = "Erro ao criar usuário."
	MsgAccessUpdated    = "Permissões atualizadas."
	MsgAccessError      = "Erro ao atualizar permissões."
	MsgSelectUser       = "Selecione um usuário."
	MsgUserDeleted      = "Usuário excluído."
	MsgUserDeleteError  = "Erro ao excluir usuário."
	MsgSelectFile       = "Selecione uma planilha."
	MsgSheetUploaded    = "Planilha enviada."
	MsgSheetUploadError = "Erro ao enviar planilha."
	MsgSheetDeleted     = "Planilha excluída."
	MsgSheetDeleteError = "Erro ao excluir planilha."

	MsgCodeRequested    = "Se os dados estiverem corretos, enviaremos um código por e-mail."
	MsgCodeRequestError = "Erro ao solicitar código."
	MsgPasswordSet      = "Senha definida. Faça login."
	MsgConfirmError     = "Não foi possível confirmar o código. Verifique os dados e tente novamente."

	PromptDeleteUser  = "Excluir este usuário?"
	PromptDeleteSheet = "Excluir esta planilha?"
)

var (
	ErrNotLoggedIn    = errors.New("not logged in")
	ErrSessionExpired = errors.New("session expired")
	ErrNoFileSelected = errors.New("no file selected")
	ErrNoUserSelected = errors.New("no user selected")
	ErrStalePage      = errors.New("stale page response discarded")
	ErrUnknownFlow    = errors.New("unknown recovery flow")
)

// MessageBox is the single outcome slot. Each operation replaces the
// previous message.
type MessageBox struct {
	mu  sync.Mutex
	msg models.Message
}

func NewMessageBox() *MessageBox {
	return &MessageBox{}
}

func (b *MessageBox) set(text string, tone models.Tone) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.msg = models.Message{Text: text, Tone: tone}
}

// OK records a successful outcome.
func (b *MessageBox) OK(text string) { b.set(text, models.ToneOK) }

// Fail records a failed outcome.
func (b *MessageBox) Fail(text string) { b.set(text, models.ToneError) }

func (b *MessageBox) Clear() { b.set("", "") }

// Current returns the message on display.
func (b *MessageBox) Current() models.Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.msg
}

// Take returns the current message and clears the slot.
func (b *MessageBox) Take() models.Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	m := b.msg
	b.msg = models.Message{}
	return m
}

// Confirmer asks the user to approve a destructive action.
type Confirmer func(prompt string) bool
