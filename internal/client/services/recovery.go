package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/portalcli/internal/client/client"
	"github.com/dmitrijs2005/portalcli/internal/client/models"
	"github.com/dmitrijs2005/portalcli/internal/logging"
)

// RecoveryService drives the first-access and password-reset flows. At most
// one flow is open at a time; opening one closes the other.
type RecoveryService interface {
	Open(flow models.Flow, cnpj string)
	Close()
	// Active returns the open flow (FlowNone if none) and its draft.
	Active() (models.Flow, models.RecoveryDraft)
	RequestCode(ctx context.Context, flow models.Flow, cnpj, email string) error
	Confirm(ctx context.Context, flow models.Flow, draft models.RecoveryDraft) error
}

type recoveryService struct {
	client client.Client
	msgs   *MessageBox
	log    logging.Logger

	mu     sync.Mutex
	active models.Flow
	drafts map[models.Flow]models.RecoveryDraft
}

func NewRecoveryService(c client.Client, msgs *MessageBox, log logging.Logger) RecoveryService {
	return &recoveryService{
		client: c,
		msgs:   msgs,
		log:    log,
		drafts: make(map[models.Flow]models.RecoveryDraft, 2),
	}
}

func validFlow(flow models.Flow) error {
	switch flow {
	case models.FlowFirstAccess, models.FlowPasswordReset:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownFlow, flow)
}

// Open shows flow and hides the other one. A non-empty cnpj pre-fills the
// flow's draft.
func (r *recoveryService) Open(flow models.Flow, cnpj string) {
	if validFlow(flow) != nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = flow
	if cnpj != "" {
		d := r.drafts[flow]
		d.CNPJ = cnpj
		r.drafts[flow] = d
	}
}

func (r *recoveryService) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = models.FlowNone
}

func (r *recoveryService) Active() (models.Flow, models.RecoveryDraft) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active, r.drafts[r.active]
}

// RequestCode asks the server to e-mail a code. The outcome message never
// tells whether the account exists.
func (r *recoveryService) RequestCode(ctx context.Context, flow models.Flow, cnpj, email string) error {
	if err := validFlow(flow); err != nil {
		return err
	}

	r.mu.Lock()
	d := r.drafts[flow]
	d.CNPJ, d.Email = cnpj, email
	r.drafts[flow] = d
	r.mu.Unlock()

	if err := r.client.RequestCode(ctx, flow, models.CodeRequest{CNPJ: cnpj, Email: email}); err != nil {
		r.log.Info(ctx, "code request failed", "flow", flow, "error", err)
		r.msgs.Fail(MsgCodeRequestError)
		return fmt.Errorf("request %s code: %w", flow, err)
	}
	r.msgs.OK(MsgCodeRequested)
	return nil
}

// Confirm submits the code with the new password. On success the flow is
// collapsed and its draft discarded; on failure the flow stays open.
func (r *recoveryService) Confirm(ctx context.Context, flow models.Flow, draft models.RecoveryDraft) error {
	if err := validFlow(flow); err != nil {
		return err
	}

	r.mu.Lock()
	r.drafts[flow] = draft
	r.mu.Unlock()

	if err := r.client.ConfirmCode(ctx, flow, draft); err != nil {
		r.log.Info(ctx, "code confirmation failed", "flow", flow, "error", err)
		r.msgs.Fail(MsgConfirmError)
		return fmt.Errorf("confirm %s: %w", flow, err)
	}

	r.mu.Lock()
	delete(r.drafts, flow)
	if r.active == flow {
		r.active = models.FlowNone
	}
	r.mu.Unlock()

	r.msgs.OK(MsgPasswordSet)
	return nil
}
