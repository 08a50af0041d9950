package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/portalcli/internal/client/client"
	"github.com/dmitrijs2005/portalcli/internal/client/models"
	"github.com/dmitrijs2005/portalcli/internal/filex"
	"github.com/dmitrijs2005/portalcli/internal/logging"
	"golang.org/x/sync/errgroup"
)

// AdminData is the cached admin data set. It is always replaced as a whole.
type AdminData struct {
	AccessLevels []models.AccessLevel
	Users        []models.User
	Spreadsheets []models.Spreadsheet
}

// EditState is the "update permissions" form.
type EditState struct {
	UserID         int64
	AccessLevelIDs models.IDSet
}

// AdminService manages users, their access levels and uploaded
// spreadsheets. Authorization is enforced by the server; callers only hide
// the console from non-admins.
//
// Every successful mutation reloads the full data set instead of patching
// the cache.
type AdminService interface {
	LoadAdminData(ctx context.Context) error
	Data() AdminData

	NewUserDraft() models.UserDraft
	EditNewUser(fn func(d *models.UserDraft))
	ToggleNewUserAccess(id int64, on bool)
	CreateUser(ctx context.Context) error

	SelectUserForEdit(userID int64)
	ToggleEditAccess(id int64, on bool)
	EditState() EditState
	UpdateUserAccess(ctx context.Context) error

	DeleteUser(ctx context.Context, userID int64, confirm Confirmer) error

	UploadDraft() models.UploadDraft
	EditUpload(fn func(d *models.UploadDraft))
	ToggleUploadAccess(id int64, on bool)
	SetUploadFile(path string) error
	UploadSpreadsheet(ctx context.Context) error

	DeleteSpreadsheet(ctx context.Context, id int64, confirm Confirmer) error
}

type adminService struct {
	client client.Client
	msgs   *MessageBox
	log    logging.Logger

	mu      sync.Mutex
	data    AdminData
	newUser models.UserDraft
	edit    EditState
	upload  models.UploadDraft
}

func NewAdminService(c client.Client, msgs *MessageBox, log logging.Logger) AdminService {
	return &adminService{client: c, msgs: msgs, log: log}
}

// DeriveEditSelection returns the access levels the edit form must show for
// selectedID: exactly the user's current ids, or nothing when no user is
// selected or the user is not in users.
func DeriveEditSelection(selectedID int64, users []models.User) (models.IDSet, bool) {
	if selectedID == 0 {
		return nil, false
	}
	for _, u := range users {
		if u.ID == selectedID {
			return u.AccessLevelIDs(), true
		}
	}
	return nil, false
}

// rederiveLocked recomputes the edit selection from the current user list.
// Callers hold a.mu.
func (a *adminService) rederiveLocked() {
	ids, ok := DeriveEditSelection(a.edit.UserID, a.data.Users)
	if !ok {
		a.edit = EditState{}
		return
	}
	a.edit.AccessLevelIDs = ids
}

// LoadAdminData fetches access levels, users and spreadsheets concurrently.
// The cache changes only if all three requests succeed.
func (a *adminService) LoadAdminData(ctx context.Context) error {
	var next AdminData

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		next.AccessLevels, err = a.client.ListAccessLevels(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		next.Users, err = a.client.ListUsers(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		next.Spreadsheets, err = a.client.ListAdminSpreadsheets(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		a.log.Warn(ctx, "admin data load failed", "error", err)
		a.msgs.Fail(MsgAdminLoadError)
		return fmt.Errorf("load admin data: %w", err)
	}

	a.mu.Lock()
	a.data = next
	a.rederiveLocked()
	a.mu.Unlock()
	return nil
}

func (a *adminService) Data() AdminData {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.data
}

// reloadAfter reports ok with okMsg once the data set is refreshed. A failed
// reload replaces the message with the load error.
func (a *adminService) reloadAfter(ctx context.Context, okMsg string) error {
	if err := a.LoadAdminData(ctx); err != nil {
		return err
	}
	a.msgs.OK(okMsg)
	return nil
}

func (a *adminService) NewUserDraft() models.UserDraft {
	a.mu.Lock()
	defer a.mu.Unlock()
	d := a.newUser
	d.AccessLevelIDs = d.AccessLevelIDs.Clone()
	return d
}

func (a *adminService) EditNewUser(fn func(d *models.UserDraft)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	fn(&a.newUser)
}

func (a *adminService) ToggleNewUserAccess(id int64, on bool) {
	a.EditNewUser(func(d *models.UserDraft) { d.AccessLevelIDs.Toggle(id, on) })
}

// CreateUser submits the new-user draft. The draft is kept on failure so it
// can be resubmitted.
func (a *adminService) CreateUser(ctx context.Context) error {
	draft := a.NewUserDraft()

	if err := a.client.CreateUser(ctx, draft); err != nil {
		a.log.Info(ctx, "create user failed", "cnpj", draft.CNPJ, "error", err)
		a.msgs.Fail(MsgUserCreateError)
		return fmt.Errorf("create user: %w", err)
	}

	a.mu.Lock()
	a.newUser = models.UserDraft{}
	a.mu.Unlock()

	return a.reloadAfter(ctx, MsgUserCreated)
}

// SelectUserForEdit picks the user whose permissions are edited; 0 clears
// the selection. The checkbox state is re-derived immediately.
func (a *adminService) SelectUserForEdit(userID int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.edit.UserID = userID
	a.rederiveLocked()
}

func (a *adminService) ToggleEditAccess(id int64, on bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.edit.UserID == 0 {
		return
	}
	a.edit.AccessLevelIDs.Toggle(id, on)
}

func (a *adminService) EditState() EditState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return EditState{UserID: a.edit.UserID, AccessLevelIDs: a.edit.AccessLevelIDs.Clone()}
}

// UpdateUserAccess replaces the selected user's access levels with the edit
// selection. Without a selected user nothing is sent.
func (a *adminService) UpdateUserAccess(ctx context.Context) error {
	edit := a.EditState()
	if edit.UserID == 0 {
		a.msgs.Fail(MsgSelectUser)
		return ErrNoUserSelected
	}

	if err := a.client.UpdateUserAccess(ctx, edit.UserID, edit.AccessLevelIDs); err != nil {
		a.log.Info(ctx, "update access failed", "user", edit.UserID, "error", err)
		a.msgs.Fail(MsgAccessError)
		return fmt.Errorf("update user access: %w", err)
	}
	return a.reloadAfter(ctx, MsgAccessUpdated)
}

// DeleteUser removes a user after confirm approves it. A declined
// confirmation sends nothing and returns nil.
func (a *adminService) DeleteUser(ctx context.Context, userID int64, confirm Confirmer) error {
	if confirm == nil || !confirm(PromptDeleteUser) {
		return nil
	}
	if err := a.client.DeleteUser(ctx, userID); err != nil {
		a.log.Info(ctx, "delete user failed", "user", userID, "error", err)
		a.msgs.Fail(MsgUserDeleteError)
		return fmt.Errorf("delete user: %w", err)
	}
	return a.reloadAfter(ctx, MsgUserDeleted)
}

func (a *adminService) UploadDraft() models.UploadDraft {
	a.mu.Lock()
	defer a.mu.Unlock()
	d := a.upload
	d.AccessLevelIDs = d.AccessLevelIDs.Clone()
	return d
}

func (a *adminService) EditUpload(fn func(d *models.UploadDraft)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	fn(&a.upload)
}

func (a *adminService) ToggleUploadAccess(id int64, on bool) {
	a.EditUpload(func(d *models.UploadDraft) { d.AccessLevelIDs.Toggle(id, on) })
}

// SetUploadFile reads path from disk into the upload draft.
func (a *adminService) SetUploadFile(path string) error {
	name, content, err := filex.ReadUpload(path)
	if err != nil {
		return fmt.Errorf("attach %s: %w", path, err)
	}
	a.EditUpload(func(d *models.UploadDraft) {
		d.FileName, d.Content = name, content
	})
	return nil
}

// UploadSpreadsheet sends the upload draft. Without an attached file it
// fails locally with MsgSelectFile and issues no request.
func (a *adminService) UploadSpreadsheet(ctx context.Context) error {
	draft := a.UploadDraft()
	if !draft.HasFile() {
		a.msgs.Fail(MsgSelectFile)
		return ErrNoFileSelected
	}

	if err := a.client.UploadSpreadsheet(ctx, draft); err != nil {
		a.log.Info(ctx, "upload failed", "title", draft.Title, "error", err)
		a.msgs.Fail(MsgSheetUploadError)
		return fmt.Errorf("upload spreadsheet: %w", err)
	}

	a.mu.Lock()
	a.upload = models.UploadDraft{}
	a.mu.Unlock()

	return a.reloadAfter(ctx, MsgSheetUploaded)
}

// DeleteSpreadsheet removes a sheet after confirm approves it.
func (a *adminService) DeleteSpreadsheet(ctx context.Context, id int64, confirm Confirmer) error {
	if confirm == nil || !confirm(PromptDeleteSheet) {
		return nil
	}
	if err := a.client.DeleteSpreadsheet(ctx, id); err != nil {
		a.log.Info(ctx, "delete spreadsheet failed", "sheet", id, "error", err)
		a.msgs.Fail(MsgSheetDeleteError)
		return fmt.Errorf("delete spreadsheet: %w", err)
	}
	return a.reloadAfter(ctx, MsgSheetDeleted)
}
