package services

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/crmconsole/internal/client/client"
	"github.com/dmitrijs2005/crmconsole/internal/client/models"
)

const (
	opAdminDashboard Operation = "admin-dashboard"
	opAdminCreate    Operation = "admin-create-user"
	opAdminUpdate    Operation = "admin-update-user"
	opAdminDelete    Operation = "admin-delete-user"
	opAdminToggle    Operation = "admin-toggle-user"
)

// AdminService backs the superuser console. The dashboard is cached until
// it goes stale, a mutation succeeds or Invalidate is called.
type AdminService interface {
	Dashboard(ctx context.Context) (*models.AdminDashboard, error)
	CreateUser(ctx context.Context, u models.NewAccount) (*models.AccountUser, error)
	UpdateUser(ctx context.Context, id int64, u models.AccountUpdate) (*models.AccountUser, error)
	DeleteUser(ctx context.Context, id int64) error
	ToggleUserActive(ctx context.Context, id int64) error
	Invalidate()
}

type adminService struct {
	api   client.AdminAPI
	cache *queryCache[*models.AdminDashboard]
}

func NewAdminService(api client.AdminAPI, opts ...QueryOption) AdminService {
	o := buildQueryOptions(opts)
	return &adminService{api: api, cache: newQueryCache[*models.AdminDashboard](o.staleTime)}
}

func (s *adminService) Dashboard(ctx context.Context) (*models.AdminDashboard, error) {
	d, gen, ok := s.cache.get("dashboard")
	if ok {
		return d, nil
	}
	d, err := s.api.AdminDashboard(ctx)
	if err != nil {
		return nil, newOpError(opAdminDashboard, ErrRequestFailed, err)
	}
	s.cache.put("dashboard", gen, d)
	return d, nil
}

func (s *adminService) CreateUser(ctx context.Context, u models.NewAccount) (*models.AccountUser, error) {
	u.Name, u.Surname = strings.TrimSpace(u.Name), strings.TrimSpace(u.Surname)
	u.Email, u.Role = strings.TrimSpace(u.Email), strings.TrimSpace(u.Role)
	if err := requireFields(msgAccountRequired, u.Name, u.Email, u.Role); err != nil {
		return nil, err
	}
	if u.Password != "" && len(u.Password) < MinPasswordLength {
		return nil, &OpError{Op: opAdminCreate, Kind: ErrValidationFailed, Message: msgPasswordTooShort}
	}

	out, err := s.api.CreateUser(ctx, u)
	if err != nil {
		return nil, newOpError(opAdminCreate, ErrRequestFailed, err)
	}
	s.cache.invalidate()
	return out, nil
}

func (s *adminService) UpdateUser(ctx context.Context, id int64, u models.AccountUpdate) (*models.AccountUser, error) {
	u.Name, u.Surname, u.Email = strings.TrimSpace(u.Name), strings.TrimSpace(u.Surname), strings.TrimSpace(u.Email)
	if err := requireFields(msgAccountUpdate, u.Name, u.Email); err != nil {
		return nil, err
	}

	out, err := s.api.UpdateUser(ctx, id, u)
	if err != nil {
		return nil, newOpError(opAdminUpdate, ErrRequestFailed, err)
	}
	s.cache.invalidate()
	return out, nil
}

func (s *adminService) DeleteUser(ctx context.Context, id int64) error {
	if err := s.api.DeleteUser(ctx, id); err != nil {
		return newOpError(opAdminDelete, ErrRequestFailed, err)
	}
	s.cache.invalidate()
	return nil
}

func (s *adminService) ToggleUserActive(ctx context.Context, id int64) error {
	if err := s.api.ToggleUserActive(ctx, id); err != nil {
		return newOpError(opAdminToggle, ErrRequestFailed, err)
	}
	s.cache.invalidate()
	return nil
}

func (s *adminService) Invalidate() {
	s.cache.invalidate()
}
