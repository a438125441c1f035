package services

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/crmconsole/internal/client/client"
	"github.com/dmitrijs2005/crmconsole/internal/client/models"
)

// LatestCustomersLimit is the page size used when no filter is active.
const LatestCustomersLimit = 50

const (
	opCRMList   Operation = "crm-list"
	opCRMCreate Operation = "crm-create"
	opCRMUpdate Operation = "crm-update"
	opCRMDelete Operation = "crm-delete"
	opCRMStats  Operation = "crm-stats"
)

// CRMService backs the customer table. Listings and statistics are cached
// per filter; any successful mutation drops both.
type CRMService interface {
	Customers(ctx context.Context, f models.CustomerFilter) (*models.CustomerPage, error)
	CreateCustomer(ctx context.Context, in models.CustomerInput) (*models.Customer, error)
	UpdateCustomer(ctx context.Context, id int64, in models.CustomerInput) (*models.Customer, error)
	DeleteCustomer(ctx context.Context, id int64) error
	Stats(ctx context.Context) (*models.CRMStats, error)
	Invalidate()
}

type crmService struct {
	api   client.CRMAPI
	pages *queryCache[*models.CustomerPage]
	stats *queryCache[*models.CRMStats]
}

func NewCRMService(api client.CRMAPI, opts ...QueryOption) CRMService {
	o := buildQueryOptions(opts)
	return &crmService{
		api:   api,
		pages: newQueryCache[*models.CustomerPage](o.staleTime),
		stats: newQueryCache[*models.CRMStats](o.staleTime),
	}
}

// Customers lists customers matching f. Without any active filter the
// latest customers are returned instead.
func (s *crmService) Customers(ctx context.Context, f models.CustomerFilter) (*models.CustomerPage, error) {
	f = f.Normalize()
	key := strings.Join([]string{f.Search, f.Status, f.Platform, f.Date}, "\x00")

	p, gen, ok := s.pages.get(key)
	if ok {
		return p, nil
	}

	var err error
	if f.IsZero() {
		p, err = s.api.LatestCustomers(ctx, LatestCustomersLimit)
	} else {
		p, err = s.api.Customers(ctx, f)
	}
	if err != nil {
		return nil, newOpError(opCRMList, ErrRequestFailed, err)
	}
	if p.Customers == nil {
		p.Customers = []models.Customer{}
	}

	s.pages.put(key, gen, p)
	return p, nil
}

func (s *crmService) CreateCustomer(ctx context.Context, in models.CustomerInput) (*models.Customer, error) {
	in = in.Normalize()
	if err := validateCustomer(in); err != nil {
		return nil, err
	}
	out, err := s.api.CreateCustomer(ctx, in)
	if err != nil {
		return nil, newOpError(opCRMCreate, ErrRequestFailed, err)
	}
	s.Invalidate()
	return out, nil
}

func (s *crmService) UpdateCustomer(ctx context.Context, id int64, in models.CustomerInput) (*models.Customer, error) {
	in = in.Normalize()
	if err := validateCustomer(in); err != nil {
		return nil, err
	}
	out, err := s.api.UpdateCustomer(ctx, id, in)
	if err != nil {
		return nil, newOpError(opCRMUpdate, ErrRequestFailed, err)
	}
	s.Invalidate()
	return out, nil
}

func (s *crmService) DeleteCustomer(ctx context.Context, id int64) error {
	if err := s.api.DeleteCustomer(ctx, id); err != nil {
		return newOpError(opCRMDelete, ErrRequestFailed, err)
	}
	s.Invalidate()
	return nil
}

func (s *crmService) Stats(ctx context.Context) (*models.CRMStats, error) {
	st, gen, ok := s.stats.get("stats")
	if ok {
		return st, nil
	}
	st, err := s.api.CRMStats(ctx)
	if err != nil {
		return nil, newOpError(opCRMStats, ErrRequestFailed, err)
	}
	s.stats.put("stats", gen, st)
	return st, nil
}

func (s *crmService) Invalidate() {
	s.pages.invalidate()
	s.stats.invalidate()
}
