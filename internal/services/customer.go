package services

import (
	"context"
	"errors"

	"github.com/snapreward/apiserver/internal/store"
	"github.com/snapreward/apiserver/types"
)

// CustomerRepository defines persistence operations for customer
// contacts.
type CustomerRepository interface {
	List(ctx context.Context) ([]types.Customer, error)
	GetByID(ctx context.Context, id int) (types.Customer, error)
	GetByPhone(ctx context.Context, phone string) (types.Customer, error)
	Create(ctx context.Context, customer types.Customer) (types.Customer, error)
	Update(ctx context.Context, customer types.Customer) (types.Customer, error)
	Delete(ctx context.Context, id int) error
	Upsert(ctx context.Context, customer types.Customer) (types.Customer, error)
	Count(ctx context.Context) (int, error)
}

// CustomerPatch carries a partial customer update. Nil fields are left
// untouched.
type CustomerPatch struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
	Email *string `json:"email"`
}

// CustomerService encapsulates customer use-cases.
type CustomerService struct {
	repo CustomerRepository
}

func NewCustomerService(repo CustomerRepository) *CustomerService {
	return &CustomerService{repo: repo}
}

func (s *CustomerService) List(ctx context.Context) ([]types.Customer, error) {
	return s.repo.List(ctx)
}

// Create rejects a duplicate phone number. This is deliberately
// stricter than bulk import, which merges duplicates instead.
func (s *CustomerService) Create(ctx context.Context, input types.CustomerInput) (types.Customer, error) {
	if _, err := s.repo.GetByPhone(ctx, input.Phone); err == nil {
		return types.Customer{}, store.ErrDuplicate
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.Customer{}, err
	}

	return s.repo.Create(ctx, types.Customer{
		Name:  input.Name,
		Phone: input.Phone,
		Email: input.Email,
	})
}

// Update shallow-merges the patch onto the stored record.
func (s *CustomerService) Update(ctx context.Context, id int, patch CustomerPatch) (types.Customer, error) {
	customer, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return types.Customer{}, err
	}

	if patch.Name != nil {
		customer.Name = *patch.Name
	}
	if patch.Phone != nil {
		customer.Phone = *patch.Phone
	}
	if patch.Email != nil {
		customer.Email = *patch.Email
	}

	return s.repo.Update(ctx, customer)
}

func (s *CustomerService) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}

// BulkImport upserts each candidate by phone number: an existing
// contact with the same phone has its mutable fields overwritten, a
// new phone creates a record. Returns every affected record in input
// order.
func (s *CustomerService) BulkImport(ctx context.Context, inputs []types.CustomerInput) ([]types.Customer, error) {
	customers := make([]types.Customer, 0, len(inputs))
	for _, input := range inputs {
		customer, err := s.repo.Upsert(ctx, types.Customer{
			Name:  input.Name,
			Phone: input.Phone,
			Email: input.Email,
		})
		if err != nil {
			return nil, err
		}
		customers = append(customers, customer)
	}
	return customers, nil
}
