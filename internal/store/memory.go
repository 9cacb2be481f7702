package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/snapreward/apiserver/types"
)

// MemStore is an in-memory implementation of the repositories, used as
// a test fixture behind the same interfaces as the postgres store.
// Identifiers are assigned from per-entity counters owned by the
// instance; there is no package-level state.
type MemStore struct {
	mu sync.Mutex

	users       map[int]types.User
	campaigns   map[int]types.Campaign
	customers   map[int]types.Customer
	submissions map[int]types.Submission

	nextUserID       int
	nextCampaignID   int
	nextCustomerID   int
	nextSubmissionID int
}

func NewMemStore() *MemStore {
	return &MemStore{
		users:            make(map[int]types.User),
		campaigns:        make(map[int]types.Campaign),
		customers:        make(map[int]types.Customer),
		submissions:      make(map[int]types.Submission),
		nextUserID:       1,
		nextCampaignID:   1,
		nextCustomerID:   1,
		nextSubmissionID: 1,
	}
}

// Users returns the user repository view of the store.
func (s *MemStore) Users() *MemUserRepository { return &MemUserRepository{s: s} }

// Campaigns returns the campaign repository view of the store.
func (s *MemStore) Campaigns() *MemCampaignRepository { return &MemCampaignRepository{s: s} }

// Customers returns the customer repository view of the store.
func (s *MemStore) Customers() *MemCustomerRepository { return &MemCustomerRepository{s: s} }

// Submissions returns the submission repository view of the store.
func (s *MemStore) Submissions() *MemSubmissionRepository { return &MemSubmissionRepository{s: s} }

type MemUserRepository struct{ s *MemStore }

func (r *MemUserRepository) GetByID(_ context.Context, id int) (types.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user, ok := r.s.users[id]
	if !ok {
		return types.User{}, ErrNotFound
	}
	return user, nil
}

func (r *MemUserRepository) GetByUsername(_ context.Context, username string) (types.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, user := range r.s.users {
		if user.Username == username {
			return user, nil
		}
	}
	return types.User{}, ErrNotFound
}

func (r *MemUserRepository) Create(_ context.Context, user types.User) (types.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Username == user.Username {
			return types.User{}, ErrDuplicate
		}
	}
	user.ID = r.s.nextUserID
	r.s.nextUserID++
	user.CreatedAt = time.Now()
	r.s.users[user.ID] = user
	return user, nil
}

type MemCampaignRepository struct{ s *MemStore }

func (r *MemCampaignRepository) List(_ context.Context) ([]types.Campaign, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.sortedLocked(), nil
}

func (r *MemCampaignRepository) ListWithCounts(_ context.Context) ([]types.CampaignWithCount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	counts := make(map[int]int)
	for _, submission := range r.s.submissions {
		counts[submission.CampaignID]++
	}

	campaigns := r.sortedLocked()
	annotated := make([]types.CampaignWithCount, 0, len(campaigns))
	for _, campaign := range campaigns {
		annotated = append(annotated, types.CampaignWithCount{
			Campaign:        campaign,
			SubmissionCount: counts[campaign.ID],
		})
	}
	return annotated, nil
}

func (r *MemCampaignRepository) GetByID(_ context.Context, id int) (types.Campaign, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	campaign, ok := r.s.campaigns[id]
	if !ok {
		return types.Campaign{}, ErrNotFound
	}
	return campaign, nil
}

func (r *MemCampaignRepository) GetBySlug(_ context.Context, slug string) (types.Campaign, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, campaign := range r.s.campaigns {
		if campaign.Slug == slug {
			return campaign, nil
		}
	}
	return types.Campaign{}, ErrNotFound
}

func (r *MemCampaignRepository) Create(_ context.Context, campaign types.Campaign) (types.Campaign, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.campaigns {
		if existing.Slug == campaign.Slug {
			return types.Campaign{}, ErrDuplicate
		}
	}
	campaign.ID = r.s.nextCampaignID
	r.s.nextCampaignID++
	campaign.CreatedAt = time.Now()
	r.s.campaigns[campaign.ID] = campaign
	return campaign, nil
}

func (r *MemCampaignRepository) Update(_ context.Context, campaign types.Campaign) (types.Campaign, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.campaigns[campaign.ID]
	if !ok {
		return types.Campaign{}, ErrNotFound
	}
	campaign.Slug = existing.Slug
	campaign.CreatedAt = existing.CreatedAt
	r.s.campaigns[campaign.ID] = campaign
	return campaign, nil
}

func (r *MemCampaignRepository) Delete(_ context.Context, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.campaigns[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.campaigns, id)
	return nil
}

func (r *MemCampaignRepository) Counts(_ context.Context) (total, active int, err error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, campaign := range r.s.campaigns {
		total++
		if campaign.Status == types.CampaignStatusActive {
			active++
		}
	}
	return total, active, nil
}

func (r *MemCampaignRepository) sortedLocked() []types.Campaign {
	campaigns := make([]types.Campaign, 0, len(r.s.campaigns))
	for _, campaign := range r.s.campaigns {
		campaigns = append(campaigns, campaign)
	}
	sort.Slice(campaigns, func(i, j int) bool {
		if campaigns[i].CreatedAt.Equal(campaigns[j].CreatedAt) {
			return campaigns[i].ID > campaigns[j].ID
		}
		return campaigns[i].CreatedAt.After(campaigns[j].CreatedAt)
	})
	return campaigns
}

type MemCustomerRepository struct{ s *MemStore }

func (r *MemCustomerRepository) List(_ context.Context) ([]types.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	customers := make([]types.Customer, 0, len(r.s.customers))
	for _, customer := range r.s.customers {
		customers = append(customers, customer)
	}
	sort.Slice(customers, func(i, j int) bool {
		if customers[i].CreatedAt.Equal(customers[j].CreatedAt) {
			return customers[i].ID > customers[j].ID
		}
		return customers[i].CreatedAt.After(customers[j].CreatedAt)
	})
	return customers, nil
}

func (r *MemCustomerRepository) GetByID(_ context.Context, id int) (types.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	customer, ok := r.s.customers[id]
	if !ok {
		return types.Customer{}, ErrNotFound
	}
	return customer, nil
}

func (r *MemCustomerRepository) GetByPhone(_ context.Context, phone string) (types.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	customer, ok := r.byPhoneLocked(phone)
	if !ok {
		return types.Customer{}, ErrNotFound
	}
	return customer, nil
}

func (r *MemCustomerRepository) Create(_ context.Context, customer types.Customer) (types.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.byPhoneLocked(customer.Phone); ok {
		return types.Customer{}, ErrDuplicate
	}
	customer.ID = r.s.nextCustomerID
	r.s.nextCustomerID++
	customer.CreatedAt = time.Now()
	r.s.customers[customer.ID] = customer
	return customer, nil
}

func (r *MemCustomerRepository) Update(_ context.Context, customer types.Customer) (types.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.customers[customer.ID]
	if !ok {
		return types.Customer{}, ErrNotFound
	}
	if other, ok := r.byPhoneLocked(customer.Phone); ok && other.ID != customer.ID {
		return types.Customer{}, ErrDuplicate
	}
	customer.CreatedAt = existing.CreatedAt
	r.s.customers[customer.ID] = customer
	return customer, nil
}

func (r *MemCustomerRepository) Delete(_ context.Context, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.customers[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.customers, id)
	return nil
}

func (r *MemCustomerRepository) Upsert(_ context.Context, customer types.Customer) (types.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if existing, ok := r.byPhoneLocked(customer.Phone); ok {
		existing.Name = customer.Name
		existing.Email = customer.Email
		r.s.customers[existing.ID] = existing
		return existing, nil
	}
	customer.ID = r.s.nextCustomerID
	r.s.nextCustomerID++
	customer.CreatedAt = time.Now()
	r.s.customers[customer.ID] = customer
	return customer, nil
}

func (r *MemCustomerRepository) Count(_ context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.customers), nil
}

func (r *MemCustomerRepository) byPhoneLocked(phone string) (types.Customer, bool) {
	for _, customer := range r.s.customers {
		if customer.Phone == phone {
			return customer, true
		}
	}
	return types.Customer{}, false
}

type MemSubmissionRepository struct{ s *MemStore }

func (r *MemSubmissionRepository) List(_ context.Context) ([]types.SubmissionWithCampaign, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.annotatedLocked(func(types.Submission) bool { return true }), nil
}

func (r *MemSubmissionRepository) ListByCampaign(_ context.Context, campaignID int) ([]types.SubmissionWithCampaign, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.annotatedLocked(func(s types.Submission) bool { return s.CampaignID == campaignID }), nil
}

func (r *MemSubmissionRepository) GetByID(_ context.Context, id int) (types.Submission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	submission, ok := r.s.submissions[id]
	if !ok {
		return types.Submission{}, ErrNotFound
	}
	return submission, nil
}

func (r *MemSubmissionRepository) Create(_ context.Context, submission types.Submission) (types.Submission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	submission.ID = r.s.nextSubmissionID
	r.s.nextSubmissionID++
	submission.CreatedAt = time.Now()
	r.s.submissions[submission.ID] = submission
	return submission, nil
}

func (r *MemSubmissionRepository) UpdateStatus(_ context.Context, id int, status string) (types.Submission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	submission, ok := r.s.submissions[id]
	if !ok {
		return types.Submission{}, ErrNotFound
	}
	submission.Status = status
	r.s.submissions[id] = submission
	return submission, nil
}

func (r *MemSubmissionRepository) Delete(_ context.Context, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.submissions[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.submissions, id)
	return nil
}

func (r *MemSubmissionRepository) Count(_ context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.submissions), nil
}

func (r *MemSubmissionRepository) annotatedLocked(keep func(types.Submission) bool) []types.SubmissionWithCampaign {
	submissions := make([]types.SubmissionWithCampaign, 0)
	for _, submission := range r.s.submissions {
		if !keep(submission) {
			continue
		}
		name := UnknownCampaignName
		if campaign, ok := r.s.campaigns[submission.CampaignID]; ok {
			name = campaign.Name
		}
		submissions = append(submissions, types.SubmissionWithCampaign{
			Submission:   submission,
			CampaignName: name,
		})
	}
	sort.Slice(submissions, func(i, j int) bool {
		if submissions[i].CreatedAt.Equal(submissions[j].CreatedAt) {
			return submissions[i].ID > submissions[j].ID
		}
		return submissions[i].CreatedAt.After(submissions[j].CreatedAt)
	})
	return submissions
}
