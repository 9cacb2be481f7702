package services

import "context"

// Stats is the dashboard aggregate payload.
type Stats struct {
	TotalCampaigns   int `json:"totalCampaigns"`
	ActiveCampaigns  int `json:"activeCampaigns"`
	TotalSubmissions int `json:"totalSubmissions"`
	TotalCustomers   int `json:"totalCustomers"`
}

// DashboardService computes aggregate counts across entities.
type DashboardService struct {
	campaigns   CampaignRepository
	submissions SubmissionRepository
	customers   CustomerRepository
}

func NewDashboardService(campaigns CampaignRepository, submissions SubmissionRepository, customers CustomerRepository) *DashboardService {
	return &DashboardService{
		campaigns:   campaigns,
		submissions: submissions,
		customers:   customers,
	}
}

func (s *DashboardService) Stats(ctx context.Context) (Stats, error) {
	totalCampaigns, activeCampaigns, err := s.campaigns.Counts(ctx)
	if err != nil {
		return Stats{}, err
	}

	totalSubmissions, err := s.submissions.Count(ctx)
	if err != nil {
		return Stats{}, err
	}

	totalCustomers, err := s.customers.Count(ctx)
	if err != nil {
		return Stats{}, err
	}

	return Stats{
		TotalCampaigns:   totalCampaigns,
		ActiveCampaigns:  activeCampaigns,
		TotalSubmissions: totalSubmissions,
		TotalCustomers:   totalCustomers,
	}, nil
}
