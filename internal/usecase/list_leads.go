package usecase

import (
	"context"
	"fmt"

	"github.com/Harsh-BH/Leadly/internal/domain"
	"github.com/Harsh-BH/Leadly/internal/repository"
)

const (
	defaultLeadsLimit = 50
	maxLeadsLimit     = 500
)

// ListLeadsUsecase pages through stored leads.
type ListLeadsUsecase struct {
	leads repository.LeadRepository
}

// NewListLeadsUsecase creates a new ListLeadsUsecase.
func NewListLeadsUsecase(leads repository.LeadRepository) *ListLeadsUsecase {
	return &ListLeadsUsecase{leads: leads}
}

// Execute clamps the page bounds, validates the category and returns one page plus the total.
func (uc *ListLeadsUsecase) Execute(ctx context.Context, filter domain.LeadFilter) (*domain.LeadsResponse, error) {
	if filter.Category != "" && !filter.Category.IsValid() {
		return nil, domain.ErrInvalidCategory
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultLeadsLimit
	}
	if filter.Limit > maxLeadsLimit {
		filter.Limit = maxLeadsLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	leads, err := uc.leads.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	total, err := uc.leads.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count leads: %w", err)
	}
	if leads == nil {
		leads = []*domain.Lead{}
	}

	return &domain.LeadsResponse{
		Leads:  leads,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}, nil
}
