package service

import (
	"context"
	"fmt"

	"complyflow/internal/cache"
	"complyflow/internal/flow"
	"complyflow/internal/model"
	"complyflow/internal/repository"

	"github.com/google/uuid"
)

// StandardService manages compliance standards and their question catalogs
type StandardService struct {
	standardRepo repository.StandardRepo
	statsCache   cache.StatsCache
}

// NewStandardService creates a new standard service
func NewStandardService(standardRepo repository.StandardRepo, statsCache cache.StatsCache) *StandardService {
	return &StandardService{standardRepo: standardRepo, statsCache: statsCache}
}

// Create validates and stores a standard. The catalog is checked up front
// so broken rule references never reach a live session.
func (s *StandardService) Create(ctx context.Context, standard *model.Standard) (*model.Standard, error) {
	if _, err := flow.NewCatalog(standard.Questions); err != nil {
		return nil, fmt.Errorf("invalid question catalog: %w", err)
	}
	if standard.ID == "" {
		standard.ID = "std_" + uuid.New().String()[:8]
	}
	if standard.Version == "" {
		standard.Version = "1.0.0"
	}
	if err := s.standardRepo.Create(ctx, standard); err != nil {
		return nil, fmt.Errorf("save standard: %w", err)
	}
	// A replaced standard must not inherit counters from its predecessor
	if err := s.statsCache.Reset(ctx, standard.ID); err != nil {
		return nil, fmt.Errorf("reset stats: %w", err)
	}
	return standard, nil
}

// Update replaces a stored standard. Sessions pinned to the previous
// version keep failing with a version conflict rather than folding against
// the new catalog.
func (s *StandardService) Update(ctx context.Context, standard *model.Standard) (*model.Standard, error) {
	if _, err := flow.NewCatalog(standard.Questions); err != nil {
		return nil, fmt.Errorf("invalid question catalog: %w", err)
	}
	existing, err := s.standardRepo.GetByID(ctx, standard.ID)
	if err != nil {
		return nil, fmt.Errorf("load standard: %w", err)
	}
	if existing == nil {
		return nil, ErrStandardNotFound
	}
	if standard.Version == "" {
		standard.Version = existing.Version
	}
	if err := s.standardRepo.Update(ctx, standard); err != nil {
		return nil, fmt.Errorf("save standard: %w", err)
	}
	return standard, nil
}

// Delete removes a standard and its live counters
func (s *StandardService) Delete(ctx context.Context, id string) error {
	existing, err := s.standardRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("load standard: %w", err)
	}
	if existing == nil {
		return ErrStandardNotFound
	}
	if err := s.standardRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete standard: %w", err)
	}
	if err := s.statsCache.Reset(ctx, id); err != nil {
		return fmt.Errorf("reset stats: %w", err)
	}
	return nil
}

// Get loads one standard
func (s *StandardService) Get(ctx context.Context, id string) (*model.Standard, error) {
	standard, err := s.standardRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load standard: %w", err)
	}
	if standard == nil {
		return nil, ErrStandardNotFound
	}
	return standard, nil
}

// List returns every stored standard
func (s *StandardService) List(ctx context.Context) ([]*model.Standard, error) {
	standards, err := s.standardRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list standards: %w", err)
	}
	return standards, nil
}
