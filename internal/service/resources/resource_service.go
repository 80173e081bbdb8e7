package resources

import (
	"context"

	"github.com/nkiryanov/officebook/internal/domain"
	"github.com/nkiryanov/officebook/internal/repository"
)

type ResourceUseCase interface {
	List(ctx context.Context) ([]domain.Resource, error)
	GetByID(ctx context.Context, id string) (*domain.Resource, error)
}

// Cache keeps the resource catalog close to the API; the catalog changes
// rarely compared to how often booking forms read it.
type Cache interface {
	GetResources(ctx context.Context) ([]domain.Resource, error)
	SetResources(ctx context.Context, resources []domain.Resource) error
}

type ResourceService struct {
	repo  repository.ResourceRepository
	cache Cache
}

func NewResourceService(repo repository.ResourceRepository, cache Cache) *ResourceService {
	return &ResourceService{repo: repo, cache: cache}
}

func (s *ResourceService) List(ctx context.Context) ([]domain.Resource, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetResources(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	resources, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetResources(ctx, resources)
	}
	return resources, nil
}

func (s *ResourceService) GetByID(ctx context.Context, id string) (*domain.Resource, error) {
	return s.repo.GetByID(ctx, id)
}

var _ ResourceUseCase = (*ResourceService)(nil)
