package ports

import (
	"context"

	"github.com/academyhq/academy-client/internal/core/domain"
)

// ResourceAPI is the generic CRUD surface of the backend, one endpoint family
// per resource type.
type ResourceAPI interface {
	List(ctx context.Context, resource domain.ResourceType, query domain.ListQuery) (*domain.ListPage, error)
	Create(ctx context.Context, resource domain.ResourceType, entity domain.Entity) (domain.Entity, error)
	Update(ctx context.Context, resource domain.ResourceType, id string, entity domain.Entity) (domain.Entity, error)
	Delete(ctx context.Context, resource domain.ResourceType, id string) error
}
