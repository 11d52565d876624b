package company

import "context"

// Repository defines company catalog persistence
type Repository interface {
	FindByID(ctx context.Context, id string) (*Company, error)
	Exists(ctx context.Context, id string) (bool, error)
	ListActive(ctx context.Context) ([]Company, error)
}
