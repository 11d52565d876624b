package shipment

import "context"

// Repository defines shipment persistence operations
type Repository interface {
	FindByID(ctx context.Context, id string) (*Shipment, error)
	Add(ctx context.Context, s *Shipment) error
	Save(ctx context.Context, s *Shipment) error
	Delete(ctx context.Context, id string) error
	NextCountID(ctx context.Context) (int64, error)
	Stats(ctx context.Context, companyID string) (*Stats, error)
	List(ctx context.Context, q ListQuery) (*Page, error)
	Search(ctx context.Context, q SearchQuery) (*Page, error)
}

// WorkflowRepository defines persistence for the 1:1 workflow channel
type WorkflowRepository interface {
	FindByShipmentID(ctx context.Context, shipmentID string) (*Workflow, error)
	Add(ctx context.Context, w *Workflow) error
	Save(ctx context.Context, w *Workflow) error
	Delete(ctx context.Context, shipmentID string) error
}

// FileRepository defines persistence for shipment file metadata
type FileRepository interface {
	FindByID(ctx context.Context, id int64) (*File, error)
	ListByShipment(ctx context.Context, shipmentID string, visibleOnly bool) ([]File, error)
	Add(ctx context.Context, f *File) error
	Save(ctx context.Context, f *File) error
	DeleteByShipment(ctx context.Context, shipmentID string) error
}

// FileTagRepository lists the file tag catalog
type FileTagRepository interface {
	ListAll(ctx context.Context) ([]FileTag, error)
}
