package shipment

import "time"

// File is a document attached to a shipment. FileLocation is the blob
// store object key; download URLs are signed on demand.
type File struct {
	ID               int64     `json:"id"`
	ShipmentID       string    `json:"shipment_id"`
	CompanyID        string    `json:"company_id"`
	FileName         string    `json:"file_name"`
	FileLocation     string    `json:"-"`
	FileTags         []string  `json:"file_tags"`
	FileDescription  *string   `json:"file_description,omitempty"`
	FileSizeKB       float64   `json:"file_size_kb"`
	Visibility       bool      `json:"visibility"`
	NotificationSent bool      `json:"notification_sent"`
	UploadedByUID    string    `json:"uploaded_by_uid"`
	UploadedByEmail  string    `json:"uploaded_by_email"`
	Trash            bool      `json:"-"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// FileTag is a catalog entry customers pick when tagging uploads.
type FileTag struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Color string `json:"color"`
}
