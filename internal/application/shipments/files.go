package shipments

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/accelefreight/af-server/internal/adapters/persistence"
	"github.com/accelefreight/af-server/internal/aferr"
	"github.com/accelefreight/af-server/internal/domain/audit"
	"github.com/accelefreight/af-server/internal/domain/identity"
	"github.com/accelefreight/af-server/internal/domain/shipment"
)

// filePath builds the blob store key for a shipment file.
func filePath(companyID, shipmentID, filename string) string {
	if companyID == "" {
		companyID = "unknown"
	}
	return fmt.Sprintf("company/%s/shipments/%s/%s", companyID, shipmentID, filename)
}

// fileSizeKB converts a byte count to kilobytes rounded to two places.
func fileSizeKB(n int) float64 {
	return math.Round(float64(n)/1024.0*100) / 100
}

// filePayload renders a file record with the legacy aliases the
// platform reads.
func filePayload(f *shipment.File) map[string]any {
	tags := f.FileTags
	if tags == nil {
		tags = []string{}
	}
	return map[string]any{
		"id":                f.ID,
		"file_id":           f.ID,
		"shipment_id":       f.ShipmentID,
		"company_id":        f.CompanyID,
		"file_name":         f.FileName,
		"file_tags":         tags,
		"file_description":  f.FileDescription,
		"file_size_kb":      f.FileSizeKB,
		"visibility":        f.Visibility,
		"notification_sent": f.NotificationSent,
		"uploaded_by_uid":   f.UploadedByUID,
		"uploaded_by_email": f.UploadedByEmail,
		"created_at":        f.CreatedAt.UTC().Format(time.RFC3339),
		"updated_at":        f.UpdatedAt.UTC().Format(time.RFC3339),
		"created":           f.CreatedAt.UTC().Format(time.RFC3339),
		"updated":           f.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// ListFiles returns the file records for a shipment, newest first.
// Regular customer users only see visible files.
func (s *Service) ListFiles(ctx context.Context, claims identity.Claims, shipmentID string) (*Response, error) {
	visibleOnly := claims.IsAFC() && !claims.IsAFCManager()

	files, err := s.store.Files.ListByShipment(ctx, shipmentID, visibleOnly)
	if err != nil {
		return nil, err
	}

	items := make([]map[string]any, 0, len(files))
	for i := range files {
		items = append(items, filePayload(&files[i]))
	}
	return &Response{Status: "OK", Data: items}, nil
}

// FileUpload carries an uploaded file and its metadata form fields.
type FileUpload struct {
	Content     []byte
	ContentType string
	FileName    string
	FileTags    []string
	Visibility  bool
}

// UploadFile stores a document against a shipment. Staff and customer
// admins or managers only.
func (s *Service) UploadFile(ctx context.Context, claims identity.Claims, shipmentID string, upload FileUpload) (*Response, error) {
	if claims.IsAFC() && !claims.IsAFCManager() {
		return nil, aferr.Forbiddenf("Only staff or company admins/managers can upload files")
	}
	if len(upload.Content) == 0 {
		return nil, aferr.BadRequestf("Empty file")
	}

	now := s.clock.Now()
	name := upload.FileName
	if name == "" {
		name = "untitled"
	}
	contentType := upload.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	var resp *Response
	err := s.store.Transaction(ctx, func(tx *persistence.Store) error {
		sh, err := tx.Shipments.FindByID(ctx, shipmentID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return aferr.NotFoundf("Shipment %s not found", shipmentID)
			}
			return err
		}

		location := filePath(sh.CompanyID, shipmentID, name)
		if err := s.blobs.Put(ctx, location, upload.Content, contentType); err != nil {
			return err
		}

		f := &shipment.File{
			ShipmentID:      shipmentID,
			CompanyID:       sh.CompanyID,
			FileName:        name,
			FileLocation:    location,
			FileTags:        upload.FileTags,
			FileSizeKB:      fileSizeKB(len(upload.Content)),
			Visibility:      upload.Visibility,
			UploadedByUID:   claims.UID,
			UploadedByEmail: claims.Email,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := tx.Files.Add(ctx, f); err != nil {
			return err
		}

		if err := tx.Audit.Append(ctx, &audit.Entry{
			Action:    audit.ActionFileUploaded,
			EntityID:  shipmentID,
			UID:       claims.UID,
			Email:     claims.Email,
			Metadata:  map[string]any{"file_name": name},
			CreatedAt: now,
		}); err != nil {
			return err
		}

		s.logger.Info("file uploaded",
			zap.String("shipment_id", shipmentID),
			zap.String("file_name", name),
			zap.String("uid", claims.UID),
		)

		resp = OK(filePayload(f), "File uploaded")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// FilePatch updates tags and/or visibility on a file. Nil leaves the
// field untouched.
type FilePatch struct {
	FileTags   []string `json:"file_tags"`
	Visibility *bool    `json:"visibility"`
}

// UpdateFile edits file metadata. Customer admins and managers may
// retag files but never change visibility.
func (s *Service) UpdateFile(ctx context.Context, claims identity.Claims, shipmentID string, fileID int64, patch FilePatch) (*Response, error) {
	if claims.IsAFC() && !claims.IsAFCManager() {
		return nil, aferr.Forbiddenf("Only staff or company admins/managers can edit files")
	}
	if patch.Visibility != nil && claims.IsAFC() {
		return nil, aferr.Forbiddenf("Only AF staff can change file visibility")
	}

	now := s.clock.Now()

	var resp *Response
	err := s.store.Transaction(ctx, func(tx *persistence.Store) error {
		f, err := s.fetchFile(ctx, tx, shipmentID, fileID)
		if err != nil {
			return err
		}

		if patch.FileTags != nil {
			f.FileTags = patch.FileTags
		}
		if patch.Visibility != nil {
			f.Visibility = *patch.Visibility
		}
		f.UpdatedAt = now
		if err := tx.Files.Save(ctx, f); err != nil {
			return err
		}

		if err := tx.Audit.Append(ctx, &audit.Entry{
			Action:    audit.ActionFileUpdated,
			EntityID:  shipmentID,
			UID:       claims.UID,
			Email:     claims.Email,
			Metadata:  map[string]any{"file_id": fileID},
			CreatedAt: now,
		}); err != nil {
			return err
		}

		resp = OK(filePayload(f), "File updated")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// DeleteFile soft-deletes a file record. Staff only; the blob itself
// stays in place.
func (s *Service) DeleteFile(ctx context.Context, claims identity.Claims, shipmentID string, fileID int64) (map[string]any, error) {
	now := s.clock.Now()

	var result map[string]any
	err := s.store.Transaction(ctx, func(tx *persistence.Store) error {
		f, err := s.fetchFile(ctx, tx, shipmentID, fileID)
		if err != nil {
			return err
		}

		f.Trash = true
		f.UpdatedAt = now
		if err := tx.Files.Save(ctx, f); err != nil {
			return err
		}

		if err := tx.Audit.Append(ctx, &audit.Entry{
			Action:    audit.ActionFileDeleted,
			EntityID:  shipmentID,
			UID:       claims.UID,
			Email:     claims.Email,
			Metadata:  map[string]any{"file_id": fileID},
			CreatedAt: now,
		}); err != nil {
			return err
		}

		s.logger.Info("file deleted",
			zap.String("shipment_id", shipmentID),
			zap.Int64("file_id", fileID),
			zap.String("uid", claims.UID),
		)

		result = map[string]any{"deleted": true, "file_id": fileID}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DownloadFile returns a short-lived signed URL for the file blob.
// Hidden files stay invisible to regular customer users.
func (s *Service) DownloadFile(ctx context.Context, claims identity.Claims, shipmentID string, fileID int64) (map[string]any, error) {
	f, err := s.fetchFile(ctx, s.store, shipmentID, fileID)
	if err != nil {
		return nil, err
	}

	if claims.IsAFC() && !claims.IsAFCManager() && !f.Visibility {
		return nil, aferr.NotFoundf("File %d not found", fileID)
	}
	if f.FileLocation == "" {
		return nil, aferr.Internalf("File location not set")
	}

	url, err := s.blobs.SignedURL(ctx, f.FileLocation, s.urlTTL)
	if err != nil {
		return nil, err
	}
	return map[string]any{"download_url": url}, nil
}

// fetchFile loads a file record and checks it belongs to the shipment.
func (s *Service) fetchFile(ctx context.Context, store *persistence.Store, shipmentID string, fileID int64) (*shipment.File, error) {
	f, err := store.Files.FindByID(ctx, fileID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, aferr.NotFoundf("File %d not found", fileID)
		}
		return nil, err
	}
	if f.ShipmentID != shipmentID {
		return nil, aferr.NotFoundf("File %d not found on shipment %s", fileID, shipmentID)
	}
	return f, nil
}
