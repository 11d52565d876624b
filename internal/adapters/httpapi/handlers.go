package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/accelefreight/af-server/internal/aferr"
	"github.com/accelefreight/af-server/internal/application/shipments"
	"github.com/accelefreight/af-server/internal/domain/shipment"
	"github.com/accelefreight/af-server/internal/domain/workflow"
)

// intParam reads an integer query parameter clamped to [min, max],
// falling back to def when absent or malformed.
func intParam(r *http.Request, name string, def, min, max int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	resp, err := s.svc.Stats(r.Context(), ClaimsFrom(r.Context()), r.URL.Query().Get("company_id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	searchFields := q.Get("search_fields")
	if searchFields == "" {
		searchFields = "id"
	}
	result, err := s.svc.Search(r.Context(), ClaimsFrom(r.Context()), q.Get("q"), searchFields, intParam(r, "limit", 8, 1, 50))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tab := q.Get("tab")
	if tab == "" {
		tab = "active"
	}
	result, err := s.svc.List(r.Context(), ClaimsFrom(r.Context()), tab, q.Get("company_id"),
		intParam(r, "limit", 25, 1, 100), intParam(r, "offset", 0, 0, 1<<30))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleFileTags(w http.ResponseWriter, r *http.Request) {
	resp, err := s.svc.FileTags(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	resp, err := s.svc.Get(r.Context(), ClaimsFrom(r.Context()), chi.URLParam(r, "shipmentID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStatusHistory(w http.ResponseWriter, r *http.Request) {
	history, err := s.svc.StatusHistory(r.Context(), ClaimsFrom(r.Context()), chi.URLParam(r, "shipmentID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"status": "OK", "history": history})
}

func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req shipments.StatusUpdate
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	resp, err := s.svc.UpdateStatus(r.Context(), ClaimsFrom(r.Context()), chi.URLParam(r, "shipmentID"), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateManual(w http.ResponseWriter, r *http.Request) {
	var req shipments.CreateManualRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	resp, err := s.svc.CreateManual(r.Context(), ClaimsFrom(r.Context()), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateFromBL(w http.ResponseWriter, r *http.Request) {
	var req shipments.CreateFromBLRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	resp, err := s.svc.CreateFromBL(r.Context(), ClaimsFrom(r.Context()), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	hard := r.URL.Query().Get("hard") == "true"
	result, err := s.svc.Delete(r.Context(), ClaimsFrom(r.Context()), chi.URLParam(r, "shipmentID"), hard)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSetInvoiced(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IssuedInvoice bool `json:"issued_invoice"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	resp, err := s.svc.SetInvoiced(r.Context(), ClaimsFrom(r.Context()), chi.URLParam(r, "shipmentID"), req.IssuedInvoice)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSetException(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Flagged bool    `json:"flagged"`
		Notes   *string `json:"notes"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	resp, err := s.svc.SetException(r.Context(), ClaimsFrom(r.Context()), chi.URLParam(r, "shipmentID"), req.Flagged, req.Notes)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReassignCompany(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CompanyID string `json:"company_id"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	resp, err := s.svc.ReassignCompany(r.Context(), ClaimsFrom(r.Context()), chi.URLParam(r, "shipmentID"), req.CompanyID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateParties(w http.ResponseWriter, r *http.Request) {
	var req shipments.PartiesPatch
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	resp, err := s.svc.UpdateParties(r.Context(), ClaimsFrom(r.Context()), chi.URLParam(r, "shipmentID"), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	result, err := s.svc.Tasks(r.Context(), ClaimsFrom(r.Context()), chi.URLParam(r, "shipmentID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handlePatchTask(w http.ResponseWriter, r *http.Request) {
	var patch workflow.Patch
	if err := decodeBody(r, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	result, err := s.svc.PatchTask(r.Context(), ClaimsFrom(r.Context()),
		chi.URLParam(r, "shipmentID"), chi.URLParam(r, "taskID"), patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleRouteNodes(w http.ResponseWriter, r *http.Request) {
	result, err := s.svc.RouteNodes(r.Context(), ClaimsFrom(r.Context()), chi.URLParam(r, "shipmentID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSaveRouteNodes(w http.ResponseWriter, r *http.Request) {
	var nodes []shipment.RouteNode
	if err := decodeBody(r, &nodes); err != nil {
		s.writeError(w, r, err)
		return
	}
	result, err := s.svc.SaveRouteNodes(r.Context(), ClaimsFrom(r.Context()), chi.URLParam(r, "shipmentID"), nodes)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleRouteNodeTiming(w http.ResponseWriter, r *http.Request) {
	sequence, err := strconv.Atoi(chi.URLParam(r, "sequence"))
	if err != nil {
		s.writeError(w, r, aferr.BadRequestf("Invalid sequence number"))
		return
	}
	var timing shipments.RouteNodeTiming
	if err := decodeBody(r, &timing); err != nil {
		s.writeError(w, r, err)
		return
	}
	result, err := s.svc.UpdateRouteNodeTiming(r.Context(), ClaimsFrom(r.Context()),
		chi.URLParam(r, "shipmentID"), sequence, timing)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handlePorts(w http.ResponseWriter, r *http.Request) {
	resp, err := s.svc.Ports(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCompanies(w http.ResponseWriter, r *http.Request) {
	resp, err := s.svc.Companies(r.Context(), ClaimsFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// readUpload pulls the named file out of a multipart form. The form
// must already be parsed.
func readUpload(r *http.Request, field string) (content []byte, contentType, filename string, err error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, "", "", nil
	}
	defer file.Close()

	content, err = io.ReadAll(file)
	if err != nil {
		return nil, "", "", aferr.BadRequestf("Failed to read uploaded file")
	}
	return content, header.Header.Get("Content-Type"), header.Filename, nil
}

func (s *Server) maxUploadBytes() int64 {
	return int64(s.cfg.MaxUploadMB) << 20
}

func (s *Server) handleParseBL(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(s.maxUploadBytes()); err != nil {
		s.writeError(w, r, aferr.BadRequestf("Invalid multipart form"))
		return
	}
	content, contentType, filename, err := readUpload(r, "file")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.svc.ParseBL(r.Context(), ClaimsFrom(r.Context()), content, contentType, filename)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

// formPtr returns the form value as a pointer, nil when the field was
// absent from the submission.
func formPtr(r *http.Request, name string) *string {
	if r.MultipartForm == nil {
		return nil
	}
	values, ok := r.MultipartForm.Value[name]
	if !ok || len(values) == 0 {
		return nil
	}
	return &values[0]
}

func (s *Server) handleUpdateFromBL(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(s.maxUploadBytes()); err != nil {
		s.writeError(w, r, aferr.BadRequestf("Invalid multipart form"))
		return
	}
	content, contentType, filename, err := readUpload(r, "file")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	upd := shipments.BLUpdate{
		WaybillNumber:      formPtr(r, "waybill_number"),
		Carrier:            formPtr(r, "carrier"),
		CarrierAgent:       formPtr(r, "carrier_agent"),
		VesselName:         formPtr(r, "vessel_name"),
		VoyageNumber:       formPtr(r, "voyage_number"),
		ETD:                formPtr(r, "etd"),
		ShipperName:        formPtr(r, "shipper_name"),
		ShipperAddress:     formPtr(r, "shipper_address"),
		ConsigneeName:      formPtr(r, "consignee_name"),
		ConsigneeAddress:   formPtr(r, "consignee_address"),
		NotifyPartyName:    formPtr(r, "notify_party_name"),
		BLShipperName:      formPtr(r, "bl_shipper_name"),
		BLShipperAddress:   formPtr(r, "bl_shipper_address"),
		BLConsigneeName:    formPtr(r, "bl_consignee_name"),
		BLConsigneeAddress: formPtr(r, "bl_consignee_address"),
		ForceUpdate:        r.FormValue("force_update"),
		Containers:         formPtr(r, "containers"),
		CargoItems:         formPtr(r, "cargo_items"),
		FileContent:        content,
		FileContentType:    contentType,
		FileName:           filename,
	}

	resp, err := s.svc.UpdateFromBL(r.Context(), ClaimsFrom(r.Context()), chi.URLParam(r, "shipmentID"), upd)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	resp, err := s.svc.ListFiles(r.Context(), ClaimsFrom(r.Context()), chi.URLParam(r, "shipmentID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUploadFile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(s.maxUploadBytes()); err != nil {
		s.writeError(w, r, aferr.BadRequestf("Invalid multipart form"))
		return
	}
	content, contentType, filename, err := readUpload(r, "file")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var tags []string
	if raw := r.FormValue("file_tags"); raw != "" {
		if json.Unmarshal([]byte(raw), &tags) != nil {
			tags = nil
		}
	}
	visibility := true
	switch r.FormValue("visibility") {
	case "false", "0", "no":
		visibility = false
	}

	resp, err := s.svc.UploadFile(r.Context(), ClaimsFrom(r.Context()), chi.URLParam(r, "shipmentID"), shipments.FileUpload{
		Content:     content,
		ContentType: contentType,
		FileName:    filename,
		FileTags:    tags,
		Visibility:  visibility,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) fileID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "fileID"), 10, 64)
	if err != nil {
		return 0, aferr.BadRequestf("Invalid file ID")
	}
	return id, nil
}

func (s *Server) handleUpdateFile(w http.ResponseWriter, r *http.Request) {
	fileID, err := s.fileID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var patch shipments.FilePatch
	if err := decodeBody(r, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	resp, err := s.svc.UpdateFile(r.Context(), ClaimsFrom(r.Context()), chi.URLParam(r, "shipmentID"), fileID, patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	fileID, err := s.fileID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	result, err := s.svc.DeleteFile(r.Context(), ClaimsFrom(r.Context()), chi.URLParam(r, "shipmentID"), fileID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleDownloadFile(w http.ResponseWriter, r *http.Request) {
	fileID, err := s.fileID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	result, err := s.svc.DownloadFile(r.Context(), ClaimsFrom(r.Context()), chi.URLParam(r, "shipmentID"), fileID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}
