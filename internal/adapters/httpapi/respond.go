package httpapi

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/accelefreight/af-server/internal/aferr"
)

// writeJSON serializes v with the given status code.
func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

// writeError translates an error into its response envelope.
// Classified errors carry their own status; anything else is a 500
// with the detail kept out of the response body.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if e, ok := aferr.As(err); ok {
		s.writeJSON(w, e.HTTPStatus(), map[string]any{
			"status": string(e.Kind),
			"data":   nil,
			"msg":    e.Msg,
		})
		return
	}

	s.logger.Error("unhandled error",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	s.writeJSON(w, http.StatusInternalServerError, map[string]any{
		"status": "ERROR",
		"data":   nil,
		"msg":    "Internal server error",
	})
}

// decodeBody parses a JSON request body into v.
func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return aferr.BadRequestf("Invalid request body")
	}
	return nil
}
