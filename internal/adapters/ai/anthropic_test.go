package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMediaType(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		filename    string
		want        string
	}{
		{"pdf content type", "application/pdf", "", "application/pdf"},
		{"png content type", "image/png", "", "image/png"},
		{"jpeg content type", "image/jpeg", "", "image/jpeg"},
		{"webp content type", "image/webp", "", "image/webp"},
		{"fallback to pdf extension", "application/octet-stream", "BL_SCAN.PDF", "application/pdf"},
		{"fallback to jpg extension", "", "scan.jpg", "image/jpeg"},
		{"fallback to png extension", "", "scan.png", "image/png"},
		{"unknown defaults to pdf", "", "document.tiff", "application/pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MediaType(tt.contentType, tt.filename))
		})
	}
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"bare json untouched", `{"a":1}`, `{"a":1}`},
		{"fenced json", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"fence without language", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"leading json word", "json {\"a\":1}", `{"a":1}`},
		{"surrounding whitespace", "  {\"a\":1}  ", `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripFences(tt.raw))
		})
	}
}
