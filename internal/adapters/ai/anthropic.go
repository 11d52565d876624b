// Package ai implements the bill-of-lading extractor on the Anthropic
// Messages API.
package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/accelefreight/af-server/internal/aferr"
	"github.com/accelefreight/af-server/internal/domain/bl"
	"github.com/accelefreight/af-server/internal/infrastructure/config"
)

const extractionPrompt = `You are extracting structured data from a Bill of Lading or Sea Waybill.
Return ONLY valid JSON, no preamble, no markdown, no code fences.
Use null for any field not present.

For containers: extract container details if present (FCL shipments). Set to null if no container numbers are found (LCL/loose cargo).
For cargo_items: extract individual cargo line items for LCL/loose cargo shipments (pallets, cartons, etc.). Set to null if the BL only lists containers.

The carrier_agent field is the party issuing the BL - may be a carrier, NVOCC, co-loader, or freight forwarder acting as agent.

{
  "waybill_number": "string or null",
  "booking_number": "string or null",
  "carrier_agent": "string or null - the party issuing the BL",
  "vessel_name": "string or null",
  "voyage_number": "string or null",
  "port_of_loading": "string or null",
  "port_of_discharge": "string or null",
  "on_board_date": "string or null - format YYYY-MM-DD if possible",
  "freight_terms": "string or null - PREPAID or COLLECT",
  "shipper_name": "string or null",
  "shipper_address": "string or null",
  "consignee_name": "string or null",
  "consignee_address": "string or null",
  "notify_party_name": "string or null",
  "cargo_description": "string or null",
  "total_weight_kg": "number or null",
  "total_packages": "string or null",
  "delivery_status": "string or null",
  "containers": [
    {
      "container_number": "string or null",
      "container_type": "string or null",
      "seal_number": "string or null",
      "packages": "string or null",
      "weight_kg": "number or null"
    }
  ],
  "cargo_items": [
    {
      "description": "string or null",
      "quantity": "string or null - e.g. 2 PALLET(S)",
      "gross_weight": "string or null - e.g. 2190.00 kg",
      "measurement": "string or null - e.g. 2.1600 M3"
    }
  ]
}`

// AnthropicExtractor implements bl.Extractor using the Claude API.
type AnthropicExtractor struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// NewAnthropicExtractor creates an extractor from AI configuration
func NewAnthropicExtractor(cfg *config.AIConfig) *AnthropicExtractor {
	return &AnthropicExtractor{
		client:    anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:     cfg.Model,
		maxTokens: int64(cfg.MaxTokens),
	}
}

// Extract sends the document to Claude and decodes the JSON it returns.
// PDFs go as document blocks, images as image blocks.
func (e *AnthropicExtractor) Extract(ctx context.Context, content []byte, contentType, filename string) (*bl.ParsedBL, error) {
	mediaType := MediaType(contentType, filename)
	data := base64.StdEncoding.EncodeToString(content)

	var docBlock anthropic.ContentBlockParamUnion
	if mediaType == "application/pdf" {
		docBlock = anthropic.NewDocumentBlock(anthropic.Base64PDFSourceParam{Data: data})
	} else {
		docBlock = anthropic.NewImageBlockBase64(mediaType, data)
	}

	message, err := e.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(e.model),
		MaxTokens: e.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(docBlock, anthropic.NewTextBlock(extractionPrompt)),
		},
	})
	if err != nil {
		return nil, aferr.Upstreamf("AI parsing failed: %v", err)
	}

	var raw string
	if len(message.Content) > 0 && message.Content[0].Type == "text" {
		raw = message.Content[0].Text
	}

	var parsed bl.ParsedBL
	if err := json.Unmarshal([]byte(StripFences(raw)), &parsed); err != nil {
		return nil, aferr.Upstreamf("AI returned invalid JSON")
	}
	return &parsed, nil
}

// MediaType resolves the document media type from the upload content
// type, then the filename extension, defaulting to PDF.
func MediaType(contentType, filename string) string {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "pdf"):
		return "application/pdf"
	case strings.Contains(ct, "png"):
		return "image/png"
	case strings.Contains(ct, "jpeg"), strings.Contains(ct, "jpg"):
		return "image/jpeg"
	case strings.Contains(ct, "webp"):
		return "image/webp"
	}

	fname := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(fname, ".pdf"):
		return "application/pdf"
	case strings.HasSuffix(fname, ".png"):
		return "image/png"
	case strings.HasSuffix(fname, ".jpg"), strings.HasSuffix(fname, ".jpeg"):
		return "image/jpeg"
	}
	return "application/pdf"
}

// StripFences removes markdown code fences a model sometimes wraps
// around its JSON despite instructions.
func StripFences(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		if idx := strings.Index(raw, "\n"); idx >= 0 {
			raw = raw[idx+1:]
		} else {
			raw = raw[3:]
		}
	}
	if strings.HasSuffix(raw, "```") {
		raw = strings.TrimSpace(raw[:len(raw)-3])
	}
	if strings.HasPrefix(raw, "json") {
		raw = strings.TrimSpace(raw[4:])
	}
	return raw
}
