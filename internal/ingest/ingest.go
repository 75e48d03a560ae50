// Package ingest turns uploads and URL references into attachments. Text
// files pass through, PDFs get their text extracted, images are kept as
// base64 for multimodal forwarding.
package ingest

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"mime"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/promptdeck/promptdeck/internal/providers"
	"github.com/promptdeck/promptdeck/internal/types"
)

// Service builds attachments from raw inputs.
type Service struct {
	logger *slog.Logger
}

// NewService creates an ingest service.
func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// FromUpload classifies an uploaded file and produces an attachment.
// Text-like files keep their content verbatim, PDFs are reduced to their
// extracted text, and images are stored base64-encoded.
func (s *Service) FromUpload(name, mimeType string, data []byte) (types.Attachment, error) {
	att := types.Attachment{
		Name:     name,
		Kind:     types.AttachmentFile,
		MimeType: mimeType,
	}

	switch {
	case strings.HasPrefix(mimeType, "image/"):
		att.Content = base64.StdEncoding.EncodeToString(data)
	case mimeType == "application/pdf":
		text, err := ExtractPDFText(data)
		if err != nil {
			return types.Attachment{}, fmt.Errorf("extract pdf text from %s: %w", name, err)
		}
		att.Content = text
		s.logger.Debug("extracted pdf text", "name", name, "chars", len(text))
	case strings.HasPrefix(mimeType, "text") || mimeType == "text/csv" || mimeType == "":
		att.Content = string(data)
		if mimeType == "" {
			att.MimeType = "text/plain"
		}
	default:
		return types.Attachment{}, fmt.Errorf("unsupported attachment type: %s", mimeType)
	}
	return att, nil
}

// FromURL produces a URL-reference attachment.
func (s *Service) FromURL(name, ref string) (types.Attachment, error) {
	u, err := url.Parse(ref)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return types.Attachment{}, fmt.Errorf("invalid attachment url: %s", ref)
	}
	if name == "" {
		name = u.Host
	}
	return types.Attachment{
		Name:    name,
		Kind:    types.AttachmentURL,
		Content: ref,
	}, nil
}

// DecodeImageDataURI parses a data:image/...;base64,... URI into image
// data for a provider request.
func DecodeImageDataURI(uri string) (*providers.ImageData, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, fmt.Errorf("not a data URI")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, fmt.Errorf("malformed data URI")
	}
	mimeType, encoding, _ := strings.Cut(meta, ";")
	if encoding != "base64" {
		return nil, fmt.Errorf("unsupported data URI encoding: %s", encoding)
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, fmt.Errorf("not an image data URI: %s", mimeType)
	}
	if _, err := base64.StdEncoding.DecodeString(payload); err != nil {
		return nil, fmt.Errorf("decode image data: %w", err)
	}
	return &providers.ImageData{Base64: payload, MimeType: mimeType}, nil
}

// EncodeImageDataURI builds a data URI from raw image bytes, deriving the
// MIME type from the file extension.
func EncodeImageDataURI(name string, data []byte) (string, error) {
	mimeType := mime.TypeByExtension(filepath.Ext(name))
	if !strings.HasPrefix(mimeType, "image/") {
		return "", fmt.Errorf("not an image file: %s", name)
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
