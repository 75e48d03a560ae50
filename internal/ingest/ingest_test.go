package ingest

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/promptdeck/promptdeck/internal/types"
)

func TestFromUpload(t *testing.T) {
	svc := NewService(nil)

	t.Run("text file", func(t *testing.T) {
		att, err := svc.FromUpload("notes.txt", "text/plain", []byte("hello"))
		if err != nil {
			t.Fatalf("FromUpload() error = %v", err)
		}
		if att.Kind != types.AttachmentFile || att.Content != "hello" {
			t.Errorf("attachment = %+v", att)
		}
		if !att.IsTextBearing() {
			t.Error("text attachment should be text-bearing")
		}
	})

	t.Run("csv file", func(t *testing.T) {
		att, err := svc.FromUpload("data.csv", "text/csv", []byte("a,b\n1,2"))
		if err != nil {
			t.Fatalf("FromUpload() error = %v", err)
		}
		if att.Content != "a,b\n1,2" {
			t.Errorf("Content = %q", att.Content)
		}
	})

	t.Run("missing mime type treated as text", func(t *testing.T) {
		att, err := svc.FromUpload("README", "", []byte("plain"))
		if err != nil {
			t.Fatalf("FromUpload() error = %v", err)
		}
		if att.MimeType != "text/plain" {
			t.Errorf("MimeType = %q", att.MimeType)
		}
	})

	t.Run("image stored as base64", func(t *testing.T) {
		raw := []byte{0x89, 0x50, 0x4e, 0x47}
		att, err := svc.FromUpload("pic.png", "image/png", raw)
		if err != nil {
			t.Fatalf("FromUpload() error = %v", err)
		}
		if att.Content != base64.StdEncoding.EncodeToString(raw) {
			t.Errorf("Content = %q", att.Content)
		}
		if att.IsTextBearing() {
			t.Error("image attachment must not be text-bearing")
		}
		if !att.IsImage() {
			t.Error("IsImage() = false")
		}
	})

	t.Run("unsupported type rejected", func(t *testing.T) {
		if _, err := svc.FromUpload("a.bin", "application/octet-stream", []byte{0}); err == nil {
			t.Error("binary blob accepted")
		}
	})
}

func TestFromURL(t *testing.T) {
	svc := NewService(nil)

	att, err := svc.FromURL("docs", "https://example.com/page")
	if err != nil {
		t.Fatalf("FromURL() error = %v", err)
	}
	if att.Kind != types.AttachmentURL || att.Content != "https://example.com/page" {
		t.Errorf("attachment = %+v", att)
	}
	if !att.IsTextBearing() {
		t.Error("url attachment should be text-bearing")
	}

	t.Run("name defaults to host", func(t *testing.T) {
		att, err := svc.FromURL("", "https://example.com/page")
		if err != nil {
			t.Fatalf("FromURL() error = %v", err)
		}
		if att.Name != "example.com" {
			t.Errorf("Name = %q", att.Name)
		}
	})

	t.Run("bad scheme rejected", func(t *testing.T) {
		if _, err := svc.FromURL("x", "ftp://example.com"); err == nil {
			t.Error("non-http url accepted")
		}
	})
}

func TestDecodeImageDataURI(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte{1, 2, 3})

	img, err := DecodeImageDataURI("data:image/png;base64," + payload)
	if err != nil {
		t.Fatalf("DecodeImageDataURI() error = %v", err)
	}
	if img.MimeType != "image/png" || img.Base64 != payload {
		t.Errorf("image = %+v", img)
	}

	for _, bad := range []string{
		"image/png;base64," + payload,
		"data:image/png," + payload,
		"data:text/plain;base64," + payload,
		"data:image/png;base64,!!!",
	} {
		if _, err := DecodeImageDataURI(bad); err == nil {
			t.Errorf("DecodeImageDataURI(%q) accepted", bad)
		}
	}
}

func TestTextFromContent(t *testing.T) {
	content := []byte(`BT /F1 12 Tf 72 712 Td (Hello World) Tj ET
BT [(frag)-250(mented)] TJ ET
BT (escaped \(paren\) and \\slash) Tj ET`)

	got := textFromContent(content)
	for _, want := range []string{"Hello World", "fragmented", "escaped (paren) and \\slash"} {
		if !strings.Contains(got, want) {
			t.Errorf("textFromContent() = %q, missing %q", got, want)
		}
	}
}

func TestDecodePDFString(t *testing.T) {
	tests := []struct{ in, want string }{
		{`plain`, "plain"},
		{`a\nb`, "a\nb"},
		{`\(x\)`, "(x)"},
		{`\\`, `\`},
		{`\101`, "A"},
		{`\53`, "+"},
	}
	for _, tt := range tests {
		if got := decodePDFString(tt.in); got != tt.want {
			t.Errorf("decodePDFString(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
