// Package types defines the core entities shared across promptdeck:
// content items (prompts, agents, personas), attachments, context
// documents, comments, and users.
package types

import (
	"fmt"
	"strings"
)

// ItemKind discriminates the content item union.
type ItemKind string

const (
	KindPrompt  ItemKind = "prompt"
	KindAgent   ItemKind = "agent"
	KindPersona ItemKind = "persona"
)

// Valid reports whether k is a known item kind.
func (k ItemKind) Valid() bool {
	switch k {
	case KindPrompt, KindAgent, KindPersona:
		return true
	}
	return false
}

// InputKind is a multimodal input a prompt declares support for.
type InputKind string

const (
	InputImage InputKind = "image"
	InputAudio InputKind = "audio"
	InputVideo InputKind = "video"
)

// ContentItem is the tagged union of the three shareable item variants.
// Kind determines which variant-specific field is populated: prompts carry
// Template (and Category/SupportedInputs); agents and personas carry
// SystemInstruction. Exactly one of the two is ever set.
type ContentItem struct {
	ID          string   `json:"id"`
	Kind        ItemKind `json:"kind"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Author      string   `json:"author,omitempty"`
	CreatedAt   int64    `json:"createdAt,omitempty"`
	IsPublic    bool     `json:"isPublic"`

	// Prompt variant.
	Template        string      `json:"text,omitempty"`
	Category        string      `json:"category,omitempty"`
	SupportedInputs []InputKind `json:"supportedInputs,omitempty"`

	// Agent / persona variant.
	SystemInstruction string `json:"systemInstruction,omitempty"`

	// Derived counters, filled on reads, never stored.
	LikeCount    int `json:"likeCount,omitempty"`
	CommentCount int `json:"commentCount,omitempty"`

	Attachments []Attachment `json:"attachments,omitempty"`
}

// Validate checks the variant invariant: prompts have a template and no
// system instruction, agents/personas the reverse.
func (ci *ContentItem) Validate() error {
	if !ci.Kind.Valid() {
		return fmt.Errorf("unknown item kind %q", ci.Kind)
	}
	if strings.TrimSpace(ci.Title) == "" {
		return fmt.Errorf("item title is required")
	}
	switch ci.Kind {
	case KindPrompt:
		if ci.SystemInstruction != "" {
			return fmt.Errorf("prompt item must not carry a system instruction")
		}
	case KindAgent, KindPersona:
		if ci.Template != "" {
			return fmt.Errorf("%s item must not carry template text", ci.Kind)
		}
		if ci.SystemInstruction == "" {
			return fmt.Errorf("%s item requires a system instruction", ci.Kind)
		}
	}
	return nil
}

// IsSystemItem reports whether the item routes a system instruction
// out-of-band (agents and personas) rather than a prompt body.
func (ci *ContentItem) IsSystemItem() bool {
	return ci.Kind == KindAgent || ci.Kind == KindPersona
}

// AttachmentKind distinguishes uploaded files from URL references.
type AttachmentKind string

const (
	AttachmentFile AttachmentKind = "file"
	AttachmentURL  AttachmentKind = "url"
)

// Attachment is supplementary content bound to an item. Content holds the
// URL for url-kind attachments, extracted text for text-bearing files, and
// base64 data for images.
type Attachment struct {
	ID       string         `json:"id"`
	ItemID   string         `json:"itemId"`
	Name     string         `json:"name"`
	Kind     AttachmentKind `json:"type"`
	MimeType string         `json:"mimeType,omitempty"`
	Content  string         `json:"content"`
}

// IsTextBearing reports whether the attachment contributes text context
// during prompt composition. URL references and text-like MIME types
// qualify; images do not.
func (a *Attachment) IsTextBearing() bool {
	if a.Kind == AttachmentURL {
		return true
	}
	return strings.HasPrefix(a.MimeType, "text") ||
		a.MimeType == "application/pdf" ||
		a.MimeType == "text/csv"
}

// IsImage reports whether the attachment holds image data.
func (a *Attachment) IsImage() bool {
	return strings.HasPrefix(a.MimeType, "image/")
}

// ContextDocument is a reusable block of reference text that can be
// injected verbatim ahead of a composed prompt.
type ContextDocument struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Content     string   `json:"content"`
	Author      string   `json:"author,omitempty"`
	Tags        []string `json:"tags"`
	IsPublic    bool     `json:"isPublic"`
}

// Comment is a user comment on a content item.
type Comment struct {
	ID           string `json:"id"`
	ItemID       string `json:"itemId"`
	UserID       string `json:"userId"`
	AuthorName   string `json:"authorName"`
	AuthorAvatar string `json:"authorAvatar,omitempty"`
	Content      string `json:"content"`
	CreatedAt    int64  `json:"createdAt"`
}

// Like records that a user liked an item. One row per (item, user) pair.
type Like struct {
	ItemID string `json:"itemId"`
	UserID string `json:"userId"`
}

// User is a registered account. PasswordHash is a bcrypt hash and is never
// serialized in API responses.
type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	AvatarURL    string `json:"avatarUrl,omitempty"`
	Role         string `json:"role"`
	PasswordHash string `json:"-"`
	Bio          string `json:"bio,omitempty"`
	Website      string `json:"website,omitempty"`
	GitHub       string `json:"github,omitempty"`
}
