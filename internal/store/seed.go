package store

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/promptdeck/promptdeck/internal/types"
)

//go:embed seed.json
var seedJSON []byte

//go:embed seed_schema.json
var seedSchema string

// seedDocument is the subset of the data file shipped as starter content.
type seedDocument struct {
	Items    []seedItem    `json:"items"`
	Contexts []seedContext `json:"contexts"`
}

type seedItem struct {
	ID                string   `json:"id"`
	Kind              string   `json:"kind"`
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	Tags              []string `json:"tags"`
	Author            string   `json:"author"`
	IsPublic          bool     `json:"isPublic"`
	Text              string   `json:"text,omitempty"`
	Category          string   `json:"category,omitempty"`
	SystemInstruction string   `json:"systemInstruction,omitempty"`
}

type seedContext struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Content     string   `json:"content"`
	Author      string   `json:"author"`
	Tags        []string `json:"tags"`
	IsPublic    bool     `json:"isPublic"`
}

// validateSeed checks the bundled seed document against its schema. A
// schema violation here is a build defect, not a runtime condition, but
// the same validation path is reused for operator-supplied seed files.
func validateSeed(raw []byte) error {
	sch, err := jsonschema.CompileString("seed_schema.json", seedSchema)
	if err != nil {
		return fmt.Errorf("compile seed schema: %w", err)
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("parse seed data: %w", err)
	}
	if err := sch.Validate(v); err != nil {
		return fmt.Errorf("seed data invalid: %w", err)
	}
	return nil
}

// applySeed loads the bundled starter content into an empty store.
func (s *Store) applySeed() error {
	return s.applySeedBytes(seedJSON)
}

// applySeedBytes validates and loads a seed document.
func (s *Store) applySeedBytes(raw []byte) error {
	if err := validateSeed(raw); err != nil {
		return err
	}

	var seed seedDocument
	if err := json.Unmarshal(raw, &seed); err != nil {
		return fmt.Errorf("parse seed data: %w", err)
	}

	ts := now()
	for _, it := range seed.Items {
		s.doc.Items = append(s.doc.Items, seedToItem(it, ts))
	}
	for _, c := range seed.Contexts {
		s.doc.Contexts = append(s.doc.Contexts, seedToContext(c))
	}
	return nil
}

func seedToItem(it seedItem, createdAt int64) types.ContentItem {
	return types.ContentItem{
		ID:                it.ID,
		Kind:              types.ItemKind(it.Kind),
		Title:             it.Title,
		Description:       it.Description,
		Tags:              it.Tags,
		Author:            it.Author,
		CreatedAt:         createdAt,
		IsPublic:          it.IsPublic,
		Template:          it.Text,
		Category:          it.Category,
		SystemInstruction: it.SystemInstruction,
	}
}

func seedToContext(c seedContext) types.ContextDocument {
	return types.ContextDocument{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Content:     c.Content,
		Author:      c.Author,
		Tags:        c.Tags,
		IsPublic:    c.IsPublic,
	}
}
