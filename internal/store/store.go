// Package store persists promptdeck's data in a single JSON file. All
// access goes through a mutex-guarded Store; writes rewrite the file
// atomically via a temp file and rename.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/promptdeck/promptdeck/internal/types"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// document is the on-disk shape.
type document struct {
	Items    []types.ContentItem     `json:"items"`
	Contexts []types.ContextDocument `json:"contexts"`
	Comments []types.Comment         `json:"comments"`
	Likes    []types.Like            `json:"likes"`
	Users    []types.User            `json:"users"`
	Tokens   map[string]string       `json:"tokens"`
	Settings map[string]string       `json:"settings"`
}

// Store is a file-backed repository for items, context documents, likes,
// comments, users, auth tokens, and settings.
type Store struct {
	mu     sync.RWMutex
	path   string
	logger *slog.Logger
	doc    document
}

// Config holds store configuration.
type Config struct {
	// Path is the data file location.
	Path string
	// Logger for store events. Defaults to slog.Default().
	Logger *slog.Logger
	// Seed loads the bundled seed data when the file does not exist yet.
	Seed bool
}

// Open loads the data file at cfg.Path, creating it (optionally seeded)
// when absent.
func Open(cfg Config) (*Store, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		path:   cfg.Path,
		logger: logger,
		doc: document{
			Tokens:   make(map[string]string),
			Settings: make(map[string]string),
		},
	}

	raw, err := os.ReadFile(cfg.Path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if cfg.Seed {
			if err := s.applySeed(); err != nil {
				return nil, fmt.Errorf("apply seed data: %w", err)
			}
			logger.Info("seeded new data file", "path", cfg.Path,
				"items", len(s.doc.Items), "contexts", len(s.doc.Contexts))
		}
		if err := s.flushLocked(); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, fmt.Errorf("read data file: %w", err)
	default:
		if err := json.Unmarshal(raw, &s.doc); err != nil {
			return nil, fmt.Errorf("parse data file %s: %w", cfg.Path, err)
		}
		if s.doc.Tokens == nil {
			s.doc.Tokens = make(map[string]string)
		}
		if s.doc.Settings == nil {
			s.doc.Settings = make(map[string]string)
		}
		logger.Info("loaded data file", "path", cfg.Path, "items", len(s.doc.Items))
	}
	return s, nil
}

// flushLocked writes the document to disk. Callers hold s.mu (write).
func (s *Store) flushLocked() error {
	raw, err := json.MarshalIndent(&s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal data: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write data file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace data file: %w", err)
	}
	return nil
}

// now returns the current time in epoch milliseconds.
func now() int64 { return time.Now().UnixMilli() }

// newID returns a fresh identifier.
func newID() string { return uuid.New().String() }

// --- content items ---

// ListItems returns items of the given kind, newest first, with derived
// like/comment counts filled in. When publicOnly is true, private items
// are skipped.
func (s *Store) ListItems(kind types.ItemKind, publicOnly bool) []types.ContentItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []types.ContentItem
	for i := range s.doc.Items {
		item := s.doc.Items[i]
		if item.Kind != kind {
			continue
		}
		if publicOnly && !item.IsPublic {
			continue
		}
		s.decorateLocked(&item)
		out = append(out, item)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out
}

// GetItem returns one item with derived counts.
func (s *Store) GetItem(id string) (types.ContentItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.doc.Items {
		if s.doc.Items[i].ID == id {
			item := s.doc.Items[i]
			s.decorateLocked(&item)
			return item, nil
		}
	}
	return types.ContentItem{}, fmt.Errorf("item %s: %w", id, ErrNotFound)
}

// CreateItem validates and stores a new item, assigning id and timestamp.
func (s *Store) CreateItem(item types.ContentItem) (types.ContentItem, error) {
	if err := item.Validate(); err != nil {
		return types.ContentItem{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item.ID = newID()
	item.CreatedAt = now()
	for i := range item.Attachments {
		if item.Attachments[i].ID == "" {
			item.Attachments[i].ID = newID()
		}
		item.Attachments[i].ItemID = item.ID
	}
	s.doc.Items = append(s.doc.Items, item)
	if err := s.flushLocked(); err != nil {
		return types.ContentItem{}, err
	}
	return item, nil
}

// UpdateItem replaces an existing item's mutable fields. Identity fields
// (id, kind, author, creation time) are preserved.
func (s *Store) UpdateItem(id string, item types.ContentItem) (types.ContentItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.doc.Items {
		if s.doc.Items[i].ID != id {
			continue
		}
		existing := &s.doc.Items[i]
		item.ID = existing.ID
		item.Kind = existing.Kind
		item.Author = existing.Author
		item.CreatedAt = existing.CreatedAt
		if err := item.Validate(); err != nil {
			return types.ContentItem{}, err
		}
		for j := range item.Attachments {
			if item.Attachments[j].ID == "" {
				item.Attachments[j].ID = newID()
			}
			item.Attachments[j].ItemID = item.ID
		}
		*existing = item
		if err := s.flushLocked(); err != nil {
			return types.ContentItem{}, err
		}
		return item, nil
	}
	return types.ContentItem{}, fmt.Errorf("item %s: %w", id, ErrNotFound)
}

// DeleteItem removes an item and cascades to its likes and comments.
func (s *Store) DeleteItem(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.doc.Items {
		if s.doc.Items[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("item %s: %w", id, ErrNotFound)
	}

	s.doc.Items = append(s.doc.Items[:idx], s.doc.Items[idx+1:]...)

	likes := s.doc.Likes[:0]
	for _, l := range s.doc.Likes {
		if l.ItemID != id {
			likes = append(likes, l)
		}
	}
	s.doc.Likes = likes

	comments := s.doc.Comments[:0]
	for _, c := range s.doc.Comments {
		if c.ItemID != id {
			comments = append(comments, c)
		}
	}
	s.doc.Comments = comments

	return s.flushLocked()
}

// decorateLocked fills derived counters. Callers hold s.mu.
func (s *Store) decorateLocked(item *types.ContentItem) {
	var likes, comments int
	for _, l := range s.doc.Likes {
		if l.ItemID == item.ID {
			likes++
		}
	}
	for _, c := range s.doc.Comments {
		if c.ItemID == item.ID {
			comments++
		}
	}
	item.LikeCount = likes
	item.CommentCount = comments
}

// --- context documents ---

// ListContexts returns context documents; private ones are skipped when
// publicOnly is set.
func (s *Store) ListContexts(publicOnly bool) []types.ContextDocument {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []types.ContextDocument
	for _, c := range s.doc.Contexts {
		if publicOnly && !c.IsPublic {
			continue
		}
		out = append(out, c)
	}
	return out
}

// GetContext returns one context document.
func (s *Store) GetContext(id string) (types.ContextDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.doc.Contexts {
		if c.ID == id {
			return c, nil
		}
	}
	return types.ContextDocument{}, fmt.Errorf("context %s: %w", id, ErrNotFound)
}

// CreateContext stores a new context document.
func (s *Store) CreateContext(doc types.ContextDocument) (types.ContextDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc.ID = newID()
	s.doc.Contexts = append(s.doc.Contexts, doc)
	if err := s.flushLocked(); err != nil {
		return types.ContextDocument{}, err
	}
	return doc, nil
}

// UpdateContext replaces an existing context document.
func (s *Store) UpdateContext(id string, doc types.ContextDocument) (types.ContextDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.doc.Contexts {
		if s.doc.Contexts[i].ID == id {
			doc.ID = id
			s.doc.Contexts[i] = doc
			if err := s.flushLocked(); err != nil {
				return types.ContextDocument{}, err
			}
			return doc, nil
		}
	}
	return types.ContextDocument{}, fmt.Errorf("context %s: %w", id, ErrNotFound)
}

// DeleteContext removes a context document.
func (s *Store) DeleteContext(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.doc.Contexts {
		if s.doc.Contexts[i].ID == id {
			s.doc.Contexts = append(s.doc.Contexts[:i], s.doc.Contexts[i+1:]...)
			return s.flushLocked()
		}
	}
	return fmt.Errorf("context %s: %w", id, ErrNotFound)
}

// --- likes ---

// AddLike records a like. Liking twice is a no-op.
func (s *Store) AddLike(itemID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.itemExistsLocked(itemID) {
		return fmt.Errorf("item %s: %w", itemID, ErrNotFound)
	}
	for _, l := range s.doc.Likes {
		if l.ItemID == itemID && l.UserID == userID {
			return nil
		}
	}
	s.doc.Likes = append(s.doc.Likes, types.Like{ItemID: itemID, UserID: userID})
	return s.flushLocked()
}

// RemoveLike deletes a like if present.
func (s *Store) RemoveLike(itemID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, l := range s.doc.Likes {
		if l.ItemID == itemID && l.UserID == userID {
			s.doc.Likes = append(s.doc.Likes[:i], s.doc.Likes[i+1:]...)
			return s.flushLocked()
		}
	}
	return nil
}

// HasLiked reports whether the user liked the item.
func (s *Store) HasLiked(itemID, userID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, l := range s.doc.Likes {
		if l.ItemID == itemID && l.UserID == userID {
			return true
		}
	}
	return false
}

func (s *Store) itemExistsLocked(id string) bool {
	for i := range s.doc.Items {
		if s.doc.Items[i].ID == id {
			return true
		}
	}
	return false
}

// --- comments ---

// ListComments returns an item's comments, newest first.
func (s *Store) ListComments(itemID string) []types.Comment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []types.Comment
	for _, c := range s.doc.Comments {
		if c.ItemID == itemID {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out
}

// ListAllComments returns every comment, newest first (moderation view).
func (s *Store) ListAllComments() []types.Comment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.Comment, len(s.doc.Comments))
	copy(out, s.doc.Comments)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out
}

// AddComment stores a new comment on an item.
func (s *Store) AddComment(c types.Comment) (types.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.itemExistsLocked(c.ItemID) {
		return types.Comment{}, fmt.Errorf("item %s: %w", c.ItemID, ErrNotFound)
	}
	c.ID = newID()
	c.CreatedAt = now()
	s.doc.Comments = append(s.doc.Comments, c)
	if err := s.flushLocked(); err != nil {
		return types.Comment{}, err
	}
	return c, nil
}

// DeleteComment removes a comment by id.
func (s *Store) DeleteComment(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, c := range s.doc.Comments {
		if c.ID == id {
			s.doc.Comments = append(s.doc.Comments[:i], s.doc.Comments[i+1:]...)
			return s.flushLocked()
		}
	}
	return fmt.Errorf("comment %s: %w", id, ErrNotFound)
}

// --- users ---

// CreateUser stores a new user, assigning an id. Email must be unique.
func (s *Store) CreateUser(u types.User) (types.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.doc.Users {
		if existing.Email == u.Email {
			return types.User{}, fmt.Errorf("email already registered: %s", u.Email)
		}
	}
	u.ID = newID()
	s.doc.Users = append(s.doc.Users, u)
	if err := s.flushLocked(); err != nil {
		return types.User{}, err
	}
	return u, nil
}

// GetUser returns a user by id.
func (s *Store) GetUser(id string) (types.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.doc.Users {
		if u.ID == id {
			return u, nil
		}
	}
	return types.User{}, fmt.Errorf("user %s: %w", id, ErrNotFound)
}

// GetUserByEmail returns a user by email.
func (s *Store) GetUserByEmail(email string) (types.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.doc.Users {
		if u.Email == email {
			return u, nil
		}
	}
	return types.User{}, fmt.Errorf("user %s: %w", email, ErrNotFound)
}

// ListUsers returns all users.
func (s *Store) ListUsers() []types.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.User, len(s.doc.Users))
	copy(out, s.doc.Users)
	return out
}

// UpdateUser replaces a user's profile fields, preserving id, email, and
// password hash.
func (s *Store) UpdateUser(id string, u types.User) (types.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.doc.Users {
		if s.doc.Users[i].ID != id {
			continue
		}
		existing := &s.doc.Users[i]
		u.ID = existing.ID
		u.Email = existing.Email
		u.PasswordHash = existing.PasswordHash
		*existing = u
		if err := s.flushLocked(); err != nil {
			return types.User{}, err
		}
		return u, nil
	}
	return types.User{}, fmt.Errorf("user %s: %w", id, ErrNotFound)
}

// DeleteUser removes a user and their tokens.
func (s *Store) DeleteUser(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.doc.Users {
		if s.doc.Users[i].ID != id {
			continue
		}
		s.doc.Users = append(s.doc.Users[:i], s.doc.Users[i+1:]...)
		for token, userID := range s.doc.Tokens {
			if userID == id {
				delete(s.doc.Tokens, token)
			}
		}
		return s.flushLocked()
	}
	return fmt.Errorf("user %s: %w", id, ErrNotFound)
}

// --- auth tokens ---

// SaveToken associates a bearer token with a user.
func (s *Store) SaveToken(token, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Tokens[token] = userID
	return s.flushLocked()
}

// UserForToken resolves a bearer token to its user id.
func (s *Store) UserForToken(token string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userID, ok := s.doc.Tokens[token]
	if !ok {
		return "", fmt.Errorf("token: %w", ErrNotFound)
	}
	return userID, nil
}

// DeleteToken revokes a bearer token.
func (s *Store) DeleteToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.doc.Tokens, token)
	return s.flushLocked()
}

// --- settings ---

// Setting returns one settings value.
func (s *Store) Setting(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.doc.Settings[key]
	if !ok {
		return "", fmt.Errorf("setting %s: %w", key, ErrNotFound)
	}
	return v, nil
}

// SetSetting stores one settings value.
func (s *Store) SetSetting(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Settings[key] = value
	return s.flushLocked()
}

// AllSettings returns a copy of the settings map.
func (s *Store) AllSettings() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.doc.Settings))
	for k, v := range s.doc.Settings {
		out[k] = v
	}
	return out
}

// DeleteSetting removes one settings key.
func (s *Store) DeleteSetting(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.doc.Settings, key)
	return s.flushLocked()
}
