package endpoints

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/promptdeck/promptdeck/internal/api"
	"github.com/promptdeck/promptdeck/internal/store"
	"github.com/promptdeck/promptdeck/internal/svcctx"
	"github.com/promptdeck/promptdeck/internal/types"
)

// ContextsResponse contains a list of context documents.
type ContextsResponse struct {
	Contexts []types.ContextDocument `json:"contexts"`
}

// ContextResponse contains a single context document.
type ContextResponse struct {
	Context types.ContextDocument `json:"context"`
}

// ListContextsEndpoint handles GET /api/contexts.
type ListContextsEndpoint struct{}

func (e *ListContextsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/contexts", e.handler
}

func (e *ListContextsEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		List context documents
//	@Tags			contexts
//	@Produce		json
//	@Success		200	{object}	ContextsResponse
//	@Router			/api/contexts [get]
func (e *ListContextsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	data := svcctx.StoreFrom(r.Context())
	_, authed := currentUser(r)
	writeJSON(w, http.StatusOK, ContextsResponse{Contexts: data.ListContexts(!authed)})
}

func (e *ListContextsEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List context documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp ContextsResponse
			if err := client.Get(cmd.Context(), "/api/contexts", &resp); err != nil {
				return err
			}
			return api.Output(resp.Contexts)
		},
	}
}

// GetContextEndpoint handles GET /api/contexts/{id}.
type GetContextEndpoint struct{}

func (e *GetContextEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/contexts/{id}", e.handler
}

func (e *GetContextEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Get a context document
//	@Tags			contexts
//	@Produce		json
//	@Param			id	path		string	true	"Context id"
//	@Success		200	{object}	ContextResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/api/contexts/{id} [get]
func (e *GetContextEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	data := svcctx.StoreFrom(r.Context())
	doc, err := data.GetContext(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "context not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ContextResponse{Context: doc})
}

func (e *GetContextEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Get a context document by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp ContextResponse
			if err := client.Get(cmd.Context(), "/api/contexts/"+args[0], &resp); err != nil {
				return err
			}
			return api.Output(resp.Context)
		},
	}
}

// CreateContextEndpoint handles POST /api/contexts.
type CreateContextEndpoint struct{}

func (e *CreateContextEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/contexts", e.handler
}

func (e *CreateContextEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Publish a context document
//	@Tags			contexts
//	@Accept			json
//	@Produce		json
//	@Param			body	body		types.ContextDocument	true	"Context payload"
//	@Success		201		{object}	ContextResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Router			/api/contexts [post]
func (e *CreateContextEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var doc types.ContextDocument
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if doc.Author == "" {
		doc.Author = user.Name
	}

	data := svcctx.StoreFrom(r.Context())
	created, err := data.CreateContext(doc)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, ContextResponse{Context: created})
}

func (e *CreateContextEndpoint) Command(getServerURL func() string) *cobra.Command {
	var file string
	var token string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Publish a context document from a JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			var doc types.ContextDocument
			if err := json.Unmarshal(raw, &doc); err != nil {
				return err
			}

			client := api.NewClient(getServerURL())
			client.SetToken(token)
			var resp ContextResponse
			if err := client.Post(cmd.Context(), "/api/contexts", doc, &resp); err != nil {
				return err
			}
			return api.Output(resp.Context)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Path to context JSON")
	cmd.Flags().StringVar(&token, "token", "", "Bearer token")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("token")
	return cmd
}

// UpdateContextEndpoint handles PUT /api/contexts/{id}.
type UpdateContextEndpoint struct{}

func (e *UpdateContextEndpoint) Route() (string, string, http.HandlerFunc) {
	return "PUT", "/api/contexts/{id}", e.handler
}

func (e *UpdateContextEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Update a context document
//	@Tags			contexts
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Context id"
//	@Param			body	body		types.ContextDocument	true	"Context payload"
//	@Success		200		{object}	ContextResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/api/contexts/{id} [put]
func (e *UpdateContextEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}

	var doc types.ContextDocument
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	data := svcctx.StoreFrom(r.Context())
	updated, err := data.UpdateContext(r.PathValue("id"), doc)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "context not found")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ContextResponse{Context: updated})
}

func (e *UpdateContextEndpoint) Command(getServerURL func() string) *cobra.Command {
	var file string
	var token string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a context document from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			var doc types.ContextDocument
			if err := json.Unmarshal(raw, &doc); err != nil {
				return err
			}

			client := api.NewClient(getServerURL())
			client.SetToken(token)
			var resp ContextResponse
			if err := client.Put(cmd.Context(), "/api/contexts/"+args[0], doc, &resp); err != nil {
				return err
			}
			return api.Output(resp.Context)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Path to context JSON")
	cmd.Flags().StringVar(&token, "token", "", "Bearer token")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("token")
	return cmd
}

// DeleteContextEndpoint handles DELETE /api/contexts/{id}.
type DeleteContextEndpoint struct{}

func (e *DeleteContextEndpoint) Route() (string, string, http.HandlerFunc) {
	return "DELETE", "/api/contexts/{id}", e.handler
}

func (e *DeleteContextEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Delete a context document
//	@Tags			contexts
//	@Param			id	path	string	true	"Context id"
//	@Success		204
//	@Failure		401	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/api/contexts/{id} [delete]
func (e *DeleteContextEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}

	data := svcctx.StoreFrom(r.Context())
	if err := data.DeleteContext(r.PathValue("id")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "context not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (e *DeleteContextEndpoint) Command(getServerURL func() string) *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a context document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			client.SetToken(token)
			return client.Delete(cmd.Context(), "/api/contexts/"+args[0])
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "Bearer token")
	_ = cmd.MarkFlagRequired("token")
	return cmd
}
