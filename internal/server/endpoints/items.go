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

// ItemsResponse contains a list of content items.
type ItemsResponse struct {
	Items []types.ContentItem `json:"items"`
}

// ItemResponse contains a single content item.
type ItemResponse struct {
	Item types.ContentItem `json:"item"`
}

// ListItemsEndpoint handles GET /api/{plural}. One instance per item kind.
type ListItemsEndpoint struct {
	Kind   types.ItemKind
	Plural string
}

func (e *ListItemsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/" + e.Plural, e.handler
}

func (e *ListItemsEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		List items
//	@Description	List content items of one kind, newest first, with like and comment counts
//	@Tags			items
//	@Produce		json
//	@Success		200	{object}	ItemsResponse
//	@Router			/api/prompts [get]
func (e *ListItemsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	data := svcctx.StoreFrom(r.Context())

	// Unauthenticated callers only see published items.
	_, authed := currentUser(r)
	items := data.ListItems(e.Kind, !authed)

	writeJSON(w, http.StatusOK, ItemsResponse{Items: items})
}

func (e *ListItemsEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List " + e.Plural,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp ItemsResponse
			if err := client.Get(cmd.Context(), "/api/"+e.Plural, &resp); err != nil {
				return err
			}
			return api.Output(resp.Items)
		},
	}
}

// GetItemEndpoint handles GET /api/{plural}/{id}.
type GetItemEndpoint struct {
	Kind   types.ItemKind
	Plural string
}

func (e *GetItemEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/" + e.Plural + "/{id}", e.handler
}

func (e *GetItemEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Get an item
//	@Description	Get a single content item by id
//	@Tags			items
//	@Produce		json
//	@Param			id	path		string	true	"Item id"
//	@Success		200	{object}	ItemResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/api/prompts/{id} [get]
func (e *GetItemEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	data := svcctx.StoreFrom(r.Context())

	item, err := data.GetItem(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "item not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if item.Kind != e.Kind {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}

	writeJSON(w, http.StatusOK, ItemResponse{Item: item})
}

func (e *GetItemEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Get a " + string(e.Kind) + " by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp ItemResponse
			if err := client.Get(cmd.Context(), "/api/"+e.Plural+"/"+args[0], &resp); err != nil {
				return err
			}
			return api.Output(resp.Item)
		},
	}
}

// CreateItemEndpoint handles POST /api/{plural}.
type CreateItemEndpoint struct {
	Kind   types.ItemKind
	Plural string
}

func (e *CreateItemEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/" + e.Plural, e.handler
}

func (e *CreateItemEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Publish an item
//	@Description	Create a new content item; requires authentication
//	@Tags			items
//	@Accept			json
//	@Produce		json
//	@Param			body	body		types.ContentItem	true	"Item payload"
//	@Success		201		{object}	ItemResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Router			/api/prompts [post]
func (e *CreateItemEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var item types.ContentItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	item.Kind = e.Kind
	if item.Author == "" {
		item.Author = user.Name
	}

	data := svcctx.StoreFrom(r.Context())
	created, err := data.CreateItem(item)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, ItemResponse{Item: created})
}

func (e *CreateItemEndpoint) Command(getServerURL func() string) *cobra.Command {
	var file string
	var token string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Publish a " + string(e.Kind) + " from a JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			var item types.ContentItem
			if err := json.Unmarshal(raw, &item); err != nil {
				return err
			}

			client := api.NewClient(getServerURL())
			client.SetToken(token)
			var resp ItemResponse
			if err := client.Post(cmd.Context(), "/api/"+e.Plural, item, &resp); err != nil {
				return err
			}
			return api.Output(resp.Item)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Path to item JSON")
	cmd.Flags().StringVar(&token, "token", "", "Bearer token")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("token")
	return cmd
}

// UpdateItemEndpoint handles PUT /api/{plural}/{id}.
type UpdateItemEndpoint struct {
	Kind   types.ItemKind
	Plural string
}

func (e *UpdateItemEndpoint) Route() (string, string, http.HandlerFunc) {
	return "PUT", "/api/" + e.Plural + "/{id}", e.handler
}

func (e *UpdateItemEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Update an item
//	@Description	Replace a content item's editable fields; requires authentication
//	@Tags			items
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Item id"
//	@Param			body	body		types.ContentItem	true	"Item payload"
//	@Success		200		{object}	ItemResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/api/prompts/{id} [put]
func (e *UpdateItemEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}

	var item types.ContentItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	item.Kind = e.Kind

	data := svcctx.StoreFrom(r.Context())
	updated, err := data.UpdateItem(r.PathValue("id"), item)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "item not found")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, ItemResponse{Item: updated})
}

func (e *UpdateItemEndpoint) Command(getServerURL func() string) *cobra.Command {
	var file string
	var token string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a " + string(e.Kind) + " from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			var item types.ContentItem
			if err := json.Unmarshal(raw, &item); err != nil {
				return err
			}

			client := api.NewClient(getServerURL())
			client.SetToken(token)
			var resp ItemResponse
			if err := client.Put(cmd.Context(), "/api/"+e.Plural+"/"+args[0], item, &resp); err != nil {
				return err
			}
			return api.Output(resp.Item)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Path to item JSON")
	cmd.Flags().StringVar(&token, "token", "", "Bearer token")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("token")
	return cmd
}

// DeleteItemEndpoint handles DELETE /api/{plural}/{id}.
type DeleteItemEndpoint struct {
	Kind   types.ItemKind
	Plural string
}

func (e *DeleteItemEndpoint) Route() (string, string, http.HandlerFunc) {
	return "DELETE", "/api/" + e.Plural + "/{id}", e.handler
}

func (e *DeleteItemEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Delete an item
//	@Description	Delete a content item and its likes and comments; requires authentication
//	@Tags			items
//	@Produce		json
//	@Param			id	path	string	true	"Item id"
//	@Success		204
//	@Failure		401	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/api/prompts/{id} [delete]
func (e *DeleteItemEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}

	data := svcctx.StoreFrom(r.Context())
	if err := data.DeleteItem(r.PathValue("id")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "item not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (e *DeleteItemEndpoint) Command(getServerURL func() string) *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a " + string(e.Kind),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			client.SetToken(token)
			return client.Delete(cmd.Context(), "/api/"+e.Plural+"/"+args[0])
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "Bearer token")
	_ = cmd.MarkFlagRequired("token")
	return cmd
}
