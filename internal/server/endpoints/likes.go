package endpoints

import (
	"errors"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/promptdeck/promptdeck/internal/api"
	"github.com/promptdeck/promptdeck/internal/store"
	"github.com/promptdeck/promptdeck/internal/svcctx"
)

// LikeResponse reports like state for one (item, user) pair.
type LikeResponse struct {
	ItemID string `json:"itemId"`
	Liked  bool   `json:"liked"`
}

// AddLikeEndpoint handles POST /api/items/{id}/like.
type AddLikeEndpoint struct{}

func (e *AddLikeEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/items/{id}/like", e.handler
}

func (e *AddLikeEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Like an item
//	@Description	Record a like; repeated likes are a no-op
//	@Tags			likes
//	@Produce		json
//	@Param			id	path		string	true	"Item id"
//	@Success		200	{object}	LikeResponse
//	@Failure		401	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/api/items/{id}/like [post]
func (e *AddLikeEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	itemID := r.PathValue("id")
	data := svcctx.StoreFrom(r.Context())
	if err := data.AddLike(itemID, user.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "item not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, LikeResponse{ItemID: itemID, Liked: true})
}

func (e *AddLikeEndpoint) Command(getServerURL func() string) *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "add <item-id>",
		Short: "Like an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			client.SetToken(token)
			var resp LikeResponse
			if err := client.Post(cmd.Context(), "/api/items/"+args[0]+"/like", nil, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "Bearer token")
	_ = cmd.MarkFlagRequired("token")
	return cmd
}

// RemoveLikeEndpoint handles DELETE /api/items/{id}/like.
type RemoveLikeEndpoint struct{}

func (e *RemoveLikeEndpoint) Route() (string, string, http.HandlerFunc) {
	return "DELETE", "/api/items/{id}/like", e.handler
}

func (e *RemoveLikeEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Remove a like
//	@Tags			likes
//	@Produce		json
//	@Param			id	path		string	true	"Item id"
//	@Success		200	{object}	LikeResponse
//	@Failure		401	{object}	ErrorResponse
//	@Router			/api/items/{id}/like [delete]
func (e *RemoveLikeEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	itemID := r.PathValue("id")
	data := svcctx.StoreFrom(r.Context())
	if err := data.RemoveLike(itemID, user.ID); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, LikeResponse{ItemID: itemID, Liked: false})
}

func (e *RemoveLikeEndpoint) Command(getServerURL func() string) *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "remove <item-id>",
		Short: "Remove a like from an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			client.SetToken(token)
			return client.Delete(cmd.Context(), "/api/items/"+args[0]+"/like")
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "Bearer token")
	_ = cmd.MarkFlagRequired("token")
	return cmd
}

// CheckLikeEndpoint handles GET /api/items/{id}/like.
type CheckLikeEndpoint struct{}

func (e *CheckLikeEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/items/{id}/like", e.handler
}

func (e *CheckLikeEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Check whether the caller liked an item
//	@Tags			likes
//	@Produce		json
//	@Param			id	path		string	true	"Item id"
//	@Success		200	{object}	LikeResponse
//	@Failure		401	{object}	ErrorResponse
//	@Router			/api/items/{id}/like [get]
func (e *CheckLikeEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	itemID := r.PathValue("id")
	data := svcctx.StoreFrom(r.Context())
	writeJSON(w, http.StatusOK, LikeResponse{ItemID: itemID, Liked: data.HasLiked(itemID, user.ID)})
}

func (e *CheckLikeEndpoint) Command(getServerURL func() string) *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "check <item-id>",
		Short: "Check whether you liked an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			client.SetToken(token)
			var resp LikeResponse
			if err := client.Get(cmd.Context(), "/api/items/"+args[0]+"/like", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "Bearer token")
	_ = cmd.MarkFlagRequired("token")
	return cmd
}
