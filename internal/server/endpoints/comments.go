package endpoints

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/promptdeck/promptdeck/internal/api"
	"github.com/promptdeck/promptdeck/internal/store"
	"github.com/promptdeck/promptdeck/internal/svcctx"
	"github.com/promptdeck/promptdeck/internal/types"
)

// CommentsResponse contains comments for one item, newest first.
type CommentsResponse struct {
	Comments []types.Comment `json:"comments"`
}

// CommentResponse contains a single comment.
type CommentResponse struct {
	Comment types.Comment `json:"comment"`
}

// AddCommentRequest is the request body for posting a comment.
type AddCommentRequest struct {
	Content string `json:"content"`
}

// ListCommentsEndpoint handles GET /api/items/{id}/comments.
type ListCommentsEndpoint struct{}

func (e *ListCommentsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/items/{id}/comments", e.handler
}

func (e *ListCommentsEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		List comments on an item
//	@Tags			comments
//	@Produce		json
//	@Param			id	path		string	true	"Item id"
//	@Success		200	{object}	CommentsResponse
//	@Router			/api/items/{id}/comments [get]
func (e *ListCommentsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	data := svcctx.StoreFrom(r.Context())
	writeJSON(w, http.StatusOK, CommentsResponse{Comments: data.ListComments(r.PathValue("id"))})
}

func (e *ListCommentsEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "list <item-id>",
		Short: "List comments on an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp CommentsResponse
			if err := client.Get(cmd.Context(), "/api/items/"+args[0]+"/comments", &resp); err != nil {
				return err
			}
			return api.Output(resp.Comments)
		},
	}
}

// AddCommentEndpoint handles POST /api/items/{id}/comments.
type AddCommentEndpoint struct{}

func (e *AddCommentEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/items/{id}/comments", e.handler
}

func (e *AddCommentEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Post a comment
//	@Tags			comments
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Item id"
//	@Param			body	body		AddCommentRequest	true	"Comment text"
//	@Success		201		{object}	CommentResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/api/items/{id}/comments [post]
func (e *AddCommentEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req AddCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, "comment content is required")
		return
	}

	data := svcctx.StoreFrom(r.Context())
	comment, err := data.AddComment(types.Comment{
		ItemID:       r.PathValue("id"),
		UserID:       user.ID,
		AuthorName:   user.Name,
		AuthorAvatar: user.AvatarURL,
		Content:      req.Content,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "item not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, CommentResponse{Comment: comment})
}

func (e *AddCommentEndpoint) Command(getServerURL func() string) *cobra.Command {
	var token string
	var content string
	cmd := &cobra.Command{
		Use:   "add <item-id>",
		Short: "Post a comment on an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			client.SetToken(token)
			var resp CommentResponse
			req := AddCommentRequest{Content: content}
			if err := client.Post(cmd.Context(), "/api/items/"+args[0]+"/comments", req, &resp); err != nil {
				return err
			}
			return api.Output(resp.Comment)
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "Bearer token")
	cmd.Flags().StringVar(&content, "content", "", "Comment text")
	_ = cmd.MarkFlagRequired("token")
	_ = cmd.MarkFlagRequired("content")
	return cmd
}

// DeleteCommentEndpoint handles DELETE /api/comments/{id}.
type DeleteCommentEndpoint struct{}

func (e *DeleteCommentEndpoint) Route() (string, string, http.HandlerFunc) {
	return "DELETE", "/api/comments/{id}", e.handler
}

func (e *DeleteCommentEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Delete a comment
//	@Description	Authors can delete their own comments; admins can delete any
//	@Tags			comments
//	@Param			id	path	string	true	"Comment id"
//	@Success		204
//	@Failure		401	{object}	ErrorResponse
//	@Failure		403	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/api/comments/{id} [delete]
func (e *DeleteCommentEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	id := r.PathValue("id")
	data := svcctx.StoreFrom(r.Context())

	if user.Role != "admin" {
		owned := false
		for _, c := range data.ListAllComments() {
			if c.ID == id && c.UserID == user.ID {
				owned = true
				break
			}
		}
		if !owned {
			writeError(w, http.StatusForbidden, "cannot delete another user's comment")
			return
		}
	}

	if err := data.DeleteComment(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "comment not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (e *DeleteCommentEndpoint) Command(getServerURL func() string) *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "delete <comment-id>",
		Short: "Delete a comment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			client.SetToken(token)
			return client.Delete(cmd.Context(), "/api/comments/"+args[0])
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "Bearer token")
	_ = cmd.MarkFlagRequired("token")
	return cmd
}
