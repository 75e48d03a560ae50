package endpoints

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/promptdeck/promptdeck/internal/api"
	"github.com/promptdeck/promptdeck/internal/store"
	"github.com/promptdeck/promptdeck/internal/svcctx"
	"github.com/promptdeck/promptdeck/internal/types"
)

// UsersResponse contains all registered users.
type UsersResponse struct {
	Users []types.User `json:"users"`
}

// UserResponse contains a single user.
type UserResponse struct {
	User types.User `json:"user"`
}

// UpdateUserRequest carries the admin-editable user fields.
type UpdateUserRequest struct {
	Name      string `json:"name,omitempty"`
	Role      string `json:"role,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`
	Bio       string `json:"bio,omitempty"`
	Website   string `json:"website,omitempty"`
	GitHub    string `json:"github,omitempty"`
}

// ListUsersEndpoint handles GET /api/admin/users.
type ListUsersEndpoint struct{}

func (e *ListUsersEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/admin/users", e.handler
}

func (e *ListUsersEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		List users
//	@Description	Admin only
//	@Tags			admin
//	@Produce		json
//	@Success		200	{object}	UsersResponse
//	@Failure		401	{object}	ErrorResponse
//	@Failure		403	{object}	ErrorResponse
//	@Router			/api/admin/users [get]
func (e *ListUsersEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	data := svcctx.StoreFrom(r.Context())
	writeJSON(w, http.StatusOK, UsersResponse{Users: data.ListUsers()})
}

func (e *ListUsersEndpoint) Command(getServerURL func() string) *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List all users (admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			client.SetToken(token)
			var resp UsersResponse
			if err := client.Get(cmd.Context(), "/api/admin/users", &resp); err != nil {
				return err
			}
			return api.Output(resp.Users)
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "Bearer token")
	_ = cmd.MarkFlagRequired("token")
	return cmd
}

// UpdateUserEndpoint handles PUT /api/admin/users/{id}.
type UpdateUserEndpoint struct{}

func (e *UpdateUserEndpoint) Route() (string, string, http.HandlerFunc) {
	return "PUT", "/api/admin/users/{id}", e.handler
}

func (e *UpdateUserEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Update a user
//	@Description	Admin only; email and password hash are immutable here
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"User id"
//	@Param			body	body		UpdateUserRequest	true	"Fields to change"
//	@Success		200		{object}	UserResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		403		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/api/admin/users/{id} [put]
func (e *UpdateUserEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	data := svcctx.StoreFrom(r.Context())
	id := r.PathValue("id")

	existing, err := data.GetUser(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if req.Name != "" {
		existing.Name = req.Name
	}
	if req.Role != "" {
		existing.Role = req.Role
	}
	if req.AvatarURL != "" {
		existing.AvatarURL = req.AvatarURL
	}
	if req.Bio != "" {
		existing.Bio = req.Bio
	}
	if req.Website != "" {
		existing.Website = req.Website
	}
	if req.GitHub != "" {
		existing.GitHub = req.GitHub
	}

	updated, err := data.UpdateUser(id, existing)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, UserResponse{User: updated})
}

func (e *UpdateUserEndpoint) Command(getServerURL func() string) *cobra.Command {
	var token, role string
	cmd := &cobra.Command{
		Use:   "set-role <user-id>",
		Short: "Change a user's role (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			client.SetToken(token)
			var resp UserResponse
			req := UpdateUserRequest{Role: role}
			if err := client.Put(cmd.Context(), "/api/admin/users/"+args[0], req, &resp); err != nil {
				return err
			}
			return api.Output(resp.User)
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "Bearer token")
	cmd.Flags().StringVar(&role, "role", "", "New role (user or admin)")
	_ = cmd.MarkFlagRequired("token")
	_ = cmd.MarkFlagRequired("role")
	return cmd
}

// DeleteUserEndpoint handles DELETE /api/admin/users/{id}.
type DeleteUserEndpoint struct{}

func (e *DeleteUserEndpoint) Route() (string, string, http.HandlerFunc) {
	return "DELETE", "/api/admin/users/{id}", e.handler
}

func (e *DeleteUserEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Delete a user
//	@Description	Admin only; revokes the user's tokens
//	@Tags			admin
//	@Param			id	path	string	true	"User id"
//	@Success		204
//	@Failure		401	{object}	ErrorResponse
//	@Failure		403	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/api/admin/users/{id} [delete]
func (e *DeleteUserEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	admin, ok := requireAdmin(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	if id == admin.ID {
		writeError(w, http.StatusBadRequest, "cannot delete your own account")
		return
	}

	data := svcctx.StoreFrom(r.Context())
	if err := data.DeleteUser(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (e *DeleteUserEndpoint) Command(getServerURL func() string) *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "delete-user <user-id>",
		Short: "Delete a user (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			client.SetToken(token)
			return client.Delete(cmd.Context(), "/api/admin/users/"+args[0])
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "Bearer token")
	_ = cmd.MarkFlagRequired("token")
	return cmd
}

// ListAllCommentsEndpoint handles GET /api/admin/comments.
type ListAllCommentsEndpoint struct{}

func (e *ListAllCommentsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/admin/comments", e.handler
}

func (e *ListAllCommentsEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		List all comments across items
//	@Description	Admin moderation view, newest first
//	@Tags			admin
//	@Produce		json
//	@Success		200	{object}	CommentsResponse
//	@Failure		401	{object}	ErrorResponse
//	@Failure		403	{object}	ErrorResponse
//	@Router			/api/admin/comments [get]
func (e *ListAllCommentsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	data := svcctx.StoreFrom(r.Context())
	writeJSON(w, http.StatusOK, CommentsResponse{Comments: data.ListAllComments()})
}

func (e *ListAllCommentsEndpoint) Command(getServerURL func() string) *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "comments",
		Short: "List all comments across items (admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			client.SetToken(token)
			var resp CommentsResponse
			if err := client.Get(cmd.Context(), "/api/admin/comments", &resp); err != nil {
				return err
			}
			return api.Output(resp.Comments)
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "Bearer token")
	_ = cmd.MarkFlagRequired("token")
	return cmd
}
