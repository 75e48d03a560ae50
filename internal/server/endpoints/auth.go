package endpoints

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/promptdeck/promptdeck/internal/api"
	"github.com/promptdeck/promptdeck/internal/auth"
	"github.com/promptdeck/promptdeck/internal/svcctx"
	"github.com/promptdeck/promptdeck/internal/types"
)

// RegisterRequest is the request body for account registration.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse carries the authenticated user and, after login, the token.
type AuthResponse struct {
	User  types.User `json:"user"`
	Token string     `json:"token,omitempty"`
}

// RegisterEndpoint handles POST /api/auth/register.
type RegisterEndpoint struct{}

func (e *RegisterEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/auth/register", e.handler
}

func (e *RegisterEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Register a new account
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		RegisterRequest	true	"Credentials"
//	@Success		201		{object}	AuthResponse
//	@Failure		400		{object}	ErrorResponse
//	@Router			/api/auth/register [post]
func (e *RegisterEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	svc := svcctx.AuthFrom(r.Context())
	user, err := svc.Register(req.Email, req.Password, req.Name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, AuthResponse{User: user})
}

func (e *RegisterEndpoint) Command(getServerURL func() string) *cobra.Command {
	var email, password, name string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new account",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp AuthResponse
			req := RegisterRequest{Email: email, Password: password, Name: name}
			if err := client.Post(cmd.Context(), "/api/auth/register", req, &resp); err != nil {
				return err
			}
			return api.Output(resp.User)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	cmd.Flags().StringVar(&name, "name", "", "Display name (defaults to email)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

// LoginEndpoint handles POST /api/auth/login.
type LoginEndpoint struct{}

func (e *LoginEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/auth/login", e.handler
}

func (e *LoginEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Log in
//	@Description	Exchange credentials for a bearer token
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		LoginRequest	true	"Credentials"
//	@Success		200		{object}	AuthResponse
//	@Failure		401		{object}	ErrorResponse
//	@Router			/api/auth/login [post]
func (e *LoginEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	svc := svcctx.AuthFrom(r.Context())
	user, token, err := svc.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, AuthResponse{User: user, Token: token})
}

func (e *LoginEndpoint) Command(getServerURL func() string) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and print a bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp AuthResponse
			req := LoginRequest{Email: email, Password: password}
			if err := client.Post(cmd.Context(), "/api/auth/login", req, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

// LogoutEndpoint handles POST /api/auth/logout.
type LogoutEndpoint struct{}

func (e *LogoutEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/auth/logout", e.handler
}

func (e *LogoutEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Log out
//	@Description	Revoke the bearer token on the request
//	@Tags			auth
//	@Success		204
//	@Failure		401	{object}	ErrorResponse
//	@Router			/api/auth/logout [post]
func (e *LogoutEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	token := auth.BearerFromHeader(r.Header.Get("Authorization"))
	if token == "" {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	svc := svcctx.AuthFrom(r.Context())
	if err := svc.Logout(token); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (e *LogoutEndpoint) Command(getServerURL func() string) *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Revoke a bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			client.SetToken(token)
			return client.Post(cmd.Context(), "/api/auth/logout", nil, nil)
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "Bearer token")
	_ = cmd.MarkFlagRequired("token")
	return cmd
}

// MeEndpoint handles GET /api/auth/me.
type MeEndpoint struct{}

func (e *MeEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/auth/me", e.handler
}

func (e *MeEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Get the authenticated user
//	@Tags			auth
//	@Produce		json
//	@Success		200	{object}	AuthResponse
//	@Failure		401	{object}	ErrorResponse
//	@Router			/api/auth/me [get]
func (e *MeEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, AuthResponse{User: user})
}

func (e *MeEndpoint) Command(getServerURL func() string) *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "me",
		Short: "Show the account behind a bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			client.SetToken(token)
			var resp AuthResponse
			if err := client.Get(cmd.Context(), "/api/auth/me", &resp); err != nil {
				return err
			}
			return api.Output(resp.User)
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "Bearer token")
	_ = cmd.MarkFlagRequired("token")
	return cmd
}
