package endpoints

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/promptdeck/promptdeck/internal/api"
	"github.com/promptdeck/promptdeck/internal/ingest"
	"github.com/promptdeck/promptdeck/internal/playground"
	"github.com/promptdeck/promptdeck/internal/store"
	"github.com/promptdeck/promptdeck/internal/svcctx"
)

// CreateSessionRequest is the request body for opening a playground session.
type CreateSessionRequest struct {
	Provider string `json:"provider,omitempty"`
	Model    string `json:"model,omitempty"`
}

// SessionState is the API view of one playground session.
type SessionState struct {
	ID         string             `json:"id"`
	Provider   string             `json:"provider"`
	Model      string             `json:"model"`
	ItemID     string             `json:"itemId,omitempty"`
	Loading    bool               `json:"loading"`
	Collecting bool               `json:"collecting"`
	Transcript []playground.Entry `json:"transcript"`
}

// SessionsResponse lists live session ids.
type SessionsResponse struct {
	Sessions []string `json:"sessions"`
}

// SelectItemRequest selects (or clears) the item under test.
type SelectItemRequest struct {
	ItemID string `json:"itemId,omitempty"`
}

// SelectContextRequest selects (or clears) the session context document.
type SelectContextRequest struct {
	ContextID string `json:"contextId,omitempty"`
}

// AttachImageRequest attaches an image as a data URI.
type AttachImageRequest struct {
	DataURI string `json:"dataUri"`
}

// SetProviderRequest switches the session's provider and model.
type SetProviderRequest struct {
	Provider string `json:"provider"`
	Model    string `json:"model,omitempty"`
}

// RunRequest is the request body for a playground run.
type RunRequest struct {
	Input string `json:"input"`
}

func sessionState(s *playground.Session) SessionState {
	provider, model := s.Provider()
	state := SessionState{
		ID:         s.ID(),
		Provider:   provider,
		Model:      model,
		Loading:    s.Loading(),
		Collecting: s.Collecting(),
		Transcript: s.Transcript(),
	}
	if item := s.Item(); item != nil {
		state.ItemID = item.ID
	}
	return state
}

// sessionFrom resolves the {id} path value to a live session, writing a 404
// when it does not exist.
func sessionFrom(w http.ResponseWriter, r *http.Request) (*playground.Session, bool) {
	sessions := svcctx.SessionsFrom(r.Context())
	s, err := sessions.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return nil, false
	}
	return s, true
}

// CreateSessionEndpoint handles POST /api/playground/sessions.
type CreateSessionEndpoint struct{}

func (e *CreateSessionEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/playground/sessions", e.handler
}

func (e *CreateSessionEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Open a playground session
//	@Tags			playground
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateSessionRequest	true	"Provider selection (optional)"
//	@Success		201		{object}	SessionState
//	@Router			/api/playground/sessions [post]
func (e *CreateSessionEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if r.Body != nil {
		// Empty body is fine: defaults apply.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	sessions := svcctx.SessionsFrom(r.Context())
	s := sessions.Create(req.Provider, req.Model)
	writeJSON(w, http.StatusCreated, sessionState(s))
}

func (e *CreateSessionEndpoint) Command(getServerURL func() string) *cobra.Command {
	var provider, model string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Open a playground session",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp SessionState
			req := CreateSessionRequest{Provider: provider, Model: model}
			if err := client.Post(cmd.Context(), "/api/playground/sessions", req, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&provider, "provider", "", "Provider id (defaults to server config)")
	cmd.Flags().StringVar(&model, "model", "", "Model name (defaults to provider default)")
	return cmd
}

// ListSessionsEndpoint handles GET /api/playground/sessions.
type ListSessionsEndpoint struct{}

func (e *ListSessionsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/playground/sessions", e.handler
}

func (e *ListSessionsEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		List live playground sessions
//	@Tags			playground
//	@Produce		json
//	@Success		200	{object}	SessionsResponse
//	@Router			/api/playground/sessions [get]
func (e *ListSessionsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	sessions := svcctx.SessionsFrom(r.Context())
	writeJSON(w, http.StatusOK, SessionsResponse{Sessions: sessions.List()})
}

func (e *ListSessionsEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List live playground sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp SessionsResponse
			if err := client.Get(cmd.Context(), "/api/playground/sessions", &resp); err != nil {
				return err
			}
			return api.Output(resp.Sessions)
		},
	}
}

// GetSessionEndpoint handles GET /api/playground/sessions/{id}.
type GetSessionEndpoint struct{}

func (e *GetSessionEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/playground/sessions/{id}", e.handler
}

func (e *GetSessionEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Get session state and transcript
//	@Tags			playground
//	@Produce		json
//	@Param			id	path		string	true	"Session id"
//	@Success		200	{object}	SessionState
//	@Failure		404	{object}	ErrorResponse
//	@Router			/api/playground/sessions/{id} [get]
func (e *GetSessionEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sessionState(s))
}

func (e *GetSessionEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "get <session-id>",
		Short: "Get session state and transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp SessionState
			if err := client.Get(cmd.Context(), "/api/playground/sessions/"+args[0], &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// DeleteSessionEndpoint handles DELETE /api/playground/sessions/{id}.
type DeleteSessionEndpoint struct{}

func (e *DeleteSessionEndpoint) Route() (string, string, http.HandlerFunc) {
	return "DELETE", "/api/playground/sessions/{id}", e.handler
}

func (e *DeleteSessionEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Close a playground session
//	@Description	Cancels any in-flight generation and discards the session
//	@Tags			playground
//	@Param			id	path	string	true	"Session id"
//	@Success		204
//	@Router			/api/playground/sessions/{id} [delete]
func (e *DeleteSessionEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	sessions := svcctx.SessionsFrom(r.Context())
	sessions.Delete(r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

func (e *DeleteSessionEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <session-id>",
		Short: "Close a playground session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			return client.Delete(cmd.Context(), "/api/playground/sessions/"+args[0])
		},
	}
}

// SelectItemEndpoint handles PUT /api/playground/sessions/{id}/item.
type SelectItemEndpoint struct{}

func (e *SelectItemEndpoint) Route() (string, string, http.HandlerFunc) {
	return "PUT", "/api/playground/sessions/{id}/item", e.handler
}

func (e *SelectItemEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Select the item under test
//	@Description	Resets the session; an empty item id clears the selection
//	@Tags			playground
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Session id"
//	@Param			body	body		SelectItemRequest	true	"Item selection"
//	@Success		200		{object}	SessionState
//	@Failure		404		{object}	ErrorResponse
//	@Router			/api/playground/sessions/{id}/item [put]
func (e *SelectItemEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	var req SelectItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if req.ItemID == "" {
		s.SelectItem(nil)
		writeJSON(w, http.StatusOK, sessionState(s))
		return
	}

	data := svcctx.StoreFrom(r.Context())
	item, err := data.GetItem(req.ItemID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "item not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.SelectItem(&item)
	writeJSON(w, http.StatusOK, sessionState(s))
}

func (e *SelectItemEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "select <session-id> <item-id>",
		Short: "Select the item under test",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp SessionState
			req := SelectItemRequest{ItemID: args[1]}
			if err := client.Put(cmd.Context(), "/api/playground/sessions/"+args[0]+"/item", req, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// SelectContextEndpoint handles PUT /api/playground/sessions/{id}/context.
type SelectContextEndpoint struct{}

func (e *SelectContextEndpoint) Route() (string, string, http.HandlerFunc) {
	return "PUT", "/api/playground/sessions/{id}/context", e.handler
}

func (e *SelectContextEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Select a context document for the session
//	@Description	An empty context id clears the selection
//	@Tags			playground
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Session id"
//	@Param			body	body		SelectContextRequest	true	"Context selection"
//	@Success		200		{object}	SessionState
//	@Failure		404		{object}	ErrorResponse
//	@Router			/api/playground/sessions/{id}/context [put]
func (e *SelectContextEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	var req SelectContextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if req.ContextID == "" {
		s.SelectContext(nil)
		writeJSON(w, http.StatusOK, sessionState(s))
		return
	}

	data := svcctx.StoreFrom(r.Context())
	doc, err := data.GetContext(req.ContextID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "context not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.SelectContext(&doc)
	writeJSON(w, http.StatusOK, sessionState(s))
}

func (e *SelectContextEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "context <session-id> <context-id>",
		Short: "Select a context document for the session",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp SessionState
			req := SelectContextRequest{ContextID: args[1]}
			if err := client.Put(cmd.Context(), "/api/playground/sessions/"+args[0]+"/context", req, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// AttachImageEndpoint handles PUT /api/playground/sessions/{id}/image.
type AttachImageEndpoint struct{}

func (e *AttachImageEndpoint) Route() (string, string, http.HandlerFunc) {
	return "PUT", "/api/playground/sessions/{id}/image", e.handler
}

func (e *AttachImageEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Attach an image to the session
//	@Description	The image rides along with the next run only
//	@Tags			playground
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Session id"
//	@Param			body	body		AttachImageRequest	true	"Image as a data URI"
//	@Success		200		{object}	SessionState
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/api/playground/sessions/{id}/image [put]
func (e *AttachImageEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	var req AttachImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	img, err := ingest.DecodeImageDataURI(req.DataURI)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.AttachImage(img)
	writeJSON(w, http.StatusOK, sessionState(s))
}

func (e *AttachImageEndpoint) Command(getServerURL func() string) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "attach-image <session-id>",
		Short: "Attach an image to the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			dataURI, err := ingest.EncodeImageDataURI(file, raw)
			if err != nil {
				return err
			}

			client := api.NewClient(getServerURL())
			var resp SessionState
			req := AttachImageRequest{DataURI: dataURI}
			if err := client.Put(cmd.Context(), "/api/playground/sessions/"+args[0]+"/image", req, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Path to an image file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// ClearImageEndpoint handles DELETE /api/playground/sessions/{id}/image.
type ClearImageEndpoint struct{}

func (e *ClearImageEndpoint) Route() (string, string, http.HandlerFunc) {
	return "DELETE", "/api/playground/sessions/{id}/image", e.handler
}

func (e *ClearImageEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Clear the session's attached image
//	@Tags			playground
//	@Param			id	path	string	true	"Session id"
//	@Success		204
//	@Failure		404	{object}	ErrorResponse
//	@Router			/api/playground/sessions/{id}/image [delete]
func (e *ClearImageEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	s.ClearImage()
	w.WriteHeader(http.StatusNoContent)
}

func (e *ClearImageEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-image <session-id>",
		Short: "Clear the session's attached image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			return client.Delete(cmd.Context(), "/api/playground/sessions/"+args[0]+"/image")
		},
	}
}

// SetProviderEndpoint handles PUT /api/playground/sessions/{id}/provider.
type SetProviderEndpoint struct{}

func (e *SetProviderEndpoint) Route() (string, string, http.HandlerFunc) {
	return "PUT", "/api/playground/sessions/{id}/provider", e.handler
}

func (e *SetProviderEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Switch the session's provider and model
//	@Tags			playground
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Session id"
//	@Param			body	body		SetProviderRequest	true	"Provider selection"
//	@Success		200		{object}	SessionState
//	@Failure		404		{object}	ErrorResponse
//	@Router			/api/playground/sessions/{id}/provider [put]
func (e *SetProviderEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	var req SetProviderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	s.SetProvider(req.Provider, req.Model)
	writeJSON(w, http.StatusOK, sessionState(s))
}

func (e *SetProviderEndpoint) Command(getServerURL func() string) *cobra.Command {
	var model string
	cmd := &cobra.Command{
		Use:   "provider <session-id> <provider>",
		Short: "Switch the session's provider and model",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp SessionState
			req := SetProviderRequest{Provider: args[1], Model: model}
			if err := client.Put(cmd.Context(), "/api/playground/sessions/"+args[0]+"/provider", req, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&model, "model", "", "Model name")
	return cmd
}

// RunEndpoint handles POST /api/playground/sessions/{id}/run. The response
// is a server-sent-event stream: "fragment" events carry streamed response
// text, a final "done" event carries the full session state.
type RunEndpoint struct{}

func (e *RunEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/playground/sessions/{id}/run", e.handler
}

func (e *RunEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Run the session
//	@Description	Submit input and stream response fragments as server-sent events
//	@Tags			playground
//	@Accept			json
//	@Produce		text/event-stream
//	@Param			id		path	string		true	"Session id"
//	@Param			body	body	RunRequest	true	"User input"
//	@Success		200
//	@Failure		404	{object}	ErrorResponse
//	@Failure		409	{object}	ErrorResponse
//	@Router			/api/playground/sessions/{id}/run [post]
func (e *RunEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	writeEvent := func(event string, data any) {
		raw, err := json.Marshal(data)
		if err != nil {
			return
		}
		fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, raw)
		flusher.Flush()
	}

	err := s.Run(r.Context(), req.Input, func(fragment string) {
		writeEvent("fragment", fragment)
	})
	if err != nil {
		// Headers are already out; errors travel as an event.
		writeEvent("error", err.Error())
		return
	}

	writeEvent("done", sessionState(s))
}

func (e *RunEndpoint) Command(getServerURL func() string) *cobra.Command {
	var input string
	cmd := &cobra.Command{
		Use:   "run <session-id>",
		Short: "Submit input and stream the response",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			out := bufio.NewWriter(os.Stdout)
			defer out.Flush()

			var runErr error
			err := client.Stream(cmd.Context(), "/api/playground/sessions/"+args[0]+"/run",
				RunRequest{Input: input}, func(event, data string) {
					switch event {
					case "fragment":
						var fragment string
						if json.Unmarshal([]byte(data), &fragment) == nil {
							out.WriteString(fragment)
							out.Flush()
						}
					case "error":
						var msg string
						if json.Unmarshal([]byte(data), &msg) == nil {
							runErr = errors.New(msg)
						}
					case "done":
						out.WriteString("\n")
					}
				})
			if err != nil {
				return err
			}
			return runErr
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "User input text")
	return cmd
}

// DictateStartEndpoint handles POST /api/playground/sessions/{id}/dictation/start.
type DictateStartEndpoint struct{}

func (e *DictateStartEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/playground/sessions/{id}/dictation/start", e.handler
}

func (e *DictateStartEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Start dictation for the session
//	@Description	Requires a transcriber capability to be wired at startup
//	@Tags			playground
//	@Param			id	path	string	true	"Session id"
//	@Success		204
//	@Failure		404	{object}	ErrorResponse
//	@Failure		501	{object}	ErrorResponse
//	@Router			/api/playground/sessions/{id}/dictation/start [post]
func (e *DictateStartEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	if err := s.StartDictation(); err != nil {
		if errors.Is(err, playground.ErrNoTranscriber) {
			writeError(w, http.StatusNotImplemented, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (e *DictateStartEndpoint) Command(getServerURL func() string) *cobra.Command {
	return nil
}

// DictateStopEndpoint handles POST /api/playground/sessions/{id}/dictation/stop.
type DictateStopEndpoint struct{}

func (e *DictateStopEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/playground/sessions/{id}/dictation/stop", e.handler
}

func (e *DictateStopEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Stop dictation for the session
//	@Tags			playground
//	@Param			id	path	string	true	"Session id"
//	@Success		204
//	@Failure		404	{object}	ErrorResponse
//	@Failure		501	{object}	ErrorResponse
//	@Router			/api/playground/sessions/{id}/dictation/stop [post]
func (e *DictateStopEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	if err := s.StopDictation(); err != nil {
		if errors.Is(err, playground.ErrNoTranscriber) {
			writeError(w, http.StatusNotImplemented, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (e *DictateStopEndpoint) Command(getServerURL func() string) *cobra.Command {
	return nil
}
