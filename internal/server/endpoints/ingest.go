package endpoints

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/promptdeck/promptdeck/internal/api"
	"github.com/promptdeck/promptdeck/internal/svcctx"
	"github.com/promptdeck/promptdeck/internal/types"
)

// IngestRequest is the request body for attachment ingestion. Either Data
// (base64 file content) or URL must be set.
type IngestRequest struct {
	Name     string `json:"name"`
	MimeType string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"`
	URL      string `json:"url,omitempty"`
}

// AttachmentResponse contains one ingested attachment.
type AttachmentResponse struct {
	Attachment types.Attachment `json:"attachment"`
}

// IngestEndpoint handles POST /api/ingest. It converts an upload or URL
// reference into an attachment: text and CSV pass through, PDFs have their
// text extracted, images are stored as base64.
type IngestEndpoint struct{}

func (e *IngestEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/ingest", e.handler
}

func (e *IngestEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Ingest an attachment
//	@Description	Convert an uploaded file or URL reference into an attachment
//	@Tags			ingest
//	@Accept			json
//	@Produce		json
//	@Param			body	body		IngestRequest	true	"File content (base64) or URL"
//	@Success		201		{object}	AttachmentResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Router			/api/ingest [post]
func (e *IngestEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}

	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	svc := svcctx.IngestFrom(r.Context())

	var att types.Attachment
	var err error
	switch {
	case req.URL != "":
		att, err = svc.FromURL(req.Name, req.URL)
	case req.Data != "":
		var raw []byte
		raw, err = base64.StdEncoding.DecodeString(req.Data)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid base64 data")
			return
		}
		att, err = svc.FromUpload(req.Name, req.MimeType, raw)
	default:
		writeError(w, http.StatusBadRequest, "either data or url is required")
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, AttachmentResponse{Attachment: att})
}

func (e *IngestEndpoint) Command(getServerURL func() string) *cobra.Command {
	var token, file, mimeType, ref string
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Ingest a file or URL as an attachment",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			client.SetToken(token)

			req := IngestRequest{MimeType: mimeType, URL: ref}
			if file != "" {
				raw, err := os.ReadFile(file)
				if err != nil {
					return err
				}
				req.Name = filepath.Base(file)
				req.Data = base64.StdEncoding.EncodeToString(raw)
			}

			var resp AttachmentResponse
			if err := client.Post(cmd.Context(), "/api/ingest", req, &resp); err != nil {
				return err
			}
			return api.Output(resp.Attachment)
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "Bearer token")
	cmd.Flags().StringVar(&file, "file", "", "Path to a file to upload")
	cmd.Flags().StringVar(&mimeType, "mime-type", "", "MIME type of the file")
	cmd.Flags().StringVar(&ref, "url", "", "URL to reference instead of uploading")
	_ = cmd.MarkFlagRequired("token")
	return cmd
}
