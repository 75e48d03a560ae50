package endpoints

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/promptdeck/promptdeck/internal/api"
	"github.com/promptdeck/promptdeck/internal/providers"
	"github.com/promptdeck/promptdeck/internal/svcctx"
)

// ProviderModels describes one registered provider and its models.
type ProviderModels struct {
	Provider     string   `json:"provider"`
	DefaultModel string   `json:"defaultModel,omitempty"`
	Models       []string `json:"models,omitempty"`
	Error        string   `json:"error,omitempty"`
}

// ModelsResponse lists every registered provider.
type ModelsResponse struct {
	Providers []ProviderModels `json:"providers"`
}

// ListModelsEndpoint handles GET /api/models. Providers that can enumerate
// their backend (Ollama) are queried live; the rest report only their
// configured default model.
type ListModelsEndpoint struct{}

func (e *ListModelsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/models", e.handler
}

func (e *ListModelsEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		List providers and their models
//	@Tags			models
//	@Produce		json
//	@Success		200	{object}	ModelsResponse
//	@Router			/api/models [get]
func (e *ListModelsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	registry := svcctx.RegistryFrom(r.Context())
	store := svcctx.ConfigStoreFrom(r.Context())

	resp := ModelsResponse{}
	for _, name := range registry.List() {
		pm := ProviderModels{Provider: name}

		if store != nil {
			if entry, err := store.Get("providers." + name + ".model"); err == nil && entry != nil {
				if model, ok := entry.Value.(string); ok {
					pm.DefaultModel = model
				}
			}
		}

		p, err := registry.Get(name)
		if err == nil {
			if lister, ok := p.(providers.ModelLister); ok {
				models, err := lister.ListModels(r.Context())
				if err != nil {
					pm.Error = err.Error()
				} else {
					pm.Models = models
				}
			}
		}

		resp.Providers = append(resp.Providers, pm)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (e *ListModelsEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List providers and their available models",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp ModelsResponse
			if err := client.Get(cmd.Context(), "/api/models", &resp); err != nil {
				return err
			}
			return api.Output(resp.Providers)
		},
	}
}
