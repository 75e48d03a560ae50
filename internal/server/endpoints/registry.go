// Package endpoints defines every HTTP endpoint of the promptdeck API.
// Each endpoint pairs its HTTP route with a cobra command so the CLI and
// the server share one definition.
package endpoints

import (
	"github.com/promptdeck/promptdeck/internal/api"
	"github.com/promptdeck/promptdeck/internal/types"
)

// All returns all endpoint instances.
func All() []api.Endpoint {
	eps := []api.Endpoint{
		// Health endpoints
		&HealthEndpoint{},
		&StatusEndpoint{},

		// Auth endpoints
		&RegisterEndpoint{},
		&LoginEndpoint{},
		&LogoutEndpoint{},
		&MeEndpoint{},
	}

	// Item CRUD, one set per kind
	for _, k := range []struct {
		kind   types.ItemKind
		plural string
	}{
		{types.KindPrompt, "prompts"},
		{types.KindAgent, "agents"},
		{types.KindPersona, "personas"},
	} {
		eps = append(eps,
			&ListItemsEndpoint{Kind: k.kind, Plural: k.plural},
			&GetItemEndpoint{Kind: k.kind, Plural: k.plural},
			&CreateItemEndpoint{Kind: k.kind, Plural: k.plural},
			&UpdateItemEndpoint{Kind: k.kind, Plural: k.plural},
			&DeleteItemEndpoint{Kind: k.kind, Plural: k.plural},
		)
	}

	eps = append(eps,
		// Context documents
		&ListContextsEndpoint{},
		&GetContextEndpoint{},
		&CreateContextEndpoint{},
		&UpdateContextEndpoint{},
		&DeleteContextEndpoint{},

		// Likes and comments
		&AddLikeEndpoint{},
		&RemoveLikeEndpoint{},
		&CheckLikeEndpoint{},
		&ListCommentsEndpoint{},
		&AddCommentEndpoint{},
		&DeleteCommentEndpoint{},

		// Admin
		&ListUsersEndpoint{},
		&UpdateUserEndpoint{},
		&DeleteUserEndpoint{},
		&ListAllCommentsEndpoint{},

		// Settings
		&ListSettingsEndpoint{},
		&GetSettingEndpoint{},
		&UpdateSettingEndpoint{},
		&ResetSettingEndpoint{},

		// Providers and ingestion
		&ListModelsEndpoint{},
		&IngestEndpoint{},

		// Playground
		&CreateSessionEndpoint{},
		&ListSessionsEndpoint{},
		&GetSessionEndpoint{},
		&DeleteSessionEndpoint{},
		&SelectItemEndpoint{},
		&SelectContextEndpoint{},
		&AttachImageEndpoint{},
		&ClearImageEndpoint{},
		&SetProviderEndpoint{},
		&RunEndpoint{},
		&DictateStartEndpoint{},
		&DictateStopEndpoint{},
	)

	return eps
}

// ItemCommands returns the CRUD endpoints for one item kind, for grouping
// under a plural subcommand in the CLI.
func ItemCommands(kind types.ItemKind, plural string) []api.Endpoint {
	return []api.Endpoint{
		&ListItemsEndpoint{Kind: kind, Plural: plural},
		&GetItemEndpoint{Kind: kind, Plural: plural},
		&CreateItemEndpoint{Kind: kind, Plural: plural},
		&UpdateItemEndpoint{Kind: kind, Plural: plural},
		&DeleteItemEndpoint{Kind: kind, Plural: plural},
	}
}

// SettingsCommands returns endpoints for settings operations.
func SettingsCommands() []api.Endpoint {
	return []api.Endpoint{
		&ListSettingsEndpoint{},
		&GetSettingEndpoint{},
		&UpdateSettingEndpoint{},
		&ResetSettingEndpoint{},
	}
}

// PlaygroundCommands returns endpoints for playground operations.
func PlaygroundCommands() []api.Endpoint {
	return []api.Endpoint{
		&CreateSessionEndpoint{},
		&ListSessionsEndpoint{},
		&GetSessionEndpoint{},
		&DeleteSessionEndpoint{},
		&SelectItemEndpoint{},
		&SelectContextEndpoint{},
		&AttachImageEndpoint{},
		&ClearImageEndpoint{},
		&SetProviderEndpoint{},
		&RunEndpoint{},
	}
}
