package main

import (
	"github.com/spf13/cobra"

	"github.com/promptdeck/promptdeck/internal/server/endpoints"
	"github.com/promptdeck/promptdeck/internal/types"
)

var serverURL string

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Commands that call the running server",
	Long: `API commands call the running Promptdeck server via HTTP.

These commands require a running server (promptdeck serve).
Use --server to specify a custom server URL.

Examples:
  promptdeck api health                  # Check server health
  promptdeck api prompts list            # List published prompts
  promptdeck api playground create       # Open a playground session`,
}

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Account and token commands",
}

var contextsCmd = &cobra.Command{
	Use:   "contexts",
	Short: "Context document commands",
}

var likesCmd = &cobra.Command{
	Use:   "likes",
	Short: "Like commands",
}

var commentsCmd = &cobra.Command{
	Use:   "comments",
	Short: "Comment commands",
}

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Administration commands",
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Configuration settings commands",
}

var playgroundCmd = &cobra.Command{
	Use:   "playground",
	Short: "Interactive playground commands",
}

// getServerURL returns the server URL at runtime (after flag parsing).
func getServerURL() string {
	return serverURL
}

func init() {
	// Add --server flag to api command (persistent so all subcommands inherit it)
	apiCmd.PersistentFlags().StringVar(
		&serverURL, "server", "http://localhost:8180", "Server URL",
	)

	// Health endpoints at top level of api
	apiCmd.AddCommand((&endpoints.HealthEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.StatusEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.ListModelsEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.IngestEndpoint{}).Command(getServerURL))

	// Item kinds as subcommand groups
	for _, k := range []struct {
		kind   types.ItemKind
		plural string
	}{
		{types.KindPrompt, "prompts"},
		{types.KindAgent, "agents"},
		{types.KindPersona, "personas"},
	} {
		group := &cobra.Command{
			Use:   k.plural,
			Short: "Manage " + k.plural,
		}
		for _, ep := range endpoints.ItemCommands(k.kind, k.plural) {
			if cmd := ep.Command(getServerURL); cmd != nil {
				group.AddCommand(cmd)
			}
		}
		apiCmd.AddCommand(group)
	}

	// Auth as subcommand group
	authCmd.AddCommand((&endpoints.RegisterEndpoint{}).Command(getServerURL))
	authCmd.AddCommand((&endpoints.LoginEndpoint{}).Command(getServerURL))
	authCmd.AddCommand((&endpoints.LogoutEndpoint{}).Command(getServerURL))
	authCmd.AddCommand((&endpoints.MeEndpoint{}).Command(getServerURL))

	// Context documents as subcommand group
	contextsCmd.AddCommand((&endpoints.ListContextsEndpoint{}).Command(getServerURL))
	contextsCmd.AddCommand((&endpoints.GetContextEndpoint{}).Command(getServerURL))
	contextsCmd.AddCommand((&endpoints.CreateContextEndpoint{}).Command(getServerURL))
	contextsCmd.AddCommand((&endpoints.UpdateContextEndpoint{}).Command(getServerURL))
	contextsCmd.AddCommand((&endpoints.DeleteContextEndpoint{}).Command(getServerURL))

	// Likes and comments as subcommand groups
	likesCmd.AddCommand((&endpoints.AddLikeEndpoint{}).Command(getServerURL))
	likesCmd.AddCommand((&endpoints.RemoveLikeEndpoint{}).Command(getServerURL))
	likesCmd.AddCommand((&endpoints.CheckLikeEndpoint{}).Command(getServerURL))
	commentsCmd.AddCommand((&endpoints.ListCommentsEndpoint{}).Command(getServerURL))
	commentsCmd.AddCommand((&endpoints.AddCommentEndpoint{}).Command(getServerURL))
	commentsCmd.AddCommand((&endpoints.DeleteCommentEndpoint{}).Command(getServerURL))

	// Admin as subcommand group
	adminCmd.AddCommand((&endpoints.ListUsersEndpoint{}).Command(getServerURL))
	adminCmd.AddCommand((&endpoints.UpdateUserEndpoint{}).Command(getServerURL))
	adminCmd.AddCommand((&endpoints.DeleteUserEndpoint{}).Command(getServerURL))
	adminCmd.AddCommand((&endpoints.ListAllCommentsEndpoint{}).Command(getServerURL))

	// Settings as subcommand group
	for _, ep := range endpoints.SettingsCommands() {
		if cmd := ep.Command(getServerURL); cmd != nil {
			settingsCmd.AddCommand(cmd)
		}
	}

	// Playground as subcommand group
	for _, ep := range endpoints.PlaygroundCommands() {
		if cmd := ep.Command(getServerURL); cmd != nil {
			playgroundCmd.AddCommand(cmd)
		}
	}

	apiCmd.AddCommand(authCmd)
	apiCmd.AddCommand(contextsCmd)
	apiCmd.AddCommand(likesCmd)
	apiCmd.AddCommand(commentsCmd)
	apiCmd.AddCommand(adminCmd)
	apiCmd.AddCommand(settingsCmd)
	apiCmd.AddCommand(playgroundCmd)
	rootCmd.AddCommand(apiCmd)
}
