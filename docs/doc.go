// Package docs provides generated OpenAPI documentation.
//
// Promptdeck API
//
//	@title			Promptdeck API
//	@version		1.0
//	@description	Community platform API for sharing and interactively testing prompts, agents, and personas.
//	@termsOfService	http://swagger.io/terms/
//
//	@contact.name	API Support
//	@contact.url	https://github.com/promptdeck/promptdeck
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host		localhost:8180
//	@BasePath	/
//
//	@schemes	http https
package docs

//go:generate swag init -g ../cmd/promptdeck/serve.go -o ./swagger --parseDependency --parseInternal
