package swagger

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

// Handler serves Swagger UI for the document at specURL. The bearer token
// entered under Authorize survives page reloads when auth is enabled.
func Handler(specURL string, authEnabled bool) http.Handler {
	return httpSwagger.Handler(
		httpSwagger.URL(specURL),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DeepLinking(true),
		httpSwagger.PersistAuthorization(authEnabled),
		httpSwagger.UIConfig(map[string]string{
			"tagsSorter":               `"alpha"`,
			"defaultModelsExpandDepth": "-1",
		}),
	)
}
