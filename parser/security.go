package parser

// Security scheme types and apiKey locations.
const (
	SecurityTypeAPIKey        = "apiKey"
	SecurityTypeHTTP          = "http"
	SecurityTypeOAuth2        = "oauth2"
	SecurityTypeOpenIDConnect = "openIdConnect"
	SecurityTypeMutualTLS     = "mutualTLS"

	SecurityInQuery  = "query"
	SecurityInHeader = "header"
	SecurityInCookie = "cookie"
)

// SecurityScheme defines a security scheme that can be used by the operations.
type SecurityScheme struct {
	Type             string `json:"type,omitempty"`
	Description      string `json:"description,omitempty"`
	Name             string `json:"name,omitempty"` // apiKey
	In               string `json:"in,omitempty"`   // apiKey: "query", "header" or "cookie"
	Scheme           string `json:"scheme,omitempty"`
	BearerFormat     string `json:"bearerFormat,omitempty"`
	OpenIDConnectURL string `json:"openIdConnectUrl,omitempty"`
}

// IsQueryAPIKey reports whether the scheme expects an API key in the query string.
func (s *SecurityScheme) IsQueryAPIKey() bool {
	return s != nil && s.Type == SecurityTypeAPIKey && s.In == SecurityInQuery && s.Name != ""
}

// SecurityRequirement lists the required security schemes to execute an operation.
// Maps security scheme names to scopes (if applicable).
type SecurityRequirement map[string][]string
