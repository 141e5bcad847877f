package parser

// Parameter locations.
const (
	ParamInQuery  = "query"
	ParamInHeader = "header"
	ParamInPath   = "path"
	ParamInCookie = "cookie"
)

// Parameter serialization styles.
const (
	StyleForm           = "form"
	StyleSimple         = "simple"
	StyleLabel          = "label"
	StyleMatrix         = "matrix"
	StyleSpaceDelimited = "spaceDelimited"
	StylePipeDelimited  = "pipeDelimited"
	StyleDeepObject     = "deepObject"
)

// Parameter describes a single operation parameter.
type Parameter struct {
	Ref             string                `json:"$ref,omitempty"`
	Name            string                `json:"name,omitempty"`
	In              string                `json:"in,omitempty"`
	Description     string                `json:"description,omitempty"`
	Required        bool                  `json:"required,omitempty"`
	Deprecated      bool                  `json:"deprecated,omitempty"`
	AllowEmptyValue bool                  `json:"allowEmptyValue,omitempty"`
	Style           string                `json:"style,omitempty"`
	Explode         *bool                 `json:"explode,omitempty"`
	Schema          Schema                `json:"schema,omitempty"`
	Content         map[string]*MediaType `json:"content,omitempty"`
}

// EffectiveStyle returns the declared style or the location's default.
func (p *Parameter) EffectiveStyle() string {
	if p.Style != "" {
		return p.Style
	}
	switch p.In {
	case ParamInQuery, ParamInCookie:
		return StyleForm
	default:
		return StyleSimple
	}
}

// EffectiveExplode returns the declared explode flag or the style's default
// (true for form, false otherwise).
func (p *Parameter) EffectiveExplode() bool {
	if p.Explode != nil {
		return *p.Explode
	}
	return p.EffectiveStyle() == StyleForm
}

// ContentSchema returns the schema and media type of a content-typed
// parameter. ok is false when the parameter uses schema/style instead.
func (p *Parameter) ContentSchema() (mediaType string, schema Schema, ok bool) {
	for mt, media := range p.Content {
		if media == nil {
			continue
		}
		// OAS allows exactly one entry in a parameter's content map.
		return mt, media.Schema, true
	}
	return "", nil, false
}

// RequestBody describes a single request body.
type RequestBody struct {
	Ref         string                `json:"$ref,omitempty"`
	Description string                `json:"description,omitempty"`
	Required    bool                  `json:"required,omitempty"`
	Content     map[string]*MediaType `json:"content,omitempty"`
}

// MediaType provides the schema for one media type.
type MediaType struct {
	Schema Schema `json:"schema,omitempty"`
}
