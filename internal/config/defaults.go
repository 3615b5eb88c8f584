package config

import "time"

// DefaultAllowedTags is the restrictive default tag allow-list. Script,
// style, object, embed, iframe and form-of-attack tags are absent on
// purpose; hosts widen the list through configuration.
func DefaultAllowedTags() []string {
	return []string{
		"a", "abbr", "address", "article", "aside", "b", "blockquote", "br",
		"button", "caption", "cite", "code", "col", "colgroup", "datalist",
		"dd", "del", "details", "dfn", "div", "dl", "dt", "em", "fieldset",
		"figcaption", "figure", "footer", "form", "h1", "h2", "h3", "h4",
		"h5", "h6", "header", "hr", "i", "img", "input", "ins", "kbd",
		"label", "legend", "li", "main", "mark", "nav", "ol", "optgroup",
		"option", "output", "p", "picture", "pre", "progress", "q", "s",
		"samp", "section", "select", "small", "source", "span", "strong",
		"sub", "summary", "sup", "table", "tbody", "td", "textarea", "tfoot",
		"th", "thead", "time", "tr", "u", "ul", "var", "video", "audio",
	}
}

// DefaultGlobalAttributes is the default global attribute allow-list.
// Entries ending in "-*" are wildcard families.
func DefaultGlobalAttributes() []string {
	return []string{
		"id", "class", "title", "lang", "dir", "hidden", "tabindex", "role",
		"style", "data-*", "aria-*",
	}
}

// DefaultTagAttributes is the default per-tag attribute allow-list, unioned
// with the global list during sanitization.
func DefaultTagAttributes() map[string][]string {
	return map[string][]string{
		"a":          {"href", "target", "rel", "download", "hreflang"},
		"img":        {"src", "srcset", "alt", "width", "height", "loading", "decoding"},
		"source":     {"src", "srcset", "type", "media", "sizes"},
		"video":      {"src", "poster", "controls", "autoplay", "muted", "loop", "playsinline", "width", "height"},
		"audio":      {"src", "controls", "autoplay", "muted", "loop"},
		"form":       {"action", "method", "enctype", "novalidate", "autocomplete", "name"},
		"input":      {"type", "name", "value", "placeholder", "required", "disabled", "readonly", "checked", "min", "max", "step", "minlength", "maxlength", "pattern", "autocomplete", "list", "multiple", "accept"},
		"textarea":   {"name", "placeholder", "required", "disabled", "readonly", "rows", "cols", "minlength", "maxlength"},
		"select":     {"name", "required", "disabled", "multiple", "size"},
		"option":     {"value", "selected", "disabled", "label"},
		"optgroup":   {"label", "disabled"},
		"button":     {"type", "name", "value", "disabled"},
		"label":      {"for"},
		"output":     {"for", "name"},
		"progress":   {"value", "max"},
		"col":        {"span"},
		"colgroup":   {"span"},
		"td":         {"colspan", "rowspan", "headers"},
		"th":         {"colspan", "rowspan", "headers", "scope", "abbr"},
		"time":       {"datetime"},
		"del":        {"cite", "datetime"},
		"ins":        {"cite", "datetime"},
		"q":          {"cite"},
		"blockquote": {"cite"},
		"details":    {"open"},
		"ol":         {"start", "reversed", "type"},
		"li":         {"value"},
	}
}

// DefaultStyleProperties is the default inline-style property allow-list:
// layout, typography and visual properties only.
func DefaultStyleProperties() []string {
	return []string{
		"align-content", "align-items", "align-self", "background",
		"background-color", "background-image", "background-position",
		"background-repeat", "background-size", "border", "border-bottom",
		"border-collapse", "border-color", "border-left", "border-radius",
		"border-right", "border-style", "border-top", "border-width",
		"bottom", "box-shadow", "box-sizing", "color", "column-gap",
		"cursor", "display", "flex", "flex-basis", "flex-direction",
		"flex-grow", "flex-shrink", "flex-wrap", "float", "font",
		"font-family", "font-size", "font-style", "font-weight", "gap",
		"grid", "grid-area", "grid-column", "grid-row",
		"grid-template-columns", "grid-template-rows", "height",
		"justify-content", "justify-items", "justify-self", "left",
		"letter-spacing", "line-height", "list-style", "margin",
		"margin-bottom", "margin-left", "margin-right", "margin-top",
		"max-height", "max-width", "min-height", "min-width", "object-fit",
		"opacity", "order", "outline", "overflow", "overflow-x",
		"overflow-y", "padding", "padding-bottom", "padding-left",
		"padding-right", "padding-top", "position", "right", "row-gap",
		"text-align", "text-decoration", "text-indent", "text-overflow",
		"text-transform", "top", "transform", "transition",
		"vertical-align", "visibility", "white-space", "width",
		"word-break", "word-wrap", "z-index",
	}
}

// Defaults returns the deny-by-default configuration.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           8080,
			Host:           "localhost",
			AllowedOrigins: []string{"http://localhost:8080"},
			Environment:    "development",
		},
		Store: StoreConfig{
			AllowedExtensions: []string{".html", ".htm"},
			MaxContentBytes:   512 * 1024,
			CacheTTL:          5 * time.Minute,
			SweepInterval:     time.Minute,
			FetchTimeout:      10 * time.Second,
		},
		Security: SecurityConfig{
			AllowedTags:      DefaultAllowedTags(),
			GlobalAttributes: DefaultGlobalAttributes(),
			TagAttributes:    DefaultTagAttributes(),
			StyleProperties:  DefaultStyleProperties(),
			URLSchemes:       []string{"http", "https"},
			AllowedOrigins:   []string{},
		},
		Engine: EngineConfig{
			ThrottleInterval: 50 * time.Millisecond,
			AnimationTimeout: 2 * time.Second,
		},
		Preview: PreviewConfig{
			MockState: map[string]interface{}{},
		},
	}
}
