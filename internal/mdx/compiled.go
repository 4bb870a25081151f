package mdx

// CompiledContent is the render-ready form of a document body. HTML is
// sanitized and every component invocation in it has been resolved against
// the registry; Components lists those invocations in document order.
type CompiledContent struct {
	HTML        string         `json:"html"`
	Components  []ComponentUse `json:"components,omitempty"`
	Headings    []Heading      `json:"headings,omitempty"`
	Fingerprint string         `json:"fingerprint"`
}

// ComponentUse records one resolved component invocation.
type ComponentUse struct {
	Name  string            `json:"name"`
	Props map[string]string `json:"props,omitempty"`
	Line  int               `json:"line"`
}

// Heading is a table of contents entry.
type Heading struct {
	Level int    `json:"level"`
	ID    string `json:"id"`
	Text  string `json:"text"`
}
