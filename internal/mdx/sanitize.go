package mdx

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

var (
	headingID     = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	codeLanguage  = regexp.MustCompile(`^language-[A-Za-z0-9_+#-]+$`)
	checkboxType  = regexp.MustCompile(`^checkbox$`)
	cellAlignment = regexp.MustCompile(`^(left|right|center)$`)
)

// newPolicy builds the sanitizer applied to every compiled body. It starts
// from the user-generated-content policy and admits the component elements,
// their data attributes and the markup goldmark emits for GFM.
func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements(renderElements...)
	p.AllowDataAttributes()
	p.AllowAttrs("id").Matching(headingID).OnElements("h1", "h2", "h3", "h4", "h5", "h6")
	p.AllowAttrs("class").Matching(codeLanguage).OnElements("code")
	p.AllowElements("input")
	p.AllowAttrs("type").Matching(checkboxType).OnElements("input")
	p.AllowAttrs("checked", "disabled").OnElements("input")
	p.AllowAttrs("align").Matching(cellAlignment).OnElements("th", "td")
	p.AllowAttrs("open").OnElements("details")
	return p
}
