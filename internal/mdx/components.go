package mdx

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"sort"
	"strings"

	xhtml "golang.org/x/net/html"
)

// openComponent is a component start tag still waiting for its end tag.
type openComponent struct {
	name string
	line int
}

// tagRewriter validates component tags across all raw HTML fragments of one
// document and rewrites them into plain elements. Fragments must be fed in
// document order because components may open and close in different blocks.
type tagRewriter struct {
	registry *Registry
	stack    []openComponent
	uses     []ComponentUse
}

// rewrite returns raw with every component tag replaced by its element.
// Other markup passes through for the sanitizer, except that data attributes
// are reserved for component props. In an HTML block (block set), text lying
// directly inside a component is rejected: goldmark keeps it as raw source
// instead of parsing it as Markdown.
func (t *tagRewriter) rewrite(raw []byte, line int, block bool) (string, error) {
	var out strings.Builder
	depth := 0
	var saved []int
	z := xhtml.NewTokenizer(bytes.NewReader(raw))
	for {
		tt := z.Next()
		if tt == xhtml.ErrorToken {
			if err := z.Err(); err != nil && err != io.EOF {
				return "", &Error{Line: line, Reason: err.Error()}
			}
			return out.String(), nil
		}
		// TagAttr lower-cases keys inside the tokenizer buffer, so the raw
		// bytes are copied first.
		tok := append([]byte(nil), z.Raw()...)
		tokLine := line
		line += bytes.Count(tok, []byte{'\n'})

		switch tt {
		case xhtml.StartTagToken, xhtml.SelfClosingTagToken, xhtml.EndTagToken:
		case xhtml.TextToken:
			if block && depth == 0 && len(t.stack) > 0 && len(bytes.TrimSpace(tok)) > 0 {
				top := t.stack[len(t.stack)-1]
				lead := len(tok) - len(bytes.TrimLeft(tok, " \t\r\n"))
				return "", &Error{
					Line:      tokLine + bytes.Count(tok[:lead], []byte{'\n'}),
					Component: top.name,
					Reason:    "children must be separated from the component tags by blank lines",
				}
			}
			out.Write(tok)
			continue
		default:
			out.Write(tok)
			continue
		}

		name := rawTagName(tok)
		if !isComponentName(name) {
			if tt != xhtml.EndTagToken {
				if err := rejectDataAttrs(z, name, tokLine); err != nil {
					return "", err
				}
			}
			depth = nestDepth(depth, tt, name)
			out.Write(tok)
			continue
		}
		open := len(t.stack)
		rendered, err := t.component(z, tt, name, tokLine)
		if err != nil {
			return "", err
		}
		switch {
		case len(t.stack) > open:
			saved = append(saved, depth)
			depth = 0
		case len(t.stack) < open && len(saved) > 0:
			depth = saved[len(saved)-1]
			saved = saved[:len(saved)-1]
		}
		out.WriteString(rendered)
	}
}

func (t *tagRewriter) component(z *xhtml.Tokenizer, tt xhtml.TokenType, name string, line int) (string, error) {
	c, ok := t.registry.Lookup(name)
	if !ok {
		return "", &Error{Line: line, Component: name, Reason: "component is not in the allow-list"}
	}

	if tt == xhtml.EndTagToken {
		if c.Void {
			return "", &Error{Line: line, Component: name, Reason: "component does not accept children"}
		}
		if len(t.stack) == 0 {
			return "", &Error{Line: line, Component: name, Reason: "closing tag without matching opening tag"}
		}
		top := t.stack[len(t.stack)-1]
		if top.name != name {
			return "", &Error{Line: line, Component: name, Reason: fmt.Sprintf("closing tag does not match <%s> opened on line %d", top.name, top.line)}
		}
		t.stack = t.stack[:len(t.stack)-1]
		return "</" + c.Element + ">", nil
	}

	props, err := componentProps(z, c, line)
	if err != nil {
		return "", err
	}
	t.uses = append(t.uses, ComponentUse{Name: name, Props: props, Line: line})

	var b strings.Builder
	b.WriteString("<")
	b.WriteString(c.Element)
	b.WriteString(` data-component="`)
	b.WriteString(html.EscapeString(c.Name))
	b.WriteString(`"`)
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, ` data-%s="%s"`, k, html.EscapeString(props[k]))
	}
	b.WriteString(">")

	switch {
	case c.Void, tt == xhtml.SelfClosingTagToken:
		b.WriteString("</" + c.Element + ">")
	default:
		t.stack = append(t.stack, openComponent{name: name, line: line})
	}
	return b.String(), nil
}

func componentProps(z *xhtml.Tokenizer, c Component, line int) (map[string]string, error) {
	props := map[string]string{}
	for {
		key, val, more := z.TagAttr()
		if len(key) > 0 {
			k := string(key)
			v := string(val)
			if strings.HasPrefix(strings.TrimSpace(v), "{") {
				return nil, &Error{Line: line, Component: c.Name, Reason: fmt.Sprintf("prop %q: expression values are not supported", k)}
			}
			if _, ok := findProp(c, k); !ok {
				return nil, &Error{Line: line, Component: c.Name, Reason: fmt.Sprintf("unknown prop %q", k)}
			}
			if _, dup := props[k]; dup {
				return nil, &Error{Line: line, Component: c.Name, Reason: fmt.Sprintf("prop %q given twice", k)}
			}
			props[k] = v
		}
		if !more {
			break
		}
	}
	if len(props) == 0 {
		return nil, nil
	}
	return props, nil
}

// rejectDataAttrs fails when a plain element carries a data attribute, which
// would let author markup pose as a component mount.
func rejectDataAttrs(z *xhtml.Tokenizer, name string, line int) error {
	for {
		key, _, more := z.TagAttr()
		if k := strings.ToLower(string(key)); strings.HasPrefix(k, "data-") {
			return &Error{Line: line, Reason: fmt.Sprintf("<%s>: attribute %q is reserved for component props", name, k)}
		}
		if !more {
			return nil
		}
	}
}

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true, "hr": true, "img": true,
	"input": true, "link": true, "meta": true, "source": true, "track": true, "wbr": true,
}

// nestDepth tracks how deep plain elements are nested since the last
// component start tag of a fragment.
func nestDepth(depth int, tt xhtml.TokenType, name string) int {
	switch {
	case tt == xhtml.SelfClosingTagToken, voidElements[strings.ToLower(name)]:
		return depth
	case tt == xhtml.StartTagToken:
		return depth + 1
	case depth > 0:
		return depth - 1
	default:
		return 0
	}
}

func findProp(c Component, name string) (int, bool) {
	i := sort.SearchStrings(c.Props, name)
	return i, i < len(c.Props) && c.Props[i] == name
}

// rawTagName extracts the tag name with its original case from a raw tag.
func rawTagName(tok []byte) string {
	tok = bytes.TrimPrefix(tok, []byte("<"))
	tok = bytes.TrimPrefix(tok, []byte("/"))
	end := 0
	for end < len(tok) {
		ch := tok[end]
		if ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\f' || ch == '/' || ch == '>' {
			break
		}
		end++
	}
	return string(tok[:end])
}

// isComponentName reports whether a tag refers to a component rather than an
// HTML element. Components start with an upper-case letter.
func isComponentName(name string) bool {
	return name != "" && name[0] >= 'A' && name[0] <= 'Z'
}

// unclosed reports the first component left open at the end of a document.
func (t *tagRewriter) unclosed() error {
	if len(t.stack) == 0 {
		return nil
	}
	top := t.stack[0]
	return &Error{Line: top.line, Component: top.name, Reason: "component is never closed"}
}
