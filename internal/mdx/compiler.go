// Package mdx compiles MDX-flavoured Markdown bodies into sanitized HTML.
//
// Bodies are CommonMark with GitHub extensions. Tags whose name starts with
// an upper-case letter are components; each must appear in the Registry the
// compiler was built with and is rendered as its registered element carrying
// data-component and data-<prop> attributes. Anything executable (ESM
// import/export, expression attributes, script markup) is rejected or
// stripped, so compiled output is safe to embed verbatim.
package mdx

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"git.home.luguber.info/inful/contentpipe/internal/logfields"
)

// DefaultTimeout bounds a single compilation.
const DefaultTimeout = 10 * time.Second

// rewrittenAttr carries the component-rewritten markup of a raw HTML node
// from the validation walk to the renderer.
const rewrittenAttr = "contentpipe-rewritten"

// Compiler turns bodies into CompiledContent. It is safe for concurrent use.
type Compiler struct {
	registry *Registry
	md       goldmark.Markdown
	policy   *bluemonday.Policy
	cache    Cache
	observe  func(hit bool)
	timeout  time.Duration
	logger   *slog.Logger
	parsing  []parser.Option
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithCache enables reuse of compiled output across calls.
func WithCache(c Cache) Option {
	return func(cm *Compiler) { cm.cache = c }
}

// WithCacheObserver registers a callback told about every cache lookup.
func WithCacheObserver(fn func(hit bool)) Option {
	return func(cm *Compiler) { cm.observe = fn }
}

// WithTimeout overrides DefaultTimeout. Non-positive values disable the limit.
func WithTimeout(d time.Duration) Option {
	return func(cm *Compiler) { cm.timeout = d }
}

// WithLogger sets the logger used for cache and timing messages.
func WithLogger(l *slog.Logger) Option {
	return func(cm *Compiler) { cm.logger = l }
}

// WithParserOptions extends the goldmark parser, for example with extra AST
// transformers. Changing what a body compiles to also requires a new
// registry version, or cached output goes stale.
func WithParserOptions(opts ...parser.Option) Option {
	return func(cm *Compiler) { cm.parsing = append(cm.parsing, opts...) }
}

// NewCompiler builds a compiler bound to registry.
func NewCompiler(registry *Registry, opts ...Option) *Compiler {
	if registry == nil {
		registry = MustRegistry()
	}
	c := &Compiler{
		registry: registry,
		policy:   newPolicy(),
		timeout:  DefaultTimeout,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.md = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(append([]parser.Option{parser.WithAutoHeadingID()}, c.parsing...)...),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
			renderer.WithNodeRenderers(util.Prioritized(rawHTMLRenderer{}, 100)),
		),
	)
	return c
}

// Registry returns the allow-list the compiler resolves components against.
func (c *Compiler) Registry() *Registry {
	return c.registry
}

// Compile compiles body. Identical bodies compiled against registries with
// the same version yield identical output.
func (c *Compiler) Compile(ctx context.Context, body []byte) (CompiledContent, error) {
	key := CacheKey(c.registry.Version(), body)
	if c.cache != nil {
		cached, ok := c.cache.Get(key)
		if c.observe != nil {
			c.observe(ok)
		}
		if ok {
			return cached, nil
		}
	}

	if err := ctx.Err(); err != nil {
		return CompiledContent{}, &Error{Reason: fmt.Sprintf("compilation aborted: %v", err)}
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	type result struct {
		out CompiledContent
		err error
	}
	done := make(chan result, 1)
	start := time.Now()
	go func() {
		out, err := c.compile(body)
		done <- result{out: out, err: err}
	}()

	select {
	case <-ctx.Done():
		return CompiledContent{}, &Error{Reason: fmt.Sprintf("compilation aborted: %v", ctx.Err())}
	case r := <-done:
		if r.err != nil {
			return CompiledContent{}, r.err
		}
		r.out.Fingerprint = key
		if c.cache != nil {
			c.cache.Put(key, r.out)
		}
		c.logger.Debug("Compiled body",
			logfields.DurationMS(float64(time.Since(start).Microseconds())/1000),
			logfields.Count(len(r.out.Components)))
		return r.out, nil
	}
}

func (c *Compiler) compile(body []byte) (CompiledContent, error) {
	if !utf8.Valid(body) {
		return CompiledContent{}, &Error{Reason: "body is not valid UTF-8"}
	}

	doc := c.md.Parser().Parse(text.NewReader(body))

	if err := rejectESM(doc, body); err != nil {
		return CompiledContent{}, err
	}

	rw := &tagRewriter{registry: c.registry}
	var headings []Heading
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if n.Type() == ast.TypeBlock && n.FirstChild() != nil && n.FirstChild().Type() == ast.TypeInline {
			if err := rejectMalformedTags(n, body); err != nil {
				return ast.WalkStop, err
			}
		}
		switch node := n.(type) {
		case *ast.Heading:
			headings = append(headings, headingOf(node, body))
		case *ast.HTMLBlock:
			raw, start := blockRaw(node, body)
			out, err := rw.rewrite(raw, lineAt(body, start), true)
			if err != nil {
				return ast.WalkStop, err
			}
			node.SetAttributeString(rewrittenAttr, out)
		case *ast.RawHTML:
			raw, start := inlineRaw(node, body)
			out, err := rw.rewrite(raw, lineAt(body, start), false)
			if err != nil {
				return ast.WalkStop, err
			}
			node.SetAttributeString(rewrittenAttr, out)
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return CompiledContent{}, err
	}
	if err := rw.unclosed(); err != nil {
		return CompiledContent{}, err
	}

	var buf bytes.Buffer
	if err := c.md.Renderer().Render(&buf, body, doc); err != nil {
		return CompiledContent{}, &Error{Reason: fmt.Sprintf("render: %v", err)}
	}

	return CompiledContent{
		HTML:       c.policy.Sanitize(buf.String()),
		Components: rw.uses,
		Headings:   headings,
	}, nil
}

// rejectESM fails on top-level import or export statements. Inside code
// blocks they are ordinary text and never reach this check.
func rejectESM(doc ast.Node, source []byte) error {
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		p, ok := n.(*ast.Paragraph)
		if !ok || p.Lines().Len() == 0 {
			continue
		}
		seg := p.Lines().At(0)
		first := string(seg.Value(source))
		for _, kw := range []string{"import ", "export "} {
			if strings.HasPrefix(first, kw) {
				return &Error{Line: lineAt(source, seg.Start), Reason: fmt.Sprintf("%s statements are not supported", strings.TrimSpace(kw))}
			}
		}
	}
	return nil
}

var malformedTag = regexp.MustCompile(`</?([A-Z][A-Za-z0-9.]*)`)

// rejectMalformedTags fails when prose contains something that looks like a
// component tag but did not parse as markup, such as a tag with a spread
// expression. Code spans are skipped.
func rejectMalformedTags(block ast.Node, source []byte) error {
	var prose []byte
	var starts []int
	var offsets []int
	var collect func(ast.Node)
	collect = func(parent ast.Node) {
		for c := parent.FirstChild(); c != nil; c = c.NextSibling() {
			switch t := c.(type) {
			case *ast.Text:
				starts = append(starts, len(prose))
				offsets = append(offsets, t.Segment.Start)
				prose = append(prose, t.Segment.Value(source)...)
			case *ast.CodeSpan, *ast.RawHTML, *ast.AutoLink:
				prose = append(prose, 0)
			default:
				collect(c)
			}
		}
	}
	collect(block)

	loc := malformedTag.FindSubmatchIndex(prose)
	if loc == nil {
		return nil
	}
	src := 0
	for i := range starts {
		if starts[i] <= loc[0] {
			src = offsets[i] + loc[0] - starts[i]
		}
	}
	return &Error{
		Line:      lineAt(source, src),
		Component: string(prose[loc[2]:loc[3]]),
		Reason:    "malformed component tag",
	}
}

func blockRaw(n *ast.HTMLBlock, source []byte) ([]byte, int) {
	var raw []byte
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		raw = append(raw, seg.Value(source)...)
	}
	if n.HasClosure() {
		raw = append(raw, n.ClosureLine.Value(source)...)
	}
	start := 0
	if lines.Len() > 0 {
		start = lines.At(0).Start
	}
	return raw, start
}

func inlineRaw(n *ast.RawHTML, source []byte) ([]byte, int) {
	var raw []byte
	for i := 0; i < n.Segments.Len(); i++ {
		seg := n.Segments.At(i)
		raw = append(raw, seg.Value(source)...)
	}
	start := 0
	if n.Segments.Len() > 0 {
		start = n.Segments.At(0).Start
	}
	return raw, start
}

func headingOf(n *ast.Heading, source []byte) Heading {
	h := Heading{Level: n.Level}
	if id, ok := n.AttributeString("id"); ok {
		if b, ok := id.([]byte); ok {
			h.ID = string(b)
		}
	}
	var sb strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			sb.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				sb.WriteByte(' ')
			}
		case *ast.String:
			sb.Write(t.Value)
		case *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	h.Text = strings.TrimSpace(sb.String())
	return h
}

func lineAt(source []byte, offset int) int {
	if offset > len(source) {
		offset = len(source)
	}
	return bytes.Count(source[:offset], []byte{'\n'}) + 1
}

// rawHTMLRenderer writes the rewritten markup stored on raw HTML nodes in
// place of their source text.
type rawHTMLRenderer struct{}

func (rawHTMLRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindHTMLBlock, renderRewritten)
	reg.Register(ast.KindRawHTML, renderRewritten)
}

func renderRewritten(w util.BufWriter, _ []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	if v, ok := n.AttributeString(rewrittenAttr); ok {
		if s, ok := v.(string); ok {
			_, _ = w.WriteString(s)
		}
	}
	if n.Kind() == ast.KindRawHTML {
		return ast.WalkSkipChildren, nil
	}
	return ast.WalkContinue, nil
}
