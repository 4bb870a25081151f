package mdx

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

func newTestCompiler(t *testing.T, opts ...Option) *Compiler {
	t.Helper()
	reg, err := NewRegistry(DefaultComponents()...)
	require.NoError(t, err)
	return NewCompiler(reg, opts...)
}

func compileErr(t *testing.T, c *Compiler, body string) *Error {
	t.Helper()
	_, err := c.Compile(context.Background(), []byte(body))
	require.Error(t, err)
	require.ErrorIs(t, err, ErrCompile)
	var ce *Error
	require.True(t, errors.As(err, &ce))
	return ce
}

func TestCompile_Markdown(t *testing.T) {
	c := newTestCompiler(t)
	out, err := c.Compile(context.Background(), []byte("# Hello World\n\nSome **bold** text.\n\n## Next `step`\n"))
	require.NoError(t, err)
	require.Contains(t, out.HTML, `<h1 id="hello-world">Hello World</h1>`)
	require.Contains(t, out.HTML, "<strong>bold</strong>")
	require.Equal(t, []Heading{
		{Level: 1, ID: "hello-world", Text: "Hello World"},
		{Level: 2, ID: "next-step", Text: "Next step"},
	}, out.Headings)
	require.NotEmpty(t, out.Fingerprint)
	require.Empty(t, out.Components)
}

func TestCompile_GFM(t *testing.T) {
	c := newTestCompiler(t)
	body := "| a | b |\n|---|---|\n| 1 | 2 |\n\n~~old~~\n\n- [x] done\n"
	out, err := c.Compile(context.Background(), []byte(body))
	require.NoError(t, err)
	require.Contains(t, out.HTML, "<table>")
	require.Contains(t, out.HTML, "<del>old</del>")
	require.Contains(t, out.HTML, `type="checkbox"`)
}

func TestCompile_BlockComponent(t *testing.T) {
	c := newTestCompiler(t)
	body := "Intro.\n\n<Callout type=\"tip\" title=\"Heads up\">\n\nRead **this**.\n\n</Callout>\n"
	out, err := c.Compile(context.Background(), []byte(body))
	require.NoError(t, err)
	require.Contains(t, out.HTML, `<aside data-component="Callout" data-title="Heads up" data-type="tip">`)
	require.Contains(t, out.HTML, "</aside>")
	require.Contains(t, out.HTML, "<strong>this</strong>")
	require.NotContains(t, out.HTML, "Callout>")
	require.Equal(t, []ComponentUse{{Name: "Callout", Props: map[string]string{"type": "tip", "title": "Heads up"}, Line: 3}}, out.Components)
}

func TestCompile_InlineAndVoidComponents(t *testing.T) {
	c := newTestCompiler(t)
	body := "Now <Badge tone=\"new\">Beta</Badge> for all.\n\n<Metric label=\"Conversion\" value=\"+32%\" />\n"
	out, err := c.Compile(context.Background(), []byte(body))
	require.NoError(t, err)
	require.Contains(t, out.HTML, `<span data-component="Badge" data-tone="new">Beta</span>`)
	require.Contains(t, out.HTML, `<div data-component="Metric" data-label="Conversion" data-value="+32%"></div>`)
	require.Len(t, out.Components, 2)
	require.Equal(t, "Badge", out.Components[0].Name)
	require.Equal(t, "Metric", out.Components[1].Name)
	require.Equal(t, 3, out.Components[1].Line)
}

func TestCompile_NestedComponents(t *testing.T) {
	c := newTestCompiler(t)
	body := "<Steps>\n\n<Step title=\"One\">\n\nFirst.\n\n</Step>\n\n<Step title=\"Two\">\n\nSecond.\n\n</Step>\n\n</Steps>\n"
	out, err := c.Compile(context.Background(), []byte(body))
	require.NoError(t, err)
	require.Len(t, out.Components, 3)
	require.Contains(t, out.HTML, `<section data-component="Steps">`)
	require.Contains(t, out.HTML, `<div data-component="Step" data-title="Two">`)
}

func TestCompile_Rejections(t *testing.T) {
	c := newTestCompiler(t)
	tests := []struct {
		name      string
		body      string
		component string
		line      int
		reason    string
	}{
		{"unknown component", "Text.\n\n<Chart data=\"x\" />\n", "Chart", 3, "allow-list"},
		{"unknown prop", "<Callout kind=\"tip\">\n\nx\n\n</Callout>\n", "Callout", 1, `unknown prop "kind"`},
		{"expression value", "<Metric label=\"a\" value={32} />\n", "Metric", 1, "expression values"},
		{"spread attribute", "<Callout {...props}>\n\nx\n\n</Callout>\n", "Callout", 1, "malformed component tag"},
		{"unparsed tag in prose", "Some text\nwith <Chart {data} /> inline.\n", "Chart", 2, "malformed component tag"},
		{"duplicate prop", "<Badge tone=\"a\" tone=\"b\">x</Badge>\n", "Badge", 1, "given twice"},
		{"never closed", "# T\n\n<Callout type=\"tip\">\n\nx\n", "Callout", 3, "never closed"},
		{"mismatched close", "<Steps>\n\n<Step title=\"a\">\n\nx\n\n</Steps>\n", "Steps", 7, "does not match <Step>"},
		{"stray close", "text\n\n</Callout>\n", "Callout", 3, "without matching"},
		{"void with children", "<Metric label=\"a\" value=\"b\">inner</Metric>\n", "Metric", 1, "does not accept children"},
		{"import", "import Chart from './chart'\n\n# Title\n", "", 1, "import statements"},
		{"export", "# Title\n\nexport const meta = {}\n", "", 3, "export statements"},
		{"forged mount on plain element", "<div data-component=\"AdminPanel\" data-endpoint=\"/wipe\">hi</div>\n", "", 1, `"data-component" is reserved`},
		{"forged inline mount", "Hi <span data-component=\"Callout\" data-onmount=\"x\">there</span>.\n", "", 1, "reserved for component props"},
		{"children without blank lines", "<Callout type=\"tip\">\n**Bold** inside\n</Callout>\n", "Callout", 2, "blank lines"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ce := compileErr(t, c, tc.body)
			require.Equal(t, tc.component, ce.Component)
			require.Equal(t, tc.line, ce.Line)
			require.Contains(t, ce.Error(), tc.reason)
		})
	}
}

func TestCompile_PlainHTMLInsideComponentBlock(t *testing.T) {
	c := newTestCompiler(t)
	out, err := c.Compile(context.Background(), []byte("<Callout type=\"tip\">\n<p>Plain <em>HTML</em></p>\n</Callout>\n"))
	require.NoError(t, err)
	require.Contains(t, out.HTML, "<p>Plain <em>HTML</em></p>")
	require.Len(t, out.Components, 1)
}

func TestCompile_CodeIsNotInterpreted(t *testing.T) {
	c := newTestCompiler(t)
	body := "```mdx\nimport Chart from './chart'\n<Chart />\n```\n\nUse `<Chart />` inline.\n"
	out, err := c.Compile(context.Background(), []byte(body))
	require.NoError(t, err)
	require.Contains(t, out.HTML, `class="language-mdx"`)
	require.Contains(t, out.HTML, "&lt;Chart /&gt;")
	require.Empty(t, out.Components)
}

func TestCompile_Sanitizes(t *testing.T) {
	c := newTestCompiler(t)
	body := "<script>alert(1)</script>\n\n<div onclick=\"steal()\">hi</div>\n\n[x](javascript:alert(1))\n\n<img src=\"x.png\" onerror=\"steal()\">\n"
	out, err := c.Compile(context.Background(), []byte(body))
	require.NoError(t, err)
	require.NotContains(t, out.HTML, "<script")
	require.NotContains(t, out.HTML, "alert(1)")
	require.NotContains(t, out.HTML, "onclick")
	require.NotContains(t, out.HTML, "onerror")
	require.NotContains(t, out.HTML, "javascript:")
	require.Contains(t, out.HTML, "hi")
}

func TestCompile_PropValuesAreEscaped(t *testing.T) {
	c := newTestCompiler(t)
	out, err := c.Compile(context.Background(), []byte("<Callout title='\"&gt;&lt;script&gt;x'>\n\nbody\n\n</Callout>\n"))
	require.NoError(t, err)
	require.NotContains(t, out.HTML, "<script")
	require.Equal(t, `"><script>x`, out.Components[0].Props["title"])
}

func TestCompile_InvalidUTF8(t *testing.T) {
	c := newTestCompiler(t)
	_, err := c.Compile(context.Background(), []byte{'#', ' ', 0xff, 0xfe})
	require.ErrorIs(t, err, ErrCompile)
	require.Contains(t, err.Error(), "UTF-8")
}

func TestCompile_CanceledContext(t *testing.T) {
	c := newTestCompiler(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Compile(ctx, []byte("# Title\n"))
	require.ErrorIs(t, err, ErrCompile)
	require.Contains(t, err.Error(), "aborted")
}

// stallTransformer blocks parsing of bodies containing "stall" until release
// is closed.
type stallTransformer struct{ release chan struct{} }

func (s stallTransformer) Transform(_ *ast.Document, reader text.Reader, _ parser.Context) {
	if bytes.Contains(reader.Source(), []byte("stall")) {
		<-s.release
	}
}

func TestCompile_Timeout(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })
	c := newTestCompiler(t,
		WithTimeout(20*time.Millisecond),
		WithParserOptions(parser.WithASTTransformers(util.Prioritized(stallTransformer{release: release}, 1))))

	ce := compileErr(t, c, "# Slow\n\nstall\n")
	require.Contains(t, ce.Error(), "deadline exceeded")

	out, err := c.Compile(context.Background(), []byte("# Fast\n"))
	require.NoError(t, err)
	require.Contains(t, out.HTML, "Fast")
}

func TestCompile_Deterministic(t *testing.T) {
	c := newTestCompiler(t)
	body := []byte("# A\n\n<Callout type=\"tip\">\n\nx\n\n</Callout>\n\n<Metric value=\"1\" label=\"b\" />\n")
	first, err := c.Compile(context.Background(), body)
	require.NoError(t, err)
	for range 5 {
		again, err := c.Compile(context.Background(), body)
		require.NoError(t, err)
		require.Equal(t, first, again)
	}

	other := NewCompiler(MustRegistry(append(DefaultComponents(), Component{Name: "Chart", Element: "figure"})...))
	third, err := other.Compile(context.Background(), body)
	require.NoError(t, err)
	require.Equal(t, first.HTML, third.HTML)
	require.NotEqual(t, first.Fingerprint, third.Fingerprint)
}

func TestCompile_Cache(t *testing.T) {
	cache := NewMemoryCache()
	c := newTestCompiler(t, WithCache(cache))
	body := []byte("# Cached\n")
	a, err := c.Compile(context.Background(), body)
	require.NoError(t, err)
	b, err := c.Compile(context.Background(), body)
	require.NoError(t, err)
	require.Equal(t, a, b)
	require.Equal(t, 1, cache.Len())

	_, err = c.Compile(context.Background(), []byte("<Chart />\n"))
	require.Error(t, err)
	require.Equal(t, 1, cache.Len(), "failures are not cached")

	got, ok := cache.Get(CacheKey(c.Registry().Version(), body))
	require.True(t, ok)
	require.Equal(t, a, got)
}
