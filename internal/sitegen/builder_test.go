package sitegen

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/contentpipe/internal/content"
	"git.home.luguber.info/inful/contentpipe/internal/diagnostics"
	ferrors "git.home.luguber.info/inful/contentpipe/internal/foundation/errors"
	"git.home.luguber.info/inful/contentpipe/internal/mdx"
	"git.home.luguber.info/inful/contentpipe/internal/pagemeta"
	"git.home.luguber.info/inful/contentpipe/internal/query"
	"git.home.luguber.info/inful/contentpipe/internal/routes"
	"git.home.luguber.info/inful/contentpipe/internal/store"
)

const (
	acmeRedesign = `---
title: "Acme Redesign"
tags: ["react", "typescript"]
metrics:
  - label: "Conversion"
    value: "32%"
---
# Acme

<Metric label="Conversion" value="32%" />
`
	webDevelopment = `---
title: Web Development
description: Sites and apps
icon: code
pricing:
  from: 5000
deliverables: ["Next.js site"]
relatedCaseStudies: ["acme-redesign", "ghost-client"]
---
We build for the web.
`
	mobileAppsBroken = `---
title: Mobile Apps
description: Native apps
icon: phone
pricing:
  currency: EUR
deliverables: ["iOS app"]
---
`
)

func scenarioFS() fstest.MapFS {
	return fstest.MapFS{
		"portfolio/acme-redesign.mdx":  {Data: []byte(acmeRedesign)},
		"services/web-development.mdx": {Data: []byte(webDevelopment)},
	}
}

func newBuilder(t *testing.T, fsys fstest.MapFS, opts ...Option) *Builder {
	t.Helper()
	f := query.New(store.New(fsys), mdx.NewCompiler(mdx.MustRegistry(mdx.DefaultComponents()...)),
		query.WithFatalTypes(content.Service),
		query.WithFixedSlugs(content.Service, []string{"mobile-apps", "web-development"}))
	enum := routes.New(f)
	meta := pagemeta.New(f, pagemeta.Site{Name: "Studio", BaseURL: "https://studio.test"})
	return New(f, enum, meta, opts...)
}

func readPage(t *testing.T, path string) Page {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var p struct {
		Page
		Frontmatter json.RawMessage `json:"frontmatter"`
	}
	require.NoError(t, json.Unmarshal(data, &p))
	return p.Page
}

func TestRun_WritesPagesManifestAndDiagnostics(t *testing.T) {
	out := filepath.Join(t.TempDir(), "dist")
	b := newBuilder(t, scenarioFS(), WithOutputDir(out))

	r, err := b.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, r.Status)
	require.NotEmpty(t, r.BuildID)
	require.Equal(t, 2, r.Pages)
	require.Equal(t, 1, r.Routes["/portfolio/[slug]"])
	require.Equal(t, 1, r.Routes["/services/[slug]"])
	require.Equal(t, 1, r.Warnings)
	require.Zero(t, r.Fatal)

	acme := readPage(t, filepath.Join(out, "portfolio", "acme-redesign.json"))
	require.Equal(t, "/portfolio/acme-redesign", acme.Route)
	require.Equal(t, "Acme Redesign | Studio", acme.Metadata.Title)
	require.Contains(t, acme.Body.HTML, `data-component="Metric"`)

	svc := readPage(t, filepath.Join(out, "services", "web-development.json"))
	require.Len(t, svc.Related, 1)
	require.Equal(t, content.Portfolio, svc.Related[0].Type)
	require.Equal(t, []RelatedItem{{Slug: "acme-redesign", Title: "Acme Redesign", Route: "/portfolio/acme-redesign"}}, svc.Related[0].Items)

	var manifest struct {
		Hash   string                    `json:"manifestHash"`
		Routes map[string][]routes.Param `json:"routes"`
		Pages  []ManifestEntry           `json:"pages"`
	}
	data, err := os.ReadFile(filepath.Join(out, RoutesFile))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &manifest))
	require.Equal(t, r.ManifestHash, manifest.Hash)
	require.Equal(t, []routes.Param{{Slug: "acme-redesign"}}, manifest.Routes["/portfolio/[slug]"])
	require.Len(t, manifest.Pages, 2)

	var diags []diagnostics.Diagnostic
	data, err = os.ReadFile(filepath.Join(out, DiagnosticsFile))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &diags))
	require.Len(t, diags, 1)
	require.Equal(t, diagnostics.KindDanglingRelation, diags[0].Kind)
	require.Equal(t, "ghost-client", diags[0].Target.Slug)

	_, err = os.Stat(out + "_stage")
	require.True(t, os.IsNotExist(err))
}

func TestRun_FatalDocumentFailsBuildAfterWritingHealthyPages(t *testing.T) {
	fsys := scenarioFS()
	fsys["services/mobile-apps.mdx"] = &fstest.MapFile{Data: []byte(mobileAppsBroken)}
	out := filepath.Join(t.TempDir(), "dist")
	b := newBuilder(t, fsys, WithOutputDir(out))

	r, err := b.Run(context.Background())
	require.Error(t, err)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryBuild))
	require.Contains(t, ferrors.GetString(err, "documents"), "service/mobile-apps [pricing.from]")
	require.Equal(t, StatusFailed, r.Status)
	require.Equal(t, 1, r.Fatal)

	require.FileExists(t, filepath.Join(out, "portfolio", "acme-redesign.json"))
	require.FileExists(t, filepath.Join(out, "services", "web-development.json"))
	require.NoFileExists(t, filepath.Join(out, "services", "mobile-apps.json"))
}

func TestRun_ManifestHashIsStableAcrossBuilds(t *testing.T) {
	b := newBuilder(t, scenarioFS(), WithDryRun(true))

	first, err := b.Run(context.Background())
	require.NoError(t, err)
	second, err := b.Run(context.Background())
	require.NoError(t, err)

	require.NotEqual(t, first.BuildID, second.BuildID)
	require.Equal(t, first.ManifestHash, second.ManifestHash)
	require.Equal(t, first.Diagnostics, second.Diagnostics)
}

func TestRun_DryRunWritesNothing(t *testing.T) {
	out := filepath.Join(t.TempDir(), "dist")
	b := newBuilder(t, scenarioFS(), WithOutputDir(out), WithDryRun(true))

	r, err := b.Run(context.Background())
	require.NoError(t, err)
	require.True(t, r.DryRun)
	require.Equal(t, 2, r.Pages)
	require.NoDirExists(t, out)
}

func TestRun_RebuildReplacesPreviousOutput(t *testing.T) {
	fsys := scenarioFS()
	fsys["portfolio/old-site.mdx"] = &fstest.MapFile{Data: []byte("---\ntitle: Old\ntags: [x]\nmetrics: []\n---\n")}
	out := filepath.Join(t.TempDir(), "dist")
	b := newBuilder(t, fsys, WithOutputDir(out))

	_, err := b.Run(context.Background())
	require.NoError(t, err)
	require.FileExists(t, filepath.Join(out, "portfolio", "old-site.json"))

	delete(fsys, "portfolio/old-site.mdx")
	_, err = b.Run(context.Background())
	require.NoError(t, err)
	require.NoFileExists(t, filepath.Join(out, "portfolio", "old-site.json"))
	require.FileExists(t, filepath.Join(out, "portfolio", "acme-redesign.json"))
	require.NoDirExists(t, out+".prev")
}

func TestRun_CanceledContext(t *testing.T) {
	out := filepath.Join(t.TempDir(), "dist")
	b := newBuilder(t, scenarioFS(), WithOutputDir(out))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r, err := b.Run(ctx)
	require.Error(t, err)
	require.Equal(t, StatusCanceled, r.Status)
	require.NoDirExists(t, out)
}

func TestComputeManifestHash_IgnoresOrder(t *testing.T) {
	a := []ManifestEntry{{Route: "/a", Hash: "1"}, {Route: "/b", Hash: "2"}}
	b := []ManifestEntry{{Route: "/b", Hash: "2"}, {Route: "/a", Hash: "1"}}
	require.Equal(t, ComputeManifestHash(a), ComputeManifestHash(b))
	require.NotEqual(t, ComputeManifestHash(a), ComputeManifestHash(a[:1]))
	require.Len(t, ComputeManifestHash(nil), 64)
}

func TestPage_ResolvesOneDocument(t *testing.T) {
	b := newBuilder(t, scenarioFS())

	p, err := b.Page(context.Background(), content.Service, "web-development")
	require.NoError(t, err)
	require.Equal(t, "/services/web-development", p.Route)
	require.Equal(t, "https://studio.test/services/web-development", p.Metadata.Canonical)
	require.Len(t, p.Related, 1)

	_, err = b.Page(context.Background(), content.Portfolio, "ghost-client")
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryNotFound))
}
