package schema

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/contentpipe/internal/content"
)

func validService() map[string]any {
	return map[string]any{
		"title":       "Web Development",
		"description": "Sites that convert.",
		"icon":        "code",
		"pricing": map[string]any{
			"from": "$1,500",
		},
		"deliverables":       []any{"Design system", "Next.js build"},
		"relatedCaseStudies": []any{"acme-redesign", "ghost-client"},
	}
}

func TestValidate_ServiceNormalizesPricingAndDefaults(t *testing.T) {
	fm, err := NewValidator().Validate(content.Service, "web-development", validService())
	require.NoError(t, err)

	svc, ok := fm.(content.ServiceFrontmatter)
	require.True(t, ok)
	require.InDelta(t, 1500.0, svc.Pricing.From, 0.0001)
	require.Equal(t, "USD", svc.Pricing.Currency)
	require.Equal(t, "project", svc.Pricing.Unit)
	require.Equal(t, []string{"Design system", "Next.js build"}, svc.Deliverables)
	require.Equal(t, []string{"acme-redesign", "ghost-client"}, svc.RelatedCaseStudies)
	require.Empty(t, svc.ProcessSteps)
}

func TestValidate_ServiceMissingPricingFromNamesField(t *testing.T) {
	raw := validService()
	raw["pricing"] = map[string]any{"currency": "EUR"}

	_, err := NewValidator().Validate(content.Service, "web-development", raw)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrSchema)

	var schemaErr *Error
	require.True(t, errors.As(err, &schemaErr))
	require.Equal(t, []string{"pricing.from"}, schemaErr.Fields())
	require.Equal(t, "web-development", schemaErr.Slug)
	require.Contains(t, err.Error(), "pricing.from: required field missing")
}

func TestValidate_ServiceWithoutPricingNamesNestedFields(t *testing.T) {
	raw := validService()
	delete(raw, "pricing")

	_, err := NewValidator().Validate(content.Service, "web-development", raw)
	require.Error(t, err)

	var schemaErr *Error
	require.True(t, errors.As(err, &schemaErr))
	require.Equal(t, []string{"pricing", "pricing.from"}, schemaErr.Fields())
	require.True(t, schemaErr.HasField("pricing.from"))
}

func TestValidate_CollectsEveryIssueSortedByPath(t *testing.T) {
	raw := validService()
	delete(raw, "title")
	raw["deliverables"] = []any{}
	raw["processSteps"] = []any{map[string]any{"description": "no title"}}

	_, err := NewValidator().Validate(content.Service, "web-development", raw)
	var schemaErr *Error
	require.True(t, errors.As(err, &schemaErr))
	require.Equal(t, []string{"deliverables", "processSteps[0].title", "title"}, schemaErr.Fields())
}

func TestValidate_RejectsWrongShapes(t *testing.T) {
	tests := []struct {
		name  string
		patch func(map[string]any)
		field string
	}{
		{"scalar for list", func(m map[string]any) { m["deliverables"] = "everything" }, "deliverables"},
		{"list for object", func(m map[string]any) { m["pricing"] = []any{1} }, "pricing"},
		{"object for string", func(m map[string]any) { m["icon"] = map[string]any{"a": 1} }, "icon"},
		{"unparseable price", func(m map[string]any) { m["pricing"] = map[string]any{"from": "call us"} }, "pricing.from"},
		{"empty title", func(m map[string]any) { m["title"] = "" }, "title"},
		{"null list item", func(m map[string]any) { m["deliverables"] = []any{"a", nil} }, "deliverables[1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validService()
			tt.patch(raw)
			_, err := NewValidator().Validate(content.Service, "web-development", raw)
			var schemaErr *Error
			require.True(t, errors.As(err, &schemaErr))
			require.True(t, schemaErr.HasField(tt.field), "fields: %v", schemaErr.Fields())
		})
	}
}

func TestValidate_PortfolioScenarioFrontmatter(t *testing.T) {
	raw := map[string]any{
		"title":   "Acme Redesign",
		"tags":    []any{"react", "typescript"},
		"metrics": []any{map[string]any{"label": "Conversion", "value": "32%"}},
		"date":    "2024-03-01",
	}

	fm, err := NewValidator().Validate(content.Portfolio, "acme-redesign", raw)
	require.NoError(t, err)

	p := fm.(content.PortfolioFrontmatter)
	require.Equal(t, "Acme Redesign", p.Title)
	require.Equal(t, []content.Metric{{Label: "Conversion", Value: "32%"}}, p.Metrics)
	require.True(t, p.Date.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)), "date: %s", p.Date)
	require.Nil(t, p.Testimonial)
}

func TestValidate_PortfolioRequiresTagsAndMetrics(t *testing.T) {
	_, err := NewValidator().Validate(content.Portfolio, "empty", map[string]any{"title": "Empty"})
	var schemaErr *Error
	require.True(t, errors.As(err, &schemaErr))
	require.Equal(t, []string{"metrics", "tags"}, schemaErr.Fields())
}

func TestValidate_NumericMetricValueBecomesString(t *testing.T) {
	raw := map[string]any{
		"title":   "Numbers",
		"tags":    []any{},
		"metrics": []any{map[string]any{"label": "Pages", "value": 120}},
	}
	fm, err := NewValidator().Validate(content.Portfolio, "numbers", raw)
	require.NoError(t, err)
	require.Equal(t, "120", fm.(content.PortfolioFrontmatter).Metrics[0].Value)
}

func TestValidate_OptionalTestimonialIsValidatedWhenPresent(t *testing.T) {
	raw := map[string]any{
		"title":       "Acme",
		"tags":        []any{},
		"metrics":     []any{},
		"testimonial": map[string]any{"quote": "Great"},
	}
	_, err := NewValidator().Validate(content.Portfolio, "acme", raw)
	var schemaErr *Error
	require.True(t, errors.As(err, &schemaErr))
	require.Equal(t, []string{"testimonial.author"}, schemaErr.Fields())
}

func TestValidate_EveryTypeHasASchema(t *testing.T) {
	for _, typ := range content.AllTypes() {
		require.NotEmpty(t, For(typ).Fields, typ.String())
	}
}

func TestValidate_GlossaryAndCity(t *testing.T) {
	fm, err := NewValidator().Validate(content.Glossary, "api", map[string]any{
		"term":         "API",
		"definition":   "Application programming interface.",
		"relatedTerms": []any{"rest", "api"},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"rest", "api"}, fm.(content.GlossaryFrontmatter).RelatedTerms)

	_, err = NewValidator().Validate(content.City, "berlin", map[string]any{"title": "Berlin"})
	var schemaErr *Error
	require.True(t, errors.As(err, &schemaErr))
	require.Equal(t, []string{"city", "description"}, schemaErr.Fields())
}

func TestParseFormattedNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"1500", 1500},
		{"$1,500", 1500},
		{"USD 2,500.50", 2500.5},
		{"EUR 2,500", 2500},
		{"EUR 2.500", 2.5},
		{"1,500 USD", 1500},
		{"€ 900", 900},
		{"10k+", 10000},
		{"2.5M", 2500000},
	}
	for _, tt := range tests {
		got, err := parseFormattedNumber(tt.in)
		require.NoError(t, err, tt.in)
		require.InDelta(t, tt.want, got, 0.0001, tt.in)
	}

	_, err := parseFormattedNumber("contact us")
	require.Error(t, err)
}
