package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
)

func TestClassifiedError(t *testing.T) {
	t.Run("Basic error creation", func(t *testing.T) {
		err := NewError(CategorySchema, "front matter rejected").
			WithSeverity(SeverityFatal).
			WithContext("slug", "web-development").
			Build()

		if err.Category() != CategorySchema {
			t.Errorf("expected category %s, got %s", CategorySchema, err.Category())
		}
		if err.Severity() != SeverityFatal {
			t.Errorf("expected severity %s, got %s", SeverityFatal, err.Severity())
		}
		if err.Message() != "front matter rejected" {
			t.Errorf("expected message 'front matter rejected', got %s", err.Message())
		}

		slug, exists := err.Context().GetString("slug")
		if !exists || slug != "web-development" {
			t.Errorf("expected context slug=web-development, got %v", slug)
		}
	})

	t.Run("Error detection through wrapping", func(t *testing.T) {
		inner := CompileError("unknown component").Build()
		wrapped := fmt.Errorf("compile body: %w", inner)

		if !IsClassified(wrapped) {
			t.Error("expected wrapped error to be classified")
		}
		if !HasCategory(wrapped, CategoryCompile) {
			t.Error("expected wrapped error to have compile category")
		}
		if GetCategory(errors.New("plain")) != CategoryInternal {
			t.Error("expected unclassified error to map to internal")
		}
	})

	t.Run("Error string is stable", func(t *testing.T) {
		err := SchemaError("invalid").
			WithContext("slug", "a").
			WithContext("content_type", "service").
			Build()
		want := "[schema:error] invalid (content_type=service, slug=a)"
		if err.Error() != want {
			t.Errorf("expected %q, got %q", want, err.Error())
		}
	})

	t.Run("WithContext does not mutate the original", func(t *testing.T) {
		base := NotFoundError("missing").WithContext("slug", "a").Build()
		derived := base.WithContext("content_type", "portfolio")

		if _, ok := base.Context().Get("content_type"); ok {
			t.Error("expected base context to be unchanged")
		}
		if v, _ := derived.Context().GetString("content_type"); v != "portfolio" {
			t.Errorf("expected derived content_type=portfolio, got %q", v)
		}
	})
}

func TestErrorBuilder(t *testing.T) {
	t.Run("Wrap keeps cause", func(t *testing.T) {
		originalErr := errors.New("permission denied")
		err := WrapError(originalErr, CategoryFileSystem, "read failed").
			Warning().
			WithContext("path", "portfolio/acme.mdx").
			Build()

		if err.Severity() != SeverityWarning {
			t.Errorf("expected severity %s, got %s", SeverityWarning, err.Severity())
		}
		if !errors.Is(err, originalErr) {
			t.Error("expected error to wrap original error")
		}
	})

	t.Run("Convenience constructors", func(t *testing.T) {
		tests := []struct {
			name     string
			builder  *ErrorBuilder
			category ErrorCategory
			severity ErrorSeverity
		}{
			{"ConfigError", ConfigError("test"), CategoryConfig, SeverityFatal},
			{"ValidationError", ValidationError("test"), CategoryValidation, SeverityFatal},
			{"NotFoundError", NotFoundError("test"), CategoryNotFound, SeverityInfo},
			{"SchemaError", SchemaError("test"), CategorySchema, SeverityError},
			{"CompileError", CompileError("test"), CategoryCompile, SeverityError},
			{"RelationError", RelationError("test"), CategoryRelation, SeverityWarning},
			{"FileSystemError", FileSystemError("test"), CategoryFileSystem, SeverityError},
			{"BuildError", BuildError("test"), CategoryBuild, SeverityFatal},
			{"InternalError", InternalError("test"), CategoryInternal, SeverityFatal},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				err := tt.builder.Build()
				if err.Category() != tt.category {
					t.Errorf("expected category %s, got %s", tt.category, err.Category())
				}
				if err.Severity() != tt.severity {
					t.Errorf("expected severity %s, got %s", tt.severity, err.Severity())
				}
			})
		}
	})
}

func TestErrorContext(t *testing.T) {
	ctx1 := make(ErrorContext)
	ctx1 = ctx1.Set("key1", "value1")
	ctx1 = ctx1.Set("shared", "original")

	ctx2 := make(ErrorContext)
	ctx2 = ctx2.Set("shared", "overridden")

	merged := ctx1.Merge(ctx2)

	value1, _ := merged.GetString("key1")
	shared, _ := merged.GetString("shared")
	if value1 != "value1" {
		t.Errorf("expected key1=value1, got %s", value1)
	}
	if shared != "overridden" {
		t.Errorf("expected shared=overridden, got %s", shared)
	}
}

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil error", nil, 0},
		{"validation", ValidationError("bad flag").Build(), 2},
		{"config", ConfigError("bad config").Build(), 7},
		{"schema", SchemaError("missing field").Build(), 9},
		{"wrapped compile", fmt.Errorf("page: %w", CompileError("unknown component").Build()), 9},
		{"build", BuildError("fatal diagnostics").Build(), 11},
		{"unclassified", errors.New("boom"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := adapter.ExitCodeFor(tt.err); got != tt.expected {
				t.Errorf("ExitCodeFor() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCLIErrorAdapter_FormatErrorNamesDocument(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())
	err := SchemaError("front matter rejected").
		WithContext("slug", "web-development").
		WithContext("field", "pricing.from").
		Build()

	msg := adapter.FormatError(err)
	for _, want := range []string{"front matter rejected", "slug: web-development", "field: pricing.from"} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected %q in %q", want, msg)
		}
	}
}
