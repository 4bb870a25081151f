// Package errors provides classified error primitives used across contentpipe.
//
// Errors carry a category (what kind of failure), a severity (whether the
// build may continue) and a small context map naming the content type, slug
// and field involved, so the CLI can print something an author can act on.
//
// Example usage:
//
//	err := errors.NewError(errors.CategorySchema, "front matter rejected").
//		Warning().
//		WithContext("content_type", "portfolio").
//		WithContext("slug", slug).
//		WithCause(schemaErr).
//		Build()
package errors
