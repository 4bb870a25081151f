// Package content defines the content types served by the site and the
// records the pipeline passes between its stages: raw documents read from
// disk, typed front matter, validated documents and relation references.
//
// Every per-type decision is an exhaustive switch over Type, so adding a
// content type is a compile-checked change rather than a new map entry.
package content
