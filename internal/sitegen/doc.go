// Package sitegen runs a static generation build: it enumerates every route
// template once, resolves each routed document through the query facade,
// and writes one JSON page payload per route together with the route
// manifest and the build diagnostics.
//
// Output is written to a sibling staging directory and promoted over the
// output directory only after every file was written, so a failed or
// canceled build leaves the previous output in place.
package sitegen
