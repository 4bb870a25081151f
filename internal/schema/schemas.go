package schema

import "git.home.luguber.info/inful/contentpipe/internal/content"

// For returns the schema of content type t.
func For(t content.Type) Schema {
	switch t {
	case content.Portfolio:
		return portfolioSchema
	case content.Service:
		return serviceSchema
	case content.City:
		return citySchema
	case content.Comparison:
		return comparisonSchema
	case content.Glossary:
		return glossarySchema
	default:
		return Schema{}
	}
}

var portfolioSchema = Schema{Fields: []Field{
	reqStr("title"),
	str("description"),
	object("client",
		reqStr("name"),
		str("industry"),
	),
	required(strList("tags")),
	required(objList("metrics",
		reqStr("label"),
		reqStr("value"),
	)),
	object("testimonial",
		reqStr("quote"),
		reqStr("author"),
		str("role"),
	),
	str("image"),
	date("date"),
	str("liveUrl"),
	str("githubUrl"),
}}

var serviceSchema = Schema{Fields: []Field{
	reqStr("title"),
	reqStr("description"),
	reqStr("icon"),
	required(object("pricing",
		required(number("from")),
		withDefault(str("currency"), "USD"),
		withDefault(str("unit"), "project"),
	)),
	required(nonEmpty(strList("deliverables"))),
	objList("processSteps",
		reqStr("title"),
		str("description"),
	),
	strList("relatedCaseStudies"),
}}

var citySchema = Schema{Fields: []Field{
	reqStr("title"),
	reqStr("description"),
	reqStr("city"),
	str("region"),
	strList("nearbyServices"),
	strList("relatedCaseStudies"),
	strList("highlights"),
}}

var comparisonSchema = Schema{Fields: []Field{
	reqStr("title"),
	reqStr("description"),
	reqStr("subject"),
	reqStr("alternative"),
	objList("criteria",
		reqStr("label"),
		reqStr("subject"),
		reqStr("alternative"),
	),
	date("date"),
	strList("relatedServices"),
}}

var glossarySchema = Schema{Fields: []Field{
	reqStr("term"),
	reqStr("definition"),
	strList("aliases"),
	strList("relatedTerms"),
}}
