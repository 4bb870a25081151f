package content

import "time"

// Frontmatter is the set of typed front matter records. Document[T] is only
// instantiated with one of these.
type Frontmatter interface {
	PortfolioFrontmatter | ServiceFrontmatter | CityFrontmatter | ComparisonFrontmatter | GlossaryFrontmatter
}

// Client names the customer behind a case study.
type Client struct {
	Name     string `yaml:"name" json:"name"`
	Industry string `yaml:"industry" json:"industry"`
}

// Metric is a headline result such as "Conversion: 32%".
type Metric struct {
	Label string `yaml:"label" json:"label"`
	Value string `yaml:"value" json:"value"`
}

type Testimonial struct {
	Quote  string `yaml:"quote" json:"quote"`
	Author string `yaml:"author" json:"author"`
	Role   string `yaml:"role" json:"role,omitempty"`
}

// PortfolioFrontmatter describes a case study.
type PortfolioFrontmatter struct {
	Title       string       `yaml:"title" json:"title"`
	Description string       `yaml:"description" json:"description"`
	Client      Client       `yaml:"client" json:"client"`
	Tags        []string     `yaml:"tags" json:"tags"`
	Metrics     []Metric     `yaml:"metrics" json:"metrics"`
	Testimonial *Testimonial `yaml:"testimonial,omitempty" json:"testimonial,omitempty"`
	Image       string       `yaml:"image,omitempty" json:"image,omitempty"`
	Date        time.Time    `yaml:"date" json:"date"`
	LiveURL     string       `yaml:"liveUrl,omitempty" json:"liveUrl,omitempty"`
	GithubURL   string       `yaml:"githubUrl,omitempty" json:"githubUrl,omitempty"`
}

// Pricing is a normalized "from" price. From is always numeric after validation.
type Pricing struct {
	From     float64 `yaml:"from" json:"from"`
	Currency string  `yaml:"currency" json:"currency"`
	Unit     string  `yaml:"unit" json:"unit"`
}

type ProcessStep struct {
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
}

// ServiceFrontmatter describes one of the agency's service pages.
type ServiceFrontmatter struct {
	Title              string        `yaml:"title" json:"title"`
	Description        string        `yaml:"description" json:"description"`
	Icon               string        `yaml:"icon" json:"icon"`
	Pricing            Pricing       `yaml:"pricing" json:"pricing"`
	Deliverables       []string      `yaml:"deliverables" json:"deliverables"`
	ProcessSteps       []ProcessStep `yaml:"processSteps" json:"processSteps"`
	RelatedCaseStudies []string      `yaml:"relatedCaseStudies" json:"relatedCaseStudies"`
}

// CityFrontmatter describes a location landing page.
type CityFrontmatter struct {
	Title              string   `yaml:"title" json:"title"`
	Description        string   `yaml:"description" json:"description"`
	City               string   `yaml:"city" json:"city"`
	Region             string   `yaml:"region" json:"region"`
	NearbyServices     []string `yaml:"nearbyServices" json:"nearbyServices"`
	RelatedCaseStudies []string `yaml:"relatedCaseStudies" json:"relatedCaseStudies"`
	Highlights         []string `yaml:"highlights" json:"highlights"`
}

// Criterion is one row of a comparison table.
type Criterion struct {
	Label       string `yaml:"label" json:"label"`
	Subject     string `yaml:"subject" json:"subject"`
	Alternative string `yaml:"alternative" json:"alternative"`
}

// ComparisonFrontmatter describes an "X vs Y" article.
type ComparisonFrontmatter struct {
	Title           string      `yaml:"title" json:"title"`
	Description     string      `yaml:"description" json:"description"`
	Subject         string      `yaml:"subject" json:"subject"`
	Alternative     string      `yaml:"alternative" json:"alternative"`
	Criteria        []Criterion `yaml:"criteria" json:"criteria"`
	Date            time.Time   `yaml:"date" json:"date"`
	RelatedServices []string    `yaml:"relatedServices" json:"relatedServices"`
}

// GlossaryFrontmatter describes a glossary term. RelatedTerms may point back
// at the referring term.
type GlossaryFrontmatter struct {
	Term         string   `yaml:"term" json:"term"`
	Definition   string   `yaml:"definition" json:"definition"`
	Aliases      []string `yaml:"aliases" json:"aliases"`
	RelatedTerms []string `yaml:"relatedTerms" json:"relatedTerms"`
}

// TypeOf returns the content type that owns front matter record T.
func TypeOf[T Frontmatter]() Type {
	var zero T
	switch any(zero).(type) {
	case PortfolioFrontmatter:
		return Portfolio
	case ServiceFrontmatter:
		return Service
	case CityFrontmatter:
		return City
	case ComparisonFrontmatter:
		return Comparison
	case GlossaryFrontmatter:
		return Glossary
	default:
		return 0
	}
}

// TitleOf returns the display title and summary of any front matter record.
func TitleOf(fm any) (title, description string) {
	switch v := fm.(type) {
	case PortfolioFrontmatter:
		return v.Title, v.Description
	case ServiceFrontmatter:
		return v.Title, v.Description
	case CityFrontmatter:
		return v.Title, v.Description
	case ComparisonFrontmatter:
		return v.Title, v.Description
	case GlossaryFrontmatter:
		return v.Term, v.Definition
	default:
		return "", ""
	}
}
