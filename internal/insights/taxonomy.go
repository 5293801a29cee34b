package insights

import (
	"fmt"
	"strings"
	"unicode"
)

// Template is the recommendation text attached to a category.
type Template struct {
	Title          string `json:"title" yaml:"title" toml:"title"`
	Description    string `json:"description" yaml:"description" toml:"description"`
	ExpectedImpact string `json:"expected_impact" yaml:"expected_impact" toml:"expected_impact"`
}

// Category is one theme of the taxonomy. Keywords are matched as lower-case
// substrings, so "app" also hits "happy".
type Category struct {
	ID             string    `json:"id" yaml:"id" toml:"id"`
	Description    string    `json:"description" yaml:"description" toml:"description"`
	Keywords       []string  `json:"keywords" yaml:"keywords" toml:"keywords"`
	Recommendation *Template `json:"recommendation,omitempty" yaml:"recommendation,omitempty" toml:"recommendation,omitempty"`
}

// Taxonomy holds the two disjoint category lists. Order is significant: it is
// the tie-break order for equal scores and the order opportunities are offered.
type Taxonomy struct {
	Drivers    []Category `json:"drivers" yaml:"drivers" toml:"drivers"`
	PainPoints []Category `json:"pain_points" yaml:"pain_points" toml:"pain_points"`
	General    *Template  `json:"general,omitempty" yaml:"general,omitempty" toml:"general,omitempty"`
}

var (
	fallbackTemplate = Template{
		Title:          "Address User Concerns",
		Description:    "Address identified issues through systematic improvements",
		ExpectedImpact: "Improves user satisfaction and reduces negative feedback",
	}
	generalTemplate = Template{
		Title:          "Improve Overall User Experience",
		Description:    "Address user feedback systematically through regular updates and user testing",
		ExpectedImpact: "Improves overall satisfaction and reduces negative reviews",
	}
)

// DefaultTaxonomy returns the built-in mobile banking taxonomy.
func DefaultTaxonomy() Taxonomy {
	return Taxonomy{
		Drivers: []Category{
			{
				ID: "fast", Description: "Fast navigation and quick response times",
				Keywords: []string{"fast", "quick", "speed", "rapid", "instant", "swift"},
				Recommendation: &Template{
					Title:          "Promote Speed as a Differentiator",
					Description:    "Cut perceived latency on core flows such as balance checks and transfers until users notice it",
					ExpectedImpact: "Turns responsiveness into a praised strength",
				},
			},
			{
				ID: "easy", Description: "Easy to use and user-friendly interface",
				Keywords: []string{"easy", "simple", "user-friendly", "intuitive", "straightforward"},
				Recommendation: &Template{
					Title:          "Simplify Core Journeys",
					Description:    "Reduce the number of steps in frequent tasks and add guided onboarding",
					ExpectedImpact: "Makes ease of use a reason to recommend the app",
				},
			},
			{
				ID: "reliable", Description: "Reliable and stable app performance",
				Keywords: []string{"reliable", "stable", "consistent", "dependable", "trustworthy"},
				Recommendation: &Template{
					Title:          "Build a Reputation for Reliability",
					Description:    "Publish uptime status and communicate planned maintenance ahead of time",
					ExpectedImpact: "Builds user trust in day-to-day availability",
				},
			},
			{
				ID: "secure", Description: "Strong security features",
				Keywords: []string{"secure", "safe", "security", "protected", "encrypted"},
				Recommendation: &Template{
					Title:          "Make Security Visible",
					Description:    "Surface security features such as biometric login and transaction alerts in the app",
					ExpectedImpact: "Raises confidence that accounts are protected",
				},
			},
			{
				ID: "good_support", Description: "Good customer support and service",
				Keywords: []string{"support", "helpful", "responsive", "customer service", "assistance"},
				Recommendation: &Template{
					Title:          "Strengthen In-App Support",
					Description:    "Add in-app chat and track complaint resolution times",
					ExpectedImpact: "Converts support interactions into positive reviews",
				},
			},
		},
		PainPoints: []Category{
			{
				ID: "slow", Description: "Slow performance and loading times",
				Keywords: []string{"slow", "lag", "loading", "delay", "wait", "timeout"},
				Recommendation: &Template{
					Title:          "Optimize Performance",
					Description:    "Improve app speed and reduce loading times through code optimization and caching",
					ExpectedImpact: "Enhances user experience and satisfaction",
				},
			},
			{
				ID: "crash", Description: "App crashes and technical errors",
				Keywords: []string{"crash", "error", "bug", "glitch", "freeze", "hang", "broken"},
				Recommendation: &Template{
					Title:          "Improve App Stability",
					Description:    "Address app crashes and bugs through comprehensive testing and error handling",
					ExpectedImpact: "Reduces user frustration and negative reviews",
				},
			},
			{
				ID: "ui_issues", Description: "User interface and navigation problems",
				Keywords: []string{"confusing", "complicated", "navigation", "interface", "design", "layout"},
				Recommendation: &Template{
					Title:          "Redesign User Interface",
					Description:    "Simplify navigation and improve visual design based on user feedback",
					ExpectedImpact: "Enhances overall user experience",
				},
			},
			{
				ID: "network", Description: "Network connectivity issues",
				Keywords: []string{"network", "connection", "connectivity", "offline", "disconnect"},
				Recommendation: &Template{
					Title:          "Add Offline Capabilities",
					Description:    "Implement offline mode and better error handling for network issues",
					ExpectedImpact: "Improves app usability in poor network conditions",
				},
			},
			{
				ID: "login", Description: "Login and authentication problems",
				Keywords: []string{"login", "password", "authentication", "access", "sign in"},
				Recommendation: &Template{
					Title:          "Enhance Authentication System",
					Description:    "Simplify login process and add biometric authentication options",
					ExpectedImpact: "Reduces login-related complaints",
				},
			},
		},
		General: &Template{
			Title:          generalTemplate.Title,
			Description:    generalTemplate.Description,
			ExpectedImpact: generalTemplate.ExpectedImpact,
		},
	}
}

// Validate checks ids are present and unique across both lists. A category
// without keywords is allowed; it simply never matches.
func (t Taxonomy) Validate() error {
	if len(t.Drivers) == 0 && len(t.PainPoints) == 0 {
		return fmt.Errorf("%w: no categories", ErrInvalidTaxonomy)
	}
	seen := map[string]string{}
	check := func(list string, cs []Category) error {
		for i, c := range cs {
			id := strings.TrimSpace(c.ID)
			if id == "" {
				return fmt.Errorf("%w: %s[%d] has no id", ErrInvalidTaxonomy, list, i)
			}
			if prev, ok := seen[id]; ok {
				return fmt.Errorf("%w: duplicate id %q in %s (already in %s)", ErrInvalidTaxonomy, id, list, prev)
			}
			seen[id] = list
		}
		return nil
	}
	if err := check("drivers", t.Drivers); err != nil {
		return err
	}
	return check("pain_points", t.PainPoints)
}

// Clone returns a deep copy with keywords trimmed and lower-cased.
func (t Taxonomy) Clone() Taxonomy {
	out := Taxonomy{
		Drivers:    cloneCategories(t.Drivers),
		PainPoints: cloneCategories(t.PainPoints),
	}
	if t.General != nil {
		g := *t.General
		out.General = &g
	}
	return out
}

func cloneCategories(in []Category) []Category {
	out := make([]Category, 0, len(in))
	for _, c := range in {
		cc := Category{ID: strings.TrimSpace(c.ID), Description: c.Description}
		for _, kw := range c.Keywords {
			if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
				cc.Keywords = append(cc.Keywords, kw)
			}
		}
		if c.Recommendation != nil {
			r := *c.Recommendation
			cc.Recommendation = &r
		}
		out = append(out, cc)
	}
	return out
}

// Matches reports whether lowerText contains any keyword. Callers lower-case
// the text once per review.
func (c Category) Matches(lowerText string) bool {
	for _, kw := range c.Keywords {
		if strings.Contains(lowerText, kw) {
			return true
		}
	}
	return false
}

func (c Category) template() Template {
	if c.Recommendation != nil {
		return *c.Recommendation
	}
	return fallbackTemplate
}

// Label is the category description, or its id spelled out as words
// ("good_support" -> "Good Support") when none is configured.
func (c Category) Label() string {
	if c.Description != "" {
		return c.Description
	}
	words := strings.Fields(strings.ReplaceAll(c.ID, "_", " "))
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

func (t Taxonomy) general() Template {
	if t.General != nil {
		return *t.General
	}
	return generalTemplate
}

// IDs lists category ids in taxonomy order.
func IDs(cs []Category) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.ID
	}
	return out
}
