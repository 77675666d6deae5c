package engine

import (
	"fmt"
	"net/url"
	"strings"
)

// resourceTemplate describes one catalog search link emitted per subject.
type resourceTemplate struct {
	Platform   string
	Type       string
	Difficulty string
	TitleFmt   string // fmt arg: subject
	URLFmt     string // fmt arg: query-escaped subject
	DescFmt    string // fmt arg: subject
}

// Four descriptors per skill, in emit order.
var skillResourceTemplates = []resourceTemplate{
	{"Udemy", "course", "beginner",
		"%s for Beginners",
		"https://www.udemy.com/courses/search/?q=%s",
		"Hands-on introductory courses covering %s fundamentals."},
	{"Coursera", "course", "advanced",
		"Advanced %s",
		"https://www.coursera.org/search?query=%s",
		"University-led programs to deepen your %s expertise."},
	{"YouTube", "video", "all-levels",
		"%s Video Tutorials",
		"https://www.youtube.com/results?search_query=%s+tutorial",
		"Free video walkthroughs and conference talks on %s."},
	{"edX", "certificate", "intermediate",
		"%s Certification",
		"https://www.edx.org/search?q=%s",
		"Certificate programs to credential your %s skills."},
}

// Community + reading pair per interest.
var interestResourceTemplates = []resourceTemplate{
	{"Reddit", "community", "all-levels",
		"%s Community",
		"https://www.reddit.com/search/?q=%s",
		"Active communities discussing %s, from beginners to practitioners."},
	{"Goodreads", "reading", "all-levels",
		"Books on %s",
		"https://www.goodreads.com/search?q=%s",
		"Well-reviewed books to go deeper into %s."},
}

// maxResourceInterests caps how many interests produce resource pairs.
const maxResourceInterests = 3

// SynthesizeResources builds the curated resource list for a set of skill
// names and interests. Pure and deterministic: no network calls, stable
// output order (skills in input order, 4 links each, then up to 3 interests,
// 2 links each). Blank entries are skipped.
func SynthesizeResources(skills, interests []string) []LearningResource {
	out := make([]LearningResource, 0, len(skills)*len(skillResourceTemplates))
	for _, skill := range skills {
		out = appendResources(out, skill, skillResourceTemplates)
	}

	count := 0
	for _, interest := range interests {
		if count >= maxResourceInterests {
			break
		}
		if strings.TrimSpace(interest) == "" {
			continue
		}
		out = appendResources(out, interest, interestResourceTemplates)
		count++
	}
	return out
}

func appendResources(out []LearningResource, subject string, templates []resourceTemplate) []LearningResource {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return out
	}
	escaped := url.QueryEscape(subject)
	for _, t := range templates {
		out = append(out, LearningResource{
			Title:       fmt.Sprintf(t.TitleFmt, subject),
			URL:         fmt.Sprintf(t.URLFmt, escaped),
			Description: fmt.Sprintf(t.DescFmt, subject),
			Type:        t.Type,
			Difficulty:  t.Difficulty,
			Platform:    t.Platform,
		})
	}
	return out
}
