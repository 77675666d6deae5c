package engine

// typeProfile backs the deterministic fallback narrative for one
// personality type.
type typeProfile struct {
	Title     string
	Strengths string
	Careers   []string
}

var typeProfiles = map[string]typeProfile{
	"INTJ": {"the Architect", "strategic long-range thinking and independent problem solving", []string{"software architect", "research scientist", "strategy consultant", "systems analyst"}},
	"INTP": {"the Logician", "abstract analysis and a drive to understand how systems work", []string{"software engineer", "data scientist", "academic researcher", "technical writer"}},
	"ENTJ": {"the Commander", "decisive leadership and structured execution at scale", []string{"engineering manager", "product director", "management consultant", "entrepreneur"}},
	"ENTP": {"the Debater", "rapid ideation and comfort with ambiguity", []string{"product manager", "startup founder", "solutions architect", "innovation consultant"}},
	"INFJ": {"the Advocate", "insight into people paired with quiet determination", []string{"UX researcher", "counselor", "nonprofit program lead", "content strategist"}},
	"INFP": {"the Mediator", "values-driven creativity and empathy", []string{"writer", "designer", "HR specialist", "social researcher"}},
	"ENFJ": {"the Protagonist", "motivating others and building consensus", []string{"teacher", "team lead", "customer success manager", "communications director"}},
	"ENFP": {"the Campaigner", "enthusiasm, communication, and creative connection-making", []string{"marketing specialist", "journalist", "community manager", "product evangelist"}},
	"ISTJ": {"the Logistician", "reliability, precision, and respect for process", []string{"accountant", "operations analyst", "QA engineer", "project administrator"}},
	"ISFJ": {"the Defender", "meticulous care and steady support for others", []string{"nurse", "librarian", "office manager", "technical support lead"}},
	"ESTJ": {"the Executive", "organizing people and processes to hit targets", []string{"operations manager", "sales director", "logistics coordinator", "financial officer"}},
	"ESFJ": {"the Consul", "warmth, service orientation, and practical coordination", []string{"event manager", "HR coordinator", "healthcare administrator", "account manager"}},
	"ISTP": {"the Virtuoso", "hands-on troubleshooting and calm under pressure", []string{"site reliability engineer", "mechanical engineer", "forensic analyst", "pilot"}},
	"ISFP": {"the Adventurer", "aesthetic sensibility and quiet adaptability", []string{"graphic designer", "photographer", "physical therapist", "chef"}},
	"ESTP": {"the Entrepreneur", "action orientation and real-time problem solving", []string{"sales engineer", "paramedic", "trader", "field operations manager"}},
	"ESFP": {"the Entertainer", "energy, spontaneity, and people skills", []string{"event producer", "public relations specialist", "tour guide", "retail manager"}},
}

// genericTypeProfile covers codes outside the 16-type table, e.g. from
// older intake data.
var genericTypeProfile = typeProfile{
	Title:     "a unique profile",
	Strengths: "a distinctive combination of analytical and interpersonal strengths",
	Careers:   []string{"roles that balance independent work with collaboration"},
}
