package engine

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"
)

// Fingerprint hashes the semantically relevant profile fields into a
// deterministic cache key. Skills are already name-sorted by the resolver;
// preference lists are sorted here so input order never changes the key.
// The fingerprint covers raw ratings, not normalized scores, so a scale
// change with identical ratings is a different profile.
func Fingerprint(p ResolvedProfile) string {
	var sb strings.Builder
	sb.WriteString(p.PersonalityType)
	for _, s := range p.Skills {
		fmt.Fprintf(&sb, "|%s=%d", s.Name, s.Rating)
	}
	writeSorted(&sb, "interests", p.Preferences.Interests)
	writeSorted(&sb, "values", p.Preferences.Values)
	sb.WriteString("|philosophy:" + p.Preferences.Philosophy)
	sb.WriteString("|goals:" + p.Preferences.CareerGoals)
	writeSorted(&sb, "custom", p.Preferences.CustomSkills)

	hash := sha256.Sum256([]byte(sb.String()))
	return fmt.Sprintf("gp:%x", hash[:12]) // 24-char hex prefix
}

func writeSorted(sb *strings.Builder, tag string, items []string) {
	sorted := append([]string(nil), items...)
	sort.Strings(sorted)
	sb.WriteString("|" + tag + ":" + strings.Join(sorted, ","))
}
