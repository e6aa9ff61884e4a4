package permutation

import (
	"maps"
	"slices"
)

const (
	PlaceholderGroupTypes = "${GROUP_TYPES}"
	PlaceholderOwners     = "${OWNERS}"
	PlaceholderUsers      = "${USERS}"
	PlaceholderUserGroups = "${USER_GROUPS}"
)

// GroupTypes is the literal expansion of ${GROUP_TYPES}.
var GroupTypes = []string{
	"Adversary",
	"Attack Pattern",
	"Campaign",
	"Course of Action",
	"Document",
	"Email",
	"Event",
	"Incident",
	"Intrusion Set",
	"Malware",
	"Report",
	"Signature",
	"Tactic",
	"Task",
	"Threat",
	"Tool",
}

// DefaultPlaceholders returns a fresh copy of the standard expansion table.
// Owner and user placeholders are resolved at runtime by the platform and
// expand to nothing here.
func DefaultPlaceholders() map[string][]string {
	return map[string][]string{
		PlaceholderGroupTypes: slices.Clone(GroupTypes),
		PlaceholderOwners:     nil,
		PlaceholderUsers:      nil,
		PlaceholderUserGroups: nil,
	}
}

// expand replaces whole-value placeholders with their expansion. Values not
// in the table, including unknown ${...} tokens, are kept as literals.
func expand(values []string, table map[string][]string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if exp, ok := table[v]; ok {
			out = append(out, exp...)
			continue
		}
		out = append(out, v)
	}
	return out
}

func clonePlaceholders(m map[string][]string) map[string][]string {
	out := maps.Clone(m)
	for k, v := range out {
		out[k] = slices.Clone(v)
	}
	return out
}
