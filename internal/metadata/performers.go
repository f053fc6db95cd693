package metadata

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Credit strings arrive as "Name, Role1, Role2 - Name, Role",
// with contributors separated by " - " and roles by ", ".
const (
	creditSeparator = " - "
	roleSeparator   = ", "
)

// rolePatterns maps lowercase substrings found in raw role labels
// to classified roles. Matching is substring-based because the catalog
// is inconsistent about exact labels ("MainArtist", "Main Artist",
// "main-artist" all occur).
//
//nolint:gochecknoglobals // Immutable lookup table used as a constant.
var rolePatterns = []struct {
	pattern string
	role    Role
}{
	{"main", RoleMainArtist},
	{"primary", RoleMainArtist},
	{"feat", RoleFeaturedArtist},
	{"guest", RoleFeaturedArtist},
	{"compos", RoleComposer},
	{"music", RoleComposer},
	{"lyric", RoleLyricist},
	{"writer", RoleLyricist},
	{"author", RoleLyricist},
	{"produc", RoleProducer},
	{"conduct", RoleConductor},
	{"orchestra", RoleOrchestra},
	{"choir", RoleChoir},
	// "mix" sits before "engineer" so mixing engineers land in the
	// mixer bucket.
	{"mix", RoleMixer},
	{"engineer", RoleEngineer},
}

// ClassifyRole maps a raw role label to a classified role.
// Unrecognized labels yield RoleUnknown.
func ClassifyRole(raw string) Role {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	for _, entry := range rolePatterns {
		if strings.Contains(lowered, entry.pattern) {
			return entry.role
		}
	}

	return RoleUnknown
}

// ParseCredits parses a raw credit string into contributors with classified roles.
// The first comma-separated field of each segment is the contributor name,
// the remaining fields are role labels. Malformed segments are skipped.
func ParseCredits(raw string) []Credit {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	segments := strings.Split(raw, creditSeparator)
	credits := make([]Credit, 0, len(segments))

	for _, segment := range segments {
		fields := strings.Split(segment, roleSeparator)

		name := strings.TrimSpace(fields[0])
		if name == "" {
			continue
		}

		roles := make([]Role, 0, len(fields)-1)
		for _, field := range fields[1:] {
			if role := ClassifyRole(field); role != RoleUnknown {
				roles = append(roles, role)
			}
		}

		credits = append(credits, Credit{Name: name, Roles: roles})
	}

	return credits
}

// NamesWithRole returns the deduplicated names of contributors carrying the role,
// preserving credit order.
func NamesWithRole(credits []Credit, role Role) []string {
	var names []string

	for i := range credits {
		if credits[i].HasRole(role) {
			names = append(names, credits[i].Name)
		}
	}

	return DeduplicateNames(names)
}

// DeduplicateNames removes duplicate names while preserving order.
// Comparison is case-insensitive and ignores diacritics, so
// "Beyoncé" and "Beyonce" collapse into the first spelling seen.
func DeduplicateNames(names []string) []string {
	if len(names) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(names))
	result := make([]string, 0, len(names))

	for _, name := range names {
		key := normalizeName(name)
		if key == "" {
			continue
		}

		if _, ok := seen[key]; ok {
			continue
		}

		seen[key] = struct{}{}

		result = append(result, name)
	}

	return result
}

// JoinArtists joins artist names for display:
// "A", "A & B", "A, B & C".
func JoinArtists(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	case 2: //nolint:mnd // Two names need no comma separation.
		return names[0] + " & " + names[1]
	default:
		return strings.Join(names[:len(names)-1], ", ") + " & " + names[len(names)-1]
	}
}

// normalizeName lowercases a name and strips diacritics for comparison.
func normalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))

	stripper := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	stripped, _, err := transform.String(stripper, name)
	if err != nil {
		// Fall back to the lowercased original when the transform fails.
		return name
	}

	return stripped
}
