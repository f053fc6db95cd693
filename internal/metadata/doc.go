// Package metadata turns raw catalog payloads into a tagging-ready record.
// It merges track-level and album-level fields, parses the catalog's
// performer credit strings into role-classified contributor lists,
// translates localized genre names into English, and joins artist names
// for display. All functions are pure and tolerate missing input:
// absent fields simply produce empty values, never errors or panics.
package metadata
