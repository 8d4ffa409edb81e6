package domain

import "strings"

// MaxQueryLen bounds question length; anything longer is almost certainly a
// paste accident and would blow the prompt budget.
const MaxQueryLen = 2000

// ValidateQuery checks a user question before it reaches the pipeline.
func ValidateQuery(query string) error {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return ErrEmptyQuery
	}
	if len(trimmed) > MaxQueryLen {
		return ErrQueryTooLong
	}
	return nil
}

// ApplyMetaDefaults fills missing front-matter keys with the documented
// defaults so downstream code never sees empty guest/title fields.
func ApplyMetaDefaults(meta *DocumentMeta) {
	if strings.TrimSpace(meta.Guest) == "" {
		meta.Guest = "Unknown"
	}
	if strings.TrimSpace(meta.Title) == "" {
		meta.Title = "Unknown"
	}
}
