package analysis

import (
	"fmt"
	"strings"
)

// NormalizeHandle trims whitespace and a leading "@" from an account handle
func NormalizeHandle(handle string) string {
	return strings.TrimPrefix(strings.TrimSpace(handle), "@")
}

// BuildQueries turns a handle and keywords into the ordered search queries:
// the account's own posts, the account's posts per keyword, then each keyword
// on its own.
func BuildQueries(handle string, keywords []string) ([]string, error) {
	handle = NormalizeHandle(handle)
	if handle == "" {
		return nil, &InvalidInputError{Field: "account_handle", Reason: "is required"}
	}

	var cleaned []string
	for _, keyword := range keywords {
		if keyword = strings.TrimSpace(keyword); keyword != "" {
			cleaned = append(cleaned, keyword)
		}
	}

	queries := make([]string, 0, 1+2*len(cleaned))
	queries = append(queries, fmt.Sprintf("from:%s", handle))
	for _, keyword := range cleaned {
		queries = append(queries, fmt.Sprintf("%s from:%s", keyword, handle))
	}
	queries = append(queries, cleaned...)

	return queries, nil
}
