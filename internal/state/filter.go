package state

import "strings"

// TitleFilter returns a projection keeping items whose title contains query,
// case-insensitively. An empty query returns nil, which shows everything.
func TitleFilter[E any](query string, title func(E) string) Projection[[]E] {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return nil
	}
	return func(items []E) []E {
		if len(items) == 0 {
			return nil
		}
		out := make([]E, 0, len(items))
		for _, item := range items {
			if strings.Contains(strings.ToLower(title(item)), needle) {
				out = append(out, item)
			}
		}
		return out
	}
}
