package player

import "sort"

// headerOrder returns header names sorted, so player argument lists
// are deterministic across runs.
func headerOrder(headers map[string]string) []string {
	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
