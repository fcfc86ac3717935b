package genview

import (
	"net/http"
	"sort"
)

// IsHTMX reports whether r was sent by HTMX (HX-Request: true). Such
// requests are redirected through HX-Redirect and get flashes as OOB toasts.
func IsHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
