package console

import (
	"strings"

	"github.com/cocofhu/mcp-adapter-console/schema"
)

// FilterTypes returns the cached custom types whose name or description
// contains term, ignoring case. An empty term matches every type.
func (s *Session) FilterTypes(term string) []schema.CustomType {
	term = strings.ToLower(strings.TrimSpace(term))
	out := []schema.CustomType{}
	for _, ct := range s.Catalog().Types() {
		if matches(term, ct.Name, ct.Description) {
			out = append(out, ct)
		}
	}
	return out
}

// FilterInterfaces returns the cached interfaces whose name, description or
// url contains term, ignoring case. A non-empty method must match exactly.
func (s *Session) FilterInterfaces(term string, method schema.Method) []schema.Interface {
	term = strings.ToLower(strings.TrimSpace(term))
	out := []schema.Interface{}
	for _, it := range s.Interfaces() {
		if method != "" && it.Method != method {
			continue
		}
		if matches(term, it.Name, it.Description, it.URL) {
			out = append(out, it)
		}
	}
	return out
}

func matches(term string, fields ...string) bool {
	if term == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}
