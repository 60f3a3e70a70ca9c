package providers

import "strings"

// ProviderRef is one entry of a provider chain such as "gemini|openai:gpt-4o|mock".
// The optional suffix overrides the configured model.
type ProviderRef struct {
	Raw   string
	Name  string
	Model string
}

func (r ProviderRef) key() string { return r.Name + ":" + r.Model }

// ParseProviderList splits a chain in priority order. Repeated entries are
// kept once and an empty chain resolves to the mock provider.
func ParseProviderList(raw string) []ProviderRef {
	var out []ProviderRef
	seen := map[string]bool{}
	for _, p := range strings.Split(raw, "|") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		name, model, _ := strings.Cut(p, ":")
		ref := ProviderRef{
			Raw:   p,
			Name:  strings.ToLower(strings.TrimSpace(name)),
			Model: strings.TrimSpace(model),
		}
		if ref.Name == "" || seen[ref.key()] {
			continue
		}
		seen[ref.key()] = true
		out = append(out, ref)
	}
	if len(out) == 0 {
		out = append(out, ProviderRef{Raw: "mock", Name: "mock"})
	}
	return out
}
