package agent

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed fallbacks.yaml
var fallbackCatalogRaw []byte

var fallbackCatalog map[string]string

func init() {
	if err := yaml.Unmarshal(fallbackCatalogRaw, &fallbackCatalog); err != nil {
		panic(fmt.Sprintf("agent: invalid fallback catalog: %v", err))
	}
}

// fallbackText returns the canned message for a key. Missing keys are a
// programming error; returning the key makes them visible without
// crashing a live conversation.
func fallbackText(key string) string {
	if text, ok := fallbackCatalog[key]; ok {
		return text
	}
	return key
}
