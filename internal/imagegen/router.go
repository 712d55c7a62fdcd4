package imagegen

import "strings"

// Provider identifies one of the image generation backends.
type Provider string

const (
	// ProviderArk is the Volcengine Ark images API (doubao-seedream models).
	ProviderArk Provider = "ark"

	// ProviderSiliconFlow is the SiliconFlow images API (Qwen, Kolors models).
	ProviderSiliconFlow Provider = "siliconflow"
)

func (p Provider) String() string {
	return string(p)
}

// IsValid reports whether p is a known provider.
func (p Provider) IsValid() bool {
	switch p {
	case ProviderArk, ProviderSiliconFlow:
		return true
	default:
		return false
	}
}

var siliconFlowPrefixes = []string{"Qwen/", "Kwai-Kolors/"}

// Route picks the provider for a requested model. An empty or unrecognised
// model goes to Ark.
func Route(model string) Provider {
	if model == "" {
		return ProviderArk
	}
	for _, prefix := range siliconFlowPrefixes {
		if strings.HasPrefix(model, prefix) {
			return ProviderSiliconFlow
		}
	}
	if strings.Contains(model, "siliconflow") {
		return ProviderSiliconFlow
	}
	return ProviderArk
}
