package imagegen

import "time"

// ModelInfo describes one entry of the static model catalogue.
type ModelInfo struct {
	ID       string
	Provider Provider
}

// KnownModels is the read-only catalogue served by GET /v1/models. Routing
// never consults it; any model string is accepted and routed by name.
var KnownModels = []ModelInfo{
	{ID: "doubao-seedream-4-0-250828", Provider: ProviderArk},
	{ID: "doubao-seedream-3-0-t2i-250415", Provider: ProviderArk},
	{ID: "doubao-seededit-3-0-i2i-250628", Provider: ProviderArk},
	{ID: "Qwen/Qwen-Image", Provider: ProviderSiliconFlow},
	{ID: "Qwen/Qwen-Image-Edit", Provider: ProviderSiliconFlow},
	{ID: "Kwai-Kolors/Kolors", Provider: ProviderSiliconFlow},
}

// Model is one entry of an OpenAI-style model list.
type Model struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	OwnedBy string `json:"owned_by"`
}

// ListCompletion is the OpenAI-style model list envelope.
type ListCompletion struct {
	Object string  `json:"object"`
	Data   []Model `json:"data"`
}

// ToListCompletion renders the catalogue, stamping every entry with created.
func ToListCompletion(models []ModelInfo, created time.Time) ListCompletion {
	data := make([]Model, 0, len(models))
	for _, m := range models {
		data = append(data, Model{
			ID:      m.ID,
			Object:  "model",
			Created: created.Unix(),
			OwnedBy: m.Provider.String(),
		})
	}
	return ListCompletion{
		Object: "list",
		Data:   data,
	}
}
