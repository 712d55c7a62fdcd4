package imagegen

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"image-bridge/internal/domain"
)

func TestBuildArkRequest_Defaults(t *testing.T) {
	req := &domain.GenerationRequest{}
	payload := &domain.ExtractedPayload{Prompt: "a cat"}

	got := BuildArkRequest(req, payload)

	assert.Equal(t, &ArkRequest{
		Model:                     DefaultArkModel,
		Prompt:                    "a cat",
		SequentialImageGeneration: "disabled",
		Size:                      "1024x1024",
		Seed:                      -1,
		ResponseFormat:            "b64_json",
	}, got)

	body, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"model": "doubao-seedream-4-0-250828",
		"prompt": "a cat",
		"sequential_image_generation": "disabled",
		"size": "1024x1024",
		"seed": -1,
		"response_format": "b64_json",
		"stream": false,
		"watermark": false
	}`, string(body))
}

func TestBuildArkRequest_SequentialImages(t *testing.T) {
	tests := []struct {
		name string
		n    float64
		want int
	}{
		{name: "within range", n: 3, want: 3},
		{name: "above max", n: 12, want: 4},
		{name: "below min", n: 0, want: 1},
		{name: "negative", n: -5, want: 1},
		{name: "fractional", n: 2.9, want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &domain.GenerationRequest{N: domain.Num(tt.n)}
			got := BuildArkRequest(req, &domain.ExtractedPayload{Prompt: "p"})

			assert.Equal(t, "auto", got.SequentialImageGeneration)
			require.NotNil(t, got.SequentialImageGenerationOptions)
			assert.Equal(t, tt.want, got.SequentialImageGenerationOptions.MaxImages)
		})
	}
}

func TestBuildArkRequest_ForwardsOnlyRemoteImages(t *testing.T) {
	req := &domain.GenerationRequest{
		Model: "doubao-seededit-3-0-i2i-250628",
		Size:  "2048x2048",
		Seed:  domain.Num(42.7),
	}
	payload := &domain.ExtractedPayload{
		Prompt:         "edit",
		EmbeddedImages: []string{"data:image/png;base64,AAA"},
		RemoteImages:   []string{"https://x/a.png", "https://x/b.png"},
	}

	got := BuildArkRequest(req, payload)

	assert.Equal(t, "doubao-seededit-3-0-i2i-250628", got.Model)
	assert.Equal(t, "2048x2048", got.Size)
	assert.Equal(t, int64(42), got.Seed)
	assert.Equal(t, []string{"https://x/a.png", "https://x/b.png"}, got.Image)
}

func TestBuildSiliconFlowRequest_Defaults(t *testing.T) {
	tests := []struct {
		model    string
		wantSize string
	}{
		{model: "", wantSize: "1328x1328"},
		{model: "Qwen/Qwen-Image-Edit", wantSize: "1328x1328"},
		{model: "Kwai-Kolors/Kolors", wantSize: "1024x1024"},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			req := &domain.GenerationRequest{Model: tt.model}
			got := BuildSiliconFlowRequest(req, &domain.ExtractedPayload{Prompt: "a cat"})

			assert.Equal(t, tt.wantSize, got.ImageSize)
			assert.Equal(t, 1, got.BatchSize)
			assert.Nil(t, got.Seed)
			assert.Nil(t, got.NumInferenceSteps)
			assert.Nil(t, got.GuidanceScale)
			assert.Nil(t, got.CFG)
			assert.Empty(t, got.Image)
		})
	}

	got := BuildSiliconFlowRequest(&domain.GenerationRequest{}, &domain.ExtractedPayload{Prompt: "a cat"})
	assert.Equal(t, DefaultSiliconFlowModel, got.Model)
}

func TestBuildSiliconFlowRequest_ClampsNumericOptions(t *testing.T) {
	req := &domain.GenerationRequest{
		Model:          "Qwen/Qwen-Image",
		N:              domain.Num(10),
		Seed:           domain.Num(-3),
		InferenceSteps: domain.Num(500),
		GuidanceScale:  domain.Num(25),
		CFGScale:       domain.Num(0),
		NegativePrompt: "blurry",
		Size:           "512x512",
	}

	got := BuildSiliconFlowRequest(req, &domain.ExtractedPayload{Prompt: "a cat"})

	assert.Equal(t, 4, got.BatchSize)
	require.NotNil(t, got.Seed)
	assert.Equal(t, int64(0), *got.Seed)
	require.NotNil(t, got.NumInferenceSteps)
	assert.Equal(t, 100, *got.NumInferenceSteps)
	require.NotNil(t, got.GuidanceScale)
	assert.Equal(t, 20.0, *got.GuidanceScale)
	require.NotNil(t, got.CFG)
	assert.Equal(t, 0.1, *got.CFG)
	assert.Equal(t, "blurry", got.NegativePrompt)
	assert.Equal(t, "512x512", got.ImageSize)
}

func TestBuildSiliconFlowRequest_SeedUpperBound(t *testing.T) {
	req := &domain.GenerationRequest{Seed: domain.Num(1e12)}
	got := BuildSiliconFlowRequest(req, &domain.ExtractedPayload{Prompt: "p"})

	require.NotNil(t, got.Seed)
	assert.Equal(t, int64(9_999_999_999), *got.Seed)
}

func TestBuildSiliconFlowRequest_FirstEmbeddedImageOnly(t *testing.T) {
	payload := &domain.ExtractedPayload{
		Prompt:         "edit",
		EmbeddedImages: []string{"data:image/png;base64,AAA", "data:image/png;base64,BBB"},
		RemoteImages:   []string{"https://x/a.png"},
	}

	got := BuildSiliconFlowRequest(&domain.GenerationRequest{Model: "Qwen/Qwen-Image-Edit"}, payload)

	assert.Equal(t, "data:image/png;base64,AAA", got.Image)

	body, err := json.Marshal(got)
	require.NoError(t, err)
	assert.NotContains(t, string(body), "https://x/a.png")
}

func TestBuildRequest_Dispatch(t *testing.T) {
	payload := &domain.ExtractedPayload{Prompt: "p"}

	ark := BuildRequest(ProviderArk, &domain.GenerationRequest{}, payload)
	assert.IsType(t, &ArkRequest{}, ark)
	assert.Equal(t, ProviderArk, ark.Provider())
	assert.Equal(t, DefaultArkModel, ark.ModelID())

	sf := BuildRequest(ProviderSiliconFlow, &domain.GenerationRequest{Model: "Kwai-Kolors/Kolors"}, payload)
	assert.IsType(t, &SiliconFlowRequest{}, sf)
	assert.Equal(t, ProviderSiliconFlow, sf.Provider())
	assert.Equal(t, "Kwai-Kolors/Kolors", sf.ModelID())
}

func TestClamp_Idempotent(t *testing.T) {
	for _, v := range []float64{-10, 0, 0.1, 7.5, 20, 99} {
		once := clamp(v, 0.1, 20)
		assert.Equal(t, once, clamp(once, 0.1, 20))
		assert.GreaterOrEqual(t, once, 0.1)
		assert.LessOrEqual(t, once, 20.0)
	}
}
