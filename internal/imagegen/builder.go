package imagegen

import (
	"cmp"
	"math"
	"strings"

	"image-bridge/internal/domain"
)

const (
	DefaultArkModel         = "doubao-seedream-4-0-250828"
	DefaultSiliconFlowModel = "Qwen/Qwen-Image"

	defaultArkSize        = "1024x1024"
	defaultQwenImageSize  = "1328x1328"
	defaultOtherImageSize = "1024x1024"

	// unsetSeed tells Ark to pick a random seed.
	unsetSeed = -1

	minImages = 1
	maxImages = 4

	maxSiliconFlowSeed = 9_999_999_999
)

// ProviderRequest is the native JSON body sent to a provider.
type ProviderRequest interface {
	Provider() Provider
	ModelID() string
}

// ArkRequest is the body of POST /images/generations on Ark.
type ArkRequest struct {
	Model                            string             `json:"model"`
	Prompt                           string             `json:"prompt"`
	Image                            []string           `json:"image,omitempty"`
	SequentialImageGeneration        string             `json:"sequential_image_generation"`
	SequentialImageGenerationOptions *SequentialOptions `json:"sequential_image_generation_options,omitempty"`
	Size                             string             `json:"size"`
	Seed                             int64              `json:"seed"`
	ResponseFormat                   string             `json:"response_format"`
	Stream                           bool               `json:"stream"`
	Watermark                        bool               `json:"watermark"`
}

// SequentialOptions bounds Ark's multi-image ("sequential") generation.
type SequentialOptions struct {
	MaxImages int `json:"max_images"`
}

func (r *ArkRequest) Provider() Provider { return ProviderArk }
func (r *ArkRequest) ModelID() string    { return r.Model }

// SiliconFlowRequest is the body of POST /images/generations on SiliconFlow.
type SiliconFlowRequest struct {
	Model             string   `json:"model"`
	Prompt            string   `json:"prompt"`
	NegativePrompt    string   `json:"negative_prompt,omitempty"`
	ImageSize         string   `json:"image_size"`
	BatchSize         int      `json:"batch_size"`
	Seed              *int64   `json:"seed,omitempty"`
	NumInferenceSteps *int     `json:"num_inference_steps,omitempty"`
	GuidanceScale     *float64 `json:"guidance_scale,omitempty"`
	CFG               *float64 `json:"cfg,omitempty"`
	Image             string   `json:"image,omitempty"`
}

func (r *SiliconFlowRequest) Provider() Provider { return ProviderSiliconFlow }
func (r *SiliconFlowRequest) ModelID() string    { return r.Model }

// BuildRequest builds the native request for p.
func BuildRequest(p Provider, req *domain.GenerationRequest, payload *domain.ExtractedPayload) ProviderRequest {
	if p == ProviderSiliconFlow {
		return BuildSiliconFlowRequest(req, payload)
	}
	return BuildArkRequest(req, payload)
}

// BuildArkRequest maps a generation request onto Ark. Only remote reference
// images are forwarded; Ark is not sent inline data URIs.
func BuildArkRequest(req *domain.GenerationRequest, payload *domain.ExtractedPayload) *ArkRequest {
	out := &ArkRequest{
		Model:                     cmp.Or(req.Model, DefaultArkModel),
		Prompt:                    payload.Prompt,
		Image:                     payload.RemoteImages,
		SequentialImageGeneration: "disabled",
		Size:                      cmp.Or(req.Size, defaultArkSize),
		Seed:                      unsetSeed,
		ResponseFormat:            "b64_json",
		Stream:                    false,
		Watermark:                 false,
	}

	if req.N.Set {
		out.SequentialImageGeneration = "auto"
		out.SequentialImageGenerationOptions = &SequentialOptions{
			MaxImages: int(clamp(req.N.Value, minImages, maxImages)),
		}
	}
	if req.Seed.Set {
		out.Seed = truncInt64(req.Seed.Value)
	}
	return out
}

// BuildSiliconFlowRequest maps a generation request onto SiliconFlow. The
// provider takes at most one inline reference image; remote URLs are dropped.
func BuildSiliconFlowRequest(req *domain.GenerationRequest, payload *domain.ExtractedPayload) *SiliconFlowRequest {
	model := cmp.Or(req.Model, DefaultSiliconFlowModel)

	out := &SiliconFlowRequest{
		Model:          model,
		Prompt:         payload.Prompt,
		NegativePrompt: req.NegativePrompt,
		ImageSize:      cmp.Or(req.Size, defaultImageSize(model)),
		BatchSize:      minImages,
	}

	if req.N.Set {
		out.BatchSize = int(clamp(req.N.Value, minImages, maxImages))
	}
	if req.Seed.Set {
		seed := int64(clamp(req.Seed.Value, 0, maxSiliconFlowSeed))
		out.Seed = &seed
	}
	if req.InferenceSteps.Set {
		steps := int(clamp(req.InferenceSteps.Value, 1, 100))
		out.NumInferenceSteps = &steps
	}
	if req.GuidanceScale.Set {
		scale := clamp(req.GuidanceScale.Value, 0, 20)
		out.GuidanceScale = &scale
	}
	if req.CFGScale.Set {
		cfg := clamp(req.CFGScale.Value, 0.1, 20)
		out.CFG = &cfg
	}
	if len(payload.EmbeddedImages) > 0 {
		out.Image = payload.EmbeddedImages[0]
	}
	return out
}

func defaultImageSize(model string) string {
	if strings.HasPrefix(model, "Qwen/") {
		return defaultQwenImageSize
	}
	return defaultOtherImageSize
}

// clamp saturates v into [lo, hi].
func clamp[T cmp.Ordered](v, lo, hi T) T {
	return max(lo, min(hi, v))
}

// truncInt64 drops the fractional part. Values outside the int64 range
// saturate at its bounds.
func truncInt64(v float64) int64 {
	switch {
	case v >= math.MaxInt64:
		return math.MaxInt64
	case v <= math.MinInt64:
		return math.MinInt64
	default:
		return int64(v)
	}
}
