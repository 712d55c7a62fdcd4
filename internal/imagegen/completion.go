package imagegen

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"image-bridge/internal/domain"
)

const finishReasonStop = "stop"

// ChatCompletion is the OpenAI-style envelope returned to the caller.
type ChatCompletion struct {
	ID      string          `json:"id"`
	Object  string          `json:"object"`
	Created int64           `json:"created"`
	Model   string          `json:"model"`
	Choices []Choice        `json:"choices"`
	Usage   json.RawMessage `json:"usage,omitempty"`
}

type Choice struct {
	Index        int              `json:"index"`
	Message      AssistantMessage `json:"message"`
	FinishReason string           `json:"finish_reason"`
}

// AssistantMessage carries the generated images next to a readable note.
type AssistantMessage struct {
	Role     string                  `json:"role"`
	Content  string                  `json:"content"`
	Images   []domain.GeneratedImage `json:"images"`
	Metadata json.RawMessage         `json:"metadata,omitempty"`
}

func newCompletionID() string {
	return "chatcmpl-" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// ToChatCompletion wraps a normalised result in the chat completion envelope.
func ToChatCompletion(id string, r *domain.GenerationResult) *ChatCompletion {
	images := r.Images
	if images == nil {
		images = []domain.GeneratedImage{}
	}

	return &ChatCompletion{
		ID:      id,
		Object:  "chat.completion",
		Created: r.CreatedAtEpochSeconds,
		Model:   r.ModelID,
		Choices: []Choice{{
			Index: 0,
			Message: AssistantMessage{
				Role:     "assistant",
				Content:  completionNote(images),
				Images:   images,
				Metadata: r.ProviderMetadata,
			},
			FinishReason: finishReasonStop,
		}},
		Usage: r.Usage,
	}
}

// completionNote links remote images as markdown. Inline data URIs are
// counted but never copied into the text.
func completionNote(images []domain.GeneratedImage) string {
	var sb strings.Builder
	switch len(images) {
	case 0:
		sb.WriteString("The provider returned no images.")
	case 1:
		sb.WriteString("Generated 1 image.")
	default:
		fmt.Fprintf(&sb, "Generated %d images.", len(images))
	}

	for i, img := range images {
		if strings.HasPrefix(img.URL, "data:") {
			continue
		}
		fmt.Fprintf(&sb, "\n\n![image %d](%s)", i+1, img.URL)
	}
	return sb.String()
}
