package imagegen

import (
	"strings"

	"image-bridge/internal/domain"
)

const roleUser = "user"

// ExtractPayload pulls the prompt and the reference images out of a chat history.
//
// User messages are scanned from newest to oldest. The first one that yields
// prompt text is read in full and the scan stops there. Images found in newer
// image-only user turns on the way are kept.
func ExtractPayload(messages []domain.ChatMessage) (*domain.ExtractedPayload, error) {
	payload := &domain.ExtractedPayload{}

	for i := len(messages) - 1; i >= 0; i-- {
		msg := messages[i]
		if msg.Role != roleUser {
			continue
		}

		readContent(msg.Content, payload)
		if payload.Prompt != "" {
			return payload, nil
		}
	}

	return nil, newValidationError("messages", "no user message carries prompt text", ErrPromptNotFound)
}

// readContent folds one message's content into the payload.
func readContent(content domain.MessageContent, payload *domain.ExtractedPayload) {
	if content.Text != nil {
		if text := strings.TrimSpace(*content.Text); text != "" {
			payload.Prompt = text
		}
		return
	}

	for _, chunk := range content.Chunks {
		switch chunk.Kind {
		case domain.ChunkText:
			if text := strings.TrimSpace(chunk.Text); text != "" {
				payload.Prompt = text
			}
		case domain.ChunkImage:
			addImage(chunk.URL, payload)
		case domain.ChunkUnknown:
			// skipped
		}
	}
}

func addImage(url string, payload *domain.ExtractedPayload) {
	url = strings.TrimSpace(url)
	switch {
	case url == "":
		return
	case strings.HasPrefix(url, "data:"):
		payload.EmbeddedImages = append(payload.EmbeddedImages, url)
	default:
		payload.RemoteImages = append(payload.RemoteImages, url)
	}
}
