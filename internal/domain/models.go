package domain

import (
	"bytes"
	"encoding/json"
)

// These records are request scoped. They are built fresh for each call to the
// gateway and dropped once the response is written.

// GenerationRequest is the OpenAI-style chat completion body accepted by the gateway.
// Fields it does not recognise are ignored.
type GenerationRequest struct {
	Model          string        `json:"model,omitempty"`
	Messages       []ChatMessage `json:"messages"`
	N              Number        `json:"n,omitzero"`
	Size           string        `json:"size,omitempty"`
	Seed           Number        `json:"seed,omitzero"`
	NegativePrompt string        `json:"negative_prompt,omitempty"`
	InferenceSteps Number        `json:"num_inference_steps,omitzero"`
	GuidanceScale  Number        `json:"guidance_scale,omitzero"`
	CFGScale       Number        `json:"cfg,omitzero"`
}

// ChatMessage is a single turn of the caller's conversation.
type ChatMessage struct {
	Role    string         `json:"role"`
	Content MessageContent `json:"content"`
}

// MessageContent holds either a plain string or an ordered list of chunks.
// Any other JSON shape (null, numbers, objects) leaves both unset.
type MessageContent struct {
	Text   *string
	Chunks []ContentChunk
}

// TextContent builds plain string content.
func TextContent(s string) MessageContent {
	return MessageContent{Text: &s}
}

// ChunkContent builds multimodal content from the given chunks.
func ChunkContent(chunks ...ContentChunk) MessageContent {
	return MessageContent{Chunks: chunks}
}

func (c *MessageContent) UnmarshalJSON(b []byte) error {
	*c = MessageContent{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil
	}

	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		c.Text = &s
	case '[':
		var chunks []ContentChunk
		if err := json.Unmarshal(b, &chunks); err != nil {
			return err
		}
		c.Chunks = chunks
	}
	return nil
}

func (c MessageContent) MarshalJSON() ([]byte, error) {
	switch {
	case c.Chunks != nil:
		return json.Marshal(c.Chunks)
	case c.Text != nil:
		return json.Marshal(*c.Text)
	default:
		return []byte("null"), nil
	}
}

// ChunkKind tags a ContentChunk.
type ChunkKind int

const (
	// ChunkUnknown is any chunk the gateway does not understand. It is skipped.
	ChunkUnknown ChunkKind = iota
	ChunkText
	ChunkImage
)

// ContentChunk is one element of a multimodal message.
type ContentChunk struct {
	Kind ChunkKind
	Text string
	URL  string
}

// TextChunk builds a text chunk.
func TextChunk(text string) ContentChunk {
	return ContentChunk{Kind: ChunkText, Text: text}
}

// ImageChunk builds an image reference chunk.
func ImageChunk(url string) ContentChunk {
	return ContentChunk{Kind: ChunkImage, URL: url}
}

type rawChunk struct {
	Type     string          `json:"type"`
	Text     *string         `json:"text"`
	ImageURL json.RawMessage `json:"image_url"`
}

type rawImageURL struct {
	URL *string `json:"url"`
}

// UnmarshalJSON never fails: a chunk of the wrong shape decodes to ChunkUnknown.
func (c *ContentChunk) UnmarshalJSON(b []byte) error {
	*c = ContentChunk{}

	var raw rawChunk
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil
	}

	switch raw.Type {
	case "text", "input_text":
		if raw.Text != nil {
			*c = TextChunk(*raw.Text)
		}
	case "image_url", "input_image":
		if url, ok := decodeImageURL(raw.ImageURL); ok {
			*c = ImageChunk(url)
		}
	}
	return nil
}

// decodeImageURL accepts both {"url": "..."} and a bare string.
func decodeImageURL(b json.RawMessage) (string, bool) {
	if len(b) == 0 {
		return "", false
	}

	var obj rawImageURL
	if err := json.Unmarshal(b, &obj); err == nil && obj.URL != nil {
		return *obj.URL, true
	}

	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		return s, true
	}
	return "", false
}

func (c ContentChunk) MarshalJSON() ([]byte, error) {
	switch c.Kind {
	case ChunkText:
		return json.Marshal(map[string]string{"type": "text", "text": c.Text})
	case ChunkImage:
		return json.Marshal(map[string]any{
			"type":      "image_url",
			"image_url": map[string]string{"url": c.URL},
		})
	default:
		return []byte(`{"type":"unknown"}`), nil
	}
}

// Number is a JSON number that decodes leniently. Anything that is not a
// number (strings, booleans, null) leaves it unset instead of failing.
type Number struct {
	Value float64
	Set   bool
}

// Num returns a set Number.
func Num(v float64) Number {
	return Number{Value: v, Set: true}
}

func (n Number) IsZero() bool {
	return !n.Set
}

func (n *Number) UnmarshalJSON(b []byte) error {
	*n = Number{}
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}

	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return nil
	}
	*n = Num(f)
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Set {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// ExtractedPayload is what the message interpreter pulls out of the history.
// Prompt is never empty.
type ExtractedPayload struct {
	Prompt         string
	EmbeddedImages []string // data: URIs
	RemoteImages   []string // http(s) links
}

// GeneratedImage is a single result, either a remote URL or a data: URI.
type GeneratedImage struct {
	URL string `json:"url"`
}

// GenerationResult is the uniform shape every provider response is normalised into.
type GenerationResult struct {
	Images                []GeneratedImage
	CreatedAtEpochSeconds int64
	ModelID               string
	Usage                 json.RawMessage // opaque, nil when the provider sent none
	ProviderMetadata      json.RawMessage // opaque, nil when the provider sent none
}
