package imagegen

import (
	"encoding/json"
	"time"

	"github.com/tidwall/gjson"

	"image-bridge/internal/domain"
)

const inlinePNGPrefix = "data:image/png;base64,"

// imageListKeys lists where each provider puts its images, in lookup order.
var imageListKeys = map[Provider][]string{
	ProviderArk:         {"data"},
	ProviderSiliconFlow: {"images", "data"},
}

// Normalize turns a provider's 2xx body into a GenerationResult.
//
// Only a missing image list is an error. Entries that carry neither a URL nor
// base64 data are dropped, and the optional fields fall back to requestedModel
// and now.
func Normalize(p Provider, raw []byte, requestedModel string, now time.Time) (*domain.GenerationResult, error) {
	if !gjson.ValidBytes(raw) {
		return nil, &MalformedResponseError{Provider: p, Reason: "body is not valid JSON"}
	}
	doc := gjson.ParseBytes(raw)
	if !doc.IsObject() {
		return nil, &MalformedResponseError{Provider: p, Reason: "body is not a JSON object"}
	}

	list, ok := locateImageList(p, doc)
	if !ok {
		return nil, &MalformedResponseError{Provider: p, Reason: "no image list in response"}
	}

	images := make([]domain.GeneratedImage, 0, len(list))
	for _, entry := range list {
		if img, ok := decodeImageEntry(entry).image(); ok {
			images = append(images, img)
		}
	}

	result := &domain.GenerationResult{
		Images:                images,
		CreatedAtEpochSeconds: createdAt(doc, now),
		ModelID:               requestedModel,
		Usage:                 rawField(doc, "usage"),
	}
	if model := doc.Get("model"); model.Type == gjson.String && model.Str != "" {
		result.ModelID = model.Str
	}
	if p == ProviderSiliconFlow {
		result.ProviderMetadata = siliconFlowMetadata(doc)
	}
	return result, nil
}

func locateImageList(p Provider, doc gjson.Result) ([]gjson.Result, bool) {
	for _, key := range imageListKeys[p] {
		if list := doc.Get(key); list.IsArray() {
			return list.Array(), true
		}
	}
	return nil, false
}

type imageEntryKind int

const (
	entryUnrecognized imageEntryKind = iota
	entryRemote
	entryInline
)

// imageEntry is one decoded element of a provider's image list.
type imageEntry struct {
	kind  imageEntryKind
	value string
}

// decodeImageEntry prefers a remote URL over inline base64 data.
func decodeImageEntry(entry gjson.Result) imageEntry {
	if url := entry.Get("url"); url.Type == gjson.String && url.Str != "" {
		return imageEntry{kind: entryRemote, value: url.Str}
	}
	if b64 := entry.Get("b64_json"); b64.Type == gjson.String && b64.Str != "" {
		return imageEntry{kind: entryInline, value: b64.Str}
	}
	return imageEntry{kind: entryUnrecognized}
}

func (e imageEntry) image() (domain.GeneratedImage, bool) {
	switch e.kind {
	case entryRemote:
		return domain.GeneratedImage{URL: e.value}, true
	case entryInline:
		return domain.GeneratedImage{URL: inlinePNGPrefix + e.value}, true
	default:
		return domain.GeneratedImage{}, false
	}
}

func createdAt(doc gjson.Result, now time.Time) int64 {
	if created := doc.Get("created"); created.Type == gjson.Number {
		return created.Int()
	}
	return now.Unix()
}

// rawField returns the raw JSON of key, or nil when it is absent or null.
func rawField(doc gjson.Result, key string) json.RawMessage {
	field := doc.Get(key)
	if !field.Exists() || field.Type == gjson.Null {
		return nil
	}
	return json.RawMessage(field.Raw)
}

// siliconFlowMetadata groups the timing and seed SiliconFlow reports.
func siliconFlowMetadata(doc gjson.Result) json.RawMessage {
	meta := make(map[string]json.RawMessage, 2)
	for _, key := range []string{"timings", "seed"} {
		if v := rawField(doc, key); v != nil {
			meta[key] = v
		}
	}
	if len(meta) == 0 {
		return nil
	}

	b, err := json.Marshal(meta)
	if err != nil {
		return nil
	}
	return b
}
