package domain

// Image content kinds.
const (
	ImageTypeBase64 = "base64"
	ImageTypeURL    = "url"
)

type ImageContent struct {
	Type      string `json:"type"`
	Data      string `json:"data"`
	MediaType string `json:"mediaType,omitempty"`
}

// FromBase64 builds an inline image from raw base64 data.
func FromBase64(data, mediaType string) ImageContent {
	return ImageContent{Type: ImageTypeBase64, Data: data, MediaType: mediaType}
}

// FromURL builds an image referencing an external URL.
func FromURL(url string) ImageContent {
	return ImageContent{Type: ImageTypeURL, Data: url}
}

// IsValid checks structural validity. Base64 images must carry one of the
// supported media types; URL images only need non-empty data.
func (i ImageContent) IsValid() bool {
	if i.Type == "" || i.Data == "" {
		return false
	}
	if i.Type == ImageTypeBase64 {
		return isSupportedMediaType(i.MediaType)
	}
	return i.Type == ImageTypeURL
}

// EstimatedSize approximates the decoded byte size of an inline payload.
func (i ImageContent) EstimatedSize() int64 {
	return int64(float64(len(i.Data)) * 0.75)
}

func isSupportedMediaType(mediaType string) bool {
	switch mediaType {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return true
	}
	return false
}
