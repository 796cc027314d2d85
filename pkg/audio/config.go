package audio

import "strings"

// ContentType is a hint passed to the decoder so it can pick a normalization
// profile for the material being fingerprinted.
type ContentType string

const (
	ContentMusic   ContentType = "music"
	ContentNews    ContentType = "news"
	ContentSports  ContentType = "sports"
	ContentTalk    ContentType = "talk"
	ContentMixed   ContentType = "mixed"
	ContentUnknown ContentType = "unknown"
)

// ParseContentType maps free-form user input to a ContentType. Empty input
// is ContentMusic; anything unrecognized is ContentUnknown.
func ParseContentType(contentType string) ContentType {
	switch strings.ToLower(strings.TrimSpace(contentType)) {
	case "", "music", "audio/music":
		return ContentMusic
	case "news", "spoken":
		return ContentNews
	case "talk":
		return ContentTalk
	case "sports":
		return ContentSports
	case "mixed":
		return ContentMixed
	default:
		return ContentUnknown
	}
}

func (c ContentType) String() string {
	return string(c)
}
