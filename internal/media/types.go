// Package media defines shared types for the minnow application.
package media

import (
	"fmt"
	"strings"
)

// MediaType represents whether content is a movie or TV show.
type MediaType string

const (
	Movie MediaType = "movie"
	TV    MediaType = "tv"
)

// ParseMediaType converts a string into a MediaType. Matching is
// case-insensitive.
func ParseMediaType(s string) (MediaType, error) {
	switch strings.ToLower(s) {
	case "movie":
		return Movie, nil
	case "tv":
		return TV, nil
	default:
		return "", fmt.Errorf("unknown media type %q (valid: movie, tv)", s)
	}
}

// Stream kinds.
const (
	KindHLS    = "hls"
	KindDirect = "direct"
)

// StreamRequest identifies one piece of content to extract streams for.
// Season and Episode are zero for movies.
type StreamRequest struct {
	ContentID string
	Type      MediaType
	Season    int
	Episode   int
}

// Validate checks the media type / season / episode combination.
// TV requests require both a positive season and episode; movie
// requests must carry neither.
func (r StreamRequest) Validate() error {
	if r.ContentID == "" {
		return fmt.Errorf("content ID cannot be empty")
	}
	switch r.Type {
	case Movie:
		if r.Season != 0 || r.Episode != 0 {
			return fmt.Errorf("movie requests must not specify season or episode")
		}
	case TV:
		if r.Season <= 0 || r.Episode <= 0 {
			return fmt.Errorf("tv requests require positive season and episode numbers")
		}
	default:
		return fmt.Errorf("unknown media type %q (valid: movie, tv)", r.Type)
	}
	return nil
}

// Label describes the request for logs and player titles,
// e.g. "movie 550" or "tv 1399 S01E05".
func (r StreamRequest) Label() string {
	if r.Type == TV {
		return fmt.Sprintf("tv %s S%02dE%02d", r.ContentID, r.Season, r.Episode)
	}
	return fmt.Sprintf("movie %s", r.ContentID)
}

// Stream carries everything a player needs to fetch one video stream.
// Headers hold the hotlink-protection set (Referer, Origin, User-Agent,
// ...) that must be forwarded unmodified on every manifest and segment
// request, or the origin rejects the fetch. Immutable once built.
type Stream struct {
	File    string            `json:"file"`
	Title   string            `json:"title"`
	Quality string            `json:"quality"`
	Kind    string            `json:"type"` // KindHLS or KindDirect
	Headers map[string]string `json:"headers"`
}

// ExtractionResult is one source's outcome for a request. Err set means
// the source failed outright and Streams is empty. Empty Streams with
// no Err is a legitimate "nothing found" outcome, not a failure.
type ExtractionResult struct {
	Source  string
	Streams []Stream
	Err     string
}

// SourceResult is the JSON shape of one source's sub-object in the
// aggregated API response.
type SourceResult struct {
	Streams []Stream `json:"streams"`
	Error   string   `json:"error,omitempty"`
}

// AsSourceResult converts a result into the API sub-object shape.
// The streams array is always present in the JSON, never null.
func (r ExtractionResult) AsSourceResult() SourceResult {
	streams := r.Streams
	if streams == nil {
		streams = []Stream{}
	}
	return SourceResult{Streams: streams, Error: r.Err}
}

// HistoryEntry represents a single entry in the local watch history.
type HistoryEntry struct {
	ID       string    // TMDB content ID
	Title    string    // Display title
	Type     MediaType // Movie or TV
	Season   int       // Season number (TV only, 0 for movies)
	Episode  int       // Episode number (TV only, 0 for movies)
	Position float64   // Last playback position in seconds
	Duration float64   // Total duration in seconds
}
