package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	yt "github.com/kkdai/youtube/v2"
)

// Failure classes a Source reports. The fetcher maps them to public codes
// and retries only ErrTransient.
var (
	ErrVideoNotFound         = errors.New("video not found")
	ErrTranscriptUnavailable = errors.New("transcript unavailable")
	ErrTransient             = errors.New("transient transcript source failure")
)

// Segment is one caption line. Start and Duration are in seconds.
type Segment struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// Source retrieves the caption segments of a video in a language.
type Source interface {
	Segments(ctx context.Context, videoID, language string) ([]Segment, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, videoID, language string) ([]Segment, error)

// Segments calls f.
func (f SourceFunc) Segments(ctx context.Context, videoID, language string) ([]Segment, error) {
	return f(ctx, videoID, language)
}

// LibrarySource reads transcripts through github.com/kkdai/youtube.
type LibrarySource struct {
	client *yt.Client
}

// NewLibrarySource creates a source using httpClient, or the default client when nil.
func NewLibrarySource(httpClient *http.Client) *LibrarySource {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &LibrarySource{client: &yt.Client{HTTPClient: httpClient}}
}

// Segments fetches video metadata and then the caption track for language.
func (s *LibrarySource) Segments(ctx context.Context, videoID, language string) ([]Segment, error) {
	video, err := s.client.GetVideoContext(ctx, videoID)
	if err != nil {
		return nil, classifyLibraryError(err)
	}

	transcript, err := s.client.GetTranscriptCtx(ctx, video, language)
	if err != nil {
		return nil, classifyLibraryError(err)
	}

	segments := make([]Segment, 0, len(transcript))
	for _, seg := range transcript {
		segments = append(segments, Segment{
			Text:     seg.Text,
			Start:    msToSeconds(seg.StartMs),
			Duration: msToSeconds(seg.Duration),
		})
	}
	return segments, nil
}

// classifyLibraryError wraps a library error with its failure class.
// Errors it does not recognise are returned unchanged and are not retried.
func classifyLibraryError(err error) error {
	var status yt.ErrUnexpectedStatusCode
	switch {
	case errors.Is(err, yt.ErrTranscriptDisabled),
		errors.Is(err, yt.ErrLoginRequired),
		errors.Is(err, yt.ErrNotPlayableInEmbed):
		return fmt.Errorf("%w: %w", ErrTranscriptUnavailable, err)
	case errors.Is(err, yt.ErrVideoPrivate),
		errors.Is(err, yt.ErrInvalidCharactersInVideoID),
		errors.Is(err, yt.ErrVideoIDMinLength):
		return fmt.Errorf("%w: %w", ErrVideoNotFound, err)
	case errors.As(err, &status):
		if int(status) == http.StatusNotFound {
			return fmt.Errorf("%w: %w", ErrVideoNotFound, err)
		}
		if int(status) == http.StatusTooManyRequests || int(status) >= 500 {
			return fmt.Errorf("%w: %w", ErrTransient, err)
		}
		return err
	}

	// Playability failures only carry YouTube's human-readable reason.
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "video unavailable"), strings.Contains(msg, "private video"):
		return fmt.Errorf("%w: %w", ErrVideoNotFound, err)
	case strings.Contains(msg, "transcript"), strings.Contains(msg, "caption"):
		return fmt.Errorf("%w: %w", ErrTranscriptUnavailable, err)
	}
	return err
}

func msToSeconds(ms int) float64 {
	return float64(ms) / 1000
}
