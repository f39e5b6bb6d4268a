// Package youtube resolves YouTube video URLs and retrieves their transcripts
// with bounded, classified retries.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sort"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"

	internalerrors "github.com/jamesprial/mcp-youtube-transcript/internal/errors"
	"github.com/jamesprial/mcp-youtube-transcript/internal/metrics"
)

// Defaults applied when Options leaves a field unset. MaxRetries takes its
// default only when negative, so zero disables retries.
const (
	DefaultTimeout    = 5 * time.Second
	DefaultMaxRetries = 2
	DefaultBaseDelay  = time.Second
	DefaultLanguage   = "en"
)

// Transcript is a video's caption track in chronological order.
type Transcript struct {
	VideoID  string    `json:"video_id"`
	Language string    `json:"language"`
	FullText string    `json:"full_text"`
	Segments []Segment `json:"segments"`
}

// ContentText returns the concatenated transcript.
func (t *Transcript) ContentText() string {
	return t.FullText
}

// Options configures a Fetcher.
type Options struct {
	// Timeout bounds each attempt against the source.
	Timeout time.Duration

	// MaxRetries is the number of retries after the first attempt. Zero
	// disables retries; negative selects DefaultMaxRetries.
	MaxRetries int

	// BaseDelay is the first retry delay; each further delay doubles.
	BaseDelay time.Duration

	Language string
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
}

// Fetcher retrieves transcripts from a Source. Only transient failures are
// retried; not-found and disabled transcripts fail immediately.
type Fetcher struct {
	source     Source
	timeout    time.Duration
	maxRetries int
	baseDelay  time.Duration
	language   string
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// NewFetcher creates a fetcher over source.
func NewFetcher(source Source, opts Options) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = DefaultMaxRetries
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = DefaultBaseDelay
	}
	if opts.Language == "" {
		opts.Language = DefaultLanguage
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Fetcher{
		source:     source,
		timeout:    opts.Timeout,
		maxRetries: opts.MaxRetries,
		baseDelay:  opts.BaseDelay,
		language:   opts.Language,
		logger:     opts.Logger,
		metrics:    opts.Metrics,
	}
}

// Fetch returns the transcript of the video at rawURL. An unrecognised URL
// fails with invalid_url before the source is contacted.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Transcript, error) {
	videoID, err := ParseVideoID(rawURL)
	if err != nil {
		return nil, err
	}
	return f.FetchByID(ctx, videoID)
}

// FetchByID returns the transcript of videoID.
func (f *Fetcher) FetchByID(ctx context.Context, videoID string) (*Transcript, error) {
	logger := f.logger.With("video_id", videoID)

	attempts := 0
	operation := func() ([]Segment, error) {
		attempts++
		attemptCtx, cancel := context.WithTimeout(ctx, f.timeout)
		defer cancel()

		segments, err := f.source.Segments(attemptCtx, videoID, f.language)
		if err == nil {
			return segments, nil
		}
		if ctx.Err() != nil {
			return nil, backoff.Permanent(ctx.Err())
		}
		if isTransient(err) {
			return nil, err
		}
		return nil, backoff.Permanent(err)
	}

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = f.baseDelay
	expBackoff.Multiplier = 2
	expBackoff.RandomizationFactor = 0
	expBackoff.MaxInterval = f.baseDelay << f.maxRetries
	expBackoff.Reset()

	segments, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(expBackoff),
		backoff.WithMaxTries(uint(f.maxRetries+1)), // #nosec G115 -- includes the initial attempt
		backoff.WithNotify(func(err error, delay time.Duration) {
			f.metrics.TranscriptRetry()
			logger.Warn("transcript fetch failed, retrying", "attempt", attempts, "delay", delay, "error", err)
		}),
	)
	if err != nil {
		return nil, f.classify(videoID, attempts, err)
	}
	if len(segments) == 0 {
		return nil, internalerrors.New("youtube", "Fetch", internalerrors.ErrNotFound,
			fmt.Errorf("%w: empty caption track", ErrTranscriptUnavailable)).
			WithCode(internalerrors.CodeTranscriptUnavailable).
			WithContext("video_id", videoID)
	}

	logger.Debug("transcript fetched", "attempts", attempts, "segments", len(segments))
	return assemble(videoID, f.language, segments), nil
}

// classify maps a final source error to a domain error.
func (f *Fetcher) classify(videoID string, attempts int, err error) error {
	var kind error
	var code string
	switch {
	case errors.Is(err, ErrVideoNotFound):
		kind, code = internalerrors.ErrNotFound, internalerrors.CodeVideoNotFound
	case errors.Is(err, ErrTranscriptUnavailable):
		kind, code = internalerrors.ErrNotFound, internalerrors.CodeTranscriptUnavailable
	case isTransient(err), errors.Is(err, context.Canceled):
		kind, code = internalerrors.ErrUnavailable, internalerrors.CodeServiceUnavailable
	default:
		kind, code = internalerrors.ErrInternal, internalerrors.CodeInternalError
	}

	return internalerrors.New("youtube", "Fetch", kind, err).
		WithCode(code).
		WithContext("video_id", videoID).
		WithContext("attempts", attempts)
}

// isTransient reports whether err is worth retrying: timeouts, network
// errors and sources flagging throttling or server errors.
func isTransient(err error) bool {
	if errors.Is(err, ErrTransient) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// assemble orders segments by start time and joins their text.
func assemble(videoID, language string, segments []Segment) *Transcript {
	ordered := make([]Segment, len(segments))
	copy(ordered, segments)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Start < ordered[j].Start
	})

	parts := make([]string, 0, len(ordered))
	for _, seg := range ordered {
		if text := strings.TrimSpace(seg.Text); text != "" {
			parts = append(parts, text)
		}
	}

	return &Transcript{
		VideoID:  videoID,
		Language: language,
		FullText: strings.Join(parts, " "),
		Segments: ordered,
	}
}
