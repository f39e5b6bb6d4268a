// Package tools defines the concrete tools the server exposes and the
// explicit list they are registered from at startup.
package tools

import (
	"context"
	"fmt"

	"github.com/jamesprial/mcp-youtube-transcript/internal/mcp"
	"github.com/jamesprial/mcp-youtube-transcript/internal/youtube"
)

// Tool names.
const (
	TranscriptToolName = "get_youtube_transcript"
	HelloWorldToolName = "hello_world"
)

// TranscriptFetcher retrieves a transcript for a video URL.
type TranscriptFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*youtube.Transcript, error)
}

// Transcript returns the get_youtube_transcript tool.
func Transcript(fetcher TranscriptFetcher) mcp.Tool {
	return mcp.Tool{
		Name:        TranscriptToolName,
		Description: "Fetch the transcript of a YouTube video. Returns the full text and the timed caption segments.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"url": map[string]any{
					"type":        "string",
					"description": "YouTube video URL, either https://www.youtube.com/watch?v=<id> or https://youtu.be/<id>",
				},
			},
			"required":             []any{"url"},
			"additionalProperties": false,
		},
		Handler: func(ctx context.Context, params map[string]any, ec *mcp.ExecutionContext) (any, error) {
			rawURL, _ := params["url"].(string)

			transcript, err := fetcher.Fetch(ctx, rawURL)
			if err != nil {
				return nil, err
			}

			ec.Logger.Info("transcript retrieved",
				"video_id", transcript.VideoID,
				"segments", len(transcript.Segments),
				"characters", len(transcript.FullText))
			return transcript, nil
		},
	}
}

// HelloWorld returns a connectivity-check tool.
func HelloWorld() mcp.Tool {
	return mcp.Tool{
		Name:        HelloWorldToolName,
		Description: "Return a fixed greeting. Useful for checking that authentication and tool invocation work.",
		InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
		Handler: func(context.Context, map[string]any, *mcp.ExecutionContext) (any, error) {
			return "hello world", nil
		},
	}
}

// RegisterAll registers every tool, in catalogue order.
func RegisterAll(registry mcp.ToolRegistry, fetcher TranscriptFetcher) error {
	for _, tool := range []mcp.Tool{
		Transcript(fetcher),
		HelloWorld(),
	} {
		if err := registry.Register(tool); err != nil {
			return fmt.Errorf("register %s: %w", tool.Name, err)
		}
	}
	return nil
}
