package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"testing"

	transporthttp "github.com/jamesprial/mcp-youtube-transcript/internal/transport/internal/http"
	"github.com/jamesprial/mcp-youtube-transcript/internal/transport/transportcore"
)

const testMetadataURL = "https://example.com/.well-known/oauth-protected-resource"

// logCapture collects JSON log lines written by a slog logger.
type logCapture struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (c *logCapture) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.Write(p)
}

func newLogCapture() (*logCapture, *slog.Logger) {
	c := &logCapture{}
	return c, slog.New(slog.NewJSONHandler(c, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// entries decodes every captured line.
func (c *logCapture) entries(t *testing.T) []map[string]any {
	t.Helper()

	c.mu.Lock()
	defer c.mu.Unlock()

	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(c.buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("decode log line %q: %v", line, err)
		}
		out = append(out, entry)
	}
	return out
}

func newResponder() transportcore.Responder {
	return transporthttp.NewResponder(testMetadataURL, nil)
}

// okHandler answers 200 and records that it ran.
func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if called != nil {
			*called = true
		}
		w.WriteHeader(http.StatusOK)
	})
}
