package youtube

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	internalerrors "github.com/jamesprial/mcp-youtube-transcript/internal/errors"
)

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

var watchHosts = map[string]bool{
	"youtube.com":     true,
	"www.youtube.com": true,
	"m.youtube.com":   true,
}

// ParseVideoID extracts the 11-character video ID from a watch URL
// (https://www.youtube.com/watch?v=<id>) or a short link (https://youtu.be/<id>).
// Any other shape fails with the invalid_url code.
func ParseVideoID(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", invalidURL(raw, err.Error())
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", invalidURL(raw, "scheme must be http or https")
	}

	host := strings.ToLower(u.Hostname())
	var id string
	switch {
	case watchHosts[host]:
		if u.Path != "/watch" {
			return "", invalidURL(raw, "path must be /watch")
		}
		id = u.Query().Get("v")
	case host == "youtu.be":
		id = strings.TrimPrefix(u.Path, "/")
	default:
		return "", invalidURL(raw, "not a YouTube host")
	}

	if !videoIDPattern.MatchString(id) {
		return "", invalidURL(raw, "video id must be 11 characters of [A-Za-z0-9_-]")
	}
	return id, nil
}

func invalidURL(raw, why string) error {
	return internalerrors.New("youtube", "ParseVideoID", internalerrors.ErrBadRequest,
		fmt.Errorf("invalid video url: %s", why)).
		WithCode(internalerrors.CodeInvalidURL).
		WithContext("url", raw)
}
