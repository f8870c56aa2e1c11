package api

import (
	"net/url"
	"strings"
)

// ImageType selects a pre-rendered resolution of a catalog image.
type ImageType string

const (
	ImageIcon       ImageType = "ICON"
	ImageMidDisplay ImageType = "MID-DISPLAY"
	ImageDisplay    ImageType = "DISPLAY"
)

// ImageURL returns raw with its type query parameter set to t, replacing any
// existing value. URLs without a scheme are treated as http. An empty t means
// ImageMidDisplay. An empty or unparsable raw yields "".
func ImageURL(raw string, t ImageType) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if t == "" {
		t = ImageMidDisplay
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "http://" + strings.TrimPrefix(raw, "//")
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	q := u.Query()
	q.Set("type", string(t))
	u.RawQuery = q.Encode()
	return u.String()
}
