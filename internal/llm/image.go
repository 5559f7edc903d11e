package llm

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const maxImageBytes = 8 << 20 // vision API limit is 20MB; stay well under

// ImageResolver converts caller-supplied image references into a form the
// completion service accepts. Browser clients already send data URLs, which
// pass through untouched; http(s) URLs are fetched and inlined.
type ImageResolver struct {
	client *resty.Client
}

func NewImageResolver() *ImageResolver {
	return &ImageResolver{
		client: resty.New().SetTimeout(30 * time.Second),
	}
}

func (r *ImageResolver) Resolve(ctx context.Context, imageURL string) (string, error) {
	if strings.HasPrefix(imageURL, "data:") {
		return imageURL, nil
	}

	u, err := url.Parse(imageURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "", fmt.Errorf("unsupported image reference scheme, expected data: or http(s)")
	}

	resp, err := r.client.R().SetContext(ctx).Get(imageURL)
	if err != nil {
		return "", fmt.Errorf("error fetching image: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("error fetching image: upstream returned %s", resp.Status())
	}

	body := resp.Body()
	if len(body) == 0 {
		return "", fmt.Errorf("image response was empty")
	}
	if len(body) > maxImageBytes {
		return "", fmt.Errorf("image is too large (%d bytes, limit %d)", len(body), maxImageBytes)
	}

	contentType := resp.Header().Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(body)
	}

	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(body), nil
}
