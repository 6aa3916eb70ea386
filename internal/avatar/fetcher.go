// Package avatar resolves a username to a decoded bitmap before the card is
// rendered. Failures are never fatal: the caller falls back to the
// procedural gradient avatar.
package avatar

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"time"

	"iqboard-service/internal/domain"
)

// DefaultURLTemplate resolves a social avatar by handle; %s is the
// URL-escaped username.
const DefaultURLTemplate = "https://unavatar.io/twitter/%s"

// maxAvatarBytes bounds the decode input; remote avatars are small images.
const maxAvatarBytes = 5 << 20

// Fetcher downloads and decodes avatars over HTTP.
type Fetcher struct {
	client      *http.Client
	urlTemplate string
}

// NewFetcher builds a fetcher for the given URL template (empty selects
// DefaultURLTemplate).
func NewFetcher(client *http.Client, urlTemplate string) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if urlTemplate == "" {
		urlTemplate = DefaultURLTemplate
	}
	return &Fetcher{client: client, urlTemplate: urlTemplate}
}

// Fetch resolves the avatar for username. Cancelling ctx abandons the
// request; the caller then proceeds with the gradient fallback. An empty
// username skips the network entirely.
func (f *Fetcher) Fetch(ctx context.Context, username string) (image.Image, error) {
	if username == "" {
		return nil, domain.ErrAvatarUnavailable
	}

	avatarURL := fmt.Sprintf(f.urlTemplate, url.PathEscape(username))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, avatarURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrAvatarUnavailable, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrAvatarUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", domain.ErrAvatarUnavailable, resp.StatusCode)
	}

	img, _, err := image.Decode(io.LimitReader(resp.Body, maxAvatarBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: decode: %v", domain.ErrAvatarUnavailable, err)
	}
	if img.Bounds().Dx() == 0 || img.Bounds().Dy() == 0 {
		return nil, domain.ErrAvatarUnavailable
	}
	return img, nil
}
