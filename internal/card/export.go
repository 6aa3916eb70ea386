package card

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"time"

	"iqboard-service/internal/domain"
)

// shareTemplate is the fixed promotional line; only the origin URL varies.
const shareTemplate = "I just took the OpenGradient IQ Board quiz. Check out my result! %s"

// ExportPNG encodes the rendered card and suggests a collision-free filename.
func ExportPNG(img image.Image) ([]byte, string, error) {
	return exportPNGAt(img, time.Now())
}

func exportPNGAt(img image.Image, now time.Time) ([]byte, string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, "", fmt.Errorf("encode card: %w", err)
	}
	filename := fmt.Sprintf("opengradient-iq-%d.png", now.UnixMilli())
	return buf.Bytes(), filename, nil
}

// BuildShareText composes the social-share payload for the deployment origin.
// Username and score are deliberately not embedded.
func BuildShareText(originURL string) domain.SharePayload {
	return domain.SharePayload{
		URL:  originURL,
		Text: fmt.Sprintf(shareTemplate, originURL),
	}
}
