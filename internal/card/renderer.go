// Package card renders the shareable 1024x1024 result card. The layout is
// fully deterministic: identical options produce pixel-identical output.
package card

import (
	"image"
	"image/color"
	"strconv"
	"sync"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"iqboard-service/internal/domain"
)

const (
	// Size is the card's fixed square dimension in pixels.
	Size    = 1024
	padding = 48
	title   = "OpenGradient IQ Board"

	titleY       = 168.0
	avatarRadius = 130.0
	avatarY      = titleY + 40 + avatarRadius

	usernameOffset = 60.0
	scoreOffset    = 80.0
	rankOffset     = 56.0
	footerInset    = 16.0
)

var (
	titleFace    = mustFace(gobold.TTF, 36)
	usernameFace = mustFace(gobold.TTF, 42)
	scoreFace    = mustFace(gobold.TTF, 72)
	rankFace     = mustFace(goregular.TTF, 34)
	footerFace   = mustFace(goregular.TTF, 22)
)

func mustFace(ttf []byte, size float64) font.Face {
	ft, err := opentype.Parse(ttf)
	if err != nil {
		panic(err)
	}
	face, err := opentype.NewFace(ft, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		panic(err)
	}
	return face
}

// Render draws a fresh card for the given options and returns the raster.
func Render(opts domain.CardOptions) image.Image {
	dc := gg.NewContext(Size, Size)
	Draw(dc, opts)
	return dc.Image()
}

// renderMu serializes draws: the shared opentype faces cache glyphs and are
// not safe for concurrent use.
var renderMu sync.Mutex

// Draw paints the full card into dc, overwriting any prior content. dc must
// be a Size x Size context; a nil context is a caller contract violation and
// a no-op.
func Draw(dc *gg.Context, opts domain.CardOptions) {
	if dc == nil {
		return
	}
	renderMu.Lock()
	defer renderMu.Unlock()

	w := float64(dc.Width())
	h := float64(dc.Height())
	centerX := w / 2

	// Warm dark gradient background.
	bg := gg.NewLinearGradient(0, 0, w, h)
	bg.AddColorStop(0, color.NRGBA{R: 0x0f, G: 0x0e, B: 0x0c, A: 255})
	bg.AddColorStop(0.4, color.NRGBA{R: 0x1a, G: 0x19, B: 0x17, A: 255})
	bg.AddColorStop(0.7, color.NRGBA{R: 0x15, G: 0x14, B: 0x12, A: 255})
	bg.AddColorStop(1, color.NRGBA{R: 0x0f, G: 0x0e, B: 0x0c, A: 255})
	dc.SetFillStyle(bg)
	dc.DrawRectangle(0, 0, w, h)
	dc.Fill()

	// Dot matrix texture.
	dc.SetColor(color.NRGBA{R: 42, G: 40, B: 36, A: 102})
	const step = 24.0
	for x := 12.0; x <= w; x += step {
		for y := 12.0; y <= h; y += step {
			dc.DrawCircle(x, y, 0.8)
			dc.Fill()
		}
	}

	// Glassmorphism panel.
	glassW := w - padding*2
	glassH := h - padding*2
	dc.DrawRoundedRectangle(padding, padding, glassW, glassH, 32)
	dc.SetColor(color.NRGBA{R: 26, G: 25, B: 23, A: 204})
	dc.FillPreserve()
	dc.SetColor(color.NRGBA{R: 0, G: 240, B: 181, A: 51})
	dc.SetLineWidth(2)
	dc.Stroke()

	// Glow border accent.
	dc.DrawRoundedRectangle(padding+2, padding+2, glassW-4, glassH-4, 30)
	dc.SetColor(color.NRGBA{R: 0, G: 240, B: 181, A: 31})
	dc.SetLineWidth(3)
	dc.Stroke()

	// Title.
	dc.SetFontFace(titleFace)
	dc.SetColor(color.NRGBA{R: 255, G: 255, B: 255, A: 242})
	dc.DrawStringAnchored(title, centerX, titleY, 0.5, 0.5)

	drawAvatar(dc, opts, centerX, avatarY)

	// @username.
	username := opts.Username
	if username == "" {
		username = "anonymous"
	}
	usernameY := avatarY + avatarRadius + usernameOffset
	dc.SetFontFace(usernameFace)
	dc.SetHexColor("#ede8df")
	dc.DrawStringAnchored("@"+username, centerX, usernameY, 0.5, 0.5)

	// Score, large and prominent.
	scoreY := usernameY + scoreOffset
	dc.SetFontFace(scoreFace)
	dc.SetHexColor("#00f0b5")
	dc.DrawStringAnchored(formatPercent(opts.ScorePercentage), centerX, scoreY, 0.5, 0.5)

	// Rank tier.
	rankY := scoreY + rankOffset
	dc.SetFontFace(rankFace)
	dc.SetHexColor("#a8a196")
	dc.DrawStringAnchored(string(opts.Rank), centerX, rankY, 0.5, 0.5)

	// Powered-by footer.
	dc.SetFontFace(footerFace)
	dc.SetColor(color.NRGBA{R: 168, G: 161, B: 150, A: 89})
	dc.DrawStringAnchored("Powered by OpenGradient", centerX, h-padding-footerInset, 0.5, 0.5)
}

// drawAvatar renders the circular avatar: the supplied bitmap aspect-filled
// into the circle, or the procedural gradient disc when absent or forced to
// fall back. The boundary ring is stroked either way.
func drawAvatar(dc *gg.Context, opts domain.CardOptions, cx, cy float64) {
	avatar := opts.AvatarImage
	usable := avatar != nil && !opts.UseGradientFallback &&
		avatar.Bounds().Dx() > 0 && avatar.Bounds().Dy() > 0

	dc.Push()
	dc.DrawCircle(cx, cy, avatarRadius)
	dc.Clip()
	if usable {
		bounds := avatar.Bounds()
		scale := maxFloat(
			avatarRadius*2/float64(bounds.Dx()),
			avatarRadius*2/float64(bounds.Dy()),
		)
		dc.Translate(cx, cy)
		dc.Scale(scale, scale)
		dc.DrawImageAnchored(avatar, 0, 0, 0.5, 0.5)
	} else {
		drawGradientFallback(dc, cx, cy, avatarRadius)
	}
	dc.Pop()
	dc.ResetClip()

	dc.SetColor(color.NRGBA{R: 0, G: 240, B: 181, A: 115})
	dc.SetLineWidth(4)
	dc.DrawCircle(cx, cy, avatarRadius)
	dc.Stroke()
}

func drawGradientFallback(dc *gg.Context, cx, cy, r float64) {
	grad := gg.NewLinearGradient(cx-r, cy-r, cx+r, cy+r)
	grad.AddColorStop(0, color.NRGBA{R: 0x00, G: 0xf0, B: 0xb5, A: 255})
	grad.AddColorStop(0.5, color.NRGBA{R: 0x00, G: 0xc9, B: 0xa7, A: 255})
	grad.AddColorStop(1, color.NRGBA{R: 0xf5, G: 0xa6, B: 0x23, A: 255})
	dc.SetFillStyle(grad)
	dc.DrawCircle(cx, cy, r)
	dc.Fill()

	dc.SetColor(color.NRGBA{R: 0, G: 240, B: 181, A: 128})
	dc.SetLineWidth(4)
	dc.DrawCircle(cx, cy, r)
	dc.Stroke()

	dc.SetColor(color.NRGBA{R: 255, G: 255, B: 255, A: 38})
	dc.SetLineWidth(2)
	dc.DrawCircle(cx, cy, r*0.5)
	dc.Stroke()
}

func formatPercent(p int) string {
	return strconv.Itoa(p) + "%"
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
