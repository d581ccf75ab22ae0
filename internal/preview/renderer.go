package preview

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"
	"unicode"

	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// Fixed social-preview canvas.
const (
	canvasWidth  = 1200
	canvasHeight = 630
	margin       = 48.0
	contentWidth = canvasWidth - 2*margin
)

// Card palette.
const (
	colorBrand   = "#2E3AEF"
	colorHeading = "#1E1F4A"
	colorName    = "#333333"
	colorMuted   = "#888888"
	colorBadge   = "#E7EBFF"
	colorGradTop = "#E7EBFF"
	colorGradBot = "#F7F8FA"
	colorAnswer  = "#222222"
)

// Overlong text policy: question and answer text wrap to the content
// width and are cut at a fixed line count with a trailing ellipsis;
// names are single-line and ellipsized past maxNameWidth.
const (
	maxQuestionLines = 3
	maxAnswerLines   = 2
	maxNameWidth     = 420.0
)

type faceSet struct {
	wordmark    font.Face // bold 40
	question    font.Face // bold 32
	name        font.Face // bold 20
	stat        font.Face // bold 20
	mentorName  font.Face // bold 18
	mentorLabel font.Face // regular 16
	answer      font.Face // regular 22
	footer      font.Face // regular 18
	badgeLarge  font.Face // bold 24, author badge initial
	badgeSmall  font.Face // bold 20, mentor badge initial
}

// Renderer draws the 1200×630 preview card for a ViewModel. Layout is
// pure: the only I/O is avatar fetching through the injected fetcher,
// and a failed fetch falls back to an initial badge. A nil fetcher
// always uses badges, which makes output byte-stable.
type Renderer struct {
	avatars AvatarFetcher
	faces   faceSet
}

// NewRenderer parses the embedded Go fonts once and builds the face set
// used by every render.
func NewRenderer(avatars AvatarFetcher) (*Renderer, error) {
	regular, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse regular font: %w", err)
	}
	bold, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse bold font: %w", err)
	}

	r := &Renderer{avatars: avatars}
	for _, f := range []struct {
		dst  *font.Face
		src  *sfnt.Font
		size float64
	}{
		{&r.faces.wordmark, bold, 40},
		{&r.faces.question, bold, 32},
		{&r.faces.name, bold, 20},
		{&r.faces.stat, bold, 20},
		{&r.faces.mentorName, bold, 18},
		{&r.faces.mentorLabel, regular, 16},
		{&r.faces.answer, regular, 22},
		{&r.faces.footer, regular, 18},
		{&r.faces.badgeLarge, bold, 24},
		{&r.faces.badgeSmall, bold, 20},
	} {
		face, err := opentype.NewFace(f.src, &opentype.FaceOptions{
			Size: f.size, DPI: 72, Hinting: font.HintingFull,
		})
		if err != nil {
			return nil, fmt.Errorf("build %gpt face: %w", f.size, err)
		}
		*f.dst = face
	}
	return r, nil
}

// Render draws the card and returns it PNG-encoded.
func (r *Renderer) Render(ctx context.Context, vm ViewModel) ([]byte, error) {
	if vm.Text == "" {
		return nil, fmt.Errorf("view model has no question text")
	}

	dc := gg.NewContext(canvasWidth, canvasHeight)

	// Background gradient, top-left to bottom-right like the original
	// card.
	grad := gg.NewLinearGradient(0, 0, canvasWidth, canvasHeight)
	grad.AddColorStop(0, hexRGBA(colorGradTop))
	grad.AddColorStop(1, hexRGBA(colorGradBot))
	dc.SetFillStyle(grad)
	dc.DrawRectangle(0, 0, canvasWidth, canvasHeight)
	dc.Fill()

	r.drawBranding(dc)

	y := r.drawQuestion(dc, vm.Text)
	y = r.drawAuthorRow(ctx, dc, vm, y)
	if vm.Answer != nil {
		r.drawAnswerPanel(ctx, dc, vm.Answer, y)
	}

	// Footer brand string, bottom right.
	dc.SetFontFace(r.faces.footer)
	dc.SetHexColor(colorMuted)
	dc.DrawStringAnchored("loopmobile.app", canvasWidth-margin, canvasHeight-margin+16, 1, 0.5)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// drawBranding draws the logo mark and wordmark band.
func (r *Renderer) drawBranding(dc *gg.Context) {
	dc.SetHexColor(colorBrand)
	dc.DrawRoundedRectangle(margin, margin, 60, 60, 16)
	dc.Fill()

	dc.SetFontFace(r.faces.badgeLarge)
	dc.SetHexColor("#FFFFFF")
	dc.DrawStringAnchored("L", margin+30, margin+30, 0.5, 0.4)

	dc.SetFontFace(r.faces.wordmark)
	dc.SetHexColor(colorBrand)
	dc.DrawStringAnchored("Loop", margin+60+24, margin+30, 0, 0.4)
}

// drawQuestion wraps and draws the question block, returning the y
// coordinate below it.
func (r *Renderer) drawQuestion(dc *gg.Context, text string) float64 {
	const lineHeight = 42.0
	top := margin + 60 + 32

	dc.SetFontFace(r.faces.question)
	dc.SetHexColor(colorHeading)

	lines := r.clampLines(dc, text, contentWidth, maxQuestionLines)
	y := top
	for _, line := range lines {
		y += lineHeight
		dc.DrawString(line, margin, y)
	}
	return y + 24
}

// drawAuthorRow draws the author identity and the vote/comment stat
// row, returning the y coordinate below it.
func (r *Renderer) drawAuthorRow(ctx context.Context, dc *gg.Context, vm ViewModel, top float64) float64 {
	const avatarRadius = 24.0
	centerY := top + avatarRadius

	r.drawIdentityCircle(ctx, dc, vm.Author, margin+avatarRadius, centerY, avatarRadius, 'A', r.faces.badgeLarge)

	dc.SetFontFace(r.faces.name)
	dc.SetHexColor(colorName)
	nameX := margin + 2*avatarRadius + 12
	name := fitLine(dc, vm.Author.Name, maxNameWidth, false)
	dc.DrawStringAnchored(name, nameX, centerY, 0, 0.4)
	nameWidth, _ := dc.MeasureString(name)

	x := nameX + nameWidth + 32
	x = r.drawStat(dc, x, centerY, vm.UpvoteCount, r.drawUpvoteGlyph)
	r.drawStat(dc, x, centerY, vm.CommentCount, r.drawCommentGlyph)

	return centerY + avatarRadius + 24
}

// drawStat draws one glyph+count pair and returns the x coordinate
// after it.
func (r *Renderer) drawStat(dc *gg.Context, x, centerY float64, count int, glyph func(*gg.Context, float64, float64)) float64 {
	dc.SetHexColor(colorBrand)
	glyph(dc, x, centerY-12)

	dc.SetFontFace(r.faces.stat)
	dc.SetHexColor(colorBrand)
	label := strconv.Itoa(count)
	dc.DrawStringAnchored(label, x+24+6, centerY, 0, 0.4)
	labelWidth, _ := dc.MeasureString(label)

	return x + 24 + 6 + labelWidth + 24
}

// drawUpvoteGlyph draws a 24px upward arrow at (x, y) top-left.
func (r *Renderer) drawUpvoteGlyph(dc *gg.Context, x, y float64) {
	dc.MoveTo(x+12, y+4)
	dc.LineTo(x+18, y+12)
	dc.LineTo(x+14, y+12)
	dc.LineTo(x+14, y+20)
	dc.LineTo(x+10, y+20)
	dc.LineTo(x+10, y+12)
	dc.LineTo(x+6, y+12)
	dc.ClosePath()
	dc.Fill()
}

// drawCommentGlyph draws a 24px speech bubble at (x, y) top-left.
func (r *Renderer) drawCommentGlyph(dc *gg.Context, x, y float64) {
	dc.DrawRoundedRectangle(x+2, y+4, 20, 13, 4)
	dc.Fill()
	dc.MoveTo(x+8, y+16)
	dc.LineTo(x+12, y+21)
	dc.LineTo(x+16, y+16)
	dc.ClosePath()
	dc.Fill()
}

// drawAnswerPanel draws the white answer card. When the mentor is
// unknown the identity row is omitted and the answer text renders
// alone.
func (r *Renderer) drawAnswerPanel(ctx context.Context, dc *gg.Context, answer *AnswerView, top float64) {
	const (
		padding      = 32.0
		avatarRadius = 20.0
		lineHeight   = 30.0
	)

	dc.SetFontFace(r.faces.answer)
	lines := r.clampLines(dc, answer.RawText, contentWidth-2*padding, maxAnswerLines)

	height := 2*padding + float64(len(lines))*lineHeight
	if answer.Mentor != nil {
		height += 2*avatarRadius + 16
	}

	dc.SetHexColor("#FFFFFF")
	dc.DrawRoundedRectangle(margin, top, contentWidth, height, 20)
	dc.Fill()

	y := top + padding
	if answer.Mentor != nil {
		centerY := y + avatarRadius
		r.drawIdentityCircle(ctx, dc, *answer.Mentor, margin+padding+avatarRadius, centerY, avatarRadius, 'M', r.faces.badgeSmall)

		dc.SetFontFace(r.faces.mentorName)
		dc.SetHexColor(colorBrand)
		nameX := margin + padding + 2*avatarRadius + 12
		name := fitLine(dc, answer.Mentor.Name, maxNameWidth, false)
		dc.DrawStringAnchored(name, nameX, centerY, 0, 0.4)
		nameWidth, _ := dc.MeasureString(name)

		dc.SetFontFace(r.faces.mentorLabel)
		dc.SetHexColor(colorMuted)
		dc.DrawStringAnchored("Mentor", nameX+nameWidth+10, centerY, 0, 0.4)

		y = centerY + avatarRadius + 16
	}

	dc.SetFontFace(r.faces.answer)
	dc.SetHexColor(colorAnswer)
	for _, line := range lines {
		y += lineHeight
		dc.DrawString(line, margin+padding, y-8)
	}
}

// drawIdentityCircle draws a round avatar when the photo resolves, and
// an initial badge otherwise. The fallback rune covers empty names.
func (r *Renderer) drawIdentityCircle(ctx context.Context, dc *gg.Context, id Identity, cx, cy, radius float64, fallback rune, badgeFace font.Face) {
	if id.ProfilePhotoURL != nil && r.avatars != nil {
		if img, err := r.avatars.Fetch(ctx, *id.ProfilePhotoURL); err == nil {
			diameter := int(radius * 2)
			scaled := image.NewRGBA(image.Rect(0, 0, diameter, diameter))
			xdraw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), img, img.Bounds(), xdraw.Src, nil)

			dc.DrawCircle(cx, cy, radius)
			dc.Clip()
			dc.DrawImage(scaled, int(cx-radius), int(cy-radius))
			dc.ResetClip()
			return
		}
		// Unreachable or undecodable photo: fall through to the badge.
	}

	dc.SetHexColor(colorBadge)
	dc.DrawCircle(cx, cy, radius)
	dc.Fill()

	initial := fallback
	for _, c := range id.Name {
		initial = unicode.ToUpper(c)
		break
	}
	dc.SetFontFace(badgeFace)
	dc.SetHexColor(colorBrand)
	dc.DrawStringAnchored(string(initial), cx, cy, 0.5, 0.4)
}

// clampLines word-wraps text to the given width and cuts it at
// maxLines, ellipsizing the last line so it still fits. Every line is
// re-measured afterwards: WordWrap never splits inside a word, so a
// single unbroken word can come back wider than the canvas and must be
// truncated the same way.
func (r *Renderer) clampLines(dc *gg.Context, text string, width float64, maxLines int) []string {
	lines := dc.WordWrap(text, width)
	clamped := len(lines) > maxLines
	if clamped {
		lines = lines[:maxLines]
	}
	for i, line := range lines {
		force := clamped && i == len(lines)-1
		lines[i] = fitLine(dc, line, width, force)
	}
	return lines
}

// fitLine rune-truncates a line that overflows width, appending an
// ellipsis. With forceEllipsis the ellipsis is added even when the
// line fits (used for the last line of a clamped block).
func fitLine(dc *gg.Context, line string, width float64, forceEllipsis bool) string {
	if w, _ := dc.MeasureString(line); w <= width && !forceEllipsis {
		return line
	}
	for len(line) > 0 {
		if w, _ := dc.MeasureString(line + "…"); w <= width {
			break
		}
		runes := []rune(line)
		line = string(runes[:len(runes)-1])
	}
	return line + "…"
}

func hexRGBA(s string) color.RGBA {
	v, _ := strconv.ParseUint(strings.TrimPrefix(s, "#"), 16, 32)
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
}
