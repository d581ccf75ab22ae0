package preview

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/fogleman/gg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"
)

type failingFetcher struct{ calls int }

func (f *failingFetcher) Fetch(ctx context.Context, url string) (image.Image, error) {
	f.calls++
	return nil, errors.New("unreachable")
}

func testViewModel() ViewModel {
	return ViewModel{
		ID:           "q1",
		Text:         "How do I negotiate a raise?",
		UpvoteCount:  3,
		CommentCount: 0,
		Author:       Identity{Name: "Amy"},
	}
}

func TestRenderer_CanvasSize(t *testing.T) {
	r, err := NewRenderer(nil)
	require.NoError(t, err)

	data, err := r.Render(context.Background(), testViewModel())
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 1200, img.Bounds().Dx())
	assert.Equal(t, 630, img.Bounds().Dy())
}

func TestRenderer_Deterministic(t *testing.T) {
	r, err := NewRenderer(nil)
	require.NoError(t, err)

	vm := testViewModel()
	first, err := r.Render(context.Background(), vm)
	require.NoError(t, err)
	second, err := r.Render(context.Background(), vm)
	require.NoError(t, err)

	assert.Equal(t, first, second, "identical view models must produce identical bytes")
}

func TestRenderer_AvatarFetchFailureFallsBack(t *testing.T) {
	fetcher := &failingFetcher{}
	r, err := NewRenderer(fetcher)
	require.NoError(t, err)

	photo := "https://cdn.example.com/amy.png"
	vm := testViewModel()
	vm.Author.ProfilePhotoURL = &photo

	data, err := r.Render(context.Background(), vm)
	require.NoError(t, err, "a broken avatar URL must not fail the render")
	assert.Equal(t, 1, fetcher.calls)

	// The fallback output is the same card as one with no photo at all.
	plain, err := NewRenderer(nil)
	require.NoError(t, err)
	want, err := plain.Render(context.Background(), testViewModel())
	require.NoError(t, err)
	assert.Equal(t, want, data)
}

func TestRenderer_AnswerPanelChangesOutput(t *testing.T) {
	r, err := NewRenderer(nil)
	require.NoError(t, err)

	without, err := r.Render(context.Background(), testViewModel())
	require.NoError(t, err)

	vm := testViewModel()
	vm.Answer = &AnswerView{RawText: "Practice out loud.", Mentor: &Identity{Name: "Maya"}}
	with, err := r.Render(context.Background(), vm)
	require.NoError(t, err)

	assert.NotEqual(t, without, with)
}

func TestRenderer_AnswerWithoutMentorRenders(t *testing.T) {
	r, err := NewRenderer(nil)
	require.NoError(t, err)

	vm := testViewModel()
	vm.Answer = &AnswerView{RawText: "Depends on the team."}

	_, err = r.Render(context.Background(), vm)
	assert.NoError(t, err)
}

func TestRenderer_OverlongTextStillRenders(t *testing.T) {
	r, err := NewRenderer(nil)
	require.NoError(t, err)

	vm := testViewModel()
	vm.Text = strings.Repeat("a very long question that keeps going ", 50)

	data, err := r.Render(context.Background(), vm)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 630, img.Bounds().Dy(), "overlong text must not change the canvas")
}

func TestRenderer_UnbrokenWordClampedToWidth(t *testing.T) {
	r, err := NewRenderer(nil)
	require.NoError(t, err)

	// WordWrap cannot split a space-free word, so the clamp has to
	// truncate it per line instead of letting it run off the canvas.
	dc := gg.NewContext(canvasWidth, canvasHeight)
	dc.SetFontFace(r.faces.question)
	lines := r.clampLines(dc, strings.Repeat("W", 300), contentWidth, maxQuestionLines)

	require.NotEmpty(t, lines)
	for _, line := range lines {
		w, _ := dc.MeasureString(line)
		assert.LessOrEqual(t, w, float64(contentWidth), "line %q overflows the content width", line)
	}
	assert.True(t, strings.HasSuffix(lines[len(lines)-1], "…"))
}

func TestRenderer_LongNamesEllipsized(t *testing.T) {
	r, err := NewRenderer(nil)
	require.NoError(t, err)

	dc := gg.NewContext(canvasWidth, canvasHeight)
	for _, face := range []struct {
		label string
		f     font.Face
	}{
		{"author", r.faces.name},
		{"mentor", r.faces.mentorName},
	} {
		dc.SetFontFace(face.f)
		got := fitLine(dc, strings.Repeat("N", 200), maxNameWidth, false)
		w, _ := dc.MeasureString(got)
		assert.LessOrEqual(t, w, float64(maxNameWidth), "%s name overflows", face.label)
		assert.True(t, strings.HasSuffix(got, "…"))
	}

	// A name that already fits stays untouched.
	dc.SetFontFace(r.faces.name)
	assert.Equal(t, "Amy", fitLine(dc, "Amy", maxNameWidth, false))
}

func TestRenderer_SpaceFreeTextStillRenders(t *testing.T) {
	r, err := NewRenderer(nil)
	require.NoError(t, err)

	vm := testViewModel()
	vm.Text = strings.Repeat("W", 300)
	vm.Author.Name = strings.Repeat("N", 200)
	vm.Answer = &AnswerView{
		RawText: strings.Repeat("M", 300),
		Mentor:  &Identity{Name: strings.Repeat("Y", 200)},
	}

	data, err := r.Render(context.Background(), vm)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 1200, img.Bounds().Dx())
	assert.Equal(t, 630, img.Bounds().Dy())
}

func TestRenderer_EmptyTextRejected(t *testing.T) {
	r, err := NewRenderer(nil)
	require.NoError(t, err)

	vm := testViewModel()
	vm.Text = ""

	_, err = r.Render(context.Background(), vm)
	assert.Error(t, err)
}
