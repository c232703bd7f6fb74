package export

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/resumepress/dom"
	"github.com/ByLCY/resumepress/layout"
	"github.com/ByLCY/resumepress/renderer"
	canvasrenderer "github.com/ByLCY/resumepress/renderer/canvas"
	"github.com/ByLCY/resumepress/resume"
	"github.com/ByLCY/resumepress/templates"
)

func liveDocument(t *testing.T, r resume.Resume, id templates.ID) *dom.Document {
	t.Helper()
	rendered := templates.Render(r, id)
	doc := dom.NewDocument(rendered.Sheet)
	doc.Mount(rendered.Root)
	return doc
}

func longResume() resume.Resume {
	r := resume.Sample()
	base := r.Experience[1]
	for i := range 14 {
		e := base
		e.ID = fmt.Sprintf("extra-%d", i)
		e.Description = strings.Repeat("Delivered measurable improvements across platform teams. ", 6)
		r.Experience = append(r.Experience, e)
	}
	return r
}

// captureRasterizer 记录收到的布局，并返回一张按页面尺寸生成的白图。
type captureRasterizer struct {
	result *layout.Result
	err    error
	panics bool
	inside func()
}

func (c *captureRasterizer) Rasterize(_ context.Context, result *layout.Result, _ renderer.Assets, scale float64) (*image.RGBA, error) {
	c.result = result
	if c.inside != nil {
		c.inside()
	}
	if c.panics {
		panic("boom")
	}
	if c.err != nil {
		return nil, c.err
	}
	w, h := canvasrenderer.PixelSize(result.Page, scale)
	return image.NewRGBA(image.Rect(0, 0, w, h)), nil
}

func TestExportPDFSinglePage(t *testing.T) {
	doc := liveDocument(t, resume.Sample(), templates.Classic)
	e := New(doc, canvasrenderer.NewRenderer(), Options{Scale: 1})

	art, err := e.ExportPDF(context.Background(), "John Doe")
	require.NoError(t, err)
	assert.Equal(t, "John_Doe_resume.pdf", art.Filename)
	assert.Equal(t, "application/pdf", art.ContentType)
	assert.Equal(t, 1, art.Pages)
	assert.Equal(t, 1, pageCount(t, art.Data))
	assert.Empty(t, doc.Containers())
}

// 默认倍率下像素页高取整最紧，一页内容不能多出一页。
func TestExportPDFSinglePageEveryTemplate(t *testing.T) {
	r := canvasrenderer.NewRenderer()
	for _, id := range templates.IDs() {
		t.Run(string(id), func(t *testing.T) {
			doc := liveDocument(t, resume.Sample(), id)
			e := New(doc, r, Options{})
			require.Equal(t, canvasrenderer.DefaultScale, e.Options().Scale)

			art, err := e.ExportPDF(context.Background(), "John Doe")
			require.NoError(t, err)
			assert.Equal(t, 1, art.Pages)
			assert.Equal(t, 1, pageCount(t, art.Data))
		})
	}
}

func TestExportPDFMultiPage(t *testing.T) {
	doc := liveDocument(t, longResume(), templates.Modern)
	e := New(doc, canvasrenderer.NewRenderer(), Options{Scale: 1})

	art, err := e.ExportPDF(context.Background(), "Alex Morgan")
	require.NoError(t, err)
	assert.Equal(t, "Alex_Morgan_resume.pdf", art.Filename)
	assert.GreaterOrEqual(t, art.Pages, 2)
	assert.Equal(t, art.Pages, pageCount(t, art.Data))
}

func TestExportImageIsSingleBuffer(t *testing.T) {
	doc := liveDocument(t, resume.Sample(), templates.Minimal)
	e := New(doc, canvasrenderer.NewRenderer(), Options{Scale: 1})

	art, err := e.ExportImage(context.Background(), FormatJPEG, "")
	require.NoError(t, err)
	assert.Equal(t, "resume_resume.jpg", art.Filename)
	assert.Equal(t, "image/jpeg", art.ContentType)
	assert.Equal(t, 1, art.Pages)
	assert.NotEmpty(t, art.Data)
}

func TestExportVector(t *testing.T) {
	doc := liveDocument(t, longResume(), templates.Professional)
	e := New(doc, canvasrenderer.NewRenderer(), Options{})

	art, err := e.Export(context.Background(), FormatVector, "Jane Lee")
	require.NoError(t, err)
	assert.Equal(t, "Jane_Lee_resume.pdf", art.Filename)
	assert.Equal(t, art.Pages, pageCount(t, art.Data))
}

func TestExportMissingPreview(t *testing.T) {
	doc := dom.NewDocument(nil)
	e := New(doc, canvasrenderer.NewRenderer(), Options{})

	_, err := e.ExportPDF(context.Background(), "x")
	var pe *PreconditionError
	require.ErrorAs(t, err, &pe)
	assert.ErrorIs(t, err, ErrPreviewMissing)
	assert.Empty(t, doc.Containers())
}

func TestExportCleansUpWhenRasterizeFails(t *testing.T) {
	doc := liveDocument(t, resume.Sample(), templates.Classic)
	cause := &canvasrenderer.RasterError{Op: "buffer", Err: errors.New("too big")}
	rz := &captureRasterizer{err: cause}
	rz.inside = func() { assert.Len(t, doc.Containers(), 1) }
	e := NewWith(doc, canvasrenderer.NewRenderer(), rz, nil, Options{})

	_, err := e.ExportPDF(context.Background(), "John Doe")
	var re *ResourceError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "rasterize", re.Stage)
	var raster *canvasrenderer.RasterError
	assert.ErrorAs(t, err, &raster)
	assert.Empty(t, doc.Containers())
}

func TestExportCleansUpOnPanic(t *testing.T) {
	doc := liveDocument(t, resume.Sample(), templates.Classic)
	e := NewWith(doc, canvasrenderer.NewRenderer(), &captureRasterizer{panics: true}, nil, Options{})

	assert.Panics(t, func() { _, _ = e.ExportPDF(context.Background(), "x") })
	assert.Empty(t, doc.Containers())
}

func TestExportCloneDropsNoPrintAndKeepsLiveIntact(t *testing.T) {
	doc := liveDocument(t, resume.Sample(), templates.Classic)
	live := doc.Live()
	live.Children[0].Append(dom.TextEl("button", "Edit resume", "no-print"))
	before := live.Clone()

	rz := &captureRasterizer{}
	e := NewWith(doc, canvasrenderer.NewRenderer(), rz, nil, Options{Scale: 1})
	_, err := e.Snapshot(context.Background(), "John Doe")
	require.NoError(t, err)

	require.NotNil(t, rz.result)
	var texts []string
	for _, tb := range rz.result.Page.Texts {
		texts = append(texts, tb.Content)
	}
	assert.NotContains(t, texts, "Edit resume")
	assert.Contains(t, texts, "John Doe")
	assert.Equal(t, A4WidthMM, rz.result.Page.Width)
	assert.GreaterOrEqual(t, rz.result.Page.Height, A4HeightMM)
	assert.True(t, dom.Equal(before, live), "live preview must not be modified")
}

func TestExportUnsupportedFormat(t *testing.T) {
	doc := liveDocument(t, resume.Sample(), templates.Classic)
	_, err := New(doc, canvasrenderer.NewRenderer(), Options{}).Export(context.Background(), "docx", "x")
	var pe *PreconditionError
	assert.ErrorAs(t, err, &pe)
}

func TestExportConcurrentCallsOwnContainers(t *testing.T) {
	doc := liveDocument(t, resume.Sample(), templates.Classic)
	e := NewWith(doc, canvasrenderer.NewRenderer(), &captureRasterizer{}, nil, Options{Scale: 1})

	errs := make(chan error, 4)
	for range 4 {
		go func() {
			_, err := e.Snapshot(context.Background(), "John Doe")
			errs <- err
		}()
	}
	for range 4 {
		assert.NoError(t, <-errs)
	}
	assert.Empty(t, doc.Containers())
}

func TestExportLayoutDebug(t *testing.T) {
	doc := liveDocument(t, resume.Sample(), templates.Analytics)
	e := New(doc, canvasrenderer.NewRenderer(), Options{})

	result, err := e.Layout(context.Background(), "John Doe")
	require.NoError(t, err)
	assert.Equal(t, A4WidthMM, result.Page.Width)
	assert.Equal(t, "John Doe", result.Meta.Author)
	assert.Equal(t, "resumepress", result.Meta.Creator)
	assert.NotEmpty(t, result.Page.Texts)
	assert.NotEmpty(t, result.Page.Rects, "skill bars draw track and fill")
	assert.Empty(t, doc.Containers())
}
