package printing

import (
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePlatform struct {
	openErr  error
	loadErr  error
	printErr error
	block    bool

	opened atomic.Int32
	closed atomic.Int32
	html   string
	page   PageSize
}

func (p *fakePlatform) Open(context.Context) (Session, error) {
	if p.openErr != nil {
		return nil, p.openErr
	}
	p.opened.Add(1)
	return &fakeSession{p: p}, nil
}

type fakeSession struct{ p *fakePlatform }

func (s *fakeSession) Load(_ context.Context, html string) error {
	s.p.html = html
	return s.p.loadErr
}

func (s *fakeSession) Print(ctx context.Context, page PageSize) ([]byte, error) {
	s.p.page = page
	if s.p.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if s.p.printErr != nil {
		return nil, s.p.printErr
	}
	return []byte("%PDF-1.7 fake"), nil
}

func (s *fakeSession) Close() error {
	s.p.closed.Add(1)
	return nil
}

type memSpooler struct {
	title string
	data  []byte
}

func (m *memSpooler) Spool(_ context.Context, title string, pdf []byte) error {
	m.title, m.data = title, pdf
	return nil
}

func snapshotImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 20, 30))
	img.SetRGBA(1, 1, color.RGBA{R: 255, A: 255})
	return img
}

func TestPrintSuccessClosesContext(t *testing.T) {
	p := &fakePlatform{}
	sp := &memSpooler{}
	a := &Adapter{Platform: p, Spooler: sp, Page: PageSize{WidthMM: 210, HeightMM: 297}}

	require.NoError(t, a.Print(context.Background(), snapshotImage(), "Jane Lee"))
	assert.EqualValues(t, 1, p.opened.Load())
	assert.EqualValues(t, 1, p.closed.Load())
	assert.Equal(t, "Jane Lee", sp.title)
	assert.Equal(t, "%PDF-1.7 fake", string(sp.data))
	assert.Equal(t, PageSize{WidthMM: 210, HeightMM: 297}, p.page)

	assert.Contains(t, p.html, `<img src="data:image/png;base64,`)
	assert.Contains(t, p.html, "margin: 0")
	assert.Contains(t, p.html, "overflow: hidden")
	assert.Equal(t, 1, strings.Count(p.html, "<img"))
}

func TestPrintFailureClosesContext(t *testing.T) {
	for name, p := range map[string]*fakePlatform{
		"load":  {loadErr: errors.New("load failed")},
		"print": {printErr: errors.New("dialog dismissed")},
	} {
		sp := &memSpooler{}
		err := (&Adapter{Platform: p, Spooler: sp}).Print(context.Background(), snapshotImage(), "x")
		assert.Error(t, err, name)
		assert.EqualValues(t, 1, p.closed.Load(), name)
		assert.Nil(t, sp.data, name)
	}
}

func TestPrintCancelledClosesContext(t *testing.T) {
	p := &fakePlatform{block: true}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- (&Adapter{Platform: p, Spooler: &memSpooler{}}).Print(ctx, snapshotImage(), "x") }()
	cancel()
	err := <-done
	assert.ErrorIs(t, err, context.Canceled)
	assert.EqualValues(t, 1, p.closed.Load())
}

func TestPrintRejectsEmptyImage(t *testing.T) {
	p := &fakePlatform{}
	a := &Adapter{Platform: p, Spooler: &memSpooler{}}
	assert.Error(t, a.Print(context.Background(), nil, "x"))
	assert.Error(t, a.Print(context.Background(), image.NewRGBA(image.Rect(0, 0, 0, 0)), "x"))
	assert.EqualValues(t, 0, p.opened.Load())

	p.openErr = errors.New("no browser")
	assert.Error(t, a.Print(context.Background(), snapshotImage(), "x"))
	assert.EqualValues(t, 0, p.closed.Load())
}

func TestPrintDocumentEscapesTitle(t *testing.T) {
	html, err := printDocument(snapshotImage(), "<script>x</script>", PageSize{WidthMM: 100, HeightMM: 150})
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "size: 100mm 150mm")
}

func TestFileSpooler(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, FileSpooler{Dir: dir}.Spool(context.Background(), "Jane Lee", []byte("pdf")))
	data, err := os.ReadFile(filepath.Join(dir, "Jane_Lee.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "pdf", string(data))

	require.NoError(t, FileSpooler{Dir: dir, Name: "../out.pdf"}.Spool(context.Background(), "", []byte("x")))
	_, err = os.Stat(filepath.Join(dir, "out.pdf"))
	assert.NoError(t, err)
}
