package assets

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestLoadMixedSources(t *testing.T) {
	data := pngBytes(t, 3, 2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ok.png" {
			_, _ = w.Write(data)
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "local.png"), data, 0o644))
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(data)

	set := NewSet([]string{srv.URL + "/ok.png", srv.URL + "/missing.png", "local.png", uri, "local.png", ""}, Options{BaseDir: dir, AllowRemote: true, AllowFiles: true})
	assert.Len(t, set.Refs(), 4)

	_, err := set.Get("local.png")
	assert.ErrorIs(t, err, ErrNotSettled)

	set.Load(context.Background())
	select {
	case <-set.Ready():
	default:
		t.Fatal("ready should be closed after Load")
	}

	for _, ref := range []string{srv.URL + "/ok.png", "local.png", uri} {
		img, err := set.Get(ref)
		require.NoError(t, err, ref)
		assert.Equal(t, 3, img.Bounds().Dx())
	}
	_, err = set.Get(srv.URL + "/missing.png")
	assert.Error(t, err)
	assert.Equal(t, []string{srv.URL + "/missing.png"}, set.Failed())

	_, err = set.Get("other.png")
	assert.True(t, errors.Is(err, ErrUnknown))
}

func TestLoadEmptySetIsReady(t *testing.T) {
	set := NewSet(nil, Options{})
	set.Load(context.Background())
	<-set.Ready()
	assert.Empty(t, set.Failed())
}

func TestLoadTimeoutRecordsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	set := NewSet([]string{srv.URL + "/slow.png"}, Options{Timeout: 20 * time.Millisecond, AllowRemote: true})
	set.Load(context.Background())
	_, err := set.Get(srv.URL + "/slow.png")
	assert.Error(t, err)
}

func TestRelativePathNeedsBaseDir(t *testing.T) {
	set := NewSet([]string{"photo.png"}, Options{AllowFiles: true})
	set.Load(context.Background())
	_, err := set.Get("photo.png")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestDefaultPolicyOnlyAllowsDataURIs(t *testing.T) {
	data := pngBytes(t, 2, 2)
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "local.png"), data, 0o644))
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(data)
	refs := []string{srv.URL + "/a.png", "local.png", filepath.Join(dir, "local.png"), "file://" + filepath.Join(dir, "local.png"), uri}

	set := NewSet(refs, Options{BaseDir: dir})
	set.Load(context.Background())
	for _, ref := range refs[:4] {
		_, err := set.Get(ref)
		assert.ErrorIs(t, err, ErrForbidden, ref)
	}
	_, err := set.Get(uri)
	assert.NoError(t, err)
	assert.Zero(t, hits.Load())
}

func TestFilesStayInsideBaseDir(t *testing.T) {
	data := pngBytes(t, 2, 2)
	outer := t.TempDir()
	dir := filepath.Join(outer, "photos")
	require.NoError(t, os.Mkdir(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(outer, "secret.png"), data, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "me.png"), data, 0o644))

	inside := filepath.Join(dir, "me.png")
	escapes := []string{"../secret.png", filepath.Join(outer, "secret.png"), "file://" + filepath.Join(outer, "secret.png")}
	set := NewSet(append([]string{inside, "me.png"}, escapes...), Options{BaseDir: dir, AllowFiles: true})
	set.Load(context.Background())

	for _, ref := range []string{inside, "me.png"} {
		_, err := set.Get(ref)
		require.NoError(t, err, ref)
	}
	for _, ref := range escapes {
		_, err := set.Get(ref)
		assert.ErrorIs(t, err, ErrForbidden, ref)
	}
}

func TestSymlinkEscapeRejected(t *testing.T) {
	outer := t.TempDir()
	dir := filepath.Join(outer, "photos")
	require.NoError(t, os.Mkdir(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(outer, "secret.png"), pngBytes(t, 2, 2), 0o644))
	if err := os.Symlink(filepath.Join(outer, "secret.png"), filepath.Join(dir, "link.png")); err != nil {
		t.Skipf("symlink unsupported: %v", err)
	}

	set := NewSet([]string{"link.png"}, Options{BaseDir: dir, AllowFiles: true})
	set.Load(context.Background())
	_, err := set.Get("link.png")
	assert.Error(t, err)
}

func TestDecodeDataURI(t *testing.T) {
	got, err := decodeDataURI("data:text/plain,hello%20world")
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(got))

	_, err = decodeDataURI("data:image/png;base64")
	assert.Error(t, err)
}
