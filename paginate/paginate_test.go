package paginate

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stripes(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		c := color.RGBA{R: uint8(y % 256), A: 255}
		for x := range w {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestPaginateCounts(t *testing.T) {
	cases := []struct {
		h, page, pages, last int
	}{
		{h: 50, page: 100, pages: 1, last: 50},
		{h: 100, page: 100, pages: 1, last: 100},
		{h: 200, page: 100, pages: 2, last: 100},
		{h: 201, page: 100, pages: 3, last: 1},
		{h: 1, page: 100, pages: 1, last: 1},
	}
	for _, tc := range cases {
		slices, err := Paginate(stripes(10, tc.h), 10, tc.page)
		require.NoError(t, err)
		require.Len(t, slices, tc.pages, "h=%d", tc.h)
		assert.Equal(t, tc.last, slices[len(slices)-1].Height, "h=%d", tc.h)

		sum := 0
		for i, s := range slices {
			assert.Equal(t, i, s.Index)
			assert.Equal(t, i*tc.page, s.Offset)
			assert.Equal(t, s.Height, s.Image.Bounds().Dy())
			assert.Equal(t, image.Point{}, s.Image.Bounds().Min)
			sum += s.Height
		}
		assert.Equal(t, tc.h, sum)
	}
}

func TestPaginateCopiesRowsInOrder(t *testing.T) {
	slices, err := Paginate(stripes(4, 250), 4, 100)
	require.NoError(t, err)
	require.Len(t, slices, 3)
	assert.Equal(t, uint8(0), slices[0].Image.RGBAAt(0, 0).R)
	assert.Equal(t, uint8(100), slices[1].Image.RGBAAt(2, 0).R)
	assert.Equal(t, uint8(249), slices[2].Image.RGBAAt(3, 49).R)
}

func TestPaginateSubImageOrigin(t *testing.T) {
	full := stripes(4, 300)
	sub := full.SubImage(image.Rect(0, 100, 4, 300))
	slices, err := Paginate(sub, 4, 150)
	require.NoError(t, err)
	require.Len(t, slices, 2)
	assert.Equal(t, uint8(100), slices[0].Image.RGBAAt(0, 0).R)
	assert.Equal(t, 50, slices[1].Height)
}

func TestPaginateRejectsBadInput(t *testing.T) {
	_, err := Paginate(nil, 10, 10)
	assert.Error(t, err)
	_, err = Paginate(stripes(10, 10), 10, 0)
	assert.Error(t, err)
	_, err = Paginate(stripes(10, 10), 12, 10)
	assert.Error(t, err)
	_, err = Paginate(image.NewRGBA(image.Rect(0, 0, 10, 0)), 10, 10)
	assert.Error(t, err)
}

func TestPageHeightPx(t *testing.T) {
	h, err := PageHeightPx(2480, 210, 297)
	require.NoError(t, err)
	assert.Equal(t, 3507, h)
	_, err = PageHeightPx(0, 210, 297)
	assert.Error(t, err)
	_, err = PageHeightPx(100, 210, 0)
	assert.Error(t, err)
	assert.Equal(t, 0, Count(0, 10))
	assert.Equal(t, 3, Count(21, 10))
}
