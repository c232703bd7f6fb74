package canvasrenderer

import (
	"bytes"
	"context"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVectorPDFPageCount(t *testing.T) {
	r := NewRenderer()
	cases := []struct {
		height float64
		pages  int
	}{
		{80, 1},
		{160, 2},
		{161, 3},
	}
	for _, tc := range cases {
		res := samplePage()
		res.Page.Height = tc.height
		data, err := r.PDF(context.Background(), res, newFakeAssets(nil, true), 80)
		require.NoError(t, err)
		n, err := api.PageCount(bytes.NewReader(data), model.NewDefaultConfiguration())
		require.NoError(t, err)
		assert.Equal(t, tc.pages, n, "height %g", tc.height)
	}
}

func TestVectorPDFRejectsBadPage(t *testing.T) {
	r := NewRenderer()
	_, err := r.PDF(context.Background(), samplePage(), nil, 0)
	assert.Error(t, err)
	_, err = r.PDF(context.Background(), nil, nil, 80)
	assert.Error(t, err)
}
