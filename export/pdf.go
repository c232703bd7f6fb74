package export

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/resumepress/layout"
	"github.com/ByLCY/resumepress/paginate"
)

// PDFEncoder 把分页后的图像逐页写入 PDF：每页一张图，贴在页面左上角、铺满页宽。
type PDFEncoder struct {
	PageWidthMM  float64
	PageHeightMM float64
	// Lossy 为 true 时页面图像按 JPEG 压缩，文件更小。
	Lossy bool
	Meta  layout.DocumentMeta
}

// Encode 按切片顺序写出页面；最后一页较短时按比例缩放，不拉伸。
func (e PDFEncoder) Encode(slices []paginate.Slice) ([]byte, error) {
	if len(slices) == 0 {
		return nil, errors.New("没有可写入的页面")
	}
	if e.PageWidthMM <= 0 || e.PageHeightMM <= 0 {
		return nil, fmt.Errorf("纸张尺寸无效: %gx%gmm", e.PageWidthMM, e.PageHeightMM)
	}

	opts := pdf.DefaultOptions
	if e.Lossy {
		opts.ImageEncoding = canvas.Lossy
	}
	var buf bytes.Buffer
	writer := pdf.New(&buf, e.PageWidthMM, e.PageHeightMM, &opts)
	writer.SetInfo(e.Meta.Title, e.Meta.Subject, strings.Join(e.Meta.Keywords, ", "), e.Meta.Author, e.Meta.Creator)

	for i, s := range slices {
		if s.Image == nil {
			return nil, fmt.Errorf("第 %d 页图像为空", i+1)
		}
		w := s.Image.Bounds().Dx()
		if w <= 0 || s.Height <= 0 {
			return nil, fmt.Errorf("第 %d 页尺寸无效", i+1)
		}
		if i > 0 {
			writer.NewPage(e.PageWidthMM, e.PageHeightMM)
		}
		// 每毫米像素数由页宽决定，高度随之等比缩放。
		dpmm := float64(w) / e.PageWidthMM
		heightMM := float64(s.Height) / dpmm

		c := canvas.New(e.PageWidthMM, e.PageHeightMM)
		ctx := canvas.NewContext(c)
		ctx.SetFillColor(canvas.White)
		ctx.DrawPath(0, 0, canvas.Rectangle(e.PageWidthMM, e.PageHeightMM))
		ctx.DrawImage(0, e.PageHeightMM-heightMM, s.Image, canvas.DPMM(dpmm))
		c.RenderTo(writer)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}
