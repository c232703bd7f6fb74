package canvasrenderer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/resumepress/layout"
	"github.com/ByLCY/resumepress/renderer"
)

// vectorDPMM 为矢量 PDF 中位图的采样密度（约 300 DPI）。
const vectorDPMM = 300 / 25.4

// PDF 将布局结果按 pageHeight（mm）切成若干页，输出可选中文字的矢量 PDF。
func (r *Renderer) PDF(ctx context.Context, result *layout.Result, src renderer.Assets, pageHeight float64) ([]byte, error) {
	if result == nil {
		return nil, errors.New("渲染结果为空")
	}
	page := result.Page
	if page.Width <= 0 || page.Height <= 0 || pageHeight <= 0 {
		return nil, fmt.Errorf("页面尺寸无效: %gx%g / %g", page.Width, page.Height, pageHeight)
	}
	images, err := r.awaitAssets(ctx, result.Assets, src)
	if err != nil {
		return nil, err
	}

	pages := int(math.Ceil(page.Height/pageHeight - 1e-6))
	if pages < 1 {
		pages = 1
	}

	var buf bytes.Buffer
	writer := pdf.New(&buf, page.Width, pageHeight, nil)
	applyMeta(writer, result.Meta)
	for i := 0; i < pages; i++ {
		if i > 0 {
			writer.NewPage(page.Width, pageHeight)
		}
		c := canvas.New(page.Width, pageHeight)
		p := &painter{
			r:      r,
			ctx:    canvas.NewContext(c),
			height: pageHeight,
			offset: float64(i) * pageHeight,
			fonts:  result.Fonts,
			images: images,
			dpmm:   vectorDPMM,
		}
		p.fillBackground(page.Width)
		if err := p.draw(page); err != nil {
			return nil, err
		}
		c.RenderTo(writer)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func applyMeta(writer *pdf.PDF, meta layout.DocumentMeta) {
	writer.SetInfo(meta.Title, meta.Subject, strings.Join(meta.Keywords, ", "), meta.Author, meta.Creator)
}
