// Package paginate 把一张连续的长图按固定页高切成若干页。
package paginate

import (
	"fmt"
	"image"
	"math"

	xdraw "golang.org/x/image/draw"
)

// Slice 是长图中的一页。Offset 与 Height 以像素计，最后一页可能比页高短。
type Slice struct {
	Index  int
	Offset int
	Height int
	Image  *image.RGBA
}

// Count 返回高度 h 按页高 page 切分所需的页数：ceil(h/page)，整倍数时不多出空白页。
func Count(h, page int) int {
	if h <= 0 || page <= 0 {
		return 0
	}
	return (h + page - 1) / page
}

// PageHeightPx 按纸张宽高比推出与缓冲区宽度对应的像素页高。
func PageHeightPx(bufferWidth int, pageWidthMM, pageHeightMM float64) (int, error) {
	if bufferWidth <= 0 {
		return 0, fmt.Errorf("缓冲区宽度无效: %d", bufferWidth)
	}
	if pageWidthMM <= 0 || pageHeightMM <= 0 {
		return 0, fmt.Errorf("纸张尺寸无效: %gx%gmm", pageWidthMM, pageHeightMM)
	}
	h := int(math.Round(float64(bufferWidth) * pageHeightMM / pageWidthMM))
	return max(h, 1), nil
}

// Paginate 自上而下切分 img。第 i 页覆盖 [i*pageHeight, min((i+1)*pageHeight, H))，
// 每页都是独立的零原点缓冲区，最后一页不补白。
func Paginate(img image.Image, pageWidth, pageHeight int) ([]Slice, error) {
	if img == nil {
		return nil, fmt.Errorf("分页: 图像为空")
	}
	if pageWidth <= 0 || pageHeight <= 0 {
		return nil, fmt.Errorf("分页: 页面尺寸无效 %dx%d", pageWidth, pageHeight)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("分页: 图像尺寸无效 %dx%d", b.Dx(), b.Dy())
	}
	if b.Dx() != pageWidth {
		return nil, fmt.Errorf("分页: 图像宽度 %d 与页宽 %d 不一致", b.Dx(), pageWidth)
	}

	n := Count(b.Dy(), pageHeight)
	out := make([]Slice, 0, n)
	for i := range n {
		offset := i * pageHeight
		h := min(pageHeight, b.Dy()-offset)
		src := image.Rect(b.Min.X, b.Min.Y+offset, b.Max.X, b.Min.Y+offset+h)
		dst := image.NewRGBA(image.Rect(0, 0, pageWidth, h))
		xdraw.Copy(dst, image.Point{}, img, src, xdraw.Src, nil)
		out = append(out, Slice{Index: i, Offset: offset, Height: h, Image: dst})
	}
	return out, nil
}
