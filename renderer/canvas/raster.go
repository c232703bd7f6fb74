package canvasrenderer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"time"

	"github.com/flanksource/commons/logger"
	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"

	"github.com/ByLCY/resumepress/layout"
	"github.com/ByLCY/resumepress/renderer"
)

var errNoAssetSource = errors.New("没有提供图片来源")

// PixelSize 返回给定倍率下的输出位图尺寸（以 96 DPI 的 CSS 像素为基准）。
func PixelSize(page layout.Page, scale float64) (int, int) {
	w := int(math.Round(page.Width * layout.MmToPx * scale))
	h := int(math.Round(page.Height * layout.MmToPx * scale))
	return w, h
}

// Rasterize 等待资源就绪后把整张画布绘制为位图。
// 失败一律以 *RasterError 或 *AssetError 返回，不会得到空白图像。
func (r *Renderer) Rasterize(ctx context.Context, result *layout.Result, src renderer.Assets, scale float64) (img *image.RGBA, err error) {
	if result == nil {
		return nil, &RasterError{Op: "input", Err: errors.New("布局结果为空")}
	}
	if scale <= 0 || scale > MaxScale || math.IsNaN(scale) {
		return nil, &RasterError{Op: "scale", Err: fmt.Errorf("倍率 %g 超出范围 (0, %g]", scale, MaxScale)}
	}
	page := result.Page
	wpx, hpx := PixelSize(page, scale)
	if wpx <= 0 || hpx <= 0 {
		return nil, &RasterError{Op: "buffer", Err: fmt.Errorf("画布尺寸无效: %dx%d", wpx, hpx)}
	}
	if wpx*hpx > r.opts.MaxPixels {
		return nil, &RasterError{Op: "buffer", Err: fmt.Errorf("画布 %dx%d 超过像素上限 %d", wpx, hpx, r.opts.MaxPixels)}
	}

	images, err := r.awaitAssets(ctx, result.Assets, src)
	if err != nil {
		return nil, err
	}

	defer func() {
		if rec := recover(); rec != nil {
			img = nil
			err = &RasterError{Op: "draw", Err: fmt.Errorf("%v", rec)}
		}
	}()

	dpmm := float64(wpx) / page.Width
	c := canvas.New(page.Width, page.Height)
	p := &painter{r: r, ctx: canvas.NewContext(c), height: page.Height, fonts: result.Fonts, images: images, dpmm: dpmm}
	p.fillBackground(page.Width)
	if err := p.draw(page); err != nil {
		return nil, &RasterError{Op: "draw", Err: err}
	}
	img = rasterizer.Draw(c, canvas.DPMM(dpmm), canvas.DefaultColorSpace)
	if img == nil || img.Bounds().Empty() {
		return nil, &RasterError{Op: "draw", Err: errors.New("栅格化结果为空")}
	}
	logger.Debugf("rasterized %.1fx%.1fmm at scale %g -> %dx%d", page.Width, page.Height, scale, img.Bounds().Dx(), img.Bounds().Dy())
	return img, nil
}

// awaitAssets 等待 Ready 信号（最多 Settle），然后取出全部图片。
// 宽松模式下失败的图片仅记录日志，绘制时使用占位框。
func (r *Renderer) awaitAssets(ctx context.Context, refs []string, src renderer.Assets) (map[string]image.Image, error) {
	out := make(map[string]image.Image, len(refs))
	if len(refs) == 0 {
		return out, nil
	}
	if src != nil {
		timer := time.NewTimer(r.opts.Settle)
		defer timer.Stop()
		select {
		case <-src.Ready():
		case <-timer.C:
			logger.Warnf("资源在 %s 内未就绪，未完成的图片按失败处理", r.opts.Settle)
		case <-ctx.Done():
			return nil, &RasterError{Op: "assets", Err: ctx.Err()}
		}
	}
	for _, ref := range refs {
		var (
			img image.Image
			err = errNoAssetSource
		)
		if src != nil {
			img, err = src.Get(ref)
		}
		if err != nil {
			if r.opts.StrictAssets {
				return nil, &AssetError{Ref: ref, Err: err}
			}
			logger.Warnf("图片 %s 不可用，使用占位框: %v", ref, err)
			continue
		}
		out[ref] = img
	}
	return out, nil
}
