// Package renderer 定义布局结果的输出端：栅格化与资源来源。
package renderer

import (
	"context"
	"image"

	"github.com/ByLCY/resumepress/layout"
)

// Rasterizer 将布局结果绘制为位图，scale 为相对 96 DPI 的倍率。
type Rasterizer interface {
	Rasterize(ctx context.Context, result *layout.Result, src Assets, scale float64) (*image.RGBA, error)
}

// Assets 提供布局中引用的图片。Ready 在全部加载结束（无论成败）后关闭。
type Assets interface {
	Ready() <-chan struct{}
	Get(ref string) (image.Image, error)
}
