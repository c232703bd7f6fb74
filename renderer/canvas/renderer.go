package canvasrenderer

import (
	"errors"
	"fmt"
	"image/color"
	"strings"
	"sync"
	"time"

	"github.com/tdewolff/canvas"

	"github.com/ByLCY/resumepress/fonts"
	"github.com/ByLCY/resumepress/layout"
	"github.com/ByLCY/resumepress/renderer"
)

const (
	// DefaultScale 为导出默认倍率，与显示设备的像素密度无关。
	DefaultScale = 3.0
	// MaxScale 为允许的最大倍率。
	MaxScale = 4.0

	defaultSettle    = time.Second
	defaultMaxPixels = 1 << 27
	hairline         = 0.2
)

// ErrTaintedAsset 表示严格模式下图片资源无法加载。
var ErrTaintedAsset = errors.New("图片资源不可用")

// RasterError 表示栅格化失败，调用方不会得到空白图像。
type RasterError struct {
	Op  string
	Err error
}

func (e *RasterError) Error() string {
	return fmt.Sprintf("栅格化失败(%s): %v", e.Op, e.Err)
}

func (e *RasterError) Unwrap() error { return e.Err }

// AssetError 记录严格模式下失败的资源。
type AssetError struct {
	Ref string
	Err error
}

func (e *AssetError) Error() string {
	return fmt.Sprintf("加载图片 %s 失败: %v", e.Ref, e.Err)
}

func (e *AssetError) Unwrap() error { return e.Err }

// Is 让 errors.Is(err, ErrTaintedAsset) 成立。
func (e *AssetError) Is(target error) bool { return target == ErrTaintedAsset }

// Options configures the canvas renderer.
type Options struct {
	// StrictAssets 为 true 时，任何图片失败都会中止栅格化。
	StrictAssets bool
	// Settle 为等待资源就绪的上限，超时后按失败资源处理。
	Settle time.Duration
	// MaxPixels 限制输出位图的像素总数。
	MaxPixels int
}

// Renderer 基于 github.com/tdewolff/canvas 实现排版、栅格化与矢量 PDF。
type Renderer struct {
	opts Options

	fontMu   sync.Mutex
	families map[string]*canvas.FontFamily
}

var (
	_ renderer.Rasterizer = (*Renderer)(nil)
	_ layout.Typesetter   = (*Renderer)(nil)
)

// NewRenderer creates a renderer with default options.
func NewRenderer() *Renderer { return NewRendererWithOptions(Options{}) }

// NewRendererWithOptions creates a renderer; zero fields take defaults.
func NewRendererWithOptions(opts Options) *Renderer {
	if opts.Settle <= 0 {
		opts.Settle = defaultSettle
	}
	if opts.MaxPixels <= 0 {
		opts.MaxPixels = defaultMaxPixels
	}
	return &Renderer{
		opts:     opts,
		families: map[string]*canvas.FontFamily{},
	}
}

func (r *Renderer) fontFace(font layout.FontResource, sizePt float64, col layout.Color) (*canvas.FontFace, error) {
	family, err := r.ensureFontFamily(font.Family)
	if err != nil {
		return nil, err
	}
	return family.Face(sizePt, colorFromLayout(col), parseFontStyle(font.Style), canvas.FontNormal), nil
}

// ensureFontFamily 按字体族懒加载四种字形，未知字体族退回 sans。
func (r *Renderer) ensureFontFamily(kind string) (*canvas.FontFamily, error) {
	kind = strings.ToLower(kind)
	if kind == "" {
		kind = "sans"
	}
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if family, ok := r.families[kind]; ok {
		return family, nil
	}
	family, err := loadFamily(kind)
	if err != nil && kind != "sans" {
		if fb, ok := r.families["sans"]; ok {
			family, err = fb, nil
		} else {
			family, err = loadFamily("sans")
			if err == nil {
				r.families["sans"] = family
			}
		}
	}
	if err != nil {
		return nil, err
	}
	r.families[kind] = family
	return family, nil
}

func loadFamily(kind string) (*canvas.FontFamily, error) {
	family := canvas.NewFontFamily(kind)
	for _, style := range fonts.Styles {
		data, err := fonts.Load(kind, style)
		if err != nil {
			return nil, err
		}
		if err := family.LoadFont(data, 0, parseFontStyle(style)); err != nil {
			return nil, fmt.Errorf("解析字体 %s/%s 失败: %w", kind, style, err)
		}
	}
	return family, nil
}

func parseFontStyle(style string) canvas.FontStyle {
	s := strings.ToLower(style)
	result := canvas.FontRegular
	if strings.Contains(s, "bold") {
		result = canvas.FontBold
	}
	if strings.Contains(s, "italic") || strings.Contains(s, "oblique") {
		result |= canvas.FontItalic
	}
	return result
}

func colorFromLayout(c layout.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, float64(c.A)/255.0)
}

// toPt 将毫米(mm)转换为点(pt)。
func toPt(mm float64) float64 { return mm * layout.MmToPt }
