package canvasrenderer

import (
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/tdewolff/canvas"
	xdraw "golang.org/x/image/draw"

	"github.com/ByLCY/resumepress/layout"
)

var (
	placeholderFill   = layout.RGB(243, 244, 246)
	placeholderStroke = layout.RGB(209, 213, 219)
)

// painter 把布局坐标（左上角为原点，y 向下）映射到 canvas 坐标（左下角为原点）。
// offset 为当前画布顶部对应的布局 y 值，矢量分页时按页平移。
type painter struct {
	r      *Renderer
	ctx    *canvas.Context
	height float64
	offset float64
	fonts  map[string]layout.FontResource
	images map[string]image.Image
	dpmm   float64
}

func (p *painter) y(top float64) float64 { return p.height - (top - p.offset) }

// draw 依次绘制矩形、线、圆、图片、文字，背景总在内容之下。
func (p *painter) draw(page layout.Page) error {
	p.drawRects(page.Rects)
	p.drawLines(page.Lines)
	p.drawCircles(page.Circles)
	p.drawImages(page.Images)
	for _, tb := range page.Texts {
		if err := p.drawTextBox(tb); err != nil {
			return err
		}
	}
	return nil
}

func (p *painter) fillBackground(w float64) {
	p.ctx.SetFillColor(canvas.White)
	p.ctx.SetStrokeColor(canvas.Transparent)
	p.ctx.DrawPath(0, 0, canvas.Rectangle(w, p.height))
}

func (p *painter) drawTextBox(tb layout.TextBox) error {
	if tb.Color.A == 0 {
		return nil
	}
	face, err := p.r.fontFace(p.font(tb.Font), toPt(tb.FontSize), tb.Color)
	if err != nil {
		return err
	}

	lines := tb.Lines
	if len(lines) == 0 {
		lines = []layout.TextLine{{Content: tb.Content, Width: tb.Width, Height: tb.LineHeight}}
	}

	var textAlign canvas.TextAlign
	var anchorX float64
	switch strings.ToLower(tb.Align) {
	case "center":
		textAlign = canvas.Center
		anchorX = tb.X + tb.Width/2
	case "right", "end":
		textAlign = canvas.Right
		anchorX = tb.X + tb.Width
	default:
		textAlign = canvas.Left
		anchorX = tb.X
	}

	ascent := face.Metrics().Ascent
	cursorY := tb.Y
	for _, line := range lines {
		cursorY += line.GapBefore
		lineHeight := line.Height
		if lineHeight <= 0 {
			lineHeight = tb.FontSize
		}
		if line.Content != "" {
			p.ctx.DrawText(anchorX, p.y(cursorY+ascent), canvas.NewTextLine(face, line.Content, textAlign))
		}
		cursorY += lineHeight
	}
	return nil
}

func (p *painter) drawLines(lines []layout.Line) {
	for _, ln := range lines {
		if ln.Color.A == 0 {
			continue
		}
		w := ln.Width
		if w <= 0 {
			w = hairline
		}
		p.ctx.SetStrokeColor(colorFromLayout(ln.Color))
		p.ctx.SetStrokeWidth(w)
		if ln.Dashed {
			p.ctx.SetDashes(0, 2*w, 2*w)
		}
		path := &canvas.Path{}
		path.MoveTo(0, 0)
		path.LineTo(ln.X2-ln.X1, -(ln.Y2 - ln.Y1))
		p.ctx.DrawPath(ln.X1, p.y(ln.Y1), path)
		if ln.Dashed {
			p.ctx.SetDashes(0)
		}
	}
}

func (p *painter) drawRects(rects []layout.Rect) {
	for _, rc := range rects {
		if rc.Width <= 0 || rc.Height <= 0 {
			continue
		}
		p.setPaint(rc.FillColor, rc.StrokeColor, rc.StrokeWidth)
		var path *canvas.Path
		if rc.Radius > 0 {
			path = canvas.RoundedRectangle(rc.Width, rc.Height, math.Min(rc.Radius, math.Min(rc.Width, rc.Height)/2))
		} else {
			path = canvas.Rectangle(rc.Width, rc.Height)
		}
		p.ctx.DrawPath(rc.X, p.y(rc.Y+rc.Height), path)
	}
}

func (p *painter) drawCircles(circles []layout.Circle) {
	for _, c := range circles {
		if c.R <= 0 {
			continue
		}
		p.setPaint(c.FillColor, c.StrokeColor, c.StrokeWidth)
		p.ctx.DrawPath(c.CX, p.y(c.CY), canvas.Circle(c.R))
	}
}

func (p *painter) setPaint(fill, stroke *layout.Color, width float64) {
	if fill != nil {
		p.ctx.SetFillColor(colorFromLayout(*fill))
	} else {
		p.ctx.SetFillColor(canvas.Transparent)
	}
	if stroke != nil {
		if width <= 0 {
			width = hairline
		}
		p.ctx.SetStrokeColor(colorFromLayout(*stroke))
		p.ctx.SetStrokeWidth(width)
	} else {
		p.ctx.SetStrokeColor(canvas.Transparent)
	}
}

// drawImages 按盒子尺寸裁切缩放图片；缺失的图片画成占位框。
func (p *painter) drawImages(images []layout.ImageBox) {
	for _, box := range images {
		if box.Width <= 0 || box.Height <= 0 {
			continue
		}
		src, ok := p.images[box.Src]
		if !ok || src == nil || src.Bounds().Empty() {
			p.drawPlaceholder(box)
			continue
		}
		fitted := fitImage(src, box, p.dpmm)
		p.ctx.DrawImage(box.X, p.y(box.Y+box.Height), fitted, canvas.DPMM(float64(fitted.Bounds().Dx())/box.Width))
	}
}

func (p *painter) drawPlaceholder(box layout.ImageBox) {
	fill, stroke := placeholderFill, placeholderStroke
	p.drawRects([]layout.Rect{{
		X: box.X, Y: box.Y, Width: box.Width, Height: box.Height, Radius: box.Radius,
		FillColor: &fill, StrokeColor: &stroke, StrokeWidth: hairline,
	}})
}

// fitImage 以 cover 方式把图片缩放到盒子像素尺寸，Radius > 0 时裁成圆角。
func fitImage(src image.Image, box layout.ImageBox, dpmm float64) *image.RGBA {
	w := max(int(math.Round(box.Width*dpmm)), 1)
	h := max(int(math.Round(box.Height*dpmm)), 1)

	sb := src.Bounds()
	crop := sb
	boxAspect := float64(w) / float64(h)
	srcAspect := float64(sb.Dx()) / float64(sb.Dy())
	if srcAspect > boxAspect {
		cw := int(math.Round(float64(sb.Dy()) * boxAspect))
		x0 := sb.Min.X + (sb.Dx()-cw)/2
		crop = image.Rect(x0, sb.Min.Y, x0+cw, sb.Max.Y)
	} else if srcAspect < boxAspect {
		ch := int(math.Round(float64(sb.Dx()) / boxAspect))
		y0 := sb.Min.Y + (sb.Dy()-ch)/2
		crop = image.Rect(sb.Min.X, y0, sb.Max.X, y0+ch)
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	var opts *xdraw.Options
	if box.Radius > 0 {
		opts = &xdraw.Options{DstMask: roundMask{w: w, h: h, r: box.Radius * dpmm}}
	}
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, crop, xdraw.Over, opts)
	return dst
}

// roundMask 是圆角矩形的 alpha 蒙版。
type roundMask struct {
	w, h int
	r    float64
}

func (m roundMask) ColorModel() color.Model { return color.AlphaModel }

func (m roundMask) Bounds() image.Rectangle { return image.Rect(0, 0, m.w, m.h) }

func (m roundMask) At(x, y int) color.Color {
	r := math.Min(m.r, math.Min(float64(m.w), float64(m.h))/2)
	px, py := float64(x)+0.5, float64(y)+0.5
	cx := math.Max(r, math.Min(px, float64(m.w)-r))
	cy := math.Max(r, math.Min(py, float64(m.h)-r))
	if math.Hypot(px-cx, py-cy) > r {
		return color.Alpha{}
	}
	return color.Alpha{A: 0xff}
}

// font 优先查布局登记的字体，否则按 "family-style" 拆解名字。
func (p *painter) font(name string) layout.FontResource {
	if f, ok := p.fonts[name]; ok {
		return f
	}
	family, style, ok := strings.Cut(name, "-")
	if !ok {
		style = "regular"
	}
	return layout.FontResource{Name: name, Family: family, Style: style}
}
