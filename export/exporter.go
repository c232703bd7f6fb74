// Package export 把在线预览导出为 PDF 或图片：克隆、离屏挂载、冻结样式、排版、
// 光栅化、分页、编码，各步骤严格顺序执行。
package export

import (
	"context"
	"fmt"
	"image"
	"math"
	"time"

	"github.com/flanksource/commons/logger"
	"github.com/google/uuid"

	"github.com/ByLCY/resumepress/assets"
	"github.com/ByLCY/resumepress/dom"
	"github.com/ByLCY/resumepress/layout"
	"github.com/ByLCY/resumepress/paginate"
	"github.com/ByLCY/resumepress/renderer"
	canvasrenderer "github.com/ByLCY/resumepress/renderer/canvas"
	"github.com/ByLCY/resumepress/snapshot"
	"github.com/ByLCY/resumepress/templates"
)

const (
	A4WidthMM  = 210.0
	A4HeightMM = 297.0
)

// Options 配置导出流水线。零值字段取默认值。
type Options struct {
	PageWidthMM  float64
	PageHeightMM float64
	// Scale 是相对 96 DPI 的固定倍率，与设备像素比无关。
	Scale       float64
	JPEGQuality int
	Lossy       bool
	// Pattern 是文件名模式，例如 "${name}_resume"。
	Pattern string
	Assets  assets.Options
	Meta    layout.DocumentMeta
}

func (o Options) withDefaults() Options {
	if o.PageWidthMM <= 0 {
		o.PageWidthMM = A4WidthMM
	}
	if o.PageHeightMM <= 0 {
		o.PageHeightMM = A4HeightMM
	}
	if o.Scale <= 0 {
		o.Scale = canvasrenderer.DefaultScale
	}
	if o.JPEGQuality <= 0 {
		o.JPEGQuality = DefaultJPEGQuality
	}
	if o.Pattern == "" {
		o.Pattern = DefaultPattern
	}
	if o.Meta.Creator == "" {
		o.Meta.Creator = "resumepress"
	}
	return o
}

// VectorRenderer 输出与位图同一布局的矢量 PDF。
type VectorRenderer interface {
	PDF(ctx context.Context, result *layout.Result, src renderer.Assets, pageHeight float64) ([]byte, error)
}

// Exporter 绑定一个活动文档，对其中的在线预览执行导出。
// 每次调用拥有独立的离屏容器，可以并发调用。
type Exporter struct {
	doc        *dom.Document
	typesetter layout.Typesetter
	rasterizer renderer.Rasterizer
	vector     VectorRenderer
	opts       Options
	log        logger.Logger
}

// New 使用 canvas 渲染器创建导出器。
func New(doc *dom.Document, r *canvasrenderer.Renderer, opts Options) *Exporter {
	return NewWith(doc, r, r, r, opts)
}

// NewWith 允许分别注入排版器、光栅化器与矢量渲染器；vector 可为 nil。
func NewWith(doc *dom.Document, ts layout.Typesetter, rz renderer.Rasterizer, vector VectorRenderer, opts Options) *Exporter {
	return &Exporter{
		doc:        doc,
		typesetter: ts,
		rasterizer: rz,
		vector:     vector,
		opts:       opts.withDefaults(),
		log:        logger.GetLogger("export"),
	}
}

// Options 返回生效的配置。
func (e *Exporter) Options() Options { return e.opts }

// Export 按格式导出，name 用于生成文件名与文档信息。
func (e *Exporter) Export(ctx context.Context, format Format, name string) (*Artifact, error) {
	switch format {
	case FormatPDF:
		return e.ExportPDF(ctx, name)
	case FormatPNG, FormatJPEG:
		return e.ExportImage(ctx, format, name)
	case FormatVector:
		return e.ExportVector(ctx, name)
	default:
		return nil, &PreconditionError{Err: fmt.Errorf("不支持的导出格式 %q", format)}
	}
}

// ExportPDF 光栅化后按页高切分，每页一张图写入 PDF。
func (e *Exporter) ExportPDF(ctx context.Context, name string) (*Artifact, error) {
	start := time.Now()
	img, err := e.Snapshot(ctx, name)
	if err != nil {
		return nil, err
	}
	width := img.Bounds().Dx()
	pageH, err := paginate.PageHeightPx(width, e.opts.PageWidthMM, e.opts.PageHeightMM)
	if err != nil {
		return nil, &EncodeError{Format: FormatPDF, Err: err}
	}
	slices, err := paginate.Paginate(img, width, pageH)
	if err != nil {
		return nil, &EncodeError{Format: FormatPDF, Err: err}
	}
	enc := PDFEncoder{
		PageWidthMM:  e.opts.PageWidthMM,
		PageHeightMM: e.opts.PageHeightMM,
		Lossy:        e.opts.Lossy,
		Meta:         e.meta(name),
	}
	data, err := enc.Encode(slices)
	if err != nil {
		return nil, &EncodeError{Format: FormatPDF, Err: err}
	}
	e.log.Infof("导出 PDF: %d 页, %d 字节, 耗时 %s", len(slices), len(data), time.Since(start).Round(time.Millisecond))
	return e.artifact(FormatPDF, name, data, len(slices)), nil
}

// ExportImage 把整张位图编码为单张 PNG 或 JPEG，不分页。
func (e *Exporter) ExportImage(ctx context.Context, format Format, name string) (*Artifact, error) {
	img, err := e.Snapshot(ctx, name)
	if err != nil {
		return nil, err
	}
	data, err := ImageEncoder{Format: format, Quality: e.opts.JPEGQuality}.Encode(img)
	if err != nil {
		return nil, &EncodeError{Format: format, Err: err}
	}
	e.log.Infof("导出 %s: %dx%d, %d 字节", format, img.Bounds().Dx(), img.Bounds().Dy(), len(data))
	return e.artifact(format, name, data, 1), nil
}

// ExportVector 输出可选中文字的矢量 PDF，与位图使用同一份排版结果。
func (e *Exporter) ExportVector(ctx context.Context, name string) (*Artifact, error) {
	if e.vector == nil {
		return nil, &PreconditionError{Err: fmt.Errorf("未配置矢量渲染器")}
	}
	var (
		data  []byte
		pages int
	)
	err := e.prepare(ctx, name, func(ctx context.Context, result *layout.Result, src *assets.Set) error {
		out, err := e.vector.PDF(ctx, result, src, e.opts.PageHeightMM)
		if err != nil {
			return &ResourceError{Stage: "vector", Err: err}
		}
		data = out
		pages = max(int(math.Ceil(result.Page.Height/e.opts.PageHeightMM-1e-6)), 1)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return e.artifact(FormatVector, name, data, pages), nil
}

// Layout 只执行到排版为止，返回布局结果，用于调试输出。
func (e *Exporter) Layout(ctx context.Context, name string) (*layout.Result, error) {
	var out *layout.Result
	err := e.prepare(ctx, name, func(_ context.Context, result *layout.Result, _ *assets.Set) error {
		out = result
		return nil
	})
	return out, err
}

// Snapshot 执行到光栅化为止，返回整张位图，打印流程也使用它。
func (e *Exporter) Snapshot(ctx context.Context, name string) (*image.RGBA, error) {
	var img *image.RGBA
	err := e.prepare(ctx, name, func(ctx context.Context, result *layout.Result, src *assets.Set) error {
		out, err := e.rasterizer.Rasterize(ctx, result, src, e.opts.Scale)
		if err != nil {
			return &ResourceError{Stage: "rasterize", Err: err}
		}
		img = out
		return nil
	})
	return img, err
}

// prepare 克隆预览并挂到离屏容器，冻结样式、排版、启动资源加载后调用 fn。
// 容器在任何路径上（包括 panic）都会被移除。
func (e *Exporter) prepare(ctx context.Context, name string, fn func(context.Context, *layout.Result, *assets.Set) error) error {
	if e.doc == nil {
		return &PreconditionError{Err: fmt.Errorf("文档为空")}
	}
	preview := e.doc.ElementByID(templates.RootID)
	if preview == nil {
		return &PreconditionError{Err: ErrPreviewMissing}
	}

	clone := preview.Clone()
	for _, n := range clone.ByClass("no-print") {
		if p := n.Parent(); p != nil {
			p.Remove(n)
		}
	}
	clone.Set("margin", "0").
		Set("padding", "0").
		Set("box-shadow", "none").
		Set("border-radius", "0").
		Set("transform", "none").
		Set("width", fmt.Sprintf("%gmm", e.opts.PageWidthMM))

	container := dom.El("div", "export-container").WithID("export-"+uuid.NewString()).
		Set("width", fmt.Sprintf("%gmm", e.opts.PageWidthMM)).
		Set("min-height", fmt.Sprintf("%gmm", e.opts.PageHeightMM)).
		Set("background-color", e.background(preview))
	container.Append(clone)

	if err := e.doc.Attach(container); err != nil {
		return &PreconditionError{Err: err}
	}
	defer func() {
		if err := e.doc.Detach(container); err != nil {
			e.log.Warnf("移除离屏容器 %s 失败: %v", container.ID, err)
		}
	}()

	frozen, err := snapshot.Freeze(e.doc, container)
	if err != nil {
		return &ResourceError{Stage: "snapshot", Err: err}
	}
	result, err := layout.Build(container, layout.BuildOptions{
		Typesetter: e.typesetter,
		Width:      e.opts.PageWidthMM,
		MinHeight:  e.opts.PageHeightMM,
		Meta:       e.meta(name),
	})
	if err != nil {
		return &ResourceError{Stage: "layout", Err: err}
	}
	e.log.Debugf("冻结 %d 个节点, 排版高度 %.1fmm, 图片 %d 张", frozen, result.Page.Height, len(result.Assets))

	actx, cancel := context.WithCancel(ctx)
	defer cancel()
	src := assets.NewSet(result.Assets, e.opts.Assets)
	go src.Load(actx)

	return fn(ctx, result, src)
}

// background 取模板容器的计算背景色，拿不到时用白色。
func (e *Exporter) background(preview *dom.Node) string {
	bg := ""
	if c := preview.Find(func(n *dom.Node) bool { return n.HasClass(templates.ContainerClass) }); c != nil {
		bg = e.doc.Computed(c)["background-color"]
	}
	if bg == "" || bg == "transparent" {
		return "#ffffff"
	}
	return bg
}

func (e *Exporter) meta(name string) layout.DocumentMeta {
	m := e.opts.Meta
	if m.Title == "" && name != "" {
		m.Title = name + " - Resume"
	}
	if m.Author == "" {
		m.Author = name
	}
	return m
}

func (e *Exporter) artifact(format Format, name string, data []byte, pages int) *Artifact {
	return &Artifact{
		Filename:    Filename(name, format.Ext(), e.opts.Pattern),
		ContentType: format.ContentType(),
		Data:        data,
		Pages:       pages,
	}
}
