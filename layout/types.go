package layout

// 该文件定义布局结果与资源描述，供布局计算、栅格化与调试 JSON 共用。

// Result 保存布局结果：一张固定宽度、高度随内容增长的连续画布。
// 分页发生在像素阶段，布局本身不分页。
type Result struct {
	Page  Page                    `json:"page"`
	Fonts map[string]FontResource `json:"fonts"`
	// Assets 为布局中引用到的图片地址，按首次出现顺序去重。
	Assets []string     `json:"assets,omitempty"`
	Meta   DocumentMeta `json:"meta"`
}

// FontResource 描述一种字体：Family 为 sans/serif/mono，Style 为 regular/bold/italic/bolditalic。
type FontResource struct {
	Name   string `json:"name"`
	Family string `json:"family"`
	Style  string `json:"style"`
}

// Color 采用 0-255 的 RGBA 数值，A 为 255 表示不透明。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
	A int `json:"a"`
}

// RGB 构造不透明颜色。
func RGB(r, g, b int) Color { return Color{R: r, G: g, B: b, A: 255} }

// Page 记录画布尺寸与最终可以直接绘制的元素（单位：mm）。
type Page struct {
	Width   float64    `json:"width"`
	Height  float64    `json:"height"`
	Texts   []TextBox  `json:"texts"`
	Images  []ImageBox `json:"images"`
	Lines   []Line     `json:"lines,omitempty"`
	Rects   []Rect     `json:"rects,omitempty"`
	Circles []Circle   `json:"circles,omitempty"`
}

// TextBox 表示一个已经排好坐标的文本块。
type TextBox struct {
	Content    string        `json:"content"`
	X          float64       `json:"x"`
	Y          float64       `json:"y"`
	Width      float64       `json:"width"`
	LineHeight float64       `json:"lineHeight"`
	Font       string        `json:"font"`
	FontSize   float64       `json:"fontSize"`
	Color      Color         `json:"color"`
	Lines      []TextLine    `json:"lines"`
	Height     float64       `json:"height"`
	Align      string        `json:"align,omitempty"` // 文本水平对齐方式：left/center/right（默认 left）
	Wrap       string        `json:"wrap,omitempty"`  // 折行策略：anywhere(默认)/break-word/nowrap
	Debug      *TextBoxDebug `json:"debug,omitempty"`
}

// TextLine 表示排版后的一行文本内容及其宽高。
type TextLine struct {
	Content   string  `json:"content"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	GapBefore float64 `json:"gapBefore,omitempty"`
}

// TextBoxDebug holds optional debug info displayed only when enabled by BuildOptions.
type TextBoxDebug struct {
	RawUnits *RawUnits `json:"rawUnits,omitempty"`
}

// RawUnits describes original author-specified units for key fields.
type RawUnits struct {
	FontSize   *RawLengthJSON     `json:"fontSize,omitempty"`
	LineHeight *RawLineHeightJSON `json:"lineHeight,omitempty"`
}

// RawLengthJSON is a JSON-friendly representation of Length.
type RawLengthJSON struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// RawLineHeightJSON is a JSON-friendly representation of LineHeightSpec.
type RawLineHeightJSON struct {
	Kind   string  `json:"kind"` // "factor" | "absolute"
	Factor float64 `json:"factor,omitempty"`
	Value  float64 `json:"value,omitempty"`
	Unit   string  `json:"unit,omitempty"`
}

// ImageBox 用于描述图片位置与尺寸，Src 由 assets 包解析。
type ImageBox struct {
	Src    string  `json:"src"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Radius float64 `json:"radius,omitempty"`
}

// 基本图形：直线、矩形、圆形（单位均为 mm）。
// Line 表示一条线段。
type Line struct {
	X1     float64 `json:"x1"`
	Y1     float64 `json:"y1"`
	X2     float64 `json:"x2"`
	Y2     float64 `json:"y2"`
	Color  Color   `json:"color"`
	Width  float64 `json:"width"` // 线宽（mm），<=0 时由渲染器给默认值
	Dashed bool    `json:"dashed,omitempty"`
}

// Rect 表示一个矩形，Radius 为圆角半径。
type Rect struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	Radius      float64 `json:"radius,omitempty"`
	StrokeColor *Color  `json:"strokeColor,omitempty"` // 为空表示不描边
	StrokeWidth float64 `json:"strokeWidth"`           // mm
	FillColor   *Color  `json:"fillColor,omitempty"`   // 为空表示不填充
}

// Circle 表示一个圆。
type Circle struct {
	CX          float64 `json:"cx"`
	CY          float64 `json:"cy"`
	R           float64 `json:"r"`
	StrokeColor *Color  `json:"strokeColor,omitempty"`
	StrokeWidth float64 `json:"strokeWidth"` // mm
	FillColor   *Color  `json:"fillColor,omitempty"`
}

// DocumentMeta 保存 PDF 元信息。
type DocumentMeta struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Subject  string   `json:"subject"`
	Creator  string   `json:"creator"`
	Keywords []string `json:"keywords"`
}
