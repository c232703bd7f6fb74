package layout

import (
	"math"
	"strings"
	"testing"

	"github.com/ByLCY/resumepress/dom"
)

// stubTypesetter 是一个最小实现，仅用于测试，避免引入 renderer 造成循环依赖。
// 每个字符宽度为字号的一半，按空格贪心折行。
type stubTypesetter struct{}

func (stubTypesetter) LayoutLines(content string, width float64, font FontResource, fontSize float64, lineHeight float64, wrap string) ([]TextLine, error) {
	charW := fontSize * 0.5
	measure := func(s string) float64 { return float64(len([]rune(s))) * charW }
	if wrap == "nowrap" || width <= 0 {
		return []TextLine{{Content: content, Width: measure(content), Height: fontSize}}, nil
	}
	var lines []TextLine
	current := ""
	for _, word := range strings.Fields(content) {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if current != "" && measure(candidate) > width {
			lines = append(lines, TextLine{Content: current, Width: measure(current), Height: fontSize})
			candidate = word
		}
		current = candidate
	}
	lines = append(lines, TextLine{Content: current, Width: measure(current), Height: fontSize})
	return lines, nil
}

const fs10 = 10 * PtToMm

func build(t *testing.T, root *dom.Node, width, minHeight float64) *Result {
	t.Helper()
	res, err := Build(root, BuildOptions{Typesetter: stubTypesetter{}, Width: width, MinHeight: minHeight})
	if err != nil {
		t.Fatalf("布局失败: %v", err)
	}
	return res
}

func base() *dom.Node {
	return dom.El("div").Set("font-size", "10pt").Set("line-height", "1")
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestBuildBlockFlow(t *testing.T) {
	root := base().Set("padding", "10mm")
	root.Append(dom.TextEl("p", "Hello"), dom.TextEl("p", "World"))

	res := build(t, root, 210, 297)
	if res.Page.Width != 210 || res.Page.Height != 297 {
		t.Fatalf("页面尺寸错误: %gx%g", res.Page.Width, res.Page.Height)
	}
	if len(res.Page.Texts) != 2 {
		t.Fatalf("期望 2 个文本块，实际 %d", len(res.Page.Texts))
	}
	first, second := res.Page.Texts[0], res.Page.Texts[1]
	if !near(first.X, 10) || !near(first.Y, 10) {
		t.Fatalf("首段位置错误: (%g,%g)", first.X, first.Y)
	}
	if !near(second.Y, 10+fs10) {
		t.Fatalf("第二段应紧随首段: y=%g", second.Y)
	}
	if !near(first.Width, 190) {
		t.Fatalf("内容宽度应扣除左右内边距: %g", first.Width)
	}
}

func TestBuildGrowsPastMinHeight(t *testing.T) {
	root := base()
	for i := 0; i < 10; i++ {
		root.Append(dom.TextEl("p", "line").Set("margin-bottom", "10mm"))
	}
	res := build(t, root, 100, 50)
	want := 10 * (fs10 + 10)
	if !near(res.Page.Height, want) {
		t.Fatalf("画布高度应随内容增长: got %g want %g", res.Page.Height, want)
	}
}

func TestRowSpaceBetween(t *testing.T) {
	row := dom.El("div").Set("display", "row")
	row.Append(dom.TextEl("span", "Engineer"), dom.TextEl("span", "2020"))
	res := build(t, base().Append(row), 100, 0)

	date := res.Page.Texts[1]
	natural := 4*fs10*0.5 + widthSlack
	if !near(date.X, 100-natural) {
		t.Fatalf("日期应靠右: x=%g want %g", date.X, 100-natural)
	}
	if !near(date.Y, res.Page.Texts[0].Y) {
		t.Fatalf("同一行的元素应顶部对齐")
	}
}

func TestRowShrinksFirstChild(t *testing.T) {
	row := dom.El("div").Set("display", "row").Set("gap", "2mm")
	long := strings.Repeat("word ", 30)
	row.Append(dom.TextEl("span", long), dom.TextEl("span", "May 2019"))
	res := build(t, base().Append(row), 100, 0)

	title := res.Page.Texts[0]
	if len(title.Lines) < 2 {
		t.Fatalf("过长的标题应折行，实际 %d 行", len(title.Lines))
	}
	date := res.Page.Texts[1]
	if date.X+8*fs10*0.5 > 100+widthSlack {
		t.Fatalf("日期越界: x=%g", date.X)
	}
	if title.X+title.Width > date.X {
		t.Fatalf("标题与日期重叠")
	}
}

func TestColumnsAndStretch(t *testing.T) {
	cols := dom.El("div").Set("display", "columns").Set("gap", "10mm")
	side := dom.El("div").Set("width", "30%").Set("background-color", "#1e293b")
	side.Append(dom.TextEl("p", "side"))
	main := dom.El("div")
	main.Append(dom.TextEl("p", "a"), dom.TextEl("p", "b"), dom.TextEl("p", "c"))
	cols.Append(side, main)

	res := build(t, base().Append(cols), 110, 0)
	if got := res.Page.Texts[1].X; !near(got, 40) {
		t.Fatalf("主栏应从 40mm 开始: %g", got)
	}
	if got := res.Page.Texts[0].Width; !near(got, 30) {
		t.Fatalf("侧栏宽度应为 30mm: %g", got)
	}
	if len(res.Page.Rects) != 1 {
		t.Fatalf("期望一个背景矩形，实际 %d", len(res.Page.Rects))
	}
	if got := res.Page.Rects[0].Height; !near(got, 3*fs10) {
		t.Fatalf("侧栏背景应拉伸到整行高度: %g", got)
	}
}

func TestWrapChips(t *testing.T) {
	wrap := dom.El("div").Set("display", "wrap").Set("gap", "2mm")
	for i := 0; i < 3; i++ {
		wrap.Append(dom.TextEl("span", "abcdefghij"))
	}
	res := build(t, base().Append(wrap), 50, 0)
	texts := res.Page.Texts
	if !near(texts[0].Y, texts[1].Y) {
		t.Fatalf("前两个标签应在同一行")
	}
	if !near(texts[2].X, 0) || !near(texts[2].Y, texts[0].Y+fs10+2) {
		t.Fatalf("第三个标签应换到下一行: (%g,%g)", texts[2].X, texts[2].Y)
	}
}

func TestWrapCentered(t *testing.T) {
	wrap := dom.El("div").Set("display", "wrap").Set("justify-content", "center")
	wrap.Append(dom.TextEl("span", "ab"))
	res := build(t, base().Append(wrap), 100, 0)
	w := 2*fs10*0.5 + widthSlack
	if got := res.Page.Texts[0].X; !near(got, (100-w)/2) {
		t.Fatalf("居中位置错误: %g", got)
	}
}

func TestBarFill(t *testing.T) {
	bar := dom.El("div").Set("display", "bar").Set("height", "2mm").
		Set("background-color", "#eeeeee").Set("--fill", "75").Set("--bar-color", "#2563eb")
	res := build(t, base().Append(bar), 100, 0)
	if len(res.Page.Rects) != 2 {
		t.Fatalf("进度条应包含轨道与填充，实际 %d 个矩形", len(res.Page.Rects))
	}
	track, fill := res.Page.Rects[0], res.Page.Rects[1]
	if !near(track.Width, 100) || !near(fill.Width, 75) || !near(fill.Height, 2) {
		t.Fatalf("进度条尺寸错误: track=%g fill=%g h=%g", track.Width, fill.Width, fill.Height)
	}
	if *fill.FillColor != RGB(0x25, 0x63, 0xeb) {
		t.Fatalf("填充颜色错误: %+v", *fill.FillColor)
	}
}

func TestDotAndBorders(t *testing.T) {
	item := dom.El("div").Set("border-left", "2px solid #93c5fd").Set("padding-left", "4mm")
	item.Append(dom.El("div").Set("display", "dot").Set("width", "2mm").Set("background-color", "#2563eb"))
	item.Append(dom.TextEl("p", "x"))
	res := build(t, base().Append(item), 100, 0)

	if len(res.Page.Circles) != 1 || !near(res.Page.Circles[0].R, 1) {
		t.Fatalf("圆点绘制错误: %+v", res.Page.Circles)
	}
	if len(res.Page.Lines) != 1 {
		t.Fatalf("期望一条左边框，实际 %d", len(res.Page.Lines))
	}
	ln := res.Page.Lines[0]
	if !near(ln.X1, ln.X2) || !near(ln.Y2-ln.Y1, 2+fs10) {
		t.Fatalf("左边框位置错误: %+v", ln)
	}
}

func TestUniformBorderStrokesRect(t *testing.T) {
	chip := dom.TextEl("div", "Go").Set("border", "1px solid #fecaca").Set("border-radius", "1mm")
	res := build(t, base().Append(chip), 100, 0)
	if len(res.Page.Lines) != 0 || len(res.Page.Rects) != 1 {
		t.Fatalf("统一边框应描边矩形: lines=%d rects=%d", len(res.Page.Lines), len(res.Page.Rects))
	}
	if res.Page.Rects[0].StrokeColor == nil || res.Page.Rects[0].FillColor != nil {
		t.Fatalf("矩形应只描边: %+v", res.Page.Rects[0])
	}
}

func TestTextStyleResolution(t *testing.T) {
	root := base().Set("font-family", "Georgia, serif")
	root.Append(
		dom.TextEl("h2", "Experience").Set("text-transform", "uppercase").Set("font-weight", "700"),
		dom.TextEl("p", "Acme").Set("font-style", "italic").Set("text-align", "right").Set("color", "#2563eb"),
	)
	res := build(t, root, 100, 0)
	h, p := res.Page.Texts[0], res.Page.Texts[1]
	if h.Content != "EXPERIENCE" || h.Font != "serif-bold" {
		t.Fatalf("标题样式错误: %q %s", h.Content, h.Font)
	}
	if p.Font != "serif-italic" || p.Align != "right" || p.Color != RGB(0x25, 0x63, 0xeb) {
		t.Fatalf("正文样式错误: %+v", p)
	}
	if _, ok := res.Fonts["serif-bold"]; !ok {
		t.Fatalf("字体资源未登记: %v", res.Fonts)
	}
}

func TestImagesAndHiddenNodes(t *testing.T) {
	root := base()
	root.Append(
		dom.El("img").Set("src", "file:avatar.png").Set("width", "20mm").Set("height", "20mm"),
		dom.El("img").Set("src", "file:avatar.png").Set("width", "10mm"),
		dom.TextEl("p", "hidden").Set("display", "none"),
	)
	res := build(t, root, 100, 0)
	if len(res.Page.Images) != 2 || len(res.Assets) != 1 {
		t.Fatalf("图片或资源登记错误: images=%d assets=%v", len(res.Page.Images), res.Assets)
	}
	if !near(res.Page.Images[1].Y, 20) || !near(res.Page.Images[1].Height, 10) {
		t.Fatalf("第二张图片位置错误: %+v", res.Page.Images[1])
	}
	if len(res.Page.Texts) != 0 {
		t.Fatalf("display:none 的元素不应出现")
	}
}

func TestBuildRejectsBadInput(t *testing.T) {
	if _, err := Build(nil, BuildOptions{Width: 10}); err == nil {
		t.Fatalf("空根节点应报错")
	}
	if _, err := Build(dom.El("div"), BuildOptions{}); err == nil {
		t.Fatalf("宽度为 0 应报错")
	}
}
