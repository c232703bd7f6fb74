package layout

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/ByLCY/resumepress/dom"
)

// 细小余量，避免按自然宽度摆放的文字因浮点误差再次折行。
const widthSlack = 0.01

// Build 按固定物理宽度对一棵样式已冻结的子树做盒布局。
// 只读取内联样式（经 dom.Cascade 继承），不依赖任何样式表。
func Build(root *dom.Node, opts BuildOptions) (*Result, error) {
	if root == nil {
		return nil, errors.New("布局根节点为空")
	}
	if opts.Width <= 0 {
		return nil, fmt.Errorf("布局宽度无效: %gmm", opts.Width)
	}
	b := &builder{
		ts:      opts.Typesetter,
		debug:   opts.Debug,
		fonts:   map[string]FontResource{},
		seen:    map[string]bool{},
		root:    root,
		rootMin: opts.MinHeight,
	}
	p, err := b.layoutNode(root, dom.Inline(root), 0, 0, opts.Width, true)
	if err != nil {
		return nil, err
	}
	b.page.Width = opts.Width
	b.page.Height = math.Max(p.outer, opts.MinHeight)
	return &Result{
		Page:   b.page,
		Fonts:  b.fonts,
		Assets: b.assets,
		Meta:   opts.Meta,
	}, nil
}

type builder struct {
	ts      Typesetter
	debug   DebugOptions
	page    Page
	fonts   map[string]FontResource
	assets  []string
	seen    map[string]bool
	root    *dom.Node
	rootMin float64
}

// placed 描述一个已摆放元素：outer 含外边距，h 为边框盒高度，bg 为背景矩形下标。
type placed struct {
	outer float64
	h     float64
	bg    int
}

// mark 记录各图元列表的长度，用于整体平移之后追加的图元。
type mark struct{ texts, images, lines, rects, circles int }

func (b *builder) mark() mark {
	return mark{len(b.page.Texts), len(b.page.Images), len(b.page.Lines), len(b.page.Rects), len(b.page.Circles)}
}

// shiftRange 把 [from, to) 之间追加的图元整体下移 dy。
func (b *builder) shiftRange(from, to mark, dy float64) {
	if dy == 0 {
		return
	}
	for i := from.texts; i < to.texts; i++ {
		b.page.Texts[i].Y += dy
	}
	for i := from.images; i < to.images; i++ {
		b.page.Images[i].Y += dy
	}
	for i := from.lines; i < to.lines; i++ {
		b.page.Lines[i].Y1 += dy
		b.page.Lines[i].Y2 += dy
	}
	for i := from.rects; i < to.rects; i++ {
		b.page.Rects[i].Y += dy
	}
	for i := from.circles; i < to.circles; i++ {
		b.page.Circles[i].CY += dy
	}
}

// layoutNode 在 (x, y) 处以可用宽度 w 摆放 n。sized 为 true 时 w 即为最终宽度，忽略 width 属性。
func (b *builder) layoutNode(n *dom.Node, st dom.Style, x, y, w float64, sized bool) (placed, error) {
	bs := resolveBox(st, w)
	if bs.display == "none" {
		return placed{bg: -1}, nil
	}
	bx := x + bs.margin[sideLeft]
	bw := math.Max(w-bs.margin[sideLeft]-bs.margin[sideRight], 0)
	if !sized && bs.width != nil {
		bw = math.Min(bs.width.Resolve(bs.fontSize, w), bw)
	}
	by := y + bs.margin[sideTop]
	p := placed{bg: -1}

	if (bs.bg != nil || bs.uniformBorder()) && bs.display != "dot" && bs.display != "bar" {
		p.bg = len(b.page.Rects)
		b.page.Rects = append(b.page.Rects, Rect{})
	}

	switch bs.display {
	case "bar":
		p.h = b.drawBar(bs, bx, by, bw)
	case "dot":
		d := 2.0
		if bs.width != nil {
			d = bs.width.Resolve(bs.fontSize, w)
		}
		d = math.Min(d, bw)
		b.page.Circles = append(b.page.Circles, Circle{CX: bx + d/2, CY: by + d/2, R: d / 2, FillColor: bs.bg})
		p.h = d
		bw = d
	case "img":
		h := bs.height
		if h <= 0 {
			h = bw
		}
		src := strings.TrimSpace(st["src"])
		if src != "" {
			b.page.Images = append(b.page.Images, ImageBox{Src: src, X: bx, Y: by, Width: bw, Height: h, Radius: bs.radius})
			if !b.seen[src] {
				b.seen[src] = true
				b.assets = append(b.assets, src)
			}
		}
		p.h = h
	default:
		cx := bx + bs.inset(sideLeft)
		cw := math.Max(bw-bs.inset(sideLeft)-bs.inset(sideRight), 0)
		cy := by + bs.inset(sideTop)
		if text := strings.TrimSpace(n.Text); text != "" {
			tb, err := b.composeTextBox(text, st, cx, cy, cw)
			if err != nil {
				return placed{}, err
			}
			cy += tb.Height
			if len(n.Children) > 0 {
				cy += bs.gap
			}
		}
		if len(n.Children) > 0 {
			h, err := b.layoutChildren(n, st, bs, cx, cy, cw)
			if err != nil {
				return placed{}, err
			}
			cy += h
		}
		p.h = cy - by + bs.inset(sideBottom)
	}

	p.h = math.Max(p.h, math.Max(bs.height, bs.minHeight))
	if n == b.root {
		p.h = math.Max(p.h, b.rootMin-bs.margin[sideTop]-bs.margin[sideBottom])
	}
	if p.bg >= 0 {
		r := Rect{X: bx, Y: by, Width: bw, Height: p.h, Radius: bs.radius, FillColor: bs.bg}
		if bs.uniformBorder() {
			c := bs.border[0].color
			r.StrokeColor = &c
			r.StrokeWidth = bs.border[0].width
		}
		b.page.Rects[p.bg] = r
	}
	if !bs.uniformBorder() {
		b.drawBorders(bs, bx, by, bw, p.h)
	}
	p.outer = bs.margin[sideTop] + p.h + bs.margin[sideBottom]
	return p, nil
}

// drawBar 绘制进度条：轨道为背景色，填充宽度由 --fill 百分比决定。
func (b *builder) drawBar(bs boxStyle, x, y, w float64) float64 {
	h := bs.height
	if h <= 0 {
		h = 1.5
	}
	radius := bs.radius
	if bs.bg != nil {
		b.page.Rects = append(b.page.Rects, Rect{X: x, Y: y, Width: w, Height: h, Radius: radius, FillColor: bs.bg})
	}
	if bs.fill > 0 {
		fill := bs.accent
		if fill == nil {
			c := RGB(37, 99, 235)
			fill = &c
		}
		b.page.Rects = append(b.page.Rects, Rect{X: x, Y: y, Width: w * bs.fill / 100, Height: h, Radius: radius, FillColor: fill})
	}
	return h
}

func (b *builder) drawBorders(bs boxStyle, x, y, w, h float64) {
	for side, bd := range bs.border {
		if !bd.visible() {
			continue
		}
		half := bd.width / 2
		ln := Line{Color: bd.color, Width: bd.width, Dashed: bd.dashed}
		switch side {
		case sideTop:
			ln.X1, ln.Y1, ln.X2, ln.Y2 = x, y+half, x+w, y+half
		case sideBottom:
			ln.X1, ln.Y1, ln.X2, ln.Y2 = x, y+h-half, x+w, y+h-half
		case sideLeft:
			ln.X1, ln.Y1, ln.X2, ln.Y2 = x+half, y, x+half, y+h
		case sideRight:
			ln.X1, ln.Y1, ln.X2, ln.Y2 = x+w-half, y, x+w-half, y+h
		}
		b.page.Lines = append(b.page.Lines, ln)
	}
}

type child struct {
	node  *dom.Node
	style dom.Style
}

func visibleChildren(n *dom.Node, st dom.Style) []child {
	out := make([]child, 0, len(n.Children))
	for _, c := range n.Children {
		cs := dom.Cascade(c, st)
		if cs["display"] == "none" {
			continue
		}
		out = append(out, child{node: c, style: cs})
	}
	return out
}

// layoutChildren 根据父元素的 display 摆放子元素，返回占用高度。
func (b *builder) layoutChildren(n *dom.Node, st dom.Style, bs boxStyle, x, y, w float64) (float64, error) {
	children := visibleChildren(n, st)
	if len(children) == 0 {
		return 0, nil
	}
	switch bs.display {
	case "row":
		return b.layoutRow(children, bs, x, y, w)
	case "columns":
		return b.layoutColumns(children, bs, x, y, w)
	case "wrap":
		return b.layoutWrap(children, bs, x, y, w)
	default:
		cy := y
		for i, c := range children {
			if i > 0 {
				cy += bs.gap
			}
			p, err := b.layoutNode(c.node, c.style, x, cy, w, false)
			if err != nil {
				return 0, err
			}
			cy += p.outer
		}
		return cy - y, nil
	}
}

// layoutRow 横向排列子元素，默认两端对齐；空间不足时压缩第一个子元素。
func (b *builder) layoutRow(children []child, bs boxStyle, x, y, w float64) (float64, error) {
	n := len(children)
	gaps := bs.gap * float64(n-1)
	nats := make([]float64, n)
	sum := 0.0
	for i, c := range children {
		nat, err := b.natural(c.node, c.style, w)
		if err != nil {
			return 0, err
		}
		nats[i] = nat
		sum += nat
	}
	widths := append([]float64(nil), nats...)
	if sum+gaps > w {
		rest := 0.0
		for i := 1; i < n; i++ {
			widths[i] = math.Min(nats[i], w/2)
			rest += widths[i]
		}
		widths[0] = w - gaps - rest
		if widths[0] < w/4 {
			scale := math.Max(w-gaps, 0) / sum
			for i := range widths {
				widths[i] = nats[i] * scale
			}
		}
		sum = 0
		for _, wd := range widths {
			sum += wd
		}
	}

	free := math.Max(w-gaps-sum, 0)
	cx, extra := x, 0.0
	switch bs.justify {
	case "start", "flex-start", "left":
	case "center":
		cx += free / 2
	case "end", "flex-end", "right":
		cx += free
	default:
		if n > 1 {
			extra = free / float64(n-1)
		}
	}

	marks := make([]mark, 0, n+1)
	outers := make([]float64, 0, n)
	rowH := 0.0
	for i, c := range children {
		marks = append(marks, b.mark())
		p, err := b.layoutNode(c.node, c.style, cx, y, widths[i], true)
		if err != nil {
			return 0, err
		}
		outers = append(outers, p.outer)
		rowH = math.Max(rowH, p.outer)
		cx += widths[i] + bs.gap + extra
	}
	marks = append(marks, b.mark())
	switch bs.align {
	case "center", "end", "flex-end":
		for i := range outers {
			dy := rowH - outers[i]
			if bs.align == "center" {
				dy /= 2
			}
			b.shiftRange(marks[i], marks[i+1], dy)
		}
	}
	return rowH, nil
}

// layoutColumns 按 width 百分比分栏（百分比相对于扣除间距后的宽度），
// 未指定宽度的栏平分剩余空间；各栏背景拉伸到同一高度。
func (b *builder) layoutColumns(children []child, bs boxStyle, x, y, w float64) (float64, error) {
	n := len(children)
	avail := math.Max(w-bs.gap*float64(n-1), 0)
	widths := make([]float64, n)
	used, auto := 0.0, 0
	for i, c := range children {
		l, ok := ParseRawLengthStr(c.style["width"])
		if !ok {
			widths[i] = -1
			auto++
			continue
		}
		widths[i] = l.Resolve(fontSizeMM(c.style), avail)
		used += widths[i]
	}
	if auto > 0 {
		share := math.Max(avail-used, 0) / float64(auto)
		for i := range widths {
			if widths[i] < 0 {
				widths[i] = share
			}
		}
	}

	ps := make([]placed, n)
	cx, rowH := x, 0.0
	for i, c := range children {
		p, err := b.layoutNode(c.node, c.style, cx, y, widths[i], true)
		if err != nil {
			return 0, err
		}
		ps[i] = p
		rowH = math.Max(rowH, p.outer)
		cx += widths[i] + bs.gap
	}
	for _, p := range ps {
		if p.bg >= 0 {
			b.page.Rects[p.bg].Height = rowH - (p.outer - p.h)
		}
	}
	return rowH, nil
}

// layoutWrap 把子元素按自然宽度从左到右排成若干行（标签、联系方式等）。
func (b *builder) layoutWrap(children []child, bs boxStyle, x, y, w float64) (float64, error) {
	widths := make([]float64, len(children))
	for i, c := range children {
		nat, err := b.natural(c.node, c.style, w)
		if err != nil {
			return 0, err
		}
		widths[i] = nat
	}

	var lines [][]int
	var line []int
	lineW := 0.0
	for i, wd := range widths {
		next := lineW + wd
		if len(line) > 0 {
			next += bs.gap
		}
		if len(line) > 0 && next > w+widthSlack {
			lines = append(lines, line)
			line, next = nil, wd
		}
		line = append(line, i)
		lineW = next
	}
	if len(line) > 0 {
		lines = append(lines, line)
	}

	cy := y
	for li, idxs := range lines {
		total := bs.gap * float64(len(idxs)-1)
		for _, i := range idxs {
			total += widths[i]
		}
		cx := x + alignOffset(w, total, bs.justify)
		lineH := 0.0
		for _, i := range idxs {
			p, err := b.layoutNode(children[i].node, children[i].style, cx, cy, widths[i], true)
			if err != nil {
				return 0, err
			}
			lineH = math.Max(lineH, p.outer)
			cx += widths[i] + bs.gap
		}
		cy += lineH
		if li < len(lines)-1 {
			cy += bs.gap
		}
	}
	return cy - y, nil
}

// natural 估算元素不折行时需要的外宽（含外边距），不超过 maxW。
func (b *builder) natural(n *dom.Node, st dom.Style, maxW float64) (float64, error) {
	bs := resolveBox(st, maxW)
	switch bs.display {
	case "none":
		return 0, nil
	case "bar":
		return maxW, nil
	}
	if bs.width != nil {
		return math.Min(bs.width.Resolve(bs.fontSize, maxW)+bs.margin[sideLeft]+bs.margin[sideRight], maxW), nil
	}
	if bs.display == "dot" {
		return math.Min(2+bs.margin[sideLeft]+bs.margin[sideRight], maxW), nil
	}
	inner := math.Max(maxW-bs.horizontal(), 0)
	content := 0.0
	if text := strings.TrimSpace(n.Text); text != "" {
		ts := resolveText(st)
		lines, err := layoutLines(applyTransform(text, ts.transform), 0, ts.font, ts.size, ts.lineHeight, b.ts, "nowrap")
		if err != nil {
			return 0, err
		}
		for _, l := range lines {
			content = math.Max(content, l.Width+widthSlack)
		}
	}
	kids := visibleChildren(n, st)
	if len(kids) > 0 {
		total := 0.0
		for i, c := range kids {
			cw, err := b.natural(c.node, c.style, inner)
			if err != nil {
				return 0, err
			}
			switch bs.display {
			case "row", "wrap":
				total += cw
				if i > 0 {
					total += bs.gap
				}
			case "columns":
				total = inner
			default:
				total = math.Max(total, cw)
			}
		}
		content = math.Max(content, total)
	}
	return math.Min(content+bs.horizontal(), maxW), nil
}

// composeTextBox 排版一段文字并追加到页面。
func (b *builder) composeTextBox(content string, st dom.Style, x, y, width float64) (TextBox, error) {
	ts := resolveText(st)
	content = applyTransform(content, ts.transform)
	b.fonts[ts.font.Name] = ts.font

	lines, err := layoutLines(content, width, ts.font, ts.size, ts.lineHeight, b.ts, ts.wrap)
	if err != nil {
		return TextBox{}, fmt.Errorf("排版文字 %q 失败: %w", content, err)
	}

	// 与 CSS 一致：行距平均分到每行上下，首行只加半个行距。
	totalHeight := 0.0
	for i := range lines {
		if lines[i].Height <= 0 {
			lines[i].Height = ts.size
		}
		leading := math.Max(ts.lineHeight-lines[i].Height, 0)
		if i == 0 {
			lines[i].GapBefore = leading / 2
		} else {
			lines[i].GapBefore = leading
		}
		totalHeight += lines[i].GapBefore + lines[i].Height
	}
	if len(lines) > 0 {
		totalHeight += math.Max(ts.lineHeight-lines[len(lines)-1].Height, 0) / 2
	}

	tb := TextBox{
		Content:    content,
		X:          x,
		Y:          y,
		Width:      width,
		LineHeight: ts.lineHeight,
		Font:       ts.font.Name,
		FontSize:   ts.size,
		Color:      ts.color,
		Lines:      lines,
		Height:     totalHeight,
		Align:      ts.align,
		Wrap:       ts.wrap,
	}
	if b.debug.RawUnits {
		sizeRaw := RawLengthJSON{Value: ts.size * MmToPt, Unit: "pt"}
		lhRaw := RawLineHeightJSON{Kind: "factor", Factor: ts.spec.Factor}
		if ts.spec.Kind == LineHeightAbsolute {
			lhRaw = RawLineHeightJSON{Kind: "absolute", Value: ts.spec.Len.Value, Unit: UnitToString(ts.spec.Len.Unit)}
		}
		tb.Debug = &TextBoxDebug{RawUnits: &RawUnits{FontSize: &sizeRaw, LineHeight: &lhRaw}}
	}
	b.page.Texts = append(b.page.Texts, tb)
	return tb, nil
}

func layoutLines(content string, width float64, font FontResource, fontSize, lineHeight float64, ts Typesetter, wrap string) ([]TextLine, error) {
	if ts == nil {
		// 没有排版后端时按显式换行拆分，宽度按字号粗略估计。
		parts := strings.Split(content, "\n")
		out := make([]TextLine, 0, len(parts))
		for _, l := range parts {
			out = append(out, TextLine{
				Content: l,
				Width:   estimateTextWidth(l, fontSize),
				Height:  fontSize,
			})
		}
		return out, nil
	}
	lines, err := ts.LayoutLines(content, width, font, fontSize, lineHeight, wrap)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		lines = []TextLine{{Content: "", Width: 0, Height: fontSize}}
	}
	return lines, nil
}

// estimateTextWidth 在没有字体度量时用平均字宽估算。
func estimateTextWidth(content string, fontSize float64) float64 {
	return float64(len([]rune(content))) * fontSize * 0.5
}
