package layout

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ByLCY/resumepress/dom"
)

// defaultTextColor 与浏览器默认黑色略有区别，和旧版渲染保持一致。
var defaultTextColor = RGB(30, 30, 30)

var namedColors = map[string]Color{
	"black": RGB(0, 0, 0),
	"white": RGB(255, 255, 255),
	"gray":  RGB(128, 128, 128),
	"grey":  RGB(128, 128, 128),
	"red":   RGB(255, 0, 0),
	"green": RGB(0, 128, 0),
	"blue":  RGB(0, 0, 255),
}

// parseColor 支持 #rgb、#rrggbb、#rrggbbaa 以及少量颜色名。
// transparent / none 返回 ok=false。
func parseColor(value string) (Color, bool, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	switch v {
	case "", "transparent", "none", "initial":
		return Color{}, false, nil
	}
	if c, ok := namedColors[v]; ok {
		return c, true, nil
	}
	if !strings.HasPrefix(v, "#") {
		return Color{}, false, fmt.Errorf("颜色值 %s 无法解析", value)
	}
	v = strings.TrimPrefix(v, "#")
	switch len(v) {
	case 3:
		return RGB(
			mustHex(strings.Repeat(string(v[0]), 2)),
			mustHex(strings.Repeat(string(v[1]), 2)),
			mustHex(strings.Repeat(string(v[2]), 2)),
		), true, nil
	case 6:
		return RGB(mustHex(v[0:2]), mustHex(v[2:4]), mustHex(v[4:6])), true, nil
	case 8:
		c := RGB(mustHex(v[0:2]), mustHex(v[2:4]), mustHex(v[4:6]))
		c.A = mustHex(v[6:8])
		return c, true, nil
	default:
		return Color{}, false, fmt.Errorf("颜色值 #%s 无法解析", v)
	}
}

func mustHex(s string) int {
	v, _ := strconv.ParseInt(s, 16, 64)
	return int(v)
}

// resolveColor 解析文字颜色，无法解析时退回默认色。
func resolveColor(value string) Color {
	c, ok, err := parseColor(value)
	if err != nil || !ok {
		return defaultTextColor
	}
	return c
}

// optionalColor 解析背景等可缺省的颜色。
func optionalColor(value string) *Color {
	c, ok, err := parseColor(value)
	if err != nil || !ok || c.A == 0 {
		return nil
	}
	return &c
}

const (
	sideTop = iota
	sideRight
	sideBottom
	sideLeft
)

var sideNames = [4]string{"top", "right", "bottom", "left"}

type border struct {
	width  float64
	color  Color
	dashed bool
}

func (b border) visible() bool { return b.width > 0 && b.color.A > 0 }

// boxStyle 是一个元素解析后的盒模型参数（mm）。
type boxStyle struct {
	display   string
	fontSize  float64
	margin    [4]float64
	padding   [4]float64
	border    [4]border
	bg        *Color
	accent    *Color
	radius    float64
	width     *Length
	height    float64
	minHeight float64
	gap       float64
	justify   string
	align     string
	fill      float64
}

func (b boxStyle) horizontal() float64 {
	return b.margin[sideLeft] + b.margin[sideRight] + b.inset(sideLeft) + b.inset(sideRight)
}

// inset 返回某一侧的边框与内边距之和。
func (b boxStyle) inset(side int) float64 {
	return b.border[side].width + b.padding[side]
}

// uniformBorder 判断四边边框是否一致，一致时可以直接描边圆角矩形。
func (b boxStyle) uniformBorder() bool {
	first := b.border[0]
	if !first.visible() || first.dashed {
		return false
	}
	for _, s := range b.border[1:] {
		if s != first {
			return false
		}
	}
	return true
}

// fontSizeMM 从计算样式取字号（pt 字符串）并换算为 mm。
func fontSizeMM(st dom.Style) float64 {
	pt, ok := dom.FontSizePt(st.Get("font-size", "12pt"), 12)
	if !ok || pt <= 0 {
		pt = 12
	}
	return pt * PtToMm
}

// parseLength 把长度解析为 mm；auto 或无法识别时返回 0。
func parseLength(value string, fontSize, reference float64) float64 {
	l, ok := ParseRawLengthStr(value)
	if !ok {
		return 0
	}
	return l.Resolve(fontSize, reference)
}

func parseBorder(value string, fontSize float64) border {
	v := strings.TrimSpace(strings.ToLower(value))
	if v == "" || v == "none" || v == "0" {
		return border{}
	}
	b := border{width: 1 * PxToMm, color: RGB(229, 231, 235)}
	for _, part := range strings.Fields(v) {
		switch part {
		case "solid":
		case "dashed", "dotted":
			b.dashed = true
		default:
			if strings.HasPrefix(part, "#") || namedColors[part] != (Color{}) {
				if c, ok, err := parseColor(part); err == nil && ok {
					b.color = c
				}
				continue
			}
			if l, ok := ParseRawLengthStr(part); ok {
				b.width = l.Resolve(fontSize, 0)
			}
		}
	}
	return b
}

func resolveBox(st dom.Style, reference float64) boxStyle {
	fs := fontSizeMM(st)
	bs := boxStyle{
		display:  st.Get("display", "block"),
		fontSize: fs,
		bg:       optionalColor(st["background-color"]),
		accent:   optionalColor(st["--bar-color"]),
		radius:   parseLength(st["border-radius"], fs, 0),
		gap:      parseLength(st["gap"], fs, reference),
		justify:  st.Get("justify-content", ""),
		align:    st.Get("align-items", ""),
	}
	for i, side := range sideNames {
		bs.margin[i] = parseLength(st["margin-"+side], fs, reference)
		bs.padding[i] = parseLength(st["padding-"+side], fs, reference)
		bs.border[i] = parseBorder(st["border-"+side], fs)
	}
	if l, ok := ParseRawLengthStr(st["width"]); ok {
		bs.width = &l
	}
	bs.height = parseLength(st["height"], fs, 0)
	bs.minHeight = parseLength(st["min-height"], fs, 0)
	if l, ok := ParseRawLengthStr(st["--fill"]); ok {
		bs.fill = min(max(l.Value, 0), 100)
	}
	return bs
}

// textStyle 是文字相关的计算结果。
type textStyle struct {
	font       FontResource
	size       float64
	lineHeight float64
	spec       LineHeightSpec
	color      Color
	align      string
	transform  string
	wrap       string
}

func resolveText(st dom.Style) textStyle {
	size := fontSizeMM(st)
	spec := ParseLineHeight(st.Get("line-height", "normal"))
	ts := textStyle{
		font:       resolveFont(st),
		size:       size,
		lineHeight: spec.Resolve(size),
		spec:       spec,
		color:      resolveColor(st["color"]),
		transform:  strings.ToLower(st.Get("text-transform", "none")),
		wrap:       "anywhere",
	}
	switch v := strings.ToLower(st.Get("text-align", "left")); v {
	case "center", "right":
		ts.align = v
	case "end":
		ts.align = "right"
	}
	if strings.EqualFold(st["white-space"], "nowrap") {
		ts.wrap = "nowrap"
	}
	return ts
}

// resolveFont 把 font-family / font-weight / font-style 映射到内置字体。
func resolveFont(st dom.Style) FontResource {
	family := fontFamilyKind(st.Get("font-family", "sans"))
	bold := isBold(st.Get("font-weight", "normal"))
	italic := false
	switch strings.ToLower(st["font-style"]) {
	case "italic", "oblique":
		italic = true
	}
	style := "regular"
	switch {
	case bold && italic:
		style = "bolditalic"
	case bold:
		style = "bold"
	case italic:
		style = "italic"
	}
	return FontResource{Name: family + "-" + style, Family: family, Style: style}
}

func fontFamilyKind(value string) string {
	for _, name := range strings.Split(strings.ToLower(value), ",") {
		name = strings.Trim(strings.TrimSpace(name), `"'`)
		switch {
		case strings.Contains(name, "mono"), strings.Contains(name, "courier"), strings.Contains(name, "consolas"):
			return "mono"
		case strings.Contains(name, "sans"), name == "helvetica", name == "arial", name == "inter", name == "system-ui":
			return "sans"
		case strings.Contains(name, "serif"), name == "georgia", strings.Contains(name, "times"),
			name == "garamond", name == "cambria", strings.Contains(name, "latin modern"):
			return "serif"
		}
	}
	return "sans"
}

func isBold(weight string) bool {
	w := strings.ToLower(strings.TrimSpace(weight))
	switch w {
	case "bold", "bolder":
		return true
	}
	n, err := strconv.Atoi(w)
	return err == nil && n >= 600
}

func applyTransform(content, transform string) string {
	switch transform {
	case "uppercase":
		return strings.ToUpper(content)
	case "lowercase":
		return strings.ToLower(content)
	case "capitalize":
		words := strings.Fields(content)
		for i, w := range words {
			r := []rune(w)
			words[i] = strings.ToUpper(string(r[0])) + string(r[1:])
		}
		return strings.Join(words, " ")
	default:
		return content
	}
}

func alignOffset(container, width float64, align string) float64 {
	if container <= width {
		return 0
	}
	switch strings.ToLower(align) {
	case "center", "middle":
		return (container - width) / 2
	case "right", "end", "flex-end":
		return container - width
	default:
		return 0
	}
}
