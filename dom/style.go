package dom

import (
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Style 是属性名到取值的映射。
type Style map[string]string

func (s Style) Clone() Style {
	if s == nil {
		return nil
	}
	return maps.Clone(s)
}

func (s Style) Equal(o Style) bool {
	return maps.Equal(s, o)
}

// Keys 返回排序后的属性名，保证输出稳定。
func (s Style) Keys() []string {
	return slices.Sorted(maps.Keys(s))
}

// Get 返回属性值，缺失时返回 def。
func (s Style) Get(prop, def string) string {
	if v, ok := s[prop]; ok && v != "" {
		return v
	}
	return def
}

// Inherited 列出沿父链继承的属性。
var Inherited = []string{
	"font-family",
	"font-size",
	"font-weight",
	"font-style",
	"color",
	"line-height",
	"text-align",
	"text-transform",
	"white-space",
}

// RootDefaults 是根元素的初始值。
var RootDefaults = Style{
	"font-family":    "sans",
	"font-size":      "12pt",
	"font-weight":    "normal",
	"font-style":     "normal",
	"color":          "#000000",
	"line-height":    "1.3",
	"text-align":     "left",
	"text-transform": "none",
	"white-space":    "normal",
}

var tagDefaults = map[string]Style{
	"h1":     {"font-size": "2em", "font-weight": "bold"},
	"h2":     {"font-size": "1.5em", "font-weight": "bold"},
	"h3":     {"font-size": "1.17em", "font-weight": "bold"},
	"h4":     {"font-weight": "bold"},
	"strong": {"font-weight": "bold"},
	"b":      {"font-weight": "bold"},
	"em":     {"font-style": "italic"},
	"i":      {"font-style": "italic"},
	"small":  {"font-size": "0.83em"},
	"img":    {"display": "img"},
}

var boxSides = []string{"top", "right", "bottom", "left"}

// expand 把 padding / margin / border 简写展开为四个方向，方便层叠按属性覆盖。
func expand(dst Style, prop, value string) {
	switch prop {
	case "padding", "margin":
		parts := strings.Fields(value)
		if len(parts) == 0 {
			return
		}
		vals := boxValues(parts)
		for i, side := range boxSides {
			dst[prop+"-"+side] = vals[i]
		}
	case "border":
		for _, side := range boxSides {
			dst["border-"+side] = value
		}
	default:
		dst[prop] = value
	}
}

// boxValues 按 CSS 的 1~4 值规则补全上右下左。
func boxValues(parts []string) [4]string {
	switch len(parts) {
	case 1:
		return [4]string{parts[0], parts[0], parts[0], parts[0]}
	case 2:
		return [4]string{parts[0], parts[1], parts[0], parts[1]}
	case 3:
		return [4]string{parts[0], parts[1], parts[2], parts[1]}
	default:
		return [4]string{parts[0], parts[1], parts[2], parts[3]}
	}
}

// FontSizePt 把字号解析为 pt；em 与 % 相对于 parentPt。
func FontSizePt(value string, parentPt float64) (float64, bool) {
	v := strings.TrimSpace(strings.ToLower(value))
	unitFactor := map[string]float64{
		"pt": 1,
		"px": 0.75,
		"mm": 72 / 25.4,
		"cm": 720 / 25.4,
		"in": 72,
		"em": parentPt,
		"%":  parentPt / 100,
	}
	for _, unit := range []string{"pt", "px", "mm", "cm", "in", "em", "%"} {
		if strings.HasSuffix(v, unit) {
			num, err := strconv.ParseFloat(strings.TrimSuffix(v, unit), 64)
			if err != nil {
				return 0, false
			}
			return num * unitFactor[unit], true
		}
	}
	num, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return num, true
}

func formatPt(v float64) string {
	return strconv.FormatFloat(float64(int64(v*1000+0.5))/1000, 'f', -1, 64) + "pt"
}
