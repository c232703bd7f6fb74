// Package fonts 提供内置字体：sans / mono 来自 Go 字体，serif 来自 Latin Modern。
package fonts

import (
	"fmt"
	"strings"

	"github.com/go-fonts/latin-modern/lmroman10bold"
	"github.com/go-fonts/latin-modern/lmroman10bolditalic"
	"github.com/go-fonts/latin-modern/lmroman10italic"
	"github.com/go-fonts/latin-modern/lmroman10regular"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
)

// Families 列出内置字体族。
var Families = []string{"sans", "serif", "mono"}

// Styles 列出每个字体族提供的字形。
var Styles = []string{"regular", "bold", "italic", "bolditalic"}

var builtin = map[string]map[string][]byte{
	"sans": {
		"regular":    goregular.TTF,
		"bold":       gobold.TTF,
		"italic":     goitalic.TTF,
		"bolditalic": gobolditalic.TTF,
	},
	"serif": {
		"regular":    lmroman10regular.TTF,
		"bold":       lmroman10bold.TTF,
		"italic":     lmroman10italic.TTF,
		"bolditalic": lmroman10bolditalic.TTF,
	},
	"mono": {
		"regular":    gomono.TTF,
		"bold":       gomonobold.TTF,
		"italic":     gomonoitalic.TTF,
		"bolditalic": gomonobolditalic.TTF,
	},
}

// Load 返回指定字体族与字形的字体数据。
func Load(family, style string) ([]byte, error) {
	fam, ok := builtin[strings.ToLower(family)]
	if !ok {
		return nil, fmt.Errorf("未知字体族: %s", family)
	}
	data, ok := fam[strings.ToLower(style)]
	if !ok {
		return nil, fmt.Errorf("字体族 %s 不支持字形 %s", family, style)
	}
	return data, nil
}

// Fallback 返回兜底字体（sans regular）。
func Fallback() []byte { return goregular.TTF }
