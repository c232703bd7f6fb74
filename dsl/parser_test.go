package dsl_test

import (
	"strings"
	"testing"

	"github.com/ByLCY/resumepress/dom"
	"github.com/ByLCY/resumepress/dsl"
)

const sampleSheet = `
/* 主题 */
#resume-preview { font-family: "Georgia", serif; padding: 12mm 14mm }
h1, .name {
  font-size: 24pt;
  color: #2563eb;
}
.sidebar h2 { text-transform: uppercase; --bar-color: #fff }
div.item#first.active { margin: -1.5mm 0 }
* { line-height: 1.4 }
`

func TestParseSheet(t *testing.T) {
	sheet, err := dsl.ParseString(sampleSheet)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(sheet.Rules) != 5 {
		t.Fatalf("expected 5 rules, got %d", len(sheet.Rules))
	}

	first := sheet.Rules[0]
	if got := first.Declarations[0].Value(); got != "Georgia, serif" {
		t.Fatalf("font-family 取值错误: %q", got)
	}
	if got := first.Declarations[1].Value(); got != "12mm 14mm" {
		t.Fatalf("padding 取值错误: %q", got)
	}

	if n := len(sheet.Rules[1].Selectors); n != 2 {
		t.Fatalf("expected 2 selectors in group, got %d", n)
	}

	desc := sheet.Rules[2].Selectors[0].Compounds
	if len(desc) != 2 || desc[0].Classes[0] != "sidebar" || desc[1].Tag != "h2" {
		t.Fatalf("后代选择器解析错误: %+v", desc)
	}
	if got := sheet.Rules[2].Declarations[1].Property; got != "--bar-color" {
		t.Fatalf("自定义属性名错误: %q", got)
	}

	compound := sheet.Rules[3].Selectors[0].Compounds
	if len(compound) != 1 {
		t.Fatalf("复合选择器不应被拆开: %+v", compound)
	}
	c := compound[0]
	if c.Tag != "div" || c.ID != "first" || strings.Join(c.Classes, ",") != "item,active" {
		t.Fatalf("复合选择器字段错误: %+v", c)
	}
	if got := sheet.Rules[3].Declarations[0].Value(); got != "-1.5mm 0" {
		t.Fatalf("负数取值错误: %q", got)
	}

	if !sheet.Rules[4].Selectors[0].Compounds[0].Universal {
		t.Fatalf("expected universal selector")
	}
}

func TestCompileToStylesheet(t *testing.T) {
	ss, err := dsl.Compile("theme.css", `.Skill { Color: #333 } h2 { font-weight: bold }`)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	if len(ss.Rules) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(ss.Rules))
	}
	if d := ss.Rules[0].Declarations[0]; d.Property != "color" || d.Value != "#333" {
		t.Fatalf("unexpected declaration: %+v", d)
	}

	root := dom.El("div", "Skill")
	doc := dom.NewDocument(ss)
	doc.Mount(root)
	if got := doc.Computed(root)["color"]; got != "#333" {
		t.Fatalf("stylesheet not applied, color=%q", got)
	}
}

func TestParseErrorCarriesPosition(t *testing.T) {
	_, err := dsl.Compile("broken.css", "h1 { color: red\n")
	if err == nil {
		t.Fatalf("expected parse error")
	}
	if !strings.Contains(err.Error(), "broken.css") {
		t.Fatalf("错误信息缺少文件位置: %v", err)
	}
}
