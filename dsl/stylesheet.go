package dsl

import (
	"fmt"
	"strings"

	"github.com/ByLCY/resumepress/dom"
)

// ToStylesheet 把语法树转换为 dom.Stylesheet，属性名统一为小写。
func ToStylesheet(sheet *Sheet) (*dom.Stylesheet, error) {
	out := &dom.Stylesheet{}
	if sheet == nil {
		return out, nil
	}
	for _, r := range sheet.Rules {
		rule := dom.Rule{}
		for _, s := range r.Selectors {
			rule.Selectors = append(rule.Selectors, dom.Selector{Parts: s.Compounds})
		}
		for _, d := range r.Declarations {
			value := d.Value()
			if value == "" {
				return nil, fmt.Errorf("%s: 属性 %s 缺少取值", d.Pos, d.Property)
			}
			rule.Declarations = append(rule.Declarations, dom.Declaration{
				Property: strings.ToLower(d.Property),
				Value:    value,
			})
		}
		out.Rules = append(out.Rules, rule)
	}
	return out, nil
}

// Compile 解析并转换样式表。
func Compile(name, input string) (*dom.Stylesheet, error) {
	ast, err := ParseNamed(name, input)
	if err != nil {
		return nil, fmt.Errorf("解析样式表失败: %w", err)
	}
	return ToStylesheet(ast)
}
