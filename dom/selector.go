package dom

import "sort"

// Compound 是一个复合选择器，例如 div.item#main。
type Compound struct {
	Universal bool
	Tag       string
	ID        string
	Classes   []string
}

func (c Compound) matches(n *Node) bool {
	if c.Tag != "" && c.Tag != n.Tag {
		return false
	}
	if c.ID != "" && c.ID != n.ID {
		return false
	}
	for _, cl := range c.Classes {
		if !n.HasClass(cl) {
			return false
		}
	}
	return true
}

// Selector 是用后代组合符连接的复合选择器链，最后一个匹配目标元素。
type Selector struct {
	Parts []Compound
}

// Specificity 按 id / class / 标签三级计算权重。
func (s Selector) Specificity() int {
	ids, classes, tags := 0, 0, 0
	for _, p := range s.Parts {
		if p.ID != "" {
			ids++
		}
		classes += len(p.Classes)
		if p.Tag != "" {
			tags++
		}
	}
	return ids*10000 + classes*100 + tags
}

// Matches 判断 n 是否匹配该选择器。
func (s Selector) Matches(n *Node) bool {
	if len(s.Parts) == 0 {
		return false
	}
	last := len(s.Parts) - 1
	if !s.Parts[last].matches(n) {
		return false
	}
	i := last - 1
	for anc := n.parent; anc != nil && i >= 0; anc = anc.parent {
		if s.Parts[i].matches(anc) {
			i--
		}
	}
	return i < 0
}

// Declaration 是一条属性声明。
type Declaration struct {
	Property string
	Value    string
}

// Rule 是选择器组加声明块。
type Rule struct {
	Selectors    []Selector
	Declarations []Declaration
}

// Stylesheet 是有序的规则列表，后出现的同权重规则覆盖先出现的。
type Stylesheet struct {
	Rules []Rule
}

// Merge 返回两个样式表按顺序拼接后的新样式表。
func (s *Stylesheet) Merge(other *Stylesheet) *Stylesheet {
	out := &Stylesheet{}
	if s != nil {
		out.Rules = append(out.Rules, s.Rules...)
	}
	if other != nil {
		out.Rules = append(out.Rules, other.Rules...)
	}
	return out
}

type match struct {
	spec  int
	order int
	decls []Declaration
}

// matching 返回 n 命中的声明，已按权重与出现顺序排好。
func (s *Stylesheet) matching(n *Node) []match {
	if s == nil {
		return nil
	}
	var out []match
	for i, r := range s.Rules {
		best := -1
		for _, sel := range r.Selectors {
			if sel.Matches(n) {
				best = max(best, sel.Specificity())
			}
		}
		if best >= 0 {
			out = append(out, match{spec: best, order: i, decls: r.Declarations})
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		if out[a].spec != out[b].spec {
			return out[a].spec < out[b].spec
		}
		return out[a].order < out[b].order
	})
	return out
}
