// Package dom 是渲染产物的可视树：模板生成它，导出流水线克隆它。
package dom

import (
	"slices"
	"strings"
)

// Node 是可视树中的一个元素。Text 是元素自身的文字内容，排在子元素之前。
type Node struct {
	Tag      string
	ID       string
	Classes  []string
	Text     string
	Style    Style
	Children []*Node

	parent *Node
}

// El 创建带 class 的元素。
func El(tag string, classes ...string) *Node {
	return &Node{Tag: tag, Classes: classes}
}

// TextEl 创建只含文字的元素。
func TextEl(tag, text string, classes ...string) *Node {
	return &Node{Tag: tag, Text: text, Classes: classes}
}

// WithID 设置元素 id。
func (n *Node) WithID(id string) *Node {
	n.ID = id
	return n
}

// Set 设置内联样式属性。
func (n *Node) Set(prop, value string) *Node {
	if n.Style == nil {
		n.Style = Style{}
	}
	n.Style[prop] = value
	return n
}

// Append 追加子元素，nil 会被忽略，便于模板按条件拼接。
func (n *Node) Append(children ...*Node) *Node {
	for _, c := range children {
		if c == nil {
			continue
		}
		if c.parent != nil {
			c.parent.Remove(c)
		}
		c.parent = n
		n.Children = append(n.Children, c)
	}
	return n
}

// Remove 从子元素中移除 child，返回是否找到。
func (n *Node) Remove(child *Node) bool {
	i := slices.Index(n.Children, child)
	if i < 0 {
		return false
	}
	n.Children = slices.Delete(n.Children, i, i+1)
	child.parent = nil
	return true
}

// Parent 返回父元素，游离节点返回 nil。
func (n *Node) Parent() *Node { return n.parent }

// HasClass 判断元素是否带有指定 class。
func (n *Node) HasClass(class string) bool {
	return slices.Contains(n.Classes, class)
}

// Walk 先序遍历子树；fn 返回 false 时跳过该节点的子元素。
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Find 返回先序遍历中第一个满足 pred 的节点。
func (n *Node) Find(pred func(*Node) bool) *Node {
	var found *Node
	n.Walk(func(x *Node) bool {
		if found != nil {
			return false
		}
		if pred(x) {
			found = x
			return false
		}
		return true
	})
	return found
}

// FindAll 返回所有满足 pred 的节点，按文档顺序。
func (n *Node) FindAll(pred func(*Node) bool) []*Node {
	var out []*Node
	n.Walk(func(x *Node) bool {
		if pred(x) {
			out = append(out, x)
		}
		return true
	})
	return out
}

func (n *Node) ByClass(class string) []*Node {
	return n.FindAll(func(x *Node) bool { return x.HasClass(class) })
}

func (n *Node) ByID(id string) *Node {
	return n.Find(func(x *Node) bool { return x.ID == id })
}

// TextContent 拼接子树中所有文字，元素之间以空格分隔。
func (n *Node) TextContent() string {
	var parts []string
	n.Walk(func(x *Node) bool {
		if t := strings.TrimSpace(x.Text); t != "" {
			parts = append(parts, t)
		}
		return true
	})
	return strings.Join(parts, " ")
}

// Clone 深拷贝子树。副本是游离的，不与原树共享任何样式表或切片。
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{
		Tag:     n.Tag,
		ID:      n.ID,
		Classes: slices.Clone(n.Classes),
		Text:    n.Text,
		Style:   n.Style.Clone(),
	}
	for _, child := range n.Children {
		cc := child.Clone()
		cc.parent = c
		c.Children = append(c.Children, cc)
	}
	return c
}

// Equal 比较两棵树的结构与内容（标签、id、class、文字、内联样式）。
func Equal(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Tag != b.Tag || a.ID != b.ID || a.Text != b.Text ||
		!slices.Equal(a.Classes, b.Classes) || !a.Style.Equal(b.Style) ||
		len(a.Children) != len(b.Children) {
		return false
	}
	for i := range a.Children {
		if !Equal(a.Children[i], b.Children[i]) {
			return false
		}
	}
	return true
}
