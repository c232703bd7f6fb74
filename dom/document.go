package dom

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

// ErrNotAttached 表示容器不在文档中。
var ErrNotAttached = errors.New("容器未挂载到文档")

// Document 是活动的样式上下文：一个 body 容器加当前样式表。
// 离屏容器通过 Attach/Detach 成对挂载，Containers 用于泄漏检查。
type Document struct {
	Body  *Node
	Sheet *Stylesheet

	mu         sync.Mutex
	live       *Node
	containers []*Node
}

// NewDocument 创建一个空文档。
func NewDocument(sheet *Stylesheet) *Document {
	return &Document{Body: El("body"), Sheet: sheet}
}

// Mount 把 n 作为在线预览挂到 body，替换之前的预览。
func (d *Document) Mount(n *Node) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.live != nil {
		d.Body.Remove(d.live)
	}
	d.live = n
	if n != nil {
		d.Body.Children = slices.Insert(d.Body.Children, 0, n)
		n.parent = d.Body
	}
}

// Live 返回当前在线预览节点。
func (d *Document) Live() *Node {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.live
}

// SetSheet 切换样式表（模板切换时调用）。
func (d *Document) SetSheet(sheet *Stylesheet) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Sheet = sheet
}

// Attach 把离屏容器挂到 body 末尾。
func (d *Document) Attach(container *Node) error {
	if container == nil {
		return errors.New("容器为空")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if slices.Contains(d.containers, container) {
		return fmt.Errorf("容器 %q 已挂载", container.ID)
	}
	d.Body.Append(container)
	d.containers = append(d.containers, container)
	return nil
}

// Detach 移除由 Attach 挂载的容器。
func (d *Document) Detach(container *Node) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	i := slices.Index(d.containers, container)
	if i < 0 {
		return ErrNotAttached
	}
	d.containers = slices.Delete(d.containers, i, i+1)
	d.Body.Remove(container)
	return nil
}

// Containers 返回当前挂载的离屏容器快照。
func (d *Document) Containers() []*Node {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.containers)
}

// ElementByID 在整个文档中按 id 查找元素。
func (d *Document) ElementByID(id string) *Node {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.Body.ByID(id)
}

// Contains 判断 n 是否位于文档树内。
func (d *Document) Contains(n *Node) bool {
	for x := n; x != nil; x = x.parent {
		if x == d.Body {
			return true
		}
	}
	return false
}

// Computed 返回 n 的计算样式。游离节点拿不到样式表，只能看到内联样式。
func (d *Document) Computed(n *Node) Style {
	d.mu.Lock()
	sheet := d.Sheet
	d.mu.Unlock()
	if !d.Contains(n) {
		return Inline(n)
	}
	return resolve(n, sheet, map[*Node]Style{})
}

// Inline 返回不依赖样式表的样式：默认值、内联样式与父链继承。
func Inline(n *Node) Style {
	return resolve(n, nil, map[*Node]Style{})
}

func resolve(n *Node, sheet *Stylesheet, memo map[*Node]Style) Style {
	if s, ok := memo[n]; ok {
		return s
	}
	parent := RootDefaults
	if n.parent != nil {
		parent = resolve(n.parent, sheet, memo)
	}
	out := cascade(n, sheet, parent)
	memo[n] = out
	return out
}

// Cascade 在已知父元素样式的前提下计算 n 的内联样式，供自上而下的遍历使用。
// parent 为 nil 时使用根元素初始值。
func Cascade(n *Node, parent Style) Style {
	if parent == nil {
		parent = RootDefaults
	}
	return cascade(n, nil, parent)
}

func cascade(n *Node, sheet *Stylesheet, parent Style) Style {
	out := Style{}
	for _, p := range Inherited {
		if v, ok := parent[p]; ok {
			out[p] = v
		}
	}
	for k, v := range tagDefaults[n.Tag] {
		expand(out, k, v)
	}
	for _, m := range sheet.matching(n) {
		for _, decl := range m.decls {
			expand(out, decl.Property, decl.Value)
		}
	}
	for _, k := range n.Style.Keys() {
		expand(out, k, n.Style[k])
	}
	for k, v := range out {
		if v == "inherit" {
			if pv, ok := parent[k]; ok {
				out[k] = pv
			} else {
				delete(out, k)
			}
		}
	}
	parentPt, _ := FontSizePt(parent["font-size"], 12)
	if pt, ok := FontSizePt(out["font-size"], parentPt); ok {
		out["font-size"] = formatPt(pt)
	} else {
		out["font-size"] = formatPt(parentPt)
	}
	return out
}
