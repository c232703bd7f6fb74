// Package snapshot 把离屏克隆的计算样式写成内联样式，
// 使克隆在脱离文档、失去样式表之后仍能按原样排版。
package snapshot

import (
	"errors"
	"fmt"

	"github.com/flanksource/commons/logger"

	"github.com/ByLCY/resumepress/dom"
)

var (
	// ErrLiveNode 表示试图冻结在线预览本身；冻结只允许作用于克隆。
	ErrLiveNode = errors.New("不能冻结在线预览，只能冻结克隆")
	// ErrDetached 表示克隆尚未挂载到文档，拿不到样式表。
	ErrDetached = errors.New("克隆未挂载到文档")
)

// Properties 是冻结时写入内联样式的外观属性。
var Properties = []string{
	"display",
	"width", "height", "min-height",
	"padding-top", "padding-right", "padding-bottom", "padding-left",
	"margin-top", "margin-right", "margin-bottom", "margin-left",
	"border-top", "border-right", "border-bottom", "border-left",
	"border-radius",
	"background-color",
	"box-shadow", "transform",
	"color",
	"font-family", "font-size", "font-weight", "font-style",
	"line-height", "text-align", "text-transform", "white-space",
	"justify-content", "align-items", "gap",
	"--fill", "--bar-color",
	"src",
}

// Freeze 对 clone 子树的每个元素（先序）写入计算样式，返回冻结的节点数。
// clone 必须已挂载在 doc 的离屏容器里。
func Freeze(doc *dom.Document, clone *dom.Node) (int, error) {
	if doc == nil || clone == nil {
		return 0, errors.New("文档或克隆为空")
	}
	if isLive(doc, clone) {
		return 0, ErrLiveNode
	}
	if !doc.Contains(clone) {
		return 0, fmt.Errorf("冻结 %q: %w", clone.ID, ErrDetached)
	}

	// 先全部计算再写入，避免写入过程影响后续节点的层叠。
	var nodes []*dom.Node
	var computed []dom.Style
	clone.Walk(func(n *dom.Node) bool {
		nodes = append(nodes, n)
		computed = append(computed, doc.Computed(n))
		return true
	})
	for i, n := range nodes {
		apply(n, computed[i])
	}
	logger.Debugf("冻结样式: %d 个节点", len(nodes))
	return len(nodes), nil
}

func apply(n *dom.Node, st dom.Style) {
	for _, p := range Properties {
		if v, ok := st[p]; ok && v != "" {
			n.Set(p, v)
		}
	}
}

func isLive(doc *dom.Document, n *dom.Node) bool {
	live := doc.Live()
	if live == nil {
		return false
	}
	for x := n; x != nil; x = x.Parent() {
		if x == live {
			return true
		}
	}
	return false
}
