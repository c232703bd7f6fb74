// Package templates 把简历记录渲染成可视树。每个模板是一条布局策略，
// 拥有自己的分区顺序、主题样式表与省略规则。
package templates

import (
	"embed"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/ByLCY/resumepress/dom"
	"github.com/ByLCY/resumepress/dsl"
	"github.com/ByLCY/resumepress/resume"
)

// ID 是模板标识。
type ID string

const (
	Classic      ID = "classic"
	Modern       ID = "modern"
	Minimal      ID = "minimal"
	Executive    ID = "executive"
	Professional ID = "professional"
	Creative     ID = "creative"
	Tech         ID = "tech"
	Academic     ID = "academic"
	Specialist   ID = "specialist"
	Analytics    ID = "analytics"

	// Default 是未知标识的兜底模板。
	Default = Classic
)

const (
	// RootID 是渲染根节点的 id，导出流水线靠它定位在线预览。
	RootID = "resume-preview"
	// PageClass 是渲染根节点的 class。
	PageClass = "resume-page"
	// ContainerClass 是模板容器的 class。
	ContainerClass = "resume-template-container"
)

// Template 是一条布局策略。
type Template struct {
	ID    ID
	Name  string
	theme string
	build func(resume.Resume) []*dom.Node
}

// Rendered 是一次渲染的结果：可视树与其样式表。
type Rendered struct {
	Template ID
	Root     *dom.Node
	Sheet    *dom.Stylesheet
}

//go:embed themes/*.css
var themeFS embed.FS

var registry = map[ID]Template{
	Classic:      {ID: Classic, Name: "Classic", theme: "classic", build: classic},
	Modern:       {ID: Modern, Name: "Modern", theme: "modern", build: modern},
	Minimal:      {ID: Minimal, Name: "Minimal", theme: "minimal", build: minimal},
	Executive:    {ID: Executive, Name: "Executive", theme: "executive", build: executive},
	Professional: {ID: Professional, Name: "Professional", theme: "professional", build: professional},
	Creative:     {ID: Creative, Name: "Creative", theme: "creative", build: creative},
	Academic:     {ID: Academic, Name: "Scholarly Impact", theme: "academic", build: academic},
	Specialist:   {ID: Specialist, Name: "Expert Authority", theme: "specialist", build: specialist},
	Analytics:    {ID: Analytics, Name: "Insight Matrix", theme: "analytics", build: analytics},
}

// aliases 把历史标识映射到现有模板。
var aliases = map[ID]ID{
	Tech: Modern,
}

// order 是模板列表的展示顺序。
var order = []ID{Classic, Modern, Minimal, Executive, Professional, Creative, Tech, Academic, Specialist, Analytics}

// IDs 以稳定顺序返回全部模板标识（含别名）。
func IDs() []ID { return slices.Clone(order) }

// Known 报告 id 是否是已知标识（含别名）。
func Known(id ID) bool {
	return slices.Contains(order, ID(strings.ToLower(strings.TrimSpace(string(id)))))
}

// Resolve 返回 id 对应的模板；未知标识返回默认模板，从不报错。
func Resolve(id ID) Template {
	key := ID(strings.ToLower(strings.TrimSpace(string(id))))
	if target, ok := aliases[key]; ok {
		key = target
	}
	if t, ok := registry[key]; ok {
		return t
	}
	return registry[Default]
}

// Render 用指定模板渲染简历。相同输入总是得到结构相同的树。
func Render(r resume.Resume, id ID) *Rendered {
	t := Resolve(id)
	container := dom.El("div", ContainerClass, string(t.ID)).Append(t.build(r)...)
	root := dom.El("div", PageClass).WithID(RootID).Append(container)
	return &Rendered{Template: t.ID, Root: root, Sheet: Sheet(t.ID)}
}

var (
	sheetsOnce sync.Once
	sheets     map[ID]*dom.Stylesheet
	sheetsErr  error
)

// Sheet 返回模板的样式表（基础样式 + 主题）。主题文件随二进制嵌入，解析失败属于编程错误。
func Sheet(id ID) *dom.Stylesheet {
	sheetsOnce.Do(func() { sheets, sheetsErr = loadSheets() })
	if sheetsErr != nil {
		panic(sheetsErr)
	}
	return sheets[Resolve(id).ID]
}

func loadSheets() (map[ID]*dom.Stylesheet, error) {
	base, err := compileTheme("base")
	if err != nil {
		return nil, err
	}
	out := make(map[ID]*dom.Stylesheet, len(registry))
	for id, t := range registry {
		theme, err := compileTheme(t.theme)
		if err != nil {
			return nil, err
		}
		out[id] = base.Merge(theme)
	}
	return out, nil
}

func compileTheme(name string) (*dom.Stylesheet, error) {
	path := "themes/" + name + ".css"
	data, err := themeFS.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取主题 %s 失败: %w", name, err)
	}
	sheet, err := dsl.Compile(path, string(data))
	if err != nil {
		return nil, fmt.Errorf("编译主题 %s 失败: %w", name, err)
	}
	return sheet, nil
}
