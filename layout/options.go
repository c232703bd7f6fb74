package layout

// BuildOptions 配置布局阶段所需的依赖，例如排版后端与页面尺寸。
type BuildOptions struct {
	Typesetter Typesetter
	// Width 为固定的物理宽度（mm），布局不依赖任何视口尺寸。
	Width float64
	// MinHeight 为最小高度（mm），通常是一页的高度，保证内容很短时也能铺满一页。
	MinHeight float64
	Meta      DocumentMeta
	Debug     DebugOptions
}

// DebugOptions 控制调试相关输出。
type DebugOptions struct {
	RawUnits bool // 在调试 JSON 中输出 debug.rawUnits 影子字段
}

// Typesetter 负责根据字体与宽度约束将文本拆成可绘制的行。
// 约定：宽度、字号、行高均为 mm；width <= 0 表示不限宽。
type Typesetter interface {
	LayoutLines(content string, width float64, font FontResource, fontSize float64, lineHeight float64, wrap string) ([]TextLine, error)
}
