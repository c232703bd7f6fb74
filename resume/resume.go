// Package resume 定义简历文档模型：渲染阶段唯一的数据来源。
//
// 模型本身不包含排版逻辑，只有数据与少量不变式辅助函数。
package resume

import "context"

// PersonalInfo 保存个人信息。所有字段都允许为空，模板遇到空字段时只省略对应行。
type PersonalInfo struct {
	Name     string `json:"name" yaml:"name"`
	Title    string `json:"title" yaml:"title"`
	Email    string `json:"email" yaml:"email"`
	Phone    string `json:"phone" yaml:"phone"`
	Location string `json:"location" yaml:"location"`
	Website  string `json:"website,omitempty" yaml:"website,omitempty"`
	Summary  string `json:"summary" yaml:"summary"`
	// Photo 为可选头像引用：http(s) URL、file: 路径或 data: URI。
	Photo string `json:"photo,omitempty" yaml:"photo,omitempty"`
}

// ExperienceEntry 表示一段工作经历。
type ExperienceEntry struct {
	ID          string `json:"id" yaml:"id"`
	Company     string `json:"company" yaml:"company"`
	Position    string `json:"position" yaml:"position"`
	StartDate   string `json:"startDate" yaml:"startDate"`
	EndDate     string `json:"endDate" yaml:"endDate"`
	Current     bool   `json:"current" yaml:"current"`
	Description string `json:"description" yaml:"description"`
}

// Period 返回该经历的时间段，Current 为 true 时结束日期被丢弃。
func (e ExperienceEntry) Period() Period {
	return NewPeriod(e.StartDate, e.EndDate, e.Current)
}

// EducationEntry 表示一段教育经历。
type EducationEntry struct {
	ID          string `json:"id" yaml:"id"`
	Institution string `json:"institution" yaml:"institution"`
	Degree      string `json:"degree" yaml:"degree"`
	Field       string `json:"field" yaml:"field"`
	StartDate   string `json:"startDate" yaml:"startDate"`
	EndDate     string `json:"endDate" yaml:"endDate"`
	Current     bool   `json:"current" yaml:"current"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Period 返回该教育经历的时间段。
func (e EducationEntry) Period() Period {
	return NewPeriod(e.StartDate, e.EndDate, e.Current)
}

// SkillEntry 表示一项技能。Level 为 nil 表示不显示熟练度，而不是 0。
type SkillEntry struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Level *int   `json:"level,omitempty" yaml:"level,omitempty" validate:"omitempty,min=0,max=100"`
}

// HasLevel 报告该技能是否带有熟练度。
func (s SkillEntry) HasLevel() bool { return s.Level != nil }

// Resume 是完整的简历记录。集合的顺序即展示顺序，任何环节都不排序。
type Resume struct {
	PersonalInfo PersonalInfo      `json:"personalInfo" yaml:"personalInfo"`
	Experience   []ExperienceEntry `json:"experience" yaml:"experience" validate:"dive"`
	Education    []EducationEntry  `json:"education" yaml:"education" validate:"dive"`
	Skills       []SkillEntry      `json:"skills" yaml:"skills" validate:"dive"`
}

// Period 是经过当前职位不变式处理后的时间段。
type Period struct {
	Start   string
	End     string
	Current bool
}

// NewPeriod 构造时间段；current 为 true 时忽略 end，避免展示过期的结束日期。
func NewPeriod(start, end string, current bool) Period {
	return Period{Start: start, End: EndDateShown(current, end), Current: current}
}

// EndDateShown 返回应当展示的结束日期；当前职位永远不展示结束日期。
func EndDateShown(current bool, end string) string {
	if current {
		return ""
	}
	return end
}

// Level 返回指向 v 的指针，便于构造带熟练度的技能。
func Level(v int) *int { return &v }

// Suggester 是外部 AI 建议服务的边界：输入当前简历，返回一份完整的替换记录。
// 调用方整体替换，不做校验或比对。
type Suggester interface {
	Suggest(ctx context.Context, current Resume) (Resume, error)
}
