package templates

import (
	"fmt"
	"strings"
	"time"

	"github.com/ByLCY/resumepress/dom"
	"github.com/ByLCY/resumepress/resume"
)

// Present 是当前职位/在读经历的结束标记。
const Present = "Present"

// RangeSep 连接起止日期（en dash）。
const RangeSep = " – "

// FormatDate 把 "2019-05" 格式化为 "May 2019"；只有年份时原样返回，无法解析的输入原样展示。
func FormatDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, layout := range []string{"2006-01", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("Jan 2006")
		}
	}
	return s
}

// DateRange 格式化时间段；当前经历总是以 Present 结尾，不会展示过期的结束日期。
func DateRange(p resume.Period) string {
	start := FormatDate(p.Start)
	end := FormatDate(p.End)
	if p.Current {
		end = Present
	}
	switch {
	case start != "" && end != "":
		return start + RangeSep + end
	case start != "":
		return start
	default:
		return end
	}
}

func div(classes ...string) *dom.Node { return dom.El("div", classes...) }

// txt 创建文字元素，空白文字返回 nil（由 Append 忽略）。
func txt(tag, s string, classes ...string) *dom.Node {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return dom.TextEl(tag, strings.TrimSpace(s), classes...)
}

func compact(nodes []*dom.Node) []*dom.Node {
	out := nodes[:0:0]
	for _, n := range nodes {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}

// section 生成带标题的分区；内容全部为空时整个分区省略。
func section(title string, body ...*dom.Node) *dom.Node {
	return sectionWith(txt("h2", title), body...)
}

func sectionWith(heading *dom.Node, body ...*dom.Node) *dom.Node {
	body = compact(body)
	if len(body) == 0 {
		return nil
	}
	return div("section").Append(heading).Append(body...)
}

func each[T any](items []T, fn func(int, T) *dom.Node) []*dom.Node {
	out := make([]*dom.Node, 0, len(items))
	for i, it := range items {
		out = append(out, fn(i, it))
	}
	return out
}

func dates(p resume.Period) *dom.Node { return txt("span", DateRange(p), "dates") }

func description(s string) *dom.Node { return txt("p", s, "description") }

// degreeLine 拼接 "学位 in 专业"，缺失的一侧省略。
func degreeLine(e resume.EducationEntry) string {
	degree, field := strings.TrimSpace(e.Degree), strings.TrimSpace(e.Field)
	switch {
	case degree != "" && field != "":
		return degree + " in " + field
	case degree != "":
		return degree
	default:
		return field
	}
}

type contact struct {
	Label string
	Value string
}

// contacts 返回非空的联系方式，顺序固定为 email、phone、location、website。
func contacts(pi resume.PersonalInfo) []contact {
	all := []contact{
		{"Email", pi.Email},
		{"Phone", pi.Phone},
		{"Location", pi.Location},
		{"Website", pi.Website},
	}
	out := all[:0:0]
	for _, c := range all {
		if v := strings.TrimSpace(c.Value); v != "" {
			out = append(out, contact{Label: c.Label, Value: v})
		}
	}
	return out
}

// bulletContacts 以 "•" 分隔联系方式。
func bulletContacts(pi resume.PersonalInfo) *dom.Node {
	items := contacts(pi)
	if len(items) == 0 {
		return nil
	}
	row := div("contacts")
	for i, c := range items {
		text := c.Value
		if i > 0 {
			text = "• " + text
		}
		row.Append(txt("span", text, "contact"))
	}
	return row
}

// listContacts 每行一个联系方式。
func listContacts(pi resume.PersonalInfo, class string) []*dom.Node {
	return each(contacts(pi), func(_ int, c contact) *dom.Node { return txt("p", c.Value, class) })
}

// labeledContact 生成 "Email: x" 形式的一项。
func labeledContact(c contact) *dom.Node {
	return div("contact-item").Append(
		txt("span", c.Label+":", "label"),
		txt("span", c.Value, "value"),
	)
}

// proficiency 生成熟练度标签与进度条；没有熟练度的技能只展示名称。
func proficiency(s resume.SkillEntry, label func(int) *dom.Node) (*dom.Node, *dom.Node) {
	if !s.HasLevel() {
		return nil, nil
	}
	level := *s.Level
	var tag *dom.Node
	if label != nil {
		tag = label(level)
	} else {
		tag = txt("span", percent(level), "proficiency")
	}
	bar := div("bar", "proficiency").Set("--fill", percent(level))
	return tag, bar
}

func percent(level int) string { return fmt.Sprintf("%d%%", level) }

// meter 是 "名称 …… 85%" 加进度条的技能块。
func meter(s resume.SkillEntry, name *dom.Node, label func(int) *dom.Node) *dom.Node {
	tag, bar := proficiency(s, label)
	return div("skill").Append(
		div("skill-head").Append(name, tag),
		bar,
	)
}

// avatar 生成头像，未提供照片时返回 nil。
func avatar(photo string) *dom.Node {
	photo = strings.TrimSpace(photo)
	if photo == "" {
		return nil
	}
	return dom.El("img", "avatar").Set("src", photo)
}

// dot 是时间线或列表前的圆点。
func dot(class string) *dom.Node { return div(class) }

// withClass 给非空节点追加 class。
func withClass(n *dom.Node, class string) *dom.Node {
	if n != nil {
		n.Classes = append(n.Classes, class)
	}
	return n
}
