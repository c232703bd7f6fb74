package templates

import (
	"strconv"
	"strings"

	"github.com/ByLCY/resumepress/dom"
	"github.com/ByLCY/resumepress/resume"
)

// teaserLen 是 analytics 页眉中摘要预览的长度。
const teaserLen = 60

// academic：深绿侧栏放身份、联系方式与研究方向，主栏衬线标题，条目间虚线分隔，日期靠右。
func academic(r resume.Resume) []*dom.Node {
	pi := r.PersonalInfo
	sidebar := div("sidebar").Append(
		div("identity").Append(avatar(pi.Photo), txt("h1", pi.Name, "name"), txt("p", pi.Title, "title")),
		section("Contact", listContacts(pi, "contact")...),
		section("Areas of Expertise", each(r.Skills, func(_ int, s resume.SkillEntry) *dom.Node {
			return txt("p", s.Name, "skill")
		})...),
	)
	entry := func(class, heading, sub, desc string, p resume.Period) *dom.Node {
		return div("entry", class).Append(
			div("entry-head").Append(
				div("entry-body").Append(txt("h3", heading), txt("p", sub, subClass(class)), description(desc)),
				dates(p),
			),
		)
	}
	main := div("main").Append(
		withClass(section("Academic Profile", txt("p", pi.Summary, "summary")), "profile"),
		section("Educational Background", each(r.Education, func(_ int, e resume.EducationEntry) *dom.Node {
			return entry("education", degreeLine(e), e.Institution, e.Description, e.Period())
		})...),
		section("Professional Experience", each(r.Experience, func(_ int, e resume.ExperienceEntry) *dom.Node {
			return entry("experience", e.Position, e.Company, e.Description, e.Period())
		})...),
	)
	return []*dom.Node{div("grid").Append(sidebar, main)}
}

func subClass(entryClass string) string {
	if entryClass == "education" {
		return "institution"
	}
	return "company"
}

// specialist：红色页眉以白点分隔联系方式，标题前带方块图标，摘要放在左边线提示框里。
func specialist(r resume.Resume) []*dom.Node {
	pi := r.PersonalInfo
	var info *dom.Node
	if items := contacts(pi); len(items) > 0 {
		info = div("contacts")
		for i, c := range items {
			if i > 0 {
				info.Append(dot("separator"))
			}
			info.Append(txt("span", c.Value, "contact"))
		}
	}
	heading := func(title string) *dom.Node {
		return div("heading").Append(div("icon"), txt("h2", title))
	}
	side := div("side").Append(
		sectionWith(heading("Core Competencies"), each(r.Skills, func(_ int, s resume.SkillEntry) *dom.Node {
			name := txt("p", s.Name)
			if name == nil {
				return nil
			}
			return div("competency").Append(name)
		})...),
		sectionWith(heading("Education"), each(r.Education, func(_ int, e resume.EducationEntry) *dom.Node {
			return div("entry-plain", "education").Append(
				txt("h3", e.Degree, "degree"),
				txt("p", e.Institution, "institution"),
				dates(e.Period()),
				description(e.Description),
			)
		})...),
	)
	var summary *dom.Node
	if p := txt("p", pi.Summary, "summary"); p != nil {
		summary = div("callout").Append(p)
	}
	main := div("main").Append(
		sectionWith(heading("Professional Summary"), summary),
		sectionWith(heading("Professional Experience"), each(r.Experience, func(_ int, e resume.ExperienceEntry) *dom.Node {
			return div("entry", "experience").Append(
				div("entry-head").Append(txt("h3", e.Position, "position"), dates(e.Period())),
				txt("p", e.Company, "company"),
				description(e.Description),
			)
		})...),
	)
	return []*dom.Node{
		div("header").Append(txt("h1", pi.Name, "name"), txt("p", pi.Title, "title"), info),
		div("grid").Append(side, main),
	}
}

// analytics：淡紫页眉放名字、头衔与摘要预览，经历带序号圆标，侧栏技能带百分比徽章。
func analytics(r resume.Resume) []*dom.Node {
	pi := r.PersonalInfo
	header := div("header").Append(
		div("identity").Append(
			txt("p", pi.Name, "name"),
			txt("p", pi.Title, "title"),
			txt("p", teaser(pi.Summary), "teaser"),
		),
		func() *dom.Node {
			list := listContacts(pi, "contact")
			if len(compact(list)) == 0 {
				return nil
			}
			return div("contact-list").Append(list...)
		}(),
	)
	main := div("main").Append(
		section("Professional Summary", txt("p", pi.Summary, "summary")),
		section("Experience & Key Results", each(r.Experience, func(i int, e resume.ExperienceEntry) *dom.Node {
			return div("entry", "experience").Append(
				div("entry-head").Append(
					div("title-row").Append(txt("span", strconv.Itoa(i+1), "index"), txt("h3", e.Position, "position")),
					dates(e.Period()),
				),
				txt("p", e.Company, "company"),
				description(e.Description),
			)
		})...),
	)
	badge := func(level int) *dom.Node { return txt("span", percent(level), "badge", "proficiency") }
	side := div("side").Append(
		section("Education", each(r.Education, func(_ int, e resume.EducationEntry) *dom.Node {
			return div("entry", "education").Append(
				txt("h3", degreeLine(e), "degree"),
				txt("p", e.Institution, "institution"),
				dates(e.Period()),
			)
		})...),
		section("Key Data Skills", each(r.Skills, func(_ int, s resume.SkillEntry) *dom.Node {
			label := div("skill-label").Append(dot("marker"), txt("span", s.Name, "skill-name"))
			return meter(s, label, badge)
		})...),
	)
	return []*dom.Node{header, div("grid").Append(main, side)}
}

// teaser 截取摘要前 teaserLen 个字符并追加省略号；摘要为空时不展示。
func teaser(summary string) string {
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return ""
	}
	runes := []rune(summary)
	if len(runes) > teaserLen {
		runes = runes[:teaserLen]
	}
	return strings.TrimSpace(string(runes)) + "..."
}
