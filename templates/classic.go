package templates

import (
	"github.com/ByLCY/resumepress/dom"
	"github.com/ByLCY/resumepress/resume"
)

// classic：居中页眉，蓝色分区标题下划线，技能为灰色圆角标签。
func classic(r resume.Resume) []*dom.Node {
	pi := r.PersonalInfo
	return []*dom.Node{
		div("header").Append(
			txt("h1", pi.Name, "name"),
			txt("p", pi.Title, "title"),
			bulletContacts(pi),
		),
		section("Professional Summary", txt("p", pi.Summary, "summary")),
		section("Experience", each(r.Experience, func(_ int, e resume.ExperienceEntry) *dom.Node {
			return div("entry", "experience").Append(
				div("entry-head").Append(txt("h3", e.Position, "position"), dates(e.Period())),
				txt("p", e.Company, "company"),
				description(e.Description),
			)
		})...),
		section("Education", each(r.Education, func(_ int, e resume.EducationEntry) *dom.Node {
			return div("entry", "education").Append(
				div("entry-head").Append(txt("h3", e.Institution, "institution"), dates(e.Period())),
				txt("p", degreeLine(e), "company"),
				description(e.Description),
			)
		})...),
		skillChips(r.Skills),
	}
}

func skillChips(skills []resume.SkillEntry) *dom.Node {
	chips := each(skills, func(_ int, s resume.SkillEntry) *dom.Node { return txt("span", s.Name, "skill") })
	if len(compact(chips)) == 0 {
		return nil
	}
	return section("Skills", div("skills").Append(chips...))
}

// minimal：细字号大名字，大写灰色标题，技能为纯文字流。
func minimal(r resume.Resume) []*dom.Node {
	pi := r.PersonalInfo
	return []*dom.Node{
		div("header").Append(
			txt("h1", pi.Name, "name"),
			txt("p", pi.Title, "title"),
		),
		bulletContacts(pi),
		section("Profile", txt("p", pi.Summary, "summary")),
		section("Experience", each(r.Experience, func(_ int, e resume.ExperienceEntry) *dom.Node {
			return div("entry", "experience").Append(
				div("entry-head").Append(txt("h3", e.Position, "position"), dates(e.Period())),
				txt("p", e.Company, "company"),
				description(e.Description),
			)
		})...),
		section("Education", each(r.Education, func(_ int, e resume.EducationEntry) *dom.Node {
			return div("entry", "education").Append(
				div("entry-head").Append(txt("h3", e.Institution, "institution"), dates(e.Period())),
				txt("p", degreeLine(e), "company"),
				description(e.Description),
			)
		})...),
		sectionIfAny("Skills", div("skills").Append(each(r.Skills, func(_ int, s resume.SkillEntry) *dom.Node {
			return txt("span", s.Name, "skill")
		})...)),
	}
}

// sectionIfAny 在容器有子元素时才生成分区。
func sectionIfAny(title string, container *dom.Node) *dom.Node {
	if len(container.Children) == 0 {
		return nil
	}
	return section(title, container)
}
