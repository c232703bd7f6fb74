package templates

import (
	"github.com/ByLCY/resumepress/dom"
	"github.com/ByLCY/resumepress/resume"
)

// executive：深色页眉，三分之一侧栏放联系方式与专长，主栏放简介、经历、教育。
func executive(r resume.Resume) []*dom.Node {
	pi := r.PersonalInfo
	sidebar := div("sidebar").Append(
		avatar(pi.Photo),
		section("Contact", listContacts(pi, "contact")...),
		section("Expertise", each(r.Skills, func(_ int, s resume.SkillEntry) *dom.Node {
			return txt("p", s.Name, "skill")
		})...),
	)
	main := div("main").Append(
		section("Professional Profile", txt("p", pi.Summary, "summary")),
		section("Professional Experience", each(r.Experience, func(_ int, e resume.ExperienceEntry) *dom.Node {
			return div("entry", "experience").Append(
				txt("h3", e.Position, "position"),
				div("entry-head").Append(txt("p", e.Company, "company"), dates(e.Period())),
				description(e.Description),
			)
		})...),
		section("Education", each(r.Education, func(_ int, e resume.EducationEntry) *dom.Node {
			return div("entry", "education").Append(
				div("entry-head").Append(txt("h3", degreeLine(e), "degree"), dates(e.Period())),
				txt("p", e.Institution, "institution"),
				description(e.Description),
			)
		})...),
	)
	return []*dom.Node{
		div("header").Append(txt("h1", pi.Name, "name"), txt("p", pi.Title, "title")),
		div("grid").Append(sidebar, main),
	}
}

// professional：绿色页眉下边线，带标签的联系方式，圆点列出核心能力。
func professional(r resume.Resume) []*dom.Node {
	pi := r.PersonalInfo
	var info *dom.Node
	if items := contacts(pi); len(items) > 0 {
		info = div("contacts").Append(each(items, func(_ int, c contact) *dom.Node { return labeledContact(c) })...)
	}
	return []*dom.Node{
		div("header").Append(
			txt("h1", pi.Name, "name"),
			txt("p", pi.Title, "title"),
			info,
		),
		div("body").Append(
			section("Professional Summary", txt("p", pi.Summary, "summary")),
			sectionIfAny("Core Competencies", div("competencies").Append(each(r.Skills, func(_ int, s resume.SkillEntry) *dom.Node {
				name := txt("span", s.Name, "skill-name")
				if name == nil {
					return nil
				}
				return div("competency").Append(dot("marker"), name)
			})...)),
			section("Professional Experience", each(r.Experience, func(_ int, e resume.ExperienceEntry) *dom.Node {
				return div("entry", "experience").Append(
					div("entry-head").Append(txt("h3", e.Position, "position"), dates(e.Period())),
					txt("p", e.Company, "company"),
					description(e.Description),
				)
			})...),
			section("Education", each(r.Education, func(_ int, e resume.EducationEntry) *dom.Node {
				return div("entry", "education").Append(
					div("entry-head").Append(txt("h3", degreeLine(e), "degree"), dates(e.Period())),
					txt("p", e.Institution, "company"),
					description(e.Description),
				)
			})...),
		),
	}
}
