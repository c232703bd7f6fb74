package templates

import (
	"github.com/ByLCY/resumepress/dom"
	"github.com/ByLCY/resumepress/resume"
)

// modern：蓝色页眉带，双栏联系方式，左侧时间线，右侧技能进度条。
func modern(r resume.Resume) []*dom.Node {
	pi := r.PersonalInfo
	items := contacts(pi)
	var left, right []*dom.Node
	for _, c := range items {
		// email/phone 在左栏，location/website 在右栏
		if c.Label == "Email" || c.Label == "Phone" {
			left = append(left, labeledContact(c))
		} else {
			right = append(right, labeledContact(c))
		}
	}
	var grid *dom.Node
	if len(items) > 0 {
		grid = div("contact-grid").Append(div("contact-col").Append(left...), div("contact-col").Append(right...))
	}

	header := div("header").Append(
		div("header-row").Append(
			div("identity").Append(txt("h1", pi.Name, "name"), txt("p", pi.Title, "title")),
			avatar(pi.Photo),
		),
		grid,
	)

	main := div("main").Append(
		section("Work Experience", each(r.Experience, func(_ int, e resume.ExperienceEntry) *dom.Node {
			return timelineItem(txt("h3", e.Position, "position"), txt("p", e.Company, "company"), dates(e.Period()), description(e.Description))
		})...),
		section("Education", each(r.Education, func(_ int, e resume.EducationEntry) *dom.Node {
			return timelineItem(txt("h3", degreeLine(e), "degree"), txt("p", e.Institution, "company"), dates(e.Period()), description(e.Description))
		})...),
	)
	side := div("side").Append(
		section("Skills", each(r.Skills, func(_ int, s resume.SkillEntry) *dom.Node {
			return meter(s, txt("span", s.Name, "skill-name"), nil)
		})...),
	)

	return []*dom.Node{
		header,
		div("body").Append(
			withClass(section("About Me", txt("p", pi.Summary, "summary")), "about"),
			div("grid").Append(main, side),
		),
	}
}

// timelineItem 是带左边线与圆点的经历条目。
func timelineItem(heading *dom.Node, rest ...*dom.Node) *dom.Node {
	return div("timeline-item", "entry").Append(
		div("title-row").Append(dot("marker"), heading),
	).Append(rest...)
}

// creative：紫色页眉与联系方式胶囊，左栏技能与教育，右栏摘要与经历时间线。
func creative(r resume.Resume) []*dom.Node {
	pi := r.PersonalInfo
	var chips *dom.Node
	if items := contacts(pi); len(items) > 0 {
		chips = div("contacts").Append(each(items, func(_ int, c contact) *dom.Node {
			return txt("span", c.Value, "chip")
		})...)
	}
	header := div("header").Append(
		avatar(pi.Photo),
		txt("h1", pi.Name, "name"),
		txt("p", pi.Title, "title"),
		chips,
	)

	side := div("side").Append(
		section("Skills & Expertise", each(r.Skills, func(_ int, s resume.SkillEntry) *dom.Node {
			return meter(s, txt("span", s.Name, "skill-name"), nil)
		})...),
		section("Education", each(r.Education, func(_ int, e resume.EducationEntry) *dom.Node {
			return div("entry", "education").Append(
				txt("h3", e.Degree, "degree"),
				txt("p", e.Institution, "institution"),
				dates(e.Period()),
				description(e.Description),
			)
		})...),
	)
	main := div("main").Append(
		section("Professional Summary", txt("p", pi.Summary, "summary")),
		section("Experience", each(r.Experience, func(_ int, e resume.ExperienceEntry) *dom.Node {
			return div("timeline-item", "entry").Append(
				div("title-row").Append(dot("marker"), txt("h3", e.Position, "position")),
				dates(e.Period()),
				txt("p", e.Company, "company"),
				description(e.Description),
			)
		})...),
	)
	return []*dom.Node{header, div("grid").Append(side, main)}
}
