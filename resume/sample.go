package resume

// Sample 返回产品内置的示例简历。
func Sample() Resume {
	return Resume{
		PersonalInfo: PersonalInfo{
			Name:     "John Doe",
			Title:    "Software Developer",
			Email:    "john@example.com",
			Phone:    "(555) 123-4567",
			Location: "San Francisco, CA",
			Website:  "johndoe.com",
			Summary:  "Experienced software developer with a passion for creating elegant solutions to complex problems. Skilled in JavaScript, React, and Node.js.",
		},
		Experience: []ExperienceEntry{
			{
				ID:          "exp1",
				Company:     "Tech Solutions Inc.",
				Position:    "Senior Developer",
				StartDate:   "2020-01",
				Current:     true,
				Description: "Lead development of customer-facing web applications. Implemented CI/CD pipelines and mentored junior developers.",
			},
			{
				ID:          "exp2",
				Company:     "Digital Innovations",
				Position:    "Web Developer",
				StartDate:   "2017-03",
				EndDate:     "2019-12",
				Description: "Built and maintained responsive websites and web applications using React and Node.js.",
			},
		},
		Education: []EducationEntry{
			{
				ID:          "edu1",
				Institution: "University of California",
				Degree:      "Bachelor of Science",
				Field:       "Computer Science",
				StartDate:   "2013-09",
				EndDate:     "2017-05",
				Description: "Focus on software engineering and database systems. Graduated with honors.",
			},
		},
		Skills: []SkillEntry{
			{ID: "skill1", Name: "JavaScript", Level: Level(90)},
			{ID: "skill2", Name: "React", Level: Level(85)},
			{ID: "skill3", Name: "Node.js", Level: Level(80)},
			{ID: "skill4", Name: "HTML/CSS", Level: Level(90)},
			{ID: "skill5", Name: "Python", Level: Level(70)},
		},
	}
}
