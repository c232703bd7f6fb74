package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilename(t *testing.T) {
	cases := []struct {
		name, ext, pattern, want string
	}{
		{"Alex Morgan", "pdf", "", "Alex_Morgan_resume.pdf"},
		{"  Alex \t  Morgan ", ".jpg", "", "Alex_Morgan_resume.jpg"},
		{"", "pdf", "", "resume_resume.pdf"},
		{"   ", "png", "", "resume_resume.png"},
		{"a/b\\c:d", "pdf", "", "abcd_resume.pdf"},
		{"../etc", "pdf", "", "etc_resume.pdf"},
		{"Jane Lee", "pdf", "cv-${name}", "cv-Jane_Lee.pdf"},
		{"Jane Lee", "pdf", "${unknown}", "Jane_Lee.pdf"},
		{"Jane Lee", "", "", "Jane_Lee_resume"},
		{"\xff\xfe bad \u200b", "pdf", "", "bad_resume.pdf"},
		{"Jane\u00a0Lee", "pdf", "", "Jane_Lee_resume.pdf"},
		{"Li\u200bWei\u00ad", "pdf", "", "LiWei_resume.pdf"},
		{"\u200b\u200e", "pdf", "", "resume_resume.pdf"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Filename(tc.name, tc.ext, tc.pattern), "name=%q pattern=%q", tc.name, tc.pattern)
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"PDF": FormatPDF, "jpg": FormatJPEG, "png": FormatPNG, "vector": FormatVector, "": FormatPDF} {
		got, err := ParseFormat(in)
		assert.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFormat("docx")
	assert.Error(t, err)
	assert.Equal(t, "jpg", FormatJPEG.Ext())
	assert.Equal(t, "pdf", FormatVector.Ext())
	assert.Equal(t, "image/jpeg", FormatJPEG.ContentType())
	assert.Equal(t, "application/pdf", FormatVector.ContentType())
}
