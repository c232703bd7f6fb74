package export

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ByLCY/resumepress/binding"
)

// DefaultPattern 是默认的文件名模式。
const DefaultPattern = "${name}_resume"

// fallbackName 用于姓名为空的情况。
const fallbackName = "resume"

var (
	spaceRun = regexp.MustCompile(`[\s\p{Zs}]+`)
	unsafe   = regexp.MustCompile(`[/\\:*?"<>|$%{}\x00-\x1f]`)
)

// Filename 由姓名与模式推出文件名：空白替换为下划线，去掉路径不安全字符，
// 姓名为空时使用 "resume"。
func Filename(name, ext, pattern string) string {
	if strings.TrimSpace(pattern) == "" {
		pattern = DefaultPattern
	}
	safe := sanitize(name)
	if safe == "" {
		safe = fallbackName
	}
	base := sanitize(binding.Expand(pattern, binding.Vars{"name": safe}, nil))
	if base == "" {
		base = safe
	}
	ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
	if ext == "" {
		return base
	}
	return base + "." + ext
}

func sanitize(s string) string {
	s = spaceRun.ReplaceAllString(strings.TrimSpace(s), "_")
	s = unsafe.ReplaceAllString(s, "")
	// 非法 UTF-8 会被 Map 变成 RuneError，零宽字符等格式字符不是 Graphic
	s = strings.Map(func(r rune) rune {
		if r == utf8.RuneError || !unicode.IsGraphic(r) {
			return -1
		}
		return r
	}, s)
	return strings.Trim(s, "._")
}
