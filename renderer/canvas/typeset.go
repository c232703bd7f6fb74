package canvasrenderer

import (
	"math"
	"strings"
	"unicode"

	"github.com/tdewolff/canvas"

	"github.com/ByLCY/resumepress/layout"
)

// LayoutLines 实现 layout.Typesetter 接口，使用贪心换行算法。
// 约定：fontSize/lineHeight 入参均为毫米（mm）。与字体系统交互使用 pt，在边界做 mm↔pt 换算。
func (r *Renderer) LayoutLines(content string, width float64, font layout.FontResource, fontSize, lineHeight float64, wrap string) ([]layout.TextLine, error) {
	face, err := r.fontFace(font, toPt(fontSize), layout.RGB(30, 30, 30))
	if err != nil {
		return nil, err
	}

	if wrap == "" {
		wrap = "anywhere"
	}
	lines := greedyWrapTokens(content, width, face, wrap)
	textHeight := face.Metrics().LineHeight
	if textHeight <= 0 {
		textHeight = lineHeight
	}
	leading := math.Max(lineHeight-textHeight, 0)
	if len(lines) == 0 {
		lines = []layout.TextLine{{Height: textHeight}}
	}
	for i := range lines {
		if lines[i].Height <= 0 {
			lines[i].Height = textHeight
		}
		if i > 0 {
			lines[i].GapBefore = leading
		}
	}
	return lines, nil
}

// greedyWrapTokens 中所有宽度单位均为 mm。
func greedyWrapTokens(content string, width float64, face *canvas.FontFace, wrap string) []layout.TextLine {
	limit := width
	if limit <= 0 {
		limit = math.MaxFloat64
	}

	// nowrap：仅按显式换行划分
	if wrap == "nowrap" {
		parts := strings.Split(strings.ReplaceAll(content, "\r", ""), "\n")
		lines := make([]layout.TextLine, 0, len(parts))
		for _, p := range parts {
			lines = append(lines, layout.TextLine{Content: p, Width: face.TextWidth(p)})
		}
		return lines
	}

	// break-word：忽略空白机会，纯按宽度切分
	if wrap == "break-word" {
		var lines []layout.TextLine
		var builder strings.Builder
		current := 0.0
		emit := func(force bool) {
			if builder.Len() == 0 {
				if force {
					lines = append(lines, layout.TextLine{})
				}
				return
			}
			lines = append(lines, layout.TextLine{Content: builder.String(), Width: current})
			builder.Reset()
			current = 0
		}
		for _, r := range content {
			if r == '\r' {
				continue
			}
			if r == '\n' {
				emit(true)
				continue
			}
			s := string(r)
			cw := face.TextWidth(s)
			if current > 0 && current+cw > limit {
				emit(false)
			}
			builder.WriteString(s)
			current += cw
		}
		emit(true)
		return lines
	}

	// 默认：优先在空白处分割，超过限制时在词内拆分。
	// 软换行后的行首空白丢弃，行尾空白不计入宽度。
	tokens := tokenizeContent(content)
	var lines []layout.TextLine
	var builder strings.Builder
	currentWidth := 0.0

	emit := func(force bool) {
		line := strings.TrimRightFunc(builder.String(), unicode.IsSpace)
		if line == "" {
			builder.Reset()
			currentWidth = 0
			if force {
				lines = append(lines, layout.TextLine{})
			}
			return
		}
		lines = append(lines, layout.TextLine{Content: line, Width: face.TextWidth(line)})
		builder.Reset()
		currentWidth = 0
	}

	appendToken := func(token string) {
		builder.WriteString(token)
		currentWidth += face.TextWidth(token)
	}

	for _, token := range tokens {
		if token == "\n" {
			emit(true)
			continue
		}
		blank := strings.TrimSpace(token) == ""
		if blank {
			if builder.Len() > 0 {
				appendToken(token)
			}
			continue
		}

		tokenWidth := face.TextWidth(token)
		if builder.Len() > 0 && currentWidth+tokenWidth > limit {
			emit(false)
		}
		if tokenWidth <= limit {
			appendToken(token)
			continue
		}

		for _, chunk := range splitTokenByWidth(token, limit, face) {
			chunkWidth := face.TextWidth(chunk)
			if builder.Len() > 0 && currentWidth+chunkWidth > limit {
				emit(false)
			}
			appendToken(chunk)
		}
	}

	emit(true)
	return lines
}

func tokenizeContent(s string) []string {
	var tokens []string
	var builder strings.Builder
	lastWasSpace := false
	flush := func() {
		if builder.Len() == 0 {
			return
		}
		tokens = append(tokens, builder.String())
		builder.Reset()
	}

	for _, r := range s {
		if r == '\r' {
			continue
		}
		if r == '\n' {
			flush()
			tokens = append(tokens, "\n")
			lastWasSpace = false
			continue
		}
		isSpace := unicode.IsSpace(r)
		if builder.Len() == 0 {
			lastWasSpace = isSpace
		} else if lastWasSpace != isSpace {
			flush()
			lastWasSpace = isSpace
		}
		builder.WriteRune(r)
	}
	flush()
	return tokens
}

func splitTokenByWidth(token string, limit float64, face *canvas.FontFace) []string {
	if limit <= 0 || limit == math.MaxFloat64 {
		return []string{token}
	}
	var parts []string
	var builder strings.Builder
	for _, r := range token {
		builder.WriteRune(r)
		if face.TextWidth(builder.String()) > limit && builder.Len() > 1 {
			runes := []rune(builder.String())
			parts = append(parts, string(runes[:len(runes)-1]))
			builder.Reset()
			builder.WriteRune(r)
		}
	}
	if builder.Len() > 0 {
		parts = append(parts, builder.String())
	}
	return parts
}
