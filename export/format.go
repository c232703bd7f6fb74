package export

import (
	"fmt"
	"strings"
)

// Format 是导出格式。
type Format string

const (
	FormatPDF    Format = "pdf"
	FormatPNG    Format = "png"
	FormatJPEG   Format = "jpeg"
	FormatVector Format = "vector"
)

// Formats 以稳定顺序列出全部格式。
var Formats = []Format{FormatPDF, FormatPNG, FormatJPEG, FormatVector}

// ParseFormat 解析格式名，大小写不敏感；jpg 视为 jpeg。
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatPDF, FormatPNG, FormatJPEG, FormatVector:
		return f, nil
	case "jpg":
		return FormatJPEG, nil
	case "":
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("不支持的导出格式 %q", s)
	}
}

// Ext 返回文件扩展名（不含点）。
func (f Format) Ext() string {
	switch f {
	case FormatJPEG:
		return "jpg"
	case FormatVector:
		return "pdf"
	default:
		return string(f)
	}
}

// ContentType 返回 MIME 类型。
func (f Format) ContentType() string {
	switch f {
	case FormatPNG:
		return "image/png"
	case FormatJPEG:
		return "image/jpeg"
	default:
		return "application/pdf"
	}
}

// Artifact 是一次导出的产物，交给下载或打印环节后不再保留。
type Artifact struct {
	Filename    string
	ContentType string
	Data        []byte
	Pages       int
}
