package export

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
)

// DefaultJPEGQuality 是 JPEG 的默认质量。
const DefaultJPEGQuality = 100

// ImageEncoder 把整张缓冲区一次性编码为单张图片，不分页。
type ImageEncoder struct {
	Format  Format
	Quality int
}

// Encode 编码 img。PNG 使用最高压缩，JPEG 质量为 0 时取默认值。
func (e ImageEncoder) Encode(img image.Image) ([]byte, error) {
	if img == nil {
		return nil, fmt.Errorf("图像为空")
	}
	if b := img.Bounds(); b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("图像尺寸无效 %dx%d", b.Dx(), b.Dy())
	}
	var buf bytes.Buffer
	switch e.Format {
	case FormatPNG:
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		if err := enc.Encode(&buf, img); err != nil {
			return nil, err
		}
	case FormatJPEG:
		q := e.Quality
		if q <= 0 || q > 100 {
			q = DefaultJPEGQuality
		}
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: q}); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("图片编码器不支持格式 %q", e.Format)
	}
	return buf.Bytes(), nil
}
