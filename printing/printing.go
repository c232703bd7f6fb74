// Package printing 把导出的整张位图交给系统打印：先放进一个只含 <img> 的隔离页面，
// 打印完成或失败后都会关闭该页面。
package printing

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"html/template"
	"image"
	"image/png"

	"github.com/flanksource/commons/logger"
)

// Platform 创建隔离的打印上下文。测试中可以替换为假实现。
type Platform interface {
	Open(ctx context.Context) (Session, error)
}

// Session 是一个隔离的打印上下文（例如无头浏览器中的一个新标签页）。
type Session interface {
	Load(ctx context.Context, html string) error
	Print(ctx context.Context, page PageSize) ([]byte, error)
	Close() error
}

// Spooler 把打印结果交给系统打印队列或文件。
type Spooler interface {
	Spool(ctx context.Context, title string, pdf []byte) error
}

// PageSize 是纸张尺寸（mm）。
type PageSize struct {
	WidthMM  float64
	HeightMM float64
}

// Adapter 是打印流程的入口。
type Adapter struct {
	Platform Platform
	Spooler  Spooler
	Page     PageSize
}

// Print 把 img 作为整页图片打印。隔离上下文在成功、失败与取消时都会关闭。
func (a *Adapter) Print(ctx context.Context, img image.Image, title string) (err error) {
	if a.Platform == nil || a.Spooler == nil {
		return errors.New("打印平台未配置")
	}
	if img == nil || img.Bounds().Empty() {
		return errors.New("打印图像为空")
	}
	page := a.Page
	if page.WidthMM <= 0 || page.HeightMM <= 0 {
		page = PageSize{WidthMM: 210, HeightMM: 297}
	}
	doc, err := printDocument(img, title, page)
	if err != nil {
		return err
	}

	sess, err := a.Platform.Open(ctx)
	if err != nil {
		return fmt.Errorf("打开打印上下文失败: %w", err)
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			logger.Warnf("关闭打印上下文失败: %v", cerr)
			if err == nil {
				err = cerr
			}
		}
	}()

	if err := sess.Load(ctx, doc); err != nil {
		return fmt.Errorf("载入打印页面失败: %w", err)
	}
	out, err := sess.Print(ctx, page)
	if err != nil {
		return fmt.Errorf("打印失败: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := a.Spooler.Spool(ctx, title, out); err != nil {
		return fmt.Errorf("提交打印任务失败: %w", err)
	}
	logger.Infof("已提交打印: %s (%d 字节)", title, len(out))
	return nil
}

var pageTemplate = template.Must(template.New("print").Parse(`<!DOCTYPE html>
<html>
<head>
<title>{{.Title}}</title>
<style>
@page { size: {{.Width}}mm {{.Height}}mm; margin: 0 }
html, body { margin: 0; padding: 0; overflow: hidden }
body { -webkit-print-color-adjust: exact; print-color-adjust: exact }
img { display: block; width: 100%; height: auto }
</style>
</head>
<body><img src="{{.Src}}"></body>
</html>`))

// printDocument 生成只含一张图片的最小页面，没有宿主页面的任何装饰与滚动条。
func printDocument(img image.Image, title string, page PageSize) (string, error) {
	var raw bytes.Buffer
	if err := png.Encode(&raw, img); err != nil {
		return "", fmt.Errorf("编码打印图像失败: %w", err)
	}
	src := template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(raw.Bytes()))

	var out bytes.Buffer
	err := pageTemplate.Execute(&out, struct {
		Title         string
		Width, Height float64
		Src           template.URL
	}{Title: title, Width: page.WidthMM, Height: page.HeightMM, Src: src})
	if err != nil {
		return "", err
	}
	return out.String(), nil
}
