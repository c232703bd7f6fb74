// Package server 提供下载触发接口：按模板渲染当前简历并返回 PDF 或图片附件。
// 相同内容的并发请求只执行一次导出。
package server

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"time"

	"github.com/flanksource/commons/logger"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/singleflight"

	"github.com/ByLCY/resumepress/dom"
	"github.com/ByLCY/resumepress/export"
	"github.com/ByLCY/resumepress/layout"
	canvasrenderer "github.com/ByLCY/resumepress/renderer/canvas"
	"github.com/ByLCY/resumepress/resume"
	"github.com/ByLCY/resumepress/templates"
)

// Options 配置服务。
type Options struct {
	// DefaultTemplate 是请求未指定模板时使用的模板。
	DefaultTemplate templates.ID
	Export          export.Options
	// Timeout 限制单次导出的耗时，0 表示不限。
	Timeout time.Duration
	// Suggester 为空时建议接口返回 501。
	Suggester resume.Suggester
	// 记录由客户端提交，默认只接受 data: 图片。
	AllowRemoteAssets bool
	AllowFileAssets   bool
}

// Server 持有渲染器与当前简历。
type Server struct {
	store    *Store
	renderer *canvasrenderer.Renderer
	opts     Options
	flight   singleflight.Group
	log      logger.Logger
}

// New 创建服务。
func New(store *Store, r *canvasrenderer.Renderer, opts Options) *Server {
	if opts.DefaultTemplate == "" {
		opts.DefaultTemplate = templates.Default
	}
	opts.Export.Assets.AllowRemote = opts.AllowRemoteAssets
	opts.Export.Assets.AllowFiles = opts.AllowFileAssets
	return &Server{store: store, renderer: r, opts: opts, log: logger.GetLogger("server")}
}

// Handler 返回注册好路由的 gin 引擎。
func (s *Server) Handler() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(requestID(), accessLog(s.log), recovery(s.log))

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	api.GET("/templates", s.listTemplates)
	api.GET("/resume", s.getResume)
	api.PUT("/resume", s.putResume)
	api.POST("/resume/suggest", s.suggest)
	api.GET("/layout", s.getLayout)
	api.GET("/export/:format", s.export)
	return r
}

type templateInfo struct {
	ID   templates.ID `json:"id"`
	Name string       `json:"name"`
}

func (s *Server) listTemplates(c *gin.Context) {
	out := make([]templateInfo, 0, len(templates.IDs()))
	for _, id := range templates.IDs() {
		out = append(out, templateInfo{ID: id, Name: templates.Resolve(id).Name})
	}
	c.JSON(http.StatusOK, gin.H{"templates": out, "default": s.opts.DefaultTemplate})
}

func (s *Server) getResume(c *gin.Context) {
	r, version := s.store.Get()
	c.Header("ETag", fmt.Sprintf(`"%d"`, version))
	c.JSON(http.StatusOK, r)
}

// putResume 整体替换记录，外部建议服务的结果也走这里。
func (s *Server) putResume(c *gin.Context) {
	r, err := resume.Decode(c.Request.Body, resume.FormatJSON)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid_resume", err.Error())
		return
	}
	version := s.store.Replace(r)
	c.JSON(http.StatusOK, gin.H{"version": version})
}

// suggest 把当前记录交给外部建议服务，并用返回结果整体替换。
func (s *Server) suggest(c *gin.Context) {
	if s.opts.Suggester == nil {
		respondError(c, http.StatusNotImplemented, "suggest_unavailable", "未配置建议服务")
		return
	}
	r, _ := s.store.Get()
	ctx, cancel := s.context(c.Request.Context())
	defer cancel()
	next, err := s.opts.Suggester.Suggest(ctx, r)
	if err != nil {
		s.log.Warnf("建议服务失败: %v", err)
		respondError(c, http.StatusBadGateway, "suggest_failed", err.Error())
		return
	}
	version := s.store.Replace(next)
	c.JSON(http.StatusOK, gin.H{"version": version})
}

func (s *Server) template(c *gin.Context) templates.ID {
	if id := c.Query("template"); id != "" {
		return templates.ID(id)
	}
	return s.opts.DefaultTemplate
}

// exporter 为当前记录建立一个新的活动文档，每次导出互不共享。
func (s *Server) exporter(r resume.Resume, id templates.ID) (*export.Exporter, templates.ID) {
	rendered := templates.Render(r, id)
	doc := dom.NewDocument(rendered.Sheet)
	doc.Mount(rendered.Root)
	opts := s.opts.Export
	opts.Meta.Subject = templates.Resolve(rendered.Template).Name
	return export.New(doc, s.renderer, opts), rendered.Template
}

func (s *Server) context(parent context.Context) (context.Context, context.CancelFunc) {
	if s.opts.Timeout > 0 {
		return context.WithTimeout(parent, s.opts.Timeout)
	}
	return context.WithCancel(parent)
}

func (s *Server) getLayout(c *gin.Context) {
	r, _ := s.store.Get()
	e, _ := s.exporter(r, s.template(c))
	ctx, cancel := s.context(c.Request.Context())
	defer cancel()
	result, err := e.Layout(ctx, r.PersonalInfo.Name)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Header("Content-Type", "application/json")
	c.Status(http.StatusOK)
	if err := layout.EncodeDebugJSON(result, c.Writer); err != nil {
		s.log.Warnf("写出布局 JSON 失败: %v", err)
	}
}

func (s *Server) export(c *gin.Context) {
	format, err := export.ParseFormat(c.Param("format"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid_format", err.Error())
		return
	}
	r, version := s.store.Get()
	e, id := s.exporter(r, s.template(c))

	// 相同格式、模板与版本的请求共享一次导出，快速重复点击不会重复渲染。
	// 共享的导出不随首个请求断开而取消。
	key := fmt.Sprintf("%s|%s|%d", format, id, version)
	v, err, shared := s.flight.Do(key, func() (any, error) {
		ctx, cancel := s.context(context.WithoutCancel(c.Request.Context()))
		defer cancel()
		return e.Export(ctx, format, r.PersonalInfo.Name)
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	art := v.(*export.Artifact)
	if shared {
		s.log.Debugf("复用进行中的导出 %s", key)
	}
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": art.Filename}))
	c.Header("X-Template", string(id))
	c.Data(http.StatusOK, art.ContentType, art.Data)
}

func (s *Server) fail(c *gin.Context, err error) {
	var (
		pre *export.PreconditionError
		res *export.ResourceError
		enc *export.EncodeError
	)
	switch {
	case errors.As(err, &pre):
		respondError(c, http.StatusConflict, "precondition", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		respondError(c, http.StatusGatewayTimeout, "timeout", err.Error())
	case errors.As(err, &res):
		s.log.Errorf("导出失败: %v", err)
		respondError(c, http.StatusUnprocessableEntity, "resource", err.Error())
	case errors.As(err, &enc):
		s.log.Errorf("编码失败: %v", err)
		respondError(c, http.StatusInternalServerError, "encode", err.Error())
	default:
		s.log.Errorf("未知错误: %v", err)
		respondError(c, http.StatusInternalServerError, "internal", err.Error())
	}
}
