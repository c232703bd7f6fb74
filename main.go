package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/flanksource/commons/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/ByLCY/resumepress/config"
	"github.com/ByLCY/resumepress/dom"
	"github.com/ByLCY/resumepress/export"
	"github.com/ByLCY/resumepress/layout"
	"github.com/ByLCY/resumepress/printing"
	canvasrenderer "github.com/ByLCY/resumepress/renderer/canvas"
	"github.com/ByLCY/resumepress/resume"
	"github.com/ByLCY/resumepress/server"
	"github.com/ByLCY/resumepress/templates"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app 持有全局参数与加载后的配置。
type app struct {
	configPath string
	envFiles   []string
	logFlags   logger.Flags
	cfg        config.Config
}

func newRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "resumepress",
		Short:         "按模板渲染简历并导出为 PDF / 图片，或直接打印",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
	}
	a.bindFlags(root.PersistentFlags())
	root.AddCommand(
		a.exportCommand(),
		a.printCommand(),
		a.serveCommand(),
		templatesCommand(),
		sampleCommand(),
		versionCommand(),
	)
	return root
}

func (a *app) bindFlags(flags *pflag.FlagSet) {
	flags.StringVarP(&a.configPath, "config", "c", "", "YAML 配置文件路径")
	flags.StringSliceVar(&a.envFiles, "env-file", nil, ".env 文件，默认读取当前目录的 .env")
	flags.CountVarP(&a.logFlags.LevelCount, "loglevel", "v", "提高日志级别")
	flags.StringVar(&a.logFlags.Level, "log-level", "info", "默认日志级别")
	flags.BoolVar(&a.logFlags.JsonLogs, "json-logs", false, "以 JSON 格式输出日志")
	flags.BoolVar(&a.logFlags.ReportCaller, "report-caller", false, "日志中带上调用位置")
	flags.BoolVar(&a.logFlags.LogToStderr, "log-to-stderr", true, "日志写到标准错误")
}

func (a *app) setup() error {
	logger.Configure(a.logFlags)
	cfg, err := config.Load(a.configPath, a.envFiles...)
	if err != nil {
		return err
	}
	a.cfg = cfg
	logger.Debugf("生效配置:\n%s", cfg)
	return nil
}

// loadResume 读取简历文件；未指定文件时使用示例记录。
func loadResume(args []string) (resume.Resume, error) {
	if len(args) == 0 || args[0] == "" {
		logger.Infof("未指定简历文件，使用示例数据")
		return resume.Sample(), nil
	}
	if args[0] == "-" {
		return resume.Decode(os.Stdin, resume.FormatJSON)
	}
	return resume.Load(args[0])
}

// assetDir 决定本地图片的根目录：未配置时取简历文件所在目录，读标准输入或示例时取当前目录。
func assetDir(configured string, args []string) string {
	if configured != "" {
		return configured
	}
	if len(args) == 0 || args[0] == "" || args[0] == "-" {
		return "."
	}
	return filepath.Dir(args[0])
}

// newExporter 渲染在线预览并返回绑定到它的导出器。
func newExporter(cfg config.Config, r resume.Resume, id templates.ID) *export.Exporter {
	rendered := templates.Render(r, id)
	doc := dom.NewDocument(rendered.Sheet)
	doc.Mount(rendered.Root)
	opts := cfg.ExportOptions()
	opts.Meta.Subject = templates.Resolve(rendered.Template).Name
	logger.Debugf("使用模板 %s", rendered.Template)
	return export.New(doc, canvasrenderer.NewRendererWithOptions(cfg.RendererOptions()), opts)
}

func (a *app) exportCommand() *cobra.Command {
	var (
		tmpl, format, out, debugPath string
		scale                        float64
	)
	cmd := &cobra.Command{
		Use:   "export [resume.json|resume.yaml]",
		Short: "导出 PDF、PNG、JPEG 或矢量 PDF",
		Example: `  resumepress export --template modern
  resumepress export jane.yaml --format jpeg --out build/
  resumepress export jane.json --format vector --debug build/layout.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("template") {
				a.cfg.Template = tmpl
			}
			if cmd.Flags().Changed("scale") {
				a.cfg.Scale = scale
				if err := a.cfg.Validate(); err != nil {
					return err
				}
			}
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			r, err := loadResume(args)
			if err != nil {
				return err
			}
			a.cfg.AssetDir = assetDir(a.cfg.AssetDir, args)
			path, err := runExport(cmd.Context(), a.cfg, r, f, out, debugPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "已导出：%s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&tmpl, "template", "t", "", "模板标识，未知标识回退到 classic")
	cmd.Flags().StringVarP(&format, "format", "f", "pdf", "导出格式：pdf、png、jpeg、vector")
	cmd.Flags().StringVarP(&out, "out", "o", "output", "输出目录或文件路径")
	cmd.Flags().StringVar(&debugPath, "debug", "", "布局调试 JSON 输出路径，- 表示标准输出")
	cmd.Flags().Float64Var(&scale, "scale", canvasrenderer.DefaultScale, "光栅化倍率（相对 96 DPI）")
	return cmd
}

// runExport 执行导出并写出文件，返回输出路径。out 为目录（或以分隔符结尾）时使用推导出的文件名。
func runExport(ctx context.Context, cfg config.Config, r resume.Resume, format export.Format, out, debugPath string) (string, error) {
	e := newExporter(cfg, r, templates.ID(cfg.Template))
	name := r.PersonalInfo.Name

	if debugPath != "" {
		result, err := e.Layout(ctx, name)
		if err != nil {
			return "", err
		}
		if err := writeDebug(result, debugPath); err != nil {
			return "", err
		}
	}

	art, err := e.Export(ctx, format, name)
	if err != nil {
		return "", err
	}
	path := outputPath(out, art.Filename)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("创建输出目录失败: %w", err)
	}
	if err := os.WriteFile(path, art.Data, 0o644); err != nil {
		return "", fmt.Errorf("写入 %s 失败: %w", path, err)
	}
	logger.Infof("%s: %d 字节, %d 页", path, len(art.Data), art.Pages)
	return path, nil
}

func outputPath(out, filename string) string {
	if out == "" {
		return filename
	}
	if info, err := os.Stat(out); err == nil && info.IsDir() {
		return filepath.Join(out, filename)
	}
	if filepath.Ext(out) == "" || os.IsPathSeparator(out[len(out)-1]) {
		return filepath.Join(out, filename)
	}
	return out
}

func writeDebug(result *layout.Result, debugPath string) error {
	if debugPath != "-" {
		if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
			return fmt.Errorf("创建调试目录失败: %w", err)
		}
	}
	if err := layout.WriteDebugJSON(result, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}

func (a *app) printCommand() *cobra.Command {
	var tmpl, printer, toDir string
	cmd := &cobra.Command{
		Use:   "print [resume.json|resume.yaml]",
		Short: "通过无头浏览器打印整页快照",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("template") {
				a.cfg.Template = tmpl
			}
			if printer != "" {
				a.cfg.Printer = printer
			}
			if toDir != "" {
				a.cfg.PrintDir = toDir
			}
			r, err := loadResume(args)
			if err != nil {
				return err
			}
			a.cfg.AssetDir = assetDir(a.cfg.AssetDir, args)
			return runPrint(cmd.Context(), a.cfg, r)
		},
	}
	cmd.Flags().StringVarP(&tmpl, "template", "t", "", "模板标识")
	cmd.Flags().StringVar(&printer, "printer", "", "lp 目标打印机")
	cmd.Flags().StringVar(&toDir, "to-dir", "", "不送打印机，把结果写入该目录")
	return cmd
}

func runPrint(ctx context.Context, cfg config.Config, r resume.Resume) error {
	e := newExporter(cfg, r, templates.ID(cfg.Template))
	img, err := e.Snapshot(ctx, r.PersonalInfo.Name)
	if err != nil {
		return err
	}
	var spooler printing.Spooler = printing.CommandSpooler{Printer: cfg.Printer}
	if cfg.PrintDir != "" {
		spooler = printing.FileSpooler{Dir: cfg.PrintDir, Name: export.Filename(r.PersonalInfo.Name, "pdf", cfg.FilenamePattern)}
	}
	adapter := &printing.Adapter{
		Platform: printing.ChromePlatform{ExecPath: cfg.Chrome.ExecPath, Timeout: cfg.Chrome.Timeout},
		Spooler:  spooler,
		Page:     printing.PageSize{WidthMM: cfg.Page.WidthMM, HeightMM: cfg.Page.HeightMM},
	}
	return adapter.Print(ctx, img, r.PersonalInfo.Name)
}

func (a *app) serveCommand() *cobra.Command {
	var listen string
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "serve [resume.json|resume.yaml]",
		Short: "启动下载服务",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if listen != "" {
				a.cfg.Listen = listen
			}
			r, err := loadResume(args)
			if err != nil {
				return err
			}
			srv := server.New(server.NewStore(r), canvasrenderer.NewRendererWithOptions(a.cfg.RendererOptions()), server.Options{
				DefaultTemplate: templates.ID(a.cfg.Template),
				Export:          a.cfg.ExportOptions(),
				Timeout:         timeout,

				AllowRemoteAssets: a.cfg.ServeRemoteAssets,
				AllowFileAssets:   a.cfg.ServeFileAssets,
			})
			return serve(cmd.Context(), a.cfg.Listen, srv.Handler())
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "监听地址，默认 :8080")
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "单次导出超时")
	return cmd
}

func serve(ctx context.Context, addr string, h http.Handler) error {
	hs := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- hs.ListenAndServe() }()
	logger.Infof("监听 %s", addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Infof("正在关闭服务")
		return hs.Shutdown(shutdownCtx)
	}
}

func templatesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "列出全部模板",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			listTemplates(cmd.OutOrStdout())
			return nil
		},
	}
}

func listTemplates(w io.Writer) {
	for _, id := range templates.IDs() {
		t := templates.Resolve(id)
		if t.ID != id {
			fmt.Fprintf(w, "%-14s %s (= %s)\n", id, t.Name, t.ID)
			continue
		}
		fmt.Fprintf(w, "%-14s %s\n", id, t.Name)
	}
}

func sampleCommand() *cobra.Command {
	var asYAML bool
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "输出示例简历数据",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return writeSample(cmd.OutOrStdout(), asYAML)
		},
	}
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "以 YAML 输出")
	return cmd
}

func writeSample(w io.Writer, asYAML bool) error {
	if asYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(resume.Sample()); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(resume.Sample())
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "输出版本号",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
