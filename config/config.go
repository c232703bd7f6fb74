// Package config 加载运行配置：YAML 文件、.env 与 RESUMEPRESS_* 环境变量，后者覆盖前者。
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/flanksource/commons/logger"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ByLCY/resumepress/assets"
	"github.com/ByLCY/resumepress/binding"
	"github.com/ByLCY/resumepress/export"
	canvasrenderer "github.com/ByLCY/resumepress/renderer/canvas"
	"github.com/ByLCY/resumepress/templates"
)

// EnvPrefix 是环境变量前缀。
const EnvPrefix = "RESUMEPRESS_"

// Page 是纸张尺寸（mm）。
type Page struct {
	WidthMM  float64 `yaml:"widthMM"`
	HeightMM float64 `yaml:"heightMM"`
}

// Chrome 配置打印用的无头浏览器。
type Chrome struct {
	ExecPath string        `yaml:"execPath,omitempty"`
	Timeout  time.Duration `yaml:"timeout"`
}

// Config 是完整的运行配置。
type Config struct {
	Template        string        `yaml:"template"`
	Page            Page          `yaml:"page"`
	Scale           float64       `yaml:"scale"`
	Settle          time.Duration `yaml:"settle"`
	JPEGQuality     int           `yaml:"jpegQuality"`
	Lossy           bool          `yaml:"lossy"`
	StrictAssets    bool          `yaml:"strictAssets"`
	FilenamePattern string        `yaml:"filenamePattern"`
	AssetDir        string        `yaml:"assetDir,omitempty"`
	AssetTimeout    time.Duration `yaml:"assetTimeout"`
	Listen          string        `yaml:"listen"`
	Chrome          Chrome        `yaml:"chrome"`
	Printer         string        `yaml:"printer,omitempty"`
	PrintDir        string        `yaml:"printDir,omitempty"`

	// 服务模式下是否允许简历引用远程图片或 AssetDir 中的文件，默认只接受 data: URI。
	ServeRemoteAssets bool `yaml:"serveRemoteAssets"`
	ServeFileAssets   bool `yaml:"serveFileAssets"`
}

// Default 返回默认配置：A4、3 倍、1 秒等待、JPEG 质量 100。
func Default() Config {
	return Config{
		Template:        string(templates.Modern),
		Page:            Page{WidthMM: export.A4WidthMM, HeightMM: export.A4HeightMM},
		Scale:           canvasrenderer.DefaultScale,
		Settle:          time.Second,
		JPEGQuality:     export.DefaultJPEGQuality,
		FilenamePattern: export.DefaultPattern,
		AssetTimeout:    10 * time.Second,
		Listen:          ":8080",
		Chrome:          Chrome{Timeout: 60 * time.Second},
	}
}

// Load 依次应用默认值、YAML 文件（path 为空则跳过）、.env 与环境变量，然后校验。
func Load(path string, dotenv ...string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := LoadDotenv(dotenv...); err != nil {
		return Config{}, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("读取配置文件 %s 失败: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("解析配置文件 %s 失败: %w", path, err)
	}
	logger.Debugf("已加载配置文件 %s", path)
	return nil
}

// LoadDotenv 把 .env 文件载入进程环境，已存在的变量不会被覆盖。文件不存在时忽略。
func LoadDotenv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("加载 %s 失败: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv 用 RESUMEPRESS_* 变量覆盖配置。
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	var errs []error
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	num := func(key string, dst *float64) {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = f
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = n
		}
	}
	flag := func(key string, dst *bool) {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = b
		}
	}
	duration := func(key string, dst *time.Duration) {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			d, err := time.ParseDuration(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = d
		}
	}

	str("TEMPLATE", &c.Template)
	num("PAGE_WIDTH_MM", &c.Page.WidthMM)
	num("PAGE_HEIGHT_MM", &c.Page.HeightMM)
	num("SCALE", &c.Scale)
	duration("SETTLE", &c.Settle)
	integer("JPEG_QUALITY", &c.JPEGQuality)
	flag("LOSSY", &c.Lossy)
	flag("STRICT_ASSETS", &c.StrictAssets)
	str("FILENAME_PATTERN", &c.FilenamePattern)
	str("ASSET_DIR", &c.AssetDir)
	duration("ASSET_TIMEOUT", &c.AssetTimeout)
	str("LISTEN", &c.Listen)
	flag("SERVE_REMOTE_ASSETS", &c.ServeRemoteAssets)
	flag("SERVE_FILE_ASSETS", &c.ServeFileAssets)
	str("CHROME_PATH", &c.Chrome.ExecPath)
	duration("CHROME_TIMEOUT", &c.Chrome.Timeout)
	str("PRINTER", &c.Printer)
	str("PRINT_DIR", &c.PrintDir)
	return errors.Join(errs...)
}

// Validate 检查取值范围。未知模板不是错误，渲染时会回退到默认模板。
func (c Config) Validate() error {
	var errs []error
	if c.Page.WidthMM <= 0 || c.Page.HeightMM <= 0 {
		errs = append(errs, fmt.Errorf("纸张尺寸无效: %gx%gmm", c.Page.WidthMM, c.Page.HeightMM))
	}
	if c.Scale <= 0 || c.Scale > canvasrenderer.MaxScale {
		errs = append(errs, fmt.Errorf("倍率 %g 超出范围 (0, %g]", c.Scale, canvasrenderer.MaxScale))
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		errs = append(errs, fmt.Errorf("JPEG 质量 %d 超出范围 [1, 100]", c.JPEGQuality))
	}
	if c.Settle < 0 || c.AssetTimeout < 0 {
		errs = append(errs, errors.New("超时不能为负数"))
	}
	for _, p := range binding.Placeholders(c.FilenamePattern) {
		if p != "name" {
			errs = append(errs, fmt.Errorf("文件名模式中未知的占位符 ${%s}", p))
		}
	}
	if c.Template != "" && !templates.Known(templates.ID(c.Template)) {
		logger.Warnf("未知模板 %q，将使用默认模板 %s", c.Template, templates.Default)
	}
	return errors.Join(errs...)
}

// ExportOptions 转换为导出流水线的配置。命令行由本机用户驱动，远程与本地图片都允许；
// 服务模式由 server.Options 收紧。
func (c Config) ExportOptions() export.Options {
	return export.Options{
		PageWidthMM:  c.Page.WidthMM,
		PageHeightMM: c.Page.HeightMM,
		Scale:        c.Scale,
		JPEGQuality:  c.JPEGQuality,
		Lossy:        c.Lossy,
		Pattern:      c.FilenamePattern,
		Assets: assets.Options{
			BaseDir:     c.AssetDir,
			Timeout:     c.AssetTimeout,
			AllowRemote: true,
			AllowFiles:  true,
		},
	}
}

// RendererOptions 转换为渲染器配置。
func (c Config) RendererOptions() canvasrenderer.Options {
	return canvasrenderer.Options{StrictAssets: c.StrictAssets, Settle: c.Settle}
}

// String 以 YAML 形式输出配置，便于调试。
func (c Config) String() string {
	out, err := yaml.Marshal(c)
	if err != nil {
		return "config: " + err.Error()
	}
	return string(out)
}
