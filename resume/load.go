package resume

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// Format 表示简历数据文件的编码格式。
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// FormatFromPath 根据扩展名推断格式，未知扩展名按 JSON 处理。
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Load 读取并解析简历文件。
func Load(path string) (Resume, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Resume{}, fmt.Errorf("读取简历文件 %s 失败: %w", path, err)
	}
	r, err := Decode(bytes.NewReader(data), FormatFromPath(path))
	if err != nil {
		return Resume{}, fmt.Errorf("解析简历文件 %s 失败: %w", path, err)
	}
	return r, nil
}

// Decode 按指定格式解析简历，并执行结构校验。
func Decode(r io.Reader, format Format) (Resume, error) {
	var out Resume
	switch format {
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&out); err != nil && err != io.EOF {
			return Resume{}, err
		}
	case FormatJSON, "":
		if err := json.NewDecoder(r).Decode(&out); err != nil && err != io.EOF {
			return Resume{}, err
		}
	default:
		return Resume{}, fmt.Errorf("不支持的简历格式: %s", format)
	}
	if err := out.Validate(); err != nil {
		return Resume{}, err
	}
	return out, nil
}

// Validate 只做结构性检查：技能熟练度范围与集合内 ID 唯一。
// 缺失的文本字段（包括空 ID）不是错误。
func (r Resume) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("简历数据校验失败: %w", err)
	}
	checks := map[string][]string{
		"experience": lo.Map(r.Experience, func(e ExperienceEntry, _ int) string { return e.ID }),
		"education":  lo.Map(r.Education, func(e EducationEntry, _ int) string { return e.ID }),
		"skills":     lo.Map(r.Skills, func(e SkillEntry, _ int) string { return e.ID }),
	}
	for _, name := range []string{"experience", "education", "skills"} {
		if dup := lo.FindDuplicates(lo.Compact(checks[name])); len(dup) > 0 {
			return fmt.Errorf("简历数据校验失败: %s 中存在重复 ID %q", name, dup[0])
		}
	}
	return nil
}
