package layout

import (
	"encoding/json"
	"io"
	"os"
)

// WriteDebugJSON 将布局结果输出为 JSON，便于调试或可视化。path 为 "-" 时写到标准输出。
func WriteDebugJSON(res *Result, path string) error {
	if res == nil {
		return nil
	}
	if path == "-" {
		return EncodeDebugJSON(res, os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := EncodeDebugJSON(res, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// EncodeDebugJSON 把布局结果编码到 w。
func EncodeDebugJSON(res *Result, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
