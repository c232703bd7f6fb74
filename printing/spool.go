package printing

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// CommandSpooler 通过 lp 之类的命令把 PDF 送入打印队列，数据经标准输入传入。
type CommandSpooler struct {
	Command string
	Printer string
	Args    []string
}

func (s CommandSpooler) Spool(ctx context.Context, title string, pdf []byte) error {
	name := s.Command
	if name == "" {
		name = "lp"
	}
	args := append([]string(nil), s.Args...)
	if s.Printer != "" {
		args = append(args, "-d", s.Printer)
	}
	if title != "" {
		args = append(args, "-t", title)
	}
	args = append(args, "-")

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = bytes.NewReader(pdf)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// FileSpooler 把打印结果写到目录中，用于没有打印机的环境。
type FileSpooler struct {
	Dir string
	// Name 为输出文件名，为空时由标题推出。
	Name string
}

func (s FileSpooler) Spool(_ context.Context, title string, pdf []byte) error {
	name := s.Name
	if name == "" {
		name = strings.Join(strings.Fields(title), "_")
		if name == "" {
			name = "print"
		}
		name += ".pdf"
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(s.Dir, filepath.Base(name))
	if err := os.WriteFile(path, pdf, 0o644); err != nil {
		return fmt.Errorf("写入 %s 失败: %w", path, err)
	}
	return nil
}
