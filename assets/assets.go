// Package assets 加载布局引用的图片，并在全部加载结束后发出就绪信号。
package assets

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/flanksource/commons/logger"
	"github.com/samber/lo"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"
)

const (
	defaultTimeout     = 10 * time.Second
	defaultConcurrency = 4
	maxAssetBytes      = 16 << 20
)

var (
	// ErrNotSettled 表示在 Ready 之前读取了资源。
	ErrNotSettled = errors.New("资源尚未加载完成")
	// ErrUnknown 表示引用不在集合中。
	ErrUnknown = errors.New("未登记的资源")
	// ErrForbidden 表示引用的来源不在允许范围内。
	ErrForbidden = errors.New("不允许的资源来源")
)

// Options 控制资源加载。data: URI 总是允许，其余来源需显式打开。
type Options struct {
	// BaseDir 用于解析相对路径与 file: 引用，本地文件不能逃出该目录。
	BaseDir string
	// AllowRemote 允许下载 http(s) 图片。
	AllowRemote bool
	// AllowFiles 允许读取 BaseDir 下的本地文件。
	AllowFiles  bool
	Client      *http.Client
	Timeout     time.Duration
	Concurrency int
}

type entry struct {
	img image.Image
	err error
}

// Set 是一次导出引用到的图片集合。
type Set struct {
	opts    Options
	refs    []string
	mu      sync.RWMutex
	entries map[string]entry
	ready   chan struct{}
	once    sync.Once
}

// NewSet 以去重后的引用列表创建集合，空引用会被忽略。
func NewSet(refs []string, opts Options) *Set {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: opts.Timeout}
	}
	refs = lo.Uniq(lo.Compact(lo.Map(refs, func(r string, _ int) string { return strings.TrimSpace(r) })))
	return &Set{
		opts:    opts,
		refs:    refs,
		entries: make(map[string]entry, len(refs)),
		ready:   make(chan struct{}),
	}
}

// Refs 返回集合中的引用。
func (s *Set) Refs() []string { return append([]string(nil), s.refs...) }

// Ready 在 Load 结束（无论成败）后关闭。
func (s *Set) Ready() <-chan struct{} { return s.ready }

// Load 并发加载全部资源。单个资源失败只会被记录，不会中断其他加载；
// ctx 取消时未完成的资源记为失败。多次调用只加载一次。
func (s *Set) Load(ctx context.Context) {
	s.once.Do(func() {
		defer close(s.ready)
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.opts.Concurrency)
		for _, ref := range s.refs {
			g.Go(func() error {
				img, err := s.fetch(gctx, ref)
				if err != nil {
					logger.Warnf("加载图片 %s 失败: %v", ref, err)
				} else {
					logger.Debugf("loaded asset %s (%dx%d)", ref, img.Bounds().Dx(), img.Bounds().Dy())
				}
				s.mu.Lock()
				s.entries[ref] = entry{img: img, err: err}
				s.mu.Unlock()
				return nil
			})
		}
		_ = g.Wait()
	})
}

// Get 返回解码后的图片或记录下的失败原因。
func (s *Set) Get(ref string) (image.Image, error) {
	select {
	case <-s.ready:
	default:
		return nil, ErrNotSettled
	}
	s.mu.RLock()
	e, ok := s.entries[strings.TrimSpace(ref)]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknown, ref)
	}
	return e.img, e.err
}

// Failed 返回加载失败的引用。
func (s *Set) Failed() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.Filter(s.refs, func(r string, _ int) bool {
		e, ok := s.entries[r]
		return ok && e.err != nil
	})
}

func (s *Set) fetch(ctx context.Context, ref string) (image.Image, error) {
	data, err := s.read(ctx, ref)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("解码图片失败: %w", err)
	}
	return img, nil
}

func (s *Set) read(ctx context.Context, ref string) ([]byte, error) {
	switch {
	case strings.HasPrefix(ref, "data:"):
		return decodeDataURI(ref)
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		if !s.opts.AllowRemote {
			return nil, fmt.Errorf("%w: %s", ErrForbidden, ref)
		}
		return s.download(ctx, ref)
	case !s.opts.AllowFiles:
		return nil, fmt.Errorf("%w: %s", ErrForbidden, ref)
	case strings.HasPrefix(ref, "file:"):
		u, err := url.Parse(ref)
		if err != nil {
			return nil, fmt.Errorf("解析文件地址失败: %w", err)
		}
		path := u.Path
		if path == "" {
			path = u.Opaque
		}
		return s.readFile(path)
	default:
		return s.readFile(ref)
	}
}

func (s *Set) readFile(path string) ([]byte, error) {
	if s.opts.BaseDir == "" {
		return nil, fmt.Errorf("%w: 未指定资源目录 (%s)", ErrForbidden, path)
	}
	rel, err := localPath(s.opts.BaseDir, path)
	if err != nil {
		return nil, err
	}
	// os.Root 同时挡住经由符号链接的逃逸
	root, err := os.OpenRoot(s.opts.BaseDir)
	if err != nil {
		return nil, err
	}
	defer root.Close()
	f, err := root.Open(rel)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, maxAssetBytes))
}

// localPath 把 path 转换为相对 base 的路径，超出 base 的路径返回 ErrForbidden。
func localPath(base, path string) (string, error) {
	rel := path
	if filepath.IsAbs(path) {
		absBase, err := filepath.Abs(base)
		if err != nil {
			return "", err
		}
		rel, err = filepath.Rel(absBase, filepath.Clean(path))
		if err != nil {
			return "", fmt.Errorf("%w: %s", ErrForbidden, path)
		}
	}
	if !filepath.IsLocal(rel) {
		return "", fmt.Errorf("%w: %s 不在资源目录内", ErrForbidden, path)
	}
	return rel, nil
}

func (s *Set) download(ctx context.Context, ref string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.opts.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("下载图片返回状态码 %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxAssetBytes))
}

// decodeDataURI 支持 data:[<mediatype>][;base64],<data>。
func decodeDataURI(ref string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(ref, "data:"), ",")
	if !ok {
		return nil, errors.New("data URI 缺少逗号")
	}
	if strings.HasSuffix(meta, ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("data URI base64 解码失败: %w", err)
		}
		return data, nil
	}
	text, err := url.PathUnescape(payload)
	if err != nil {
		return nil, err
	}
	return []byte(text), nil
}
