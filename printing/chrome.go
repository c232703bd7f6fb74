package printing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

const mmPerInch = 25.4

// ChromePlatform 在无头 Chrome 的新标签页里打印。
type ChromePlatform struct {
	// ExecPath 为空时由 chromedp 自动查找浏览器。
	ExecPath string
	Timeout  time.Duration
}

// Open 启动浏览器并打开一个空白标签页。
func (p ChromePlatform) Open(ctx context.Context) (Session, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("hide-scrollbars", true),
	)
	if p.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(p.ExecPath))
	}
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)

	timeout := p.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	runCtx, cancelRun := context.WithTimeout(tabCtx, timeout)

	s := &chromeSession{ctx: runCtx, cancel: func() {
		cancelRun()
		cancelTab()
		cancelAlloc()
	}}
	if err := chromedp.Run(runCtx, chromedp.Navigate("about:blank")); err != nil {
		s.cancel()
		return nil, fmt.Errorf("启动浏览器失败: %w", err)
	}
	return s, nil
}

type chromeSession struct {
	ctx    context.Context
	cancel func()
}

// Load 直接替换空白页的文档内容，不经过网络或临时文件。
func (s *chromeSession) Load(ctx context.Context, html string) error {
	return s.run(ctx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitReady("img", chromedp.ByQuery),
	)
}

func (s *chromeSession) Print(ctx context.Context, size PageSize) ([]byte, error) {
	var buf []byte
	err := s.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		buf, _, err = page.PrintToPDF().
			WithPrintBackground(true).
			WithPaperWidth(size.WidthMM / mmPerInch).
			WithPaperHeight(size.HeightMM / mmPerInch).
			WithMarginTop(0).
			WithMarginBottom(0).
			WithMarginLeft(0).
			WithMarginRight(0).
			WithPreferCSSPageSize(true).
			Do(ctx)
		return err
	}))
	if err != nil {
		return nil, err
	}
	if len(buf) == 0 {
		return nil, errors.New("浏览器返回空的打印结果")
	}
	return buf, nil
}

// run 在标签页上下文中执行动作，调用方的 ctx 取消时同样中止。
func (s *chromeSession) run(ctx context.Context, actions ...chromedp.Action) error {
	stop := context.AfterFunc(ctx, s.cancel)
	defer stop()
	if err := chromedp.Run(s.ctx, actions...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

// Close 关闭标签页与浏览器进程，可重复调用。
func (s *chromeSession) Close() error {
	s.cancel()
	return nil
}
