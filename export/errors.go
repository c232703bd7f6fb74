package export

import (
	"errors"
	"fmt"
)

// ErrPreviewMissing 表示文档里找不到在线预览元素。
var ErrPreviewMissing = errors.New("未找到简历预览元素")

// PreconditionError 表示导出开始前的前置条件不满足，没有产生任何副作用。
type PreconditionError struct {
	Err error
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("导出前置条件不满足: %v", e.Err)
}

func (e *PreconditionError) Unwrap() error { return e.Err }

// ResourceError 表示冻结、排版、资源加载或光栅化阶段失败。
type ResourceError struct {
	Stage string
	Err   error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("导出失败（%s）: %v", e.Stage, e.Err)
}

func (e *ResourceError) Unwrap() error { return e.Err }

// EncodeError 表示编码输出文件失败。
type EncodeError struct {
	Format Format
	Err    error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("编码 %s 失败: %v", e.Format, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }
