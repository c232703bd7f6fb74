package server

import (
	"sync"

	"github.com/ByLCY/resumepress/resume"
)

// Store 保存当前编辑中的简历。每次替换递增版本号，导出去重以版本区分内容。
type Store struct {
	mu      sync.RWMutex
	current resume.Resume
	version uint64
}

// NewStore 以初始记录创建存储。
func NewStore(initial resume.Resume) *Store {
	return &Store{current: initial, version: 1}
}

// Get 返回当前记录与版本号。
func (s *Store) Get() (resume.Resume, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.version
}

// Replace 整体替换记录，返回新版本号。
func (s *Store) Replace(r resume.Resume) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = r
	s.version++
	return s.version
}
