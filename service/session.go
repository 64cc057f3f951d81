package service

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// ErrSessionNotFound 会话不存在或已过期
var ErrSessionNotFound = errors.New("会话不存在或已过期")

// Session 一次上传对应的页面状态：原始表格及其编辑
type Session struct {
	ID        string
	FileName  string
	Sheet     string
	CreatedAt time.Time
	Table     *EditableTable
}

// NewSession 基于上传的表格创建会话
func NewSession(fileName, sheet string, table *Table) *Session {
	return &Session{
		ID:        uuid.NewString(),
		FileName:  fileName,
		Sheet:     sheet,
		CreatedAt: time.Now(),
		Table:     NewEditableTable(table),
	}
}

// SessionStore 进程内会话存储，条目在 ttl 内无访问即过期
type SessionStore struct {
	ttl   time.Duration
	cache *cache.Cache
}

// NewSessionStore 创建会话存储
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		ttl:   ttl,
		cache: cache.New(ttl, 2*ttl),
	}
}

// Save 保存会话
func (s *SessionStore) Save(sess *Session) {
	s.cache.Set(sess.ID, sess, s.ttl)
}

// Get 获取会话并刷新过期时间
func (s *SessionStore) Get(id string) (*Session, error) {
	v, ok := s.cache.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess := v.(*Session)
	s.cache.Set(id, sess, s.ttl)
	return sess, nil
}

// Delete 删除会话
func (s *SessionStore) Delete(id string) {
	s.cache.Delete(id)
}

// Count 当前会话数量
func (s *SessionStore) Count() int {
	return s.cache.ItemCount()
}
