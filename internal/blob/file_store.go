package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore 写入本地目录，由 HTTP 服务以静态文件方式对外提供
type FileStore struct {
	dir       string
	publicURL string
}

// NewFileStore 目录不存在时自动创建
func NewFileStore(dir, publicURL string) (*FileStore, error) {
	if dir == "" {
		dir = "./public/audio"
	}
	if publicURL == "" {
		publicURL = "/audio"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create blob dir: %w", err)
	}
	return &FileStore{dir: dir, publicURL: publicURL}, nil
}

// Dir 写入目录
func (s *FileStore) Dir() string {
	return s.dir
}

// PublicURL 对外访问前缀
func (s *FileStore) PublicURL() string {
	return s.publicURL
}

// Put 先写临时文件再 rename，读者不会看到写了一半的文件
func (s *FileStore) Put(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(s.dir, "."+name+".*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		return "", err
	}
	return joinURL(s.publicURL, name), nil
}
