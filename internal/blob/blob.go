// Package blob 提供三种音频文件存储：S3 兼容对象存储、本地目录、内存（测试/演示）。
package blob

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"museum-tour-server/domain/capability"
)

// 存储后端
const (
	BackendFilesystem = "filesystem"
	BackendS3         = "s3"
	BackendMemory     = "memory"
)

// ErrInvalidName 文件名不能包含路径
var ErrInvalidName = errors.New("invalid blob name")

// Config 存储配置，按 Backend 取用对应字段
type Config struct {
	Backend   string
	Dir       string // filesystem: 写入目录
	PublicURL string // filesystem / s3: 对外访问前缀；s3 为空时使用上传返回的地址

	S3Bucket    string
	S3Region    string
	S3Endpoint  string // MinIO 等兼容服务
	S3AccessKey string
	S3SecretKey string
	S3Prefix    string
}

// New 按配置创建存储
func New(ctx context.Context, cfg Config) (capability.BlobStore, error) {
	switch cfg.Backend {
	case "", BackendFilesystem:
		return NewFileStore(cfg.Dir, cfg.PublicURL)
	case BackendS3:
		return NewS3Store(ctx, cfg)
	case BackendMemory:
		return NewMemoryStore(cfg.PublicURL), nil
	default:
		return nil, fmt.Errorf("unknown blob backend %q", cfg.Backend)
	}
}

func checkName(name string) error {
	if name == "" || filepath.Base(name) != name || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

func joinURL(base, name string) string {
	return strings.TrimRight(base, "/") + "/" + name
}
