package blob

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_Put(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "audio")
	store, err := NewFileStore(dir, "/audio/")
	require.NoError(t, err)
	ctx := context.Background()

	url, err := store.Put(ctx, "plant-1-en.mp3", []byte("v1"), "audio/mpeg")
	require.NoError(t, err)
	assert.Equal(t, "/audio/plant-1-en.mp3", url)

	// 同名覆盖
	_, err = store.Put(ctx, "plant-1-en.mp3", []byte("v2"), "audio/mpeg")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "plant-1-en.mp3"))
	require.NoError(t, err)
	assert.Equal(t, "v2", string(data))

	// 不残留临时文件
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestCheckName(t *testing.T) {
	store := NewMemoryStore("")
	for _, name := range []string{"", "..", "../x.mp3", "a/b.mp3", `a\b.mp3`} {
		_, err := store.Put(context.Background(), name, []byte("x"), "audio/mpeg")
		assert.ErrorIs(t, err, ErrInvalidName, name)
	}
	assert.Equal(t, 0, store.Len())
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore("https://cdn.example.com")
	data := []byte("abc")

	url, err := store.Put(context.Background(), "location-2-es.mp3", data, "audio/mpeg")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/location-2-es.mp3", url)

	// 调用方后续修改切片不影响已存内容
	data[0] = 'x'
	obj, ok := store.Get("location-2-es.mp3")
	require.True(t, ok)
	assert.Equal(t, "abc", string(obj.Data))
	assert.Equal(t, "audio/mpeg", obj.ContentType)

	_, ok = store.Get("missing.mp3")
	assert.False(t, ok)
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	s, err := New(ctx, Config{Backend: BackendMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = New(ctx, Config{Dir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	_, err = New(ctx, Config{Backend: BackendS3})
	assert.Error(t, err, "缺少 bucket")

	_, err = New(ctx, Config{Backend: "ftp"})
	assert.Error(t, err)
}

func TestS3Store_Put(t *testing.T) {
	var (
		mu        sync.Mutex
		gotMethod string
		gotPath   string
		gotType   string
		gotACL    string
		gotBody   []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		gotMethod, gotPath = r.Method, r.URL.Path
		gotType = r.Header.Get("Content-Type")
		gotACL = r.Header.Get("X-Amz-Acl")
		gotBody = body
		mu.Unlock()
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	store, err := NewS3Store(context.Background(), Config{
		S3Bucket:    "tour-audio",
		S3Region:    "us-east-1",
		S3Endpoint:  srv.URL,
		S3AccessKey: "minio",
		S3SecretKey: "minio123",
		S3Prefix:    "audio",
		PublicURL:   "https://cdn.example.com",
	})
	require.NoError(t, err)

	url, err := store.Put(context.Background(), "plant-7-fr.mp3", []byte("fake-mp3"), "audio/mpeg")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/audio/plant-7-fr.mp3", url)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/tour-audio/audio/plant-7-fr.mp3", gotPath)
	assert.Equal(t, "audio/mpeg", gotType)
	assert.Equal(t, "public-read", gotACL)
	assert.Contains(t, string(gotBody), "fake-mp3")
}
