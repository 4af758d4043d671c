package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"museum-tour-server/domain/entity"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ========== MockPageSource ==========
// 实现 PageSource 接口，用于 Hub 和 Room 的单元测试

type MockPageSource struct {
	mock.Mock
}

func (m *MockPageSource) Snapshot(ctx context.Context, parent entity.ParentRef, languageID uint) (*entity.Page, error) {
	args := m.Called(ctx, parent, languageID)
	// 处理 nil 情况
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Page), args.Error(1)
}

// ========== 测试辅助 ==========

// newTestClient 不带真实连接的客户端，直接读 send 通道
func newTestClient(viewerID string, buffer int) *Client {
	return &Client{
		ViewerID: viewerID,
		send:     make(chan []byte, buffer),
		log:      zerolog.Nop(),
	}
}

// recv 读取下一条消息，超时则失败
func recv(t *testing.T, c *Client) WSMessage {
	t.Helper()
	select {
	case data, ok := <-c.send:
		require.True(t, ok, "send channel closed")
		var msg WSMessage
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return WSMessage{}
	}
}
