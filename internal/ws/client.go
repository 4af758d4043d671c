package ws

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// 心跳配置
const (
	pongWait       = 60 * time.Second    // 等待 Pong 响应的最大时间
	pingPeriod     = (pongWait * 9) / 10 // Ping 发送间隔，必须小于 pongWait
	writeWait      = 10 * time.Second    // 写消息超时时间
	maxMessageSize = 4 * 1024            // 订阅端只发控制消息，限制得小一些
)

// Client 代表一个订阅页面的 WebSocket 连接
type Client struct {
	Hub      *Hub
	Conn     *websocket.Conn
	RoomID   string
	ViewerID string
	Room     *Room       // 所属房间引用
	send     chan []byte // 发送消息缓冲区
	log      zerolog.Logger
}

// NewClient 创建客户端实例
func NewClient(hub *Hub, conn *websocket.Conn, roomID, viewerID string, log zerolog.Logger) *Client {
	return &Client{
		Hub:      hub,
		Conn:     conn,
		RoomID:   roomID,
		ViewerID: viewerID,
		send:     make(chan []byte, 64),
		log:      log.With().Str("room", roomID).Str("viewer", viewerID).Logger(),
	}
}

// WritePump 负责写消息和发送心跳 Ping
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))

			if !ok {
				// send channel 已关闭，发送关闭帧
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			// 定时发送 Ping 保活
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ReadPump 负责读控制消息和处理心跳 Pong
func (c *Client) ReadPump() {
	defer func() {
		if c.Room != nil {
			c.Room.Unregister(c)
		}
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))

	// 收到 Pong 时重置读超时
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Warn().Err(err).Msg("[Client] 连接异常关闭")
			}
			break
		}

		// 收到消息也重置读超时
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		c.handleMessage(message)
	}
}

// handleMessage 订阅端只能请求同步或发心跳
func (c *Client) handleMessage(message []byte) {
	var msg WSMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		c.sendError(ErrInvalidMessage, err.Error())
		return
	}

	switch msg.Type {
	case TypeSync:
		if c.Room == nil {
			c.sendError(ErrRoomNotFound, c.RoomID)
			return
		}
		c.Room.RequestSync(c)
	case TypePing:
		c.sendControl(WSMessage{Type: TypePong, SenderID: "server", Timestamp: time.Now().UnixMilli()})
	default:
		c.sendError(ErrUnsupportedMessage, string(msg.Type))
	}
}

// sendError 发送结构化错误消息
func (c *Client) sendError(code ErrorCode, message string) {
	errPayload, _ := json.Marshal(ErrorPayload{
		Code:    code,
		Message: message,
	})
	c.sendControl(WSMessage{
		Type:      TypeError,
		SenderID:  "server",
		Payload:   errPayload,
		Timestamp: time.Now().UnixMilli(),
	})
}

// sendControl 控制消息也交给房间投递，send 只由房间的事件循环写入和关闭
func (c *Client) sendControl(msg WSMessage) {
	if c.Room == nil {
		return
	}
	data, _ := json.Marshal(msg)
	c.Room.Reply(c, data)
}
