package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"museum-tour-server/domain/entity"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// ========== Actor Model: Hub 是生死的唯一仲裁者 ==========
// Hub 不处理任何业务消息，只管理 Room 的生命周期，并把页面事件投递到对应房间

// Hub 维护房间目录
type Hub struct {
	rooms    map[string]*Room
	mu       sync.RWMutex
	idleRoom chan *Room // Room 空闲信号（请求回收）
	loading  singleflight.Group
	pages    PageSource
	log      zerolog.Logger
}

// PageSource 读取页面快照
type PageSource interface {
	// Snapshot 父实体或语言不存在时返回 NotFoundError
	Snapshot(ctx context.Context, parent entity.ParentRef, languageID uint) (*entity.Page, error)
}

// NewHub 创建 Hub 实例
func NewHub(pages PageSource, log zerolog.Logger) *Hub {
	return &Hub{
		rooms:    make(map[string]*Room),
		idleRoom: make(chan *Room, 16),
		pages:    pages,
		log:      log.With().Str("component", "hub").Logger(),
	}
}

// Run Hub 事件循环
func (h *Hub) Run() {
	h.log.Info().Msg("[Hub] 🚀 Hub 已启动")

	for room := range h.idleRoom {
		h.handleIdleRoom(room)
	}
}

// handleIdleRoom 回收已停止的房间
func (h *Hub) handleIdleRoom(room *Room) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// ⚠️ 关键：检查 Map 里的房间是不是当初那个房间
	// 防止 GetOrCreateRoom 在此期间创建了新房间，结果被我们删了
	if current, ok := h.rooms[room.ID]; ok && current == room {
		delete(h.rooms, room.ID)
		h.log.Debug().Str("room", room.ID).Msg("[Hub] 🗑️ 房间已回收")
	}
}

// GetRoom 只读获取房间，不创建
func (h *Hub) GetRoom(roomID string) *Room {
	h.mu.RLock()
	defer h.mu.RUnlock()

	room, exists := h.rooms[roomID]
	if !exists || room.IsStopping() {
		return nil
	}
	return room
}

// GetOrCreateRoom 线程安全地获取或创建页面房间
// ⚠️ 只有父实体与语言都存在时才会创建房间，否则返回 NotFoundError
// 快照在写锁之外读取，读库期间 NotifyPage 不受影响；同一页面的并发请求合并为一次读库
func (h *Hub) GetOrCreateRoom(ctx context.Context, parent entity.ParentRef, languageID uint) (*Room, error) {
	roomID := parent.Key(languageID)

	// 先尝试读锁快速路径
	if room := h.GetRoom(roomID); room != nil {
		return room, nil
	}

	v, err, _ := h.loading.Do(roomID, func() (interface{}, error) {
		// 上一轮 flight 可能刚创建好房间
		if room := h.GetRoom(roomID); room != nil {
			return room, nil
		}

		page, err := h.pages.Snapshot(ctx, parent, languageID)
		if err != nil {
			h.log.Debug().Err(err).Str("room", roomID).Msg("[Hub] ❌ 拒绝创建房间")
			return nil, err
		}
		state, err := json.Marshal(page)
		if err != nil {
			return nil, err
		}

		h.mu.Lock()
		defer h.mu.Unlock()

		// 正在停止的旧房间直接替换，回收时按指针比较不会误删新房间
		if room, exists := h.rooms[roomID]; exists && !room.IsStopping() {
			return room, nil
		}
		room := NewRoom(roomID, state, h, h.log)
		h.rooms[roomID] = room

		h.log.Info().Str("room", roomID).Msg("[Hub] 🏠 创建房间")
		return room, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Room), nil
}

// NotifyIdle 供 Room 调用，通知 Hub 房间已停止
func (h *Hub) NotifyIdle(room *Room) {
	h.idleRoom <- room
}

// NotifyPage 把页面事件推送给订阅者；没有人订阅时什么都不做
func (h *Hub) NotifyPage(parent entity.ParentRef, languageID uint, event string, payload interface{}) {
	room := h.GetRoom(parent.Key(languageID))
	if room == nil {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		h.log.Error().Err(err).Str("room", room.ID).Str("event", event).Msg("[Hub] ❌ 事件序列化失败")
		return
	}

	msg := WSMessage{
		Type:      MessageType(event),
		SenderID:  "server",
		Payload:   data,
		Timestamp: time.Now().UnixMilli(),
	}
	critical := false
	if msg.Type == TypePageUpdated {
		version, diff := room.UpdateState(data)
		msg.Version = version
		msg.Payload, _ = json.Marshal(PageUpdatePayload{Page: data, Diff: diff})
		// 页面内容必须送达，跟不上的连接直接断开让其重连同步
		critical = true
	}

	encoded, _ := json.Marshal(msg)
	room.Broadcast(encoded, nil, critical)
}

// RoomCount 当前活跃房间数
func (h *Hub) RoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

// Shutdown 停止所有房间（进程退出前调用）
func (h *Hub) Shutdown() {
	h.mu.RLock()
	rooms := make([]*Room, 0, len(h.rooms))
	for _, room := range h.rooms {
		rooms = append(rooms, room)
	}
	h.mu.RUnlock()

	for _, room := range rooms {
		room.Stop()
	}
	h.log.Info().Int("rooms", len(rooms)).Msg("[Hub] 💤 所有房间已停止")
}
