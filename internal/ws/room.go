package ws

import (
	"bytes"
	"encoding/json"
	"sync"
	"time"

	domainErrors "museum-tour-server/domain/errors"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/rs/zerolog"
)

// ========== Actor Model: Room 是完全自治的独立单元 ==========
// 一个 Room 对应一个页面（父实体 + 语言），只推送不接收编辑
// clients map 只在 run() 循环内访问，无需锁！

// Room 既包含数据，也包含处理逻辑（Actor Model）
type Room struct {
	ID string

	// 最近一次推送的页面快照
	currentState []byte
	version      int64
	stateMu      sync.RWMutex

	// 私有 clients map - 只在 run() 内访问，无需锁
	clients map[*Client]bool

	// 事件通道：所有操作都变成消息
	broadcast  chan *RoomBroadcast // 广播消息
	register   chan *Client        // 加入请求
	unregister chan *Client        // 退出请求
	resync     chan *Client        // 客户端请求全量同步
	reply      chan *RoomReply     // 发给单个客户端的控制消息
	release    chan struct{}       // 没有订阅者时请求停止
	stopChan   chan struct{}       // 停止信号
	done       chan struct{}       // run() 已退出
	stopOnce   sync.Once

	// 对外可读的计数与状态
	countMu     sync.RWMutex
	clientCount int
	stopping    bool

	// 反向引用：房间空闲时通知 Hub
	hub *Hub
	log zerolog.Logger
}

// RoomBroadcast 广播消息结构
type RoomBroadcast struct {
	Message    []byte
	Sender     *Client
	IsCritical bool
}

// RoomReply 只发给某一个客户端的消息
type RoomReply struct {
	Client  *Client
	Message []byte
}

// PageUpdatePayload page-updated 消息的 payload
// Diff 为相对上一次快照的 RFC 7386 merge patch，客户端可据此做增量渲染
type PageUpdatePayload struct {
	Page json.RawMessage `json:"page"`
	Diff json.RawMessage `json:"diff,omitempty"`
}

// NewRoom 创建房间并启动事件循环
func NewRoom(id string, initialState []byte, hub *Hub, log zerolog.Logger) *Room {
	r := newRoom(id, initialState, hub, log)
	go r.run() // 启动房间事件循环

	r.log.Debug().Msg("[Room] 🚀 已创建并启动")
	return r
}

func newRoom(id string, initialState []byte, hub *Hub, log zerolog.Logger) *Room {
	return &Room{
		ID:           id,
		currentState: initialState,
		version:      1,
		clients:      make(map[*Client]bool),
		broadcast:    make(chan *RoomBroadcast, 256),
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		resync:       make(chan *Client, 16),
		reply:        make(chan *RoomReply, 16),
		release:      make(chan struct{}, 1),
		stopChan:     make(chan struct{}),
		done:         make(chan struct{}),
		hub:          hub,
		log:          log.With().Str("room", id).Logger(),
	}
}

// run 是房间的主宰，所有逻辑都在这里串行处理，所以 clients map 不需要锁！
func (r *Room) run() {
	defer func() {
		r.countMu.Lock()
		r.stopping = true
		r.clientCount = 0
		r.countMu.Unlock()

		for client := range r.clients {
			delete(r.clients, client)
			close(client.send)
		}
		close(r.done)

		// 通知 Hub 回收房间
		if r.hub != nil {
			r.hub.NotifyIdle(r)
		}
		r.log.Debug().Msg("[Room] 🛑 事件循环已停止")
	}()

	for {
		select {
		// 1. 处理客户端注册 (无锁！)
		case client := <-r.register:
			r.clients[client] = true
			r.updateClientCount(len(r.clients))
			r.sendSyncToClient(client)
			r.log.Info().Str("viewer", client.ViewerID).Int("viewers", len(r.clients)).Msg("[Room] 👋 订阅者加入")

		// 2. 处理客户端注销 (无锁！)
		case client := <-r.unregister:
			if _, ok := r.clients[client]; ok {
				delete(r.clients, client)
				close(client.send)
				r.updateClientCount(len(r.clients))
				r.log.Info().Str("viewer", client.ViewerID).Int("viewers", len(r.clients)).Msg("[Room] 👋 订阅者离开")

				// 房间空了，退出循环触发回收
				if len(r.clients) == 0 {
					return
				}
			}

		// 3. 客户端请求全量同步
		case client := <-r.resync:
			if _, ok := r.clients[client]; ok {
				r.sendSyncToClient(client)
			}

		// 4. 单播控制消息，缓冲区满时丢弃
		case rep := <-r.reply:
			if _, ok := r.clients[rep.Client]; ok {
				select {
				case rep.Client.send <- rep.Message:
				default:
				}
			}

		// 5. 处理广播 (核心热路径 - 无锁！)
		case msg := <-r.broadcast:
			for client := range r.clients {
				if msg.Sender != nil && client == msg.Sender {
					continue
				}

				select {
				case client.send <- msg.Message:
					// 发送成功
				default:
					// 缓冲区满
					if msg.IsCritical {
						r.log.Warn().Str("viewer", client.ViewerID).Msg("[Room] ⚠️ 关键消息阻塞，断开订阅者")
						delete(r.clients, client)
						close(client.send)
						r.updateClientCount(len(r.clients))
					}
					// 非关键消息直接丢弃
				}
			}
			if len(r.clients) == 0 {
				return
			}

		// 6. 创建者放弃订阅（例如升级失败），没人加入就退出
		case <-r.release:
			if len(r.clients) == 0 {
				return
			}

		// 7. 停止信号
		case <-r.stopChan:
			return
		}
	}
}

// sendSyncToClient 发送全量同步消息
func (r *Room) sendSyncToClient(client *Client) {
	snapshot, version := r.GetSnapshot()

	payload, _ := json.Marshal(SyncPayload{
		Page:    snapshot,
		Version: version,
		Viewers: len(r.clients),
	})
	data, _ := json.Marshal(WSMessage{
		Type:      TypeSync,
		SenderID:  "server",
		Payload:   payload,
		Version:   version,
		Timestamp: time.Now().UnixMilli(),
	})

	select {
	case client.send <- data:
	default:
		r.log.Warn().Str("viewer", client.ViewerID).Msg("[Room] ⚠️ 发送缓冲区已满，跳过 Sync")
	}
}

// ========== 对外暴露的接口 ==========

// Register 注册客户端到房间；房间已停止时返回 ErrRoomClosing
// 必须在启动 ReadPump / WritePump 之前调用
func (r *Room) Register(client *Client) error {
	client.Room = r
	select {
	case r.register <- client:
		return nil
	case <-r.done:
		client.Room = nil
		return domainErrors.ErrRoomClosing
	}
}

// Unregister 注销客户端，房间已停止时直接返回
func (r *Room) Unregister(client *Client) {
	select {
	case r.unregister <- client:
	case <-r.done:
	}
}

// RequestSync 客户端请求重新下发快照
func (r *Room) RequestSync(client *Client) {
	select {
	case r.resync <- client:
	case <-r.done:
	default:
		// 已有排队的同步请求
	}
}

// Reply 单播给某个客户端，房间已停止时丢弃
func (r *Room) Reply(client *Client, message []byte) {
	select {
	case r.reply <- &RoomReply{Client: client, Message: message}:
	case <-r.done:
	}
}

// Broadcast 广播消息，房间已停止时丢弃
func (r *Room) Broadcast(message []byte, sender *Client, isCritical bool) {
	select {
	case r.broadcast <- &RoomBroadcast{Message: message, Sender: sender, IsCritical: isCritical}:
	case <-r.done:
	}
}

// ReleaseIfIdle 房间此刻没有订阅者时停止，已有订阅者则什么都不做
// 不阻塞：判断在 run() 内完成，与注册串行
func (r *Room) ReleaseIfIdle() {
	select {
	case r.release <- struct{}{}:
	default:
		// 已有排队的请求
	}
}

// Stop 停止房间（由 Hub 调用），阻塞到事件循环退出
func (r *Room) Stop() {
	r.stopOnce.Do(func() { close(r.stopChan) })
	<-r.done
}

// ========== 需要锁保护的状态操作 ==========

// UpdateState 替换页面快照，返回新版本号与相对旧快照的 merge patch
// 内容未变化时版本号不变，diff 为 nil
func (r *Room) UpdateState(next []byte) (int64, []byte) {
	r.stateMu.Lock()
	defer r.stateMu.Unlock()

	if bytes.Equal(r.currentState, next) {
		return r.version, nil
	}

	var diff []byte
	if len(r.currentState) > 0 {
		d, err := jsonpatch.CreateMergePatch(r.currentState, next)
		if err != nil {
			r.log.Warn().Err(err).Msg("[Room] ⚠️ 计算页面差异失败，只推送全量")
		} else {
			diff = d
		}
	}

	r.currentState = append([]byte(nil), next...)
	r.version++
	return r.version, diff
}

// GetSnapshot 获取当前快照
func (r *Room) GetSnapshot() ([]byte, int64) {
	r.stateMu.RLock()
	defer r.stateMu.RUnlock()

	snapshot := make([]byte, len(r.currentState))
	copy(snapshot, r.currentState)

	return snapshot, r.version
}

// ClientCount 当前订阅者数量
func (r *Room) ClientCount() int {
	r.countMu.RLock()
	defer r.countMu.RUnlock()
	return r.clientCount
}

// IsStopping 房间是否已停止或正在停止
func (r *Room) IsStopping() bool {
	r.countMu.RLock()
	defer r.countMu.RUnlock()
	return r.stopping
}

func (r *Room) updateClientCount(n int) {
	r.countMu.Lock()
	r.clientCount = n
	r.countMu.Unlock()
}
