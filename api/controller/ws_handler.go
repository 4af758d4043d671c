package controller

import (
	"net/http"
	"strconv"
	"strings"

	"museum-tour-server/domain/entity"
	"museum-tour-server/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// WSHandler WebSocket 连接处理器
type WSHandler struct {
	hub      *ws.Hub
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

// NewWSHandler 构造函数
func NewWSHandler(hub *ws.Hub, allowedOrigins []string, log zerolog.Logger) *WSHandler {
	h := &WSHandler{
		hub: hub,
		log: log.With().Str("component", "ws-handler").Logger(),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		// 配置 CORS
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			// 开发环境允许所有
			if origin == "" || strings.HasPrefix(origin, "http://localhost") {
				return true
			}
			// 生产环境检查白名单
			for _, allowed := range allowedOrigins {
				if allowed == "*" || origin == allowed {
					return true
				}
			}
			h.log.Warn().Str("origin", origin).Msg("[WS] ⚠️ 拒绝跨域连接")
			return false
		},
	}
	return h
}

// HandleWS 处理 WebSocket 升级请求
// GET /ws?kind=plant&id=1&language_id=2
// 订阅某个页面，服务端推送 page-updated / bootstrap-* / audio-updated
func (h *WSHandler) HandleWS(c *gin.Context) {
	kind := entity.ParentKind(c.Query("kind"))
	if !kind.Valid() {
		respondFail(c, http.StatusBadRequest, "kind must be location or plant")
		return
	}
	id, err := strconv.ParseUint(c.Query("id"), 10, 64)
	if err != nil || id == 0 {
		respondFail(c, http.StatusBadRequest, "Invalid id")
		return
	}
	languageID, ok := queryLanguageID(c)
	if !ok {
		return
	}
	parent := entity.ParentRef{Kind: kind, ID: uint(id)}

	// 1. 获取或创建房间（会验证父实体与语言存在）
	room, err := h.hub.GetOrCreateRoom(c.Request.Context(), parent, languageID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	// 2. 升级为 WebSocket 连接
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("[WS] ❌ 升级 WebSocket 失败")
		// 刚创建的房间没有订阅者，不能一直挂着
		room.ReleaseIfIdle()
		return
	}

	// 3. 创建客户端并注册到房间
	viewerID := uuid.NewString()
	client := ws.NewClient(h.hub, conn, room.ID, viewerID, h.log)
	if err := room.Register(client); err != nil {
		h.log.Warn().Err(err).Str("room", room.ID).Msg("[WS] ❌ 注册客户端失败")
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseTryAgainLater, err.Error()))
		conn.Close()
		return
	}

	h.log.Info().Str("viewer", viewerID).Str("room", room.ID).Msg("[WS] ✅ 订阅者已连接")

	// 4. 启动读写协程
	go client.WritePump()
	go client.ReadPump()
}
