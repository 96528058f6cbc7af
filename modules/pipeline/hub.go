package pipeline

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"etsy-optimizer-server/modules/common/model"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// 개발용 - 모든 origin 허용
		return true
	},
}

// Event - 클라이언트로 내보내는 진행 상황 메시지
type Event struct {
	Type  string                `json:"type"` // run.updated | image.updated
	RunID string                `json:"runId"`
	Run   *model.Run            `json:"run,omitempty"`
	Image *model.GeneratedImage `json:"image,omitempty"`
}

// Hub - 목업 생성 진행 상황을 구독 클라이언트 전체에 push
type Hub struct {
	mu      sync.RWMutex
	clients map[*websocket.Conn]bool

	// gorilla/websocket은 동시 writer를 허용하지 않는다
	writeMu sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]bool),
	}
}

// HandleWS - GET /ws 업그레이드 핸들러
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("❌ WebSocket upgrade failed: %v", err)
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	total := len(h.clients)
	h.mu.Unlock()
	log.Printf("✅ WebSocket client connected (total: %d)", total)

	// 읽기 루프는 연결 유지 감지용. 메시지 내용은 쓰지 않는다.
	go func() {
		defer h.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	total := len(h.clients)
	h.mu.Unlock()
	conn.Close()
	log.Printf("🔌 WebSocket client disconnected (total: %d)", total)
}

// Broadcast - 이벤트를 모든 클라이언트에 전송. 실패한 연결은 정리한다.
func (h *Hub) Broadcast(event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("❌ Failed to encode event: %v", err)
		return
	}

	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	h.writeMu.Lock()
	defer h.writeMu.Unlock()
	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.remove(conn)
		}
	}
}
