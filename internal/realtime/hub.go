// Package realtime serves the staff dashboards' WebSocket feed.
package realtime

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/franciscosanchezn/gin-cafe-api/internal/events"
	"github.com/franciscosanchezn/gin-cafe-api/internal/middleware"
	"github.com/franciscosanchezn/gin-cafe-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// JoinedFrame is the first frame written on every connection.
	JoinedFrame = "dashboard_joined"
)

type joinedMessage struct {
	Type      string    `json:"type"`
	Dashboard string    `json:"dashboard"`
	Timestamp time.Time `json:"timestamp"`
}

// DashboardHub forwards broker events to connected dashboards, one room per role.
type DashboardHub struct {
	broker   events.Broker
	upgrader websocket.Upgrader

	mu    sync.Mutex
	rooms map[string]map[*websocket.Conn]struct{}
}

func NewDashboardHub(broker events.Broker) *DashboardHub {
	return &DashboardHub{
		broker: broker,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		rooms: make(map[string]map[*websocket.Conn]struct{}),
	}
}

// CanJoin reports whether a user with role may watch dashboard.
// Managers may watch every room, other staff only their own.
func CanJoin(role, dashboard string) bool {
	if !events.ValidTopic(dashboard) {
		return false
	}
	return role == models.RoleManager || role == dashboard
}

// Connections returns the number of sockets joined to dashboard.
func (h *DashboardHub) Connections(dashboard string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[dashboard])
}

// ServeDashboard godoc
// @Summary Dashboard event stream
// @Description Upgrades to a WebSocket. The first frame is dashboard_joined, then every event for the room follows.
// @Tags realtime
// @Param dashboard query string false "Room: chief, receptionist, inventory or manager (default: caller's role)"
// @Param access_token query string false "Bearer token for clients that cannot set headers"
// @Success 101
// @Failure 403 {object} models.APIError
// @Router /ws/dashboard [get]
func (h *DashboardHub) ServeDashboard(c *gin.Context) {
	role := middleware.CurrentRole(c)
	dashboard := c.DefaultQuery("dashboard", role)
	if !CanJoin(role, dashboard) {
		c.JSON(http.StatusForbidden, models.NewAPIError(models.ErrForbidden, "Cannot join dashboard "+dashboard))
		return
	}

	// Subscribe before upgrading so a broker failure still gets an HTTP answer.
	ctx, cancel := context.WithCancel(context.Background())
	stream, err := h.broker.Subscribe(ctx, dashboard)
	if err != nil {
		cancel()
		log.WithError(err).WithField("dashboard", dashboard).Error("Dashboard subscribe failed")
		c.JSON(http.StatusServiceUnavailable, models.NewAPIError(models.ErrInternalServer, "Event stream unavailable"))
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		cancel()
		log.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	h.register(dashboard, conn)
	log.WithFields(logrus.Fields{
		"dashboard": dashboard,
		"user_id":   middleware.CurrentUserID(c),
	}).Info("Dashboard joined")

	go h.readPump(conn, cancel)
	h.writePump(conn, dashboard, stream, cancel)
}

func (h *DashboardHub) register(dashboard string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[dashboard] == nil {
		h.rooms[dashboard] = make(map[*websocket.Conn]struct{})
	}
	h.rooms[dashboard][conn] = struct{}{}
}

func (h *DashboardHub) unregister(dashboard string, conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.rooms[dashboard], conn)
	h.mu.Unlock()
	conn.Close()
}

// readPump drains client frames so pongs and close messages are processed.
func (h *DashboardHub) readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump is the only writer on conn.
func (h *DashboardHub) writePump(conn *websocket.Conn, dashboard string, stream <-chan events.Event, cancel context.CancelFunc) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		cancel()
		h.unregister(dashboard, conn)
		log.WithField("dashboard", dashboard).Debug("Dashboard left")
	}()

	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(joinedMessage{Type: JoinedFrame, Dashboard: dashboard, Timestamp: time.Now().UTC()}); err != nil {
		return
	}

	for {
		select {
		case evt, ok := <-stream:
			if !ok {
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(evt); err != nil {
				log.WithError(err).WithField("dashboard", dashboard).Debug("Dashboard write failed")
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
