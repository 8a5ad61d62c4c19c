package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hostel-server/models"
	"hostel-server/services"
	ws "hostel-server/websocket"
)

// RegisterRoomRoutes registers room registry routes
func RegisterRoomRoutes(rg *gin.RouterGroup, svc *services.RoomService) {
	h := &roomHandler{svc: svc}
	rg.GET("", h.list)
	rg.POST("", h.create)
	rg.PUT("/:id", h.update)
}

// RegisterRoomBoard serves the live room board over WebSocket
func RegisterRoomBoard(rg *gin.RouterGroup, hub *ws.Hub, origins []string) {
	upgrader := ws.NewUpgrader(origins)
	rg.GET("/ws/rooms", func(c *gin.Context) {
		ws.ServeWebSocket(hub, upgrader, c.Writer, c.Request, c.GetUint("worker_id"))
	})
}

type roomHandler struct {
	svc *services.RoomService
}

// list returns every room, or only bookable ones with ?available=true
func (h *roomHandler) list(c *gin.Context) {
	var (
		rooms []models.Room
		err   error
	)
	if c.Query("available") == "true" {
		rooms, err = h.svc.ListAvailable(c.Request.Context())
	} else {
		rooms, err = h.svc.List(c.Request.Context())
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

func (h *roomHandler) create(c *gin.Context) {
	var req models.RoomRequest
	if !bind(c, &req) {
		return
	}
	room, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Room created", "room": room})
}

func (h *roomHandler) update(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req models.RoomRequest
	if !bind(c, &req) {
		return
	}
	room, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Room updated", "room": room})
}
