// Package server exposes a village.Loop over HTTP and websockets: snapshot
// export and import, item editing, pointer events and a live update stream.
package server

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/phanxgames/village"
)

// Server routes HTTP requests onto a running loop. Every world access goes
// through Loop.Do.
type Server struct {
	loop   *village.Loop
	hub    *Hub
	engine *gin.Engine
}

// New builds the router. hub may be nil, in which case /ws is not served.
func New(loop *village.Loop, hub *Hub) *Server {
	s := &Server{loop: loop, hub: hub, engine: gin.New()}
	s.engine.Use(gin.Recovery(), requestLogger())

	s.engine.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	s.engine.GET("/village", s.exportVillage)
	s.engine.PUT("/village", s.importVillage)
	s.engine.POST("/village/reset", s.resetVillage)
	s.engine.PUT("/village/settings", s.updateSettings)

	s.engine.GET("/items", s.listItems)
	s.engine.POST("/items", s.addItem)
	s.engine.GET("/items/:id", s.getItem)
	s.engine.PATCH("/items/:id", s.editItem)
	s.engine.DELETE("/items/:id", s.deleteItem)
	s.engine.POST("/items/:id/move", s.moveItem)
	s.engine.POST("/items/:id/fish", s.spawnFish)

	s.engine.GET("/selection", s.getSelection)
	s.engine.PUT("/selection", s.setSelection)
	s.engine.POST("/pointer", s.pointer)

	if hub != nil {
		s.engine.GET("/ws", s.websocket)
	}
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.engine }

// requestLogger logs each request through the village logger.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		village.Log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.FullPath(),
			"status":  c.Writer.Status(),
			"elapsed": time.Since(start),
		}).Debug("request")
	}
}

// do runs fn on the loop and answers 503 when the loop is gone.
func (s *Server) do(c *gin.Context, fn func(w *village.World)) bool {
	if err := s.loop.Do(c.Request.Context(), fn); err != nil {
		abort(c, http.StatusServiceUnavailable, err)
		return false
	}
	return true
}

func abort(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

// statusFor maps village errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, village.ErrUnknownItem):
		return http.StatusNotFound
	case errors.Is(err, village.ErrNoWater):
		return http.StatusConflict
	case errors.Is(err, village.ErrUnknownType):
		return http.StatusBadRequest
	default:
		return http.StatusUnprocessableEntity
	}
}

func (s *Server) exportVillage(c *gin.Context) {
	var snap village.Snapshot
	if !s.do(c, func(w *village.World) { snap = w.Snapshot() }) {
		return
	}
	snap.Timestamp = time.Now().UnixMilli()
	var buf bytes.Buffer
	if err := village.Encode(&buf, snap, village.SaveWithSimState); err != nil {
		abort(c, http.StatusInternalServerError, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+village.ExportName(time.Now().Format("2006-01-02"))+`"`)
	c.Data(http.StatusOK, "application/json", buf.Bytes())
}

func (s *Server) importVillage(c *gin.Context) {
	snap, err := village.Decode(c.Request.Body)
	if err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	var n int
	if !s.do(c, func(w *village.World) {
		w.Load(snap)
		n = len(w.Items())
	}) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": n})
}

func (s *Server) resetVillage(c *gin.Context) {
	var items []village.Item
	if !s.do(c, func(w *village.World) {
		w.Reset()
		items = w.Items()
	}) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

type settingsRequest struct {
	Horizon     *float64 `json:"horizonPos"`
	SkyColor    string   `json:"skyColor"`
	GroundColor string   `json:"groundColor"`
}

func (s *Server) updateSettings(c *gin.Context) {
	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	var resp gin.H
	if !s.do(c, func(w *village.World) {
		if req.Horizon != nil {
			w.SetHorizon(*req.Horizon)
		}
		if req.SkyColor != "" || req.GroundColor != "" {
			w.SetColors(req.SkyColor, req.GroundColor)
		}
		sky, ground := w.Colors()
		resp = gin.H{"horizonPos": w.Horizon(), "skyColor": sky, "groundColor": ground}
	}) {
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) listItems(c *gin.Context) {
	var items []village.Item
	if !s.do(c, func(w *village.World) { items = w.Items() }) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (s *Server) getItem(c *gin.Context) {
	id := c.Param("id")
	var (
		it village.Item
		ok bool
	)
	if !s.do(c, func(w *village.World) { it, ok = w.Item(id) }) {
		return
	}
	if !ok {
		abort(c, http.StatusNotFound, village.ErrUnknownItem)
		return
	}
	c.JSON(http.StatusOK, it)
}

type addRequest struct {
	Type village.ItemType `json:"type" binding:"required"`
	// Item inserts a fully built item instead of placing a new one.
	Item *village.Item `json:"item"`
}

func (s *Server) addItem(c *gin.Context) {
	var req addRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	var (
		it  village.Item
		err error
	)
	if !s.do(c, func(w *village.World) {
		if req.Item != nil {
			req.Item.Type = req.Type
			it, err = w.Insert(*req.Item)
			return
		}
		it, err = w.AddItem(req.Type)
	}) {
		return
	}
	if err != nil {
		abort(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusCreated, it)
}

func (s *Server) editItem(c *gin.Context) {
	id := c.Param("id")
	patch, err := io.ReadAll(c.Request.Body)
	if err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	var it village.Item
	if !s.do(c, func(w *village.World) {
		if err = w.ApplyEdit(id, patch); err == nil {
			it, _ = w.Item(id)
		}
	}) {
		return
	}
	if err != nil {
		abort(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, it)
}

func (s *Server) deleteItem(c *gin.Context) {
	id := c.Param("id")
	var err error
	if !s.do(c, func(w *village.World) { err = w.DeleteItem(id) }) {
		return
	}
	if err != nil {
		abort(c, statusFor(err), err)
		return
	}
	c.Status(http.StatusNoContent)
}

type moveRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (s *Server) moveItem(c *gin.Context) {
	id := c.Param("id")
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	var err error
	if !s.do(c, func(w *village.World) { err = w.Move(id, req.X, req.Y) }) {
		return
	}
	if err != nil {
		abort(c, statusFor(err), err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) spawnFish(c *gin.Context) {
	id := c.Param("id")
	var attrs village.FishAttrs
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&attrs); err != nil {
			abort(c, http.StatusBadRequest, err)
			return
		}
	}
	var (
		fish village.Item
		err  error
	)
	if !s.do(c, func(w *village.World) { fish, err = w.SpawnFish(id, attrs) }) {
		return
	}
	if err != nil {
		abort(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusCreated, fish)
}

type selectionResponse struct {
	Mode     bool     `json:"mode"`
	Selected []string `json:"selected"`
}

func (s *Server) getSelection(c *gin.Context) {
	var resp selectionResponse
	if !s.do(c, func(w *village.World) {
		resp = selectionResponse{Mode: w.Controller().SelectionMode(), Selected: w.Controller().Selection()}
	}) {
		return
	}
	c.JSON(http.StatusOK, resp)
}

type selectionRequest struct {
	Mode *bool `json:"mode"`
	// Clear empties the selection without leaving selection mode.
	Clear bool `json:"clear"`
}

func (s *Server) setSelection(c *gin.Context) {
	var req selectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	var resp selectionResponse
	if !s.do(c, func(w *village.World) {
		ctrl := w.Controller()
		if req.Mode != nil {
			ctrl.SetSelectionMode(*req.Mode)
		}
		if req.Clear {
			ctrl.ClearSelection()
		}
		resp = selectionResponse{Mode: ctrl.SelectionMode(), Selected: ctrl.Selection()}
	}) {
		return
	}
	c.JSON(http.StatusOK, resp)
}

type pointerRequest struct {
	// Kind is one of "down", "move", "up" or "cancel".
	Kind    string  `json:"kind" binding:"required,oneof=down move up cancel"`
	Pointer int     `json:"pointer"`
	Touch   bool    `json:"touch"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
}

type pointerResponse struct {
	Drag   string `json:"drag"`
	ItemID string `json:"itemId,omitempty"`
}

// pointer feeds a remote pointer event through the interaction controller,
// the same path local mouse and touch input takes.
func (s *Server) pointer(c *gin.Context) {
	var req pointerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	ev := village.PointerEvent{Pointer: req.Pointer, X: req.X, Y: req.Y, Time: time.Now()}
	if req.Touch {
		ev.Source = village.SourceTouch
	}
	var resp pointerResponse
	if !s.do(c, func(w *village.World) {
		switch req.Kind {
		case "down":
			w.Press(ev)
		case "move":
			w.Drag(ev)
		case "up":
			w.Release(ev)
		case "cancel":
			w.Cancel()
		}
		kind, id := w.Controller().Dragging()
		resp = pointerResponse{Drag: kind.String(), ItemID: id}
	}) {
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) websocket(c *gin.Context) {
	var snap village.Snapshot
	if !s.do(c, func(w *village.World) { snap = w.Snapshot() }) {
		return
	}
	s.hub.serve(c.Writer, c.Request, Message{Type: "state", Snapshot: &snap})
}
