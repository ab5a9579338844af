package attendanceHandler

import (
	"Attendify/internal/entity"
	"Attendify/pkg/log"
	"time"

	"github.com/gofiber/websocket/v2"
	"golang.org/x/net/context"
)

// handleLiveFeed streams accepted submissions for a section to its owning
// faculty member. The HTTP middlewares have already authenticated the user;
// ownership is checked here because the role guard cannot know the section.
func (h *AttendanceHandler) handleLiveFeed(c *websocket.Conn) {
	sectionID := c.Params("id")
	if sectionID == "" {
		_ = c.WriteJSON(map[string]string{"error": "section ID is required"})
		return
	}

	userData, ok := c.Locals("user").(entity.UserLoginData)
	if !ok {
		_ = c.WriteJSON(map[string]string{"error": "Unauthorized, access token invalid or expired"})
		return
	}

	ownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	err := h.attendanceService.VerifySectionOwnership(ownCtx, userData.ID, sectionID)
	cancel()
	if err != nil {
		h.log.WithFields(log.Fields{
			"section_id": sectionID,
			"user_id":    userData.ID,
			"error":      err.Error(),
		}).Warn("Live feed ownership check failed")
		_ = c.WriteJSON(map[string]string{"error": err.Error()})
		return
	}

	h.log.Infof("Live feed client connected for section %s", sectionID)
	defer h.log.Infof("Live feed client disconnected for section %s", sectionID)

	events, unsubscribe := h.attendanceService.Feed().Subscribe(sectionID)
	defer unsubscribe()

	c.SetPingHandler(func(data string) error {
		h.log.Debug("Received ping, sending pong")
		if err := c.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(5*time.Second)); err != nil {
			h.log.Errorf("Error sending pong: %v", err)
		}
		return nil
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					h.log.Errorf("Live feed WebSocket error: %v", err)
				} else {
					h.log.Info("Live feed WebSocket connection closed")
				}
				return
			}
		}
	}()

	pingInterval := 30 * time.Second
	pingTicker := time.NewTicker(pingInterval)
	defer pingTicker.Stop()

	for {
		select {
		case <-done:
			return
		case event, open := <-events:
			if !open {
				return
			}
			if err := c.SetWriteDeadline(time.Now().Add(10 * time.Second)); err != nil {
				h.log.Errorf("Error setting write deadline: %v", err)
				return
			}
			if err := c.WriteJSON(event); err != nil {
				h.log.Errorf("Error writing feed event: %v", err)
				return
			}
		case <-pingTicker.C:
			if err := c.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				h.log.Errorf("Error sending ping: %v", err)
				return
			}
		}
	}
}
