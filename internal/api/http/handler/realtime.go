package handler

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/medibook_backend/pkg/realtime"
	"github.com/Alijeyrad/medibook_backend/pkg/reqctx"
)

const sseKeepAlive = 25 * time.Second

type RoomSubscriber interface {
	Subscribe(room string, buffer int) (*realtime.Subscription, error)
}

type RealtimeHandler struct {
	rooms     RoomSubscriber
	keepAlive time.Duration
}

func NewRealtimeHandler(rooms RoomSubscriber) *RealtimeHandler {
	return &RealtimeHandler{rooms: rooms, keepAlive: sseKeepAlive}
}

// GET /rooms/:room/events
//
// Streams the room's events as Server-Sent Events. The stream ends when the
// client goes away, which is noticed on the next write.
func (h *RealtimeHandler) Stream(c fiber.Ctx) error {
	room := c.Params("room")
	sub, err := h.rooms.Subscribe(room, 0)
	if err != nil {
		if errors.Is(err, realtime.ErrInvalidRoom) {
			return badRequest(c, err.Error())
		}
		reqctx.Logger(c.Context()).Error("room subscribe failed", "room", room, "error", err)
		return internalError(c)
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	keepAlive := h.keepAlive
	return c.SendStreamWriter(func(w *bufio.Writer) {
		defer sub.Close()

		ticker := time.NewTicker(keepAlive)
		defer ticker.Stop()

		fmt.Fprint(w, ": connected\n\n")
		if err := w.Flush(); err != nil {
			return
		}
		for {
			select {
			case msg := <-sub.C:
				var ev realtime.Event
				if err := json.Unmarshal(msg.Data, &ev); err != nil {
					continue
				}
				fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, msg.Data)
			case <-ticker.C:
				fmt.Fprint(w, ": ping\n\n")
			}
			if err := w.Flush(); err != nil {
				return
			}
		}
	})
}
