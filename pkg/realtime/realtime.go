// Package realtime fans room events out over NATS.
//
// Every event for room R is published on "<prefix>.room.<R>.<event>", so a
// listener for a whole room subscribes to "<prefix>.room.<R>.*".
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
)

// Event names.
const (
	EventNewAppointment    = "new_appointment"
	EventAppointmentUpdate = "appointment_update"
)

var ErrInvalidRoom = errors.New("realtime: invalid room name")

// Event is the JSON body of every published message.
type Event struct {
	Room    string    `json:"room"`
	Type    string    `json:"type"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

type Broadcaster struct {
	nc     *nats.Conn
	prefix string
	now    func() time.Time
}

func New(nc *nats.Conn, prefix string) *Broadcaster {
	if prefix == "" {
		prefix = "medibook"
	}
	return &Broadcaster{nc: nc, prefix: prefix, now: time.Now}
}

// Subject returns the subject for event in room. Pass "*" as event to match all events.
func (b *Broadcaster) Subject(room, event string) (string, error) {
	if !validToken(room) {
		return "", ErrInvalidRoom
	}
	return b.prefix + ".room." + room + "." + event, nil
}

// Broadcast publishes message to room. Delivery is at most once; nobody listening is not an error.
func (b *Broadcaster) Broadcast(ctx context.Context, room, event, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	subject, err := b.Subject(room, event)
	if err != nil {
		return err
	}
	body, err := json.Marshal(Event{Room: room, Type: event, Message: message, At: b.now().UTC()})
	if err != nil {
		return fmt.Errorf("realtime: encode event: %w", err)
	}
	if err := b.nc.Publish(subject, body); err != nil {
		return fmt.Errorf("realtime: publish %s: %w", subject, err)
	}
	return nil
}

// Subscription delivers the raw JSON events of one room until Close is called.
type Subscription struct {
	C   <-chan *nats.Msg
	sub *nats.Subscription
}

func (s *Subscription) Close() error {
	return s.sub.Unsubscribe()
}

// Subscribe listens to every event of room. buffer bounds the number of
// undelivered events kept for a slow reader; beyond it NATS drops them.
func (b *Broadcaster) Subscribe(room string, buffer int) (*Subscription, error) {
	subject, err := b.Subject(room, "*")
	if err != nil {
		return nil, err
	}
	if buffer <= 0 {
		buffer = 64
	}
	ch := make(chan *nats.Msg, buffer)
	sub, err := b.nc.ChanSubscribe(subject, ch)
	if err != nil {
		return nil, fmt.Errorf("realtime: subscribe %s: %w", subject, err)
	}
	return &Subscription{C: ch, sub: sub}, nil
}

// validToken rejects names that would change the subject hierarchy or act as wildcards.
func validToken(s string) bool {
	if s == "" || len(s) > 128 {
		return false
	}
	return !strings.ContainsAny(s, ".*> \t\r\n")
}
