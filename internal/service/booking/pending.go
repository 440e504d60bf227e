package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	redispkg "github.com/Alijeyrad/medibook_backend/pkg/redis"
)

// Pending is the booking a session asked for and has not verified yet.
type Pending struct {
	DoctorID  uuid.UUID `json:"doctor_id"`
	Date      time.Time `json:"date"`
	Time      string    `json:"time"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	PatientID uuid.UUID `json:"patient_id"`
}

// PendingStore keeps at most one Pending per session; Put replaces.
type PendingStore interface {
	Put(ctx context.Context, sessionID string, p *Pending, ttl time.Duration) error
	// Get returns ErrNoPendingBooking when the session has nothing pending.
	Get(ctx context.Context, sessionID string) (*Pending, error)
	Delete(ctx context.Context, sessionID string) error
}

const pendingKeyPrefix = "booking:pending:"

type redisPendingStore struct {
	rdb goredis.Cmdable
}

func NewRedisPendingStore(rdb goredis.Cmdable) PendingStore {
	return &redisPendingStore{rdb: rdb}
}

func (s *redisPendingStore) Put(ctx context.Context, sessionID string, p *Pending, ttl time.Duration) error {
	return redispkg.SetJSON(ctx, s.rdb, pendingKeyPrefix+sessionID, p, ttl)
}

func (s *redisPendingStore) Get(ctx context.Context, sessionID string) (*Pending, error) {
	var p Pending
	if err := redispkg.GetJSON(ctx, s.rdb, pendingKeyPrefix+sessionID, &p); err != nil {
		if errors.Is(err, redispkg.ErrMiss) {
			return nil, ErrNoPendingBooking
		}
		return nil, err
	}
	return &p, nil
}

func (s *redisPendingStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.rdb.Del(ctx, pendingKeyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("delete pending booking: %w", err)
	}
	return nil
}
