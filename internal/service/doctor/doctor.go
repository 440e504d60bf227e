package doctor

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Alijeyrad/medibook_backend/internal/repo"
	"github.com/Alijeyrad/medibook_backend/pkg/util/codes"
	"github.com/Alijeyrad/medibook_backend/pkg/util/dates"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type RegisterRequest struct {
	Name             string
	Email            string
	Password         string
	SubscriptionPlan string
}

type SlotInput struct {
	Date string
	Time string
}

type SetupRequest struct {
	Clinic repo.ClinicDetails
	Slots  []SlotInput
}

// ---------------------------------------------------------------------------
// Collaborators
// ---------------------------------------------------------------------------

type Store interface {
	CreateDoctor(ctx context.Context, d *repo.Doctor) error
	GetDoctor(ctx context.Context, id uuid.UUID) (*repo.Doctor, error)
	ListSlots(ctx context.Context, doctorID uuid.UUID, onlyAvailable bool) ([]*repo.Slot, error)
	ReplaceClinicSetup(ctx context.Context, doctorID uuid.UUID, details repo.ClinicDetails, slots []*repo.Slot) error
}

type PasswordHasher interface {
	Hash(password string) (string, error)
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	// Register creates an unapproved doctor with a public booking link.
	Register(ctx context.Context, req RegisterRequest) (*repo.Doctor, error)
	// Setup replaces the clinic details and the free slots. Booked slots are kept.
	Setup(ctx context.Context, doctorID uuid.UUID, req SetupRequest) error
	Get(ctx context.Context, id uuid.UUID) (*repo.Doctor, error)
	ListSlots(ctx context.Context, doctorID uuid.UUID, onlyAvailable bool) ([]*repo.Slot, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type Params struct {
	Store  Store
	Hasher PasswordHasher
	// LinkBase prefixes generated booking links, e.g. "https://medibook.example/book/".
	LinkBase string
	Now      func() time.Time
}

type doctorService struct {
	db       Store
	hasher   PasswordHasher
	linkBase string
	now      func() time.Time
}

func New(p Params) Service {
	now := p.Now
	if now == nil {
		now = time.Now
	}
	return &doctorService{db: p.Store, hasher: p.Hasher, linkBase: p.LinkBase, now: now}
}

func (s *doctorService) Register(ctx context.Context, req RegisterRequest) (*repo.Doctor, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.SubscriptionPlan = strings.ToLower(strings.TrimSpace(req.SubscriptionPlan))
	if req.SubscriptionPlan == "" {
		req.SubscriptionPlan = repo.PlanBasic
	}

	var missing []string
	if req.Name == "" {
		missing = append(missing, "name")
	}
	if req.Email == "" {
		missing = append(missing, "email")
	}
	if req.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", ErrValidation, strings.Join(missing, ", "))
	}
	if addr, err := mail.ParseAddress(req.Email); err != nil || addr.Address != req.Email {
		return nil, fmt.Errorf("%w: email is malformed", ErrValidation)
	}
	if req.SubscriptionPlan != repo.PlanBasic && req.SubscriptionPlan != repo.PlanPremium {
		return nil, fmt.Errorf("%w: subscription_plan must be basic or premium", ErrValidation)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	slug, err := codes.BookingSlug(req.Name)
	if err != nil {
		return nil, fmt.Errorf("booking link: %w", err)
	}
	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}

	d := &repo.Doctor{
		ID:               id,
		Name:             req.Name,
		Email:            req.Email,
		PasswordHash:     hash,
		IsApproved:       false,
		SubscriptionPlan: req.SubscriptionPlan,
		BookingLink:      s.linkBase + slug,
		CreatedAt:        s.now().UTC(),
	}
	if err := s.db.CreateDoctor(ctx, d); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("create doctor: %w", err)
	}
	return d, nil
}

func (s *doctorService) Setup(ctx context.Context, doctorID uuid.UUID, req SetupRequest) error {
	req.Clinic.Name = strings.TrimSpace(req.Clinic.Name)
	req.Clinic.Location = strings.TrimSpace(req.Clinic.Location)
	if req.Clinic.Fees < 0 {
		return fmt.Errorf("%w: fees must not be negative", ErrValidation)
	}

	slots, err := parseSlots(req.Slots)
	if err != nil {
		return err
	}

	if err := s.db.ReplaceClinicSetup(ctx, doctorID, req.Clinic, slots); err != nil {
		if repo.IsNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("replace clinic setup: %w", err)
	}
	return nil
}

// parseSlots keeps list order as storage order and drops repeated (date, time) pairs.
func parseSlots(in []SlotInput) ([]*repo.Slot, error) {
	type key struct {
		date time.Time
		time string
	}
	seen := make(map[key]struct{}, len(in))
	out := make([]*repo.Slot, 0, len(in))

	for i, si := range in {
		label := strings.TrimSpace(si.Time)
		if label == "" {
			return nil, fmt.Errorf("%w: slot %d is missing a time", ErrValidation, i)
		}
		date, err := dates.Parse(si.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: slot %d: %v", ErrValidation, i, err)
		}

		k := key{date, label}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}

		id, err := uuid.NewV7()
		if err != nil {
			return nil, err
		}
		out = append(out, &repo.Slot{ID: id, Position: len(out), Date: date, Time: label})
	}
	return out, nil
}

func (s *doctorService) Get(ctx context.Context, id uuid.UUID) (*repo.Doctor, error) {
	d, err := s.db.GetDoctor(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get doctor: %w", err)
	}
	return d, nil
}

func (s *doctorService) ListSlots(ctx context.Context, doctorID uuid.UUID, onlyAvailable bool) ([]*repo.Slot, error) {
	if _, err := s.Get(ctx, doctorID); err != nil {
		return nil, err
	}
	slots, err := s.db.ListSlots(ctx, doctorID, onlyAvailable)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	return slots, nil
}
