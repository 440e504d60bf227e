package booking

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/medibook_backend/internal/repo"
	"github.com/Alijeyrad/medibook_backend/pkg/email"
)

// ---------------------------------------------------------------------------
// fakeStore
// ---------------------------------------------------------------------------

type fakeStore struct {
	mu       sync.Mutex
	doctors  map[uuid.UUID]*repo.Doctor
	patients map[string]*repo.Patient
	codes    map[uuid.UUID]*repo.OneTimeCode
	appts    []*repo.Appointment
}

var _ Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{
		doctors:  map[uuid.UUID]*repo.Doctor{},
		patients: map[string]*repo.Patient{},
		codes:    map[uuid.UUID]*repo.OneTimeCode{},
	}
}

func (f *fakeStore) addDoctor(name string, slots ...*repo.Slot) *repo.Doctor {
	f.mu.Lock()
	defer f.mu.Unlock()
	d := &repo.Doctor{ID: uuid.New(), Name: name, Email: name + "@clinic.test"}
	for i, s := range slots {
		s.ID = uuid.New()
		s.DoctorID = d.ID
		s.Position = i
		d.Slots = append(d.Slots, s)
	}
	f.doctors[d.ID] = d
	return d
}

// GetDoctor returns a snapshot, like a row read would.
func (f *fakeStore) GetDoctor(_ context.Context, id uuid.UUID) (*repo.Doctor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.doctors[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *d
	cp.Slots = make([]*repo.Slot, len(d.Slots))
	for i, s := range d.Slots {
		sc := *s
		cp.Slots[i] = &sc
	}
	return &cp, nil
}

func (f *fakeStore) FindOrCreatePatient(_ context.Context, p *repo.Patient) (*repo.Patient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.patients[p.Email]; ok {
		return existing, nil
	}
	f.patients[p.Email] = p
	return p, nil
}

func (f *fakeStore) CreateOneTimeCode(_ context.Context, c *repo.OneTimeCode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.codes[c.ID] = c
	return nil
}

func (f *fakeStore) FindOneTimeCode(_ context.Context, email, hash string, now time.Time) (*repo.OneTimeCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.codes {
		if c.Email == email && c.CodeHash == hash && !c.Expired(now) {
			return c, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *fakeStore) DeleteOneTimeCode(_ context.Context, id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.codes[id]
	delete(f.codes, id)
	return ok, nil
}

// ConfirmAppointment mirrors the conditional update: the slot is claimed only if unbooked.
func (f *fakeStore) ConfirmAppointment(_ context.Context, slotID uuid.UUID, a *repo.Appointment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.doctors {
		for _, s := range d.Slots {
			if s.ID != slotID {
				continue
			}
			if s.IsBooked {
				return repo.ErrSlotTaken
			}
			s.IsBooked = true
			pid := a.PatientID
			s.PatientID = &pid
			a.SlotID = &slotID
			f.appts = append(f.appts, a)
			return nil
		}
	}
	return repo.ErrSlotTaken
}

func (f *fakeStore) codeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.codes)
}

func (f *fakeStore) appointmentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.appts)
}

func (f *fakeStore) slot(doctorID uuid.UUID, i int) repo.Slot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.doctors[doctorID].Slots[i]
}

// ---------------------------------------------------------------------------
// fakePending
// ---------------------------------------------------------------------------

type fakePending struct {
	mu   sync.Mutex
	byID map[string]*Pending
}

var _ PendingStore = (*fakePending)(nil)

func newFakePending() *fakePending {
	return &fakePending{byID: map[string]*Pending{}}
}

func (f *fakePending) Put(_ context.Context, sid string, p *Pending, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *p
	f.byID[sid] = &cp
	return nil
}

func (f *fakePending) Get(_ context.Context, sid string) (*Pending, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[sid]
	if !ok {
		return nil, ErrNoPendingBooking
	}
	cp := *p
	return &cp, nil
}

func (f *fakePending) Delete(_ context.Context, sid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byID, sid)
	return nil
}

// ---------------------------------------------------------------------------
// fakeMailer and fakeBroadcaster
// ---------------------------------------------------------------------------

type fakeMailer struct {
	mu sync.Mutex
	// failSubjects makes Send fail for messages with these subjects.
	failSubjects map[string]error
	sent         []email.Message
}

func (m *fakeMailer) Send(_ context.Context, msg email.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.failSubjects[msg.Subject]; ok {
		return err
	}
	m.sent = append(m.sent, msg)
	return nil
}

var codePattern = regexp.MustCompile(`Your OTP is (\d{6})\.`)

// lastCode returns the code from the most recent booking code sent to addr.
func (m *fakeMailer) lastCode(t *testing.T, addr string) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.sent) - 1; i >= 0; i-- {
		msg := m.sent[i]
		if len(msg.To) == 1 && msg.To[0] == addr {
			if match := codePattern.FindStringSubmatch(msg.TextBody); match != nil {
				return match[1]
			}
		}
	}
	require.FailNow(t, "no booking code sent", addr)
	return ""
}

func (m *fakeMailer) subjects() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.sent))
	for _, msg := range m.sent {
		out = append(out, msg.Subject)
	}
	return out
}

type fakeBroadcaster struct {
	mu       sync.Mutex
	messages []string
}

func (b *fakeBroadcaster) Broadcast(_ context.Context, room, _, message string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, room+": "+message)
	return nil
}

// ---------------------------------------------------------------------------
// clock
// ---------------------------------------------------------------------------

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}
