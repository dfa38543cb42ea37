package db

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ukydev/detailing-desk/internal/models"
)

// DriverMemory selects the in-process store.
const DriverMemory = "memory"

// MemoryStore is a process-local Store for development and tests.
// Transactions are serialized. Writes made with a transaction's context are
// recorded in an undo log, and a failed transaction reverts exactly those
// writes; concurrent writes made outside it are kept.
type MemoryStore struct {
	mu           sync.RWMutex
	txMu         sync.Mutex
	appointments map[string]models.Appointment
	order        []string
	workers      map[string]models.Worker
	users        map[string]models.User
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		appointments: make(map[string]models.Appointment),
		workers:      make(map[string]models.Worker),
		users:        make(map[string]models.User),
	}
}

func (s *MemoryStore) Appointments() AppointmentCollection { return memAppointments{s} }
func (s *MemoryStore) Workers() WorkerCollection           { return memWorkers{s} }
func (s *MemoryStore) Users() UserCollection               { return memUsers{s} }
func (s *MemoryStore) Ping(context.Context) error          { return nil }
func (s *MemoryStore) Close(context.Context) error         { return nil }

// Parallel is true: every operation takes the store lock itself.
func (s *MemoryStore) Parallel() bool { return true }

type memTxKey struct{}

// memTx is the undo log of one transaction. It is only touched with the
// store lock held.
type memTx struct {
	store *MemoryStore
	undo  []func()
}

// WithTransaction runs fn and, if it fails, reverts the writes fn made
// through the context it was given.
func (s *MemoryStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	tx := &memTx{store: s}
	if err := fn(context.WithValue(ctx, memTxKey{}, tx)); err != nil {
		s.mu.Lock()
		for i := len(tx.undo) - 1; i >= 0; i-- {
			tx.undo[i]()
		}
		s.mu.Unlock()
		return err
	}
	return nil
}

// onRollback registers undo when ctx belongs to a transaction of this store.
// Callers hold s.mu.
func (s *MemoryStore) onRollback(ctx context.Context, undo func()) {
	if tx, ok := ctx.Value(memTxKey{}).(*memTx); ok && tx.store == s {
		tx.undo = append(tx.undo, undo)
	}
}

func (s *MemoryStore) restoreAppointment(id string, prev models.Appointment, existed bool) {
	if existed {
		s.appointments[id] = prev
		return
	}
	delete(s.appointments, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *MemoryStore) restoreWorker(id string, prev models.Worker, existed bool) {
	if existed {
		s.workers[id] = prev
		return
	}
	delete(s.workers, id)
}

func cloneAppointment(a models.Appointment) models.Appointment {
	if a.Cost != nil {
		c := *a.Cost
		a.Cost = &c
	}
	if a.Workers != nil {
		a.Workers = append([]string(nil), a.Workers...)
	}
	if a.Payments != nil {
		p := make(map[string]float64, len(a.Payments))
		for k, v := range a.Payments {
			p[k] = v
		}
		a.Payments = p
	}
	return a
}

func cloneWorker(w models.Worker) models.Worker {
	w.AssignedJobs = append([]string{}, w.AssignedJobs...)
	return w
}

type memAppointments struct{ s *MemoryStore }

func (c memAppointments) InsertAppointment(ctx context.Context, a models.Appointment) (string, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	prev, exists := c.s.appointments[a.ID]
	if !exists {
		c.s.order = append(c.s.order, a.ID)
	}
	id := a.ID
	c.s.onRollback(ctx, func() { c.s.restoreAppointment(id, prev, exists) })
	c.s.appointments[a.ID] = cloneAppointment(a)
	return a.ID, nil
}

func (c memAppointments) FindAppointments(_ context.Context) ([]models.Appointment, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()
	out := make([]models.Appointment, 0, len(c.s.order))
	for _, id := range c.s.order {
		out = append(out, cloneAppointment(c.s.appointments[id]))
	}
	return out, nil
}

func (c memAppointments) FindAppointmentByID(_ context.Context, id string) (*models.Appointment, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()
	a, ok := c.s.appointments[id]
	if !ok {
		return nil, ErrNotFound
	}
	a = cloneAppointment(a)
	return &a, nil
}

func (c memAppointments) UpdateAppointment(ctx context.Context, id string, u models.AppointmentUpdate) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	a, ok := c.s.appointments[id]
	if !ok {
		return ErrNotFound
	}
	prev := a
	c.s.onRollback(ctx, func() { c.s.restoreAppointment(id, prev, true) })
	cost := u.Cost
	a.Cost = &cost
	a.Workers = u.Workers
	a.Status = u.Status
	a.Payments = u.Payments
	a.CarDetails = u.CarDetails
	c.s.appointments[id] = cloneAppointment(a)
	return nil
}

type memWorkers struct{ s *MemoryStore }

func (c memWorkers) InsertWorker(ctx context.Context, w models.Worker) (string, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	id := w.ID
	prev, exists := c.s.workers[id]
	c.s.onRollback(ctx, func() { c.s.restoreWorker(id, prev, exists) })
	c.s.workers[w.ID] = cloneWorker(w)
	return w.ID, nil
}

func (c memWorkers) FindWorkers(_ context.Context) ([]models.Worker, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()
	out := make([]models.Worker, 0, len(c.s.workers))
	for _, w := range c.s.workers {
		out = append(out, cloneWorker(w))
	}
	sortWorkers(out)
	return out, nil
}

func (c memWorkers) FindWorkerByID(_ context.Context, id string) (*models.Worker, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()
	w, ok := c.s.workers[id]
	if !ok {
		return nil, ErrNotFound
	}
	w = cloneWorker(w)
	return &w, nil
}

func (c memWorkers) UpdateWorker(ctx context.Context, id string, in models.WorkerInput) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	w, ok := c.s.workers[id]
	if !ok {
		return ErrNotFound
	}
	prev := w
	c.s.onRollback(ctx, func() { c.s.restoreWorker(id, prev, true) })
	w.Name, w.Email, w.Phone, w.CurrentStatus = in.Name, in.Email, in.Phone, in.CurrentStatus
	c.s.workers[id] = w
	return nil
}

func (c memWorkers) UpdateAssignment(ctx context.Context, id string, a models.Assignment) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	w, ok := c.s.workers[id]
	if !ok {
		return ErrNotFound
	}
	prev := w
	c.s.onRollback(ctx, func() { c.s.restoreWorker(id, prev, true) })
	w.AssignedJobs = append([]string{}, a.AssignedJobs...)
	w.CurrentStatus = a.CurrentStatus
	c.s.workers[id] = w
	return nil
}

func (c memWorkers) DeleteWorker(ctx context.Context, id string) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	prev, ok := c.s.workers[id]
	if !ok {
		return ErrNotFound
	}
	c.s.onRollback(ctx, func() { c.s.restoreWorker(id, prev, true) })
	delete(c.s.workers, id)
	return nil
}

// sortWorkers orders by name then id so listings are stable.
func sortWorkers(ws []models.Worker) {
	sort.Slice(ws, func(i, j int) bool {
		if ws[i].Name != ws[j].Name {
			return ws[i].Name < ws[j].Name
		}
		return ws[i].ID < ws[j].ID
	})
}

type memUsers struct{ s *MemoryStore }

func (c memUsers) InsertUser(_ context.Context, u models.User) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.Email = strings.ToLower(u.Email)
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	c.s.users[u.ID] = u
	return nil
}

func (c memUsers) FindUserByID(_ context.Context, id string) (*models.User, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()
	u, ok := c.s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (c memUsers) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()
	email = strings.ToLower(email)
	for _, u := range c.s.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (c memUsers) UpdateLastLogin(_ context.Context, id string) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	u, ok := c.s.users[id]
	if !ok {
		return ErrNotFound
	}
	now := time.Now()
	u.LastLogin = &now
	u.UpdatedAt = now
	c.s.users[id] = u
	return nil
}
