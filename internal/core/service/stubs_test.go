package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tasklane/task-api/internal/core/domain"
)

var discardLogger = zerolog.Nop()

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	byID      map[int64]*domain.User
	nextID    int64
	findErr   error // if set, FindByID/FindByEmail return this error
	createErr error // if set, Create returns this error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byID: make(map[int64]*domain.User), nextID: 1}
}

func cloneUser(u *domain.User) *domain.User {
	clone := *u
	return &clone
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string, includeSecret bool) (*domain.User, bool, error) {
	if r.findErr != nil {
		return nil, false, r.findErr
	}
	for _, u := range r.byID {
		if u.Email == email {
			clone := cloneUser(u)
			if !includeSecret {
				clone.PasswordHash = ""
			}
			return clone, true, nil
		}
	}
	return nil, false, nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id int64) (*domain.User, bool, error) {
	if r.findErr != nil {
		return nil, false, r.findErr
	}
	u, ok := r.byID[id]
	if !ok {
		return nil, false, nil
	}
	clone := cloneUser(u)
	clone.PasswordHash = ""
	return clone, true, nil
}

// Create mirrors the unique email index of the real stores.
func (r *stubUserRepo) Create(_ context.Context, name, email, passwordHash string) (*domain.User, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	for _, u := range r.byID {
		if u.Email == email {
			return nil, domain.ErrEmailInUse
		}
	}
	u := &domain.User{ID: r.nextID, Name: name, Email: email, PasswordHash: passwordHash}
	r.byID[u.ID] = u
	r.nextID++
	return cloneUser(u), nil
}

func (r *stubUserRepo) seed(name, email string) *domain.User {
	u, _ := r.Create(context.Background(), name, email, "hash")
	return u
}

type stubTaskRepo struct {
	byID      map[int64]*domain.Task
	nextID    int64
	createErr error
	updateErr error
	updates   int
}

func newStubTaskRepo() *stubTaskRepo {
	return &stubTaskRepo{byID: make(map[int64]*domain.Task), nextID: 1}
}

func (r *stubTaskRepo) Create(_ context.Context, t *domain.Task) (*domain.Task, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	clone := *t
	clone.ID = r.nextID
	r.nextID++
	r.byID[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubTaskRepo) FindByID(_ context.Context, id int64) (*domain.Task, bool, error) {
	t, ok := r.byID[id]
	if !ok {
		return nil, false, nil
	}
	clone := *t
	return &clone, true, nil
}

// List applies the same predicate the real stores translate into queries.
func (r *stubTaskRepo) List(_ context.Context, f domain.TaskFilter) ([]*domain.Task, error) {
	var matched []*domain.Task
	for id := int64(1); id < r.nextID; id++ {
		t, ok := r.byID[id]
		if !ok || !f.Matches(t) {
			continue
		}
		clone := *t
		matched = append(matched, &clone)
	}
	return matched, nil
}

func (r *stubTaskRepo) Update(_ context.Context, t *domain.Task) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.byID[t.ID]; !ok {
		return domain.ErrTaskNotFound
	}
	clone := *t
	r.byID[t.ID] = &clone
	r.updates++
	return nil
}

func (r *stubTaskRepo) seed(ownerID int64, title string, deleted bool) *domain.Task {
	t, _ := r.Create(context.Background(), &domain.Task{Title: title, OwnerID: ownerID, Deleted: deleted})
	return t
}

type recordingActivity struct {
	mu     sync.Mutex
	events []domain.TaskEvent
}

func (a *recordingActivity) Record(e domain.TaskEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, e)
}

func (a *recordingActivity) actions() []domain.TaskAction {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]domain.TaskAction, 0, len(a.events))
	for _, e := range a.events {
		out = append(out, e.Action)
	}
	return out
}

type stubIdempotencyStore struct {
	keys      map[string]int64
	lookupErr error
	claimErr  error
	releases  int
	// afterLookup runs once, after the first Lookup has read the map, so a
	// test can slip a concurrent create in between lookup and claim.
	afterLookup func()
}

func newStubIdempotencyStore() *stubIdempotencyStore {
	return &stubIdempotencyStore{keys: make(map[string]int64)}
}

func idemKey(ownerID int64, key string) string {
	return fmt.Sprintf("%d|%s", ownerID, key)
}

// Lookup reports a pending claim as found with id 0.
func (s *stubIdempotencyStore) Lookup(_ context.Context, ownerID int64, key string) (int64, bool, error) {
	if s.lookupErr != nil {
		return 0, false, s.lookupErr
	}
	id, ok := s.keys[idemKey(ownerID, key)]
	if hook := s.afterLookup; hook != nil {
		s.afterLookup = nil
		hook()
	}
	return id, ok, nil
}

func (s *stubIdempotencyStore) Claim(_ context.Context, ownerID int64, key string) (bool, error) {
	if s.claimErr != nil {
		return false, s.claimErr
	}
	k := idemKey(ownerID, key)
	if _, taken := s.keys[k]; taken {
		return false, nil
	}
	s.keys[k] = 0
	return true, nil
}

func (s *stubIdempotencyStore) Remember(_ context.Context, ownerID int64, key string, taskID int64) error {
	s.keys[idemKey(ownerID, key)] = taskID
	return nil
}

func (s *stubIdempotencyStore) Release(_ context.Context, ownerID int64, key string) error {
	s.releases++
	delete(s.keys, idemKey(ownerID, key))
	return nil
}
