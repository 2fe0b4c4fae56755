package task

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/example/task-approval/domain/apperr"
	projectdomain "github.com/example/task-approval/domain/project"
	domain "github.com/example/task-approval/domain/task"
	"github.com/example/task-approval/domain/user"
	"github.com/example/task-approval/events"
	"github.com/example/task-approval/modules/database"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/stretchr/testify/require"
)

// mockLogger implements types.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(msg string, args ...any)         {}
func (m *mockLogger) Info(msg string, args ...any)          {}
func (m *mockLogger) Warn(msg string, args ...any)          {}
func (m *mockLogger) Error(msg string, args ...any)         {}
func (m *mockLogger) With(args ...any) types.Logger         { return m }
func (m *mockLogger) WithError(err error) types.Logger      { return m }
func (m *mockLogger) WithModule(module string) types.Logger { return m }

var (
	admin   = user.Profile{ID: "admin", Email: "admin@example.com", Name: "Admin", SystemRole: user.RoleAdmin}
	head    = user.Profile{ID: "head", Email: "head@example.com", Name: "Head", SystemRole: user.RoleUser}
	member  = user.Profile{ID: "member", Email: "member@example.com", Name: "Member", SystemRole: user.RoleUser}
	member2 = user.Profile{ID: "member2", Email: "member2@example.com", Name: "Member Two", SystemRole: user.RoleUser}
	other   = user.Profile{ID: "other", Email: "other@example.com", Name: "Other", SystemRole: user.RoleUser}
)

const testProject = "proj-1"

type fakeUsers struct {
	profiles map[string]user.Profile
}

func (f *fakeUsers) GetUser(_ context.Context, id string) (*user.Profile, error) {
	p, ok := f.profiles[id]
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	return &p, nil
}

func (f *fakeUsers) GetUsers(_ context.Context, ids []string) ([]user.Profile, error) {
	var out []user.Profile
	for _, id := range ids {
		if p, ok := f.profiles[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// fakeProjects keeps access facts and counters in memory.
type fakeProjects struct {
	mu         sync.Mutex
	access     map[string]projectdomain.Access
	counters   map[string]projectdomain.Counters
	failAdjust bool
}

func newFakeProjects() *fakeProjects {
	end := mustDate("2024-03-31")
	return &fakeProjects{
		access: map[string]projectdomain.Access{
			testProject: {
				ProjectID: testProject,
				HeadID:    head.ID,
				MemberIDs: []string{member.ID, member2.ID},
				StartDate: mustDate("2024-03-01"),
				EndDate:   &end,
			},
		},
		counters: map[string]projectdomain.Counters{
			testProject: {ProjectID: testProject},
		},
	}
}

func (f *fakeProjects) GetAccess(_ context.Context, id string) (*projectdomain.Access, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.access[id]
	if !ok {
		return nil, apperr.NotFound("project not found")
	}
	return &a, nil
}

func (f *fakeProjects) GetCounters(_ context.Context, id string) (*projectdomain.Counters, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.counters[id]
	if !ok {
		return nil, apperr.NotFound("project not found")
	}
	return &c, nil
}

func (f *fakeProjects) AdjustCounters(_ context.Context, id string, total, completed int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAdjust {
		return errors.New("counter store unavailable")
	}
	c := f.counters[id]
	c.ProjectID = id
	c.TotalTasks += total
	c.CompletedTasks += completed
	f.counters[id] = c
	return nil
}

func (f *fakeProjects) SetCounters(_ context.Context, c projectdomain.Counters) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counters[c.ProjectID] = c
	return nil
}

func (f *fakeProjects) get(id string) projectdomain.Counters {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counters[id]
}

type recordingNotifier struct {
	mu            sync.Mutex
	notifications []events.TaskNotificationEvent
	phases        []events.TaskPhaseChangedEvent
}

func (n *recordingNotifier) Notify(_ context.Context, ev events.TaskNotificationEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notifications = append(n.notifications, ev)
	return nil
}

func (n *recordingNotifier) PhaseChanged(_ context.Context, ev events.TaskPhaseChangedEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.phases = append(n.phases, ev)
	return nil
}

func (n *recordingNotifier) last() events.TaskNotificationEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.notifications) == 0 {
		return events.TaskNotificationEvent{}
	}
	return n.notifications[len(n.notifications)-1]
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.notifications)
}

// memBlobs is a BlobStore that can be told to fail after a number of puts.
type memBlobs struct {
	mu        sync.Mutex
	blobs     map[string][]byte
	failAfter int
	puts      int
}

func newMemBlobs() *memBlobs {
	return &memBlobs{blobs: map[string][]byte{}, failAfter: -1}
}

func (b *memBlobs) Put(_ context.Context, key string, data []byte, _ string) (BlobInfo, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failAfter >= 0 && b.puts >= b.failAfter {
		return BlobInfo{}, errors.New("bucket full")
	}
	b.puts++
	b.blobs[key] = data
	return BlobInfo{Size: int64(len(data)), Digest: "SHA-256=test"}, nil
}

func (b *memBlobs) Delete(key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.blobs, key)
	return nil
}

func (b *memBlobs) has(key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.blobs[key]
	return ok
}

func (b *memBlobs) len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.blobs)
}

type testEnv struct {
	svc      *Service
	repo     *TaskRepository
	projects *fakeProjects
	notifier *recordingNotifier
	blobs    *memBlobs
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.Open(database.Config{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Task{}, &domain.Audit{}))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	env := &testEnv{
		repo:     NewTaskRepository(db),
		projects: newFakeProjects(),
		notifier: &recordingNotifier{},
		blobs:    newMemBlobs(),
	}
	users := &fakeUsers{profiles: map[string]user.Profile{}}
	for _, p := range []user.Profile{admin, head, member, member2, other} {
		users.profiles[p.ID] = p
	}
	env.svc = NewService(ServiceConfig{
		Repo:          env.repo,
		Projects:      env.projects,
		Users:         users,
		Notifier:      env.notifier,
		Blobs:         env.blobs,
		Logger:        &mockLogger{},
		MaxUploadSize: 1024,
	})
	return env
}

func mustDate(s string) time.Time {
	v, err := domain.ParseDate("date", s)
	if err != nil {
		panic(err)
	}
	return v
}
