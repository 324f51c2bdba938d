package planner

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/sadopc/daybook/internal/store"
)

var testNow = time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newKV(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newTaskStore(t *testing.T, kv KV) *TaskStore {
	t.Helper()
	ts := NewTaskStore(kv, zap.NewNop(), WithClock(fixedClock(testNow)))
	ts.Load()
	return ts
}

func newEventStore(t *testing.T, kv KV) *EventStore {
	t.Helper()
	es := NewEventStore(kv, zap.NewNop(), WithClock(fixedClock(testNow)))
	es.Load()
	return es
}

// faultyKV wraps a map and fails the operations it is told to.
type faultyKV struct {
	mu      sync.Mutex
	data    map[string]string
	getErr  error
	setErr  error
	sets    int
	removes int
}

func newFaultyKV() *faultyKV {
	return &faultyKV{data: make(map[string]string)}
}

func (f *faultyKV) Get(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return "", false, f.getErr
	}
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *faultyKV) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets++
	if f.setErr != nil {
		return f.setErr
	}
	f.data[key] = value
	return nil
}

func (f *faultyKV) Remove(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removes++
	delete(f.data, key)
	return nil
}

func (f *faultyKV) writes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sets
}

// ============================================================
// Task store
// ============================================================

func TestTaskCreateDefaults(t *testing.T) {
	ts := newTaskStore(t, newKV(t))

	task, err := ts.Create(TaskInput{Title: "  Buy milk  ", DueDate: "2025-01-10"})
	if err != nil {
		t.Fatal(err)
	}
	if task.Title != "Buy milk" {
		t.Errorf("title = %q", task.Title)
	}
	if task.Completed {
		t.Error("new task should not be completed")
	}
	if task.Priority != PriorityMedium {
		t.Errorf("priority = %q, want medium", task.Priority)
	}
	if task.Subject != DefaultSubject {
		t.Errorf("subject = %q, want %q", task.Subject, DefaultSubject)
	}
	if task.DueTime != DefaultDueTime {
		t.Errorf("dueTime = %q, want %q", task.DueTime, DefaultDueTime)
	}
	if task.CreatedAt != "2025-01-01T09:00:00.000Z" {
		t.Errorf("createdAt = %q", task.CreatedAt)
	}
	if task.ID != "1735722000000" {
		t.Errorf("id = %q", task.ID)
	}
}

func TestBuyMilkScenario(t *testing.T) {
	ts := newTaskStore(t, newKV(t))

	task, err := ts.Create(TaskInput{Title: "Buy milk", DueDate: "2025-01-10"})
	if err != nil {
		t.Fatal(err)
	}
	if got := ts.Tasks(); len(got) != 1 || got[0].Completed || got[0].Priority != PriorityMedium {
		t.Fatalf("after create: %+v", got)
	}

	toggled, ok := ts.ToggleCompleted(task.ID)
	if !ok || !toggled.Completed {
		t.Fatalf("toggle: ok=%v task=%+v", ok, toggled)
	}
	if toggled.CompletedAt == "" {
		t.Error("completedAt should be set")
	}

	if !ts.Remove(task.ID) {
		t.Fatal("remove reported nothing removed")
	}
	if got := ts.Tasks(); len(got) != 0 {
		t.Fatalf("after remove: %d tasks", len(got))
	}
}

func TestTaskCreateValidation(t *testing.T) {
	ts := newTaskStore(t, newKV(t))

	tests := []struct {
		name string
		in   TaskInput
		want error
	}{
		{"empty title", TaskInput{Title: ""}, ErrEmptyTitle},
		{"blank title", TaskInput{Title: "   "}, ErrEmptyTitle},
		{"bad date", TaskInput{Title: "x", DueDate: "10/01/2025"}, ErrInvalidDate},
		{"impossible date", TaskInput{Title: "x", DueDate: "2025-02-30"}, ErrInvalidDate},
		{"bad time", TaskInput{Title: "x", DueTime: "25:00"}, ErrInvalidTime},
		{"bad priority", TaskInput{Title: "x", Priority: "urgent"}, ErrInvalidPriority},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ts.Create(tt.in)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if !IsValidation(err) {
				t.Fatalf("%v should be a validation error", err)
			}
		})
	}
	if got := ts.Tasks(); len(got) != 0 {
		t.Fatalf("invalid input mutated the list: %+v", got)
	}
}

func TestTaskIDsUnique(t *testing.T) {
	ts := newTaskStore(t, newKV(t))

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		task, err := ts.Create(TaskInput{Title: "same millisecond"})
		if err != nil {
			t.Fatal(err)
		}
		if seen[task.ID] {
			t.Fatalf("duplicate id %s", task.ID)
		}
		seen[task.ID] = true
	}
}

func TestTaskIDsSkipLoadedIDs(t *testing.T) {
	kv := newKV(t)
	first := newTaskStore(t, kv)
	a, _ := first.Create(TaskInput{Title: "a"})

	// A fresh store with the same clock must not reissue a's id.
	second := newTaskStore(t, kv)
	b, err := second.Create(TaskInput{Title: "b"})
	if err != nil {
		t.Fatal(err)
	}
	if a.ID == b.ID {
		t.Fatalf("id %s issued twice", a.ID)
	}
}

func TestTaskUpdate(t *testing.T) {
	kv := newFaultyKV()
	ts := newTaskStore(t, kv)
	task, _ := ts.Create(TaskInput{Title: "Draft", Priority: PriorityLow})

	edited := task
	edited.Title = "Final"
	edited.Priority = PriorityHigh
	edited.CreatedAt = "ignored"
	ok, err := ts.Update(edited)
	if err != nil || !ok {
		t.Fatalf("update: ok=%v err=%v", ok, err)
	}
	got, _ := ts.Get(task.ID)
	if got.Title != "Final" || got.Priority != PriorityHigh {
		t.Errorf("not updated: %+v", got)
	}
	if got.CreatedAt != task.CreatedAt {
		t.Errorf("createdAt changed to %q", got.CreatedAt)
	}

	if _, err := ts.Update(Task{ID: task.ID, Title: ""}); !errors.Is(err, ErrEmptyTitle) {
		t.Errorf("empty title update err = %v", err)
	}
}

func TestTaskUpdateUnknownIsNoop(t *testing.T) {
	kv := newFaultyKV()
	ts := newTaskStore(t, kv)
	ts.Create(TaskInput{Title: "keep"})
	before := ts.Tasks()
	writes := kv.writes()

	ok, err := ts.Update(Task{ID: "missing", Title: "ghost"})
	if err != nil || ok {
		t.Fatalf("ok=%v err=%v, want false nil", ok, err)
	}
	if !reflect.DeepEqual(before, ts.Tasks()) {
		t.Error("list changed")
	}
	if kv.writes() != writes {
		t.Error("unknown id should not write")
	}
}

func TestTaskRemoveIdempotent(t *testing.T) {
	kv := newFaultyKV()
	ts := newTaskStore(t, kv)
	task, _ := ts.Create(TaskInput{Title: "x"})
	ts.Create(TaskInput{Title: "y"})

	if !ts.Remove(task.ID) {
		t.Fatal("first remove should succeed")
	}
	after := ts.Tasks()
	writes := kv.writes()
	if ts.Remove(task.ID) {
		t.Fatal("second remove should report false")
	}
	if !reflect.DeepEqual(after, ts.Tasks()) {
		t.Error("second remove changed the list")
	}
	if kv.writes() != writes {
		t.Error("second remove wrote")
	}
}

func TestTaskToggleTwiceRestores(t *testing.T) {
	ts := newTaskStore(t, newKV(t))
	task, _ := ts.Create(TaskInput{Title: "x"})

	ts.ToggleCompleted(task.ID)
	ts.ToggleCompleted(task.ID)
	got, _ := ts.Get(task.ID)
	if !reflect.DeepEqual(got, task) {
		t.Fatalf("toggle twice: got %+v, want %+v", got, task)
	}

	if _, ok := ts.ToggleCompleted("missing"); ok {
		t.Error("toggle of unknown id reported ok")
	}
}

func TestTaskSelection(t *testing.T) {
	ts := newTaskStore(t, newKV(t))
	a, _ := ts.Create(TaskInput{Title: "a"})
	b, _ := ts.Create(TaskInput{Title: "b"})
	c, _ := ts.Create(TaskInput{Title: "c"})

	ts.ToggleSelected(c.ID)
	ts.ToggleSelected(a.ID)
	if ts.ToggleSelected("missing") {
		t.Error("unknown id selected")
	}
	if got := ts.Selected(); !reflect.DeepEqual(got, []string{a.ID, c.ID}) {
		t.Fatalf("selected = %v", got)
	}

	ts.Remove(a.ID)
	if ts.IsSelected(a.ID) {
		t.Error("removed task still selected")
	}

	if n := ts.RemoveSelected(); n != 1 {
		t.Fatalf("removed %d, want 1", n)
	}
	got := ts.Tasks()
	if len(got) != 1 || got[0].ID != b.ID {
		t.Fatalf("remaining = %+v", got)
	}
	if len(ts.Selected()) != 0 {
		t.Error("selection not pruned")
	}
}

func TestTaskRemoveManyAndClear(t *testing.T) {
	ts := newTaskStore(t, newKV(t))
	a, _ := ts.Create(TaskInput{Title: "a"})
	b, _ := ts.Create(TaskInput{Title: "b"})
	ts.Create(TaskInput{Title: "c"})

	if n := ts.RemoveMany([]string{a.ID, b.ID, "missing"}); n != 2 {
		t.Fatalf("RemoveMany = %d", n)
	}
	ts.Clear()
	if len(ts.Tasks()) != 0 {
		t.Fatal("clear left tasks")
	}
}

func TestTaskPersistRoundTrip(t *testing.T) {
	kv := newKV(t)
	ts := newTaskStore(t, kv)
	ts.Create(TaskInput{Title: "a", DueDate: "2025-01-02", Subject: "Work", Description: "notes"})
	b, _ := ts.Create(TaskInput{Title: "b", Priority: PriorityHigh})
	ts.ToggleCompleted(b.ID)
	want := ts.Tasks()

	reloaded := NewTaskStore(kv, zap.NewNop())
	if got := reloaded.Load(); !reflect.DeepEqual(got, want) {
		t.Fatalf("reload:\n got %+v\nwant %+v", got, want)
	}

	raw, _, _ := kv.Get(TasksKey)
	if !strings.HasPrefix(raw, `{"version":1,"items":[`) {
		t.Errorf("stored layout = %s", raw)
	}
}

func TestTaskLoadSeedsSamples(t *testing.T) {
	kv := newKV(t)
	ts := NewTaskStore(kv, zap.NewNop(), WithClock(fixedClock(testNow)), WithSamples(true))

	tasks := ts.Load()
	if len(tasks) != 5 {
		t.Fatalf("seeded %d tasks, want 5", len(tasks))
	}
	if _, found, _ := kv.Get(TasksKey); !found {
		t.Error("seed was not persisted")
	}

	// Emptying the list must survive a reload instead of reseeding.
	ts.Clear()
	if got := ts.Load(); len(got) != 0 {
		t.Fatalf("reseeded after clear: %d", len(got))
	}

	// Created ids must not collide with the numeric sample ids.
	task, _ := ts.Create(TaskInput{Title: "new"})
	if task.ID == "1" || task.ID == "5" {
		t.Errorf("id %s collides with sample", task.ID)
	}
}

func TestTaskLoadLegacyArray(t *testing.T) {
	kv := newKV(t)
	kv.Set(TasksKey, `[{"id":"42","title":"old","completed":false,"dueDate":"2024-12-31"}]`)

	ts := NewTaskStore(kv, zap.NewNop(), WithClock(fixedClock(testNow)))
	tasks := ts.Load()
	if len(tasks) != 1 {
		t.Fatalf("loaded %d", len(tasks))
	}
	got := tasks[0]
	if got.Priority != PriorityMedium || got.Subject != DefaultSubject || got.DueTime != DefaultDueTime {
		t.Errorf("legacy defaults not applied: %+v", got)
	}

	raw, _, _ := kv.Get(TasksKey)
	if !strings.HasPrefix(raw, `{"version":1`) {
		t.Errorf("legacy list not upgraded: %s", raw)
	}
}

func TestTaskLoadNewerVersionFailsSoft(t *testing.T) {
	kv := newKV(t)
	const future = `{"version":9,"items":[{"id":"1","title":"from the future"}]}`
	kv.Set(TasksKey, future)

	ts := NewTaskStore(kv, zap.NewNop(), WithSamples(true))
	if got := ts.Load(); len(got) != 5 {
		t.Fatalf("expected sample fallback, got %d tasks", len(got))
	}
	if raw, _, _ := kv.Get(TasksKey); raw != future {
		t.Errorf("stored value overwritten: %s", raw)
	}
}

func TestNewerVersionIsNeverOverwritten(t *testing.T) {
	kv := newKV(t)
	const futureTasks = `{"version":9,"items":[{"id":"1","title":"from the future"}]}`
	const futureEvents = `{"version":9,"items":[{"id":"1","title":"later"}]}`
	kv.Set(TasksKey, futureTasks)
	kv.Set(EventsKey, futureEvents)

	ts := newTaskStore(t, kv)
	task, err := ts.Create(TaskInput{Title: "x"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	ts.ToggleCompleted(task.ID)
	ts.Remove(task.ID)
	ts.Create(TaskInput{Title: "y"})
	ts.Clear()

	es := newEventStore(t, kv)
	if _, err := es.Create(EventInput{Title: "x", Date: "2025-01-02"}); err != nil {
		t.Fatalf("create event: %v", err)
	}

	if raw, _, _ := kv.Get(TasksKey); raw != futureTasks {
		t.Errorf("tasks overwritten: %s", raw)
	}
	if raw, _, _ := kv.Get(EventsKey); raw != futureEvents {
		t.Errorf("events overwritten: %s", raw)
	}
	if got := es.Events(); len(got) != 1 || got[0].Title != "x" {
		t.Errorf("in-memory events = %+v", got)
	}
}

func TestReloadAfterDowngradeWritesAgain(t *testing.T) {
	kv := newKV(t)
	kv.Set(TasksKey, `{"version":9,"items":[]}`)
	ts := newTaskStore(t, kv)

	kv.Set(TasksKey, `{"version":1,"items":[]}`)
	ts.Load()
	ts.Create(TaskInput{Title: "saved"})

	raw, _, _ := kv.Get(TasksKey)
	if !strings.Contains(raw, `"saved"`) {
		t.Fatalf("write skipped after reload: %s", raw)
	}
}

func TestTaskLoadCorruptFailsSoft(t *testing.T) {
	kv := newKV(t)
	kv.Set(TasksKey, `{not json`)

	ts := NewTaskStore(kv, zap.NewNop())
	if got := ts.Load(); len(got) != 0 {
		t.Fatalf("got %d tasks from corrupt value", len(got))
	}
	if raw, _, _ := kv.Get(TasksKey); raw != `{not json` {
		t.Error("corrupt value was overwritten on load")
	}
}

func TestTaskWriteFailureKeepsMemory(t *testing.T) {
	kv := newFaultyKV()
	ts := newTaskStore(t, kv)
	kv.setErr = errors.New("disk full")

	task, err := ts.Create(TaskInput{Title: "still here"})
	if err != nil {
		t.Fatalf("write failure surfaced: %v", err)
	}
	if _, ok := ts.Get(task.ID); !ok {
		t.Fatal("task lost after failed write")
	}
}

func TestTaskReadFailureUsesDefaults(t *testing.T) {
	kv := newFaultyKV()
	kv.getErr = errors.New("locked")

	ts := NewTaskStore(kv, zap.NewNop(), WithSamples(true))
	if got := ts.Load(); len(got) != 5 {
		t.Fatalf("got %d tasks", len(got))
	}
	if kv.writes() != 0 {
		t.Error("read failure should not overwrite the store")
	}
}

func TestTaskConcurrentCreates(t *testing.T) {
	ts := newTaskStore(t, newKV(t))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ts.Create(TaskInput{Title: "parallel"})
		}()
	}
	wg.Wait()

	tasks := ts.Tasks()
	if len(tasks) != 20 {
		t.Fatalf("got %d tasks", len(tasks))
	}
	seen := make(map[string]bool)
	for _, task := range tasks {
		if seen[task.ID] {
			t.Fatalf("duplicate id %s", task.ID)
		}
		seen[task.ID] = true
	}
}

// ============================================================
// Event store
// ============================================================

func TestEventCreateDefaults(t *testing.T) {
	es := newEventStore(t, newKV(t))

	e, err := es.Create(EventInput{Title: "Standup"})
	if err != nil {
		t.Fatal(err)
	}
	if e.Date != "2025-01-01" {
		t.Errorf("date = %q, want today", e.Date)
	}
	if e.Time != DefaultEventAt || e.Priority != PriorityMedium || e.Type != EventTypeEvent {
		t.Errorf("defaults not applied: %+v", e)
	}
}

func TestEventCreateValidation(t *testing.T) {
	es := newEventStore(t, newKV(t))

	if _, err := es.Create(EventInput{Title: " "}); !errors.Is(err, ErrEmptyTitle) {
		t.Errorf("blank title err = %v", err)
	}
	if _, err := es.Create(EventInput{Title: "x", Type: "party"}); !errors.Is(err, ErrInvalidEventType) {
		t.Errorf("bad type err = %v", err)
	}
	if _, err := es.Create(EventInput{Title: "x", Time: "9am"}); !errors.Is(err, ErrInvalidTime) {
		t.Errorf("bad time err = %v", err)
	}
}

func TestEventsForDateScenario(t *testing.T) {
	es := newEventStore(t, newKV(t))
	first, _ := es.Create(EventInput{Title: "first", Date: "2025-09-15"})
	es.Create(EventInput{Title: "second", Date: "2025-09-16"})

	got := es.ForDate("2025-09-15")
	if len(got) != 1 || got[0].ID != first.ID {
		t.Fatalf("ForDate = %+v", got)
	}
	if n := es.CountForDate("2025-09-16"); n != 1 {
		t.Errorf("CountForDate = %d", n)
	}
	if n := es.CountForDate("2025-09-17"); n != 0 {
		t.Errorf("CountForDate empty day = %d", n)
	}
}

func TestEventEditTitle(t *testing.T) {
	es := newEventStore(t, newKV(t))
	e, _ := es.Create(EventInput{Title: "Old"})

	if ok, err := es.EditTitle(e.ID, "  New  "); !ok || err != nil {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	got, _ := es.Get(e.ID)
	if got.Title != "New" {
		t.Errorf("title = %q", got.Title)
	}
	if _, err := es.EditTitle(e.ID, ""); !errors.Is(err, ErrEmptyTitle) {
		t.Errorf("empty title err = %v", err)
	}
	if ok, _ := es.EditTitle("missing", "x"); ok {
		t.Error("unknown id reported ok")
	}
}

func TestEventUpdateToggleRemove(t *testing.T) {
	kv := newFaultyKV()
	es := newEventStore(t, kv)
	e, _ := es.Create(EventInput{Title: "Review", Date: "2025-02-01", Time: "10:00"})

	e.Type = EventTypeReminder
	e.Time = "11:30"
	if ok, err := es.Update(e); !ok || err != nil {
		t.Fatalf("update ok=%v err=%v", ok, err)
	}
	got, _ := es.Get(e.ID)
	if got.Type != EventTypeReminder || got.Time != "11:30" {
		t.Errorf("not updated: %+v", got)
	}

	writes := kv.writes()
	if ok, _ := es.Update(Event{ID: "missing", Title: "x"}); ok {
		t.Error("update of unknown id reported ok")
	}
	if kv.writes() != writes {
		t.Error("unknown update wrote")
	}

	es.ToggleCompleted(e.ID)
	es.ToggleCompleted(e.ID)
	if again, _ := es.Get(e.ID); again.Completed {
		t.Error("toggle twice should restore")
	}

	es.Remove(e.ID)
	es.Remove(e.ID)
	if len(es.Events()) != 0 {
		t.Fatal("event not removed")
	}
}

func TestEventPersistRoundTrip(t *testing.T) {
	kv := newKV(t)
	es := newEventStore(t, kv)
	es.Create(EventInput{Title: "a", Date: "2025-03-01", Description: "d"})
	es.Create(EventInput{Title: "b", Type: EventTypeTask, Priority: PriorityHigh})
	want := es.Events()

	reloaded := NewEventStore(kv, zap.NewNop())
	if got := reloaded.Load(); !reflect.DeepEqual(got, want) {
		t.Fatalf("reload:\n got %+v\nwant %+v", got, want)
	}

	es.Clear()
	if got := NewEventStore(kv, zap.NewNop()).Load(); len(got) != 0 {
		t.Fatalf("clear not persisted: %d", len(got))
	}
}

func TestEventSamples(t *testing.T) {
	es := NewEventStore(newKV(t), zap.NewNop(), WithClock(fixedClock(testNow)), WithSamples(true))
	events := es.Load()
	if len(events) != 5 {
		t.Fatalf("seeded %d events", len(events))
	}
	if n := es.CountForDate("2025-01-03"); n != 2 {
		t.Errorf("events two days out = %d, want 2", n)
	}
}

// ============================================================
// Account store
// ============================================================

type stubAuth struct {
	uid       string
	createErr error
	signInErr error
	docs      map[string][]byte
}

func (a *stubAuth) CreateAccount(_ context.Context, _, _ string) (string, error) {
	return a.uid, a.createErr
}

func (a *stubAuth) SignIn(_ context.Context, _, _ string) (string, error) {
	return a.uid, a.signInErr
}

func (a *stubAuth) WriteDocument(_ context.Context, uid string, doc []byte) error {
	if a.docs == nil {
		a.docs = make(map[string][]byte)
	}
	a.docs[uid] = doc
	return nil
}

func (a *stubAuth) ReadDocument(_ context.Context, uid string) ([]byte, error) {
	return a.docs[uid], nil
}

func validSignUp() SignUpRequest {
	return SignUpRequest{
		Username:        "ada",
		Email:           "ada@example.com",
		Password:        "secret1",
		ConfirmPassword: "secret1",
		Birthday:        "1990-12-10",
		AgreeTerms:      true,
	}
}

func TestSignUpValidation(t *testing.T) {
	as := NewAccountStore(newKV(t), nil, zap.NewNop())

	tests := []struct {
		name   string
		modify func(*SignUpRequest)
		want   error
	}{
		{"missing username", func(r *SignUpRequest) { r.Username = " " }, ErrMissingFields},
		{"missing birthday", func(r *SignUpRequest) { r.Birthday = "" }, ErrMissingFields},
		{"bad email", func(r *SignUpRequest) { r.Email = "not-an-email" }, ErrInvalidEmail},
		{"short password", func(r *SignUpRequest) { r.Password, r.ConfirmPassword = "abc", "abc" }, ErrShortPassword},
		{"mismatch", func(r *SignUpRequest) { r.ConfirmPassword = "secret2" }, ErrPasswordMismatch},
		{"bad birthday", func(r *SignUpRequest) { r.Birthday = "12/10/1990" }, ErrInvalidDate},
		{"terms", func(r *SignUpRequest) { r.AgreeTerms = false }, ErrTermsNotAccepted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validSignUp()
			tt.modify(&req)
			if _, err := as.SignUp(context.Background(), req); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
	if _, ok := as.Current(); ok {
		t.Error("failed sign up left a current user")
	}
}

func TestSignUpWithAuthenticator(t *testing.T) {
	kv := newKV(t)
	auth := &stubAuth{uid: "u-1"}
	as := NewAccountStore(kv, auth, zap.NewNop())

	a, err := as.SignUp(context.Background(), validSignUp())
	if err != nil {
		t.Fatal(err)
	}
	if a.UID != "u-1" || a.Username != "ada" {
		t.Errorf("account = %+v", a)
	}
	if len(auth.docs["u-1"]) == 0 {
		t.Error("account document not written")
	}

	// Reload from the key-value store.
	again := NewAccountStore(kv, auth, zap.NewNop())
	got, ok := again.Load()
	if !ok || !reflect.DeepEqual(got, a) {
		t.Fatalf("reload = %+v %v", got, ok)
	}
}

func TestSignUpAuthError(t *testing.T) {
	boom := errors.New("email in use")
	as := NewAccountStore(newKV(t), &stubAuth{createErr: boom}, zap.NewNop())

	if _, err := as.SignUp(context.Background(), validSignUp()); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if _, ok := as.Current(); ok {
		t.Error("current user set after failed sign up")
	}
}

func TestSignInWithoutAuthenticator(t *testing.T) {
	as := NewAccountStore(newKV(t), nil, zap.NewNop())

	if _, err := as.SignIn(context.Background(), "", "pw"); !errors.Is(err, ErrMissingFields) {
		t.Errorf("missing email err = %v", err)
	}

	a, err := as.SignIn(context.Background(), "grace@example.com", "pw")
	if err != nil {
		t.Fatal(err)
	}
	if a.Username != "grace" || a.Email != "grace@example.com" {
		t.Errorf("account = %+v", a)
	}
}

func TestSignInReadsDocument(t *testing.T) {
	auth := &stubAuth{uid: "u-2"}
	auth.WriteDocument(context.Background(), "u-2", []byte(`{"username":"Grace H","email":"grace@example.com","birthday":"1906-12-09"}`))
	as := NewAccountStore(newKV(t), auth, zap.NewNop())

	a, err := as.SignIn(context.Background(), "grace@example.com", "pw")
	if err != nil {
		t.Fatal(err)
	}
	if a.UID != "u-2" || a.Username != "Grace H" || a.Birthday != "1906-12-09" {
		t.Errorf("account = %+v", a)
	}
}

func TestAccountClearAndPicture(t *testing.T) {
	kv := newKV(t)
	as := NewAccountStore(kv, nil, zap.NewNop())
	ctx := context.Background()

	if err := as.SetProfilePicture(ctx, "data:image/png;base64,AAAA"); !errors.Is(err, ErrNotSignedIn) {
		t.Errorf("signed out err = %v", err)
	}

	as.Set(Account{Username: "ada", Email: "ada@example.com"})
	if err := as.SetProfilePicture(ctx, "https://example.com/a.png"); !IsValidation(err) {
		t.Errorf("non data URL err = %v", err)
	}
	if err := as.SetProfilePicture(ctx, "data:image/png;base64,AAAA"); err != nil {
		t.Fatal(err)
	}
	if a, _ := as.Current(); a.ProfilePicture == "" {
		t.Error("picture not stored")
	}

	as.Clear()
	if _, ok := as.Current(); ok {
		t.Error("still signed in")
	}
	if _, found, _ := kv.Get(AccountKey); found {
		t.Error("account record not removed")
	}
}

// ============================================================
// Preference store
// ============================================================

func TestPreferenceDefaults(t *testing.T) {
	ps := NewPreferenceStore(newKV(t), zap.NewNop())
	theme := ps.Load()
	if theme.Mode != ModeLight || theme.Dark {
		t.Errorf("mode = %v", theme.Mode)
	}
	if theme.Colors.Primary != DefaultAccentColor || theme.Colors.Background != "#FDF6F0" {
		t.Errorf("colors = %+v", theme.Colors)
	}
}

func TestPreferenceRoundTrip(t *testing.T) {
	kv := newKV(t)
	ps := NewPreferenceStore(kv, zap.NewNop())
	ps.Load()

	if _, err := ps.SetMode("sepia"); !errors.Is(err, ErrInvalidMode) {
		t.Errorf("bad mode err = %v", err)
	}
	if _, err := ps.SetAccentColor("blue"); !errors.Is(err, ErrInvalidColor) {
		t.Errorf("bad color err = %v", err)
	}

	theme := ps.ToggleMode()
	if !theme.Dark || theme.Colors.Background != "#1A1A1A" {
		t.Errorf("dark theme = %+v", theme)
	}
	theme, err := ps.SetAccentColor("ff8800")
	if err != nil {
		t.Fatal(err)
	}
	if theme.Colors.Primary != "#FF8800" || theme.Colors.Accent != "#FF8800" {
		t.Errorf("accent = %+v", theme.Colors)
	}

	raw, _, _ := kv.Get(PreferencesKey)
	if raw != `{"mode":"dark","accentColor":"#FF8800"}` {
		t.Errorf("stored = %s", raw)
	}

	reloaded := NewPreferenceStore(kv, zap.NewNop()).Load()
	if !reflect.DeepEqual(reloaded, theme) {
		t.Errorf("reload = %+v, want %+v", reloaded, theme)
	}
}

func TestPreferenceIgnoresBadStoredValues(t *testing.T) {
	kv := newKV(t)
	kv.Set(PreferencesKey, `{"mode":"neon","accentColor":"red"}`)

	theme := NewPreferenceStore(kv, zap.NewNop()).Load()
	if theme.Mode != ModeLight || theme.Colors.Primary != DefaultAccentColor {
		t.Errorf("theme = %+v", theme)
	}
}

func TestSetAccentColorForms(t *testing.T) {
	ps := NewPreferenceStore(newKV(t), zap.NewNop())
	ps.Load()

	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"#abc", "#ABC", true},
		{" 12ab34 ", "#12AB34", true},
		{"#ABCD", "", false},
		{"#11223344", "", false},
		{"#12345", "", false},
		{"#GGGGGG", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		theme, err := ps.SetAccentColor(tt.in)
		if !tt.ok {
			if !errors.Is(err, ErrInvalidColor) {
				t.Errorf("SetAccentColor(%q) err = %v", tt.in, err)
			}
			continue
		}
		if err != nil || theme.Colors.Primary != tt.want {
			t.Errorf("SetAccentColor(%q) = %q, %v", tt.in, theme.Colors.Primary, err)
		}
	}
}
