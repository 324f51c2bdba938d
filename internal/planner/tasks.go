package planner

import (
	"strings"
	"time"

	"go.uber.org/zap"
)

// TaskStore owns the to-do list for the lifetime of the process. Every
// mutation rewrites the full list under TasksKey.
type TaskStore struct {
	list     list[Task]
	selected map[string]struct{}
	now      func() time.Time
	samples  bool
}

func NewTaskStore(kv KV, log *zap.Logger, opts ...Option) *TaskStore {
	o := buildOptions(opts)
	return &TaskStore{
		list: list[Task]{
			key:   TasksKey,
			kv:    kv,
			log:   log.Named("tasks"),
			items: []Task{},
			idOf:  func(t Task) string { return t.ID },
			fix:   normalizeTask,
		},
		selected: make(map[string]struct{}),
		now:      o.now,
		samples:  o.samples,
	}
}

// Load reads the persisted list, seeding it on first run. It never fails;
// read errors are logged and the default list is used.
func (s *TaskStore) Load() []Task {
	var seed []Task
	if s.samples {
		seed = sampleTasks(s.now())
	}
	tasks := s.list.load(seed)

	s.list.mu.Lock()
	s.selected = make(map[string]struct{})
	s.list.mu.Unlock()
	return tasks
}

// Tasks returns a copy of the list in insertion order.
func (s *TaskStore) Tasks() []Task {
	return s.list.all()
}

func (s *TaskStore) Get(id string) (Task, bool) {
	return s.list.get(id)
}

// Create validates in, assigns id, createdAt and defaults, and appends the task.
func (s *TaskStore) Create(in TaskInput) (Task, error) {
	in, err := prepareTask(in)
	if err != nil {
		return Task{}, err
	}

	s.list.mu.Lock()
	defer s.list.mu.Unlock()

	now := s.now()
	t := Task{
		ID:          s.list.ids.next(now),
		Title:       in.Title,
		DueDate:     in.DueDate,
		DueTime:     in.DueTime,
		Subject:     in.Subject,
		Priority:    in.Priority,
		Description: in.Description,
		CreatedAt:   timestamp(now),
	}
	s.list.appendLocked(t)
	return t, nil
}

// Update replaces the stored task with the same id. It reports false, and
// writes nothing, when no task has that id. id and createdAt cannot change.
func (s *TaskStore) Update(t Task) (bool, error) {
	in, err := prepareTask(TaskInput{
		Title:       t.Title,
		DueDate:     t.DueDate,
		DueTime:     t.DueTime,
		Subject:     t.Subject,
		Priority:    t.Priority,
		Description: t.Description,
	})
	if err != nil {
		return false, err
	}

	s.list.mu.Lock()
	defer s.list.mu.Unlock()

	i := s.list.indexLocked(t.ID)
	if i < 0 {
		return false, nil
	}
	cur := s.list.items[i]
	cur.Title = in.Title
	cur.DueDate = in.DueDate
	cur.DueTime = in.DueTime
	cur.Subject = in.Subject
	cur.Priority = in.Priority
	cur.Description = in.Description
	if cur.Completed != t.Completed {
		cur.Completed = t.Completed
		cur.CompletedAt = s.completedAt(t.Completed)
	}
	s.list.items[i] = cur
	s.list.persistLocked()
	return true, nil
}

// ToggleCompleted flips the completion flag of id.
func (s *TaskStore) ToggleCompleted(id string) (Task, bool) {
	s.list.mu.Lock()
	defer s.list.mu.Unlock()

	i := s.list.indexLocked(id)
	if i < 0 {
		return Task{}, false
	}
	t := &s.list.items[i]
	t.Completed = !t.Completed
	t.CompletedAt = s.completedAt(t.Completed)
	s.list.persistLocked()
	return *t, true
}

// Remove deletes id and drops it from the selection. Removing an unknown id
// is a no-op.
func (s *TaskStore) Remove(id string) bool {
	return s.RemoveMany([]string{id}) == 1
}

// RemoveMany deletes every task whose id is in ids.
func (s *TaskStore) RemoveMany(ids []string) int {
	set := idSet(ids)

	s.list.mu.Lock()
	defer s.list.mu.Unlock()

	for id := range set {
		delete(s.selected, id)
	}
	return s.list.removeLocked(set)
}

// Clear empties the list and the selection.
func (s *TaskStore) Clear() {
	s.list.mu.Lock()
	defer s.list.mu.Unlock()

	s.selected = make(map[string]struct{})
	s.list.clearLocked()
}

// ToggleSelected adds or removes id from the bulk selection and reports
// whether it is selected afterwards. Unknown ids are never selected.
func (s *TaskStore) ToggleSelected(id string) bool {
	s.list.mu.Lock()
	defer s.list.mu.Unlock()

	if _, ok := s.selected[id]; ok {
		delete(s.selected, id)
		return false
	}
	if s.list.indexLocked(id) < 0 {
		return false
	}
	s.selected[id] = struct{}{}
	return true
}

func (s *TaskStore) IsSelected(id string) bool {
	s.list.mu.RLock()
	defer s.list.mu.RUnlock()
	_, ok := s.selected[id]
	return ok
}

// Selected returns the selected ids in list order.
func (s *TaskStore) Selected() []string {
	s.list.mu.RLock()
	defer s.list.mu.RUnlock()

	var ids []string
	for _, t := range s.list.items {
		if _, ok := s.selected[t.ID]; ok {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

func (s *TaskStore) ClearSelection() {
	s.list.mu.Lock()
	defer s.list.mu.Unlock()
	s.selected = make(map[string]struct{})
}

// RemoveSelected deletes every selected task.
func (s *TaskStore) RemoveSelected() int {
	return s.RemoveMany(s.Selected())
}

func (s *TaskStore) completedAt(done bool) string {
	if !done {
		return ""
	}
	return timestamp(s.now())
}

func prepareTask(in TaskInput) (TaskInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.DueDate = strings.TrimSpace(in.DueDate)
	in.DueTime = strings.TrimSpace(in.DueTime)
	in.Subject = strings.TrimSpace(in.Subject)
	if err := check(in); err != nil {
		return in, err
	}
	if in.DueTime == "" {
		in.DueTime = DefaultDueTime
	}
	if in.Subject == "" {
		in.Subject = DefaultSubject
	}
	if in.Priority == "" {
		in.Priority = PriorityMedium
	}
	return in, nil
}

// normalizeTask fills fields older layouts left out.
func normalizeTask(t *Task) {
	if t.DueTime == "" {
		t.DueTime = DefaultDueTime
	}
	if t.Subject == "" {
		t.Subject = DefaultSubject
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
}
