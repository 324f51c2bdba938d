package planner

import (
	"strings"
	"time"

	"go.uber.org/zap"
)

// EventStore owns the calendar events, mirrored under EventsKey.
type EventStore struct {
	list    list[Event]
	now     func() time.Time
	samples bool
}

func NewEventStore(kv KV, log *zap.Logger, opts ...Option) *EventStore {
	o := buildOptions(opts)
	return &EventStore{
		list: list[Event]{
			key:   EventsKey,
			kv:    kv,
			log:   log.Named("events"),
			items: []Event{},
			idOf:  func(e Event) string { return e.ID },
			fix:   normalizeEvent,
		},
		now:     o.now,
		samples: o.samples,
	}
}

func (s *EventStore) Load() []Event {
	var seed []Event
	if s.samples {
		seed = sampleEvents(s.now())
	}
	return s.list.load(seed)
}

func (s *EventStore) Events() []Event {
	return s.list.all()
}

func (s *EventStore) Get(id string) (Event, bool) {
	return s.list.get(id)
}

// Create validates in and appends a new event. A missing date means today.
func (s *EventStore) Create(in EventInput) (Event, error) {
	in, err := prepareEvent(in)
	if err != nil {
		return Event{}, err
	}

	s.list.mu.Lock()
	defer s.list.mu.Unlock()

	now := s.now()
	if in.Date == "" {
		in.Date = now.Format(DateLayout)
	}
	e := Event{
		ID:          s.list.ids.next(now),
		Title:       in.Title,
		Description: in.Description,
		Date:        in.Date,
		Time:        in.Time,
		Priority:    in.Priority,
		Type:        in.Type,
		CreatedAt:   timestamp(now),
	}
	s.list.appendLocked(e)
	return e, nil
}

// Update replaces the event with the same id; false when there is none.
func (s *EventStore) Update(e Event) (bool, error) {
	in, err := prepareEvent(EventInput{
		Title:       e.Title,
		Description: e.Description,
		Date:        e.Date,
		Time:        e.Time,
		Priority:    e.Priority,
		Type:        e.Type,
	})
	if err != nil {
		return false, err
	}

	s.list.mu.Lock()
	defer s.list.mu.Unlock()

	i := s.list.indexLocked(e.ID)
	if i < 0 {
		return false, nil
	}
	cur := &s.list.items[i]
	cur.Title = in.Title
	cur.Description = in.Description
	if in.Date != "" {
		cur.Date = in.Date
	}
	cur.Time = in.Time
	cur.Priority = in.Priority
	cur.Type = in.Type
	cur.Completed = e.Completed
	s.list.persistLocked()
	return true, nil
}

// EditTitle renames id. The title is trimmed and must not be empty.
func (s *EventStore) EditTitle(id, title string) (bool, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return false, ErrEmptyTitle
	}

	s.list.mu.Lock()
	defer s.list.mu.Unlock()

	i := s.list.indexLocked(id)
	if i < 0 {
		return false, nil
	}
	s.list.items[i].Title = title
	s.list.persistLocked()
	return true, nil
}

func (s *EventStore) ToggleCompleted(id string) (Event, bool) {
	s.list.mu.Lock()
	defer s.list.mu.Unlock()

	i := s.list.indexLocked(id)
	if i < 0 {
		return Event{}, false
	}
	s.list.items[i].Completed = !s.list.items[i].Completed
	s.list.persistLocked()
	return s.list.items[i], true
}

func (s *EventStore) Remove(id string) bool {
	return s.RemoveMany([]string{id}) == 1
}

func (s *EventStore) RemoveMany(ids []string) int {
	s.list.mu.Lock()
	defer s.list.mu.Unlock()
	return s.list.removeLocked(idSet(ids))
}

func (s *EventStore) Clear() {
	s.list.mu.Lock()
	defer s.list.mu.Unlock()
	s.list.clearLocked()
}

// ForDate returns the events on date (YYYY-MM-DD) in insertion order.
func (s *EventStore) ForDate(date string) []Event {
	s.list.mu.RLock()
	defer s.list.mu.RUnlock()

	var out []Event
	for _, e := range s.list.items {
		if e.Date == date {
			out = append(out, e)
		}
	}
	return out
}

func (s *EventStore) CountForDate(date string) int {
	return len(s.ForDate(date))
}

func prepareEvent(in EventInput) (EventInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Date = strings.TrimSpace(in.Date)
	in.Time = strings.TrimSpace(in.Time)
	if err := check(in); err != nil {
		return in, err
	}
	if in.Time == "" {
		in.Time = DefaultEventAt
	}
	if in.Priority == "" {
		in.Priority = PriorityMedium
	}
	if in.Type == "" {
		in.Type = EventTypeEvent
	}
	return in, nil
}

// normalizeEvent fills fields older layouts left out.
func normalizeEvent(e *Event) {
	if e.Time == "" {
		e.Time = DefaultEventAt
	}
	if e.Priority == "" {
		e.Priority = PriorityMedium
	}
	if e.Type == "" {
		e.Type = EventTypeEvent
	}
}
