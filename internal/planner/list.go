package planner

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
)

// KV is the durable key-value store the planner mirrors its records into.
type KV interface {
	Get(key string) (value string, found bool, err error)
	Set(key, value string) error
	Remove(key string) error
}

// schemaVersion is written with every persisted list. Version 0 is the bare
// JSON array layout written before the field existed.
const schemaVersion = 1

type envelope[T any] struct {
	Version int `json:"version"`
	Items   []T `json:"items"`
}

func encodeList[T any](items []T) (string, error) {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(envelope[T]{Version: schemaVersion, Items: items})
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeList[T any](raw string) ([]T, int, error) {
	data := bytes.TrimSpace([]byte(raw))
	if len(data) > 0 && data[0] == '[' {
		var items []T
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, 0, err
		}
		return items, 0, nil
	}

	var env envelope[T]
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, 0, err
	}
	if env.Version > schemaVersion {
		return nil, env.Version, fmt.Errorf("%w: %d", ErrUnsupportedVersion, env.Version)
	}
	return env.Items, env.Version, nil
}

type Option func(*options)

type options struct {
	now     func() time.Time
	samples bool
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithSamples seeds the sample records when nothing has been stored yet.
func WithSamples(enabled bool) Option {
	return func(o *options) { o.samples = enabled }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// idSource hands out millisecond timestamps as ids, bumping past the last one
// so two creates in the same millisecond still get distinct ids.
type idSource struct {
	last int64
}

func (s *idSource) next(now time.Time) string {
	n := now.UnixMilli()
	if n <= s.last {
		n = s.last + 1
	}
	s.last = n
	return strconv.FormatInt(n, 10)
}

func (s *idSource) observe(id string) {
	if n, err := strconv.ParseInt(id, 10, 64); err == nil && n > s.last {
		s.last = n
	}
}

// list is the mutex-guarded, persisted slice shared by the task and event stores.
type list[T any] struct {
	mu    sync.RWMutex
	key   string
	kv    KV
	log   *zap.Logger
	items []T
	ids   idSource
	idOf  func(T) string
	fix   func(*T)

	// readOnly is set when the stored list was written by a newer build.
	// Changes stay in memory so that list is never overwritten.
	readOnly bool
}

// load replaces the in-memory list from the store. A missing key is seeded
// and written; a broken or unreadable value falls back to the seed in memory
// and is left as it is in the store.
func (l *list[T]) load(seed []T) []T {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.readOnly = false
	raw, found, err := l.kv.Get(l.key)
	switch {
	case err != nil:
		l.log.Warn("read failed, using defaults", zap.String("key", l.key), zap.Error(err))
		l.items = seed
	case !found:
		l.items = seed
		l.persistLocked()
	default:
		items, version, err := decodeList[T](raw)
		if err != nil {
			l.log.Warn("decode failed, using defaults",
				zap.String("key", l.key), zap.Int("version", version), zap.Error(err))
			l.items = seed
			l.readOnly = errors.Is(err, ErrUnsupportedVersion)
			break
		}
		for i := range items {
			l.fix(&items[i])
		}
		l.items = items
		if version < schemaVersion {
			l.log.Info("upgrading stored list", zap.String("key", l.key), zap.Int("from", version))
			l.persistLocked()
		}
	}

	if l.items == nil {
		l.items = []T{}
	}
	for _, it := range l.items {
		l.ids.observe(l.idOf(it))
	}
	return l.snapshotLocked()
}

func (l *list[T]) all() []T {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snapshotLocked()
}

func (l *list[T]) get(id string) (T, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if i := l.indexLocked(id); i >= 0 {
		return l.items[i], true
	}
	var zero T
	return zero, false
}

func (l *list[T]) snapshotLocked() []T {
	out := make([]T, len(l.items))
	copy(out, l.items)
	return out
}

func (l *list[T]) indexLocked(id string) int {
	for i, it := range l.items {
		if l.idOf(it) == id {
			return i
		}
	}
	return -1
}

func (l *list[T]) appendLocked(item T) {
	l.items = append(l.items, item)
	l.persistLocked()
}

// removeLocked drops every item whose id is in ids and reports how many went.
func (l *list[T]) removeLocked(ids map[string]struct{}) int {
	kept := l.items[:0:0]
	for _, it := range l.items {
		if _, drop := ids[l.idOf(it)]; !drop {
			kept = append(kept, it)
		}
	}
	removed := len(l.items) - len(kept)
	if removed > 0 {
		l.items = kept
		l.persistLocked()
	}
	return removed
}

func (l *list[T]) clearLocked() {
	l.items = []T{}
	l.persistLocked()
}

// persistLocked writes the whole list. Failures are logged and the in-memory
// list stays authoritative.
func (l *list[T]) persistLocked() {
	if l.readOnly {
		l.log.Warn("stored list is from a newer version, not writing",
			zap.String("key", l.key), zap.Int("items", len(l.items)))
		return
	}
	raw, err := encodeList(l.items)
	if err != nil {
		l.log.Error("encode failed", zap.String("key", l.key), zap.Error(err))
		return
	}
	if err := l.kv.Set(l.key, raw); err != nil {
		l.log.Warn("write failed", zap.String("key", l.key), zap.Int("items", len(l.items)), zap.Error(err))
	}
}

func idSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func timestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}
