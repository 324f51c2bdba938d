package planner

// Storage keys. One canonical key per record.
const (
	TasksKey       = "@tasks"
	EventsKey      = "@events"
	AccountKey     = "@user"
	PreferencesKey = "@theme_settings"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"

	// timestamps are UTC with millisecond precision.
	timestampLayout = "2006-01-02T15:04:05.000Z07:00"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

type EventType string

const (
	EventTypeEvent    EventType = "event"
	EventTypeTask     EventType = "task"
	EventTypeReminder EventType = "reminder"
)

var EventTypes = []EventType{EventTypeEvent, EventTypeTask, EventTypeReminder}

// Well-known subjects. The set is open: any non-empty subject is accepted.
var Subjects = []string{"Work", "Personal", "Health", "Study"}

const (
	DefaultSubject = "Personal"
	DefaultDueTime = "23:59"
	DefaultEventAt = "00:00"
)

type Task struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Completed   bool     `json:"completed"`
	DueDate     string   `json:"dueDate"`
	DueTime     string   `json:"dueTime"`
	Subject     string   `json:"subject"`
	Priority    Priority `json:"priority"`
	Description string   `json:"description,omitempty"`
	CreatedAt   string   `json:"createdAt"`
	CompletedAt string   `json:"completedAt,omitempty"`
}

// TaskInput carries the caller-supplied fields of a new task. Empty fields
// take their defaults.
type TaskInput struct {
	Title       string `validate:"required"`
	DueDate     string `validate:"omitempty,datetime=2006-01-02"`
	DueTime     string `validate:"omitempty,datetime=15:04"`
	Subject     string
	Priority    Priority `validate:"omitempty,oneof=low medium high"`
	Description string
}

type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	Priority    Priority  `json:"priority"`
	Type        EventType `json:"type"`
	Completed   bool      `json:"completed"`
	CreatedAt   string    `json:"createdAt"`
}

type EventInput struct {
	Title       string `validate:"required"`
	Description string
	Date        string    `validate:"omitempty,datetime=2006-01-02"`
	Time        string    `validate:"omitempty,datetime=15:04"`
	Priority    Priority  `validate:"omitempty,oneof=low medium high"`
	Type        EventType `validate:"omitempty,oneof=event task reminder"`
}

type Account struct {
	UID            string `json:"uid,omitempty"`
	Username       string `json:"username"`
	Email          string `json:"email"`
	Birthday       string `json:"birthday,omitempty"`
	ProfilePicture string `json:"profilePicture,omitempty"`
}

type Mode string

const (
	ModeLight Mode = "light"
	ModeDark  Mode = "dark"
)

// Preference is the persisted part of the theme.
type Preference struct {
	Mode        Mode   `json:"mode"`
	AccentColor string `json:"accentColor"`
}
