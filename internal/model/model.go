package model

import "time"

// CurrentVersion is the schema generation written by this build.
const CurrentVersion = 2

type PersonType string

const (
	PersonTypePerson PersonType = "person"
	PersonTypeGroup  PersonType = "group"
)

type Kind string

const (
	KindTask        Kind = "task"
	KindAppointment Kind = "appointment"
	KindMilestone   Kind = "milestone"
)

type Repeat string

const (
	RepeatNone    Repeat = "none"
	RepeatDaily   Repeat = "daily"
	RepeatWeekly  Repeat = "weekly"
	RepeatMonthly Repeat = "monthly"
)

type Status string

const (
	StatusPlanned    Status = "planned"
	StatusInProgress Status = "inprogress"
	StatusBacklog    Status = "backlog"
	StatusDone       Status = "done"
)

// Person is either a concrete person or a group. Only groups carry Members,
// which may reference persons or other groups.
type Person struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Type      PersonType `json:"type"`
	Role      string     `json:"role"`
	Members   []string   `json:"members"`
	CreatedAt time.Time  `json:"createdAt"`
}

func (p Person) IsGroup() bool { return p.Type == PersonTypeGroup }

// Task is a dated or undated work item. A recurring task is a single series
// record that is advanced in place.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Note        string     `json:"note"`
	Priority    int        `json:"priority"`
	Kind        Kind       `json:"kind"`
	IsBacklog   bool       `json:"isBacklog"`
	Start       Date       `json:"start"`
	End         Date       `json:"end"`
	TimeStart   TimeOfDay  `json:"timeStart"`
	TimeEnd     TimeOfDay  `json:"timeEnd"`
	Repeat      Repeat     `json:"repeat"`
	RepeatUntil Date       `json:"repeatUntil"`
	Status      Status     `json:"status"`
	DoneAt      *time.Time `json:"doneAt"`
	Assignees   []string   `json:"assignees"`
	CreatedAt   time.Time  `json:"createdAt"`
}

func (t Task) IsRecurring() bool {
	return !t.IsBacklog && t.Repeat != "" && t.Repeat != RepeatNone
}

func (t Task) IsSingleDay() bool {
	return t.Kind == KindAppointment || t.Kind == KindMilestone
}

// Document is the single persisted state. It exclusively owns all persons and
// tasks; tasks reference persons by id only.
type Document struct {
	Version     int        `json:"version"`
	People      []Person   `json:"people"`
	Tasks       []Task     `json:"tasks"`
	LastSavedAt *time.Time `json:"lastSavedAt"`
}

func ValidStatus(s Status) bool {
	switch s {
	case StatusPlanned, StatusInProgress, StatusBacklog, StatusDone:
		return true
	}
	return false
}

func ValidKind(k Kind) bool {
	switch k {
	case KindTask, KindAppointment, KindMilestone:
		return true
	}
	return false
}

func ValidRepeat(r Repeat) bool {
	switch r {
	case RepeatNone, RepeatDaily, RepeatWeekly, RepeatMonthly:
		return true
	}
	return false
}
