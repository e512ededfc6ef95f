package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// Date is a calendar day in the platform's single implicit timezone.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return Date{t}, nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) AddDays(n int) Date {
	return Date{d.Time.AddDate(0, 0, n)}
}

func (d Date) Before(o Date) bool { return d.Time.Before(o.Time) }
func (d Date) After(o Date) bool  { return d.Time.After(o.Time) }
func (d Date) Equal(o Date) bool  { return d.Time.Equal(o.Time) }

// Weekday returns the lowercase day name of d.
func (d Date) Weekday() Weekday {
	return weekdayNames[d.Time.Weekday()]
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value stores the date as YYYY-MM-DD so it binds to DATE columns.
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
		return nil
	case time.Time:
		*d = DateOf(v)
		return nil
	case string:
		parsed, err := ParseDate(v)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case []byte:
		return d.Scan(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Date", src)
	}
}

// Weekday is a lowercase English day name, e.g. "monday".
type Weekday string

const (
	Sunday    Weekday = "sunday"
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
)

var weekdayNames = map[time.Weekday]Weekday{
	time.Sunday:    Sunday,
	time.Monday:    Monday,
	time.Tuesday:   Tuesday,
	time.Wednesday: Wednesday,
	time.Thursday:  Thursday,
	time.Friday:    Friday,
	time.Saturday:  Saturday,
}

func ParseWeekday(s string) (Weekday, error) {
	w := Weekday(strings.ToLower(strings.TrimSpace(s)))
	if !w.Valid() {
		return "", fmt.Errorf("invalid day of week %q", s)
	}
	return w, nil
}

func (w Weekday) Valid() bool {
	for _, name := range weekdayNames {
		if name == w {
			return true
		}
	}
	return false
}

// ParseClock converts HH:MM to minutes since midnight.
func ParseClock(s string) (int, error) {
	if len(s) != len(ClockLayout) {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", s)
	}
	t, err := time.Parse(ClockLayout, s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// TimeSlot is a bounded interval within a single day.
type TimeSlot struct {
	StartTime string `json:"start_time" validate:"required,clock"`
	EndTime   string `json:"end_time" validate:"required,clock"`
	IsBooked  bool   `json:"is_booked"`
}

func (s TimeSlot) Validate() error {
	start, err := ParseClock(s.StartTime)
	if err != nil {
		return err
	}
	end, err := ParseClock(s.EndTime)
	if err != nil {
		return err
	}
	if start >= end {
		return fmt.Errorf("slot %s-%s: start time must be before end time", s.StartTime, s.EndTime)
	}
	return nil
}

// Matches reports whether the slot covers exactly start-end.
func (s TimeSlot) Matches(start, end string) bool {
	return s.StartTime == start && s.EndTime == end
}

// Overlaps assumes both slots are valid; HH:MM strings compare lexically.
func (s TimeSlot) Overlaps(o TimeSlot) bool {
	return s.StartTime < o.EndTime && o.StartTime < s.EndTime
}

// ValidateSlots checks each slot and rejects overlaps within the set.
func ValidateSlots(slots []TimeSlot) error {
	for _, s := range slots {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	sorted := SortSlots(slots)
	for i := 1; i < len(sorted); i++ {
		if sorted[i-1].Overlaps(sorted[i]) {
			return fmt.Errorf("slots %s-%s and %s-%s overlap",
				sorted[i-1].StartTime, sorted[i-1].EndTime, sorted[i].StartTime, sorted[i].EndTime)
		}
	}
	return nil
}

// SortSlots returns a copy of slots ordered by start then end time.
func SortSlots(slots []TimeSlot) []TimeSlot {
	sorted := make([]TimeSlot, len(slots))
	copy(sorted, slots)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].StartTime == sorted[j].StartTime {
			return sorted[i].EndTime < sorted[j].EndTime
		}
		return sorted[i].StartTime < sorted[j].StartTime
	})
	return sorted
}

// SlotKey identifies one bookable occurrence of an employer's slot.
type SlotKey struct {
	EmployerID string `json:"employer_id"`
	Date       Date   `json:"date"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
}

func (k SlotKey) Slot() TimeSlot {
	return TimeSlot{StartTime: k.StartTime, EndTime: k.EndTime}
}

func (k SlotKey) String() string {
	return fmt.Sprintf("%s %s %s-%s", k.EmployerID, k.Date, k.StartTime, k.EndTime)
}
