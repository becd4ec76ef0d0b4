package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// Student represents one person imported from the source table
type Student struct {
	UserID       int64
	Email        string
	Title        *string
	Name         *string
	Surname      *string
	Active       bool
	Newsletter   bool
	InternalNote *string
	ActiveTo     *time.Time

	AddressStreet  *string
	AddressCity    *string
	AddressZip     *string
	AddressCountry *string
	AddressPhone   *string

	// GroupIDs is written only by the relationship builder
	GroupIDs IDSet[int]
}

// NewStudent creates a student with the documented defaults
func NewStudent(userID int64) *Student {
	return &Student{
		UserID:   userID,
		Active:   true,
		GroupIDs: NewIDSet[int](),
	}
}

// FullName joins title, name and surname with single spaces, skipping absent parts
func (s *Student) FullName() string {
	parts := make([]string, 0, 3)
	for _, p := range []*string{s.Title, s.Name, s.Surname} {
		if p != nil && *p != "" {
			parts = append(parts, *p)
		}
	}
	return strings.Join(parts, " ")
}

// HasGroups reports whether the student is enrolled in at least one group
func (s *Student) HasGroups() bool {
	return s.GroupIDs.Len() > 0
}

type studentJSON struct {
	UserID         int64      `json:"user_id"`
	Email          string     `json:"email"`
	Title          *string    `json:"title"`
	Name           *string    `json:"name"`
	Surname        *string    `json:"surname"`
	FullName       string     `json:"full_name"`
	Active         bool       `json:"active"`
	Newsletter     bool       `json:"newsletter"`
	InternalNote   *string    `json:"internal_note"`
	ActiveTo       *time.Time `json:"active_to"`
	AddressStreet  *string    `json:"address_street"`
	AddressCity    *string    `json:"address_city"`
	AddressZip     *string    `json:"address_zip"`
	AddressCountry *string    `json:"address_country"`
	AddressPhone   *string    `json:"address_phone"`
	GroupIDs       IDSet[int] `json:"group_ids"`
}

// MarshalJSON renders the persisted students.json object shape
func (s *Student) MarshalJSON() ([]byte, error) {
	groupIDs := s.GroupIDs
	if groupIDs == nil {
		groupIDs = NewIDSet[int]()
	}
	return json.Marshal(studentJSON{
		UserID:         s.UserID,
		Email:          s.Email,
		Title:          s.Title,
		Name:           s.Name,
		Surname:        s.Surname,
		FullName:       s.FullName(),
		Active:         s.Active,
		Newsletter:     s.Newsletter,
		InternalNote:   s.InternalNote,
		ActiveTo:       s.ActiveTo,
		AddressStreet:  s.AddressStreet,
		AddressCity:    s.AddressCity,
		AddressZip:     s.AddressZip,
		AddressCountry: s.AddressCountry,
		AddressPhone:   s.AddressPhone,
		GroupIDs:       groupIDs,
	})
}

// StudentSet holds students keyed by user id and remembers first-insertion order.
// Re-inserting an existing id replaces the record in place.
type StudentSet struct {
	byID  map[int64]*Student
	order []int64
}

// NewStudentSet creates an empty student set
func NewStudentSet() *StudentSet {
	return &StudentSet{byID: make(map[int64]*Student)}
}

// Put inserts or replaces a student. It returns true when an earlier record was replaced.
func (s *StudentSet) Put(student *Student) bool {
	_, exists := s.byID[student.UserID]
	if !exists {
		s.order = append(s.order, student.UserID)
	}
	s.byID[student.UserID] = student
	return exists
}

// Get returns the student with the given id
func (s *StudentSet) Get(userID int64) (*Student, bool) {
	st, ok := s.byID[userID]
	return st, ok
}

// Len returns the number of distinct students
func (s *StudentSet) Len() int {
	return len(s.order)
}

// All returns students in first-insertion order
func (s *StudentSet) All() []*Student {
	out := make([]*Student, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}
