package domain

import (
	"encoding/json"
	"time"
)

// Category is the coarse bucket a group is classified into.
// Values are the persisted labels used by the downstream consumers.
type Category string

const (
	CategoryLecturers    Category = "LEKTOŘI"
	CategoryStudyProgram Category = "STUDIUM"
	CategorySeminar      Category = "SEMINÁŘ"
	CategoryAdmin        Category = "ADMIN"
	CategoryMembership   Category = "ČLENOVÉ"
	CategoryCourse       Category = "KURZ"

	// CategoryUncategorized labels groups without a category in statistics
	CategoryUncategorized Category = "UNCATEGORIZED"
)

// Group represents a named course, cohort or role tag extracted from free text
type Group struct {
	GroupID     int
	Name        string
	Description *string
	Category    Category
	Year        *string
	IsActive    bool
	CreatedAt   time.Time

	StudentIDs IDSet[int64]
}

// NewGroup creates an active group with an empty membership set
func NewGroup(id int, name string, createdAt time.Time) *Group {
	return &Group{
		GroupID:    id,
		Name:       name,
		IsActive:   true,
		CreatedAt:  createdAt,
		StudentIDs: NewIDSet[int64](),
	}
}

// StudentCount returns the number of distinct members
func (g *Group) StudentCount() int {
	return g.StudentIDs.Len()
}

type groupJSON struct {
	GroupID      int          `json:"group_id"`
	Name         string       `json:"name"`
	Description  *string      `json:"description"`
	Category     *Category    `json:"category"`
	Year         *string      `json:"year"`
	IsActive     bool         `json:"is_active"`
	CreatedAt    time.Time    `json:"created_at"`
	StudentCount int          `json:"student_count"`
	StudentIDs   IDSet[int64] `json:"student_ids"`
}

// MarshalJSON renders the persisted groups.json object shape
func (g *Group) MarshalJSON() ([]byte, error) {
	var category *Category
	if g.Category != "" {
		c := g.Category
		category = &c
	}
	studentIDs := g.StudentIDs
	if studentIDs == nil {
		studentIDs = NewIDSet[int64]()
	}
	return json.Marshal(groupJSON{
		GroupID:      g.GroupID,
		Name:         g.Name,
		Description:  g.Description,
		Category:     category,
		Year:         g.Year,
		IsActive:     g.IsActive,
		CreatedAt:    g.CreatedAt,
		StudentCount: studentIDs.Len(),
		StudentIDs:   studentIDs,
	})
}

// StudentGroup is one student-to-group enrollment edge
type StudentGroup struct {
	StudentID  int64     `json:"student_id"`
	GroupID    int       `json:"group_id"`
	EnrolledAt time.Time `json:"enrolled_at"`
}
