package exporter

import (
	"strconv"

	"floxcli/pkg/contracts/domain"
)

// StudentHeaders are the students.csv columns, matching the students.json keys
var StudentHeaders = []string{
	"user_id", "email", "title", "name", "surname", "full_name", "active", "newsletter",
	"internal_note", "active_to", "address_street", "address_city", "address_zip",
	"address_country", "address_phone", "group_ids",
}

// GroupHeaders are the groups.csv columns, matching the groups.json keys
var GroupHeaders = []string{
	"group_id", "name", "description", "category", "year", "is_active", "created_at",
	"student_count", "student_ids",
}

// StudentGroupHeaders are the student_groups.csv columns
var StudentGroupHeaders = []string{"student_id", "group_id", "enrolled_at"}

// setSeparator joins set-valued fields inside one CSV cell
const setSeparator = ","

func studentRecord(s *domain.Student) []string {
	return []string{
		formatInt(s.UserID),
		s.Email,
		formatOptional(s.Title),
		formatOptional(s.Name),
		formatOptional(s.Surname),
		s.FullName(),
		formatBool(s.Active),
		formatBool(s.Newsletter),
		formatOptional(s.InternalNote),
		formatTime(s.ActiveTo),
		formatOptional(s.AddressStreet),
		formatOptional(s.AddressCity),
		formatOptional(s.AddressZip),
		formatOptional(s.AddressCountry),
		formatOptional(s.AddressPhone),
		s.GroupIDs.Join(setSeparator),
	}
}

func groupRecord(g *domain.Group) []string {
	return []string{
		strconv.Itoa(g.GroupID),
		g.Name,
		formatOptional(g.Description),
		string(g.Category),
		formatOptional(g.Year),
		formatBool(g.IsActive),
		formatTime(&g.CreatedAt),
		strconv.Itoa(g.StudentCount()),
		g.StudentIDs.Join(setSeparator),
	}
}

func studentGroupRecord(e domain.StudentGroup) []string {
	return []string{
		formatInt(e.StudentID),
		strconv.Itoa(e.GroupID),
		formatTime(&e.EnrolledAt),
	}
}
