package dataprocessing

import (
	"time"

	"floxcli/pkg/contracts/domain"
)

// BuildRelationships links students to groups for every collected token.
// Users missing from students are skipped. Both membership sets are updated
// and one edge is appended per token, so repeated tokens repeat edges.
// now is called once per edge.
func BuildRelationships(students *domain.StudentSet, index *GroupIndex, tokens *TokenMap, now func() time.Time) []domain.StudentGroup {
	if now == nil {
		now = time.Now
	}

	edges := make([]domain.StudentGroup, 0)
	for _, userID := range tokens.UserIDs() {
		student, ok := students.Get(userID)
		if !ok {
			continue
		}
		for _, name := range tokens.Tokens(userID) {
			groupID, ok := index.Lookup(name)
			if !ok {
				continue
			}
			group, _ := index.Get(groupID)

			student.GroupIDs.Add(groupID)
			group.StudentIDs.Add(userID)

			edges = append(edges, domain.StudentGroup{
				StudentID:  userID,
				GroupID:    groupID,
				EnrolledAt: now(),
			})
		}
	}
	return edges
}
