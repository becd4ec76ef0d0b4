package dataprocessing

import (
	"math"
	"sort"

	"floxcli/internal/config"
	"floxcli/pkg/contracts/domain"
)

// ComputeStatistics summarizes the collections of a run. It does not modify its inputs.
// topN limits largest_groups; values below 1 fall back to the default limit.
func ComputeStatistics(students *domain.StudentSet, index *GroupIndex, edges []domain.StudentGroup, topN int) *domain.ImportStatistics {
	if topN < 1 {
		topN = config.DefaultLargestGroupsLimit
	}

	stats := &domain.ImportStatistics{
		TotalStudents:      students.Len(),
		TotalGroups:        index.Len(),
		TotalRelationships: len(edges),
		GroupsByCategory:   make(map[domain.Category]int),
		LargestGroups:      make([]domain.GroupSize, 0),
	}

	for _, s := range students.All() {
		if s.HasGroups() {
			stats.StudentsWithGroups++
		}
	}
	stats.StudentsWithoutGroups = stats.TotalStudents - stats.StudentsWithGroups

	groups := index.Groups()
	memberships := 0
	for _, g := range groups {
		category := g.Category
		if category == "" {
			category = domain.CategoryUncategorized
		}
		stats.GroupsByCategory[category]++
		memberships += g.StudentCount()
	}

	// groups are already in id order, so a stable sort keeps ties by id
	sorted := make([]*domain.Group, len(groups))
	copy(sorted, groups)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StudentCount() > sorted[j].StudentCount()
	})
	if len(sorted) > topN {
		sorted = sorted[:topN]
	}
	for _, g := range sorted {
		stats.LargestGroups = append(stats.LargestGroups, domain.GroupSize{
			Name:         g.Name,
			StudentCount: g.StudentCount(),
		})
	}

	if len(groups) > 0 {
		avg := float64(memberships) / float64(len(groups))
		stats.StudentsPerGroupAvg = math.Round(avg*100) / 100
	}

	return stats
}
