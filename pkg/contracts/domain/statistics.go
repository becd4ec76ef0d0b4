package domain

// ImportStatistics summarizes one finished import run
type ImportStatistics struct {
	TotalStudents         int              `json:"total_students"`
	TotalGroups           int              `json:"total_groups"`
	TotalRelationships    int              `json:"total_relationships"`
	StudentsWithGroups    int              `json:"students_with_groups"`
	StudentsWithoutGroups int              `json:"students_without_groups"`
	GroupsByCategory      map[Category]int `json:"groups_by_category"`
	LargestGroups         []GroupSize      `json:"largest_groups"`
	StudentsPerGroupAvg   float64          `json:"students_per_group_avg"`
}

// GroupSize pairs a group name with its distinct member count
type GroupSize struct {
	Name         string `json:"name"`
	StudentCount int    `json:"student_count"`
}
