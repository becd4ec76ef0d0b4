package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"floxcli/pkg/contracts/domain"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		want domain.Category
	}{
		{name: "LEKTOŘI", want: domain.CategoryLecturers},
		{name: "lektorka jógy", want: domain.CategoryLecturers},
		{name: "Studium TCM 2022-2025", want: domain.CategoryStudyProgram},
		{name: "Seminář Qigong", want: domain.CategorySeminar},
		{name: "Administrace", want: domain.CategoryAdmin},
		{name: "Členové spolku", want: domain.CategoryMembership},
		{name: "člen", want: domain.CategoryMembership},
		{name: "TUINA A", want: domain.CategoryCourse},
		{name: "", want: domain.CategoryCourse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.name))
		})
	}
}

func TestClassify_RulePriority(t *testing.T) {
	tests := []struct {
		name string
		want domain.Category
	}{
		{name: "LEKTOŘI SEMINÁŘ", want: domain.CategoryLecturers},
		{name: "Seminář pro studium", want: domain.CategoryStudyProgram},
		{name: "Admin seminář", want: domain.CategorySeminar},
		{name: "Admin členové", want: domain.CategoryAdmin},
		{name: "Lektor studium admin", want: domain.CategoryLecturers},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.name))
		})
	}
}

func TestClassifyWith_CustomRules(t *testing.T) {
	rules := []CategoryRule{
		{Markers: []string{"ADMIN"}, Category: domain.CategoryAdmin},
		{Markers: []string{"LEKTOR"}, Category: domain.CategoryLecturers},
	}

	assert.Equal(t, domain.CategoryAdmin, ClassifyWith("Lektor admin", rules))
	assert.Equal(t, domain.CategoryCourse, ClassifyWith("Seminář", rules))
	assert.Equal(t, domain.CategoryCourse, ClassifyWith("anything", nil))
}

func TestCategoryRules_Order(t *testing.T) {
	require.Len(t, CategoryRules, 5)
	got := make([]domain.Category, 0, len(CategoryRules))
	for _, r := range CategoryRules {
		got = append(got, r.Category)
	}
	assert.Equal(t, []domain.Category{
		domain.CategoryLecturers,
		domain.CategoryStudyProgram,
		domain.CategorySeminar,
		domain.CategoryAdmin,
		domain.CategoryMembership,
	}, got)
}

func TestExtractYear(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{name: "KURZ 2023-2024", want: "2023-2024"},
		{name: "Studium 2019 a 2020-2021", want: "2020-2021"},
		{name: "KURZ 2023", want: "2023"},
		{name: "Seminář 2018 2019", want: "2018"},
		{name: "kód 12345", want: "1234"},
		{name: "rok 9999-0000", want: "9999-0000"},
		{name: "TUINA A"},
		{name: "ročník 23"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractYear(tt.name)
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, *got)
		})
	}
}
