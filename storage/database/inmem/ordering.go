package inmemdb

import (
	"sort"
	"strings"
	"time"

	"github.com/trezcool/smartgrades/core"
	"github.com/trezcool/smartgrades/core/school"
)

func compareInts(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareTimes(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	}
	return 0
}

func compareTeachers(a, b school.Teacher, field string) int {
	switch field {
	case "name":
		return strings.Compare(a.Name, b.Name)
	case "email":
		return strings.Compare(a.Email.String, b.Email.String)
	case "created_at":
		return compareTimes(a.CreatedAt, b.CreatedAt)
	default:
		return compareInts(a.ID, b.ID)
	}
}

func sortTeachers(teachers []school.Teacher, ordering []core.DBOrdering) {
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "name", Ascending: true}}
	}
	ordering = append(ordering, core.DBOrdering{Field: "id", Ascending: true})
	sort.SliceStable(teachers, func(i, j int) bool {
		for _, ord := range ordering {
			c := compareTeachers(teachers[i], teachers[j], ord.Field)
			if !ord.Ascending {
				c = -c
			}
			if c != 0 {
				return c < 0
			}
		}
		return false
	})
}

// sortAssessments orders assessments chronologically: by due date with undated ones
// last, then by creation.
func sortAssessments(assessments []school.Assessment) {
	sort.SliceStable(assessments, func(i, j int) bool {
		a, b := assessments[i], assessments[j]
		if a.DueDate.Valid != b.DueDate.Valid {
			return a.DueDate.Valid
		}
		if c := strings.Compare(a.DueDate.String, b.DueDate.String); c != 0 {
			return c < 0
		}
		if c := compareTimes(a.CreatedAt, b.CreatedAt); c != 0 {
			return c < 0
		}
		return a.ID < b.ID
	})
}

func sortEnrolledStudents(students []school.EnrolledStudent) {
	sort.SliceStable(students, func(i, j int) bool {
		a, b := students[i], students[j]
		if a.LastName != b.LastName {
			return a.LastName < b.LastName
		}
		if a.FirstName != b.FirstName {
			return a.FirstName < b.FirstName
		}
		return a.EnrollmentID < b.EnrollmentID
	})
}
