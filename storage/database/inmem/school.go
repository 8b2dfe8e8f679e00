package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/trezcool/smartgrades/core"
	"github.com/trezcool/smartgrades/core/school"
)

type schoolRepository struct {
	db *DB
}

var _ school.Repository = (*schoolRepository)(nil) // interface compliance check

func NewSchoolRepository(db *DB) school.Repository {
	return &schoolRepository{db: db}
}

// class fills the read-only fields of a class; callers hold a lock.
func (repo *schoolRepository) class(c *school.Class) school.Class {
	cls := *c
	if t, ok := repo.db.teachers[cls.TeacherID]; ok {
		cls.TeacherName = t.Name
		cls.TeacherEmail = t.Email
	}
	cls.StudentCount = 0
	for _, e := range repo.db.enrollments {
		if e.ClassID == cls.ID {
			cls.StudentCount++
		}
	}
	return cls
}

// Teachers

func (repo *schoolRepository) CreateTeacher(_ context.Context, t school.Teacher) (school.Teacher, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if t.Email.Valid {
		for _, other := range repo.db.teachers {
			if other.Email.Valid && other.Email.String == t.Email.String {
				return school.Teacher{}, school.ErrEmailExists
			}
		}
	}
	t.ID = repo.db.nextPK()
	repo.db.teachers[t.ID] = &t
	return t, nil
}

func (repo *schoolRepository) QueryTeachers(_ context.Context, ordering []core.DBOrdering) ([]school.Teacher, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	teachers := make([]school.Teacher, 0, len(repo.db.teachers))
	for _, t := range repo.db.teachers {
		teachers = append(teachers, *t)
	}
	sortTeachers(teachers, ordering)
	return teachers, nil
}

func (repo *schoolRepository) GetTeacher(_ context.Context, id int) (school.Teacher, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if t, ok := repo.db.teachers[id]; ok {
		return *t, nil
	}
	return school.Teacher{}, school.ErrTeacherNotFound
}

func (repo *schoolRepository) DeleteTeacher(_ context.Context, id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.teachers[id]; !ok {
		return school.ErrTeacherNotFound
	}
	repo.db.deleteTeacher(id)
	return nil
}

// Classes

func (repo *schoolRepository) CreateClass(_ context.Context, c school.Class) (school.Class, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.teachers[c.TeacherID]; !ok {
		return school.Class{}, school.ErrTeacherNotFound
	}
	c.ID = repo.db.nextPK()
	repo.db.classes[c.ID] = &c
	return repo.class(&c), nil
}

func (repo *schoolRepository) QueryTeacherClasses(_ context.Context, teacherID int) ([]school.Class, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	classes := make([]school.Class, 0)
	for _, c := range repo.db.classes {
		if c.TeacherID == teacherID {
			classes = append(classes, repo.class(c))
		}
	}
	sort.SliceStable(classes, func(i, j int) bool {
		if classes[i].ClassName != classes[j].ClassName {
			return classes[i].ClassName < classes[j].ClassName
		}
		return classes[i].ID < classes[j].ID
	})
	return classes, nil
}

func (repo *schoolRepository) GetClass(_ context.Context, id int) (school.Class, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if c, ok := repo.db.classes[id]; ok {
		return repo.class(c), nil
	}
	return school.Class{}, school.ErrClassNotFound
}

func (repo *schoolRepository) DeleteClass(_ context.Context, id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.classes[id]; !ok {
		return school.ErrClassNotFound
	}
	repo.db.deleteClass(id)
	return nil
}

// Students & enrollments

func (repo *schoolRepository) UpsertStudent(_ context.Context, s school.Student) (school.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, st := range repo.db.students {
		if st.Code == s.Code {
			st.FirstName = s.FirstName
			st.LastName = s.LastName
			st.Email = s.Email
			return *st, nil
		}
	}
	s.ID = repo.db.nextPK()
	repo.db.students[s.ID] = &s
	return s, nil
}

func (repo *schoolRepository) GetStudentByCode(_ context.Context, code string) (school.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, st := range repo.db.students {
		if st.Code == code {
			return *st, nil
		}
	}
	return school.Student{}, school.ErrStudentNotFound
}

func (repo *schoolRepository) Enroll(_ context.Context, classID, studentID int, at time.Time) (school.Enrollment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.classes[classID]; !ok {
		return school.Enrollment{}, school.ErrClassNotFound
	}
	if _, ok := repo.db.students[studentID]; !ok {
		return school.Enrollment{}, school.ErrStudentNotFound
	}
	for _, e := range repo.db.enrollments {
		if e.ClassID == classID && e.StudentID == studentID {
			return *e, nil
		}
	}
	enr := &school.Enrollment{
		ID:         repo.db.nextPK(),
		ClassID:    classID,
		StudentID:  studentID,
		EnrolledAt: at,
	}
	repo.db.enrollments[enr.ID] = enr
	return *enr, nil
}

func (repo *schoolRepository) GetEnrollment(_ context.Context, id int) (school.Enrollment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if e, ok := repo.db.enrollments[id]; ok {
		return *e, nil
	}
	return school.Enrollment{}, school.ErrEnrollmentNotFound
}

func (repo *schoolRepository) QueryClassStudents(_ context.Context, classID int) ([]school.EnrolledStudent, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	students := make([]school.EnrolledStudent, 0)
	for _, e := range repo.db.enrollments {
		if e.ClassID != classID {
			continue
		}
		if st, ok := repo.db.students[e.StudentID]; ok {
			students = append(students, school.EnrolledStudent{
				Student:      *st,
				EnrollmentID: e.ID,
				EnrolledAt:   e.EnrolledAt,
			})
		}
	}
	sortEnrolledStudents(students)
	return students, nil
}

func (repo *schoolRepository) DeleteEnrollment(_ context.Context, id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.enrollments[id]; !ok {
		return school.ErrEnrollmentNotFound
	}
	repo.db.deleteEnrollment(id)
	return nil
}

// Assessments

func (repo *schoolRepository) CreateAssessment(_ context.Context, a school.Assessment) (school.Assessment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.classes[a.ClassID]; !ok {
		return school.Assessment{}, school.ErrClassNotFound
	}
	a.ID = repo.db.nextPK()
	repo.db.assessments[a.ID] = &a
	return a, nil
}

func (repo *schoolRepository) QueryClassAssessments(_ context.Context, classID int) ([]school.Assessment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.db.classAssessments(classID), nil
}

func (repo *schoolRepository) GetAssessment(_ context.Context, id int) (school.Assessment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if a, ok := repo.db.assessments[id]; ok {
		return *a, nil
	}
	return school.Assessment{}, school.ErrAssessmentNotFound
}

func (repo *schoolRepository) UpdateAssessment(_ context.Context, a school.Assessment) (school.Assessment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.assessments[a.ID]
	if !ok {
		return school.Assessment{}, school.ErrAssessmentNotFound
	}
	// class and creation time are immutable
	orig.Name = a.Name
	orig.Weight = a.Weight
	orig.DueDate = a.DueDate
	orig.Description = a.Description
	return *orig, nil
}

func (repo *schoolRepository) DeleteAssessment(_ context.Context, id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.assessments[id]; !ok {
		return school.ErrAssessmentNotFound
	}
	repo.db.deleteAssessment(id)
	return nil
}
