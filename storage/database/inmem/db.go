package inmemdb

import (
	"sync"

	"github.com/trezcool/smartgrades/core/gradebook"
	"github.com/trezcool/smartgrades/core/school"
)

// DB keeps every table in memory behind a single lock, so cascades are atomic.
type DB struct {
	mutex sync.RWMutex
	pk    int

	teachers    map[int]*school.Teacher
	classes     map[int]*school.Class
	students    map[int]*school.Student
	enrollments map[int]*school.Enrollment
	assessments map[int]*school.Assessment
	grades      map[int]*gradebook.GradeEntry
	history     map[int]*gradebook.HistoryRecord
}

func Open() (*DB, error) {
	db := new(DB)
	db.reset()
	return db, nil
}

func (db *DB) reset() {
	db.pk = 0
	db.teachers = make(map[int]*school.Teacher)
	db.classes = make(map[int]*school.Class)
	db.students = make(map[int]*school.Student)
	db.enrollments = make(map[int]*school.Enrollment)
	db.assessments = make(map[int]*school.Assessment)
	db.grades = make(map[int]*gradebook.GradeEntry)
	db.history = make(map[int]*gradebook.HistoryRecord)
}

// Flush empties every table.
func (db *DB) Flush() {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.reset()
}

func (db *DB) nextPK() int {
	db.pk++
	return db.pk
}

// classAssessments returns the assessments of a class chronologically; callers hold a lock.
func (db *DB) classAssessments(classID int) []school.Assessment {
	assessments := make([]school.Assessment, 0)
	for _, a := range db.assessments {
		if a.ClassID == classID {
			assessments = append(assessments, *a)
		}
	}
	sortAssessments(assessments)
	return assessments
}

// cascades; callers hold the write lock

func (db *DB) deleteEnrollment(id int) {
	for gid, g := range db.grades {
		if g.EnrollmentID == id {
			delete(db.grades, gid)
		}
	}
	for hid, h := range db.history {
		if h.EnrollmentID == id {
			delete(db.history, hid)
		}
	}
	delete(db.enrollments, id)
}

func (db *DB) deleteAssessment(id int) {
	for gid, g := range db.grades {
		if g.AssessmentID == id {
			delete(db.grades, gid)
		}
	}
	delete(db.assessments, id)
}

func (db *DB) deleteClass(id int) {
	for eid, e := range db.enrollments {
		if e.ClassID == id {
			db.deleteEnrollment(eid)
		}
	}
	for aid, a := range db.assessments {
		if a.ClassID == id {
			db.deleteAssessment(aid)
		}
	}
	delete(db.classes, id)
}

func (db *DB) deleteTeacher(id int) {
	for cid, c := range db.classes {
		if c.TeacherID == id {
			db.deleteClass(cid)
		}
	}
	delete(db.teachers, id)
}
