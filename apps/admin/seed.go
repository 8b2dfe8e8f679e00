package main

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/smartgrades/core"
	"github.com/trezcool/smartgrades/core/school"
)

const demoTeacherEmail = "demo.teacher@smartgrades.local"

var (
	demoFirstNames = []string{"Amani", "Bola", "Chidi", "Dina", "Emeka", "Fatou", "Grace", "Hugo", "Imani", "Jonas", "Kofi", "Lina"}
	demoLastNames  = []string{"Banda", "Diallo", "Eze", "Kabila", "Mensah", "Mwangi", "Ndlovu", "Okafor", "Sow", "Tshibanda"}
)

// demoTeacher returns the demo teacher, creating it on first use.
func (cli *commandLine) demoTeacher(ctx context.Context) (school.Teacher, error) {
	teacher, err := cli.schoolSvc.CreateTeacher(ctx, school.NewTeacher{Name: "Demo Teacher", Email: demoTeacherEmail})
	if err == nil || !core.IsValidationError(err) {
		return teacher, err
	}
	teachers, err := cli.schoolSvc.QueryTeachers(ctx, nil)
	if err != nil {
		return school.Teacher{}, err
	}
	for _, t := range teachers {
		if t.Email.String == demoTeacherEmail {
			return t, nil
		}
	}
	return school.Teacher{}, errors.New("demo teacher not found")
}

// seed creates a class per assessment template, enrolls `students` demo students in each of
// them and grades every assessment but the last one.
func (cli *commandLine) seed(students int, seed int64) error {
	ctx := context.Background()
	rnd := rand.New(rand.NewSource(seed))

	teacher, err := cli.demoTeacher(ctx)
	if err != nil {
		return errors.Wrap(err, "creating demo teacher")
	}

	for _, tmpl := range school.Templates() {
		cls, err := cli.schoolSvc.CreateClass(ctx, teacher.ID, school.NewClass{
			ClassName: "Demo " + tmpl.Name,
			Subject:   tmpl.Name,
		})
		if err != nil {
			return err
		}
		assessments, err := cli.schoolSvc.ApplyTemplate(ctx, cls.ID, tmpl.Name)
		if err != nil {
			return err
		}

		grades := 0
		for i := 0; i < students; i++ {
			first := demoFirstNames[i%len(demoFirstNames)]
			last := demoLastNames[(i/len(demoFirstNames)+i)%len(demoLastNames)]
			_, enr, err := cli.schoolSvc.AddStudent(ctx, school.NewStudent{
				Code:      fmt.Sprintf("DEMO%03d", i+1),
				FirstName: first,
				LastName:  last,
				Email:     strings.ToLower(fmt.Sprintf("%s.%s%d@smartgrades.local", first, last, i+1)),
				ClassID:   cls.ID,
			})
			if err != nil {
				return err
			}

			// each student has a level around which their scores vary
			level := 55 + rnd.Float64()*40
			for j, a := range assessments {
				if j == len(assessments)-1 {
					break
				}
				score := core.Round(level+rnd.NormFloat64()*8, 1)
				if _, err := cli.gradebookSvc.RecordGrade(ctx, enr.ID, a.ID, score); err != nil {
					return err
				}
				grades++
			}
		}
		fmt.Fprintf(cli.out, "class %q (id %d): %d students, %d assessments, %d grades\n",
			cls.ClassName, cls.ID, students, len(assessments), grades)
	}
	return nil
}
