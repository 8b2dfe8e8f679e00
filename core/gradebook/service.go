// Package gradebook runs the grade engine over the stored grades of a class:
// snapshots, scenarios, statistics, predictions and grade writes.
package gradebook

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/smartgrades/core"
	"github.com/trezcool/smartgrades/core/analysis"
	"github.com/trezcool/smartgrades/core/grading"
	"github.com/trezcool/smartgrades/core/prediction"
	"github.com/trezcool/smartgrades/core/school"
)

var (
	// errors
	ErrScoreRequired     = errors.New("score is required")
	ErrForeignAssessment = errors.New("assessment does not belong to the enrollment's class")
)

var nowFunc = func() time.Time { return time.Now().UTC() } // mockable

type (
	Repository interface {
		// UpsertGrade creates the (enrollment, assessment) grade or replaces its score.
		UpsertGrade(ctx context.Context, g GradeEntry) (GradeEntry, error)
		// QueryEnrollmentGrades returns every assessment of the enrollment's class in
		// chronological order, with the enrollment's score when graded.
		QueryEnrollmentGrades(ctx context.Context, enrollmentID int) ([]GradeRow, error)
		// QueryAssessmentScores returns the graded scores of an assessment, leaving out
		// `excludedEnrollmentID`.
		QueryAssessmentScores(ctx context.Context, assessmentID, excludedEnrollmentID int) ([]float64, error)
		// QueryClassScores returns the chronological graded scores of every enrollment of a class.
		QueryClassScores(ctx context.Context, classID int) (map[int][]float64, error)

		AppendHistory(ctx context.Context, rec HistoryRecord) (HistoryRecord, error)
		QueryHistory(ctx context.Context, enrollmentID int) ([]HistoryRecord, error)
	}

	Service struct {
		school  school.Repository
		repo    Repository
		logger  core.Logger
		metrics core.Metrics
	}
)

func NewService(schoolRepo school.Repository, repo Repository, logger core.Logger, metrics core.Metrics) *Service {
	if logger == nil {
		logger = core.NopLogger
	}
	if metrics == nil {
		metrics = core.NopMetrics
	}
	return &Service{
		school:  schoolRepo,
		repo:    repo,
		logger:  logger,
		metrics: metrics,
	}
}

func (svc *Service) enrollmentGrades(ctx context.Context, enrollmentID int) (school.Enrollment, []GradeRow, error) {
	enr, err := svc.school.GetEnrollment(ctx, enrollmentID)
	if err != nil {
		return school.Enrollment{}, nil, err
	}
	rows, err := svc.repo.QueryEnrollmentGrades(ctx, enr.ID)
	if err != nil {
		return school.Enrollment{}, nil, errors.Wrap(err, "querying enrollment grades")
	}
	return enr, rows, nil
}

// ComputeSnapshot aggregates the current grades of an enrollment.
func (svc *Service) ComputeSnapshot(ctx context.Context, enrollmentID int) (grading.Snapshot, error) {
	_, rows, err := svc.enrollmentGrades(ctx, enrollmentID)
	if err != nil {
		return grading.Snapshot{}, err
	}
	return grading.Aggregate(weightedScores(rows)), nil
}

// EnrollmentGrades returns the grade sheet of an enrollment.
func (svc *Service) EnrollmentGrades(ctx context.Context, enrollmentID int) (GradeReport, error) {
	enr, rows, err := svc.enrollmentGrades(ctx, enrollmentID)
	if err != nil {
		return GradeReport{}, err
	}
	cls, err := svc.school.GetClass(ctx, enr.ClassID)
	if err != nil {
		return GradeReport{}, err
	}
	snap := grading.Aggregate(weightedScores(rows))
	return GradeReport{
		Grades:       rows,
		Calculations: snap,
		LetterGrade:  snap.Letter(),
		GradeLabel:   cls.GradingScale.Label(snap.Predicted),
		ClassInfo:    newClassInfo(cls),
	}, nil
}

// ProjectScenarios projects the final grade of an enrollment. A nil target uses
// grading.DefaultTargetGrade.
func (svc *Service) ProjectScenarios(ctx context.Context, enrollmentID int, target *float64) (Projection, error) {
	snap, err := svc.ComputeSnapshot(ctx, enrollmentID)
	if err != nil {
		return Projection{}, err
	}
	tgt := grading.DefaultTargetGrade
	if target != nil {
		tgt = *target
	}
	return Projection{
		Current: CurrentGrade{
			Predicted:       snap.Predicted,
			LetterGrade:     snap.Letter(),
			WeightedScore:   snap.WeightedScore,
			CompletedWeight: snap.CompletedWeight,
		},
		Scenarios:       grading.Project(snap, tgt),
		RemainingWeight: snap.RemainingWeight,
	}, nil
}

// ClassRoster returns the enrolled students of a class with their current grade.
func (svc *Service) ClassRoster(ctx context.Context, classID int) ([]RosterEntry, error) {
	cls, err := svc.school.GetClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	students, err := svc.school.QueryClassStudents(ctx, cls.ID)
	if err != nil {
		return nil, errors.Wrap(err, "querying class students")
	}
	roster := make([]RosterEntry, 0, len(students))
	for _, st := range students {
		rows, err := svc.repo.QueryEnrollmentGrades(ctx, st.EnrollmentID)
		if err != nil {
			return nil, errors.Wrap(err, "querying enrollment grades")
		}
		snap := grading.Aggregate(weightedScores(rows))
		roster = append(roster, RosterEntry{
			EnrolledStudent: st,
			Snapshot:        snap,
			LetterGrade:     snap.Letter(),
			GradeLabel:      cls.GradingScale.Label(snap.Predicted),
		})
	}
	return roster, nil
}

// ClassStatistics summarizes the predicted grades of every student enrolled in a class.
func (svc *Service) ClassStatistics(ctx context.Context, classID int) (grading.Stats, error) {
	roster, err := svc.ClassRoster(ctx, classID)
	if err != nil {
		return grading.Stats{}, err
	}
	grades := make([]float64, 0, len(roster))
	for _, entry := range roster {
		grades = append(grades, entry.Predicted)
	}
	return grading.ClassStatistics(grades), nil
}

// ClassAnalytics combines the statistics, the trends and the per-student grades of a class.
func (svc *Service) ClassAnalytics(ctx context.Context, classID int) (Analytics, error) {
	cls, err := svc.school.GetClass(ctx, classID)
	if err != nil {
		return Analytics{}, err
	}
	students, err := svc.school.QueryClassStudents(ctx, cls.ID)
	if err != nil {
		return Analytics{}, errors.Wrap(err, "querying class students")
	}
	classScores, err := svc.repo.QueryClassScores(ctx, cls.ID)
	if err != nil {
		return Analytics{}, errors.Wrap(err, "querying class scores")
	}

	grades := make([]float64, 0, len(students))
	details := make([]StudentAnalytics, 0, len(students))
	for _, st := range students {
		rows, err := svc.repo.QueryEnrollmentGrades(ctx, st.EnrollmentID)
		if err != nil {
			return Analytics{}, errors.Wrap(err, "querying enrollment grades")
		}
		snap := grading.Aggregate(weightedScores(rows))
		grades = append(grades, snap.Predicted)
		details = append(details, StudentAnalytics{
			EnrollmentID:    st.EnrollmentID,
			StudentID:       st.Code,
			Name:            st.FullName(),
			PredictedGrade:  snap.Predicted,
			LetterGrade:     snap.Letter(),
			GradeLabel:      cls.GradingScale.Label(snap.Predicted),
			WeightedScore:   snap.WeightedScore,
			CompletedWeight: snap.CompletedWeight,
			Grades:          rows,
		})
	}

	return Analytics{
		Statistics: grading.ClassStatistics(grades),
		Patterns:   analysis.AnalyzeClass(scoreLists(classScores)),
		Students:   details,
		ClassInfo:  cls,
	}, nil
}

func scoreLists(byEnrollment map[int][]float64) [][]float64 {
	lists := make([][]float64, 0, len(byEnrollment))
	for _, scores := range byEnrollment {
		lists = append(lists, scores)
	}
	return lists
}

// classAssessment loads an enrollment and one assessment of its class.
func (svc *Service) classAssessment(ctx context.Context, enrollmentID, assessmentID int) (school.Enrollment, school.Assessment, error) {
	enr, err := svc.school.GetEnrollment(ctx, enrollmentID)
	if err != nil {
		return school.Enrollment{}, school.Assessment{}, err
	}
	a, err := svc.school.GetAssessment(ctx, assessmentID)
	if err != nil {
		return school.Enrollment{}, school.Assessment{}, err
	}
	if a.ClassID != enr.ClassID {
		return school.Enrollment{}, school.Assessment{}, core.NewValidationError(
			ErrForeignAssessment,
			core.FieldError{Field: "assessment_id", Error: ErrForeignAssessment.Error()},
		)
	}
	return enr, a, nil
}

// PredictMissingScore estimates the score of an enrollment on one assessment.
// Engine failures never surface: they are replaced by a fallback result.
func (svc *Service) PredictMissingScore(ctx context.Context, enrollmentID, assessmentID int, mode prediction.Mode) (prediction.Result, error) {
	if mode == "" {
		mode = prediction.ModeEnsemble
	}
	if !mode.Valid() {
		return prediction.Result{}, core.NewValidationError(
			errors.Wrapf(prediction.ErrUnknownMode, "%q", mode),
			core.FieldError{Field: "mode", Error: prediction.ErrUnknownMode.Error()},
		)
	}
	enr, a, err := svc.classAssessment(ctx, enrollmentID, assessmentID)
	if err != nil {
		return prediction.Result{}, err
	}

	in, err := svc.predictionInput(ctx, enr, a)
	if err == nil {
		var res prediction.Result
		if res, err = prediction.Predict(in, mode); err == nil {
			svc.metrics.ObservePrediction(string(mode), false)
			return res, nil
		}
	}

	svc.logger.Warn("prediction failed, falling back", err, map[string]interface{}{
		"enrollment_id": enr.ID,
		"assessment_id": a.ID,
		"mode":          mode,
	})
	svc.metrics.ObservePrediction(string(mode), true)
	snap, snapErr := svc.ComputeSnapshot(ctx, enr.ID)
	return prediction.Fallback(mode, snap.Predicted, snapErr == nil), nil
}

func (svc *Service) predictionInput(ctx context.Context, enr school.Enrollment, a school.Assessment) (prediction.Input, error) {
	rows, err := svc.repo.QueryEnrollmentGrades(ctx, enr.ID)
	if err != nil {
		return prediction.Input{}, errors.Wrap(err, "querying enrollment grades")
	}
	peers, err := svc.repo.QueryAssessmentScores(ctx, a.ID, enr.ID)
	if err != nil {
		return prediction.Input{}, errors.Wrap(err, "querying assessment scores")
	}
	classScores, err := svc.repo.QueryClassScores(ctx, enr.ClassID)
	if err != nil {
		return prediction.Input{}, errors.Wrap(err, "querying class scores")
	}
	delete(classScores, enr.ID)

	return prediction.Input{
		History: gradedItems(rows, a.ID),
		Target: analysis.AssessmentInfo{
			ID:          a.ID,
			Name:        a.Name,
			Description: a.Description.String,
			Weight:      a.Weight,
		},
		PeerScores:  peers,
		ClassScores: scoreLists(classScores),
	}, nil
}

// RecordGrade stores the score of an enrollment on an assessment and appends the
// resulting grade state to the enrollment's history.
// `rawScore` goes through grading.ParseScore: unusable values are stored as 0.
func (svc *Service) RecordGrade(ctx context.Context, enrollmentID, assessmentID int, rawScore interface{}) (GradeEntry, error) {
	if rawScore == nil {
		return GradeEntry{}, core.NewValidationError(
			ErrScoreRequired,
			core.FieldError{Field: "score", Error: ErrScoreRequired.Error()},
		)
	}
	enr, a, err := svc.classAssessment(ctx, enrollmentID, assessmentID)
	if err != nil {
		return GradeEntry{}, err
	}

	entry, err := svc.repo.UpsertGrade(ctx, GradeEntry{
		EnrollmentID: enr.ID,
		AssessmentID: a.ID,
		Score:        null.Float64From(grading.ParseScoreOrZero(rawScore)),
		GradedAt:     nowFunc(),
	})
	if err != nil {
		return GradeEntry{}, errors.Wrap(err, "upserting grade")
	}
	svc.metrics.ObserveGradeWrite()

	snap, err := svc.ComputeSnapshot(ctx, enr.ID)
	if err != nil {
		return GradeEntry{}, err
	}
	if _, err := svc.repo.AppendHistory(ctx, HistoryRecord{
		EnrollmentID:   enr.ID,
		PredictedGrade: snap.Predicted,
		WeightedScore:  snap.WeightedScore,
		Timestamp:      entry.GradedAt,
	}); err != nil {
		return GradeEntry{}, errors.Wrap(err, "appending grade history")
	}
	return entry, nil
}

// GradeHistory returns the grade states of an enrollment, oldest first.
func (svc *Service) GradeHistory(ctx context.Context, enrollmentID int) ([]HistoryRecord, error) {
	if _, err := svc.school.GetEnrollment(ctx, enrollmentID); err != nil {
		return nil, err
	}
	return svc.repo.QueryHistory(ctx, enrollmentID)
}
