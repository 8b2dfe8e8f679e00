package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/smartgrades/core"
	"github.com/trezcool/smartgrades/core/gradebook"
	"github.com/trezcool/smartgrades/core/prediction"
	"github.com/trezcool/smartgrades/core/school"
)

type gradebookApi struct {
	svc       *gradebook.Service
	schoolSvc *school.Service
	validate  *validator.Validate
	conf      core.GradingConfig
}

func registerGradebookAPI(
	g *echo.Group,
	svc *gradebook.Service,
	schoolSvc *school.Service,
	validate *validator.Validate,
	conf core.GradingConfig,
) {
	api := gradebookApi{
		svc:       svc,
		schoolSvc: schoolSvc,
		validate:  validate,
		conf:      conf,
	}

	sg := g.Group("/students/:enrollment")
	sg.GET("/grades", api.grades)
	sg.GET("/history", api.history)
	sg.POST("/assessments/:assessment/grade", api.recordGrade)
	sg.POST("/predict", api.predict)
	sg.POST("/predict-assessment/:assessment", api.predictAssessment)

	g.GET("/classes/:id/statistics", api.statistics)
	g.GET("/classes/:id/analytics", api.analytics)
}

func (api *gradebookApi) grades(ctx echo.Context) error {
	enrollmentID, err := idParam(ctx, "enrollment")
	if err != nil {
		return err
	}
	report, err := api.svc.EnrollmentGrades(ctx.Request().Context(), enrollmentID)
	if err != nil {
		return errors.Wrap(err, "getting enrollment grades")
	}
	return ctx.JSON(http.StatusOK, report)
}

func (api *gradebookApi) history(ctx echo.Context) error {
	enrollmentID, err := idParam(ctx, "enrollment")
	if err != nil {
		return err
	}
	records, err := api.svc.GradeHistory(ctx.Request().Context(), enrollmentID)
	if err != nil {
		return errors.Wrap(err, "getting grade history")
	}
	return ctx.JSON(http.StatusOK, records)
}

// GradeRequest carries a raw score: a number, a numeric string or null.
type GradeRequest struct {
	Score interface{} `json:"score"`
}

func (api *gradebookApi) recordGrade(ctx echo.Context) error {
	enrollmentID, err := idParam(ctx, "enrollment")
	if err != nil {
		return err
	}
	assessmentID, err := idParam(ctx, "assessment")
	if err != nil {
		return err
	}
	var data GradeRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GradeRequest")
	}

	entry, err := api.svc.RecordGrade(ctx.Request().Context(), enrollmentID, assessmentID, data.Score)
	if err != nil {
		return errors.Wrap(err, "recording grade")
	}
	return ctx.JSON(http.StatusOK, entry)
}

type ProjectionRequest struct {
	TargetGrade *float64 `json:"target_grade" validate:"omitempty,percent"`
}

func (api *gradebookApi) predict(ctx echo.Context) error {
	enrollmentID, err := idParam(ctx, "enrollment")
	if err != nil {
		return err
	}
	var data ProjectionRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ProjectionRequest")
	}
	if err = api.validate.Struct(data); err != nil {
		return err
	}
	if data.TargetGrade == nil && api.conf.DefaultTargetGrade > 0 {
		target := api.conf.DefaultTargetGrade
		data.TargetGrade = &target
	}

	projection, err := api.svc.ProjectScenarios(ctx.Request().Context(), enrollmentID, data.TargetGrade)
	if err != nil {
		return errors.Wrap(err, "projecting scenarios")
	}
	return ctx.JSON(http.StatusOK, projection)
}

type PredictionRequest struct {
	Mode string `json:"mode"`
}

type (
	predictionAssessment struct {
		ID          int         `json:"id"`
		Name        string      `json:"name"`
		Weight      float64     `json:"weight"`
		Description null.String `json:"description"`
		ClassName   string      `json:"class_name"`
		Subject     string      `json:"subject"`
	}

	predictionRange struct {
		Minimum float64 `json:"minimum"`
		Maximum float64 `json:"maximum"`
	}

	predictionSummary struct {
		PredictedScore        float64         `json:"predicted_score"`
		ConfidenceLevel       float64         `json:"confidence_level"`
		PredictionRange       predictionRange `json:"prediction_range"`
		ConfidenceDescription string          `json:"confidence_description"`
		Mode                  prediction.Mode `json:"mode"`
		Fallback              bool            `json:"fallback"`
	}

	predictionAnalysis struct {
		ContributingFactors []string           `json:"contributing_factors"`
		AlgorithmBreakdown  map[string]float64 `json:"algorithm_breakdown"`
	}

	PredictionResponse struct {
		Assessment     predictionAssessment `json:"assessment"`
		Prediction     predictionSummary    `json:"ai_prediction"`
		Analysis       predictionAnalysis   `json:"analysis"`
		Recommendation string               `json:"recommendation"`
	}
)

func (api *gradebookApi) predictAssessment(ctx echo.Context) error {
	enrollmentID, err := idParam(ctx, "enrollment")
	if err != nil {
		return err
	}
	assessmentID, err := idParam(ctx, "assessment")
	if err != nil {
		return err
	}
	var data PredictionRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PredictionRequest")
	}
	mode := prediction.Mode(core.CleanString(data.Mode, true /* lower */))
	if mode == "" {
		mode = prediction.Mode(api.conf.DefaultPredictionMode)
	}

	rctx := ctx.Request().Context()
	res, err := api.svc.PredictMissingScore(rctx, enrollmentID, assessmentID, mode)
	if err != nil {
		return errors.Wrap(err, "predicting missing score")
	}
	a, err := api.schoolSvc.GetAssessment(rctx, assessmentID)
	if err != nil {
		return errors.Wrap(err, "getting assessment")
	}
	cls, err := api.schoolSvc.GetClass(rctx, a.ClassID)
	if err != nil {
		return errors.Wrap(err, "getting class")
	}

	return ctx.JSON(http.StatusOK, PredictionResponse{
		Assessment: predictionAssessment{
			ID:          a.ID,
			Name:        a.Name,
			Weight:      a.Weight,
			Description: a.Description,
			ClassName:   cls.ClassName,
			Subject:     cls.Subject,
		},
		Prediction: predictionSummary{
			PredictedScore:        res.PredictedScore,
			ConfidenceLevel:       res.Confidence,
			PredictionRange:       predictionRange{Minimum: res.Range.Min, Maximum: res.Range.Max},
			ConfidenceDescription: gradebook.ConfidenceDescription(res.Confidence),
			Mode:                  res.Mode,
			Fallback:              res.Fallback,
		},
		Analysis: predictionAnalysis{
			ContributingFactors: res.ContributingFactors,
			AlgorithmBreakdown:  res.AlgorithmBreakdown,
		},
		Recommendation: gradebook.Recommendation(res),
	})
}

func (api *gradebookApi) statistics(ctx echo.Context) error {
	classID, err := idParam(ctx, "id")
	if err != nil {
		return err
	}
	stats, err := api.svc.ClassStatistics(ctx.Request().Context(), classID)
	if err != nil {
		return errors.Wrap(err, "computing class statistics")
	}
	return ctx.JSON(http.StatusOK, stats)
}

func (api *gradebookApi) analytics(ctx echo.Context) error {
	classID, err := idParam(ctx, "id")
	if err != nil {
		return err
	}
	analytics, err := api.svc.ClassAnalytics(ctx.Request().Context(), classID)
	if err != nil {
		return errors.Wrap(err, "computing class analytics")
	}
	return ctx.JSON(http.StatusOK, analytics)
}
