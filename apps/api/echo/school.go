package echoapi

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/smartgrades/core/gradebook"
	"github.com/trezcool/smartgrades/core/school"
)

type schoolApi struct {
	svc      *school.Service
	gradeSvc *gradebook.Service
	validate *validator.Validate
}

func registerSchoolAPI(g *echo.Group, svc *school.Service, gradeSvc *gradebook.Service, validate *validator.Validate) {
	api := schoolApi{
		svc:      svc,
		gradeSvc: gradeSvc,
		validate: validate,
	}

	tg := g.Group("/teachers")
	tg.GET("", api.queryTeachers)
	tg.POST("", api.createTeacher)

	tdg := tg.Group("/:id", objectMiddleware("id", func(ctx context.Context, id int) (interface{}, error) {
		return svc.GetTeacher(ctx, id)
	}))
	tdg.GET("", api.retrieveTeacher)
	tdg.DELETE("", api.destroyTeacher)
	tdg.GET("/classes", api.queryTeacherClasses)
	tdg.POST("/classes", api.createClass)

	cdg := g.Group("/classes/:id", objectMiddleware("id", func(ctx context.Context, id int) (interface{}, error) {
		return svc.GetClass(ctx, id)
	}))
	cdg.GET("", api.retrieveClass)
	cdg.DELETE("", api.destroyClass)
	cdg.GET("/students", api.queryClassStudents)
	cdg.POST("/students/:code/enroll", api.enroll)
	cdg.GET("/assessments", api.queryClassAssessments)
	cdg.POST("/assessments", api.createAssessment)
	cdg.POST("/templates/:name", api.applyTemplate)

	g.DELETE("/enrollments/:id", api.destroyEnrollment)
	g.POST("/students", api.createStudent)

	adg := g.Group("/assessments/:id", objectMiddleware("id", func(ctx context.Context, id int) (interface{}, error) {
		return svc.GetAssessment(ctx, id)
	}))
	adg.GET("", api.retrieveAssessment)
	adg.PUT("", api.updateAssessment)
	adg.DELETE("", api.destroyAssessment)
}

func ctxTeacher(ctx echo.Context) (school.Teacher, error) {
	if t, ok := ctx.Get(contextObjectKey).(school.Teacher); ok {
		return t, nil
	}
	return school.Teacher{}, errors.Wrap(errObjNotFoundCtx, "retrieving teacher from context")
}

func ctxClass(ctx echo.Context) (school.Class, error) {
	if cls, ok := ctx.Get(contextObjectKey).(school.Class); ok {
		return cls, nil
	}
	return school.Class{}, errors.Wrap(errObjNotFoundCtx, "retrieving class from context")
}

func ctxAssessment(ctx echo.Context) (school.Assessment, error) {
	if a, ok := ctx.Get(contextObjectKey).(school.Assessment); ok {
		return a, nil
	}
	return school.Assessment{}, errors.Wrap(errObjNotFoundCtx, "retrieving assessment from context")
}

// Teachers

func (api *schoolApi) queryTeachers(ctx echo.Context) error {
	ordering := new(Ordering)
	ordering.Bind(ctx)

	teachers, err := api.svc.QueryTeachers(ctx.Request().Context(), ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying teachers")
	}
	return ctx.JSON(http.StatusOK, teachers)
}

func (api *schoolApi) createTeacher(ctx echo.Context) error {
	var data school.NewTeacher
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTeacher")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	t, err := api.svc.CreateTeacher(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating teacher")
	}
	return ctx.JSON(http.StatusCreated, t)
}

func (api *schoolApi) retrieveTeacher(ctx echo.Context) error {
	t, err := ctxTeacher(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *schoolApi) destroyTeacher(ctx echo.Context) error {
	t, err := ctxTeacher(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.DeleteTeacher(ctx.Request().Context(), t.ID); err != nil {
		return errors.Wrap(err, "deleting teacher")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Classes

func (api *schoolApi) queryTeacherClasses(ctx echo.Context) error {
	t, err := ctxTeacher(ctx)
	if err != nil {
		return err
	}
	classes, err := api.svc.QueryTeacherClasses(ctx.Request().Context(), t.ID)
	if err != nil {
		return errors.Wrap(err, "querying teacher classes")
	}
	return ctx.JSON(http.StatusOK, classes)
}

func (api *schoolApi) createClass(ctx echo.Context) error {
	t, err := ctxTeacher(ctx)
	if err != nil {
		return err
	}
	var data school.NewClass
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClass")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	cls, err := api.svc.CreateClass(ctx.Request().Context(), t.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating class")
	}
	return ctx.JSON(http.StatusCreated, cls)
}

func (api *schoolApi) retrieveClass(ctx echo.Context) error {
	cls, err := ctxClass(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, cls)
}

func (api *schoolApi) destroyClass(ctx echo.Context) error {
	cls, err := ctxClass(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.DeleteClass(ctx.Request().Context(), cls.ID); err != nil {
		return errors.Wrap(err, "deleting class")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Students & enrollments

func (api *schoolApi) queryClassStudents(ctx echo.Context) error {
	cls, err := ctxClass(ctx)
	if err != nil {
		return err
	}
	roster, err := api.gradeSvc.ClassRoster(ctx.Request().Context(), cls.ID)
	if err != nil {
		return errors.Wrap(err, "querying class roster")
	}
	return ctx.JSON(http.StatusOK, roster)
}

func (api *schoolApi) enroll(ctx echo.Context) error {
	cls, err := ctxClass(ctx)
	if err != nil {
		return err
	}
	enr, err := api.svc.Enroll(ctx.Request().Context(), cls.ID, ctx.Param("code"))
	if err != nil {
		return errors.Wrap(err, "enrolling student")
	}
	return ctx.JSON(http.StatusCreated, enr)
}

type studentResponse struct {
	Student    school.Student     `json:"student"`
	Enrollment *school.Enrollment `json:"enrollment,omitempty"`
}

func (api *schoolApi) createStudent(ctx echo.Context) error {
	var data school.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	st, enr, err := api.svc.AddStudent(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "adding student")
	}
	return ctx.JSON(http.StatusCreated, studentResponse{Student: st, Enrollment: enr})
}

func (api *schoolApi) destroyEnrollment(ctx echo.Context) error {
	id, err := idParam(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.svc.DeleteEnrollment(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting enrollment")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Assessments

func (api *schoolApi) queryClassAssessments(ctx echo.Context) error {
	cls, err := ctxClass(ctx)
	if err != nil {
		return err
	}
	assessments, err := api.svc.QueryClassAssessments(ctx.Request().Context(), cls.ID)
	if err != nil {
		return errors.Wrap(err, "querying class assessments")
	}
	return ctx.JSON(http.StatusOK, assessments)
}

func (api *schoolApi) createAssessment(ctx echo.Context) error {
	cls, err := ctxClass(ctx)
	if err != nil {
		return err
	}
	var data school.NewAssessment
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssessment")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	a, err := api.svc.CreateAssessment(ctx.Request().Context(), cls.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating assessment")
	}
	return ctx.JSON(http.StatusCreated, a)
}

func (api *schoolApi) applyTemplate(ctx echo.Context) error {
	cls, err := ctxClass(ctx)
	if err != nil {
		return err
	}
	created, err := api.svc.ApplyTemplate(ctx.Request().Context(), cls.ID, ctx.Param("name"))
	if err != nil {
		return errors.Wrap(err, "applying template")
	}
	return ctx.JSON(http.StatusCreated, created)
}

func (api *schoolApi) retrieveAssessment(ctx echo.Context) error {
	a, err := ctxAssessment(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *schoolApi) updateAssessment(ctx echo.Context) error {
	a, err := ctxAssessment(ctx)
	if err != nil {
		return err
	}
	var data school.AssessmentPatch
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AssessmentPatch")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	updated, err := api.svc.UpdateAssessment(ctx.Request().Context(), a.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating assessment")
	}
	return ctx.JSON(http.StatusOK, updated)
}

func (api *schoolApi) destroyAssessment(ctx echo.Context) error {
	a, err := ctxAssessment(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.DeleteAssessment(ctx.Request().Context(), a.ID); err != nil {
		return errors.Wrap(err, "deleting assessment")
	}
	return ctx.NoContent(http.StatusNoContent)
}
