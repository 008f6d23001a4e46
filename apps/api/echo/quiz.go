package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/kipawa/jaribio/core"
	"github.com/kipawa/jaribio/core/quiz"
	"github.com/kipawa/jaribio/core/user"
)

type quizApi struct {
	svc        quiz.ServiceInterface
	userSvc    user.ServiceInterface
	cache      core.Cache
	validate   *validator.Validate
	translator ut.Translator
}

func registerQuizAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *Deps) {
	api := quizApi{
		svc:        deps.QuizSvc,
		userSvc:    deps.UserSvc,
		cache:      deps.Cache,
		validate:   deps.Validate,
		translator: deps.Translator,
	}
	cached := cacheMiddleware(api.cache)

	// questions carry their correct answers; admin only
	qg := g.Group("/questions", jwt, adminMiddleware())
	qg.GET("", api.queryQuestions, cached)
	qg.POST("", api.createQuestion)
	qg.POST("/batch", api.createQuestionBatch)
	qg.GET("/:id", api.retrieveQuestion, cached)
	qg.PUT("/:id", api.updateQuestion)
	qg.DELETE("/:id", api.destroyQuestion)

	zg := g.Group("/quizzes", jwt)
	zg.GET("", api.queryQuizzes, cached)
	zg.POST("", api.createQuiz, adminMiddleware())
	zg.GET("/:id", api.retrieveQuiz, cached)
	zg.PUT("/:id", api.updateQuiz, adminMiddleware())
	zg.DELETE("/:id", api.destroyQuiz, adminMiddleware())
	zg.POST("/:id/submit", api.submit)

	rg := g.Group("/quiz-records", jwt)
	rg.GET("", api.queryRecords)
}

// Questions

func (api *quizApi) queryQuestions(ctx echo.Context) error {
	qsts, err := api.svc.QueryQuestionsByChapter(ctx.Request().Context(), ctx.QueryParam("chapter_id"))
	if err != nil {
		return errors.Wrap(err, "querying questions")
	}
	if qsts == nil {
		qsts = []quiz.Question{}
	}
	return ctx.JSON(http.StatusOK, qsts)
}

func (api *quizApi) createQuestion(ctx echo.Context) error {
	var data quiz.NewQuestion
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewQuestion")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	qst, err := api.svc.CreateQuestion(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating question")
	}

	// listings are cached per request URI; drop the chapter-scoped variant too
	api.cache.Delete("/v1/questions")
	api.cache.Delete("/v1/questions?chapter_id=" + qst.ChapterID)
	return ctx.JSON(http.StatusCreated, qst)
}

func (api *quizApi) createQuestionBatch(ctx echo.Context) error {
	var data quiz.NewQuestionBatch
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewQuestionBatch")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	qsts, err := api.svc.CreateQuestionBatch(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating questions")
	}

	api.cache.Delete("/v1/questions")
	api.cache.Delete("/v1/questions?chapter_id=" + data.ChapterID)
	return ctx.JSON(http.StatusCreated, qsts)
}

func (api *quizApi) retrieveQuestion(ctx echo.Context) error {
	qst, err := api.svc.GetQuestion(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return mapNotFound(err, quiz.ErrQuestionNotFound)
	}
	return ctx.JSON(http.StatusOK, qst)
}

func (api *quizApi) updateQuestion(ctx echo.Context) error {
	var data quiz.UpdateQuestion
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateQuestion")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	qst, err := api.svc.UpdateQuestion(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return mapNotFound(err, quiz.ErrQuestionNotFound)
	}

	// question edits change grading for future submissions
	api.cache.Flush()
	return ctx.JSON(http.StatusOK, qst)
}

func (api *quizApi) destroyQuestion(ctx echo.Context) error {
	if err := api.svc.DeleteQuestion(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return mapNotFound(err, quiz.ErrQuestionNotFound)
	}

	api.cache.Flush()
	return ctx.NoContent(http.StatusNoContent)
}

// Quizzes

func (api *quizApi) queryQuizzes(ctx echo.Context) error {
	quizzes, err := api.svc.QueryQuizzes(ctx.Request().Context(), ctx.QueryParam("chapter_id"))
	if err != nil {
		return errors.Wrap(err, "querying quizzes")
	}
	if quizzes == nil {
		quizzes = []quiz.Quiz{}
	}
	return ctx.JSON(http.StatusOK, quizzes)
}

func (api *quizApi) createQuiz(ctx echo.Context) error {
	var data quiz.NewQuiz
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewQuiz")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	qz, err := api.svc.CreateQuiz(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating quiz")
	}

	api.cache.Delete("/v1/quizzes")
	api.cache.Delete("/v1/quizzes?chapter_id=" + qz.ChapterID)
	return ctx.JSON(http.StatusCreated, qz)
}

func (api *quizApi) retrieveQuiz(ctx echo.Context) error {
	qz, err := api.svc.GetQuiz(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return mapNotFound(err, quiz.ErrQuizNotFound)
	}
	return ctx.JSON(http.StatusOK, qz)
}

func (api *quizApi) updateQuiz(ctx echo.Context) error {
	var data quiz.UpdateQuiz
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateQuiz")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	qz, err := api.svc.UpdateQuiz(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return mapNotFound(err, quiz.ErrQuizNotFound)
	}

	api.cache.Delete("/v1/quizzes")
	api.cache.Delete("/v1/quizzes?chapter_id=" + qz.ChapterID)
	api.cache.Delete("/v1/quizzes/" + qz.ID)
	return ctx.JSON(http.StatusOK, qz)
}

func (api *quizApi) destroyQuiz(ctx echo.Context) error {
	if err := api.svc.DeleteQuiz(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return mapNotFound(err, quiz.ErrQuizNotFound)
	}

	api.cache.Flush()
	return ctx.NoContent(http.StatusNoContent)
}

// Submissions

func (api *quizApi) submit(ctx echo.Context) error {
	var data SubmitRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SubmitRequest")
	}

	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	sq := quiz.SubmitQuiz{
		UserID:      ctxUsr.ID,
		QuizID:      ctx.Param("id"),
		UserAnswers: data.UserAnswers,
	}
	if err := sq.Validate(api.validate); err != nil {
		return err
	}

	res, err := api.svc.Submit(ctx.Request().Context(), sq)
	if err != nil {
		return mapNotFound(err, quiz.ErrQuizNotFound, quiz.ErrNoQuestions)
	}

	// the new attempt shows up in dashboards and record listings
	api.cache.Flush()
	return ctx.JSON(http.StatusOK, SubmitResponse{
		Success:          true,
		Message:          "Quiz submitted successfully",
		Score:            res.Score,
		CorrectAnswers:   res.CorrectAnswers,
		IncorrectAnswers: res.IncorrectAnswers,
		Results:          res.Results,
	})
}

func (api *quizApi) queryRecords(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	filter := quiz.RecordQueryFilter{
		UserID: ctx.QueryParam("user_id"),
		QuizID: ctx.QueryParam("quiz_id"),
	}
	// non-admins only see their own records
	if !ctxUsr.IsAdmin() {
		filter.UserID = ctxUsr.ID
	}

	records, err := api.svc.QueryRecords(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying quiz records")
	}
	if records == nil {
		records = []quiz.QuizRecord{}
	}
	return ctx.JSON(http.StatusOK, records)
}

type (
	SubmitRequest struct {
		UserAnswers []string `json:"user_answers"`
	}

	SubmitResponse struct {
		Success          bool                  `json:"success"`
		Message          string                `json:"message"`
		Score            int                   `json:"score"`
		CorrectAnswers   int                   `json:"correct_answers"`
		IncorrectAnswers int                   `json:"incorrect_answers"`
		Results          []quiz.QuestionResult `json:"results"`
	}
)
