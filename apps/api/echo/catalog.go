package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/kipawa/jaribio/core"
	"github.com/kipawa/jaribio/core/catalog"
)

type catalogApi struct {
	svc        catalog.ServiceInterface
	cache      core.Cache
	validate   *validator.Validate
	translator ut.Translator
}

func registerCatalogAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *Deps) {
	api := catalogApi{
		svc:        deps.CatalogSvc,
		cache:      deps.Cache,
		validate:   deps.Validate,
		translator: deps.Translator,
	}
	cached := cacheMiddleware(api.cache)

	tg := g.Group("/categories", jwt)
	tg.GET("", api.queryCategories, cached)
	tg.POST("", api.createCategory, adminMiddleware())
	tg.GET("/:id", api.retrieveCategory, adminMiddleware(), cached)
	tg.PUT("/:id", api.updateCategory, adminMiddleware())
	tg.DELETE("/:id", api.destroyCategory, adminMiddleware())

	cg := g.Group("/classes", jwt)
	cg.GET("", api.queryClasses, cached)
	cg.POST("", api.createClass, adminMiddleware())
	cg.GET("/:id", api.retrieveClass, cached)
	cg.PUT("/:id", api.updateClass, adminMiddleware())
	cg.DELETE("/:id", api.destroyClass, adminMiddleware())
	cg.GET("/:id/subjects", api.queryClassSubjects, cached)

	sg := g.Group("/subjects", jwt)
	sg.GET("", api.querySubjects, cached)
	sg.POST("", api.createSubject, adminMiddleware())
	sg.GET("/:id", api.retrieveSubject, cached)
	sg.PUT("/:id", api.updateSubject, adminMiddleware())
	sg.DELETE("/:id", api.destroySubject, adminMiddleware())

	hg := g.Group("/chapters", jwt)
	hg.GET("", api.queryChapters, cached)
	hg.POST("", api.createChapter, adminMiddleware())
	hg.GET("/:id", api.retrieveChapter, cached)
	hg.PUT("/:id", api.updateChapter, adminMiddleware())
	hg.DELETE("/:id", api.destroyChapter, adminMiddleware())
}

// Categories

func (api *catalogApi) queryCategories(ctx echo.Context) error {
	categories, err := api.svc.QueryCategories(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying categories")
	}
	if categories == nil {
		categories = []catalog.Category{}
	}
	return ctx.JSON(http.StatusOK, categories)
}

func (api *catalogApi) createCategory(ctx echo.Context) error {
	var data catalog.NewCategory
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCategory")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	cat, err := api.svc.CreateCategory(ctx.Request().Context(), data)
	if err != nil {
		return err
	}

	api.cache.Delete("/v1/categories")
	return ctx.JSON(http.StatusCreated, cat)
}

func (api *catalogApi) retrieveCategory(ctx echo.Context) error {
	cat, err := api.svc.GetCategory(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return mapNotFound(err, catalog.ErrCategoryNotFound)
	}
	return ctx.JSON(http.StatusOK, cat)
}

func (api *catalogApi) updateCategory(ctx echo.Context) error {
	var data catalog.UpdateCategory
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCategory")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	cat, err := api.svc.UpdateCategory(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return mapNotFound(err, catalog.ErrCategoryNotFound)
	}

	api.cache.Delete("/v1/categories")
	api.cache.Delete("/v1/categories/" + cat.ID)
	return ctx.JSON(http.StatusOK, cat)
}

func (api *catalogApi) destroyCategory(ctx echo.Context) error {
	if err := api.svc.DeleteCategory(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return mapNotFound(err, catalog.ErrCategoryNotFound)
	}

	api.cache.Delete("/v1/categories")
	api.cache.Delete("/v1/categories/" + ctx.Param("id"))
	return ctx.NoContent(http.StatusNoContent)
}

// Classes

func (api *catalogApi) queryClasses(ctx echo.Context) error {
	classes, err := api.svc.QueryClasses(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying classes")
	}
	if classes == nil {
		classes = []catalog.Class{}
	}
	return ctx.JSON(http.StatusOK, classes)
}

func (api *catalogApi) createClass(ctx echo.Context) error {
	var data catalog.NewClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClass")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	cls, err := api.svc.CreateClass(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating class")
	}

	api.cache.Delete("/v1/classes")
	return ctx.JSON(http.StatusCreated, cls)
}

func (api *catalogApi) retrieveClass(ctx echo.Context) error {
	cls, err := api.svc.GetClass(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return mapNotFound(err, catalog.ErrClassNotFound)
	}
	return ctx.JSON(http.StatusOK, cls)
}

func (api *catalogApi) updateClass(ctx echo.Context) error {
	var data catalog.UpdateClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateClass")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	cls, err := api.svc.UpdateClass(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return mapNotFound(err, catalog.ErrClassNotFound)
	}

	api.cache.Delete("/v1/classes")
	api.cache.Delete("/v1/classes/" + cls.ID)
	return ctx.JSON(http.StatusOK, cls)
}

func (api *catalogApi) destroyClass(ctx echo.Context) error {
	if err := api.svc.DeleteClass(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return mapNotFound(err, catalog.ErrClassNotFound)
	}

	// a class delete fans out to subject and chapter views
	api.cache.Flush()
	return ctx.NoContent(http.StatusNoContent)
}

func (api *catalogApi) queryClassSubjects(ctx echo.Context) error {
	subjects, err := api.svc.QuerySubjectsWithChapters(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying class subjects")
	}
	if subjects == nil {
		subjects = []catalog.Subject{}
	}
	return ctx.JSON(http.StatusOK, subjects)
}

// Subjects

func (api *catalogApi) querySubjects(ctx echo.Context) error {
	subjects, err := api.svc.QuerySubjects(ctx.Request().Context(), ctx.QueryParam("class_id"))
	if err != nil {
		return errors.Wrap(err, "querying subjects")
	}
	if subjects == nil {
		subjects = []catalog.Subject{}
	}
	return ctx.JSON(http.StatusOK, subjects)
}

func (api *catalogApi) createSubject(ctx echo.Context) error {
	var data catalog.NewSubject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubject")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sub, err := api.svc.CreateSubject(ctx.Request().Context(), data)
	if err != nil {
		return mapNotFound(err, catalog.ErrClassNotFound)
	}

	api.cache.Delete("/v1/subjects")
	api.cache.Delete("/v1/subjects?class_id=" + sub.ClassID)
	api.cache.Delete("/v1/classes/" + sub.ClassID + "/subjects")
	return ctx.JSON(http.StatusCreated, sub)
}

func (api *catalogApi) retrieveSubject(ctx echo.Context) error {
	sub, err := api.svc.GetSubject(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return mapNotFound(err, catalog.ErrSubjectNotFound)
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *catalogApi) updateSubject(ctx echo.Context) error {
	var data catalog.UpdateSubject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSubject")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sub, err := api.svc.UpdateSubject(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return mapNotFound(err, catalog.ErrSubjectNotFound)
	}

	api.cache.Delete("/v1/subjects")
	api.cache.Delete("/v1/subjects?class_id=" + sub.ClassID)
	api.cache.Delete("/v1/subjects/" + sub.ID)
	api.cache.Delete("/v1/classes/" + sub.ClassID + "/subjects")
	return ctx.JSON(http.StatusOK, sub)
}

func (api *catalogApi) destroySubject(ctx echo.Context) error {
	if err := api.svc.DeleteSubject(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return mapNotFound(err, catalog.ErrSubjectNotFound)
	}

	// subject deletes affect class views and chapter listings
	api.cache.Flush()
	return ctx.NoContent(http.StatusNoContent)
}

// Chapters

func (api *catalogApi) queryChapters(ctx echo.Context) error {
	chapters, err := api.svc.QueryChapters(ctx.Request().Context(), ctx.QueryParam("subject_id"))
	if err != nil {
		return errors.Wrap(err, "querying chapters")
	}
	if chapters == nil {
		chapters = []catalog.Chapter{}
	}
	return ctx.JSON(http.StatusOK, chapters)
}

func (api *catalogApi) createChapter(ctx echo.Context) error {
	var data catalog.NewChapter
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewChapter")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	chap, err := api.svc.CreateChapter(ctx.Request().Context(), data)
	if err != nil {
		return mapNotFound(err, catalog.ErrSubjectNotFound)
	}

	// chapters also show up nested in class subject views whose class ID
	// is unknown here; flush rather than enumerate keys
	api.cache.Flush()
	return ctx.JSON(http.StatusCreated, chap)
}

func (api *catalogApi) retrieveChapter(ctx echo.Context) error {
	chap, err := api.svc.GetChapter(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return mapNotFound(err, catalog.ErrChapterNotFound)
	}
	return ctx.JSON(http.StatusOK, chap)
}

func (api *catalogApi) updateChapter(ctx echo.Context) error {
	var data catalog.UpdateChapter
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateChapter")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	chap, err := api.svc.UpdateChapter(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return mapNotFound(err, catalog.ErrChapterNotFound)
	}

	// same blast radius as create: nested class subject views
	api.cache.Flush()
	return ctx.JSON(http.StatusOK, chap)
}

func (api *catalogApi) destroyChapter(ctx echo.Context) error {
	if err := api.svc.DeleteChapter(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return mapNotFound(err, catalog.ErrChapterNotFound)
	}

	// chapter deletes affect subject views, question sets and quizzes
	api.cache.Flush()
	return ctx.NoContent(http.StatusNoContent)
}
