package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/kipawa/jaribio/core"
)

var (
	// errors
	ErrClassNotFound    = errors.New("class not found")
	ErrSubjectNotFound  = errors.New("subject not found")
	ErrChapterNotFound  = errors.New("chapter not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryExists   = errors.New("a category with this name already exists")
)

type (
	Repository interface {
		CreateCategory(ctx context.Context, cat Category) (Category, error)
		GetCategory(ctx context.Context, id string) (Category, error)
		QueryCategories(ctx context.Context) ([]Category, error)
		UpdateCategory(ctx context.Context, cat Category) (Category, error)
		DeleteCategory(ctx context.Context, id string) error
		// CheckCategoryName reports ErrCategoryExists when another category
		// already carries the name.
		CheckCategoryName(ctx context.Context, name string, excludedIDs ...string) error

		CreateClass(ctx context.Context, cls Class) (Class, error)
		GetClass(ctx context.Context, id string) (Class, error)
		QueryClasses(ctx context.Context) ([]Class, error)
		UpdateClass(ctx context.Context, cls Class) (Class, error)
		DeleteClass(ctx context.Context, id string) error
		CountClasses(ctx context.Context) (int, error)

		CreateSubject(ctx context.Context, sub Subject) (Subject, error)
		GetSubject(ctx context.Context, id string) (Subject, error)
		// QuerySubjects lists all subjects, or a class's subjects when classID is set.
		QuerySubjects(ctx context.Context, classID string) ([]Subject, error)
		UpdateSubject(ctx context.Context, sub Subject) (Subject, error)
		DeleteSubject(ctx context.Context, id string) error

		CreateChapter(ctx context.Context, chap Chapter) (Chapter, error)
		GetChapter(ctx context.Context, id string) (Chapter, error)
		// QueryChapters lists chapters in creation order, scoped to a subject
		// when subjectID is set.
		QueryChapters(ctx context.Context, subjectID string) ([]Chapter, error)
		UpdateChapter(ctx context.Context, chap Chapter) (Chapter, error)
		DeleteChapter(ctx context.Context, id string) error
		CountChapters(ctx context.Context) (int, error)
	}

	ServiceInterface interface {
		CreateCategory(ctx context.Context, nc NewCategory) (Category, error)
		GetCategory(ctx context.Context, id string) (Category, error)
		QueryCategories(ctx context.Context) ([]Category, error)
		UpdateCategory(ctx context.Context, id string, uc UpdateCategory) (Category, error)
		DeleteCategory(ctx context.Context, id string) error

		CreateClass(ctx context.Context, nc NewClass) (Class, error)
		GetClass(ctx context.Context, id string) (Class, error)
		QueryClasses(ctx context.Context) ([]Class, error)
		UpdateClass(ctx context.Context, id string, uc UpdateClass) (Class, error)
		DeleteClass(ctx context.Context, id string) error

		CreateSubject(ctx context.Context, ns NewSubject) (Subject, error)
		GetSubject(ctx context.Context, id string) (Subject, error)
		QuerySubjects(ctx context.Context, classID string) ([]Subject, error)
		// QuerySubjectsWithChapters returns a class's subjects, each with its
		// chapters preloaded.
		QuerySubjectsWithChapters(ctx context.Context, classID string) ([]Subject, error)
		UpdateSubject(ctx context.Context, id string, us UpdateSubject) (Subject, error)
		DeleteSubject(ctx context.Context, id string) error

		CreateChapter(ctx context.Context, nc NewChapter) (Chapter, error)
		GetChapter(ctx context.Context, id string) (Chapter, error)
		QueryChapters(ctx context.Context, subjectID string) ([]Chapter, error)
		UpdateChapter(ctx context.Context, id string, uc UpdateChapter) (Chapter, error)
		DeleteChapter(ctx context.Context, id string) error
	}

	Service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) CreateCategory(ctx context.Context, nc NewCategory) (Category, error) {
	if err := svc.checkCategoryName(ctx, nc.Name); err != nil {
		return Category{}, err
	}
	status := nc.Status
	if status == "" {
		status = CategoryStatusActive
	}
	now := time.Now().UTC()
	return svc.repo.CreateCategory(ctx, Category{
		Name:        nc.Name,
		Description: nc.Description,
		ImageURL:    nc.ImageURL,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func (svc *Service) GetCategory(ctx context.Context, id string) (Category, error) {
	return svc.repo.GetCategory(ctx, id)
}

func (svc *Service) QueryCategories(ctx context.Context) ([]Category, error) {
	return svc.repo.QueryCategories(ctx)
}

func (svc *Service) UpdateCategory(ctx context.Context, id string, uc UpdateCategory) (Category, error) {
	if uc.Name != "" {
		if err := svc.checkCategoryName(ctx, uc.Name, id); err != nil {
			return Category{}, err
		}
	}
	return svc.repo.UpdateCategory(ctx, Category{
		ID:          id,
		Name:        uc.Name,
		Description: uc.Description,
		ImageURL:    uc.ImageURL,
		Status:      uc.Status,
		UpdatedAt:   time.Now().UTC(),
	})
}

func (svc *Service) DeleteCategory(ctx context.Context, id string) error {
	return svc.repo.DeleteCategory(ctx, id)
}

func (svc *Service) checkCategoryName(ctx context.Context, name string, excludedIDs ...string) error {
	if err := svc.repo.CheckCategoryName(ctx, name, excludedIDs...); err != nil {
		if err == ErrCategoryExists {
			return core.NewValidationError(err, core.FieldError{Field: "name", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) CreateClass(ctx context.Context, nc NewClass) (Class, error) {
	now := time.Now().UTC()
	return svc.repo.CreateClass(ctx, Class{
		Name:      nc.Name,
		Section:   nc.Section,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *Service) GetClass(ctx context.Context, id string) (Class, error) {
	return svc.repo.GetClass(ctx, id)
}

func (svc *Service) QueryClasses(ctx context.Context) ([]Class, error) {
	return svc.repo.QueryClasses(ctx)
}

func (svc *Service) UpdateClass(ctx context.Context, id string, uc UpdateClass) (Class, error) {
	return svc.repo.UpdateClass(ctx, Class{
		ID:        id,
		Name:      uc.Name,
		Section:   uc.Section,
		UpdatedAt: time.Now().UTC(),
	})
}

func (svc *Service) DeleteClass(ctx context.Context, id string) error {
	return svc.repo.DeleteClass(ctx, id)
}

func (svc *Service) CreateSubject(ctx context.Context, ns NewSubject) (Subject, error) {
	if _, err := svc.repo.GetClass(ctx, ns.ClassID); err != nil {
		return Subject{}, err
	}
	now := time.Now().UTC()
	return svc.repo.CreateSubject(ctx, Subject{
		ClassID:   ns.ClassID,
		Name:      ns.Name,
		IconURL:   ns.IconURL,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *Service) GetSubject(ctx context.Context, id string) (Subject, error) {
	return svc.repo.GetSubject(ctx, id)
}

func (svc *Service) QuerySubjects(ctx context.Context, classID string) ([]Subject, error) {
	return svc.repo.QuerySubjects(ctx, classID)
}

func (svc *Service) QuerySubjectsWithChapters(ctx context.Context, classID string) ([]Subject, error) {
	subs, err := svc.repo.QuerySubjects(ctx, classID)
	if err != nil {
		return nil, err
	}
	for i, sub := range subs {
		chaps, err := svc.repo.QueryChapters(ctx, sub.ID)
		if err != nil {
			return nil, err
		}
		subs[i].Chapters = chaps
	}
	return subs, nil
}

func (svc *Service) UpdateSubject(ctx context.Context, id string, us UpdateSubject) (Subject, error) {
	return svc.repo.UpdateSubject(ctx, Subject{
		ID:        id,
		Name:      us.Name,
		IconURL:   us.IconURL,
		UpdatedAt: time.Now().UTC(),
	})
}

func (svc *Service) DeleteSubject(ctx context.Context, id string) error {
	return svc.repo.DeleteSubject(ctx, id)
}

func (svc *Service) CreateChapter(ctx context.Context, nc NewChapter) (Chapter, error) {
	if _, err := svc.repo.GetSubject(ctx, nc.SubjectID); err != nil {
		return Chapter{}, err
	}
	now := time.Now().UTC()
	return svc.repo.CreateChapter(ctx, Chapter{
		SubjectID:  nc.SubjectID,
		Name:       nc.Name,
		Number:     nc.Number,
		ContentURL: nc.ContentURL,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
}

func (svc *Service) GetChapter(ctx context.Context, id string) (Chapter, error) {
	return svc.repo.GetChapter(ctx, id)
}

func (svc *Service) QueryChapters(ctx context.Context, subjectID string) ([]Chapter, error) {
	return svc.repo.QueryChapters(ctx, subjectID)
}

func (svc *Service) UpdateChapter(ctx context.Context, id string, uc UpdateChapter) (Chapter, error) {
	return svc.repo.UpdateChapter(ctx, Chapter{
		ID:         id,
		Name:       uc.Name,
		Number:     uc.Number,
		ContentURL: uc.ContentURL,
		UpdatedAt:  time.Now().UTC(),
	})
}

func (svc *Service) DeleteChapter(ctx context.Context, id string) error {
	return svc.repo.DeleteChapter(ctx, id)
}
