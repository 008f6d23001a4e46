package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/kipawa/jaribio/core/catalog"
)

type catalogRepository struct {
	db *DB
}

var _ catalog.Repository = (*catalogRepository)(nil)

func NewCatalogRepository(db *DB) *catalogRepository {
	return &catalogRepository{db: db}
}

// Categories

func (repo *catalogRepository) CreateCategory(_ context.Context, cat catalog.Category) (catalog.Category, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	cat.ID = uuid.NewString()
	repo.db.categories[cat.ID] = &cat
	repo.db.nextSeq(cat.ID)
	return cat, nil
}

func (repo *catalogRepository) GetCategory(_ context.Context, id string) (catalog.Category, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if cat, ok := repo.db.categories[id]; ok {
		return *cat, nil
	}
	return catalog.Category{}, catalog.ErrCategoryNotFound
}

func (repo *catalogRepository) QueryCategories(_ context.Context) ([]catalog.Category, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	categories := make([]catalog.Category, 0, len(repo.db.categories))
	for _, cat := range repo.db.categories {
		categories = append(categories, *cat)
	}
	sort.Slice(categories, func(i, j int) bool {
		return repo.db.seqs[categories[i].ID] < repo.db.seqs[categories[j].ID]
	})
	return categories, nil
}

func (repo *catalogRepository) UpdateCategory(_ context.Context, cat catalog.Category) (catalog.Category, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	orig, ok := repo.db.categories[cat.ID]
	if !ok {
		return catalog.Category{}, catalog.ErrCategoryNotFound
	}
	if cat.Name != "" {
		orig.Name = cat.Name
	}
	if cat.Description != "" {
		orig.Description = cat.Description
	}
	if cat.ImageURL != "" {
		orig.ImageURL = cat.ImageURL
	}
	if cat.Status != "" {
		orig.Status = cat.Status
	}
	orig.UpdatedAt = cat.UpdatedAt
	return *orig, nil
}

func (repo *catalogRepository) DeleteCategory(_ context.Context, id string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.categories[id]; !ok {
		return catalog.ErrCategoryNotFound
	}
	delete(repo.db.categories, id)
	return nil
}

func (repo *catalogRepository) CheckCategoryName(_ context.Context, name string, excludedIDs ...string) error {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, cat := range repo.db.categories {
		if cat.Name != name {
			continue
		}
		excluded := false
		for _, id := range excludedIDs {
			if cat.ID == id {
				excluded = true
				break
			}
		}
		if !excluded {
			return catalog.ErrCategoryExists
		}
	}
	return nil
}

// Classes

func (repo *catalogRepository) CreateClass(_ context.Context, cls catalog.Class) (catalog.Class, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	cls.ID = uuid.NewString()
	repo.db.classes[cls.ID] = &cls
	repo.db.nextSeq(cls.ID)
	return cls, nil
}

func (repo *catalogRepository) GetClass(_ context.Context, id string) (catalog.Class, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if cls, ok := repo.db.classes[id]; ok {
		return *cls, nil
	}
	return catalog.Class{}, catalog.ErrClassNotFound
}

func (repo *catalogRepository) QueryClasses(_ context.Context) ([]catalog.Class, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	classes := make([]catalog.Class, 0, len(repo.db.classes))
	for _, cls := range repo.db.classes {
		classes = append(classes, *cls)
	}
	sort.Slice(classes, func(i, j int) bool {
		return repo.db.seqs[classes[i].ID] < repo.db.seqs[classes[j].ID]
	})
	return classes, nil
}

func (repo *catalogRepository) UpdateClass(_ context.Context, cls catalog.Class) (catalog.Class, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	orig, ok := repo.db.classes[cls.ID]
	if !ok {
		return catalog.Class{}, catalog.ErrClassNotFound
	}
	if cls.Name != "" {
		orig.Name = cls.Name
	}
	if cls.Section != "" {
		orig.Section = cls.Section
	}
	orig.UpdatedAt = cls.UpdatedAt
	return *orig, nil
}

func (repo *catalogRepository) DeleteClass(_ context.Context, id string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.classes[id]; !ok {
		return catalog.ErrClassNotFound
	}
	delete(repo.db.classes, id)
	return nil
}

func (repo *catalogRepository) CountClasses(_ context.Context) (int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return len(repo.db.classes), nil
}

// Subjects

func (repo *catalogRepository) CreateSubject(_ context.Context, sub catalog.Subject) (catalog.Subject, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	sub.ID = uuid.NewString()
	repo.db.subjects[sub.ID] = &sub
	repo.db.nextSeq(sub.ID)
	return sub, nil
}

func (repo *catalogRepository) GetSubject(_ context.Context, id string) (catalog.Subject, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if sub, ok := repo.db.subjects[id]; ok {
		return *sub, nil
	}
	return catalog.Subject{}, catalog.ErrSubjectNotFound
}

func (repo *catalogRepository) QuerySubjects(_ context.Context, classID string) ([]catalog.Subject, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	subjects := make([]catalog.Subject, 0, len(repo.db.subjects))
	for _, sub := range repo.db.subjects {
		if classID != "" && sub.ClassID != classID {
			continue
		}
		subjects = append(subjects, *sub)
	}
	sort.Slice(subjects, func(i, j int) bool {
		return repo.db.seqs[subjects[i].ID] < repo.db.seqs[subjects[j].ID]
	})
	return subjects, nil
}

func (repo *catalogRepository) UpdateSubject(_ context.Context, sub catalog.Subject) (catalog.Subject, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	orig, ok := repo.db.subjects[sub.ID]
	if !ok {
		return catalog.Subject{}, catalog.ErrSubjectNotFound
	}
	if sub.Name != "" {
		orig.Name = sub.Name
	}
	if sub.IconURL != "" {
		orig.IconURL = sub.IconURL
	}
	orig.UpdatedAt = sub.UpdatedAt
	return *orig, nil
}

func (repo *catalogRepository) DeleteSubject(_ context.Context, id string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.subjects[id]; !ok {
		return catalog.ErrSubjectNotFound
	}
	delete(repo.db.subjects, id)
	return nil
}

// Chapters

func (repo *catalogRepository) CreateChapter(_ context.Context, chap catalog.Chapter) (catalog.Chapter, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	chap.ID = uuid.NewString()
	repo.db.chapters[chap.ID] = &chap
	repo.db.nextSeq(chap.ID)
	return chap, nil
}

func (repo *catalogRepository) GetChapter(_ context.Context, id string) (catalog.Chapter, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if chap, ok := repo.db.chapters[id]; ok {
		return *chap, nil
	}
	return catalog.Chapter{}, catalog.ErrChapterNotFound
}

func (repo *catalogRepository) QueryChapters(_ context.Context, subjectID string) ([]catalog.Chapter, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	chapters := make([]catalog.Chapter, 0, len(repo.db.chapters))
	for _, chap := range repo.db.chapters {
		if subjectID != "" && chap.SubjectID != subjectID {
			continue
		}
		chapters = append(chapters, *chap)
	}
	sort.Slice(chapters, func(i, j int) bool {
		return repo.db.seqs[chapters[i].ID] < repo.db.seqs[chapters[j].ID]
	})
	return chapters, nil
}

func (repo *catalogRepository) UpdateChapter(_ context.Context, chap catalog.Chapter) (catalog.Chapter, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	orig, ok := repo.db.chapters[chap.ID]
	if !ok {
		return catalog.Chapter{}, catalog.ErrChapterNotFound
	}
	if chap.Name != "" {
		orig.Name = chap.Name
	}
	if chap.Number != 0 {
		orig.Number = chap.Number
	}
	if chap.ContentURL != "" {
		orig.ContentURL = chap.ContentURL
	}
	orig.UpdatedAt = chap.UpdatedAt
	return *orig, nil
}

func (repo *catalogRepository) DeleteChapter(_ context.Context, id string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.chapters[id]; !ok {
		return catalog.ErrChapterNotFound
	}
	delete(repo.db.chapters, id)
	return nil
}

func (repo *catalogRepository) CountChapters(_ context.Context) (int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return len(repo.db.chapters), nil
}
