package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/kipawa/jaribio/core/catalog"
)

type catalogRepository struct {
	db *gorm.DB
}

var _ catalog.Repository = (*catalogRepository)(nil)

func NewCatalogRepository(db *gorm.DB) *catalogRepository {
	return &catalogRepository{db: db}
}

// Categories

func (repo *catalogRepository) CreateCategory(ctx context.Context, cat catalog.Category) (catalog.Category, error) {
	cat.ID = uuid.NewString()
	row := categoryRow{
		ID:          cat.ID,
		Name:        cat.Name,
		Description: cat.Description,
		ImageURL:    cat.ImageURL,
		Status:      cat.Status,
		CreatedAt:   cat.CreatedAt,
		UpdatedAt:   cat.UpdatedAt,
	}
	if err := repo.db.WithContext(ctx).Create(&row).Error; err != nil {
		return catalog.Category{}, errors.Wrap(err, "creating category")
	}
	return cat, nil
}

func (repo *catalogRepository) GetCategory(ctx context.Context, id string) (catalog.Category, error) {
	var row categoryRow
	if err := repo.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return catalog.Category{}, catalog.ErrCategoryNotFound
		}
		return catalog.Category{}, errors.Wrap(err, "getting category")
	}
	return row.toCore(), nil
}

func (repo *catalogRepository) QueryCategories(ctx context.Context) ([]catalog.Category, error) {
	var rows []categoryRow
	if err := repo.db.WithContext(ctx).Order("created_at").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "querying categories")
	}
	categories := make([]catalog.Category, 0, len(rows))
	for _, row := range rows {
		categories = append(categories, row.toCore())
	}
	return categories, nil
}

func (repo *catalogRepository) UpdateCategory(ctx context.Context, cat catalog.Category) (catalog.Category, error) {
	updates := make(map[string]interface{})
	if cat.Name != "" {
		updates["name"] = cat.Name
	}
	if cat.Description != "" {
		updates["description"] = cat.Description
	}
	if cat.ImageURL != "" {
		updates["image_url"] = cat.ImageURL
	}
	if cat.Status != "" {
		updates["status"] = cat.Status
	}
	updates["updated_at"] = cat.UpdatedAt

	res := repo.db.WithContext(ctx).Model(&categoryRow{}).Where("id = ?", cat.ID).Updates(updates)
	if res.Error != nil {
		return catalog.Category{}, errors.Wrap(res.Error, "updating category")
	}
	if res.RowsAffected == 0 {
		return catalog.Category{}, catalog.ErrCategoryNotFound
	}
	return repo.GetCategory(ctx, cat.ID)
}

func (repo *catalogRepository) DeleteCategory(ctx context.Context, id string) error {
	res := repo.db.WithContext(ctx).Delete(&categoryRow{}, "id = ?", id)
	if res.Error != nil {
		return errors.Wrap(res.Error, "deleting category")
	}
	if res.RowsAffected == 0 {
		return catalog.ErrCategoryNotFound
	}
	return nil
}

func (repo *catalogRepository) CheckCategoryName(ctx context.Context, name string, excludedIDs ...string) error {
	q := repo.db.WithContext(ctx).Model(&categoryRow{}).Where("name = ?", name)
	if len(excludedIDs) > 0 {
		q = q.Where("id NOT IN ?", excludedIDs)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return errors.Wrap(err, "checking category name")
	}
	if count > 0 {
		return catalog.ErrCategoryExists
	}
	return nil
}

// Classes

func (repo *catalogRepository) CreateClass(ctx context.Context, cls catalog.Class) (catalog.Class, error) {
	cls.ID = uuid.NewString()
	row := classRow{ID: cls.ID, Name: cls.Name, Section: cls.Section, CreatedAt: cls.CreatedAt, UpdatedAt: cls.UpdatedAt}
	if err := repo.db.WithContext(ctx).Create(&row).Error; err != nil {
		return catalog.Class{}, errors.Wrap(err, "creating class")
	}
	return cls, nil
}

func (repo *catalogRepository) GetClass(ctx context.Context, id string) (catalog.Class, error) {
	var row classRow
	if err := repo.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return catalog.Class{}, catalog.ErrClassNotFound
		}
		return catalog.Class{}, errors.Wrap(err, "getting class")
	}
	return row.toCore(), nil
}

func (repo *catalogRepository) QueryClasses(ctx context.Context) ([]catalog.Class, error) {
	var rows []classRow
	if err := repo.db.WithContext(ctx).Order("created_at").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "querying classes")
	}
	classes := make([]catalog.Class, 0, len(rows))
	for _, row := range rows {
		classes = append(classes, row.toCore())
	}
	return classes, nil
}

func (repo *catalogRepository) UpdateClass(ctx context.Context, cls catalog.Class) (catalog.Class, error) {
	updates := make(map[string]interface{})
	if cls.Name != "" {
		updates["name"] = cls.Name
	}
	if cls.Section != "" {
		updates["section"] = cls.Section
	}
	updates["updated_at"] = cls.UpdatedAt

	res := repo.db.WithContext(ctx).Model(&classRow{}).Where("id = ?", cls.ID).Updates(updates)
	if res.Error != nil {
		return catalog.Class{}, errors.Wrap(res.Error, "updating class")
	}
	if res.RowsAffected == 0 {
		return catalog.Class{}, catalog.ErrClassNotFound
	}
	return repo.GetClass(ctx, cls.ID)
}

func (repo *catalogRepository) DeleteClass(ctx context.Context, id string) error {
	res := repo.db.WithContext(ctx).Delete(&classRow{}, "id = ?", id)
	if res.Error != nil {
		return errors.Wrap(res.Error, "deleting class")
	}
	if res.RowsAffected == 0 {
		return catalog.ErrClassNotFound
	}
	return nil
}

func (repo *catalogRepository) CountClasses(ctx context.Context) (int, error) {
	var count int64
	if err := repo.db.WithContext(ctx).Model(&classRow{}).Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "counting classes")
	}
	return int(count), nil
}

// Subjects

func (repo *catalogRepository) CreateSubject(ctx context.Context, sub catalog.Subject) (catalog.Subject, error) {
	sub.ID = uuid.NewString()
	row := subjectRow{ID: sub.ID, ClassID: sub.ClassID, Name: sub.Name, IconURL: sub.IconURL, CreatedAt: sub.CreatedAt, UpdatedAt: sub.UpdatedAt}
	if err := repo.db.WithContext(ctx).Create(&row).Error; err != nil {
		return catalog.Subject{}, errors.Wrap(err, "creating subject")
	}
	return sub, nil
}

func (repo *catalogRepository) GetSubject(ctx context.Context, id string) (catalog.Subject, error) {
	var row subjectRow
	if err := repo.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return catalog.Subject{}, catalog.ErrSubjectNotFound
		}
		return catalog.Subject{}, errors.Wrap(err, "getting subject")
	}
	return row.toCore(), nil
}

func (repo *catalogRepository) QuerySubjects(ctx context.Context, classID string) ([]catalog.Subject, error) {
	q := repo.db.WithContext(ctx).Order("created_at")
	if classID != "" {
		q = q.Where("class_id = ?", classID)
	}
	var rows []subjectRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "querying subjects")
	}
	subjects := make([]catalog.Subject, 0, len(rows))
	for _, row := range rows {
		subjects = append(subjects, row.toCore())
	}
	return subjects, nil
}

func (repo *catalogRepository) UpdateSubject(ctx context.Context, sub catalog.Subject) (catalog.Subject, error) {
	updates := make(map[string]interface{})
	if sub.Name != "" {
		updates["name"] = sub.Name
	}
	if sub.IconURL != "" {
		updates["icon_url"] = sub.IconURL
	}
	updates["updated_at"] = sub.UpdatedAt

	res := repo.db.WithContext(ctx).Model(&subjectRow{}).Where("id = ?", sub.ID).Updates(updates)
	if res.Error != nil {
		return catalog.Subject{}, errors.Wrap(res.Error, "updating subject")
	}
	if res.RowsAffected == 0 {
		return catalog.Subject{}, catalog.ErrSubjectNotFound
	}
	return repo.GetSubject(ctx, sub.ID)
}

func (repo *catalogRepository) DeleteSubject(ctx context.Context, id string) error {
	res := repo.db.WithContext(ctx).Delete(&subjectRow{}, "id = ?", id)
	if res.Error != nil {
		return errors.Wrap(res.Error, "deleting subject")
	}
	if res.RowsAffected == 0 {
		return catalog.ErrSubjectNotFound
	}
	return nil
}

// Chapters

func (repo *catalogRepository) CreateChapter(ctx context.Context, chap catalog.Chapter) (catalog.Chapter, error) {
	chap.ID = uuid.NewString()
	row := chapterRow{
		ID:         chap.ID,
		SubjectID:  chap.SubjectID,
		Name:       chap.Name,
		Number:     chap.Number,
		ContentURL: chap.ContentURL,
		CreatedAt:  chap.CreatedAt,
		UpdatedAt:  chap.UpdatedAt,
	}
	if err := repo.db.WithContext(ctx).Create(&row).Error; err != nil {
		return catalog.Chapter{}, errors.Wrap(err, "creating chapter")
	}
	return chap, nil
}

func (repo *catalogRepository) GetChapter(ctx context.Context, id string) (catalog.Chapter, error) {
	var row chapterRow
	if err := repo.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return catalog.Chapter{}, catalog.ErrChapterNotFound
		}
		return catalog.Chapter{}, errors.Wrap(err, "getting chapter")
	}
	return row.toCore(), nil
}

func (repo *catalogRepository) QueryChapters(ctx context.Context, subjectID string) ([]catalog.Chapter, error) {
	q := repo.db.WithContext(ctx).Order("created_at")
	if subjectID != "" {
		q = q.Where("subject_id = ?", subjectID)
	}
	var rows []chapterRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "querying chapters")
	}
	chapters := make([]catalog.Chapter, 0, len(rows))
	for _, row := range rows {
		chapters = append(chapters, row.toCore())
	}
	return chapters, nil
}

func (repo *catalogRepository) UpdateChapter(ctx context.Context, chap catalog.Chapter) (catalog.Chapter, error) {
	updates := make(map[string]interface{})
	if chap.Name != "" {
		updates["name"] = chap.Name
	}
	if chap.Number != 0 {
		updates["number"] = chap.Number
	}
	if chap.ContentURL != "" {
		updates["content_url"] = chap.ContentURL
	}
	updates["updated_at"] = chap.UpdatedAt

	res := repo.db.WithContext(ctx).Model(&chapterRow{}).Where("id = ?", chap.ID).Updates(updates)
	if res.Error != nil {
		return catalog.Chapter{}, errors.Wrap(res.Error, "updating chapter")
	}
	if res.RowsAffected == 0 {
		return catalog.Chapter{}, catalog.ErrChapterNotFound
	}
	return repo.GetChapter(ctx, chap.ID)
}

func (repo *catalogRepository) DeleteChapter(ctx context.Context, id string) error {
	res := repo.db.WithContext(ctx).Delete(&chapterRow{}, "id = ?", id)
	if res.Error != nil {
		return errors.Wrap(res.Error, "deleting chapter")
	}
	if res.RowsAffected == 0 {
		return catalog.ErrChapterNotFound
	}
	return nil
}

func (repo *catalogRepository) CountChapters(ctx context.Context) (int, error) {
	var count int64
	if err := repo.db.WithContext(ctx).Model(&chapterRow{}).Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "counting chapters")
	}
	return int(count), nil
}
