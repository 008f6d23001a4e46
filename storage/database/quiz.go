package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kipawa/jaribio/core/quiz"
)

type quizRepository struct {
	db *gorm.DB
}

var _ quiz.Repository = (*quizRepository)(nil)

func NewQuizRepository(db *gorm.DB) *quizRepository {
	return &quizRepository{db: db}
}

// Questions

func (repo *quizRepository) CreateQuestion(ctx context.Context, qst quiz.Question) (quiz.Question, error) {
	qst.ID = uuid.NewString()
	row := rowFromQuestion(qst)
	if err := repo.db.WithContext(ctx).Create(&row).Error; err != nil {
		return quiz.Question{}, errors.Wrap(err, "creating question")
	}
	return qst, nil
}

func (repo *quizRepository) CreateQuestions(ctx context.Context, qsts []quiz.Question) ([]quiz.Question, error) {
	rows := make([]questionRow, 0, len(qsts))
	for i := range qsts {
		qsts[i].ID = uuid.NewString()
		rows = append(rows, rowFromQuestion(qsts[i]))
	}
	if err := repo.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "creating questions")
	}
	return qsts, nil
}

func (repo *quizRepository) GetQuestion(ctx context.Context, id string) (quiz.Question, error) {
	var row questionRow
	if err := repo.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return quiz.Question{}, quiz.ErrQuestionNotFound
		}
		return quiz.Question{}, errors.Wrap(err, "getting question")
	}
	return row.toCore(), nil
}

func (repo *quizRepository) QueryQuestionsByChapter(ctx context.Context, chapterID string) ([]quiz.Question, error) {
	var rows []questionRow
	// creation order; answer vectors are indexed by it
	if err := repo.db.WithContext(ctx).
		Where("chapter_id = ?", chapterID).
		Order("created_at, id").
		Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "querying questions")
	}
	qsts := make([]quiz.Question, 0, len(rows))
	for _, row := range rows {
		qsts = append(qsts, row.toCore())
	}
	return qsts, nil
}

func (repo *quizRepository) UpdateQuestion(ctx context.Context, qst quiz.Question) (quiz.Question, error) {
	updates := make(map[string]interface{})
	if qst.Text != "" {
		updates["text"] = qst.Text
	}
	if qst.Options != nil {
		updates["options"] = optionsToJSONMap(qst.Options)
	}
	if qst.Answer != "" {
		updates["answer"] = qst.Answer
	}
	if qst.Type != "" {
		updates["type"] = qst.Type
	}
	if qst.Status != "" {
		updates["status"] = qst.Status
	}
	updates["updated_at"] = qst.UpdatedAt

	res := repo.db.WithContext(ctx).Model(&questionRow{}).Where("id = ?", qst.ID).Updates(updates)
	if res.Error != nil {
		return quiz.Question{}, errors.Wrap(res.Error, "updating question")
	}
	if res.RowsAffected == 0 {
		return quiz.Question{}, quiz.ErrQuestionNotFound
	}
	return repo.GetQuestion(ctx, qst.ID)
}

func (repo *quizRepository) DeleteQuestion(ctx context.Context, id string) error {
	res := repo.db.WithContext(ctx).Delete(&questionRow{}, "id = ?", id)
	if res.Error != nil {
		return errors.Wrap(res.Error, "deleting question")
	}
	if res.RowsAffected == 0 {
		return quiz.ErrQuestionNotFound
	}
	return nil
}

// Quizzes

func (repo *quizRepository) CreateQuiz(ctx context.Context, qz quiz.Quiz) (quiz.Quiz, error) {
	qz.ID = uuid.NewString()
	row := quizRow{ID: qz.ID, ChapterID: qz.ChapterID, Title: qz.Title, Status: qz.Status, CreatedAt: qz.CreatedAt, UpdatedAt: qz.UpdatedAt}
	if err := repo.db.WithContext(ctx).Create(&row).Error; err != nil {
		return quiz.Quiz{}, errors.Wrap(err, "creating quiz")
	}
	return qz, nil
}

func (repo *quizRepository) GetQuiz(ctx context.Context, id string) (quiz.Quiz, error) {
	var row quizRow
	if err := repo.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return quiz.Quiz{}, quiz.ErrQuizNotFound
		}
		return quiz.Quiz{}, errors.Wrap(err, "getting quiz")
	}
	return row.toCore(), nil
}

func (repo *quizRepository) QueryQuizzes(ctx context.Context, chapterID string) ([]quiz.Quiz, error) {
	q := repo.db.WithContext(ctx).Order("created_at")
	if chapterID != "" {
		q = q.Where("chapter_id = ?", chapterID)
	}
	var rows []quizRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "querying quizzes")
	}
	quizzes := make([]quiz.Quiz, 0, len(rows))
	for _, row := range rows {
		quizzes = append(quizzes, row.toCore())
	}
	return quizzes, nil
}

func (repo *quizRepository) UpdateQuiz(ctx context.Context, qz quiz.Quiz) (quiz.Quiz, error) {
	updates := make(map[string]interface{})
	if qz.Title != "" {
		updates["title"] = qz.Title
	}
	if qz.Status != "" {
		updates["status"] = qz.Status
	}
	updates["updated_at"] = qz.UpdatedAt

	res := repo.db.WithContext(ctx).Model(&quizRow{}).Where("id = ?", qz.ID).Updates(updates)
	if res.Error != nil {
		return quiz.Quiz{}, errors.Wrap(res.Error, "updating quiz")
	}
	if res.RowsAffected == 0 {
		return quiz.Quiz{}, quiz.ErrQuizNotFound
	}
	return repo.GetQuiz(ctx, qz.ID)
}

func (repo *quizRepository) DeleteQuiz(ctx context.Context, id string) error {
	res := repo.db.WithContext(ctx).Delete(&quizRow{}, "id = ?", id)
	if res.Error != nil {
		return errors.Wrap(res.Error, "deleting quiz")
	}
	if res.RowsAffected == 0 {
		return quiz.ErrQuizNotFound
	}
	return nil
}

func (repo *quizRepository) CountQuizzes(ctx context.Context) (int, error) {
	var count int64
	if err := repo.db.WithContext(ctx).Model(&quizRow{}).Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "counting quizzes")
	}
	return int(count), nil
}

// Records

// UpsertQuizRecord relies on the (user_id, quiz_id) unique index: score and
// attempted_at are overwritten and attempts incremented in a single statement,
// so concurrent submissions cannot lose updates.
func (repo *quizRepository) UpsertQuizRecord(ctx context.Context, rec quiz.QuizRecord) (quiz.QuizRecord, error) {
	row := quizRecordRow{
		ID:          uuid.NewString(),
		UserID:      rec.UserID,
		QuizID:      rec.QuizID,
		Score:       rec.Score,
		Attempts:    1,
		AttemptedAt: rec.AttemptedAt,
	}
	err := repo.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "quiz_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"score":        rec.Score,
			"attempted_at": rec.AttemptedAt,
			"attempts":     gorm.Expr("quiz_records.attempts + 1"),
		}),
	}).Create(&row).Error
	if err != nil {
		return quiz.QuizRecord{}, errors.Wrap(err, "upserting quiz record")
	}
	return repo.GetQuizRecord(ctx, rec.UserID, rec.QuizID)
}

func (repo *quizRepository) GetQuizRecord(ctx context.Context, userID, quizID string) (quiz.QuizRecord, error) {
	var row quizRecordRow
	if err := repo.db.WithContext(ctx).
		First(&row, "user_id = ? AND quiz_id = ?", userID, quizID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return quiz.QuizRecord{}, quiz.ErrRecordNotFound
		}
		return quiz.QuizRecord{}, errors.Wrap(err, "getting quiz record")
	}
	return row.toCore(), nil
}

func (repo *quizRepository) QueryQuizRecords(ctx context.Context, filter quiz.RecordQueryFilter) ([]quiz.QuizRecord, error) {
	q := repo.db.WithContext(ctx).Order("attempted_at DESC")
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.QuizID != "" {
		q = q.Where("quiz_id = ?", filter.QuizID)
	}
	var rows []quizRecordRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "querying quiz records")
	}
	records := make([]quiz.QuizRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.toCore())
	}
	return records, nil
}

func rowFromQuestion(qst quiz.Question) questionRow {
	return questionRow{
		ID:        qst.ID,
		ChapterID: qst.ChapterID,
		Text:      qst.Text,
		Options:   optionsToJSONMap(qst.Options),
		Answer:    qst.Answer,
		Type:      qst.Type,
		Status:    qst.Status,
		CreatedAt: qst.CreatedAt,
		UpdatedAt: qst.UpdatedAt,
	}
}
