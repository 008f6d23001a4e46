package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/kipawa/jaribio/core/quiz"
)

type quizRepository struct {
	db *DB
}

var _ quiz.Repository = (*quizRepository)(nil)

func NewQuizRepository(db *DB) *quizRepository {
	return &quizRepository{db: db}
}

// Questions

func (repo *quizRepository) CreateQuestion(_ context.Context, qst quiz.Question) (quiz.Question, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	return repo.createQuestion(qst), nil
}

func (repo *quizRepository) CreateQuestions(_ context.Context, qsts []quiz.Question) ([]quiz.Question, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	created := make([]quiz.Question, 0, len(qsts))
	for _, qst := range qsts {
		created = append(created, repo.createQuestion(qst))
	}
	return created, nil
}

// createQuestion inserts one question. Callers must hold the lock.
func (repo *quizRepository) createQuestion(qst quiz.Question) quiz.Question {
	qst.ID = uuid.NewString()
	repo.db.questions[qst.ID] = &qst
	repo.db.nextSeq(qst.ID)
	return qst
}

func (repo *quizRepository) GetQuestion(_ context.Context, id string) (quiz.Question, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if qst, ok := repo.db.questions[id]; ok {
		return *qst, nil
	}
	return quiz.Question{}, quiz.ErrQuestionNotFound
}

func (repo *quizRepository) QueryQuestionsByChapter(_ context.Context, chapterID string) ([]quiz.Question, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	qsts := make([]quiz.Question, 0)
	for _, qst := range repo.db.questions {
		if qst.ChapterID == chapterID {
			qsts = append(qsts, *qst)
		}
	}
	// creation order; answer vectors are indexed by it
	sort.Slice(qsts, func(i, j int) bool {
		return repo.db.seqs[qsts[i].ID] < repo.db.seqs[qsts[j].ID]
	})
	return qsts, nil
}

func (repo *quizRepository) UpdateQuestion(_ context.Context, qst quiz.Question) (quiz.Question, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	orig, ok := repo.db.questions[qst.ID]
	if !ok {
		return quiz.Question{}, quiz.ErrQuestionNotFound
	}
	if qst.Text != "" {
		orig.Text = qst.Text
	}
	if qst.Options != nil {
		orig.Options = qst.Options
	}
	if qst.Answer != "" {
		orig.Answer = qst.Answer
	}
	if qst.Type != "" {
		orig.Type = qst.Type
	}
	if qst.Status != "" {
		orig.Status = qst.Status
	}
	orig.UpdatedAt = qst.UpdatedAt
	return *orig, nil
}

func (repo *quizRepository) DeleteQuestion(_ context.Context, id string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.questions[id]; !ok {
		return quiz.ErrQuestionNotFound
	}
	delete(repo.db.questions, id)
	return nil
}

// Quizzes

func (repo *quizRepository) CreateQuiz(_ context.Context, qz quiz.Quiz) (quiz.Quiz, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	qz.ID = uuid.NewString()
	repo.db.quizzes[qz.ID] = &qz
	repo.db.nextSeq(qz.ID)
	return qz, nil
}

func (repo *quizRepository) GetQuiz(_ context.Context, id string) (quiz.Quiz, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if qz, ok := repo.db.quizzes[id]; ok {
		return *qz, nil
	}
	return quiz.Quiz{}, quiz.ErrQuizNotFound
}

func (repo *quizRepository) QueryQuizzes(_ context.Context, chapterID string) ([]quiz.Quiz, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	quizzes := make([]quiz.Quiz, 0, len(repo.db.quizzes))
	for _, qz := range repo.db.quizzes {
		if chapterID != "" && qz.ChapterID != chapterID {
			continue
		}
		quizzes = append(quizzes, *qz)
	}
	sort.Slice(quizzes, func(i, j int) bool {
		return repo.db.seqs[quizzes[i].ID] < repo.db.seqs[quizzes[j].ID]
	})
	return quizzes, nil
}

func (repo *quizRepository) UpdateQuiz(_ context.Context, qz quiz.Quiz) (quiz.Quiz, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	orig, ok := repo.db.quizzes[qz.ID]
	if !ok {
		return quiz.Quiz{}, quiz.ErrQuizNotFound
	}
	if qz.Title != "" {
		orig.Title = qz.Title
	}
	if qz.Status != "" {
		orig.Status = qz.Status
	}
	orig.UpdatedAt = qz.UpdatedAt
	return *orig, nil
}

func (repo *quizRepository) DeleteQuiz(_ context.Context, id string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.quizzes[id]; !ok {
		return quiz.ErrQuizNotFound
	}
	delete(repo.db.quizzes, id)
	return nil
}

func (repo *quizRepository) CountQuizzes(_ context.Context) (int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return len(repo.db.quizzes), nil
}

// Records

// UpsertQuizRecord performs the insert-or-increment under one lock hold, the
// in-memory equivalent of the SQL upsert.
func (repo *quizRepository) UpsertQuizRecord(_ context.Context, rec quiz.QuizRecord) (quiz.QuizRecord, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	key := recordKey(rec.UserID, rec.QuizID)
	if orig, ok := repo.db.records[key]; ok {
		orig.Score = rec.Score
		orig.AttemptedAt = rec.AttemptedAt
		orig.Attempts++
		return *orig, nil
	}

	rec.ID = uuid.NewString()
	rec.Attempts = 1
	repo.db.records[key] = &rec
	repo.db.nextSeq(rec.ID)
	return rec, nil
}

func (repo *quizRepository) GetQuizRecord(_ context.Context, userID, quizID string) (quiz.QuizRecord, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if rec, ok := repo.db.records[recordKey(userID, quizID)]; ok {
		return *rec, nil
	}
	return quiz.QuizRecord{}, quiz.ErrRecordNotFound
}

func (repo *quizRepository) QueryQuizRecords(_ context.Context, filter quiz.RecordQueryFilter) ([]quiz.QuizRecord, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	records := make([]quiz.QuizRecord, 0)
	for _, rec := range repo.db.records {
		if filter.UserID != "" && rec.UserID != filter.UserID {
			continue
		}
		if filter.QuizID != "" && rec.QuizID != filter.QuizID {
			continue
		}
		records = append(records, *rec)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].AttemptedAt.After(records[j].AttemptedAt)
	})
	return records, nil
}
