package quiz

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kipawa/jaribio/core"
)

var (
	// errors
	ErrQuizNotFound     = errors.New("quiz not found")
	ErrQuestionNotFound = errors.New("question not found")
	ErrNoQuestions      = errors.New("no questions for this chapter")
	ErrRecordNotFound   = errors.New("quiz record not found")
)

type (
	Repository interface {
		CreateQuestion(ctx context.Context, qst Question) (Question, error)
		CreateQuestions(ctx context.Context, qsts []Question) ([]Question, error)
		GetQuestion(ctx context.Context, id string) (Question, error)
		// QueryQuestionsByChapter returns the chapter's questions in creation
		// order. This is the order user answer vectors are indexed by.
		QueryQuestionsByChapter(ctx context.Context, chapterID string) ([]Question, error)
		UpdateQuestion(ctx context.Context, qst Question) (Question, error)
		DeleteQuestion(ctx context.Context, id string) error

		CreateQuiz(ctx context.Context, qz Quiz) (Quiz, error)
		GetQuiz(ctx context.Context, id string) (Quiz, error)
		// QueryQuizzes lists all quizzes, scoped to a chapter when chapterID is set.
		QueryQuizzes(ctx context.Context, chapterID string) ([]Quiz, error)
		UpdateQuiz(ctx context.Context, qz Quiz) (Quiz, error)
		DeleteQuiz(ctx context.Context, id string) error
		CountQuizzes(ctx context.Context) (int, error)

		// UpsertQuizRecord atomically creates or refreshes the record for
		// (UserID, QuizID): Score and AttemptedAt are overwritten, Attempts is
		// incremented in-store (starting at 1). Implementations must not
		// read-then-write.
		UpsertQuizRecord(ctx context.Context, rec QuizRecord) (QuizRecord, error)
		GetQuizRecord(ctx context.Context, userID, quizID string) (QuizRecord, error)
		QueryQuizRecords(ctx context.Context, filter RecordQueryFilter) ([]QuizRecord, error)
	}

	ServiceInterface interface {
		CreateQuestion(ctx context.Context, nq NewQuestion) (Question, error)
		CreateQuestionBatch(ctx context.Context, nb NewQuestionBatch) ([]Question, error)
		GetQuestion(ctx context.Context, id string) (Question, error)
		QueryQuestionsByChapter(ctx context.Context, chapterID string) ([]Question, error)
		UpdateQuestion(ctx context.Context, id string, uq UpdateQuestion) (Question, error)
		DeleteQuestion(ctx context.Context, id string) error

		CreateQuiz(ctx context.Context, nq NewQuiz) (Quiz, error)
		GetQuiz(ctx context.Context, id string) (Quiz, error)
		QueryQuizzes(ctx context.Context, chapterID string) ([]Quiz, error)
		UpdateQuiz(ctx context.Context, id string, uq UpdateQuiz) (Quiz, error)
		DeleteQuiz(ctx context.Context, id string) error

		Submit(ctx context.Context, sq SubmitQuiz) (SubmissionResult, error)
		GetRecord(ctx context.Context, userID, quizID string) (QuizRecord, error)
		QueryRecords(ctx context.Context, filter RecordQueryFilter) ([]QuizRecord, error)
	}

	Service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) CreateQuestion(ctx context.Context, nq NewQuestion) (Question, error) {
	now := time.Now().UTC()
	return svc.repo.CreateQuestion(ctx, Question{
		ChapterID: nq.ChapterID,
		Text:      nq.Text,
		Options:   nq.Options,
		Answer:    nq.Answer,
		Type:      nq.Type,
		Status:    QuestionStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *Service) CreateQuestionBatch(ctx context.Context, nb NewQuestionBatch) ([]Question, error) {
	now := time.Now().UTC()
	qsts := make([]Question, 0, len(nb.Questions))
	for _, item := range nb.Questions {
		qsts = append(qsts, Question{
			ChapterID: nb.ChapterID,
			Text:      item.Text,
			Options:   item.Options,
			Answer:    item.Answer,
			Type:      item.Type,
			Status:    QuestionStatusActive,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	return svc.repo.CreateQuestions(ctx, qsts)
}

func (svc *Service) GetQuestion(ctx context.Context, id string) (Question, error) {
	return svc.repo.GetQuestion(ctx, id)
}

func (svc *Service) QueryQuestionsByChapter(ctx context.Context, chapterID string) ([]Question, error) {
	return svc.repo.QueryQuestionsByChapter(ctx, chapterID)
}

func (svc *Service) UpdateQuestion(ctx context.Context, id string, uq UpdateQuestion) (Question, error) {
	return svc.repo.UpdateQuestion(ctx, Question{
		ID:        id,
		Text:      uq.Text,
		Options:   uq.Options,
		Answer:    uq.Answer,
		Type:      uq.Type,
		Status:    uq.Status,
		UpdatedAt: time.Now().UTC(),
	})
}

func (svc *Service) DeleteQuestion(ctx context.Context, id string) error {
	return svc.repo.DeleteQuestion(ctx, id)
}

func (svc *Service) CreateQuiz(ctx context.Context, nq NewQuiz) (Quiz, error) {
	now := time.Now().UTC()
	return svc.repo.CreateQuiz(ctx, Quiz{
		ChapterID: nq.ChapterID,
		Title:     nq.Title,
		Status:    QuizStatusPublished,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *Service) GetQuiz(ctx context.Context, id string) (Quiz, error) {
	return svc.repo.GetQuiz(ctx, id)
}

func (svc *Service) QueryQuizzes(ctx context.Context, chapterID string) ([]Quiz, error) {
	return svc.repo.QueryQuizzes(ctx, chapterID)
}

func (svc *Service) UpdateQuiz(ctx context.Context, id string, uq UpdateQuiz) (Quiz, error) {
	return svc.repo.UpdateQuiz(ctx, Quiz{
		ID:        id,
		Title:     uq.Title,
		Status:    uq.Status,
		UpdatedAt: time.Now().UTC(),
	})
}

func (svc *Service) DeleteQuiz(ctx context.Context, id string) error {
	return svc.repo.DeleteQuiz(ctx, id)
}

// Submit grades a user's answer sheet against the quiz chapter's current
// question set and upserts the user's attempt record.
//
// Grading is deterministic: answers are compared to the stored correct keys
// with an exact, case-sensitive match. The per-question breakdown is returned
// to the caller but only the aggregate score is persisted. Any failure before
// the upsert leaves the store untouched.
func (svc *Service) Submit(ctx context.Context, sq SubmitQuiz) (SubmissionResult, error) {
	qz, err := svc.repo.GetQuiz(ctx, sq.QuizID)
	if err != nil {
		return SubmissionResult{}, err
	}

	qsts, err := svc.repo.QueryQuestionsByChapter(ctx, qz.ChapterID)
	if err != nil {
		return SubmissionResult{}, err
	}
	if len(qsts) == 0 {
		return SubmissionResult{}, ErrNoQuestions
	}

	if len(sq.UserAnswers) != len(qsts) {
		return SubmissionResult{}, core.NewValidationError(
			fmt.Errorf("expected %d answers, got %d", len(qsts), len(sq.UserAnswers)),
			core.FieldError{
				Field: "user_answers",
				Error: fmt.Sprintf("expected %d answers, got %d", len(qsts), len(sq.UserAnswers)),
			},
		)
	}

	res := SubmissionResult{Results: make([]QuestionResult, 0, len(qsts))}
	for i, qst := range qsts {
		ans := sq.UserAnswers[i]
		correct := ans == qst.Answer
		if correct {
			res.CorrectAnswers++
		} else {
			res.IncorrectAnswers++
		}
		res.Results = append(res.Results, QuestionResult{
			Question:      qst.Text,
			Options:       qst.Options,
			UserAnswer:    ans,
			CorrectAnswer: qst.Answer,
			IsCorrect:     correct,
		})
	}
	res.Score = res.CorrectAnswers

	if _, err = svc.repo.UpsertQuizRecord(ctx, QuizRecord{
		UserID:      sq.UserID,
		QuizID:      sq.QuizID,
		Score:       res.Score,
		AttemptedAt: time.Now().UTC(),
	}); err != nil {
		return SubmissionResult{}, err
	}
	return res, nil
}

func (svc *Service) GetRecord(ctx context.Context, userID, quizID string) (QuizRecord, error) {
	return svc.repo.GetQuizRecord(ctx, userID, quizID)
}

func (svc *Service) QueryRecords(ctx context.Context, filter RecordQueryFilter) ([]QuizRecord, error) {
	return svc.repo.QueryQuizRecords(ctx, filter)
}
