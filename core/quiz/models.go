package quiz

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/kipawa/jaribio/core"
)

// Question statuses
const (
	QuestionStatusActive   = "active"
	QuestionStatusInactive = "inactive"
)

// Quiz statuses
const (
	QuizStatusDraft     = "draft"
	QuizStatusPublished = "published"
)

// AnswerKeys are the option keys a question's answer must be one of.
var AnswerKeys = []string{"a", "b", "c", "d"}

// Question belongs to a Chapter. Options maps each answer key (a-d) to its
// display text; Answer holds the correct key.
type Question struct {
	ID        string            `json:"id"`
	ChapterID string            `json:"chapter_id"`
	Text      string            `json:"text"`
	Options   map[string]string `json:"options"`
	Answer    string            `json:"answer"`
	Type      string            `json:"type,omitempty"`
	Status    string            `json:"status"`
	CreatedAt time.Time         `json:"created_at"` // UTC
	UpdatedAt time.Time         `json:"updated_at"` // UTC
}

// Quiz is a gradeable assessment over its chapter's question set. Questions
// are not snapshotted at creation time; grading always runs against the
// chapter's current questions.
type Quiz struct {
	ID        string    `json:"id"`
	ChapterID string    `json:"chapter_id"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// QuizRecord is the persisted attempt history for one (user, quiz) pair.
// Score reflects the latest attempt only; Attempts counts every accepted
// submission, starting at 1.
type QuizRecord struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	QuizID      string    `json:"quiz_id"`
	Score       int       `json:"score"`
	Attempts    int       `json:"attempts"`
	AttemptedAt time.Time `json:"attempted_at"` // UTC
}

type NewQuestion struct {
	ChapterID string            `json:"chapter_id" validate:"required,objectid"`
	Text      string            `json:"text" validate:"required"`
	Options   map[string]string `json:"options" validate:"required,answeroptions"`
	Answer    string            `json:"answer" validate:"required,answerkey"`
	Type      string            `json:"type"`
}

func (nq *NewQuestion) Validate(validate *validator.Validate) error {
	nq.Text = core.CleanString(nq.Text)
	return validate.Struct(nq)
}

// NewQuestionBatch creates several questions under one chapter at once.
type NewQuestionBatch struct {
	ChapterID string            `json:"chapter_id" validate:"required,objectid"`
	Questions []NewQuestionItem `json:"questions" validate:"required,min=1,dive"`
}

type NewQuestionItem struct {
	Text    string            `json:"text" validate:"required"`
	Options map[string]string `json:"options" validate:"required,answeroptions"`
	Answer  string            `json:"answer" validate:"required,answerkey"`
	Type    string            `json:"type"`
}

func (nb *NewQuestionBatch) Validate(validate *validator.Validate) error {
	for i := range nb.Questions {
		nb.Questions[i].Text = core.CleanString(nb.Questions[i].Text)
	}
	return validate.Struct(nb)
}

type UpdateQuestion struct {
	Text    string            `json:"text"`
	Options map[string]string `json:"options" validate:"omitempty,answeroptions"`
	Answer  string            `json:"answer" validate:"omitempty,answerkey"`
	Type    string            `json:"type"`
	Status  string            `json:"status" validate:"omitempty,oneof=active inactive"`
}

func (uq *UpdateQuestion) Validate(validate *validator.Validate) error {
	uq.Text = core.CleanString(uq.Text)
	return validate.Struct(uq)
}

type NewQuiz struct {
	ChapterID string `json:"chapter_id" validate:"required,objectid"`
	Title     string `json:"title" validate:"required"`
}

func (nq *NewQuiz) Validate(validate *validator.Validate) error {
	nq.Title = core.CleanString(nq.Title)
	return validate.Struct(nq)
}

type UpdateQuiz struct {
	Title  string `json:"title"`
	Status string `json:"status" validate:"omitempty,oneof=draft published"`
}

func (uq *UpdateQuiz) Validate(validate *validator.Validate) error {
	uq.Title = core.CleanString(uq.Title)
	return validate.Struct(uq)
}

// SubmitQuiz is a user's answer sheet for one quiz. UserAnswers is ordered to
// match the chapter's questions in creation order.
type SubmitQuiz struct {
	UserID      string   `json:"user_id" validate:"required,objectid"`
	QuizID      string   `json:"quiz_id" validate:"required,objectid"`
	UserAnswers []string `json:"user_answers" validate:"required,min=1"`
}

func (sq *SubmitQuiz) Validate(validate *validator.Validate) error {
	return validate.Struct(sq)
}

// QuestionResult is the per-question breakdown returned for one submission.
type QuestionResult struct {
	Question      string            `json:"question"`
	Options       map[string]string `json:"options"`
	UserAnswer    string            `json:"user_answer"`
	CorrectAnswer string            `json:"correct_answer"`
	IsCorrect     bool              `json:"is_correct"`
}

// SubmissionResult is the outcome of grading one submission.
type SubmissionResult struct {
	Score            int              `json:"score"`
	CorrectAnswers   int              `json:"correct_answers"`
	IncorrectAnswers int              `json:"incorrect_answers"`
	Results          []QuestionResult `json:"results"`
}

// RecordQueryFilter selects quiz records by user and/or quiz.
type RecordQueryFilter struct {
	UserID string `query:"user_id"`
	QuizID string `query:"quiz_id"`
}
