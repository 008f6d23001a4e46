package quiz_test

import (
	"context"
	"testing"

	"github.com/kipawa/jaribio/core"
	"github.com/kipawa/jaribio/core/quiz"
	inmemdb "github.com/kipawa/jaribio/storage/database/inmem"
)

func setup(t *testing.T) (*quiz.Service, quiz.Repository) {
	t.Helper()
	db := inmemdb.NewDB()
	repo := inmemdb.NewQuizRepository(db)
	return quiz.NewService(repo), repo
}

// seedChapterQuestions creates 3 questions under chapterID with correct
// answers a, b, c (in creation order) and a quiz over that chapter.
func seedChapterQuestions(t *testing.T, svc *quiz.Service, chapterID string) quiz.Quiz {
	t.Helper()
	ctx := context.Background()

	opts := map[string]string{"a": "opt A", "b": "opt B", "c": "opt C", "d": "opt D"}
	for _, ans := range []string{"a", "b", "c"} {
		_, err := svc.CreateQuestion(ctx, quiz.NewQuestion{
			ChapterID: chapterID,
			Text:      "question " + ans,
			Options:   opts,
			Answer:    ans,
		})
		if err != nil {
			t.Fatalf("CreateQuestion() error = %v", err)
		}
	}

	qz, err := svc.CreateQuiz(ctx, quiz.NewQuiz{ChapterID: chapterID, Title: "Chapter Quiz"})
	if err != nil {
		t.Fatalf("CreateQuiz() error = %v", err)
	}
	return qz
}

func TestSubmitGrades(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()
	chapterID := "11111111-1111-1111-1111-111111111111"
	qz := seedChapterQuestions(t, svc, chapterID)

	res, err := svc.Submit(ctx, quiz.SubmitQuiz{
		UserID:      "22222222-2222-2222-2222-222222222222",
		QuizID:      qz.ID,
		UserAnswers: []string{"a", "x", "c"},
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if res.Score != 2 {
		t.Errorf("Score = %d, want 2", res.Score)
	}
	if res.CorrectAnswers != 2 {
		t.Errorf("CorrectAnswers = %d, want 2", res.CorrectAnswers)
	}
	if res.IncorrectAnswers != 1 {
		t.Errorf("IncorrectAnswers = %d, want 1", res.IncorrectAnswers)
	}
	if len(res.Results) != 3 {
		t.Fatalf("len(Results) = %d, want 3", len(res.Results))
	}
	wantCorrect := []bool{true, false, true}
	for i, qr := range res.Results {
		if qr.IsCorrect != wantCorrect[i] {
			t.Errorf("Results[%d].IsCorrect = %v, want %v", i, qr.IsCorrect, wantCorrect[i])
		}
	}
	if res.Results[1].UserAnswer != "x" || res.Results[1].CorrectAnswer != "b" {
		t.Errorf("Results[1] = %+v, want user answer x / correct answer b", res.Results[1])
	}

	rec, err := svc.GetRecord(ctx, "22222222-2222-2222-2222-222222222222", qz.ID)
	if err != nil {
		t.Fatalf("GetRecord() error = %v", err)
	}
	if rec.Attempts != 1 {
		t.Errorf("Attempts = %d, want 1", rec.Attempts)
	}
	if rec.Score != 2 {
		t.Errorf("record Score = %d, want 2", rec.Score)
	}
}

func TestSubmitIsDeterministic(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()
	qz := seedChapterQuestions(t, svc, "11111111-1111-1111-1111-111111111111")

	sq := quiz.SubmitQuiz{
		UserID:      "22222222-2222-2222-2222-222222222222",
		QuizID:      qz.ID,
		UserAnswers: []string{"a", "x", "c"},
	}

	first, err := svc.Submit(ctx, sq)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	for i := 0; i < 3; i++ {
		res, err := svc.Submit(ctx, sq)
		if err != nil {
			t.Fatalf("Submit() #%d error = %v", i+2, err)
		}
		if res.Score != first.Score ||
			res.CorrectAnswers != first.CorrectAnswers ||
			res.IncorrectAnswers != first.IncorrectAnswers {
			t.Errorf("Submit() #%d = %+v, want %+v", i+2, res, first)
		}
		for j := range res.Results {
			if res.Results[j].IsCorrect != first.Results[j].IsCorrect {
				t.Errorf("Submit() #%d Results[%d].IsCorrect changed", i+2, j)
			}
		}
	}
}

func TestSubmitIncrementsAttempts(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()
	qz := seedChapterQuestions(t, svc, "11111111-1111-1111-1111-111111111111")
	userID := "22222222-2222-2222-2222-222222222222"

	sq := quiz.SubmitQuiz{UserID: userID, QuizID: qz.ID, UserAnswers: []string{"a", "x", "c"}}
	for i := 1; i <= 3; i++ {
		if _, err := svc.Submit(ctx, sq); err != nil {
			t.Fatalf("Submit() #%d error = %v", i, err)
		}
		rec, err := svc.GetRecord(ctx, userID, qz.ID)
		if err != nil {
			t.Fatalf("GetRecord() error = %v", err)
		}
		if rec.Attempts != i {
			t.Errorf("Attempts after submission #%d = %d, want %d", i, rec.Attempts, i)
		}
	}

	// score reflects the last attempt, not the sum
	if _, err := svc.Submit(ctx, quiz.SubmitQuiz{UserID: userID, QuizID: qz.ID, UserAnswers: []string{"a", "b", "c"}}); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	rec, err := svc.GetRecord(ctx, userID, qz.ID)
	if err != nil {
		t.Fatalf("GetRecord() error = %v", err)
	}
	if rec.Score != 3 {
		t.Errorf("Score = %d, want 3", rec.Score)
	}
	if rec.Attempts != 4 {
		t.Errorf("Attempts = %d, want 4", rec.Attempts)
	}
}

func TestSubmitAnswerLengthMismatch(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()
	qz := seedChapterQuestions(t, svc, "11111111-1111-1111-1111-111111111111")
	userID := "22222222-2222-2222-2222-222222222222"

	_, err := svc.Submit(ctx, quiz.SubmitQuiz{UserID: userID, QuizID: qz.ID, UserAnswers: []string{"a", "b"}})
	if _, ok := err.(*core.ValidationError); !ok {
		t.Fatalf("Submit() error = %v, want *core.ValidationError", err)
	}

	// no record was written
	if _, err = svc.GetRecord(ctx, userID, qz.ID); err != quiz.ErrRecordNotFound {
		t.Errorf("GetRecord() error = %v, want ErrRecordNotFound", err)
	}
}

func TestSubmitQuizNotFound(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()
	userID := "22222222-2222-2222-2222-222222222222"
	quizID := "33333333-3333-3333-3333-333333333333"

	_, err := svc.Submit(ctx, quiz.SubmitQuiz{UserID: userID, QuizID: quizID, UserAnswers: []string{"a"}})
	if err != quiz.ErrQuizNotFound {
		t.Fatalf("Submit() error = %v, want ErrQuizNotFound", err)
	}
	if _, err = svc.GetRecord(ctx, userID, quizID); err != quiz.ErrRecordNotFound {
		t.Errorf("GetRecord() error = %v, want ErrRecordNotFound", err)
	}
}

func TestSubmitEmptyChapter(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	qz, err := svc.CreateQuiz(ctx, quiz.NewQuiz{
		ChapterID: "11111111-1111-1111-1111-111111111111",
		Title:     "Empty Chapter Quiz",
	})
	if err != nil {
		t.Fatalf("CreateQuiz() error = %v", err)
	}

	userID := "22222222-2222-2222-2222-222222222222"
	_, err = svc.Submit(ctx, quiz.SubmitQuiz{UserID: userID, QuizID: qz.ID, UserAnswers: []string{"a"}})
	if err != quiz.ErrNoQuestions {
		t.Fatalf("Submit() error = %v, want ErrNoQuestions", err)
	}
	if _, err = svc.GetRecord(ctx, userID, qz.ID); err != quiz.ErrRecordNotFound {
		t.Errorf("GetRecord() error = %v, want ErrRecordNotFound", err)
	}
}

func TestSubmitCaseSensitiveMatch(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()
	qz := seedChapterQuestions(t, svc, "11111111-1111-1111-1111-111111111111")

	res, err := svc.Submit(ctx, quiz.SubmitQuiz{
		UserID:      "22222222-2222-2222-2222-222222222222",
		QuizID:      qz.ID,
		UserAnswers: []string{"A", "B", "C"}, // wrong case
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if res.Score != 0 {
		t.Errorf("Score = %d, want 0 (answer match is case-sensitive)", res.Score)
	}
}

func TestSubmitGradesAgainstCurrentQuestions(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()
	qz := seedChapterQuestions(t, svc, "11111111-1111-1111-1111-111111111111")
	userID := "22222222-2222-2222-2222-222222222222"

	sq := quiz.SubmitQuiz{UserID: userID, QuizID: qz.ID, UserAnswers: []string{"a", "b", "c"}}
	res, err := svc.Submit(ctx, sq)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if res.Score != 3 {
		t.Fatalf("Score = %d, want 3", res.Score)
	}

	// edit the first question's answer; the same sheet now scores lower
	qsts, err := svc.QueryQuestionsByChapter(ctx, qz.ChapterID)
	if err != nil {
		t.Fatalf("QueryQuestionsByChapter() error = %v", err)
	}
	if _, err = svc.UpdateQuestion(ctx, qsts[0].ID, quiz.UpdateQuestion{Answer: "d"}); err != nil {
		t.Fatalf("UpdateQuestion() error = %v", err)
	}

	res, err = svc.Submit(ctx, sq)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if res.Score != 2 {
		t.Errorf("Score after question edit = %d, want 2", res.Score)
	}
}

func TestCreateQuestionBatch(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()
	chapterID := "11111111-1111-1111-1111-111111111111"

	opts := map[string]string{"a": "1", "b": "2", "c": "3", "d": "4"}
	created, err := svc.CreateQuestionBatch(ctx, quiz.NewQuestionBatch{
		ChapterID: chapterID,
		Questions: []quiz.NewQuestionItem{
			{Text: "first", Options: opts, Answer: "a"},
			{Text: "second", Options: opts, Answer: "b"},
		},
	})
	if err != nil {
		t.Fatalf("CreateQuestionBatch() error = %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("len(created) = %d, want 2", len(created))
	}

	qsts, err := svc.QueryQuestionsByChapter(ctx, chapterID)
	if err != nil {
		t.Fatalf("QueryQuestionsByChapter() error = %v", err)
	}
	if len(qsts) != 2 {
		t.Fatalf("len(questions) = %d, want 2", len(qsts))
	}
	// batch preserves creation order
	if qsts[0].Text != "first" || qsts[1].Text != "second" {
		t.Errorf("questions out of order: %q, %q", qsts[0].Text, qsts[1].Text)
	}
}
