package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"

	. "github.com/kipawa/jaribio/apps/api/echo"
	"github.com/kipawa/jaribio/core/quiz"
	"github.com/kipawa/jaribio/core/user"
	testutil "github.com/kipawa/jaribio/tests"
)

// seedQuiz creates a chapter with three questions (answers a, b, c) and a quiz over it.
func seedQuiz(t *testing.T, title string) quiz.Quiz {
	t.Helper()

	cls := testutil.CreateClass(t, catRepo, "Quiz Form "+title, "")
	sub := testutil.CreateSubject(t, catRepo, cls.ID, "Subject "+title)
	chap := testutil.CreateChapter(t, catRepo, sub.ID, "Chapter "+title, 1)
	testutil.CreateQuestion(t, qzRepo, chap.ID, "first question", "a")
	testutil.CreateQuestion(t, qzRepo, chap.ID, "second question", "b")
	testutil.CreateQuestion(t, qzRepo, chap.ID, "third question", "c")
	return testutil.CreateQuiz(t, qzRepo, chap.ID, title)
}

func Test_quizApi_submit(t *testing.T) {
	cache.Flush()
	student := testutil.CreateUser(t, usrRepo, "Quiz Student", "quizstudent", "quizstudent@test.cd", "LePassword", []string{user.RoleStudent}, true)
	token := getToken(t, student)
	qz := seedQuiz(t, "Submit Quiz")

	req, rec := newAuthRequest(http.MethodPost, "/v1/quizzes/"+qz.ID+"/submit", token,
		marchallObj(t, SubmitRequest{UserAnswers: []string{"a", "x", "c"}}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /v1/quizzes/:id/submit code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var resp SubmitResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json.Unmarshal(): %v", err)
	}
	if !resp.Success {
		t.Error("success = false")
	}
	if resp.Score != 2 || resp.CorrectAnswers != 2 || resp.IncorrectAnswers != 1 {
		t.Errorf("score = %d (%d/%d); want 2 (2/1)", resp.Score, resp.CorrectAnswers, resp.IncorrectAnswers)
	}
	if len(resp.Results) != 3 {
		t.Fatalf("results = %d; want 3", len(resp.Results))
	}
	if !resp.Results[0].IsCorrect || resp.Results[1].IsCorrect || !resp.Results[2].IsCorrect {
		t.Errorf("per-question results = %+v", resp.Results)
	}

	// the attempt is recorded
	rec2 := getOwnRecords(t, token)
	if len(rec2) != 1 || rec2[0].QuizID != qz.ID || rec2[0].Score != 2 || rec2[0].Attempts != 1 {
		t.Errorf("records = %+v", rec2)
	}

	// a retake overwrites the score and bumps attempts
	req, rec = newAuthRequest(http.MethodPost, "/v1/quizzes/"+qz.ID+"/submit", token,
		marchallObj(t, SubmitRequest{UserAnswers: []string{"a", "b", "c"}}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("retake code = %v; want %v", rec.Code, http.StatusOK)
	}
	rec2 = getOwnRecords(t, token)
	if len(rec2) != 1 || rec2[0].Score != 3 || rec2[0].Attempts != 2 {
		t.Errorf("records after retake = %+v", rec2)
	}
}

func Test_quizApi_submitErrors(t *testing.T) {
	cache.Flush()
	student := testutil.CreateUser(t, usrRepo, "Err Student", "errstudent", "errstudent@test.cd", "LePassword", []string{user.RoleStudent}, true)
	token := getToken(t, student)
	qz := seedQuiz(t, "Error Quiz")

	// a chapter with no questions cannot be graded
	cls := testutil.CreateClass(t, catRepo, "Empty Form", "")
	sub := testutil.CreateSubject(t, catRepo, cls.ID, "Empty Subject")
	chap := testutil.CreateChapter(t, catRepo, sub.ID, "Empty Chapter", 1)
	emptyQz := testutil.CreateQuiz(t, qzRepo, chap.ID, "Empty Quiz")

	tests := []httpTest{
		{
			name:     "missing token",
			path:     "/v1/quizzes/" + qz.ID + "/submit",
			body:     marchallObj(t, SubmitRequest{UserAnswers: []string{"a", "b", "c"}}),
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken),
		},
		{
			name:     "quiz not found",
			path:     "/v1/quizzes/" + uuid.NewString() + "/submit",
			token:    token,
			body:     marchallObj(t, SubmitRequest{UserAnswers: []string{"a", "b", "c"}}),
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "quiz not found"}),
		},
		{
			name:     "no questions for the chapter",
			path:     "/v1/quizzes/" + emptyQz.ID + "/submit",
			token:    token,
			body:     marchallObj(t, SubmitRequest{UserAnswers: []string{"a"}}),
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "no questions for this chapter"}),
		},
		{
			name:     "answer count mismatch",
			path:     "/v1/quizzes/" + qz.ID + "/submit",
			token:    token,
			body:     marchallObj(t, SubmitRequest{UserAnswers: []string{"a", "b"}}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"user_answers": "expected 3 answers, got 2"}),
		},
		{
			name:     "empty answer sheet",
			path:     "/v1/quizzes/" + qz.ID + "/submit",
			token:    token,
			body:     marchallObj(t, SubmitRequest{}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"user_answers": "this field is required"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	// no record is written on a rejected submission
	if recs := getOwnRecords(t, token); len(recs) != 0 {
		t.Errorf("records = %+v; want none", recs)
	}
}

func Test_quizApi_questionsAreAdminOnly(t *testing.T) {
	cache.Flush()
	student := testutil.CreateUser(t, usrRepo, "Q Student", "qstudent", "qstudent@test.cd", "LePassword", []string{user.RoleStudent}, true)

	req, rec := newAuthRequest(http.MethodGet, "/v1/questions", getToken(t, student))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"})}, rec)
}

func Test_quizApi_queryRecords(t *testing.T) {
	cache.Flush()
	student1 := testutil.CreateUser(t, usrRepo, "Rec One", "recstudent1", "rec1@test.cd", "LePassword", []string{user.RoleStudent}, true)
	student2 := testutil.CreateUser(t, usrRepo, "Rec Two", "recstudent2", "rec2@test.cd", "LePassword", []string{user.RoleStudent}, true)
	admin := testutil.CreateUser(t, usrRepo, "Rec Admin", "recadmin", "recadmin@test.cd", "LePassword", user.AllRoles, true)
	qz := seedQuiz(t, "Records Quiz")

	submit := func(token string) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/quizzes/"+qz.ID+"/submit", token,
			marchallObj(t, SubmitRequest{UserAnswers: []string{"a", "b", "c"}}))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("submit code = %v; want %v", rec.Code, http.StatusOK)
		}
	}
	submit(getToken(t, student1))
	submit(getToken(t, student2))

	// a student only sees their own records, whatever the filter says
	req, rec := newAuthRequest(http.MethodGet, "/v1/quiz-records?user_id="+student2.ID, getToken(t, student1))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /v1/quiz-records code = %v; want %v", rec.Code, http.StatusOK)
	}
	var records []quiz.QuizRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &records); err != nil {
		t.Fatalf("json.Unmarshal(): %v", err)
	}
	if len(records) != 1 || records[0].UserID != student1.ID {
		t.Errorf("student records = %+v", records)
	}

	// an admin can scope to any user
	req, rec = newAuthRequest(http.MethodGet, "/v1/quiz-records?user_id="+student2.ID, getToken(t, admin))
	app.ServeHTTP(rec, req)
	if err := json.Unmarshal(rec.Body.Bytes(), &records); err != nil {
		t.Fatalf("json.Unmarshal(): %v", err)
	}
	if len(records) != 1 || records[0].UserID != student2.ID {
		t.Errorf("admin-scoped records = %+v", records)
	}
}

// Filtered listings are cached under their full request URI; a create must
// drop the chapter-scoped variant too, not just the bare listing key.
func Test_quizApi_filteredListingInvalidation(t *testing.T) {
	cache.Flush()
	admin := testutil.CreateUser(t, usrRepo, "Filt Admin", "filtadmin", "filtadmin@test.cd", "LePassword", user.AllRoles, true)
	token := getToken(t, admin)
	qz := seedQuiz(t, "Filtered Quiz")

	listQuestions := func() []quiz.Question {
		req, rec := newAuthRequest(http.MethodGet, "/v1/questions?chapter_id="+qz.ChapterID, token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("GET /v1/questions?chapter_id= code = %v; want %v", rec.Code, http.StatusOK)
		}
		var qsts []quiz.Question
		if err := json.Unmarshal(rec.Body.Bytes(), &qsts); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		return qsts
	}

	// prime the chapter-scoped listing
	if qsts := listQuestions(); len(qsts) != 3 {
		t.Fatalf("questions = %d; want 3", len(qsts))
	}

	req, rec := newAuthRequest(http.MethodPost, "/v1/questions", token, marchallObj(t, quiz.NewQuestion{
		ChapterID: qz.ChapterID,
		Text:      "fourth question",
		Options:   map[string]string{"a": "1", "b": "2", "c": "3", "d": "4"},
		Answer:    "d",
	}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /v1/questions code = %v; want %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
	}

	if qsts := listQuestions(); len(qsts) != 4 {
		t.Errorf("questions after create = %d; want 4 (stale cache entry served)", len(qsts))
	}

	// same for the chapter-scoped quiz listing
	req, rec = newAuthRequest(http.MethodGet, "/v1/quizzes?chapter_id="+qz.ChapterID, token)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /v1/quizzes?chapter_id= code = %v; want %v", rec.Code, http.StatusOK)
	}

	req, rec = newAuthRequest(http.MethodPost, "/v1/quizzes", token, marchallObj(t, quiz.NewQuiz{
		ChapterID: qz.ChapterID,
		Title:     "Second Filtered Quiz",
	}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /v1/quizzes code = %v; want %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
	}

	req, rec = newAuthRequest(http.MethodGet, "/v1/quizzes?chapter_id="+qz.ChapterID, token)
	app.ServeHTTP(rec, req)
	var quizzes []quiz.Quiz
	if err := json.Unmarshal(rec.Body.Bytes(), &quizzes); err != nil {
		t.Fatalf("json.Unmarshal(): %v", err)
	}
	if len(quizzes) != 2 {
		t.Errorf("quizzes after create = %d; want 2 (stale cache entry served)", len(quizzes))
	}
}

func getOwnRecords(t *testing.T, token string) []quiz.QuizRecord {
	t.Helper()

	req, rec := newAuthRequest(http.MethodGet, "/v1/quiz-records", token)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /v1/quiz-records code = %v; want %v", rec.Code, http.StatusOK)
	}
	var records []quiz.QuizRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &records); err != nil {
		t.Fatalf("json.Unmarshal(): %v", err)
	}
	return records
}
