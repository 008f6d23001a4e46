package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/kipawa/jaribio/core/catalog"
	"github.com/kipawa/jaribio/core/quiz"
	"github.com/kipawa/jaribio/core/user"
)

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		IsActive:  &isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateClass(t *testing.T, repo catalog.Repository, name, section string) catalog.Class {
	t.Helper()

	now := time.Now().UTC()
	cls, err := repo.CreateClass(context.Background(), catalog.Class{
		Name:      name,
		Section:   section,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateClass() failed: %v", err)
	}
	return cls
}

func CreateSubject(t *testing.T, repo catalog.Repository, classID, name string) catalog.Subject {
	t.Helper()

	now := time.Now().UTC()
	sub, err := repo.CreateSubject(context.Background(), catalog.Subject{
		ClassID:   classID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateSubject() failed: %v", err)
	}
	return sub
}

func CreateChapter(t *testing.T, repo catalog.Repository, subjectID, name string, number int) catalog.Chapter {
	t.Helper()

	now := time.Now().UTC()
	chap, err := repo.CreateChapter(context.Background(), catalog.Chapter{
		SubjectID: subjectID,
		Name:      name,
		Number:    number,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateChapter() failed: %v", err)
	}
	return chap
}

func CreateQuestion(t *testing.T, repo quiz.Repository, chapterID, text, answer string) quiz.Question {
	t.Helper()

	now := time.Now().UTC()
	qst, err := repo.CreateQuestion(context.Background(), quiz.Question{
		ChapterID: chapterID,
		Text:      text,
		Options:   map[string]string{"a": "option a", "b": "option b", "c": "option c", "d": "option d"},
		Answer:    answer,
		Type:      "multiple_choice",
		Status:    quiz.QuestionStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateQuestion() failed: %v", err)
	}
	return qst
}

func CreateQuiz(t *testing.T, repo quiz.Repository, chapterID, title string) quiz.Quiz {
	t.Helper()

	now := time.Now().UTC()
	qz, err := repo.CreateQuiz(context.Background(), quiz.Quiz{
		ChapterID: chapterID,
		Title:     title,
		Status:    quiz.QuizStatusPublished,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateQuiz() failed: %v", err)
	}
	return qz
}
