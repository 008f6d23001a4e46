package database

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"github.com/kipawa/jaribio/core/catalog"
	"github.com/kipawa/jaribio/core/quiz"
	"github.com/kipawa/jaribio/core/report"
	"github.com/kipawa/jaribio/core/user"
)

// Row models own the schema; the core packages never see gorm tags.

type userRow struct {
	ID           string `gorm:"type:uuid;primaryKey"`
	Name         string
	Username     string `gorm:"uniqueIndex"`
	Email        string `gorm:"uniqueIndex"`
	Mobile       string
	ClassID      string `gorm:"index"`
	IsActive     bool
	Roles        datatypes.JSON
	PasswordHash []byte
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastLogin    time.Time
}

func (userRow) TableName() string { return "users" }

type categoryRow struct {
	ID          string `gorm:"type:uuid;primaryKey"`
	Name        string `gorm:"uniqueIndex"`
	Description string
	ImageURL    string
	Status      string `gorm:"index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (categoryRow) TableName() string { return "categories" }

func (r categoryRow) toCore() catalog.Category {
	return catalog.Category{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		ImageURL:    r.ImageURL,
		Status:      r.Status,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

type classRow struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	Name      string
	Section   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (classRow) TableName() string { return "classes" }

func (r classRow) toCore() catalog.Class {
	return catalog.Class{
		ID:        r.ID,
		Name:      r.Name,
		Section:   r.Section,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type subjectRow struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	ClassID   string `gorm:"index"`
	Name      string
	IconURL   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (subjectRow) TableName() string { return "subjects" }

func (r subjectRow) toCore() catalog.Subject {
	return catalog.Subject{
		ID:        r.ID,
		ClassID:   r.ClassID,
		Name:      r.Name,
		IconURL:   r.IconURL,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type chapterRow struct {
	ID         string `gorm:"type:uuid;primaryKey"`
	SubjectID  string `gorm:"index"`
	Name       string
	Number     int
	ContentURL string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (chapterRow) TableName() string { return "chapters" }

func (r chapterRow) toCore() catalog.Chapter {
	return catalog.Chapter{
		ID:         r.ID,
		SubjectID:  r.SubjectID,
		Name:       r.Name,
		Number:     r.Number,
		ContentURL: r.ContentURL,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

type questionRow struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	ChapterID string `gorm:"index"`
	Text      string
	Options   datatypes.JSONMap
	Answer    string
	Type      string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (questionRow) TableName() string { return "questions" }

func (r questionRow) toCore() quiz.Question {
	opts := make(map[string]string, len(r.Options))
	for k, v := range r.Options {
		if s, ok := v.(string); ok {
			opts[k] = s
		}
	}
	return quiz.Question{
		ID:        r.ID,
		ChapterID: r.ChapterID,
		Text:      r.Text,
		Options:   opts,
		Answer:    r.Answer,
		Type:      r.Type,
		Status:    r.Status,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func optionsToJSONMap(opts map[string]string) datatypes.JSONMap {
	m := make(datatypes.JSONMap, len(opts))
	for k, v := range opts {
		m[k] = v
	}
	return m
}

type quizRow struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	ChapterID string `gorm:"index"`
	Title     string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (quizRow) TableName() string { return "quizzes" }

func (r quizRow) toCore() quiz.Quiz {
	return quiz.Quiz{
		ID:        r.ID,
		ChapterID: r.ChapterID,
		Title:     r.Title,
		Status:    r.Status,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type quizRecordRow struct {
	ID          string `gorm:"type:uuid;primaryKey"`
	UserID      string `gorm:"uniqueIndex:idx_quiz_records_user_quiz"`
	QuizID      string `gorm:"uniqueIndex:idx_quiz_records_user_quiz"`
	Score       int
	Attempts    int
	AttemptedAt time.Time
}

func (quizRecordRow) TableName() string { return "quiz_records" }

func (r quizRecordRow) toCore() quiz.QuizRecord {
	return quiz.QuizRecord{
		ID:          r.ID,
		UserID:      r.UserID,
		QuizID:      r.QuizID,
		Score:       r.Score,
		Attempts:    r.Attempts,
		AttemptedAt: r.AttemptedAt,
	}
}

type reportRow struct {
	ID            string `gorm:"type:uuid;primaryKey"`
	ReporterID    string `gorm:"index"`
	ReportedID    string
	ReportedModel string
	Reason        string
	Status        string `gorm:"index"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (reportRow) TableName() string { return "reports" }

func (r reportRow) toCore() report.Report {
	return report.Report{
		ID:            r.ID,
		ReporterID:    r.ReporterID,
		ReportedID:    r.ReportedID,
		ReportedModel: r.ReportedModel,
		Reason:        r.Reason,
		Status:        r.Status,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func (r userRow) toCore() (user.User, error) {
	var roles []string
	if len(r.Roles) > 0 {
		if err := json.Unmarshal(r.Roles, &roles); err != nil {
			return user.User{}, err
		}
	}
	isActive := r.IsActive
	return user.User{
		ID:           r.ID,
		Name:         r.Name,
		Username:     r.Username,
		Email:        r.Email,
		Mobile:       r.Mobile,
		ClassID:      r.ClassID,
		IsActive:     &isActive,
		Roles:        roles,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
		LastLogin:    r.LastLogin,
	}, nil
}
