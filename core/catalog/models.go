package catalog

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/kipawa/jaribio/core"
)

const (
	CategoryStatusActive   = "active"
	CategoryStatusInactive = "inactive"
)

// Category groups content for browsing, outside the class hierarchy.
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"image_url"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

// Class is a cohort of students; the top of the content hierarchy.
type Class struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Section   string    `json:"section,omitempty"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// Subject belongs to a Class.
type Subject struct {
	ID        string    `json:"id"`
	ClassID   string    `json:"class_id"`
	Name      string    `json:"name"`
	IconURL   string    `json:"icon_url,omitempty"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC

	Chapters []Chapter `json:"chapters,omitempty"`
}

// Chapter belongs to a Subject; owns the question set quizzes are graded against.
type Chapter struct {
	ID         string    `json:"id"`
	SubjectID  string    `json:"subject_id"`
	Name       string    `json:"name"`
	Number     int       `json:"number,omitempty"`
	ContentURL string    `json:"content_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"` // UTC
	UpdatedAt  time.Time `json:"updated_at"` // UTC
}

type NewCategory struct {
	Name        string `json:"name" validate:"required,min=2,max=50"`
	Description string `json:"description" validate:"omitempty,max=500"`
	ImageURL    string `json:"image_url" validate:"required,url"`
	Status      string `json:"status" validate:"omitempty,oneof=active inactive"`
}

func (nc *NewCategory) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Description = core.CleanString(nc.Description)
	return validate.Struct(nc)
}

type UpdateCategory struct {
	Name        string `json:"name" validate:"omitempty,min=2,max=50"`
	Description string `json:"description" validate:"omitempty,max=500"`
	ImageURL    string `json:"image_url" validate:"omitempty,url"`
	Status      string `json:"status" validate:"omitempty,oneof=active inactive"`
}

func (uc *UpdateCategory) Validate(validate *validator.Validate) error {
	uc.Name = core.CleanString(uc.Name)
	uc.Description = core.CleanString(uc.Description)
	return validate.Struct(uc)
}

type NewClass struct {
	Name    string `json:"name" validate:"required"`
	Section string `json:"section"`
}

func (nc *NewClass) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Section = core.CleanString(nc.Section)
	return validate.Struct(nc)
}

type UpdateClass struct {
	Name    string `json:"name"`
	Section string `json:"section"`
}

func (uc *UpdateClass) Validate(validate *validator.Validate) error {
	uc.Name = core.CleanString(uc.Name)
	uc.Section = core.CleanString(uc.Section)
	return validate.Struct(uc)
}

type NewSubject struct {
	ClassID string `json:"class_id" validate:"required,objectid"`
	Name    string `json:"name" validate:"required"`
	IconURL string `json:"icon_url" validate:"omitempty,url"`
}

func (ns *NewSubject) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	return validate.Struct(ns)
}

type UpdateSubject struct {
	Name    string `json:"name"`
	IconURL string `json:"icon_url" validate:"omitempty,url"`
}

func (us *UpdateSubject) Validate(validate *validator.Validate) error {
	us.Name = core.CleanString(us.Name)
	return validate.Struct(us)
}

type NewChapter struct {
	SubjectID  string `json:"subject_id" validate:"required,objectid"`
	Name       string `json:"name" validate:"required"`
	Number     int    `json:"number" validate:"omitempty,min=1"`
	ContentURL string `json:"content_url" validate:"omitempty,url"`
}

func (nc *NewChapter) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	return validate.Struct(nc)
}

type UpdateChapter struct {
	Name       string `json:"name"`
	Number     int    `json:"number" validate:"omitempty,min=1"`
	ContentURL string `json:"content_url" validate:"omitempty,url"`
}

func (uc *UpdateChapter) Validate(validate *validator.Validate) error {
	uc.Name = core.CleanString(uc.Name)
	return validate.Struct(uc)
}
