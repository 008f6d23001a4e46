package report

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/kipawa/jaribio/core"
)

// Report statuses
const (
	StatusPending  = "pending"
	StatusResolved = "resolved"
	StatusRejected = "rejected"
)

// Reportable entity kinds
const (
	ReportedUser     = "user"
	ReportedQuestion = "question"
	ReportedQuiz     = "quiz"
	ReportedChapter  = "chapter"
)

// Report is a user-filed complaint against another entity. Status moves from
// pending to resolved or rejected by an admin.
type Report struct {
	ID            string    `json:"id"`
	ReporterID    string    `json:"reporter_id"`
	ReportedID    string    `json:"reported_id"`
	ReportedModel string    `json:"reported_model"`
	Reason        string    `json:"reason"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"` // UTC
	UpdatedAt     time.Time `json:"updated_at"` // UTC
}

type NewReport struct {
	ReporterID    string `json:"reporter_id" validate:"required,objectid"`
	ReportedID    string `json:"reported_id" validate:"required,objectid"`
	ReportedModel string `json:"reported_model" validate:"required,oneof=user question quiz chapter"`
	Reason        string `json:"reason" validate:"required"`
}

func (nr *NewReport) Validate(validate *validator.Validate) error {
	nr.Reason = core.CleanString(nr.Reason)
	return validate.Struct(nr)
}

type UpdateReport struct {
	Status string `json:"status" validate:"required,oneof=pending resolved rejected"`
}

func (ur *UpdateReport) Validate(validate *validator.Validate) error {
	return validate.Struct(ur)
}

// QueryFilter selects reports by status and/or reported entity kind.
type QueryFilter struct {
	Status        string `query:"status"`
	ReportedModel string `query:"reported_model"`
}
