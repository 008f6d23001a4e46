package report

import (
	"context"
	"errors"
	"time"
)

var (
	// errors
	ErrNotFound = errors.New("report not found")
)

type (
	Repository interface {
		CreateReport(ctx context.Context, rpt Report) (Report, error)
		GetReport(ctx context.Context, id string) (Report, error)
		QueryReports(ctx context.Context, filter QueryFilter) ([]Report, error)
		UpdateReport(ctx context.Context, rpt Report) (Report, error)
		DeleteReport(ctx context.Context, id string) error
		CountReports(ctx context.Context) (int, error)
	}

	ServiceInterface interface {
		Create(ctx context.Context, nr NewReport) (Report, error)
		GetByID(ctx context.Context, id string) (Report, error)
		Query(ctx context.Context, filter QueryFilter) ([]Report, error)
		UpdateStatus(ctx context.Context, id string, ur UpdateReport) (Report, error)
		Delete(ctx context.Context, id string) error
	}

	Service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, nr NewReport) (Report, error) {
	now := time.Now().UTC()
	return svc.repo.CreateReport(ctx, Report{
		ReporterID:    nr.ReporterID,
		ReportedID:    nr.ReportedID,
		ReportedModel: nr.ReportedModel,
		Reason:        nr.Reason,
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
}

func (svc *Service) GetByID(ctx context.Context, id string) (Report, error) {
	return svc.repo.GetReport(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Report, error) {
	return svc.repo.QueryReports(ctx, filter)
}

func (svc *Service) UpdateStatus(ctx context.Context, id string, ur UpdateReport) (Report, error) {
	return svc.repo.UpdateReport(ctx, Report{
		ID:        id,
		Status:    ur.Status,
		UpdatedAt: time.Now().UTC(),
	})
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteReport(ctx, id)
}
