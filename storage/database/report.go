package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/kipawa/jaribio/core/report"
)

type reportRepository struct {
	db *gorm.DB
}

var _ report.Repository = (*reportRepository)(nil)

func NewReportRepository(db *gorm.DB) *reportRepository {
	return &reportRepository{db: db}
}

func (repo *reportRepository) CreateReport(ctx context.Context, rpt report.Report) (report.Report, error) {
	rpt.ID = uuid.NewString()
	row := reportRow{
		ID:            rpt.ID,
		ReporterID:    rpt.ReporterID,
		ReportedID:    rpt.ReportedID,
		ReportedModel: rpt.ReportedModel,
		Reason:        rpt.Reason,
		Status:        rpt.Status,
		CreatedAt:     rpt.CreatedAt,
		UpdatedAt:     rpt.UpdatedAt,
	}
	if err := repo.db.WithContext(ctx).Create(&row).Error; err != nil {
		return report.Report{}, errors.Wrap(err, "creating report")
	}
	return rpt, nil
}

func (repo *reportRepository) GetReport(ctx context.Context, id string) (report.Report, error) {
	var row reportRow
	if err := repo.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return report.Report{}, report.ErrNotFound
		}
		return report.Report{}, errors.Wrap(err, "getting report")
	}
	return row.toCore(), nil
}

func (repo *reportRepository) QueryReports(ctx context.Context, filter report.QueryFilter) ([]report.Report, error) {
	q := repo.db.WithContext(ctx).Order("created_at DESC")
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.ReportedModel != "" {
		q = q.Where("reported_model = ?", filter.ReportedModel)
	}
	var rows []reportRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "querying reports")
	}
	reports := make([]report.Report, 0, len(rows))
	for _, row := range rows {
		reports = append(reports, row.toCore())
	}
	return reports, nil
}

func (repo *reportRepository) UpdateReport(ctx context.Context, rpt report.Report) (report.Report, error) {
	updates := map[string]interface{}{
		"status":     rpt.Status,
		"updated_at": rpt.UpdatedAt,
	}
	res := repo.db.WithContext(ctx).Model(&reportRow{}).Where("id = ?", rpt.ID).Updates(updates)
	if res.Error != nil {
		return report.Report{}, errors.Wrap(res.Error, "updating report")
	}
	if res.RowsAffected == 0 {
		return report.Report{}, report.ErrNotFound
	}
	return repo.GetReport(ctx, rpt.ID)
}

func (repo *reportRepository) DeleteReport(ctx context.Context, id string) error {
	res := repo.db.WithContext(ctx).Delete(&reportRow{}, "id = ?", id)
	if res.Error != nil {
		return errors.Wrap(res.Error, "deleting report")
	}
	if res.RowsAffected == 0 {
		return report.ErrNotFound
	}
	return nil
}

func (repo *reportRepository) CountReports(ctx context.Context) (int, error) {
	var count int64
	if err := repo.db.WithContext(ctx).Model(&reportRow{}).Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "counting reports")
	}
	return int(count), nil
}
