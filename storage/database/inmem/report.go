package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/kipawa/jaribio/core/report"
)

type reportRepository struct {
	db *DB
}

var _ report.Repository = (*reportRepository)(nil)

func NewReportRepository(db *DB) *reportRepository {
	return &reportRepository{db: db}
}

func (repo *reportRepository) CreateReport(_ context.Context, rpt report.Report) (report.Report, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	rpt.ID = uuid.NewString()
	repo.db.reports[rpt.ID] = &rpt
	repo.db.nextSeq(rpt.ID)
	return rpt, nil
}

func (repo *reportRepository) GetReport(_ context.Context, id string) (report.Report, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if rpt, ok := repo.db.reports[id]; ok {
		return *rpt, nil
	}
	return report.Report{}, report.ErrNotFound
}

func (repo *reportRepository) QueryReports(_ context.Context, filter report.QueryFilter) ([]report.Report, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	reports := make([]report.Report, 0, len(repo.db.reports))
	for _, rpt := range repo.db.reports {
		if filter.Status != "" && rpt.Status != filter.Status {
			continue
		}
		if filter.ReportedModel != "" && rpt.ReportedModel != filter.ReportedModel {
			continue
		}
		reports = append(reports, *rpt)
	}
	// newest first
	sort.Slice(reports, func(i, j int) bool {
		return repo.db.seqs[reports[i].ID] > repo.db.seqs[reports[j].ID]
	})
	return reports, nil
}

func (repo *reportRepository) UpdateReport(_ context.Context, rpt report.Report) (report.Report, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	orig, ok := repo.db.reports[rpt.ID]
	if !ok {
		return report.Report{}, report.ErrNotFound
	}
	if rpt.Status != "" {
		orig.Status = rpt.Status
	}
	orig.UpdatedAt = rpt.UpdatedAt
	return *orig, nil
}

func (repo *reportRepository) DeleteReport(_ context.Context, id string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.reports[id]; !ok {
		return report.ErrNotFound
	}
	delete(repo.db.reports, id)
	return nil
}

func (repo *reportRepository) CountReports(_ context.Context) (int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return len(repo.db.reports), nil
}
