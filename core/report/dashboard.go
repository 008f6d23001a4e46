package report

import (
	"context"
	"time"

	"github.com/kipawa/jaribio/core/catalog"
	"github.com/kipawa/jaribio/core/quiz"
	"github.com/kipawa/jaribio/core/user"
)

// newUserWindow is how far back the dashboard's "new users" widget looks.
const newUserWindow = 5 * 24 * time.Hour

// Stats is the admin dashboard summary.
type Stats struct {
	TotalQuizzes  int `json:"total_quizzes"`
	TotalChapters int `json:"total_chapters"`
	TotalReports  int `json:"total_reports"`
	TotalUsers    int `json:"total_users"`

	NewUsers   []user.User    `json:"new_users"`   // registered within the last 5 days
	RoleCounts map[string]int `json:"role_counts"` // user count per role family
}

// DashboardService aggregates counts across the content, user and report
// stores into a single Stats snapshot.
type DashboardService struct {
	userRepo    user.Repository
	catalogRepo catalog.Repository
	quizRepo    quiz.Repository
	reportRepo  Repository
}

func NewDashboardService(
	userRepo user.Repository,
	catalogRepo catalog.Repository,
	quizRepo quiz.Repository,
	reportRepo Repository,
) *DashboardService {
	return &DashboardService{
		userRepo:    userRepo,
		catalogRepo: catalogRepo,
		quizRepo:    quizRepo,
		reportRepo:  reportRepo,
	}
}

func (svc *DashboardService) Stats(ctx context.Context) (Stats, error) {
	var (
		stats Stats
		err   error
	)

	if stats.TotalQuizzes, err = svc.quizRepo.CountQuizzes(ctx); err != nil {
		return Stats{}, err
	}
	if stats.TotalChapters, err = svc.catalogRepo.CountChapters(ctx); err != nil {
		return Stats{}, err
	}
	if stats.TotalReports, err = svc.reportRepo.CountReports(ctx); err != nil {
		return Stats{}, err
	}
	if stats.TotalUsers, err = svc.userRepo.CountUsers(ctx, ""); err != nil {
		return Stats{}, err
	}

	stats.NewUsers, err = svc.userRepo.QueryUsers(ctx, &user.QueryFilter{
		CreatedFrom: time.Now().UTC().Add(-newUserWindow),
	})
	if err != nil {
		return Stats{}, err
	}

	stats.RoleCounts = make(map[string]int, 3)
	for name, prefix := range map[string]string{
		"admins":   user.RoleAdmin,
		"teachers": user.RoleTeacher,
		"students": user.RoleStudent,
	} {
		count, err := svc.userRepo.CountUsers(ctx, prefix)
		if err != nil {
			return Stats{}, err
		}
		stats.RoleCounts[name] = count
	}
	return stats, nil
}
