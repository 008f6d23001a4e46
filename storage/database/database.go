package database

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/kipawa/jaribio/core"
)

func dsn(conf *core.Config) string {
	sslMode := "require"
	if conf.Database.DisableTLS {
		sslMode = "disable"
	}
	q := make(url.Values)
	q.Set("sslmode", sslMode)
	q.Set("timezone", "utc")

	u := url.URL{
		Scheme:   conf.Database.Engine,
		User:     url.UserPassword(conf.Database.User, conf.Database.Password),
		Host:     conf.Database.Addr(),
		Path:     conf.Database.Name,
		RawQuery: q.Encode(),
	}
	return u.String()
}

func Open(conf *core.Config) (*gorm.DB, error) {
	logLevel := gormlogger.Silent
	if conf.Debug {
		logLevel = gormlogger.Info
	}
	db, err := gorm.Open(postgres.Open(dsn(conf)), &gorm.Config{
		Logger:  gormlogger.Default.LogMode(logLevel),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	if err = ping(db); err != nil {
		return nil, err
	}
	return db, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrap(err, "getting underlying DB")
	}

	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err = sqlDB.Ping()
		if err == nil {
			break
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}
	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

// Migrate brings the schema up to date with the row models.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&userRow{},
		&categoryRow{},
		&classRow{},
		&subjectRow{},
		&chapterRow{},
		&questionRow{},
		&quizRow{},
		&quizRecordRow{},
		&reportRow{},
	); err != nil {
		return errors.Wrap(err, "migrating database")
	}
	return nil
}

// StatusCheck runs a trivial query to check connectivity; used by readiness probes.
func StatusCheck(ctx context.Context, db *gorm.DB) error {
	var tmp bool
	if err := db.WithContext(ctx).Raw("SELECT true").Scan(&tmp).Error; err != nil {
		return fmt.Errorf("database not ready: %w", err)
	}
	return nil
}
