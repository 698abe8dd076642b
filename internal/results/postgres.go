package results

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type matchResult struct {
	ID           uint      `gorm:"primaryKey"`
	Code         string    `gorm:"size:6;index;not null"`
	Score        int       `gorm:"not null"`
	Won          bool      `gorm:"not null"`
	Participants string    `gorm:"not null"`
	EndedAt      time.Time `gorm:"index;not null"`
}

func (matchResult) TableName() string { return "match_results" }

func toRow(r Result) matchResult {
	return matchResult{
		Code:         r.Code,
		Score:        r.Score,
		Won:          r.Won,
		Participants: strings.Join(r.Participants, ","),
		EndedAt:      r.EndedAt.UTC(),
	}
}

func (row matchResult) result() Result {
	var ids []string
	if row.Participants != "" {
		ids = strings.Split(row.Participants, ",")
	}
	return Result{
		Code:         row.Code,
		Score:        row.Score,
		Won:          row.Won,
		Participants: ids,
		EndedAt:      row.EndedAt,
	}
}

// Postgres stores results in a match_results table.
type Postgres struct {
	db *gorm.DB
}

func OpenPostgres(dsn string) (*Postgres, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.AutoMigrate(&matchResult{}); err != nil {
		return nil, fmt.Errorf("migrate match results: %w", err)
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) Record(ctx context.Context, r Result) error {
	row := toRow(r)
	err := p.db.WithContext(ctx).Create(&row).Error
	if err != nil && pgconn.SafeToRetry(err) {
		row.ID = 0
		err = p.db.WithContext(ctx).Create(&row).Error
	}
	if err != nil {
		return fmt.Errorf("record result for %s: %w", r.Code, err)
	}
	return nil
}

func (p *Postgres) Recent(ctx context.Context, limit int) ([]Result, error) {
	var rows []matchResult
	err := p.db.WithContext(ctx).Order("ended_at desc").Limit(limit).Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("recent results: %w", err)
	}
	out := make([]Result, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.result())
	}
	return out, nil
}

func (p *Postgres) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
