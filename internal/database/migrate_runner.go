package database

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"pantry/internal/middleware"

	"gorm.io/gorm"
)

// MigrationLog is one row of migration_logs: a migration that has been applied.
type MigrationLog struct {
	Version   int       `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"size:255"`
	AppliedAt time.Time `gorm:"autoCreateTime"`
}

// TableName returns the database table name for MigrationLog.
func (MigrationLog) TableName() string {
	return "migration_logs"
}

// Migrator applies a fixed list of migrations and records them in migration_logs.
type Migrator struct {
	db         *gorm.DB
	registered []Migration
}

// NewMigrator returns a Migrator for registered, which must be ordered by version.
func NewMigrator(db *gorm.DB, registered []Migration) *Migrator {
	return &Migrator{db: db, registered: registered}
}

// Applied lists recorded versions in ascending order. A missing log table means none.
func (m *Migrator) Applied(ctx context.Context) ([]int, error) {
	db := m.db.WithContext(ctx)
	if !db.Migrator().HasTable(&MigrationLog{}) {
		return []int{}, nil
	}
	var versions []int
	if err := db.Model(&MigrationLog{}).Order("version ASC").Pluck("version", &versions).Error; err != nil {
		return nil, fmt.Errorf("read migration_logs: %w", err)
	}
	return versions, nil
}

// Pending returns the registered migrations not yet applied, plus the applied versions.
func (m *Migrator) Pending(ctx context.Context) ([]Migration, []int, error) {
	applied, err := m.Applied(ctx)
	if err != nil {
		return nil, nil, err
	}
	var pending []Migration
	for _, mig := range m.registered {
		if !slices.Contains(applied, mig.Version) {
			pending = append(pending, mig)
		}
	}
	return pending, applied, nil
}

// Up applies every pending migration in version order and returns how many ran.
// Each migration runs in its own transaction together with its log row.
func (m *Migrator) Up(ctx context.Context) (int, error) {
	if err := m.db.WithContext(ctx).AutoMigrate(&MigrationLog{}); err != nil {
		return 0, fmt.Errorf("create migration_logs: %w", err)
	}

	pending, applied, err := m.Pending(ctx)
	if err != nil {
		return 0, err
	}
	if err := checkKnownVersions(applied, m.registered); err != nil {
		return 0, err
	}

	for i, mig := range pending {
		middleware.Logger.InfoContext(ctx, "Applying migration", slog.String("migration", mig.String()))
		err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(mig.UpScript).Error; err != nil {
				return err
			}
			return tx.Create(&MigrationLog{Version: mig.Version, Name: mig.Name}).Error
		})
		if err != nil {
			return i, fmt.Errorf("apply migration %s: %w", mig.String(), err)
		}
	}
	return len(pending), nil
}

// Down reverts one applied migration and removes its log row.
func (m *Migrator) Down(ctx context.Context, version int) error {
	idx := slices.IndexFunc(m.registered, func(mig Migration) bool { return mig.Version == version })
	if idx < 0 {
		return fmt.Errorf("migration version %d not found", version)
	}
	mig := m.registered[idx]

	applied, err := m.Applied(ctx)
	if err != nil {
		return err
	}
	if !slices.Contains(applied, version) {
		return fmt.Errorf("migration %d has not been applied", version)
	}

	middleware.Logger.InfoContext(ctx, "Rolling back migration", slog.String("migration", mig.String()))
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(mig.DownScript).Error; err != nil {
			return fmt.Errorf("roll back migration %s: %w", mig.String(), err)
		}
		return tx.Where("version = ?", version).Delete(&MigrationLog{}).Error
	})
}

// checkKnownVersions fails when the log holds versions this build does not know,
// which means the database is ahead of the code.
func checkKnownVersions(applied []int, registered []Migration) error {
	var unknown []string
	for _, version := range applied {
		known := slices.ContainsFunc(registered, func(mig Migration) bool { return mig.Version == version })
		if !known {
			unknown = append(unknown, fmt.Sprintf("%06d", version))
		}
	}
	if len(unknown) > 0 {
		return fmt.Errorf("migration_logs has versions unknown to this build: %s", strings.Join(unknown, ", "))
	}
	return nil
}

// RunMigrations applies all pending embedded migrations.
func RunMigrations(ctx context.Context, db *gorm.DB) error {
	n, err := NewMigrator(db, migrations).Up(ctx)
	if err != nil {
		return err
	}
	middleware.Logger.InfoContext(ctx, "Migrations up to date", slog.Int("applied", n))
	return nil
}

// RollbackMigration reverts the embedded migration with version.
func RollbackMigration(ctx context.Context, db *gorm.DB, version int) error {
	return NewMigrator(db, migrations).Down(ctx, version)
}
