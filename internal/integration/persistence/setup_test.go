package persistence

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dental-clinic/backend/internal/integration/persistence/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	sqlDB, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(sqlite.Dialector{Conn: sqlDB}, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open gorm: %v", err)
	}
	if err := db.AutoMigrate(model.All()...); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func seedDoctor(t *testing.T, db *gorm.DB, firstName, lastName string) *model.DoctorModel {
	t.Helper()
	now := time.Now().UTC()
	m := &model.DoctorModel{FirstName: firstName, LastName: lastName, Balance: decimal.Zero, CreatedAt: now, UpdatedAt: now}
	if err := db.Create(m).Error; err != nil {
		t.Fatalf("failed to seed doctor: %v", err)
	}
	return m
}

func seedPatient(t *testing.T, db *gorm.DB, firstName, lastName string) *model.PatientModel {
	t.Helper()
	now := time.Now().UTC()
	m := &model.PatientModel{FirstName: firstName, LastName: lastName, CreatedAt: now, UpdatedAt: now}
	if err := db.Create(m).Error; err != nil {
		t.Fatalf("failed to seed patient: %v", err)
	}
	return m
}
