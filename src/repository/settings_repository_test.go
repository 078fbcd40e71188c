package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"charttrader/src/model"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	dialector := postgres.New(postgres.Config{
		DSN:                  "sqlmock_db_0",
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	})

	gdb, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		sqlDB.Close()
		t.Fatalf("failed to open gorm DB with sqlmock: %v", err)
	}

	return gdb, mock
}

func TestSettingsGetJSONFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := (&SettingsRepository{}).WithDB(db)

	rows := sqlmock.NewRows([]string{"key", "value", "updated_at"}).
		AddRow(model.SettingKeyApiConfig, `{"api_key":"k"}`, time.Now())

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "settings" WHERE key = $1 ORDER BY "settings"."key" LIMIT $2`)).
		WithArgs(model.SettingKeyApiConfig, 1).
		WillReturnRows(rows)

	var cfg model.ApiConfig
	found, err := repo.GetJSON(context.Background(), model.SettingKeyApiConfig, &cfg)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !found {
		t.Fatalf("expected setting to be found")
	}
	if cfg.APIKey != "k" {
		t.Fatalf("unexpected decoded config: %+v", cfg)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}

func TestSettingsGetJSONMissingRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := (&SettingsRepository{}).WithDB(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "settings"`)).
		WillReturnRows(sqlmock.NewRows([]string{"key", "value", "updated_at"}))

	var cfg model.ApiConfig
	found, err := repo.GetJSON(context.Background(), model.SettingKeyApiConfig, &cfg)
	if err != nil {
		t.Fatalf("expected missing row to be a clean miss, got %v", err)
	}
	if found {
		t.Fatalf("expected found=false for missing row")
	}
}

func TestSettingsPutJSONUpserts(t *testing.T) {
	db, mock := newMockDB(t)
	repo := (&SettingsRepository{}).WithDB(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "settings"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.PutJSON(context.Background(), model.SettingKeyApiConfig, model.ApiConfig{APIKey: "k"})
	if err != nil {
		t.Fatalf("expected upsert to succeed, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}

func TestExceptionRepositoryCreate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := (&ExceptionRepository{}).WithDB(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "exceptions"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	exc := &model.Exception{
		Service: "charttrader",
		Module:  "controller",
		Method:  "PlaceOrder",
		Message: "boom",
		Level:   "error",
	}
	if err := repo.Create(context.Background(), exc); err != nil {
		t.Fatalf("expected create to succeed, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}
