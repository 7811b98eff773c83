package mock

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dental-clinic/backend/config"
	"github.com/dental-clinic/backend/internal/infra/db"
	"github.com/dental-clinic/backend/internal/integration/persistence/model"
)

var once sync.Once
var database *Db

// Db is a shared in-memory SQLite database migrated with the clinic schema.
type Db struct {
	Database *db.Database
	models   []any
}

// NewDb opens the shared database once per test binary.
func NewDb() *Db {
	once.Do(func() {
		database = open(model.All())
	})
	return database
}

func open(models []any) *Db {
	dbSQL, err := sql.Open("sqlite", "file:integration?mode=memory&cache=shared")
	if err != nil {
		panic(err)
	}

	// A single connection serializes the finance transactions like row locks would.
	dbSQL.SetMaxOpenConns(1)

	dbConn, err := gorm.Open(sqlite.Dialector{Conn: dbSQL}, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		panic("failed to connect to database. err: " + err.Error())
	}

	if err := dbConn.AutoMigrate(models...); err != nil {
		panic(fmt.Sprintf("failed to migrate database. err: %s", err.Error()))
	}

	return &Db{
		Database: db.Wrap(dbConn, &config.DatabaseConfig{Driver: db.DriverSQLite}),
		models:   models,
	}
}

// Conn returns the underlying GORM connection.
func (d *Db) Conn() *gorm.DB {
	return d.Database.DB()
}

// ClearDB deletes every row and resets autoincrement counters.
// Child tables are cleared first so foreign keys never block the delete.
func (d *Db) ClearDB() error {
	conn := d.Conn()
	for i := len(d.models) - 1; i >= 0; i-- {
		m := d.models[i]
		if err := conn.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(m).Error; err != nil {
			return err
		}

		stmt := &gorm.Statement{DB: conn}
		if err := stmt.Parse(m); err != nil {
			return err
		}

		err := conn.Exec("DELETE FROM sqlite_sequence WHERE name = ?", stmt.Schema.Table).Error
		if err != nil && !strings.Contains(err.Error(), "no such table: sqlite_sequence") {
			return err
		}
	}
	return nil
}
