package mysql

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"dormdigest/internal/config"
	"dormdigest/internal/model"
)

// Open connects to the store described by cfg. The caller owns the handle
// and must release it with Close.
func Open(cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormLogLevel(cfg.LogLevel)),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying *sql.DB: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping %s: %w", cfg.Driver, err)
	}

	log.Info("database connected", zap.String("driver", cfg.Driver))
	return db, nil
}

// Close releases the connection pool behind db.
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func dialectorFor(driver, dsn string) (gorm.Dialector, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database dsn required")
	}
	switch strings.ToLower(driver) {
	case "", "mysql":
		return gormmysql.Open(dsn), nil
	case "postgres", "postgresql":
		return postgres.Open(dsn), nil
	case "sqlite", "sqlite3":
		return sqlite.Open(dsn), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", driver)
}

func gormLogLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}

// Tables lists every entity owned by the schema, parents first.
var Tables = []any{
	&model.User{},
	&model.Club{},
	&model.ClubMembership{},
	&model.Event{},
	&model.EventTag{},
	&model.EventDescription{},
	&model.SessionID{},
}

type foreignKey struct {
	model    any
	table    string
	name     string
	column   string
	refTable string
}

var foreignKeys = []foreignKey{
	{&model.Event{}, "events", "fk_events_user", "user_id", "users"},
	{&model.Event{}, "events", "fk_events_club", "club_id", "clubs"},
	{&model.ClubMembership{}, "club_memberships", "fk_club_memberships_user", "user_id", "users"},
	{&model.ClubMembership{}, "club_memberships", "fk_club_memberships_club", "club_id", "clubs"},
	{&model.EventTag{}, "event_tags", "fk_event_tags_event", "event_id", "events"},
	{&model.EventDescription{}, "event_descriptions", "fk_event_descriptions_event", "event_id", "events"},
}

// Migrate creates missing tables, columns, indexes and foreign keys. It is
// safe against an initialized store and never rewrites existing rows.
func Migrate(db *gorm.DB, log *zap.Logger) error {
	if err := db.AutoMigrate(Tables...); err != nil {
		return fmt.Errorf("failed to migrate tables: %w", err)
	}

	dialect := db.Dialector.Name()
	if dialect != "mysql" && dialect != "postgres" {
		// sqlite cannot add constraints to existing tables; references are
		// checked by the repositories inside each write transaction.
		log.Debug("schema ready", zap.String("dialect", dialect))
		return nil
	}

	for _, fk := range foreignKeys {
		if db.Migrator().HasConstraint(fk.model, fk.name) {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s(id)",
			fk.table, fk.name, fk.column, fk.refTable)
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to add foreign key %s: %w", fk.name, err)
		}
		log.Info("foreign key added", zap.String("name", fk.name))
	}
	log.Debug("schema ready", zap.String("dialect", dialect))
	return nil
}
