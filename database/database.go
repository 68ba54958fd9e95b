package database

import (
	"coursehub/config"
	"coursehub/models"
	"coursehub/models/course"
	"coursehub/models/quiz"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// DbInstance struct holds the database connection instance
type DbInstance struct {
	Db *gorm.DB
}

// Database is the global database instance
var Database DbInstance

// Dialector picks the gorm driver for name. Transactions that append to an
// ordered scope rely on row locks; for sqlite the DSN should set
// _txlock=immediate so writers are serialised instead.
func Dialector(name, dsn string) (gorm.Dialector, error) {
	switch name {
	case "postgres":
		return postgres.Open(dsn), nil
	case "mysql":
		return mysql.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", name)
	}
}

// Open connects and migrates. Used by ConnectDb and by tests.
func Open(driver, dsn string, level gormLogger.LogLevel) (*gorm.DB, error) {
	dialector, err := Dialector(driver, dsn)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         NewGormLogger(level),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// ConnectDb establishes the global connection from config.AppConfig
func ConnectDb() {
	cfg := config.AppConfig
	db, err := Open(cfg.DBDriver, dsnFromConfig(cfg), ParseLogLevel(cfg.DBLogLevel))
	if err != nil {
		log.Fatalf("Failed to connect to %s: %v", cfg.DBDriver, err)
		os.Exit(2)
	}

	log.Printf("Connected Successfully to %s", cfg.DBDriver)
	Database = DbInstance{Db: db}
}

func dsnFromConfig(cfg *config.Config) string {
	switch cfg.DBDriver {
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)
	case "sqlite":
		return SqliteDSN(cfg.DBPath)
	default:
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort)
	}
}

// SqliteDSN builds a file DSN with a busy timeout and immediate write transactions.
func SqliteDSN(path string) string {
	return "file:" + path + "?_busy_timeout=5000&_txlock=immediate"
}

// Migrate runs the schema migrations
func Migrate(db *gorm.DB) error {
	log.Println("Running Migrations...")

	err := db.AutoMigrate(
		&models.User{},
		&models.LoginTracking{},
		&course.Course{},
		&course.Module{},
		&course.Lesson{},
		&course.LessonResource{},
		&course.LessonActivity{},
		&course.Enrollment{},
		&course.Certificate{},
		&course.Feedback{},
		&quiz.Quiz{},
		&quiz.Assessment{},
		&quiz.AssessmentSection{},
		&quiz.Question{},
		&quiz.Option{},
		&quiz.Answer{},
		&quiz.Submission{},
	)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	log.Println("Migrations completed successfully.")
	return nil
}

// Ping checks the connection for the health endpoint
func Ping() error {
	if Database.Db == nil {
		return fmt.Errorf("database not connected")
	}
	sqlDB, err := Database.Db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
