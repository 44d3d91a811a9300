package database

import (
	"assessment_results_backend/internal/config"
	"assessment_results_backend/internal/model"
	"assessment_results_backend/internal/scoring"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "", DriverMySQL:
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
			cfg.User,
			cfg.Password,
			cfg.Host,
			cfg.Port,
			cfg.DBName,
			cfg.Charset,
			cfg.ParseTime,
		)
		dialector = mysql.Open(dsn)
	case DriverSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, err
		}
		dialector = sqlite.Open(cfg.Path + "?_pragma=busy_timeout(5000)")
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel(cfg.LogLevel)),
	})
	if err != nil {
		return nil, err
	}

	if cfg.Driver == DriverSQLite {
		// sqlite allows one writer; a single connection serialises transactions.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	log.Printf("Database connection established (%s)", dialectName(cfg.Driver))
	return db, nil
}

// Migrate creates the reference, staging, main and history tables and seeds
// the assessment type catalog.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.AssessmentType{},
		&model.Assessment{},
		&model.AssessmentForm{},
		&model.AssessmentComponent{},
		&model.AssessmentQuestion{},
		&model.AssessmentChoice{},
		&model.StagedStudentResult{},
		&model.StagedAssessmentStudent{},
		&model.StagedAssessmentStudentComponent{},
		&model.StagedAssessmentStudentAnswer{},
		&model.StagedAssessmentStudentChoice{},
		&model.AssessmentStudent{},
		&model.AssessmentStudentComponent{},
		&model.AssessmentStudentAnswer{},
		&model.AssessmentStudentChoice{},
		&model.AssessmentStudentHistory{},
	)
	if err != nil {
		return err
	}

	types := make([]model.AssessmentType, 0, len(scoring.AssessmentTypeCodes))
	for _, code := range scoring.AssessmentTypeCodes {
		types = append(types, model.AssessmentType{Code: string(code), Label: string(code)})
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&types).Error; err != nil {
		return err
	}

	log.Println("Database migration completed")
	return nil
}

func logLevel(level string) logger.LogLevel {
	switch level {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	}
	return logger.Warn
}

func dialectName(driver string) string {
	if driver == "" {
		return DriverMySQL
	}
	return driver
}
