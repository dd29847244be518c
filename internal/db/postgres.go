package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/basecase/basecase-backend/internal/logger"
	"github.com/basecase/basecase-backend/internal/types"
	"github.com/basecase/basecase-backend/internal/utils"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	log.Info("Loading environment variables...")
	postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
	postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
	postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
	postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
	postgresName := utils.GetEnv("POSTGRES_NAME", "basecase", log)
	log.Debug("Environment variables loaded")

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

	log.Info("Connecting to Postgres...")
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	})
	if err != nil {
		log.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("Failed to connect to Postgres: %w", err)
	}

	return &PostgresService{db: db, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	err := s.db.AutoMigrate(
		&types.Problem{},
		&types.Sheet{},
		&types.SheetSection{},
		&types.SectionProblem{},
	)
	if err != nil {
		s.log.Error("Auto migration failed for postgres tables", "error", err)
		return err
	}
	s.log.Info("Configuring foreign key relationships for postgres tables...")
	if err := s.db.Exec(`
    ALTER TABLE "sheet_section" DROP CONSTRAINT IF EXISTS "fk_sheet_section_sheet_id"
  `).Error; err != nil {
		return fmt.Errorf("Failed to drop fk_sheet_section_sheet_id: %w", err)
	}
	if err := s.db.Exec(`
    ALTER TABLE "sheet_section"
    ADD CONSTRAINT "fk_sheet_section_sheet_id"
    FOREIGN KEY ("sheet_id")
    REFERENCES "sheet"("id")
    ON DELETE CASCADE
  `).Error; err != nil {
		return fmt.Errorf("Failed to add fk_sheet_section_sheet_id: %w", err)
	}
	if err := s.db.Exec(`
    ALTER TABLE "section_problem" DROP CONSTRAINT IF EXISTS "fk_section_problem_section_id"
  `).Error; err != nil {
		return fmt.Errorf("Failed to drop fk_section_problem_section_id: %w", err)
	}
	if err := s.db.Exec(`
    ALTER TABLE "section_problem"
    ADD CONSTRAINT "fk_section_problem_section_id"
    FOREIGN KEY ("section_id")
    REFERENCES "sheet_section"("id")
    ON DELETE CASCADE
  `).Error; err != nil {
		return fmt.Errorf("Failed to add fk_section_problem_section_id: %w", err)
	}
	if err := s.db.Exec(`
    ALTER TABLE "section_problem" DROP CONSTRAINT IF EXISTS "fk_section_problem_problem_id"
  `).Error; err != nil {
		return fmt.Errorf("Failed to drop fk_section_problem_problem_id: %w", err)
	}
	if err := s.db.Exec(`
    ALTER TABLE "section_problem"
    ADD CONSTRAINT "fk_section_problem_problem_id"
    FOREIGN KEY ("problem_id")
    REFERENCES "problem"("id")
    ON DELETE CASCADE
  `).Error; err != nil {
		return fmt.Errorf("Failed to add fk_section_problem_problem_id: %w", err)
	}
	return nil
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}
