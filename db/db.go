package db

import (
	"context"
	"fmt"
	"log"

	"github.com/pkg/errors"
	"github.com/techagentng/healthtrack/config"
	"github.com/techagentng/healthtrack/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type GormDB struct {
	DB *gorm.DB
}

func GetDB(c *config.Config) *GormDB {
	gormDB := &GormDB{}
	gormDB.Init(c)
	return gormDB
}

func (g *GormDB) Init(c *config.Config) {
	g.DB = getPostgresDB(c)

	if err := migrate(g.DB); err != nil {
		log.Fatalf("unable to run migrations: %v", err)
	}
}

func getPostgresDB(c *config.Config) *gorm.DB {
	log.Printf("Connecting to postgres: host=%s db=%s user=%s", c.PostgresHost, c.PostgresDB, c.PostgresUser)
	postgresDSN := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d",
		c.PostgresHost, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresPort)

	gormConfig := &gorm.Config{}
	if c.Env != "prod" {
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	}
	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		DSN: postgresDSN,
	}), gormConfig)
	if err != nil {
		log.Fatal(err)
	}

	return gormDB
}

func migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Report{},
		&models.Hospital{},
	)
	if err != nil {
		return fmt.Errorf("migrations error: %v", err)
	}
	return nil
}

// SeedStore fills empty tables from seed.
func SeedStore(db *gorm.DB, seed models.Seed) error {
	user := seed.User
	if user.ID == 0 {
		user.ID = 1
	}
	if err := db.FirstOrCreate(&user, models.User{ID: user.ID}).Error; err != nil {
		return err
	}

	var count int64
	if err := db.Model(&models.Report{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		for i := len(seed.Reports) - 1; i >= 0; i-- {
			r := seed.Reports[i]
			r.Seq = 0
			if err := db.Create(&r).Error; err != nil {
				return err
			}
		}
	}

	for _, h := range seed.Hospitals {
		hospital := h
		if err := db.FirstOrCreate(&hospital, models.Hospital{ID: h.ID}).Error; err != nil {
			return err
		}
	}
	return nil
}

// GormStore is the postgres-backed Store.
type GormStore struct {
	DB *gorm.DB
}

// NewGormStore seeds g and wraps it as a Store.
func NewGormStore(g *GormDB, seed models.Seed) (*GormStore, error) {
	if err := SeedStore(g.DB, seed); err != nil {
		return nil, fmt.Errorf("seeding error: %v", err)
	}
	return &GormStore{DB: g.DB}, nil
}

func (s *GormStore) User(ctx context.Context) (models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).Order("id").First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

func (s *GormStore) SetPhone(ctx context.Context, phone string) error {
	user, err := s.User(ctx)
	if err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Model(&user).Update("phone", phone).Error
}

func (s *GormStore) Reports(ctx context.Context) ([]models.Report, error) {
	var reports []models.Report
	if err := s.DB.WithContext(ctx).Order("seq DESC").Find(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}

func (s *GormStore) Report(ctx context.Context, id int) (models.Report, error) {
	var report models.Report
	err := s.DB.WithContext(ctx).Where("id = ?", id).Order("seq DESC").First(&report).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Report{}, ErrReportNotFound
		}
		return models.Report{}, err
	}
	return report, nil
}

func (s *GormStore) AddReport(ctx context.Context, r *models.Report) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if r.ID == 0 {
			var max int
			if err := tx.Model(&models.Report{}).Select("COALESCE(MAX(id), 0)").Scan(&max).Error; err != nil {
				return err
			}
			r.ID = max + 1
		}
		r.Seq = 0
		return tx.Create(r).Error
	})
}

func (s *GormStore) Hospitals(ctx context.Context) ([]models.Hospital, error) {
	var hospitals []models.Hospital
	if err := s.DB.WithContext(ctx).Order("id").Find(&hospitals).Error; err != nil {
		return nil, err
	}
	return hospitals, nil
}

func (s *GormStore) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
