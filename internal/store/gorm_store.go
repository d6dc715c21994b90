package store

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"vecare/pkg/domain"
)

// GormStore implements CaseStore using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(&CaseModel{}, &ImportJobModel{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// SaveCase inserts a new case record.
func (s *GormStore) SaveCase(c domain.Case) error {
	model := caseToModel(c)
	return s.db.Create(&model).Error
}

// SaveCases inserts a batch row by row so one bad record does not sink
// the rest. Returns how many rows were saved and how many failed.
func (s *GormStore) SaveCases(cases []domain.Case) (int, int, error) {
	saved, failed := 0, 0
	for _, c := range cases {
		model := caseToModel(c)
		if err := s.db.Create(&model).Error; err != nil {
			failed++
			continue
		}
		saved++
	}
	return saved, failed, nil
}

// GetCase retrieves a case by ID.
func (s *GormStore) GetCase(id string) (domain.Case, bool, error) {
	var model CaseModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Case{}, false, nil
		}
		return domain.Case{}, false, err
	}
	return caseFromModel(model), true, nil
}

// ListCases returns all cases newest first.
func (s *GormStore) ListCases() ([]domain.Case, error) {
	var models []CaseModel
	if err := s.db.Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Case, 0, len(models))
	for _, m := range models {
		res = append(res, caseFromModel(m))
	}
	return res, nil
}

// UpdateCase replaces an existing case. Returns ErrNotFound when the ID
// does not exist.
func (s *GormStore) UpdateCase(c domain.Case) error {
	model := caseToModel(c)
	tx := s.db.Model(&CaseModel{}).Where("id = ?", c.ID).Select("*").Omit("created_at").Updates(&model)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteCase removes a case. Returns ErrNotFound when the ID does not exist.
func (s *GormStore) DeleteCase(id string) error {
	tx := s.db.Delete(&CaseModel{}, "id = ?", id)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAllCases wipes the collection and reports how many rows went.
func (s *GormStore) DeleteAllCases() (int, error) {
	tx := s.db.Where("1 = 1").Delete(&CaseModel{})
	if tx.Error != nil {
		return 0, tx.Error
	}
	return int(tx.RowsAffected), nil
}

// SaveImportJob records an import job outcome.
func (s *GormStore) SaveImportJob(job domain.ImportJob) error {
	model, err := importJobToModel(job)
	if err != nil {
		return err
	}
	return s.db.Create(&model).Error
}

// ListImportJobs returns import jobs newest first.
func (s *GormStore) ListImportJobs() ([]domain.ImportJob, error) {
	var models []ImportJobModel
	if err := s.db.Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.ImportJob, 0, len(models))
	for _, m := range models {
		job, err := importJobFromModel(m)
		if err != nil {
			return nil, err
		}
		res = append(res, job)
	}
	return res, nil
}

func caseToModel(c domain.Case) CaseModel {
	return CaseModel{
		ID:          c.ID,
		Date:        c.Date,
		CaseID:      c.CaseID,
		Branch:      c.Branch,
		Brand:       c.Brand,
		ServiceType: c.ServiceType,
		Reason:      c.Reason,
		City:        c.City,
		Aging:       c.Aging,
		Status:      c.Status,
		Remark:      c.Remark,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func caseFromModel(m CaseModel) domain.Case {
	return domain.Case{
		ID:          m.ID,
		Date:        m.Date,
		CaseID:      m.CaseID,
		Branch:      m.Branch,
		Brand:       m.Brand,
		ServiceType: m.ServiceType,
		Reason:      m.Reason,
		City:        m.City,
		Aging:       m.Aging,
		Status:      m.Status,
		Remark:      m.Remark,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func importJobToModel(job domain.ImportJob) (ImportJobModel, error) {
	mapping, err := json.Marshal(job.ColumnMapping)
	if err != nil {
		return ImportJobModel{}, fmt.Errorf("encode column mapping: %w", err)
	}
	return ImportJobModel{
		ID:            job.ID,
		FileName:      job.FileName,
		ActorRole:     string(job.ActorRole),
		Accepted:      job.Accepted,
		Rejected:      job.Rejected,
		Failed:        job.Failed,
		ColumnMapping: datatypes.JSON(mapping),
		CreatedAt:     job.CreatedAt,
	}, nil
}

func importJobFromModel(m ImportJobModel) (domain.ImportJob, error) {
	var mapping map[string]int
	if len(m.ColumnMapping) > 0 {
		if err := json.Unmarshal(m.ColumnMapping, &mapping); err != nil {
			return domain.ImportJob{}, fmt.Errorf("decode column mapping: %w", err)
		}
	}
	return domain.ImportJob{
		ID:            m.ID,
		FileName:      m.FileName,
		ActorRole:     domain.Role(m.ActorRole),
		Accepted:      m.Accepted,
		Rejected:      m.Rejected,
		Failed:        m.Failed,
		ColumnMapping: mapping,
		CreatedAt:     m.CreatedAt,
	}, nil
}
