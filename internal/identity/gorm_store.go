package identity

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// Record is the relational shape of one identity. Email is nullable; a NULL
// email means the gate has not been passed (or was logged out).
type Record struct {
	SessionID string  `gorm:"type:varchar(64);primaryKey"`
	Email     *string `gorm:"type:varchar(255)"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Record) TableName() string { return "identity_records" }

// GormStore keeps identity data in a relational database (mysql in
// deployment, sqlite in tests).
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, err
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) SaveSession(ctx context.Context, sessionID string) error {
	rec := Record{SessionID: sessionID}
	return s.db.WithContext(ctx).FirstOrCreate(&rec, Record{SessionID: sessionID}).Error
}

func (s *GormStore) SessionExists(ctx context.Context, sessionID string) (bool, error) {
	var cnt int64
	err := s.db.WithContext(ctx).Model(&Record{}).
		Where("session_id = ?", sessionID).
		Count(&cnt).Error
	if err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (s *GormStore) SaveEmail(ctx context.Context, sessionID, email string) error {
	res := s.db.WithContext(ctx).Model(&Record{}).
		Where("session_id = ?", sessionID).
		Update("email", email)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (s *GormStore) LoadEmail(ctx context.Context, sessionID string) (string, error) {
	var rec Record
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	if rec.Email == nil {
		return "", nil
	}
	return *rec.Email, nil
}

func (s *GormStore) DeleteEmail(ctx context.Context, sessionID string) error {
	return s.db.WithContext(ctx).Model(&Record{}).
		Where("session_id = ?", sessionID).
		Update("email", nil).Error
}
