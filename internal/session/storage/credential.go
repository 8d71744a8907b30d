package storage

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/teamideas/idea-portal/internal/session"
)

// Credential is the single persisted row per browser session: the encrypted
// bearer credential keyed by session cookie value.
type Credential struct {
	SessionKey string    `gorm:"primaryKey;column:session_key"`
	Ciphertext []byte    `gorm:"column:ciphertext;not null"`
	CreatedAt  time.Time `gorm:"column:created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (Credential) TableName() string {
	return "session_credentials"
}

// CredentialRepository implements session.CredentialRepository using GORM.
type CredentialRepository struct {
	db *gorm.DB
}

func NewCredentialRepository(db *gorm.DB) session.CredentialRepository {
	return &CredentialRepository{db: db}
}

func (r *CredentialRepository) Save(sessionKey string, ciphertext []byte) error {
	record := Credential{
		SessionKey: sessionKey,
		Ciphertext: ciphertext,
		UpdatedAt:  time.Now(),
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"ciphertext", "updated_at"}),
	}).Create(&record).Error
}

func (r *CredentialRepository) Get(sessionKey string) ([]byte, error) {
	var record Credential
	err := r.db.Where("session_key = ?", sessionKey).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, session.ErrNoPersistedCredential
		}
		return nil, err
	}
	return record.Ciphertext, nil
}

func (r *CredentialRepository) Delete(sessionKey string) error {
	return r.db.Where("session_key = ?", sessionKey).Delete(&Credential{}).Error
}
