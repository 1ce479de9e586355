package migrations

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Migration é um passo versionado e reversível do schema. Up e Down
// rodam cada um dentro de uma transação.
type Migration struct {
	Version string
	Name    string
	Up      func(tx *gorm.DB) error
	Down    func(tx *gorm.DB) error
}

type schemaMigration struct {
	Version   string `gorm:"primaryKey;size:32"`
	AppliedAt time.Time
}

func (schemaMigration) TableName() string { return "schema_migrations" }

// Run aplica em ordem as migrações ainda não registradas.
func Run(db *gorm.DB) error {
	if err := db.AutoMigrate(&schemaMigration{}); err != nil {
		return fmt.Errorf("erro ao preparar schema_migrations: %w", err)
	}

	for _, m := range All() {
		var count int64
		if err := db.Model(&schemaMigration{}).Where("version = ?", m.Version).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		zap.L().Info("aplicando migração", zap.String("version", m.Version), zap.String("name", m.Name))
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := m.Up(tx); err != nil {
				return err
			}
			return tx.Create(&schemaMigration{Version: m.Version, AppliedAt: time.Now()}).Error
		})
		if err != nil {
			return fmt.Errorf("migração %s (%s) falhou: %w", m.Version, m.Name, err)
		}
	}
	return nil
}

// Rollback desfaz a última migração aplicada.
func Rollback(db *gorm.DB) error {
	var last schemaMigration
	if err := db.Order("version DESC").First(&last).Error; err != nil {
		return fmt.Errorf("nenhuma migração aplicada: %w", err)
	}

	for _, m := range All() {
		if m.Version != last.Version {
			continue
		}
		zap.L().Info("revertendo migração", zap.String("version", m.Version), zap.String("name", m.Name))
		return db.Transaction(func(tx *gorm.DB) error {
			if err := m.Down(tx); err != nil {
				return err
			}
			return tx.Delete(&schemaMigration{}, "version = ?", m.Version).Error
		})
	}
	return fmt.Errorf("migração %s não registrada no código", last.Version)
}
