package db

import (
	"fmt"

	"chirp/models"

	"gorm.io/gorm"
)

type migration struct {
	name string
	sql  string
}

// Составные индексы, которые AutoMigrate не описывает тегами.
// Синтаксис совместим с PostgreSQL и SQLite.
var migrations = []migration{
	{
		name: "idx_posts_author_created",
		sql:  `CREATE INDEX IF NOT EXISTS idx_posts_author_created ON posts (author_id, created_at);`,
	},
	{
		name: "idx_posts_replying_created",
		sql:  `CREATE INDEX IF NOT EXISTS idx_posts_replying_created ON posts (replying_to, created_at);`,
	},
	{
		name: "idx_likes_user_id",
		sql:  `CREATE INDEX IF NOT EXISTS idx_likes_user_id ON likes (user_id);`,
	},
}

// RunMigrations применяет недостающие миграции и фиксирует их в таблице migrations
func RunMigrations(db *gorm.DB) error {
	for _, m := range migrations {
		var applied int64
		if err := db.Model(&models.Migration{}).Where("name = ?", m.name).Count(&applied).Error; err != nil {
			return fmt.Errorf("failed to check migration %s: %w", m.name, err)
		}
		if applied > 0 {
			continue
		}
		if err := db.Exec(m.sql).Error; err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", m.name, err)
		}
		if err := db.Create(&models.Migration{Name: m.name}).Error; err != nil {
			return fmt.Errorf("failed to record migration %s: %w", m.name, err)
		}
	}
	return nil
}
