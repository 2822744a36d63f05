package database

import (
	"fmt"

	"gorm.io/gorm"
)

// AddIndexes adds performance-critical indexes. Only runs against Postgres;
// MySQL deployments rely on the index tags applied during AutoMigrate.
func AddIndexes(db *gorm.DB) error {
	if db.Dialector.Name() != "postgres" {
		return nil
	}

	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Task indexes for the board and table views
		{"tasks", "idx_tasks_workspace_id", "workspace_id"},
		{"tasks", "idx_tasks_status", "status"},
		{"tasks", "idx_tasks_created_at", "created_at"},

		// Membership lookups
		{"workspace_members", "idx_workspace_members_workspace_id", "workspace_id"},
		{"workspace_members", "idx_workspace_members_user_id", "user_id"},

		// Invite resolution
		{"token_invites", "idx_token_invites_token", "token"},
		{"pending_invites", "idx_pending_invites_user_id", "user_id"},

		// Task detail
		{"task_assignments", "idx_task_assignments_task_id", "task_id"},
		{"task_notes", "idx_task_notes_task_id", "task_id"},
	}

	for _, idx := range indexes {
		var count int64
		err := db.Raw(`
			SELECT COUNT(*)
			FROM pg_indexes
			WHERE tablename = ? AND indexname = ?
		`, idx.table, idx.name).Count(&count).Error

		if err != nil {
			return fmt.Errorf("failed to check index %s: %w", idx.name, err)
		}

		if count > 0 {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}

	return nil
}
