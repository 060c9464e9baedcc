package db

import (
	"database/sql"
)

func MigrateUp(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS articles (
    id                  UUID PRIMARY KEY,
    user_id             UUID NOT NULL,
    keyword             TEXT NOT NULL,
    target              TEXT NOT NULL,
    article_type        TEXT NOT NULL,
    important_keywords  JSONB,
    status              TEXT NOT NULL DEFAULT 'draft',
    title               TEXT NOT NULL DEFAULT '',
    content             TEXT NOT NULL DEFAULT '',
    error_message       TEXT NOT NULL DEFAULT '',
    analyzed_keywords   JSONB,
    selected_keywords   JSONB,
    meta_title          TEXT NOT NULL DEFAULT '',
    meta_description    TEXT NOT NULL DEFAULT '',
    subtopics           JSONB,
    serp_structure      JSONB,
    external_article_id TEXT NOT NULL DEFAULT '',
    created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at          TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS article_history (
    id         UUID PRIMARY KEY,
    article_id UUID NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
    user_id    UUID NOT NULL,
    action     TEXT NOT NULL,
    status     TEXT NOT NULL,
    detail     TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS settings (
    id         UUID PRIMARY KEY,
    user_id    UUID NOT NULL,
    key        TEXT NOT NULL,
    value      TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (user_id, key)
)`); err != nil {
		return err
	}

	indexes := []string{
		// owner-scoped listing, created_at DESC
		`CREATE INDEX IF NOT EXISTS idx_articles_user_created ON articles(user_id, created_at DESC)`,
		// reconciler scan for stale in-flight articles
		`CREATE INDEX IF NOT EXISTS idx_articles_status_updated ON articles(status, updated_at)`,
		// history lookups, newest first
		`CREATE INDEX IF NOT EXISTS idx_history_article_created ON article_history(article_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_settings_user ON settings(user_id)`,
	}
	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return err
		}
	}

	return nil
}

// MigrateDown rolls back the database schema.
// Use with caution: this will delete all data in the affected tables.
func MigrateDown(db *sql.DB) error {
	dropStatements := []string{
		`DROP TABLE IF EXISTS article_history CASCADE`,
		`DROP TABLE IF EXISTS settings CASCADE`,
		`DROP TABLE IF EXISTS articles CASCADE`,
	}
	for _, stmt := range dropStatements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
