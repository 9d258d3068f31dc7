package mysql

import (
	"context"
	"database/sql"
	"errors"

	"villa_catalog/internal/adapters/observability"
	"villa_catalog/internal/domain"
)

func valStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Repo is a MySQL-backed translation store.
type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) PutTranslation(ctx context.Context, e domain.TranslationEntry) error {
	observability.ObserveCache("mysql", "set")
	_, err := r.db.ExecContext(ctx, upsertTranslationSQL,
		e.ContentHash,
		e.TargetLang,
		e.OriginalText,
		e.TranslatedText,
		valStr(e.SourceLang),
		e.CreatedAt.UTC(),
	)
	return err
}

func (r *Repo) GetTranslation(ctx context.Context, hash, lang string) (domain.TranslationEntry, bool, error) {
	var e domain.TranslationEntry
	var src sql.NullString
	err := r.db.QueryRowContext(ctx, getTranslationSQL, hash, lang).Scan(
		&e.ContentHash,
		&e.TargetLang,
		&e.OriginalText,
		&e.TranslatedText,
		&src,
		&e.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		observability.ObserveCache("mysql", "miss")
		return domain.TranslationEntry{}, false, nil
	}
	if err != nil {
		return domain.TranslationEntry{}, false, err
	}
	if src.Valid {
		e.SourceLang = src.String
	}
	observability.ObserveCache("mysql", "hit")
	return e, true, nil
}

// Count reports how many entries the cache holds.
func (r *Repo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, countTranslationsSQL).Scan(&n)
	return n, err
}
