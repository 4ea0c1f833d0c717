package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

const settingsTable = "settings"

// GetSetting возвращает значение настройки или пустую строку, если её нет.
func (s *storageImpl) GetSetting(ctx context.Context, key string) (string, error) {
	q, args, err := s.stmtBuilder().
		Select("value").
		From(settingsTable).
		Where(sq.Eq{"key": key}).
		Limit(1).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build sql query: %w", err)
	}

	var value string
	err = s.db.GetContext(ctx, &value, q, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("db.GetContext: %w", err)
	}

	return value, nil
}

// SetSetting пишет значение настройки, перезаписывая существующее.
func (s *storageImpl) SetSetting(ctx context.Context, key, value string) error {
	q, args, err := s.stmtBuilder().
		Insert(settingsTable).
		Columns("key", "value").
		Values(key, value).
		Suffix("ON CONFLICT(key) DO UPDATE SET value = excluded.value").
		ToSql()
	if err != nil {
		return fmt.Errorf("build sql query: %w", err)
	}

	_, err = s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("db.ExecContext: %w", err)
	}

	return nil
}
