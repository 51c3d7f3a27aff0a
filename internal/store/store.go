// Package store caches menu history in the local SQLite database so the
// kiosk keeps rendering (and computing statistics) while the backend is
// unreachable.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"menukiosk/pkg/models"
)

type Store struct {
	DB *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{DB: db}
}

// UpsertMenu writes one menu through to the cache, keyed by fecha so a
// re-fetch of the same day replaces the old counters.
func (s *Store) UpsertMenu(ctx context.Context, m models.Menu) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO menus (id, fecha, main_dish, side, beverage, likes, dislikes)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(fecha) DO UPDATE SET
			id = excluded.id,
			main_dish = excluded.main_dish,
			side = excluded.side,
			beverage = excluded.beverage,
			likes = excluded.likes,
			dislikes = excluded.dislikes
	`, m.ID, m.Fecha, m.MainDish, m.Side, m.Beverage, m.Likes, m.Dislikes)
	if err != nil {
		return fmt.Errorf("upsert menu %s: %w", m.Fecha, err)
	}
	return nil
}

func (s *Store) UpsertAll(ctx context.Context, menus []models.Menu) error {
	for _, m := range menus {
		if err := s.UpsertMenu(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) All(ctx context.Context) ([]models.Menu, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, fecha, main_dish, side, beverage, likes, dislikes
		FROM menus
	`)
	if err != nil {
		return nil, fmt.Errorf("list menus: %w", err)
	}
	defer rows.Close()

	var out []models.Menu
	for rows.Next() {
		var m models.Menu
		if err := rows.Scan(&m.ID, &m.Fecha, &m.MainDish, &m.Side, &m.Beverage, &m.Likes, &m.Dislikes); err != nil {
			return nil, fmt.Errorf("scan menu: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// ByDate returns (nil, nil) when no menu is cached for that fecha.
func (s *Store) ByDate(ctx context.Context, fecha string) (*models.Menu, error) {
	row := s.DB.QueryRowContext(ctx, `
		SELECT id, fecha, main_dish, side, beverage, likes, dislikes
		FROM menus
		WHERE fecha = ?
	`, fecha)

	var m models.Menu
	if err := row.Scan(&m.ID, &m.Fecha, &m.MainDish, &m.Side, &m.Beverage, &m.Likes, &m.Dislikes); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan menu by date: %w", err)
	}
	return &m, nil
}
