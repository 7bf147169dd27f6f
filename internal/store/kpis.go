package store

import (
	"context"
	"fmt"
	"time"
)

type Count struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

type DayCount struct {
	Day   time.Time `json:"day"`
	Count int       `json:"count"`
}

type KPIs struct {
	Total        int        `json:"total"`
	ByStatus     []Count    `json:"by_status"`
	ByCategory   []Count    `json:"by_category"`
	ByDepartment []Count    `json:"by_department"`
	Timeseries   []DayCount `json:"timeseries"`
}

// KPIs aggregates ticket counts for the admin dashboard.
func (s *Store) KPIs(ctx context.Context) (*KPIs, error) {
	k := &KPIs{}
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM complaints`).Scan(&k.Total); err != nil {
		return nil, fmt.Errorf("count complaints: %w", err)
	}

	var err error
	if k.ByStatus, err = s.countBy(ctx, "status"); err != nil {
		return nil, err
	}
	if k.ByCategory, err = s.countBy(ctx, "category"); err != nil {
		return nil, err
	}
	if k.ByDepartment, err = s.countBy(ctx, "department"); err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT date_trunc('day', created_at) AS d, count(*)
		FROM complaints GROUP BY d ORDER BY d`)
	if err != nil {
		return nil, fmt.Errorf("query timeseries: %w", err)
	}
	defer rows.Close()

	k.Timeseries = []DayCount{}
	for rows.Next() {
		var dc DayCount
		if err := rows.Scan(&dc.Day, &dc.Count); err != nil {
			return nil, fmt.Errorf("scan timeseries: %w", err)
		}
		k.Timeseries = append(k.Timeseries, dc)
	}
	return k, rows.Err()
}

// countBy groups complaints by a fixed column name; col is never user input.
func (s *Store) countBy(ctx context.Context, col string) ([]Count, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+col+`, count(*) FROM complaints GROUP BY `+col+` ORDER BY `+col)
	if err != nil {
		return nil, fmt.Errorf("count by %s: %w", col, err)
	}
	defer rows.Close()

	out := []Count{}
	for rows.Next() {
		var c Count
		if err := rows.Scan(&c.Key, &c.Count); err != nil {
			return nil, fmt.Errorf("scan %s count: %w", col, err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
