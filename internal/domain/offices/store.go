package offices

import (
	"context"
	"errors"
	"fmt"

	"campusbook/internal/infra/dbx"
	"campusbook/internal/scheduling"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type Repository struct {
	db dbx.Querier
}

func NewRepository(q dbx.Querier) *Repository {
	return &Repository{db: q}
}

const officeColumns = `
	office_id, office_name, location, description,
	opening_time, closing_time, COALESCE(slot_interval_minutes, 0)`

func scanOffice(row pgx.Row) (*Office, error) {
	var (
		o             Office
		opening, clos pgtype.Time
	)
	if err := row.Scan(
		&o.ID,
		&o.Name,
		&o.Location,
		&o.Description,
		&opening,
		&clos,
		&o.SlotIntervalMinutes,
	); err != nil {
		return nil, err
	}
	o.OpeningTime = scheduling.Clock(dbx.Minutes(opening))
	o.ClosingTime = scheduling.Clock(dbx.Minutes(clos))
	return &o, nil
}

// List returns all offices ordered by name.
func (r *Repository) List(ctx context.Context) ([]Office, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := r.db.Query(ctx, `SELECT `+officeColumns+` FROM offices ORDER BY office_name`)
	if err != nil {
		return nil, fmt.Errorf("list offices: %w", err)
	}
	defer rows.Close()

	var out []Office
	for rows.Next() {
		o, err := scanOffice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan office: %w", err)
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func (r *Repository) GetByID(ctx context.Context, officeID int64) (*Office, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	o, err := scanOffice(r.db.QueryRow(ctx, `SELECT `+officeColumns+` FROM offices WHERE office_id = $1`, officeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get office %d: %w", officeID, err)
	}
	return o, nil
}
