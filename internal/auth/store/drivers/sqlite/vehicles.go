package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/Ma16q/MotriLog/internal/auth/domain"
	"github.com/Ma16q/MotriLog/internal/auth/store"
)

type vehiclesRepo struct {
	db dbtx
}

func (r *vehiclesRepo) ListVehiclesByOwner(ctx context.Context, userID string) ([]domain.Vehicle, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, manufacturer, model, year, vin, license_plate, color,
		       initial_mileage, current_mileage, image_filename, created_at
		FROM vehicles WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Vehicle{}
	for rows.Next() {
		var (
			v       domain.Vehicle
			created int64
		)
		if err := rows.Scan(&v.ID, &v.UserID, &v.Manufacturer, &v.Model, &v.Year, &v.VIN,
			&v.LicensePlate, &v.Color, &v.InitialMileage, &v.CurrentMileage, &v.ImageFilename,
			&created); err != nil {
			return nil, err
		}
		v.CreatedAt = fromMillis(created)
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *vehiclesRepo) CreateVehicle(ctx context.Context, v domain.Vehicle) error {
	if v.UserID == "" || v.Manufacturer == "" || v.Model == "" {
		return fmt.Errorf("%w: vehicle needs owner, manufacturer and model", store.ErrInvalidRecord)
	}
	created := v.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO vehicles (id, user_id, manufacturer, model, year, vin, license_plate, color,
		                      initial_mileage, current_mileage, image_filename, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.UserID, v.Manufacturer, v.Model, v.Year, v.VIN, v.LicensePlate, v.Color,
		v.InitialMileage, v.CurrentMileage, v.ImageFilename, toMillis(created),
	)
	return mapConstraint(err)
}
