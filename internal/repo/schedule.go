package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/hwang1401/travel-planner/internal/domain"
)

// ScheduleRecord is a stored schedule row.
type ScheduleRecord struct {
	TripID    uuid.UUID
	Data      domain.Document
	Version   int64
	UpdatedBy string
	UpdatedAt time.Time

	// Deleted marks a tombstone: the schedule was deleted and Data is empty,
	// but Version still counts every save and delete of the trip.
	Deleted bool
}

// ScheduleRepo defines the persistence operations for trip schedules.
// The service layer depends on this interface, not the Postgres implementation.
type ScheduleRepo interface {
	// Get returns the stored schedule of a trip, which may be a tombstone.
	// Returns domain.ErrNotFound if the trip has never been saved.
	Get(ctx context.Context, tripID uuid.UUID) (ScheduleRecord, error)

	// Save stores doc as the trip's schedule and returns the stored row.
	// The version is minted by the database: 1 for the first save, then the
	// previous version plus one, atomically with the write. Saving over a
	// tombstone revives it.
	Save(ctx context.Context, tripID uuid.UUID, updatedBy string, doc domain.Document) (ScheduleRecord, error)

	// Delete replaces a trip's schedule with a tombstone at the next version
	// and returns it. Returns domain.ErrNotFound if there is no live schedule.
	Delete(ctx context.Context, tripID uuid.UUID, deletedBy string) (ScheduleRecord, error)
}

type pgScheduleRepo struct {
	db db
}

// NewScheduleRepo constructs a ScheduleRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewScheduleRepo(db db) ScheduleRepo {
	return &pgScheduleRepo{db: db}
}

// Get retrieves a trip's schedule by trip ID.
func (r *pgScheduleRepo) Get(ctx context.Context, tripID uuid.UUID) (ScheduleRecord, error) {
	const q = `
		SELECT trip_id, data, version, updated_by, updated_at, deleted_at IS NOT NULL
		FROM schedules
		WHERE trip_id = @trip_id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	rec, err := scanSchedule(row)
	if err != nil {
		return ScheduleRecord{}, fmt.Errorf("repo.ScheduleRepo.Get: %w", err)
	}
	return rec, nil
}

// Save upserts the schedule row. Concurrent saves of one trip serialize on
// the row lock, so every save gets a distinct version.
func (r *pgScheduleRepo) Save(ctx context.Context, tripID uuid.UUID, updatedBy string, doc domain.Document) (ScheduleRecord, error) {
	const q = `
		INSERT INTO schedules (trip_id, data, version, updated_by)
		VALUES (@trip_id, @data, 1, @updated_by)
		ON CONFLICT (trip_id) DO UPDATE
		SET data       = EXCLUDED.data,
		    version    = schedules.version + 1,
		    updated_by = EXCLUDED.updated_by,
		    updated_at = now(),
		    deleted_at = NULL
		RETURNING trip_id, data, version, updated_by, updated_at, deleted_at IS NOT NULL`

	args := pgx.NamedArgs{
		"trip_id":    tripID,
		"data":       doc, // encoded as jsonb
		"updated_by": updatedBy,
	}

	row := r.db.QueryRow(ctx, q, args)
	rec, err := scanSchedule(row)
	if err != nil {
		return ScheduleRecord{}, fmt.Errorf("repo.ScheduleRepo.Save: %w", err)
	}
	return rec, nil
}

// Delete turns the live row into a tombstone with an empty document. The
// row stays so later saves keep counting from its version.
func (r *pgScheduleRepo) Delete(ctx context.Context, tripID uuid.UUID, deletedBy string) (ScheduleRecord, error) {
	const q = `
		UPDATE schedules
		SET data       = '{}'::jsonb,
		    version    = version + 1,
		    updated_by = @updated_by,
		    updated_at = now(),
		    deleted_at = now()
		WHERE trip_id = @trip_id AND deleted_at IS NULL
		RETURNING trip_id, data, version, updated_by, updated_at, deleted_at IS NOT NULL`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"trip_id": tripID, "updated_by": deletedBy})
	rec, err := scanSchedule(row)
	if err != nil {
		return ScheduleRecord{}, fmt.Errorf("repo.ScheduleRepo.Delete: %w", err)
	}
	return rec, nil
}

// scanSchedule maps a single row into a ScheduleRecord. The jsonb data column
// decodes through domain.Item's JSON hooks, so legacy markers survive the read.
func scanSchedule(s scanner) (ScheduleRecord, error) {
	var (
		rec ScheduleRecord
		id  pgtype.UUID
	)
	err := s.Scan(&id, &rec.Data, &rec.Version, &rec.UpdatedBy, &rec.UpdatedAt, &rec.Deleted)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ScheduleRecord{}, domain.ErrNotFound
		}
		return ScheduleRecord{}, err
	}
	rec.TripID = uuid.UUID(id.Bytes)
	return rec, nil
}
