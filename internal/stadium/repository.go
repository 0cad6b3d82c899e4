package stadium

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/stadium-booking-backend/internal/schedule"
)

// Repository defines data access methods for stadiums.
type Repository interface {
	Create(ctx context.Context, s *Stadium) error
	GetByID(ctx context.Context, id string) (*Stadium, error)
	List(ctx context.Context, filter Filter) ([]*Stadium, int, error)
	Update(ctx context.Context, s *Stadium) error
	// Delete soft-deletes the stadium and cancels its active bookings dated from
	// "from" onward, in one transaction. It returns how many bookings it cancelled.
	Delete(ctx context.Context, id string, from time.Time, actorID string) (int64, error)

	// UpdateSchedule replaces the weekly schedule and/or the date overrides. Nil leaves a column untouched.
	UpdateSchedule(ctx context.Context, id string, weekly schedule.Weekly, overrides schedule.Overrides) error
	// SetDateOverride writes a single date key without touching the other dates.
	SetDateOverride(ctx context.Context, id string, date time.Time, d schedule.DayOverride) error
	ClearDateOverride(ctx context.Context, id string, date time.Time) error

	// SetDateOverrideIf and SetWeeklyIf write only while updated_at still equals
	// version, and return ErrConcurrentUpdate otherwise.
	SetDateOverrideIf(ctx context.Context, id string, date time.Time, d schedule.DayOverride, version time.Time) error
	SetWeeklyIf(ctx context.Context, id string, weekly schedule.Weekly, version time.Time) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var stadiumColumns = []string{
	"s.id", "s.owner_id", "s.name", "s.city", "s.address", "s.price_per_hour", "s.is_active",
	"s.photos", "s.weekly_schedule", "s.date_overrides", "s.created_at", "s.updated_at",
}

// scanStadium decodes the JSONB columns through the schedule codec.
func scanStadium(row pgx.Row, extra ...any) (*Stadium, error) {
	var s Stadium
	var weekly, overrides []byte
	dest := []any{
		&s.ID, &s.OwnerID, &s.Name, &s.City, &s.Address, &s.PricePerHour, &s.IsActive,
		&s.Photos, &weekly, &overrides, &s.CreatedAt, &s.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(weekly, &s.WeeklySchedule); err != nil {
		return nil, fmt.Errorf("decode weekly schedule of stadium %s: %w", s.ID, err)
	}
	if err := json.Unmarshal(overrides, &s.DateOverrides); err != nil {
		return nil, fmt.Errorf("decode date overrides of stadium %s: %w", s.ID, err)
	}
	if s.Photos == nil {
		s.Photos = []string{}
	}
	return &s, nil
}

func (r *pgxRepository) Create(ctx context.Context, s *Stadium) error {
	weekly, err := json.Marshal(s.WeeklySchedule)
	if err != nil {
		return fmt.Errorf("encode weekly schedule: %w", err)
	}
	overrides, err := json.Marshal(s.DateOverrides)
	if err != nil {
		return fmt.Errorf("encode date overrides: %w", err)
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.stadiums").
		Columns(
			"owner_id", "name", "city", "address", "price_per_hour", "is_active",
			"photos", "weekly_schedule", "date_overrides",
		).
		Values(
			s.OwnerID, s.Name, s.City, s.Address, s.PricePerHour, s.IsActive,
			s.Photos, weekly, overrides,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create stadium query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return fmt.Errorf("create stadium failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Stadium, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(stadiumColumns...).
		From("public.stadiums s").
		Where(squirrel.Eq{"s.id": id}).
		Where("s.deleted_at IS NULL").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get stadium query failed: %w", err)
	}

	s, err := scanStadium(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get stadium failed: %w", err)
	}
	return s, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Stadium, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(append(stadiumColumns, "count(*) OVER() as total_count")...).
		From("public.stadiums s").
		Where("s.deleted_at IS NULL")

	if filter.OwnerID != "" {
		query = query.Where(squirrel.Eq{"s.owner_id": filter.OwnerID})
	}
	if filter.City != "" {
		query = query.Where(squirrel.ILike{"s.city": filter.City})
	}
	if filter.Name != "" {
		query = query.Where(squirrel.ILike{"s.name": "%" + filter.Name + "%"})
	}
	if filter.IsActive != nil {
		query = query.Where(squirrel.Eq{"s.is_active": *filter.IsActive})
	}

	orderBy := "s.created_at"
	if filter.SortBy != "" {
		// Safe to prepend s. as the handler only allows known columns
		orderBy = "s." + filter.SortBy
	}
	orderDir := "DESC"
	if strings.EqualFold(filter.SortOrder, "ASC") {
		orderDir = "ASC"
	}
	query = query.OrderBy(orderBy + " " + orderDir)

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize
	query = query.Limit(uint64(filter.PageSize)).Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list stadiums query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list stadiums failed: %w", err)
	}
	defer rows.Close()

	var stadiums []*Stadium
	var total int
	for rows.Next() {
		s, err := scanStadium(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan stadium failed: %w", err)
		}
		stadiums = append(stadiums, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list stadiums failed: %w", err)
	}

	return stadiums, total, nil
}

func (r *pgxRepository) Update(ctx context.Context, s *Stadium) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.stadiums").
		Set("name", s.Name).
		Set("city", s.City).
		Set("address", s.Address).
		Set("price_per_hour", s.PricePerHour).
		Set("is_active", s.IsActive).
		Set("photos", s.Photos).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": s.ID}).
		Where("deleted_at IS NULL").
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update stadium query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&s.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("update stadium failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, id string, from time.Time, actorID string) (int64, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	hide, hideArgs, err := psql.Update("public.stadiums").
		Set("deleted_at", squirrel.Expr("now()")).
		Set("is_active", false).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		Where("deleted_at IS NULL").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete stadium query failed: %w", err)
	}
	cancel, cancelArgs, err := psql.Update("public.bookings").
		Set("status", "cancelled").
		Set("cancelled_by", actorID).
		Set("cancel_reason", StadiumRemovedReason).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"stadium_id": id}).
		Where(squirrel.NotEq{"status": "cancelled"}).
		Where(squirrel.GtOrEq{"booking_date": from}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build cancel bookings query failed: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin delete stadium failed: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	ct, err := tx.Exec(ctx, hide, hideArgs...)
	if err != nil {
		return 0, fmt.Errorf("delete stadium failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return 0, ErrNotFound
	}
	ct, err = tx.Exec(ctx, cancel, cancelArgs...)
	if err != nil {
		return 0, fmt.Errorf("cancel upcoming bookings failed: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit delete stadium failed: %w", err)
	}
	return ct.RowsAffected(), nil
}

func (r *pgxRepository) UpdateSchedule(ctx context.Context, id string, weekly schedule.Weekly, overrides schedule.Overrides) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	update := psql.Update("public.stadiums").
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id})

	if weekly != nil {
		raw, err := json.Marshal(weekly)
		if err != nil {
			return fmt.Errorf("encode weekly schedule: %w", err)
		}
		update = update.Set("weekly_schedule", raw)
	}
	if overrides != nil {
		raw, err := json.Marshal(overrides)
		if err != nil {
			return fmt.Errorf("encode date overrides: %w", err)
		}
		update = update.Set("date_overrides", raw)
	}

	return r.exec(ctx, update, "update stadium schedule")
}

func (r *pgxRepository) SetDateOverride(ctx context.Context, id string, date time.Time, d schedule.DayOverride) error {
	if len(d) == 0 {
		return r.ClearDateOverride(ctx, id, date)
	}
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode day override: %w", err)
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	update := psql.Update("public.stadiums").
		Set("date_overrides", squirrel.Expr("jsonb_set(date_overrides, ARRAY[?]::text[], ?::jsonb, true)", schedule.FormatDate(date), raw)).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id})

	return r.exec(ctx, update, "set date override")
}

func (r *pgxRepository) ClearDateOverride(ctx context.Context, id string, date time.Time) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	update := psql.Update("public.stadiums").
		Set("date_overrides", squirrel.Expr("date_overrides - ?::text", schedule.FormatDate(date))).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id})

	return r.exec(ctx, update, "clear date override")
}

func (r *pgxRepository) SetDateOverrideIf(ctx context.Context, id string, date time.Time, d schedule.DayOverride, version time.Time) error {
	key := schedule.FormatDate(date)
	value := squirrel.Expr("date_overrides - ?::text", key)
	if len(d) > 0 {
		raw, err := json.Marshal(d)
		if err != nil {
			return fmt.Errorf("encode day override: %w", err)
		}
		value = squirrel.Expr("jsonb_set(date_overrides, ARRAY[?]::text[], ?::jsonb, true)", key, raw)
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	update := psql.Update("public.stadiums").
		Set("date_overrides", value).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id, "updated_at": version})

	return r.execIf(ctx, update, "set date override")
}

func (r *pgxRepository) SetWeeklyIf(ctx context.Context, id string, weekly schedule.Weekly, version time.Time) error {
	raw, err := json.Marshal(weekly)
	if err != nil {
		return fmt.Errorf("encode weekly schedule: %w", err)
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	update := psql.Update("public.stadiums").
		Set("weekly_schedule", raw).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id, "updated_at": version})

	return r.execIf(ctx, update, "set weekly schedule")
}

// execIf is exec for version-guarded updates: no matching row means the
// version moved on, since the caller has just read the stadium.
func (r *pgxRepository) execIf(ctx context.Context, update squirrel.UpdateBuilder, op string) error {
	err := r.exec(ctx, update, op)
	if errors.Is(err, ErrNotFound) {
		return ErrConcurrentUpdate
	}
	return err
}

func (r *pgxRepository) exec(ctx context.Context, update squirrel.UpdateBuilder, op string) error {
	query, args, err := update.Where("deleted_at IS NULL").ToSql()
	if err != nil {
		return fmt.Errorf("build %s query failed: %w", op, err)
	}
	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s failed: %w", op, err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
