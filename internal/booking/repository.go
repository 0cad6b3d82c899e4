package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/stadium-booking-backend/internal/schedule"
)

type Repository interface {
	// Create inserts a pending booking. A concurrent insert for an overlapping
	// slot is rejected by the store and reported as ErrSlotTakenConcurrently.
	Create(ctx context.Context, booking *Booking) error
	GetByID(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)
	ListByStadiumDate(ctx context.Context, stadiumID string, date time.Time, statuses []Status) ([]*Booking, error)

	// UpdateStatus moves a booking from one status to another. It only writes
	// when the stored status still equals from, otherwise ErrInvalidTransition.
	UpdateStatus(ctx context.Context, id string, from, to Status, cancelledBy, cancelReason *string) error
	UpdateNotes(ctx context.Context, id string, notes string) error
	OwnerStats(ctx context.Context, ownerID string) (OwnerStats, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var bookingColumns = []string{
	"b.id", "b.stadium_id", "s.name", "s.owner_id", "b.user_id", "b.booking_date",
	"b.start_time::text", "b.end_time::text", "b.status", "b.payment_status", "b.total_price",
	"b.notes", "b.cancelled_by", "b.cancel_reason", "b.created_at", "b.updated_at",
}

func selectBookings() squirrel.SelectBuilder {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	return psql.Select(bookingColumns...).
		From("public.bookings b").
		Join("public.stadiums s ON b.stadium_id = s.id")
}

func scanBooking(row pgx.Row, extra ...any) (*Booking, error) {
	var b Booking
	var start, end string
	dest := []any{
		&b.ID, &b.StadiumID, &b.StadiumName, &b.OwnerID, &b.UserID, &b.Date,
		&start, &end, &b.Status, &b.PaymentStatus, &b.TotalPrice,
		&b.Notes, &b.CancelledBy, &b.CancelReason, &b.CreatedAt, &b.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	var err error
	if b.StartTime, err = schedule.ParseTimeLabel(start); err != nil {
		return nil, fmt.Errorf("booking %s start time: %w", b.ID, err)
	}
	if b.EndTime, err = schedule.ParseTimeLabel(end); err != nil {
		return nil, fmt.Errorf("booking %s end time: %w", b.ID, err)
	}
	b.Date = schedule.Day(b.Date)
	return &b, nil
}

func (r *pgxRepository) Create(ctx context.Context, b *Booking) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.bookings").
		Columns(
			"stadium_id", "user_id", "booking_date", "start_time", "end_time",
			"status", "payment_status", "total_price", "notes",
		).
		Values(
			b.StadiumID, b.UserID, schedule.FormatDate(b.Date), string(b.StartTime), string(b.EndTime),
			b.Status, b.PaymentStatus, b.TotalPrice, b.Notes,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create booking query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgerrcode.UniqueViolation, pgerrcode.ExclusionViolation:
				return ErrSlotTakenConcurrently
			case pgerrcode.ForeignKeyViolation:
				return ErrStadiumNotFound
			}
		}
		return fmt.Errorf("create booking failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	query, args, err := selectBookings().
		Where(squirrel.Eq{"b.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking query failed: %w", err)
	}

	b, err := scanBooking(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking failed: %w", err)
	}
	return b, nil
}

func (r *pgxRepository) ListByStadiumDate(ctx context.Context, stadiumID string, date time.Time, statuses []Status) ([]*Booking, error) {
	query := selectBookings().
		Where(squirrel.Eq{"b.stadium_id": stadiumID}).
		Where(squirrel.Eq{"b.booking_date": schedule.FormatDate(date)}).
		OrderBy("b.start_time ASC")

	if len(statuses) > 0 {
		names := make([]string, len(statuses))
		for i, s := range statuses {
			names[i] = string(s)
		}
		query = query.Where(squirrel.Eq{"b.status": names})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list stadium bookings query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list stadium bookings failed: %w", err)
	}
	defer rows.Close()

	bookings := make([]*Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list stadium bookings failed: %w", err)
	}
	return bookings, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	query := selectBookings().Column("count(*) OVER() as total_count")

	if filter.UserID != "" {
		query = query.Where(squirrel.Eq{"b.user_id": filter.UserID})
	}
	if filter.OwnerID != "" {
		query = query.Where(squirrel.Eq{"s.owner_id": filter.OwnerID})
	}
	if filter.StadiumID != "" {
		query = query.Where(squirrel.Eq{"b.stadium_id": filter.StadiumID})
	}
	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"b.status": filter.Status})
	}
	if filter.DateFrom != nil {
		query = query.Where(squirrel.GtOrEq{"b.booking_date": schedule.FormatDate(*filter.DateFrom)})
	}
	if filter.DateTo != nil {
		query = query.Where(squirrel.LtOrEq{"b.booking_date": schedule.FormatDate(*filter.DateTo)})
	}

	orderDir := "DESC"
	if strings.EqualFold(filter.SortOrder, "ASC") {
		orderDir = "ASC"
	}
	switch filter.SortBy {
	case "", "booking_date":
		query = query.OrderBy("b.booking_date "+orderDir, "b.start_time "+orderDir)
	default:
		// Safe to prepend b. as the handler only allows known columns
		query = query.OrderBy("b." + filter.SortBy + " " + orderDir)
	}

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
		return nil, 0, fmt.Errorf("build list bookings query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings failed: %w", err)
	}
	defer rows.Close()

	var bookings []*Booking
	var total int
	for rows.Next() {
		b, err := scanBooking(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list bookings failed: %w", err)
	}

	return bookings, total, nil
}

func (r *pgxRepository) UpdateStatus(ctx context.Context, id string, from, to Status, cancelledBy, cancelReason *string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	update := psql.Update("public.bookings").
		Set("status", to).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id, "status": from})

	if to == StatusCancelled {
		update = update.Set("cancelled_by", cancelledBy).Set("cancel_reason", cancelReason)
	}

	query, args, err := update.ToSql()
	if err != nil {
		return fmt.Errorf("build update booking status query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update booking status failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrInvalidTransition
	}
	return nil
}

func (r *pgxRepository) UpdateNotes(ctx context.Context, id string, notes string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.bookings").
		Set("notes", notes).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update booking notes query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update booking notes failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) OwnerStats(ctx context.Context, ownerID string) (OwnerStats, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(
		"count(*)",
		"count(*) FILTER (WHERE b.status = 'pending')",
		"count(*) FILTER (WHERE b.status = 'confirmed')",
		"count(*) FILTER (WHERE b.status = 'cancelled')",
		"coalesce(sum(b.total_price) FILTER (WHERE b.status = 'confirmed'), 0)",
		"coalesce(sum(b.total_price) FILTER (WHERE b.status = 'pending'), 0)",
	).
		From("public.bookings b").
		Join("public.stadiums s ON b.stadium_id = s.id").
		Where(squirrel.Eq{"s.owner_id": ownerID}).
		ToSql()
	if err != nil {
		return OwnerStats{}, fmt.Errorf("build owner stats query failed: %w", err)
	}

	var st OwnerStats
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&st.Total, &st.Pending, &st.Confirmed, &st.Cancelled, &st.TotalRevenue, &st.PendingRevenue,
	); err != nil {
		return OwnerStats{}, fmt.Errorf("owner stats failed: %w", err)
	}
	return st, nil
}
