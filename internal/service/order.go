package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shipdate/internal/estimator"
	"shipdate/internal/model"
)

var (
	ErrOrderAlreadyExistsByUser  = errors.New("order already placed by this user")
	ErrOrderAlreadyExistsByOther = errors.New("order already placed by another user")
	ErrOrderNotFound             = errors.New("order not found")
)

type OrderService struct {
	db       *sql.DB
	schedule *ScheduleService
}

func NewOrderService(db *sql.DB, schedule *ScheduleService) *OrderService {
	return &OrderService{db: db, schedule: schedule}
}

// Create places an order and stores an estimated delivery date computed from
// the current schedule. The estimate is a snapshot; the refresh worker keeps
// it current as busy days and settings change.
func (s *OrderService) Create(ctx context.Context, userID, number string) (*model.Order, error) {
	placedAt := time.Now()

	estimate, err := s.estimateAt(ctx, placedAt)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var existingUserID string
	err = tx.QueryRowContext(ctx, `SELECT user_id FROM orders WHERE number = $1`, number).Scan(&existingUserID)
	if err == nil {
		if existingUserID == userID {
			return nil, ErrOrderAlreadyExistsByUser
		}
		return nil, ErrOrderAlreadyExistsByOther
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("check order: %w", err)
	}

	var order model.Order
	err = tx.QueryRowContext(ctx,
		`INSERT INTO orders (user_id, number, placed_at, estimated_delivery_date)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, user_id, number, placed_at`,
		userID, number, placedAt, estimate.Time(time.UTC),
	).Scan(&order.ID, &order.UserID, &order.Number, &order.PlacedAt)
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}
	order.EstimatedDeliveryDate = &estimate

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &order, nil
}

func (s *OrderService) ListByUser(ctx context.Context, userID string) ([]model.Order, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, number, placed_at, confirmed_delivery_date, estimated_delivery_date
		FROM orders
		WHERE user_id = $1
		ORDER BY placed_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return orders, nil
}

func (s *OrderService) GetByNumber(ctx context.Context, number string) (*model.Order, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, number, placed_at, confirmed_delivery_date, estimated_delivery_date
		FROM orders
		WHERE number = $1
	`, number)

	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

// DeliveryDate resolves the order's delivery date. A confirmed date always
// wins; otherwise the estimate is recomputed live from the current schedule.
func (s *OrderService) DeliveryDate(ctx context.Context, order *model.Order) (estimator.CivilDate, bool, error) {
	if order.ConfirmedDeliveryDate != nil {
		return *order.ConfirmedDeliveryDate, true, nil
	}

	estimate, err := s.estimateAt(ctx, order.PlacedAt)
	if err != nil {
		return estimator.CivilDate{}, false, err
	}
	return estimate, false, nil
}

// ConfirmDelivery pins the order's delivery date, bypassing the estimator
// from then on.
func (s *OrderService) ConfirmDelivery(ctx context.Context, number string, date estimator.CivilDate) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE orders SET confirmed_delivery_date = $1 WHERE number = $2`,
		date.Time(time.UTC), number,
	)
	if err != nil {
		return fmt.Errorf("confirm delivery: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// ListUnconfirmed returns orders still subject to the estimator, oldest first.
func (s *OrderService) ListUnconfirmed(ctx context.Context, limit int) ([]model.Order, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, number, placed_at, confirmed_delivery_date, estimated_delivery_date
		FROM orders
		WHERE confirmed_delivery_date IS NULL
		ORDER BY placed_at ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query unconfirmed: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return orders, nil
}

func (s *OrderService) UpdateEstimate(ctx context.Context, number string, estimate estimator.CivilDate) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE orders SET estimated_delivery_date = $1 WHERE number = $2 AND confirmed_delivery_date IS NULL`,
		estimate.Time(time.UTC), number,
	)
	if err != nil {
		return fmt.Errorf("update estimate: %w", err)
	}
	return nil
}

func (s *OrderService) estimateAt(ctx context.Context, placedAt time.Time) (estimator.CivilDate, error) {
	settings, err := s.schedule.Settings(ctx)
	if err != nil {
		return estimator.CivilDate{}, err
	}
	busy, err := s.schedule.BusyDaySet(ctx)
	if err != nil {
		return estimator.CivilDate{}, err
	}

	estimate, err := estimator.Estimate(placedAt, busy, settings.Estimator())
	if err != nil {
		return estimator.CivilDate{}, fmt.Errorf("estimate delivery: %w", err)
	}
	return estimate, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*model.Order, error) {
	var (
		order     model.Order
		confirmed sql.NullTime
		estimated sql.NullTime
	)
	if err := row.Scan(&order.ID, &order.UserID, &order.Number, &order.PlacedAt, &confirmed, &estimated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}
	if confirmed.Valid {
		d := estimator.CivilDateOf(confirmed.Time)
		order.ConfirmedDeliveryDate = &d
	}
	if estimated.Valid {
		d := estimator.CivilDateOf(estimated.Time)
		order.EstimatedDeliveryDate = &d
	}
	return &order, nil
}
