package repository

import (
	"context"
	"database/sql"
	"errors"

	"toyWholesale/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type OrderRepository interface {
	// CreateOrderWithChat stores the order and its chat atomically.
	CreateOrderWithChat(ctx context.Context, order models.Order_db) (orderId int, chatId int, err error)
	GetOrderById(ctx context.Context, orderId int) (models.Order_db, error)
	SearchOrders(ctx context.Context, data models.OrderSearchData) ([]models.Order_db, error)
	SetOrderStatus(ctx context.Context, orderId int, status models.OrderStatus, deliveryDate string) error
	CountOrdersByStatus(ctx context.Context) (map[models.OrderStatus]int, error)
	TotalRevenue(ctx context.Context) (decimal.Decimal, error)
}

type OrderRepo struct {
	db  *sql.DB
	log *zap.Logger
}

func NewOrderRepository(conn *sql.DB, log *zap.Logger) (OrderRepository, error) {
	if conn == nil {
		return nil, errors.New("conn must be non-nil")
	}
	err := conn.Ping()
	if err != nil {
		return nil, err
	}
	return &OrderRepo{
		db:  conn,
		log: log.Named("orders"),
	}, nil
}

func (o *OrderRepo) CreateOrderWithChat(ctx context.Context, order models.Order_db) (orderId int, chatId int, err error) {
	items, err := models.EncodeOrderItems(order.Items)
	if err != nil {
		o.log.Error("CreateOrderWithChat: encode items", zap.Error(err))
		err = models.ErrServerError
		return
	}

	tx, err := o.db.BeginTx(ctx, nil)
	if err != nil {
		o.log.Error("CreateOrderWithChat: begin", zap.Error(err))
		err = models.ErrServerError
		return
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				o.log.Error("CreateOrderWithChat: rollback", zap.Error(rbErr))
			}
		}
	}()

	err = tx.QueryRowContext(ctx, `INSERT INTO orders
		(user_id, items, total, delivery_address, status, delivery_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		order.UserId, items, order.Total, order.DeliveryAddress, string(order.Status),
		order.DeliveryDate, order.CreatedAt).Scan(&orderId)
	if err != nil {
		o.log.Error("CreateOrderWithChat: order", zap.Error(err))
		err = models.ErrServerError
		return
	}

	err = tx.QueryRowContext(ctx, "INSERT INTO chats (order_id, user_id, created_at) VALUES ($1, $2, $3) RETURNING id",
		orderId, order.UserId, order.CreatedAt).Scan(&chatId)
	if err != nil {
		o.log.Error("CreateOrderWithChat: chat", zap.Error(err))
		err = models.ErrServerError
		return
	}

	if err = tx.Commit(); err != nil {
		o.log.Error("CreateOrderWithChat: commit", zap.Error(err))
		err = models.ErrServerError
	}
	return
}

const orderColumns = "id, user_id, items, total, delivery_address, status, delivery_date, created_at"

func (o *OrderRepo) scanOrder(row interface{ Scan(...any) error }, ord *models.Order_db) error {
	var items []byte
	var status string
	err := row.Scan(&ord.Id, &ord.UserId, &items, &ord.Total, &ord.DeliveryAddress, &status,
		&ord.DeliveryDate, &ord.CreatedAt)
	if err != nil {
		return err
	}
	ord.Status = models.OrderStatus(status)
	ord.Items, err = models.DecodeOrderItems(items)
	return err
}

func (o *OrderRepo) GetOrderById(ctx context.Context, orderId int) (order models.Order_db, err error) {
	row := o.db.QueryRowContext(ctx, "SELECT "+orderColumns+" FROM orders WHERE id = $1", orderId)
	err = o.scanOrder(row, &order)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = models.ErrNotFoundError
		} else {
			o.log.Error("GetOrderById", zap.Error(err))
			err = models.ErrServerError
		}
	}
	return
}

// SearchOrders lists orders newest first, optionally narrowed to one user or status.
func (o *OrderRepo) SearchOrders(ctx context.Context, data models.OrderSearchData) (orders []models.Order_db, err error) {
	var w whereBuilder
	if data.UserId != nil {
		w.add("user_id = ?", *data.UserId)
	}
	if data.Status != nil {
		w.add("status = ?", string(*data.Status))
	}

	rows, err := o.db.QueryContext(ctx, "SELECT "+orderColumns+" FROM orders"+w.String()+" ORDER BY created_at DESC, id DESC", w.params...)
	if err != nil {
		o.log.Error("SearchOrders", zap.Error(err))
		err = models.ErrServerError
		return
	}
	defer rows.Close()

	orders = []models.Order_db{}
	for rows.Next() {
		var ord models.Order_db
		if err = o.scanOrder(rows, &ord); err != nil {
			o.log.Error("SearchOrders", zap.Error(err))
			err = models.ErrServerError
			return
		}
		orders = append(orders, ord)
	}
	if err = rows.Err(); err != nil {
		o.log.Error("SearchOrders", zap.Error(err))
		err = models.ErrServerError
	}
	return
}

// SetOrderStatus writes the status and, when deliveryDate is non-empty, the
// delivery date. Items and total are never touched.
func (o *OrderRepo) SetOrderStatus(ctx context.Context, orderId int, status models.OrderStatus, deliveryDate string) (err error) {
	date := sql.NullString{String: deliveryDate, Valid: deliveryDate != ""}
	res, err := o.db.ExecContext(ctx,
		"UPDATE orders SET status = $1, delivery_date = COALESCE($2, delivery_date) WHERE id = $3",
		string(status), date, orderId)
	if err != nil {
		o.log.Error("SetOrderStatus", zap.Error(err))
		err = models.ErrServerError
		return
	}
	n, err := res.RowsAffected()
	if err != nil {
		o.log.Error("SetOrderStatus", zap.Error(err))
		err = models.ErrServerError
		return
	}
	if n == 0 {
		err = models.ErrNotFoundError
	}
	return
}

func (o *OrderRepo) CountOrdersByStatus(ctx context.Context) (counts map[models.OrderStatus]int, err error) {
	rows, err := o.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM orders GROUP BY status")
	if err != nil {
		o.log.Error("CountOrdersByStatus", zap.Error(err))
		err = models.ErrServerError
		return
	}
	defer rows.Close()

	counts = make(map[models.OrderStatus]int)
	for rows.Next() {
		var status string
		var n int
		if err = rows.Scan(&status, &n); err != nil {
			o.log.Error("CountOrdersByStatus", zap.Error(err))
			err = models.ErrServerError
			return
		}
		counts[models.OrderStatus(status)] = n
	}
	if err = rows.Err(); err != nil {
		o.log.Error("CountOrdersByStatus", zap.Error(err))
		err = models.ErrServerError
	}
	return
}

// TotalRevenue sums stored order totals in decimal arithmetic.
func (o *OrderRepo) TotalRevenue(ctx context.Context) (total decimal.Decimal, err error) {
	rows, err := o.db.QueryContext(ctx, "SELECT total FROM orders")
	if err != nil {
		o.log.Error("TotalRevenue", zap.Error(err))
		err = models.ErrServerError
		return
	}
	defer rows.Close()

	for rows.Next() {
		var t decimal.Decimal
		if err = rows.Scan(&t); err != nil {
			o.log.Error("TotalRevenue", zap.Error(err))
			err = models.ErrServerError
			return
		}
		total = total.Add(t)
	}
	if err = rows.Err(); err != nil {
		o.log.Error("TotalRevenue", zap.Error(err))
		err = models.ErrServerError
	}
	return
}
