package postgresrepo

import (
	"context"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/backend-labs/microshop/internal/order/dal/postgres"
	"github.com/corray333/backend-labs/microshop/internal/order/service/models/order"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const ordersTable = "orders"

var orderColumns = []string{"id", "product_name", "quantity", "price", "order_date"}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// OrderDal represents order data access layer model
type OrderDal struct {
	Id          int64           `db:"id"`
	ProductName string          `db:"product_name"`
	Quantity    int             `db:"quantity"`
	Price       decimal.Decimal `db:"price"`
	OrderDate   time.Time       `db:"order_date"`
}

// ToModel converts OrderDal to service layer Order model
func (o OrderDal) ToModel() order.Order {
	return order.Order{
		ID:          o.Id,
		ProductName: o.ProductName,
		Quantity:    o.Quantity,
		Price:       o.Price,
		OrderDate:   o.OrderDate,
	}
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type PostgresOrderRepository struct {
	conn querier
}

func NewPostgresOrderRepository(pgClient *postgres.Client) *PostgresOrderRepository {
	return &PostgresOrderRepository{
		conn: pgClient.Pool(),
	}
}

// insertOrderQuery builds the INSERT ... RETURNING statement for o.
// The price travels as text and is cast server-side so no numeric codec is needed.
func insertOrderQuery(o order.Order) (string, []any, error) {
	return psql.Insert(ordersTable).
		Columns("product_name", "quantity", "price", "order_date").
		Values(
			o.ProductName,
			o.Quantity,
			sq.Expr("?::numeric", o.Price.String()),
			o.OrderDate,
		).
		Suffix("RETURNING " + strings.Join(orderColumns, ", ")).
		ToSql()
}

// listOrdersQuery selects every order, newest first; id breaks ties.
func listOrdersQuery() (string, []any, error) {
	return psql.Select(orderColumns...).
		From(ordersTable).
		OrderBy("order_date DESC", "id DESC").
		ToSql()
}

// Insert inserts an order and returns it with the generated id
func (r *PostgresOrderRepository) Insert(ctx context.Context, o order.Order) (order.Order, error) {
	query, args, err := insertOrderQuery(o)
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to build insert query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to insert order: %w", err)
	}

	dal, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[OrderDal])
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to scan inserted order: %w", err)
	}

	return dal.ToModel(), nil
}

// List retrieves all orders ordered by order date descending
func (r *PostgresOrderRepository) List(ctx context.Context) ([]order.Order, error) {
	query, args, err := listOrdersQuery()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}

	dals, err := pgx.CollectRows(rows, pgx.RowToStructByName[OrderDal])
	if err != nil {
		return nil, fmt.Errorf("failed to scan orders: %w", err)
	}

	result := make([]order.Order, 0, len(dals))
	for _, dal := range dals {
		result = append(result, dal.ToModel())
	}

	return result, nil
}
