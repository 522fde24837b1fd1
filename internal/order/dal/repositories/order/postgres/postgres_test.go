package postgresrepo

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/corray333/backend-labs/microshop/internal/order/service/models/order"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertOrderQuery(t *testing.T) {
	date := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	o := order.Order{
		ID:          99,
		ProductName: "Product A",
		Quantity:    2,
		Price:       decimal.RequireFromString("10.99"),
		OrderDate:   date,
	}

	query, args, err := insertOrderQuery(o)
	require.NoError(t, err)

	assert.Equal(t,
		"INSERT INTO orders (product_name,quantity,price,order_date) VALUES ($1,$2,$3::numeric,$4) "+
			"RETURNING id, product_name, quantity, price, order_date",
		query,
	)
	assert.Equal(t, []any{"Product A", 2, "10.99", date}, args)
	assert.NotContains(t, query, "99", "caller supplied id must not reach the insert")
}

func TestListOrdersQuery(t *testing.T) {
	query, args, err := listOrdersQuery()
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT id, product_name, quantity, price, order_date FROM orders ORDER BY order_date DESC, id DESC",
		query,
	)
	assert.Empty(t, args)
}

type failingQuerier struct {
	err error
}

func (q failingQuerier) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, q.err
}

func TestRepositoryWrapsQueryErrors(t *testing.T) {
	dbErr := errors.New("connection refused")
	repo := &PostgresOrderRepository{conn: failingQuerier{err: dbErr}}

	_, err := repo.List(context.Background())
	require.ErrorIs(t, err, dbErr)
	assert.Contains(t, err.Error(), "failed to query orders")

	_, err = repo.Insert(context.Background(), order.Order{ProductName: "x", Quantity: 1, Price: decimal.NewFromInt(1)})
	require.ErrorIs(t, err, dbErr)
	assert.Contains(t, err.Error(), "failed to insert order")
}

func TestOrderDalToModel(t *testing.T) {
	date := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	dal := OrderDal{Id: 7, ProductName: "B", Quantity: 3, Price: decimal.RequireFromString("19.99"), OrderDate: date}

	assert.Equal(t, order.Order{
		ID:          7,
		ProductName: "B",
		Quantity:    3,
		Price:       decimal.RequireFromString("19.99"),
		OrderDate:   date,
	}, dal.ToModel())
}

var orderFields = []pgconn.FieldDescription{
	{Name: "id", DataTypeOID: pgtype.Int8OID},
	{Name: "product_name", DataTypeOID: pgtype.TextOID},
	{Name: "quantity", DataTypeOID: pgtype.Int4OID},
	{Name: "price", DataTypeOID: pgtype.NumericOID},
	{Name: "order_date", DataTypeOID: pgtype.TimestamptzOID},
}

// textRows serves text-encoded rows and decodes them with pgx's type map,
// the same path a live connection takes for text results.
type textRows struct {
	fields  []pgconn.FieldDescription
	values  [][][]byte
	pos     int
	closed  bool
	typeMap *pgtype.Map
}

func newTextRows(values ...[][]byte) *textRows {
	return &textRows{fields: orderFields, values: values, typeMap: pgtype.NewMap()}
}

func (r *textRows) Close()                                       { r.closed = true }
func (r *textRows) Err() error                                   { return nil }
func (r *textRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT") }
func (r *textRows) FieldDescriptions() []pgconn.FieldDescription { return r.fields }
func (r *textRows) Conn() *pgx.Conn                              { return nil }

func (r *textRows) Next() bool {
	if r.closed || r.pos >= len(r.values) {
		r.Close()
		return false
	}
	r.pos++
	return true
}

func (r *textRows) Scan(dest ...any) error {
	row := r.values[r.pos-1]
	if len(dest) != len(row) {
		return fmt.Errorf("expected %d destinations, got %d", len(row), len(dest))
	}
	for i, d := range dest {
		if err := r.typeMap.Scan(r.fields[i].DataTypeOID, pgtype.TextFormatCode, row[i], d); err != nil {
			return fmt.Errorf("column %s: %w", r.fields[i].Name, err)
		}
	}
	return nil
}

func (r *textRows) Values() ([]any, error) {
	return nil, errors.New("values not supported")
}

func (r *textRows) RawValues() [][]byte {
	return r.values[r.pos-1]
}

type rowsQuerier struct {
	rows  pgx.Rows
	query string
	args  []any
}

func (q *rowsQuerier) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	q.query = sql
	q.args = args
	return q.rows, nil
}

func textRow(id, name, quantity, price, date string) [][]byte {
	return [][]byte{[]byte(id), []byte(name), []byte(quantity), []byte(price), []byte(date)}
}

func TestInsertScansReturnedRow(t *testing.T) {
	q := &rowsQuerier{rows: newTextRows(textRow("7", "Product A", "2", "10.99", "2024-05-01 12:00:00+00"))}
	repo := &PostgresOrderRepository{conn: q}

	created, err := repo.Insert(context.Background(), order.Order{
		ProductName: "Product A",
		Quantity:    2,
		Price:       decimal.RequireFromString("10.99"),
		OrderDate:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.EqualValues(t, 7, created.ID)
	assert.Equal(t, "Product A", created.ProductName)
	assert.Equal(t, 2, created.Quantity)
	assert.Equal(t, "10.99", created.Price.String())
	assert.True(t, created.OrderDate.Equal(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)), created.OrderDate)
	assert.Contains(t, q.query, "RETURNING")
}

func TestInsertRejectsMissingRow(t *testing.T) {
	repo := &PostgresOrderRepository{conn: &rowsQuerier{rows: newTextRows()}}

	_, err := repo.Insert(context.Background(), order.Order{ProductName: "x", Quantity: 1, Price: decimal.NewFromInt(1)})
	require.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestListScansRows(t *testing.T) {
	q := &rowsQuerier{rows: newTextRows(
		textRow("2", "Product B", "1", "5.50", "2024-05-02 08:30:00+03"),
		textRow("1", "Product A", "3", "19.99", "2024-05-01 12:00:00+00"),
	)}
	repo := &PostgresOrderRepository{conn: q}

	orders, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 2)

	assert.EqualValues(t, 2, orders[0].ID)
	assert.True(t, orders[0].Price.Equal(decimal.RequireFromString("5.5")))
	assert.True(t, orders[0].OrderDate.Equal(time.Date(2024, 5, 2, 5, 30, 0, 0, time.UTC)), orders[0].OrderDate)
	assert.Equal(t, "Product A", orders[1].ProductName)
	assert.Equal(t, 3, orders[1].Quantity)
	assert.Equal(t, "19.99", orders[1].Price.String())
}

func TestListReturnsEmptySlice(t *testing.T) {
	repo := &PostgresOrderRepository{conn: &rowsQuerier{rows: newTextRows()}}

	orders, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, orders)
	assert.Empty(t, orders)
}
