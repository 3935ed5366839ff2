package repository_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"storefront-service/models"
	"storefront-service/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	assert.NoError(t, err)
	return gormDB, mock
}

func TestFindActiveByCustomer_NotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormCartRepository(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "carts"`)).
		WillReturnRows(sqlmock.NewRows([]string{}))

	cart, err := repo.FindActiveByCustomer(context.Background(), 7)
	assert.Nil(t, cart)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestFindActiveByCustomer_Success(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormCartRepository(gormDB)

	now := time.Now()
	cartRows := sqlmock.NewRows([]string{"id", "customer_id", "is_active", "created_at", "updated_at"}).
		AddRow(3, 7, true, now, now)
	itemRows := sqlmock.NewRows([]string{"id", "cart_id", "product_id", "quantity", "created_at", "updated_at"}).
		AddRow(11, 3, 1, 2, now, now)
	productRows := sqlmock.NewRows([]string{"id", "title", "price", "is_enable"}).
		AddRow(1, "E-Book", 500, true)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "carts"`)).
		WillReturnRows(cartRows)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "cart_items"`)).
		WillReturnRows(itemRows)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "products"`)).
		WillReturnRows(productRows)

	cart, err := repo.FindActiveByCustomer(context.Background(), 7)
	assert.NoError(t, err)
	assert.Len(t, cart.Items, 1)
	assert.Equal(t, "E-Book", cart.Items[0].Product.Title)
}

func TestCreateCart_Success(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormCartRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "carts"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	cart := &models.Cart{CustomerID: 7, IsActive: true}
	err := repo.Create(context.Background(), cart)
	assert.NoError(t, err)
	assert.Equal(t, uint(1), cart.ID)
}

func TestAddItems_UpsertsEachLine(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormCartRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "id" FROM "products"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "cart_items"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "id" FROM "products"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "cart_items"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(12))
	mock.ExpectCommit()

	lines := []models.CartLine{
		{ProductID: 1, Quantity: 2},
		{ProductID: 2, Quantity: 1},
	}
	err := repo.AddItems(context.Background(), 3, lines)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddItems_RollsBackOnUnknownProduct(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormCartRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "id" FROM "products"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "cart_items"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "id" FROM "products"`)).
		WillReturnRows(sqlmock.NewRows([]string{}))
	mock.ExpectRollback()

	lines := []models.CartLine{
		{ProductID: 1, Quantity: 2},
		{ProductID: 99, Quantity: 1},
	}
	err := repo.AddItems(context.Background(), 3, lines)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateItemQuantity_NotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormCartRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "cart_items"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.UpdateItemQuantity(context.Background(), 404, 3)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestDeleteItem_Success(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormCartRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "cart_items"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.DeleteItem(context.Background(), 11)
	assert.NoError(t, err)
}
