package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/toolhatch-backend/internal/models"
)

type fakeIndexer struct {
	indexed   []uint
	deleted   []uint
	searchIDs []uint
	searchErr error
}

func (f *fakeIndexer) IndexProduct(ctx context.Context, product *models.Product) error {
	f.indexed = append(f.indexed, product.ID)
	return nil
}

func (f *fakeIndexer) DeleteProduct(ctx context.Context, productID uint) error {
	f.deleted = append(f.deleted, productID)
	return nil
}

func (f *fakeIndexer) Search(ctx context.Context, query string, size int) ([]uint, error) {
	return f.searchIDs, f.searchErr
}

func TestCatalogListing(t *testing.T) {
	db := openTestDB(t)
	svc := NewProductService(db, nil)

	categories, err := svc.ListCategories()
	require.NoError(t, err)
	assert.Len(t, categories, 5)

	products, err := svc.ListProducts()
	require.NoError(t, err)
	assert.Len(t, products, 7)

	product, err := svc.GetProduct(gridBotID)
	require.NoError(t, err)
	assert.Equal(t, "Binance Grid Bot", product.Title)
	require.NotNil(t, product.Category)
	assert.Equal(t, "Trading Bots", product.Category.Name)

	_, err = svc.GetProduct(999)
	assert.ErrorIs(t, err, ErrNotFound)

	bots, err := svc.ListByCategory(2)
	require.NoError(t, err)
	require.Len(t, bots, 1)
	assert.Equal(t, gridBotID, bots[0].ID)

	_, err = svc.ListByCategory(99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSearchFallsBackToDatabase(t *testing.T) {
	db := openTestDB(t)

	results, err := NewProductService(db, nil).Search(context.Background(), "BINANCE")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, gridBotID, results[0].ID)

	indexer := &fakeIndexer{searchErr: errors.New("cluster down")}
	results, err = NewProductService(db, indexer).Search(context.Background(), "pentest")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Recon Toolkit", results[0].Title)

	_, err = NewProductService(db, nil).Search(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSearchUsesIndexOrder(t *testing.T) {
	db := openTestDB(t)
	indexer := &fakeIndexer{searchIDs: []uint{gridBotID, 999, flutterKitID}}

	results, err := NewProductService(db, indexer).Search(context.Background(), "anything")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, gridBotID, results[0].ID)
	assert.Equal(t, flutterKitID, results[1].ID)
}

func TestCreateAndRemoveProduct(t *testing.T) {
	db := openTestDB(t)
	indexer := &fakeIndexer{}
	svc := NewProductService(db, indexer)
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, &CreateProductRequest{Title: "Bad", Description: "x", Price: "-1", CategoryID: 1})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateProduct(ctx, &CreateProductRequest{Title: "Orphan", Description: "x", Price: "5", CategoryID: 42})
	assert.ErrorIs(t, err, ErrValidation)

	product, err := svc.CreateProduct(ctx, &CreateProductRequest{
		Title:         "Arbitrage Scanner",
		Description:   "Finds price gaps across exchanges.",
		Price:         "12.5",
		OriginalPrice: strPtr("20"),
		CategoryID:    2,
		Tags:          []string{"crypto", "scanner"},
		DownloadURL:   "products/arbitrage-scanner.zip",
	})
	require.NoError(t, err)
	assert.Equal(t, "12.50", product.Price)
	assert.Equal(t, "20.00", *product.OriginalPrice)
	assert.True(t, product.IsActive)
	assert.Equal(t, []uint{product.ID}, indexer.indexed)

	stored, err := svc.GetProduct(product.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"crypto", "scanner"}, []string(stored.Tags))

	require.NoError(t, svc.RemoveProduct(ctx, product.ID))
	assert.Equal(t, []uint{product.ID}, indexer.deleted)

	_, err = svc.GetProduct(product.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, svc.RemoveProduct(ctx, product.ID), ErrNotFound)
}

func TestReindexAll(t *testing.T) {
	db := openTestDB(t)
	indexer := &fakeIndexer{}

	require.NoError(t, NewProductService(db, indexer).ReindexAll(context.Background()))
	assert.Len(t, indexer.indexed, 7)
	assert.NoError(t, NewProductService(db, nil).ReindexAll(context.Background()))
}

func TestCartMergesDuplicateAdds(t *testing.T) {
	db := openTestDB(t)
	user := createTestUser(t, db, "linus")
	svc := NewCartService(db)

	item, err := svc.AddItem(&AddToCartRequest{UserID: user.ID, ProductID: gridBotID})
	require.NoError(t, err)
	assert.Equal(t, 1, item.Quantity)
	require.NotNil(t, item.Product)

	item, err = svc.AddItem(&AddToCartRequest{UserID: user.ID, ProductID: gridBotID, Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, item.Quantity)

	cart, err := svc.GetCart(user.ID)
	require.NoError(t, err)
	require.Len(t, cart, 1)
	assert.Equal(t, 3, cart[0].Quantity)
	assert.Equal(t, "Binance Grid Bot", cart[0].Product.Title)

	_, err = svc.AddItem(&AddToCartRequest{UserID: user.ID, ProductID: 999})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.AddItem(&AddToCartRequest{UserID: 999, ProductID: gridBotID})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.AddItem(&AddToCartRequest{UserID: user.ID, ProductID: gridBotID, Quantity: -1})
	assert.ErrorIs(t, err, ErrValidation)

	require.NoError(t, svc.RemoveItem(user.ID, gridBotID))
	assert.ErrorIs(t, svc.RemoveItem(user.ID, gridBotID), ErrNotFound)

	_, err = svc.AddItem(&AddToCartRequest{UserID: user.ID, ProductID: flutterKitID})
	require.NoError(t, err)
	require.NoError(t, svc.Clear(user.ID))
	cart, _ = svc.GetCart(user.ID)
	assert.Empty(t, cart)
}
