package services_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"dropzone/internal/database"
	"dropzone/internal/models"
	"dropzone/internal/repositories"
	"dropzone/internal/services"
	"dropzone/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var cartDBSeq atomic.Int64

type cartFixture struct {
	carts    *repositories.GORMCartRepository
	products *repositories.GORMProductRepository
	service  *services.CartService
}

// newCartFixture wires a CartService to a seeded in-memory SQLite catalog.
func newCartFixture(t *testing.T, events services.EventPublisher) *cartFixture {
	t.Helper()
	dsn := fmt.Sprintf("file:cart_service_%d?mode=memory&cache=shared", cartDBSeq.Add(1))
	db, err := database.OpenGORM("sqlite", dsn)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	products := repositories.NewGORMProductRepository(db)
	_, err = services.NewProductService(products, 0).Seed(context.Background())
	require.NoError(t, err)

	carts := repositories.NewGORMCartRepository(db)
	return &cartFixture{
		carts:    carts,
		products: products,
		service:  services.NewCartService(carts, products, events, 3),
	}
}

func intPtr(v int) *int { return &v }

func TestCartService_AddDefaultsSizeAndMerges(t *testing.T) {
	ctx := context.Background()
	f := newCartFixture(t, nil)

	require.NoError(t, f.service.AddItem(ctx, "c1", services.AddItemInput{Slug: "crest-tee"}))
	require.NoError(t, f.service.AddItem(ctx, "c1", services.AddItemInput{Slug: "crest-tee", Size: "S", Qty: 2}))

	view, err := f.service.Present(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, view.Items, 1)

	line := view.Items[0]
	assert.Equal(t, "crest-tee", line.Slug)
	assert.Equal(t, "S", line.Size)
	assert.Equal(t, 3, line.Qty)
	assert.Equal(t, "Crest Tee", line.Name)
	require.NotNil(t, line.Price)
	assert.Equal(t, 55.0, *line.Price)
	assert.Equal(t, "#00E5FF", line.Accent)
	require.NotNil(t, line.Image)
	assert.Contains(t, *line.Image, "photo-1519741497674")
	assert.True(t, line.Available)
	assert.Equal(t, 165.0, view.Subtotal)
}

func TestCartService_AddSkipsSoldOutSizes(t *testing.T) {
	ctx := context.Background()
	f := newCartFixture(t, nil)

	require.NoError(t, f.products.Create(ctx, &models.Product{
		Slug: "late-drop", Name: "Late Drop", Price: 80, Category: "tees",
		Sizes: models.SizeStocks{{Size: "S", Stock: 0}, {Size: "M", Stock: 0}, {Size: "L", Stock: 4}},
	}))

	require.NoError(t, f.service.AddItem(ctx, "c1", services.AddItemInput{Slug: "late-drop", Qty: -5}))

	cart, err := f.carts.GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, models.LineItems{{Slug: "late-drop", Size: "L", Qty: 1}}, cart.Items)
}

func TestCartService_AddErrors(t *testing.T) {
	ctx := context.Background()
	f := newCartFixture(t, nil)

	require.NoError(t, f.products.Create(ctx, &models.Product{
		Slug: "ghost", Name: "Ghost", Price: 10, Category: "tees",
		Sizes: models.SizeStocks{{Size: "S", Stock: 0}, {Size: "M", Stock: 0}},
	}))

	err := f.service.AddItem(ctx, "c1", services.AddItemInput{Slug: "ghost"})
	assert.ErrorIs(t, err, services.ErrInvalidState)

	// An explicit size bypasses the stock check.
	assert.NoError(t, f.service.AddItem(ctx, "c1", services.AddItemInput{Slug: "ghost", Size: "M"}))

	err = f.service.AddItem(ctx, "c1", services.AddItemInput{Slug: "does-not-exist"})
	assert.ErrorIs(t, err, services.ErrNotFound)

	err = f.service.AddItem(ctx, "", services.AddItemInput{Slug: "crest-tee"})
	assert.ErrorIs(t, err, services.ErrInvalidInput)
}

func TestCartService_UpdateItem(t *testing.T) {
	ctx := context.Background()
	f := newCartFixture(t, nil)

	err := f.service.UpdateItem(ctx, "never-created", services.UpdateItemInput{Slug: "crest-tee", Size: "S", Qty: intPtr(2)})
	assert.ErrorIs(t, err, services.ErrNotFound)

	require.NoError(t, f.service.AddItem(ctx, "c1", services.AddItemInput{Slug: "crest-tee", Size: "M"}))
	require.NoError(t, f.service.AddItem(ctx, "c1", services.AddItemInput{Slug: "volt-sneaker"}))

	require.NoError(t, f.service.UpdateItem(ctx, "c1", services.UpdateItemInput{Slug: "crest-tee", Size: "M", Qty: intPtr(4)}))
	cart, err := f.carts.GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, models.LineItems{
		{Slug: "crest-tee", Size: "M", Qty: 4},
		{Slug: "volt-sneaker", Size: "7", Qty: 1},
	}, cart.Items)

	// Quantity zero drops the line.
	require.NoError(t, f.service.UpdateItem(ctx, "c1", services.UpdateItemInput{Slug: "crest-tee", Size: "M", Qty: intPtr(0)}))
	cart, err = f.carts.GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, models.LineItems{{Slug: "volt-sneaker", Size: "7", Qty: 1}}, cart.Items)

	// Removing twice is harmless.
	for i := 0; i < 2; i++ {
		require.NoError(t, f.service.UpdateItem(ctx, "c1", services.UpdateItemInput{Slug: "volt-sneaker", Size: "7", Remove: true}))
	}
	cart, err = f.carts.GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestCartService_PresentUnresolvableItems(t *testing.T) {
	ctx := context.Background()
	f := newCartFixture(t, nil)

	require.NoError(t, f.service.AddItem(ctx, "c1", services.AddItemInput{Slug: "stealth-hoodie", Qty: 2}))

	cart, err := f.carts.GetByID(ctx, "c1")
	require.NoError(t, err)
	cart.Items = append(cart.Items, models.LineItem{Slug: "retired-cap", Size: "OS", Qty: 3})
	require.NoError(t, f.carts.SaveItems(ctx, cart))

	view, err := f.service.Present(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, view.Items, 2)

	retired := view.Items[1]
	assert.Equal(t, "retired-cap", retired.Slug)
	assert.Equal(t, 3, retired.Qty)
	assert.False(t, retired.Available)
	assert.Nil(t, retired.Price)
	assert.Nil(t, retired.Image)
	assert.Equal(t, 240.0, view.Subtotal)
}

func TestCartService_PresentCreatesEmptyCart(t *testing.T) {
	ctx := context.Background()
	f := newCartFixture(t, nil)

	view, err := f.service.Present(ctx, "fresh")
	require.NoError(t, err)
	assert.Equal(t, "fresh", view.ID)
	assert.Empty(t, view.Items)
	assert.Zero(t, view.Subtotal)

	_, err = f.carts.GetByID(ctx, "fresh")
	assert.NoError(t, err)
}

func TestCartService_PresentRoundsSubtotal(t *testing.T) {
	ctx := context.Background()
	f := newCartFixture(t, nil)

	require.NoError(t, f.products.Create(ctx, &models.Product{
		Slug: "sticker", Name: "Sticker", Price: 19.99, Category: "misc",
		Sizes: models.SizeStocks{{Size: "OS", Stock: 100}},
	}))
	require.NoError(t, f.service.AddItem(ctx, "c1", services.AddItemInput{Slug: "sticker", Qty: 3}))

	view, err := f.service.Present(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 59.97, view.Subtotal)
	assert.Nil(t, view.Items[0].Image)
}

func TestCartService_PublishesEvents(t *testing.T) {
	ctx := context.Background()
	events := new(MockEventPublisher)
	f := newCartFixture(t, events)

	events.On("Publish", services.EventCartItemAdded, services.CartItemEvent{
		CartID: "c1", Slug: "crest-tee", Size: "S", Qty: intPtr(1),
	}).Return(nil).Once()
	events.On("Publish", services.EventCartItemUpdated, services.CartItemEvent{
		CartID: "c1", Slug: "crest-tee", Size: "S", Removed: true,
	}).Return(nil).Once()

	require.NoError(t, f.service.AddItem(ctx, "c1", services.AddItemInput{Slug: "crest-tee"}))
	require.NoError(t, f.service.UpdateItem(ctx, "c1", services.UpdateItemInput{Slug: "crest-tee", Size: "S", Remove: true}))
	events.AssertExpectations(t)
}

func TestCartService_RetriesOnVersionConflict(t *testing.T) {
	ctx := context.Background()
	carts := new(MockCartRepository)
	products := new(MockProductRepository)
	service := services.NewCartService(carts, products, nil, 3)

	tee := &models.Product{Slug: "crest-tee", Sizes: models.SizeStocks{{Size: "S", Stock: 1}}}
	products.On("GetBySlug", ctx, "crest-tee").Return(tee, nil)

	// The first read is stale; the second sees the concurrent writer's line.
	stale := &models.Cart{ID: "c1", Version: 1}
	fresh := &models.Cart{ID: "c1", Version: 2, Items: models.LineItems{{Slug: "crest-tee", Size: "S", Qty: 1}}}
	carts.On("GetOrCreate", ctx, "c1").Return(stale, nil).Once()
	carts.On("GetOrCreate", ctx, "c1").Return(fresh, nil).Once()
	carts.On("SaveItems", ctx, stale).Return(repositories.ErrVersionConflict).Once()
	carts.On("SaveItems", ctx, fresh).Return(nil).Once()

	before := testutil.ToFloat64(metrics.CartVersionConflicts)
	require.NoError(t, service.AddItem(ctx, "c1", services.AddItemInput{Slug: "crest-tee"}))

	assert.Equal(t, models.LineItems{{Slug: "crest-tee", Size: "S", Qty: 2}}, fresh.Items)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.CartVersionConflicts))
	carts.AssertExpectations(t)
}

func TestCartService_GivesUpAfterMaxAttempts(t *testing.T) {
	ctx := context.Background()
	carts := new(MockCartRepository)
	service := services.NewCartService(carts, new(MockProductRepository), nil, 2)

	carts.On("GetByID", ctx, "c1").Return(&models.Cart{ID: "c1"}, nil).Twice()
	carts.On("SaveItems", ctx, mock.AnythingOfType("*models.Cart")).Return(repositories.ErrVersionConflict).Twice()

	err := service.UpdateItem(ctx, "c1", services.UpdateItemInput{Slug: "crest-tee", Size: "S", Remove: true})
	assert.ErrorIs(t, err, services.ErrConflict)
	carts.AssertExpectations(t)
}

func TestCartService_CartDeletedMidUpdate(t *testing.T) {
	ctx := context.Background()
	carts := new(MockCartRepository)
	service := services.NewCartService(carts, new(MockProductRepository), nil, 2)

	carts.On("GetByID", ctx, "c1").Return(&models.Cart{ID: "c1"}, nil).Once()
	carts.On("SaveItems", ctx, mock.Anything).Return(fmt.Errorf("cart c1: %w", repositories.ErrNotFound)).Once()

	err := service.UpdateItem(ctx, "c1", services.UpdateItemInput{Slug: "crest-tee", Size: "S", Qty: intPtr(1)})
	assert.ErrorIs(t, err, services.ErrNotFound)
}
