package repositories_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"dropzone/internal/models"
	"dropzone/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

// openTestDB returns a fresh in-memory SQLite database per test.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:repo_test_%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Product{}, &models.Cart{}, &models.OTP{}, &models.Session{}))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func TestGORMProductRepository(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMProductRepository(openTestDB(t))

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	tee := &models.Product{
		Slug: "crest-tee", Name: "Crest Tee", Price: 55.0, Category: "tees",
		Images: models.StringList{"tee-1.jpg", "tee-2.jpg"},
		Sizes:  models.SizeStocks{{Size: "S", Stock: 15}, {Size: "M", Stock: 12}},
	}
	hoodie := &models.Product{Slug: "stealth-hoodie", Name: "Stealth Hoodie", Price: 120.0, Category: "hoodies"}
	require.NoError(t, repo.Create(ctx, tee))
	require.NoError(t, repo.Create(ctx, hoodie))
	assert.NotEmpty(t, tee.ID)

	got, err := repo.GetBySlug(ctx, "crest-tee")
	require.NoError(t, err)
	assert.Equal(t, "Crest Tee", got.Name)
	assert.Equal(t, tee.Sizes, got.Sizes)
	assert.Equal(t, tee.Images, got.Images)

	_, err = repo.GetBySlug(ctx, "missing")
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	all, err := repo.List(ctx, "", 60)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	tees, err := repo.List(ctx, "tees", 60)
	require.NoError(t, err)
	require.Len(t, tees, 1)
	assert.Equal(t, "crest-tee", tees[0].Slug)

	capped, err := repo.List(ctx, "", 1)
	require.NoError(t, err)
	assert.Len(t, capped, 1)

	// Slugs are unique.
	assert.Error(t, repo.Create(ctx, &models.Product{Slug: "crest-tee", Name: "Dup", Category: "tees"}))
}

func TestGORMCartRepository_GetOrCreate(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := repositories.NewGORMCartRepository(db)

	_, err := repo.GetByID(ctx, "c1")
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	cart, err := repo.GetOrCreate(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "c1", cart.ID)
	assert.Empty(t, cart.Items)
	assert.NotNil(t, cart.Items)

	cart.Items = cart.Items.Merge("crest-tee", "S", 2)
	require.NoError(t, repo.SaveItems(ctx, cart))

	// A second GetOrCreate must not reset or duplicate the cart.
	again, err := repo.GetOrCreate(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, models.LineItems{{Slug: "crest-tee", Size: "S", Qty: 2}}, again.Items)

	var n int64
	require.NoError(t, db.Model(&models.Cart{}).Where("id = ?", "c1").Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestGORMCartRepository_SaveItemsVersioning(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMCartRepository(openTestDB(t))

	_, err := repo.GetOrCreate(ctx, "c1")
	require.NoError(t, err)

	first, err := repo.GetByID(ctx, "c1")
	require.NoError(t, err)
	second, err := repo.GetByID(ctx, "c1")
	require.NoError(t, err)

	first.Items = first.Items.Merge("crest-tee", "S", 1)
	require.NoError(t, repo.SaveItems(ctx, first))
	assert.EqualValues(t, 1, first.Version)

	second.Items = second.Items.Merge("crest-tee", "M", 1)
	err = repo.SaveItems(ctx, second)
	assert.ErrorIs(t, err, repositories.ErrVersionConflict)

	stored, err := repo.GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, models.LineItems{{Slug: "crest-tee", Size: "S", Qty: 1}}, stored.Items)
	assert.EqualValues(t, 1, stored.Version)

	err = repo.SaveItems(ctx, &models.Cart{ID: "nope"})
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestGORMOTPRepository_UpsertOverwrites(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMOTPRepository(openTestDB(t))

	_, err := repo.GetByPhone(ctx, "+15551230000")
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	require.NoError(t, repo.Upsert(ctx, &models.OTP{Phone: "+15551230000", CodeHash: "first"}))
	require.NoError(t, repo.Upsert(ctx, &models.OTP{Phone: "+15551230000", CodeHash: "second"}))

	otp, err := repo.GetByPhone(ctx, "+15551230000")
	require.NoError(t, err)
	assert.Equal(t, "second", otp.CodeHash)
}

func TestGORMSessionRepository(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMSessionRepository(openTestDB(t))

	s := &models.Session{Phone: "+15551230000"}
	require.NoError(t, repo.Create(ctx, s))
	assert.NotEmpty(t, s.ID)

	got, err := repo.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "+15551230000", got.Phone)

	_, err = repo.GetByID(ctx, "unknown")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}
