package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dropzone/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names shared by every MongoDB repository.
const (
	ProductCollection = "product"
	CartCollection    = "cart"
	OTPCollection     = "otp"
	SessionCollection = "session"
)

// EnsureMongoIndexes creates the indexes the repositories rely on. The
// unique slug index backs the catalog's one-product-per-slug rule.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(ProductCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "category", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create product indexes: %w", err)
	}
	_, err = db.Collection(SessionCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "phone", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create session indexes: %w", err)
	}
	return nil
}

// MongoProductRepository is a MongoDB implementation of ProductRepository.
type MongoProductRepository struct {
	col *mongo.Collection
}

// NewMongoProductRepository creates a new instance of MongoProductRepository.
func NewMongoProductRepository(db *mongo.Database) *MongoProductRepository {
	return &MongoProductRepository{col: db.Collection(ProductCollection)}
}

func (r *MongoProductRepository) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	if err := r.col.FindOne(ctx, bson.M{"slug": slug}).Decode(&product); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("product with slug %s: %w", slug, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get product by slug %s: %w", slug, err)
	}
	return &product, nil
}

func (r *MongoProductRepository) List(ctx context.Context, category string, limit int) ([]models.Product, error) {
	filter := bson.M{}
	if category != "" {
		filter["category"] = category
	}
	cur, err := r.col.Find(ctx, filter, options.Find().SetLimit(int64(limit)))
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	products := []models.Product{}
	if err := cur.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}

func (r *MongoProductRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return n, nil
}

func (r *MongoProductRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	now := time.Now()
	product.CreatedAt, product.UpdatedAt = now, now
	if _, err := r.col.InsertOne(ctx, product); err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// MongoCartRepository is a MongoDB implementation of CartRepository.
type MongoCartRepository struct {
	col *mongo.Collection
}

// NewMongoCartRepository creates a new instance of MongoCartRepository.
func NewMongoCartRepository(db *mongo.Database) *MongoCartRepository {
	return &MongoCartRepository{col: db.Collection(CartCollection)}
}

// GetOrCreate upserts with $setOnInsert so an existing cart is left as is.
// Two concurrent upserts on a new _id can still collide on the unique key;
// the loser reads the winner's document.
func (r *MongoCartRepository) GetOrCreate(ctx context.Context, id string) (*models.Cart, error) {
	now := time.Now()
	update := bson.M{"$setOnInsert": bson.M{
		"items":      models.LineItems{},
		"version":    int64(0),
		"created_at": now,
		"updated_at": now,
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var cart models.Cart
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&cart)
	if mongo.IsDuplicateKeyError(err) {
		return r.GetByID(ctx, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get or create cart %s: %w", id, err)
	}
	if cart.Items == nil {
		cart.Items = models.LineItems{}
	}
	return &cart, nil
}

func (r *MongoCartRepository) GetByID(ctx context.Context, id string) (*models.Cart, error) {
	var cart models.Cart
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&cart); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("cart %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get cart %s: %w", id, err)
	}
	if cart.Items == nil {
		cart.Items = models.LineItems{}
	}
	return &cart, nil
}

func (r *MongoCartRepository) SaveItems(ctx context.Context, cart *models.Cart) error {
	items := cart.Items
	if items == nil {
		items = models.LineItems{}
	}
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": cart.ID, "version": cart.Version},
		bson.M{
			"$set": bson.M{"items": items, "updated_at": time.Now()},
			"$inc": bson.M{"version": 1},
		})
	if err != nil {
		return fmt.Errorf("failed to save cart %s: %w", cart.ID, err)
	}
	if res.MatchedCount == 0 {
		if _, err := r.GetByID(ctx, cart.ID); err != nil {
			return err
		}
		return fmt.Errorf("cart %s at version %d: %w", cart.ID, cart.Version, ErrVersionConflict)
	}
	cart.Version++
	return nil
}

// MongoOTPRepository is a MongoDB implementation of OTPRepository. The phone
// is the document _id.
type MongoOTPRepository struct {
	col *mongo.Collection
}

// NewMongoOTPRepository creates a new instance of MongoOTPRepository.
func NewMongoOTPRepository(db *mongo.Database) *MongoOTPRepository {
	return &MongoOTPRepository{col: db.Collection(OTPCollection)}
}

func (r *MongoOTPRepository) Upsert(ctx context.Context, otp *models.OTP) error {
	otp.UpdatedAt = time.Now()
	_, err := r.col.UpdateOne(ctx,
		bson.M{"_id": otp.Phone},
		bson.M{"$set": bson.M{"code_hash": otp.CodeHash, "updated_at": otp.UpdatedAt}},
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert otp for %s: %w", otp.Phone, err)
	}
	return nil
}

func (r *MongoOTPRepository) GetByPhone(ctx context.Context, phone string) (*models.OTP, error) {
	var otp models.OTP
	if err := r.col.FindOne(ctx, bson.M{"_id": phone}).Decode(&otp); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("otp for %s: %w", phone, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get otp for %s: %w", phone, err)
	}
	return &otp, nil
}

// MongoSessionRepository is a MongoDB implementation of SessionRepository.
type MongoSessionRepository struct {
	col *mongo.Collection
}

// NewMongoSessionRepository creates a new instance of MongoSessionRepository.
func NewMongoSessionRepository(db *mongo.Database) *MongoSessionRepository {
	return &MongoSessionRepository{col: db.Collection(SessionCollection)}
}

func (r *MongoSessionRepository) Create(ctx context.Context, session *models.Session) error {
	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	if _, err := r.col.InsertOne(ctx, session); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (r *MongoSessionRepository) GetByID(ctx context.Context, id string) (*models.Session, error) {
	var session models.Session
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&session); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get session %s: %w", id, err)
	}
	return &session, nil
}
