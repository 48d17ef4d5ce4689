package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jtjeruta/desktop-ims-sub001/internal/domain"
	pkgmongo "github.com/jtjeruta/desktop-ims-sub001/pkg/mongodb"
)

const movementsCollection = "stock_movements"

// StockMovementRepository persists the append-only stock journal
type StockMovementRepository struct {
	collection *mongo.Collection
}

func NewStockMovementRepository(client *pkgmongo.CircuitBreakerClient) (*StockMovementRepository, error) {
	repo := &StockMovementRepository{collection: client.Collection(movementsCollection)}
	if err := repo.ensureIndexes(context.Background()); err != nil {
		return nil, fmt.Errorf("ensure stock movement indexes: %w", err)
	}
	return repo, nil
}

func (r *StockMovementRepository) ensureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "productId", Value: 1}, {Key: "createdAt", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "referenceId", Value: 1}},
		},
	})
	return err
}

func (r *StockMovementRepository) Insert(ctx context.Context, m *domain.StockMovement) error {
	_, err := r.collection.InsertOne(ctx, m)
	return err
}

func (r *StockMovementRepository) FindByProduct(ctx context.Context, productID primitive.ObjectID, opts domain.ListOptions) ([]*domain.StockMovement, error) {
	findOpts := options.Find().
		SetSort(pkgmongo.SortDescending("createdAt")).
		SetSkip(opts.Offset).
		SetLimit(opts.Limit)

	cursor, err := r.collection.Find(ctx, bson.M{"productId": productID}, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var movements []*domain.StockMovement
	if err := cursor.All(ctx, &movements); err != nil {
		return nil, err
	}
	return movements, nil
}
