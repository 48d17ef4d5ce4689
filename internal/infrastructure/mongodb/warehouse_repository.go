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
	apperrors "github.com/jtjeruta/desktop-ims-sub001/pkg/errors"
	pkgmongo "github.com/jtjeruta/desktop-ims-sub001/pkg/mongodb"
)

const warehousesCollection = "warehouses"

// WarehouseRepository persists warehouses in MongoDB. Stock entries are
// mutated with positional $inc updates, never by rewriting the whole array.
type WarehouseRepository struct {
	collection *mongo.Collection
}

func NewWarehouseRepository(client *pkgmongo.CircuitBreakerClient) (*WarehouseRepository, error) {
	repo := &WarehouseRepository{collection: client.Collection(warehousesCollection)}
	if err := repo.ensureIndexes(context.Background()); err != nil {
		return nil, fmt.Errorf("ensure warehouse indexes: %w", err)
	}
	return repo, nil
}

func (r *WarehouseRepository) ensureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "stock.productId", Value: 1}},
		},
	})
	return err
}

func (r *WarehouseRepository) Insert(ctx context.Context, w *domain.Warehouse) error {
	_, err := r.collection.InsertOne(ctx, w)
	if pkgmongo.IsDuplicateKeyError(err) {
		return apperrors.ErrConflict("a warehouse with the same name already exists")
	}
	return err
}

func (r *WarehouseRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Warehouse, error) {
	var w domain.Warehouse
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&w)
	if err == mongo.ErrNoDocuments {
		return nil, apperrors.ErrNotFoundWithID("warehouse", id.Hex())
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *WarehouseRepository) FindAll(ctx context.Context, opts domain.ListOptions) ([]*domain.Warehouse, error) {
	findOpts := options.Find().
		SetSort(pkgmongo.SortAscending("name")).
		SetSkip(opts.Offset).
		SetLimit(opts.Limit)

	cursor, err := r.collection.Find(ctx, bson.M{}, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var warehouses []*domain.Warehouse
	if err := cursor.All(ctx, &warehouses); err != nil {
		return nil, err
	}
	return warehouses, nil
}

func (r *WarehouseRepository) UpdateName(ctx context.Context, id primitive.ObjectID, name string) error {
	update := pkgmongo.BuildUpdateWithTimestamp(bson.M{"name": name})
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if pkgmongo.IsDuplicateKeyError(err) {
		return apperrors.ErrConflict("a warehouse with the same name already exists")
	}
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrNotFoundWithID("warehouse", id.Hex())
	}
	return nil
}

func (r *WarehouseRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperrors.ErrNotFoundWithID("warehouse", id.Hex())
	}
	return nil
}

// IncrementStock adjusts the entry for productID with a positional $inc,
// falling back to $push when the warehouse has no entry yet. Both writes
// run inside the caller's transaction, so the read-between gap is safe.
func (r *WarehouseRepository) IncrementStock(ctx context.Context, id, productID primitive.ObjectID, delta int) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "stock.productId": productID},
		pkgmongo.BuildIncrementUpdate("stock.$.quantity", delta),
	)
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}

	res, err = r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		pkgmongo.BuildPushUpdate("stock", domain.StockEntry{ProductID: productID, Quantity: delta}),
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrNotFoundWithID("warehouse", id.Hex())
	}
	return nil
}

func (r *WarehouseRepository) SetStock(ctx context.Context, id, productID primitive.ObjectID, quantity int) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "stock.productId": productID},
		bson.M{
			"$set": bson.M{"stock.$.quantity": quantity, "updatedAt": pkgmongo.Now()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}

	res, err = r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		pkgmongo.BuildPushUpdate("stock", domain.StockEntry{ProductID: productID, Quantity: quantity}),
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrNotFoundWithID("warehouse", id.Hex())
	}
	return nil
}

// DecrementStockIfAvailable guards the decrement with the quantity in the
// filter, so two transfers racing over the same entry cannot both win
func (r *WarehouseRepository) DecrementStockIfAvailable(ctx context.Context, id, productID primitive.ObjectID, amount int) (bool, error) {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{
			"_id": id,
			"stock": bson.M{"$elemMatch": bson.M{
				"productId": productID,
				"quantity":  bson.M{"$gte": amount},
			}},
		},
		bson.M{
			"$inc": bson.M{"stock.$.quantity": -amount},
			"$set": bson.M{"updatedAt": pkgmongo.Now()},
		},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (r *WarehouseRepository) FindHoldingProduct(ctx context.Context, productID primitive.ObjectID) ([]*domain.Warehouse, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"stock.productId": productID}, options.Find().SetSort(pkgmongo.SortAscending("name")))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var warehouses []*domain.Warehouse
	if err := cursor.All(ctx, &warehouses); err != nil {
		return nil, err
	}
	return warehouses, nil
}

func (r *WarehouseRepository) RepointProduct(ctx context.Context, warehouseID, oldProductID, newProductID primitive.ObjectID) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": warehouseID, "stock.productId": oldProductID},
		bson.M{
			"$set": bson.M{"stock.$.productId": newProductID, "updatedAt": pkgmongo.Now()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrNotFoundWithID("warehouse", warehouseID.Hex())
	}
	return nil
}
