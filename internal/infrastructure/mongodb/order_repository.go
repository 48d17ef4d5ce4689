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

// OrderRepository persists one kind of order. Purchase and sales orders
// share the document shape but live in separate collections with separate
// number sequences.
type OrderRepository struct {
	kind         domain.OrderKind
	numberPrefix string
	collection   *mongo.Collection
}

func NewPurchaseOrderRepository(client *pkgmongo.CircuitBreakerClient) (*OrderRepository, error) {
	return newOrderRepository(client, domain.OrderKindPurchase, "purchase_orders", "PO")
}

func NewSalesOrderRepository(client *pkgmongo.CircuitBreakerClient) (*OrderRepository, error) {
	return newOrderRepository(client, domain.OrderKindSales, "sales_orders", "SO")
}

func newOrderRepository(client *pkgmongo.CircuitBreakerClient, kind domain.OrderKind, collection, numberPrefix string) (*OrderRepository, error) {
	repo := &OrderRepository{
		kind:         kind,
		numberPrefix: numberPrefix,
		collection:   client.Collection(collection),
	}
	if err := repo.ensureIndexes(context.Background()); err != nil {
		return nil, fmt.Errorf("ensure %s indexes: %w", collection, err)
	}
	return repo, nil
}

func (r *OrderRepository) ensureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "orderNumber", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "orderDate", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "items.productId", Value: 1}},
		},
	})
	return err
}

func (r *OrderRepository) Kind() domain.OrderKind {
	return r.kind
}

func (r *OrderRepository) Insert(ctx context.Context, o *domain.Order) error {
	_, err := r.collection.InsertOne(ctx, o)
	if pkgmongo.IsDuplicateKeyError(err) {
		return domain.ErrDuplicateOrderNumber
	}
	return err
}

func (r *OrderRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Order, error) {
	var o domain.Order
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&o)
	if err == mongo.ErrNoDocuments {
		return nil, apperrors.ErrNotFoundWithID(r.resource(), id.Hex())
	}
	if err != nil {
		return nil, err
	}
	o.Kind = r.kind
	return &o, nil
}

func (r *OrderRepository) FindAll(ctx context.Context, opts domain.ListOptions) ([]*domain.Order, error) {
	findOpts := options.Find().
		SetSort(pkgmongo.SortDescending("orderDate")).
		SetSkip(opts.Offset).
		SetLimit(opts.Limit)

	cursor, err := r.collection.Find(ctx, bson.M{}, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orders []*domain.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	for _, o := range orders {
		o.Kind = r.kind
	}
	return orders, nil
}

func (r *OrderRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

func (r *OrderRepository) Update(ctx context.Context, o *domain.Order) error {
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": o.ID}, o)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrNotFoundWithID(r.resource(), o.ID.Hex())
	}
	return nil
}

func (r *OrderRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperrors.ErrNotFoundWithID(r.resource(), id.Hex())
	}
	return nil
}

// NextOrderNumber allocates the next number from a per-collection counter
// document. The findAndModify runs in the caller's transaction, so a
// rolled-back order releases no gap outside it.
func (r *OrderRepository) NextOrderNumber(ctx context.Context) (string, error) {
	counters := r.collection.Database().Collection("counters")

	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := counters.FindOneAndUpdate(ctx,
		bson.M{"_id": r.collection.Name()},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return "", fmt.Errorf("allocate order number: %w", err)
	}

	return fmt.Sprintf("%s-%06d", r.numberPrefix, counter.Seq), nil
}

func (r *OrderRepository) resource() string {
	if r.kind == domain.OrderKindPurchase {
		return "purchase order"
	}
	return "sales order"
}
