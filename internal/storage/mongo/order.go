package mongo

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/xenking/orders/internal/domain/order"
)

var _ order.Repository = (*OrderRepository)(nil)

// orderDocument is the stored shape of an order.
type orderDocument struct {
	ID              string               `bson:"_id"`
	Items           []itemDocument       `bson:"items"`
	DiscountCode    string               `bson:"discountCode"`
	ShippingAddress string               `bson:"shippingAddress"`
	Total           primitive.Decimal128 `bson:"total"`
	Status          string               `bson:"status"`
}

type itemDocument struct {
	ProductID string               `bson:"productId"`
	Quantity  int                  `bson:"quantity"`
	Price     primitive.Decimal128 `bson:"price"`
}

// OrderRepository implements order.Repository on a MongoDB collection.
type OrderRepository struct {
	coll    *mongo.Collection
	timeout time.Duration
}

// NewOrderRepository returns an OrderRepository using coll. Each operation
// is bounded by timeout when it is positive.
func NewOrderRepository(coll *mongo.Collection, timeout time.Duration) *OrderRepository {
	return &OrderRepository{coll: coll, timeout: timeout}
}

// NewID returns a new ObjectId in hex form.
func (r *OrderRepository) NewID() order.ID {
	return order.ID(primitive.NewObjectID().Hex())
}

// Save replaces the document with the order's id, inserting it when absent.
func (r *OrderRepository) Save(ctx context.Context, o *order.Order) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	doc, err := toDocument(o.Snapshot())
	if err != nil {
		return err
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := r.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts); err != nil {
		return errors.Wrapf(err, "upsert order %q", doc.ID)
	}
	return nil
}

// FindAll returns every order in the collection.
func (r *OrderRepository) FindAll(ctx context.Context) ([]*order.Order, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, errors.Wrap(err, "query orders")
	}
	defer func() { _ = cursor.Close(ctx) }()

	var docs []orderDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decode orders")
	}

	out := make([]*order.Order, 0, len(docs))
	for _, doc := range docs {
		o, err := fromDocument(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

// FindByID returns order.ErrNotFound when no document matches id.
func (r *OrderRepository) FindByID(ctx context.Context, id order.ID) (*order.Order, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var doc orderDocument
	err := r.coll.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, order.ErrNotFound
		}
		return nil, errors.Wrapf(err, "find order %q", id)
	}
	return fromDocument(doc)
}

// Delete removes the order's document.
func (r *OrderRepository) Delete(ctx context.Context, o *order.Order) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": o.ID().String()}); err != nil {
		return errors.Wrapf(err, "delete order %q", o.ID())
	}
	return nil
}

func (r *OrderRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}

func toDocument(s order.Snapshot) (orderDocument, error) {
	total, err := toDecimal128(s.Total)
	if err != nil {
		return orderDocument{}, errors.Wrap(err, "encode total")
	}

	items := make([]itemDocument, len(s.Items))
	for i, item := range s.Items {
		price, err := toDecimal128(item.Price)
		if err != nil {
			return orderDocument{}, errors.Wrapf(err, "encode price of item %d", i)
		}
		items[i] = itemDocument{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     price,
		}
	}

	return orderDocument{
		ID:              s.ID,
		Items:           items,
		DiscountCode:    s.DiscountCode,
		ShippingAddress: s.ShippingAddress,
		Total:           total,
		Status:          string(s.Status),
	}, nil
}

func fromDocument(doc orderDocument) (*order.Order, error) {
	items := make([]order.ItemSnapshot, len(doc.Items))
	for i, item := range doc.Items {
		price, err := decimal.NewFromString(item.Price.String())
		if err != nil {
			return nil, errors.Wrapf(err, "decode price of order %q", doc.ID)
		}
		items[i] = order.ItemSnapshot{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     price,
		}
	}

	o, err := order.FromSnapshot(order.Snapshot{
		ID:              doc.ID,
		Items:           items,
		DiscountCode:    doc.DiscountCode,
		ShippingAddress: doc.ShippingAddress,
		Status:          order.Status(doc.Status),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "restore order %q", doc.ID)
	}
	return o, nil
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	return primitive.ParseDecimal128(d.String())
}
