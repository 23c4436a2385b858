package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yashrajoria/luxe-storefront/models"
)

// MongoOrderRepository implements OrderRepository on a MongoDB collection. Amounts are
// stored as decimal strings.
type MongoOrderRepository struct {
	collection *mongo.Collection
}

func NewMongoOrderRepository(db *mongo.Database) *MongoOrderRepository {
	return &MongoOrderRepository{
		collection: db.Collection("orders"),
	}
}

type mongoLine struct {
	ProductID   string `bson:"product_id"`
	Name        string `bson:"name"`
	Price       string `bson:"price"`
	Image       string `bson:"image,omitempty"`
	Description string `bson:"description,omitempty"`
	Quantity    int    `bson:"quantity"`
}

type mongoOrder struct {
	ID             string      `bson:"_id"`
	TotalAmount    string      `bson:"total_amount"`
	Currency       string      `bson:"currency"`
	Status         string      `bson:"status"`
	Items          []mongoLine `bson:"items"`
	PaymentID      string      `bson:"payment_id"`
	GatewayOrderID string      `bson:"gateway_order_id"`
	Email          string      `bson:"email"`
	UserID         *string     `bson:"user_id,omitempty"`
	FullName       string      `bson:"full_name"`
	Address        string      `bson:"address"`
	City           string      `bson:"city"`
	ZipCode        string      `bson:"zip_code"`
	CreatedAt      time.Time   `bson:"created_at"`
	UpdatedAt      time.Time   `bson:"updated_at"`
}

func toMongoOrder(o *models.Order) mongoOrder {
	lines := make([]mongoLine, 0, len(o.Items))
	for _, l := range o.Items {
		lines = append(lines, mongoLine{
			ProductID:   l.ID,
			Name:        l.Name,
			Price:       l.Price.String(),
			Image:       l.Image,
			Description: l.Description,
			Quantity:    l.Quantity,
		})
	}
	return mongoOrder{
		ID:             o.ID.String(),
		TotalAmount:    o.TotalAmount.String(),
		Currency:       o.Currency,
		Status:         string(o.Status),
		Items:          lines,
		PaymentID:      o.PaymentID,
		GatewayOrderID: o.GatewayOrderID,
		Email:          o.Email,
		UserID:         o.UserID,
		FullName:       o.FullName,
		Address:        o.Address,
		City:           o.City,
		ZipCode:        o.ZipCode,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
}

func (d mongoOrder) order() (models.Order, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return models.Order{}, fmt.Errorf("order id %q: %w", d.ID, err)
	}
	total, err := decimal.NewFromString(d.TotalAmount)
	if err != nil {
		return models.Order{}, fmt.Errorf("order %s total: %w", d.ID, err)
	}
	items := make(models.OrderItems, 0, len(d.Items))
	for _, l := range d.Items {
		price, err := decimal.NewFromString(l.Price)
		if err != nil {
			return models.Order{}, fmt.Errorf("order %s line %s price: %w", d.ID, l.ProductID, err)
		}
		items = append(items, models.CartLine{
			Product: models.Product{
				ID:          l.ProductID,
				Name:        l.Name,
				Price:       price,
				Image:       l.Image,
				Description: l.Description,
			},
			Quantity: l.Quantity,
		})
	}
	return models.Order{
		ID:             id,
		TotalAmount:    total,
		Currency:       d.Currency,
		Status:         models.OrderStatus(d.Status),
		Items:          items,
		PaymentID:      d.PaymentID,
		GatewayOrderID: d.GatewayOrderID,
		Email:          d.Email,
		UserID:         d.UserID,
		FullName:       d.FullName,
		Address:        d.Address,
		City:           d.City,
		ZipCode:        d.ZipCode,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}, nil
}

// EnsureIndexes creates the lookup indexes used by the account and admin views.
func (r *MongoOrderRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "email", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "payment_id", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	return err
}

func (r *MongoOrderRepository) Create(ctx context.Context, order *models.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	now := time.Now().UTC()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now
	_, err := r.collection.InsertOne(ctx, toMongoOrder(order))
	return err
}

func (r *MongoOrderRepository) FindByUserID(ctx context.Context, userID string, page, limit int) ([]models.Order, int64, error) {
	return r.find(ctx, bson.M{"user_id": userID}, page, limit)
}

func (r *MongoOrderRepository) FindByEmail(ctx context.Context, email string, page, limit int) ([]models.Order, int64, error) {
	return r.find(ctx, bson.M{"email": email}, page, limit)
}

func (r *MongoOrderRepository) FindAll(ctx context.Context, page, limit int) ([]models.Order, int64, error) {
	return r.find(ctx, bson.M{}, page, limit)
}

func (r *MongoOrderRepository) find(ctx context.Context, filter bson.M, page, limit int) ([]models.Order, int64, error) {
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var docs []mongoOrder
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, err
	}
	orders := make([]models.Order, 0, len(docs))
	for _, d := range docs {
		o, err := d.order()
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, o)
	}
	return orders, total, nil
}

func (r *MongoOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var doc mongoOrder
	err := r.collection.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	o, err := doc.order()
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *MongoOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id.String()},
		bson.M{"$set": bson.M{"status": string(status), "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoOrderRepository) CountByStatus(ctx context.Context) (map[models.OrderStatus]int64, error) {
	cursor, err := r.collection.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	counts := make(map[models.OrderStatus]int64, len(rows))
	for _, row := range rows {
		counts[models.OrderStatus(row.Status)] = row.Count
	}
	return counts, nil
}

// Revenue sums completed totals in Go; the stored amounts are strings.
func (r *MongoOrderRepository) Revenue(ctx context.Context) (decimal.Decimal, error) {
	opts := options.Find().SetProjection(bson.M{"total_amount": 1})
	cursor, err := r.collection.Find(ctx, bson.M{"status": string(models.OrderStatusCompleted)}, opts)
	if err != nil {
		return decimal.Zero, err
	}
	defer cursor.Close(ctx)

	total := decimal.Zero
	for cursor.Next(ctx) {
		var doc struct {
			TotalAmount string `bson:"total_amount"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return decimal.Zero, err
		}
		amount, err := decimal.NewFromString(doc.TotalAmount)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(amount)
	}
	return total, cursor.Err()
}
