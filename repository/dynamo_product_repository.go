package repository

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"

	"github.com/yashrajoria/luxe-storefront/models"
)

// ProductHashKey is the partition key of the products table.
const ProductHashKey = "product_id"

// DynamoAPI is the subset of the DynamoDB client the product repository calls.
type DynamoAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, in *dynamodb.ScanInput, opts ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// DynamoProductRepository keeps products in a table keyed by product_id.
type DynamoProductRepository struct {
	client DynamoAPI
	table  string
}

func NewDynamoProductRepository(client DynamoAPI, table string) *DynamoProductRepository {
	return &DynamoProductRepository{client: client, table: table}
}

type ddbProduct struct {
	ProductID   string `dynamodbav:"product_id"`
	Name        string `dynamodbav:"name"`
	Price       string `dynamodbav:"price"`
	Image       string `dynamodbav:"image,omitempty"`
	Description string `dynamodbav:"description,omitempty"`
	CreatedAt   string `dynamodbav:"created_at"`
	UpdatedAt   string `dynamodbav:"updated_at"`
}

func toDDBProduct(p *models.ProductRecord) ddbProduct {
	return ddbProduct{
		ProductID:   p.ID,
		Name:        p.Name,
		Price:       p.Price.String(),
		Image:       p.Image,
		Description: p.Description,
		CreatedAt:   p.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:   p.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func (dp ddbProduct) record() (models.ProductRecord, error) {
	price, err := decimal.NewFromString(dp.Price)
	if err != nil {
		return models.ProductRecord{}, fmt.Errorf("product %s has invalid price %q: %w", dp.ProductID, dp.Price, err)
	}
	rec := models.ProductRecord{
		Product: models.Product{
			ID:          dp.ProductID,
			Name:        dp.Name,
			Price:       price,
			Image:       dp.Image,
			Description: dp.Description,
		},
	}
	if t, err := time.Parse(time.RFC3339Nano, dp.CreatedAt); err == nil {
		rec.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339Nano, dp.UpdatedAt); err == nil {
		rec.UpdatedAt = t
	}
	return rec, nil
}

func (d *DynamoProductRepository) key(id string) (map[string]types.AttributeValue, error) {
	key, err := attributevalue.MarshalMap(map[string]string{ProductHashKey: id})
	if err != nil {
		return nil, fmt.Errorf("marshal key: %w", err)
	}
	return key, nil
}

// List scans the whole table and orders the result by creation time.
func (d *DynamoProductRepository) List(ctx context.Context) ([]models.ProductRecord, error) {
	var out []models.ProductRecord
	paginator := dynamodb.NewScanPaginator(d.client, &dynamodb.ScanInput{TableName: aws.String(d.table)})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("dynamodb scan failed: %w", err)
		}
		var items []ddbProduct
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &items); err != nil {
			return nil, fmt.Errorf("unmarshal items: %w", err)
		}
		for _, it := range items {
			rec, err := it.record()
			if err != nil {
				return nil, err
			}
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (d *DynamoProductRepository) FindByID(ctx context.Context, id string) (*models.ProductRecord, error) {
	key, err := d.key(id)
	if err != nil {
		return nil, err
	}
	out, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{TableName: aws.String(d.table), Key: key})
	if err != nil {
		return nil, fmt.Errorf("dynamodb GetItem failed: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, ErrNotFound
	}
	var dp ddbProduct
	if err := attributevalue.UnmarshalMap(out.Item, &dp); err != nil {
		return nil, fmt.Errorf("unmarshal item: %w", err)
	}
	rec, err := dp.record()
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (d *DynamoProductRepository) Create(ctx context.Context, product *models.ProductRecord) error {
	now := time.Now().UTC()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now

	item, err := attributevalue.MarshalMap(toDDBProduct(product))
	if err != nil {
		return fmt.Errorf("marshal product: %w", err)
	}
	_, err = d.client.PutItem(ctx, &dynamodb.PutItemInput{TableName: aws.String(d.table), Item: item})
	if err != nil {
		return fmt.Errorf("dynamodb PutItem failed: %w", err)
	}
	return nil
}

func (d *DynamoProductRepository) Delete(ctx context.Context, id string) error {
	key, err := d.key(id)
	if err != nil {
		return err
	}
	out, err := d.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:    aws.String(d.table),
		Key:          key,
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		return fmt.Errorf("dynamodb DeleteItem failed: %w", err)
	}
	if len(out.Attributes) == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the item count (full table scan Count)
func (d *DynamoProductRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	paginator := dynamodb.NewScanPaginator(d.client, &dynamodb.ScanInput{
		TableName: aws.String(d.table),
		Select:    types.SelectCount,
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return 0, fmt.Errorf("dynamodb scan failed: %w", err)
		}
		total += int64(page.Count)
	}
	return total, nil
}
