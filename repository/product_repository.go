package repository

import (
	"context"
	"strings"

	"github.com/yashrajoria/shoptube-backend/models"
)

// ProductRepository defines data-access operations for products.
type ProductRepository interface {
	List(ctx context.Context) ([]models.Product, error)
	Search(ctx context.Context, sellerIDs []string, q models.ProductQuery) ([]models.Product, int, error)
	FindByID(ctx context.Context, id string) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.Product, error)
	ListBySeller(ctx context.Context, sellerID string) ([]models.Product, error)
	ListRecent(ctx context.Context, limit int) ([]models.Product, error)
	Create(ctx context.Context, product *models.Product) (*models.Product, error)
}

const productFields = `id name description price stock image_url seller_id created_at`

// HasuraProductRepository implements ProductRepository over GraphQL.
type HasuraProductRepository struct {
	gql GraphQLClient
}

// NewHasuraProductRepository creates a new HasuraProductRepository.
func NewHasuraProductRepository(gql GraphQLClient) ProductRepository {
	return &HasuraProductRepository{gql: gql}
}

func (r *HasuraProductRepository) List(ctx context.Context) ([]models.Product, error) {
	var out struct {
		Products []models.Product `json:"products"`
	}
	q := `query GetProducts {
  products(order_by: {created_at: desc}) { ` + productFields + ` }
}`
	if err := r.gql.Do(ctx, q, nil, &out); err != nil {
		return nil, err
	}
	return out.Products, nil
}

// likePattern wraps term for a substring _ilike match, escaping wildcards.
func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(term)) + "%"
}

// Search lists products of the given sellers matching q, newest first, along
// with the total number of matches.
func (r *HasuraProductRepository) Search(ctx context.Context, sellerIDs []string, q models.ProductQuery) ([]models.Product, int, error) {
	sellerIDs = validIDs(sellerIDs)
	if len(sellerIDs) == 0 {
		return []models.Product{}, 0, nil
	}
	var out struct {
		Products  []models.Product `json:"products"`
		Aggregate aggregateCount   `json:"products_aggregate"`
	}
	query := `query GetMarketplaceProducts($sellerIds: [uuid!]!, $search: String!, $limit: Int!, $offset: Int!) {
  products(
    where: {seller_id: {_in: $sellerIds}, _or: [{name: {_ilike: $search}}, {description: {_ilike: $search}}]}
    limit: $limit
    offset: $offset
    order_by: {created_at: desc}
  ) { ` + productFields + ` }
  products_aggregate(
    where: {seller_id: {_in: $sellerIds}, _or: [{name: {_ilike: $search}}, {description: {_ilike: $search}}]}
  ) { aggregate { count } }
}`
	vars := map[string]interface{}{
		"sellerIds": sellerIDs,
		"search":    likePattern(q.Search),
		"limit":     q.Limit,
		"offset":    q.Offset,
	}
	if err := r.gql.Do(ctx, query, vars, &out); err != nil {
		return nil, 0, err
	}
	return out.Products, out.Aggregate.Aggregate.Count, nil
}

func (r *HasuraProductRepository) FindByID(ctx context.Context, id string) (*models.Product, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	var out struct {
		Product *models.Product `json:"products_by_pk"`
	}
	q := `query GetProductById($id: uuid!) {
  products_by_pk(id: $id) { ` + productFields + ` }
}`
	if err := r.gql.Do(ctx, q, map[string]interface{}{"id": id}, &out); err != nil {
		return nil, err
	}
	if out.Product == nil {
		return nil, ErrNotFound
	}
	return out.Product, nil
}

func (r *HasuraProductRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Product, error) {
	ids = validIDs(ids)
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	var out struct {
		Products []models.Product `json:"products"`
	}
	q := `query GetProductsByIds($ids: [uuid!]!) {
  products(where: {id: {_in: $ids}}) { ` + productFields + ` }
}`
	if err := r.gql.Do(ctx, q, map[string]interface{}{"ids": ids}, &out); err != nil {
		return nil, err
	}
	return out.Products, nil
}

func (r *HasuraProductRepository) ListBySeller(ctx context.Context, sellerID string) ([]models.Product, error) {
	if !validID(sellerID) {
		return []models.Product{}, nil
	}
	var out struct {
		Products []models.Product `json:"products"`
	}
	q := `query GetSellerProducts($sellerId: uuid!) {
  products(where: {seller_id: {_eq: $sellerId}}, order_by: {created_at: desc}) { ` + productFields + ` }
}`
	if err := r.gql.Do(ctx, q, map[string]interface{}{"sellerId": sellerID}, &out); err != nil {
		return nil, err
	}
	return out.Products, nil
}

func (r *HasuraProductRepository) ListRecent(ctx context.Context, limit int) ([]models.Product, error) {
	var out struct {
		Products []models.Product `json:"products"`
	}
	q := `query GetRecentProducts($limit: Int!) {
  products(order_by: {created_at: desc}, limit: $limit) { ` + productFields + ` }
}`
	if err := r.gql.Do(ctx, q, map[string]interface{}{"limit": limit}, &out); err != nil {
		return nil, err
	}
	return out.Products, nil
}

func (r *HasuraProductRepository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	var out struct {
		Product models.Product `json:"insert_products_one"`
	}
	q := `mutation CreateProduct($name: String!, $description: String!, $price: numeric!, $stock: Int!, $sellerId: uuid!, $imageUrl: String) {
  insert_products_one(object: {name: $name, description: $description, price: $price, stock: $stock, seller_id: $sellerId, image_url: $imageUrl}) { ` + productFields + ` }
}`
	vars := map[string]interface{}{
		"name":        product.Name,
		"description": product.Description,
		"price":       product.Price,
		"stock":       product.Stock,
		"sellerId":    product.SellerID,
		"imageUrl":    nil,
	}
	if product.ImageURL != "" {
		vars["imageUrl"] = product.ImageURL
	}
	if err := r.gql.Do(ctx, q, vars, &out); err != nil {
		return nil, err
	}
	return &out.Product, nil
}
