package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/agromarket/marketplace-api/internal/core/domain"
	"github.com/agromarket/marketplace-api/internal/core/ports"
)

type ProductRepository struct {
	col   *mongo.Collection
	users *mongo.Collection
	ids   sequence
}

func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{
		col:   db.Collection(collectionProducts),
		users: db.Collection(collectionUsers),
		ids:   sequence{col: db.Collection(collectionCounters), name: collectionProducts},
	}
}

// productDoc stores the price as Decimal128 so it sorts and sums exactly.
type productDoc struct {
	ID          int64                `bson:"_id"`
	Name        string               `bson:"nome"`
	Description *string              `bson:"descricao,omitempty"`
	Price       primitive.Decimal128 `bson:"preco"`
	Quantity    int                  `bson:"quantidade"`
	Category    string               `bson:"categoria"`
	Location    *string              `bson:"localizacao,omitempty"`
	OwnerID     int64                `bson:"produtor_id"`
}

func toDecimal(m domain.Money) (primitive.Decimal128, error) {
	d, err := primitive.ParseDecimal128(m.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("price %s: %w", m, err)
	}
	return d, nil
}

func toProductDoc(p *domain.Product) (productDoc, error) {
	price, err := toDecimal(p.Price)
	if err != nil {
		return productDoc{}, err
	}
	return productDoc{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       price,
		Quantity:    p.Quantity,
		Category:    string(p.Category),
		Location:    p.Location,
		OwnerID:     p.OwnerID,
	}, nil
}

func (d productDoc) toDomain() (*domain.Product, error) {
	price, err := domain.ParseMoney(d.Price.String())
	if err != nil {
		return nil, fmt.Errorf("product %d: %w", d.ID, err)
	}
	return &domain.Product{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Price:       price,
		Quantity:    d.Quantity,
		Category:    domain.Category(d.Category),
		Location:    d.Location,
		OwnerID:     d.OwnerID,
	}, nil
}

func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.users.CountDocuments(ctx, bson.M{"_id": product.OwnerID}, options.Count().SetLimit(1))
	if err != nil {
		return nil, fmt.Errorf("check product owner: %w", err)
	}
	if n == 0 {
		return nil, domain.ErrUserNotFound
	}

	id, err := r.ids.next(ctx)
	if err != nil {
		return nil, err
	}

	doc, err := toProductDoc(product)
	if err != nil {
		return nil, err
	}
	doc.ID = id
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert product: %w", err)
	}
	return doc.toDomain()
}

func (r *ProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d productDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	return d.toDomain()
}

func (r *ProductRepository) List(ctx context.Context, page ports.Page) ([]*domain.Product, error) {
	return r.find(ctx, bson.M{}, pageOptions(page.Skip, page.Limit))
}

func (r *ProductRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*domain.Product, error) {
	return r.find(ctx, bson.M{"produtor_id": ownerID}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
}

func (r *ProductRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	var docs []productDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	products := make([]*domain.Product, 0, len(docs))
	for _, d := range docs {
		p, err := d.toDomain()
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

// buildUpdateDoc turns a patch into $set/$unset operators. A nil value on a
// nullable field removes it from the document.
func buildUpdateDoc(patch domain.ProductPatch) (bson.M, error) {
	set := bson.M{}
	unset := bson.M{}

	if patch.Name.Set {
		set["nome"] = patch.Name.Value
	}
	if patch.Description.Set {
		if patch.Description.Value == nil {
			unset["descricao"] = ""
		} else {
			set["descricao"] = *patch.Description.Value
		}
	}
	if patch.Price.Set {
		price, err := toDecimal(patch.Price.Value)
		if err != nil {
			return nil, err
		}
		set["preco"] = price
	}
	if patch.Quantity.Set {
		set["quantidade"] = patch.Quantity.Value
	}
	if patch.Category.Set {
		set["categoria"] = string(patch.Category.Value)
	}
	if patch.Location.Set {
		if patch.Location.Value == nil {
			unset["localizacao"] = ""
		} else {
			set["localizacao"] = *patch.Location.Value
		}
	}

	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	return update, nil
}

func (r *ProductRepository) Update(ctx context.Context, id int64, patch domain.ProductPatch) (*domain.Product, error) {
	update, err := buildUpdateDoc(patch)
	if err != nil {
		return nil, err
	}
	if len(update) == 0 {
		return r.FindByID(ctx, id)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var d productDoc
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("update product %d: %w", id, err)
	}
	return d.toDomain()
}

func (r *ProductRepository) Delete(ctx context.Context, id int64) (*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d productDoc
	if err := r.col.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("delete product %d: %w", id, err)
	}
	return d.toDomain()
}
