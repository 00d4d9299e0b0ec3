package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/agromarket/marketplace-api/internal/core/domain"
	"github.com/agromarket/marketplace-api/internal/core/ports"
)

const productColumns = `id, nome, descricao, preco, quantidade, categoria, localizacao, produtor_id`

type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var (
		p        domain.Product
		price    string
		category string
		desc     sql.NullString
		loc      sql.NullString
	)
	if err := row.Scan(&p.ID, &p.Name, &desc, &price, &p.Quantity, &category, &loc, &p.OwnerID); err != nil {
		return nil, err
	}
	m, err := domain.ParseMoney(price)
	if err != nil {
		return nil, fmt.Errorf("product %d: %w", p.ID, err)
	}
	p.Price = m
	p.Category = domain.Category(category)
	p.Description = nullable(desc)
	p.Location = nullable(loc)
	return &p, nil
}

func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO produtos (nome, descricao, preco, quantidade, categoria, localizacao, produtor_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		product.Name, product.Description, product.Price.String(), product.Quantity,
		string(product.Category), product.Location, product.OwnerID,
	)
	if err != nil {
		if err := translate(err); errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("insert product: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert product: %w", err)
	}

	created := *product
	created.ID = id
	return &created, nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM produtos WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	return p, nil
}

func (r *ProductRepository) List(ctx context.Context, page ports.Page) ([]*domain.Product, error) {
	return r.query(ctx, `SELECT `+productColumns+` FROM produtos ORDER BY id LIMIT ? OFFSET ?`, page.Limit, page.Skip)
}

func (r *ProductRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*domain.Product, error) {
	return r.query(ctx, `SELECT `+productColumns+` FROM produtos WHERE produtor_id = ? ORDER BY id`, ownerID)
}

func (r *ProductRepository) query(ctx context.Context, query string, args ...any) ([]*domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// buildUpdate renders the SET clause for the fields present in patch.
func buildUpdate(patch domain.ProductPatch) (string, []any) {
	var (
		sets []string
		args []any
	)
	add := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	if patch.Name.Set {
		add("nome", patch.Name.Value)
	}
	if patch.Description.Set {
		add("descricao", patch.Description.Value)
	}
	if patch.Price.Set {
		add("preco", patch.Price.Value.String())
	}
	if patch.Quantity.Set {
		add("quantidade", patch.Quantity.Value)
	}
	if patch.Category.Set {
		add("categoria", string(patch.Category.Value))
	}
	if patch.Location.Set {
		add("localizacao", patch.Location.Value)
	}
	return strings.Join(sets, ", "), args
}

// Update writes the patch and reads the row back inside one transaction.
func (r *ProductRepository) Update(ctx context.Context, id int64, patch domain.ProductPatch) (*domain.Product, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	defer rollback(tx)

	if set, args := buildUpdate(patch); set != "" {
		args = append(args, id)
		if _, err := tx.ExecContext(ctx, `UPDATE produtos SET `+set+` WHERE id = ?`, args...); err != nil {
			return nil, fmt.Errorf("update product %d: %w", id, err)
		}
	}

	p, err := scanProduct(tx.QueryRowContext(ctx, `SELECT `+productColumns+` FROM produtos WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("update product %d: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("update product: commit: %w", err)
	}
	return p, nil
}

func (r *ProductRepository) Delete(ctx context.Context, id int64) (*domain.Product, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("delete product: %w", err)
	}
	defer rollback(tx)

	p, err := scanProduct(tx.QueryRowContext(ctx, `SELECT `+productColumns+` FROM produtos WHERE id = ? FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("delete product %d: %w", id, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM produtos WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("delete product %d: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("delete product: commit: %w", err)
	}
	return p, nil
}
