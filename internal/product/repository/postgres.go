package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"bazaar/backend/internal/product/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a product repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const productColumns = `id, website_id, slug, title, category, price, active, special_offers, created_at`

func (r *PostgresRepository) GetBySlug(ctx context.Context, websiteID, slug string) (*domain.Product, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE website_id = $1 AND slug = $2`,
		websiteID, slug,
	)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

func (r *PostgresRepository) ListByWebsite(ctx context.Context, websiteID string, limit, offset int) ([]*domain.Product, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM products WHERE website_id = $1`, websiteID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+productColumns+` FROM products
		WHERE website_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		websiteID, limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var out []*domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

func (r *PostgresRepository) Create(ctx context.Context, p *domain.Product) error {
	offers, err := json.Marshal(p.SpecialOffers)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID, p.WebsiteID, p.Slug, p.Title, p.Category, p.Price, p.Active, offers, p.CreatedAt,
	)
	return err
}

func (r *PostgresRepository) Update(ctx context.Context, p *domain.Product) error {
	offers, err := json.Marshal(p.SpecialOffers)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		UPDATE products
		SET title = $2, category = $3, price = $4, active = $5, special_offers = $6
		WHERE id = $1`,
		p.ID, p.Title, p.Category, p.Price, p.Active, offers,
	)
	return err
}

func (r *PostgresRepository) Delete(ctx context.Context, websiteID, slug string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM products WHERE website_id = $1 AND slug = $2`, websiteID, slug)
	return err
}

// ListWithOffers returns products whose offer state needs reconciling at now:
// an unapplied offer whose window has opened, or an applied offer whose window
// has closed.
func (r *PostgresRepository) ListWithOffers(ctx context.Context, now time.Time, limit int) ([]*domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+productColumns+` FROM products
		WHERE EXISTS (
			SELECT 1 FROM jsonb_array_elements(special_offers) o
			WHERE (o->>'applied')::boolean
			      <> ((o->>'startsAt')::timestamptz <= $1 AND (o->>'endsAt')::timestamptz > $1)
		)
		LIMIT $2`,
		now, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type scannable interface {
	Scan(dest ...any) error
}

func scanProduct(row scannable) (*domain.Product, error) {
	var (
		p      domain.Product
		offers []byte
	)
	err := row.Scan(&p.ID, &p.WebsiteID, &p.Slug, &p.Title, &p.Category,
		&p.Price, &p.Active, &offers, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(offers, &p.SpecialOffers); err != nil {
		return nil, err
	}
	return &p, nil
}
