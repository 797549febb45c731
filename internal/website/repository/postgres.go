package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"bazaar/backend/internal/website/domain"
)

// ErrDomainTaken is returned when a create or rename collides with an
// existing domain name.
var ErrDomainTaken = errors.New("domain name already exists")

const uniqueViolation = "23505"

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a website repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const websiteColumns = `id, domain_name, seller_id, is_online, categories, bio, seo, banners, sub_price, sub_active, sub_last_payment, sub_next_payment, created_at`

// GetByDomain returns the website for the exact domain name, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByDomain(ctx context.Context, domainName string) (*domain.Website, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+websiteColumns+` FROM websites WHERE domain_name = $1`, domainName)
	return scanWebsite(row)
}

// GetBySeller returns the website owned by sellerID, or nil if the seller has none.
func (r *PostgresRepository) GetBySeller(ctx context.Context, sellerID string) (*domain.Website, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+websiteColumns+` FROM websites WHERE seller_id = $1`, sellerID)
	return scanWebsite(row)
}

// Create persists the website. Returns ErrDomainTaken on a domain name collision.
func (r *PostgresRepository) Create(ctx context.Context, w *domain.Website) error {
	categories, bio, seo, banners, err := encodeProfile(w)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO websites (`+websiteColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		w.ID, w.DomainName, w.SellerID, w.IsOnline, categories, bio, seo, banners,
		w.Subscription.Price, w.Subscription.Active, w.Subscription.LastPayment,
		w.Subscription.NextPayment, w.CreatedAt,
	)
	return mapUnique(err)
}

// UpdateDomainName renames the website. Returns ErrDomainTaken on collision.
func (r *PostgresRepository) UpdateDomainName(ctx context.Context, id, newDomain string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE websites SET domain_name = $2 WHERE id = $1`, id, newDomain)
	return mapUnique(err)
}

// UpdateSeller swaps the owner. Only the transfer flow calls this.
func (r *PostgresRepository) UpdateSeller(ctx context.Context, id, newSellerID string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE websites SET seller_id = $2 WHERE id = $1`, id, newSellerID)
	return err
}

// UpdateOnline sets the online/offline visibility flag.
func (r *PostgresRepository) UpdateOnline(ctx context.Context, id string, online bool) error {
	_, err := r.db.ExecContext(ctx, `UPDATE websites SET is_online = $2 WHERE id = $1`, id, online)
	return err
}

// UpdateBio replaces the bio document.
func (r *PostgresRepository) UpdateBio(ctx context.Context, id string, bio domain.Bio) error {
	encoded, err := json.Marshal(bio)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `UPDATE websites SET bio = $2 WHERE id = $1`, id, encoded)
	return err
}

// UpdateSEO replaces the SEO document.
func (r *PostgresRepository) UpdateSEO(ctx context.Context, id string, seo domain.SEO) error {
	encoded, err := json.Marshal(seo)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `UPDATE websites SET seo = $2 WHERE id = $1`, id, encoded)
	return err
}

// SetSubscriptionInactive persists the lapse flip for one website.
func (r *PostgresRepository) SetSubscriptionInactive(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE websites SET sub_active = FALSE WHERE id = $1`, id)
	return err
}

// UpdateSubscription replaces the full subscription state. Used by renewal.
func (r *PostgresRepository) UpdateSubscription(ctx context.Context, id string, sub domain.Subscription) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE websites
		SET sub_price = $2, sub_active = $3, sub_last_payment = $4, sub_next_payment = $5
		WHERE id = $1`,
		id, sub.Price, sub.Active, sub.LastPayment, sub.NextPayment,
	)
	return err
}

// DeactivateLapsed flips every active subscription whose next payment is at or
// before now, up to limit rows. Returns the number of rows flipped.
func (r *PostgresRepository) DeactivateLapsed(ctx context.Context, now time.Time, limit int) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE websites SET sub_active = FALSE
		WHERE id IN (
			SELECT id FROM websites
			WHERE sub_active AND sub_next_payment <= $1
			LIMIT $2
		)`,
		now, limit,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Delete removes the website; memberships, history, products, and tickets
// cascade at the schema level.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM websites WHERE id = $1`, id)
	return err
}

// GetSupport returns the membership for (website, user), or nil if none.
func (r *PostgresRepository) GetSupport(ctx context.Context, websiteID, userID string) (*domain.SupportMembership, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, website_id, user_id, permissions, created_at
		FROM website_supports WHERE website_id = $1 AND user_id = $2`,
		websiteID, userID,
	)
	return scanSupport(row)
}

// ListSupports returns all memberships for the website.
func (r *PostgresRepository) ListSupports(ctx context.Context, websiteID string) ([]*domain.SupportMembership, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, website_id, user_id, permissions, created_at
		FROM website_supports WHERE website_id = $1 ORDER BY created_at`,
		websiteID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.SupportMembership
	for rows.Next() {
		m, err := scanSupportRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// CountMembershipsForUser returns how many websites the user supports.
func (r *PostgresRepository) CountMembershipsForUser(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM website_supports WHERE user_id = $1`, userID).Scan(&n)
	return n, err
}

// CreateSupport persists a new membership.
func (r *PostgresRepository) CreateSupport(ctx context.Context, m *domain.SupportMembership) error {
	encoded, err := json.Marshal(m.Permissions)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO website_supports (id, website_id, user_id, permissions, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		m.ID, m.WebsiteID, m.UserID, encoded, m.CreatedAt,
	)
	return err
}

// UpdateSupportPermissions replaces the membership's tag set.
func (r *PostgresRepository) UpdateSupportPermissions(ctx context.Context, m *domain.SupportMembership) error {
	encoded, err := json.Marshal(m.Permissions)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`UPDATE website_supports SET permissions = $3 WHERE website_id = $1 AND user_id = $2`,
		m.WebsiteID, m.UserID, encoded,
	)
	return err
}

// DeleteSupport removes the membership row.
func (r *PostgresRepository) DeleteSupport(ctx context.Context, websiteID, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM website_supports WHERE website_id = $1 AND user_id = $2`,
		websiteID, userID,
	)
	return err
}

// AddUpdateEntry appends one update-history row.
func (r *PostgresRepository) AddUpdateEntry(ctx context.Context, e *domain.UpdateEntry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO website_updates (id, website_id, updated_by, changes, updated_at)
		VALUES ($1, $2, $3, $4, $5)`,
		e.ID, e.WebsiteID, e.UpdatedBy, e.Changes, e.UpdatedAt,
	)
	return err
}

// ListUpdateEntries returns one page of update history, newest first, plus the
// total row count for pagination.
func (r *PostgresRepository) ListUpdateEntries(ctx context.Context, websiteID string, limit, offset int) ([]*domain.UpdateEntry, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM website_updates WHERE website_id = $1`, websiteID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, website_id, updated_by, changes, updated_at
		FROM website_updates WHERE website_id = $1
		ORDER BY updated_at DESC LIMIT $2 OFFSET $3`,
		websiteID, limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var out []*domain.UpdateEntry
	for rows.Next() {
		var e domain.UpdateEntry
		if err := rows.Scan(&e.ID, &e.WebsiteID, &e.UpdatedBy, &e.Changes, &e.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, &e)
	}
	return out, total, rows.Err()
}

// DeleteUpdateEntries removes the given history rows, returning how many matched.
func (r *PostgresRepository) DeleteUpdateEntries(ctx context.Context, websiteID string, ids []string) (int64, error) {
	encoded, err := json.Marshal(ids)
	if err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM website_updates
		WHERE website_id = $1 AND id IN (SELECT jsonb_array_elements_text($2::jsonb))`,
		websiteID, encoded,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanWebsite(row *sql.Row) (*domain.Website, error) {
	var (
		w                          domain.Website
		categories, bio, seo, bans []byte
	)
	err := row.Scan(
		&w.ID, &w.DomainName, &w.SellerID, &w.IsOnline, &categories, &bio, &seo, &bans,
		&w.Subscription.Price, &w.Subscription.Active, &w.Subscription.LastPayment,
		&w.Subscription.NextPayment, &w.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err := decodeProfile(&w, categories, bio, seo, bans); err != nil {
		return nil, err
	}
	return &w, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanSupport(row *sql.Row) (*domain.SupportMembership, error) {
	m, err := scanSupportRows(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

func scanSupportRows(row scannable) (*domain.SupportMembership, error) {
	var (
		m     domain.SupportMembership
		perms []byte
	)
	if err := row.Scan(&m.ID, &m.WebsiteID, &m.UserID, &perms, &m.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(perms, &m.Permissions); err != nil {
		return nil, err
	}
	return &m, nil
}

func encodeProfile(w *domain.Website) (categories, bio, seo, banners []byte, err error) {
	if categories, err = json.Marshal(w.Categories); err != nil {
		return
	}
	if bio, err = json.Marshal(w.Bio); err != nil {
		return
	}
	if seo, err = json.Marshal(w.SEO); err != nil {
		return
	}
	banners, err = json.Marshal(w.Banners)
	return
}

func decodeProfile(w *domain.Website, categories, bio, seo, banners []byte) error {
	if err := json.Unmarshal(categories, &w.Categories); err != nil {
		return err
	}
	if err := json.Unmarshal(bio, &w.Bio); err != nil {
		return err
	}
	if err := json.Unmarshal(seo, &w.SEO); err != nil {
		return err
	}
	return json.Unmarshal(banners, &w.Banners)
}

func mapUnique(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDomainTaken
	}
	return err
}
