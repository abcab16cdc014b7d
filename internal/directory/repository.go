package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"business-directory/internal/common/database"
	"business-directory/internal/models"

	"github.com/lib/pq"
)

var (
	ErrEntityNotFound   = errors.New("ENTITY_NOT_FOUND")
	ErrDuplicateEntity  = errors.New("DUPLICATE_ENTITY")
	ErrUnknownQueryType = errors.New("unknown query type")
)

const uniqueViolation = "23505"

const companyColumns = `c.id, c.name, c.description, c.contact_phone, c.contact_email, c.website, c.category_id,
       c.moderation_status, l.address, l.city, l.region, l.postal_code
FROM companies c
LEFT JOIN locations l ON l.company_id = c.id AND l.is_main`

// queries holds the read statements addressable by query type.
var queries = map[models.QueryType]string{
	models.QueryCompanyList:          `SELECT ` + companyColumns + ` ORDER BY c.id`,
	models.QueryCompanyByID:          `SELECT ` + companyColumns + ` WHERE c.id = $1`,
	models.QueryCompanyByName:        `SELECT id FROM companies WHERE LOWER(name) = LOWER($1)`,
	models.QueryCompanySearch:        `SELECT id FROM companies WHERE name ILIKE $1 OR description ILIKE $1 ORDER BY id LIMIT $2`,
	models.QueryModerationCounts:     `SELECT moderation_status, COUNT(*) FROM companies GROUP BY moderation_status`,
	models.QueryPendingBookingsCount: `SELECT COUNT(*) FROM bookings WHERE status = $1`,
}

const insertCompanySQL = `INSERT INTO companies
    (name, description, contact_phone, contact_email, website, category_id, moderation_status)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id`

const updateCompanySQL = `UPDATE companies
SET name = $2, description = $3, contact_phone = $4, contact_email = $5, website = $6, category_id = $7, updated_at = NOW()
WHERE id = $1`

const upsertAdminSQL = `INSERT INTO admin_users (email, password_hash, is_superuser) VALUES ($1, $2, $3)
ON CONFLICT (email) DO UPDATE SET password_hash = EXCLUDED.password_hash, is_superuser = EXCLUDED.is_superuser
RETURNING id, created_at`

const (
	deleteMainLocationSQL = `DELETE FROM locations WHERE company_id = $1 AND is_main`
	insertLocationSQL     = `INSERT INTO locations (company_id, address, city, region, postal_code, is_main) VALUES ($1, $2, $3, $4, $5, TRUE)`
	deleteCompanySQL      = `DELETE FROM companies WHERE id = $1`
	setModerationSQL      = `UPDATE companies SET moderation_status = $2, moderation_comment = $3, moderated_at = NOW(), updated_at = NOW() WHERE id = $1`
	insertModerationSQL   = `INSERT INTO moderation_records (company_id, status, moderator_id, auto_check_passed, notes) VALUES ($1, $2, $3, $4, $5)`
	listModerationSQL     = `SELECT id, company_id, status, moderator_id, auto_check_passed, notes, created_at FROM moderation_records WHERE company_id = $1 ORDER BY created_at DESC, id DESC`
	listByStatusSQL       = `SELECT ` + companyColumns + ` WHERE c.moderation_status = $1 ORDER BY c.id`
	weeklyBookingsSQL     = `SELECT EXTRACT(ISODOW FROM starts_at)::int AS weekday, COUNT(*) FROM bookings WHERE starts_at >= $1 AND starts_at < $2 GROUP BY weekday`
)

// Repository reads and writes companies in PostgreSQL.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) query(queryType models.QueryType) (string, error) {
	q, ok := queries[queryType]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownQueryType, queryType)
	}
	return q, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCompany(row rowScanner) (models.BusinessEntity, error) {
	var (
		e          models.BusinessEntity
		categoryID sql.NullInt64
		status     string
	)
	var website, address, city, region, postal sql.NullString
	if err := row.Scan(&e.ID, &e.Name, &e.Description, &e.Phone, &e.Email, &website, &categoryID,
		&status, &address, &city, &region, &postal); err != nil {
		return e, err
	}
	e.ModerationStatus = models.ModerationStatus(status)
	if website.Valid && website.String != "" {
		w := website.String
		e.Website = &w
	}
	if categoryID.Valid {
		c := categoryID.Int64
		e.CategoryID = &c
	}
	if address.Valid || city.Valid {
		e.Location = &models.Location{
			Address: address.String,
			City:    city.String,
			Region:  region.String,
			Zipcode: postal.String,
		}
	}
	return e, nil
}

func (r *Repository) listCompanies(ctx context.Context, q string, args ...interface{}) ([]models.BusinessEntity, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.BusinessEntity, 0)
	for rows.Next() {
		e, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// List returns every company ordered by id.
func (r *Repository) List(ctx context.Context) ([]models.BusinessEntity, error) {
	q, err := r.query(models.QueryCompanyList)
	if err != nil {
		return nil, err
	}
	return r.listCompanies(ctx, q)
}

// ListByStatus returns the companies in one moderation state.
func (r *Repository) ListByStatus(ctx context.Context, status models.ModerationStatus) ([]models.BusinessEntity, error) {
	return r.listCompanies(ctx, listByStatusSQL, string(status))
}

// Get returns one company or ErrEntityNotFound.
func (r *Repository) Get(ctx context.Context, id int64) (*models.BusinessEntity, error) {
	q, err := r.query(models.QueryCompanyByID)
	if err != nil {
		return nil, err
	}
	e, err := scanCompany(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrEntityNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// FindIDByName looks up a company by case-insensitive name.
func (r *Repository) FindIDByName(ctx context.Context, name string) (int64, bool, error) {
	q, err := r.query(models.QueryCompanyByName)
	if err != nil {
		return 0, false, err
	}
	var id int64
	err = r.db.QueryRowContext(ctx, q, strings.TrimSpace(name)).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// Create inserts a company, its main location and the initial moderation record.
func (r *Repository) Create(ctx context.Context, e models.BusinessEntity, check models.AutoCheckResult) (*models.BusinessEntity, error) {
	if e.ModerationStatus == "" {
		e.ModerationStatus = models.ModerationPending
	}
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx, insertCompanySQL,
			e.Name, e.Description, e.Phone, e.Email, nullString(e.Website), nullInt64(e.CategoryID), string(e.ModerationStatus),
		).Scan(&e.ID); err != nil {
			return translateWriteError(err, e.Name)
		}
		if err := insertLocation(ctx, tx, e.ID, e.Location); err != nil {
			return err
		}
		passed := check.Passed()
		_, err := tx.ExecContext(ctx, insertModerationSQL, e.ID, string(e.ModerationStatus), nil, passed, strings.Join(check.Issues, "; "))
		return err
	})
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Update rewrites the editable fields and main location. Moderation status is left alone.
func (r *Repository) Update(ctx context.Context, e models.BusinessEntity) (*models.BusinessEntity, error) {
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, updateCompanySQL,
			e.ID, e.Name, e.Description, e.Phone, e.Email, nullString(e.Website), nullInt64(e.CategoryID))
		if err != nil {
			return translateWriteError(err, e.Name)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("%w: %d", ErrEntityNotFound, e.ID)
		}
		if _, err := tx.ExecContext(ctx, deleteMainLocationSQL, e.ID); err != nil {
			return err
		}
		return insertLocation(ctx, tx, e.ID, e.Location)
	})
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func insertLocation(ctx context.Context, tx *sql.Tx, companyID int64, loc *models.Location) error {
	if loc == nil {
		return nil
	}
	_, err := tx.ExecContext(ctx, insertLocationSQL, companyID, loc.Address, loc.City, loc.Region, loc.Zipcode)
	return err
}

// Delete removes a company. Locations and records cascade.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, deleteCompanySQL, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %d", ErrEntityNotFound, id)
	}
	return nil
}

// SetModerationStatus stores a decision and appends it to the moderation history.
func (r *Repository) SetModerationStatus(ctx context.Context, id int64, status models.ModerationStatus, comment string, moderatorID *int64) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, setModerationSQL, id, string(status), comment)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("%w: %d", ErrEntityNotFound, id)
		}
		_, err = tx.ExecContext(ctx, insertModerationSQL, id, string(status), nullInt64(moderatorID), nil, comment)
		return err
	})
}

// RecordAutoCheck appends an automatic check result to the moderation history without changing the status.
func (r *Repository) RecordAutoCheck(ctx context.Context, companyID int64, status models.ModerationStatus, passed bool, notes string) error {
	_, err := r.db.ExecContext(ctx, insertModerationSQL, companyID, string(status), nil, passed, notes)
	return err
}

// ListModerationRecords returns the moderation history of a company, newest first.
func (r *Repository) ListModerationRecords(ctx context.Context, companyID int64) ([]models.ModerationRecord, error) {
	rows, err := r.db.QueryContext(ctx, listModerationSQL, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.ModerationRecord, 0)
	for rows.Next() {
		var (
			rec         models.ModerationRecord
			status      string
			moderatorID sql.NullInt64
			passed      sql.NullBool
		)
		if err := rows.Scan(&rec.ID, &rec.CompanyID, &status, &moderatorID, &passed, &rec.Notes, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan moderation record: %w", err)
		}
		rec.Status = models.ModerationStatus(status)
		if moderatorID.Valid {
			id := moderatorID.Int64
			rec.ModeratorID = &id
		}
		if passed.Valid {
			p := passed.Bool
			rec.AutoCheckPassed = &p
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ModerationCounts groups companies by moderation status.
func (r *Repository) ModerationCounts(ctx context.Context) (models.ModerationCounts, error) {
	var counts models.ModerationCounts
	q, err := r.query(models.QueryModerationCounts)
	if err != nil {
		return counts, err
	}
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return counts, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return counts, err
		}
		switch models.ModerationStatus(status) {
		case models.ModerationPending:
			counts.Pending = n
		case models.ModerationApproved:
			counts.Approved = n
		case models.ModerationRejected:
			counts.Rejected = n
		}
	}
	return counts, rows.Err()
}

// SearchIDs matches name or description with ILIKE.
func (r *Repository) SearchIDs(ctx context.Context, query string, limit int) ([]int64, error) {
	q, err := r.query(models.QueryCompanySearch)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, q, "%"+escapeLike(strings.TrimSpace(query))+"%", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CountPendingBookings counts bookings awaiting confirmation.
func (r *Repository) CountPendingBookings(ctx context.Context) (int, error) {
	q, err := r.query(models.QueryPendingBookingsCount)
	if err != nil {
		return 0, err
	}
	var n int
	if err := r.db.QueryRowContext(ctx, q, string(models.BookingPending)).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// WeeklyBookings counts bookings per ISO weekday in the week containing now, Monday first.
func (r *Repository) WeeklyBookings(ctx context.Context, now time.Time) ([7]int, error) {
	var out [7]int
	start := weekStart(now)
	rows, err := r.db.QueryContext(ctx, weeklyBookingsSQL, start, start.AddDate(0, 0, 7))
	if err != nil {
		return out, err
	}
	defer rows.Close()

	for rows.Next() {
		var weekday, n int
		if err := rows.Scan(&weekday, &n); err != nil {
			return out, err
		}
		if weekday >= 1 && weekday <= 7 {
			out[weekday-1] = n
		}
	}
	return out, rows.Err()
}

// UpsertAdmin creates or updates a dashboard operator.
func (r *Repository) UpsertAdmin(ctx context.Context, email, passwordHash string, superuser bool) (*models.AdminUser, error) {
	user := &models.AdminUser{Email: strings.ToLower(strings.TrimSpace(email)), PasswordHash: passwordHash, IsSuperuser: superuser}
	if err := r.db.QueryRowContext(ctx, upsertAdminSQL, user.Email, passwordHash, superuser).Scan(&user.ID, &user.CreatedAt); err != nil {
		return nil, err
	}
	return user, nil
}

func weekStart(now time.Time) time.Time {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func translateWriteError(err error, name string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
		return fmt.Errorf("%w: %s", ErrDuplicateEntity, name)
	}
	return err
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func nullString(s *string) interface{} {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}

func nullInt64(v *int64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
