package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/timeguard/timeguard-api/internal/domain/profile"
	"github.com/timeguard/timeguard-api/internal/pkg/database"
)

const profileColumns = `
	id, email, first_name, last_name, phone_number, mailing_address, role, work_hours,
	registration_status, password_hash, google_id, gps_tracking_enabled, created_at, updated_at
`

type profileRepositoryImpl struct {
	db *database.DB
}

// NewProfileRepository creates a new profile repository instance
func NewProfileRepository(db *database.DB) profile.ProfileRepository {
	return &profileRepositoryImpl{db: db}
}

func scanProfile(row pgx.Row) (profile.Profile, error) {
	var p profile.Profile
	err := row.Scan(
		&p.ID, &p.Email, &p.FirstName, &p.LastName, &p.PhoneNumber, &p.MailingAddress,
		&p.Role, &p.WorkHours, &p.RegistrationStatus, &p.PasswordHash, &p.GoogleID,
		&p.GPSTrackingEnabled, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

// Create implements profile.ProfileRepository.
func (r *profileRepositoryImpl) Create(ctx context.Context, p profile.Profile) (profile.Profile, error) {
	q := GetQuerier(ctx, r.db)

	id, err := newID(p.ID)
	if err != nil {
		return profile.Profile{}, err
	}

	query := `
		INSERT INTO profiles (
			id, email, first_name, last_name, phone_number, mailing_address, role, work_hours,
			registration_status, password_hash, google_id, gps_tracking_enabled
		) VALUES ($1, LOWER($2), $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + profileColumns

	created, err := scanProfile(q.QueryRow(ctx, query,
		id, p.Email, p.FirstName, p.LastName, p.PhoneNumber, p.MailingAddress, p.Role, p.WorkHours,
		p.RegistrationStatus, p.PasswordHash, p.GoogleID, p.GPSTrackingEnabled,
	))
	if err != nil {
		if isUniqueViolation(err, "profiles_email_key") {
			return profile.Profile{}, profile.ErrEmailExists
		}
		return profile.Profile{}, fmt.Errorf("failed to create profile: %w", err)
	}

	return created, nil
}

// GetByID implements profile.ProfileRepository.
func (r *profileRepositoryImpl) GetByID(ctx context.Context, id string) (profile.Profile, error) {
	q := GetQuerier(ctx, r.db)

	p, err := scanProfile(q.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return profile.Profile{}, profile.ErrProfileNotFound
		}
		return profile.Profile{}, fmt.Errorf("failed to get profile by id: %w", err)
	}
	return p, nil
}

// GetByEmail implements profile.ProfileRepository.
func (r *profileRepositoryImpl) GetByEmail(ctx context.Context, email string) (profile.Profile, error) {
	q := GetQuerier(ctx, r.db)

	p, err := scanProfile(q.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE LOWER(email) = LOWER($1)`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return profile.Profile{}, profile.ErrProfileNotFound
		}
		return profile.Profile{}, fmt.Errorf("failed to get profile by email: %w", err)
	}
	return p, nil
}

// Update implements profile.ProfileRepository.
func (r *profileRepositoryImpl) Update(ctx context.Context, p profile.Profile) (profile.Profile, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE profiles SET
			first_name = $2, last_name = $3, phone_number = $4, mailing_address = $5,
			role = $6, work_hours = $7, gps_tracking_enabled = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + profileColumns

	updated, err := scanProfile(q.QueryRow(ctx, query,
		p.ID, p.FirstName, p.LastName, p.PhoneNumber, p.MailingAddress, p.Role, p.WorkHours, p.GPSTrackingEnabled,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return profile.Profile{}, profile.ErrProfileNotFound
		}
		return profile.Profile{}, fmt.Errorf("failed to update profile: %w", err)
	}
	return updated, nil
}

// UpdateStatus implements profile.ProfileRepository.
func (r *profileRepositoryImpl) UpdateStatus(ctx context.Context, id string, status profile.RegistrationStatus) (profile.Profile, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE profiles SET registration_status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + profileColumns

	updated, err := scanProfile(q.QueryRow(ctx, query, id, status))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return profile.Profile{}, profile.ErrProfileNotFound
		}
		return profile.Profile{}, fmt.Errorf("failed to update profile status: %w", err)
	}
	return updated, nil
}

// LinkGoogleID implements profile.ProfileRepository.
func (r *profileRepositoryImpl) LinkGoogleID(ctx context.Context, id string, googleID string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE profiles SET google_id = $2, updated_at = NOW() WHERE id = $1`, id, googleID)
	if err != nil {
		return fmt.Errorf("failed to link google account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return profile.ErrProfileNotFound
	}
	return nil
}

// Delete implements profile.ProfileRepository.
func (r *profileRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return profile.ErrProfileNotFound
	}
	return nil
}

// List implements profile.ProfileRepository.
func (r *profileRepositoryImpl) List(ctx context.Context, filter profile.ProfileFilter) ([]profile.Profile, int64, error) {
	q := GetQuerier(ctx, r.db)

	conditions := []string{"TRUE"}
	args := []interface{}{}
	argIdx := 1

	if filter.Role != nil && *filter.Role != "" {
		conditions = append(conditions, fmt.Sprintf("role = $%d", argIdx))
		args = append(args, *filter.Role)
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("registration_status = $%d", argIdx))
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.Search != nil && *filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(first_name ILIKE $%d OR last_name ILIKE $%d OR email ILIKE $%d)", argIdx, argIdx, argIdx))
		args = append(args, "%"+*filter.Search+"%")
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM profiles WHERE "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count profiles: %w", err)
	}

	limit, offset := paginate(filter.Page, filter.Limit)
	query := fmt.Sprintf(`
		SELECT %s FROM profiles
		WHERE %s
		ORDER BY last_name ASC, first_name ASC
		LIMIT $%d OFFSET $%d
	`, profileColumns, whereClause, argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []profile.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate profiles: %w", err)
	}

	return profiles, total, nil
}
