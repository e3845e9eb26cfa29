package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const profileColumns = `id, name, target_calories, current_weight, age, gender,
	activity_level, diet_preference, height, firebase_uid`

// saveProfile replaces whatever profile exists with p. The delete and insert
// share a transaction, so readers see either the old row or the new one and
// never zero or two. Returns the new row id.
func (s *localStore) saveProfile(ctx context.Context, p userProfile) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: begin profile tx: %v", errStorageFailure, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM user_profile`); err != nil {
		return 0, fmt.Errorf("%w: clear profile: %v", errStorageFailure, err)
	}
	res, err := tx.ExecContext(ctx, `
INSERT INTO user_profile(name, target_calories, current_weight, age, gender,
	activity_level, diet_preference, height, firebase_uid)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		nullString(p.Name), p.TargetCalories, p.WeightKG, nullInt(p.Age), nullString(p.Gender),
		nullString(p.ActivityLevel), nullString(p.DietPreference), nullFloat(p.HeightCM), nullString(p.FirebaseUID))
	if err != nil {
		return 0, fmt.Errorf("%w: insert profile: %v", errStorageFailure, err)
	}
	id, err := res.LastInsertId()
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: insert profile returned id %d", errStorageFailure, id)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: commit profile: %v", errStorageFailure, err)
	}
	return id, nil
}

// loadProfile returns the single profile row, or nil when none exists.
func (s *localStore) loadProfile(ctx context.Context) (*userProfile, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM user_profile LIMIT 1`)
	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return p, nil
}

func (s *localStore) hasProfile(ctx context.Context) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM user_profile`).Scan(&n); err != nil {
		return false, fmt.Errorf("count profiles: %w", err)
	}
	return n > 0, nil
}

// updateProfile overwrites the editable fields in place. A nil name keeps
// the stored name. Activity level, diet preference and target calories are
// untouched; callers follow up with recalculateTargetCalories.
func (s *localStore) updateProfile(ctx context.Context, name *string, age int, heightCM, weightKG float64) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
UPDATE user_profile SET
	name           = COALESCE(?, name),
	age            = ?,
	height         = ?,
	current_weight = ?`,
		nullString(name), age, heightCM, weightKG)
	if err != nil {
		return 0, fmt.Errorf("%w: update profile: %v", errStorageFailure, err)
	}
	return res.RowsAffected()
}

// updateWeight changes only the current weight.
func (s *localStore) updateWeight(ctx context.Context, weightKG float64) (int64, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE user_profile SET current_weight = ?`, weightKG)
	if err != nil {
		return 0, fmt.Errorf("%w: update weight: %v", errStorageFailure, err)
	}
	return res.RowsAffected()
}

// recalculateTargetCalories recomputes target calories from the stored
// age/gender/height/weight/activity and writes it back. Reports zero rows
// when there is no profile or age or height is missing.
func (s *localStore) recalculateTargetCalories(ctx context.Context) (int64, error) {
	p, err := s.loadProfile(ctx)
	if err != nil {
		return 0, err
	}
	if p == nil {
		return 0, nil
	}
	target, ok := profileTargetCalories(p)
	if !ok {
		return 0, nil
	}
	res, err := s.db.ExecContext(ctx, `UPDATE user_profile SET target_calories = ?`, target)
	if err != nil {
		return 0, fmt.Errorf("%w: update target calories: %v", errStorageFailure, err)
	}
	return res.RowsAffected()
}

/* ─── Scanning helpers ───────────────────────────────────────────────── */

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*userProfile, error) {
	var (
		p                                         userProfile
		name, gender, activity, diet, firebaseUID sql.NullString
		age                                       sql.NullInt64
		height                                    sql.NullFloat64
	)
	if err := row.Scan(&p.ID, &name, &p.TargetCalories, &p.WeightKG, &age, &gender,
		&activity, &diet, &height, &firebaseUID); err != nil {
		return nil, err
	}
	p.Name = stringPtr(name)
	p.Gender = stringPtr(gender)
	p.ActivityLevel = stringPtr(activity)
	p.DietPreference = stringPtr(diet)
	p.FirebaseUID = stringPtr(firebaseUID)
	if age.Valid {
		a := int(age.Int64)
		p.Age = &a
	}
	if height.Valid {
		h := height.Float64
		p.HeightCM = &h
	}
	return &p, nil
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullInt(i *int) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*i), Valid: true}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func ptr[T any](v T) *T { return &v }
