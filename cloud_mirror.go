package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// cloudMirror is the remote document store holding a best-effort copy of the
// local data, keyed by the signed-in user's uid, plus the account directory
// used to sign in.
type cloudMirror interface {
	// fetchProfile returns nil, nil when the user has no mirror document.
	fetchProfile(ctx context.Context, uid string) (*profileDocument, error)
	pushProfile(ctx context.Context, uid string, doc profileDocument) error
	pushDoctor(ctx context.Context, uid string, d doctor) error
	deleteDoctor(ctx context.Context, uid, doctorID string) error
	// authenticate returns the account uid for valid credentials and
	// errInvalidCredentials otherwise.
	authenticate(ctx context.Context, username, password string) (string, error)
}

/* ─── Documents ──────────────────────────────────────────────────────── */

// profileDocument is the remote mirror of userProfile. UpdatedAt is assigned
// by the server on every write and is not part of the stored JSON.
type profileDocument struct {
	Name           *string   `json:"name"`
	Age            *int      `json:"age"`
	Height         *float64  `json:"height"`
	Weight         *float64  `json:"weight"`
	TargetCalories *int      `json:"targetCalories"`
	Gender         *string   `json:"gender"`
	ActivityLevel  *string   `json:"activityLevel"`
	DietPreference *string   `json:"dietPreference"`
	FirebaseUID    *string   `json:"firebaseUid"`
	UpdatedAt      time.Time `json:"-"`
}

var errInvalidDocument = errors.New("mirror document missing required fields")

func documentFromProfile(p userProfile) profileDocument {
	return profileDocument{
		Name:           p.Name,
		Age:            p.Age,
		Height:         p.HeightCM,
		Weight:         ptr(p.WeightKG),
		TargetCalories: ptr(p.TargetCalories),
		Gender:         p.Gender,
		ActivityLevel:  p.ActivityLevel,
		DietPreference: p.DietPreference,
		FirebaseUID:    p.FirebaseUID,
	}
}

// toProfile converts a mirror document back into a local profile owned by
// uid. Weight and target calories are NOT NULL locally, so a document
// without them is rejected rather than restored with zeros.
func (d profileDocument) toProfile(uid string) (userProfile, error) {
	if d.Weight == nil || d.TargetCalories == nil {
		return userProfile{}, errInvalidDocument
	}
	return userProfile{
		Name:           d.Name,
		Age:            d.Age,
		Gender:         d.Gender,
		HeightCM:       d.Height,
		WeightKG:       *d.Weight,
		ActivityLevel:  d.ActivityLevel,
		DietPreference: d.DietPreference,
		TargetCalories: *d.TargetCalories,
		FirebaseUID:    ptr(uid),
	}, nil
}

// doctorDocument is the remote mirror of a doctor directory entry.
type doctorDocument struct {
	Name        string `json:"name"`
	Specialty   string `json:"specialty"`
	PhoneNumber string `json:"phoneNumber"`
	Email       string `json:"email"`
}

func documentFromDoctor(d doctor) doctorDocument {
	doc := doctorDocument{Name: d.Name, Specialty: d.Specialty, PhoneNumber: d.PhoneNumber}
	if d.Email != nil {
		doc.Email = *d.Email
	}
	return doc
}

/* ─── Postgres-backed mirror ─────────────────────────────────────────── */

// pgCloud stores mirror documents as JSONB rows in Postgres.
type pgCloud struct {
	pool *pgxpool.Pool
}

// dummyHash is a pre-computed bcrypt hash used when a login username isn't found.
// Running bcrypt against it (instead of returning early) keeps response time
// constant, preventing timing-based username enumeration.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy"), bcrypt.DefaultCost)

// getCloudPool creates a connection pool for the cloud mirror.
func getCloudPool(ctx context.Context, url string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse DB_URL: %w", err)
	}
	// Simple protocol avoids "cached plan must not change result type" errors
	// from server-side prepared statement caches after schema changes.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect cloud mirror: %w", err)
	}
	return pool, nil
}

// queryOne runs a query and scans the first row into T using RowToStructByName.
func queryOne[T any](ctx context.Context, pool *pgxpool.Pool, sql string, args pgx.NamedArgs) (T, error) {
	rows, err := pool.Query(ctx, sql, args)
	if err != nil {
		logger.Debug("cloud query failed", zap.Error(err))
		var zero T
		return zero, err
	}
	result, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[T])
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		logger.Debug("cloud scan failed", zap.Error(err))
	}
	return result, err
}

type profileMirrorRow struct {
	Document  []byte    `db:"document"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (p *pgCloud) fetchProfile(ctx context.Context, uid string) (*profileDocument, error) {
	row, err := queryOne[profileMirrorRow](ctx, p.pool,
		"SELECT document, updated_at FROM profile_mirrors WHERE uid = @uid",
		pgx.NamedArgs{"uid": uid})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch profile mirror: %w", err)
	}
	var doc profileDocument
	if err := json.Unmarshal(row.Document, &doc); err != nil {
		return nil, fmt.Errorf("decode profile mirror: %w", err)
	}
	doc.UpdatedAt = row.UpdatedAt
	return &doc, nil
}

func (p *pgCloud) pushProfile(ctx context.Context, uid string, doc profileDocument) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode profile mirror: %w", err)
	}
	_, err = p.pool.Exec(ctx,
		`INSERT INTO profile_mirrors (uid, document, updated_at)
		 VALUES (@uid, @document::jsonb, now())
		 ON CONFLICT (uid) DO UPDATE SET document = EXCLUDED.document, updated_at = now()`,
		pgx.NamedArgs{"uid": uid, "document": string(body)})
	if err != nil {
		return fmt.Errorf("upsert profile mirror: %w", err)
	}
	return nil
}

func (p *pgCloud) pushDoctor(ctx context.Context, uid string, d doctor) error {
	body, err := json.Marshal(documentFromDoctor(d))
	if err != nil {
		return fmt.Errorf("encode doctor mirror: %w", err)
	}
	_, err = p.pool.Exec(ctx,
		`INSERT INTO doctor_mirrors (uid, doctor_id, document, updated_at)
		 VALUES (@uid, @doctorID, @document::jsonb, now())
		 ON CONFLICT (uid, doctor_id) DO UPDATE SET document = EXCLUDED.document, updated_at = now()`,
		pgx.NamedArgs{"uid": uid, "doctorID": d.ID, "document": string(body)})
	if err != nil {
		return fmt.Errorf("upsert doctor mirror: %w", err)
	}
	return nil
}

func (p *pgCloud) deleteDoctor(ctx context.Context, uid, doctorID string) error {
	_, err := p.pool.Exec(ctx,
		"DELETE FROM doctor_mirrors WHERE uid = @uid AND doctor_id = @doctorID",
		pgx.NamedArgs{"uid": uid, "doctorID": doctorID})
	if err != nil {
		return fmt.Errorf("delete doctor mirror: %w", err)
	}
	return nil
}

type cloudAccount struct {
	UID      string `db:"uid"`
	Password string `db:"password"`
}

func (p *pgCloud) authenticate(ctx context.Context, username, password string) (string, error) {
	acct, lookupErr := queryOne[cloudAccount](ctx, p.pool,
		"SELECT uid, password FROM cloud_accounts WHERE username = @username",
		pgx.NamedArgs{"username": username})
	if lookupErr != nil && !errors.Is(lookupErr, pgx.ErrNoRows) {
		return "", fmt.Errorf("%w: %v", errCloudUnavailable, lookupErr)
	}

	// Always run bcrypt so a missing username costs the same as a wrong password.
	hashToCheck := string(dummyHash)
	if lookupErr == nil {
		hashToCheck = acct.Password
	}
	compareErr := bcrypt.CompareHashAndPassword([]byte(hashToCheck), []byte(password))

	if lookupErr != nil || compareErr != nil {
		return "", errInvalidCredentials
	}
	return acct.UID, nil
}

/* ─── Offline mirror ─────────────────────────────────────────────────── */

// offlineCloud is used when no DB_URL is configured. Every call fails the
// same way a network outage would.
type offlineCloud struct{}

func (offlineCloud) fetchProfile(context.Context, string) (*profileDocument, error) {
	return nil, errCloudUnavailable
}

func (offlineCloud) pushProfile(context.Context, string, profileDocument) error {
	return errCloudUnavailable
}

func (offlineCloud) pushDoctor(context.Context, string, doctor) error {
	return errCloudUnavailable
}

func (offlineCloud) deleteDoctor(context.Context, string, string) error {
	return errCloudUnavailable
}

func (offlineCloud) authenticate(context.Context, string, string) (string, error) {
	return "", errCloudUnavailable
}
