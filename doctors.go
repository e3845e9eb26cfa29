package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// doctorSyncConcurrency caps parallel pushes during a bulk sync.
const doctorSyncConcurrency = 4

const doctorColumns = `id, name, specialty, phone, email, created_at, updated_at`

func (r *doctorRequest) normalize() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Specialty = strings.TrimSpace(r.Specialty)
	r.PhoneNumber = strings.TrimSpace(r.PhoneNumber)
	if r.Name == "" {
		return invalid("name", "name is required")
	}
	if r.Specialty == "" {
		return invalid("specialty", "specialty is required")
	}
	if r.PhoneNumber == "" {
		return invalid("phone_number", "phone number is required")
	}
	if r.Email != nil {
		e := strings.TrimSpace(*r.Email)
		if e == "" {
			r.Email = nil
		} else if !strings.Contains(e, "@") {
			return invalid("email", "please enter a valid email")
		} else {
			r.Email = &e
		}
	}
	return nil
}

/* ─── Store ──────────────────────────────────────────────────────────── */

func (s *localStore) listDoctors(ctx context.Context) ([]doctor, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+doctorColumns+` FROM doctors ORDER BY name COLLATE NOCASE, id`)
	if err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}
	defer rows.Close()

	doctors := []doctor{}
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, err
		}
		doctors = append(doctors, *d)
	}
	return doctors, rows.Err()
}

func (s *localStore) getDoctor(ctx context.Context, id string) (*doctor, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+doctorColumns+` FROM doctors WHERE id = ?`, id)
	d, err := scanDoctor(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errDoctorNotFound
	}
	return d, err
}

func (s *localStore) insertDoctor(ctx context.Context, req doctorRequest, now time.Time) (*doctor, error) {
	id := uuid.NewString()
	ts := now.UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx, `
INSERT INTO doctors(id, name, specialty, phone, email, created_at, updated_at)
VALUES(?, ?, ?, ?, ?, ?, ?)`,
		id, req.Name, req.Specialty, req.PhoneNumber, nullString(req.Email), ts, ts)
	if err != nil {
		return nil, fmt.Errorf("%w: insert doctor: %v", errStorageFailure, err)
	}
	return s.getDoctor(ctx, id)
}

func (s *localStore) updateDoctor(ctx context.Context, id string, req doctorRequest, now time.Time) (*doctor, error) {
	res, err := s.db.ExecContext(ctx, `
UPDATE doctors SET name = ?, specialty = ?, phone = ?, email = ?, updated_at = ?
WHERE id = ?`,
		req.Name, req.Specialty, req.PhoneNumber, nullString(req.Email), now.UTC().Format(time.RFC3339Nano), id)
	if err != nil {
		return nil, fmt.Errorf("%w: update doctor: %v", errStorageFailure, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, errDoctorNotFound
	}
	return s.getDoctor(ctx, id)
}

func (s *localStore) deleteDoctor(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM doctors WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("%w: delete doctor: %v", errStorageFailure, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errDoctorNotFound
	}
	return nil
}

func scanDoctor(row rowScanner) (*doctor, error) {
	var (
		d                    doctor
		email                sql.NullString
		createdAt, updatedAt string
	)
	if err := row.Scan(&d.ID, &d.Name, &d.Specialty, &d.PhoneNumber, &email, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	d.Email = stringPtr(email)
	d.CreatedAt = parseTimestamp(createdAt)
	d.UpdatedAt = parseTimestamp(updatedAt)
	return &d, nil
}

// parseTimestamp accepts the RFC 3339 values this package writes and the
// "YYYY-MM-DD HH:MM:SS" form of SQLite's CURRENT_TIMESTAMP.
func parseTimestamp(s string) *time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.DateTime} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

/* ─── Handlers ───────────────────────────────────────────────────────── */

// listDoctors returns the local doctor directory ordered by name.
// GET /api/doctors.
func (h *Handler) listDoctors(c *gin.Context) {
	doctors, err := h.store.listDoctors(c)
	if err != nil {
		respondError(c, err, "failed to fetch doctors")
		return
	}
	c.JSON(http.StatusOK, doctors)
}

// createDoctor adds a doctor locally and mirrors it in the background.
// POST /api/doctors. Body: { name, specialty, phone_number, email? }.
func (h *Handler) createDoctor(c *gin.Context) {
	var body doctorRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := body.normalize(); err != nil {
		respondError(c, err, "invalid doctor")
		return
	}
	d, err := h.store.insertDoctor(c, body, time.Now())
	if err != nil {
		respondError(c, err, "failed to save doctor")
		return
	}
	h.reconciler.pushDoctor(c.GetString("uid"), *d)
	c.JSON(http.StatusCreated, d)
}

// updateDoctor replaces a doctor's fields.
// PUT /api/doctors/:id. Same body as createDoctor. 404 if the id is unknown.
func (h *Handler) updateDoctor(c *gin.Context) {
	var body doctorRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := body.normalize(); err != nil {
		respondError(c, err, "invalid doctor")
		return
	}
	d, err := h.store.updateDoctor(c, c.Param("id"), body, time.Now())
	if err != nil {
		respondError(c, err, "failed to update doctor")
		return
	}
	h.reconciler.pushDoctor(c.GetString("uid"), *d)
	c.JSON(http.StatusOK, d)
}

// deleteDoctor removes a doctor locally and from the mirror.
// DELETE /api/doctors/:id. Returns 204 on success, 404 if not found.
func (h *Handler) deleteDoctor(c *gin.Context) {
	id := c.Param("id")
	if err := h.store.deleteDoctor(c, id); err != nil {
		respondError(c, err, "failed to delete doctor")
		return
	}
	h.reconciler.removeDoctor(c.GetString("uid"), id)
	c.Status(http.StatusNoContent)
}

// syncDoctors pushes every local doctor to the mirror and waits for the
// result, a few at a time. Individual failures are counted, not fatal.
// POST /api/doctors/sync.
func (h *Handler) syncDoctors(c *gin.Context) {
	uid := c.GetString("uid")
	doctors, err := h.store.listDoctors(c)
	if err != nil {
		respondError(c, err, "failed to fetch doctors")
		return
	}

	synced, failed := h.pushDoctors(c.Request.Context(), uid, doctors)
	if synced == 0 && failed > 0 {
		apiError(c, http.StatusServiceUnavailable, "cloud sync is unavailable, try again later")
		return
	}
	c.JSON(http.StatusOK, gin.H{"synced": synced, "failed": failed})
}

func (h *Handler) pushDoctors(ctx context.Context, uid string, doctors []doctor) (int64, int64) {
	var synced, failed atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(doctorSyncConcurrency)
	for _, d := range doctors {
		g.Go(func() error {
			if err := h.cloud.pushDoctor(ctx, uid, d); err != nil {
				logger.Warn("doctor sync failed", zap.String("uid", uid), zap.String("doctor_id", d.ID), zap.Error(err))
				failed.Add(1)
				return nil
			}
			synced.Add(1)
			return nil
		})
	}
	_ = g.Wait()
	return synced.Load(), failed.Load()
}
