package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const defaultStepGoal = 10000

type trackingState int

const (
	trackingDisabled trackingState = iota
	trackingActive
)

// stepAccumulator turns the sensor's lifetime step counter (which only
// resets at reboot) into a per-day count persisted in daily_steps.
//
// Readings arrive from HTTP handlers, which may run concurrently, so all
// mutable state is guarded by mu.
type stepAccumulator struct {
	store *localStore
	now   func() time.Time

	mu           sync.Mutex
	loaded       bool
	state        trackingState
	firstReading bool
	offset       int64
	offsetDate   string
	lastLifetime int64
}

func newStepAccumulator(store *localStore, now func() time.Time) *stepAccumulator {
	return &stepAccumulator{store: store, now: now, firstReading: true}
}

// load reads the persisted tracking toggle once. Caller holds a.mu.
func (a *stepAccumulator) load(ctx context.Context) error {
	if a.loaded {
		return nil
	}
	v, _, err := a.store.getSetting(ctx, settingStepCounterEnabled)
	if err != nil {
		return err
	}
	if v == "1" {
		a.state = trackingActive
	}
	a.loaded = true
	return nil
}

// tracking reports whether step tracking is currently active.
func (a *stepAccumulator) tracking(ctx context.Context) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.load(ctx); err != nil {
		return false, err
	}
	return a.state == trackingActive, nil
}

// setTracking toggles tracking and persists the choice. Enabling requires
// permissionGranted; without it the state is forced to disabled and
// errPermissionRequired is returned. Every toggle re-arms the first-reading
// baseline.
func (a *stepAccumulator) setTracking(ctx context.Context, enabled, permissionGranted bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.load(ctx); err != nil {
		return err
	}

	next := trackingDisabled
	if enabled && permissionGranted {
		next = trackingActive
	}
	value := "0"
	if next == trackingActive {
		value = "1"
	}
	if err := a.store.setSetting(ctx, settingStepCounterEnabled, value); err != nil {
		return err
	}
	a.state = next
	a.firstReading = true

	if enabled && !permissionGranted {
		return errPermissionRequired
	}
	return nil
}

// record applies one lifetime-counter reading and returns today's count.
//
// The first reading after a toggle (or process start) sets the offset so the
// stored count for today carries over. When the local date changes between
// readings the new day starts from the previous reading. A counter that goes
// backwards means the device rebooted; the offset is re-based so today's
// stored count is kept.
func (a *stepAccumulator) record(ctx context.Context, lifetime int64) (int, error) {
	if lifetime < 0 {
		return 0, invalid("lifetime_count", "must not be negative")
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.load(ctx); err != nil {
		return 0, err
	}
	if a.state != trackingActive {
		return 0, errTrackingDisabled
	}

	today := dateKey(a.now())
	switch {
	case a.firstReading:
		saved, err := a.store.stepCountFor(ctx, today)
		if err != nil {
			return 0, err
		}
		a.offset = lifetime - int64(saved)
		a.firstReading = false
	case today != a.offsetDate:
		saved, err := a.store.stepCountFor(ctx, today)
		if err != nil {
			return 0, err
		}
		base := min(a.lastLifetime, lifetime)
		a.offset = base - int64(saved)
	case lifetime < a.lastLifetime:
		logger.Info("step counter went backwards, rebasing", zap.Int64("last", a.lastLifetime), zap.Int64("now", lifetime))
		a.offset = lifetime - (a.lastLifetime - a.offset)
	}
	a.offsetDate = today

	steps := lifetime - a.offset
	if steps < 0 {
		steps = 0
	}
	if err := a.store.saveStepCount(ctx, today, int(steps)); err != nil {
		return 0, err
	}
	a.lastLifetime = lifetime
	return int(steps), nil
}

/* ─── Store ──────────────────────────────────────────────────────────── */

// stepCountFor returns the stored count for date, or 0 when there is none.
func (s *localStore) stepCountFor(ctx context.Context, date string) (int, error) {
	var steps int
	err := s.db.QueryRowContext(ctx, `SELECT steps FROM daily_steps WHERE date = ?`, date).Scan(&steps)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read steps for %s: %w", date, err)
	}
	return steps, nil
}

// saveStepCount upserts the record for date.
func (s *localStore) saveStepCount(ctx context.Context, date string, steps int) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO daily_steps(date, steps, updated_at) VALUES(?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(date) DO UPDATE SET steps = excluded.steps, updated_at = excluded.updated_at`, date, steps)
	if err != nil {
		return fmt.Errorf("%w: save steps for %s: %v", errStorageFailure, date, err)
	}
	return nil
}

// stepHistory returns the stored records within [start, end], oldest first.
func (s *localStore) stepHistory(ctx context.Context, start, end string) ([]dailyStepRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT date, steps FROM daily_steps WHERE date >= ? AND date <= ? ORDER BY date ASC`, start, end)
	if err != nil {
		return nil, fmt.Errorf("query step history: %w", err)
	}
	defer rows.Close()

	records := []dailyStepRecord{}
	for rows.Next() {
		var r dailyStepRecord
		if err := rows.Scan(&r.Date, &r.Steps); err != nil {
			return nil, fmt.Errorf("scan step record: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// stepGoal returns the goal saved at onboarding, or defaultStepGoal.
func (s *localStore) stepGoal(ctx context.Context) (int, error) {
	v, ok, err := s.getSetting(ctx, settingStepGoal)
	if err != nil || !ok {
		return defaultStepGoal, err
	}
	goal, err := strconv.Atoi(v)
	if err != nil || goal <= 0 {
		logger.Warn("ignoring malformed step goal setting", zap.String("value", v))
		return defaultStepGoal, nil
	}
	return goal, nil
}

func progressPercent(steps, goal int) int {
	if goal <= 0 {
		return 0
	}
	return min(100, max(0, steps*100/goal))
}

/* ─── Handlers ───────────────────────────────────────────────────────── */

// getStepStatus returns tracking state, today's count and goal progress.
// GET /api/steps/status.
func (h *Handler) getStepStatus(c *gin.Context) {
	active, err := h.steps.tracking(c)
	if err != nil {
		respondError(c, err, "failed to read tracking state")
		return
	}
	today := dateKey(h.steps.now())
	steps, err := h.store.stepCountFor(c, today)
	if err != nil {
		respondError(c, err, "failed to read today's steps")
		return
	}
	goal, err := h.store.stepGoal(c)
	if err != nil {
		respondError(c, err, "failed to read step goal")
		return
	}
	c.JSON(http.StatusOK, stepStatus{
		Tracking:    active,
		Date:        today,
		TodaySteps:  steps,
		Goal:        goal,
		ProgressPct: progressPercent(steps, goal),
	})
}

// setStepTracking turns the step sensor feed on or off.
// PUT /api/steps/tracking. Body: { "enabled": bool, "permission_granted": bool }.
// Enabling without permission returns 403 and leaves tracking off.
func (h *Handler) setStepTracking(c *gin.Context) {
	var body struct {
		Enabled           *bool `json:"enabled"`
		PermissionGranted bool  `json:"permission_granted"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Enabled == nil {
		apiError(c, http.StatusBadRequest, "enabled is required")
		return
	}
	if err := h.steps.setTracking(c, *body.Enabled, body.PermissionGranted); err != nil {
		respondError(c, err, "failed to update tracking state")
		return
	}
	c.JSON(http.StatusOK, gin.H{"tracking": *body.Enabled})
}

// recordStepReading feeds one raw sensor reading.
// POST /api/steps/readings. Body: { "lifetime_count": N }. Returns 409 when
// tracking is disabled.
func (h *Handler) recordStepReading(c *gin.Context) {
	var body struct {
		LifetimeCount *int64 `json:"lifetime_count"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.LifetimeCount == nil {
		apiError(c, http.StatusBadRequest, "lifetime_count is required")
		return
	}
	steps, err := h.steps.record(c, *body.LifetimeCount)
	if err != nil {
		respondError(c, err, "failed to record steps")
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": dateKey(h.steps.now()), "today_steps": steps})
}

// getStepHistory returns stored daily step records within [start, end].
// GET /api/steps?start=YYYY-MM-DD&end=YYYY-MM-DD. Both params required.
// Returns an empty array (not null) if no records exist in the range.
func (h *Handler) getStepHistory(c *gin.Context) {
	start := c.Query("start")
	end := c.Query("end")

	if start == "" || end == "" {
		apiError(c, http.StatusBadRequest, "start and end query params are required")
		return
	}
	if _, err := time.Parse(dateLayout, start); err != nil {
		apiError(c, http.StatusBadRequest, "invalid start, expected YYYY-MM-DD")
		return
	}
	if _, err := time.Parse(dateLayout, end); err != nil {
		apiError(c, http.StatusBadRequest, "invalid end, expected YYYY-MM-DD")
		return
	}
	if start > end {
		apiError(c, http.StatusBadRequest, "start must not be after end")
		return
	}

	records, err := h.store.stepHistory(c, start, end)
	if err != nil {
		respondError(c, err, "failed to fetch step history")
		return
	}
	c.JSON(http.StatusOK, records)
}

// getStepWeekSummary returns 7 days of step totals starting from week_start.
// GET /api/steps/week-summary?week_start=YYYY-MM-DD. Defaults to the current
// week's Monday. Days without a record are filled with zeros.
func (h *Handler) getStepWeekSummary(c *gin.Context) {
	var weekStart time.Time
	if s := c.Query("week_start"); s != "" {
		t, err := time.ParseInLocation(dateLayout, s, time.Local)
		if err != nil {
			apiError(c, http.StatusBadRequest, "invalid week_start, expected YYYY-MM-DD")
			return
		}
		weekStart = t
	} else {
		weekStart = currentMonday(h.steps.now())
	}
	weekEnd := weekStart.AddDate(0, 0, 6)

	goal, err := h.store.stepGoal(c)
	if err != nil {
		respondError(c, err, "failed to read step goal")
		return
	}
	records, err := h.store.stepHistory(c, weekStart.Format(dateLayout), weekEnd.Format(dateLayout))
	if err != nil {
		respondError(c, err, "failed to fetch week data")
		return
	}

	// Index records by date string for O(1) merge.
	byDate := make(map[string]int, len(records))
	for _, r := range records {
		byDate[r.Date.Format(dateLayout)] = r.Steps
	}

	result := make([]stepWeekDay, 7)
	for i := 0; i < 7; i++ {
		d := weekStart.AddDate(0, 0, i)
		day := stepWeekDay{Date: DateOnly{d}, Goal: goal}
		if steps, ok := byDate[d.Format(dateLayout)]; ok {
			day.HasData = true
			day.Steps = steps
			day.GoalMet = steps >= goal
		}
		result[i] = day
	}
	c.JSON(http.StatusOK, result)
}
