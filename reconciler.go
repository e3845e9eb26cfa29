package main

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

type reconcileState int

const (
	awaitingDecision reconcileState = iota
	resolved
)

func (s reconcileState) String() string {
	if s == resolved {
		return "resolved"
	}
	return "awaiting_decision"
}

// cloudReconciler decides once per sign-in whether the local profile is
// seeded from the cloud mirror, and afterwards pushes local changes to the
// mirror without blocking the caller. Local data is authoritative except
// during that one decision.
type cloudReconciler struct {
	store       *localStore
	cloud       cloudMirror
	syncTimeout time.Duration

	mu       sync.Mutex
	state    reconcileState
	restored bool

	pushes sync.WaitGroup
}

func newCloudReconciler(store *localStore, cloud cloudMirror, syncTimeout time.Duration) *cloudReconciler {
	return &cloudReconciler{store: store, cloud: cloud, syncTimeout: syncTimeout}
}

// resolve runs the startup decision for uid. A mirror document that exists
// and converts cleanly replaces the local profile and reports restored.
// A missing document and any remote failure both report not restored.
// Once resolved, later calls return the cached outcome. The only error
// returned is a local storage failure while writing a restored profile,
// which leaves the state at awaitingDecision.
func (r *cloudReconciler) resolve(ctx context.Context, uid string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == resolved {
		return r.restored, nil
	}

	restored, err := r.fetchAndRestore(ctx, uid)
	if err != nil {
		return false, err
	}
	r.state = resolved
	r.restored = restored
	logger.Info("cloud reconciliation resolved", zap.String("uid", uid), zap.Bool("restored", restored))
	return restored, nil
}

func (r *cloudReconciler) fetchAndRestore(ctx context.Context, uid string) (bool, error) {
	doc, err := r.cloud.fetchProfile(ctx, uid)
	if err != nil {
		logger.Warn("cloud profile fetch failed, continuing with local data",
			zap.String("uid", uid), zap.Error(err))
		return false, nil
	}
	if doc == nil {
		return false, nil
	}
	p, err := doc.toProfile(uid)
	if err != nil {
		logger.Warn("cloud profile ignored", zap.String("uid", uid), zap.Error(err))
		return false, nil
	}
	if _, err := r.store.saveProfile(ctx, p); err != nil {
		return false, err
	}
	return true, nil
}

// status reports the current state and, when resolved, whether the profile
// came from the mirror.
func (r *cloudReconciler) status() (reconcileState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state, r.restored
}

// reset returns to awaitingDecision so the next sign-in reconciles again.
func (r *cloudReconciler) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = awaitingDecision
	r.restored = false
}

/* ─── Fire-and-forget pushes ─────────────────────────────────────────── */

// pushAsync runs push in the background with its own timeout. Failures are
// logged and dropped; there is no retry. An empty uid means nobody is signed
// in and nothing is pushed.
func (r *cloudReconciler) pushAsync(what, uid string, push func(ctx context.Context) error) {
	if uid == "" {
		logger.Debug("cloud push skipped, no signed-in user", zap.String("what", what))
		return
	}
	r.pushes.Add(1)
	go func() {
		defer r.pushes.Done()
		ctx, cancel := context.WithTimeout(context.Background(), r.syncTimeout)
		defer cancel()
		if err := push(ctx); err != nil {
			logger.Warn("cloud push failed",
				zap.String("what", what), zap.String("uid", uid), zap.Error(err))
		}
	}()
}

func (r *cloudReconciler) pushProfile(uid string, p userProfile) {
	doc := documentFromProfile(p)
	r.pushAsync("profile", uid, func(ctx context.Context) error {
		return r.cloud.pushProfile(ctx, uid, doc)
	})
}

func (r *cloudReconciler) pushDoctor(uid string, d doctor) {
	r.pushAsync("doctor", uid, func(ctx context.Context) error {
		return r.cloud.pushDoctor(ctx, uid, d)
	})
}

func (r *cloudReconciler) removeDoctor(uid, doctorID string) {
	r.pushAsync("doctor_delete", uid, func(ctx context.Context) error {
		return r.cloud.deleteDoctor(ctx, uid, doctorID)
	})
}

// wait blocks until every in-flight push has finished.
func (r *cloudReconciler) wait() {
	r.pushes.Wait()
}
