// Package attendance reconciles recognition responses against the daily
// attendance ledger. It keeps session-scoped lists of who was just marked
// present and who was already marked today, and re-fetches the ledger from
// the backend after every classification so the displayed day state is
// always the authoritative one.
package attendance

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/akranjan/facemark/internal/recognizer"
)

// RecentLimit bounds the recognized and duplicate lists for display. The
// full accumulation is kept internally; only presentation is truncated.
const RecentLimit = 10

// LedgerClient fetches today's attendance ledger. The day boundary belongs
// to the server; the reconciler never computes the ledger locally.
type LedgerClient interface {
	ListAttendance(ctx context.Context) ([]recognizer.AttendanceRecord, error)
}

// Summary describes the outcome of one reconciliation pass.
type Summary struct {
	NewlyRecognized []recognizer.Candidate
	AlreadyPresent  []recognizer.Candidate
	NoMatch         bool
}

// Reconciler accumulates classified recognition results for one dashboard
// visit. Lists grow across repeated captures and are cleared only by an
// explicit Clear call.
type Reconciler struct {
	mu         sync.Mutex
	client     LedgerClient
	notifier   Notifier
	recognized []recognizer.Candidate
	duplicates []recognizer.Candidate
	ledger     []recognizer.AttendanceRecord
}

func NewReconciler(client LedgerClient, notifier Notifier) *Reconciler {
	return &Reconciler{
		client:   client,
		notifier: notifier,
	}
}

// Apply classifies one recognition result, fires the notification policy and
// then refreshes the ledger. Every candidate lands in exactly one of the two
// lists; a result with no candidates at all is reported as NoMatch.
func (r *Reconciler) Apply(ctx context.Context, result *recognizer.Result) Summary {
	r.mu.Lock()

	var summary Summary
	for _, c := range result.Candidates {
		if c.Status == recognizer.StatusAlreadyPresent {
			summary.AlreadyPresent = append(summary.AlreadyPresent, c)
			continue
		}
		summary.NewlyRecognized = append(summary.NewlyRecognized, c)
	}
	summary.AlreadyPresent = append(summary.AlreadyPresent, result.AlreadyPresent...)
	summary.NoMatch = len(summary.NewlyRecognized) == 0 && len(summary.AlreadyPresent) == 0

	r.recognized = append(r.recognized, summary.NewlyRecognized...)
	r.duplicates = mergeByRoll(r.duplicates, summary.AlreadyPresent)
	r.mu.Unlock()

	now := time.Now()
	if len(summary.NewlyRecognized) > 0 {
		r.notifier.Success(fmt.Sprintf("Attendance marked for %s at %s",
			joinNames(summary.NewlyRecognized), now.Format("15:04:05")))
	}
	if len(summary.AlreadyPresent) > 0 {
		r.notifier.Warning(fmt.Sprintf("Already marked present today: %s",
			joinNames(summary.AlreadyPresent)))
	}

	// Classification first, ledger second, so the just-recognized state and
	// the refreshed ledger never disagree for long.
	if err := r.RefreshLedger(ctx); err != nil {
		r.notifier.Error(fmt.Sprintf("Could not refresh attendance ledger: %v", err))
	}

	return summary
}

// RefreshLedger replaces the cached ledger with the backend's current one.
// On failure the previous ledger and the accumulated lists stay untouched.
func (r *Reconciler) RefreshLedger(ctx context.Context) error {
	records, err := r.client.ListAttendance(ctx)
	if err != nil {
		return fmt.Errorf("could not fetch attendance ledger: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.ledger = records
	return nil
}

// RecentRecognized returns the most recent newly-recognized candidates,
// newest last, bounded for display.
func (r *Reconciler) RecentRecognized() []recognizer.Candidate {
	r.mu.Lock()
	defer r.mu.Unlock()
	return tail(r.recognized, RecentLimit)
}

// RecentDuplicates returns the most recent already-present candidates,
// bounded for display.
func (r *Reconciler) RecentDuplicates() []recognizer.Candidate {
	r.mu.Lock()
	defer r.mu.Unlock()
	return tail(r.duplicates, RecentLimit)
}

// Ledger returns the last fetched attendance ledger.
func (r *Reconciler) Ledger() []recognizer.AttendanceRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]recognizer.AttendanceRecord, len(r.ledger))
	copy(out, r.ledger)
	return out
}

// Clear drops the accumulated recognition lists. The ledger cache stays, it
// reflects backend state rather than session history.
func (r *Reconciler) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recognized = nil
	r.duplicates = nil
}

// mergeByRoll appends candidates that are not yet in the list, keyed by roll
// number. Repeat captures of the same student stay a single duplicate entry.
func mergeByRoll(list, incoming []recognizer.Candidate) []recognizer.Candidate {
	seen := make(map[string]bool, len(list))
	for _, c := range list {
		seen[c.RollNumber] = true
	}
	for _, c := range incoming {
		if seen[c.RollNumber] {
			continue
		}
		seen[c.RollNumber] = true
		list = append(list, c)
	}
	return list
}

func tail(list []recognizer.Candidate, n int) []recognizer.Candidate {
	if len(list) > n {
		list = list[len(list)-n:]
	}
	out := make([]recognizer.Candidate, len(list))
	copy(out, list)
	return out
}

func joinNames(candidates []recognizer.Candidate) string {
	names := make([]string, len(candidates))
	for i, c := range candidates {
		names[i] = fmt.Sprintf("%s (%s)", c.Name, c.RollNumber)
	}
	return strings.Join(names, ", ")
}
