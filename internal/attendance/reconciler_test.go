package attendance

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/akranjan/facemark/internal/recognizer"
)

type fakeLedger struct {
	records []recognizer.AttendanceRecord
	err     error
	calls   int
}

func (f *fakeLedger) ListAttendance(ctx context.Context) ([]recognizer.AttendanceRecord, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

func candidate(roll string, status recognizer.CandidateStatus) recognizer.Candidate {
	return recognizer.Candidate{
		Name:       "Student " + roll,
		RollNumber: roll,
		Status:     status,
	}
}

func TestApply_PartitionsByStatus(t *testing.T) {
	ledger := &fakeLedger{records: []recognizer.AttendanceRecord{{RollNumber: "R1"}}}
	collector := NewCollector()
	r := NewReconciler(ledger, collector)

	summary := r.Apply(context.Background(), &recognizer.Result{
		Candidates: []recognizer.Candidate{
			candidate("R1", recognizer.StatusPresent),
		},
		AlreadyPresent: []recognizer.Candidate{
			candidate("R2", recognizer.StatusAlreadyPresent),
		},
	})

	if len(summary.NewlyRecognized) != 1 || summary.NewlyRecognized[0].RollNumber != "R1" {
		t.Errorf("expected R1 newly recognized, got %+v", summary.NewlyRecognized)
	}
	if len(summary.AlreadyPresent) != 1 || summary.AlreadyPresent[0].RollNumber != "R2" {
		t.Errorf("expected R2 already present, got %+v", summary.AlreadyPresent)
	}
	if summary.NoMatch {
		t.Error("summary must not be a no-match when candidates exist")
	}

	// Two distinct notifications from the one capture.
	notifications := collector.Drain()
	if len(notifications) != 2 {
		t.Fatalf("expected success and warning notifications, got %+v", notifications)
	}
	if notifications[0].Level != "success" || notifications[1].Level != "warning" {
		t.Errorf("unexpected notification levels: %+v", notifications)
	}

	if ledger.calls != 1 {
		t.Errorf("ledger must be refreshed exactly once per Apply, got %d calls", ledger.calls)
	}
	if got := r.Ledger(); len(got) != 1 || got[0].RollNumber != "R1" {
		t.Errorf("unexpected ledger after refresh: %+v", got)
	}
}

func TestApply_InlineAlreadyPresentStatus(t *testing.T) {
	r := NewReconciler(&fakeLedger{}, NewCollector())

	summary := r.Apply(context.Background(), &recognizer.Result{
		Candidates: []recognizer.Candidate{
			candidate("R1", recognizer.StatusPresent),
			candidate("R2", recognizer.StatusAlreadyPresent),
		},
	})

	if len(summary.NewlyRecognized) != 1 || len(summary.AlreadyPresent) != 1 {
		t.Fatalf("candidates must land in exactly one list each: %+v", summary)
	}
	if summary.AlreadyPresent[0].RollNumber != "R2" {
		t.Errorf("expected R2 classified as already present, got %+v", summary.AlreadyPresent)
	}
}

func TestApply_NoCandidatesIsNeutral(t *testing.T) {
	collector := NewCollector()
	r := NewReconciler(&fakeLedger{}, collector)

	summary := r.Apply(context.Background(), &recognizer.Result{})

	if !summary.NoMatch {
		t.Error("zero candidates must be reported as a no-match outcome")
	}
	for _, n := range collector.Drain() {
		if n.Level == "error" {
			t.Errorf("no-match must not raise an error notification: %+v", n)
		}
	}
	if len(r.RecentRecognized()) != 0 || len(r.RecentDuplicates()) != 0 {
		t.Error("no-match must not grow the accumulated lists")
	}
}

func TestApply_AccumulatesAcrossCaptures(t *testing.T) {
	r := NewReconciler(&fakeLedger{}, NewCollector())

	r.Apply(context.Background(), &recognizer.Result{
		Candidates: []recognizer.Candidate{candidate("R1", recognizer.StatusPresent)},
	})
	r.Apply(context.Background(), &recognizer.Result{
		Candidates:     []recognizer.Candidate{candidate("R3", recognizer.StatusPresent)},
		AlreadyPresent: []recognizer.Candidate{candidate("R1", recognizer.StatusAlreadyPresent)},
	})
	// R1 shows up as a repeat again; the duplicate list must not grow.
	r.Apply(context.Background(), &recognizer.Result{
		AlreadyPresent: []recognizer.Candidate{candidate("R1", recognizer.StatusAlreadyPresent)},
	})

	recognized := r.RecentRecognized()
	if len(recognized) != 2 {
		t.Errorf("expected two accumulated recognitions, got %+v", recognized)
	}
	duplicates := r.RecentDuplicates()
	if len(duplicates) != 1 || duplicates[0].RollNumber != "R1" {
		t.Errorf("repeat duplicates must be merged by roll number, got %+v", duplicates)
	}
}

func TestRecentRecognized_BoundedForDisplay(t *testing.T) {
	r := NewReconciler(&fakeLedger{}, NewCollector())

	for i := 0; i < RecentLimit+3; i++ {
		r.Apply(context.Background(), &recognizer.Result{
			Candidates: []recognizer.Candidate{
				candidate(fmt.Sprintf("R%d", i), recognizer.StatusPresent),
			},
		})
	}

	recent := r.RecentRecognized()
	if len(recent) != RecentLimit {
		t.Fatalf("expected display list bounded to %d, got %d", RecentLimit, len(recent))
	}
	if recent[len(recent)-1].RollNumber != fmt.Sprintf("R%d", RecentLimit+2) {
		t.Errorf("expected the most recent entries to survive, got %+v", recent)
	}
}

func TestApply_LedgerFailurePreservesLists(t *testing.T) {
	ledger := &fakeLedger{err: errors.New("backend down")}
	collector := NewCollector()
	r := NewReconciler(ledger, collector)

	summary := r.Apply(context.Background(), &recognizer.Result{
		Candidates: []recognizer.Candidate{candidate("R1", recognizer.StatusPresent)},
	})

	if len(summary.NewlyRecognized) != 1 {
		t.Fatalf("classification must happen before the ledger fetch, got %+v", summary)
	}
	if len(r.RecentRecognized()) != 1 {
		t.Error("accumulated lists must survive a ledger fetch failure")
	}

	var sawError bool
	for _, n := range collector.Drain() {
		if n.Level == "error" {
			sawError = true
		}
	}
	if !sawError {
		t.Error("ledger fetch failure must surface an error notification")
	}
}

func TestClear_DropsHistoryKeepsLedger(t *testing.T) {
	ledger := &fakeLedger{records: []recognizer.AttendanceRecord{{RollNumber: "R1"}}}
	r := NewReconciler(ledger, NewCollector())

	r.Apply(context.Background(), &recognizer.Result{
		Candidates: []recognizer.Candidate{candidate("R1", recognizer.StatusPresent)},
	})
	r.Clear()

	if len(r.RecentRecognized()) != 0 || len(r.RecentDuplicates()) != 0 {
		t.Error("Clear must drop the accumulated lists")
	}
	if len(r.Ledger()) != 1 {
		t.Error("Clear must not drop the backend ledger cache")
	}
}
