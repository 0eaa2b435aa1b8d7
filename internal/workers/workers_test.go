package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRunOnceContinuesAfterFailure(t *testing.T) {
	var ran []string
	r := NewRunner(
		Job{Name: "first_fails", Run: func(ctx context.Context) (int64, error) {
			ran = append(ran, "first_fails")
			return 0, errors.New("boom")
		}},
		Job{Name: "second_ok", Run: Counted(func(ctx context.Context) (int, error) {
			ran = append(ran, "second_ok")
			return 3, nil
		})},
	)

	before := testutil.ToFloat64(jobRuns.WithLabelValues("first_fails", "error"))
	r.RunOnce(context.Background())

	if len(ran) != 2 || ran[1] != "second_ok" {
		t.Fatalf("ran = %v", ran)
	}
	if got := testutil.ToFloat64(jobRuns.WithLabelValues("first_fails", "error")); got != before+1 {
		t.Errorf("error counter = %v, want %v", got, before+1)
	}
}

func TestStartStopsOnCancel(t *testing.T) {
	calls := make(chan struct{}, 10)
	r := NewRunner(Job{Name: "tick", Run: func(ctx context.Context) (int64, error) {
		calls <- struct{}{}
		return 0, nil
	}})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Start(ctx, time.Hour)
		close(done)
	}()

	select {
	case <-calls:
	case <-time.After(time.Second):
		t.Fatal("job did not run on start")
	}
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start did not return after cancel")
	}
}
