package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/morelab/appcomposer/pkg/interfaces"
)

func TestNoOpDropsEverything(t *testing.T) {
	s := NewNoOp()
	ctx := context.Background()

	job, err := s.Enqueue(ctx, interfaces.JobSpec{Key: "k", Type: "t", RunAt: time.Now()})
	if err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}
	if job.Status != interfaces.JobStatusCompleted {
		t.Fatalf("job status = %q, want completed", job.Status)
	}

	if _, err := s.GetByKey(ctx, "k"); !errors.Is(err, interfaces.ErrJobNotFound) {
		t.Fatalf("GetByKey() error = %v, want ErrJobNotFound", err)
	}
	due, err := s.ListDue(ctx, time.Now().Add(time.Hour), 10)
	if err != nil || len(due) != 0 {
		t.Fatalf("ListDue() = %v, %v", due, err)
	}
}
