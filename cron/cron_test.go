package cron_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gocrud/inject/core"
	"github.com/gocrud/inject/cron"
)

type counter struct {
	n atomic.Int32
}

func (c *counter) Bump() { c.n.Add(1) }

func TestSimpleJobRuns(t *testing.T) {
	rt := core.NewRuntime()

	var runs atomic.Int32
	opt := cron.New(
		cron.WithSeconds(),
		cron.AddJob("* * * * * *", "tick", func() { runs.Add(1) }),
	)
	if err := opt(rt); err != nil {
		t.Fatalf("cron.New failed: %v", err)
	}

	if err := rt.Lifecycle.Start(context.Background()); err != nil {
		t.Fatalf("lifecycle start failed: %v", err)
	}
	defer rt.Lifecycle.Stop(context.Background(), nil)

	deadline := time.After(3 * time.Second)
	for runs.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("job did not run")
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
}

func TestJobWithDependencies(t *testing.T) {
	rt := core.NewRuntime()

	c := &counter{}
	if err := rt.Register("counter", c); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	type jobDeps struct {
		Counter *counter `inject:"counter"`
	}

	opt := cron.New(
		cron.WithSeconds(),
		cron.AddJob("* * * * * *", "bump", func(d jobDeps) {
			d.Counter.Bump()
		}),
	)
	if err := opt(rt); err != nil {
		t.Fatalf("cron.New failed: %v", err)
	}

	if err := rt.Lifecycle.Start(context.Background()); err != nil {
		t.Fatalf("lifecycle start failed: %v", err)
	}
	defer rt.Lifecycle.Stop(context.Background(), nil)

	deadline := time.After(3 * time.Second)
	for c.n.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("dependency-injected job did not run")
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
}

func TestInvalidSpecFailsStart(t *testing.T) {
	rt := core.NewRuntime()

	opt := cron.New(cron.AddJob("not-a-spec", "broken", func() {}))
	if err := opt(rt); err != nil {
		t.Fatalf("cron.New failed: %v", err)
	}

	if err := rt.Lifecycle.Start(context.Background()); err == nil {
		t.Fatal("expected start to fail for invalid cron spec")
	}
}
