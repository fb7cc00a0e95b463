package eventlog

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWaitAfterWakesOnAppend(t *testing.T) {
	l := newTestLog(t)
	done := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		done <- l.WaitAfter(ctx, 0)
	}()
	time.Sleep(20 * time.Millisecond)
	appendN(t, l, 1)
	if err := <-done; err != nil {
		t.Fatalf("wait: %v", err)
	}
}

func TestWaitAfterReturnsImmediatelyWhenBehind(t *testing.T) {
	l := newTestLog(t)
	appendN(t, l, 2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := l.WaitAfter(ctx, 1); err != nil {
		t.Fatalf("wait: %v", err)
	}
}

func TestWaitAfterTimeout(t *testing.T) {
	l := newTestLog(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	if err := l.WaitAfter(ctx, 0); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v", err)
	}
}
