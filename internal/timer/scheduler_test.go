package timer

import (
	"testing"
	"time"
)

// TestAfterFiresOnceWhenDue verifies callbacks fire exactly once at their due time
func TestAfterFiresOnceWhenDue(t *testing.T) {
	s := NewScheduler()
	n := 0
	s.After(time.Second, func() { n++ })

	if fired := s.Advance(900 * time.Millisecond); fired != 0 || n != 0 {
		t.Fatalf("fired early: %d", n)
	}
	if fired := s.Advance(100 * time.Millisecond); fired != 1 || n != 1 {
		t.Fatalf("expected one firing, got %d", n)
	}
	s.Advance(10 * time.Second)
	if n != 1 {
		t.Errorf("callback fired %d times", n)
	}
	if s.Pending() != 0 {
		t.Errorf("pending %d", s.Pending())
	}
}

// TestAdvanceOrder verifies due time then scheduling order
func TestAdvanceOrder(t *testing.T) {
	s := NewScheduler()
	var got []int
	s.After(300*time.Millisecond, func() { got = append(got, 3) })
	s.After(100*time.Millisecond, func() { got = append(got, 1) })
	s.After(200*time.Millisecond, func() { got = append(got, 2) })
	s.After(100*time.Millisecond, func() { got = append(got, 11) })

	s.Advance(time.Second)
	want := []int{1, 11, 2, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order %v, want %v", got, want)
		}
	}
}

// TestCancel verifies cancelled callbacks never run
func TestCancel(t *testing.T) {
	s := NewScheduler()
	ran := false
	id := s.After(time.Second, func() { ran = true })
	other := s.After(time.Second, func() {})

	if !s.Cancel(id) {
		t.Fatal("cancel of a pending callback should succeed")
	}
	if s.Cancel(id) {
		t.Error("second cancel should report false")
	}
	s.Advance(2 * time.Second)
	if ran {
		t.Error("cancelled callback ran")
	}
	if s.Cancel(other) {
		t.Error("cancel after firing should report false")
	}
}

// TestCallbackSchedulesAnother verifies callbacks scheduled while firing wait for the next advance
func TestCallbackSchedulesAnother(t *testing.T) {
	s := NewScheduler()
	var order []string
	s.After(time.Second, func() {
		order = append(order, "first")
		s.After(0, func() { order = append(order, "chained") })
		s.After(time.Second, func() { order = append(order, "later") })
	})

	if fired := s.Advance(time.Second); fired != 1 {
		t.Fatalf("fired %d, want 1", fired)
	}
	if fired := s.Advance(0); fired != 1 || len(order) != 2 || order[1] != "chained" {
		t.Fatalf("fired %d, order %v", fired, order)
	}
	s.Advance(time.Second)
	if len(order) != 3 || order[2] != "later" {
		t.Errorf("order %v", order)
	}
}

// TestSelfRearmingCallbackRunsOncePerAdvance verifies a zero-delay re-arm cannot spin inside one advance
func TestSelfRearmingCallbackRunsOncePerAdvance(t *testing.T) {
	s := NewScheduler()
	runs := 0
	var tick func()
	tick = func() {
		runs++
		s.After(0, tick)
	}
	s.After(0, tick)

	for i := 1; i <= 3; i++ {
		if fired := s.Advance(10 * time.Millisecond); fired != 1 || runs != i {
			t.Fatalf("advance %d: fired %d, runs %d", i, fired, runs)
		}
	}
	if s.Pending() != 1 {
		t.Errorf("pending %d, want the re-armed callback", s.Pending())
	}
}

// TestClear verifies clearing drops every pending callback
func TestClear(t *testing.T) {
	s := NewScheduler()
	ran := 0
	for i := 0; i < 5; i++ {
		s.After(time.Duration(i)*time.Millisecond, func() { ran++ })
	}
	s.Clear()
	s.Advance(time.Second)
	if ran != 0 || s.Pending() != 0 {
		t.Errorf("ran %d pending %d", ran, s.Pending())
	}
	if s.Now() != time.Second {
		t.Errorf("clock %v", s.Now())
	}
}
