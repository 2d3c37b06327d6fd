package connectivity

import "testing"

func TestMonitor_InitialState(t *testing.T) {
	if !NewMonitor(true).Online() {
		t.Error("Online() = false, want true")
	}
	if NewMonitor(false).Online() {
		t.Error("Online() = true, want false")
	}
}

func TestMonitor_NotifiesOnTransition(t *testing.T) {
	m := NewMonitor(false)
	ch := m.Subscribe()

	m.SetOnline(true)

	select {
	case got := <-ch:
		if !got {
			t.Error("received false, want true")
		}
	default:
		t.Fatal("expected a notification on offline->online transition")
	}
}

func TestMonitor_NoNotificationWithoutTransition(t *testing.T) {
	m := NewMonitor(true)
	ch := m.Subscribe()

	// Same state again: no event
	m.SetOnline(true)

	select {
	case <-ch:
		t.Fatal("unexpected notification for repeated state")
	default:
	}
}

func TestMonitor_MultipleTransitions(t *testing.T) {
	m := NewMonitor(false)
	ch := m.Subscribe()

	m.SetOnline(true)
	m.SetOnline(false)
	m.SetOnline(true)

	want := []bool{true, false, true}
	for i, w := range want {
		select {
		case got := <-ch:
			if got != w {
				t.Errorf("event %d = %v, want %v", i, got, w)
			}
		default:
			t.Fatalf("missing event %d", i)
		}
	}
}

func TestMonitor_CloseClosesSubscribers(t *testing.T) {
	m := NewMonitor(false)
	ch := m.Subscribe()

	m.Close()

	if _, ok := <-ch; ok {
		t.Error("channel open after Close")
	}

	// SetOnline after Close is a no-op
	m.SetOnline(true)
	if m.Online() {
		t.Error("state changed after Close")
	}
}

func TestMonitor_SubscribeAfterClose(t *testing.T) {
	m := NewMonitor(false)
	m.Close()

	ch := m.Subscribe()
	if _, ok := <-ch; ok {
		t.Error("expected closed channel from Subscribe after Close")
	}
}
