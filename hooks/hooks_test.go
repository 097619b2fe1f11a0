package hooks

import "testing"

type fakeSub struct {
	calls []string
}

func (f *fakeSub) OnInit()          { f.calls = append(f.calls, "init") }
func (f *fakeSub) OnPreFreqChange() { f.calls = append(f.calls, "pre") }
func (f *fakeSub) OnFreqChange()    { f.calls = append(f.calls, "change") }

func TestPublish_RunsSubscribersInOrder(t *testing.T) {
	n := New()
	var got []int
	n.Register(StageInit, func(Event) { got = append(got, 1) })
	n.Register(StageInit, func(Event) { got = append(got, 2) })
	n.Register(StageFreqChange, func(Event) { got = append(got, 99) })

	n.Publish(Event{Stage: StageInit})

	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("got %v, want [1 2]", got)
	}
}

func TestNotifyFreqChange_PreRunsBeforeChange(t *testing.T) {
	n := New()
	s := &fakeSub{}
	Bind(n, s)

	n.Publish(Event{Stage: StageInit})
	n.NotifyFreqChange(32_000_000)

	want := []string{"init", "pre", "change"}
	if len(s.calls) != len(want) {
		t.Fatalf("calls %v", s.calls)
	}
	for i := range want {
		if s.calls[i] != want[i] {
			t.Fatalf("calls %v, want %v", s.calls, want)
		}
	}
}

func TestEvent_CarriesNewClock(t *testing.T) {
	n := New()
	var hz uint32
	n.Register(StageFreqChange, func(e Event) { hz = e.Hz })

	n.NotifyFreqChange(48_000_000)

	if hz != 48_000_000 {
		t.Fatalf("event Hz = %d", hz)
	}
}
