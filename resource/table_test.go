package resource

import (
	"runtime"
	"testing"
	"time"
)

type testObserver struct {
	events []Event
}

func (o *testObserver) OnResourceEvent(e Event) {
	o.events = append(o.events, e)
}

type item struct {
	name string
	id   int
}

func TestTable_Basic(t *testing.T) {
	table := NewTable[item]()
	v := &item{id: 1}

	if !table.Insert("a", v) {
		t.Fatal("Insert failed")
	}

	got, ok := table.Get("a")
	if !ok {
		t.Fatal("Get failed")
	}
	if got != v {
		t.Fatalf("Get returned %p, want %p", got, v)
	}

	if !table.Remove("a") {
		t.Fatal("Remove failed")
	}
	if table.Remove("a") {
		t.Fatal("second Remove should report absence")
	}
	if table.Len() != 0 {
		t.Fatal("Expected Len() == 0 after Remove")
	}
	runtime.KeepAlive(v)
}

func TestTable_Observer(t *testing.T) {
	table := NewTable[item]()
	obs := &testObserver{}
	table.Subscribe(obs)

	v := &item{}
	table.Insert("x", v)
	if len(obs.events) != 1 || obs.events[0].Type != EventCreated || obs.events[0].Name != "x" {
		t.Fatalf("events = %v, want one created event for x", obs.events)
	}

	table.Remove("x")
	if len(obs.events) != 2 || obs.events[1].Type != EventDropped {
		t.Fatalf("events = %v, want dropped event", obs.events)
	}

	table.Insert("y", v)
	table.Clear()
	if len(obs.events) != 4 || obs.events[3].Type != EventDropped || obs.events[3].Name != "y" {
		t.Fatalf("events = %v, want dropped event for y after Clear", obs.events)
	}
	runtime.KeepAlive(v)
}

func TestTable_DoesNotKeepAlive(t *testing.T) {
	table := NewTable[item]()
	obs := &testObserver{}
	table.Subscribe(obs)

	func() {
		table.Insert("gone", &item{id: 7})
	}()

	deadline := time.Now().Add(5 * time.Second)
	for {
		runtime.GC()
		if dead := table.Prune(); len(dead) == 1 {
			if dead[0] != "gone" {
				t.Fatalf("pruned %v, want [gone]", dead)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("entry was not reclaimed")
		}
		time.Sleep(10 * time.Millisecond)
	}

	last := obs.events[len(obs.events)-1]
	if last.Type != EventCollected || last.Name != "gone" {
		t.Fatalf("last event = %+v, want collected gone", last)
	}
}

func TestTable_NamesSorted(t *testing.T) {
	table := NewTable[item]()
	a, b, c := &item{}, &item{}, &item{}
	table.Insert("c", c)
	table.Insert("a", a)
	table.Insert("b", b)

	names := table.Names()
	if len(names) != 3 || names[0] != "a" || names[1] != "b" || names[2] != "c" {
		t.Fatalf("Names = %v", names)
	}

	table.Clear()
	if table.Len() != 0 {
		t.Fatal("Expected Len() == 0 after Clear")
	}
	runtime.KeepAlive([]*item{a, b, c})
}

func TestTable_Close(t *testing.T) {
	table := NewTable[item]()
	v := &item{}
	table.Insert("a", v)

	if err := table.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if table.Insert("b", v) {
		t.Fatal("Expected Insert to fail after Close")
	}
	runtime.KeepAlive(v)
}
