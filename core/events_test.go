package core

import (
	"testing"

	"github.com/ethereum/go-ethereum/core/types"
)

func TestJournalRevertsNewestFirst(t *testing.T) {
	var order []int
	var j journal
	j.append(func() { order = append(order, 1) })
	j.append(nil)
	j.append(func() { order = append(order, 2) })
	j.revert()

	if len(order) != 2 || order[0] != 2 || order[1] != 1 {
		t.Fatalf("undo order = %v", order)
	}
	j.revert()
	if len(order) != 2 {
		t.Fatal("revert ran steps twice")
	}

	j.append(func() { t.Fatal("committed step ran") })
	j.commit()
	j.revert()
}

func TestEventHubFanOut(t *testing.T) {
	hub := NewEventHub()
	first, cancelFirst := hub.Subscribe()
	second, cancelSecond := hub.Subscribe()
	defer cancelSecond()

	hub.Publish(&types.Log{Index: 1}, &types.Log{Index: 2})

	for _, ch := range []<-chan *types.Log{first, second} {
		for want := uint(1); want <= 2; want++ {
			if l := <-ch; l.Index != want {
				t.Fatalf("got log %d, want %d", l.Index, want)
			}
		}
	}

	cancelFirst()
	cancelFirst()
	if _, ok := <-first; ok {
		t.Fatal("cancelled subscription still open")
	}
	hub.Publish(&types.Log{Index: 3})
	if l := <-second; l.Index != 3 {
		t.Fatalf("got log %d after cancel of other subscriber", l.Index)
	}
}

func TestEventHubDropsForSlowSubscriber(t *testing.T) {
	hub := NewEventHub()
	ch, cancel := hub.Subscribe()
	defer cancel()

	for i := 0; i < subscriberBuffer+10; i++ {
		hub.Publish(&types.Log{Index: uint(i)})
	}
	if len(ch) != subscriberBuffer {
		t.Fatalf("buffered %d logs, want %d", len(ch), subscriberBuffer)
	}
	if l := <-ch; l.Index != 0 {
		t.Fatalf("first buffered log = %d", l.Index)
	}
}
