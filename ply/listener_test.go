package ply

import (
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"
)

type countingListener struct {
	name   string
	counts map[Event]int
}

func (l *countingListener) Notify(n Notification) error {
	l.counts[n.Event]++
	return nil
}

func newCountingListener(name string) *countingListener {
	return &countingListener{name: name, counts: map[Event]int{}}
}

func TestDispatcher(t *testing.T) {
	var d dispatcher
	a, b := newCountingListener("a"), newCountingListener("b")

	test.That(t, d.add(a), test.ShouldBeTrue)
	test.That(t, d.add(b), test.ShouldBeTrue)
	test.That(t, d.add(a), test.ShouldBeFalse)
	test.That(t, d.add(nil), test.ShouldBeFalse)
	test.That(t, d.listeners, test.ShouldHaveLength, 2)

	test.That(t, d.notify(Notification{Event: EventReadStarted}), test.ShouldBeNil)
	test.That(t, a.counts[EventReadStarted], test.ShouldEqual, 1)
	test.That(t, b.counts[EventReadStarted], test.ShouldEqual, 1)

	snap := d.snapshot()
	test.That(t, d.remove(a), test.ShouldBeTrue)
	test.That(t, d.remove(a), test.ShouldBeFalse)
	test.That(t, d.listeners, test.ShouldHaveLength, 1)
	test.That(t, snap.listeners, test.ShouldHaveLength, 2)
}

func TestDispatcherFuncListeners(t *testing.T) {
	var d dispatcher
	calls := 0
	f := ListenerFunc(func(Notification) error {
		calls++
		return nil
	})
	test.That(t, d.add(f), test.ShouldBeTrue)
	test.That(t, d.add(f), test.ShouldBeTrue)
	test.That(t, d.notify(Notification{}), test.ShouldBeNil)
	test.That(t, calls, test.ShouldEqual, 2)
	test.That(t, d.remove(f), test.ShouldBeFalse)
}

func TestDispatcherAbort(t *testing.T) {
	var d dispatcher
	var order []string
	boom := errors.New("boom")
	d.add(ListenerFunc(func(Notification) error {
		order = append(order, "first")
		return boom
	}))
	d.add(ListenerFunc(func(Notification) error {
		order = append(order, "second")
		return nil
	}))

	err := d.notify(Notification{Event: EventFaceDecoded})
	test.That(t, errors.Is(err, boom), test.ShouldBeTrue)
	test.That(t, err.Error(), test.ShouldEqual, "listener aborted decode on face decoded: boom")
	test.That(t, order, test.ShouldResemble, []string{"first"})
}

func TestEventString(t *testing.T) {
	test.That(t, EventReadStarted.String(), test.ShouldEqual, "read started")
	test.That(t, EventReadFinished.String(), test.ShouldEqual, "read finished")
	test.That(t, Event(99).String(), test.ShouldEqual, "unknown event")
}
