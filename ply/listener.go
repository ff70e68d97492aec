package ply

import (
	"reflect"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/ply/pointcloud"
	"go.viam.com/ply/spatialmath"
)

// Event is a step in the life of a decode.
type Event int

// Events in the order a decode emits them. ElementStarted, the decoded events and
// ElementFinished repeat for every element with records.
const (
	EventReadStarted Event = iota
	EventHeaderStarted
	EventElementDiscovered
	EventHeaderFinished
	EventDataStarted
	EventElementStarted
	EventVertexDecoded
	EventFaceDecoded
	EventElementFinished
	EventDataFinished
	EventReadFinished
)

var eventNames = [...]string{
	EventReadStarted:       "read started",
	EventHeaderStarted:     "header started",
	EventElementDiscovered: "element discovered",
	EventHeaderFinished:    "header finished",
	EventDataStarted:       "data started",
	EventElementStarted:    "element started",
	EventVertexDecoded:     "vertex decoded",
	EventFaceDecoded:       "face decoded",
	EventElementFinished:   "element finished",
	EventDataFinished:      "data finished",
	EventReadFinished:      "read finished",
}

func (e Event) String() string {
	if e < 0 || int(e) >= len(eventNames) {
		return "unknown event"
	}
	return eventNames[e]
}

// Notification is delivered to listeners for every event. Only the fields relevant to the
// event are set.
type Notification struct {
	Event  Event
	Source string

	// Header is set from EventHeaderFinished on.
	Header *FileDescriptor
	// Element is set for EventElementDiscovered, EventElementStarted and EventElementFinished.
	Element *ElementDescriptor
	// Ordinal is the zero based position of a decoded vertex or face, and the number of records
	// read for EventElementFinished.
	Ordinal int

	Point r3.Vector
	Data  pointcloud.Data
	Face  spatialmath.IndexedFace

	// Result is set for EventReadFinished.
	Result *Result
}

// Listener observes decodes. Returning an error aborts the decode, which returns that error.
type Listener interface {
	Notify(n Notification) error
}

// ListenerFunc adapts a function to a Listener. Function listeners cannot be compared, so
// registering the same one twice delivers events to it twice.
type ListenerFunc func(n Notification) error

// Notify calls f.
func (f ListenerFunc) Notify(n Notification) error {
	return f(n)
}

// dispatcher delivers notifications to listeners synchronously, in registration order.
type dispatcher struct {
	listeners []Listener
}

func sameListener(a, b Listener) bool {
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}

func (d *dispatcher) add(l Listener) bool {
	if l == nil {
		return false
	}
	for _, existing := range d.listeners {
		if sameListener(existing, l) {
			return false
		}
	}
	d.listeners = append(d.listeners, l)
	return true
}

func (d *dispatcher) remove(l Listener) bool {
	for i, existing := range d.listeners {
		if sameListener(existing, l) {
			d.listeners = append(d.listeners[:i:i], d.listeners[i+1:]...)
			return true
		}
	}
	return false
}

func (d *dispatcher) snapshot() *dispatcher {
	return &dispatcher{listeners: append([]Listener(nil), d.listeners...)}
}

func (d *dispatcher) notify(n Notification) error {
	for _, l := range d.listeners {
		if err := l.Notify(n); err != nil {
			return errors.Wrapf(err, "listener aborted decode on %s", n.Event)
		}
	}
	return nil
}
