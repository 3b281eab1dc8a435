package bridge

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/bazelment/yoloswe/ipcbridge/protocol"
)

// Subscription identifies a registered listener; pass it to Off to remove it.
type Subscription struct {
	kind protocol.Kind
	id   uint64
}

// Kind returns the event kind the subscription listens to.
func (s Subscription) Kind() protocol.Kind { return s.kind }

type listener[T any] struct {
	fn func(T)
	id uint64
}

// Dispatcher is a typed publish/subscribe registry for the five bridge
// event kinds. Listeners of a kind run synchronously in registration order.
//
// Listener slices are copy-on-write: emit iterates a snapshot, so listeners
// may subscribe or unsubscribe from inside a callback. Changes take effect
// from the next emission.
type Dispatcher struct {
	logger     *slog.Logger
	ready      []listener[protocol.ReadyMessage]
	connect    []listener[protocol.ConnectMessage]
	disconnect []listener[protocol.DisconnectMessage]
	message    []listener[protocol.IncomingMessage]
	errors     []listener[protocol.ErrorMessage]
	nextID     uint64
	mu         sync.RWMutex
}

// NewDispatcher returns an empty Dispatcher. Panics inside error listeners
// are reported to logger; nil means slog.Default().
func NewDispatcher(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{logger: logger}
}

// OnReady registers fn for the ready handshake.
func (d *Dispatcher) OnReady(fn func(protocol.ReadyMessage)) Subscription {
	return subscribe(d, &d.ready, protocol.KindReady, fn)
}

// OnConnect registers fn for client connections.
func (d *Dispatcher) OnConnect(fn func(protocol.ConnectMessage)) Subscription {
	return subscribe(d, &d.connect, protocol.KindConnect, fn)
}

// OnDisconnect registers fn for client disconnections.
func (d *Dispatcher) OnDisconnect(fn func(protocol.DisconnectMessage)) Subscription {
	return subscribe(d, &d.disconnect, protocol.KindDisconnect, fn)
}

// OnMessage registers fn for payloads received from clients.
func (d *Dispatcher) OnMessage(fn func(protocol.IncomingMessage)) Subscription {
	return subscribe(d, &d.message, protocol.KindMessage, fn)
}

// OnError registers fn for bridge-reported and supervisor-diagnosed errors.
func (d *Dispatcher) OnError(fn func(protocol.ErrorMessage)) Subscription {
	return subscribe(d, &d.errors, protocol.KindError, fn)
}

// Off removes a listener. It reports whether the subscription was still
// registered.
func (d *Dispatcher) Off(sub Subscription) bool {
	switch sub.kind {
	case protocol.KindReady:
		return unsubscribe(d, &d.ready, sub.id)
	case protocol.KindConnect:
		return unsubscribe(d, &d.connect, sub.id)
	case protocol.KindDisconnect:
		return unsubscribe(d, &d.disconnect, sub.id)
	case protocol.KindMessage:
		return unsubscribe(d, &d.message, sub.id)
	case protocol.KindError:
		return unsubscribe(d, &d.errors, sub.id)
	default:
		return false
	}
}

// Count returns the number of listeners registered for kind.
func (d *Dispatcher) Count(kind protocol.Kind) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	switch kind {
	case protocol.KindReady:
		return len(d.ready)
	case protocol.KindConnect:
		return len(d.connect)
	case protocol.KindDisconnect:
		return len(d.disconnect)
	case protocol.KindMessage:
		return len(d.message)
	case protocol.KindError:
		return len(d.errors)
	default:
		return 0
	}
}

// emit delivers msg to every listener of its kind. A panicking listener
// does not stop delivery to the rest; once they have all run, each panic is
// reported as an error event, or logged if it came from an error listener.
func (d *Dispatcher) emit(msg protocol.Message) {
	var panics []any
	switch m := msg.(type) {
	case protocol.ReadyMessage:
		panics = deliver(snapshot(d, &d.ready), m)
	case protocol.ConnectMessage:
		panics = deliver(snapshot(d, &d.connect), m)
	case protocol.DisconnectMessage:
		panics = deliver(snapshot(d, &d.disconnect), m)
	case protocol.IncomingMessage:
		panics = deliver(snapshot(d, &d.message), m)
	case protocol.ErrorMessage:
		panics = deliver(snapshot(d, &d.errors), m)
	default:
		d.logger.Warn("dropping event of unknown kind", "type", fmt.Sprintf("%T", msg))
		return
	}

	for _, p := range panics {
		if msg.Kind() == protocol.KindError {
			d.logger.Warn("error listener panicked", "panic", p)
			continue
		}
		d.emit(protocol.ErrorMessage{
			Error:   "Listener panicked",
			Details: fmt.Sprintf("%s listener: %v", msg.Kind(), p),
		})
	}
}

func subscribe[T any](d *Dispatcher, list *[]listener[T], kind protocol.Kind, fn func(T)) Subscription {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	*list = append(slices.Clip(*list), listener[T]{id: d.nextID, fn: fn})
	return Subscription{kind: kind, id: d.nextID}
}

func unsubscribe[T any](d *Dispatcher, list *[]listener[T], id uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	i := slices.IndexFunc(*list, func(l listener[T]) bool { return l.id == id })
	if i < 0 {
		return false
	}
	*list = slices.Concat((*list)[:i], (*list)[i+1:])
	return true
}

func snapshot[T any](d *Dispatcher, list *[]listener[T]) []listener[T] {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return *list
}

func deliver[T any](listeners []listener[T], msg T) []any {
	var panics []any
	for _, l := range listeners {
		if p := call(l.fn, msg); p != nil {
			panics = append(panics, p)
		}
	}
	return panics
}

func call[T any](fn func(T), msg T) (recovered any) {
	defer func() {
		recovered = recover()
	}()
	fn(msg)
	return nil
}
