package signals

import (
	"github.com/krew-solutions/quantum-go/quantum/disposable"
)

type Observer[E any] func(E)

// Signal dispatches events to attached observers in attachment order.
type Signal[E any] interface {
	Attach(observer Observer[E], observerID ...any) disposable.Disposable
	Detach(observer Observer[E], observerID ...any)
	Notify(event E)
}
