package cli

import (
	"fmt"
	"io"
	"sync"

	"github.com/dmitrijs2005/bidmatch/internal/client/session"
)

// Navigator prints navigation signals. It is safe for use from the refresh
// timer goroutine.
type Navigator struct {
	mu sync.Mutex
	w  io.Writer
}

func NewNavigator(w io.Writer) *Navigator {
	return &Navigator{w: w}
}

func (n *Navigator) Navigate(actor session.Actor, dest session.Destination) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintf(n.w, "[%s] -> %s\n", actor, dest.Path(actor))
}
