package testutil

import (
	"context"
	"sync"

	ierr "github.com/creditledger/creditledger/internal/errors"
	"github.com/creditledger/creditledger/internal/integration/checkout"
)

// StubGateway implements checkout.Client from a fixed session table.
type StubGateway struct {
	mu       sync.Mutex
	sessions map[string]*checkout.Session

	// Err, when set, is returned by every GetSession call.
	Err error
}

func NewStubGateway() *StubGateway {
	return &StubGateway{
		sessions: make(map[string]*checkout.Session),
	}
}

// AddSession registers a session under its Ref.
func (g *StubGateway) AddSession(sess *checkout.Session) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sessions[sess.Ref] = sess
}

func (g *StubGateway) GetSession(ctx context.Context, paymentRef string) (*checkout.Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.Err != nil {
		return nil, g.Err
	}

	sess, ok := g.sessions[paymentRef]
	if !ok {
		return nil, ierr.NewError("checkout session not found").
			WithReportableDetails(map[string]interface{}{"payment_ref": paymentRef}).
			Mark(ierr.ErrNotFound)
	}
	copied := *sess
	return &copied, nil
}

func (g *StubGateway) VerifySignedEvent(payload []byte, signature string) (string, error) {
	if signature == "" {
		return "", ierr.NewError("missing signature").
			Mark(ierr.ErrPermissionDenied)
	}
	return string(payload), nil
}
