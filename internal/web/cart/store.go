package cart

import (
	"context"
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"motoshop.store/moto-web/internal/web/apiclient"
)

var nowFunc = time.Now

// State is the cart store's full state. Total and ItemCount are derived from
// Items by the reducer on every replacement; nothing else writes them.
type State struct {
	Items       []Item
	Total       float64
	ItemCount   int
	Loading     bool
	Err         string
	LastUpdated time.Time
}

// IsEmpty reports whether the cart has no lines.
func (s State) IsEmpty() bool {
	return len(s.Items) == 0
}

// Result reports the outcome of a store operation to the caller.
type Result struct {
	Success bool
	Error   string
	Kind    apiclient.Kind
	Message string
}

type action interface{ isAction() }

type setLoading struct{ loading bool }
type setError struct{ message string }
type loadSuccess struct {
	items []Item
	at    time.Time
}
type resetCart struct{}

func (setLoading) isAction()  {}
func (setError) isAction()    {}
func (loadSuccess) isAction() {}
func (resetCart) isAction()   {}

// reduce is the pure transition function from (state, action) to state.
func reduce(state State, act action) State {
	switch a := act.(type) {
	case setLoading:
		state.Loading = a.loading
		if a.loading {
			state.Err = ""
		}
		return state
	case setError:
		state.Loading = false
		state.Err = a.message
		return state
	case loadSuccess:
		items := NormalizeItems(append([]Item(nil), a.items...))
		state.Items = items
		state.Total = Total(items)
		state.ItemCount = ItemCount(items)
		state.Loading = false
		state.Err = ""
		state.LastUpdated = a.at
		return state
	case resetCart:
		return State{}
	default:
		return state
	}
}

// Store owns the cart state. Every successful mutation reloads the cart
// wholesale from the server so the client never drifts from server-computed
// totals and stock. Overlapping mutations are last-write-wins.
type Store struct {
	state  State
	svc    Service
	mirror Mirror
	authed func() (token string, ok bool)
	log    *zap.Logger
}

// NewStore constructs a cart store. authed reports the current bearer token,
// or ok=false when the customer is signed out.
func NewStore(svc Service, mirror Mirror, authed func() (string, bool), log *zap.Logger) *Store {
	if mirror == nil {
		mirror = NopMirror{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{svc: svc, mirror: mirror, authed: authed, log: log}
}

func (s *Store) dispatch(act action) {
	s.state = reduce(s.state, act)
}

// State returns a copy of the current state.
func (s *Store) State() State {
	return s.state
}

// Load fetches the server cart. Signed-out customers reset to empty and the
// mirror is cleared. On failure the mirror contents are served instead, and
// the error is surfaced only when the load was user-visible.
func (s *Store) Load(ctx context.Context, visible bool) Result {
	token, ok := s.authed()
	if !ok {
		s.dispatch(resetCart{})
		s.mirror.Clear()
		return Result{Success: true}
	}

	if visible {
		s.dispatch(setLoading{true})
	}

	items, err := s.svc.Get(ctx, token)
	if err != nil {
		s.log.Warn("cart: server load failed, falling back to mirror", zap.Error(err))
		s.dispatch(loadSuccess{items: s.mirror.Read(), at: nowFunc()})
		if visible {
			message := apiclient.MessageOf(err, "could not load the cart")
			s.dispatch(setError{message: message})
			return Result{Success: false, Error: message, Kind: apiclient.KindOf(err)}
		}
		return Result{Success: true}
	}

	s.dispatch(loadSuccess{items: items, at: nowFunc()})
	s.mirror.Write(s.state.Items, newOperationID(), s.state.LastUpdated)
	return Result{Success: true}
}

// AddItem adds a product to the cart. Signed-out customers are rejected
// before any network call. Success reloads the cart silently.
func (s *Store) AddItem(ctx context.Context, productID int64, quantity int) Result {
	token, ok := s.authed()
	if !ok {
		return Result{Success: false, Error: "sign in to add products to the cart", Kind: apiclient.KindUnauthorized}
	}
	if quantity <= 0 {
		quantity = 1
	}

	s.dispatch(setLoading{true})

	message, err := s.svc.Add(ctx, token, productID, quantity)
	if err != nil {
		return s.mutationFailed(err, "could not add the product to the cart")
	}

	s.Load(ctx, false)
	return Result{Success: true, Message: message}
}

// UpdateQuantity changes a line's quantity. Quantity zero or below behaves
// exactly like RemoveItem.
func (s *Store) UpdateQuantity(ctx context.Context, productID int64, quantity int) Result {
	if quantity <= 0 {
		return s.RemoveItem(ctx, productID)
	}

	token, ok := s.authed()
	if !ok {
		return Result{Success: false, Kind: apiclient.KindUnauthorized}
	}

	s.dispatch(setLoading{true})

	message, err := s.svc.UpdateQuantity(ctx, token, productID, quantity)
	if err != nil {
		return s.mutationFailed(err, "could not update the quantity")
	}

	s.Load(ctx, false)
	return Result{Success: true, Message: message}
}

// RemoveItem drops a line from the cart.
func (s *Store) RemoveItem(ctx context.Context, productID int64) Result {
	token, ok := s.authed()
	if !ok {
		return Result{Success: false, Kind: apiclient.KindUnauthorized}
	}

	s.dispatch(setLoading{true})

	message, err := s.svc.Remove(ctx, token, productID)
	if err != nil {
		return s.mutationFailed(err, "could not remove the product")
	}

	s.Load(ctx, false)
	return Result{Success: true, Message: message}
}

// Clear empties both the server cart and the mirror.
func (s *Store) Clear(ctx context.Context) Result {
	token, ok := s.authed()
	if !ok {
		return Result{Success: false, Kind: apiclient.KindUnauthorized}
	}

	s.dispatch(setLoading{true})

	message, err := s.svc.Clear(ctx, token)
	if err != nil {
		return s.mutationFailed(err, "could not clear the cart")
	}

	s.dispatch(loadSuccess{items: nil, at: nowFunc()})
	s.mirror.Clear()
	return Result{Success: true, Message: message}
}

// Reset drops all cart state, e.g. after logout.
func (s *Store) Reset() {
	s.dispatch(resetCart{})
}

// Restore seeds the store from previously loaded items without touching the
// network, used when rendering from a warm session.
func (s *Store) Restore(items []Item, at time.Time) {
	if at.IsZero() {
		at = nowFunc()
	}
	s.dispatch(loadSuccess{items: items, at: at})
}

func (s *Store) mutationFailed(err error, fallback string) Result {
	kind := apiclient.KindOf(err)
	message := apiclient.MessageOf(err, fallback)
	if kind == apiclient.KindInsufficientStock {
		message = "not enough stock available"
	}
	s.dispatch(setError{message: message})
	return Result{Success: false, Error: message, Kind: kind}
}

// newOperationID stamps mirror writes with a sortable id, handy when tracing
// which reload produced a given backup.
func newOperationID() string {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(nowFunc().UnixNano())), 0)
	return ulid.MustNew(ulid.Timestamp(nowFunc()), entropy).String()
}
