package checkout

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"motoshop.store/moto-web/internal/web/apiclient"
	"motoshop.store/moto-web/internal/web/session"
)

func snapshotWithStep(step int) *session.CheckoutSnapshot {
	return &session.CheckoutSnapshot{
		Step:            step,
		Flow:            string(FlowNewOrder),
		ShouldClearCart: true,
		OrderID:         "1001",
		OrderTotal:      202.15,
	}
}

type countingService struct {
	Service
	calls int
}

func (c *countingService) CreatePendingOrder(ctx context.Context, token, address string) (*PendingOrder, error) {
	c.calls++
	return c.Service.CreatePendingOrder(ctx, token, address)
}

func signedIn() (string, bool)  { return "token-1", true }
func signedOut() (string, bool) { return "", false }

func TestInitializeNewOrderStartsAtAddress(t *testing.T) {
	store := NewStore(NewStaticService(), signedIn, nil)
	store.Initialize("")

	st := store.State()
	assert.Equal(t, StepAddress, st.Step)
	assert.Equal(t, FlowNewOrder, st.Flow)
	assert.True(t, st.ShouldClearCart)
	assert.Empty(t, st.OrderID)
}

func TestInitializeExistingOrderResumesAtPayment(t *testing.T) {
	store := NewStore(NewStaticService(), signedIn, nil)
	store.Initialize("  1001  ")

	st := store.State()
	assert.Equal(t, StepPayment, st.Step)
	assert.Equal(t, FlowExistingOrder, st.Flow)
	assert.False(t, st.ShouldClearCart)
	assert.Equal(t, "1001", st.OrderID)
}

func TestGoToStepRejectsOutOfRange(t *testing.T) {
	store := NewStore(NewStaticService(), signedIn, nil)
	store.Initialize("")

	assert.False(t, store.GoToStep(0))
	assert.False(t, store.GoToStep(4))
	assert.Equal(t, StepAddress, store.State().Step)
}

func TestAddressStepUnreachableWhenResuming(t *testing.T) {
	store := NewStore(NewStaticService(), signedIn, nil)
	store.Initialize("1001")

	assert.False(t, store.GoToStep(StepAddress))
	assert.False(t, store.PrevStep())
	assert.Equal(t, StepPayment, store.State().Step)
}

func TestCreatePendingOrderRequiresSignIn(t *testing.T) {
	svc := &countingService{Service: NewStaticService()}
	store := NewStore(svc, signedOut, nil)
	store.Initialize("")

	res := store.CreatePendingOrder(context.Background(), "Calle 45 #12-34, Bogota")
	assert.False(t, res.Success)
	assert.Equal(t, apiclient.KindUnauthorized, res.Kind)
	assert.Equal(t, 0, svc.calls)
}

func TestCreatePendingOrderRejectsShortAddressLocally(t *testing.T) {
	svc := &countingService{Service: NewStaticService()}
	store := NewStore(svc, signedIn, nil)
	store.Initialize("")

	res := store.CreatePendingOrder(context.Background(), "  Calle 1  ")
	assert.False(t, res.Success)
	assert.Equal(t, 0, svc.calls, "validation failures must not reach the backend")
	assert.Equal(t, StepAddress, store.State().Step)
	assert.NotEmpty(t, store.State().Err)
}

func TestCreatePendingOrderCountsCharactersNotBytes(t *testing.T) {
	svc := &countingService{Service: NewStaticService()}
	store := NewStore(svc, signedIn, nil)
	store.Initialize("")

	// 9 characters but 10 bytes: the accented o is two bytes in UTF-8.
	res := store.CreatePendingOrder(context.Background(), "Bogotá #9")
	assert.False(t, res.Success)
	assert.Equal(t, 0, svc.calls)

	// 10 characters with the same accent is long enough.
	res = store.CreatePendingOrder(context.Background(), "Bogotá #90")
	assert.True(t, res.Success)
	assert.Equal(t, StepPayment, store.State().Step)
}

func TestCreatePendingOrderAdvancesToPayment(t *testing.T) {
	store := NewStore(NewStaticService(), signedIn, nil)
	store.Initialize("")

	res := store.CreatePendingOrder(context.Background(), "Calle 45 #12-34, Bogota")
	require.True(t, res.Success)
	require.NotEmpty(t, res.OrderID)

	st := store.State()
	assert.Equal(t, StepPayment, st.Step)
	assert.Equal(t, res.OrderID, st.OrderID)
	assert.Equal(t, 202.15, st.OrderTotal)
	assert.Equal(t, "Calle 45 #12-34, Bogota", st.ShippingAddress)
	assert.False(t, st.Loading)
	assert.Empty(t, st.Err)
}

func TestFetchOrderInfoLoadsResumedOrder(t *testing.T) {
	svc := NewStaticService()
	seed := NewStore(svc, signedIn, nil)
	seed.Initialize("")
	created := seed.CreatePendingOrder(context.Background(), "Carrera 7 #85-20, Bogota")
	require.True(t, created.Success)

	store := NewStore(svc, signedIn, nil)
	store.Initialize(created.OrderID)
	res := store.FetchOrderInfo(context.Background())
	require.True(t, res.Success)

	st := store.State()
	assert.Equal(t, 202.15, st.OrderTotal)
	assert.Equal(t, "Carrera 7 #85-20, Bogota", st.ShippingAddress)
}

func TestFetchOrderInfoMissingOrder(t *testing.T) {
	store := NewStore(NewStaticService(), signedIn, nil)
	store.Initialize("9999")

	res := store.FetchOrderInfo(context.Background())
	assert.False(t, res.Success)
	assert.Equal(t, apiclient.KindNotFound, res.Kind)
	assert.NotEmpty(t, store.State().Err)
}

func TestSelectPaymentRejectsInsufficientBalance(t *testing.T) {
	store := NewStore(NewStaticService(), signedIn, nil)
	store.Initialize("")
	require.True(t, store.CreatePendingOrder(context.Background(), "Calle 45 #12-34, Bogota").Success)

	res := store.SelectPayment(PaymentAccount{AccountID: "902", AccountType: "CORRIENTE", Balance: 3.50})
	assert.False(t, res.Success)
	assert.Empty(t, store.State().SelectedAccountID)
}

func TestConfirmPaymentRequiresSelectedAccount(t *testing.T) {
	store := NewStore(NewStaticService(), signedIn, nil)
	store.Initialize("")
	require.True(t, store.CreatePendingOrder(context.Background(), "Calle 45 #12-34, Bogota").Success)

	res := store.ConfirmPayment(context.Background())
	assert.False(t, res.Success)
	assert.Equal(t, StepPayment, store.State().Step)
}

func TestConfirmPaymentReachesConfirmation(t *testing.T) {
	svc := NewStaticService()
	cleared := false
	svc.ClearCart = func() { cleared = true }
	store := NewStore(svc, signedIn, nil)
	store.Initialize("")
	require.True(t, store.CreatePendingOrder(context.Background(), "Calle 45 #12-34, Bogota").Success)

	require.True(t, store.SelectPayment(PaymentAccount{AccountID: "901", AccountType: "AHORROS", Balance: 5000}).Success)

	res := store.ConfirmPayment(context.Background())
	require.True(t, res.Success)

	st := store.State()
	assert.Equal(t, StepConfirmation, st.Step)
	assert.True(t, st.Completed())
	assert.Equal(t, "901", svc.LastPayment.AccountID)
	assert.True(t, svc.LastPayment.ClearCart)
	assert.True(t, cleared, "a new-order payment empties the server cart")
	assert.Equal(t, "CONFIRMADO", svc.Orders[st.OrderID].Status)
}

func TestResumedOrderPaymentDoesNotClearCart(t *testing.T) {
	svc := NewStaticService()
	seed := NewStore(svc, signedIn, nil)
	seed.Initialize("")
	created := seed.CreatePendingOrder(context.Background(), "Carrera 7 #85-20, Bogota")
	require.True(t, created.Success)

	store := NewStore(svc, signedIn, nil)
	store.Initialize(created.OrderID)
	require.True(t, store.FetchOrderInfo(context.Background()).Success)
	require.True(t, store.SelectPayment(PaymentAccount{AccountID: "901", AccountType: "AHORROS", Balance: 5000}).Success)
	require.True(t, store.ConfirmPayment(context.Background()).Success)

	assert.False(t, svc.LastPayment.ClearCart)
	assert.False(t, store.State().ShouldClearCart)
}

func TestSnapshotRoundTrip(t *testing.T) {
	store := NewStore(NewStaticService(), signedIn, nil)
	store.Initialize("")
	require.True(t, store.CreatePendingOrder(context.Background(), "Calle 45 #12-34, Bogota").Success)
	require.True(t, store.SelectPayment(PaymentAccount{AccountID: "901", AccountType: "AHORROS", Balance: 5000}).Success)

	snap := store.Snapshot()
	require.NotNil(t, snap)

	restored := NewStore(NewStaticService(), signedIn, nil)
	restored.Restore(snap)

	assert.Equal(t, store.State(), restored.State())
}

func TestSnapshotNilForUnstartedWizard(t *testing.T) {
	store := NewStore(NewStaticService(), signedIn, nil)
	assert.Nil(t, store.Snapshot())
}

func TestRestoreIgnoresBadSnapshots(t *testing.T) {
	store := NewStore(NewStaticService(), signedIn, nil)
	store.Restore(nil)
	assert.Equal(t, State{}, store.State())

	store.Restore(snapshotWithStep(0))
	assert.Equal(t, State{}, store.State())

	store.Restore(snapshotWithStep(5))
	assert.Equal(t, State{}, store.State())
}

func TestRestoreNormalizesUnknownFlow(t *testing.T) {
	snap := snapshotWithStep(StepPayment)
	snap.Flow = "SOMETHING_ELSE"

	store := NewStore(NewStaticService(), signedIn, nil)
	store.Restore(snap)
	assert.Equal(t, FlowNewOrder, store.State().Flow)
}

func TestCancelOrderResetsWizard(t *testing.T) {
	svc := NewStaticService()
	store := NewStore(svc, signedIn, nil)
	store.Initialize("")
	created := store.CreatePendingOrder(context.Background(), "Calle 45 #12-34, Bogota")
	require.True(t, created.Success)

	res := store.CancelOrder(context.Background())
	require.True(t, res.Success)
	assert.Equal(t, State{}, store.State())
	assert.NotContains(t, svc.Orders, created.OrderID)
}
