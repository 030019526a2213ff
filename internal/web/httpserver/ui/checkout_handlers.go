package ui

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"motoshop.store/moto-web/internal/web/apiclient"
	"motoshop.store/moto-web/internal/web/cart"
	"motoshop.store/moto-web/internal/web/checkout"
)

type checkoutData struct {
	Wizard   checkout.State
	Cart     cart.State
	Address  string
	Accounts *checkout.AccountCheck
}

// CheckoutStart begins (or resumes) the checkout wizard. A fresh visit with
// an empty cart is bounced back to the cart page.
func (h *Handlers) CheckoutStart(w http.ResponseWriter, r *http.Request) {
	st := h.stores(r)

	if st.checkout.State().Step != 0 {
		h.redirectToStep(w, r, st)
		return
	}

	st.cart.Load(r.Context(), false)
	if st.cart.State().IsEmpty() {
		st.sess.AddFlash("warning", "your cart is empty")
		h.redirect(w, r, "/cart")
		return
	}

	st.checkout.Initialize("")
	st.persistCheckout()
	h.renderAddress(w, r, st, "")
}

// CheckoutResume re-enters the wizard to pay an existing pending order. The
// address step does not exist on this path.
func (h *Handlers) CheckoutResume(w http.ResponseWriter, r *http.Request) {
	st := h.stores(r)

	orderID := strings.TrimSpace(chi.URLParam(r, "orderID"))
	if orderID == "" {
		http.NotFound(w, r)
		return
	}

	st.checkout.Initialize(orderID)
	result := st.checkout.FetchOrderInfo(r.Context())
	if !result.Success {
		if result.Kind == apiclient.KindUnauthorized {
			h.expireSession(w, r, st)
			return
		}
		st.checkout.Reset()
		st.persistCheckout()
		st.sess.AddFlash("error", result.Error)
		h.redirect(w, r, "/profile")
		return
	}

	st.persistCheckout()
	h.redirect(w, r, "/checkout/payment")
}

// CheckoutAddress handles the shipping address submission and creates the
// pending order.
func (h *Handlers) CheckoutAddress(w http.ResponseWriter, r *http.Request) {
	st := h.stores(r)

	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	address := r.PostFormValue("address")

	result := st.checkout.CreatePendingOrder(r.Context(), address)
	st.persistCheckout()
	if !result.Success {
		if result.Kind == apiclient.KindUnauthorized {
			h.expireSession(w, r, st)
			return
		}
		h.renderAddress(w, r, st, address)
		return
	}

	h.redirect(w, r, "/checkout/payment")
}

// CheckoutPayment renders the payment step with the customer's eligible
// accounts.
func (h *Handlers) CheckoutPayment(w http.ResponseWriter, r *http.Request) {
	st := h.stores(r)

	wizard := st.checkout.State()
	if wizard.Step < checkout.StepPayment || wizard.OrderID == "" {
		h.redirect(w, r, "/checkout")
		return
	}

	result := st.checkout.VerifyAccounts(r.Context())
	if result.Kind == apiclient.KindUnauthorized {
		h.expireSession(w, r, st)
		return
	}
	wizard = st.checkout.State()

	data := checkoutData{Wizard: wizard, Accounts: wizard.Accounts}
	pageData := h.newPage(r, st, "Payment", data)
	if !result.Success {
		pageData.Error = result.Error
	}
	h.render.Page(w, "checkout_payment", pageData)
}

// CheckoutPay confirms the payment with the chosen account and completes the
// wizard.
func (h *Handlers) CheckoutPay(w http.ResponseWriter, r *http.Request) {
	st := h.stores(r)

	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	wizard := st.checkout.State()
	if wizard.Step != checkout.StepPayment || wizard.OrderID == "" {
		h.redirect(w, r, "/checkout")
		return
	}

	account := checkout.PaymentAccount{
		AccountID:   strings.TrimSpace(r.PostFormValue("accountId")),
		AccountType: strings.TrimSpace(r.PostFormValue("accountType")),
	}
	if wizard.Accounts != nil {
		for _, candidate := range wizard.Accounts.WithBalance {
			if candidate.AccountID == account.AccountID {
				account = candidate
				break
			}
		}
	} else {
		// Accounts were loaded on the GET; re-verify so the balance check
		// runs against fresh data.
		st.checkout.VerifyAccounts(r.Context())
		if loaded := st.checkout.State().Accounts; loaded != nil {
			for _, candidate := range loaded.WithBalance {
				if candidate.AccountID == account.AccountID {
					account = candidate
					break
				}
			}
		}
	}

	if result := st.checkout.SelectPayment(account); !result.Success {
		st.persistCheckout()
		st.sess.AddFlash("error", result.Error)
		h.redirect(w, r, "/checkout/payment")
		return
	}

	result := st.checkout.ConfirmPayment(r.Context())
	st.persistCheckout()
	if !result.Success {
		if result.Kind == apiclient.KindUnauthorized {
			h.expireSession(w, r, st)
			return
		}
		st.sess.AddFlash("error", result.Error)
		h.redirect(w, r, "/checkout/payment")
		return
	}

	if st.checkout.State().ShouldClearCart {
		// The backend clears the cart as part of the payment; reload to
		// pick up the emptied server state instead of assuming it.
		st.cart.Load(r.Context(), false)
	}

	h.redirect(w, r, "/checkout/confirmation")
}

// CheckoutConfirmation renders the receipt step.
func (h *Handlers) CheckoutConfirmation(w http.ResponseWriter, r *http.Request) {
	st := h.stores(r)

	wizard := st.checkout.State()
	if wizard.Step != checkout.StepConfirmation {
		h.redirect(w, r, "/checkout")
		return
	}

	data := checkoutData{Wizard: wizard}
	h.render.Page(w, "checkout_confirmation", h.newPage(r, st, "Order confirmed", data))
}

// CheckoutBack steps the wizard backwards where the flow allows it.
func (h *Handlers) CheckoutBack(w http.ResponseWriter, r *http.Request) {
	st := h.stores(r)
	st.checkout.PrevStep()
	st.persistCheckout()
	h.redirectToStep(w, r, st)
}

// CheckoutCancel abandons the wizard and the pending order.
func (h *Handlers) CheckoutCancel(w http.ResponseWriter, r *http.Request) {
	st := h.stores(r)
	st.checkout.CancelOrder(r.Context())
	st.persistCheckout()
	st.sess.AddFlash("warning", "checkout cancelled")
	h.redirect(w, r, "/cart")
}

func (h *Handlers) renderAddress(w http.ResponseWriter, r *http.Request, st *stores, address string) {
	wizard := st.checkout.State()
	data := checkoutData{Wizard: wizard, Cart: st.cart.State(), Address: address}
	pageData := h.newPage(r, st, "Shipping address", data)
	pageData.Error = wizard.Err
	h.render.Page(w, "checkout_address", pageData)
}

func (h *Handlers) redirectToStep(w http.ResponseWriter, r *http.Request, st *stores) {
	switch st.checkout.State().Step {
	case checkout.StepPayment:
		h.redirect(w, r, "/checkout/payment")
	case checkout.StepConfirmation:
		h.redirect(w, r, "/checkout/confirmation")
	default:
		st.cart.Load(r.Context(), false)
		h.renderAddress(w, r, st, st.checkout.State().ShippingAddress)
	}
}
