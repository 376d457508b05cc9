package main

import (
	"net/http"

	"github.com/bmizerany/pat"
	"github.com/justinas/alice"
)

func (app *application) routes() http.Handler {
	standardMiddleware := alice.New(app.recoverPanic, app.logRequest, secureHeaders, makeResponseJSON)
	authMiddleware := standardMiddleware.Append(app.JWTMiddlewareWithRole("user"))
	adminAuthMiddleware := standardMiddleware.Append(app.JWTMiddlewareWithRole("admin"))
	paymentMiddleware := authMiddleware.Append(app.limitPayments)

	mux := pat.New()

	// Checkout & payments
	mux.Post("/api/checkout", paymentMiddleware.ThenFunc(app.checkoutHandler.Checkout))
	mux.Post("/api/payments/create-payment-intent", paymentMiddleware.ThenFunc(app.checkoutHandler.CreatePaymentIntent))
	mux.Post("/api/payments/verify-payment", paymentMiddleware.ThenFunc(app.paymentHandler.VerifyPayment))

	// Invoices
	mux.Post("/api/invoices/generate-invoice", authMiddleware.ThenFunc(app.invoiceHandler.GenerateInvoice))
	mux.Post("/api/invoices/:id/send", authMiddleware.ThenFunc(app.invoiceHandler.SendInvoice))
	mux.Get("/api/invoices/:id", authMiddleware.ThenFunc(app.invoiceHandler.GetInvoice))

	// Packages
	mux.Get("/api/packages", authMiddleware.ThenFunc(app.packageHandler.ListPackages))
	mux.Get("/api/packages/:id", authMiddleware.ThenFunc(app.packageHandler.GetPackage))
	mux.Post("/api/packages", adminAuthMiddleware.ThenFunc(app.packageHandler.CreatePackage))
	mux.Put("/api/packages/:id", adminAuthMiddleware.ThenFunc(app.packageHandler.UpdatePackage))
	mux.Del("/api/packages/:id", adminAuthMiddleware.ThenFunc(app.packageHandler.DeletePackage))

	// Orders
	mux.Get("/api/orders", authMiddleware.ThenFunc(app.orderHandler.ListMyOrders))
	mux.Get("/api/orders/:id", authMiddleware.ThenFunc(app.orderHandler.GetOrder))

	// Live notifications
	mux.Get("/ws/notifications", http.HandlerFunc(app.NotificationsHandler))

	mux.NotFound = standardMiddleware.ThenFunc(func(w http.ResponseWriter, r *http.Request) {
		app.notFound(w)
	})

	return mux
}
