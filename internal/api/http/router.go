package http

import (
	"net/http"
	"time"

	"boxrental-backend/internal/metrics"
	"boxrental-backend/internal/security"
	"boxrental-backend/internal/service"

	"github.com/go-chi/httprate"
	"github.com/gorilla/mux"
)

// Services are the application services the router exposes.
type Services struct {
	Rentals  service.RentalService
	Boxes    service.BoxService
	Clients  service.ClientService
	Payments service.PaymentService
	Users    service.UserService
	Logs     service.AuditService
}

// NewRouter wires every route behind request-id, metrics and auth
// middleware. loginPerMinute caps login attempts per client IP; zero
// disables the limit.
func NewRouter(svcs Services, gate *security.Gate, loginPerMinute int) *mux.Router {
	router := mux.NewRouter()
	router.Use(requestID, instrument, authenticate(gate))

	rentals := NewRentalHandler(svcs.Rentals)
	router.HandleFunc("/rentals", rentals.ListRentals).Methods(http.MethodGet)
	router.HandleFunc("/rentals", rentals.OpenRental).Methods(http.MethodPost)
	router.HandleFunc("/rentals/close/{id}", rentals.CloseRental).Methods(http.MethodPut)
	router.HandleFunc("/rentals/{id}", rentals.DeleteRental).Methods(http.MethodDelete)

	boxes := NewBoxHandler(svcs.Boxes)
	router.HandleFunc("/boxes", boxes.ListBoxes).Methods(http.MethodGet)
	router.HandleFunc("/boxes", boxes.CreateBox).Methods(http.MethodPost)
	router.HandleFunc("/boxes/{id}", boxes.UpdateBox).Methods(http.MethodPut)
	router.HandleFunc("/boxes/{id}", boxes.DeleteBox).Methods(http.MethodDelete)

	clients := NewClientHandler(svcs.Clients)
	router.HandleFunc("/clients", clients.ListClients).Methods(http.MethodGet)
	router.HandleFunc("/clients", clients.CreateClient).Methods(http.MethodPost)
	router.HandleFunc("/clients/email/{id}", clients.SendRentalReport).Methods(http.MethodGet)
	router.HandleFunc("/clients/{id}", clients.UpdateClient).Methods(http.MethodPut)
	router.HandleFunc("/clients/{id}", clients.DeleteClient).Methods(http.MethodDelete)

	payments := NewPaymentHandler(svcs.Payments)
	router.HandleFunc("/payments", payments.ListPayments).Methods(http.MethodGet)
	router.HandleFunc("/payments", payments.CreatePayment).Methods(http.MethodPost)
	router.HandleFunc("/payments/{id}", payments.DeletePayment).Methods(http.MethodDelete)

	users := NewUserHandler(svcs.Users)
	var login http.Handler = http.HandlerFunc(users.Login)
	if loginPerMinute > 0 {
		login = httprate.LimitByIP(loginPerMinute, time.Minute)(login)
	}
	router.Handle("/users/login", login).Methods(http.MethodPost)
	router.HandleFunc("/users/change-password", users.ChangePassword).Methods(http.MethodPost)
	router.HandleFunc("/users", users.ListUsers).Methods(http.MethodGet)
	router.HandleFunc("/users", users.CreateUser).Methods(http.MethodPost)
	router.HandleFunc("/users/{id}/promote", users.PromoteUser).Methods(http.MethodPatch)

	logs := NewLogHandler(svcs.Logs)
	router.HandleFunc("/logs", logs.ListLogs).Methods(http.MethodGet)

	router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	return router
}
