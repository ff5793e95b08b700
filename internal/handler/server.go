// Package handler implements the HTTP handlers for the eRJ API.
// All handlers are methods on Server. They are split into domain-specific
// files (health.go, report.go, etc.) but share the same Server struct so they
// can access its dependencies. Routes wires them into a chi router.
package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/erj-report/internal/domain"
	"github.com/pkordes/erj-report/internal/service"
)

// ReportServicer defines the report operations the handlers depend on.
// Defining the interface here (in the consumer package) lets handler tests
// inject a mock without touching the database or service layer.
type ReportServicer interface {
	Create(ctx context.Context, kind domain.ReportKind) (domain.Report, error)
	Get(ctx context.Context, number string) (domain.Report, error)
	ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Report, int64, error)
	Import(ctx context.Context, r domain.Report) (domain.Report, error)
	TakeOver(ctx context.Context, trainNumber, date string) (domain.Report, error)
	UpdateGeneral(ctx context.Context, number string, g domain.General) (domain.Report, error)

	AddEntry(ctx context.Context, number, section string, body []byte) (any, error)
	UpdateEntry(ctx context.Context, number, section string, key uuid.UUID, body []byte) (any, error)
	DeleteEntry(ctx context.Context, number, section string, key uuid.UUID) error

	AddVehicle(ctx context.Context, number string, v domain.Vehicle) (domain.Vehicle, error)
	UpdateVehicle(ctx context.Context, number string, key uuid.UUID, v domain.Vehicle) (domain.Vehicle, error)
	DeleteVehicle(ctx context.Context, number string, key uuid.UUID) error
	ReorderVehicles(ctx context.Context, number string, keys []uuid.UUID) (domain.Report, error)
	UpdateManifestMeta(ctx context.Context, number string, meta domain.ManifestMeta) (domain.Report, error)
	Analyze(ctx context.Context, number string) (domain.Analysis, error)

	Export(ctx context.Context, number string, format domain.ExportFormat) (domain.Export, error)
}

// UserServicer defines the user administration operations.
type UserServicer interface {
	Create(ctx context.Context, u domain.User) (domain.User, error)
	Get(ctx context.Context, idOrEmail string) (domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, id string, u domain.User) (domain.User, error)
	Delete(ctx context.Context, id string) error
}

// PhonebookServicer defines the phonebook operations.
type PhonebookServicer interface {
	List(ctx context.Context) ([]domain.PhonebookEntry, error)
	Import(ctx context.Context, r io.Reader) ([]domain.PhonebookEntry, error)
	Refresh(ctx context.Context) ([]domain.PhonebookEntry, service.PhonebookSource, error)
}

// DiscountServicer defines the statutory discount table operations.
type DiscountServicer interface {
	List(ctx context.Context, query, typ string) ([]domain.Discount, error)
	Import(ctx context.Context, r io.Reader) ([]domain.Discount, error)
	Reset(ctx context.Context) ([]domain.Discount, error)
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server holds the dependencies of every handler.
type Server struct {
	reports   ReportServicer
	users     UserServicer
	phonebook PhonebookServicer
	discounts DiscountServicer
	db        Pinger
	log       *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
// Any servicer may be nil when only part of the API is needed (tests);
// db may be nil, in which case the health check does not probe the store.
func NewServer(reports ReportServicer, users UserServicer, phonebook PhonebookServicer, discounts DiscountServicer, db Pinger, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{reports: reports, users: users, phonebook: phonebook, discounts: discounts, db: db, log: logger}
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(nil, nil, nil, nil, nil, nil)
}

// Routes returns a chi router with every API endpoint registered.
// Cross-cutting middleware (request id, logging, CORS, body limit, identity)
// is applied by the caller.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Route("/reports", func(r chi.Router) {
		r.Get("/", s.ListReports)
		r.Post("/", s.CreateReport)
		r.Post("/import", s.ImportReport)
		r.Post("/takeover", s.TakeOverReport)

		r.Route("/{number}", func(r chi.Router) {
			r.Get("/", s.GetReport)
			r.Put("/general", s.UpdateGeneral)
			r.Get("/export", s.ExportReport)

			r.Post("/sections/{section}", s.AddEntry)
			r.Put("/sections/{section}/{key}", s.UpdateEntry)
			r.Delete("/sections/{section}/{key}", s.DeleteEntry)

			r.Post("/manifest/vehicles", s.AddVehicle)
			r.Put("/manifest/vehicles/{key}", s.UpdateVehicle)
			r.Delete("/manifest/vehicles/{key}", s.DeleteVehicle)
			r.Put("/manifest/order", s.ReorderVehicles)
			r.Put("/manifest/meta", s.UpdateManifestMeta)
			r.Post("/manifest/analysis", s.AnalyzeManifest)
		})
	})

	r.Route("/users", func(r chi.Router) {
		r.Get("/", s.ListUsers)
		r.Post("/", s.CreateUser)
		r.Get("/{key}", s.GetUser)
		r.Put("/{key}", s.UpdateUser)
		r.Delete("/{key}", s.DeleteUser)
	})

	r.Route("/phonebook", func(r chi.Router) {
		r.Get("/", s.ListPhonebook)
		r.Put("/", s.ImportPhonebook)
		r.Post("/refresh", s.RefreshPhonebook)
	})

	r.Route("/discounts", func(r chi.Router) {
		r.Get("/", s.ListDiscounts)
		r.Put("/", s.ImportDiscounts)
		r.Post("/reset", s.ResetDiscounts)
	})

	return r
}
