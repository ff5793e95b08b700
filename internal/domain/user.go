package domain

import "context"

// Roles recognised by the authorization policy.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User statuses.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// User is a crew member known to the system. ID is the employee number and
// the natural key; Email is an alternate lookup key.
// Credentials are not stored here.
type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Depot  string `json:"depot"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Status string `json:"status"`
}

// PhonebookEntry is one line of the operational phonebook.
type PhonebookEntry struct {
	Name   string `json:"name"`
	Role   string `json:"role"`
	Number string `json:"number"`
	Hours  string `json:"hours"`
}

// Actor is the authenticated caller of an operation, as asserted by the
// upstream authentication proxy.
type Actor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// Person returns the actor as a report Person.
func (a Actor) Person() Person {
	return Person{Name: a.Name, ID: a.ID}
}

type actorKey struct{}

// WithActor returns a copy of ctx carrying the given actor.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFrom returns the actor stored in ctx, or the zero Actor.
func ActorFrom(ctx context.Context) Actor {
	a, _ := ctx.Value(actorKey{}).(Actor)
	return a
}

// Actions checked by the authorization policy.
const (
	ActionReportRead     = "report.read"
	ActionReportCreate   = "report.create"
	ActionReportWrite    = "report.write"
	ActionReportTakeOver = "report.takeover"
	ActionReportImport   = "report.import"
	ActionUserRead       = "user.read"
	ActionUserManage     = "user.manage"
	ActionPhonebookRead  = "phonebook.read"
	ActionPhonebookEdit  = "phonebook.manage"
	ActionDiscountRead   = "discount.read"
	ActionDiscountEdit   = "discount.manage"
)

// AccessRequest is the question put to the authorization policy: may Actor
// perform Action, optionally on a specific report or user.
type AccessRequest struct {
	Action string
	Actor  Actor
	Report *Report
	UserID string
}
