// Package relations implements the idempotent toggle applied to every
// many-to-many relation in the system: likes of any kind and channel
// subscriptions. A toggle creates the relation when it is absent and removes
// it when present.
package relations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cliptube/backend/internal/repositories"
)

// ErrSelfRelation indicates a toggle where subject and target are the same
// user, which subscriptions forbid.
var ErrSelfRelation = errors.New("cannot subscribe to self")

// Outcome reports which side of the toggle ran.
type Outcome string

const (
	OutcomeCreated Outcome = "created"
	OutcomeRemoved Outcome = "removed"
)

// Binding is one relation record: a subject bound to a target.
type Binding struct {
	ID        string
	SubjectID string
	TargetID  string
	CreatedAt time.Time
}

// Store persists bindings of a single relation kind. Find and Delete report
// repositories.ErrNotFound for absent tuples; Create reports
// repositories.ErrConflict when the uniqueness constraint rejects a duplicate.
type Store interface {
	Find(ctx context.Context, subjectID, targetID string) (Binding, error)
	Create(ctx context.Context, binding Binding) error
	Delete(ctx context.Context, subjectID, targetID string) error
}

// TargetChecker verifies that the entity a relation points at exists.
type TargetChecker interface {
	Exists(ctx context.Context, targetID string) (bool, error)
}

// Result is the outcome of a toggle. Binding is populated only when a
// relation was created.
type Result struct {
	Outcome Outcome
	Binding Binding
}

// Engine applies the toggle to one relation kind.
type Engine struct {
	store      Store
	targets    TargetChecker
	forbidSelf bool
	nowFunc    func() time.Time
}

// NewEngine constructs a toggle engine over the provided store. The target
// checker guards creation: toggling onto a missing target fails with
// repositories.ErrNotFound. When forbidSelf is set, toggles where subject and
// target match fail with ErrSelfRelation.
func NewEngine(store Store, targets TargetChecker, forbidSelf bool) *Engine {
	if store == nil || targets == nil {
		panic("relations: store and target checker must not be nil")
	}
	return &Engine{
		store:      store,
		targets:    targets,
		forbidSelf: forbidSelf,
		nowFunc:    func() time.Time { return time.Now().UTC() },
	}
}

// WithNowFunc overrides the time source. Used by tests.
func (e *Engine) WithNowFunc(now func() time.Time) *Engine {
	e.nowFunc = now
	return e
}

// Toggle creates the (subject, target) relation if it does not exist and
// removes it if it does.
//
// The lookup and the write are separate storage round-trips, so two
// concurrent toggles for the same tuple can both observe "absent". The
// store's uniqueness constraint arbitrates: the losing insert surfaces
// ErrConflict, which the engine resolves by deleting the record the winner
// just created and reporting a removal. The pair of racing calls therefore
// still lands on one created and one removed, and the final state equals the
// initial state.
func (e *Engine) Toggle(ctx context.Context, subjectID, targetID string) (Result, error) {
	if subjectID == "" || targetID == "" {
		return Result{}, errors.New("relations: subject and target ids must be provided")
	}

	_, err := e.store.Find(ctx, subjectID, targetID)
	switch {
	case err == nil:
		return e.remove(ctx, subjectID, targetID)
	case errors.Is(err, repositories.ErrNotFound):
		return e.create(ctx, subjectID, targetID)
	default:
		return Result{}, fmt.Errorf("find relation: %w", err)
	}
}

func (e *Engine) create(ctx context.Context, subjectID, targetID string) (Result, error) {
	if e.forbidSelf && subjectID == targetID {
		return Result{}, ErrSelfRelation
	}

	exists, err := e.targets.Exists(ctx, targetID)
	if err != nil {
		return Result{}, fmt.Errorf("check target: %w", err)
	}
	if !exists {
		return Result{}, repositories.ErrNotFound
	}

	binding := Binding{
		ID:        uuid.NewString(),
		SubjectID: subjectID,
		TargetID:  targetID,
		CreatedAt: e.nowFunc(),
	}

	err = e.store.Create(ctx, binding)
	switch {
	case err == nil:
		return Result{Outcome: OutcomeCreated, Binding: binding}, nil
	case errors.Is(err, repositories.ErrConflict):
		// Lost the race against a concurrent create; resolve as the removal
		// this toggle would have performed had it observed the record.
		return e.remove(ctx, subjectID, targetID)
	case errors.Is(err, repositories.ErrSelfSubscription):
		return Result{}, ErrSelfRelation
	default:
		return Result{}, fmt.Errorf("create relation: %w", err)
	}
}

func (e *Engine) remove(ctx context.Context, subjectID, targetID string) (Result, error) {
	err := e.store.Delete(ctx, subjectID, targetID)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return Result{}, fmt.Errorf("delete relation: %w", err)
	}
	// A concurrent toggle may have deleted the record first; either way the
	// relation is gone, which is what this side of the toggle promises.
	return Result{Outcome: OutcomeRemoved}, nil
}
