package dialog

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/rs/zerolog"

	pkgerrors "github.com/Devensh22345/account-manage/pkg/errors"
)

const releaseTimeout = 10 * time.Second

// ErrDialogActive is returned by Start when another kind of dialog is open.
var ErrDialogActive = pkgerrors.NewConflictError("Another operation is in progress. Finish it or send /cancel first.")

// StepFunc handles input for one step. Returning a *pkgerrors.ValidationError
// keeps the step and shows the message, a *pkgerrors.PermissionError ends the
// dialog with its message, and any other error ends it with GenericFailure.
type StepFunc func(ctx context.Context, st *State, in Input) (Result, error)

// Flow is the step table of one dialog kind.
type Flow struct {
	Kind  Kind
	First Step
	Steps map[Step]StepFunc
	// Intro builds the prompt shown when the dialog starts.
	Intro func(st *State) Reply
}

// Observer receives dialog lifecycle events.
type Observer interface {
	DialogStarted(kind string)
	DialogFinished(kind, outcome string)
	ActiveDialogs(n int)
}

type nopObserver struct{}

func (nopObserver) DialogStarted(string)          {}
func (nopObserver) DialogFinished(string, string) {}
func (nopObserver) ActiveDialogs(int)             {}

// Engine routes user input through registered flows. Input for a single user
// is processed strictly in order; different users run concurrently.
type Engine struct {
	store    *Store
	flows    map[Kind]Flow
	observer Observer
	now      func() time.Time
	logger   zerolog.Logger

	locksMu sync.Mutex
	locks   map[int64]*userLock

	stopJanitor chan struct{}
	janitorDone chan struct{}
}

func NewEngine(store *Store, observer Observer, logger zerolog.Logger) *Engine {
	if observer == nil {
		observer = nopObserver{}
	}
	return &Engine{
		store:    store,
		flows:    make(map[Kind]Flow),
		locks:    make(map[int64]*userLock),
		observer: observer,
		now:      time.Now,
		logger:   logger.With().Str("component", "dialog_engine").Logger(),
	}
}

// Register installs a flow. Registering a kind twice replaces the table.
func (e *Engine) Register(flow Flow) {
	e.flows[flow.Kind] = flow
}

// userLock serialises one user's input. Entries live only while someone
// holds or waits on them.
type userLock struct {
	mu   sync.Mutex
	refs int
}

// lock acquires the user's lock and returns its release func.
func (e *Engine) lock(userID int64) func() {
	e.locksMu.Lock()
	l, ok := e.locks[userID]
	if !ok {
		l = &userLock{}
		e.locks[userID] = l
	}
	l.refs++
	e.locksMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		e.locksMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(e.locks, userID)
		}
		e.locksMu.Unlock()
	}
}

// Start opens a dialog of kind for userID seeded with data. An open dialog of
// the same kind is released and replaced; one of another kind is kept and
// ErrDialogActive returned.
func (e *Engine) Start(ctx context.Context, userID int64, kind Kind, seed map[string]any) (Reply, error) {
	flow, ok := e.flows[kind]
	if !ok {
		return Reply{}, fmt.Errorf("dialog kind %q is not registered", kind)
	}

	unlock := e.lock(userID)
	defer unlock()

	if current, exists := e.store.Get(userID); exists {
		if current.Kind != kind {
			return Reply{}, ErrDialogActive
		}
		e.end(ctx, current, "replaced")
	}

	now := e.now()
	st := &State{
		UserID:    userID,
		Kind:      kind,
		Step:      flow.First,
		Data:      make(map[string]any, len(seed)),
		StartedAt: now,
		UpdatedAt: now,
	}
	for k, v := range seed {
		st.Data[k] = v
	}
	e.store.Put(st)

	e.observer.DialogStarted(string(kind))
	e.observer.ActiveDialogs(e.store.Count())
	e.logger.Debug().Int64("user_id", userID).Str("kind", string(kind)).Msg("dialog started")

	if flow.Intro == nil {
		return Reply{}, nil
	}
	return flow.Intro(st), nil
}

// HandleInput feeds in to the user's active dialog. handled is false when the
// user has no dialog.
func (e *Engine) HandleInput(ctx context.Context, userID int64, in Input) (reply Reply, handled bool) {
	res, handled := e.advance(ctx, userID, in)
	if !handled {
		return Reply{}, false
	}
	if res.after != nil {
		e.runAfter(ctx, userID, res.after)
	}
	return res.Reply, true
}

func (e *Engine) advance(ctx context.Context, userID int64, in Input) (Result, bool) {
	unlock := e.lock(userID)
	defer unlock()

	st, ok := e.store.Get(userID)
	if !ok {
		return Result{}, false
	}

	res, outcome := e.step(ctx, st, in)
	switch res.action {
	case actionStay:
		e.store.Touch(st, "", e.now())
	case actionNext:
		e.store.Touch(st, res.next, e.now())
	case actionFinish, actionAbort:
		e.end(ctx, st, outcome)
	}
	return res, true
}

// step runs the handler for the current step. A panic is treated like an
// unexpected error.
func (e *Engine) step(ctx context.Context, st *State, in Input) (res Result, outcome string) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error().
				Interface("panic", r).
				Str("stack", string(debug.Stack())).
				Int64("user_id", st.UserID).
				Str("kind", string(st.Kind)).
				Str("step", string(st.Step)).
				Msg("dialog step panicked")
			res, outcome = Abort(pkgerrors.GenericFailure), "failed"
		}
	}()

	flow := e.flows[st.Kind]
	fn, ok := flow.Steps[st.Step]
	if !ok {
		e.logger.Error().
			Int64("user_id", st.UserID).
			Str("kind", string(st.Kind)).
			Str("step", string(st.Step)).
			Msg("no handler for dialog step")
		return Abort(pkgerrors.GenericFailure), "failed"
	}

	res, err := fn(ctx, st, in)
	if err != nil {
		var validationErr *pkgerrors.ValidationError
		if errors.As(err, &validationErr) {
			return Stay("❌ " + validationErr.Error()), ""
		}
		var permissionErr *pkgerrors.PermissionError
		if errors.As(err, &permissionErr) {
			return Abort("⛔ " + permissionErr.Error()), "denied"
		}
		e.logger.Error().Err(err).
			Int64("user_id", st.UserID).
			Str("kind", string(st.Kind)).
			Str("step", string(st.Step)).
			Msg("dialog step failed")
		return Abort(pkgerrors.GenericFailure), "failed"
	}

	switch res.action {
	case actionFinish:
		return res, "completed"
	case actionAbort:
		return res, "aborted"
	}
	return res, ""
}

func (e *Engine) runAfter(ctx context.Context, userID int64, fn func(ctx context.Context)) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error().
				Interface("panic", r).
				Str("stack", string(debug.Stack())).
				Int64("user_id", userID).
				Msg("dialog follow-up panicked")
		}
	}()
	fn(ctx)
}

// Cancel ends the user's dialog, releasing any held handle. It reports
// whether a dialog existed.
func (e *Engine) Cancel(ctx context.Context, userID int64) bool {
	unlock := e.lock(userID)
	defer unlock()

	st, ok := e.store.Get(userID)
	if !ok {
		return false
	}
	e.end(ctx, st, "cancelled")
	return true
}

// Active reports the kind and step of the user's dialog.
func (e *Engine) Active(userID int64) (Kind, Step, bool) {
	return e.store.Peek(userID)
}

// end must be called with the user's lock held.
func (e *Engine) end(ctx context.Context, st *State, outcome string) {
	e.store.Delete(st.UserID)
	e.release(ctx, st)
	e.observer.DialogFinished(string(st.Kind), outcome)
	e.observer.ActiveDialogs(e.store.Count())
	e.logger.Debug().
		Int64("user_id", st.UserID).
		Str("kind", string(st.Kind)).
		Str("outcome", outcome).
		Msg("dialog ended")
}

// release failures are logged and swallowed.
func (e *Engine) release(ctx context.Context, st *State) {
	if st.Handle == nil {
		return
	}
	relCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()

	if err := st.Handle.Release(relCtx); err != nil {
		e.logger.Warn().Err(err).Int64("user_id", st.UserID).Msg("failed to release dialog handle")
	}
	st.Handle = nil
}

// ExpireIdle ends dialogs untouched for longer than ttl and returns how many
// were removed.
func (e *Engine) ExpireIdle(ctx context.Context, ttl time.Duration) int {
	cutoff := e.now().Add(-ttl)
	removed := 0

	for _, userID := range e.store.Idle(cutoff) {
		unlock := e.lock(userID)
		if st, ok := e.store.Get(userID); ok && e.store.IdleSince(st, cutoff) {
			e.end(ctx, st, "expired")
			removed++
		}
		unlock()
	}
	return removed
}

// StartJanitor expires idle dialogs every interval until StopJanitor.
func (e *Engine) StartJanitor(ttl, interval time.Duration) {
	if ttl <= 0 || interval <= 0 {
		return
	}
	e.stopJanitor = make(chan struct{})
	e.janitorDone = make(chan struct{})

	go func() {
		defer close(e.janitorDone)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-e.stopJanitor:
				return
			case <-ticker.C:
				if n := e.ExpireIdle(context.Background(), ttl); n > 0 {
					e.logger.Info().Int("expired", n).Msg("expired idle dialogs")
				}
			}
		}
	}()
}

func (e *Engine) StopJanitor() {
	if e.stopJanitor == nil {
		return
	}
	close(e.stopJanitor)
	<-e.janitorDone
	e.stopJanitor = nil
}
