package bulk

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog"

	"github.com/Devensh22345/account-manage/internal/domain/account/entities"
	"github.com/Devensh22345/account-manage/internal/domain/remote"
	pkgerrors "github.com/Devensh22345/account-manage/pkg/errors"
)

// Kind names the command that started a task.
type Kind string

const (
	KindSend   Kind = "send"
	KindJoin   Kind = "join"
	KindLeave  Kind = "leave"
	KindReport Kind = "report"
	KindOTP    Kind = "otp"
)

// State of a task: Created -> Running -> Completed | Cancelled.
type State string

const (
	StateCreated   State = "created"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateCancelled State = "cancelled"
)

// Outcome of a single action invocation.
type Outcome string

const (
	OutcomeSuccess       Outcome = "success"
	OutcomeAlreadyMember Outcome = "already_member"
	OutcomeRateLimited   Outcome = "rate_limited"
	OutcomeInvalidTarget Outcome = "invalid_target"
	OutcomeUnauthorized  Outcome = "unauthorized"
	OutcomeFailed        Outcome = "failed"
)

// Succeeded reports whether o counts towards the successful total.
func (o Outcome) Succeeded() bool {
	return o == OutcomeSuccess || o == OutcomeAlreadyMember
}

// ErrTaskRunning is returned by Start while the user has a task registered.
var ErrTaskRunning = pkgerrors.NewConflictError("A task is already running. Send /stop to cancel it first.")

// ActionFunc performs one (account, target) unit of work.
type ActionFunc func(ctx context.Context, acc *entities.Account, target string) error

// Result describes one invocation.
type Result struct {
	Account *entities.Account
	Target  string
	Outcome Outcome
	Err     error
	Seq     int
}

// Summary is produced when a task ends.
type Summary struct {
	TaskID     string
	UserID     int64
	Kind       Kind
	State      State
	Successful int
	Failed     int
	Attempted  int
	Planned    int
	StartedAt  time.Time
	Duration   time.Duration
}

// Job describes the work of one task. Accounts are iterated in order and,
// for each account, every target in order.
type Job struct {
	UserID   int64
	Kind     Kind
	Accounts []*entities.Account
	Targets  []string
	Action   ActionFunc
	Delay    DelayPolicy
	// OnResult is called after every invocation from the task goroutine.
	OnResult func(ctx context.Context, res Result)
	// OnFinish is called once with the summary; failures inside it are the
	// caller's concern.
	OnFinish func(ctx context.Context, sum Summary)
}

// Observer receives task metrics.
type Observer interface {
	TaskStarted(kind string)
	TaskFinished(kind, state string)
	ActionCompleted(kind, outcome string)
	FloodWait(wait time.Duration)
	ActiveTasks(n int)
}

type nopObserver struct{}

func (nopObserver) TaskStarted(string)             {}
func (nopObserver) TaskFinished(string, string)    {}
func (nopObserver) ActionCompleted(string, string) {}
func (nopObserver) FloodWait(time.Duration)        {}
func (nopObserver) ActiveTasks(int)                {}

// Executor runs jobs and owns the cancellation registry.
type Executor struct {
	registry *Registry
	observer Observer
	sleep    func(ctx context.Context, d time.Duration) error
	logger   zerolog.Logger
}

func NewExecutor(registry *Registry, observer Observer, logger zerolog.Logger) *Executor {
	if observer == nil {
		observer = nopObserver{}
	}
	return &Executor{
		registry: registry,
		observer: observer,
		sleep:    sleepContext,
		logger:   logger.With().Str("component", "bulk_executor").Logger(),
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Start runs job in the background. It refuses to start while the user has a
// task registered so that every running task stays stoppable.
func (e *Executor) Start(ctx context.Context, job Job) error {
	taskCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	h, ok := e.registry.TryRegister(job.UserID, job.Kind, cancel)
	if !ok {
		cancel()
		return ErrTaskRunning
	}
	go e.execute(taskCtx, cancel, h, job)
	return nil
}

// Stop cancels the user's task. Iterations after the current one are not
// started.
func (e *Executor) Stop(userID int64) (Kind, bool) {
	h, ok := e.registry.Stop(userID)
	if !ok {
		return "", false
	}
	e.observer.ActiveTasks(e.registry.Count())
	e.logger.Info().Int64("user_id", userID).Str("task_id", h.ID).Str("kind", string(h.Kind)).Msg("task stop requested")
	return h.Kind, true
}

// Running reports the kind of the user's registered task.
func (e *Executor) Running(userID int64) (Kind, bool) {
	h, ok := e.registry.Get(userID)
	if !ok {
		return "", false
	}
	return h.Kind, true
}

// Run executes job synchronously and returns its summary. It registers the
// task with overwrite semantics.
func (e *Executor) Run(ctx context.Context, job Job) Summary {
	taskCtx, cancel := context.WithCancel(ctx)
	h := e.registry.Register(job.UserID, job.Kind, cancel)
	return e.execute(taskCtx, cancel, h, job)
}

func (e *Executor) execute(ctx context.Context, cancel context.CancelFunc, h *Handle, job Job) Summary {
	defer cancel()

	sum := Summary{
		TaskID:    h.ID,
		UserID:    job.UserID,
		Kind:      job.Kind,
		State:     StateRunning,
		Planned:   len(job.Accounts) * len(job.Targets),
		StartedAt: time.Now(),
	}
	e.observer.TaskStarted(string(job.Kind))
	e.observer.ActiveTasks(e.registry.Count())

	log := e.logger.With().
		Str("task_id", h.ID).
		Int64("user_id", job.UserID).
		Str("kind", string(job.Kind)).
		Logger()
	log.Info().Int("accounts", len(job.Accounts)).Int("targets", len(job.Targets)).Msg("task started")

	sum.State = e.loop(ctx, job, &sum, log)

	e.registry.Remove(job.UserID, h.ID)
	sum.Duration = time.Since(sum.StartedAt)
	e.observer.TaskFinished(string(job.Kind), string(sum.State))
	e.observer.ActiveTasks(e.registry.Count())

	log.Info().
		Str("state", string(sum.State)).
		Int("successful", sum.Successful).
		Int("failed", sum.Failed).
		Int("attempted", sum.Attempted).
		Dur("duration", sum.Duration).
		Msg("task finished")

	if job.OnFinish != nil {
		e.guard(log, "finish callback", func() { job.OnFinish(context.WithoutCancel(ctx), sum) })
	}
	return sum
}

// invoke runs one action. A panicking action counts as a failed invocation.
func (e *Executor) invoke(ctx context.Context, job Job, acc *entities.Account, target string, log zerolog.Logger) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Interface("panic", r).
				Str("stack", string(debug.Stack())).
				Str("target", target).
				Msg("action panicked")
			err = fmt.Errorf("action panicked: %v", r)
		}
	}()
	return job.Action(ctx, acc, target)
}

// guard runs a caller callback, logging instead of propagating a panic.
func (e *Executor) guard(log zerolog.Logger, name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Interface("panic", r).
				Str("stack", string(debug.Stack())).
				Msg(name + " panicked")
		}
	}()
	fn()
}

func (e *Executor) loop(ctx context.Context, job Job, sum *Summary, log zerolog.Logger) State {
	for i, acc := range job.Accounts {
		for j, target := range job.Targets {
			if ctx.Err() != nil {
				return StateCancelled
			}

			err := e.invoke(ctx, job, acc, target, log)
			sum.Attempted++

			outcome, pause := e.classify(err, job.Delay)
			if outcome.Succeeded() {
				sum.Successful++
			} else {
				sum.Failed++
			}
			e.observer.ActionCompleted(string(job.Kind), string(outcome))

			if err != nil && outcome != OutcomeAlreadyMember {
				log.Warn().Err(err).
					Str("account", acc.PhoneNumber).
					Str("target", target).
					Str("outcome", string(outcome)).
					Msg("action failed")
			}

			if job.OnResult != nil {
				res := Result{Account: acc, Target: target, Outcome: outcome, Err: err, Seq: sum.Attempted}
				e.guard(log, "result callback", func() { job.OnResult(ctx, res) })
			}

			lastTarget := j == len(job.Targets)-1
			if pause == 0 && !lastTarget {
				pause = job.Delay.BetweenTargets.pick()
			}
			if err := e.sleep(ctx, pause); err != nil {
				return StateCancelled
			}
		}

		if i < len(job.Accounts)-1 {
			if err := e.sleep(ctx, job.Delay.BetweenAccounts.pick()); err != nil {
				return StateCancelled
			}
		}
	}
	return StateCompleted
}

// classify maps an action error onto an outcome and the pause it requires.
// A zero pause means the regular policy applies.
func (e *Executor) classify(err error, policy DelayPolicy) (Outcome, time.Duration) {
	if err == nil {
		return OutcomeSuccess, 0
	}

	switch remote.KindOf(err) {
	case remote.KindAlreadyMember:
		return OutcomeAlreadyMember, 0
	case remote.KindRateLimited:
		wait, _ := remote.WaitOf(err)
		e.observer.FloodWait(wait)
		return OutcomeRateLimited, wait
	case remote.KindInvalidTarget:
		return OutcomeInvalidTarget, 0
	case remote.KindUnauthorized:
		return OutcomeUnauthorized, policy.AfterError
	default:
		return OutcomeFailed, policy.AfterError
	}
}
