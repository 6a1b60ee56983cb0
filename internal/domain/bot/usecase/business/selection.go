package business

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Devensh22345/account-manage/internal/domain/account/entities"
	"github.com/Devensh22345/account-manage/internal/domain/bulk"
	"github.com/Devensh22345/account-manage/internal/domain/dialog"
	"github.com/Devensh22345/account-manage/internal/domain/remote"
	"github.com/Devensh22345/account-manage/internal/utils"
)

const (
	stepAccounts dialog.Step = "accounts"
	stepNumbers  dialog.Step = "account_numbers"
)

// Account selection choices
const (
	choiceAll    = "all"
	choiceMine   = "mine"
	choiceSelect = "select"
	choiceCancel = "cancel"
)

const noAccountsText = "❌ No active accounts found!"

// runFunc starts the wizard's task once accounts are chosen.
type runFunc func(ctx context.Context, st *dialog.State, accounts []*entities.Account) (dialog.Result, error)

func selectionButtons() [][]dialog.Button {
	return [][]dialog.Button{
		row(choice("✅ All Active Accounts", choiceAll)),
		row(choice("🔢 Select Accounts", choiceSelect)),
		row(choice("📱 My Accounts Only", choiceMine)),
		row(choice("❌ Cancel", choiceCancel)),
	}
}

// askAccounts moves a wizard to the account selection step.
func askAccounts(text string) dialog.Result {
	return dialog.Next(stepAccounts, text+"\n\nSelect which accounts to use:").WithButtons(selectionButtons())
}

// accountsStep handles the selection buttons.
func (uc *UseCase) accountsStep(run runFunc) dialog.StepFunc {
	return func(ctx context.Context, st *dialog.State, in dialog.Input) (dialog.Result, error) {
		var (
			accounts []*entities.Account
			err      error
		)

		switch in.Choice {
		case choiceCancel:
			return dialog.Abort("❌ Operation cancelled."), nil
		case choiceAll:
			accounts, err = uc.accounts.ActiveAccounts(ctx, nil)
		case choiceMine:
			accounts, err = uc.accounts.ActiveAccounts(ctx, &st.UserID)
		case choiceSelect:
			return uc.listForSelection(ctx)
		default:
			return dialog.Stay("Please choose one of the options below.").WithButtons(selectionButtons()), nil
		}
		if err != nil {
			return dialog.Result{}, err
		}
		if len(accounts) == 0 {
			return dialog.Abort(noAccountsText), nil
		}
		return run(ctx, st, accounts)
	}
}

func (uc *UseCase) listForSelection(ctx context.Context) (dialog.Result, error) {
	accounts, err := uc.accounts.ActiveAccounts(ctx, nil)
	if err != nil {
		return dialog.Result{}, err
	}
	if len(accounts) == 0 {
		return dialog.Abort(noAccountsText), nil
	}

	var b strings.Builder
	b.WriteString("🔢 <b>Active accounts</b>\n\n")
	for i, acc := range accounts {
		b.WriteString(accountLine(i+1, acc))
		b.WriteByte('\n')
	}
	b.WriteString("\nSend the account numbers to use, e.g. <code>1,3,5-7</code>")
	return dialog.Next(stepNumbers, b.String()), nil
}

// numbersStep resolves "1,3,5-7" against the numbered active list.
func (uc *UseCase) numbersStep(run runFunc) dialog.StepFunc {
	return func(ctx context.Context, st *dialog.State, in dialog.Input) (dialog.Result, error) {
		if in.Choice == choiceCancel {
			return dialog.Abort("❌ Operation cancelled."), nil
		}

		accounts, err := uc.accounts.ActiveAccounts(ctx, nil)
		if err != nil {
			return dialog.Result{}, err
		}
		if len(accounts) == 0 {
			return dialog.Abort(noAccountsText), nil
		}

		numbers, err := utils.ParseNumberList(in.Text, len(accounts))
		if err != nil {
			return dialog.Result{}, err
		}
		chosen := make([]*entities.Account, 0, len(numbers))
		for _, n := range numbers {
			chosen = append(chosen, accounts[n-1])
		}
		return run(ctx, st, chosen)
	}
}

// selectionSteps adds the two account selection steps to a step table. The
// caller's admin role is looked up again before the task starts.
func (uc *UseCase) selectionSteps(steps map[dialog.Step]dialog.StepFunc, run runFunc) map[dialog.Step]dialog.StepFunc {
	guarded := func(ctx context.Context, st *dialog.State, accounts []*entities.Account) (dialog.Result, error) {
		if err := uc.gate.RequireAdmin(ctx, st.UserID); err != nil {
			return dialog.Result{}, err
		}
		return run(ctx, st, accounts)
	}
	steps[stepAccounts] = uc.accountsStep(guarded)
	steps[stepNumbers] = uc.numbersStep(guarded)
	return steps
}

// startResult turns a bulk start failure into a dialog result.
func startResult(err error, started string) (dialog.Result, error) {
	if errors.Is(err, bulk.ErrTaskRunning) {
		return dialog.Abort("⚠️ " + err.Error()), nil
	}
	if err != nil {
		return dialog.Result{}, err
	}
	return dialog.Finish(started), nil
}

// sessionPool dials each account once per task and closes it when the task
// moves to the next account. The executor invokes actions and OnFinish from
// one goroutine, so the pool needs no locking.
type sessionPool struct {
	uc      *UseCase
	account *entities.Account
	session remote.Session
	err     error
}

func (uc *UseCase) newPool() *sessionPool {
	return &sessionPool{uc: uc}
}

func (p *sessionPool) get(ctx context.Context, acc *entities.Account) (remote.Session, error) {
	if p.account != nil && p.account.ID == acc.ID {
		return p.session, p.err
	}
	p.close()
	p.account = acc
	p.session, p.err = p.uc.dial(ctx, acc)
	return p.session, p.err
}

func (p *sessionPool) close() {
	if p.session == nil {
		return
	}
	if err := p.session.Close(); err != nil {
		p.uc.logger.Warn().Err(err).Str("account_id", p.account.ID.Hex()).Msg("failed to close session")
	}
	p.session = nil
}

// action adapts a per-session operation into a bulk action.
func (p *sessionPool) action(fn func(ctx context.Context, sess remote.Session, target string) error) bulk.ActionFunc {
	return func(ctx context.Context, acc *entities.Account, target string) error {
		sess, err := p.get(ctx, acc)
		if err != nil {
			return err
		}
		return fn(ctx, sess, target)
	}
}

func (uc *UseCase) dial(ctx context.Context, acc *entities.Account) (remote.Session, error) {
	sess, err := uc.dialer.Dial(ctx, remote.Credentials{
		APIID:        acc.APIID,
		APIHash:      acc.APIHash,
		SessionToken: acc.SessionString,
	})
	if err != nil {
		return nil, err
	}
	uc.accounts.MarkUsed(ctx, acc.ID)
	return sess, nil
}

// startTask starts job in the background and closes the pool's last session,
// if any, before the job's own OnFinish runs. Rate limits and revoked
// sessions update the account's flags once per account.
func (uc *UseCase) startTask(ctx context.Context, job bulk.Job, pool *sessionPool) error {
	disabled := make(map[primitive.ObjectID]bool)
	onResult := job.OnResult
	job.OnResult = func(ctx context.Context, res bulk.Result) {
		if res.Err != nil && !disabled[res.Account.ID] {
			disabled[res.Account.ID] = uc.accounts.ObserveFailure(context.WithoutCancel(ctx), res.Account, res.Err)
		}
		if onResult != nil {
			onResult(ctx, res)
		}
	}

	finish := job.OnFinish
	job.OnFinish = func(ctx context.Context, sum bulk.Summary) {
		if pool != nil {
			pool.close()
		}
		if finish != nil {
			finish(ctx, sum)
		}
	}
	return uc.executor.Start(ctx, job)
}
