package business

import (
	"context"
	"fmt"

	"github.com/Devensh22345/account-manage/internal/domain/account/entities"
	"github.com/Devensh22345/account-manage/internal/domain/bot/dto"
	"github.com/Devensh22345/account-manage/internal/domain/bulk"
	"github.com/Devensh22345/account-manage/internal/domain/dialog"
	"github.com/Devensh22345/account-manage/internal/domain/remote"
	"github.com/Devensh22345/account-manage/internal/utils"
)

const stepTargets dialog.Step = "targets"

const keyTargets = "targets"

// membership describes the join or leave variant of the targets wizard.
type membership struct {
	bulkKind bulk.Kind
	logKind  entities.LogKind
	title    string
	verb     string
	prompt   string
	act      func(ctx context.Context, sess remote.Session, target string) error
}

func membershipOf(kind dialog.Kind) membership {
	if kind == dialog.KindLeave {
		return membership{
			bulkKind: bulk.KindLeave,
			logKind:  entities.LogLeave,
			title:    "Leave",
			verb:     "Left",
			prompt:   "🚪 <b>Leave Groups/Channels</b>\n\nSend the links or usernames to leave, one per line:",
			act: func(ctx context.Context, sess remote.Session, target string) error {
				return sess.Leave(ctx, target)
			},
		}
	}
	return membership{
		bulkKind: bulk.KindJoin,
		logKind:  entities.LogJoin,
		title:    "Join",
		verb:     "Joined",
		prompt:   "➕ <b>Join Groups/Channels</b>\n\nSend the links or usernames to join, one per line:",
		act: func(ctx context.Context, sess remote.Session, target string) error {
			return sess.Join(ctx, target)
		},
	}
}

// HandleJoin opens the join wizard.
func (uc *UseCase) HandleJoin(ctx context.Context, req *dto.Request) (dialog.Reply, error) {
	return uc.startTargets(ctx, req, dialog.KindJoin)
}

// HandleLeave opens the leave wizard.
func (uc *UseCase) HandleLeave(ctx context.Context, req *dto.Request) (dialog.Reply, error) {
	return uc.startTargets(ctx, req, dialog.KindLeave)
}

func (uc *UseCase) startTargets(ctx context.Context, req *dto.Request, kind dialog.Kind) (dialog.Reply, error) {
	if err := uc.gate.RequireAdmin(ctx, req.UserID); err != nil {
		return dialog.Reply{}, err
	}
	if err := uc.ensureIdle(req.UserID); err != nil {
		return dialog.Reply{}, err
	}
	return uc.engine.Start(ctx, req.UserID, kind, nil)
}

func (uc *UseCase) targetsFlow(kind dialog.Kind) dialog.Flow {
	m := membershipOf(kind)
	return dialog.Flow{
		Kind:  kind,
		First: stepTargets,
		Intro: func(*dialog.State) dialog.Reply {
			return reply(m.prompt)
		},
		Steps: uc.selectionSteps(map[dialog.Step]dialog.StepFunc{
			stepTargets: func(_ context.Context, st *dialog.State, in dialog.Input) (dialog.Result, error) {
				targets := utils.SplitLines(in.Text)
				if len(targets) == 0 {
					return dialog.Stay("❌ Please send at least one link or username."), nil
				}
				st.Set(keyTargets, targets)
				return askAccounts(fmt.Sprintf("✅ %d target(s) received.", len(targets))), nil
			},
		}, func(ctx context.Context, st *dialog.State, accounts []*entities.Account) (dialog.Result, error) {
			return uc.runMembership(ctx, st, accounts, m)
		}),
	}
}

func (uc *UseCase) runMembership(ctx context.Context, st *dialog.State, accounts []*entities.Account, m membership) (dialog.Result, error) {
	targets, _ := st.Data[keyTargets].([]string)
	userID := st.UserID
	pool := uc.newPool()

	job := bulk.Job{
		UserID:   userID,
		Kind:     m.bulkKind,
		Accounts: accounts,
		Targets:  targets,
		Delay:    uc.delays.joinLeave,
		Action:   pool.action(m.act),
		OnResult: func(ctx context.Context, res bulk.Result) {
			if !res.Outcome.Succeeded() {
				return
			}
			uc.channels.Post(ctx, m.logKind, fmt.Sprintf("✅ %s: %s\n📱 Account: %s",
				m.verb, esc(res.Target), esc(res.Account.DisplayName())))
		},
		OnFinish: func(ctx context.Context, sum bulk.Summary) {
			msg := summaryText(m.title, sum)
			uc.notify(ctx, userID, msg)
			uc.channels.Post(ctx, m.logKind, fmt.Sprintf("👤 Admin: <code>%d</code>\n\n%s", userID, msg))
		},
	}

	err := uc.startTask(ctx, job, pool)
	return startResult(err, fmt.Sprintf("🚀 %s started: %d target(s) with %d account(s)...\nUse /stop to cancel.",
		m.title, len(targets), len(accounts)))
}
