package business

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Devensh22345/account-manage/internal/domain/account/entities"
	"github.com/Devensh22345/account-manage/internal/domain/bot/consts"
	"github.com/Devensh22345/account-manage/internal/domain/bot/dto"
	"github.com/Devensh22345/account-manage/internal/domain/bulk"
	"github.com/Devensh22345/account-manage/internal/domain/dialog"
	"github.com/Devensh22345/account-manage/internal/domain/remote"
	pkgerrors "github.com/Devensh22345/account-manage/pkg/errors"
)

const (
	stepReportTarget      dialog.Step = "target"
	stepReportReason      dialog.Step = "reason"
	stepReportDescription dialog.Step = "description"
	stepReportCount       dialog.Step = "count"
)

// Report state keys
const (
	keyReason      = "reason"
	keyReasonLabel = "reason_label"
	keyDescription = "description"
	keyCount       = "count"
)

const (
	choiceReasonPrefix = "reason_"
	choiceSkip         = "skip"
	maxReportCount     = 10
)

var reportTargetPrompts = map[string]string{
	consts.TargetBot:     "🤖 Send the bot username to report:",
	consts.TargetGroup:   "👥 Send the group username or invite link to report:",
	consts.TargetChannel: "📢 Send the channel username or invite link to report:",
	consts.TargetUser:    "👤 Send the username or ID of the user to report:",
	consts.TargetPost:    "📝 Send the post link to report, e.g. https://t.me/channel/123:",
}

func reportMenu() dialog.Reply {
	return reply("🚨 <b>Report</b>\n\nWhat do you want to report?",
		row(button("🤖 Bot", consts.ReportBot), button("👥 Group", consts.ReportGroup)),
		row(button("📢 Channel", consts.ReportChannel), button("👤 User", consts.ReportUser)),
		row(button("📝 Post", consts.ReportPost)),
		row(button("⏹ Stop Reporting", consts.ReportStop)),
	)
}

// HandleReport shows the report menu.
func (uc *UseCase) HandleReport(ctx context.Context, req *dto.Request) (dialog.Reply, error) {
	if err := uc.gate.RequireAdmin(ctx, req.UserID); err != nil {
		return dialog.Reply{}, err
	}
	if err := uc.ensureIdle(req.UserID); err != nil {
		return dialog.Reply{}, err
	}
	return reportMenu(), nil
}

// HandleReportCallback opens the report wizard for a target type or stops
// the running task.
func (uc *UseCase) HandleReportCallback(ctx context.Context, req *dto.Request) (dialog.Reply, error) {
	if err := uc.gate.RequireAdmin(ctx, req.UserID); err != nil {
		return dialog.Reply{}, err
	}
	if req.Data == consts.ReportStop {
		return uc.stopTask(req.UserID), nil
	}

	targetType := strings.TrimPrefix(req.Data, consts.PrefixReport)
	if _, ok := reportTargetPrompts[targetType]; !ok {
		return reportMenu(), nil
	}
	if err := uc.ensureIdle(req.UserID); err != nil {
		return dialog.Reply{}, err
	}
	return uc.engine.Start(ctx, req.UserID, dialog.KindReport, map[string]any{keyType: targetType})
}

func (uc *UseCase) reportFlow() dialog.Flow {
	return dialog.Flow{
		Kind:  dialog.KindReport,
		First: stepReportTarget,
		Intro: func(st *dialog.State) dialog.Reply {
			return reply(reportTargetPrompts[st.String(keyType)])
		},
		Steps: uc.selectionSteps(map[dialog.Step]dialog.StepFunc{
			stepReportTarget:      uc.reportTarget,
			stepReportReason:      uc.reportReason,
			stepReportDescription: uc.reportDescription,
			stepReportCount:       uc.reportCount,
		}, uc.runReport),
	}
}

func reasonButtons() [][]dialog.Button {
	rows := make([][]dialog.Button, 0, len(consts.ReportReasons)/2+1)
	for i := 0; i < len(consts.ReportReasons); i += 2 {
		r := row(choice(consts.ReportReasons[i].Label, choiceReasonPrefix+strconv.Itoa(i)))
		if i+1 < len(consts.ReportReasons) {
			r = append(r, choice(consts.ReportReasons[i+1].Label, choiceReasonPrefix+strconv.Itoa(i+1)))
		}
		rows = append(rows, r)
	}
	return rows
}

func (uc *UseCase) reportTarget(_ context.Context, st *dialog.State, in dialog.Input) (dialog.Result, error) {
	target := strings.TrimSpace(in.Text)
	if target == "" {
		return dialog.Stay(reportTargetPrompts[st.String(keyType)]), nil
	}
	if st.String(keyType) == consts.TargetPost && !strings.Contains(target, "/") {
		return dialog.Stay("❌ Please send a full post link, e.g. https://t.me/channel/123"), nil
	}
	st.Set(keyTarget, target)
	return dialog.Next(stepReportReason, "📋 Select the report reason:").WithButtons(reasonButtons()), nil
}

func (uc *UseCase) reportReason(_ context.Context, st *dialog.State, in dialog.Input) (dialog.Result, error) {
	idx, err := strconv.Atoi(strings.TrimPrefix(in.Choice, choiceReasonPrefix))
	if !strings.HasPrefix(in.Choice, choiceReasonPrefix) || err != nil || idx < 0 || idx >= len(consts.ReportReasons) {
		return dialog.Stay("Please pick a reason from the buttons.").WithButtons(reasonButtons()), nil
	}
	reason := consts.ReportReasons[idx]
	st.Set(keyReason, reason.Key)
	st.Set(keyReasonLabel, reason.Label)

	return dialog.Next(stepReportDescription,
		fmt.Sprintf("✅ Reason: %s\n\n📝 Send a short description for the report, or skip:", reason.Label)).
		WithButtons([][]dialog.Button{row(choice("⏭ Skip", choiceSkip))}), nil
}

func (uc *UseCase) reportDescription(_ context.Context, st *dialog.State, in dialog.Input) (dialog.Result, error) {
	text := strings.TrimSpace(in.Text)
	if in.Choice == choiceSkip || strings.EqualFold(text, choiceSkip) {
		text = ""
	} else if text == "" {
		return dialog.Stay("Please send a description or press Skip.").
			WithButtons([][]dialog.Button{row(choice("⏭ Skip", choiceSkip))}), nil
	}
	st.Set(keyDescription, text)
	return dialog.Next(stepReportCount,
		fmt.Sprintf("🔢 How many reports per account? (1-%d)", maxReportCount)), nil
}

func (uc *UseCase) reportCount(_ context.Context, st *dialog.State, in dialog.Input) (dialog.Result, error) {
	n, err := strconv.Atoi(strings.TrimSpace(in.Text))
	if err != nil || n < 1 || n > maxReportCount {
		return dialog.Result{}, pkgerrors.NewValidationErrorf("Please send a number between 1 and %d", maxReportCount)
	}
	st.Set(keyCount, n)
	return askAccounts(fmt.Sprintf("✅ %d report(s) per account.", n)), nil
}

// runReport records the job, then starts the task. The job moves
// pending -> running -> completed | stopped.
func (uc *UseCase) runReport(ctx context.Context, st *dialog.State, accounts []*entities.Account) (dialog.Result, error) {
	target := st.String(keyTarget)
	reason := st.String(keyReason)
	label := st.String(keyReasonLabel)
	description := st.String(keyDescription)
	count := st.Int(keyCount)
	if count < 1 {
		count = 1
	}

	ids := make([]primitive.ObjectID, 0, len(accounts))
	for _, acc := range accounts {
		ids = append(ids, acc.ID)
	}
	job := &entities.ReportJob{
		AdminID:      st.UserID,
		TargetType:   st.String(keyType),
		Target:       target,
		Reason:       label,
		Description:  description,
		ReportCount:  count,
		AccountsUsed: ids,
		Status:       entities.ReportPending,
		CreatedAt:    uc.now(),
	}
	if err := uc.jobs.Create(ctx, job); err != nil {
		return dialog.Result{}, fmt.Errorf("create report job: %w", err)
	}
	if err := uc.jobs.UpdateStatus(ctx, job.ID, entities.ReportRunning, 0, nil); err != nil {
		return dialog.Result{}, fmt.Errorf("mark report job running: %w", err)
	}

	targets := make([]string, count)
	for i := range targets {
		targets[i] = target
	}

	userID := st.UserID
	pool := uc.newPool()
	task := bulk.Job{
		UserID:   userID,
		Kind:     bulk.KindReport,
		Accounts: accounts,
		Targets:  targets,
		Delay:    uc.delays.report,
		Action: pool.action(func(ctx context.Context, sess remote.Session, target string) error {
			return sess.Report(ctx, target, reason, description)
		}),
		OnFinish: func(ctx context.Context, sum bulk.Summary) {
			status := entities.ReportCompleted
			if sum.State == bulk.StateCancelled {
				status = entities.ReportStopped
			}
			completedAt := uc.now()
			if err := uc.jobs.UpdateStatus(ctx, job.ID, status, sum.Successful, &completedAt); err != nil {
				uc.logger.Error().Err(err).Str("job_id", job.ID.Hex()).Msg("failed to finish report job")
			}

			msg := summaryText("Reporting", sum)
			uc.notify(ctx, userID, msg)
			uc.channels.Post(ctx, entities.LogReport, fmt.Sprintf(
				"🚨 <b>Report Task</b>\n\n👤 Admin: <code>%d</code>\n🎯 Target: %s (%s)\n📋 Reason: %s\n\n%s",
				userID, esc(target), esc(job.TargetType), esc(label), msg))
		},
	}

	if err := uc.startTask(ctx, task, pool); err != nil {
		completedAt := uc.now()
		if uerr := uc.jobs.UpdateStatus(ctx, job.ID, entities.ReportStopped, 0, &completedAt); uerr != nil {
			uc.logger.Error().Err(uerr).Str("job_id", job.ID.Hex()).Msg("failed to stop report job")
		}
		return startResult(err, "")
	}

	return dialog.Finish(fmt.Sprintf(
		"🚀 Reporting %s with %d account(s), %d report(s) each...\n📋 Reason: %s\nUse /stop to cancel.",
		esc(target), len(accounts), count, esc(label))), nil
}
