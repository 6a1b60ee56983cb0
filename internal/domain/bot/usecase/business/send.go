package business

import (
	"context"
	"fmt"
	"strings"

	"github.com/Devensh22345/account-manage/internal/domain/account/entities"
	"github.com/Devensh22345/account-manage/internal/domain/bot/consts"
	"github.com/Devensh22345/account-manage/internal/domain/bot/deps"
	"github.com/Devensh22345/account-manage/internal/domain/bot/dto"
	"github.com/Devensh22345/account-manage/internal/domain/bulk"
	"github.com/Devensh22345/account-manage/internal/domain/dialog"
	"github.com/Devensh22345/account-manage/internal/domain/remote"
)

const (
	stepSendTarget  dialog.Step = "target"
	stepSendMessage dialog.Step = "message"
)

// Send state keys
const (
	keyType      = "type"
	keyTarget    = "target"
	keyText      = "text"
	keyMediaKey  = "media_key"
	keyMediaKind = "media_kind"
	keyFileName  = "file_name"
	keyMIMEType  = "mime_type"
)

var sendTypeLabels = map[string]string{
	"bot":   "Bot",
	"user":  "User",
	"group": "Group",
}

// stagedMedia deletes an uploaded file from the media store when the send
// dialog ends.
type stagedMedia struct {
	store deps.MediaStore
	key   string
}

func (m *stagedMedia) Release(ctx context.Context) error {
	return m.store.DeleteMedia(ctx, m.key)
}

func sendMenu() dialog.Reply {
	return reply("📤 <b>Send Messages</b>\n\nChoose where to send:",
		row(button("🤖 Send to Bot", consts.SendBot)),
		row(button("👤 Send to User", consts.SendUser)),
		row(button("👥 Send to Group", consts.SendGroup)),
		row(button("⏹ Stop Sending", consts.SendStop)),
	)
}

// HandleSend shows the send menu.
func (uc *UseCase) HandleSend(ctx context.Context, req *dto.Request) (dialog.Reply, error) {
	if err := uc.gate.RequireAdmin(ctx, req.UserID); err != nil {
		return dialog.Reply{}, err
	}
	if err := uc.ensureIdle(req.UserID); err != nil {
		return dialog.Reply{}, err
	}
	return sendMenu(), nil
}

// HandleSendCallback opens the send wizard for the chosen target type or
// stops the running task.
func (uc *UseCase) HandleSendCallback(ctx context.Context, req *dto.Request) (dialog.Reply, error) {
	if err := uc.gate.RequireAdmin(ctx, req.UserID); err != nil {
		return dialog.Reply{}, err
	}
	if req.Data == consts.SendStop {
		return uc.stopTask(req.UserID), nil
	}

	sendType := strings.TrimPrefix(req.Data, consts.PrefixSend)
	if _, ok := sendTypeLabels[sendType]; !ok {
		return sendMenu(), nil
	}
	if err := uc.ensureIdle(req.UserID); err != nil {
		return dialog.Reply{}, err
	}
	return uc.engine.Start(ctx, req.UserID, dialog.KindSend, map[string]any{keyType: sendType})
}

func (uc *UseCase) sendFlow() dialog.Flow {
	return dialog.Flow{
		Kind:  dialog.KindSend,
		First: stepSendTarget,
		Intro: func(st *dialog.State) dialog.Reply {
			return reply(fmt.Sprintf("📤 <b>Send to %s</b>\n\nSend the target username, link or numeric ID:",
				sendTypeLabels[st.String(keyType)]))
		},
		Steps: uc.selectionSteps(map[dialog.Step]dialog.StepFunc{
			stepSendTarget:  uc.sendTarget,
			stepSendMessage: uc.sendMessage,
		}, uc.runSend),
	}
}

func (uc *UseCase) sendTarget(_ context.Context, st *dialog.State, in dialog.Input) (dialog.Result, error) {
	target := strings.TrimSpace(in.Text)
	if target == "" {
		return dialog.Stay("❌ Please send a username, link or ID."), nil
	}
	st.Set(keyTarget, target)
	return dialog.Next(stepSendMessage, "💬 Now send the message to deliver. Text, photo, video, document, audio, voice and animation are supported."), nil
}

// sendMessage stages the payload. Media is downloaded once and kept in the
// media store until the dialog ends.
func (uc *UseCase) sendMessage(ctx context.Context, st *dialog.State, in dialog.Input) (dialog.Result, error) {
	if in.Attachment == nil {
		text := strings.TrimSpace(in.Text)
		if text == "" {
			return dialog.Stay("❌ Please send a text message or a supported media file."), nil
		}
		st.Set(keyText, text)
		return askAccounts("✅ Message saved."), nil
	}

	att := in.Attachment
	data, err := uc.files.Download(ctx, att.FileID)
	if err != nil {
		return dialog.Result{}, fmt.Errorf("download attachment: %w", err)
	}
	key, err := uc.media.PutMedia(ctx, st.UserID, att.MIMEType, data)
	if err != nil {
		return dialog.Result{}, fmt.Errorf("stage attachment: %w", err)
	}

	if st.Handle != nil {
		if err := st.Handle.Release(ctx); err != nil {
			uc.logger.Warn().Err(err).Int64("user_id", st.UserID).Msg("failed to release previous attachment")
		}
	}
	st.Handle = &stagedMedia{store: uc.media, key: key}
	st.Set(keyMediaKey, key)
	st.Set(keyMediaKind, att.Kind)
	st.Set(keyFileName, att.FileName)
	st.Set(keyMIMEType, att.MIMEType)
	st.Set(keyText, att.Caption)

	return askAccounts(fmt.Sprintf("✅ Media saved (%s).", att.Kind)), nil
}

// runSend loads the payload into memory before the dialog releases the
// staged copy, then starts the task.
func (uc *UseCase) runSend(ctx context.Context, st *dialog.State, accounts []*entities.Account) (dialog.Result, error) {
	target := st.String(keyTarget)
	text := st.String(keyText)

	var media *remote.Media
	if key := st.String(keyMediaKey); key != "" {
		data, err := uc.media.GetMedia(ctx, key)
		if err != nil {
			return dialog.Result{}, fmt.Errorf("load staged media: %w", err)
		}
		media = &remote.Media{
			Kind:     remote.MediaKind(st.String(keyMediaKind)),
			FileName: st.String(keyFileName),
			MIMEType: st.String(keyMIMEType),
			Data:     data,
			Caption:  text,
		}
	}

	userID := st.UserID
	pool := uc.newPool()
	job := bulk.Job{
		UserID:   userID,
		Kind:     bulk.KindSend,
		Accounts: accounts,
		Targets:  []string{target},
		Delay:    uc.delays.send,
		Action: pool.action(func(ctx context.Context, sess remote.Session, target string) error {
			if media != nil {
				return sess.SendMedia(ctx, target, media)
			}
			return sess.SendText(ctx, target, text)
		}),
		OnFinish: func(ctx context.Context, sum bulk.Summary) {
			msg := summaryText("Sending", sum)
			uc.notify(ctx, userID, msg)
			uc.channels.Post(ctx, entities.LogSend, fmt.Sprintf(
				"📤 <b>Send Task</b>\n\n👤 Admin: <code>%d</code>\n🎯 Target: %s\n\n%s", userID, esc(target), msg))
		},
	}

	err := uc.startTask(ctx, job, pool)
	return startResult(err, fmt.Sprintf("🚀 Sending to %s with %d account(s)...\nUse /stop to cancel.", esc(target), len(accounts)))
}

// stopTask cancels the user's running task.
func (uc *UseCase) stopTask(userID int64) dialog.Reply {
	kind, ok := uc.executor.Stop(userID)
	if !ok {
		return reply("ℹ️ No task is running.")
	}
	uc.logger.Info().Int64("user_id", userID).Str("kind", string(kind)).Msg("task stop requested")
	return reply(fmt.Sprintf("⏹ Stopping the running %s task...", kind))
}
