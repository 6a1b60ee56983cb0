package mtproto

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gotd/contrib/bg"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/message"
	"github.com/gotd/td/telegram/query/dialogs"
	"github.com/gotd/td/telegram/message/styling"
	"github.com/gotd/td/telegram/uploader"
	"github.com/gotd/td/tg"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/Devensh22345/account-manage/internal/domain/remote"
)

// serviceUserID is the platform's notification account that delivers login codes.
const serviceUserID int64 = 777000

type remoteSession struct {
	client  *telegram.Client
	api     *tg.Client
	sender  *message.Sender
	limiter *rate.Limiter
	stop    bg.StopFunc
	logger  zerolog.Logger
}

func (s *remoteSession) wait(ctx context.Context) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return remote.NewError(remote.KindTransient, "rate limiter", err)
	}
	return nil
}

func (s *remoteSession) Self(ctx context.Context) (*remote.Profile, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	self, err := s.client.Self(ctx)
	if err != nil {
		return nil, classify(err)
	}
	return profileOf(self), nil
}

func (s *remoteSession) Join(ctx context.Context, raw string) error {
	ref, err := ParseRef(raw)
	if err != nil {
		return err
	}
	if err := s.wait(ctx); err != nil {
		return err
	}

	switch ref.Kind {
	case RefInvite:
		_, err = s.api.MessagesImportChatInvite(ctx, ref.Hash)
		return classify(err)
	case RefFolder:
		return s.joinFolder(ctx, ref.Slug)
	case RefID:
		return remote.NewError(remote.KindInvalidTarget, "chats are joined by username or invite link", nil)
	default:
		chat, err := s.resolveChat(ctx, ref.Username)
		if err != nil {
			return err
		}
		channel, ok := chat.(*tg.Channel)
		if !ok {
			return remote.NewError(remote.KindInvalidTarget, "basic groups can only be joined by invite link", nil)
		}
		if !channel.Left {
			return remote.NewError(remote.KindAlreadyMember, ref.Username, nil)
		}
		_, err = s.api.ChannelsJoinChannel(ctx, channel.AsInput())
		return classify(err)
	}
}

func (s *remoteSession) Leave(ctx context.Context, raw string) error {
	ref, err := ParseRef(raw)
	if err != nil {
		return err
	}
	if err := s.wait(ctx); err != nil {
		return err
	}

	switch ref.Kind {
	case RefInvite:
		invite, err := s.api.MessagesCheckChatInvite(ctx, ref.Hash)
		if err != nil {
			return classify(err)
		}
		switch inv := invite.(type) {
		case *tg.ChatInviteAlready:
			return s.leaveChat(ctx, inv.Chat)
		case *tg.ChatInvitePeek:
			return s.leaveChat(ctx, inv.Chat)
		default:
			return remote.NewError(remote.KindInvalidTarget, "not a member", nil)
		}
	case RefFolder:
		return s.leaveFolder(ctx, ref.Slug)
	case RefID:
		peer, err := s.peerByID(ctx, ref.ID)
		if err != nil {
			return err
		}
		return s.leavePeer(ctx, peer)
	default:
		chat, err := s.resolveChat(ctx, ref.Username)
		if err != nil {
			return err
		}
		return s.leaveChat(ctx, chat)
	}
}

func (s *remoteSession) leaveChat(ctx context.Context, chat tg.ChatClass) error {
	switch c := chat.(type) {
	case *tg.Channel:
		_, err := s.api.ChannelsLeaveChannel(ctx, c.AsInput())
		return classify(err)
	case *tg.Chat:
		_, err := s.api.MessagesDeleteChatUser(ctx, &tg.MessagesDeleteChatUserRequest{
			ChatID: c.ID,
			UserID: &tg.InputUserSelf{},
		})
		return classify(err)
	default:
		return remote.NewError(remote.KindInvalidTarget, "not a member", nil)
	}
}

func (s *remoteSession) leavePeer(ctx context.Context, peer tg.InputPeerClass) error {
	switch p := peer.(type) {
	case *tg.InputPeerChannel:
		_, err := s.api.ChannelsLeaveChannel(ctx, &tg.InputChannel{ChannelID: p.ChannelID, AccessHash: p.AccessHash})
		return classify(err)
	case *tg.InputPeerChat:
		_, err := s.api.MessagesDeleteChatUser(ctx, &tg.MessagesDeleteChatUserRequest{
			ChatID: p.ChatID,
			UserID: &tg.InputUserSelf{},
		})
		return classify(err)
	default:
		return remote.NewError(remote.KindInvalidTarget, "only groups and channels can be left", nil)
	}
}

func (s *remoteSession) joinFolder(ctx context.Context, slug string) error {
	invite, err := s.api.ChatlistsCheckChatlistInvite(ctx, slug)
	if err != nil {
		return classify(err)
	}

	var peers []tg.InputPeerClass
	switch inv := invite.(type) {
	case *tg.ChatlistsChatlistInvite:
		peers = inputPeers(inv.Peers, inv.Chats, inv.Users)
	case *tg.ChatlistsChatlistInviteAlready:
		if len(inv.MissingPeers) == 0 {
			return remote.NewError(remote.KindAlreadyMember, slug, nil)
		}
		peers = inputPeers(inv.MissingPeers, inv.Chats, inv.Users)
	}
	if len(peers) == 0 {
		return remote.NewError(remote.KindInvalidTarget, "folder has no joinable chats", nil)
	}

	_, err = s.api.ChatlistsJoinChatlistInvite(ctx, &tg.ChatlistsJoinChatlistInviteRequest{
		Slug:  slug,
		Peers: peers,
	})
	return classify(err)
}

func (s *remoteSession) leaveFolder(ctx context.Context, slug string) error {
	invite, err := s.api.ChatlistsCheckChatlistInvite(ctx, slug)
	if err != nil {
		return classify(err)
	}

	already, ok := invite.(*tg.ChatlistsChatlistInviteAlready)
	if !ok {
		return remote.NewError(remote.KindInvalidTarget, "folder is not joined", nil)
	}

	_, err = s.api.ChatlistsLeaveChatlist(ctx, &tg.ChatlistsLeaveChatlistRequest{
		Chatlist: tg.InputChatlistDialogFilter{FilterID: already.FilterID},
		Peers:    inputPeers(already.AlreadyPeers, already.Chats, already.Users),
	})
	return classify(err)
}

func (s *remoteSession) SendText(ctx context.Context, target, text string) error {
	ref, err := ParseRef(target)
	if err != nil {
		return err
	}
	if err := s.wait(ctx); err != nil {
		return err
	}
	to, err := s.recipient(ctx, ref)
	if err != nil {
		return err
	}
	_, err = to.Text(ctx, text)
	return classify(err)
}

func (s *remoteSession) SendMedia(ctx context.Context, target string, media *remote.Media) error {
	ref, err := ParseRef(target)
	if err != nil {
		return err
	}
	if err := s.wait(ctx); err != nil {
		return err
	}
	to, err := s.recipient(ctx, ref)
	if err != nil {
		return err
	}

	name := media.FileName
	if name == "" {
		name = string(media.Kind)
	}
	file, err := uploader.NewUploader(s.api).FromBytes(ctx, name, media.Data)
	if err != nil {
		return classify(fmt.Errorf("upload: %w", err))
	}

	var caption []message.StyledTextOption
	if media.Caption != "" {
		caption = append(caption, styling.Plain(media.Caption))
	}

	var option message.MediaOption
	switch media.Kind {
	case remote.MediaPhoto:
		option = message.UploadedPhoto(file, caption...)
	case remote.MediaVideo:
		option = message.Video(file, caption...)
	case remote.MediaAudio:
		option = message.Audio(file, caption...)
	case remote.MediaVoice:
		option = message.Voice(file)
	case remote.MediaAnimation:
		option = message.GIF(file, caption...)
	default:
		doc := message.UploadedDocument(file, caption...).Filename(name)
		if media.MIMEType != "" {
			doc = doc.MIME(media.MIMEType)
		}
		option = doc
	}

	_, err = to.Media(ctx, option)
	return classify(err)
}

// Report files reason against the target. Post links report the message
// itself with the link added to the comment.
func (s *remoteSession) Report(ctx context.Context, target, reason, comment string) error {
	ref, err := ParseRef(target)
	if err != nil {
		return err
	}
	if ref.Kind == RefFolder {
		return remote.NewError(remote.KindInvalidTarget, "folders cannot be reported", nil)
	}
	if err := s.wait(ctx); err != nil {
		return err
	}

	var peer tg.InputPeerClass
	switch ref.Kind {
	case RefInvite:
		peer, err = s.invitePeer(ctx, ref.Hash)
	case RefID:
		peer, err = s.peerByID(ctx, ref.ID)
	default:
		peer, err = s.resolvePeer(ctx, ref.Username)
	}
	if err != nil {
		return err
	}

	if ref.Kind == RefPost {
		return s.reportMessage(ctx, peer, ref.MsgID, reason, postComment(ref, comment))
	}

	_, err = s.api.AccountReportPeer(ctx, &tg.AccountReportPeerRequest{
		Peer:    peer,
		Reason:  ReportReason(reason),
		Message: comment,
	})
	return classify(err)
}

// maxReportSteps bounds the option menu walk of messages.report.
const maxReportSteps = 4

func (s *remoteSession) reportMessage(ctx context.Context, peer tg.InputPeerClass, msgID int, reason, comment string) error {
	var option []byte
	for range maxReportSteps {
		res, err := s.api.MessagesReport(ctx, &tg.MessagesReportRequest{
			Peer:    peer,
			ID:      []int{msgID},
			Option:  option,
			Message: comment,
		})
		if err != nil {
			return classify(err)
		}

		switch r := res.(type) {
		case *tg.ReportResultReported:
			return nil
		case *tg.ReportResultAddComment:
			option = r.Option
		case *tg.ReportResultChooseOption:
			next, ok := pickReportOption(r.Options, reason)
			if !ok {
				return remote.NewError(remote.KindInvalidTarget, "message cannot be reported", nil)
			}
			option = next
		default:
			return remote.NewError(remote.KindUnknown, fmt.Sprintf("unexpected report result %T", res), nil)
		}
	}
	return remote.NewError(remote.KindUnknown, "report menu did not complete", nil)
}

func postComment(ref Ref, comment string) string {
	if comment == "" {
		return ref.PostLink()
	}
	return comment + "\n" + ref.PostLink()
}

var reasonKeywords = map[string][]string{
	"child_abuse":      {"child"},
	"copyright":        {"copyright"},
	"fake_account":     {"fake", "impersonat"},
	"impersonation":    {"impersonat", "fake"},
	"fraud":            {"scam", "fraud"},
	"scam":             {"scam", "fraud"},
	"spam":             {"spam"},
	"harassment":       {"harass", "abuse"},
	"hate_speech":      {"hate"},
	"illegal_drugs":    {"drug", "illegal"},
	"pornography":      {"sexual", "porn"},
	"promotes_suicide": {"suicide", "self-harm"},
	"terrorism":        {"terror", "violence"},
	"violence":         {"violence"},
	"personal_details": {"personal", "private"},
}

// pickReportOption chooses the menu entry matching reason, then an "other"
// entry, then the first one.
func pickReportOption(options []tg.MessageReportOption, reason string) ([]byte, bool) {
	if len(options) == 0 {
		return nil, false
	}
	find := func(words []string) ([]byte, bool) {
		for _, o := range options {
			text := strings.ToLower(o.Text)
			for _, w := range words {
				if strings.Contains(text, w) {
					return o.Option, true
				}
			}
		}
		return nil, false
	}
	if opt, ok := find(reasonKeywords[strings.ToLower(reason)]); ok {
		return opt, true
	}
	if opt, ok := find([]string{"other"}); ok {
		return opt, true
	}
	return options[0].Option, true
}

func (s *remoteSession) ServiceMessages(ctx context.Context, limit int) ([]remote.ServiceMessage, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	dialogs, err := s.api.MessagesGetDialogs(ctx, &tg.MessagesGetDialogsRequest{
		OffsetPeer: &tg.InputPeerEmpty{},
		Limit:      100,
	})
	if err != nil {
		return nil, classify(err)
	}

	var users []tg.UserClass
	switch d := dialogs.(type) {
	case *tg.MessagesDialogs:
		users = d.Users
	case *tg.MessagesDialogsSlice:
		users = d.Users
	}

	var peer tg.InputPeerClass
	for _, u := range users {
		if user, ok := u.(*tg.User); ok && user.ID == serviceUserID {
			peer = user.AsInputPeer()
			break
		}
	}
	if peer == nil {
		return nil, nil
	}

	history, err := s.api.MessagesGetHistory(ctx, &tg.MessagesGetHistoryRequest{
		Peer:  peer,
		Limit: limit,
	})
	if err != nil {
		return nil, classify(err)
	}

	var raw []tg.MessageClass
	switch h := history.(type) {
	case *tg.MessagesMessages:
		raw = h.Messages
	case *tg.MessagesMessagesSlice:
		raw = h.Messages
	case *tg.MessagesChannelMessages:
		raw = h.Messages
	}

	out := make([]remote.ServiceMessage, 0, len(raw))
	for _, m := range raw {
		msg, ok := m.(*tg.Message)
		if !ok {
			continue
		}
		out = append(out, remote.ServiceMessage{
			ID:   msg.ID,
			Text: msg.Message,
			Date: time.Unix(int64(msg.Date), 0),
		})
	}
	return out, nil
}

func (s *remoteSession) Close() error {
	return s.stop()
}

func (s *remoteSession) resolve(ctx context.Context, username string) (*tg.ContactsResolvedPeer, error) {
	resolved, err := s.api.ContactsResolveUsername(ctx, &tg.ContactsResolveUsernameRequest{
		Username: username,
	})
	if err != nil {
		return nil, classify(err)
	}
	return resolved, nil
}

func (s *remoteSession) resolveChat(ctx context.Context, username string) (tg.ChatClass, error) {
	resolved, err := s.resolve(ctx, username)
	if err != nil {
		return nil, err
	}
	for _, chat := range resolved.Chats {
		switch c := chat.(type) {
		case *tg.Channel, *tg.Chat:
			return c, nil
		}
	}
	return nil, remote.NewError(remote.KindInvalidTarget, "@"+username+" is not a group or channel", nil)
}

func (s *remoteSession) resolvePeer(ctx context.Context, username string) (tg.InputPeerClass, error) {
	resolved, err := s.resolve(ctx, username)
	if err != nil {
		return nil, err
	}
	for _, chat := range resolved.Chats {
		switch c := chat.(type) {
		case *tg.Channel:
			return c.AsInputPeer(), nil
		case *tg.Chat:
			return c.AsInputPeer(), nil
		}
	}
	for _, u := range resolved.Users {
		if user, ok := u.(*tg.User); ok {
			return user.AsInputPeer(), nil
		}
	}
	return nil, remote.NewError(remote.KindInvalidTarget, "@"+username+" not found", nil)
}

// recipient builds a send request for ref. Invite links must point at a
// chat the account already belongs to.
func (s *remoteSession) recipient(ctx context.Context, ref Ref) (*message.RequestBuilder, error) {
	switch ref.Kind {
	case RefUsername, RefPost:
		return s.sender.Resolve("@" + ref.Username), nil
	case RefInvite:
		peer, err := s.invitePeer(ctx, ref.Hash)
		if err != nil {
			return nil, err
		}
		return s.sender.To(peer), nil
	case RefID:
		peer, err := s.peerByID(ctx, ref.ID)
		if err != nil {
			return nil, err
		}
		return s.sender.To(peer), nil
	default:
		return nil, remote.NewError(remote.KindInvalidTarget, "messages cannot be sent to a folder", nil)
	}
}

func (s *remoteSession) invitePeer(ctx context.Context, hash string) (tg.InputPeerClass, error) {
	invite, err := s.api.MessagesCheckChatInvite(ctx, hash)
	if err != nil {
		return nil, classify(err)
	}

	var chat tg.ChatClass
	switch inv := invite.(type) {
	case *tg.ChatInviteAlready:
		chat = inv.Chat
	case *tg.ChatInvitePeek:
		chat = inv.Chat
	default:
		return nil, remote.NewError(remote.KindInvalidTarget, "account is not a member of the invited chat", nil)
	}

	switch c := chat.(type) {
	case *tg.Channel:
		return c.AsInputPeer(), nil
	case *tg.Chat:
		return c.AsInputPeer(), nil
	default:
		return nil, remote.NewError(remote.KindInvalidTarget, "invite does not lead to an accessible chat", nil)
	}
}

// peerByID finds a numeric ID among the account's dialogs, which is where
// the access hash needed to address it comes from.
func (s *remoteSession) peerByID(ctx context.Context, id int64) (tg.InputPeerClass, error) {
	iter := dialogs.NewQueryBuilder(s.api).GetDialogs().BatchSize(100).Iter()
	for iter.Next(ctx) {
		elem := iter.Value()
		if matchesID(elem.Dialog.GetPeer(), id) {
			return elem.Peer, nil
		}
	}
	if err := iter.Err(); err != nil {
		return nil, classify(err)
	}
	return nil, remote.NewError(remote.KindInvalidTarget, fmt.Sprintf("%d is not among the account's chats", id), nil)
}

func inputPeers(peers []tg.PeerClass, chats []tg.ChatClass, users []tg.UserClass) []tg.InputPeerClass {
	channels := make(map[int64]*tg.Channel)
	basic := make(map[int64]*tg.Chat)
	for _, chat := range chats {
		switch c := chat.(type) {
		case *tg.Channel:
			channels[c.ID] = c
		case *tg.Chat:
			basic[c.ID] = c
		}
	}
	people := make(map[int64]*tg.User)
	for _, u := range users {
		if user, ok := u.(*tg.User); ok {
			people[user.ID] = user
		}
	}

	out := make([]tg.InputPeerClass, 0, len(peers))
	for _, p := range peers {
		switch peer := p.(type) {
		case *tg.PeerChannel:
			if c, ok := channels[peer.ChannelID]; ok {
				out = append(out, c.AsInputPeer())
			}
		case *tg.PeerChat:
			if c, ok := basic[peer.ChatID]; ok {
				out = append(out, c.AsInputPeer())
			}
		case *tg.PeerUser:
			if u, ok := people[peer.UserID]; ok {
				out = append(out, u.AsInputPeer())
			}
		}
	}
	return out
}

// ReportReason maps the wizard's reason keys onto report reason constructors.
func ReportReason(reason string) tg.ReportReasonClass {
	switch strings.ToLower(reason) {
	case "spam", "scam", "fraud":
		return &tg.InputReportReasonSpam{}
	case "violence", "harassment", "hate_speech", "terrorism", "promotes_suicide":
		return &tg.InputReportReasonViolence{}
	case "pornography":
		return &tg.InputReportReasonPornography{}
	case "child_abuse":
		return &tg.InputReportReasonChildAbuse{}
	case "copyright":
		return &tg.InputReportReasonCopyright{}
	case "fake", "fake_account", "impersonation":
		return &tg.InputReportReasonFake{}
	case "illegal_drugs":
		return &tg.InputReportReasonIllegalDrugs{}
	case "personal_details":
		return &tg.InputReportReasonPersonalDetails{}
	default:
		return &tg.InputReportReasonOther{}
	}
}
