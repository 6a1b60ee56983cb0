package mtproto

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/gotd/td/tg"

	"github.com/Devensh22345/account-manage/internal/domain/remote"
)

// RefKind tells how a user supplied reference must be resolved.
type RefKind int

const (
	RefUsername RefKind = iota
	RefInvite
	RefFolder
	RefPost
	// RefID is a numeric peer ID in Bot API form: users are positive, basic
	// groups negative and channels carry the -100 prefix.
	RefID
)

// Ref is a parsed chat, invite, folder or post reference.
type Ref struct {
	Kind     RefKind
	Username string
	Hash     string
	Slug     string
	MsgID    int
	ID       int64
}

var (
	usernamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]{2,31}$`)
	peerIDPattern   = regexp.MustCompile(`^-?[0-9]{5,20}$`)
)

var linkHosts = []string{"t.me/", "telegram.me/", "telegram.dog/"}

// ParseRef accepts @name, name, numeric IDs, t.me/name, t.me/+hash,
// t.me/joinchat/hash, t.me/addlist/slug and t.me/name/123 with or without
// scheme.
func ParseRef(raw string) (Ref, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimPrefix(s, "www.")

	for _, host := range linkHosts {
		if strings.HasPrefix(strings.ToLower(s), host) {
			return parsePath(s[len(host):], raw)
		}
	}

	if peerIDPattern.MatchString(s) {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil || id == 0 {
			return Ref{}, invalidRef(raw)
		}
		return Ref{Kind: RefID, ID: id}, nil
	}

	name := strings.TrimPrefix(s, "@")
	if usernamePattern.MatchString(name) {
		return Ref{Kind: RefUsername, Username: name}, nil
	}
	return Ref{}, invalidRef(raw)
}

func parsePath(path, raw string) (Ref, error) {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	parts := strings.Split(strings.Trim(path, "/"), "/")

	switch {
	case len(parts) == 1 && strings.HasPrefix(parts[0], "+") && len(parts[0]) > 1:
		return Ref{Kind: RefInvite, Hash: parts[0][1:]}, nil
	case len(parts) == 2 && parts[0] == "joinchat" && parts[1] != "":
		return Ref{Kind: RefInvite, Hash: parts[1]}, nil
	case len(parts) == 2 && parts[0] == "addlist" && parts[1] != "":
		return Ref{Kind: RefFolder, Slug: parts[1]}, nil
	case len(parts) == 2 && parts[0] == "s" && usernamePattern.MatchString(parts[1]):
		return Ref{Kind: RefUsername, Username: parts[1]}, nil
	case len(parts) == 1 && usernamePattern.MatchString(parts[0]):
		return Ref{Kind: RefUsername, Username: parts[0]}, nil
	case len(parts) == 2 && usernamePattern.MatchString(parts[0]):
		id, err := strconv.Atoi(parts[1])
		if err != nil || id <= 0 {
			return Ref{}, invalidRef(raw)
		}
		return Ref{Kind: RefPost, Username: parts[0], MsgID: id}, nil
	}
	return Ref{}, invalidRef(raw)
}

func invalidRef(raw string) error {
	return remote.NewError(remote.KindInvalidTarget, "unrecognized reference "+strconv.Quote(raw), nil)
}

// PostLink is the public link of a post reference.
func (r Ref) PostLink() string {
	return "https://t.me/" + r.Username + "/" + strconv.Itoa(r.MsgID)
}

const channelIDOffset int64 = 1000000000000

// matchesID reports whether peer is the Bot API style id.
func matchesID(peer tg.PeerClass, id int64) bool {
	switch p := peer.(type) {
	case *tg.PeerUser:
		return p.UserID == id
	case *tg.PeerChat:
		return -p.ChatID == id
	case *tg.PeerChannel:
		return -(channelIDOffset+p.ChannelID) == id
	default:
		return false
	}
}
