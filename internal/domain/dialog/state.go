package dialog

import (
	"context"
	"strconv"
	"time"
)

// Kind names a multi-step conversation.
type Kind string

const (
	KindLogin    Kind = "login"
	KindSend     Kind = "send"
	KindJoin     Kind = "join"
	KindLeave    Kind = "leave"
	KindReport   Kind = "report"
	KindAdmin    Kind = "admin_input"
	KindSettings Kind = "settings_input"
)

// Step is the position inside a flow's step table.
type Step string

// Handle is an external resource held across steps, such as an unauthorised
// login connection. It is released whenever the dialog ends for any reason.
type Handle interface {
	Release(ctx context.Context) error
}

// State is the per-user conversation record.
type State struct {
	UserID    int64
	Kind      Kind
	Step      Step
	Data      map[string]any
	Handle    Handle
	StartedAt time.Time
	UpdatedAt time.Time
}

func (s *State) Set(key string, value any) {
	if s.Data == nil {
		s.Data = make(map[string]any)
	}
	s.Data[key] = value
}

func (s *State) String(key string) string {
	v, _ := s.Data[key].(string)
	return v
}

// Int reads ints stored directly or as decimal strings.
func (s *State) Int(key string) int {
	switch v := s.Data[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(v)
		return n
	}
	return 0
}

func (s *State) Int64(key string) int64 {
	switch v := s.Data[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	}
	return 0
}

// Input is one user message or button press routed to the active dialog.
type Input struct {
	Text string
	// Choice is set for inline button presses.
	Choice     string
	Attachment *Attachment
	// ForwardedChatID is the source chat of a forwarded channel post.
	ForwardedChatID int64
}

// Attachment references a file already held by the chat platform.
type Attachment struct {
	Kind     string
	FileID   string
	FileName string
	MIMEType string
	Caption  string
}

// Button is an inline keyboard button.
type Button struct {
	Text string
	Data string
}

// Reply is what the bot sends back after a step.
type Reply struct {
	Text    string
	Buttons [][]Button
}

type action int

const (
	actionStay action = iota
	actionNext
	actionFinish
	actionAbort
)

// Result tells the engine how to move after a step.
type Result struct {
	action action
	next   Step
	Reply  Reply
	after  func(ctx context.Context)
}

// Stay keeps the current step, typically after a validation failure.
func Stay(text string) Result {
	return Result{action: actionStay, Reply: Reply{Text: text}}
}

// Next advances to step.
func Next(step Step, text string) Result {
	return Result{action: actionNext, next: step, Reply: Reply{Text: text}}
}

// Finish ends the dialog successfully.
func Finish(text string) Result {
	return Result{action: actionFinish, Reply: Reply{Text: text}}
}

// Abort ends the dialog without completing it.
func Abort(text string) Result {
	return Result{action: actionAbort, Reply: Reply{Text: text}}
}

func (r Result) WithButtons(rows [][]Button) Result {
	r.Reply.Buttons = rows
	return r
}

// Then schedules fn to run after the state has been stored or cleared and
// the user's lock released.
func (r Result) Then(fn func(ctx context.Context)) Result {
	r.after = fn
	return r
}
