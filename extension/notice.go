package extension

import (
	"context"
	"sync"

	"github.com/kbukum/pipegen/errors"
	"github.com/kbukum/pipegen/logger"
)

// Notice is a one-shot message shown to the user.
type Notice struct {
	Severity  errors.Severity  `json:"severity" yaml:"severity"`
	Message   string           `json:"message" yaml:"message"`
	Code      errors.ErrorCode `json:"code,omitempty" yaml:"code,omitempty"`
	Operation string           `json:"operation,omitempty" yaml:"operation,omitempty"`
}

// NoticeFromError converts a failure into a notice.
func NoticeFromError(op string, err error) Notice {
	n := Notice{Severity: errors.SeverityOf(err), Message: err.Error(), Operation: op}
	if appErr, ok := errors.AsAppError(err); ok {
		n.Message = appErr.Message
		n.Code = appErr.Code
	}
	return n
}

// Notifier delivers notices to the user.
type Notifier interface {
	Notify(ctx context.Context, n Notice)
}

// NotifierFunc adapts a function into a Notifier.
type NotifierFunc func(ctx context.Context, n Notice)

func (f NotifierFunc) Notify(ctx context.Context, n Notice) { f(ctx, n) }

// LogNotifier writes notices to a logger at their severity.
type LogNotifier struct {
	Log *logger.Logger
}

func (l LogNotifier) Notify(ctx context.Context, n Notice) {
	log := l.Log
	if log == nil {
		log = logger.Get("notice")
	}
	fields := logger.Fields(logger.FieldOperation, n.Operation, "code", string(n.Code))
	switch n.Severity {
	case errors.SeverityInfo:
		log.WithContext(ctx).Info(n.Message, fields)
	case errors.SeverityWarning:
		log.WithContext(ctx).Warn(n.Message, fields)
	default:
		log.WithContext(ctx).Error(n.Message, fields)
	}
}

// Inbox keeps the most recent notices in memory, oldest first.
type Inbox struct {
	mu      sync.Mutex
	limit   int
	notices []Notice
}

// NewInbox creates an Inbox holding up to limit notices.
func NewInbox(limit int) *Inbox {
	if limit <= 0 {
		limit = 50
	}
	return &Inbox{limit: limit}
}

func (b *Inbox) Notify(_ context.Context, n Notice) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notices = append(b.notices, n)
	if over := len(b.notices) - b.limit; over > 0 {
		b.notices = append([]Notice(nil), b.notices[over:]...)
	}
}

// Drain returns and clears the held notices.
func (b *Inbox) Drain() []Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.notices
	b.notices = nil
	if out == nil {
		out = []Notice{}
	}
	return out
}

// multiNotifier fans a notice out to several notifiers.
type multiNotifier []Notifier

func (m multiNotifier) Notify(ctx context.Context, n Notice) {
	for _, nt := range m {
		nt.Notify(ctx, n)
	}
}

// Notifiers combines notifiers into one.
func Notifiers(ns ...Notifier) Notifier {
	return multiNotifier(ns)
}
