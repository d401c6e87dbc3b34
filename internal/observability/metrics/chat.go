package metrics

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"time"
)

// Chat exchange results.
const (
	ResultOK                  = "ok"
	ResultProviderFailed      = "provider_failed"
	ResultRateLimited         = "rate_limited"
	ResultInsufficientCredits = "insufficient_credits"
	ResultRejected            = "rejected"
)

// ChatExchange describes one attempt to relay a prompt upstream.
type ChatExchange struct {
	Provider string
	Result   string
	Duration time.Duration
	Charged  int64
	Err      error
}

// RecordChat emits chat.exchange, chat.latency and chat.credits_charged.
func RecordChat(sink Sink, ex ChatExchange) {
	if sink == nil {
		return
	}
	tags := Tags{"provider": ex.Provider, "result": ex.Result}
	if ex.Err != nil && ex.Result == ResultProviderFailed {
		tags["error_class"] = ErrorClass(ex.Err)
	}

	sink.Count("chat.exchange", 1, tags)
	if ex.Duration > 0 {
		sink.Timing("chat.latency", ex.Duration, Tags{"provider": ex.Provider, "result": ex.Result})
	}
	if ex.Charged > 0 && ex.Result == ResultOK {
		sink.Count("chat.credits_charged", ex.Charged, Tags{"provider": ex.Provider})
	}
}

// ErrorClass names the innermost error type in snake case, e.g. "url_error".
// Context expiry is reported as "timeout" or "canceled".
func ErrorClass(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	}

	for {
		next := errors.Unwrap(err)
		if next == nil {
			break
		}
		err = next
	}
	t := reflect.TypeOf(err)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	name := t.Name()
	if name == "" {
		return "unknown"
	}
	if pkg := t.PkgPath(); pkg != "" {
		name = pkg[strings.LastIndex(pkg, "/")+1:] + "_" + name
	}
	return toSnake(name)
}

func toSnake(s string) string {
	var b strings.Builder
	prevLower := false
	for _, r := range s {
		upper := r >= 'A' && r <= 'Z'
		if upper && prevLower {
			b.WriteByte('_')
		}
		if upper {
			r += 'a' - 'A'
		}
		b.WriteRune(r)
		prevLower = (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
	}
	return b.String()
}
