package logging

import (
	"context"
	"log/slog"
	"strings"
)

// RedactedValue is the placeholder written in place of sensitive data.
const RedactedValue = "[REDACTED]"

// sensitiveKeys marks attribute keys whose values must never reach a sink.
// Matching is by substring on the lowercased key, so passphrase also covers
// cert_passphrase and the like.
var sensitiveKeys = []string{
	"passphrase",
	"password",
	"secret",
	"token",
	"credentials",
	"authorization",
	"private_key",
	"pin",
}

// Redact wraps a handler so that sensitive attributes, and string values
// that look like PEM material, are replaced with RedactedValue. The
// credential bridge never logs its passphrase; this wrapper keeps that true
// for every future call site as well.
func Redact(handler slog.Handler) slog.Handler {
	return &redactor{handler: handler}
}

type redactor struct {
	handler slog.Handler
}

// Enabled implements slog.Handler.
func (r *redactor) Enabled(ctx context.Context, level slog.Level) bool {
	return r.handler.Enabled(ctx, level)
}

// Handle implements slog.Handler, rewriting sensitive attributes.
func (r *redactor) Handle(ctx context.Context, record slog.Record) error {
	clean := slog.Record{
		Time:    record.Time,
		Level:   record.Level,
		Message: record.Message,
		PC:      record.PC,
	}
	record.Attrs(func(attr slog.Attr) bool {
		clean.AddAttrs(redactAttr(attr))
		return true
	})
	return r.handler.Handle(ctx, clean)
}

// WithAttrs implements slog.Handler.
func (r *redactor) WithAttrs(attrs []slog.Attr) slog.Handler {
	clean := make([]slog.Attr, len(attrs))
	for i, attr := range attrs {
		clean[i] = redactAttr(attr)
	}
	return &redactor{handler: r.handler.WithAttrs(clean)}
}

// WithGroup implements slog.Handler.
func (r *redactor) WithGroup(name string) slog.Handler {
	return &redactor{handler: r.handler.WithGroup(name)}
}

func redactAttr(attr slog.Attr) slog.Attr {
	if isSensitiveKey(attr.Key) {
		return slog.String(attr.Key, RedactedValue)
	}

	switch attr.Value.Kind() {
	case slog.KindGroup:
		group := attr.Value.Group()
		clean := make([]slog.Attr, len(group))
		for i, member := range group {
			clean[i] = redactAttr(member)
		}
		return slog.Attr{Key: attr.Key, Value: slog.GroupValue(clean...)}
	case slog.KindString:
		if looksLikePEM(attr.Value.String()) {
			return slog.String(attr.Key, RedactedValue)
		}
	}

	return attr
}

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, sensitive := range sensitiveKeys {
		if strings.Contains(lower, sensitive) {
			return true
		}
	}
	return false
}

func looksLikePEM(value string) bool {
	return strings.Contains(value, "-----BEGIN ")
}
