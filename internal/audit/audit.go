package audit

import (
	"context"

	"github.com/talkroom/chat-room-service/pkg/log"
)

// Audit actions.
const (
	ActionLogin      = "user.login"
	ActionCreateRoom = "room.create"
	ActionSaveChat   = "chat.create"
)

// Field constants for audit entries.
const (
	FieldAction = "action"
	FieldDetail = "detail"
)

// Log emits a structured audit log entry via the context logger.
func Log(ctx context.Context, action, nickname, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldNickname, nickname).
		Msg(msg)
}

// LogWithDetail emits an audit log with an extra detail field.
func LogWithDetail(ctx context.Context, action, nickname, detail, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldNickname, nickname).
		Str(FieldDetail, detail).
		Msg(msg)
}
