package ops

import (
	"context"

	"github.com/atotto/clipboard"
	"go.uber.org/zap"

	"github.com/hpungsan/tratativa/internal/errors"
)

var clipboardWriteAll = clipboard.WriteAll

// CopyTarget names what Copy puts on the clipboard.
type CopyTarget string

const (
	CopyCode    CopyTarget = "code"
	CopyComment CopyTarget = "comment"
	CopyEmails  CopyTarget = "emails"
)

// CopyInput contains parameters for the Copy operation.
type CopyInput struct {
	Target CopyTarget `json:"target"`
}

// CopyOutput contains the result of the Copy operation.
type CopyOutput struct {
	Target CopyTarget `json:"target"`
	Text   string     `json:"text"`
}

// Copy puts the generated code, comment or the contact emails on the system
// clipboard. On failure the error carries CLIPBOARD_UNAVAILABLE and the output
// still holds the text so the caller can show it instead. Nothing is written
// to the store.
func Copy(ctx context.Context, env Env, input CopyInput) (*CopyOutput, error) {
	snap, err := Snapshot(ctx, env)
	if err != nil {
		return nil, err
	}

	var text string
	switch input.Target {
	case CopyCode:
		text = snap.Output.Code
	case CopyComment:
		text = snap.Output.Comment
	case CopyEmails:
		text = snap.Emails
	default:
		return nil, errors.NewInvalidRequest("target must be one of: code, comment, emails")
	}
	if text == "" {
		return nil, errors.NewInvalidRequest("nothing to copy: " + string(input.Target) + " is empty")
	}

	out := &CopyOutput{Target: input.Target, Text: text}
	if err := clipboardWriteAll(text); err != nil {
		env.logger().Warn("clipboard write failed",
			zap.String("target", string(input.Target)), zap.Error(err))
		return out, errors.NewClipboardUnavailable(string(input.Target), err)
	}
	return out, nil
}
