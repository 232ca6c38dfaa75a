package ops

import (
	"context"
	"fmt"
	"strings"

	"github.com/hpungsan/tratativa/internal/checklist"
	"github.com/hpungsan/tratativa/internal/errors"
)

// ExtractInput replaces the pasted text.
type ExtractInput struct {
	RawText string `json:"raw_text"`
}

// Extract stores the pasted text, replaces the contacts with the ones
// extracted from it and returns the new snapshot. Blank text clears the contacts.
func Extract(ctx context.Context, env Env, input ExtractInput) (*SnapshotOutput, error) {
	if len(input.RawText) > MaxRawTextBytes {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("raw_text exceeds %d bytes", MaxRawTextBytes))
	}

	fd, err := LoadFormData(ctx, env)
	if err != nil {
		return nil, err
	}

	fd.RawText = input.RawText
	if strings.TrimSpace(input.RawText) == "" {
		fd.Contacts = []checklist.Contact{}
	} else {
		fd.Contacts = checklist.ExtractContacts(input.RawText)
	}

	if err := saveFormData(ctx, env, fd); err != nil {
		return nil, err
	}
	return snapshotOf(ctx, env, fd)
}
