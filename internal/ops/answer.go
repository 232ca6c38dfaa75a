package ops

import (
	"context"
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/hpungsan/tratativa/internal/checklist"
	"github.com/hpungsan/tratativa/internal/errors"
)

// AnswerInput sets answers by question id. A blank value clears the answer.
type AnswerInput struct {
	Answers map[string]string `json:"answers"`
}

// Answer applies the answers, persists the session and returns the new snapshot.
// Unknown question ids reject the whole input.
func Answer(ctx context.Context, env Env, input AnswerInput) (*SnapshotOutput, error) {
	if len(input.Answers) == 0 {
		return nil, errors.NewInvalidRequest("answers is required")
	}

	ids := make([]string, 0, len(input.Answers))
	for id := range input.Answers {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if !checklist.IsKnownQuestion(id) {
			return nil, errors.NewUnknownQuestion(id)
		}
		if utf8.RuneCountInString(input.Answers[id]) > MaxAnswerChars {
			return nil, errors.NewInvalidRequest(
				fmt.Sprintf("answer for %s exceeds %d characters", id, MaxAnswerChars))
		}
	}

	fd, err := LoadFormData(ctx, env)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		fd.Answers = fd.Answers.With(id, input.Answers[id])
	}

	if err := saveFormData(ctx, env, fd); err != nil {
		return nil, err
	}
	return snapshotOf(ctx, env, fd)
}
