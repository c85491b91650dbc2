package llamacpp

import (
	"context"
	"fmt"

	app_errors "neptune-ai/backend/internal/errors"
)

// Vocabulary is an llm.TokenCodec that defers to the server's tokenizer.
type Vocabulary struct {
	client *Client
	eosID  int
}

func NewVocabulary(client *Client, eosID int) *Vocabulary {
	return &Vocabulary{client: client, eosID: eosID}
}

func (v *Vocabulary) EOSTokenID() int { return v.eosID }

func (v *Vocabulary) Encode(ctx context.Context, text string) ([]int, error) {
	ids, err := v.client.Tokenize(ctx, text, true)
	if err != nil {
		return nil, fmt.Errorf("%w: tokenize: %v", app_errors.ErrCodec, err)
	}
	return ids, nil
}

func (v *Vocabulary) Decode(ctx context.Context, ids []int, skipSpecial bool) (string, error) {
	if skipSpecial {
		ids = withoutID(ids, v.eosID)
	}
	if len(ids) == 0 {
		return "", nil
	}
	text, err := v.client.Detokenize(ctx, ids)
	if err != nil {
		return "", fmt.Errorf("%w: detokenize: %v", app_errors.ErrCodec, err)
	}
	return text, nil
}

func withoutID(ids []int, drop int) []int {
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if id != drop {
			out = append(out, id)
		}
	}
	return out
}
