// Package tokenizer provides the GPT-2 byte-pair codec used by graph engines
// that ship without a tokenizer of their own.
package tokenizer

import (
	"bufio"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	app_errors "neptune-ai/backend/internal/errors"
)

const (
	// GPT2Encoding is tiktoken's name for the GPT-2 ranks.
	GPT2Encoding = "r50k_base"
	// GPT2EOS is <|endoftext|>, GPT-2's end-of-sequence and padding id.
	GPT2EOS = 50256
	// GPT2VocabSize counts the 50256 merges plus <|endoftext|>.
	GPT2VocabSize = 50257
)

var allSpecial = []string{"all"}

// tiktoken keeps the loader in a package global.
var loaderMu sync.Mutex

// GPT2 is an llm.TokenCodec over the GPT-2 vocabulary.
type GPT2 struct {
	enc *tiktoken.Tiktoken
}

// NewGPT2 loads the GPT-2 ranks. When vocabDir is set the ranks file is read
// from there; otherwise tiktoken's cache or download is used.
func NewGPT2(vocabDir string) (*GPT2, error) {
	loaderMu.Lock()
	defer loaderMu.Unlock()

	if vocabDir != "" {
		tiktoken.SetBpeLoader(&DirLoader{Dir: vocabDir})
	} else {
		tiktoken.SetBpeLoader(tiktoken.NewDefaultBpeLoader())
	}
	enc, err := tiktoken.GetEncoding(GPT2Encoding)
	if err != nil {
		return nil, fmt.Errorf("%w: load %s ranks: %v", app_errors.ErrCodec, GPT2Encoding, err)
	}
	return &GPT2{enc: enc}, nil
}

func (g *GPT2) EOSTokenID() int { return GPT2EOS }

// Encode treats special-token text in the input as the special id, the way
// the reference GPT-2 tokenizer does.
func (g *GPT2) Encode(_ context.Context, text string) ([]int, error) {
	return g.enc.Encode(text, allSpecial, nil), nil
}

func (g *GPT2) Decode(_ context.Context, ids []int, skipSpecial bool) (string, error) {
	kept := make([]int, 0, len(ids))
	for _, id := range ids {
		if id < 0 || id >= GPT2VocabSize {
			return "", fmt.Errorf("%w: token id %d outside vocabulary", app_errors.ErrCodec, id)
		}
		if skipSpecial && id == GPT2EOS {
			continue
		}
		kept = append(kept, id)
	}
	return g.enc.Decode(kept), nil
}

// DirLoader is a tiktoken.BpeLoader that reads ranks files from a local
// directory instead of downloading them.
type DirLoader struct {
	Dir string
}

// LoadTiktokenBpe receives the ranks URL and loads the file with the same
// base name from Dir.
func (l *DirLoader) LoadTiktokenBpe(tiktokenBpeFile string) (map[string]int, error) {
	name := path.Base(tiktokenBpeFile)
	f, err := os.Open(filepath.Join(l.Dir, name))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseRanks(f)
}

// ParseRanks reads a .tiktoken file: one "<base64 token> <rank>" per line.
func ParseRanks(r io.Reader) (map[string]int, error) {
	ranks := make(map[string]int)
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 2 {
			return nil, fmt.Errorf("line %d: expected token and rank", line)
		}
		token, err := base64.StdEncoding.DecodeString(fields[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rank, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		ranks[string(token)] = rank
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return ranks, nil
}
