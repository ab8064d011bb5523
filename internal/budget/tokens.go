package budget

import (
	"fmt"
	"math"
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

// Encoding is the tokenizer vocabulary shared by the completion models we target.
const Encoding = "cl100k_base"

// DecodeFailed is returned instead of text when the truncated token sequence can
// not be decoded back into valid UTF-8.
const DecodeFailed = "failed to decode tokens"

// maxSeamPasses bounds how often Reduce trims the tail again when BPE merges across
// the head/tail seam push the re-encoded output over budget.
const maxSeamPasses = 8

// Encoder turns text into token ids and back.
type Encoder interface {
	EncodeOrdinary(text string) []int
	Decode(tokens []int) string
}

var loaderOnce sync.Once

// NewEncoder returns the cl100k_base encoder backed by the embedded BPE ranks, so
// no download happens at runtime.
func NewEncoder() (Encoder, error) {
	loaderOnce.Do(func() {
		tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
	})

	enc, err := tiktoken.GetEncoding(Encoding)
	if err != nil {
		return nil, fmt.Errorf("error loading %s encoding: %w", Encoding, err)
	}
	return enc, nil
}

// TokenReducer keeps a head and a tail share of a text's tokens when it exceeds a
// token budget.
type TokenReducer struct {
	enc Encoder
}

// NewTokenReducer builds a TokenReducer over the given encoder.
func NewTokenReducer(enc Encoder) *TokenReducer {
	return &TokenReducer{enc: enc}
}

// Count returns the number of tokens in text.
func (r *TokenReducer) Count(text string) int {
	return len(r.enc.EncodeOrdinary(text))
}

// Reduce returns text unchanged when it encodes to fewer than maxTokens tokens.
// Otherwise it keeps the first ceil(maxTokens*split) tokens and fills the rest of
// the budget from the end of the text. A cut that leaves invalid UTF-8 yields
// DecodeFailed.
func (r *TokenReducer) Reduce(text string, maxTokens int, split float64) string {
	tokens := r.enc.EncodeOrdinary(text)
	if len(tokens) < maxTokens {
		return text
	}
	if maxTokens <= 0 {
		return ""
	}

	nHead, nTail := tokenShares(maxTokens, split)

	for pass := 0; pass < maxSeamPasses; pass++ {
		head := r.alignHead(tokens[:nHead])
		tail := r.alignTail(tokens[len(tokens)-nTail:])

		out := r.enc.Decode(concat(head, tail))
		if !utf8.ValidString(out) {
			return DecodeFailed
		}

		over := len(r.enc.EncodeOrdinary(out)) - maxTokens
		if over <= 0 {
			return out
		}
		if nTail > over {
			nTail -= over
			continue
		}
		nHead = max(nHead-(over-nTail), 0)
		nTail = 0
	}

	return DecodeFailed
}

// tokenShares splits a token budget, rounding the head share up.
func tokenShares(limit int, split float64) (head, tail int) {
	if math.IsNaN(split) || split < 0 {
		split = 0
	}
	if split > 1 {
		split = 1
	}
	head = int(math.Ceil(float64(limit) * split))
	head = min(max(head, 0), limit)
	return head, limit - head
}

// alignHead drops trailing tokens that hold only the first bytes of a multi-byte
// rune. A rune spans at most four tokens, so at most three are dropped.
func (r *TokenReducer) alignHead(head []int) []int {
	for i := 0; i < utf8.UTFMax && len(head) > 0; i++ {
		if utf8.ValidString(r.enc.Decode(head)) {
			return head
		}
		head = head[:len(head)-1]
	}
	return head
}

// alignTail drops leading tokens that hold only the last bytes of a multi-byte rune.
func (r *TokenReducer) alignTail(tail []int) []int {
	for i := 0; i < utf8.UTFMax && len(tail) > 0; i++ {
		if utf8.ValidString(r.enc.Decode(tail)) {
			return tail
		}
		tail = tail[1:]
	}
	return tail
}

func concat(head, tail []int) []int {
	out := make([]int, 0, len(head)+len(tail))
	out = append(out, head...)
	return append(out, tail...)
}
