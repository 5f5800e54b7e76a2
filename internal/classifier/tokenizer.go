package classifier

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// maxSeqLen is the DistilBERT position limit, including [CLS] and [SEP].
const maxSeqLen = 512

// tokenizer performs uncased BERT WordPiece tokenization.
type tokenizer struct {
	ids   map[string]int64
	unkID int64
	clsID int64
	sepID int64
}

// newTokenizer reads a vocab.txt file where the 0-indexed line number is the
// token ID.
func newTokenizer(path string) (*tokenizer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("vocab: %w", err)
	}
	defer f.Close()
	return readVocab(bufio.NewScanner(f))
}

func readVocab(scanner *bufio.Scanner) (*tokenizer, error) {
	ids := make(map[string]int64, 32000)
	var n int64
	for scanner.Scan() {
		ids[scanner.Text()] = n
		n++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("vocab: read error: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("vocab: file is empty")
	}

	t := &tokenizer{ids: ids}
	specials := []struct {
		name string
		dest *int64
	}{
		{"[UNK]", &t.unkID},
		{"[CLS]", &t.clsID},
		{"[SEP]", &t.sepID},
	}
	for _, s := range specials {
		id, ok := ids[s.name]
		if !ok {
			return nil, fmt.Errorf("vocab: missing special token %s", s.name)
		}
		*s.dest = id
	}
	return t, nil
}

// encode returns input IDs framed by [CLS]/[SEP] and an all-ones attention
// mask, truncated to maxSeqLen. No padding is added.
func (t *tokenizer) encode(text string) (ids, mask []int64) {
	var pieces []string
	for _, word := range basicTokenize(text) {
		pieces = append(pieces, t.wordpiece(word)...)
		if len(pieces) >= maxSeqLen-2 {
			break
		}
	}
	if len(pieces) > maxSeqLen-2 {
		pieces = pieces[:maxSeqLen-2]
	}

	ids = make([]int64, 0, len(pieces)+2)
	ids = append(ids, t.clsID)
	for _, p := range pieces {
		ids = append(ids, t.lookup(p))
	}
	ids = append(ids, t.sepID)

	mask = make([]int64, len(ids))
	for i := range mask {
		mask[i] = 1
	}
	return ids, mask
}

func (t *tokenizer) lookup(token string) int64 {
	if id, ok := t.ids[token]; ok {
		return id
	}
	return t.unkID
}

// wordpiece splits one basic token into the longest matching subwords.
// A word that cannot be fully covered becomes [UNK].
func (t *tokenizer) wordpiece(word string) []string {
	runes := []rune(word)
	if len(runes) > 200 {
		return []string{"[UNK]"}
	}

	var out []string
	for start := 0; start < len(runes); {
		end := len(runes)
		var match string
		for end > start {
			sub := string(runes[start:end])
			if start > 0 {
				sub = "##" + sub
			}
			if _, ok := t.ids[sub]; ok {
				match = sub
				break
			}
			end--
		}
		if match == "" {
			return []string{"[UNK]"}
		}
		out = append(out, match)
		start = end
	}
	return out
}

// basicTokenize cleans, lowercases and strips accents, then splits on
// whitespace and punctuation. CJK ideographs become single tokens.
func basicTokenize(text string) []string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case r == 0 || r == 0xFFFD || (unicode.IsControl(r) && !unicode.IsSpace(r)):
			continue
		case isCJK(r):
			b.WriteRune(' ')
			b.WriteRune(r)
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}

	var stripped strings.Builder
	for _, r := range norm.NFD.String(strings.ToLower(b.String())) {
		if !unicode.In(r, unicode.Mn) {
			stripped.WriteRune(r)
		}
	}

	var tokens []string
	for _, word := range strings.Fields(stripped.String()) {
		tokens = append(tokens, splitPunctuation(word)...)
	}
	return tokens
}

func splitPunctuation(word string) []string {
	var tokens []string
	var current strings.Builder
	for _, r := range word {
		if !isPunctuation(r) {
			current.WriteRune(r)
			continue
		}
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
		tokens = append(tokens, string(r))
	}
	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}
	return tokens
}

func isPunctuation(r rune) bool {
	if (r >= 33 && r <= 47) || (r >= 58 && r <= 64) ||
		(r >= 91 && r <= 96) || (r >= 123 && r <= 126) {
		return true
	}
	return unicode.IsPunct(r)
}

func isCJK(r rune) bool {
	return (r >= 0x4E00 && r <= 0x9FFF) ||
		(r >= 0x3400 && r <= 0x4DBF) ||
		(r >= 0x20000 && r <= 0x2A6DF) ||
		(r >= 0xF900 && r <= 0xFAFF)
}
