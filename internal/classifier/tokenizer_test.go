package classifier

import (
	"bufio"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	ort "github.com/yalue/onnxruntime_go"
)

// testVocab is a tiny WordPiece vocabulary; IDs are line numbers.
var testVocab = []string{
	"[PAD]", // 0
	"[UNK]", // 1
	"[CLS]", // 2
	"[SEP]", // 3
	"the",   // 4
	"app",   // 5
	"is",    // 6
	"slow",  // 7
	"!",     // 8
	"crash", // 9
	"##ing", // 10
	"cafe",  // 11
	",",     // 12
}

func testTokenizer(t *testing.T) *tokenizer {
	t.Helper()
	tok, err := readVocab(bufio.NewScanner(strings.NewReader(strings.Join(testVocab, "\n"))))
	require.NoError(t, err)
	return tok
}

func TestReadVocab_MissingSpecial(t *testing.T) {
	_, err := readVocab(bufio.NewScanner(strings.NewReader("[PAD]\nhello")))
	assert.Error(t, err)

	_, err = readVocab(bufio.NewScanner(strings.NewReader("")))
	assert.Error(t, err)
}

func TestEncode(t *testing.T) {
	tok := testTokenizer(t)

	tests := []struct {
		name string
		text string
		ids  []int64
	}{
		{"simple", "The app is slow", []int64{2, 4, 5, 6, 7, 3}},
		{"uppercase and punctuation", "SLOW!", []int64{2, 7, 8, 3}},
		{"wordpiece suffix", "crashing", []int64{2, 9, 10, 3}},
		{"accent stripped", "Café, slow", []int64{2, 11, 12, 7, 3}},
		{"unknown word", "slowly", []int64{2, 1, 3}},
		{"empty", "", []int64{2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids, mask := tok.encode(tt.text)
			assert.Equal(t, tt.ids, ids)
			require.Len(t, mask, len(ids))
			for _, m := range mask {
				assert.Equal(t, int64(1), m)
			}
		})
	}
}

func TestEncode_TruncatesToMaxSeqLen(t *testing.T) {
	tok := testTokenizer(t)

	ids, _ := tok.encode(strings.Repeat("slow ", 1000))
	require.Len(t, ids, maxSeqLen)
	assert.Equal(t, int64(2), ids[0])
	assert.Equal(t, int64(3), ids[len(ids)-1])
}

func TestSoftmax(t *testing.T) {
	probs := softmax([]float32{-2.5, 2.5})
	require.Len(t, probs, 2)
	assert.InDelta(t, 1.0, probs[0]+probs[1], 1e-9)
	assert.Greater(t, probs[1], probs[0])
	assert.InDelta(t, 1/(1+math.Exp(-5)), probs[1], 1e-6)

	assert.Empty(t, softmax(nil))
}

func TestClassifierInputs(t *testing.T) {
	names, typeIDs, err := classifierInputs([]ort.InputOutputInfo{{Name: "input_ids"}, {Name: "attention_mask"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"input_ids", "attention_mask"}, names)
	assert.False(t, typeIDs)

	names, typeIDs, err = classifierInputs([]ort.InputOutputInfo{{Name: "token_type_ids"}, {Name: "attention_mask"}, {Name: "input_ids"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"input_ids", "attention_mask", "token_type_ids"}, names)
	assert.True(t, typeIDs)

	_, _, err = classifierInputs([]ort.InputOutputInfo{{Name: "input_ids"}})
	assert.Error(t, err)
}

func TestSST2LabelOrder(t *testing.T) {
	assert.Equal(t, "NEGATIVE", string(sst2Labels[0]))
	assert.Equal(t, "POSITIVE", string(sst2Labels[1]))
}
