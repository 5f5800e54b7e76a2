package classifier

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"sentinel/internal/models"
)

// ortEnv manages global ONNX Runtime initialization (process-wide singleton).
var ortEnv struct {
	once sync.Once
	err  error
}

// initORT initializes the ONNX Runtime environment. Safe to call multiple
// times; only the first call has any effect.
func initORT(libPath string) error {
	ortEnv.once.Do(func() {
		ort.SetSharedLibraryPath(libPath)
		ortEnv.err = ort.InitializeEnvironment()
	})
	return ortEnv.err
}

// sst2Labels is the output order of the SST-2 fine-tuned classification head.
var sst2Labels = [2]models.Label{models.LabelNegative, models.LabelPositive}

// ONNX runs a locally exported sequence-classification model. The model
// directory must contain model.onnx and the matching vocab.txt.
type ONNX struct {
	modelDir string
	libPath  string
}

// NewONNX creates a local provider. An empty libPath looks for
// libonnxruntime.so inside modelDir.
func NewONNX(modelDir, libPath string) *ONNX {
	if libPath == "" {
		libPath = filepath.Join(modelDir, "libonnxruntime.so")
	}
	return &ONNX{modelDir: modelDir, libPath: libPath}
}

// Name returns the provider name.
func (o *ONNX) Name() string {
	return "onnx"
}

// Load creates an inference session and tokenizer. modelID is informational;
// the files in the model directory decide what runs.
func (o *ONNX) Load(ctx context.Context, modelID string) (Model, error) {
	modelPath := filepath.Join(o.modelDir, "model.onnx")
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("onnx: %s: %w", modelID, err)
	}

	tok, err := newTokenizer(filepath.Join(o.modelDir, "vocab.txt"))
	if err != nil {
		return nil, err
	}

	if err := initORT(o.libPath); err != nil {
		return nil, fmt.Errorf("onnx: failed to initialize runtime: %w", err)
	}

	inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to read model info: %w", err)
	}

	inputNames, useTypeIDs, err := classifierInputs(inputs)
	if err != nil {
		return nil, err
	}

	if len(outputs) == 0 {
		return nil, fmt.Errorf("onnx: model has no outputs")
	}
	dims := outputs[0].Dimensions
	if len(dims) != 2 || dims[1] != int64(len(sst2Labels)) {
		return nil, fmt.Errorf("%w: expected [batch, 2] logits, got %v", ErrUnsupportedModel, dims)
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create session options: %w", err)
	}
	defer opts.Destroy()

	session, err := ort.NewDynamicAdvancedSession(modelPath, inputNames, []string{outputs[0].Name}, opts)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create session: %w", err)
	}

	return &onnxModel{session: session, tok: tok, useTypeIDs: useTypeIDs}, nil
}

// classifierInputs checks for the BERT-style inputs a DistilBERT export
// needs. token_type_ids is optional; DistilBERT exports usually omit it.
func classifierInputs(inputs []ort.InputOutputInfo) ([]string, bool, error) {
	nameSet := make(map[string]bool, len(inputs))
	for _, inp := range inputs {
		nameSet[inp.Name] = true
	}
	names := []string{"input_ids", "attention_mask"}
	for _, name := range names {
		if !nameSet[name] {
			return nil, false, fmt.Errorf("onnx: model missing required input %q", name)
		}
	}
	if nameSet["token_type_ids"] {
		return append(names, "token_type_ids"), true, nil
	}
	return names, false, nil
}

// onnxModel holds one inference session.
type onnxModel struct {
	session    *ort.DynamicAdvancedSession
	tok        *tokenizer
	useTypeIDs bool
}

// Run tokenizes text, runs the session and softmaxes the two logits.
func (m *onnxModel) Run(ctx context.Context, text string) ([]models.LabelScore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ids, mask := m.tok.encode(text)
	shape := ort.NewShape(1, int64(len(ids)))

	tIDs, err := ort.NewTensor(shape, ids)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create input_ids tensor: %w", err)
	}
	defer tIDs.Destroy()

	tMask, err := ort.NewTensor(shape, mask)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create attention_mask tensor: %w", err)
	}
	defer tMask.Destroy()

	inputs := []ort.Value{tIDs, tMask}
	if m.useTypeIDs {
		tTypes, err := ort.NewTensor(shape, make([]int64, len(ids)))
		if err != nil {
			return nil, fmt.Errorf("onnx: failed to create token_type_ids tensor: %w", err)
		}
		defer tTypes.Destroy()
		inputs = append(inputs, tTypes)
	}

	tOut, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(len(sst2Labels))))
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create output tensor: %w", err)
	}
	defer tOut.Destroy()

	if err := m.session.Run(inputs, []ort.Value{tOut}); err != nil {
		return nil, fmt.Errorf("onnx: inference failed: %w", err)
	}

	probs := softmax(tOut.GetData())
	scores := make([]models.LabelScore, len(sst2Labels))
	for i, label := range sst2Labels {
		scores[i] = models.LabelScore{Label: string(label), Score: probs[i]}
	}
	return scores, nil
}

// Close releases the ONNX session resources.
func (m *onnxModel) Close() error {
	return m.session.Destroy()
}

// softmax converts logits to probabilities, shifted by the max for stability.
func softmax(logits []float32) []float64 {
	out := make([]float64, len(logits))
	if len(logits) == 0 {
		return out
	}
	maxLogit := float64(logits[0])
	for _, l := range logits[1:] {
		maxLogit = math.Max(maxLogit, float64(l))
	}
	var sum float64
	for i, l := range logits {
		out[i] = math.Exp(float64(l) - maxLogit)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
