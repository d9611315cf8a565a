// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

// Package onnx runs a local sentence-transformer (all-MiniLM style) through
// ONNX Runtime, so semantic recall works without any hosted API.
package onnx

import (
	"context"
	"math"
	"path/filepath"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	mnemoerr "github.com/mnemo-dev/mnemo/pkg/errors"
)

const (
	// all-MiniLM-L6-v2 output size.
	defaultDimensions = 384
	// Standard sequence length for MiniLM.
	maxSequenceLength = 128
)

// Config holds local ONNX embedder configuration.
type Config struct {
	// ModelPath is the path to the ONNX model file.
	ModelPath string
	// TokenizerPath is the path to tokenizer.json; empty defaults to a
	// tokenizer.json next to the model.
	TokenizerPath string
	// LibraryPath optionally points at the onnxruntime shared library.
	LibraryPath string
	// Dimensions is the embedding vector size; 0 uses 384.
	Dimensions int
}

// The ONNX runtime environment is process-global; initialise it once.
var (
	ortInitOnce sync.Once
	ortInitErr  error
)

func initRuntime(libraryPath string) error {
	ortInitOnce.Do(func() {
		if libraryPath != "" {
			ort.SetSharedLibraryPath(libraryPath)
		}
		ortInitErr = ort.InitializeEnvironment()
	})
	return ortInitErr
}

// Embedder generates embeddings with a local ONNX session.
type Embedder struct {
	mu         sync.Mutex
	session    *ort.DynamicAdvancedSession
	tokenizer  *wordPieceTokenizer
	dimensions int
}

// New creates a local ONNX embedder.
func New(cfg Config) (*Embedder, error) {
	if cfg.ModelPath == "" {
		return nil, mnemoerr.New(mnemoerr.CodeEmbedConfigInvalid, "onnx: model path is required",
			mnemoerr.FieldProvider("onnx"))
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = defaultDimensions
	}
	if cfg.TokenizerPath == "" {
		cfg.TokenizerPath = filepath.Join(filepath.Dir(cfg.ModelPath), "tokenizer.json")
	}

	if err := initRuntime(cfg.LibraryPath); err != nil {
		return nil, mnemoerr.Wrap(err, mnemoerr.CodeEmbedConfigInvalid, "onnx: initialising runtime",
			mnemoerr.FieldProvider("onnx"))
	}

	tokenizer, err := loadTokenizer(cfg.TokenizerPath)
	if err != nil {
		return nil, mnemoerr.Wrap(err, mnemoerr.CodeEmbedConfigInvalid, "onnx: loading tokenizer",
			mnemoerr.FieldProvider("onnx"))
	}

	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath,
		[]string{"input_ids", "attention_mask", "token_type_ids"},
		[]string{"last_hidden_state"},
		nil,
	)
	if err != nil {
		return nil, mnemoerr.Wrap(err, mnemoerr.CodeEmbedConfigInvalid, "onnx: creating session",
			mnemoerr.FieldProvider("onnx"))
	}

	return &Embedder{
		session:    session,
		tokenizer:  tokenizer,
		dimensions: cfg.Dimensions,
	}, nil
}

// Embed tokenizes the text, runs the model, and mean-pools the token
// embeddings into one unit vector.
func (e *Embedder) Embed(_ context.Context, text string) ([]float32, error) {
	tokens := e.tokenizer.tokenize(text)

	inputIDs := make([]int64, maxSequenceLength)
	attentionMask := make([]int64, maxSequenceLength)
	tokenTypeIDs := make([]int64, maxSequenceLength)

	inputIDs[0] = int64(e.tokenizer.clsToken)
	attentionMask[0] = 1

	tokenLen := len(tokens)
	if tokenLen > maxSequenceLength-2 { // reserve [CLS] and [SEP]
		tokenLen = maxSequenceLength - 2
	}
	for i := 0; i < tokenLen; i++ {
		inputIDs[i+1] = tokens[i]
		attentionMask[i+1] = 1
	}
	inputIDs[tokenLen+1] = int64(e.tokenizer.sepToken)
	attentionMask[tokenLen+1] = 1

	shape := ort.NewShape(1, int64(maxSequenceLength))

	inputIDsTensor, err := ort.NewTensor(shape, inputIDs)
	if err != nil {
		return nil, mnemoerr.Errorf(mnemoerr.CodeEmbedUpstreamFailure, "onnx: creating input_ids tensor: %w", err)
	}
	defer inputIDsTensor.Destroy()

	attentionMaskTensor, err := ort.NewTensor(shape, attentionMask)
	if err != nil {
		return nil, mnemoerr.Errorf(mnemoerr.CodeEmbedUpstreamFailure, "onnx: creating attention_mask tensor: %w", err)
	}
	defer attentionMaskTensor.Destroy()

	tokenTypeIDsTensor, err := ort.NewTensor(shape, tokenTypeIDs)
	if err != nil {
		return nil, mnemoerr.Errorf(mnemoerr.CodeEmbedUpstreamFailure, "onnx: creating token_type_ids tensor: %w", err)
	}
	defer tokenTypeIDsTensor.Destroy()

	outputs := []ort.Value{nil}

	// Sessions are not safe for concurrent Run calls.
	e.mu.Lock()
	err = e.session.Run([]ort.Value{inputIDsTensor, attentionMaskTensor, tokenTypeIDsTensor}, outputs)
	e.mu.Unlock()
	if err != nil {
		return nil, mnemoerr.Errorf(mnemoerr.CodeEmbedUpstreamFailure, "onnx: inference failed: %w", err)
	}
	defer func() {
		for _, out := range outputs {
			if out != nil {
				out.Destroy()
			}
		}
	}()

	if len(outputs) == 0 || outputs[0] == nil {
		return nil, mnemoerr.New(mnemoerr.CodeEmbedUpstreamFailure, "onnx: no output tensors returned")
	}
	outputTensor, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, mnemoerr.New(mnemoerr.CodeEmbedUpstreamFailure, "onnx: unexpected output tensor type")
	}

	embedding, err := e.pool(outputTensor.GetData(), outputTensor.GetShape(), attentionMask)
	if err != nil {
		return nil, err
	}
	return normalize(embedding), nil
}

// pool reduces model output to one vector. A 2-dim output is already pooled;
// a 3-dim output gets mean pooling over attended tokens.
func (e *Embedder) pool(data []float32, shape ort.Shape, attentionMask []int64) ([]float32, error) {
	switch len(shape) {
	case 2:
		if len(data) < e.dimensions {
			return nil, mnemoerr.Errorf(mnemoerr.CodeEmbedUpstreamFailure,
				"onnx: output dimension mismatch: got %d, expected %d", len(data), e.dimensions)
		}
		embedding := make([]float32, e.dimensions)
		copy(embedding, data[:e.dimensions])
		return embedding, nil

	case 3:
		seqLen, hiddenSize := shape[1], shape[2]
		if shape[0] != 1 {
			return nil, mnemoerr.Errorf(mnemoerr.CodeEmbedUpstreamFailure, "onnx: expected batch size 1, got %d", shape[0])
		}
		if hiddenSize != int64(e.dimensions) {
			return nil, mnemoerr.Errorf(mnemoerr.CodeEmbedUpstreamFailure,
				"onnx: hidden size mismatch: got %d, expected %d", hiddenSize, e.dimensions)
		}

		embedding := make([]float32, e.dimensions)
		var attended float32
		for i := 0; i < int(seqLen); i++ {
			if attentionMask[i] == 0 {
				continue
			}
			attended++
			offset := i * int(hiddenSize)
			for j := 0; j < int(hiddenSize); j++ {
				embedding[j] += data[offset+j]
			}
		}
		if attended == 0 {
			return embedding, nil
		}
		for j := range embedding {
			embedding[j] /= attended
		}
		return embedding, nil

	default:
		return nil, mnemoerr.Errorf(mnemoerr.CodeEmbedUpstreamFailure, "onnx: unexpected output shape %v", shape)
	}
}

// Dimensions returns the embedding vector size.
func (e *Embedder) Dimensions() int {
	return e.dimensions
}

// Close releases the ONNX session.
func (e *Embedder) Close() error {
	if e.session != nil {
		return e.session.Destroy()
	}
	return nil
}

// normalize converts the embedding to a unit vector.
func normalize(vec []float32) []float32 {
	var norm float32
	for _, v := range vec {
		norm += v * v
	}
	if norm == 0 {
		return vec
	}

	norm = float32(math.Sqrt(float64(norm)))
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}
