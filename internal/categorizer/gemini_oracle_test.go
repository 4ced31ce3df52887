package categorizer

import (
	"context"
	"errors"
	"testing"
	"time"

	"fjacquet/txn-categorizer/internal/logging"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	answer  string
	err     error
	empty   bool
	prompts []string
}

func (f *fakeGenerator) GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	for _, p := range parts {
		if text, ok := p.(genai.Text); ok {
			f.prompts = append(f.prompts, string(text))
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.empty {
		return &genai.GenerateContentResponse{}, nil
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text(f.answer)}},
		}},
	}, nil
}

func TestGeminiOracle_Resolve(t *testing.T) {
	known := []string{"Food & Dining", "Shopping"}

	tests := []struct {
		name     string
		gen      *fakeGenerator
		wantKind DecisionKind
		wantCat  string
		wantErr  bool
	}{
		{name: "exact answer", gen: &fakeGenerator{answer: "Shopping"}, wantKind: DecisionAccept, wantCat: "Shopping"},
		{name: "sloppy answer snapped", gen: &fakeGenerator{answer: " shoping\n"}, wantKind: DecisionAccept, wantCat: "Shopping"},
		{name: "unknown category", gen: &fakeGenerator{answer: "Pets"}, wantKind: DecisionSkip},
		{name: "api error", gen: &fakeGenerator{err: errors.New("quota")}, wantKind: DecisionSkip, wantErr: true},
		{name: "no candidates", gen: &fakeGenerator{empty: true}, wantKind: DecisionSkip, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := NewGeminiOracle(tt.gen, 0, time.Second, logging.NewMockLogger())
			d, err := o.Resolve(context.Background(), "IKEA OTTAWA", known)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantKind, d.Kind)
			assert.Equal(t, tt.wantCat, d.Category)
		})
	}
}

func TestGeminiOracle_PromptListsKnownCategories(t *testing.T) {
	gen := &fakeGenerator{answer: "Shopping"}
	o := NewGeminiOracle(gen, 60, 0, nil)
	_, err := o.Resolve(context.Background(), "IKEA OTTAWA", []string{"Shopping", "Travel"})
	require.NoError(t, err)
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "'IKEA OTTAWA'")
	assert.Contains(t, gen.prompts[0], "Shopping\nTravel")
}

func TestGeminiOracle_NoKnownCategoriesSkipsWithoutCalling(t *testing.T) {
	gen := &fakeGenerator{answer: "Shopping"}
	o := NewGeminiOracle(gen, 0, 0, nil)
	d, err := o.Resolve(context.Background(), "IKEA", nil)
	require.NoError(t, err)
	assert.Equal(t, DecisionSkip, d.Kind)
	assert.Empty(t, gen.prompts)
}

func TestGeminiOracle_CancelledContext(t *testing.T) {
	gen := &fakeGenerator{answer: "Shopping"}
	o := NewGeminiOracle(gen, 1, 0, nil)
	// drain the single burst token so the next call must wait
	_, err := o.Resolve(context.Background(), "A", []string{"Shopping"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = o.Resolve(ctx, "B", []string{"Shopping"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewGeminiModel_RequiresKey(t *testing.T) {
	_, _, err := NewGeminiModel(context.Background(), "", "")
	assert.Error(t, err)
}
