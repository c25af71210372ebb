package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type changeRecorder struct {
	calls []string
}

func (r *changeRecorder) record(provider, model string) {
	r.calls = append(r.calls, provider+"/"+model)
}

func TestNewSelectionDefaults(t *testing.T) {
	s := NewSelection("anthropic", "claude-3-7-sonnet-20250219", nil)
	provider, model := s.Selected()
	require.Equal(t, "anthropic", provider)
	require.Equal(t, "claude-3-7-sonnet-20250219", model)
}

func TestNewSelectionUnknownDefaultsFallBack(t *testing.T) {
	s := NewSelection("nonsense", "also-nonsense", nil)
	provider, model := s.Selected()
	require.Equal(t, "openai", provider)
	require.Equal(t, "gpt-4o-latest", model)
}

func TestSetProviderResetsModel(t *testing.T) {
	rec := &changeRecorder{}
	s := NewSelection("openai", "gpt-4.5-preview", rec.record)

	s.SetProvider("anthropic")

	provider, model := s.Selected()
	require.Equal(t, "anthropic", provider)
	require.Equal(t, "claude-3-5-sonnet-20241022", model)
	require.Equal(t, []string{"anthropic/claude-3-5-sonnet-20241022"}, rec.calls)
}

func TestSetProviderNoopForSameOrUnknown(t *testing.T) {
	rec := &changeRecorder{}
	s := NewSelection("openai", "", rec.record)

	s.SetProvider("openai")
	s.SetProvider("does-not-exist")
	require.Empty(t, rec.calls)
}

func TestSetModelNotifies(t *testing.T) {
	rec := &changeRecorder{}
	s := NewSelection("openai", "", rec.record)

	s.SetModel("gpt-4.5-preview")
	require.Equal(t, []string{"openai/gpt-4.5-preview"}, rec.calls)

	// Selecting the current model again does not re-fire
	s.SetModel("gpt-4.5-preview")
	require.Len(t, rec.calls, 1)
}

func TestCycleProviderWraps(t *testing.T) {
	rec := &changeRecorder{}
	s := NewSelection("openai", "", rec.record)

	s.CycleProvider(-1)
	provider, model := s.Selected()
	require.Equal(t, "bedrock", provider)
	require.Equal(t, "anthropic.claude-3-7-sonnet-20250219-v1:0", model)

	s.CycleProvider(1)
	provider, _ = s.Selected()
	require.Equal(t, "openai", provider)
	require.Len(t, rec.calls, 2)
}

func TestCycleModelWraps(t *testing.T) {
	s := NewSelection("openai", "", nil)

	s.CycleModel(1)
	_, model := s.Selected()
	require.Equal(t, "gpt-4.5-preview", model)

	s.CycleModel(1)
	_, model = s.Selected()
	require.Equal(t, "gpt-4o-latest", model)
}
