package explain

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/codeexplain/internal/annotate"
	"github.com/phobologic/codeexplain/internal/lang"
	"github.com/phobologic/codeexplain/internal/metrics"
	"github.com/phobologic/codeexplain/internal/model"
)

// scriptedModel answers each prompt with a reply chosen by the first
// matching prompt prefix; unmatched prompts fail.
type scriptedModel struct {
	mu      sync.Mutex
	replies map[string]string
	err     error
	calls   []call
}

type call struct {
	prompt    string
	maxTokens int
	at        time.Time
}

func (s *scriptedModel) Name() string { return "scripted" }

func (s *scriptedModel) Query(_ context.Context, prompt string, maxTokens int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call{prompt: prompt, maxTokens: maxTokens, at: time.Now()})
	if s.err != nil {
		return "", s.err
	}
	for prefix, reply := range s.replies {
		if strings.HasPrefix(prompt, prefix) {
			return reply, nil
		}
	}
	return "", errors.New("unscripted prompt")
}

func (s *scriptedModel) count(prefix string) int {
	n := 0
	for _, c := range s.calls {
		if strings.HasPrefix(c.prompt, prefix) {
			n++
		}
	}
	return n
}

const (
	detectPrefix   = "Identify the programming language"
	overallPrefix  = "Explain this"
	blockPrefix    = "Briefly explain"
	commentsPrefix = "Add brief comments"
)

func quietLogger() logrus.FieldLogger {
	l, _ := logtest.NewNullLogger()
	return l
}

func newEngine(t *testing.T, m *scriptedModel, rec metrics.Recorder) *Engine {
	t.Helper()
	cfg := Config{
		Catalog: lang.Default(),
		Pacing:  time.Millisecond,
		Timeout: time.Second,
		Logger:  quietLogger(),
		Metrics: rec,
	}
	if m != nil {
		cfg.Model = m
	}
	e, err := New(cfg)
	require.NoError(t, err)
	return e
}

const addSrc = "def add(a, b):\n    return a + b"

const twoFuncs = `from typing import Optional
import math

def area(radius):
    """Return the area of a circle."""
    return math.pi * radius ** 2

def circumference(radius):
    """Return the circumference of a circle."""
    return 2 * math.pi * radius`

func TestEmptyInputRejected(t *testing.T) {
	t.Parallel()

	m := &scriptedModel{}
	e := newEngine(t, m, nil)
	for _, src := range []string{"", "   ", "\n\t\n"} {
		_, err := e.Explain(context.Background(), src, true)
		assert.ErrorIs(t, err, ErrEmptyInput)
		_, err = e.ExplainAs(context.Background(), src, model.Go, true)
		assert.ErrorIs(t, err, ErrEmptyInput)
	}
	assert.Empty(t, m.calls)
}

func TestOfflineScenario(t *testing.T) {
	t.Parallel()

	e := newEngine(t, nil, nil)
	res, err := e.Explain(context.Background(), addSrc, true)
	require.NoError(t, err)

	assert.Equal(t, model.Python, res.Language)
	assert.Equal(t, model.BackendLocal, res.Backend)
	assert.Equal(t, LocalModel, res.Model)
	assert.Equal(t, addSrc, res.OriginalCode)
	assert.Empty(t, res.BlockExplanations)
	assert.Contains(t, res.OverallExplanation, "Defines `add()` function")
	assert.Contains(t, res.OverallExplanation, "**Return Statement**")
	assert.Equal(t, "def add(a, b):  # Define function add\n    return a + b  # Return result", res.CommentedCode)
}

func TestRemoteFailureFallsBack(t *testing.T) {
	t.Parallel()

	m := &scriptedModel{err: errors.New("connection reset")}
	e := newEngine(t, m, nil)

	res, err := e.Explain(context.Background(), twoFuncs, true)
	require.NoError(t, err)

	ann := annotate.New(lang.Default())
	assert.NotEmpty(t, res.OverallExplanation)
	assert.Equal(t, model.BackendLocal, res.Backend)
	assert.Equal(t, ann.Annotate(twoFuncs, res.Language), res.CommentedCode)
	require.Len(t, res.BlockExplanations, 2)
	for _, b := range res.BlockExplanations {
		assert.True(t, strings.HasPrefix(b.Explanation, "**Python Code Analysis:**"), b.Name)
	}
}

func TestRemoteSuccess(t *testing.T) {
	t.Parallel()

	m := &scriptedModel{replies: map[string]string{
		detectPrefix:   "python",
		overallPrefix:  "Computes the area and circumference of a circle from its radius.",
		blockPrefix:    "Computes one geometric property of a circle.",
		commentsPrefix: "# geometry helpers\n" + twoFuncs + "\n# end",
	}}
	e := newEngine(t, m, nil)

	res, err := e.Explain(context.Background(), twoFuncs, true)
	require.NoError(t, err)

	assert.Equal(t, model.Python, res.Language)
	assert.Equal(t, model.BackendRemote, res.Backend)
	assert.Equal(t, "scripted", res.Model)
	assert.Equal(t, "Computes the area and circumference of a circle from its radius.", res.OverallExplanation)
	assert.True(t, strings.HasPrefix(res.CommentedCode, "# geometry helpers"))

	require.Len(t, res.BlockExplanations, 2)
	assert.Equal(t, "section_1", res.BlockExplanations[0].Name)
	assert.Equal(t, "section_2", res.BlockExplanations[1].Name)
	got, ok := res.Block("section_2")
	assert.True(t, ok)
	assert.Equal(t, "Computes one geometric property of a circle.", got)

	assert.Equal(t, 1, m.count(detectPrefix))
	assert.Equal(t, 1, m.count(overallPrefix))
	assert.Equal(t, 2, m.count(blockPrefix))
	assert.Equal(t, 1, m.count(commentsPrefix))
	assert.LessOrEqual(t, len(m.calls)-m.count(detectPrefix), MaxRemoteCalls)

	for _, c := range m.calls {
		switch {
		case strings.HasPrefix(c.prompt, overallPrefix), strings.HasPrefix(c.prompt, blockPrefix):
			assert.Equal(t, 800, c.maxTokens)
		case strings.HasPrefix(c.prompt, commentsPrefix):
			assert.Equal(t, 1000, c.maxTokens)
		}
	}
}

func TestDegenerateOutputFallsBack(t *testing.T) {
	t.Parallel()

	m := &scriptedModel{replies: map[string]string{
		detectPrefix:   "python",
		overallPrefix:  "Too short",
		blockPrefix:    "Error: HTTP 429 - Resource has been exhausted",
		commentsPrefix: "# short",
	}}
	e := newEngine(t, m, nil)

	res, err := e.Explain(context.Background(), twoFuncs, true)
	require.NoError(t, err)

	ann := annotate.New(lang.Default())
	assert.Equal(t, model.BackendLocal, res.Backend)
	assert.Equal(t, ann.Summarize(twoFuncs, model.Python), res.OverallExplanation)
	assert.Equal(t, ann.Annotate(twoFuncs, model.Python), res.CommentedCode)
	for _, b := range res.BlockExplanations {
		assert.Contains(t, b.Explanation, "Code Analysis")
	}
}

func TestOneBlockFailureIsIsolated(t *testing.T) {
	t.Parallel()

	m := &scriptedModel{replies: map[string]string{
		detectPrefix:  "python",
		overallPrefix: "Computes the area and circumference of a circle from its radius.",
		blockPrefix + " this python code section:\n\nfrom typing": "Imports math and computes the area of a circle.",
	}}
	e := newEngine(t, m, nil)

	res, err := e.Explain(context.Background(), twoFuncs, false)
	require.NoError(t, err)
	require.Len(t, res.BlockExplanations, 2)
	assert.Equal(t, "Imports math and computes the area of a circle.", res.BlockExplanations[0].Explanation)
	assert.Contains(t, res.BlockExplanations[1].Explanation, "Defines `circumference()` function")
	assert.Empty(t, res.CommentedCode)
}

func TestSingleBlockSkipsBlockCalls(t *testing.T) {
	t.Parallel()

	m := &scriptedModel{replies: map[string]string{
		detectPrefix:  "python",
		overallPrefix: "Adds two numbers and returns the sum.",
	}}
	e := newEngine(t, m, nil)

	res, err := e.Explain(context.Background(), addSrc, false)
	require.NoError(t, err)
	assert.Empty(t, res.BlockExplanations)
	assert.Equal(t, 0, m.count(blockPrefix))
	assert.Equal(t, 0, m.count(commentsPrefix))
	assert.Equal(t, "Adds two numbers and returns the sum.", res.OverallExplanation)
}

func TestExplainAsSkipsDetection(t *testing.T) {
	t.Parallel()

	m := &scriptedModel{err: errors.New("down")}
	e := newEngine(t, m, nil)

	res, err := e.ExplainAs(context.Background(), addSrc, model.Ruby, true)
	require.NoError(t, err)
	assert.Equal(t, model.Ruby, res.Language)
	assert.Equal(t, 0, m.count(detectPrefix))
	assert.True(t, strings.HasPrefix(res.OverallExplanation, "**Ruby Code Analysis:**"))
}

func TestCallsArePaced(t *testing.T) {
	t.Parallel()

	m := &scriptedModel{err: errors.New("down")}
	e, err := New(Config{
		Catalog: lang.Default(),
		Model:   m,
		Pacing:  40 * time.Millisecond,
		Logger:  quietLogger(),
	})
	require.NoError(t, err)

	_, err = e.ExplainAs(context.Background(), twoFuncs, model.Python, true)
	require.NoError(t, err)

	// overall, two blocks, comments
	require.Len(t, m.calls, 4)
	for i := 1; i < len(m.calls); i++ {
		gap := m.calls[i].at.Sub(m.calls[i-1].at)
		assert.GreaterOrEqual(t, gap, 30*time.Millisecond, "gap before call %d", i)
	}
}

func TestMetricsRecorded(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	rec := metrics.NewPrometheus(reg)
	m := &scriptedModel{err: errors.New("down")}
	e := newEngine(t, m, rec)

	_, err := e.Explain(context.Background(), addSrc, true)
	require.NoError(t, err)

	n, err := testutil.GatherAndCount(reg, "codeexplain_fallbacks_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n) // overall and comments series
}

func TestConcurrentAnalyses(t *testing.T) {
	t.Parallel()

	e := newEngine(t, nil, nil)
	var wg sync.WaitGroup
	results := make([]model.ExplanationResult, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := e.Explain(context.Background(), addSrc, true)
			assert.NoError(t, err)
			results[i] = res
		}(i)
	}
	wg.Wait()
	for _, r := range results[1:] {
		assert.Equal(t, results[0], r)
	}
}

func TestNewRequiresCatalog(t *testing.T) {
	t.Parallel()

	_, err := New(Config{})
	assert.Error(t, err)
}
