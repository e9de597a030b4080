// Package explain orchestrates one analysis: detection, segmentation and
// remote explanations, each guarded by a rule-based fallback.
package explain

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/phobologic/codeexplain/internal/annotate"
	"github.com/phobologic/codeexplain/internal/detect"
	"github.com/phobologic/codeexplain/internal/lang"
	"github.com/phobologic/codeexplain/internal/llm"
	"github.com/phobologic/codeexplain/internal/metrics"
	"github.com/phobologic/codeexplain/internal/model"
	"github.com/phobologic/codeexplain/internal/prompt"
	"github.com/phobologic/codeexplain/internal/segment"
)

// ErrEmptyInput is returned for blank source before any remote call.
var ErrEmptyInput = errors.New("no code to explain")

const (
	// DefaultPacing is the minimum gap between remote calls of one analysis.
	DefaultPacing = time.Second
	// MaxRemoteCalls bounds the explanation calls of one analysis.
	MaxRemoteCalls = 5

	overallMaxTokens  = 800
	blockMaxTokens    = 800
	commentsMaxTokens = 1000

	minExplanationChars = 20
	minBlockChars       = 30

	// LocalModel is reported when no remote model is configured.
	LocalModel = "rule-based"
)

// Feature labels used in logs and metrics.
const (
	featureOverall  = "overall"
	featureBlock    = "block"
	featureComments = "comments"
)

// Config wires an Engine. Only Catalog is required; without a Model every
// feature uses its local fallback.
type Config struct {
	Catalog  *lang.Catalog
	Model    llm.Model
	Prompts  *prompt.Builder
	Detector *detect.Detector
	Timeout  time.Duration
	Pacing   time.Duration
	Logger   logrus.FieldLogger
	Metrics  metrics.Recorder
}

// Engine produces ExplanationResults. It holds no per-request state and is
// safe for concurrent use.
type Engine struct {
	catalog   *lang.Catalog
	model     llm.Model
	prompts   *prompt.Builder
	detector  *detect.Detector
	segmenter *segment.Segmenter
	annotator *annotate.Annotator
	timeout   time.Duration
	pacing    time.Duration
	log       logrus.FieldLogger
	metrics   metrics.Recorder
}

// New returns an Engine for cfg.
func New(cfg Config) (*Engine, error) {
	if cfg.Catalog == nil {
		return nil, errors.New("explain: catalog is required")
	}
	e := &Engine{
		catalog:   cfg.Catalog,
		model:     cfg.Model,
		prompts:   cfg.Prompts,
		detector:  cfg.Detector,
		segmenter: segment.New(cfg.Catalog),
		annotator: annotate.New(cfg.Catalog),
		timeout:   cfg.Timeout,
		pacing:    cfg.Pacing,
		log:       cfg.Logger,
		metrics:   cfg.Metrics,
	}
	if e.timeout <= 0 {
		e.timeout = llm.DefaultTimeout
	}
	if e.pacing < 0 {
		e.pacing = 0
	}
	if e.log == nil {
		e.log = logrus.StandardLogger()
	}
	if e.metrics == nil {
		e.metrics = metrics.Nop{}
	}
	if e.prompts == nil {
		p, err := prompt.New(prompt.Templates{}, cfg.Catalog.Vocabulary())
		if err != nil {
			return nil, err
		}
		e.prompts = p
	}
	if e.detector == nil {
		d, err := detect.New(detect.Config{
			Catalog: cfg.Catalog,
			Model:   cfg.Model,
			Prompts: e.prompts,
			Timeout: e.timeout,
			Logger:  e.log,
			Metrics: e.metrics,
		})
		if err != nil {
			return nil, err
		}
		e.detector = d
	}
	return e, nil
}

// Detector returns the detector used by Explain.
func (e *Engine) Detector() *detect.Detector { return e.detector }

// ModelName reports the configured remote model, or LocalModel.
func (e *Engine) ModelName() string {
	if e.model == nil {
		return LocalModel
	}
	return e.model.Name()
}

// Explain detects the language of source and explains it.
func (e *Engine) Explain(ctx context.Context, source string, wantComments bool) (model.ExplanationResult, error) {
	if strings.TrimSpace(source) == "" {
		return model.ExplanationResult{}, ErrEmptyInput
	}
	tag := e.detector.Detect(ctx, source)
	return e.explain(ctx, source, tag, wantComments), nil
}

// ExplainAs explains source as language tag, skipping detection.
func (e *Engine) ExplainAs(ctx context.Context, source string, tag model.LanguageTag, wantComments bool) (model.ExplanationResult, error) {
	if strings.TrimSpace(source) == "" {
		return model.ExplanationResult{}, ErrEmptyInput
	}
	return e.explain(ctx, source, tag, wantComments), nil
}

// analysis is the per-request state: pacing and the remote-call budget.
type analysis struct {
	*Engine
	limiter *rate.Limiter
	calls   int
	log     logrus.FieldLogger
}

func (e *Engine) explain(ctx context.Context, source string, tag model.LanguageTag, wantComments bool) model.ExplanationResult {
	start := time.Now()
	limit := rate.Inf
	if e.pacing > 0 {
		limit = rate.Every(e.pacing)
	}
	a := &analysis{
		Engine:  e,
		limiter: rate.NewLimiter(limit, 1),
		log:     e.log.WithField("language", tag),
	}

	blocks := e.segmenter.Segment(source)
	a.log.WithField("blocks", len(blocks)).Debug("segmented source")

	res := model.ExplanationResult{
		Language:     tag,
		OriginalCode: source,
		Backend:      model.BackendLocal,
		Model:        e.ModelName(),
	}

	overall, remote := a.overall(ctx, source, tag)
	res.OverallExplanation = overall
	if remote {
		res.Backend = model.BackendRemote
	}

	if len(blocks) > 1 && len(blocks) < 4 {
		for _, b := range blocks {
			text := b.Text()
			if utf8.RuneCountInString(strings.TrimSpace(text)) <= minBlockChars {
				continue
			}
			res.BlockExplanations = append(res.BlockExplanations, model.BlockExplanation{
				Name:        b.Name,
				Explanation: a.block(ctx, b.Name, text, tag),
			})
		}
	}

	if wantComments {
		res.CommentedCode = a.comments(ctx, source, tag)
	}

	e.metrics.Analysis(string(res.Backend), time.Since(start))
	return res
}

// query issues one paced remote call. It reports a failure without calling
// out when no model is configured or the budget is spent.
func (a *analysis) query(ctx context.Context, feature, p string, maxTokens int) llm.Result {
	if a.model == nil {
		return llm.Result{Err: llm.ErrUnavailable}
	}
	if a.calls >= MaxRemoteCalls {
		return llm.Result{Err: errors.New("remote call budget exhausted")}
	}
	if err := a.limiter.Wait(ctx); err != nil {
		return llm.Result{Err: err}
	}
	a.calls++
	res := llm.Call(ctx, a.model, p, maxTokens, a.timeout)
	a.metrics.RemoteCall(feature, res.Outcome())
	return res
}

func (a *analysis) fallback(feature string, err error, fields logrus.Fields) {
	a.metrics.Fallback(feature)
	if a.model == nil {
		return
	}
	a.log.WithError(err).WithField("feature", feature).WithFields(fields).Warn("using rule-based fallback")
}

func (a *analysis) overall(ctx context.Context, source string, tag model.LanguageTag) (string, bool) {
	if text, ok := a.explanation(ctx, featureOverall, source, tag, true, nil); ok {
		return text, true
	}
	return a.annotator.Summarize(source, tag), false
}

func (a *analysis) block(ctx context.Context, name, text string, tag model.LanguageTag) string {
	if out, ok := a.explanation(ctx, featureBlock, text, tag, false, logrus.Fields{"block": name}); ok {
		return out
	}
	return a.annotator.Summarize(text, tag)
}

// explanation asks the remote model to explain code and applies the
// error/length check shared by whole-snippet and block explanations.
func (a *analysis) explanation(ctx context.Context, feature, code string, tag model.LanguageTag, whole bool, fields logrus.Fields) (string, bool) {
	render := a.prompts.Block
	maxTokens := blockMaxTokens
	if whole {
		render = a.prompts.Overall
		maxTokens = overallMaxTokens
	}
	p, err := render(code, string(tag))
	if err != nil {
		a.fallback(feature, err, fields)
		return "", false
	}

	res := a.query(ctx, feature, p, maxTokens)
	if !res.OK() {
		a.fallback(feature, res.Err, fields)
		return "", false
	}
	if utf8.RuneCountInString(res.Text) < minExplanationChars {
		a.fallback(feature, llm.ErrDegenerate, fields)
		return "", false
	}
	return res.Text, true
}

func (a *analysis) comments(ctx context.Context, source string, tag model.LanguageTag) string {
	p, err := a.prompts.Comments(source, string(tag))
	if err != nil {
		a.fallback(featureComments, err, nil)
		return a.annotator.Annotate(source, tag)
	}

	res := a.query(ctx, featureComments, p, commentsMaxTokens)
	switch {
	case !res.OK():
		a.fallback(featureComments, res.Err, nil)
	case utf8.RuneCountInString(res.Text) < utf8.RuneCountInString(source):
		a.fallback(featureComments, llm.ErrDegenerate, logrus.Fields{"reason": "shorter than source"})
	default:
		return res.Text
	}
	return a.annotator.Annotate(source, tag)
}
