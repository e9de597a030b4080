// Package detect identifies the programming language of a source snippet.
package detect

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/phobologic/codeexplain/internal/lang"
	"github.com/phobologic/codeexplain/internal/llm"
	"github.com/phobologic/codeexplain/internal/metrics"
	"github.com/phobologic/codeexplain/internal/model"
	"github.com/phobologic/codeexplain/internal/prompt"
)

// Method names the detection stage that produced an answer.
type Method string

const (
	MethodRemote    Method = "remote"
	MethodHeuristic Method = "heuristic"
	MethodDefault   Method = "default"
)

const (
	remoteSampleRunes = 1000
	remoteMaxTokens   = 50
)

// Config wires a Detector. Only Catalog is required; without a Model the
// detector runs heuristic scoring alone.
type Config struct {
	Catalog *lang.Catalog
	Model   llm.Model
	Prompts *prompt.Builder
	Timeout time.Duration
	Logger  logrus.FieldLogger
	Metrics metrics.Recorder
}

// Detector runs the remote-then-heuristic detection cascade.
type Detector struct {
	catalog *lang.Catalog
	model   llm.Model
	prompts *prompt.Builder
	timeout time.Duration
	log     logrus.FieldLogger
	metrics metrics.Recorder
}

// New returns a Detector for cfg.
func New(cfg Config) (*Detector, error) {
	if cfg.Catalog == nil {
		return nil, errors.New("detect: catalog is required")
	}
	d := &Detector{
		catalog: cfg.Catalog,
		model:   cfg.Model,
		prompts: cfg.Prompts,
		timeout: cfg.Timeout,
		log:     cfg.Logger,
		metrics: cfg.Metrics,
	}
	if d.timeout == 0 {
		d.timeout = llm.DefaultTimeout
	}
	if d.log == nil {
		d.log = logrus.StandardLogger()
	}
	if d.metrics == nil {
		d.metrics = metrics.Nop{}
	}
	if d.model != nil && d.prompts == nil {
		p, err := prompt.New(prompt.Templates{}, cfg.Catalog.Vocabulary())
		if err != nil {
			return nil, err
		}
		d.prompts = p
	}
	return d, nil
}

// Detect returns the language of source. It never fails: remote problems
// fall through to heuristic scoring.
func (d *Detector) Detect(ctx context.Context, source string) model.LanguageTag {
	tag, _ := d.DetectWithMethod(ctx, source)
	return tag
}

// DetectWithMethod is Detect that also reports which stage answered.
func (d *Detector) DetectWithMethod(ctx context.Context, source string) (model.LanguageTag, Method) {
	if d.model != nil {
		if tag, ok := d.remote(ctx, source); ok {
			d.metrics.Detection(string(MethodRemote))
			return tag, MethodRemote
		}
	}
	tag, method := d.Heuristic(source)
	d.metrics.Detection(string(method))
	return tag, method
}

func (d *Detector) remote(ctx context.Context, source string) (model.LanguageTag, bool) {
	p, err := d.prompts.Detect(truncateRunes(source, remoteSampleRunes))
	if err != nil {
		d.log.WithError(err).Warn("rendering detection prompt")
		return model.Unknown, false
	}

	res := llm.Call(ctx, d.model, p, remoteMaxTokens, d.timeout)
	d.metrics.RemoteCall("detect", res.Outcome())
	if !res.OK() {
		d.log.WithError(res.Err).Debug("remote detection failed, using heuristics")
		return model.Unknown, false
	}

	tag, ok := d.Resolve(res.Text)
	if !ok {
		d.log.WithField("answer", truncateRunes(res.Text, 80)).Debug("unrecognized language answer")
	}
	return tag, ok
}

// Resolve maps a free-form model answer onto the catalog vocabulary: alias
// table first, then exact match, then the first vocabulary entry found as a
// substring.
func (d *Detector) Resolve(answer string) (model.LanguageTag, bool) {
	a := strings.ToLower(strings.TrimSpace(answer))
	if a == "" {
		return model.Unknown, false
	}
	if tag, ok := d.catalog.Alias(a); ok {
		return tag, true
	}
	if tag, ok := d.catalog.InVocabulary(a); ok {
		return tag, true
	}
	for _, v := range d.catalog.Vocabulary() {
		if strings.Contains(a, string(v)) {
			return v, true
		}
	}
	return model.Unknown, false
}

// Score is the heuristic total of one language.
type Score struct {
	Tag   model.LanguageTag
	Score int
}

// Scores returns every catalog language's match total, in catalog order.
func (d *Detector) Scores(source string) []Score {
	entries := d.catalog.Entries()
	scores := make([]Score, len(entries))
	for i, e := range entries {
		n := 0
		for _, re := range e.Patterns {
			n += len(re.FindAllStringIndex(source, -1))
		}
		scores[i] = Score{Tag: e.Tag, Score: n}
	}
	return scores
}

// Heuristic picks the highest-scoring language. Ties go to the language
// listed first in the catalog; an all-zero board yields the catalog's
// fallback language.
func (d *Detector) Heuristic(source string) (model.LanguageTag, Method) {
	best := Score{Tag: d.catalog.Fallback()}
	for _, s := range d.Scores(source) {
		if s.Score > best.Score {
			best = s
		}
	}
	if best.Score == 0 {
		return d.catalog.Fallback(), MethodDefault
	}
	return best.Tag, MethodHeuristic
}

func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
