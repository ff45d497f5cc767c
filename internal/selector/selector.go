package selector

import (
	"math/rand/v2"
	"sort"

	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/bank"
	"github.com/aiborg-ai/aiborg-learn-sphere-sub002/internal/irt"
)

// Candidate is a scored bank item.
type Candidate struct {
	Question    bank.Question
	Information float64
	Score       float64
	Issues      []irt.Issue
}

// Request is the input to a single selection.
type Request struct {
	Theta      float64
	Asked      map[string]bool
	Candidates []bank.Question

	// CategoryCounts is how often each category was asked this session.
	CategoryCounts map[string]int
}

// Selector picks the next item to administer. It is not safe for
// concurrent use because it owns the session's random source.
type Selector struct {
	cfg    Config
	irtCfg irt.Config
	rng    *rand.Rand
}

// New creates a selector. rng must be session-scoped; never share one
// across sessions.
func New(cfg Config, irtCfg irt.Config, rng *rand.Rand) *Selector {
	if cfg.TopK < 1 {
		cfg.TopK = 1
	}
	return &Selector{cfg: cfg, irtCfg: irtCfg, rng: rng}
}

// SelectNext returns the next question, or nil when nothing is eligible.
func (s *Selector) SelectNext(req Request) *Candidate {
	ranked := s.Rank(req)
	if len(ranked) == 0 {
		return nil
	}

	pool := s.pool(ranked)
	pool = leastCovered(pool, req.CategoryCounts)

	pick := pool[0]
	if len(pool) > 1 && s.rng != nil {
		pick = pool[s.rng.IntN(len(pool))]
	}
	return &pick
}

// Rank scores all eligible candidates, best first. Ordering among equal
// scores is by category coverage, then id, so results are deterministic.
func (s *Selector) Rank(req Request) []Candidate {
	seen := make(map[string]bool, len(req.Candidates))
	out := make([]Candidate, 0, len(req.Candidates))

	for _, q := range req.Candidates {
		if q.ID == "" || req.Asked[q.ID] || seen[q.ID] {
			continue
		}
		seen[q.ID] = true

		params, issues := irt.Normalize(q.Params(), s.irtCfg)
		info := irt.Information(req.Theta, params)
		score := info / (1 + s.cfg.CoverageWeight*float64(req.CategoryCounts[q.Category]))

		out = append(out, Candidate{
			Question:    q,
			Information: info,
			Score:       score,
			Issues:      issues,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		ci, cj := req.CategoryCounts[out[i].Question.Category], req.CategoryCounts[out[j].Question.Category]
		if ci != cj {
			return ci < cj
		}
		return out[i].Question.ID < out[j].Question.ID
	})
	return out
}

// pool returns the exposure pool: the top-K items within the exposure
// window of the best score, plus every item tied with the best.
func (s *Selector) pool(ranked []Candidate) []Candidate {
	best := ranked[0].Score
	floor := best * (1 - s.cfg.ExposureWindow)

	var pool []Candidate
	for i, c := range ranked {
		tied := best-c.Score <= s.cfg.TieEpsilon
		inWindow := i < s.cfg.TopK && c.Score >= floor
		if !tied && !inWindow {
			break
		}
		pool = append(pool, c)
	}
	return pool
}

// leastCovered keeps only the candidates whose category was asked least.
func leastCovered(pool []Candidate, counts map[string]int) []Candidate {
	min := -1
	for _, c := range pool {
		n := counts[c.Question.Category]
		if min < 0 || n < min {
			min = n
		}
	}
	var out []Candidate
	for _, c := range pool {
		if counts[c.Question.Category] == min {
			out = append(out, c)
		}
	}
	return out
}
