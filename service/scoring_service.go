package service

import (
	"context"
	"math"
	"time"

	"loandesk/domain"
	"loandesk/repository"
)

// roundTo4Decimals keeps stored probabilities byte-stable across
// serialization round trips.
func roundTo4Decimals(value float64) float64 {
	return math.Round(value*10000) / 10000
}

// ScoringService turns computed metrics into a credit score, a default
// probability, a risk category and a recommendation. Score is a pure
// function of its input and the configured model.
type ScoringService struct {
	store   repository.DocumentStore
	metrics *MetricsService
	cfg     domain.ScoringConfig
	timeout time.Duration
	now     func() time.Time
}

func NewScoringService(store repository.DocumentStore,
	metrics *MetricsService,
	cfg domain.ScoringConfig,
	timeout time.Duration,
) *ScoringService {
	return &ScoringService{
		store:   store,
		metrics: metrics,
		cfg:     cfg,
		timeout: timeout,
		now:     time.Now,
	}
}

// Score projects metrics onto the 300-850 scale. Utilization saturates at
// 100 before inversion; inquiries are deliberately uncapped, so a client
// with more than 100 inquiries in a year drives the factor negative and the
// final score can leave the nominal range. That is reference behavior, kept
// unclamped pending product-owner confirmation.
func (s *ScoringService) Score(m domain.ComputedMetrics) domain.ScoreResult {
	cfg := s.cfg

	ph := m.PaymentHistory / 100

	util := m.CreditUtilization
	if util > 100 {
		util = 100
	}
	utilNorm := 1 - util/100

	hist := float64(m.CreditHistoryLength) / float64(cfg.HistoryCapMonths)
	if hist > 1 {
		hist = 1
	}

	mix := m.CreditMix / 100
	inq := 1 - float64(m.NewInquiries)/100

	w := cfg.Weights
	weighted := w.PaymentHistory*ph +
		w.Utilization*utilNorm +
		w.HistoryLength*hist +
		w.CreditMix*mix +
		w.Inquiries*inq

	score := int(math.Round(cfg.BaseScore + weighted*cfg.ScoreRange))
	category := s.ClassifyRisk(score)

	return domain.ScoreResult{
		CID:                m.CID,
		Timestamp:          s.now().UTC(),
		Input:              m,
		CreditScore:        score,
		DefaultProbability: s.defaultProbability(m),
		RiskCategory:       category,
		Recommendation:     recommendationFor(category),
	}
}

// defaultProbability runs the logistic model over the /100-scale factors.
// History length divides by 100 here, not by the score cap; the two
// normalizations are intentionally different models.
func (s *ScoringService) defaultProbability(m domain.ComputedMetrics) float64 {
	p := s.cfg.Probability
	z := p.Intercept +
		p.PaymentHistory*(m.PaymentHistory/100) +
		p.Utilization*(m.CreditUtilization/100) +
		p.HistoryLength*(float64(m.CreditHistoryLength)/100) +
		p.CreditMix*(m.CreditMix/100) +
		p.Inquiries*(float64(m.NewInquiries)/100)

	return roundTo4Decimals(1 / (1 + math.Exp(-z)))
}

// ClassifyRisk applies the closed-below category thresholds.
func (s *ScoringService) ClassifyRisk(score int) domain.RiskCategory {
	t := s.cfg.Thresholds
	switch {
	case score >= t.Exceptional:
		return domain.RiskExceptional
	case score >= t.VeryGood:
		return domain.RiskVeryGood
	case score >= t.Good:
		return domain.RiskGood
	case score >= t.Fair:
		return domain.RiskFair
	default:
		return domain.RiskPoor
	}
}

func recommendationFor(category domain.RiskCategory) domain.Recommendation {
	switch category {
	case domain.RiskPoor:
		return domain.RecommendReviewOrDecline
	case domain.RiskFair:
		return domain.RecommendReview
	default:
		return domain.RecommendApprove
	}
}

// ScoreClient loads the client's processed metrics, scores them and
// persists the result. The latest result overwrites the stored one.
func (s *ScoringService) ScoreClient(ctx context.Context, cid string) (domain.ScoreResult, error) {
	metrics, err := s.metrics.ProcessedMetrics(ctx, cid)
	if err != nil {
		return domain.ScoreResult{}, err
	}

	result := s.Score(metrics)
	if err := putJSON(ctx, s.store, s.timeout, scorePath(cid), result); err != nil {
		return domain.ScoreResult{}, err
	}
	return result, nil
}
