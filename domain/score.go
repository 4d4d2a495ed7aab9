package domain

import "time"

type RiskCategory string

const (
	RiskExceptional RiskCategory = "Exceptional"
	RiskVeryGood    RiskCategory = "VeryGood"
	RiskGood        RiskCategory = "Good"
	RiskFair        RiskCategory = "Fair"
	RiskPoor        RiskCategory = "Poor"
)

type Recommendation string

const (
	RecommendApprove         Recommendation = "APPROVE"
	RecommendReview          Recommendation = "REVIEW"
	RecommendReviewOrDecline Recommendation = "REVIEW_OR_DECLINE"
)

// ScoreResult is the output of one scoring request. Results are immutable;
// the latest result for a client overwrites the stored one.
type ScoreResult struct {
	CID                string          `json:"cid"`
	Timestamp          time.Time       `json:"timestamp"`
	Input              ComputedMetrics `json:"input"`
	CreditScore        int             `json:"creditScore"`
	DefaultProbability float64         `json:"defaultProbability"`
	RiskCategory       RiskCategory    `json:"riskCategory"`
	Recommendation     Recommendation  `json:"recommendation"`
}

// ScoringWeights are the factor weights of the score projection. They must
// sum to 1.0 for the score to stay within its natural range.
type ScoringWeights struct {
	PaymentHistory float64 `yaml:"payment_history" json:"paymentHistory"`
	Utilization    float64 `yaml:"utilization" json:"utilization"`
	HistoryLength  float64 `yaml:"history_length" json:"historyLength"`
	CreditMix      float64 `yaml:"credit_mix" json:"creditMix"`
	Inquiries      float64 `yaml:"inquiries" json:"inquiries"`
}

// RiskThresholds are the closed-below score cutoffs per category. Anything
// below Fair is Poor.
type RiskThresholds struct {
	Exceptional int `yaml:"exceptional" json:"exceptional"`
	VeryGood    int `yaml:"very_good" json:"veryGood"`
	Good        int `yaml:"good" json:"good"`
	Fair        int `yaml:"fair" json:"fair"`
}

// ProbabilityModel is the logistic default-probability model. Coefficients
// apply to the /100-scale factors, which is a second normalization distinct
// from the score projection (history length divides by 100 here, not by the
// 60-month cap).
type ProbabilityModel struct {
	Intercept      float64 `yaml:"intercept" json:"intercept"`
	PaymentHistory float64 `yaml:"payment_history" json:"paymentHistory"`
	Utilization    float64 `yaml:"utilization" json:"utilization"`
	HistoryLength  float64 `yaml:"history_length" json:"historyLength"`
	CreditMix      float64 `yaml:"credit_mix" json:"creditMix"`
	Inquiries      float64 `yaml:"inquiries" json:"inquiries"`
}

// ScoringConfig bundles every tunable of the scoring engine. All values are
// overridable from configuration; DefaultScoringConfig is the production
// model.
type ScoringConfig struct {
	Weights          ScoringWeights   `yaml:"weights" json:"weights"`
	Thresholds       RiskThresholds   `yaml:"thresholds" json:"thresholds"`
	Probability      ProbabilityModel `yaml:"probability" json:"probability"`
	BaseScore        float64          `yaml:"base_score" json:"baseScore"`
	ScoreRange       float64          `yaml:"score_range" json:"scoreRange"`
	HistoryCapMonths int              `yaml:"history_cap_months" json:"historyCapMonths"`
}

func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		Weights: ScoringWeights{
			PaymentHistory: 0.35,
			Utilization:    0.30,
			HistoryLength:  0.15,
			CreditMix:      0.10,
			Inquiries:      0.10,
		},
		Thresholds: RiskThresholds{
			Exceptional: 800,
			VeryGood:    740,
			Good:        670,
			Fair:        580,
		},
		Probability: ProbabilityModel{
			Intercept:      -4,
			PaymentHistory: 5,
			Utilization:    -3,
			HistoryLength:  2,
			CreditMix:      1,
			Inquiries:      -2,
		},
		BaseScore:        300,
		ScoreRange:       550,
		HistoryCapMonths: 60,
	}
}
