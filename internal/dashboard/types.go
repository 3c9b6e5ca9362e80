package dashboard

import (
	"time"

	"github.com/google/uuid"
)

// Summary holds the portfolio-wide KPIs for one owner.
type Summary struct {
	TotalQuantity  int     `json:"totalQuantity"`
	DistinctCards  int     `json:"distinctCards"`
	DistinctSets   int     `json:"distinctSets"`
	TotalValue     float64 `json:"totalValue"`
	GradedQuantity int     `json:"gradedQuantity"`
}

// TimeSeriesQuery selects the metric and bucket size of a time series.
type TimeSeriesQuery struct {
	Metric      string `json:"metric"`
	Granularity string `json:"granularity"`
	Period      PeriodQuery
}

// TimeSeriesPoint is one cumulative bucket.
type TimeSeriesPoint struct {
	Bucket string  `json:"bucket"`
	Value  float64 `json:"value"`
}

// TimeSeries is the chronological cumulative series for one metric.
type TimeSeries struct {
	Metric      string            `json:"metric"`
	Granularity string            `json:"granularity"`
	Points      []TimeSeriesPoint `json:"points"`
}

// CompanyShare is one grading company's slice of the graded population.
type CompanyShare struct {
	Company    string  `json:"company"`
	Quantity   int     `json:"quantity"`
	Percentage float64 `json:"percentage"`
}

// GradeDistribution splits the collection into graded and normal copies.
type GradeDistribution struct {
	GradedQuantity   int            `json:"gradedQuantity"`
	NormalQuantity   int            `json:"normalQuantity"`
	GradedPercentage int            `json:"gradedPercentage"`
	Companies        []CompanyShare `json:"companies"`
}

// TopSet is one set ranked by owned quantity.
type TopSet struct {
	SetID      string  `json:"setId"`
	SetName    string  `json:"setName"`
	SetLogo    string  `json:"setLogo,omitempty"`
	Quantity   int     `json:"quantity"`
	TotalValue float64 `json:"totalValue"`
}

// TopSetsReport carries the ranked sets plus the distinct set count.
type TopSetsReport struct {
	Sets         []TopSet `json:"sets"`
	DistinctSets int      `json:"distinctSets"`
}

// Activity is one recent portfolio event inferred from timestamps.
type Activity struct {
	HoldingID uuid.UUID `json:"holdingId"`
	CardID    string    `json:"cardId"`
	Name      string    `json:"name,omitempty"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	Type      string    `json:"type"`
	Quantity  int       `json:"quantity"`
	When      time.Time `json:"when"`
}

// ExpensiveCard is one holding ranked by its representative price.
type ExpensiveCard struct {
	HoldingID uuid.UUID `json:"holdingId"`
	CardID    string    `json:"cardId"`
	Name      string    `json:"name,omitempty"`
	SetName   string    `json:"setName,omitempty"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	Price     float64   `json:"price"`
	Graded    bool      `json:"graded"`
}
