package canned

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/akshatyadav31/Lumora-Ai/internal/domain"
)

// Intent is the canned scenario a question was routed to.
type Intent string

const (
	IntentTimeSeries   Intent = "time_series"
	IntentCategorical  Intent = "categorical"
	IntentDistribution Intent = "distribution"
)

type scenario struct {
	sql  string
	viz  domain.VisualizationType
	rows []domain.Row
}

func row(key string, label string, valueKey string, value float64) domain.Row {
	return domain.NewRow(domain.F(key, domain.String(label)), domain.F(valueKey, domain.Number(value)))
}

var scenarios = map[Intent]scenario{
	IntentTimeSeries: {
		sql: "SELECT \n  DATE_TRUNC('month', date) as month, \n  SUM(sales_amount) as total_sales \nFROM sales_q3_2024 \nGROUP BY 1 \nORDER BY 1;",
		viz: domain.VisualizationLine,
		rows: []domain.Row{
			row("month", "Jan", "total_sales", 45000),
			row("month", "Feb", "total_sales", 52000),
			row("month", "Mar", "total_sales", 49000),
			row("month", "Apr", "total_sales", 61000),
			row("month", "May", "total_sales", 58000),
			row("month", "Jun", "total_sales", 72000),
		},
	},
	IntentCategorical: {
		sql: "SELECT \n  region, \n  SUM(sales_amount) as revenue \nFROM sales_q3_2024 \nGROUP BY region \nORDER BY revenue DESC;",
		viz: domain.VisualizationBar,
		rows: []domain.Row{
			row("region", "North America", "revenue", 125000),
			row("region", "Europe", "revenue", 98000),
			row("region", "Asia Pacific", "revenue", 85000),
			row("region", "Latin America", "revenue", 45000),
		},
	},
	IntentDistribution: {
		sql: "SELECT \n  product_category, \n  COUNT(*) as sales_count \nFROM sales_q3_2024 \nGROUP BY product_category;",
		viz: domain.VisualizationPie,
		rows: []domain.Row{
			row("product_category", "Electronics", "sales_count", 450),
			row("product_category", "Clothing", "sales_count", 320),
			row("product_category", "Home & Garden", "sales_count", 210),
			row("product_category", "Books", "sales_count", 150),
		},
	},
}

// Classify routes a question by keyword: trend/time/month first, then
// region/where, else distribution. Matching is on lower-cased substrings.
func Classify(question string) Intent {
	q := strings.ToLower(question)
	switch {
	case strings.Contains(q, "trend") || strings.Contains(q, "time") || strings.Contains(q, "month"):
		return IntentTimeSeries
	case strings.Contains(q, "region") || strings.Contains(q, "where"):
		return IntentCategorical
	default:
		return IntentDistribution
	}
}

// Responder answers questions with fixed results. It never runs SQL and
// never calls a provider.
type Responder struct {
	delay time.Duration
}

// NewResponder creates a responder that waits delay before answering, to
// mimic a round trip. Zero answers immediately.
func NewResponder(delay time.Duration) *Responder {
	return &Responder{delay: delay}
}

// Respond builds the canned analysis for question about datasetName.
func (r *Responder) Respond(ctx context.Context, question, datasetName string) (*domain.AnalysisResult, error) {
	if r.delay > 0 {
		timer := time.NewTimer(r.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	sc := scenarios[Classify(question)]
	data := make([]domain.Row, len(sc.rows))
	copy(data, sc.rows)

	keys := data[0].Keys()
	return &domain.AnalysisResult{
		SQL:         sc.sql,
		Explanation: fmt.Sprintf("I've analyzed the %s dataset. Here is the breakdown based on your request.", datasetName),
		Data:        data,
		Visualization: &domain.VisualizationSpec{
			Type:     sc.viz,
			XAxisKey: keys[0],
			DataKey:  keys[1],
			Title:    "Analysis Result",
		},
	}, nil
}
