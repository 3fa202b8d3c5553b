// Package canned provides the built-in demo datasets and the deterministic
// responder used when no live analysis is possible.
package canned

import (
	"time"

	"github.com/akshatyadav31/Lumora-Ai/internal/domain"
)

// Demo dataset ids. Uploads get UUIDs, so these never collide.
const (
	SalesDatasetID = "1"
	ChurnDatasetID = "2"
)

var epoch = time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)

// Datasets returns fresh copies of the demo datasets. The first one is the
// dataset active at start-up.
func Datasets() []domain.Dataset {
	return []domain.Dataset{
		{
			DatasetID: SalesDatasetID,
			Name:      "sales_q3_2024.csv",
			RowCount:  14500,
			Columns: []domain.ColumnDefinition{
				{Name: "date", Type: domain.ColumnTypeDate},
				{Name: "region", Type: domain.ColumnTypeString},
				{Name: "product_category", Type: domain.ColumnTypeString},
				{Name: "sales_amount", Type: domain.ColumnTypeNumber},
				{Name: "units_sold", Type: domain.ColumnTypeNumber},
				{Name: "customer_segment", Type: domain.ColumnTypeString},
			},
			Demo:      true,
			CreatedAt: epoch,
		},
		{
			DatasetID: ChurnDatasetID,
			Name:      "tech_churn_data.xlsx",
			RowCount:  5200,
			Columns: []domain.ColumnDefinition{
				{Name: "customer_id", Type: domain.ColumnTypeString},
				{Name: "tenure", Type: domain.ColumnTypeNumber},
				{Name: "monthly_charges", Type: domain.ColumnTypeNumber},
				{Name: "total_charges", Type: domain.ColumnTypeNumber},
				{Name: "churn", Type: domain.ColumnTypeBoolean},
				{Name: "contract_type", Type: domain.ColumnTypeString},
			},
			Demo:      true,
			CreatedAt: epoch,
		},
	}
}

// IsDemo reports whether id names a built-in dataset.
func IsDemo(id string) bool {
	return id == SalesDatasetID || id == ChurnDatasetID
}
