package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akshatyadav31/Lumora-Ai/internal/domain"
)

func TestHTTPBase(t *testing.T) {
	got, err := httpBase("ws://localhost:8080/v1/ws?x=1")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", got)

	got, err = httpBase("wss://lumora.example.com/v1/ws")
	require.NoError(t, err)
	assert.Equal(t, "https://lumora.example.com", got)
}

func TestPrintMessage(t *testing.T) {
	var out bytes.Buffer
	printMessage(&out, &domain.Message{
		Role:    domain.RoleAssistant,
		Content: "Sales by region.",
		SQL:     "SELECT region, total FROM uploaded_data",
		Data: []domain.Row{
			domain.NewRow(domain.F("region", domain.String("West")), domain.F("total", domain.Number(100))),
			domain.NewRow(domain.F("region", domain.String("East")), domain.F("total", domain.Null())),
		},
		Visualization: &domain.VisualizationSpec{Type: domain.VisualizationBar, XAxisKey: "region", DataKey: "total", Title: "Sales"},
	})

	lines := strings.Split(out.String(), "\n")
	assert.Contains(t, lines, "  region | total")
	assert.Contains(t, lines, "  ------ | -----")
	assert.Contains(t, lines, "  West   | 100  ")
	assert.Contains(t, lines, "  East   |      ")
	assert.Contains(t, out.String(), "SQL: SELECT region, total FROM uploaded_data")
	assert.Contains(t, out.String(), "Chart: bar of total by region (Sales)")
}

func TestPrintMessageSkipsUserMessages(t *testing.T) {
	var out bytes.Buffer
	printMessage(&out, &domain.Message{Role: domain.RoleUser, Content: "hi"})
	assert.Empty(t, out.String())
}

func TestPrintTableTruncates(t *testing.T) {
	rows := make([]domain.Row, maxTableRows+3)
	for i := range rows {
		rows[i] = domain.NewRow(domain.F("n", domain.Number(float64(i))))
	}
	var out bytes.Buffer
	printTable(&out, rows)
	assert.Contains(t, out.String(), "... 3 more rows")
}
