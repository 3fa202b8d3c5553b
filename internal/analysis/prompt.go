// Package analysis turns a question about the working table into SQL, an
// explanation and a chart suggestion by asking a language model.
package analysis

import (
	"fmt"
	"strings"

	"github.com/akshatyadav31/Lumora-Ai/internal/domain"
	"github.com/akshatyadav31/Lumora-Ai/internal/repository"
	"github.com/akshatyadav31/Lumora-Ai/internal/schema"
)

// DefaultRowLimit caps result sets when the question names no limit.
const DefaultRowLimit = 100

const systemPromptTemplate = `You are an expert data analyst who writes SQL.
Translate the user's question into one executable SQL query against the table named '%[1]s'.

The table '%[1]s' has the following columns: %[2]s.

Respond with a single JSON object and nothing else. Do not wrap it in Markdown code fences and do not add any preamble.
The object has exactly these fields:
{
  "sql": "The SQL query answering the question. Use standard SQL that SQLite accepts. Always SELECT from '%[1]s'. Add LIMIT %[3]d when the question does not specify how many rows to return.",
  "explanation": "A short, friendly explanation of what the result shows.",
  "visualization": {
    "type": "bar | line | pie | area",
    "xAxisKey": "result column for the x axis",
    "dataKey": "result column for the y axis",
    "title": "Chart title"
  }
}

Chart rules:
- If the question is about change over time, use "line".
- If the question compares categories, use "bar" or "pie".
- xAxisKey and dataKey must be column names that appear in your query's result.
- Omit "visualization" when no chart makes sense.`

// BuildSystemPrompt renders the instruction template for the given columns.
func BuildSystemPrompt(columns []domain.ColumnDefinition) string {
	return fmt.Sprintf(systemPromptTemplate, repository.WorkingTable, schema.Describe(columns), DefaultRowLimit)
}

// buildMessages pairs the system prompt with the user's question.
func buildMessages(question string, columns []domain.ColumnDefinition) (system, user string) {
	return BuildSystemPrompt(columns), strings.TrimSpace(question)
}
