package sqlc

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	namedParam = regexp.MustCompile(`sqlc\.n?arg\('(\w+)'\)`)
	queryName  = regexp.MustCompile(`^(\w+) :\w+`)
)

var queryText = map[string]string{
	"GetOrderByID":       getOrderByID,
	"ListOrders":         listOrders,
	"CountOrders":        countOrders,
	"ApplyOrderRefund":   applyOrderRefund,
	"CreateOrderRefund":  createOrderRefund,
	"ListOrderRefunds":   listOrderRefunds,
	"CreateOrderHistory": createOrderHistory,
	"GetOrderHistory":    getOrderHistory,
	"CreateLead":         createLead,
	"UpdateLeadAnswers":  updateLeadAnswers,
	"ListLeads":          listLeads,
	"CountLeads":         countLeads,
	"UpdateLeadStatus":   updateLeadStatus,
}

// positional numbers named params by first appearance, as sqlc does.
func positional(sql string) string {
	var order []string
	return namedParam.ReplaceAllStringFunc(sql, func(m string) string {
		name := namedParam.FindStringSubmatch(m)[1]
		for i, n := range order {
			if n == name {
				return fmt.Sprintf("$%d", i+1)
			}
		}
		order = append(order, name)
		return fmt.Sprintf("$%d", len(order))
	})
}

func TestQueriesMatchQueryFiles(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("..", "query", "*.sql"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	seen := map[string]bool{}
	for _, file := range files {
		data, err := os.ReadFile(file)
		require.NoError(t, err)

		for _, block := range strings.Split(string(data), "-- name: ")[1:] {
			m := queryName.FindStringSubmatch(block)
			require.NotNil(t, m, "unnamed query in %s", file)
			name := m[1]

			want := positional("-- name: " + strings.TrimSuffix(strings.TrimSpace(block), ";"))
			got, ok := queryText[name]
			if !assert.True(t, ok, "%s in %s has no Go counterpart", name, file) {
				continue
			}
			assert.Equal(t, want, strings.TrimSpace(got), "%s drifted from %s", name, file)
			seen[name] = true
		}
	}
	assert.Len(t, seen, len(queryText), "Go queries without a .sql source")
}
