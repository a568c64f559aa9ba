package pdftabular_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivanvanderbyl/pdftabular"
)

// invoiceSchema is inferred from three well formed rows:
//
//	Widget A    12    $3.50
//	Gadget B    4     $10.00
//	Doohickey D  2     $1.00
//
// giving column windows [0,11] [12,14] [18,24].
func invoiceSchema(t *testing.T) pdftabular.ColumnSchema {
	t.Helper()
	lines := tokenize("Widget A    12    $3.50\nGadget B    4     $10.00\nDoohickey D  2     $1.00")
	ts, err := pdftabular.Analyze(lines, pdftabular.AnalyzerOptions{})
	require.NoError(t, err)
	require.Equal(t, []pdftabular.Column{
		{Name: "column_1", Left: 0, Right: 11},
		{Name: "column_2", Left: 12, Right: 14},
		{Name: "column_3", Left: 18, Right: 24},
	}, ts.Schema.Columns)
	return ts.Schema
}

func line(text string) pdftabular.Line {
	return tokenize(text)[0]
}

func confidences(row pdftabular.Row) []pdftabular.Confidence {
	out := make([]pdftabular.Confidence, len(row.Cells))
	for i, c := range row.Cells {
		out[i] = c.Confidence
	}
	return out
}

func TestReconcile_ExactMatch(t *testing.T) {
	schema := invoiceSchema(t)

	row := pdftabular.Reconcile(schema, line("Gadget B    4     $10.00"), pdftabular.DefaultBoundaryTolerance)

	assert.Equal(t, pdftabular.MatchExact, row.Match)
	assert.Equal(t, []string{"Gadget B", "4", "$10.00"}, row.Values())
	assert.Equal(t, []pdftabular.Confidence{pdftabular.Filled, pdftabular.Filled, pdftabular.Filled}, confidences(row))
	assert.Equal(t, "Gadget B    4     $10.00", row.Raw)
	assert.Empty(t, row.Unassigned)
}

// An under-matched row leaves its missing cell blank rather than borrowing a
// value from a neighbouring row.
func TestReconcile_UnderMatch(t *testing.T) {
	schema := invoiceSchema(t)

	row := pdftabular.Reconcile(schema, line("Gizmo C           $7.25"), pdftabular.DefaultBoundaryTolerance)

	assert.Equal(t, pdftabular.MatchUnder, row.Match)
	assert.Equal(t, []string{"Gizmo C", "", "$7.25"}, row.Values())
	assert.Equal(t, []pdftabular.Confidence{pdftabular.Filled, pdftabular.BlankNoToken, pdftabular.Filled}, confidences(row))
	assert.False(t, row.Ambiguous())
}

func TestReconcile_UnderMatchCollision(t *testing.T) {
	schema := invoiceSchema(t)

	// both tokens are nearest to column 0
	row := pdftabular.Reconcile(schema, line("ab  cd"), pdftabular.DefaultBoundaryTolerance)

	assert.Equal(t, pdftabular.MatchAmbiguous, row.Match)
	assert.Equal(t, []string{"ab", "", ""}, row.Values())
	require.Len(t, row.Unassigned, 1)
	assert.Equal(t, "cd", row.Unassigned[0].Text)
}

func TestReconcile_OverMatchMerged(t *testing.T) {
	schema := invoiceSchema(t)

	row := pdftabular.Reconcile(schema, line("Widget  A   12    $3.50"), pdftabular.DefaultBoundaryTolerance)

	assert.Equal(t, pdftabular.MatchMerged, row.Match)
	assert.Equal(t, []string{"Widget  A", "12", "$3.50"}, row.Values(), "merged cell keeps the source spacing")
	assert.Empty(t, row.Unassigned)
}

func TestReconcile_OverMatchAmbiguous(t *testing.T) {
	schema := invoiceSchema(t)
	raw := "Item C  Extra Description   7   $2.00"

	row := pdftabular.Reconcile(schema, line(raw), pdftabular.DefaultBoundaryTolerance)

	assert.Equal(t, pdftabular.MatchAmbiguous, row.Match)
	assert.True(t, row.Ambiguous())
	assert.Equal(t, []string{"Item C", "", "$2.00"}, row.Values())
	assert.Equal(t, []pdftabular.Confidence{
		pdftabular.Filled,
		pdftabular.BlankLowConfidence,
		pdftabular.Filled,
	}, confidences(row))
	assert.Equal(t, raw, row.Raw)

	var unassigned []string
	for _, tok := range row.Unassigned {
		unassigned = append(unassigned, tok.Text)
	}
	assert.Equal(t, []string{"Extra Description", "7"}, unassigned)
}

func TestReconcile_ToleranceWidensWindows(t *testing.T) {
	schema := invoiceSchema(t)
	// "Widget  Blue" overruns column 0 and pushes "12" past column 1
	l := line("Widget  Blue  12    $3.50")

	strict := pdftabular.Reconcile(schema, l, 0)
	assert.Equal(t, pdftabular.MatchAmbiguous, strict.Match)

	loose := pdftabular.Reconcile(schema, l, 2)
	assert.Equal(t, pdftabular.MatchMerged, loose.Match)
	assert.Equal(t, []string{"Widget  Blue", "12", "$3.50"}, loose.Values())
}

// Every token of a line ends up either inside a filled cell or in the
// unassigned list.
func TestReconcile_NothingDiscarded(t *testing.T) {
	schema := invoiceSchema(t)
	raws := []string{
		"Widget A    12    $3.50",
		"Gizmo C           $7.25",
		"ab  cd",
		"Widget  A   12    $3.50",
		"Item C  Extra Description   7   $2.00",
		"a  b  c  d  e  f",
		"                    $9.99",
	}

	for _, raw := range raws {
		l := line(raw)
		row := pdftabular.Reconcile(schema, l, pdftabular.DefaultBoundaryTolerance)
		require.Len(t, row.Cells, schema.Len())

		for _, tok := range l.Tokens {
			found := false
			for _, c := range row.Cells {
				if c.Confidence == pdftabular.Filled && containsToken(l, c.Value, tok) {
					found = true
				}
			}
			for _, u := range row.Unassigned {
				if u == tok {
					found = true
				}
			}
			assert.True(t, found, "token %q of %q was discarded", tok.Text, raw)
		}

		for _, c := range row.Cells {
			if c.Confidence != pdftabular.Filled {
				assert.Empty(t, c.Value)
			}
		}
	}
}

func containsToken(l pdftabular.Line, value string, tok pdftabular.Token) bool {
	runes := []rune(l.Text)
	for start := 0; start+len([]rune(value)) <= len(runes); start++ {
		end := start + len([]rune(value))
		if string(runes[start:end]) == value && start <= tok.Start && tok.End <= end {
			return true
		}
	}
	return false
}

func TestReconcile_Deterministic(t *testing.T) {
	schema := invoiceSchema(t)
	l := line("Item C  Extra Description   7   $2.00")

	first := pdftabular.Reconcile(schema, l, pdftabular.DefaultBoundaryTolerance)
	for range 10 {
		assert.Equal(t, first, pdftabular.Reconcile(schema, l, pdftabular.DefaultBoundaryTolerance))
	}
}

func TestReconcile_NoSchema(t *testing.T) {
	row := pdftabular.Reconcile(pdftabular.ColumnSchema{}, line("just some text"), pdftabular.DefaultBoundaryTolerance)

	assert.Equal(t, pdftabular.MatchRaw, row.Match)
	assert.Empty(t, row.Cells)
	assert.Equal(t, "just some text", row.Raw)
}

func TestRow_Map(t *testing.T) {
	schema := invoiceSchema(t)
	row := pdftabular.Reconcile(schema, line("Gizmo C           $7.25"), pdftabular.DefaultBoundaryTolerance)

	assert.Equal(t, map[string]string{
		"column_1": "Gizmo C",
		"column_2": "",
		"column_3": "$7.25",
	}, row.Map(schema))
}
