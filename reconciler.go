package pdftabular

// DefaultBoundaryTolerance is the slack, in characters, allowed on either side
// of a column's observed span when surplus tokens are merged into it.
const DefaultBoundaryTolerance = 2

// Reconcile maps one line onto the schema and always returns a row with one
// cell per column.
//
// A line with as many tokens as columns is assigned positionally. A line with
// fewer tokens places each token in the column with the nearest left boundary
// and leaves the rest blank-no-token. A line with more tokens is accepted only
// if there is exactly one way to merge consecutive tokens so that every group
// fits inside its column's span widened by tolerance. Anything else falls back
// to blanking every cell except the first and last when those are
// unambiguous.
func Reconcile(schema ColumnSchema, line Line, tolerance int) Row {
	n := schema.Len()
	row := Row{
		Cells:      make([]Cell, n),
		Page:       line.Page,
		LineNumber: line.Number,
		Raw:        line.Text,
	}
	if n == 0 {
		row.Match = MatchRaw
		return row
	}

	tokens := line.Tokens
	switch {
	case len(tokens) == n:
		row.Match = MatchExact
		for i, tok := range tokens {
			row.Cells[i] = Cell{Value: tok.Text, Confidence: Filled}
		}

	case len(tokens) < n:
		for i := range row.Cells {
			row.Cells[i].Confidence = BlankNoToken
		}
		assigned, ok := assignNearest(schema, tokens)
		if !ok {
			blankAmbiguous(&row, schema, tokens)
			return row
		}
		row.Match = MatchUnder
		for i, col := range assigned {
			row.Cells[col] = Cell{Value: tokens[i].Text, Confidence: Filled}
		}

	default:
		groups, ok := mergeGroups(schema, tokens, tolerance)
		if !ok {
			blankAmbiguous(&row, schema, tokens)
			return row
		}
		row.Match = MatchMerged
		first := 0
		for col, end := range groups {
			row.Cells[col] = Cell{
				Value:      line.Slice(tokens[first].Start, tokens[end-1].End),
				Confidence: Filled,
			}
			first = end
		}
	}

	return row
}

// assignNearest maps each token to the column with the nearest left
// boundary. It fails when two tokens land in the same column or the
// assignment would reorder them.
func assignNearest(schema ColumnSchema, tokens []Token) ([]int, bool) {
	assigned := make([]int, len(tokens))
	prev := -1
	for i, tok := range tokens {
		col := schema.nearest(tok.Start)
		if col <= prev {
			return nil, false
		}
		assigned[i] = col
		prev = col
	}
	return assigned, true
}

// mergeGroups partitions tokens into schema.Len() consecutive groups, group
// j fitting column j's window. It returns the exclusive end index of each
// group, and false unless exactly one partition exists.
func mergeGroups(schema ColumnSchema, tokens []Token, tolerance int) ([]int, bool) {
	n, t := schema.Len(), len(tokens)

	fits := func(col, a, b int) bool {
		c := schema.Columns[col]
		return tokens[a].Start >= c.Left-tolerance && tokens[b-1].End <= c.Right+tolerance
	}

	// ways[j][a] counts partitions of tokens[a:] into columns j..n-1, capped
	// at 2 since only uniqueness matters.
	ways := make([][]int, n+1)
	for j := range ways {
		ways[j] = make([]int, t+1)
	}
	ways[n][t] = 1
	for j := n - 1; j >= 0; j-- {
		for a := t - 1; a >= 0; a-- {
			total := 0
			for b := a + 1; b <= t-(n-1-j); b++ {
				if ways[j+1][b] > 0 && fits(j, a, b) {
					total += ways[j+1][b]
				}
			}
			ways[j][a] = min(total, 2)
		}
	}
	if ways[0][0] != 1 {
		return nil, false
	}

	groups := make([]int, n)
	a := 0
	for j := 0; j < n; j++ {
		for b := a + 1; b <= t-(n-1-j); b++ {
			if ways[j+1][b] > 0 && fits(j, a, b) {
				groups[j] = b
				a = b
				break
			}
		}
	}
	return groups, true
}

// blankAmbiguous applies the conservative fallback. The first token fills
// column 0 only if column 0 is its nearest boundary, and likewise the last
// token for the last column. Every other token is recorded as unassigned.
func blankAmbiguous(row *Row, schema ColumnSchema, tokens []Token) {
	n := schema.Len()
	row.Match = MatchAmbiguous
	for i := range row.Cells {
		row.Cells[i] = Cell{Confidence: BlankLowConfidence}
	}
	row.Unassigned = nil

	if len(tokens) == 0 {
		return
	}

	placedFirst := schema.nearest(tokens[0].Start) == 0
	if placedFirst {
		row.Cells[0] = Cell{Value: tokens[0].Text, Confidence: Filled}
	}

	last := len(tokens) - 1
	placedLast := last > 0 && n > 1 && schema.nearest(tokens[last].Start) == n-1
	if placedLast {
		row.Cells[n-1] = Cell{Value: tokens[last].Text, Confidence: Filled}
	}

	for i, tok := range tokens {
		if (i == 0 && placedFirst) || (i == last && placedLast) {
			continue
		}
		row.Unassigned = append(row.Unassigned, tok)
	}
}
