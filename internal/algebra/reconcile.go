package algebra

import (
	"github.com/paveg/linframe/internal/dataframe"
	"github.com/paveg/linframe/internal/errors"
)

// Align reconciles two operands so they can be combined element-wise.
//
// Dimensions present on one side only are broadcast onto the other side if
// that side allows them, using the distinct coordinates of the original
// other operand. Coordinates then present on one side only are handled by
// that side's unmatched policy. The returned tables share one dimension set.
func Align(op string, a, b Operand) (*Terms, *Terms, error) {
	at, bt := a.Terms, b.Terms

	if missing := difference(b.Terms.dims, a.Terms.dims); len(missing) > 0 {
		var err error
		if at, err = broadcast(op, a, b.Terms, missing); err != nil {
			return nil, nil, err
		}
	}
	if missing := difference(a.Terms.dims, b.Terms.dims); len(missing) > 0 {
		var err error
		if bt, err = broadcast(op, b, a.Terms, missing); err != nil {
			return nil, nil, err
		}
	}

	if len(at.dims) == 0 {
		return at, bt, nil
	}

	// Both sides are checked against the other's aligned, unfiltered rows.
	af, err := applyUnmatched(op, at, bt, a.Options.Unmatched)
	if err != nil {
		return nil, nil, err
	}
	bf, err := applyUnmatched(op, bt, at, b.Options.Unmatched)
	if err != nil {
		return nil, nil, err
	}
	return af, bf, nil
}

// broadcast extends side over the missing dimensions taken from other.
func broadcast(op string, side Operand, other *Terms, missing []string) (*Terms, error) {
	var notAllowed []string
	for _, d := range missing {
		if !side.Options.Allows(d) {
			notAllowed = append(notAllowed, d)
		}
	}
	if len(notAllowed) > 0 {
		return nil, errors.NewDimensionMismatchError(op, notAllowed)
	}

	target := other.Coordinates()
	common := intersection(side.Terms.dims, other.dims)

	var (
		joined *dataframe.DataFrame
		err    error
	)
	switch {
	case len(common) == 0:
		joined, err = side.Terms.df.Join(target, nil, dataframe.CrossJoin)
	case side.Options.Unmatched == UnmatchedDrop:
		joined, err = side.Terms.df.Join(target, common, dataframe.InnerJoin)
	default:
		mask, maskErr := side.Terms.df.MatchMask(target, common)
		if maskErr != nil {
			return nil, maskErr
		}
		if rows := falseRows(mask); len(rows) > 0 {
			return nil, errors.NewIllegalBroadcastError(op, missing, sampleRows(side.Terms.df, rows, common))
		}
		joined, err = side.Terms.df.Join(target, common, dataframe.InnerJoin)
	}
	if err != nil {
		return nil, err
	}

	log().V(1).Info("broadcast", "op", op, "dims", missing, "on", common,
		"rowsBefore", side.Terms.NumTerms(), "rowsAfter", joined.Len())
	return canonical(joined)
}

// applyUnmatched filters or rejects the rows of t whose coordinate does not
// appear in other.
func applyUnmatched(op string, t, other *Terms, policy Unmatched) (*Terms, error) {
	if policy == UnmatchedKeep {
		return t, nil
	}

	mask, err := t.df.MatchMask(other.Coordinates(), t.dims)
	if err != nil {
		return nil, err
	}
	rows := falseRows(mask)
	if len(rows) == 0 {
		return t, nil
	}
	if policy == UnmatchedError {
		return nil, errors.NewUnmatchedError(op, t.dims, sampleRows(t.df, rows, t.dims))
	}

	log().V(1).Info("dropped unmatched rows", "op", op, "rows", len(rows))
	return &Terms{df: t.df.Filter(mask), dims: t.dims}, nil
}

func falseRows(mask []bool) []int {
	var rows []int
	for i, ok := range mask {
		if !ok {
			rows = append(rows, i)
		}
	}
	return rows
}
