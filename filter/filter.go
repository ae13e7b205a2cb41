// Package filter compiles user-entered filter text into a reusable predicate
// over the column store and evaluates it into a row mask.
//
// Two matching modes exist. Text containing expression syntax (comparison
// operators, boolean combinators, negation, or a column accessor call) is
// compiled as a boolean expression over column identifiers; anything else,
// and any expression that fails to parse, becomes a case-sensitive substring
// search across every cell's display string.
package filter

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/Knetic/govaluate"

	"github.com/hangxie/parquet-viewer/model"
)

// evalBatchSize is the number of rows evaluated between cancellation checks.
const evalBatchSize = 4096

// Mode identifies how a predicate matches rows.
type Mode int

const (
	// MatchAll selects every row; compiled from empty filter text.
	MatchAll Mode = iota
	// Expression evaluates a boolean expression per row.
	Expression
	// Substring matches rows where any cell contains the filter text.
	Substring
)

// probe is a null-test accessor (isna/notna) rewritten into a synthetic
// boolean parameter computed outside the expression evaluator.
type probe struct {
	col    int
	notNul bool // notna() rather than isna()
}

// Predicate is a compiled, reusable row-selection function.
type Predicate struct {
	mode   Mode
	text   string
	store  *model.Store
	expr   *govaluate.EvaluableExpression
	cols   map[string]int   // identifier -> column index
	probes map[string]probe // synthetic parameter -> probe
}

// Mode reports which matching mode the predicate compiled into.
func (p *Predicate) Mode() Mode { return p.mode }

var accessorRe = regexp.MustCompile(`([A-Za-z_][A-Za-z0-9_]*)\.(isna|notna|min|max|mean)\(\)`)

// expressionTriggers are the operators whose presence selects expression
// mode. Arithmetic characters alone do not qualify: text like "2021-06"
// must stay a substring search.
var expressionTriggers = []string{"==", "!=", "<", ">", "&", "|", "!"}

// Compile turns filter text into a predicate. Empty text compiles to a
// match-all predicate without invoking either matching mode. Compilation is
// deterministic and side-effect free, so recompiling the same text yields an
// equivalent predicate.
func Compile(store *model.Store, text string) (*Predicate, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return &Predicate{mode: MatchAll, text: text, store: store}, nil
	}

	// Substring predicates keep the raw text: surrounding whitespace is a
	// legitimate part of a search needle
	if !looksLikeExpression(trimmed) {
		return &Predicate{mode: Substring, text: text, store: store}, nil
	}

	if err := checkQuotes(trimmed); err != nil {
		return nil, err
	}

	probes := map[string]probe{}
	rewritten, err := mapOutsideQuotes(trimmed, func(segment string) (string, error) {
		seg, err := rewriteAccessors(store, segment, probes)
		if err != nil {
			return "", err
		}
		return normalizeBoolOps(seg), nil
	})
	if err != nil {
		return nil, err
	}

	expr, parseErr := govaluate.NewEvaluableExpression(rewritten)
	if parseErr != nil {
		// Not a valid expression after all; degrade to substring search
		return &Predicate{mode: Substring, text: text, store: store}, nil
	}

	cols := map[string]int{}
	for _, name := range expr.Vars() {
		if _, isProbe := probes[name]; isProbe {
			continue
		}
		idx, ok := store.ColumnIndex(name)
		if !ok {
			return nil, &Error{Kind: UnknownColumn, Expr: text, Detail: fmt.Sprintf("no column named %q", name)}
		}
		cols[name] = idx
	}

	p := &Predicate{
		mode:   Expression,
		text:   trimmed,
		store:  store,
		expr:   expr,
		cols:   cols,
		probes: probes,
	}
	if err := p.trialEvaluate(); err != nil {
		return nil, err
	}
	return p, nil
}

// EvaluateAll runs the predicate once over all rows and returns the mask.
// Cancellation is cooperative, checked between row batches.
func (p *Predicate) EvaluateAll(ctx context.Context) (model.RowMask, error) {
	n := p.store.RowCount()
	if p.mode == MatchAll {
		return model.AllRows(n), nil
	}

	bits := make([]bool, n)
	for start := 0; start < n; start += evalBatchSize {
		if err := ctx.Err(); err != nil {
			return model.RowMask{}, err
		}
		end := min(start+evalBatchSize, n)
		for row := start; row < end; row++ {
			bits[row] = p.matchRow(row)
		}
	}
	return model.NewRowMask(bits), nil
}

func (p *Predicate) matchRow(row int) bool {
	if p.mode == Substring {
		for col := 0; col < p.store.NumColumns(); col++ {
			v, err := p.store.CellAt(row, col)
			if err != nil {
				return false
			}
			if strings.Contains(v.Display(), p.text) {
				return true
			}
		}
		return false
	}

	params := make(map[string]any, len(p.cols)+len(p.probes))
	for name, col := range p.cols {
		v, err := p.store.CellAt(row, col)
		if err != nil {
			return false
		}
		if v.IsNull() {
			// NaN never satisfies an ordered comparison; non-numeric nulls
			// are withheld so the evaluation fails and the row is excluded
			if p.store.TypeAt(col).IsNumeric() {
				params[name] = math.NaN()
			}
			continue
		}
		params[name] = exprValue(v)
	}
	for name, pr := range p.probes {
		v, err := p.store.CellAt(row, pr.col)
		if err != nil {
			return false
		}
		if pr.notNul {
			params[name] = !v.IsNull()
		} else {
			params[name] = v.IsNull()
		}
	}

	result, err := p.expr.Evaluate(params)
	if err != nil {
		return false
	}
	b, ok := result.(bool)
	return ok && b
}

// trialEvaluate runs the expression once against representative values to
// surface operator/type misuse at compile time instead of per row.
func (p *Predicate) trialEvaluate() error {
	params := make(map[string]any, len(p.cols)+len(p.probes))
	for name, col := range p.cols {
		params[name] = trialValue(p.store.TypeAt(col))
	}
	for name := range p.probes {
		params[name] = false
	}
	result, err := p.expr.Evaluate(params)
	if err != nil {
		return &Error{Kind: TypeMismatch, Expr: p.text, Detail: err.Error()}
	}
	if _, ok := result.(bool); !ok {
		return &Error{Kind: TypeMismatch, Expr: p.text, Detail: fmt.Sprintf("expression yields %T, want boolean", result)}
	}
	return nil
}

func trialValue(t model.ColumnType) any {
	switch t {
	case model.TypeBoolean:
		return false
	case model.TypeString, model.TypeCategorical:
		return ""
	default:
		return float64(0)
	}
}

// exprValue converts a non-null cell into the representation the expression
// evaluator compares on. Temporal values become unix seconds, matching how
// the evaluator folds date-looking string literals.
func exprValue(v model.Value) any {
	switch v.Kind() {
	case model.KindInteger, model.KindFloat:
		return v.Float()
	case model.KindBoolean:
		return v.Bool()
	case model.KindTemporal:
		return float64(v.Time().Unix())
	default:
		return v.Str()
	}
}

func looksLikeExpression(text string) bool {
	for _, op := range expressionTriggers {
		if strings.Contains(text, op) {
			return true
		}
	}
	return accessorRe.MatchString(text)
}

// rewriteAccessors replaces column accessor calls: null tests become
// synthetic boolean parameters, aggregates become literals computed eagerly
// against the full column.
func rewriteAccessors(store *model.Store, segment string, probes map[string]probe) (string, error) {
	var rewriteErr error
	out := accessorRe.ReplaceAllStringFunc(segment, func(match string) string {
		if rewriteErr != nil {
			return match
		}
		parts := accessorRe.FindStringSubmatch(match)
		name, method := parts[1], parts[2]
		col, ok := store.ColumnIndex(name)
		if !ok {
			rewriteErr = &Error{Kind: UnknownColumn, Expr: segment, Detail: fmt.Sprintf("no column named %q", name)}
			return match
		}
		switch method {
		case "isna":
			param := name + "__isna"
			probes[param] = probe{col: col}
			return param
		case "notna":
			param := name + "__notna"
			probes[param] = probe{col: col, notNul: true}
			return param
		default:
			agg, err := columnAggregate(store, col, method)
			if err != nil {
				rewriteErr = err
				return match
			}
			return "(" + strconv.FormatFloat(agg, 'g', -1, 64) + ")"
		}
	})
	return out, rewriteErr
}

// columnAggregate computes min/max/mean over all non-null values of a
// column, eagerly at compile time.
func columnAggregate(store *model.Store, col int, method string) (float64, error) {
	t := store.TypeAt(col)
	if !t.IsNumeric() && t != model.TypeTemporal {
		return 0, &Error{
			Kind:   TypeMismatch,
			Detail: fmt.Sprintf("%s() needs a numeric or temporal column, %s is %s", method, store.NameAt(col), t),
		}
	}

	var minV, maxV, mean float64
	count := 0
	for _, v := range store.ColumnValuesAt(col) {
		if v.IsNull() {
			continue
		}
		f := v.Float()
		if t == model.TypeTemporal {
			f = float64(v.Time().Unix())
		}
		count++
		if count == 1 {
			minV, maxV = f, f
		} else {
			minV = math.Min(minV, f)
			maxV = math.Max(maxV, f)
		}
		mean += (f - mean) / float64(count)
	}
	if count == 0 {
		return 0, &Error{
			Kind:   TypeMismatch,
			Detail: fmt.Sprintf("%s() over column %s with no non-null values", method, store.NameAt(col)),
		}
	}

	switch method {
	case "min":
		return minV, nil
	case "max":
		return maxV, nil
	default:
		return mean, nil
	}
}

// normalizeBoolOps rewrites the single-character boolean combinators the
// filter language uses (&, |) into the evaluator's && and ||.
func normalizeBoolOps(segment string) string {
	var b strings.Builder
	b.Grow(len(segment) + 4)
	for i := 0; i < len(segment); i++ {
		c := segment[i]
		if c != '&' && c != '|' {
			b.WriteByte(c)
			continue
		}
		b.WriteByte(c)
		b.WriteByte(c)
		if i+1 < len(segment) && segment[i+1] == c {
			i++ // already doubled
		}
	}
	return b.String()
}

// checkQuotes rejects text with an unterminated string literal; it can be
// meant neither as an expression nor as a substring search of itself.
func checkQuotes(text string) error {
	quote := byte(0)
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case quote != 0 && c == '\\':
			i++ // skip escaped character
		case quote != 0 && c == quote:
			quote = 0
		case quote == 0 && (c == '"' || c == '\''):
			quote = c
		}
	}
	if quote != 0 {
		return &Error{Kind: ParseFailure, Expr: text, Detail: "unterminated string literal"}
	}
	return nil
}

// mapOutsideQuotes applies f to the stretches of text outside string
// literals, leaving quoted content untouched.
func mapOutsideQuotes(text string, f func(string) (string, error)) (string, error) {
	var out strings.Builder
	var plain strings.Builder
	flush := func() error {
		if plain.Len() == 0 {
			return nil
		}
		mapped, err := f(plain.String())
		if err != nil {
			return err
		}
		out.WriteString(mapped)
		plain.Reset()
		return nil
	}

	quote := byte(0)
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case quote != 0:
			out.WriteByte(c)
			if c == '\\' && i+1 < len(text) {
				i++
				out.WriteByte(text[i])
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			if err := flush(); err != nil {
				return "", err
			}
			quote = c
			out.WriteByte(c)
		default:
			plain.WriteByte(c)
		}
	}
	if err := flush(); err != nil {
		return "", err
	}
	return out.String(), nil
}
