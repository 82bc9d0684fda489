package contextbuild

// DefaultBudgetChars bounds payloads when neither the caller nor the config
// specifies a budget.
const DefaultBudgetChars = 8000

// Budget selects the payload size limit. Fields are consulted in order: an
// explicit character budget wins, then an explicit token budget (converted
// by the estimator), then the per-model token table, then DefaultChars.
// All-zero resolves to DefaultBudgetChars.
type Budget struct {
	// Chars is an explicit character budget.
	Chars int
	// Tokens is an explicit token budget.
	Tokens int
	// Model selects an entry from ModelTokens when no explicit budget is
	// given.
	Model string
	// ModelTokens maps model names to token budgets, typically loaded from
	// the app config.
	ModelTokens map[string]int
	// DefaultChars is the configured fallback character budget.
	DefaultChars int
}

// Limit resolves the budget chain to a character limit.
func (b Budget) Limit(est *TokenEstimator) int {
	if b.Chars > 0 {
		return b.Chars
	}
	if b.Tokens > 0 {
		return est.Chars(b.Tokens)
	}
	if b.Model != "" && b.ModelTokens[b.Model] > 0 {
		return est.Chars(b.ModelTokens[b.Model])
	}
	if b.DefaultChars > 0 {
		return b.DefaultChars
	}
	return DefaultBudgetChars
}

// TokenEstimator converts between token and character budgets. Real token
// counts need a model-specific tokenizer; the builder only needs a stable
// bound, so a flat chars-per-token ratio is used.
type TokenEstimator struct {
	charsPerToken float64
}

// NewTokenEstimator returns an estimator at the common four-characters-per-
// token ratio for English text.
func NewTokenEstimator() *TokenEstimator {
	return &TokenEstimator{charsPerToken: 4.0}
}

// Estimate returns the estimated token count of content.
func (e *TokenEstimator) Estimate(content string) int {
	if content == "" {
		return 0
	}
	return int(float64(len(content)) / e.charsPerToken)
}

// Chars returns the character budget equivalent to tokens.
func (e *TokenEstimator) Chars(tokens int) int {
	if tokens <= 0 {
		return 0
	}
	return int(float64(tokens) * e.charsPerToken)
}
