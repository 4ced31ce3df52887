package categorizer

import "context"

// DecisionKind enumerates the answers an oracle can give.
type DecisionKind int

const (
	// DecisionSkip leaves the description unknown for this run.
	DecisionSkip DecisionKind = iota
	// DecisionAccept assigns Decision.Category and learns an exact rule.
	DecisionAccept
	// DecisionStop skips this description and every remaining one.
	DecisionStop
)

func (k DecisionKind) String() string {
	switch k {
	case DecisionAccept:
		return "accept"
	case DecisionStop:
		return "stop"
	default:
		return "skip"
	}
}

// Decision is an oracle's answer for one description.
type Decision struct {
	Kind     DecisionKind
	Category string
}

// Accept builds an accepting decision.
func Accept(category string) Decision {
	return Decision{Kind: DecisionAccept, Category: category}
}

// Skip builds a skipping decision.
func Skip() Decision {
	return Decision{Kind: DecisionSkip}
}

// Stop builds a stopping decision.
func Stop() Decision {
	return Decision{Kind: DecisionStop}
}

// Oracle is the pluggable fallback consulted for descriptions no rule matches.
// description is already normalized and known holds the categories the oracle
// should choose from. An error is treated as a skip by the caller.
type Oracle interface {
	Name() string
	Resolve(ctx context.Context, description string, known []string) (Decision, error)
}

// NoopOracle skips everything. It is used when neither AI nor interactive
// categorization is enabled.
type NoopOracle struct{}

func (NoopOracle) Name() string { return "none" }

func (NoopOracle) Resolve(context.Context, string, []string) (Decision, error) {
	return Skip(), nil
}

// OracleFunc adapts a function to the Oracle interface.
type OracleFunc func(ctx context.Context, description string, known []string) (Decision, error)

func (f OracleFunc) Name() string { return "func" }

func (f OracleFunc) Resolve(ctx context.Context, description string, known []string) (Decision, error) {
	return f(ctx, description, known)
}
