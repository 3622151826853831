package evaluator

// Budget holds the resource limits for one program execution.
// Zero means unlimited.
type Budget struct {
	MaxIterations int64
}

// BudgetTracker tracks resource consumption during execution.
type BudgetTracker struct {
	Iterations int64
}
