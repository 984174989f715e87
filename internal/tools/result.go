package tools

// Result is what a tool execution hands back to the model. Errors are
// carried as normal results so the model can observe and self-correct;
// nothing in the dispatch path panics or aborts the run.
type Result struct {
	ForLLM  string
	IsError bool
}

// TextResult wraps plain output.
func TextResult(s string) *Result {
	return &Result{ForLLM: s}
}

// ErrorResult wraps an error message as a model-visible result.
func ErrorResult(msg string) *Result {
	return &Result{ForLLM: msg, IsError: true}
}
