// Package traceval evaluates autonomous coding agent runs from their
// execution traces: it normalizes heterogeneous backend event streams into
// one canonical sequence and derives behavioral judgments from it:
// command thrashing, token efficiency, security findings, and whether the
// agent actually acted on the prompt under test.
//
// Basic usage:
//
//	ev, err := traceval.New(traceval.WithBackend("claude"))
//	if err != nil {
//		log.Fatal(err)
//	}
//	result := ev.Evaluate(rawTrace, traceval.Expectation{
//		ShouldTrigger: true,
//		ExpectedTools: "bash",
//	})
//	fmt.Println(result.Passed, result.Trigger.Reason)
//
// Each call evaluates one test case from a single immutable input; no
// state is shared across cases, so an Evaluator is safe for concurrent
// use.
package traceval
