// Package harness runs tally conformance scenarios.
//
// A scenario seeds an engine, executes a list of steps, checks each step's
// outcome, and asserts on the final counts and structure. Scenarios are the
// executable form of the engine's testable properties.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	setup:
//	  categories: [Ah, Um, Other]
//	  speakers: [Steve, Dave]
//	steps:
//	  - op: increment
//	    speaker: Steve
//	    category: Ah
//	    expect: { count: 1 }
//	  - op: resolve_catch_all
//	    speaker: Dave
//	    label: Basically
//	    expect: { category: Basically, count: 1 }
//	  - op: remove_category
//	    category: Other
//	    expect: { error: CannotRemoveCatchAll }
//	assertions:
//	  - type: total
//	    speaker: Steve
//	    value: 1
//	  - type: categories
//	    values: [Ah, Um, Basically, Other]
//
// # Step Ops
//
//   - increment, decrement: speaker and category
//   - resolve_catch_all: speaker and label, run through a tally.Prompt
//   - add_category, remove_category: category
//   - add_speaker, remove_speaker: speaker
//   - reset: zero every count
//   - reload: save structure to the store and load a fresh engine from it
//
// A step without an expect clause must succeed. expect.error names a
// tally.ErrorKind; the step must fail with exactly that kind.
//
// # Assertion Types
//
//   - count: Count(speaker, category) equals value
//   - total: Total(speaker) equals value
//   - category_total: CategoryTotal(category) equals value
//   - grand_total: sum of every count equals value
//   - categories, speakers: the ordered list equals values
//
// # Deterministic Testing
//
// Every step is journaled to an in-memory SQLite store with a seq from
// testutil.DeterministicClock and a fixed session id, and the journal is
// read back as the result trace. Golden files hold the trace and the final
// snapshot as indented JSON.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/steve_ah.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
package harness
