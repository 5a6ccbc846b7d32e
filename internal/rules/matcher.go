package rules

import (
	"log"

	"hookrelay/internal/models"
)

// Matches evaluates a rule's condition against the payload. Any compile or
// evaluation failure is logged with the rule id and treated as "no match";
// one broken rule must never take down the dispatch cycle.
func Matches(rule models.Rule, payload any) bool {
	prog, err := Compile(rule.Condition)
	if err != nil {
		log.Printf("RULES: rule %d (%s): compile condition: %v", rule.ID, rule.Name, err)
		return false
	}
	ok, err := prog.Eval(payload)
	if err != nil {
		log.Printf("RULES: rule %d (%s): evaluate condition: %v", rule.ID, rule.Name, err)
		return false
	}
	return ok
}
