package mcp

import (
	"fmt"
	"strings"
)

// availableActions renders the legal next actions for a tool response:
// one action reads "Now you can X."; several become a numbered list, with
// an "either: " lead-in only for exactly two alternatives.
func availableActions(actions []string) string {
	if len(actions) == 0 {
		return ""
	}
	if len(actions) == 1 {
		return "Now you can " + actions[0] + "."
	}
	numbered := make([]string, len(actions))
	for i, action := range actions {
		numbered[i] = fmt.Sprintf("%d. %s", i+1, action)
	}
	either := ""
	if len(actions) == 2 {
		either = "either: "
	}
	return "Now you can " + either + strings.Join(numbered, "; ") + "."
}
