package formkit

import "github.com/reoring/formkit/fieldpath"

// IssueAt creates an Issue at the given path with provided code, message and params map.
// This is a convenience helper to improve readability at call sites with many parameters.
func IssueAt(p fieldpath.Path, code, msg string, params map[string]any) Issue {
	return Issue{Path: p.Clone(), Code: code, Message: msg, Params: params}
}

// FormIssue creates a form-level Issue.
func FormIssue(code, msg string) Issue {
	return Issue{Code: code, Message: msg}
}
