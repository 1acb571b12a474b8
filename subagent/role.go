package subagent

import "fmt"

// Role selects the specialization profile of a delegated agent. Each role
// fixes the child's description, its optional system prompt, and whether it
// may carry tools. The set is closed: models pick from the advertised enum
// and cannot invent new specializations.
type Role string

const (
	RoleGeneralPurpose Role = "general-purpose"
	RoleExplore        Role = "explore"
	RolePlan           Role = "plan"
	RoleCodeReview     Role = "code-review"
	RoleTestRunner     Role = "test-runner"
)

// Roles returns every recognized role in advertised order.
func Roles() []Role {
	return []Role{RoleGeneralPurpose, RoleExplore, RolePlan, RoleCodeReview, RoleTestRunner}
}

// ParseRole resolves a wire string to a Role. Empty input selects the
// general-purpose role.
func ParseRole(s string) (Role, error) {
	if s == "" {
		return RoleGeneralPurpose, nil
	}
	for _, r := range Roles() {
		if s == string(r) {
			return r, nil
		}
	}
	return "", fmt.Errorf("invalid subagent type: %s", s)
}

// Description is the one-line summary included in task reports and spawn
// notices.
func (r Role) Description() string {
	switch r {
	case RoleExplore:
		return "Fast agent for exploring codebases"
	case RolePlan:
		return "Software architect agent for designing implementation plans"
	case RoleCodeReview:
		return "Code reviewer agent for analyzing code quality"
	case RoleTestRunner:
		return "Test runner agent for testing and validation"
	default:
		return "General-purpose agent for complex tasks"
	}
}

// SystemPrompt returns the role's fixed system prompt, or "" for roles that
// run without one.
func (r Role) SystemPrompt() string {
	switch r {
	case RoleExplore:
		return "You are a codebase exploration agent. Your goal is to quickly find files, " +
			"search code, and answer questions about the codebase structure. " +
			"Be thorough but efficient in your exploration."
	case RolePlan:
		return "You are a software architect agent. Your goal is to design implementation plans " +
			"by exploring the codebase and providing step-by-step plans. Focus on: " +
			"1) Understanding existing patterns, 2) Identifying critical files, " +
			"3) Considering architectural trade-offs."
	case RoleCodeReview:
		return "You are a code reviewer agent. Your goal is to analyze code quality, " +
			"identify potential bugs, suggest improvements, and ensure best practices. " +
			"Focus on: correctness, performance, security, and maintainability."
	case RoleTestRunner:
		return "You are a test runner agent. Your goal is to design and execute tests, " +
			"validate functionality, and report issues. Be thorough in testing edge cases " +
			"and providing actionable feedback."
	default:
		return ""
	}
}

// UsesTools reports whether the role is allowed to carry tools. The plan
// role analyzes without acting and never gets them, regardless of what the
// caller requested.
func (r Role) UsesTools() bool {
	return r != RolePlan
}
