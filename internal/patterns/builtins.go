package patterns

// builtinPatterns returns the seed catalog installed on first construction:
// login, search, and form-submit recipes.
func builtinPatterns() []*ActionPattern {
	return []*ActionPattern{
		{
			ID:       "builtin-login",
			Name:     "Login",
			Category: "auth",
			Keywords: []string{"login", "sign in", "log in", "authenticate"},
			Steps: []PatternStep{
				{Action: "fill", TargetIntent: "username", Selectors: []string{"input[name=username]", "input[type=email]"}},
				{Action: "fill", TargetIntent: "password", Selectors: []string{"input[name=password]", "input[type=password]"}},
				{Action: "click", TargetIntent: "login_submit", Selectors: []string{"button[type=submit]"}},
			},
		},
		{
			ID:       "builtin-search",
			Name:     "Search",
			Category: "navigation",
			Keywords: []string{"search", "find", "look up", "query"},
			Steps: []PatternStep{
				{Action: "click", TargetIntent: "search_box", Selectors: []string{"input[type=search]", "input[name=q]"}},
				{Action: "type", TargetIntent: "search_box", Value: "{{query}}"},
				{Action: "press-key", TargetIntent: "search_box", Value: "Enter"},
			},
		},
		{
			ID:       "builtin-form-submit",
			Name:     "Form submit",
			Category: "form",
			Keywords: []string{"submit", "save", "create", "continue", "next"},
			Steps: []PatternStep{
				{Action: "click", TargetIntent: "form_submit", Selectors: []string{"button[type=submit]", "input[type=submit]"}},
			},
		},
	}
}
