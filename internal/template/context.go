package template

import "os"

// BaseContext returns the standard context every rendered value sees:
// the user's home directory, hostname, and login name. Environment
// variables are reached through the sprig env function instead of being
// copied here.
func BaseContext() map[string]any {
	home, _ := os.UserHomeDir()
	hostname, _ := os.Hostname()

	return map[string]any{
		"home":     home,
		"hostname": hostname,
		"user":     os.Getenv("USER"),
	}
}

// MergeContexts merges multiple contexts into a single context.
// Later contexts override values from earlier contexts.
func MergeContexts(contexts ...map[string]any) map[string]any {
	result := make(map[string]any)
	for _, ctx := range contexts {
		for key, value := range ctx {
			result[key] = value
		}
	}
	return result
}
