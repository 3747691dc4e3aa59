package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/B-Whitt/redhat-ai-workflow-sub002/internal/engine"
	"github.com/B-Whitt/redhat-ai-workflow-sub002/pkg/logging"
)

// ValidationError represents a validation error with context
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (ve ValidationError) Error() string {
	if ve.Field == "" {
		return ve.Message
	}
	return fmt.Sprintf("field '%s': %s", ve.Field, ve.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for multiple validation errors
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}
	if len(ve) == 1 {
		return ve[0].Error()
	}

	var messages []string
	for _, err := range ve {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

// HasErrors returns true if there are any validation errors
func (ve ValidationErrors) HasErrors() bool {
	return len(ve) > 0
}

// Add adds a new validation error
func (ve *ValidationErrors) Add(field, message string, value ...interface{}) {
	var val interface{}
	if len(value) > 0 {
		val = value[0]
	}
	*ve = append(*ve, ValidationError{
		Field:   field,
		Value:   val,
		Message: message,
	})
}

// Validate rejects configuration mistakes at startup instead of letting
// them surface as odd runtime behavior. All problems are reported at
// once.
func (c CompanionConfig) Validate() error {
	var errs ValidationErrors

	checkDuration := func(field, value string) {
		if value == "" {
			return
		}
		if _, err := time.ParseDuration(value); err != nil {
			errs.Add(field, fmt.Sprintf("invalid duration %q", value), value)
		}
	}

	checkDuration("engine.backgroundDelay", c.Engine.BackgroundDelay)
	checkDuration("engine.normalDelay", c.Engine.NormalDelay)
	checkDuration("engine.interactiveDelay", c.Engine.InteractiveDelay)
	checkDuration("engine.minInterval", c.Engine.MinInterval)
	checkDuration("lock.timeout", c.Lock.Timeout)
	checkDuration("lock.retryInterval", c.Lock.RetryInterval)
	checkDuration("lock.staleAfter", c.Lock.StaleAfter)
	checkDuration("notify.debounce", c.Notify.Debounce)

	if c.Daemon.LogLevel != "" {
		if _, err := logging.ParseLogLevel(c.Daemon.LogLevel); err != nil {
			errs.Add("daemon.logLevel", err.Error(), c.Daemon.LogLevel)
		}
	}

	for i, p := range c.Pollers {
		prefix := fmt.Sprintf("pollers[%d]", i)
		if strings.TrimSpace(p.Section) == "" {
			errs.Add(prefix+".section", "is required")
		}
		if strings.TrimSpace(p.Command) == "" {
			errs.Add(prefix+".command", "is required")
		}
		if p.Priority != "" {
			if _, err := engine.ParsePriority(p.Priority); err != nil {
				errs.Add(prefix+".priority", err.Error(), p.Priority)
			}
		}
		checkDuration(prefix+".interval", p.Interval)
		checkDuration(prefix+".timeout", p.Timeout)
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}
