package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/HendryAvila/intent-mcp/internal/logging"
)

// ValidationError is a single invalid setting.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors collects every invalid setting found by Validate.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d config errors:", len(e))
	for _, err := range e {
		sb.WriteString("\n  - ")
		sb.WriteString(err.Error())
	}
	return sb.String()
}

// Validate returns every invalid setting, or nil.
func (c Config) Validate() ValidationErrors {
	var errs ValidationErrors
	add := func(field string, value any, msg string) {
		errs = append(errs, ValidationError{Field: field, Value: value, Message: msg})
	}

	switch c.Mode {
	case ModeLocal:
		if strings.TrimSpace(c.Dir) == "" {
			add("dir", c.Dir, "must not be empty in local mode")
		}
	case ModeCloud:
		if c.API.URL == "" {
			add("api.url", c.API.URL, "is required in cloud mode")
		} else if u, err := url.Parse(c.API.URL); err != nil || u.Scheme == "" || u.Host == "" {
			add("api.url", c.API.URL, "must be an absolute URL")
		}
	default:
		add("mode", c.Mode, "must be local or cloud")
	}

	if c.API.Timeout <= 0 {
		add("api.timeout", c.API.Timeout, "must be positive")
	}
	if c.Breaker.FailureThreshold <= 0 || c.Breaker.FailureThreshold > 1 {
		add("breaker.failure_threshold", c.Breaker.FailureThreshold, "must be in (0, 1]")
	}
	if c.Breaker.MaxRequests == 0 {
		add("breaker.max_requests", c.Breaker.MaxRequests, "must be at least 1")
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		add("log.level", c.Log.Level, "must be one of debug, info, warn, error")
	}
	switch strings.ToLower(c.Log.Format) {
	case logging.FormatConsole, logging.FormatJSON:
	default:
		add("log.format", c.Log.Format, "must be console or json")
	}

	if c.Update.Check {
		if owner, name, ok := strings.Cut(c.Update.Repo, "/"); !ok || owner == "" || name == "" || strings.Contains(name, "/") {
			add("update.repo", c.Update.Repo, "must be owner/name")
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}
