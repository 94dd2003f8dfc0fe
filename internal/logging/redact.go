// Package logging provides logger configuration and redaction services
// that keep the GitHub token out of all log output.
//
// The tool embeds the access token in clone URLs and in a transient git
// credential helper, so every log line that could carry command arguments
// or error text is passed through the redaction service before it is
// written. Redaction is irreversible.
package logging

import (
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
)

// tokenPattern pairs a token regexp with the prefix kept in the redacted
// output so the token type stays identifiable.
type tokenPattern struct {
	re     *regexp.Regexp
	prefix string
}

// RedactionService detects and redacts sensitive data in log output.
type RedactionService struct {
	tokenPatterns  []tokenPattern
	urlUserinfo    *regexp.Regexp
	credentialLine *regexp.Regexp
	envSecret      *regexp.Regexp
	sensitiveField []string
}

// NewRedactionService creates a redaction service with patterns for GitHub
// token formats, URL userinfo, and git credential helper configuration.
func NewRedactionService() *RedactionService {
	return &RedactionService{
		tokenPatterns: []tokenPattern{
			{regexp.MustCompile(`ghp_[a-zA-Z0-9]{4,}`), "ghp_"},
			{regexp.MustCompile(`ghs_[a-zA-Z0-9]{4,}`), "ghs_"},
			{regexp.MustCompile(`github_pat_[a-zA-Z0-9_]{4,}`), "github_pat_"},
			{regexp.MustCompile(`ghr_[a-zA-Z0-9]{4,}`), "ghr_"},
			{regexp.MustCompile(`gho_[a-zA-Z0-9]{4,}`), "gho_"},
		},
		// https://<anything>@host: the userinfo part carries the token
		urlUserinfo: regexp.MustCompile(`://([^/@\s]+)@`),
		// credential helper config passes the token as username and password
		credentialLine: regexp.MustCompile(`(username|password)=([^\s';]+)`),
		envSecret:      regexp.MustCompile(`([A-Z_]*(?:TOKEN|SECRET|PASSWORD)[A-Z_]*=)(\S+)`),
		sensitiveField: []string{
			"token", "secret", "password", "credential", "authorization", "auth",
		},
	}
}

// RedactSensitive replaces sensitive substrings with a fixed placeholder.
// Token prefixes are preserved so the token type stays identifiable.
func (r *RedactionService) RedactSensitive(text string) string {
	for _, pattern := range r.tokenPatterns {
		text = pattern.re.ReplaceAllString(text, pattern.prefix+"***REDACTED***")
	}

	text = r.urlUserinfo.ReplaceAllString(text, "://***REDACTED***@")
	text = r.credentialLine.ReplaceAllString(text, "$1=***REDACTED***")
	text = r.envSecret.ReplaceAllString(text, "$1***REDACTED***")

	return text
}

// IsSensitiveField reports whether a log field name suggests its value
// should never be logged verbatim.
func (r *RedactionService) IsSensitiveField(name string) bool {
	lower := strings.ToLower(name)
	for _, sensitive := range r.sensitiveField {
		if strings.Contains(lower, sensitive) {
			return true
		}
	}
	return false
}

// CreateHook creates a logrus hook that redacts every entry.
func (r *RedactionService) CreateHook() logrus.Hook {
	return &RedactionHook{service: r}
}

// RedactionHook applies the redaction service to all log entries.
type RedactionHook struct {
	service *RedactionService
}

// Levels returns all log levels so no entry bypasses redaction.
func (h *RedactionHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire redacts the entry message and every string field value. Fields whose
// name alone marks them sensitive are replaced entirely.
func (h *RedactionHook) Fire(entry *logrus.Entry) error {
	entry.Message = h.service.RedactSensitive(entry.Message)

	for key, value := range entry.Data {
		if h.service.IsSensitiveField(key) {
			entry.Data[key] = "***REDACTED***"
			continue
		}
		if s, ok := value.(string); ok {
			entry.Data[key] = h.service.RedactSensitive(s)
		}
	}

	return nil
}
