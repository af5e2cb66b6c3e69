// Package logging redacts signing secrets from log output.
//
// Two layers are provided: pattern-based redaction for anything that looks
// like a key assignment, and literal redaction of secrets registered at
// runtime (the loaded signing key), so the key never reaches a log file even
// when it does not match a pattern.
package logging

import (
	"io"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// RedactedValue is the replacement string for sensitive data.
const RedactedValue = "[REDACTED]"

// minRegisteredSecretLen keeps short keys from blanking out ordinary words.
const minRegisteredSecretLen = 8

// sensitivePatterns contains compiled regular expressions for detecting sensitive values.
var sensitivePatterns = []*regexp.Regexp{ //nolint:gochecknoglobals // Package-level patterns for reuse
	// Signing key exported in an environment assignment (HYPERTEXT_SIGNING_KEY=..., FOO_SIGNING_KEY: ...)
	regexp.MustCompile(`(?i)[A-Z0-9_]*SIGNING_KEY\s*[:=]\s*["']?[^\s"']+["']?`),

	// signing_key / hmac_key fields in JSON log lines
	regexp.MustCompile(`(?i)"(signing_key|hmac_key|key_material)"\s*:\s*"[^"]*"`),

	// Generic secret patterns (secret, password, credential with values)
	regexp.MustCompile(`(?i)(secret|password|credential|passwd|pwd)\s*[:=]\s*["']?[^\s"']{8,}["']?`),

	// Bearer tokens
	regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9_-]{20,}`),

	// PEM private keys
	regexp.MustCompile(`(?i)-----BEGIN[A-Z\s]+PRIVATE KEY-----`),

	// Long encoded tokens after token/auth labels
	regexp.MustCompile(`(?i)(token|auth)\s*[:=]\s*["']?[a-zA-Z0-9+/=]{32,}["']?`),
}

// sensitiveFieldNames contains field names that should always have their values redacted.
var sensitiveFieldNames = []string{ //nolint:gochecknoglobals // Package-level patterns for reuse
	"signing_key",
	"signingkey",
	"signing-key",
	"hmac_key",
	"key_material",
	"secret",
	"password",
	"passwd",
	"credential",
	"private_key",
	"privatekey",
	"access_token",
	"authorization",
}

// secrets holds literal values registered at runtime, longest first so that a
// secret containing another is replaced whole.
//
//nolint:gochecknoglobals // process-wide registry shared by every writer
var secrets = &secretSet{}

type secretSet struct {
	mu     sync.RWMutex
	values []string
}

func (s *secretSet) add(v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.values {
		if existing == v {
			return
		}
	}
	s.values = append(s.values, v)
	sort.Slice(s.values, func(i, j int) bool { return len(s.values[i]) > len(s.values[j]) })
}

func (s *secretSet) replace(in string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, v := range s.values {
		in = strings.ReplaceAll(in, v, RedactedValue)
	}
	return in
}

func (s *secretSet) contains(in string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, v := range s.values {
		if strings.Contains(in, v) {
			return true
		}
	}
	return false
}

func (s *secretSet) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = nil
}

// RegisterSecret adds a literal value that must never appear in logs.
// Values shorter than 8 characters are ignored. It reports whether the value
// was registered.
func RegisterSecret(value string) bool {
	value = strings.TrimSpace(value)
	if len(value) < minRegisteredSecretLen {
		return false
	}
	secrets.add(value)
	return true
}

// SensitiveDataHook is a zerolog hook that flags log entries whose message
// carries sensitive data.
type SensitiveDataHook struct{}

// NewSensitiveDataHook creates a new SensitiveDataHook for filtering sensitive data.
func NewSensitiveDataHook() *SensitiveDataHook {
	return &SensitiveDataHook{}
}

// Run implements the zerolog.Hook interface.
// Zerolog does not let a hook rewrite the message, so the entry is only
// flagged here; the FilteringWriter performs the redaction.
func (h *SensitiveDataHook) Run(e *zerolog.Event, _ zerolog.Level, msg string) {
	if ContainsSensitiveData(msg) {
		e.Bool("contains_filtered_data", true)
	}
}

// ContainsSensitiveData checks if a string contains a sensitive pattern or a
// registered secret.
func ContainsSensitiveData(s string) bool {
	if secrets.contains(s) {
		return true
	}
	for _, pattern := range sensitivePatterns {
		if pattern.MatchString(s) {
			return true
		}
	}
	return false
}

// FilterSensitiveValue replaces registered secrets and sensitive patterns with [REDACTED].
func FilterSensitiveValue(value string) string {
	result := secrets.replace(value)
	for _, pattern := range sensitivePatterns {
		result = pattern.ReplaceAllString(result, RedactedValue)
	}
	return result
}

// IsSensitiveFieldName checks if a field name indicates sensitive data.
func IsSensitiveFieldName(fieldName string) bool {
	lowerName := strings.ToLower(fieldName)
	for _, sensitive := range sensitiveFieldNames {
		if strings.Contains(lowerName, sensitive) {
			return true
		}
	}
	return false
}

// SafeValue returns [REDACTED] for sensitive field names and the filtered
// value otherwise.
//
//	log.Debug().Str("key_file", logging.SafeValue("key_file", path)).Msg("loading key")
func SafeValue(fieldName, value string) string {
	if IsSensitiveFieldName(fieldName) {
		return RedactedValue
	}
	return FilterSensitiveValue(value)
}

// FilteringWriter wraps an io.Writer and filters sensitive data from output.
// It wraps the log file writer so secrets never reach disk.
type FilteringWriter struct {
	w io.Writer
}

// NewFilteringWriter creates a new FilteringWriter that wraps the given writer.
func NewFilteringWriter(w io.Writer) *FilteringWriter {
	return &FilteringWriter{w: w}
}

// Write implements io.Writer, filtering sensitive data before writing.
// It returns len(p) on success so callers never see a short write.
func (fw *FilteringWriter) Write(p []byte) (n int, err error) {
	filtered := FilterSensitiveValue(string(p))
	if _, err = fw.w.Write([]byte(filtered)); err != nil {
		return 0, err
	}
	return len(p), nil
}
