// Package subgenerr defines the tagged error kinds that cross every
// component boundary in subgen, plus the Wrap helper that attaches stage
// and operation context to them.
package subgenerr

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel error kinds. Every error surfaced to the CLI is tagged with
// exactly one of these via errors.Is.
var (
	ErrBadInput            = errors.New("bad input")
	ErrBadConfig           = errors.New("bad config")
	ErrMissingComponent    = errors.New("missing component")
	ErrMissingIntegrity    = errors.New("missing integrity")
	ErrUnsafeArchive       = errors.New("unsafe archive")
	ErrTranscriptionFailed = errors.New("transcription failed")
	ErrTranslationFailed   = errors.New("translation failed")
	ErrProofreadFailed     = errors.New("proofread failed")
	ErrCancelled           = errors.New("cancelled")
	ErrTimeout             = errors.New("timeout")
	ErrCredential          = errors.New("credential error")
	ErrIO                  = errors.New("io error")
	ErrIncompatibleCache   = errors.New("incompatible cache")
)

// ExitCode maps an error to the process exit code named in spec.md §6.
// Errors not tagged with any sentinel above map to the generic failure code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrBadInput):
		return 2
	case errors.Is(err, ErrBadConfig):
		return 3
	case errors.Is(err, ErrMissingComponent):
		return 4
	case errors.Is(err, ErrCredential):
		return 5
	case errors.Is(err, ErrCancelled):
		return 6
	default:
		return 1
	}
}

// Hint returns a short remediation string for the error's kind, or "" if
// none of the standard kinds match. CLI output surfaces this alongside the
// error message.
func Hint(err error) string {
	switch {
	case errors.Is(err, ErrMissingComponent):
		return "run `subgen install <component>` to install the missing component"
	case errors.Is(err, ErrMissingIntegrity):
		return "the component registry entry has no checksum; refresh the registry or report the issue"
	case errors.Is(err, ErrUnsafeArchive):
		return "the downloaded archive contains an entry outside the install directory and was rejected"
	case errors.Is(err, ErrCredential):
		return "set the provider credential via --api-key, an environment variable, or `subgen config`"
	case errors.Is(err, ErrBadConfig):
		return "check the offending key in ~/.subgen/config.yaml"
	case errors.Is(err, ErrTimeout):
		return "the operation exceeded its timeout; it can usually be retried"
	case errors.Is(err, ErrIncompatibleCache):
		return "the cache file was written by an incompatible version; delete it and re-run"
	default:
		return ""
	}
}

// Wrap builds an error that includes stage/operation context while tagging
// it with the provided marker sentinel for later classification via
// errors.Is. marker should be one of the sentinels above.
func Wrap(marker error, stage, operation, message string, cause error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrIO
	}
	if cause != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, cause)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "subgen failure"
	}
	return strings.Join(parts, ": ")
}
