package contract

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/repometrics/schema"
)

// Correlation strength label constants.
const (
	StrongValue     = "Strong"     // |r| >= 0.7
	ModerateValue   = "Moderate"   // |r| >= 0.4
	WeakValue       = "Weak"       // |r| >= 0.2
	NegligibleValue = "Negligible" // below that
)

// Significance label constants.
const (
	SignificantValue   = "Significant"
	InsignificantValue = "Not significant"
)

// Color variables for console output.
var (
	StrongColor     = color.New(color.FgRed, color.Bold)     // StrongColor marks the relationships worth attention.
	ModerateColor   = color.New(color.FgMagenta, color.Bold) // ModerateColor is a strong, distinct signal.
	WeakColor       = color.New(color.FgYellow)              // WeakColor is standard caution, not bold.
	NegligibleColor = color.New(color.FgCyan)                // NegligibleColor is informational only.
)

// SignificantColor highlights p-values under the significance level.
var SignificantColor = color.New(color.FgGreen, color.Bold)

// GetStrengthLabel returns a plain text label for the magnitude of a coefficient.
// This is the core logic used for CSV, JSON, and table printing.
func GetStrengthLabel(r float64) string {
	a := math.Abs(r)
	switch {
	case a >= 0.7:
		return StrongValue
	case a >= 0.4:
		return ModerateValue
	case a >= 0.2:
		return WeakValue
	default:
		return NegligibleValue
	}
}

// GetColorStrengthLabel returns a colored strength label for console output (table).
func GetColorStrengthLabel(r float64) string {
	text := GetStrengthLabel(r)

	switch text {
	case StrongValue:
		return StrongColor.Sprint(text)
	case ModerateValue:
		return ModerateColor.Sprint(text)
	case WeakValue:
		return WeakColor.Sprint(text)
	default:
		return NegligibleColor.Sprint(text)
	}
}

// GetSignificanceLabel returns a plain label for a p-value.
func GetSignificanceLabel(p float64) string {
	if p < schema.SignificanceLevel {
		return SignificantValue
	}
	return InsignificantValue
}

// GetColorSignificanceLabel returns a colored significance label for console output.
func GetColorSignificanceLabel(p float64) string {
	text := GetSignificanceLabel(p)
	if text == SignificantValue {
		return SignificantColor.Sprint(text)
	}
	return text
}

// GetCBOLabel returns the coupling level label for a CBO value.
func GetCBOLabel(cbo float64) string {
	if i := schema.FindBucket(schema.CBOBuckets, cbo); i >= 0 {
		return schema.CBOBuckets[i].Label
	}
	return schema.CBOBuckets[0].Label
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It falls back to os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for cache storage.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".repometrics_cache.db"
	}
	return filepath.Join(homeDir, ".repometrics_cache.db")
}

// GetAnalysisDBFilePath returns the path to the SQLite DB file for analysis storage.
func GetAnalysisDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".repometrics_analysis.db"
	}
	return filepath.Join(homeDir, ".repometrics_analysis.db")
}

// TruncateName truncates a repository name to a maximum width with an ellipsis suffix.
// Requires maxWidth > 3 so the ellipsis leaves room for content.
func TruncateName(name string, maxWidth int) string {
	runes := []rune(name)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return name
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
