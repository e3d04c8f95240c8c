// Copyright 2025 docrules LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// 🎨 Display configuration
const (
	ruleIndent  = 4  // spaces to indent rule entries
	idWidth     = 24 // base width for the rule id
	fieldWidth  = 12 // width for the field type
	statusWidth = 20 // width for status text
)

// 🎯 RuleOperation represents one rule's outcome for logging
type RuleOperation struct {
	RuleID       string // Rule identifier
	FieldType    string // Semantic category (company/phone/date/...)
	Status       string // Outcome status text
	Matches      int    // Matches found before conflict resolution
	Replacements int    // Replacements actually applied
	IsFailed     bool   // Whether the rule errored
	IsPartial    bool   // Whether matches were lost to conflicts or the cap
	IsIdle       bool   // Whether the rule matched nothing
}

// 📦 DocumentOperation represents one document batch for logging
type DocumentOperation struct {
	Name    string // Document name or path
	BatchID string // Engine batch id
	Runes   int    // Document length in runes
	DryRun  bool   // Whether this is a preview run
}

// 🎯 Logger handles structured logging with console output
type Logger struct {
	zlog       zerolog.Logger
	console    io.Writer
	mu         sync.Mutex
	currentOp  *DocumentOperation
	operations []RuleOperation
}

// 🏭 New creates a new logger
func New(console io.Writer, level zerolog.Level) *Logger {
	zlog := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger().Level(level)
	return &Logger{
		zlog:    zlog,
		console: console,
		mu:      sync.Mutex{},
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// 📝 formatRuleOperation formats a rule operation for display
func (l *Logger) formatRuleOperation(op RuleOperation) string {
	// Determine symbol and color
	var symbol rune
	var symbolColor color.Attribute
	switch {
	case op.IsFailed:
		symbol = '✗'
		symbolColor = color.FgRed
	case op.IsPartial:
		symbol = '⟳'
		symbolColor = color.FgYellow
	case op.IsIdle:
		symbol = '-'
		symbolColor = color.Faint
	default:
		symbol = '✓'
		symbolColor = color.FgGreen
	}

	// Field type gets its own color so scan problems stand out
	var fieldColor color.Attribute
	switch op.FieldType {
	case "generic", "":
		fieldColor = color.FgBlue
	default:
		fieldColor = color.FgCyan
	}

	// Build the line
	return fmt.Sprintf("%s%s %s %s %s",
		fmt.Sprintf("%*s", ruleIndent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", idWidth, op.RuleID),
		color.New(fieldColor).Sprint(fmt.Sprintf("%-*s", fieldWidth, op.FieldType)),
		fmt.Sprintf("%-*s", statusWidth, op.Status))
}

// 📝 LogRuleOperation logs a single rule's outcome
func (l *Logger) LogRuleOperation(ctx context.Context, op RuleOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Add to operations list
	l.operations = append(l.operations, op)

	// Format and print
	fmt.Fprintln(l.console, l.formatRuleOperation(op))

	// Log to zerolog
	l.zlog.Info().
		Str("rule_id", op.RuleID).
		Str("field_type", op.FieldType).
		Str("status", op.Status).
		Int("matches", op.Matches).
		Int("replacements", op.Replacements).
		Bool("is_failed", op.IsFailed).
		Bool("is_partial", op.IsPartial).
		Msg("rule operation")
}

// 📝 StartDocumentOperation starts a new document batch
func (l *Logger) StartDocumentOperation(ctx context.Context, op DocumentOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.currentOp = &op
	l.operations = nil

	// Print document header
	fmt.Fprintf(l.console, "[replacing in %s]\n",
		color.New(color.FgCyan).Sprint(op.Name))

	mode := "apply"
	if op.DryRun {
		mode = "dry-run"
	}
	fmt.Fprintf(l.console, "%s %s %s %s\n",
		color.New(color.FgMagenta).Sprint("◆"),
		color.New(color.Bold).Sprint(op.BatchID),
		color.New(color.Faint).Sprint("•"),
		color.New(color.FgYellow).Sprint(mode))

	// Log to zerolog
	l.zlog.Info().
		Str("document", op.Name).
		Str("batch_id", op.BatchID).
		Int("runes", op.Runes).
		Bool("dry_run", op.DryRun).
		Msg("starting document operation")
}

// 📝 EndDocumentOperation ends the current document batch
func (l *Logger) EndDocumentOperation(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.currentOp == nil {
		return
	}

	// Log summary
	l.zlog.Info().
		Str("document", l.currentOp.Name).
		Int("rules", len(l.operations)).
		Msg("document operation complete")

	l.currentOp = nil
	l.operations = nil
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// 📝 Plain writes preformatted text (e.g. a diff preview) to the console
// without any decoration.
func (l *Logger) Plain(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console, msg)
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	nameText := color.New(color.Bold, color.FgCyan).Sprint("batchreplace")
	fmt.Fprintf(l.console, "\n%s %s\n\n", nameText, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}

// 📝 Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}
