// Package logging provides structured logging for regcheck on top of
// log/slog.
//
// Components take a *Logger and tag it with their name:
//
//	log := logger.Component("registry")
//	log.Info("catalog reloaded", "template", name, "fields", cat.Len())
//
// Validation context (request ID, run ID, template, source) travels in the
// context.Context and is added to every *Context call:
//
//	ctx = logging.WithTemplate(ctx, "ept")
//	log.InfoContext(ctx, "validation finished", "valid", res.Valid)
//
// Logs go to stderr by default so command output on stdout can be piped.
// The validation engine itself does not log.
package logging
