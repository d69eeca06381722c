// Package logging provides structured logging for workdeck on top of Zap.
//
// The Logger wraps *zap.Logger with context-aware methods: every call
// takes a context.Context and automatically attaches correlation fields
// (the request ID) carried in it. Because the interactive UI owns the
// terminal, the default sink is a file under the config directory;
// non-interactive commands log to stderr.
//
// Usage:
//
//	log, err := logging.New(cfg.Logging)
//	if err != nil {
//	    return err
//	}
//	defer log.Sync()
//
//	ctx = logging.WithRequestID(ctx, id)
//	log.Info(ctx, "project added", zap.String("title", title))
//
// For tests, NewTestLogger returns a logger backed by an in-memory
// observer with assertion helpers.
package logging
