package log

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	ConnIDKey      = "ConnID"
	StatementIDKey = "StmtID"
)

type ctxKey string

var logger = zap.NewNop().Sugar()

// Init replaces the no-op logger with a console logger at the given level.
func Init(level string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return err
	}
	config := zap.NewDevelopmentConfig()
	config.Level = zap.NewAtomicLevelAt(lvl)
	config.DisableStacktrace = true
	built, err := config.Build()
	if err != nil {
		return err
	}
	logger = built.Sugar()
	return nil
}

// SetLogger is for tests and embedders that bring their own zap logger.
func SetLogger(l *zap.Logger) {
	logger = l.Sugar()
}

func Sync() {
	_ = logger.Sync()
}

// WithConnID tags ctx with a connection id.
func WithConnID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey(ConnIDKey), id)
}

// WithStatementID tags ctx with a statement counter.
func WithStatementID(ctx context.Context, id int) context.Context {
	return context.WithValue(ctx, ctxKey(StatementIDKey), id)
}

func ctxFields(ctx context.Context) []interface{} {
	var fields []interface{}
	if connID := ctx.Value(ctxKey(ConnIDKey)); connID != nil {
		fields = append(fields, "conn", connID)
	}
	if stmtID := ctx.Value(ctxKey(StatementIDKey)); stmtID != nil {
		fields = append(fields, "stmt", stmtID)
	}
	return fields
}

func Println(l Loggable, args ...interface{}) {
	logger.With(ctxFields(l.Ctx())...).Info(strings.TrimSuffix(fmt.Sprintln(args...), "\n"))
}

func Printf(l Loggable, format string, args ...interface{}) {
	logger.With(ctxFields(l.Ctx())...).Infof(format, args...)
}

func Debugf(l Loggable, format string, args ...interface{}) {
	logger.With(ctxFields(l.Ctx())...).Debugf(format, args...)
}

func Errorf(l Loggable, format string, args ...interface{}) {
	logger.With(ctxFields(l.Ctx())...).Errorf(format, args...)
}

type Loggable interface {
	Ctx() context.Context
}
