package database

import (
	"regexp"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

const (
	spanKey       = "otel:span"
	maxStatement  = 500
	pluginName    = "alms:otel"
	callbackAfter = "otel:after_"
)

var passkeyPattern = regexp.MustCompile(`(?i)(passkey\s*=\s*)('[^']*'|\$\d+|\?)`)

// Plugin 为每条 SQL 创建一个 client span
type Plugin struct {
	tracer trace.Tracer
	system attribute.KeyValue
}

func NewPlugin(serviceName, driver string) *Plugin {
	if serviceName == "" {
		serviceName = "alms"
	}
	return &Plugin{
		tracer: otel.Tracer(serviceName + ".gorm"),
		system: dbSystem(driver),
	}
}

func (p *Plugin) Name() string {
	return pluginName
}

func (p *Plugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()
	hooks := []struct {
		name   string
		before func(string) error
		after  func(string) error
	}{
		{"query", wrap(cb.Query().Before("gorm:query"), p.before), wrap(cb.Query().After("gorm:query"), p.after)},
		{"create", wrap(cb.Create().Before("gorm:create"), p.before), wrap(cb.Create().After("gorm:create"), p.after)},
		{"update", wrap(cb.Update().Before("gorm:update"), p.before), wrap(cb.Update().After("gorm:update"), p.after)},
		{"delete", wrap(cb.Delete().Before("gorm:delete"), p.before), wrap(cb.Delete().After("gorm:delete"), p.after)},
		{"row", wrap(cb.Row().Before("gorm:row"), p.before), wrap(cb.Row().After("gorm:row"), p.after)},
		{"raw", wrap(cb.Raw().Before("gorm:raw"), p.before), wrap(cb.Raw().After("gorm:raw"), p.after)},
	}

	for _, h := range hooks {
		if err := h.before("otel:before_" + h.name); err != nil {
			return err
		}
		if err := h.after(callbackAfter + h.name); err != nil {
			return err
		}
	}
	return nil
}

type registerer interface {
	Register(name string, fn func(*gorm.DB)) error
}

func wrap(r registerer, fn func(*gorm.DB)) func(string) error {
	return func(name string) error { return r.Register(name, fn) }
}

func (p *Plugin) before(db *gorm.DB) {
	attrs := []attribute.KeyValue{p.system}
	if db.Statement.Table != "" {
		attrs = append(attrs, semconv.DBSQLTable(db.Statement.Table))
	}

	ctx, span := p.tracer.Start(db.Statement.Context, "db."+tableOr(db.Statement.Table),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
	db.Statement.Context = ctx
	db.InstanceSet(spanKey, span)
}

func (p *Plugin) after(db *gorm.DB) {
	v, ok := db.InstanceGet(spanKey)
	if !ok {
		return
	}
	span, ok := v.(trace.Span)
	if !ok {
		return
	}
	defer span.End()

	span.SetName(operation(db.Statement.SQL.String()) + " " + tableOr(db.Statement.Table))
	span.SetAttributes(
		semconv.DBStatement(Sanitize(db.Statement.SQL.String())),
		attribute.Int64("db.rows_affected", db.Statement.RowsAffected),
	)

	if err := db.Error; err != nil && err != gorm.ErrRecordNotFound {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// Sanitize 截断过长语句并去掉口令字面量
func Sanitize(stmt string) string {
	if len(stmt) > maxStatement {
		stmt = stmt[:maxStatement] + "..."
	}
	return passkeyPattern.ReplaceAllString(stmt, "${1}'***'")
}

func operation(stmt string) string {
	fields := strings.Fields(stmt)
	if len(fields) == 0 {
		return "QUERY"
	}
	switch op := strings.ToUpper(fields[0]); op {
	case "SELECT", "INSERT", "UPDATE", "DELETE":
		return op
	default:
		return "QUERY"
	}
}

func tableOr(table string) string {
	if table == "" {
		return "unknown"
	}
	return table
}

func dbSystem(driver string) attribute.KeyValue {
	switch driver {
	case "mysql":
		return semconv.DBSystemMySQL
	case "sqlite":
		return semconv.DBSystemSqlite
	default:
		return semconv.DBSystemPostgreSQL
	}
}
