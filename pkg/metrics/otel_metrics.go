package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OTelMetrics 业务指标集合
type OTelMetrics struct {
	LoginTotal      metric.Int64Counter
	AttendanceTotal metric.Int64Counter
	LeaveTotal      metric.Int64Counter
	NotifyTotal     metric.Int64Counter
	NotifyDuration  metric.Float64Histogram
	ShiftHours      metric.Float64Histogram
}

// 全局指标实例
var metrics *OTelMetrics

// InitMetrics 使用全局 MeterProvider 初始化指标，provider 未安装时为 no-op
func InitMetrics() error {
	return InitMetricsWithMeter(otel.Meter("alms"))
}

func InitMetricsWithMeter(meter metric.Meter) error {
	m := &OTelMetrics{}
	var err error

	m.LoginTotal, err = meter.Int64Counter(
		"alms.login.attempts",
		metric.WithDescription("Login attempts by result"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return err
	}

	m.AttendanceTotal, err = meter.Int64Counter(
		"alms.attendance.events",
		metric.WithDescription("Clock in / clock out events by action and result"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return err
	}

	m.LeaveTotal, err = meter.Int64Counter(
		"alms.leave.submissions",
		metric.WithDescription("Leave applications by result"),
		metric.WithUnit("{leave}"),
	)
	if err != nil {
		return err
	}

	m.NotifyTotal, err = meter.Int64Counter(
		"alms.notify.deliveries",
		metric.WithDescription("Leave notification deliveries by mode and result"),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		return err
	}

	m.NotifyDuration, err = meter.Float64Histogram(
		"alms.notify.duration",
		metric.WithDescription("Time spent delivering a leave notification"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	m.ShiftHours, err = meter.Float64Histogram(
		"alms.attendance.shift_hours",
		metric.WithDescription("Length of closed attendance cycles"),
		metric.WithUnit("h"),
		metric.WithExplicitBucketBoundaries(1, 2, 4, 6, 8, 9, 10, 12, 16, 24),
	)
	if err != nil {
		return err
	}

	metrics = m
	return nil
}

// GetMetrics 获取全局指标实例，未初始化时为 nil
func GetMetrics() *OTelMetrics {
	return metrics
}

// RecordLogin result: success, failed, invalid
func RecordLogin(ctx context.Context, result string) {
	if m := GetMetrics(); m != nil {
		m.LoginTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
	}
}

// RecordAttendance action: clock_in, clock_out
func RecordAttendance(ctx context.Context, action, result string) {
	if m := GetMetrics(); m != nil {
		m.AttendanceTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.String("action", action),
			attribute.String("result", result),
		))
	}
}

func RecordShiftHours(ctx context.Context, hours float64) {
	if m := GetMetrics(); m != nil {
		m.ShiftHours.Record(ctx, hours)
	}
}

func RecordLeave(ctx context.Context, result string) {
	if m := GetMetrics(); m != nil {
		m.LeaveTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
	}
}

// RecordNotify mode: smtp, queue, worker
func RecordNotify(ctx context.Context, mode, result string, elapsed time.Duration) {
	if m := GetMetrics(); m != nil {
		attrs := metric.WithAttributes(
			attribute.String("mode", mode),
			attribute.String("result", result),
		)
		m.NotifyTotal.Add(ctx, 1, attrs)
		m.NotifyDuration.Record(ctx, elapsed.Seconds(), attrs)
	}
}
