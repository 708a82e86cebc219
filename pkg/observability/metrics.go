package observability

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"
)

// Metrics publishes application metrics to CloudWatch. A nil client turns
// every call into a no-op, which is the development default.
type Metrics struct {
	namespace string
	client    *cloudwatch.Client
	logger    *zap.Logger
}

// NewMetrics creates a new metrics instance
func NewMetrics(namespace string, client *cloudwatch.Client, logger *zap.Logger) *Metrics {
	return &Metrics{
		namespace: namespace,
		client:    client,
		logger:    logger,
	}
}

// RecordCommandExecution records latency and outcome for one command
func (m *Metrics) RecordCommandExecution(ctx context.Context, command string, duration time.Duration, success bool) {
	if m.client == nil {
		return
	}

	status := "success"
	if !success {
		status = "failure"
	}

	dimensions := []types.Dimension{
		{
			Name:  aws.String("CommandName"),
			Value: aws.String(command),
		},
		{
			Name:  aws.String("Status"),
			Value: aws.String(status),
		},
	}

	metricData := []types.MetricDatum{
		{
			MetricName: aws.String("CommandExecution"),
			Dimensions: dimensions,
			Value:      aws.Float64(float64(duration.Milliseconds())),
			Unit:       types.StandardUnitMilliseconds,
			Timestamp:  aws.Time(time.Now()),
		},
		{
			MetricName: aws.String("CommandCount"),
			Dimensions: dimensions,
			Value:      aws.Float64(1),
			Unit:       types.StandardUnitCount,
			Timestamp:  aws.Time(time.Now()),
		},
	}

	m.put(ctx, metricData)
}

// RecordLatency records latency for any operation
func (m *Metrics) RecordLatency(ctx context.Context, operation string, latency time.Duration) {
	if m.client == nil {
		return
	}

	m.put(ctx, []types.MetricDatum{
		{
			MetricName: aws.String("OperationLatency"),
			Dimensions: []types.Dimension{
				{
					Name:  aws.String("Operation"),
					Value: aws.String(operation),
				},
			},
			Value:     aws.Float64(float64(latency.Milliseconds())),
			Unit:      types.StandardUnitMilliseconds,
			Timestamp: aws.Time(time.Now()),
		},
	})
}

// RecordError records error occurrences
func (m *Metrics) RecordError(ctx context.Context, errorType string, errorCode string) {
	if m.client == nil {
		return
	}

	m.put(ctx, []types.MetricDatum{
		{
			MetricName: aws.String("Errors"),
			Dimensions: []types.Dimension{
				{
					Name:  aws.String("ErrorType"),
					Value: aws.String(errorType),
				},
				{
					Name:  aws.String("ErrorCode"),
					Value: aws.String(errorCode),
				},
			},
			Value:     aws.Float64(1),
			Unit:      types.StandardUnitCount,
			Timestamp: aws.Time(time.Now()),
		},
	})
}

// put sends metric data, logging failures without surfacing them: metrics
// never fail the operation they measure
func (m *Metrics) put(ctx context.Context, data []types.MetricDatum) {
	input := &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(m.namespace),
		MetricData: data,
	}

	if _, err := m.client.PutMetricData(ctx, input); err != nil && m.logger != nil {
		m.logger.Warn("Failed to send metrics", zap.Error(err))
	}
}
