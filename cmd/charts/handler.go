package main

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-lambda-go/events"

	"github.com/bjaus/invoke"
	"github.com/bjaus/invoke/internal/charts"
	"github.com/bjaus/invoke/logger"
)

type chartRunner interface {
	Run(ctx context.Context) (charts.Report, error)
}

type eventLogger interface {
	Trace(msg string, fields logger.Fields)
	Info(msg string, fields logger.Fields)
}

// defaultOperation syncs the charts whatever triggered the function and
// answers with a fixed API Gateway response.
func defaultOperation(svc chartRunner, log eventLogger) invoke.Operation {
	return func(ctx context.Context, event json.RawMessage) (any, error) {
		log.Trace("Event", logger.Fields{"data": logger.Fields{"event": event}})

		source := invoke.DetectEventSource(event)
		if src, ok := invoke.EventSourceFromContext(ctx); ok {
			source = src
		}

		report, err := svc.Run(ctx)
		if err != nil {
			return nil, err
		}
		log.Info("Charts run complete", logger.Fields{"source": source.String(), "report": report})

		body, err := json.Marshal(map[string]string{"message": "Hello World!"})
		if err != nil {
			return nil, err
		}

		return events.APIGatewayProxyResponse{
			StatusCode: 200,
			Headers:    map[string]string{"x-custom-header": "My Header Value"},
			Body:       string(body),
		}, nil
	}
}
