package invoke

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/stretchr/testify/suite"

	"github.com/bjaus/invoke/apperr"
	"github.com/bjaus/invoke/logger"
	"github.com/bjaus/invoke/metric"
)

type logEntry struct {
	level  logger.Level
	msg    string
	fields logger.Fields
}

type recordingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *recordingLogger) record(level logger.Level, msg string, fields logger.Fields) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{level: level, msg: msg, fields: fields})
}

func (l *recordingLogger) Trace(msg string, f logger.Fields) { l.record(logger.LevelTrace, msg, f) }
func (l *recordingLogger) Debug(msg string, f logger.Fields) { l.record(logger.LevelDebug, msg, f) }
func (l *recordingLogger) Error(msg string, f logger.Fields) { l.record(logger.LevelError, msg, f) }

func (l *recordingLogger) at(level logger.Level) []logEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []logEntry
	for _, e := range l.entries {
		if e.level == level {
			out = append(out, e)
		}
	}
	return out
}

type HandlerSuite struct {
	suite.Suite
	log     *recordingLogger
	metrics *metric.Recorder
	handler *Handler
	event   json.RawMessage
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.log = &recordingLogger{}
	s.metrics = &metric.Recorder{}
	s.handler = NewHandler(s.log, s.metrics)
	s.event = json.RawMessage(`{"source":"aws.events"}`)
}

func (s *HandlerSuite) gaugeActions() []string {
	var out []string
	for _, c := range s.metrics.Gauges() {
		s.Assert().Equal("getId", c.Name)
		s.Assert().Equal(1.0, c.Value)
		out = append(out, c.Action)
	}
	return out
}

func (s *HandlerSuite) assertOneTimer() {
	timers := s.metrics.Timers()
	s.Require().Len(timers, 1)
	s.Assert().Equal("getId", timers[0].Name)
	s.Assert().Equal("latency", timers[0].Action)
	s.Assert().False(timers[0].Start.IsZero())
}

func (s *HandlerSuite) TestSuccess() {
	var gotEvent json.RawMessage
	s.handler.Handle("getId", func(ctx context.Context, event json.RawMessage) (any, error) {
		gotEvent = event
		return "some-value", nil
	})

	result, err := s.handler.Decorate("getId")(context.Background(), s.event)

	s.Require().NoError(err)
	s.Assert().Equal("some-value", result)
	s.Assert().JSONEq(string(s.event), string(gotEvent))

	traces := s.log.at(logger.LevelTrace)
	s.Require().Len(traces, 1)
	s.Assert().Equal("getId - Start", traces[0].msg)
	data := traces[0].fields["data"].(logger.Fields)
	s.Assert().Equal(s.event, data["event"])
	s.Assert().Nil(data["context"])

	debugs := s.log.at(logger.LevelDebug)
	s.Require().Len(debugs, 1)
	s.Assert().Equal("getId - Complete", debugs[0].msg)
	s.Assert().Equal("some-value", debugs[0].fields["data"].(logger.Fields)["result"])

	s.Assert().Empty(s.log.at(logger.LevelError))
	s.Assert().Equal([]string{"start", "success"}, s.gaugeActions())
	s.assertOneTimer()
}

func (s *HandlerSuite) TestPlainErrorIsConverted() {
	orig := errors.New("Some fake error")
	s.handler.Handle("getId", func(ctx context.Context, event json.RawMessage) (any, error) {
		return nil, orig
	})

	result, err := s.handler.Decorate("getId")(context.Background(), s.event)

	s.Assert().Nil(result)
	var appErr *apperr.Error
	s.Require().ErrorAs(err, &appErr)
	s.Assert().Equal(apperr.DefaultMessage, appErr.Error())
	s.Assert().Equal("Some fake error", appErr.Detail())
	s.Assert().ErrorIs(err, orig)

	errs := s.log.at(logger.LevelError)
	s.Require().Len(errs, 1)
	s.Assert().Equal("getId - Error", errs[0].msg)
	s.Assert().Equal(orig, errs[0].fields["error"])
	s.Assert().Contains(errs[0].fields["data"], "event")

	s.Assert().Len(s.log.at(logger.LevelTrace), 1)
	s.Assert().Empty(s.log.at(logger.LevelDebug))
	s.Assert().Equal([]string{"start", "failure"}, s.gaugeActions())
	s.assertOneTimer()
}

func (s *HandlerSuite) TestApplicationErrorIsReturnedAsIs() {
	orig := apperr.New("Some fake error", "")
	s.handler.Handle("getId", func(ctx context.Context, event json.RawMessage) (any, error) {
		return nil, orig
	})

	_, err := s.handler.Decorate("getId")(context.Background(), s.event)

	s.Assert().Same(orig, err)
	s.Assert().Equal([]string{"start", "failure"}, s.gaugeActions())
	s.assertOneTimer()
}

func (s *HandlerSuite) TestSubtypeSurvives() {
	s.handler.Handle("getId", func(ctx context.Context, event json.RawMessage) (any, error) {
		return nil, apperr.NotFound("chart missing")
	})

	_, err := s.handler.Decorate("getId")(context.Background(), s.event)

	s.Assert().ErrorIs(err, apperr.ErrNotFound)
	s.Assert().Equal("chart missing", err.Error())
}

func (s *HandlerSuite) TestFallbackMessage() {
	h := NewHandler(s.log, s.metrics, WithFallbackMessage("Charts are unavailable"))
	h.Handle("getId", func(ctx context.Context, event json.RawMessage) (any, error) {
		return nil, errors.New("timeout")
	})

	_, err := h.Decorate("getId")(context.Background(), s.event)

	s.Assert().EqualError(err, "Charts are unavailable")
}

func (s *HandlerSuite) TestUnregisteredOperation() {
	_, err := s.handler.Decorate("getId")(context.Background(), s.event)

	s.Assert().ErrorIs(err, apperr.ErrNotImplemented)
	s.Assert().Equal([]string{"start", "failure"}, s.gaugeActions())
	s.assertOneTimer()
}

func (s *HandlerSuite) TestPanicIsRecovered() {
	s.handler.Handle("getId", func(ctx context.Context, event json.RawMessage) (any, error) {
		panic("nil map write")
	})

	var err error
	s.Require().NotPanics(func() {
		_, err = s.handler.Decorate("getId")(context.Background(), s.event)
	})

	var appErr *apperr.Error
	s.Require().ErrorAs(err, &appErr)
	s.Assert().Equal(apperr.DefaultMessage, appErr.Error())
	s.Assert().Contains(appErr.Detail(), "nil map write")
	s.assertOneTimer()
}

func (s *HandlerSuite) TestRunsOperationOnce() {
	calls := 0
	s.handler.Handle("getId", func(ctx context.Context, event json.RawMessage) (any, error) {
		calls++
		return nil, errors.New("fail")
	})

	_, _ = s.handler.Decorate("getId")(context.Background(), s.event)

	s.Assert().Equal(1, calls)
}

func (s *HandlerSuite) TestLambdaContext() {
	s.handler.Handle("getId", func(ctx context.Context, event json.RawMessage) (any, error) {
		return "ok", nil
	})
	lc := &lambdacontext.LambdaContext{AwsRequestID: "req-42", InvokedFunctionArn: "arn:aws:lambda:us-east-1:1:function:charts"}
	ctx := lambdacontext.NewContext(context.Background(), lc)

	_, err := s.handler.Decorate("getId")(ctx, s.event)

	s.Require().NoError(err)
	trace := s.log.at(logger.LevelTrace)[0]
	s.Assert().Equal("req-42", trace.fields["x-rrid"])
	s.Assert().Same(lc, trace.fields["data"].(logger.Fields)["context"])
	s.Assert().Equal("req-42", s.log.at(logger.LevelDebug)[0].fields["x-rrid"])
}

func (s *HandlerSuite) TestEventFieldForOddPayloads() {
	s.handler.Handle("getId", func(ctx context.Context, event json.RawMessage) (any, error) {
		return nil, nil
	})

	_, err := s.handler.Decorate("getId")(context.Background(), nil)
	s.Require().NoError(err)
	s.Assert().Nil(s.log.at(logger.LevelTrace)[0].fields["data"].(logger.Fields)["event"])

	_, err = s.handler.Decorate("getId")(context.Background(), json.RawMessage("not json"))
	s.Require().NoError(err)
	s.Assert().Equal("not json", s.log.at(logger.LevelTrace)[1].fields["data"].(logger.Fields)["event"])
}

func (s *HandlerSuite) TestOperations() {
	noop := func(ctx context.Context, event json.RawMessage) (any, error) { return nil, nil }
	s.handler.Handle("zeta", noop)
	s.handler.Handle("alpha", noop)
	s.handler.Handle("mid", noop)

	s.Assert().Equal([]string{"alpha", "mid", "zeta"}, s.handler.Operations())
}

func (s *HandlerSuite) TestNilMetricUsesNoop() {
	h := NewHandler(s.log, nil)
	h.Handle("getId", func(ctx context.Context, event json.RawMessage) (any, error) { return 1, nil })

	s.Assert().NotPanics(func() {
		_, _ = h.Decorate("getId")(context.Background(), s.event)
	})
}

func (s *HandlerSuite) TestWithRealLogger() {
	var buf bytes.Buffer
	log, err := logger.New(logger.Options{Name: "charts", Level: logger.LevelTrace, Output: &buf})
	s.Require().NoError(err)

	h := NewHandler(log, s.metrics)
	h.Handle("getId", func(ctx context.Context, event json.RawMessage) (any, error) {
		return nil, errors.New("upstream 503")
	})
	ctx := lambdacontext.NewContext(context.Background(), &lambdacontext.LambdaContext{AwsRequestID: "req-7"})

	_, _ = h.Decorate("getId")(ctx, s.event)

	lines := bytes.Split(bytes.TrimRight(buf.Bytes(), "\n"), []byte("\n"))
	s.Require().Len(lines, 2)

	var rec map[string]any
	s.Require().NoError(json.Unmarshal(lines[1], &rec))
	s.Assert().Equal("getId - Error", rec["msg"])
	s.Assert().Equal(float64(50), rec["level"])
	s.Assert().Equal("req-7", rec["rrid"])
	s.Assert().Equal("upstream 503", rec["error"])
	s.Assert().Equal(map[string]any{"source": "aws.events"}, rec["data"].(map[string]any)["event"])
}
