package invoke

// EventSource labels the origin of an invocation payload.
type EventSource string

const (
	EventSourceAPIGatewayAuthorizer EventSource = "api-gateway-authorizer"
	EventSourceAPIGatewayProxy      EventSource = "api-gateway-proxy"
	EventSourceAWSConfig            EventSource = "aws-config"
	EventSourceCognitoSyncTrigger   EventSource = "cognito-sync-trigger"
	EventSourceCloudFormation       EventSource = "cloudformation"
	EventSourceCloudFront           EventSource = "cloudfront"
	EventSourceCloudWatchLogs       EventSource = "cloudwatch-logs"
	EventSourceCodeCommit           EventSource = "code-commit"
	EventSourceDynamoDB             EventSource = "dynamodb"
	EventSourceKinesis              EventSource = "kinesis"
	EventSourceKinesisFirehose      EventSource = "kinesis-firehose"
	EventSourceMobileBackend        EventSource = "mobile-backend"
	EventSourceScheduled            EventSource = "scheduled"
	EventSourceS3                   EventSource = "s3"
	EventSourceSES                  EventSource = "simple-email-service"
	EventSourceSNS                  EventSource = "simple-notification-service"
	EventSourceSQS                  EventSource = "simple-queue-service"
	EventSourceUnknown              EventSource = "unknown"
)

// String implements fmt.Stringer.
func (s EventSource) String() string { return string(s) }

// EventSources returns every known event source, ending with
// EventSourceUnknown.
func EventSources() []EventSource {
	return []EventSource{
		EventSourceAPIGatewayAuthorizer,
		EventSourceAPIGatewayProxy,
		EventSourceAWSConfig,
		EventSourceCognitoSyncTrigger,
		EventSourceCloudFormation,
		EventSourceCloudFront,
		EventSourceCloudWatchLogs,
		EventSourceCodeCommit,
		EventSourceDynamoDB,
		EventSourceKinesis,
		EventSourceKinesisFirehose,
		EventSourceMobileBackend,
		EventSourceScheduled,
		EventSourceS3,
		EventSourceSES,
		EventSourceSNS,
		EventSourceSQS,
		EventSourceUnknown,
	}
}

// firehoseStreamPrefix only covers the default "aws" partition.
const firehoseStreamPrefix = "arn:aws:kinesis:"

type sourceRule struct {
	source EventSource
	disc   Discriminator
}

func recordEventSource(value string) Discriminator {
	return And(NonEmpty("Records"), FieldEquals("Records.0.eventSource", value))
}

// sourceRules is evaluated top to bottom and the first match wins. Generic
// shapes such as a bare Records array overlap, so the order is part of the
// contract.
var sourceRules = []sourceRule{
	{EventSourceCloudFront, And(NonEmpty("Records"), Truthy("Records.0.cf"))},
	{EventSourceCodeCommit, recordEventSource("aws:codecommit")},
	{EventSourceSQS, recordEventSource("aws:sqs")},
	{EventSourceSES, recordEventSource("aws:ses")},
	{EventSourceSNS, recordEventSource("aws:sns")},
	{EventSourceDynamoDB, recordEventSource("aws:dynamodb")},
	{EventSourceKinesis, recordEventSource("aws:kinesis")},
	{EventSourceS3, recordEventSource("aws:s3")},
	{EventSourceKinesisFirehose, And(NonEmpty("records"), Truthy("records.0.approximateArrivalTimestamp"))},
	{EventSourceKinesisFirehose, And(NonEmpty("records"), FieldHasPrefix("deliveryStreamArn", firehoseStreamPrefix))},
	{EventSourceAWSConfig, Truthy("configRuleId", "configRuleName", "configRuleArn")},
	{EventSourceAPIGatewayAuthorizer, FieldEquals("authorizationToken", "incoming-client-token")},
	{EventSourceCloudFormation, Truthy("StackId", "RequestType", "ResourceType")},
	{EventSourceAPIGatewayProxy, Truthy("pathParameters.proxy")},
	{EventSourceScheduled, FieldEquals("source", "aws.events")},
	{EventSourceCloudWatchLogs, Truthy("awslogs.data")},
	{EventSourceCognitoSyncTrigger, And(FieldEquals("eventType", "SyncTrigger"), Truthy("identityId", "identityPoolId"))},
	{EventSourceMobileBackend, Truthy("operation", "message")},
}

// DetectEventSource classifies a raw JSON payload. It never fails: payloads
// that are not valid JSON or match no rule yield EventSourceUnknown.
func DetectEventSource(raw []byte) EventSource {
	return detectEventSource(JSONInspector(), raw)
}

func detectEventSource(insp Inspector, raw []byte) EventSource {
	view, err := insp.Inspect(raw)
	if err != nil {
		return EventSourceUnknown
	}
	return classify(view)
}

func classify(v View) EventSource {
	for _, rule := range sourceRules {
		if rule.disc.Match(v) {
			return rule.source
		}
	}
	return EventSourceUnknown
}
