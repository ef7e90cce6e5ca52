// Package metrics publishes operational gauges for the reference backend.
// file: metrics/metrics.go
package metrics

import (
	"sync"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cloudwatch"
	"github.com/aws/aws-sdk-go/service/cloudwatch/cloudwatchiface"
	"github.com/aws/aws-xray-sdk-go/xray"

	"codenames-sync/logger"
)

// Namespace for all metrics.
const Namespace = "CodenamesSync"

// Publisher records gauges and counters keyed by game.
type Publisher interface {
	SubscriberCount(gameID string, count int)
	PlayersJoined(gameID string, count int)
	GameStarted(gameID string)
}

// --------------- Nop -----------------

// Nop discards everything. It is the default when metrics are disabled.
type Nop struct{}

func (Nop) SubscriberCount(string, int) {}
func (Nop) PlayersJoined(string, int)   {}
func (Nop) GameStarted(string)          {}

// --------------- CloudWatch -----------------

// CloudWatch pushes each observation with PutMetricData.
type CloudWatch struct {
	client cloudwatchiface.CloudWatchAPI
	now    func() time.Time
	wg     sync.WaitGroup
}

// NewCloudWatch creates a publisher from the default AWS session chain
// (environment, shared config, instance role). With traced set, the client
// is instrumented with X-Ray.
func NewCloudWatch(traced bool) (*CloudWatch, error) {
	sess, err := session.NewSession()
	if err != nil {
		return nil, err
	}
	cw := cloudwatch.New(sess)
	if traced {
		xray.AWS(cw.Client)
	}
	return NewCloudWatchWithClient(cw), nil
}

// NewCloudWatchWithClient wraps an existing client; tests pass a fake.
func NewCloudWatchWithClient(client cloudwatchiface.CloudWatchAPI) *CloudWatch {
	return &CloudWatch{client: client, now: time.Now}
}

// SubscriberCount pushes the number of open update channels for a game.
func (c *CloudWatch) SubscriberCount(gameID string, count int) {
	c.put("SubscriberCount", float64(count), cloudwatch.StandardUnitCount, gameID)
}

// PlayersJoined pushes the number of seated players for a game.
func (c *CloudWatch) PlayersJoined(gameID string, count int) {
	c.put("PlayersJoined", float64(count), cloudwatch.StandardUnitCount, gameID)
}

// GameStarted counts started games.
func (c *CloudWatch) GameStarted(gameID string) {
	c.put("GamesStarted", 1, cloudwatch.StandardUnitCount, gameID)
}

// Flush waits for in-flight pushes.
func (c *CloudWatch) Flush() {
	c.wg.Wait()
}

// -----------------------------------------------------------
// internal helper to package up CloudWatch calls; pushes run in the
// background so request paths never wait on AWS
// -----------------------------------------------------------
func (c *CloudWatch) put(metricName string, value float64, unit string, gameID string) {
	input := &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(Namespace),
		MetricData: []*cloudwatch.MetricDatum{
			{
				MetricName: aws.String(metricName),
				Dimensions: []*cloudwatch.Dimension{
					{
						Name:  aws.String("GameID"),
						Value: aws.String(gameID),
					},
				},
				Timestamp: aws.Time(c.now()),
				Value:     aws.Float64(value),
				Unit:      aws.String(unit),
			},
		},
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if _, err := c.client.PutMetricData(input); err != nil {
			logger.Error.Printf("[CloudWatch.put] metric %s failed: %v", metricName, err)
		}
	}()
}
