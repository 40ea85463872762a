package opensearch

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"
	"github.com/subdee/icepay/infra/config"
)

// Log kinds, one index each
const (
	KindSystem   = "system"
	KindPostback = "postback"
)

// Client wraps the OpenSearch client
type Client struct {
	client  *opensearch.Client
	enabled bool
}

// NewClient creates a new OpenSearch client and makes sure the log indices exist
func NewClient(ctx context.Context, cfg *config.AppConfig) (*Client, error) {
	if cfg.OpenSearchURL == "" {
		return nil, fmt.Errorf("opensearch: no address configured")
	}

	opensearchConfig := opensearch.Config{
		Addresses: []string{cfg.OpenSearchURL},
		Transport: &http.Transport{
			MaxIdleConnsPerHost: 10,
		},
		MaxRetries:    3,
		RetryOnStatus: []int{502, 503, 504, 429},
		RetryBackoff: func(i int) time.Duration {
			return time.Duration(i) * 100 * time.Millisecond
		},
	}

	if cfg.OpenSearchUser != "" && cfg.OpenSearchPass != "" {
		opensearchConfig.Username = cfg.OpenSearchUser
		opensearchConfig.Password = cfg.OpenSearchPass
	}

	client, err := opensearch.NewClient(opensearchConfig)
	if err != nil {
		return nil, fmt.Errorf("opensearch client: %w", err)
	}

	osClient := &Client{
		client:  client,
		enabled: cfg.EnableLogging,
	}

	if osClient.enabled {
		if err := osClient.setupIndices(ctx); err != nil {
			log.Printf("Warning: Failed to setup OpenSearch indices: %v", err)
		}
	}

	return osClient, nil
}

// GetClient returns the underlying OpenSearch client
func (c *Client) GetClient() *opensearch.Client {
	return c.client
}

func (c *Client) setupIndices(ctx context.Context) error {
	var failed []string
	for _, kind := range []string{KindSystem, KindPostback} {
		indexName := GetLogIndexName(kind)

		exists, err := c.indexExists(ctx, indexName)
		if err != nil {
			failed = append(failed, indexName)
			continue
		}
		if exists {
			continue
		}

		if err := c.createLogIndex(ctx, indexName); err != nil {
			failed = append(failed, indexName)
			continue
		}
		log.Printf("Created OpenSearch index: %s", indexName)
	}

	if len(failed) > 0 {
		return fmt.Errorf("indices not ready: %s", strings.Join(failed, ", "))
	}
	return nil
}

func (c *Client) indexExists(ctx context.Context, indexName string) (bool, error) {
	req := opensearchapi.IndicesExistsRequest{
		Index: []string{indexName},
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return false, err
	}
	defer res.Body.Close()

	return res.StatusCode == http.StatusOK, nil
}

// createLogIndex creates an index with the mapping shared by all log kinds
func (c *Client) createLogIndex(ctx context.Context, indexName string) error {
	mapping := `{
		"mappings": {
			"properties": {
				"timestamp": {
					"type": "date",
					"format": "strict_date_optional_time||epoch_millis"
				},
				"level": {"type": "keyword"},
				"message": {"type": "text"},
				"component": {"type": "keyword"},
				"provider": {"type": "keyword"},
				"request_id": {"type": "keyword"},
				"order_id": {"type": "keyword"},
				"payment_id": {"type": "keyword"},
				"transaction_id": {"type": "keyword"},
				"status": {"type": "keyword"},
				"amount": {"type": "keyword"},
				"currency": {"type": "keyword"},
				"client_ip": {"type": "keyword"},
				"accepted": {"type": "boolean"},
				"error": {"type": "text"}
			}
		},
		"settings": {
			"number_of_shards": 1,
			"number_of_replicas": 0
		}
	}`

	req := opensearchapi.IndicesCreateRequest{
		Index: indexName,
		Body:  strings.NewReader(mapping),
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index creation error: %s", res.String())
	}

	return nil
}

// GetLogIndexName returns the index name for a log kind
func GetLogIndexName(kind string) string {
	return "icepay-" + kind + "-logs"
}

// IsEnabled returns whether OpenSearch logging is enabled
func (c *Client) IsEnabled() bool {
	return c.enabled
}

func (c *Client) Name() string {
	return "opensearch"
}

// Check pings the cluster
func (c *Client) Check(ctx context.Context) error {
	res, err := opensearchapi.PingRequest{}.Do(ctx, c.client)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("opensearch ping: %s", res.Status())
	}
	return nil
}
