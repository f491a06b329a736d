package outbox

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const schemaRegistryContentType = "application/vnd.schemaregistry.v1+json"

var errSubjectNotFound = errors.New("schema subject not found")

// SchemaRegistryClient resolves and registers the JSON schemas of published
// events against a Confluent Schema Registry.
type SchemaRegistryClient struct {
	baseURL    string
	httpClient *http.Client
	logger     logrus.FieldLogger
}

// NewSchemaRegistryClient constructs a client. A non-positive timeout falls back to ten seconds.
func NewSchemaRegistryClient(baseURL string, timeout time.Duration, logger logrus.FieldLogger) *SchemaRegistryClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &SchemaRegistryClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// EnsureSchema returns the ID of the latest schema under subject, registering
// schema first when the subject does not exist yet.
func (c *SchemaRegistryClient) EnsureSchema(ctx context.Context, subject string, schema string) (int, error) {
	id, err := c.fetchLatest(ctx, subject)
	if err == nil {
		c.logger.WithFields(logrus.Fields{"subject": subject, "schema_id": id}).Debug("schema subject resolved")
		return id, nil
	}
	if !errors.Is(err, errSubjectNotFound) {
		return 0, fmt.Errorf("lookup subject %s: %w", subject, err)
	}

	id, err = c.register(ctx, subject, schema)
	if err != nil {
		return 0, fmt.Errorf("register subject %s: %w", subject, err)
	}
	c.logger.WithFields(logrus.Fields{"subject": subject, "schema_id": id}).Info("schema registered")
	return id, nil
}

// RegisterCatalog ensures every published event type has its schema
// registered and returns the schema IDs keyed by subject.
func (c *SchemaRegistryClient) RegisterCatalog(ctx context.Context) (map[string]int, error) {
	eventTypes := make([]string, 0, len(schemaCatalog))
	for eventType := range schemaCatalog {
		eventTypes = append(eventTypes, eventType)
	}
	sort.Strings(eventTypes)

	ids := make(map[string]int, len(eventTypes))
	var errs []error
	for _, eventType := range eventTypes {
		entry := schemaCatalog[eventType]
		id, err := c.EnsureSchema(ctx, entry.Subject(), entry.Schema)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", eventType, err))
			continue
		}
		ids[entry.Subject()] = id
	}
	return ids, errors.Join(errs...)
}

func (c *SchemaRegistryClient) fetchLatest(ctx context.Context, subject string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.subjectURL(subject, "versions/latest"), nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", schemaRegistryContentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return 0, errSubjectNotFound
	}
	return decodeSchemaID(resp)
}

func (c *SchemaRegistryClient) register(ctx context.Context, subject string, schema string) (int, error) {
	body, err := json.Marshal(map[string]any{
		"schemaType": "JSON",
		"schema":     schema,
	})
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.subjectURL(subject, "versions"), bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", schemaRegistryContentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return decodeSchemaID(resp)
}

func (c *SchemaRegistryClient) subjectURL(subject, suffix string) string {
	return fmt.Sprintf("%s/subjects/%s/%s", c.baseURL, url.PathEscape(subject), suffix)
}

func decodeSchemaID(resp *http.Response) (int, error) {
	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return 0, fmt.Errorf("schema registry status %d: %s", resp.StatusCode, bytes.TrimSpace(data))
	}

	var payload struct {
		ID int `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("decode schema registry response: %w", err)
	}
	return payload.ID, nil
}
