// Package opensearch stores webhook delivery audit documents.
package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"MercadoPagoGateway/internal/domain/ipn"

	"github.com/google/uuid"
	"github.com/opensearch-project/opensearch-go"
)

var _ ipn.AuditSink = (*AuditSink)(nil)

type AuditSink struct {
	client *opensearch.Client
	index  string
}

// NewAuditSink connects to OpenSearch and creates the index when missing.
func NewAuditSink(ctx context.Context, urls []string, index string) (*AuditSink, error) {
	if len(urls) == 0 {
		return nil, errors.New("no OpenSearch addresses configured")
	}

	client, err := opensearch.NewClient(opensearch.Config{
		Addresses: urls,
		Transport: &http.Transport{
			MaxIdleConnsPerHost:   10,
			DialContext:           (&net.Dialer{Timeout: 3 * time.Second}).DialContext,
			ResponseHeaderTimeout: 5 * time.Second,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("opensearch client: %w", err)
	}

	sink := &AuditSink{client: client, index: index}
	if err := sink.ensureIndex(ctx); err != nil {
		return nil, err
	}
	return sink, nil
}

func (s *AuditSink) ensureIndex(ctx context.Context) error {
	res, err := s.client.Indices.Exists([]string{s.index}, s.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("indices.exists: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusOK {
		return nil
	}

	body := map[string]any{
		"mappings": map[string]any{
			"properties": map[string]any{
				"delivery_id":    map[string]any{"type": "keyword"},
				"received_at":    map[string]any{"type": "date"},
				"payload":        map[string]any{"type": "object", "enabled": false},
				"reference":      map[string]any{"type": "object"},
				"rejection":      map[string]any{"type": "keyword"},
				"outcome":        map[string]any{"type": "keyword"},
				"duration_ms":    map[string]any{"type": "long"},
				"correlation_id": map[string]any{"type": "keyword"},
				"trace_id":       map[string]any{"type": "keyword"},
			},
		},
		"settings": map[string]any{
			"number_of_replicas": 0,
		},
	}
	buf, _ := json.Marshal(body)
	cr, err := s.client.Indices.Create(
		s.index,
		s.client.Indices.Create.WithBody(bytes.NewReader(buf)),
		s.client.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("indices.create: %w", err)
	}
	defer cr.Body.Close()
	if cr.IsError() {
		return fmt.Errorf("indices.create error: %s", cr.String())
	}
	return nil
}

// Record indexes one delivery. The delivery ID doubles as the document ID.
func (s *AuditSink) Record(ctx context.Context, entry ipn.AuditEntry) error {
	if entry.DeliveryID == "" {
		entry.DeliveryID = uuid.NewString()
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal audit entry: %w", err)
	}

	res, err := s.client.Index(
		s.index,
		bytes.NewReader(payload),
		s.client.Index.WithDocumentID(entry.DeliveryID),
		s.client.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index error: %s", res.String())
	}
	return nil
}

// Recent returns the latest deliveries, newest first.
func (s *AuditSink) Recent(ctx context.Context, size int) ([]ipn.AuditEntry, error) {
	body := map[string]any{
		"size": size,
		"sort": []map[string]any{
			{"received_at": map[string]any{"order": "desc"}},
		},
	}
	raw, _ := json.Marshal(body)

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(bytes.NewReader(raw)),
	)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("search error: %s", res.String())
	}

	var sr struct {
		Hits struct {
			Hits []struct {
				Source ipn.AuditEntry `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("decode search: %w", err)
	}

	out := make([]ipn.AuditEntry, 0, len(sr.Hits.Hits))
	for _, h := range sr.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}

func (s *AuditSink) Ping(ctx context.Context) error {
	res, err := s.client.Ping(s.client.Ping.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("ping: %s", res.Status())
	}
	return nil
}
