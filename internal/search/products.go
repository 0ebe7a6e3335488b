// Package search keeps an Elasticsearch index of the product catalog.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/toolhatch-backend/internal/models"
)

type Options struct {
	Addresses []string
	Username  string
	Password  string
	Index     string
	Transport http.RoundTripper
}

type ProductIndex struct {
	es    *elasticsearch.Client
	index string
}

type productDocument struct {
	ID          uint     `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	CategoryID  uint     `json:"categoryId"`
	Price       string   `json:"price"`
	IsActive    bool     `json:"isActive"`
}

func NewProductIndex(opts Options) (*ProductIndex, error) {
	if opts.Index == "" {
		opts.Index = "products"
	}

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: opts.Addresses,
		Username:  opts.Username,
		Password:  opts.Password,
		Transport: opts.Transport,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}

	return &ProductIndex{es: client, index: opts.Index}, nil
}

// Ping checks that the cluster answers.
func (p *ProductIndex) Ping(ctx context.Context) error {
	res, err := p.es.Info(p.es.Info.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("elasticsearch info: %s: %s", res.Status(), body)
	}
	return nil
}

func (p *ProductIndex) IndexProduct(ctx context.Context, product *models.Product) error {
	doc := productDocument{
		ID:          product.ID,
		Title:       product.Title,
		Description: product.Description,
		Tags:        []string(product.Tags),
		CategoryID:  product.CategoryID,
		Price:       product.Price,
		IsActive:    product.IsActive,
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	res, err := p.es.Index(
		p.index,
		bytes.NewReader(body),
		p.es.Index.WithContext(ctx),
		p.es.Index.WithDocumentID(strconv.FormatUint(uint64(product.ID), 10)),
	)
	if err != nil {
		return fmt.Errorf("index product %d: %w", product.ID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index product %d: %s", product.ID, res.Status())
	}
	return nil
}

func (p *ProductIndex) DeleteProduct(ctx context.Context, productID uint) error {
	res, err := p.es.Delete(
		p.index,
		strconv.FormatUint(uint64(productID), 10),
		p.es.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("delete product %d: %w", productID, err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("delete product %d: %s", productID, res.Status())
	}
	return nil
}

// Search returns matching product ids ordered by relevance.
func (p *ProductIndex) Search(ctx context.Context, query string, size int) ([]uint, error) {
	if size <= 0 {
		size = 20
	}
	body := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": map[string]interface{}{
					"multi_match": map[string]interface{}{
						"query":     query,
						"fields":    []string{"title^2", "description", "tags"},
						"fuzziness": "AUTO",
					},
				},
				"filter": map[string]interface{}{
					"term": map[string]interface{}{"isActive": true},
				},
			},
		},
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, err
	}

	res, err := p.es.Search(
		p.es.Search.WithContext(ctx),
		p.es.Search.WithIndex(p.index),
		p.es.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("search error: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("search error: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Hits []struct {
				Source productDocument `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		ids = append(ids, hit.Source.ID)
	}
	logrus.WithFields(logrus.Fields{"query": query, "hits": len(ids)}).Debug("Product search")
	return ids, nil
}
