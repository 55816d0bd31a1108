// Package search keeps an in-memory full-text index of posts.
package search

import (
	"context"
	"fmt"
	"strings"

	"portfolio/app/models"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
)

const DefaultLimit = 20

// Index is a bleve index over post title, body text, excerpt and tags
type Index struct {
	index bleve.Index
}

type document struct {
	Title   string `json:"title"`
	Body    string `json:"body"`
	Excerpt string `json:"excerpt"`
	Tags    string `json:"tags"`
}

func newDocument(post *models.Post) document {
	return document{
		Title:   post.Title,
		Body:    post.Content.PlainText(),
		Excerpt: post.Excerpt,
		Tags:    strings.Join(post.Tags, " "),
	}
}

func indexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()
	for _, field := range []string{"title", "body", "excerpt", "tags"} {
		docMapping.AddFieldMappingsAt(field, bleve.NewTextFieldMapping())
	}
	indexMapping.DefaultMapping = docMapping
	return indexMapping
}

// NewIndex creates an empty in-memory index
func NewIndex() (*Index, error) {
	index, err := bleve.NewMemOnly(indexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create search index: %w", err)
	}
	return &Index{index: index}, nil
}

// Index adds or replaces a post in the index
func (i *Index) Index(post *models.Post) error {
	return i.index.Index(post.ID, newDocument(post))
}

// Remove drops a post from the index
func (i *Index) Remove(id string) error {
	return i.index.Delete(id)
}

// Rebuild indexes every post in one batch
func (i *Index) Rebuild(posts []*models.Post) error {
	batch := i.index.NewBatch()
	for _, post := range posts {
		if err := batch.Index(post.ID, newDocument(post)); err != nil {
			return err
		}
	}
	return i.index.Batch(batch)
}

// Search returns the ids of posts matching q, most relevant first
func (i *Index) Search(ctx context.Context, q string, limit int) ([]string, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	request := bleve.NewSearchRequestOptions(bleve.NewMatchQuery(q), limit, 0, false)
	result, err := i.index.SearchInContext(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("failed to search posts: %w", err)
	}

	ids := make([]string, 0, len(result.Hits))
	for _, hit := range result.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, nil
}

// Count returns the number of indexed posts.
func (i *Index) Count() (uint64, error) {
	return i.index.DocCount()
}

// Close releases the index
func (i *Index) Close() error {
	return i.index.Close()
}
