package service

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"anoa.com/alienvault/internal/entity"
	"anoa.com/alienvault/pkg/logger"
	"github.com/google/uuid"
	"github.com/meilisearch/meilisearch-go"
	"github.com/microcosm-cc/bluemonday"
	"github.com/sirupsen/logrus"
)

const discussionsIndex = "discussions"

type SearchService interface {
	IndexDiscussion(discussion *entity.Discussion) error
	DeleteDiscussion(id uuid.UUID) error
	// SearchDiscussions returns matching ids in relevance order plus the estimated total.
	SearchDiscussions(query, category string, offset, limit int) ([]uuid.UUID, int64, error)
}

type meiliSearchService struct {
	client    meilisearch.ServiceManager
	sanitizer *bluemonday.Policy
	log       *logrus.Entry
}

func NewMeiliSearchService(client meilisearch.ServiceManager) SearchService {
	s := &meiliSearchService{
		client:    client,
		sanitizer: bluemonday.StrictPolicy(),
		log:       logger.WithComponent("search"),
	}
	s.initIndexes()
	return s
}

func (s *meiliSearchService) initIndexes() {
	filterable := []any{"category", "tags"}
	if _, err := s.client.Index(discussionsIndex).UpdateFilterableAttributes(&filterable); err != nil {
		s.log.WithError(err).Warn("failed to update filterable attributes")
	}

	sortable := []string{"created_at", "views"}
	if _, err := s.client.Index(discussionsIndex).UpdateSortableAttributes(&sortable); err != nil {
		s.log.WithError(err).Warn("failed to update sortable attributes")
	}
}

type discussionDoc struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Category  string   `json:"category"`
	Tags      []string `json:"tags"`
	Views     int      `json:"views"`
	CreatedAt int64    `json:"created_at"`
	Author    string   `json:"author"`
}

// CleanContent strips markup so only readable text reaches the index.
func CleanContent(policy *bluemonday.Policy, content string) string {
	for _, tag := range []string{"</p>", "<br>", "<br/>", "<br />", "</div>", "</li>"} {
		content = strings.ReplaceAll(content, tag, tag+" ")
	}
	clean := html.UnescapeString(policy.Sanitize(content))
	return strings.Join(strings.Fields(clean), " ")
}

func (s *meiliSearchService) IndexDiscussion(discussion *entity.Discussion) error {
	doc := discussionDoc{
		ID:        discussion.ID.String(),
		Title:     discussion.Title,
		Content:   CleanContent(s.sanitizer, discussion.Content),
		Category:  discussion.Category,
		Tags:      discussion.Tags,
		Views:     discussion.Views,
		CreatedAt: discussion.CreatedAt.Unix(),
		Author:    discussion.Author.Username,
	}

	task, err := s.client.Index(discussionsIndex).AddDocuments([]discussionDoc{doc}, strPtr("id"))
	if err != nil {
		return fmt.Errorf("failed to index discussion: %w", err)
	}
	s.log.WithFields(logrus.Fields{"discussion_id": discussion.ID, "task_uid": task.TaskUID}).Debug("discussion indexed")
	return nil
}

func (s *meiliSearchService) DeleteDiscussion(id uuid.UUID) error {
	_, err := s.client.Index(discussionsIndex).DeleteDocument(id.String())
	return err
}

func (s *meiliSearchService) SearchDiscussions(query, category string, offset, limit int) ([]uuid.UUID, int64, error) {
	req := &meilisearch.SearchRequest{
		Offset:               int64(offset),
		Limit:                int64(limit),
		AttributesToRetrieve: []string{"id"},
	}
	if category != "" {
		req.Filter = fmt.Sprintf("category = %q", category)
	}

	resp, err := s.client.Index(discussionsIndex).Search(query, req)
	if err != nil {
		return nil, 0, fmt.Errorf("meilisearch query failed: %w", err)
	}

	ids, err := decodeHitIDs(resp.Hits)
	if err != nil {
		return nil, 0, err
	}
	return ids, resp.EstimatedTotalHits, nil
}

func decodeHitIDs(hits any) ([]uuid.UUID, error) {
	raw, err := json.Marshal(hits)
	if err != nil {
		return nil, fmt.Errorf("failed to read search hits: %w", err)
	}

	var docs []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, fmt.Errorf("failed to read search hits: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(docs))
	for _, d := range docs {
		if id, err := uuid.Parse(d.ID); err == nil {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func strPtr(s string) *string {
	return &s
}
