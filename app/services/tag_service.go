package services

import (
	"sort"
	"strings"

	"portfolio/app/models"
	"portfolio/app/repositories"
)

// TagCount is a tag name with the number of published posts using it
type TagCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// TagService answers questions about tags
type TagService struct {
	tagRepo  repositories.TagRepository
	postRepo repositories.PostRepository
}

func NewTagService(tagRepo repositories.TagRepository, postRepo repositories.PostRepository) *TagService {
	return &TagService{tagRepo: tagRepo, postRepo: postRepo}
}

// List returns every known tag ordered by name, ignoring case
func (s *TagService) List() ([]*models.Tag, error) {
	const op = "services.TagService.List"

	tags, err := s.tagRepo.List()
	if err != nil {
		return nil, fail(op, err)
	}
	sort.SliceStable(tags, func(i, j int) bool {
		return strings.ToLower(tags[i].Name) < strings.ToLower(tags[j].Name)
	})
	return tags, nil
}

// Popular returns up to limit tags ordered by how many published posts use
// them. Ties are broken by name.
func (s *TagService) Popular(limit int) ([]TagCount, error) {
	const op = "services.TagService.Popular"

	posts, err := s.postRepo.List()
	if err != nil {
		return nil, fail(op, err)
	}

	counts := make(map[string]*TagCount)
	for _, post := range posts {
		if !post.IsPublished() {
			continue
		}
		for _, name := range post.Tags {
			k := models.TagKey(name)
			if c, ok := counts[k]; ok {
				c.Count++
				continue
			}
			counts[k] = &TagCount{Name: name, Count: 1}
		}
	}

	out := make([]TagCount, 0, len(counts))
	for _, c := range counts {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
