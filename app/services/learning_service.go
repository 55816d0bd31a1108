package services

import (
	"strings"

	"portfolio/app/models"
)

// LearningService serves the read-only tutorials and the about page profile
type LearningService struct {
	tutorials []*models.Tutorial
	profile   *models.Profile
}

func NewLearningService(tutorials []*models.Tutorial, profile *models.Profile) *LearningService {
	if profile == nil {
		profile = &models.Profile{}
	}
	return &LearningService{tutorials: tutorials, profile: profile}
}

// Tutorials returns every tutorial in catalog order
func (s *LearningService) Tutorials() []*models.Tutorial {
	return s.tutorials
}

// Tutorial looks a tutorial up by id, ignoring case so that /learnings/HTML
// and /learnings/html are the same page.
func (s *LearningService) Tutorial(id string) (*models.Tutorial, error) {
	for _, t := range s.tutorials {
		if strings.EqualFold(t.ID, id) {
			return t, nil
		}
	}
	return nil, ErrNotFound
}

// Topic returns a topic of a tutorial with its neighbours. An empty topicID
// opens the first topic.
func (s *LearningService) Topic(tutorialID, topicID string) (*models.Tutorial, *models.TopicNav, error) {
	tutorial, err := s.Tutorial(tutorialID)
	if err != nil {
		return nil, nil, err
	}
	nav, ok := tutorial.Navigate(topicID)
	if !ok {
		return tutorial, nil, ErrNotFound
	}
	return tutorial, nav, nil
}

func (s *LearningService) Profile() *models.Profile {
	return s.profile
}

// Timeline returns the about page entries of kind, or all of them when kind
// is empty. Unknown kinds are rejected.
func (s *LearningService) Timeline(kind string) ([]models.TimelineItem, error) {
	kind = strings.ToLower(strings.TrimSpace(kind))
	switch kind {
	case "", models.KindExperience, models.KindEducation:
		return s.profile.TimelineOf(kind), nil
	default:
		return nil, ErrInvalidInput
	}
}
