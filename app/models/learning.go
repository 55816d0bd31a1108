package models

import (
	"errors"
	"fmt"
)

// Timeline kinds
const (
	KindExperience = "experience"
	KindEducation  = "education"
)

// Tutorial is a learning track: sections holding ordered topics. A tutorial
// with a URL and no sections only links elsewhere.
type Tutorial struct {
	ID       string            `json:"id" yaml:"id" validate:"required"`
	Title    string            `json:"title" yaml:"title" validate:"required"`
	Image    string            `json:"image,omitempty" yaml:"image"`
	URL      string            `json:"url,omitempty" yaml:"url" validate:"omitempty,url"`
	Sections []TutorialSection `json:"sections" yaml:"sections" validate:"dive"`
}

// TutorialSection groups topics under a title in the sidebar
type TutorialSection struct {
	Title  string  `json:"section_title" yaml:"title" validate:"required"`
	Topics []Topic `json:"topics" yaml:"topics" validate:"required,dive"`
}

type Topic struct {
	ID       string         `json:"id" yaml:"id" validate:"required"`
	Title    string         `json:"title" yaml:"title" validate:"required"`
	Contents []TopicContent `json:"topic_contents,omitempty" yaml:"contents" validate:"dive"`
}

// TopicContent is one sub-heading of a topic. Content is Markdown.
type TopicContent struct {
	SubHeading string `json:"sub_heading" yaml:"sub_heading" validate:"required"`
	Content    string `json:"content" yaml:"content"`
}

// TopicNav is a topic with its neighbours in reading order
type TopicNav struct {
	Topic Topic  `json:"topic"`
	Prev  *Topic `json:"prev,omitempty"`
	Next  *Topic `json:"next,omitempty"`
}

// Validate checks the required fields and that topic ids are unique across
// the whole tutorial.
func (t *Tutorial) Validate() error {
	if err := validateStruct(t); err != nil {
		return err
	}
	if t.URL == "" && len(t.Sections) == 0 {
		return errors.New("tutorial needs sections or a url")
	}
	seen := make(map[string]struct{})
	for _, topic := range t.Topics() {
		if _, dup := seen[topic.ID]; dup {
			return fmt.Errorf("duplicate topic id %q", topic.ID)
		}
		seen[topic.ID] = struct{}{}
	}
	return nil
}

// Topics flattens the sections into reading order
func (t *Tutorial) Topics() []Topic {
	var topics []Topic
	for _, section := range t.Sections {
		topics = append(topics, section.Topics...)
	}
	return topics
}

// Navigate returns the topic with the given id. An empty id selects the
// first topic.
func (t *Tutorial) Navigate(topicID string) (*TopicNav, bool) {
	topics := t.Topics()
	for i, topic := range topics {
		if topicID != "" && topic.ID != topicID {
			continue
		}
		nav := &TopicNav{Topic: topic}
		if i > 0 {
			nav.Prev = &topics[i-1]
		}
		if i < len(topics)-1 {
			nav.Next = &topics[i+1]
		}
		return nav, true
	}
	return nil, false
}

// TimelineItem is one entry of the about page: a job or a degree
type TimelineItem struct {
	ID          string `json:"id" yaml:"id" validate:"required"`
	Kind        string `json:"kind" yaml:"kind" validate:"required,oneof=experience education"`
	Title       string `json:"title" yaml:"title" validate:"required"`
	Company     string `json:"company" yaml:"company"`
	Period      string `json:"period" yaml:"period"`
	Description string `json:"description" yaml:"description"`
}

type SkillGroup struct {
	Category string   `json:"category" yaml:"category" validate:"required"`
	Items    []string `json:"items" yaml:"items"`
}

// Profile is the content of the about page
type Profile struct {
	Intro          string         `json:"intro" yaml:"intro"`
	Timeline       []TimelineItem `json:"timeline" yaml:"timeline" validate:"dive"`
	Skills         []SkillGroup   `json:"skills" yaml:"skills" validate:"dive"`
	Certifications []string       `json:"certifications" yaml:"certifications"`
}

// Validate checks every timeline entry and that their ids are unique
func (p *Profile) Validate() error {
	if err := validateStruct(p); err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(p.Timeline))
	for _, item := range p.Timeline {
		if _, dup := seen[item.ID]; dup {
			return fmt.Errorf("duplicate timeline id %q", item.ID)
		}
		seen[item.ID] = struct{}{}
	}
	return nil
}

// TimelineOf returns the entries of one kind in file order. An empty kind
// returns the whole timeline.
func (p *Profile) TimelineOf(kind string) []TimelineItem {
	items := make([]TimelineItem, 0, len(p.Timeline))
	for _, item := range p.Timeline {
		if kind == "" || item.Kind == kind {
			items = append(items, item)
		}
	}
	return items
}
