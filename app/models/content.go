package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"html/template"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// BlockType identifies the kind of a content block.
type BlockType string

const (
	BlockParagraph BlockType = "paragraph"
	BlockPoints    BlockType = "points"
	BlockImage     BlockType = "image"
)

// ListFormat selects how a points block is rendered.
type ListFormat string

const (
	FormatNumbered ListFormat = "numbered"
	FormatBulleted ListFormat = "bulleted"
)

// Block is one typed unit of structured post content.
type Block struct {
	Type    BlockType  `json:"type"`
	Text    string     `json:"text,omitempty"`
	Heading string     `json:"heading,omitempty"`
	Items   []string   `json:"items,omitempty"`
	Format  ListFormat `json:"format,omitempty"`
	Src     string     `json:"src,omitempty"`
	Alt     string     `json:"alt,omitempty"`
	Caption string     `json:"caption,omitempty"`
	Width   int        `json:"width,omitempty"`
	Height  int        `json:"height,omitempty"`
}

// Validate checks the fields required by the block type
func (b Block) Validate() error {
	switch b.Type {
	case BlockParagraph:
		if strings.TrimSpace(b.Text) == "" {
			return errors.New("paragraph block requires text")
		}
	case BlockPoints:
		if len(b.Items) == 0 {
			return errors.New("points block requires at least one item")
		}
		if b.Format != FormatNumbered && b.Format != FormatBulleted {
			return fmt.Errorf("invalid points format %q", b.Format)
		}
	case BlockImage:
		if !validImageSource(b.Src) {
			return fmt.Errorf("invalid image source %q", b.Src)
		}
		if b.Width < 0 || b.Height < 0 {
			return errors.New("image dimensions must not be negative")
		}
	default:
		return fmt.Errorf("unknown block type %q", b.Type)
	}
	return nil
}

func validImageSource(src string) bool {
	if strings.HasPrefix(src, "/") && len(src) > 1 {
		return true
	}
	return validate.Var(src, "required,http_url") == nil
}

// Body is the content of a post: either plain text or a list of blocks.
// It encodes to a JSON string or a JSON array accordingly.
type Body struct {
	Text   string
	Blocks []Block
}

// TextBody returns a plain text body.
func TextBody(text string) Body {
	return Body{Text: text}
}

// BlockBody returns a structured body.
func BlockBody(blocks ...Block) Body {
	return Body{Blocks: blocks}
}

// IsBlocks reports whether the body is structured.
func (b Body) IsBlocks() bool {
	return len(b.Blocks) > 0
}

// IsEmpty reports whether the body carries no content at all.
func (b Body) IsEmpty() bool {
	return !b.IsBlocks() && strings.TrimSpace(b.Text) == ""
}

// Validate checks every block of a structured body
func (b Body) Validate() error {
	for i, block := range b.Blocks {
		if err := block.Validate(); err != nil {
			return fmt.Errorf("block %d: %w", i, err)
		}
	}
	return nil
}

func (b Body) MarshalJSON() ([]byte, error) {
	if b.IsBlocks() {
		return json.Marshal(b.Blocks)
	}
	return json.Marshal(b.Text)
}

func (b *Body) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*b = Body{}
		return nil
	case data[0] == '"':
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*b = Body{Text: text}
		return nil
	case data[0] == '[':
		var blocks []Block
		if err := json.Unmarshal(data, &blocks); err != nil {
			return err
		}
		*b = Body{Blocks: blocks}
		return nil
	default:
		return errors.New("content must be a string or an array of blocks")
	}
}

// PlainText flattens the body into searchable text
func (b Body) PlainText() string {
	if !b.IsBlocks() {
		return b.Text
	}
	parts := make([]string, 0, len(b.Blocks))
	for _, block := range b.Blocks {
		switch block.Type {
		case BlockParagraph:
			parts = append(parts, block.Text)
		case BlockPoints:
			if block.Heading != "" {
				parts = append(parts, block.Heading)
			}
			parts = append(parts, block.Items...)
		case BlockImage:
			if block.Caption != "" {
				parts = append(parts, block.Caption)
			} else if block.Alt != "" {
				parts = append(parts, block.Alt)
			}
		}
	}
	return strings.Join(parts, "\n")
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Render converts the body to HTML. Text and paragraph blocks are
// treated as Markdown; raw HTML inside them is dropped.
func (b Body) Render() (template.HTML, error) {
	var buf bytes.Buffer
	if !b.IsBlocks() {
		if err := markdown.Convert([]byte(b.Text), &buf); err != nil {
			return "", fmt.Errorf("failed to render content: %w", err)
		}
		return template.HTML(buf.String()), nil
	}

	for _, block := range b.Blocks {
		switch block.Type {
		case BlockParagraph:
			if err := markdown.Convert([]byte(block.Text), &buf); err != nil {
				return "", fmt.Errorf("failed to render paragraph: %w", err)
			}
		case BlockPoints:
			renderPoints(&buf, block)
		case BlockImage:
			renderImage(&buf, block)
		}
	}
	return template.HTML(buf.String()), nil
}

func renderPoints(buf *bytes.Buffer, block Block) {
	if block.Heading != "" {
		buf.WriteString("<h3>" + html.EscapeString(block.Heading) + "</h3>\n")
	}
	tag := "ul"
	if block.Format == FormatNumbered {
		tag = "ol"
	}
	buf.WriteString("<" + tag + ">\n")
	for _, item := range block.Items {
		buf.WriteString("<li>" + html.EscapeString(item) + "</li>\n")
	}
	buf.WriteString("</" + tag + ">\n")
}

func renderImage(buf *bytes.Buffer, block Block) {
	buf.WriteString("<figure>")
	buf.WriteString(`<img src="` + html.EscapeString(block.Src) + `" alt="` + html.EscapeString(block.Alt) + `"`)
	if block.Width > 0 {
		buf.WriteString(` width="` + strconv.Itoa(block.Width) + `"`)
	}
	if block.Height > 0 {
		buf.WriteString(` height="` + strconv.Itoa(block.Height) + `"`)
	}
	buf.WriteString(">")
	if block.Caption != "" {
		buf.WriteString("<figcaption>" + html.EscapeString(block.Caption) + "</figcaption>")
	}
	buf.WriteString("</figure>\n")
}
