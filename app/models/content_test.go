package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBodyJSON(t *testing.T) {
	t.Run("plain text", func(t *testing.T) {
		var body Body
		require.NoError(t, json.Unmarshal([]byte(`"hello"`), &body))
		assert.False(t, body.IsBlocks())
		assert.Equal(t, "hello", body.Text)

		data, err := json.Marshal(body)
		require.NoError(t, err)
		assert.JSONEq(t, `"hello"`, string(data))
	})

	t.Run("blocks", func(t *testing.T) {
		raw := `[
			{"type":"paragraph","text":"Intro"},
			{"type":"points","heading":"Steps","items":["one","two"],"format":"numbered"},
			{"type":"image","src":"https://example.com/a.png","alt":"diagram","width":640}
		]`
		var body Body
		require.NoError(t, json.Unmarshal([]byte(raw), &body))
		require.Len(t, body.Blocks, 3)
		assert.Equal(t, BlockPoints, body.Blocks[1].Type)
		assert.Equal(t, FormatNumbered, body.Blocks[1].Format)
		assert.NoError(t, body.Validate())

		data, err := json.Marshal(body)
		require.NoError(t, err)
		assert.JSONEq(t, raw, string(data))
	})

	t.Run("null", func(t *testing.T) {
		var body Body
		require.NoError(t, json.Unmarshal([]byte(`null`), &body))
		assert.True(t, body.IsEmpty())
	})

	t.Run("object is rejected", func(t *testing.T) {
		var body Body
		assert.Error(t, json.Unmarshal([]byte(`{"text":"x"}`), &body))
	})
}

func TestBlockValidate(t *testing.T) {
	tests := []struct {
		name    string
		block   Block
		wantErr bool
	}{
		{"paragraph", Block{Type: BlockParagraph, Text: "hi"}, false},
		{"empty paragraph", Block{Type: BlockParagraph, Text: "  "}, true},
		{"bulleted points", Block{Type: BlockPoints, Items: []string{"a"}, Format: FormatBulleted}, false},
		{"points without items", Block{Type: BlockPoints, Format: FormatNumbered}, true},
		{"points with bad format", Block{Type: BlockPoints, Items: []string{"a"}, Format: "dashed"}, true},
		{"image url", Block{Type: BlockImage, Src: "https://example.com/x.png"}, false},
		{"image path", Block{Type: BlockImage, Src: "/static/x.png"}, false},
		{"image without src", Block{Type: BlockImage}, true},
		{"image with javascript src", Block{Type: BlockImage, Src: "javascript:alert(1)"}, true},
		{"image with negative width", Block{Type: BlockImage, Src: "/x.png", Width: -1}, true},
		{"unknown type", Block{Type: "video"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.block.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBodyPlainText(t *testing.T) {
	body := BlockBody(
		Block{Type: BlockParagraph, Text: "Intro"},
		Block{Type: BlockPoints, Heading: "List", Items: []string{"a", "b"}, Format: FormatBulleted},
		Block{Type: BlockImage, Src: "/x.png", Alt: "alt text"},
	)
	assert.Equal(t, "Intro\nList\na\nb\nalt text", body.PlainText())
	assert.Equal(t, "plain", TextBody("plain").PlainText())
}

func TestBodyRender(t *testing.T) {
	t.Run("markdown text", func(t *testing.T) {
		out, err := TextBody("# Title\n\nSome *emphasis*").Render()
		require.NoError(t, err)
		assert.Contains(t, string(out), "<h1>Title</h1>")
		assert.Contains(t, string(out), "<em>emphasis</em>")
	})

	t.Run("raw html is not passed through", func(t *testing.T) {
		out, err := TextBody("<script>alert(1)</script>").Render()
		require.NoError(t, err)
		assert.NotContains(t, string(out), "<script>")
	})

	t.Run("blocks", func(t *testing.T) {
		out, err := BlockBody(
			Block{Type: BlockParagraph, Text: "Hello"},
			Block{Type: BlockPoints, Heading: "Steps", Items: []string{"<one>", "two"}, Format: FormatNumbered},
			Block{Type: BlockPoints, Items: []string{"x"}, Format: FormatBulleted},
			Block{Type: BlockImage, Src: "/a.png", Alt: "A", Caption: "Cap", Width: 10, Height: 20},
		).Render()
		require.NoError(t, err)

		html := string(out)
		assert.Contains(t, html, "<p>Hello</p>")
		assert.Contains(t, html, "<h3>Steps</h3>")
		assert.Contains(t, html, "<ol>")
		assert.Contains(t, html, "<li>&lt;one&gt;</li>")
		assert.Contains(t, html, "<ul>")
		assert.Contains(t, html, `<img src="/a.png" alt="A" width="10" height="20">`)
		assert.Contains(t, html, "<figcaption>Cap</figcaption>")
	})
}
