package docs

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Block is a fenced code block of a markdown file.
type Block struct {
	Lang    string
	Content string
}

// parseMarkdown returns the document and its fenced code blocks.
func parseMarkdown(t *testing.T, file string) (ast.Node, []byte, []Block) {
	t.Helper()
	content, err := os.ReadFile(file)
	require.NoError(t, err)

	root := goldmark.DefaultParser().Parse(text.NewReader(content))
	var blocks []Block
	err = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		fcb, ok := n.(*ast.FencedCodeBlock)
		if !entering || !ok {
			return ast.WalkContinue, nil
		}
		var b strings.Builder
		for i := 0; i < fcb.Lines().Len(); i++ {
			line := fcb.Lines().At(i)
			b.Write(line.Value(content))
		}
		blocks = append(blocks, Block{Lang: string(fcb.Language(content)), Content: b.String()})
		return ast.WalkContinue, nil
	})
	require.NoError(t, err)
	return root, content, blocks
}

func TestTopics(t *testing.T) {
	// Every topic listed in readme.md can be loaded, and every topic is listed.
	_, content, _ := parseMarkdown(t, "readme.md")
	topicRegex := regexp.MustCompile(`(?m)^\*\s+([^:]+):.*$`)
	var listed []string
	for _, m := range topicRegex.FindAllStringSubmatch(string(content), -1) {
		listed = append(listed, strings.TrimSpace(m[1]))
	}
	require.NotEmpty(t, listed)

	for _, topic := range listed {
		_, err := GetTopic(topic)
		assert.NoError(t, err, "topic %q", topic)
	}

	all, err := GetAllTopics()
	require.NoError(t, err)
	assert.ElementsMatch(t, all, listed)
	assert.NotContains(t, all, "readme")
}

func TestGetTopics(t *testing.T) {
	doc, err := GetTopics("dates", "tna")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(doc, "# Dates"))
	assert.Contains(t, doc, "# Fund yield")

	all, err := GetTopics("*")
	require.NoError(t, err)
	assert.Contains(t, all, "# Settlement documents")
	assert.NotContains(t, all, "# cts\n")

	_, err = GetTopics("nope")
	assert.Error(t, err)
}

func TestDocuments(t *testing.T) {
	files, err := filepath.Glob("*.md")
	require.NoError(t, err)

	for _, file := range files {
		t.Run(file, func(t *testing.T) {
			root, _, blocks := parseMarkdown(t, file)

			h, ok := root.FirstChild().(*ast.Heading)
			if assert.True(t, ok, "a topic starts with its title") {
				assert.Equal(t, 1, h.Level)
			}

			for _, b := range blocks {
				switch b.Lang {
				case "toml":
					var v map[string]any
					assert.NoError(t, toml.Unmarshal([]byte(b.Content), &v))
				case "jsonl":
					for _, line := range strings.Split(strings.TrimSpace(b.Content), "\n") {
						assert.True(t, strings.HasPrefix(line, "{") && strings.HasSuffix(line, "}"), line)
					}
				}
			}
		})
	}
}
