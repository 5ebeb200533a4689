package article

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
)

// Article represents one news document, optionally carrying a ground-truth
// label from an annotated corpus
type Article struct {
	Source string `json:"source"`
	Title  string `json:"title"`
	Text   string `json:"text"`
	Label  *int   `json:"label,omitempty"` // 1 fabricated, 0 genuine, absent when unknown
}

// Labeled reports whether the article carries a ground-truth label
func (a Article) Labeled() bool {
	return a.Label != nil
}

// LoadFromJSONL loads articles from a JSONL file with proper error handling
func LoadFromJSONL(path string) ([]Article, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}

	var articles []Article
	lines := strings.Split(string(data), "\n")

	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var a Article
		if err := json.Unmarshal([]byte(line), &a); err != nil {
			log.Printf("Warning: skipping malformed JSON at line %d in %s: %v", i+1, path, err)
			continue
		}
		if strings.TrimSpace(a.Text) == "" {
			log.Printf("Warning: skipping article with empty text at line %d in %s", i+1, path)
			continue
		}
		articles = append(articles, a)
	}

	if len(articles) == 0 {
		return nil, fmt.Errorf("no valid articles found in %s", path)
	}

	return articles, nil
}
