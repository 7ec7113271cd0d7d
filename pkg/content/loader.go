package content

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadStory reads and validates a single story file. JSON and YAML are both
// accepted; the extension decides the decoder.
func LoadStory(path string) (*Story, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read story file %s: %w", path, err)
	}

	var story Story
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &story); err != nil {
			return nil, fmt.Errorf("failed to unmarshal story %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &story); err != nil {
			return nil, fmt.Errorf("failed to unmarshal story %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported story file extension: %s", path)
	}

	if err := story.Validate(); err != nil {
		return nil, err
	}
	return &story, nil
}

// LoadIndex loads a story file and builds its content index.
func LoadIndex(path string) (*Index, error) {
	story, err := LoadStory(path)
	if err != nil {
		return nil, err
	}
	return NewIndex(story), nil
}

// ListStories returns story files (by title) found under dir, keyed by
// title with the filename as value. Unreadable or invalid files are skipped.
func ListStories(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read stories directory: %w", err)
	}

	stories := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".json", ".yaml", ".yml":
		default:
			continue
		}
		story, err := LoadStory(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}
		stories[story.Title] = entry.Name()
	}
	return stories, nil
}
