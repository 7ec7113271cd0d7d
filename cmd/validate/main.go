package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/inkwell-games/novel-engine/pkg/content"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <story.json|story.yaml>\n", os.Args[0])
		os.Exit(1)
	}

	filename := os.Args[1]
	validator := &StoryValidator{}

	if err := validator.validateFile(filename); err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Story file is valid!")
}

type StoryValidator struct {
	errors []string
}

func (v *StoryValidator) validateFile(filename string) error {
	fmt.Printf("Validating %s...\n", filename)

	baseName := filepath.Base(filename)
	ext := filepath.Ext(baseName)
	switch ext {
	case ".json", ".yaml", ".yml":
	default:
		return fmt.Errorf("story file must have a .json, .yaml or .yml extension: %s", baseName)
	}

	nameWithoutExt := strings.TrimSuffix(baseName, ext)
	if !isValidStoryFilename(nameWithoutExt) {
		return fmt.Errorf("story filename '%s' must be lowercase snake_case (e.g., my_story.json, not my-story.json or MyStory.json)", baseName)
	}

	v.errors = nil

	// LoadStory runs referential validation: every phase, scene, script,
	// node, choice target and effect target must resolve.
	story, err := content.LoadStory(filename)
	if err != nil {
		return err
	}

	v.validateStory(story)

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(v.errors, "\n"))
	}

	return nil
}

// validateStory applies naming conventions on top of the structural checks
// the loader already enforced.
func (v *StoryValidator) validateStory(s *content.Story) {
	for _, phase := range s.Phases {
		v.validateIDFormat("phase", string(phase))
	}

	for _, scene := range s.Scenes {
		v.validateIDFormat("scene ID", scene.ID)
		for _, h := range scene.Hotspots {
			v.validateIDFormat("hotspot ID", h.ID)
		}
	}

	for _, script := range s.Scripts {
		v.validateIDFormat("script ID", script.ID)
		for _, node := range script.Nodes {
			v.validateIDFormat("node ID", node.ID)
			v.validateSpeaker(node.Speaker, script.ID, node.ID)
			for _, choice := range node.Choices {
				v.validateIDFormat("choice ID", choice.ID)
				v.validateCondition(choice.Condition, script.ID, node.ID)
			}
		}
	}
}

func (v *StoryValidator) validateSpeaker(speaker, scriptID, nodeID string) {
	if speaker == "" || speaker == content.SpeakerNarrator || speaker == content.SpeakerPlayer {
		return
	}
	v.validateIDFormat(fmt.Sprintf("speaker in %s/%s", scriptID, nodeID), speaker)
}

// validateCondition checks flag names inside condition expressions. The
// evaluator tolerates anything, but sloppy names usually mean typos.
func (v *StoryValidator) validateCondition(expr, scriptID, nodeID string) {
	for _, clause := range strings.Split(expr, "&&") {
		clause = strings.TrimSpace(clause)
		clause = strings.TrimPrefix(clause, "!")
		if key, _, found := strings.Cut(clause, "==="); found {
			clause = strings.TrimSpace(key)
		}
		if clause == "" {
			continue
		}
		if !isValidVariableName(clause) {
			v.addError(fmt.Sprintf("condition in %s/%s has invalid flag name '%s' - should be lowercase snake_case", scriptID, nodeID, clause))
		}
	}
}

func (v *StoryValidator) validateIDFormat(fieldName, id string) {
	if id == "" {
		return
	}

	if !isValidID(id) {
		v.addError(fmt.Sprintf("%s '%s' should be lowercase snake_case", fieldName, id))
	}
}

func (v *StoryValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}

var (
	validIDRegex       = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)
	validVarRegex      = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)
	validFilenameRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)
)

func isValidID(id string) bool {
	return validIDRegex.MatchString(id)
}

func isValidVariableName(name string) bool {
	return validVarRegex.MatchString(name)
}

func isValidStoryFilename(name string) bool {
	// Allow 'x.' prefix for experimental stories
	name = strings.TrimPrefix(name, "x.")
	return validFilenameRegex.MatchString(name)
}
