package scene

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	BuiltinGroup = "Built-in Levels"
	FileGroup    = "Level Files"
)

// LevelInfo represents a discovered level with its metadata
type LevelInfo struct {
	ID          string `json:"id"`          // Unique identifier
	Name        string `json:"name"`        // Display name
	Description string `json:"description"` // Optional description
	Group       string `json:"group"`       // Grouping category
	Type        string `json:"type"`        // "builtin", "file" or "stored"
	FilePath    string `json:"filePath,omitempty"`
}

// LevelGroup represents a group of related levels
type LevelGroup struct {
	Name   string      `json:"name"`
	Levels []LevelInfo `json:"levels"`
}

// LevelsResponse is the complete listing served by /api/levels
type LevelsResponse struct {
	Groups []LevelGroup `json:"groups"`
}

// ListLevels scans dir for *.json level files. A missing directory is
// an empty listing.
func ListLevels(dir string) ([]LevelInfo, error) {
	if dir == "" {
		return []LevelInfo{}, nil
	}
	if _, err := os.Stat(dir); err != nil {
		return []LevelInfo{}, nil
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan level directory: %w", err)
	}

	levels := make([]LevelInfo, 0, len(files))
	for _, filePath := range files {
		info, err := ParseLevelMetadata(filePath)
		if err != nil {
			// Unreadable files are skipped so one bad level does not hide the rest
			continue
		}
		levels = append(levels, info)
	}

	sort.Slice(levels, func(i, j int) bool {
		return levels[i].Name < levels[j].Name
	})
	return levels, nil
}

// ParseLevelMetadata reads the header fields of a level file
func ParseLevelMetadata(filePath string) (LevelInfo, error) {
	filename := filepath.Base(filePath)
	nameWithoutExt := strings.TrimSuffix(filename, filepath.Ext(filename))

	info := LevelInfo{
		ID:       "file:" + nameWithoutExt,
		Name:     titleCase(nameWithoutExt),
		Group:    FileGroup,
		Type:     "file",
		FilePath: filePath,
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return info, fmt.Errorf("read %s: %w", filePath, err)
	}

	var header struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Group       string `json:"group"`
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return info, fmt.Errorf("parse %s: %w", filePath, err)
	}

	if header.Name != "" {
		info.Name = header.Name
	}
	if header.Group != "" {
		info.Group = header.Group
	}
	info.Description = header.Description
	return info, nil
}

// ListAllLevels returns built-in and file levels plus any extra entries,
// grouped by category with the built-in group first
func ListAllLevels(dir string, extra ...LevelInfo) (LevelsResponse, error) {
	var response LevelsResponse

	fileLevels, err := ListLevels(dir)
	if err != nil {
		return response, fmt.Errorf("failed to list level files: %w", err)
	}

	all := append(BuiltinInfos(), fileLevels...)
	all = append(all, extra...)

	groupMap := make(map[string][]LevelInfo)
	for _, level := range all {
		groupMap[level.Group] = append(groupMap[level.Group], level)
	}

	var groupNames []string
	for groupName := range groupMap {
		if groupName != BuiltinGroup {
			groupNames = append(groupNames, groupName)
		}
	}
	sort.Strings(groupNames)

	if builtInGroup, exists := groupMap[BuiltinGroup]; exists {
		response.Groups = append(response.Groups, LevelGroup{Name: BuiltinGroup, Levels: builtInGroup})
	}
	for _, groupName := range groupNames {
		response.Groups = append(response.Groups, LevelGroup{Name: groupName, Levels: groupMap[groupName]})
	}

	return response, nil
}

// titleCase converts a filename-style string to title case
// e.g., "mirror-maze" -> "Mirror Maze"
func titleCase(s string) string {
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	words := strings.Fields(s)
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
		}
	}

	return strings.Join(words, " ")
}
