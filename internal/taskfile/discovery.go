package taskfile

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultFileNames lists the definition file names searched when none are configured.
var DefaultFileNames = []string{"Taskrfile", "taskrfile", ".taskrfile"}

// Locate searches startDirectory and then each parent directory for the first
// regular file named by candidateNames. It returns ErrDefinitionNotFound when
// the filesystem root is reached without a match.
func Locate(startDirectory string, candidateNames []string) (string, error) {
	names := sanitizeCandidateNames(candidateNames)
	if len(names) == 0 {
		names = DefaultFileNames
	}

	directory, absoluteError := filepath.Abs(startDirectory)
	if absoluteError != nil {
		return "", absoluteError
	}

	for {
		for _, candidateName := range names {
			candidatePath := filepath.Join(directory, candidateName)
			fileInfo, statError := os.Stat(candidatePath)
			if statError == nil && fileInfo.Mode().IsRegular() {
				return candidatePath, nil
			}
		}

		parentDirectory := filepath.Dir(directory)
		if parentDirectory == directory {
			return "", ErrDefinitionNotFound
		}
		directory = parentDirectory
	}
}

func sanitizeCandidateNames(candidateNames []string) []string {
	sanitized := make([]string, 0, len(candidateNames))
	for _, candidateName := range candidateNames {
		trimmed := strings.TrimSpace(candidateName)
		if len(trimmed) == 0 {
			continue
		}
		sanitized = append(sanitized, trimmed)
	}
	return sanitized
}
