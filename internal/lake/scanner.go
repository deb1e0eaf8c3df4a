package lake

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DefaultMarkerFile is the file Lotus writes once a run has produced force output.
const DefaultMarkerFile = "fort.9"

// SimulationDir is a lake entry that contains the marker file.
type SimulationDir struct {
	Name     string
	Path     string
	DataFile string
}

// ListSimulationDirectories returns the names of the immediate subdirectories
// of rootPath that contain markerFilename. Symlinks to directories count as
// run directories. Entries starting with a dot are ignored, as are plain
// files and broken links sitting next to the run directories.
func ListSimulationDirectories(rootPath, markerFilename string) ([]string, error) {
	if markerFilename == "" {
		markerFilename = DefaultMarkerFile
	}

	entries, err := os.ReadDir(rootPath)
	if err != nil {
		return nil, NewFilesystemError(fmt.Sprintf("failed to read lake directory %s", rootPath), err).
			WithContext("path", rootPath)
	}

	var dirs []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		simPath := filepath.Join(rootPath, name)
		if entry.Type()&fs.ModeSymlink != 0 {
			// follow links to run directories kept elsewhere
			info, err := os.Stat(simPath)
			if err != nil || !info.IsDir() {
				continue
			}
		} else if !entry.IsDir() {
			continue
		}

		children, err := os.ReadDir(simPath)
		if err != nil {
			return nil, NewFilesystemError(fmt.Sprintf("failed to read simulation directory %s", simPath), err).
				WithContext("path", simPath)
		}
		for _, child := range children {
			if child.Name() == markerFilename {
				dirs = append(dirs, name)
				break
			}
		}
	}

	return dirs, nil
}

// Scanner discovers simulation directories under a fixed root.
type Scanner struct {
	rootPath   string
	markerFile string
}

// NewScanner creates a scanner for rootPath; an empty marker selects DefaultMarkerFile.
func NewScanner(rootPath, markerFile string) *Scanner {
	if markerFile == "" {
		markerFile = DefaultMarkerFile
	}
	return &Scanner{rootPath: rootPath, markerFile: markerFile}
}

// Root returns the lake directory.
func (s *Scanner) Root() string {
	return s.rootPath
}

// MarkerFile returns the file name used to recognise a simulation run.
func (s *Scanner) MarkerFile() string {
	return s.markerFile
}

// Scan lists the simulation directories with their resolved paths.
func (s *Scanner) Scan() ([]SimulationDir, error) {
	names, err := ListSimulationDirectories(s.rootPath, s.markerFile)
	if err != nil {
		return nil, err
	}

	sims := make([]SimulationDir, 0, len(names))
	for _, name := range names {
		simPath := filepath.Join(s.rootPath, name)
		sims = append(sims, SimulationDir{
			Name:     name,
			Path:     simPath,
			DataFile: filepath.Join(simPath, s.markerFile),
		})
	}
	return sims, nil
}
