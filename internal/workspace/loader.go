package workspace

import (
	"encoding/xml"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Load opens a solution from an explicit path: a .sln file, a single .csproj,
// or a directory to discover projects in.
func Load(path string, logger *slog.Logger) (*Solution, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", abs, err)
	}
	if info.IsDir() {
		return Discover(abs, logger)
	}

	switch strings.ToLower(filepath.Ext(abs)) {
	case ".sln":
		return loadSolutionFile(abs, logger)
	case ".csproj":
		proj, err := loadProject(abs)
		if err != nil {
			return nil, err
		}
		return &Solution{Path: abs, Projects: []*Project{proj}}, nil
	}
	return nil, fmt.Errorf("unsupported solution file: %s", abs)
}

// Discover locates a solution under dir: the first .sln file wins; otherwise
// every .csproj found; otherwise an implicit project containing all C#
// sources under dir.
func Discover(dir string, logger *slog.Logger) (*Solution, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".sln") {
			return loadSolutionFile(filepath.Join(dir, e.Name()), logger)
		}
	}

	var projects []*Project
	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() && skipDir(d.Name()) {
			return filepath.SkipDir
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".csproj") {
			proj, perr := loadProject(path)
			if perr != nil {
				logger.Warn("skipping project", "path", path, "error", perr)
				return nil
			}
			projects = append(projects, proj)
		}
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}
	if len(projects) > 0 {
		logger.Info("loaded projects from directory", "dir", dir, "projects", len(projects))
		return &Solution{Path: dir, Projects: projects}, nil
	}

	// Last resort: treat the directory itself as one implicit project.
	docs, err := loadSources(dir)
	if err != nil {
		return nil, err
	}
	name := filepath.Base(dir)
	logger.Info("loaded implicit project", "dir", dir, "documents", len(docs))
	return &Solution{
		Path: dir,
		Projects: []*Project{{
			Name:         name,
			AssemblyName: name,
			RootDir:      dir,
			Documents:    docs,
		}},
	}, nil
}

// loadSolutionFile parses the project table of a .sln file and loads every
// referenced .csproj.
func loadSolutionFile(slnPath string, logger *slog.Logger) (*Solution, error) {
	data, err := os.ReadFile(slnPath)
	if err != nil {
		return nil, fmt.Errorf("reading solution %s: %w", slnPath, err)
	}

	slnDir := filepath.Dir(slnPath)
	var projects []*Project
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "Project(") {
			continue
		}
		// Project("{GUID}") = "Name", "rel\path.csproj", "{GUID}"
		eq := strings.IndexByte(line, '=')
		if eq < 0 {
			continue
		}
		parts := strings.Split(line[eq+1:], ",")
		if len(parts) < 2 {
			continue
		}
		rel := strings.Trim(strings.TrimSpace(parts[1]), `"`)
		rel = strings.ReplaceAll(rel, `\`, "/")
		if !strings.EqualFold(filepath.Ext(rel), ".csproj") {
			continue
		}
		projPath := filepath.Join(slnDir, filepath.FromSlash(rel))
		proj, perr := loadProject(projPath)
		if perr != nil {
			logger.Warn("skipping project", "path", projPath, "error", perr)
			continue
		}
		projects = append(projects, proj)
	}

	logger.Info("loaded solution", "path", slnPath, "projects", len(projects))
	return &Solution{Path: slnPath, Projects: projects}, nil
}

// csprojFile is the subset of the MSBuild project XML we care about.
type csprojFile struct {
	PropertyGroups []struct {
		AssemblyName string `xml:"AssemblyName"`
		RootNamespace string `xml:"RootNamespace"`
	} `xml:"PropertyGroup"`
}

func loadProject(projPath string) (*Project, error) {
	data, err := os.ReadFile(projPath)
	if err != nil {
		return nil, fmt.Errorf("reading project %s: %w", projPath, err)
	}

	name := strings.TrimSuffix(filepath.Base(projPath), filepath.Ext(projPath))
	assembly := name
	var parsed csprojFile
	if err := xml.Unmarshal(data, &parsed); err == nil {
		for _, pg := range parsed.PropertyGroups {
			if pg.AssemblyName != "" {
				assembly = pg.AssemblyName
				break
			}
		}
	}

	rootDir := filepath.Dir(projPath)
	docs, err := loadSources(rootDir)
	if err != nil {
		return nil, err
	}

	return &Project{
		Name:         name,
		FilePath:     projPath,
		AssemblyName: assembly,
		RootDir:      rootDir,
		Documents:    docs,
	}, nil
}

func loadSources(dir string) ([]*Document, error) {
	var docs []*Document
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() && skipDir(d.Name()) {
			return filepath.SkipDir
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".cs") {
			return nil
		}
		data, rerr := os.ReadFile(path)
		if rerr != nil {
			return nil
		}
		docs = append(docs, NewDocument(path, string(data)))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

func skipDir(name string) bool {
	switch name {
	case "bin", "obj", "node_modules":
		return true
	}
	return strings.HasPrefix(name, ".")
}
