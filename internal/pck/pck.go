// Package pck drives the external godotpcktool binary to pull resource files
// out of a .pck archive and push rebuilt files back in. The archive's own
// structure is godotpcktool's problem; this tool only ever sees one extracted
// resource file at a time.
package pck

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

const toolName = "godotpcktool"

// Tool is a located godotpcktool executable.
type Tool struct {
	path string
}

// Locate finds the godotpcktool binary. An explicit path wins, then the
// directory holding this executable, then $PATH.
func Locate(explicit string) (*Tool, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return nil, fmt.Errorf("godotpcktool at %q: %w", explicit, err)
		}
		return &Tool{path: explicit}, nil
	}
	if exe, err := os.Executable(); err == nil {
		local := filepath.Join(filepath.Dir(exe), toolName)
		if _, err := os.Stat(local); err == nil {
			return &Tool{path: local}, nil
		}
	}
	if found, err := exec.LookPath(toolName); err == nil {
		return &Tool{path: found}, nil
	}
	return nil, fmt.Errorf("%s not found; download it from https://github.com/hhyyrylainen/GodotPckTool/releases and place it next to this tool or on PATH", toolName)
}

// Extract pulls files matching includeRegex out of the archive into outDir.
func (t *Tool) Extract(ctx context.Context, pckPath, includeRegex, outDir string) error {
	args := []string{pckPath, "--action", "extract"}
	if includeRegex != "" {
		args = append(args, "--include-regex-filter", includeRegex)
	}
	if outDir != "" {
		args = append(args, "--output", outDir)
	}
	return t.run(ctx, args...)
}

// Add packs the given files (paths relative to the working directory) back
// into the archive at the same logical paths.
func (t *Tool) Add(ctx context.Context, pckPath string, files ...string) error {
	args := append([]string{pckPath, "--action", "add"}, files...)
	return t.run(ctx, args...)
}

func (t *Tool) run(ctx context.Context, args ...string) error {
	log.Debug().Str("tool", t.path).Strs("args", args).Msg("Running godotpcktool")
	cmd := exec.CommandContext(ctx, t.path, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s %s: %w: %s", toolName, strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return nil
}

// FindExtracted locates a just-extracted file by name somewhere under root.
// godotpcktool reproduces the archive's directory layout, so the file rarely
// lands at the top level.
func FindExtracted(root, name string) (string, error) {
	var found string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() && d.Name() == name {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("search %s: %w", root, err)
	}
	if found == "" {
		return "", fmt.Errorf("%q not found under %s after extraction", name, root)
	}
	return found, nil
}
