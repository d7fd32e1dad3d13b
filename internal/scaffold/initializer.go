package scaffold

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dyluth/careersync/internal/config"
)

//go:embed templates/*
var templatesFS embed.FS

const envExampleFile = ".env.example"

// FileInfo represents a file to be created during initialization
type FileInfo struct {
	Path        string
	Content     []byte
	Permissions os.FileMode
}

// Initialize writes careersync.yml and .env.example into dir.
// If force is true, existing files are overwritten.
func Initialize(dir string, force bool) error {
	if force {
		if err := handleForce(dir); err != nil {
			return err
		}
	} else if err := CheckExisting(dir); err != nil {
		return err
	}

	files, err := getTemplateFiles(dir)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if err := writeFiles(files); err != nil {
		return err
	}

	return validateCreatedFiles(dir)
}

// handleForce removes existing files if --force was specified
func handleForce(dir string) error {
	for _, name := range []string{config.DefaultPath, envExampleFile} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			fmt.Printf("⚠️  Removing existing %s...\n", name)
			if err := os.Remove(path); err != nil {
				return fmt.Errorf("failed to remove %s: %w", name, err)
			}
		}
	}
	return nil
}

// getTemplateFiles reads all embedded templates
func getTemplateFiles(dir string) ([]FileInfo, error) {
	templates := []struct {
		name string
		dest string
	}{
		{"templates/careersync.yml.tmpl", config.DefaultPath},
		{"templates/env.example.tmpl", envExampleFile},
	}

	files := make([]FileInfo, 0, len(templates))
	for _, tmpl := range templates {
		content, err := templatesFS.ReadFile(tmpl.name)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s template: %w", tmpl.dest, err)
		}
		files = append(files, FileInfo{
			Path:        filepath.Join(dir, tmpl.dest),
			Content:     content,
			Permissions: 0644,
		})
	}
	return files, nil
}

// writeFiles writes all template files to disk
func writeFiles(files []FileInfo) error {
	for _, file := range files {
		if err := os.WriteFile(file.Path, file.Content, file.Permissions); err != nil {
			return fmt.Errorf("failed to write %s: %w", file.Path, err)
		}
	}
	return nil
}

// validateCreatedFiles checks the written config loads cleanly
func validateCreatedFiles(dir string) error {
	content, err := os.ReadFile(filepath.Join(dir, config.DefaultPath))
	if err != nil {
		return fmt.Errorf("failed to read created %s: %w", config.DefaultPath, err)
	}

	if _, err := config.Parse(content, nil); err != nil {
		return fmt.Errorf("created %s is invalid: %w", config.DefaultPath, err)
	}
	return nil
}

// PrintSuccess prints the success message with created files
func PrintSuccess() {
	fmt.Println("\n✅ Successfully initialized careersync!")
	fmt.Println("\nCreated:")
	fmt.Println("  ✓ careersync.yml")
	fmt.Println("  ✓ .env.example")
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Add '.careersync/' to your .gitignore file")
	fmt.Println("  2. Pick a backend in careersync.yml (file works out of the box)")
	fmt.Println("  3. Run 'careersync show admin' to see the current settings")
}
