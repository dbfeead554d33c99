// cmd/tools/corpus-registry/main.go
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"review-pipeline/internal/common/config"
	"review-pipeline/internal/common/database"
	"review-pipeline/internal/models"
	"review-pipeline/pkg/registry"
)

var registryPath string

func main() {
	addCmd := flag.NewFlagSet("add", flag.ExitOnError)
	updateCmd := flag.NewFlagSet("update", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	seedCmd := flag.NewFlagSet("seed", flag.ExitOnError)

	// Add command flags
	idAdd := addCmd.String("id", "", "Entry ID (e.g., circuithub)")
	name := addCmd.String("name", "", "Company name (e.g., CircuitHub)")
	oneLiner := addCmd.String("oneLiner", "", "One-line pitch")
	description := addCmd.String("description", "", "Description")
	industry := addCmd.String("industry", "", "Industry (e.g., industrial)")
	tags := addCmd.String("tags", "", "Comma-separated tags")
	source := addCmd.String("source", "manual", "Where the entry came from")

	// Update command flags
	idUpdate := updateCmd.String("id", "", "Entry ID to update")
	field := updateCmd.String("field", "", "Field to update (name, oneLiner, description, industry, subindustry, source)")
	value := updateCmd.String("value", "", "New value for the field")

	// Validate command flags
	validateCmd.StringVar(&registryPath, "path", "configs/corpus-registry.json", "Path to registry file")

	// Seed command flags
	seedPath := seedCmd.String("path", "configs/corpus-registry.json", "Path to registry file")
	seedIndex := seedCmd.String("index", "", "Target index (defaults to database.elasticsearch.corpus_index)")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "add":
		addCmd.Parse(os.Args[2:])
		if *idAdd == "" || *name == "" || *oneLiner == "" || *description == "" {
			fmt.Println("Error: id, name, oneLiner, and description are required for add.")
			addCmd.Usage()
			os.Exit(1)
		}
		entry := registry.Entry{
			ID:          *idAdd,
			Name:        *name,
			OneLiner:    *oneLiner,
			Description: *description,
			Industry:    *industry,
			Tags:        splitTags(*tags),
			Source:      *source,
			AddedAt:     time.Now().Format(time.RFC3339),
		}
		err := addEntry(&entry)
		if err != nil {
			fmt.Printf("Error adding entry: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Added entry: %s\n", *idAdd)

	case "update":
		updateCmd.Parse(os.Args[2:])
		if *idUpdate == "" || *field == "" || *value == "" {
			fmt.Println("Error: id, field, and value are required for update.")
			updateCmd.Usage()
			os.Exit(1)
		}
		err := updateEntry(*idUpdate, *field, *value)
		if err != nil {
			fmt.Printf("Error updating entry: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Updated entry %s, field %s to %s\n", *idUpdate, *field, *value)

	case "validate":
		validateCmd.Parse(os.Args[2:])
		err := validateRegistry()
		if err != nil {
			fmt.Printf("Registry validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Registry validation passed.")

	case "seed":
		seedCmd.Parse(os.Args[2:])
		err := seedCorpus(*seedPath, *seedIndex)
		if err != nil {
			fmt.Printf("Corpus seeding failed: %v\n", err)
			os.Exit(1)
		}

	case "help":
		fallthrough
	default:
		help()
	}
}

func splitTags(raw string) []string {
	if raw == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	return tags
}

func addEntry(entry *registry.Entry) error {
	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		// If file doesn't exist, create new registry
		if os.IsNotExist(err) {
			reg = &registry.CorpusRegistry{
				Version:     "1.0.0",
				LastUpdated: time.Now().Format(time.RFC3339),
				Entries:     []registry.Entry{},
			}
		} else {
			return fmt.Errorf("failed to load registry: %w", err)
		}
	}

	// Check if entry already exists
	for _, existing := range reg.Entries {
		if existing.ID == entry.ID {
			return fmt.Errorf("entry with ID %s already exists", entry.ID)
		}
	}

	// Add new entry
	reg.Entries = append(reg.Entries, *entry)
	reg.LastUpdated = time.Now().Format(time.RFC3339)

	// Save registry
	return saveRegistry(reg, registryPath)
}

func updateEntry(id, field, value string) error {
	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	found := false
	for i := range reg.Entries {
		if reg.Entries[i].ID == id {
			found = true
			switch field {
			case "name":
				reg.Entries[i].Name = value
			case "oneLiner":
				reg.Entries[i].OneLiner = value
			case "description":
				reg.Entries[i].Description = value
			case "industry":
				reg.Entries[i].Industry = value
			case "subindustry":
				reg.Entries[i].Subindustry = value
			case "source":
				reg.Entries[i].Source = value
			default:
				return fmt.Errorf("unknown field: %s", field)
			}
			break
		}
	}

	if !found {
		return fmt.Errorf("entry with ID %s not found", id)
	}

	reg.LastUpdated = time.Now().Format(time.RFC3339)
	return saveRegistry(reg, registryPath)
}

func validateRegistry() error {
	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	if len(reg.Entries) == 0 {
		return fmt.Errorf("registry contains no entries")
	}

	ids := make(map[string]bool)
	names := make(map[string]bool)
	for _, entry := range reg.Entries {
		if ids[entry.ID] {
			return fmt.Errorf("duplicate entry ID: %s", entry.ID)
		}
		ids[entry.ID] = true

		if entry.ID == "" {
			return fmt.Errorf("entry missing required field: ID")
		}
		if entry.Name == "" {
			return fmt.Errorf("entry %s missing required field: Name", entry.ID)
		}
		if names[entry.Name] {
			return fmt.Errorf("duplicate entry name: %s", entry.Name)
		}
		names[entry.Name] = true
		if entry.OneLiner == "" {
			return fmt.Errorf("entry %s missing required field: OneLiner", entry.ID)
		}
		if entry.Description == "" {
			return fmt.Errorf("entry %s missing required field: Description", entry.ID)
		}
	}

	fmt.Printf("Registry validation passed. Found %d entries.\n", len(reg.Entries))
	return nil
}

// seedCorpus pushes every registry entry into the comparison-corpus index.
func seedCorpus(path, index string) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	if len(reg.Entries) == 0 {
		return fmt.Errorf("registry contains no entries")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if index == "" {
		index = cfg.Database.Elasticsearch.CorpusIndex
	}

	es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	if err != nil {
		return fmt.Errorf("elasticsearch client failed: %w", err)
	}
	if err := es.Ping(); err != nil {
		return fmt.Errorf("elasticsearch ping failed: %w", err)
	}

	seeded := 0
	for _, entry := range reg.Entries {
		doc := models.CorpusEntry{
			Name:        entry.Name,
			FormerNames: entry.FormerNames,
			OneLiner:    entry.OneLiner,
			Description: entry.Description,
			Tags:        entry.Tags,
			Industry:    entry.Industry,
			Subindustry: entry.Subindustry,
		}
		body, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("failed to marshal entry %s: %w", entry.ID, err)
		}

		res, err := es.Client.Index(index, bytes.NewReader(body), es.Client.Index.WithDocumentID(entry.ID))
		if err != nil {
			return fmt.Errorf("failed to index entry %s: %w", entry.ID, err)
		}
		if res.IsError() {
			res.Body.Close()
			return fmt.Errorf("indexing entry %s returned %s", entry.ID, res.Status())
		}
		res.Body.Close()
		seeded++
	}

	fmt.Printf("Seeded %d corpus entries into index %s\n", seeded, index)
	return nil
}

// saveRegistry handles saving the registry to file
func saveRegistry(reg *registry.CorpusRegistry, path string) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	err = os.WriteFile(path, data, 0644)
	if err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}

	return nil
}

func help() {
	fmt.Print(`
Usage: corpus-registry <command> [flags]

Commands:
  add      Add a new entry to the corpus registry
  update   Update an existing entry's field
  validate Validate the registry file
  seed     Push all registry entries into the comparison-corpus index
  help     Show this help message

Examples:
  corpus-registry add -id circuithub -name CircuitHub -oneLiner "On-demand electronics manufacturing" -description "Upload your PCB design and get assembled electronics" -industry industrial -tags hardware,manufacturing
  corpus-registry update -id circuithub -field industry -value electronics
  corpus-registry validate -path configs/corpus-registry.json
  corpus-registry seed -path configs/corpus-registry.json

Use 'corpus-registry <command> -h' for more information about a command.
`)
}
