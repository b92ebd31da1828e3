package file

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
)

// readRecord loads one JSON record, returning (nil ok) zero value when the
// file does not exist.
func readRecord[T any](root, collection, id string) (*T, error) {
	filePath := filepath.Clean(path.Join(root, collection, id+".json"))

	body, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to read %s %s: %w", collection, id, err)
	}

	var record T
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s %s: %w", collection, id, err)
	}

	return &record, nil
}

// writeRecord persists one JSON record, creating the collection directory on
// first use.
func writeRecord(root, collection, id string, record any) error {
	dir := path.Join(root, collection)

	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create %s directory: %w", collection, err)
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s %s: %w", collection, id, err)
	}

	return os.WriteFile(path.Join(dir, id+".json"), data, 0600)
}

// deleteRecord removes one record; deleting a missing record is a no-op.
func deleteRecord(root, collection, id string) error {
	err := os.Remove(path.Join(root, collection, id+".json"))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s %s: %w", collection, id, err)
	}

	return nil
}

// listRecords loads every record of a collection.
func listRecords[T any](root, collection string) ([]*T, error) {
	dir := os.DirFS(path.Join(root, collection))

	jsonFiles, err := fs.Glob(dir, "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list %s files: %w", collection, err)
	}

	records := make([]*T, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		id := file[:len(file)-len(".json")]

		record, err := readRecord[T](root, collection, id)
		if err != nil {
			return nil, err
		}

		if record != nil {
			records = append(records, record)
		}
	}

	return records, nil
}
