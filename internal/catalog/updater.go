package catalog

import (
	"fmt"
	"os"

	"codeberg.org/snonux/cardprep/internal/archive"
)

// Apply adds words to a group of the catalog at path and writes it back.
// It returns the words that were actually appended; words already present
// are skipped, so applying the same words twice changes nothing.
func Apply(path, group string, words []string, shape Shape) ([]string, error) {
	return (&Updater{}).Apply(path, group, words, shape)
}

// Updater applies words to catalog files, optionally keeping a backup of
// every file it rewrites
type Updater struct {
	Backup bool
}

// Apply is the configurable form of the package-level Apply
func (u *Updater) Apply(path, group string, words []string, shape Shape) ([]string, error) {
	doc, err := Load(path)
	if err != nil {
		return nil, err
	}

	_, existed := doc.Group(group)
	added, err := doc.Add(group, words, shape)
	if err != nil {
		return nil, err
	}

	if len(added) == 0 && existed {
		fmt.Printf("Catalog %s/%s already up to date\n", path, group)
		return nil, nil
	}

	if u.Backup {
		if _, err := archive.BackupFile(path); err != nil {
			return nil, err
		}
	}

	if err := doc.Save(path); err != nil {
		return nil, err
	}

	fmt.Printf("Added %d word(s) to %s in %s\n", len(added), group, path)
	return added, nil
}

// ApplyTarget resolves target's file under root and applies words to group
func (u *Updater) ApplyTarget(root string, target Target, group string, words []string) ([]string, error) {
	if group == "" {
		return nil, fmt.Errorf("no group selected for %s", target.Name)
	}
	if !target.HasGroup(group) {
		fmt.Fprintf(os.Stderr, "Warning: group %q is not listed for %s\n", group, target.Name)
	}
	return u.Apply(target.Path(root), group, words, target.Shape)
}
