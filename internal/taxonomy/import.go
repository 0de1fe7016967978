package taxonomy

import (
	"context"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"smartcents/internal/core"
	"smartcents/internal/log"
	"smartcents/internal/ports"
)

// SeedCategory is one entry of a taxonomy import document:
//
//	categories:
//	  - name: Food
//	    type: expense
//	    color: "#EF4444"
//	    children:
//	      - name: Groceries
//	      - name: Restaurants
type SeedCategory struct {
	Name     string         `yaml:"name"`
	Type     string         `yaml:"type"`
	Color    string         `yaml:"color"`
	Children []SeedCategory `yaml:"children"`
}

type seedDocument struct {
	Categories []SeedCategory `yaml:"categories"`
}

// Import creates every category in the YAML document, parents first, inside
// one storage transaction. Children without a type or color inherit the
// parent's. Any failing entry rolls the whole import back.
func (s *Service) Import(ctx context.Context, userID string, r io.Reader) ([]core.Category, error) {
	var doc seedDocument
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decode taxonomy: %w", err)
	}

	var created []core.Category
	var walk func(store ports.CategoryStore, entries []SeedCategory, parent *core.Category, path string) error
	walk = func(store ports.CategoryStore, entries []SeedCategory, parent *core.Category, path string) error {
		for _, e := range entries {
			in := NewCategory{Name: e.Name, Color: e.Color}
			entryPath := strings.TrimPrefix(path+"/"+e.Name, "/")

			switch {
			case strings.TrimSpace(e.Type) != "":
				t, err := core.ParseTransactionType(e.Type)
				if err != nil {
					return fmt.Errorf("%s: %w", entryPath, err)
				}
				in.Type = t
			case parent != nil:
				in.Type = parent.Type
			default:
				return fmt.Errorf("%s: %w", entryPath, core.ErrInvalidType)
			}

			if strings.TrimSpace(in.Color) == "" {
				in.Color = DefaultColor
				if parent != nil {
					in.Color = parent.Color
				}
			}
			if parent != nil {
				in.ParentID = parent.ID
			}

			c, err := s.create(ctx, store, userID, in)
			if err != nil {
				return fmt.Errorf("%s: %w", entryPath, err)
			}
			created = append(created, c)

			if err := walk(store, e.Children, &c, entryPath); err != nil {
				return err
			}
		}
		return nil
	}

	err := s.store.Atomically(ctx, func(tx ports.Store) error {
		created = created[:0]
		return walk(tx, doc.Categories, nil, "")
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "Taxonomy imported", log.FieldOperation, log.OpImport, log.FieldCount, len(created))
	return created, nil
}
