package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/willbeason/evalboard/pkg/evalerr"
)

// DocumentExt is the extension of stored schema documents.
const DocumentExt = ".json"

// Store keeps schema documents in a directory, one per table, named after the
// table's stem. Documents read from disk are cached for the store's TTL.
type Store struct {
	dir   string
	ttl   time.Duration
	cache *ttlcache.Cache[string, []byte]
}

func NewStore(dir string, ttl time.Duration) *Store {
	return &Store{
		dir: dir,
		ttl: ttl,
		cache: ttlcache.New(
			ttlcache.WithTTL[string, []byte](ttl),
		),
	}
}

// Path returns the location of the document for the named table.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name+DocumentExt)
}

// Load returns the schema stored for the named table. It fails with
// evalerr.ErrConfiguration when there is none.
func (s *Store) Load(name string) (*FeatureSchema, error) {
	var data []byte
	if cached := s.cache.Get(name); cached != nil {
		data = cached.Value()
	} else {
		var err error
		data, err = os.ReadFile(s.Path(name))
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: no feature schema for %q in %q", evalerr.ErrConfiguration, name, s.dir)
		} else if err != nil {
			return nil, fmt.Errorf("%w: reading feature schema for %q: %w", evalerr.ErrConfiguration, name, err)
		}
		s.cache.Set(name, data, s.ttl)
	}

	result, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: feature schema for %q: %w", evalerr.ErrConfiguration, name, err)
	}
	return result, nil
}

// Save writes the schema for the named table, replacing any previous one.
func (s *Store) Save(name string, schema *FeatureSchema) error {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding feature schema for %q: %w", name, err)
	}

	err = os.MkdirAll(s.dir, os.ModePerm)
	if err != nil {
		return fmt.Errorf("creating schema directory: %w", err)
	}

	err = os.WriteFile(s.Path(name), data, 0o644)
	if err != nil {
		return fmt.Errorf("writing feature schema for %q: %w", name, err)
	}
	s.cache.Set(name, data, s.ttl)
	return nil
}

// LoadFile reads a schema document from an explicit path.
func LoadFile(path string) (*FeatureSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading feature schema %q: %w", evalerr.ErrConfiguration, path, err)
	}

	result, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: feature schema %q: %w", evalerr.ErrConfiguration, path, err)
	}
	return result, nil
}

func decode(data []byte) (*FeatureSchema, error) {
	result := &FeatureSchema{}
	err := json.Unmarshal(data, result)
	if err != nil {
		return nil, err
	}
	return result, nil
}
