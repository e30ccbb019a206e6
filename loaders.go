package i18n

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// defaultKey is the reserved mapping key carrying an entry's default text.
const defaultKey = "default"

// Loader retrieves locale data used to seed the engine's store.
type Loader interface {
	Load() ([]LocaleData, error)
}

// LoaderFunc adapts a bare function to Loader.
type LoaderFunc func() ([]LocaleData, error)

func (fn LoaderFunc) Load() ([]LocaleData, error) {
	return fn()
}

// FileLoader reads locale files from disk, decoding each by extension.
// Files are locale-keyed at the top level; several files may contribute to
// the same locale, later paths overriding earlier ones.
type FileLoader struct {
	paths   []string
	workers int
}

var _ Loader = (*FileLoader)(nil)

func NewFileLoader(paths ...string) *FileLoader {
	return &FileLoader{
		paths:   append([]string(nil), paths...),
		workers: DefaultWorkers,
	}
}

// WithWorkers bounds the number of files decoded concurrently.
func (l *FileLoader) WithWorkers(n int) *FileLoader {
	if l == nil || n <= 0 {
		return l
	}
	l.workers = n
	return l
}

func (l *FileLoader) Load() ([]LocaleData, error) {
	return l.LoadContext(context.Background())
}

// LoadContext decodes every configured path on a bounded worker pool. Each
// file parses into standalone trees with no shared state; results flatten
// back in path order so merge order stays deterministic.
func (l *FileLoader) LoadContext(ctx context.Context) ([]LocaleData, error) {
	if l == nil || len(l.paths) == 0 {
		return nil, errors.New("i18n: no loader paths configured")
	}

	results := make([][]LocaleData, len(l.paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)
	for i, path := range l.paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("i18n: read %s: %w", path, err)
			}
			decoded, err := decodeLocaleBytes(path, data)
			if err != nil {
				return fmt.Errorf("i18n: decode %s: %w", path, err)
			}
			results[i] = decoded
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var flattened []LocaleData
	for _, decoded := range results {
		flattened = append(flattened, decoded...)
	}
	return flattened, nil
}

// decodeLocaleBytes dispatches on the file extension. Every decoder keeps
// mapping pairs in document order; branch order is load-bearing.
func decodeLocaleBytes(name string, data []byte) ([]LocaleData, error) {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".json":
		return decodeLocalesJSON(data)
	case ".yaml", ".yml":
		return decodeLocalesYAML(data)
	case ".toml":
		return decodeLocalesTOML(data)
	default:
		return nil, fmt.Errorf("unsupported extension %q", ext)
	}
}

// addMappingPair files child under key, routing the reserved default key
// into the mapping's default text.
func addMappingPair(mapping *MappingEntry, key string, child Entry) error {
	if key == defaultKey {
		literal, ok := child.(*LiteralEntry)
		if !ok {
			return errors.New("default must be literal text")
		}
		mapping.DefaultText = literal.Text
		mapping.HasDefault = true
		return nil
	}
	mapping.Set(key, child)
	return nil
}

// localeDataFromRoot splits a top-level mapping of locale codes into
// per-locale trees, keeping document order.
func localeDataFromRoot(root *MappingEntry) ([]LocaleData, error) {
	trees := make([]LocaleData, 0, len(root.Pairs))
	for _, pair := range root.Pairs {
		mapping, ok := pair.Entry.(*MappingEntry)
		if !ok {
			return nil, fmt.Errorf("locale %s: value must be a table of entries", pair.Key)
		}
		trees = append(trees, LocaleData{Locale: pair.Key, Tree: mapping})
	}
	return trees, nil
}

func decodeLocalesYAML(data []byte) ([]LocaleData, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, errors.New("empty document")
	}

	walk := &yamlWalk{active: make(map[*yaml.Node]bool)}
	entry, err := walk.entry(doc.Content[0])
	if err != nil {
		return nil, err
	}
	root, ok := entry.(*MappingEntry)
	if !ok {
		return nil, errors.New("top level must map locale codes to tables")
	}
	return localeDataFromRoot(root)
}

// yamlAliasLimit bounds alias expansions per document. Decoding into a
// Node leaves aliases unexpanded, so the walk has to bound them itself.
const yamlAliasLimit = 10000

// yamlWalk carries alias state through one document walk. Mappings on the
// active path catch anchors whose value contains itself; the expansion
// count catches documents that amplify through repeated alias reuse.
type yamlWalk struct {
	active  map[*yaml.Node]bool
	aliases int
}

// entry converts one node, walking mappings through the yaml.v3 Node API
// so pair order survives decoding. Null values come back as a nil Entry
// and their pair is dropped: a null authors a key that has no translation
// yet, and resolution treats it as missing.
func (w *yamlWalk) entry(node *yaml.Node) (Entry, error) {
	switch node.Kind {
	case yaml.MappingNode:
		w.active[node] = true
		defer delete(w.active, node)

		mapping := &MappingEntry{}
		for i := 0; i+1 < len(node.Content); i += 2 {
			keyNode, valueNode := node.Content[i], node.Content[i+1]
			if keyNode.Value == "" {
				return nil, fmt.Errorf("empty key at line %d", keyNode.Line)
			}
			child, err := w.entry(valueNode)
			if err != nil {
				return nil, err
			}
			if child == nil {
				continue
			}
			if err := addMappingPair(mapping, keyNode.Value, child); err != nil {
				return nil, fmt.Errorf("line %d: %w", valueNode.Line, err)
			}
		}
		return mapping, nil
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			return nil, nil
		}
		return &LiteralEntry{Text: node.Value}, nil
	case yaml.AliasNode:
		if node.Alias == nil {
			return nil, fmt.Errorf("unresolved alias at line %d", node.Line)
		}
		if w.active[node.Alias] {
			return nil, fmt.Errorf("anchor %q value contains itself at line %d", node.Value, node.Line)
		}
		w.aliases++
		if w.aliases > yamlAliasLimit {
			return nil, errors.New("document contains excessive aliasing")
		}
		return w.entry(node.Alias)
	default:
		return nil, fmt.Errorf("unsupported value at line %d, entries are text or maps", node.Line)
	}
}

// decodeLocalesJSON walks the document with the stream decoder; plain
// unmarshaling into maps would lose object key order.
func decodeLocalesJSON(data []byte) ([]LocaleData, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	entry, err := jsonEntry(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing data after top-level value")
	}
	root, ok := entry.(*MappingEntry)
	if !ok {
		return nil, errors.New("top level must be an object of locale codes")
	}
	return localeDataFromRoot(root)
}

func jsonEntry(dec *json.Decoder) (Entry, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		if t != '{' {
			return nil, errors.New("arrays are not supported in locale data")
		}
		mapping := &MappingEntry{}
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := keyTok.(string)
			if !ok || key == "" {
				return nil, errors.New("empty object key")
			}
			child, err := jsonEntry(dec)
			if err != nil {
				return nil, err
			}
			if child == nil {
				continue
			}
			if err := addMappingPair(mapping, key, child); err != nil {
				return nil, fmt.Errorf("key %q: %w", key, err)
			}
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return mapping, nil
	case string:
		return &LiteralEntry{Text: t}, nil
	case json.Number:
		return &LiteralEntry{Text: t.String()}, nil
	case bool:
		return &LiteralEntry{Text: strconv.FormatBool(t)}, nil
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported value %v", tok)
	}
}

// decodeLocalesTOML recovers document order from the decoder's metadata;
// the decoded map alone would not carry it.
func decodeLocalesTOML(data []byte) ([]LocaleData, error) {
	var raw map[string]any
	meta, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, err
	}

	entry, err := entryFromTOML(raw, "", tomlChildOrder(meta.Keys()))
	if err != nil {
		return nil, err
	}
	root, ok := entry.(*MappingEntry)
	if !ok {
		return nil, errors.New("top level must map locale codes to tables")
	}
	return localeDataFromRoot(root)
}

const tomlPathSep = "\x00"

// tomlChildOrder indexes, for every table path, its child keys in first
// appearance order.
func tomlChildOrder(keys []toml.Key) map[string][]string {
	order := make(map[string][]string)
	seen := make(map[string]struct{})
	for _, key := range keys {
		for depth := range key {
			parent := strings.Join(key[:depth], tomlPathSep)
			child := key[depth]
			id := parent + tomlPathSep + tomlPathSep + child
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			order[parent] = append(order[parent], child)
		}
	}
	return order
}

func entryFromTOML(value any, path string, order map[string][]string) (Entry, error) {
	switch v := value.(type) {
	case map[string]any:
		mapping := &MappingEntry{}
		names := order[path]
		handled := make(map[string]struct{}, len(names))
		for _, name := range names {
			child, ok := v[name]
			if !ok {
				continue
			}
			handled[name] = struct{}{}
			if err := tomlPair(mapping, name, child, path, order); err != nil {
				return nil, err
			}
		}
		// Anything the metadata did not cover still loads, just without a
		// document position.
		var missed []string
		for name := range v {
			if _, ok := handled[name]; !ok {
				missed = append(missed, name)
			}
		}
		sort.Strings(missed)
		for _, name := range missed {
			if err := tomlPair(mapping, name, v[name], path, order); err != nil {
				return nil, err
			}
		}
		return mapping, nil
	case string:
		return &LiteralEntry{Text: v}, nil
	case bool:
		return &LiteralEntry{Text: strconv.FormatBool(v)}, nil
	case int64:
		return &LiteralEntry{Text: strconv.FormatInt(v, 10)}, nil
	case float64:
		return &LiteralEntry{Text: strconv.FormatFloat(v, 'g', -1, 64)}, nil
	default:
		return nil, fmt.Errorf("unsupported value type %T at %s", v, strings.ReplaceAll(path, tomlPathSep, "."))
	}
}

func tomlPair(mapping *MappingEntry, name string, value any, path string, order map[string][]string) error {
	childPath := name
	if path != "" {
		childPath = path + tomlPathSep + name
	}
	child, err := entryFromTOML(value, childPath, order)
	if err != nil {
		return err
	}
	if err := addMappingPair(mapping, name, child); err != nil {
		return fmt.Errorf("key %q: %w", name, err)
	}
	return nil
}

// entryFromMap converts programmatic data. Keys sort alphabetically; Go
// maps carry no document order. Nil values drop their key, matching null
// handling in documents.
func entryFromMap(value any) (Entry, error) {
	switch v := value.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		mapping := &MappingEntry{}
		for _, key := range keys {
			child, err := entryFromMap(v[key])
			if err != nil {
				return nil, err
			}
			if child == nil {
				continue
			}
			if err := addMappingPair(mapping, key, child); err != nil {
				return nil, fmt.Errorf("key %q: %w", key, err)
			}
		}
		return mapping, nil
	case string:
		return &LiteralEntry{Text: v}, nil
	case bool:
		return &LiteralEntry{Text: strconv.FormatBool(v)}, nil
	case int:
		return &LiteralEntry{Text: strconv.Itoa(v)}, nil
	case int64:
		return &LiteralEntry{Text: strconv.FormatInt(v, 10)}, nil
	case float64:
		return &LiteralEntry{Text: strconv.FormatFloat(v, 'g', -1, 64)}, nil
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}
