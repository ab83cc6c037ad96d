package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	uecfgerrors "github.com/SometimesYouNeverKnow/Unreal-Engine-Dev-Configurator/pkg/errors"
)

// DefaultDir is the directory searched for ue_<version> manifests when
// only a version or id is given.
const DefaultDir = "manifests"

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load parses, validates, and fingerprints a manifest file. YAML is the
// native format; JSON manifests parse through the same decoder.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, uecfgerrors.NewManifestError(path, "", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, uecfgerrors.NewManifestError(path, "", err)
	}
	if m.Schema != SchemaVersion {
		return nil, uecfgerrors.NewManifestError(path,
			fmt.Sprintf("unsupported schema version %d (expected %d)", m.Schema, SchemaVersion), nil)
	}
	if m.ID == "" {
		m.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if err := validate.Struct(&m); err != nil {
		return nil, uecfgerrors.NewManifestError(path, "", err)
	}

	fingerprint, err := fingerprintDocument(data)
	if err != nil {
		return nil, uecfgerrors.NewManifestError(path, "", err)
	}
	m.Fingerprint = fingerprint
	m.Path = path
	return &m, nil
}

// fingerprintDocument hashes a canonical rendering of the document so
// formatting and key order do not change the fingerprint.
func fingerprintDocument(data []byte) (string, error) {
	var payload map[string]any
	if err := yaml.Unmarshal(data, &payload); err != nil {
		return "", err
	}
	canonical, err := json.Marshal(canonicalize(payload))
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// canonicalize normalizes YAML decoding artifacts so json.Marshal can
// produce a stable byte stream (map keys sorted, interface keys coerced).
func canonicalize(value any) any {
	switch v := value.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make(map[string]any, len(v))
		for _, k := range keys {
			out[k] = canonicalize(v[k])
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			out[fmt.Sprintf("%v", k)] = canonicalize(val)
		}
		return canonicalize(out)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = canonicalize(item)
		}
		return out
	default:
		return v
	}
}

// Available maps manifest ids to paths found under dir.
func Available(dir string) map[string]string {
	found := map[string]string{}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return found
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "ue_") {
			continue
		}
		ext := filepath.Ext(name)
		if ext != ".yaml" && ext != ".yml" && ext != ".json" {
			continue
		}
		found[strings.TrimSuffix(name, ext)] = filepath.Join(dir, name)
	}
	return found
}
