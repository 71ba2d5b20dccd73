package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/flarebyte/coachgrade/internal/reconcile"
)

// RunInfo is the run context recorded alongside a summary.
type RunInfo struct {
	BaseURL    string
	InputPath  string
	OutputPath string
	FullCredit int
	ZeroCredit int
}

// MarshalYAML returns canonical YAML for a run summary. Keys are sorted and
// nothing time-dependent is included, so reruns against an unchanged server
// produce identical bytes.
func MarshalYAML(s reconcile.Summary, info RunInfo) ([]byte, error) {
	records := make([]any, 0, len(s.Results))
	for _, r := range s.Results {
		rec := map[string]any{
			"line":        r.Line,
			"student_num": r.ID,
			"name":        r.Name,
			"status":      string(r.Status),
			"score":       r.Score,
		}
		if r.Status != reconcile.Skipped {
			rec["outcome"] = r.Outcome.String()
			rec["http_status"] = r.StatusCode
		}
		records = append(records, rec)
	}
	doc := map[string]any{
		"base_url":     info.BaseURL,
		"input":        info.InputPath,
		"output":       info.OutputPath,
		"full_credit":  info.FullCredit,
		"zero_credit":  info.ZeroCredit,
		"accessed":     stringsToAny(s.Accessed),
		"not_accessed": stringsToAny(s.NotAccessed),
		"skipped":      stringsToAny(s.Skipped),
		"counts": map[string]any{
			"total":          s.Total,
			"accessed":       len(s.Accessed),
			"not_accessed":   len(s.NotAccessed),
			"skipped":        len(s.Skipped),
			"network_errors": s.NetworkErrors,
		},
		"records": records,
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(canonicalNode(doc)); err != nil {
		_ = enc.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	out := bytes.TrimRight(buf.Bytes(), "\n")
	out = append(out, '\n')
	return out, nil
}

// WriteYAML writes the canonical YAML summary to path, creating parent directories.
func WriteYAML(path string, s reconcile.Summary, info RunInfo) error {
	b, err := MarshalYAML(s, info)
	if err != nil {
		return fmt.Errorf("summary: %w", err)
	}
	return writeFile(path, b)
}

func stringsToAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

func scalarNode(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

func scalarFrom(v any) *yaml.Node {
	n := &yaml.Node{}
	_ = n.Encode(v)
	return n
}

func canonicalNode(v any) *yaml.Node {
	switch x := v.(type) {
	case map[string]any:
		return canonicalMapNode(x)
	case []any:
		n := &yaml.Node{Kind: yaml.SequenceNode}
		for _, it := range x {
			n.Content = append(n.Content, canonicalNode(it))
		}
		return n
	case string:
		return scalarNode(x)
	default:
		return scalarFrom(x)
	}
}

func canonicalMapNode(m map[string]any) *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		n.Content = append(n.Content, scalarNode(k), canonicalNode(m[k]))
	}
	return n
}
