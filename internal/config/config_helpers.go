package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

// fileValues holds the optional keys of a config file. A nil field was not set.
type fileValues struct {
	BaseURL        *string `yaml:"baseUrl"`
	Input          *string `yaml:"csv"`
	Output         *string `yaml:"out"`
	Points         *int    `yaml:"points"`
	ZeroPoints     *int    `yaml:"zeroPoints"`
	TimeoutSeconds *int    `yaml:"timeoutSeconds"`
	DelayMs        *int    `yaml:"delayMs"`
	UserAgent      *string `yaml:"userAgent"`
	SummaryOut     *string `yaml:"summaryOut"`
	MetricsOut     *string `yaml:"metricsOut"`
}

var stringKeys = []string{"baseUrl", "csv", "out", "userAgent", "summaryOut", "metricsOut"}

var intKeys = []string{"points", "zeroPoints", "timeoutSeconds", "delayMs"}

func (fv fileValues) apply(c *Config) {
	if fv.BaseURL != nil {
		c.BaseURL = *fv.BaseURL
	}
	if fv.Input != nil {
		c.InputPath = *fv.Input
	}
	if fv.Output != nil {
		c.OutputPath = *fv.Output
	}
	if fv.Points != nil {
		c.Points = *fv.Points
	}
	if fv.ZeroPoints != nil {
		c.ZeroPoints = *fv.ZeroPoints
	}
	if fv.TimeoutSeconds != nil {
		c.Timeout = time.Duration(*fv.TimeoutSeconds) * time.Second
	}
	if fv.DelayMs != nil {
		c.Delay = time.Duration(*fv.DelayMs) * time.Millisecond
	}
	if fv.UserAgent != nil {
		c.UserAgent = *fv.UserAgent
	}
	if fv.SummaryOut != nil {
		c.SummaryOut = *fv.SummaryOut
	}
	if fv.MetricsOut != nil {
		c.MetricsOut = *fv.MetricsOut
	}
}

func (fv *fileValues) stringTarget(name string) **string {
	switch name {
	case "baseUrl":
		return &fv.BaseURL
	case "csv":
		return &fv.Input
	case "out":
		return &fv.Output
	case "userAgent":
		return &fv.UserAgent
	case "summaryOut":
		return &fv.SummaryOut
	case "metricsOut":
		return &fv.MetricsOut
	}
	return nil
}

func (fv *fileValues) intTarget(name string) **int {
	switch name {
	case "points":
		return &fv.Points
	case "zeroPoints":
		return &fv.ZeroPoints
	case "timeoutSeconds":
		return &fv.TimeoutSeconds
	case "delayMs":
		return &fv.DelayMs
	}
	return nil
}

// parseCUE compiles a CUE document and extracts the known top-level fields.
func parseCUE(data []byte) (fileValues, error) {
	v := cuecontext.New().CompileBytes(data)
	if err := v.Err(); err != nil {
		return fileValues{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := rejectUnknownFields(v); err != nil {
		return fileValues{}, err
	}
	var fv fileValues
	for _, name := range stringKeys {
		s, err := optionalString(v, name)
		if err != nil {
			return fileValues{}, err
		}
		*fv.stringTarget(name) = s
	}
	for _, name := range intKeys {
		n, err := optionalInt(v, name)
		if err != nil {
			return fileValues{}, err
		}
		*fv.intTarget(name) = n
	}
	return fv, nil
}

func rejectUnknownFields(v cue.Value) error {
	known := map[string]bool{}
	for _, k := range stringKeys {
		known[k] = true
	}
	for _, k := range intKeys {
		known[k] = true
	}
	it, err := v.Fields()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	var unknown []string
	for it.Next() {
		name := it.Selector().String()
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("%w: unknown field(s): %v", ErrInvalid, unknown)
	}
	return nil
}

func optionalString(v cue.Value, name string) (*string, error) {
	f := v.LookupPath(cue.ParsePath(name))
	if !f.Exists() {
		return nil, nil
	}
	if f.Kind() != cue.StringKind {
		return nil, fmt.Errorf("%w: invalid type for field: %s (expected string)", ErrInvalid, name)
	}
	var s string
	if err := f.Decode(&s); err != nil {
		return nil, fmt.Errorf("%w: invalid value for %s: %v", ErrInvalid, name, err)
	}
	return &s, nil
}

func optionalInt(v cue.Value, name string) (*int, error) {
	f := v.LookupPath(cue.ParsePath(name))
	if !f.Exists() {
		return nil, nil
	}
	if f.Kind() != cue.IntKind {
		return nil, fmt.Errorf("%w: invalid type for field: %s (expected int)", ErrInvalid, name)
	}
	var n int
	if err := f.Decode(&n); err != nil {
		return nil, fmt.Errorf("%w: invalid value for %s: %v", ErrInvalid, name, err)
	}
	return &n, nil
}

// parseYAML decodes a YAML document, rejecting keys it does not know.
func parseYAML(data []byte) (fileValues, error) {
	var fv fileValues
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fv); err != nil && !errors.Is(err, io.EOF) {
		return fileValues{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return fv, nil
}
