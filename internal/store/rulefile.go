package store

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"fjacquet/txn-categorizer/internal/fileutils"
	"fjacquet/txn-categorizer/internal/logging"
	"fjacquet/txn-categorizer/internal/models"

	"github.com/gocarina/gocsv"
	"gopkg.in/yaml.v3"
)

// RuleFile stores rules as CSV (Keyword,Category) or, for .yaml/.yml paths, as
// a YAML document with a top-level "rules" list.
type RuleFile struct {
	Path   string
	logger logging.Logger
}

type ruleDocument struct {
	Rules []RuleRecord `yaml:"rules"`
}

// NewRuleFile creates a rule file store.
func NewRuleFile(path string, logger logging.Logger) *RuleFile {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &RuleFile{Path: path, logger: logger.WithField(logging.FieldFile, path)}
}

func (f *RuleFile) isYAML() bool {
	ext := strings.ToLower(filepath.Ext(f.Path))
	return ext == ".yaml" || ext == ".yml"
}

// LoadRules implements RuleRepository. A missing file is not an error.
func (f *RuleFile) LoadRules() ([]RuleRecord, bool, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			f.logger.Warn("Rules file not found")
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("store: read rules %s: %w", f.Path, err)
	}

	var rules []RuleRecord
	if f.isYAML() {
		rules, err = decodeYAMLRules(data)
	} else {
		rules, err = decodeCSVRules(data)
	}
	if err != nil {
		return nil, true, fmt.Errorf("store: parse rules %s: %w", f.Path, err)
	}

	f.logger.Debug("Loaded rules", logging.Field{Key: logging.FieldCount, Value: len(rules)})
	return rules, true, nil
}

// decodeYAMLRules accepts either a mapping with a "rules" key or a bare list.
func decodeYAMLRules(data []byte) ([]RuleRecord, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if len(root.Content) == 0 {
		return nil, nil
	}

	top := root.Content[0]
	switch top.Kind {
	case yaml.MappingNode:
		var doc ruleDocument
		if err := top.Decode(&doc); err != nil {
			return nil, err
		}
		return doc.Rules, nil
	case yaml.SequenceNode:
		var list []RuleRecord
		if err := top.Decode(&list); err != nil {
			return nil, err
		}
		return list, nil
	case yaml.ScalarNode:
		if top.Tag == "!!null" {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("line %d: expected a rules mapping or a list of rules", top.Line)
}

func decodeCSVRules(data []byte) ([]RuleRecord, error) {
	var rows []RuleRecord
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return nil, nil
		}
		return nil, err
	}
	out := rows[:0]
	for _, r := range rows {
		r.Keyword = strings.TrimSpace(r.Keyword)
		r.Category = strings.TrimSpace(r.Category)
		if r.Keyword == "" && r.Category == "" {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// SaveRules implements RuleRepository.
func (f *RuleFile) SaveRules(rules []RuleRecord) error {
	err := fileutils.AtomicWrite(f.Path, models.PermissionDataFile, func(w io.Writer) error {
		if f.isYAML() {
			enc := yaml.NewEncoder(w)
			enc.SetIndent(2)
			if err := enc.Encode(ruleDocument{Rules: rules}); err != nil {
				return err
			}
			return enc.Close()
		}
		if rules == nil {
			rules = []RuleRecord{}
		}
		return gocsv.Marshal(rules, w)
	})
	if err != nil {
		return fmt.Errorf("store: write rules %s: %w", f.Path, err)
	}
	f.logger.Info("Saved rules", logging.Field{Key: logging.FieldCount, Value: len(rules)})
	return nil
}
