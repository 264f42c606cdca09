// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dictionary loads institution names from CSV files into the
// prefix trie and the spell-correction index at startup. Names are
// cleaned of legal suffixes, and prefix-stripped variants ("University of
// Toronto" also as "Toronto") are inserted at slightly lower frequency so
// the original casing wins ties.
//
// See docs/ARCHITECTURE.md § Input Resolution.
package dictionary

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/internal/spell"
	"github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/internal/trie"
	"github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/pkg/types"
)

// maxSpellEdit is the edit-distance bound for the correction index.
const maxSpellEdit = 2

// nameColumns are tried in order when the configured column is missing.
var nameColumns = []string{"name", "institution_name", "bank_name", "title"}

// legalSuffixes are trailing legal designations stripped from names.
var legalSuffixes = []string{
	"National Association",
	"N.A.",
	"F.S.B.",
	"Federal Savings Bank",
	"Trust Company",
	"Inc.",
	"LLC",
	"Corporation",
	"Corp.",
}

// typePrefixes generate the prefix-stripped name variants per type.
var typePrefixes = map[types.InstitutionType][]string{
	types.TypeUniversity: {"university of", "college of", "institute of", "school of"},
	types.TypeBank:       {"bank of", "credit union of", "federal credit union of", "savings bank of"},
	types.TypeHospital:   {"hospital of", "medical center of", "clinic of", "healthcare of"},
}

// filenameTypeHints classify a CSV by its file name.
var filenameTypeHints = []struct {
	substr string
	t      types.InstitutionType
}{
	{"univers", types.TypeUniversity},
	{"college", types.TypeUniversity},
	{"edu", types.TypeUniversity},
	{"hospital", types.TypeHospital},
	{"med", types.TypeHospital},
	{"health", types.TypeHospital},
	{"bank", types.TypeBank},
	{"fin", types.TypeBank},
	{"credit", types.TypeBank},
}

// Load builds the trie and spell corrector from the configured CSV files.
// A missing or unreadable file is logged and skipped; an empty path list
// yields empty but usable structures.
func Load(cfg types.DictionaryConfig, log *zap.Logger) (*trie.Trie, *spell.Corrector, error) {
	if log == nil {
		log = zap.NewNop()
	}

	names := trie.New()
	for _, path := range cfg.CSVPaths {
		n, err := LoadCSV(names, path, TypeFromFilename(path))
		if err != nil {
			log.Warn("dictionary file skipped", zap.String("path", path), zap.Error(err))
			continue
		}
		log.Info("dictionary loaded",
			zap.String("path", filepath.Base(path)), zap.Int("institutions", n))
	}

	return names, spell.FromTrie(names, maxSpellEdit), nil
}

// TypeFromFilename infers the institution type of a CSV from its name.
func TypeFromFilename(path string) types.InstitutionType {
	base := strings.ToLower(filepath.Base(path))
	for _, hint := range filenameTypeHints {
		if strings.Contains(base, hint.substr) {
			return hint.t
		}
	}
	return types.TypeGeneral
}

// LoadCSV inserts one file's institutions into the trie and returns the
// number loaded. The first row is the header; the name column is located
// by the usual candidates, falling back to the second column. A
// "frequency" or "rank" column supplies ordering weight; otherwise earlier
// rows rank higher.
func LoadCSV(names *trie.Trie, path string, instType types.InstitutionType) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening dictionary file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		return 0, fmt.Errorf("reading header: %w", err)
	}
	nameCol, freqCol := locateColumns(header)
	if nameCol < 0 {
		return 0, fmt.Errorf("no name column in %s (columns: %s)",
			filepath.Base(path), strings.Join(header, ", "))
	}

	var rows []string
	var freqs []int
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed row: skip, keep loading.
			continue
		}
		if nameCol >= len(record) {
			continue
		}
		name := CleanName(record[nameCol])
		if name == "" {
			continue
		}
		freq := 0
		if freqCol >= 0 && freqCol < len(record) {
			if v, err := strconv.Atoi(strings.TrimSpace(record[freqCol])); err == nil {
				freq = v
			}
		}
		rows = append(rows, name)
		freqs = append(freqs, freq)
	}

	loaded := 0
	for i, name := range rows {
		freq := freqs[i]
		if freq <= 0 {
			// Earlier entries rank higher when no frequency column exists.
			freq = len(rows) - i
		}
		before := names.Size()
		names.Insert(name, freq, instType)
		if names.Size() > before {
			loaded++
		}
		for _, variant := range PrefixVariants(name, instType) {
			names.Insert(variant, maxInt(1, freq-1), instType)
		}
	}
	return loaded, nil
}

// CleanName strips the text after the first comma and any trailing legal
// suffix ("BancCentral, National Association" becomes "BancCentral").
func CleanName(name string) string {
	cleaned := strings.TrimSpace(name)
	if i := strings.IndexByte(cleaned, ','); i >= 0 {
		cleaned = strings.TrimSpace(cleaned[:i])
	}
	for _, suffix := range legalSuffixes {
		if strings.HasSuffix(cleaned, suffix) {
			cleaned = strings.TrimSpace(strings.TrimSuffix(cleaned, suffix))
			break
		}
	}
	return cleaned
}

// PrefixVariants returns the name with its leading institutional prefix
// removed, when one applies ("University of Toronto" yields "Toronto").
func PrefixVariants(name string, instType types.InstitutionType) []string {
	lower := strings.ToLower(name)
	for _, prefix := range typePrefixes[instType] {
		if strings.HasPrefix(lower, prefix+" ") {
			variant := strings.TrimSpace(name[len(prefix):])
			if variant != "" {
				return []string{variant}
			}
		}
	}
	return nil
}

func locateColumns(header []string) (nameCol, freqCol int) {
	nameCol, freqCol = -1, -1
	lower := make([]string, len(header))
	for i, h := range header {
		lower[i] = strings.ToLower(strings.TrimSpace(h))
	}

	for _, candidate := range nameColumns {
		for i, h := range lower {
			if h == candidate {
				nameCol = i
				break
			}
		}
		if nameCol >= 0 {
			break
		}
	}
	if nameCol < 0 && len(header) > 1 {
		// Financial institution exports keep the name in the second column.
		nameCol = 1
	}

	for i, h := range lower {
		if h == "frequency" || h == "rank" {
			freqCol = i
			break
		}
	}
	return nameCol, freqCol
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
