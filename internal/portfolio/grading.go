package portfolio

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	dbtypes "github.com/jbaptiste/cardfolio-backend/pkg/db/types"
)

var (
	gradingCompanyKeys = []string{"company", "provider"}
	gradingGradeKeys   = []string{"grade", "score", "value", "note", "rating"}
	gradingCertKeys    = []string{"certificationNumber", "certNumber", "certId"}

	decimalRe = regexp.MustCompile(`\d+(?:\.\d+)?`)
)

// Ordered most-specific first: "NEAR MINT" must win over "MINT" and
// "VERY GOOD" over "GOOD".
var textualGrades = []struct {
	text  string
	score float64
}{
	{"GEM MINT", 10},
	{"NEAR MINT", 8},
	{"VERY GOOD", 4},
	{"MINT", 10},
	{"EXCELLENT", 6},
	{"GOOD", 2},
	{"POOR", 1},
}

// NormalizeGrading coerces the heterogeneous grading shapes callers send
// into the canonical {company, grade, certificationNumber} form. When
// neither a company nor a grade resolves, the grading is absent (nil).
func NormalizeGrading(raw map[string]any) *dbtypes.Grading {
	if len(raw) == 0 {
		return nil
	}

	company := firstString(raw, gradingCompanyKeys)
	grade := firstString(raw, gradingGradeKeys)
	cert := firstString(raw, gradingCertKeys)

	if company == "" && grade == "" {
		return nil
	}
	return &dbtypes.Grading{
		Company:             company,
		Grade:               grade,
		CertificationNumber: cert,
	}
}

// GradeScore parses a grade string into a comparable number: the first
// decimal number when present ("PSA 10" → 10, "9.5" → 9.5), else a known
// textual grade, else 0.
func GradeScore(grade string) float64 {
	trimmed := strings.TrimSpace(grade)
	if trimmed == "" {
		return 0
	}

	if match := decimalRe.FindString(trimmed); match != "" {
		if score, err := strconv.ParseFloat(match, 64); err == nil {
			return score
		}
	}

	upper := strings.ToUpper(trimmed)
	for _, entry := range textualGrades {
		if strings.Contains(upper, entry.text) {
			return entry.score
		}
	}
	return 0
}

func firstString(raw map[string]any, keys []string) string {
	for _, key := range keys {
		value, ok := raw[key]
		if !ok || value == nil {
			continue
		}
		if s := coerceString(value); s != "" {
			return s
		}
	}
	return ""
}

func coerceString(value any) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case json.Number:
		return v.String()
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
