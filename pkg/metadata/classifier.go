// Package metadata tags documents with institution, type, year and tags
// derived from their filename.
package metadata

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/xhad/stressdocs/internal/models"
)

const (
	DefaultInstitution  = "Unknown"
	DefaultDocumentType = "Financial Document"
	DefaultYear         = 2024
	DefaultTags         = "financial,document"
)

var yearPattern = regexp.MustCompile(`20\d{2}`)

// Refinement narrows the document type inside an institution's documents.
type Refinement struct {
	Keywords     []string
	DocumentType string
	Tags         string
}

// Rule matches when any keyword is a substring of the lowercased filename.
// An empty DocumentType or Tags keeps the default.
type Rule struct {
	Keywords     []string
	Institution  string
	DocumentType string
	Tags         string
	Refinements  []Refinement
}

// DefaultRules is evaluated in order; the first matching rule wins.
var DefaultRules = []Rule{
	{
		Keywords:    []string{"boe", "bank-of-england"},
		Institution: "Bank of England",
		Refinements: []Refinement{
			{Keywords: []string{"stress-test"}, DocumentType: "Stress Test", Tags: "stress-test,boe,bank-of-england"},
			{Keywords: []string{"climate"}, DocumentType: "Climate Stress Test", Tags: "climate,stress-test,boe"},
			{Keywords: []string{"framework"}, DocumentType: "Framework Manual", Tags: "framework,manual,boe"},
		},
	},
	{
		Keywords:     []string{"fed", "dfast"},
		Institution:  "Federal Reserve",
		DocumentType: "DFAST Results",
		Tags:         "fed,dfast,stress-test,federal-reserve",
	},
	{
		Keywords:     []string{"bis"},
		Institution:  "Bank for International Settlements",
		DocumentType: "BIS Report",
		Tags:         "bis,international,banking",
	},
	{
		Keywords:     []string{"basel"},
		Institution:  "Basel Committee",
		DocumentType: "Basel III Report",
		Tags:         "basel,basel-iii,regulation",
	},
	{
		Keywords:     []string{"imf", "gfsr"},
		Institution:  "International Monetary Fund",
		DocumentType: "GFSR Report",
		Tags:         "imf,gfsr,financial-stability",
	},
	{
		Keywords:     []string{"fred"},
		Institution:  "Federal Reserve Economic Data",
		DocumentType: "Economic Data",
		Tags:         "fred,economic-data,time-series",
	},
}

type Classifier struct {
	rules []Rule
}

func New(rules []Rule) *Classifier {
	return &Classifier{rules: rules}
}

func NewDefault() *Classifier {
	return New(DefaultRules)
}

// Classify never fails: unmatched names get the default metadata.
func (c *Classifier) Classify(filename string) models.DocumentMetadata {
	name := strings.ToLower(filename)

	meta := models.DocumentMetadata{
		Institution:  DefaultInstitution,
		DocumentType: DefaultDocumentType,
		Year:         DefaultYear,
		Tags:         DefaultTags,
	}

	for _, rule := range c.rules {
		if !containsAny(name, rule.Keywords) {
			continue
		}
		meta.Institution = rule.Institution
		if rule.DocumentType != "" {
			meta.DocumentType = rule.DocumentType
		}
		if rule.Tags != "" {
			meta.Tags = rule.Tags
		}
		for _, ref := range rule.Refinements {
			if containsAny(name, ref.Keywords) {
				meta.DocumentType = ref.DocumentType
				meta.Tags = ref.Tags
				break
			}
		}
		break
	}

	if match := yearPattern.FindString(name); match != "" {
		if year, err := strconv.Atoi(match); err == nil {
			meta.Year = year
		}
	}

	return meta
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
