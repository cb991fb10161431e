package metadata_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xhad/stressdocs/internal/models"
	"github.com/xhad/stressdocs/pkg/metadata"
)

func TestClassify(t *testing.T) {
	c := metadata.NewDefault()

	tests := []struct {
		filename string
		want     models.DocumentMetadata
	}{
		{
			filename: "BOE-Stress-Test-Results-2023.pdf",
			want:     models.DocumentMetadata{Institution: "Bank of England", DocumentType: "Stress Test", Year: 2023, Tags: "stress-test,boe,bank-of-england"},
		},
		{
			filename: "bank-of-england-climate-scenario.pdf",
			want:     models.DocumentMetadata{Institution: "Bank of England", DocumentType: "Climate Stress Test", Year: 2024, Tags: "climate,stress-test,boe"},
		},
		{
			filename: "boe_framework_2021.pdf",
			want:     models.DocumentMetadata{Institution: "Bank of England", DocumentType: "Framework Manual", Year: 2021, Tags: "framework,manual,boe"},
		},
		{
			filename: "boe_annual_report.pdf",
			want:     models.DocumentMetadata{Institution: "Bank of England", DocumentType: "Financial Document", Year: 2024, Tags: "financial,document"},
		},
		{
			filename: "dfast-results-2022.xlsx",
			want:     models.DocumentMetadata{Institution: "Federal Reserve", DocumentType: "DFAST Results", Year: 2022, Tags: "fed,dfast,stress-test,federal-reserve"},
		},
		{
			filename: "bis_quarterly_review.pdf",
			want:     models.DocumentMetadata{Institution: "Bank for International Settlements", DocumentType: "BIS Report", Year: 2024, Tags: "bis,international,banking"},
		},
		{
			filename: "basel_iii_monitoring_2020.pdf",
			want:     models.DocumentMetadata{Institution: "Basel Committee", DocumentType: "Basel III Report", Year: 2020, Tags: "basel,basel-iii,regulation"},
		},
		{
			filename: "GFSR-April-2025.pdf",
			want:     models.DocumentMetadata{Institution: "International Monetary Fund", DocumentType: "GFSR Report", Year: 2025, Tags: "imf,gfsr,financial-stability"},
		},
		{
			filename: "fred_unemployment.csv",
			want:     models.DocumentMetadata{Institution: "Federal Reserve Economic Data", DocumentType: "Economic Data", Year: 2024, Tags: "fred,economic-data,time-series"},
		},
		{
			filename: "quarterly_notes_2019.csv",
			want:     models.DocumentMetadata{Institution: "Unknown", DocumentType: "Financial Document", Year: 2019, Tags: "financial,document"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.filename))
		})
	}
}

func TestClassifyFirstMatchWins(t *testing.T) {
	// "boe" is checked before "fed"
	meta := metadata.NewDefault().Classify("boe-vs-fed-comparison.pdf")
	assert.Equal(t, "Bank of England", meta.Institution)
}

func TestClassifyIsDeterministic(t *testing.T) {
	c := metadata.NewDefault()
	for _, name := range []string{"imf_gfsr_2024.pdf", "random.csv", ""} {
		assert.Equal(t, c.Classify(name), c.Classify(name))
	}
}

func TestCustomRules(t *testing.T) {
	c := metadata.New([]metadata.Rule{
		{Keywords: []string{"ecb"}, Institution: "European Central Bank", DocumentType: "EU-wide Stress Test"},
	})

	meta := c.Classify("ECB_stress_2018.pdf")
	assert.Equal(t, "European Central Bank", meta.Institution)
	assert.Equal(t, "EU-wide Stress Test", meta.DocumentType)
	assert.Equal(t, metadata.DefaultTags, meta.Tags)
	assert.Equal(t, 2018, meta.Year)
}
