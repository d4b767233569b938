package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/scan-io-git/credscan/internal/findings"
)

const (
	toolName = "credscan"
	toolURI  = "https://github.com/scan-io-git/credscan"
	// RuleID is the single rule every finding is reported under.
	RuleID = "hardcoded-credential"
)

// SARIFWriter writes findings as a SARIF 2.1.0 log.
type SARIFWriter struct {
	Path string
	// ScanID is recorded on the run so reports can be traced back to a log.
	ScanID string
}

// Write creates or truncates w.Path with one run holding a result per finding.
func (w *SARIFWriter) Write(results []findings.Finding) (string, error) {
	report, err := sarif.New(sarif.Version210)
	if err != nil {
		return "", fmt.Errorf("failed to create SARIF report: %w", err)
	}

	run := sarif.NewRunWithInformationURI(toolName, toolURI)
	rule := run.AddRule(RuleID).
		WithDescription("A credential-shaped assignment (password, passwd, pwd, secret, token or key) with a literal value.")
	rule.DefaultConfiguration = &sarif.ReportingConfiguration{Level: "warning"}

	for _, f := range results {
		line, snippet := f.LineNumber, f.FullLine
		location := sarif.NewLocation().WithPhysicalLocation(
			sarif.NewPhysicalLocation().
				WithArtifactLocation(sarif.NewArtifactLocation().WithUri(f.FilePath)).
				WithRegion(&sarif.Region{
					StartLine: &line,
					Snippet:   &sarif.ArtifactContent{Text: &snippet},
				}),
		)

		result := sarif.NewRuleResult(rule.ID).
			WithMessage(sarif.NewTextMessage(fmt.Sprintf("Potential hardcoded credential %q", f.MatchedString))).
			WithLevel("warning").
			WithLocations([]*sarif.Location{location})
		run.AddResult(result)
	}

	if w.ScanID != "" {
		run.PropertyBag = *sarif.NewPropertyBag()
		run.Add("scan_id", w.ScanID)
	}
	report.AddRun(run)

	if dir := filepath.Dir(w.Path); dir != "." {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return "", fmt.Errorf("failed to create report directory %q: %w", dir, err)
		}
	}
	file, err := os.OpenFile(w.Path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return "", fmt.Errorf("error writing SARIF report: %w", err)
	}
	defer func() { _ = file.Close() }()

	if err := report.PrettyWrite(file); err != nil {
		return "", fmt.Errorf("error writing SARIF report: %w", err)
	}
	return w.Path, nil
}
