package tools

import (
	"context"

	"github.com/sdlc-tools/mcp-server/pkg/logging"
	"github.com/sdlc-tools/mcp-server/pkg/scan"
)

const (
	qualityDescription = "Runs static code analysis including complexity metrics and quality checks. " +
		"Identifies code smells and maintainability problems with actionable recommendations."
	securityDescription = "Performs security vulnerability scanning including known vulnerable dependencies, " +
		"SQL injection patterns, XSS vulnerabilities, hardcoded secrets, insecure deserialization, " +
		"weak cryptography detection, and OWASP Top 10 violations. Returns detailed findings with " +
		"remediation steps and security best practices recommendations."
)

type qualityArgs struct {
	Path         string `json:"path" jsonschema_description:"Path to the project root directory"`
	Severity     string `json:"severity,omitempty" jsonschema:"enum=low,enum=medium,enum=high,default=medium"`
	IncludeTests bool   `json:"includeTests,omitempty" jsonschema_description:"Include test sources in the analysis (default: false)"`
}

// QualityResult is returned by code-quality-check
type QualityResult struct {
	Success bool `json:"success"`
	*scan.QualityReport
}

func (ts *Toolset) checkQuality(ctx context.Context, args qualityArgs) (interface{}, error) {
	ts.log(ctx).Info("Running code quality checks",
		logging.Project(args.Path),
		logging.String("severity", args.Severity),
		logging.Bool("includeTests", args.IncludeTests),
	)

	report, err := scan.CheckQuality(ctx, scan.QualityOptions{
		Path:         args.Path,
		Severity:     args.Severity,
		IncludeTests: args.IncludeTests,
	})
	if err != nil {
		return nil, err
	}
	return &QualityResult{Success: true, QualityReport: report}, nil
}

type securityArgs struct {
	Path                string `json:"path" jsonschema_description:"Path to the project root directory"`
	ScanType            string `json:"scanType,omitempty" jsonschema:"enum=full,enum=dependencies-only,enum=code-only,default=full"`
	Severity            string `json:"severity,omitempty" jsonschema:"enum=CRITICAL,enum=HIGH,enum=MEDIUM,enum=LOW,default=MEDIUM"`
	IncludeRemediations *bool  `json:"includeRemediations,omitempty" jsonschema:"default=true"`
	ExcludePatterns     string `json:"excludePatterns,omitempty" jsonschema_description:"Comma separated glob patterns of files to skip"`
}

// SecurityResult is returned by security-scan
type SecurityResult struct {
	Success bool `json:"success"`
	*scan.SecurityReport
}

func (ts *Toolset) securityScan(ctx context.Context, args securityArgs) (interface{}, error) {
	ts.log(ctx).Info("Running security scan",
		logging.Project(args.Path),
		logging.String("scanType", args.ScanType),
	)

	includeRemediations := true
	if args.IncludeRemediations != nil {
		includeRemediations = *args.IncludeRemediations
	}

	report, err := ts.scanner.Scan(ctx, scan.SecurityOptions{
		Path:                args.Path,
		ScanType:            args.ScanType,
		MinSeverity:         scan.Severity(args.Severity),
		IncludeRemediations: includeRemediations,
		ExcludePatterns:     scan.ParsePatterns(args.ExcludePatterns),
	})
	if err != nil {
		return nil, err
	}
	return &SecurityResult{Success: true, SecurityReport: report}, nil
}
