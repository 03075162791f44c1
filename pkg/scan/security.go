package scan

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sdlc-tools/mcp-server/pkg/maven"
)

// Severity ranks a finding
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
)

// Level orders severities; unknown values rank lowest
func (s Severity) Level() int {
	switch Severity(strings.ToUpper(string(s))) {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// Scan types
const (
	ScanFull             = "full"
	ScanDependenciesOnly = "dependencies-only"
	ScanCodeOnly         = "code-only"
)

// Finding is one security issue
type Finding struct {
	Type             string   `json:"type"`
	Severity         Severity `json:"severity"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Remediation      string   `json:"remediation"`
	Location         string   `json:"location"`
	CWE              string   `json:"cwe"`
	References       []string `json:"references"`
	RemediationSteps []string `json:"remediationSteps,omitempty"`
}

// RiskAssessment counts findings and derives an overall risk level
type RiskAssessment struct {
	CriticalFindings        int    `json:"criticalFindings"`
	HighFindings            int    `json:"highFindings"`
	MediumFindings          int    `json:"mediumFindings"`
	LowFindings             int    `json:"lowFindings"`
	TotalFindings           int    `json:"totalFindings"`
	OverallRiskLevel        string `json:"overallRiskLevel"`
	RequiresImmediateAction bool   `json:"requiresImmediateAction"`
}

// RemediationItem groups findings of one kind
type RemediationItem struct {
	Priority      int      `json:"priority"`
	Vulnerability string   `json:"vulnerability"`
	Severity      Severity `json:"severity"`
	Occurrences   int      `json:"occurrences"`
	Locations     []string `json:"locations"`
}

// SecuritySummary grades the scan
type SecuritySummary struct {
	TotalFindings   int      `json:"totalFindings"`
	SecurityScore   int      `json:"securityScore"`
	ScoreGrade      string   `json:"scoreGrade"`
	Recommendations []string `json:"recommendations"`
}

// SecurityReport is the result of a security scan
type SecurityReport struct {
	ProjectPath               string            `json:"projectPath"`
	ScanType                  string            `json:"scanType"`
	Timestamp                 string            `json:"timestamp"`
	DependencyVulnerabilities []Finding         `json:"dependencyVulnerabilities,omitempty"`
	CodeVulnerabilities       []Finding         `json:"codeVulnerabilities,omitempty"`
	AllFindings               []Finding         `json:"allFindings"`
	RiskAssessment            RiskAssessment    `json:"riskAssessment"`
	RemediationPlan           []RemediationItem `json:"remediationPlan"`
	SecurityScore             int               `json:"securityScore"`
	Summary                   SecuritySummary   `json:"summary"`
}

// SecurityOptions configures a scan
type SecurityOptions struct {
	Path                string
	ScanType            string
	MinSeverity         Severity
	IncludeRemediations bool
	ExcludePatterns     []string
}

type codeRule struct {
	title       string
	severity    Severity
	description string
	remediation string
	match       func(line string) (bool, string)
}

var (
	sqlPattern = regexp.MustCompile(`Statement|PreparedStatement|ResultSet|executeQuery|executeUpdate|execute\(|"\s*\+\s*[a-zA-Z_]|String\.format.*SELECT|String\.format.*UPDATE`)
	xssPattern = regexp.MustCompile(`innerHTML|document\.write|eval\(|response\.getWriter|out\.print|getParameter|getElementById`)
	// the keyword is reported, never the value
	secretPattern        = regexp.MustCompile(`(?i)(password|apikey|api_key|secret|token|pwd|passwd|credential)\s*=\s*["']([^"']+)["']`)
	weakCryptoPattern    = regexp.MustCompile(`(?i)\bMD5\b|\bMD2\b|\bSHA-?1\b|"DES[/"]|\bRC4\b|new Random\(\)|Math\.random\(\)`)
	deserializingPattern = regexp.MustCompile(`readObject|readObjectNoData|readResolve|ObjectInputStream|readField|newInstance`)
)

func matchAll(conds ...bool) bool {
	for _, c := range conds {
		if !c {
			return false
		}
	}
	return true
}

var codeRules = []codeRule{
	{
		title:       "SQL Injection Risk",
		severity:    SeverityHigh,
		description: "Potential SQL injection vulnerability detected. String concatenation with user input in SQL query.",
		remediation: "Use parameterized queries or PreparedStatement with placeholders instead of string concatenation.",
		match: func(line string) (bool, string) {
			return sqlPattern.MatchString(line) && (strings.Contains(line, "+") || strings.Contains(line, "String.format")), ""
		},
	},
	{
		title:       "Hardcoded Secret Detected",
		severity:    SeverityCritical,
		description: "Found hardcoded secret in source code: %s",
		remediation: "Move secrets to environment variables, configuration files, or secret management systems. Never commit secrets to source control.",
		match: func(line string) (bool, string) {
			m := secretPattern.FindStringSubmatch(line)
			if m == nil {
				return false, ""
			}
			return true, m[1]
		},
	},
	{
		title:       "Cross-Site Scripting (XSS) Risk",
		severity:    SeverityHigh,
		description: "Potential XSS vulnerability: user input is used without proper sanitization.",
		remediation: "Sanitize all user inputs using ESAPI.encoder() or similar libraries. Use Content Security Policy (CSP) headers.",
		match: func(line string) (bool, string) {
			return matchAll(xssPattern.MatchString(line), strings.Contains(line, "getParameter")), ""
		},
	},
	{
		title:       "Weak Cryptography Algorithm",
		severity:    SeverityHigh,
		description: "Use of weak or deprecated cryptographic algorithm detected.",
		remediation: "Use strong algorithms: SHA-256 or SHA-3 for hashing, AES-256 for encryption, SecureRandom for key generation.",
		match: func(line string) (bool, string) {
			return weakCryptoPattern.MatchString(line), ""
		},
	},
	{
		title:       "Insecure Deserialization",
		severity:    SeverityCritical,
		description: "ObjectInputStream is used to deserialize untrusted data, which can lead to RCE attacks.",
		remediation: "Avoid deserializing untrusted data. Use JSON deserialization with strict type validation or implement custom deserialization with whitelisting.",
		match: func(line string) (bool, string) {
			return matchAll(deserializingPattern.MatchString(line), strings.Contains(line, "ObjectInputStream")), ""
		},
	},
	{
		title:       "Command Injection Risk",
		severity:    SeverityHigh,
		description: "Direct execution of runtime commands detected.",
		remediation: "Avoid using Runtime.exec() or ProcessBuilder with user input. Use whitelisting and parameterized command execution.",
		match: func(line string) (bool, string) {
			return strings.Contains(line, "Runtime.getRuntime().exec") || strings.Contains(line, "ProcessBuilder"), ""
		},
	},
	{
		title:       "LDAP Injection Risk",
		severity:    SeverityHigh,
		description: "Potential LDAP injection vulnerability detected.",
		remediation: "Use parameterized LDAP queries or escape special characters in LDAP filters.",
		match: func(line string) (bool, string) {
			return matchAll(strings.Contains(line, "DirContext"), strings.Contains(line, "search"), strings.Contains(line, "+")), ""
		},
	},
	{
		title:       "XML External Entity (XXE) Attack Risk",
		severity:    SeverityCritical,
		description: "XML parsing with disabled security features or entity expansion enabled.",
		remediation: "Disable external entity processing and DTD processing in XML parsers.",
		match: func(line string) (bool, string) {
			return strings.Contains(line, "setValidating(false)") || strings.Contains(line, "XXE") ||
				strings.Contains(line, "expandEntityReferences=true"), ""
		},
	},
}

var cweByKeyword = []struct{ keyword, cwe string }{
	{"SQL Injection", "CWE-89"},
	{"Cross-Site", "CWE-79"},
	{"Hardcoded Secret", "CWE-798"},
	{"Weak Cryptography", "CWE-327"},
	{"Deserialization", "CWE-502"},
	{"Command Injection", "CWE-78"},
	{"LDAP", "CWE-90"},
	{"XXE", "CWE-611"},
	{"Log4Shell", "CWE-917"},
}

// CWE maps a finding title to its weakness id
func CWE(title string) string {
	for _, entry := range cweByKeyword {
		if strings.Contains(title, entry.keyword) {
			return entry.cwe
		}
	}
	return "CWE-200"
}

// References lists reading material for a finding title
func References(title string) []string {
	refs := []string{"https://owasp.org/Top10/"}
	switch {
	case strings.Contains(title, "SQL Injection"):
		refs = append(refs, "https://cheatsheetseries.owasp.org/cheatsheets/SQL_Injection_Prevention_Cheat_Sheet.html")
	case strings.Contains(title, "XSS"):
		refs = append(refs, "https://cheatsheetseries.owasp.org/cheatsheets/Cross_Site_Scripting_Prevention_Cheat_Sheet.html")
	case strings.Contains(title, "Cryptography"):
		refs = append(refs, "https://cheatsheetseries.owasp.org/cheatsheets/Cryptographic_Storage_Cheat_Sheet.html")
	case strings.Contains(title, "Deserialization"):
		refs = append(refs, "https://cheatsheetseries.owasp.org/cheatsheets/Deserialization_Cheat_Sheet.html")
	}
	return refs
}

// RemediationSteps returns ordered fix steps for a finding title
func RemediationSteps(title string) []string {
	switch {
	case strings.Contains(title, "SQL Injection"):
		return []string{
			"1. Use PreparedStatement with parameterized queries",
			"2. Implement input validation and whitelisting",
			"3. Use ORM frameworks like Hibernate",
			"4. Apply least privilege principle to database accounts",
			"5. Use Web Application Firewall (WAF) rules",
		}
	case strings.Contains(title, "XSS"):
		return []string{
			"1. Sanitize all user inputs using ESAPI or HTMLunit",
			"2. Use Content Security Policy (CSP) headers",
			"3. Encode output data to prevent script injection",
			"4. Use template engines with automatic escaping",
			"5. Validate and filter user input on server-side",
		}
	case strings.Contains(title, "Hardcoded Secret"):
		return []string{
			"1. Remove the secret from source code immediately",
			"2. Rotate the exposed credential",
			"3. Use environment variables for configuration",
			"4. Implement secrets management (HashiCorp Vault, AWS Secrets Manager)",
			"5. Scan git history and remove from all commits",
		}
	case strings.Contains(title, "Weak Cryptography"):
		return []string{
			"1. Replace with SHA-256 or SHA-3 for hashing",
			"2. Use AES-256 for symmetric encryption",
			"3. Use RSA-2048 or ECDSA for asymmetric encryption",
			"4. Use SecureRandom for key generation",
			"5. Review and update all cryptographic implementations",
		}
	case strings.Contains(title, "Deserialization"):
		return []string{
			"1. Avoid deserializing untrusted data",
			"2. Use JSON deserialization with strict type validation",
			"3. Implement whitelist of allowed classes",
			"4. Follow the OWASP Deserialization cheat sheet",
			"5. Add deserialization filters",
		}
	default:
		return []string{
			"1. Review the OWASP Top 10 guidelines",
			"2. Implement secure coding practices",
			"3. Add unit and integration tests",
			"4. Perform security code review",
			"5. Run automated security scanning tools regularly",
		}
	}
}

func newFinding(kind string, severity Severity, title, description, remediation, location string) Finding {
	return Finding{
		Type:        kind,
		Severity:    severity,
		Title:       title,
		Description: description,
		Remediation: remediation,
		Location:    location,
		CWE:         CWE(title),
		References:  References(title),
	}
}

// ScanFile applies every code rule to each line of a Java file
func ScanFile(path string) ([]Finding, error) {
	lines, _, err := readLines(path)
	if err != nil {
		return nil, err
	}

	var findings []Finding
	for i, line := range lines {
		for _, rule := range codeRules {
			ok, detail := rule.match(line)
			if !ok {
				continue
			}
			description := rule.description
			if strings.Contains(description, "%s") {
				description = fmt.Sprintf(description, detail)
			}
			findings = append(findings, newFinding("CODE_VULNERABILITY", rule.severity, rule.title,
				description, rule.remediation, fmt.Sprintf("%s:%d", path, i+1)))
		}
	}
	return findings, nil
}

// ScanDependencies checks declared dependencies against known vulnerable versions
func ScanDependencies(projectPath string) []Finding {
	pomPath := filepath.Join(projectPath, maven.PomFileName)
	pom, err := maven.ReadPOM(pomPath)
	if err != nil {
		return nil
	}

	var findings []Finding
	for _, dep := range pom.Dependencies {
		if dep.GroupID == "org.apache.logging.log4j" && dep.ArtifactID == "log4j-core" && isLog4ShellVersion(dep.Version) {
			f := newFinding("DEPENDENCY_VULNERABILITY", SeverityCritical,
				"CVE-2021-44228 - Log4Shell Vulnerability",
				"Apache Log4j versions 2.0-beta9 through 2.15.0 contain a critical vulnerability",
				"Upgrade Log4j to version 2.16.0 or later",
				fmt.Sprintf("%s:%s:%s", dep.GroupID, dep.ArtifactID, dep.Version))
			findings = append(findings, f)
		}
	}
	return findings
}

var log4ShellVersion = regexp.MustCompile(`^2\.(\d+)(?:\.(\d+))?`)

// isLog4ShellVersion matches 2.0 through 2.15.x
func isLog4ShellVersion(version string) bool {
	m := log4ShellVersion.FindStringSubmatch(version)
	if m == nil {
		return false
	}
	minor, err := strconv.Atoi(m[1])
	return err == nil && minor <= 15
}

// FilterBySeverity keeps findings at or above min
func FilterBySeverity(findings []Finding, min Severity) []Finding {
	filtered := []Finding{}
	for _, f := range findings {
		if f.Severity.Level() >= min.Level() {
			filtered = append(filtered, f)
		}
	}
	return filtered
}

// AssessRisk counts findings and derives the overall risk level
func AssessRisk(findings []Finding) RiskAssessment {
	var ra RiskAssessment
	for _, f := range findings {
		switch f.Severity {
		case SeverityCritical:
			ra.CriticalFindings++
		case SeverityHigh:
			ra.HighFindings++
		case SeverityMedium:
			ra.MediumFindings++
		case SeverityLow:
			ra.LowFindings++
		}
	}
	ra.TotalFindings = len(findings)

	switch {
	case ra.CriticalFindings > 0:
		ra.OverallRiskLevel = string(SeverityCritical)
	case ra.HighFindings > 2:
		ra.OverallRiskLevel = string(SeverityHigh)
	case ra.HighFindings > 0 || ra.MediumFindings > 5:
		ra.OverallRiskLevel = string(SeverityMedium)
	default:
		ra.OverallRiskLevel = string(SeverityLow)
	}
	ra.RequiresImmediateAction = ra.CriticalFindings > 0
	return ra
}

// RemediationPlan groups findings by title, most severe first, then in
// order of first appearance
func RemediationPlan(findings []Finding) []RemediationItem {
	index := map[string]int{}
	var items []RemediationItem
	for _, f := range findings {
		i, ok := index[f.Title]
		if !ok {
			i = len(items)
			index[f.Title] = i
			items = append(items, RemediationItem{Vulnerability: f.Title, Severity: f.Severity})
		}
		items[i].Occurrences++
		items[i].Locations = append(items[i].Locations, f.Location)
	}

	plan := []RemediationItem{}
	for level := 4; level >= 0; level-- {
		for _, item := range items {
			if item.Severity.Level() == level {
				plan = append(plan, item)
			}
		}
	}
	for i := range plan {
		plan[i].Priority = i + 1
	}
	return plan
}

// SecurityScore deducts 25 per critical, 10 per high and 5 per medium finding
func SecurityScore(findings []Finding) int {
	score := 100
	for _, f := range findings {
		switch f.Severity {
		case SeverityCritical:
			score -= 25
		case SeverityHigh:
			score -= 10
		case SeverityMedium:
			score -= 5
		}
	}
	if score < 0 {
		return 0
	}
	return score
}

// ScoreGrade maps a score to a letter grade
func ScoreGrade(score int) string {
	switch {
	case score >= 90:
		return "A"
	case score >= 80:
		return "B"
	case score >= 70:
		return "C"
	case score >= 60:
		return "D"
	default:
		return "F"
	}
}

func summarize(findings []Finding, score int) SecuritySummary {
	summary := SecuritySummary{
		TotalFindings: len(findings),
		SecurityScore: score,
		ScoreGrade:    ScoreGrade(score),
	}
	switch {
	case len(findings) == 0:
		summary.Recommendations = []string{"Great! No security vulnerabilities found. Maintain security practices."}
	case score >= 80:
		summary.Recommendations = []string{
			"Address the identified findings to improve security posture",
			"Implement security testing in your CI/CD pipeline",
		}
	case score >= 60:
		summary.Recommendations = []string{
			"Significant security issues detected. Prioritize remediation",
			"Schedule security review and training for the team",
		}
	default:
		summary.Recommendations = []string{
			"CRITICAL SECURITY ISSUES DETECTED. Immediate action required",
			"Pause deployment until critical issues are resolved",
			"Perform comprehensive security audit",
		}
	}
	return summary
}

// SecurityScanner runs security scans
type SecurityScanner struct {
	now func() time.Time
}

// NewSecurityScanner creates a scanner
func NewSecurityScanner() *SecurityScanner {
	return &SecurityScanner{now: time.Now}
}

// Scan scans dependencies and/or sources of the project at opts.Path
func (s *SecurityScanner) Scan(ctx context.Context, opts SecurityOptions) (*SecurityReport, error) {
	if opts.ScanType == "" {
		opts.ScanType = ScanFull
	}
	if opts.ScanType != ScanFull && opts.ScanType != ScanDependenciesOnly && opts.ScanType != ScanCodeOnly {
		return nil, fmt.Errorf("invalid scanType: %s", opts.ScanType)
	}
	if opts.MinSeverity == "" {
		opts.MinSeverity = SeverityMedium
	}
	if opts.MinSeverity.Level() == 0 {
		return nil, fmt.Errorf("invalid severity: %s", opts.MinSeverity)
	}
	opts.MinSeverity = Severity(strings.ToUpper(string(opts.MinSeverity)))
	if _, err := os.Stat(opts.Path); err != nil {
		return nil, fmt.Errorf("Project path does not exist: %s", opts.Path)
	}

	report := &SecurityReport{
		ProjectPath: opts.Path,
		ScanType:    opts.ScanType,
		Timestamp:   s.now().UTC().Format(time.RFC3339),
	}

	var all []Finding
	if opts.ScanType == ScanFull || opts.ScanType == ScanDependenciesOnly {
		report.DependencyVulnerabilities = nonNil(ScanDependencies(opts.Path))
		all = append(all, report.DependencyVulnerabilities...)
	}
	if opts.ScanType == ScanFull || opts.ScanType == ScanCodeOnly {
		files, err := JavaFiles(ctx, opts.Path, FileFilter{IncludeTests: true, Exclude: opts.ExcludePatterns})
		if err != nil {
			return nil, err
		}
		code := []Finding{}
		for _, file := range files {
			findings, err := ScanFile(file)
			if err != nil {
				continue
			}
			code = append(code, findings...)
		}
		report.CodeVulnerabilities = code
		all = append(all, code...)
	}

	filtered := FilterBySeverity(all, opts.MinSeverity)
	if opts.IncludeRemediations {
		for i := range filtered {
			filtered[i].RemediationSteps = RemediationSteps(filtered[i].Title)
		}
	}

	report.AllFindings = filtered
	report.RiskAssessment = AssessRisk(filtered)
	report.RemediationPlan = RemediationPlan(filtered)
	report.SecurityScore = SecurityScore(filtered)
	report.Summary = summarize(filtered, report.SecurityScore)
	return report, nil
}

func nonNil(findings []Finding) []Finding {
	if findings == nil {
		return []Finding{}
	}
	return findings
}
